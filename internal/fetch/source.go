// Package fetch pulls the source workbook from a remote location:
// either a direct URL or a Microsoft Graph drive item authenticated
// with OAuth2 client credentials. The proxy endpoints and the
// auto-refresh loop both go through this client; it is a stateless
// pass-through and performs no parsing.
package fetch

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/reliefdata/sitewatch/internal/config"
	"github.com/reliefdata/sitewatch/internal/pkg/httpretry"
)

const graphBase = "https://graph.microsoft.com/v1.0"

// XLSXContentType is the content type served for workbook bytes.
const XLSXContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Meta is the source metadata payload returned by the meta endpoint.
type Meta struct {
	OK                   bool   `json:"ok"`
	Name                 string `json:"name"`
	LastModifiedDateTime string `json:"lastModifiedDateTime,omitempty"`
	Size                 int64  `json:"size"`
	Source               string `json:"source"`
}

// Source fetches workbook bytes and metadata for one configured origin.
type Source struct {
	cfg    config.SourceConfig
	client httpretry.Doer
}

// New builds a source client. Graph mode gets an OAuth2
// client-credentials transport that refreshes tokens on its own;
// both modes retry transient failures.
func New(cfg config.SourceConfig) *Source {
	base := &http.Client{Timeout: 60 * time.Second}
	if cfg.Mode == "graph" && cfg.Graph.Configured() {
		cc := &clientcredentials.Config{
			ClientID:     cfg.Graph.ClientID,
			ClientSecret: cfg.Graph.ClientSecret,
			TokenURL: fmt.Sprintf(
				"https://login.microsoftonline.com/%s/oauth2/v2.0/token",
				cfg.Graph.TenantID),
			Scopes: []string{"https://graph.microsoft.com/.default"},
		}
		base = cc.Client(context.Background())
		base.Timeout = 60 * time.Second
	}
	return &Source{cfg: cfg, client: httpretry.New(base, 3)}
}

// Configured reports whether any origin is usable.
func (s *Source) Configured() bool {
	switch s.cfg.Mode {
	case "url":
		return s.cfg.URL != ""
	case "graph":
		return s.cfg.Graph.Configured()
	}
	return false
}

// SheetName returns the configured worksheet preference.
func (s *Source) SheetName() string { return s.cfg.SheetName }

// Metadata fetches name, modification time, and size for the source.
func (s *Source) Metadata(ctx context.Context) (*Meta, error) {
	switch s.cfg.Mode {
	case "url":
		return s.urlMetadata(ctx)
	case "graph":
		return s.graphMetadata(ctx)
	}
	return nil, fmt.Errorf("no source configured")
}

// Download fetches the raw workbook bytes.
func (s *Source) Download(ctx context.Context) ([]byte, error) {
	var target string
	switch s.cfg.Mode {
	case "url":
		target = s.cfg.URL
	case "graph":
		target = fmt.Sprintf("%s/drives/%s/items/%s/content",
			graphBase, s.cfg.Graph.DriveID, s.cfg.Graph.ItemID)
	default:
		return nil, fmt.Errorf("no source configured")
	}

	resp, err := s.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}
	return io.ReadAll(resp.Body)
}

func (s *Source) urlMetadata(ctx context.Context) (*Meta, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, s.cfg.URL, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("head source: %w", err)
	}
	io.Copy(io.Discard, resp.Body)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("source returned HTTP %d", resp.StatusCode)
	}

	name := "workbook.xlsx"
	if u, err := url.Parse(s.cfg.URL); err == nil && path.Base(u.Path) != "/" && path.Base(u.Path) != "." {
		name = path.Base(u.Path)
	}
	meta := &Meta{OK: true, Name: name, Size: resp.ContentLength, Source: "url"}
	if lm := resp.Header.Get("Last-Modified"); lm != "" {
		if t, err := time.Parse(http.TimeFormat, lm); err == nil {
			meta.LastModifiedDateTime = t.UTC().Format(time.RFC3339)
		}
	}
	return meta, nil
}

func (s *Source) graphMetadata(ctx context.Context) (*Meta, error) {
	target := fmt.Sprintf("%s/drives/%s/items/%s",
		graphBase, s.cfg.Graph.DriveID, s.cfg.Graph.ItemID)
	resp, err := s.get(ctx, target)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("graph returned HTTP %d", resp.StatusCode)
	}

	var item struct {
		Name                 string `json:"name"`
		LastModifiedDateTime string `json:"lastModifiedDateTime"`
		Size                 int64  `json:"size"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&item); err != nil {
		return nil, fmt.Errorf("decode graph item: %w", err)
	}
	return &Meta{
		OK:                   true,
		Name:                 item.Name,
		LastModifiedDateTime: item.LastModifiedDateTime,
		Size:                 item.Size,
		Source:               "graph",
	}, nil
}

func (s *Source) get(ctx context.Context, target string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return nil, err
	}
	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch source: %w", err)
	}
	return resp, nil
}
