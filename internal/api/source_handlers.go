package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"os"

	"github.com/reliefdata/sitewatch/internal/fetch"
	"github.com/reliefdata/sitewatch/internal/pkg/httputil"
)

// GetSourceMeta proxies source metadata: {ok, name,
// lastModifiedDateTime, size, source}. Failures surface as HTTP 500
// with {ok:false, error}.
func (h *Handlers) GetSourceMeta(w http.ResponseWriter, r *http.Request) {
	if h.source == nil || !h.source.Configured() {
		httputil.InternalError(w, fmt.Errorf("no remote source configured"))
		return
	}
	meta, err := h.source.Metadata(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, meta)
}

// GetSourceFile proxies the raw workbook bytes with the xlsx content
// type. Stateless pass-through; nothing is cached server-side.
func (h *Handlers) GetSourceFile(w http.ResponseWriter, r *http.Request) {
	if h.source == nil || !h.source.Configured() {
		httputil.InternalError(w, fmt.Errorf("no remote source configured"))
		return
	}
	data, err := h.source.Download(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	w.Header().Set("Content-Type", fetch.XLSXContentType)
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// GetOverlay serves the configured boundary GeoJSON after a validation
// parse. The overlay is a read-only external document, not part of the
// pipeline.
func (h *Handlers) GetOverlay(w http.ResponseWriter, r *http.Request) {
	if h.overlayPath == "" {
		httputil.NotFound(w, "no overlay configured")
		return
	}
	data, err := os.ReadFile(h.overlayPath)
	if err != nil {
		httputil.InternalError(w, fmt.Errorf("read overlay: %w", err))
		return
	}
	var doc struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &doc); err != nil || doc.Type == "" {
		httputil.InternalError(w, fmt.Errorf("overlay is not valid GeoJSON"))
		return
	}
	w.Header().Set("Content-Type", "application/geo+json")
	w.WriteHeader(http.StatusOK)
	w.Write(data)
}

// PostUpload accepts a multipart workbook upload and runs a full load.
// A failed load keeps the previous dataset active.
func (h *Handlers) PostUpload(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxUpload)
	if err := r.ParseMultipartForm(h.maxUpload); err != nil {
		httputil.BadRequest(w, "upload too large or malformed")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		httputil.BadRequest(w, "missing file field")
		return
	}
	defer file.Close()

	if err := h.service.LoadFromUpload(file, header.Filename); err != nil {
		httputil.InternalError(w, err)
		return
	}
	snap := h.service.Pipeline.Snapshot()
	httputil.OK(w, map[string]any{
		"ok":      true,
		"version": snap.Version,
		"records": len(snap.Records),
		"mapped":  snap.Coords.Mapped,
	})
}

// PostReload re-fetches the configured remote source immediately.
func (h *Handlers) PostReload(w http.ResponseWriter, r *http.Request) {
	if err := h.service.LoadFromSource(r.Context()); err != nil {
		httputil.InternalError(w, err)
		return
	}
	snap := h.service.Pipeline.Snapshot()
	httputil.OK(w, map[string]any{
		"ok":      true,
		"version": snap.Version,
		"records": len(snap.Records),
		"mapped":  snap.Coords.Mapped,
	})
}
