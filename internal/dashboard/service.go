package dashboard

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"github.com/reliefdata/sitewatch/internal/ingest"
	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Downloader is the remote-source dependency of the service.
type Downloader interface {
	Download(ctx context.Context) ([]byte, error)
	Configured() bool
	SheetName() string
}

// Service ties the pipeline to its data sources: the configured remote
// workbook and direct uploads. Every load path reserves its ticket
// before I/O starts so a stale slow request cannot clobber newer data.
type Service struct {
	Pipeline *Pipeline
	source   Downloader
	maxRows  int
}

// NewService builds the service. source may be nil when no remote
// origin is configured; uploads still work.
func NewService(p *Pipeline, source Downloader, maxRows int) *Service {
	return &Service{Pipeline: p, source: source, maxRows: maxRows}
}

// LoadFromSource fetches the configured remote workbook and runs a
// full load. On any failure the previous dataset stays active and the
// failure is recorded.
func (s *Service) LoadFromSource(ctx context.Context) error {
	if s.source == nil || !s.source.Configured() {
		return fmt.Errorf("no remote source configured")
	}

	ticket := s.Pipeline.BeginLoad()
	data, err := s.source.Download(ctx)
	if err != nil {
		err = fmt.Errorf("download workbook: %w", err)
		s.Pipeline.RecordFailure(err)
		return err
	}
	return s.install(ticket, bytes.NewReader(data), s.source.SheetName(), "remote source")
}

// LoadFromUpload runs a full load from an uploaded workbook stream.
func (s *Service) LoadFromUpload(r io.Reader, name string) error {
	sheet := ""
	if s.source != nil {
		sheet = s.source.SheetName()
	}
	ticket := s.Pipeline.BeginLoad()
	return s.install(ticket, r, sheet, name)
}

func (s *Service) install(ticket uint64, r io.Reader, sheet, sourceName string) error {
	rows, err := ingest.DecodeWorkbook(r, sheet)
	if err != nil {
		s.Pipeline.RecordFailure(err)
		return err
	}
	if s.maxRows > 0 && len(rows) > s.maxRows {
		err := fmt.Errorf("workbook has %d rows, limit is %d", len(rows), s.maxRows)
		s.Pipeline.RecordFailure(err)
		return err
	}
	if !s.Pipeline.CompleteLoad(ticket, rows, sourceName) {
		return fmt.Errorf("superseded by a newer load")
	}
	return nil
}

// loadRows is a test seam: installs pre-decoded rows through the same
// ticketed path as the file loads.
func (s *Service) loadRows(rows []sitedata.RawRow, sourceName string) bool {
	ticket := s.Pipeline.BeginLoad()
	return s.Pipeline.CompleteLoad(ticket, rows, sourceName)
}
