// Package dashboard owns the single mutable data state: the full
// normalized record set, the coordinate index, the current filter
// criteria, and the filtered subsequence every view reads. All other
// packages are pure functions over their inputs; only the pipeline
// mutates.
package dashboard

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/reliefdata/sitewatch/internal/geo"
	"github.com/reliefdata/sitewatch/internal/pkg/logger"
	"github.com/reliefdata/sitewatch/internal/query"
	"github.com/reliefdata/sitewatch/internal/sitedata"
)

// Dataset is one fully loaded record set. Replaced wholesale on every
// load; never updated incrementally.
type Dataset struct {
	Version    string
	SourceName string
	LoadedAt   time.Time
	Records    []*sitedata.Record
	Coords     *geo.Index
}

// Pipeline sequences normalization, coordinate inference, filtering,
// and aggregation. Coordinate inference runs once per load (it samples
// up to 1200 rows per column); filtering reruns on every criteria
// change and is cheap.
type Pipeline struct {
	mu sync.RWMutex

	// loadSeq hands out load tickets; applied records the ticket of
	// the installed dataset. A slow stale load with an older ticket
	// than the applied one is discarded instead of clobbering newer
	// data.
	loadSeq uint64
	applied uint64

	dataset    *Dataset
	criteria   query.Criteria
	filtered   []*sitedata.Record
	errorCount int
	health     string
}

// New returns an empty pipeline with default criteria.
func New() *Pipeline {
	return &Pipeline{
		criteria: query.Default(),
		health:   "Waiting for data",
	}
}

// BeginLoad reserves a load ticket. Call before starting the I/O for a
// load so slower concurrent loads resolve by start order.
func (p *Pipeline) BeginLoad() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.loadSeq++
	return p.loadSeq
}

// CompleteLoad normalizes the rows, rebuilds the coordinate index,
// recomputes the filtered set, and installs the result. If a newer
// load has already been applied the result is dropped and false is
// returned.
func (p *Pipeline) CompleteLoad(ticket uint64, rows []sitedata.RawRow, sourceName string) bool {
	// Normalization and inference run outside the lock; both are pure.
	records := sitedata.NormalizeAll(rows)
	coords := geo.BuildIndex(records)

	p.mu.Lock()
	defer p.mu.Unlock()

	if ticket <= p.applied {
		logger.Warn("discarding stale load",
			"ticket", ticket, "applied", p.applied, "source", sourceName)
		return false
	}
	p.applied = ticket

	p.dataset = &Dataset{
		Version:    uuid.NewString(),
		SourceName: sourceName,
		LoadedAt:   time.Now().UTC(),
		Records:    records,
		Coords:     coords,
	}
	p.filtered = query.Apply(records, p.criteria)
	p.health = fmt.Sprintf("Loaded %d records from %s", len(records), sourceName)

	logger.Info("dataset installed",
		"records", len(records),
		"mapped", coords.Mapped,
		"latColumn", coords.LatColumn,
		"lngColumn", coords.LngColumn,
		"version", p.dataset.Version)
	return true
}

// RecordFailure notes a failed load or refresh tick. The previous
// dataset stays active; failures only surface through the health
// message and the rolling error counter.
func (p *Pipeline) RecordFailure(err error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.errorCount++
	p.health = fmt.Sprintf("Load failed: %v", err)
	logger.Error("load failed", "err", err, "errors", p.errorCount)
}

// SetCriteria replaces the filter criteria and recomputes only the
// filtered subsequence. Normalization and coordinates are untouched.
func (p *Pipeline) SetCriteria(c query.Criteria) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.criteria = c
	if p.dataset != nil {
		p.filtered = query.Apply(p.dataset.Records, c)
	}
}

// Snapshot is an immutable view of pipeline state handed to handlers.
// Slices are fresh copies; holders must not be able to observe later
// loads through a retained snapshot.
type Snapshot struct {
	HasData    bool
	Version    string
	SourceName string
	LoadedAt   time.Time
	Records    []*sitedata.Record
	Filtered   []*sitedata.Record
	Coords     *geo.Index
	Criteria   query.Criteria
	ErrorCount int
	Health     string
}

// Snapshot returns the current state.
func (p *Pipeline) Snapshot() Snapshot {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.snapshotLocked()
}

// SnapshotFor installs the given criteria and returns the resulting
// snapshot under one lock, so a concurrent request cannot swap the
// criteria between the refilter and the read. This is the handler
// path; every request gets a snapshot filtered for exactly the
// criteria it carried.
func (p *Pipeline) SnapshotFor(c query.Criteria) Snapshot {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.criteria = c
	if p.dataset != nil {
		p.filtered = query.Apply(p.dataset.Records, c)
	}
	return p.snapshotLocked()
}

func (p *Pipeline) snapshotLocked() Snapshot {
	snap := Snapshot{
		Criteria:   p.criteria,
		ErrorCount: p.errorCount,
		Health:     p.health,
	}
	if p.dataset == nil {
		snap.Coords = &geo.Index{Points: map[string]geo.Point{}}
		return snap
	}
	snap.HasData = true
	snap.Version = p.dataset.Version
	snap.SourceName = p.dataset.SourceName
	snap.LoadedAt = p.dataset.LoadedAt
	snap.Records = append([]*sitedata.Record(nil), p.dataset.Records...)
	snap.Filtered = append([]*sitedata.Record(nil), p.filtered...)
	snap.Coords = p.dataset.Coords
	return snap
}
