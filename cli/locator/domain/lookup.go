package domain

import (
	"context"

	log "github.com/sirupsen/logrus"

	"github.com/daniil11ru/lastseen/cli/locator/errs"
	"github.com/daniil11ru/lastseen/cli/locator/model"
	"github.com/daniil11ru/lastseen/cli/locator/storage"
	"github.com/daniil11ru/lastseen/cli/locator/validation"
	"github.com/daniil11ru/lastseen/cli/locator/view"
)

// Store is the namespace store surface the orchestrator consumes.
type Store interface {
	Get(ctx context.Context, id string) (*model.Position, error)
	GetMany(ctx context.Context, ids []string) []storage.LookupResult
	GetAll(ctx context.Context) ([]*model.Position, error)
	Exists(ctx context.Context, id string) (bool, error)
	Stats(ctx context.Context) (storage.Stats, error)
	Ping(ctx context.Context) error
}

// BatchSummary reports the partial-failure outcome of a batch lookup.
type BatchSummary struct {
	Requested   int      `json:"requested"`
	Found       int      `json:"found"`
	NotFound    int      `json:"not_found"`
	NotFoundIDs []string `json:"not_found_ids"`
}

// ListSummary describes the slice a listing returned.
type ListSummary struct {
	Total    int `json:"total"`
	Returned int `json:"returned"`
	Offset   int `json:"offset"`
	Limit    int `json:"limit"`
}

// NamespaceStatus is the per-namespace health and accounting snapshot.
type NamespaceStatus struct {
	Healthy bool          `json:"healthy"`
	Stats   storage.Stats `json:"stats"`
}

// Lookup orchestrates the read operations of one namespace. It holds no
// per-request state; validation always runs before any storage access.
type Lookup struct {
	Store        Store
	MaxBatchSize int
	MaxListLimit int
}

func NewLookup(store Store, maxBatchSize, maxListLimit int) *Lookup {
	if maxBatchSize <= 0 {
		maxBatchSize = validation.MaxBatchSize
	}
	if maxListLimit <= 0 {
		maxListLimit = validation.MaxListLimit
	}
	return &Lookup{Store: store, MaxBatchSize: maxBatchSize, MaxListLimit: maxListLimit}
}

// GetOne resolves a single identifier. Absence is a NOT_FOUND error here,
// unlike in batch, listing and existence contexts.
func (l *Lookup) GetOne(ctx context.Context, id string) (*model.Position, error) {
	if err := validation.ID(id); err != nil {
		return nil, err
	}

	record, err := l.Store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, errs.Newf(errs.NotFound, "no position recorded for %q", id)
	}
	return record, nil
}

// GetBatch resolves up to MaxBatchSize identifiers with per-identifier
// isolation. Admission is all-or-nothing; after that, individual failures
// only show up as not-found entries in the summary.
func (l *Lookup) GetBatch(ctx context.Context, ids []string) ([]*model.Position, BatchSummary, error) {
	if err := validation.Batch(ids, l.MaxBatchSize); err != nil {
		return nil, BatchSummary{}, err
	}

	ids = dedupe(ids)
	results := l.Store.GetMany(ctx, ids)

	found := make([]*model.Position, 0, len(results))
	foundIDs := make(map[string]bool, len(results))
	for _, result := range results {
		if result.Outcome == storage.OutcomeFound {
			found = append(found, result.Record)
			foundIDs[result.ID] = true
		}
	}

	summary := BatchSummary{Requested: len(ids), Found: len(found), NotFoundIDs: []string{}}
	for _, id := range ids {
		if !foundIDs[id] {
			summary.NotFoundIDs = append(summary.NotFoundIDs, id)
		}
	}
	summary.NotFound = len(summary.NotFoundIDs)

	return found, summary, nil
}

// List scans the whole namespace, projects every record into the requested
// view and slices the projected set in memory. There is no storage-level
// cursor; the summary reflects the full scanned total.
func (l *Lookup) List(ctx context.Context, limit, offset int, v view.View) ([]interface{}, ListSummary, error) {
	if err := validation.Pagination(limit, offset, l.MaxListLimit); err != nil {
		return nil, ListSummary{}, err
	}
	if limit == 0 {
		limit = l.MaxListLimit
	}

	records, err := l.Store.GetAll(ctx)
	if err != nil {
		return nil, ListSummary{}, err
	}

	projected := view.ProjectAll(records, v)

	total := len(projected)
	start := offset
	if start > total {
		start = total
	}
	end := start + limit
	if end > total {
		end = total
	}
	page := projected[start:end]

	return page, ListSummary{Total: total, Returned: len(page), Offset: offset, Limit: limit}, nil
}

// CheckExists reports presence. Non-existence is a normal success outcome,
// never an error.
func (l *Lookup) CheckExists(ctx context.Context, id string) (bool, error) {
	if err := validation.ID(id); err != nil {
		return false, err
	}
	return l.Store.Exists(ctx, id)
}

// Status aggregates the liveness probe and key accounting. A probe failure
// degrades health without affecting reads in flight elsewhere.
func (l *Lookup) Status(ctx context.Context) NamespaceStatus {
	status := NamespaceStatus{}

	if err := l.Store.Ping(ctx); err != nil {
		log.Errorf("liveness probe failed: %v", err)
		return status
	}
	status.Healthy = true

	stats, err := l.Store.Stats(ctx)
	if err != nil {
		log.Warnf("stats collection failed: %v", err)
		return status
	}
	status.Stats = stats

	return status
}

func dedupe(ids []string) []string {
	seen := make(map[string]bool, len(ids))
	out := ids[:0:0]
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
