// Package registry keeps the investigator's working set of cases: an
// in-memory list loaded from a Source, newest first, with client-side
// filtering and draft validation.
package registry

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	ErrIncompleteDraft = errors.NewSentinel("location, date and investigator are required")
	ErrUnknownCase     = errors.NewSentinel("unknown case")
)

// Registry caches the case list for display. All reads after Load are served
// from memory; Create writes through to the source and prepends the new case.
type Registry struct {
	source Source
	logger *slog.Logger

	mu    sync.RWMutex
	cases []models.Case
}

func New(source Source, logger *slog.Logger) *Registry {
	return &Registry{
		source: source,
		logger: logger.With("source", "registry.Registry"),
	}
}

// Load refreshes the cached case list from the source.
func (r *Registry) Load(ctx context.Context) error {
	cases, err := r.source.List(ctx)
	if err != nil {
		return errors.Wrap(err, "load cases")
	}
	sortNewestFirst(cases)

	r.mu.Lock()
	r.cases = cases
	r.mu.Unlock()

	r.logger.LogAttrs(ctx, slog.LevelDebug, "case registry loaded",
		slog.Int("cases", len(cases)))
	return nil
}

// Cases returns the cached list, newest first.
func (r *Registry) Cases() []models.Case {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return append([]models.Case(nil), r.cases...)
}

// Filter returns the cached cases whose code, location or investigator
// contains query, case-insensitively. An empty query returns everything.
func (r *Registry) Filter(query string) []models.Case {
	all := r.Cases()
	query = strings.ToLower(strings.TrimSpace(query))
	if query == "" {
		return all
	}

	matched := all[:0]
	for _, c := range all {
		if strings.Contains(strings.ToLower(c.Code), query) ||
			strings.Contains(strings.ToLower(c.Location), query) ||
			strings.Contains(strings.ToLower(c.Investigator), query) {
			matched = append(matched, c)
		}
	}
	return matched
}

// ByCode resolves a case code like "CRX-2024-0001" against the cache.
func (r *Registry) ByCode(code string) (models.Case, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, c := range r.cases {
		if strings.EqualFold(c.Code, code) {
			return c, nil
		}
	}
	return models.Case{}, errors.Wrap(ErrUnknownCase, "resolve case code",
		slog.String("case_code", code))
}

// Create validates the draft and, only when complete, submits it to the
// source. The created case is prepended to the cache.
func (r *Registry) Create(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	draft.Location = strings.TrimSpace(draft.Location)
	draft.Date = strings.TrimSpace(draft.Date)
	draft.Investigator = strings.TrimSpace(draft.Investigator)
	if draft.Location == "" || draft.Date == "" || draft.Investigator == "" {
		return models.Case{}, errors.Wrap(ErrIncompleteDraft, "create case")
	}

	created, err := r.source.Create(ctx, draft)
	if err != nil {
		return models.Case{}, errors.Wrap(err, "create case")
	}

	r.mu.Lock()
	r.cases = append([]models.Case{created}, r.cases...)
	r.mu.Unlock()

	r.logger.LogAttrs(ctx, slog.LevelInfo, "case created",
		slog.String("case_code", created.Code))
	return created, nil
}

// Detail fetches the full record for a case straight from the source; detail
// views are never served stale from the cache.
func (r *Registry) Detail(ctx context.Context, caseID int64) (models.CaseDetail, error) {
	detail, err := r.source.Detail(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, errors.Wrap(err, "load case detail",
			slog.Int64("case_id", caseID))
	}
	return detail, nil
}

func sortNewestFirst(cases []models.Case) {
	sort.SliceStable(cases, func(i, j int) bool {
		return cases[i].CreatedAt.After(cases[j].CreatedAt.Time)
	})
}
