package registry

import (
	"context"
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/store"
)

// Source is where case records come from and go to. The registry does not
// care whether that is the live backend, the offline store, or a fallback
// chaining the two.
type Source interface {
	List(ctx context.Context) ([]models.Case, error)
	Create(ctx context.Context, draft models.CaseDraft) (models.Case, error)
	Detail(ctx context.Context, caseID int64) (models.CaseDetail, error)
}

// LiveSource serves cases from the case-management backend.
type LiveSource struct {
	client *backend.Client
}

func NewLiveSource(client *backend.Client) *LiveSource {
	return &LiveSource{client: client}
}

func (s *LiveSource) List(ctx context.Context) ([]models.Case, error) {
	return s.client.ListCases(ctx)
}

func (s *LiveSource) Create(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	return s.client.CreateCase(ctx, draft)
}

func (s *LiveSource) Detail(ctx context.Context, caseID int64) (models.CaseDetail, error) {
	return s.client.GetCase(ctx, caseID)
}

// OfflineSource serves cases from the local store, assembling detail records
// from the per-case repositories.
type OfflineSource struct {
	store *store.Store
}

func NewOfflineSource(st *store.Store) *OfflineSource {
	return &OfflineSource{store: st}
}

func (s *OfflineSource) List(ctx context.Context) ([]models.Case, error) {
	return s.store.Cases.List(ctx)
}

func (s *OfflineSource) Create(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	return s.store.Cases.Create(ctx, draft)
}

func (s *OfflineSource) Detail(ctx context.Context, caseID int64) (models.CaseDetail, error) {
	c, err := s.store.Cases.Get(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, err
	}
	evidence, err := s.store.Evidence.ListForCase(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, err
	}
	logs, err := s.store.AgentLogs.ListForCase(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, err
	}
	hypotheses, err := s.store.Hypotheses.ListForCase(ctx, caseID)
	if err != nil {
		return models.CaseDetail{}, err
	}
	return models.CaseDetail{
		Case:       c,
		Evidence:   evidence,
		AgentLogs:  logs,
		Hypotheses: hypotheses,
	}, nil
}

// FallbackSource prefers the live backend and degrades to the offline store
// when, and only when, the backend is unreachable. Cases read from the live
// backend are mirrored into the offline store so later offline reads see
// them.
type FallbackSource struct {
	live    Source
	offline *OfflineSource
	logger  *slog.Logger
}

func NewFallbackSource(live Source, offline *OfflineSource, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{live: live, offline: offline, logger: logger}
}

func (s *FallbackSource) List(ctx context.Context) ([]models.Case, error) {
	cases, err := s.live.List(ctx)
	if err == nil {
		s.mirror(ctx, cases)
		return cases, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return nil, err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, listing cases offline",
		errors.SlogError(err))
	return s.offline.List(ctx)
}

func (s *FallbackSource) Create(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	created, err := s.live.Create(ctx, draft)
	if err == nil {
		s.mirror(ctx, []models.Case{created})
		return created, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return models.Case{}, err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, creating case offline",
		errors.SlogError(err))
	return s.offline.Create(ctx, draft)
}

func (s *FallbackSource) Detail(ctx context.Context, caseID int64) (models.CaseDetail, error) {
	detail, err := s.live.Detail(ctx, caseID)
	if err == nil {
		return detail, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return models.CaseDetail{}, err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, reading case offline",
		errors.SlogError(err))
	return s.offline.Detail(ctx, caseID)
}

// mirror writes live cases through to the offline store. Mirroring is best
// effort: a local write failure is logged and does not fail the live call.
func (s *FallbackSource) mirror(ctx context.Context, cases []models.Case) {
	for _, c := range cases {
		if _, err := s.offline.store.Cases.Upsert(ctx, c); err != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "mirroring case offline failed",
				slog.String("case_code", c.Code), errors.SlogError(err))
		}
	}
}
