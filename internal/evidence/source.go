package evidence

import (
	"context"
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/store"
)

// Source is where a case's evidence markers live.
type Source interface {
	List(ctx context.Context, caseID int64) ([]models.Evidence, error)
	Add(ctx context.Context, caseID int64, item models.Evidence) (models.Evidence, error)
	Update(ctx context.Context, caseID, evidenceID int64, patch models.EvidencePatch) error
	Delete(ctx context.Context, caseID, evidenceID int64) error
}

// LiveSource keeps markers on the case-management backend.
type LiveSource struct {
	client *backend.Client
}

func NewLiveSource(client *backend.Client) *LiveSource {
	return &LiveSource{client: client}
}

func (s *LiveSource) List(ctx context.Context, caseID int64) ([]models.Evidence, error) {
	return s.client.ListEvidence(ctx, caseID)
}

func (s *LiveSource) Add(ctx context.Context, caseID int64, item models.Evidence) (models.Evidence, error) {
	return s.client.AddEvidence(ctx, caseID, backend.AddEvidenceRequest{
		Type:      item.Type,
		X:         item.Position.X,
		Y:         item.Position.Y,
		Z:         item.Position.Z,
		Notes:     item.Notes,
		CreatedBy: item.CreatedBy,
	})
}

func (s *LiveSource) Update(ctx context.Context, caseID, evidenceID int64, patch models.EvidencePatch) error {
	return s.client.UpdateEvidence(ctx, caseID, evidenceID, patch)
}

func (s *LiveSource) Delete(ctx context.Context, caseID, evidenceID int64) error {
	return s.client.DeleteEvidence(ctx, caseID, evidenceID)
}

// OfflineSource keeps markers in the local store, which allocates codes and
// custody hashes itself.
type OfflineSource struct {
	store *store.Store
}

func NewOfflineSource(st *store.Store) *OfflineSource {
	return &OfflineSource{store: st}
}

func (s *OfflineSource) List(ctx context.Context, caseID int64) ([]models.Evidence, error) {
	return s.store.Evidence.ListForCase(ctx, caseID)
}

func (s *OfflineSource) Add(ctx context.Context, caseID int64, item models.Evidence) (models.Evidence, error) {
	return s.store.Evidence.Add(ctx, caseID, item.Type, item.Position, item.Notes, item.CreatedBy)
}

func (s *OfflineSource) Update(ctx context.Context, _, evidenceID int64, patch models.EvidencePatch) error {
	return s.store.Evidence.Patch(ctx, evidenceID, patch)
}

func (s *OfflineSource) Delete(ctx context.Context, _, evidenceID int64) error {
	return s.store.Evidence.Delete(ctx, evidenceID)
}

// FallbackSource uses the backend when it can be reached and the local store
// otherwise. Listings fetched live are mirrored into the store.
type FallbackSource struct {
	live    Source
	offline *OfflineSource
	logger  *slog.Logger
}

func NewFallbackSource(live Source, offline *OfflineSource, logger *slog.Logger) *FallbackSource {
	return &FallbackSource{live: live, offline: offline, logger: logger}
}

func (s *FallbackSource) List(ctx context.Context, caseID int64) ([]models.Evidence, error) {
	items, err := s.live.List(ctx, caseID)
	if err == nil {
		if mirrorErr := s.offline.store.Evidence.ReplaceForCase(ctx, caseID, items); mirrorErr != nil {
			s.logger.LogAttrs(ctx, slog.LevelWarn, "mirroring evidence offline failed",
				slog.Int64("case_id", caseID), errors.SlogError(mirrorErr))
		}
		return items, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return nil, err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, listing evidence offline",
		errors.SlogError(err))
	return s.offline.List(ctx, caseID)
}

func (s *FallbackSource) Add(ctx context.Context, caseID int64, item models.Evidence) (models.Evidence, error) {
	created, err := s.live.Add(ctx, caseID, item)
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return models.Evidence{}, err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, placing evidence offline",
		errors.SlogError(err))
	return s.offline.Add(ctx, caseID, item)
}

func (s *FallbackSource) Update(ctx context.Context, caseID, evidenceID int64, patch models.EvidencePatch) error {
	err := s.live.Update(ctx, caseID, evidenceID, patch)
	if err == nil || !errors.Is(err, backend.ErrUnreachable) {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, updating evidence offline",
		errors.SlogError(err))
	return s.offline.Update(ctx, caseID, evidenceID, patch)
}

func (s *FallbackSource) Delete(ctx context.Context, caseID, evidenceID int64) error {
	err := s.live.Delete(ctx, caseID, evidenceID)
	if err == nil || !errors.Is(err, backend.ErrUnreachable) {
		return err
	}
	s.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, deleting evidence offline",
		errors.SlogError(err))
	return s.offline.Delete(ctx, caseID, evidenceID)
}
