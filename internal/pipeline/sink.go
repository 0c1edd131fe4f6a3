package pipeline

import (
	"context"

	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/store"
)

// StoreSink persists pipeline output into the local store, keeping agent
// logs and hypotheses available for offline case views.
type StoreSink struct {
	store *store.Store
}

func NewStoreSink(st *store.Store) *StoreSink {
	return &StoreSink{store: st}
}

func (s *StoreSink) PutResult(ctx context.Context, caseID int64, result models.StageResult) error {
	return s.store.AgentLogs.Put(ctx, caseID, result)
}

func (s *StoreSink) ReplaceHypotheses(ctx context.Context, caseID int64, scenarios []models.Scenario) error {
	return s.store.Hypotheses.ReplaceForCase(ctx, caseID, scenarios)
}

func (s *StoreSink) ApplyChallenge(ctx context.Context, caseID int64, challenge models.Challenge) error {
	return s.store.Hypotheses.ApplyChallenge(ctx, caseID, challenge)
}
