// Package store is the local SQLite-backed case store. It powers the offline
// data sources and holds whatever `pull` copies down from a live backend.
package store

import (
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/sqlite"
)

// Store bundles the repositories over one local database.
type Store struct {
	Cases      *CaseRepository
	Evidence   *EvidenceRepository
	AgentLogs  *AgentLogRepository
	Hypotheses *HypothesisRepository
}

func New(db *sqlite.Database, logger *slog.Logger) *Store {
	return &Store{
		Cases:      NewCaseRepository(db, logger),
		Evidence:   NewEvidenceRepository(db, logger),
		AgentLogs:  NewAgentLogRepository(db, logger),
		Hypotheses: NewHypothesisRepository(db, logger),
	}
}
