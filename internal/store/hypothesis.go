package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/sqlite"
)

type HypothesisRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewHypothesisRepository(db *sqlite.Database, logger *slog.Logger) *HypothesisRepository {
	return &HypothesisRepository{
		db:     db,
		logger: logger.With("source", "HypothesisRepository"),
	}
}

type hypothesisRow struct {
	ID                 int64   `db:"id"`
	CaseID             int64   `db:"case_id"`
	ScenarioID         string  `db:"scenario_id"`
	Title              string  `db:"title"`
	Timeline           string  `db:"timeline"`
	Confidence         float64 `db:"confidence"`
	SupportingEvidence string  `db:"supporting_evidence"`
	Contradictions     string  `db:"contradictions"`
}

// ReplaceForCase swaps the case's hypothesis set in full. The timeline
// builder's scenarios always replace the previous set, never merge into it.
func (r *HypothesisRepository) ReplaceForCase(ctx context.Context, caseID int64, scenarios []models.Scenario) error {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback replace hypotheses", errors.SlogError(rollbackErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM hypotheses WHERE case_id = ?`, caseID); err != nil {
		return errors.Wrap(err, "clear hypotheses", slog.Int64("caseID", caseID))
	}

	stmt := `INSERT INTO hypotheses (case_id, scenario_id, title, timeline, confidence, supporting_evidence, contradictions)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	for _, scenario := range scenarios {
		timeline, marshalErr := json.Marshal(scenario.Timeline)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal timeline", slog.String("scenario", scenario.ScenarioID))
		}
		supporting, marshalErr := json.Marshal(scenario.SupportingEvidence)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal supporting evidence", slog.String("scenario", scenario.ScenarioID))
		}
		contradictions, marshalErr := json.Marshal(scenario.Contradictions)
		if marshalErr != nil {
			return errors.Wrap(marshalErr, "marshal contradictions", slog.String("scenario", scenario.ScenarioID))
		}
		if _, err = tx.ExecContext(ctx, stmt,
			caseID, scenario.ScenarioID, scenario.Title, string(timeline),
			scenario.Confidence, string(supporting), string(contradictions)); err != nil {
			return errors.Wrap(err, "insert hypothesis", slog.String("scenario", scenario.ScenarioID))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit hypotheses")
	}
	return nil
}

// ApplyChallenge folds the hypothesis challenger's verdict back into the
// matching scenario.
func (r *HypothesisRepository) ApplyChallenge(ctx context.Context, caseID int64, challenge models.Challenge) error {
	contradictions, err := json.Marshal(challenge.Contradictions)
	if err != nil {
		return errors.Wrap(err, "marshal contradictions", slog.String("scenario", challenge.ScenarioID))
	}
	stmt := `UPDATE hypotheses SET confidence = ?, contradictions = ? WHERE case_id = ? AND scenario_id = ?`
	if _, err = r.db.ReadWrite.ExecContext(ctx, stmt,
		challenge.RevisedConfidence, string(contradictions), caseID, challenge.ScenarioID); err != nil {
		return errors.Wrap(err, "update hypothesis", slog.String("scenario", challenge.ScenarioID))
	}
	return nil
}

// ListForCase returns the current hypothesis set ordered by scenario id.
func (r *HypothesisRepository) ListForCase(ctx context.Context, caseID int64) ([]models.Scenario, error) {
	var rows []hypothesisRow
	stmt := `SELECT id, case_id, scenario_id, title, timeline, confidence, supporting_evidence, contradictions
	FROM hypotheses
	WHERE case_id = ?
	ORDER BY scenario_id`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select hypotheses", slog.Int64("caseID", caseID))
	}

	scenarios := make([]models.Scenario, 0, len(rows))
	for _, row := range rows {
		scenario := models.Scenario{
			ScenarioID: row.ScenarioID,
			Title:      row.Title,
			Confidence: row.Confidence,
		}
		if err := json.Unmarshal([]byte(row.Timeline), &scenario.Timeline); err != nil {
			return nil, errors.Wrap(err, "unmarshal timeline", slog.Int64("id", row.ID))
		}
		if err := json.Unmarshal([]byte(row.SupportingEvidence), &scenario.SupportingEvidence); err != nil {
			return nil, errors.Wrap(err, "unmarshal supporting evidence", slog.Int64("id", row.ID))
		}
		if err := json.Unmarshal([]byte(row.Contradictions), &scenario.Contradictions); err != nil {
			return nil, errors.Wrap(err, "unmarshal contradictions", slog.Int64("id", row.ID))
		}
		scenarios = append(scenarios, scenario)
	}
	return scenarios, nil
}
