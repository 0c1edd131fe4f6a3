package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/sqlite"
)

type AgentLogRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewAgentLogRepository(db *sqlite.Database, logger *slog.Logger) *AgentLogRepository {
	return &AgentLogRepository{
		db:     db,
		logger: logger.With("source", "AgentLogRepository"),
	}
}

type agentLogRow struct {
	ID            int64     `db:"id"`
	CaseID        int64     `db:"case_id"`
	AgentType     string    `db:"agent_type"`
	Status        string    `db:"status"`
	Outputs       string    `db:"outputs"`
	ExecutionTime float64   `db:"execution_time"`
	Hash          string    `db:"hash"`
	CreatedAt     time.Time `db:"created_at"`
}

// Put stores the latest result for a stage, replacing any prior run of the
// same agent on the same case.
func (r *AgentLogRepository) Put(ctx context.Context, caseID int64, result models.StageResult) error {
	outputs, err := json.Marshal(result.Output)
	if err != nil {
		return errors.Wrap(err, "marshal agent output", slog.String("agent", string(result.Agent)))
	}

	now := time.Now().UTC()
	sum := sha256.Sum256([]byte(fmt.Sprintf("%s%s%s", result.Agent, outputs, now.Format(time.RFC3339))))
	hash := hex.EncodeToString(sum[:])

	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback put agent log", errors.SlogError(rollbackErr))
		}
	}()

	stmt := `DELETE FROM agent_logs WHERE case_id = ? AND agent_type = ?`
	if _, err = tx.ExecContext(ctx, stmt, caseID, string(result.Agent)); err != nil {
		return errors.Wrap(err, "clear prior agent log")
	}
	stmt = `INSERT INTO agent_logs (case_id, agent_type, status, outputs, execution_time, hash, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)`
	if _, err = tx.ExecContext(ctx, stmt,
		caseID, string(result.Agent), string(result.Status), string(outputs), result.ExecutionTime, hash, now); err != nil {
		return errors.Wrap(err, "insert agent log", slog.String("agent", string(result.Agent)))
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit agent log")
	}
	return nil
}

// ListForCase returns the stored stage results in run order.
func (r *AgentLogRepository) ListForCase(ctx context.Context, caseID int64) ([]models.StageResult, error) {
	var rows []agentLogRow
	stmt := `SELECT id, case_id, agent_type, status, outputs, execution_time, hash, created_at
	FROM agent_logs
	WHERE case_id = ?
	ORDER BY created_at, id`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select agent logs", slog.Int64("caseID", caseID))
	}

	results := make([]models.StageResult, 0, len(rows))
	for _, row := range rows {
		var output models.AgentOutput
		if err := json.Unmarshal([]byte(row.Outputs), &output); err != nil {
			return nil, errors.Wrap(err, "unmarshal agent output", slog.Int64("id", row.ID))
		}
		results = append(results, models.StageResult{
			Agent:         models.AgentID(row.AgentType),
			Status:        models.StageStatus(row.Status),
			ExecutionTime: row.ExecutionTime,
			Output:        output,
		})
	}
	return results, nil
}
