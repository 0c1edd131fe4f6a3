package store

import (
	"context"
	"crypto/sha256"
	"database/sql"
	"encoding/hex"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/sqlite"
)

// ErrEvidenceNotFound is returned when an evidence id has no row in the local store.
var ErrEvidenceNotFound = errors.NewSentinel("evidence not found")

type EvidenceRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewEvidenceRepository(db *sqlite.Database, logger *slog.Logger) *EvidenceRepository {
	return &EvidenceRepository{
		db:     db,
		logger: logger.With("source", "EvidenceRepository"),
	}
}

type evidenceRow struct {
	ID           int64     `db:"id"`
	EvidenceID   string    `db:"evidence_id"`
	CaseID       int64     `db:"case_id"`
	EvidenceType string    `db:"evidence_type"`
	X            float64   `db:"x"`
	Y            float64   `db:"y"`
	Z            float64   `db:"z"`
	Notes        string    `db:"notes"`
	Hash         string    `db:"hash"`
	CreatedAt    time.Time `db:"created_at"`
	CreatedBy    string    `db:"created_by"`
}

func (row evidenceRow) toModel() models.Evidence {
	return models.Evidence{
		ID:        row.ID,
		Code:      row.EvidenceID,
		CaseID:    row.CaseID,
		Type:      models.EvidenceType(row.EvidenceType),
		Position:  models.Position{X: row.X, Y: row.Y, Z: row.Z},
		Notes:     row.Notes,
		Hash:      row.Hash,
		CreatedAt: models.Timestamp{Time: row.CreatedAt},
		CreatedBy: row.CreatedBy,
	}
}

// custodyHash is the chain-of-custody digest over the marker's identifying
// fields. Recomputed whenever the fields change.
func custodyHash(code string, caseID int64, evidenceType models.EvidenceType, pos models.Position, notes string, createdAt time.Time) string {
	data := fmt.Sprintf("%s%d%s%v%v%v%s%s",
		code, caseID, evidenceType, pos.X, pos.Y, pos.Z, notes, createdAt.UTC().Format(time.RFC3339))
	sum := sha256.Sum256([]byte(data))
	return hex.EncodeToString(sum[:])
}

// ListForCase returns all markers of a case in insertion order.
func (r *EvidenceRepository) ListForCase(ctx context.Context, caseID int64) ([]models.Evidence, error) {
	var rows []evidenceRow
	stmt := `SELECT id, evidence_id, case_id, evidence_type, x, y, z, notes, hash, created_at, created_by
	FROM evidence
	WHERE case_id = ?
	ORDER BY id`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt, caseID); err != nil {
		return nil, errors.Wrap(err, "select evidence", slog.Int64("caseID", caseID))
	}
	items := make([]models.Evidence, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toModel())
	}
	return items, nil
}

// Add places a new marker in the case. The display code comes from the
// case's monotonic allocator so that deletions can never cause a code to be
// handed out twice.
func (r *EvidenceRepository) Add(
	ctx context.Context,
	caseID int64,
	evidenceType models.EvidenceType,
	pos models.Position,
	notes string,
	createdBy string,
) (models.Evidence, error) {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return models.Evidence{}, errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback add evidence", errors.SlogError(rollbackErr))
		}
	}()

	var seq int64
	stmt := `UPDATE cases SET evidence_seq = evidence_seq + 1 WHERE id = ? RETURNING evidence_seq`
	if err = tx.GetContext(ctx, &seq, stmt, caseID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Evidence{}, errors.Wrap(ErrCaseNotFound, "allocate evidence code", slog.Int64("caseID", caseID))
		}
		return models.Evidence{}, errors.Wrap(err, "allocate evidence code")
	}

	code := fmt.Sprintf("E-%03d", seq)
	now := time.Now().UTC()
	hash := custodyHash(code, caseID, evidenceType, pos, notes, now)

	stmt = `INSERT INTO evidence (evidence_id, case_id, evidence_type, x, y, z, notes, hash, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := tx.ExecContext(ctx, stmt, code, caseID, string(evidenceType), pos.X, pos.Y, pos.Z, notes, hash, now, createdBy)
	if err != nil {
		return models.Evidence{}, errors.Wrap(err, "insert evidence", slog.String("code", code))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Evidence{}, errors.Wrap(err, "last insert id")
	}
	if err = tx.Commit(); err != nil {
		return models.Evidence{}, errors.Wrap(err, "commit add evidence")
	}

	return models.Evidence{
		ID:        id,
		Code:      code,
		CaseID:    caseID,
		Type:      evidenceType,
		Position:  pos,
		Notes:     notes,
		Hash:      hash,
		CreatedAt: models.Timestamp{Time: now},
		CreatedBy: createdBy,
	}, nil
}

// Patch applies a partial update and recomputes the custody hash.
func (r *EvidenceRepository) Patch(ctx context.Context, id int64, patch models.EvidencePatch) error {
	if patch.Notes == nil {
		return nil
	}

	var row evidenceRow
	stmt := `SELECT id, evidence_id, case_id, evidence_type, x, y, z, notes, hash, created_at, created_by
	FROM evidence WHERE id = ?`
	if err := r.db.ReadWrite.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return errors.Wrap(ErrEvidenceNotFound, "patch evidence", slog.Int64("id", id))
		}
		return errors.Wrap(err, "select evidence for patch")
	}

	pos := models.Position{X: row.X, Y: row.Y, Z: row.Z}
	hash := custodyHash(row.EvidenceID, row.CaseID, models.EvidenceType(row.EvidenceType), pos, *patch.Notes, row.CreatedAt)

	stmt = `UPDATE evidence SET notes = ?, hash = ? WHERE id = ?`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt, *patch.Notes, hash, id); err != nil {
		return errors.Wrap(err, "update evidence", slog.Int64("id", id))
	}
	return nil
}

// Delete removes a marker. Deleting an unknown id is not an error.
func (r *EvidenceRepository) Delete(ctx context.Context, id int64) error {
	if _, err := r.db.ReadWrite.ExecContext(ctx, `DELETE FROM evidence WHERE id = ?`, id); err != nil {
		return errors.Wrap(err, "delete evidence", slog.Int64("id", id))
	}
	return nil
}

// ReplaceForCase swaps a case's markers for the given set, used when syncing
// from a live backend.
func (r *EvidenceRepository) ReplaceForCase(ctx context.Context, caseID int64, items []models.Evidence) error {
	tx, err := r.db.ReadWrite.BeginTxx(ctx, nil)
	if err != nil {
		return errors.Wrap(err, "begin transaction")
	}
	defer func() {
		if rollbackErr := tx.Rollback(); rollbackErr != nil && !errors.Is(rollbackErr, sql.ErrTxDone) {
			r.logger.LogAttrs(ctx, slog.LevelError, "rollback replace evidence", errors.SlogError(rollbackErr))
		}
	}()

	if _, err = tx.ExecContext(ctx, `DELETE FROM evidence WHERE case_id = ?`, caseID); err != nil {
		return errors.Wrap(err, "clear evidence", slog.Int64("caseID", caseID))
	}
	stmt := `INSERT INTO evidence (evidence_id, case_id, evidence_type, x, y, z, notes, hash, created_at, created_by)
	VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	for _, item := range items {
		if _, err = tx.ExecContext(ctx, stmt,
			item.Code, caseID, string(item.Type),
			item.Position.X, item.Position.Y, item.Position.Z,
			item.Notes, item.Hash, item.CreatedAt, item.CreatedBy); err != nil {
			return errors.Wrap(err, "insert synced evidence", slog.String("code", item.Code))
		}
	}
	if err = tx.Commit(); err != nil {
		return errors.Wrap(err, "commit replace evidence")
	}
	return nil
}
