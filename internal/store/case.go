package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/sqlite"
)

// ErrCaseNotFound is returned when a case id has no row in the local store.
var ErrCaseNotFound = errors.NewSentinel("case not found")

type CaseRepository struct {
	db     *sqlite.Database
	logger *slog.Logger
}

func NewCaseRepository(db *sqlite.Database, logger *slog.Logger) *CaseRepository {
	return &CaseRepository{
		db:     db,
		logger: logger.With("source", "CaseRepository"),
	}
}

type caseRow struct {
	ID             int64     `db:"id"`
	CaseID         string    `db:"case_id"`
	Location       string    `db:"location"`
	Date           string    `db:"date"`
	Investigator   string    `db:"investigator"`
	Status         string    `db:"status"`
	SceneModelPath string    `db:"scene_model_path"`
	EvidenceSeq    int64     `db:"evidence_seq"`
	CreatedAt      time.Time `db:"created_at"`
}

func (row caseRow) toModel() models.Case {
	return models.Case{
		ID:             row.ID,
		Code:           row.CaseID,
		Location:       row.Location,
		Date:           row.Date,
		Investigator:   row.Investigator,
		Status:         models.CaseStatus(row.Status),
		SceneModelPath: row.SceneModelPath,
		CreatedAt:      models.Timestamp{Time: row.CreatedAt},
	}
}

// List returns all cases, most recent first.
func (r *CaseRepository) List(ctx context.Context) ([]models.Case, error) {
	var rows []caseRow
	stmt := `SELECT id, case_id, location, date, investigator, status, scene_model_path, evidence_seq, created_at
	FROM cases
	ORDER BY created_at DESC, id DESC`
	if err := r.db.ReadOnly.SelectContext(ctx, &rows, stmt); err != nil {
		return nil, errors.Wrap(err, "select cases")
	}
	cases := make([]models.Case, 0, len(rows))
	for _, row := range rows {
		cases = append(cases, row.toModel())
	}
	return cases, nil
}

// Get returns a single case by its numeric id.
func (r *CaseRepository) Get(ctx context.Context, id int64) (models.Case, error) {
	var row caseRow
	stmt := `SELECT id, case_id, location, date, investigator, status, scene_model_path, evidence_seq, created_at
	FROM cases WHERE id = ?`
	if err := r.db.ReadOnly.GetContext(ctx, &row, stmt, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return models.Case{}, errors.Wrap(ErrCaseNotFound, "get case", slog.Int64("id", id))
		}
		return models.Case{}, errors.Wrap(err, "get case")
	}
	return row.toModel(), nil
}

// Create opens a new case with status active and the next display code for
// the current year, e.g. CRX-2024-0003.
func (r *CaseRepository) Create(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	year := time.Now().Year()
	code, err := r.nextCode(ctx, year)
	if err != nil {
		return models.Case{}, err
	}

	now := time.Now().UTC()
	stmt := `INSERT INTO cases (case_id, location, date, investigator, status, created_at)
	VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		code, draft.Location, draft.Date, draft.Investigator, string(models.StatusActive), now)
	if err != nil {
		return models.Case{}, errors.Wrap(err, "insert case", slog.String("code", code))
	}
	id, err := res.LastInsertId()
	if err != nil {
		return models.Case{}, errors.Wrap(err, "last insert id")
	}

	return models.Case{
		ID:           id,
		Code:         code,
		Location:     draft.Location,
		Date:         draft.Date,
		Investigator: draft.Investigator,
		Status:       models.StatusActive,
		CreatedAt:    models.Timestamp{Time: now},
	}, nil
}

// Upsert mirrors a backend-owned case into the local store, keyed by display
// code. Status transitions other than the initial active come from the
// backend and are stored verbatim.
func (r *CaseRepository) Upsert(ctx context.Context, c models.Case) (int64, error) {
	stmt := `INSERT INTO cases (case_id, location, date, investigator, status, scene_model_path, created_at)
	VALUES (?, ?, ?, ?, ?, ?, ?)
	ON CONFLICT (case_id) DO UPDATE SET
	    location = excluded.location,
	    date = excluded.date,
	    investigator = excluded.investigator,
	    status = excluded.status,
	    scene_model_path = excluded.scene_model_path`
	if _, err := r.db.ReadWrite.ExecContext(ctx, stmt,
		c.Code, c.Location, c.Date, c.Investigator, string(c.Status), c.SceneModelPath, c.CreatedAt); err != nil {
		return 0, errors.Wrap(err, "upsert case", slog.String("code", c.Code))
	}
	var id int64
	if err := r.db.ReadWrite.GetContext(ctx, &id, `SELECT id FROM cases WHERE case_id = ?`, c.Code); err != nil {
		return 0, errors.Wrap(err, "select upserted case id")
	}
	return id, nil
}

// nextCode allocates the next CRX-<year>-NNNN display code. It derives the
// sequence from the highest numeric suffix already allocated for the year, so
// the sequence is never affected by how many cases currently exist. The
// comparison is on the parsed number, not the code string, so it keeps
// counting once a year's sequence grows past four digits.
func (r *CaseRepository) nextCode(ctx context.Context, year int) (string, error) {
	prefix := fmt.Sprintf("CRX-%d-", year)
	var last int64
	stmt := `SELECT COALESCE(MAX(CAST(substr(case_id, ?) AS INTEGER)), 0) FROM cases WHERE case_id LIKE ?`
	if err := r.db.ReadWrite.GetContext(ctx, &last, stmt, len(prefix)+1, prefix+"%"); err != nil {
		return "", errors.Wrap(err, "select max case sequence")
	}
	return fmt.Sprintf("%s%04d", prefix, last+1), nil
}
