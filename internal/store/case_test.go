package store_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"time"

	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/store"
	"github.com/stretchr/testify/require"
)

func TestCaseRepository_CreateAssignsSequentialCodes(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	year := time.Now().Year()

	first, err := s.Cases.Create(ctx, models.CaseDraft{
		Location:     "221B Baker St",
		Date:         "2024-01-01",
		Investigator: "J. Watson",
	})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CRX-%d-0001", year), first.Code)
	require.Equal(t, models.StatusActive, first.Status)

	second, err := s.Cases.Create(ctx, models.CaseDraft{
		Location:     "Warehouse District",
		Date:         "2024-02-02",
		Investigator: "A. Dupin",
	})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CRX-%d-0002", year), second.Code)

	require.Regexp(t, regexp.MustCompile(`^CRX-\d{4}-\d{4}$`), second.Code)
}

func TestCaseRepository_ListMostRecentFirst(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	_, err := s.Cases.Create(ctx, models.CaseDraft{Location: "A", Date: "2024-01-01", Investigator: "X"})
	require.NoError(t, err)
	second, err := s.Cases.Create(ctx, models.CaseDraft{Location: "B", Date: "2024-01-02", Investigator: "Y"})
	require.NoError(t, err)

	cases, err := s.Cases.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)
	require.Equal(t, second.Code, cases[0].Code)
}

func TestCaseRepository_Get(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	created, err := s.Cases.Create(ctx, models.CaseDraft{Location: "A", Date: "2024-01-01", Investigator: "X"})
	require.NoError(t, err)

	got, err := s.Cases.Get(ctx, created.ID)
	require.NoError(t, err)
	require.Equal(t, created.Code, got.Code)

	_, err = s.Cases.Get(ctx, 9999)
	require.ErrorIs(t, err, store.ErrCaseNotFound)
}

func TestCaseRepository_UpsertMirrorsBackendStatus(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	c := models.Case{
		Code:         "CRX-2024-0042",
		Location:     "Backend-owned case",
		Date:         "2024-03-03",
		Investigator: "Remote",
		Status:       models.StatusProcessing,
		CreatedAt:    models.Now(),
	}
	id, err := s.Cases.Upsert(ctx, c)
	require.NoError(t, err)

	c.Status = models.StatusAnalyzed
	c.Date = "2024-03-04" // backend-side correction
	again, err := s.Cases.Upsert(ctx, c)
	require.NoError(t, err)
	require.Equal(t, id, again, "upsert must key on display code")

	got, err := s.Cases.Get(ctx, id)
	require.NoError(t, err)
	require.Equal(t, models.StatusAnalyzed, got.Status)
	require.Equal(t, "2024-03-04", got.Date)
}

func TestCaseRepository_CodeSequencePassesFourDigits(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	year := time.Now().Year()

	// "CRX-2024-10000" sorts before "CRX-2024-9999" as a string; the
	// allocator must compare the numeric suffix instead.
	for _, code := range []string{
		fmt.Sprintf("CRX-%d-9999", year),
		fmt.Sprintf("CRX-%d-10000", year),
	} {
		_, err := s.Cases.Upsert(ctx, models.Case{
			Code:         code,
			Location:     "Archive",
			Date:         "2024-01-01",
			Investigator: "Remote",
			Status:       models.StatusClosed,
			CreatedAt:    models.Now(),
		})
		require.NoError(t, err)
	}

	created, err := s.Cases.Create(ctx, models.CaseDraft{Location: "A", Date: "2024-01-01", Investigator: "X"})
	require.NoError(t, err)
	require.Equal(t, fmt.Sprintf("CRX-%d-10001", year), created.Code)
}

func TestStore_Seed(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Seed(ctx))

	cases, err := s.Cases.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	// Seeding twice must not duplicate.
	require.NoError(t, s.Seed(ctx))
	cases, err = s.Cases.List(ctx)
	require.NoError(t, err)
	require.Len(t, cases, 2)

	// The analyzed walkthrough case carries the demo evidence.
	var analyzed models.Case
	for _, c := range cases {
		if c.Status == models.StatusAnalyzed {
			analyzed = c
		}
	}
	require.NotZero(t, analyzed.ID)
	items, err := s.Evidence.ListForCase(ctx, analyzed.ID)
	require.NoError(t, err)
	require.Len(t, items, 5)
	require.Equal(t, "E-001", items[0].Code)
}
