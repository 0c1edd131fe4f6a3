package store_test

import (
	"context"
	"testing"

	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/store"
	"github.com/stretchr/testify/require"
)

func newCaseForEvidence(t *testing.T, s *store.Store) models.Case {
	t.Helper()
	c, err := s.Cases.Create(context.Background(), models.CaseDraft{
		Location:     "221B Baker St",
		Date:         "2024-01-01",
		Investigator: "J. Watson",
	})
	require.NoError(t, err)
	return c
}

func TestEvidenceRepository_AddAssignsCodeAndHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	placed, err := s.Evidence.Add(ctx, c.ID, models.TypeWeaponKnife,
		models.Position{X: -1.8, Y: 0, Z: 0.5}, "found on floor", "J. Watson")
	require.NoError(t, err)
	require.Equal(t, "E-001", placed.Code)
	require.Len(t, placed.Hash, 64, "chain-of-custody digest must be a sha-256 hex string")
	require.NotEqual(t, models.PendingHash, placed.Hash)

	_, err = s.Evidence.Add(ctx, 9999, models.TypeOther, models.Position{}, "", "")
	require.ErrorIs(t, err, store.ErrCaseNotFound)
}

func TestEvidenceRepository_CodesNeverReusedAfterDelete(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	// Rapid place/delete/place must never produce duplicate display codes.
	seen := map[string]bool{}
	var lastID int64
	for i := 0; i < 10; i++ {
		placed, err := s.Evidence.Add(ctx, c.ID, models.TypeFootprint, models.Position{Z: float64(i)}, "", "")
		require.NoError(t, err)
		require.False(t, seen[placed.Code], "duplicate code %s", placed.Code)
		seen[placed.Code] = true
		lastID = placed.ID

		if i%2 == 1 {
			require.NoError(t, s.Evidence.Delete(ctx, lastID))
		}
	}

	items, err := s.Evidence.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	codes := map[string]bool{}
	for _, item := range items {
		require.False(t, codes[item.Code])
		codes[item.Code] = true
	}
}

func TestEvidenceRepository_PatchRecomputesHash(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	placed, err := s.Evidence.Add(ctx, c.ID, models.TypeFingerprint, models.Position{X: 1}, "", "")
	require.NoError(t, err)

	notes := "Clear ridge detail"
	require.NoError(t, s.Evidence.Patch(ctx, placed.ID, models.EvidencePatch{Notes: &notes}))

	items, err := s.Evidence.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, items, 1)
	require.Equal(t, notes, items[0].Notes)
	require.NotEqual(t, placed.Hash, items[0].Hash, "hash must change with the notes")

	require.ErrorIs(t, s.Evidence.Patch(ctx, 9999, models.EvidencePatch{Notes: &notes}), store.ErrEvidenceNotFound)

	// A patch with nothing to change is a no-op.
	require.NoError(t, s.Evidence.Patch(ctx, placed.ID, models.EvidencePatch{}))
}

func TestEvidenceRepository_ReplaceForCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	_, err := s.Evidence.Add(ctx, c.ID, models.TypeOther, models.Position{}, "stale", "")
	require.NoError(t, err)

	synced := []models.Evidence{
		{Code: "E-001", Type: models.TypeWeaponKnife, Position: models.Position{X: 1}, Hash: "abc"},
		{Code: "E-002", Type: models.TypeFootprint, Position: models.Position{Z: 2}, Hash: "def"},
	}
	require.NoError(t, s.Evidence.ReplaceForCase(ctx, c.ID, synced))

	items, err := s.Evidence.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, items, 2)
	require.Equal(t, "E-001", items[0].Code)
	require.Equal(t, "abc", items[0].Hash)
}
