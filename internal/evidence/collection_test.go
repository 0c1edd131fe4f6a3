package evidence_test

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetryx/crimetryx/internal/evidence"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/sqlite"
	"github.com/crimetryx/crimetryx/internal/store"
	"github.com/crimetryx/crimetryx/internal/testhelpers"
)

// newTestCase creates an offline store holding one fresh case and returns
// both so tests can open further collections over the same case.
func newTestCase(t *testing.T) (*store.Store, int64) {
	t.Helper()

	ctx := context.Background()
	db, err := sqlite.NewDatabase(ctx, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, db.Close())
	})
	st := store.New(db, testhelpers.NewLogger(io.Discard))

	c, err := st.Cases.Create(ctx, models.CaseDraft{
		Location: "Warehouse", Date: "2024-12-15", Investigator: "Det. Chen",
	})
	require.NoError(t, err)
	return st, c.ID
}

func newTestCollection(t *testing.T) *evidence.Collection {
	t.Helper()

	st, caseID := newTestCase(t)
	return evidence.NewCollection(evidence.NewOfflineSource(st), caseID, "demo",
		testhelpers.NewLogger(io.Discard))
}

func TestCollection_PlacementRequiresArmedType(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	coll := newTestCollection(t)
	require.NoError(t, coll.Load(ctx))

	// A scene click with nothing armed does not create a marker.
	_, err := coll.PlaceAt(ctx, models.Position{X: 1, Y: 0, Z: 2}, "")
	assert.ErrorIs(t, err, evidence.ErrNoTypeArmed)
	assert.Empty(t, coll.Items())

	assert.ErrorIs(t, coll.Arm("laser_pointer"), evidence.ErrInvalidType)

	require.NoError(t, coll.Arm(models.TypeBloodstainSpatter))
	placed, err := coll.PlaceAt(ctx, models.Position{X: 1, Y: 0, Z: 2}, "near doorway")
	require.NoError(t, err)
	assert.Equal(t, "E-001", placed.Code)
	assert.Equal(t, models.TypeBloodstainSpatter, placed.Type)
	assert.NotEqual(t, models.PendingHash, placed.Hash, "offline store assigns the custody hash")

	// Placement stays armed and the new marker is selected.
	armed, ok := coll.Armed()
	require.True(t, ok)
	assert.Equal(t, models.TypeBloodstainSpatter, armed)
	selected, ok := coll.Selected()
	require.True(t, ok)
	assert.Equal(t, placed.ID, selected.ID)

	coll.Disarm()
	_, err = coll.PlaceAt(ctx, models.Position{X: 3, Y: 0, Z: 1}, "")
	assert.ErrorIs(t, err, evidence.ErrNoTypeArmed)
}

func TestCollection_CodesNeverReusedAfterRemoval(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	coll := newTestCollection(t)
	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Arm(models.TypeShellCasing))

	first, err := coll.PlaceAt(ctx, models.Position{X: 0.5}, "")
	require.NoError(t, err)
	second, err := coll.PlaceAt(ctx, models.Position{X: 1.5}, "")
	require.NoError(t, err)
	assert.Equal(t, "E-001", first.Code)
	assert.Equal(t, "E-002", second.Code)

	require.NoError(t, coll.Remove(ctx, second.ID))

	third, err := coll.PlaceAt(ctx, models.Position{X: 2.5}, "")
	require.NoError(t, err)
	assert.Equal(t, "E-003", third.Code, "a removed marker's code must not come back")
	assert.Len(t, coll.Items(), 2)
}

func TestCollection_RemoveClearsSelection(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	coll := newTestCollection(t)
	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Arm(models.TypeFingerprint))

	placed, err := coll.PlaceAt(ctx, models.Position{X: 1}, "")
	require.NoError(t, err)
	_, ok := coll.Selected()
	require.True(t, ok)

	require.NoError(t, coll.Remove(ctx, placed.ID))
	_, ok = coll.Selected()
	assert.False(t, ok)

	assert.ErrorIs(t, coll.Select(placed.ID), evidence.ErrUnknownEvidence)
}

// lostWriteSource serves reads and placements but loses every notes write,
// like a backend that went away mid-session.
type lostWriteSource struct {
	evidence.Source
}

func (lostWriteSource) Update(context.Context, int64, int64, models.EvidencePatch) error {
	return errors.New("connection reset by peer")
}

func TestCollection_UpdateNotesSurvivesSourceFailure(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st, caseID := newTestCase(t)
	coll := evidence.NewCollection(lostWriteSource{evidence.NewOfflineSource(st)}, caseID, "demo",
		testhelpers.NewLogger(io.Discard))
	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Arm(models.TypeFiber))

	placed, err := coll.PlaceAt(ctx, models.Position{X: 1}, "initial")
	require.NoError(t, err)

	// The source write fails, yet the annotation is kept locally and the
	// edit reports success.
	require.NoError(t, coll.UpdateNotes(ctx, placed.ID, "grey wool, sent to lab"))
	items := coll.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "grey wool, sent to lab", items[0].Notes)

	// The store never saw the edit, confirming it was the local copy that
	// preserved it.
	stored, err := st.Evidence.ListForCase(ctx, caseID)
	require.NoError(t, err)
	require.Len(t, stored, 1)
	assert.Equal(t, "initial", stored[0].Notes)

	assert.ErrorIs(t, coll.UpdateNotes(ctx, 9999, "nope"), evidence.ErrUnknownEvidence)
}

func TestCollection_LoadSeedsCounterFromExistingCodes(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	st, caseID := newTestCase(t)
	logger := testhelpers.NewLogger(io.Discard)

	coll := evidence.NewCollection(evidence.NewOfflineSource(st), caseID, "demo", logger)
	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Arm(models.TypeWeaponKnife))
	for range 4 {
		_, err := coll.PlaceAt(ctx, models.Position{}, "")
		require.NoError(t, err)
	}

	// A second session over the same case continues the sequence.
	fresh := evidence.NewCollection(evidence.NewOfflineSource(st), caseID, "demo", logger)
	require.NoError(t, fresh.Load(ctx))
	require.NoError(t, fresh.Arm(models.TypeWeaponKnife))
	placed, err := fresh.PlaceAt(ctx, models.Position{}, "")
	require.NoError(t, err)
	assert.Equal(t, "E-005", placed.Code)
}
