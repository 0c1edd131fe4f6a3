package evidence_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/evidence"
	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/crimetryx/crimetryx/internal/testhelpers"
)

// fakeEvidenceBackend is an in-memory stand-in for the backend's evidence
// endpoints, enough to exercise the live source end to end.
type fakeEvidenceBackend struct {
	mu     sync.Mutex
	nextID int64
	items  []models.Evidence
}

func (b *fakeEvidenceBackend) mux() *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases/{caseID}/evidence", func(w http.ResponseWriter, _ *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		_ = json.NewEncoder(w).Encode(b.items)
	})
	mux.HandleFunc("POST /api/cases/{caseID}/evidence", func(w http.ResponseWriter, r *http.Request) {
		var req backend.AddEvidenceRequest
		_ = json.NewDecoder(r.Body).Decode(&req)
		b.mu.Lock()
		defer b.mu.Unlock()
		b.nextID++
		item := models.Evidence{
			ID:   b.nextID,
			Code: "E-" + pad3(b.nextID),
			Type: req.Type,
			Position: models.Position{
				X: req.X, Y: req.Y, Z: req.Z,
			},
			Notes: req.Notes,
			Hash:  "a1b2c3",
		}
		b.items = append(b.items, item)
		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(item)
	})
	mux.HandleFunc("PUT /api/cases/{caseID}/evidence/{evidenceID}", func(w http.ResponseWriter, r *http.Request) {
		var patch models.EvidencePatch
		_ = json.NewDecoder(r.Body).Decode(&patch)
		id, _ := strconv.ParseInt(r.PathValue("evidenceID"), 10, 64)
		b.mu.Lock()
		defer b.mu.Unlock()
		for i := range b.items {
			if b.items[i].ID == id && patch.Notes != nil {
				b.items[i].Notes = *patch.Notes
			}
		}
		w.WriteHeader(http.StatusNoContent)
	})
	return mux
}

func pad3(n int64) string {
	s := strconv.FormatInt(n, 10)
	for len(s) < 3 {
		s = "0" + s
	}
	return s
}

func TestCollection_NotesRoundTripThroughLiveSource(t *testing.T) {
	t.Parallel()

	fake := &fakeEvidenceBackend{}
	server := httptest.NewServer(fake.mux())
	t.Cleanup(server.Close)

	ctx := context.Background()
	logger := testhelpers.NewLogger(io.Discard)
	source := evidence.NewLiveSource(backend.NewClient(server.URL, logger))

	coll := evidence.NewCollection(source, 1, "demo", logger)
	require.NoError(t, coll.Load(ctx))
	require.NoError(t, coll.Arm(models.TypeFootprint))

	placed, err := coll.PlaceAt(ctx, models.Position{X: 2.1, Z: -0.4}, "")
	require.NoError(t, err)
	require.NoError(t, coll.UpdateNotes(ctx, placed.ID, "size 10, heading east"))

	// A fresh list from the backend reflects the patched notes.
	fresh := evidence.NewCollection(source, 1, "demo", logger)
	require.NoError(t, fresh.Load(ctx))
	items := fresh.Items()
	require.Len(t, items, 1)
	assert.Equal(t, "size 10, heading east", items[0].Notes)
	assert.Equal(t, models.TypeFootprint, items[0].Type)
}
