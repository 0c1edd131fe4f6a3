package scene_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/scene"
	"github.com/crimetryx/crimetryx/internal/testhelpers"
)

func TestTracker_UploadAndWait(t *testing.T) {
	t.Parallel()

	// The backend reports queued, then processing, then completed.
	var polls atomic.Int64
	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/cases/{caseID}/upload-scene", func(w http.ResponseWriter, r *http.Request) {
		_, _, err := r.FormFile("video")
		require.NoError(t, err)
		_ = json.NewEncoder(w).Encode(map[string]any{"success": true, "task_id": "task-77"})
	})
	mux.HandleFunc("GET /api/cases/{caseID}/scene-status", func(w http.ResponseWriter, _ *http.Request) {
		status := backend.SceneStatus{Status: backend.SceneQueued}
		switch polls.Add(1) {
		case 2:
			status.Status = backend.SceneProcessing
		case 3:
			status = backend.SceneStatus{Status: backend.SceneCompleted, ModelPath: "/models/42/scene.glb"}
		}
		_ = json.NewEncoder(w).Encode(status)
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tracker := scene.NewTracker(backend.NewClient(server.URL, testhelpers.NewLogger(io.Discard)),
		testhelpers.NewLogger(io.Discard))
	tracker.SetPollInterval(time.Millisecond)

	taskID, err := tracker.Upload(context.Background(), 42, "walkthrough.mp4",
		bytes.NewReader([]byte("not really a video")))
	require.NoError(t, err)
	assert.Equal(t, "task-77", taskID)

	status, err := tracker.Wait(context.Background(), 42)
	require.NoError(t, err)
	assert.Equal(t, backend.SceneCompleted, status.Status)
	assert.Equal(t, "/models/42/scene.glb", status.ModelPath)
	assert.GreaterOrEqual(t, polls.Load(), int64(3))
}

func TestTracker_WaitSurfacesFailure(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases/{caseID}/scene-status", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(backend.SceneStatus{Status: backend.SceneFailed})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tracker := scene.NewTracker(backend.NewClient(server.URL, testhelpers.NewLogger(io.Discard)),
		testhelpers.NewLogger(io.Discard))
	tracker.SetPollInterval(time.Millisecond)

	_, err := tracker.Wait(context.Background(), 42)
	assert.ErrorIs(t, err, scene.ErrProcessingFailed)
}

func TestTracker_WaitStopsWhenContextEnds(t *testing.T) {
	t.Parallel()

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/cases/{caseID}/scene-status", func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(backend.SceneStatus{Status: backend.SceneProcessing})
	})
	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)

	tracker := scene.NewTracker(backend.NewClient(server.URL, testhelpers.NewLogger(io.Discard)),
		testhelpers.NewLogger(io.Discard))
	tracker.SetPollInterval(time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 25*time.Millisecond)
	defer cancel()
	_, err := tracker.Wait(ctx, 42)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}
