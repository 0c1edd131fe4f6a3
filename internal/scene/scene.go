// Package scene tracks the photogrammetry reconstruction of a case: a video
// upload kicks off processing on the backend, and the client polls until the
// 3D model is ready.
package scene

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
)

var ErrProcessingFailed = errors.NewSentinel("scene processing failed")

// pollInterval matches the viewer's status refresh cadence.
const pollInterval = 2 * time.Second

// Tracker uploads scene footage and follows its processing status.
type Tracker struct {
	client   *backend.Client
	logger   *slog.Logger
	interval time.Duration
}

func NewTracker(client *backend.Client, logger *slog.Logger) *Tracker {
	return &Tracker{
		client:   client,
		logger:   logger.With("source", "scene.Tracker"),
		interval: pollInterval,
	}
}

// SetPollInterval overrides how often Wait polls the backend.
func (t *Tracker) SetPollInterval(d time.Duration) {
	t.interval = d
}

// Upload submits scene footage for reconstruction and returns the backend's
// task id.
func (t *Tracker) Upload(ctx context.Context, caseID int64, filename string, video io.Reader) (string, error) {
	taskID, err := t.client.UploadScene(ctx, caseID, filename, video)
	if err != nil {
		return "", errors.Wrap(err, "upload scene", slog.Int64("case_id", caseID))
	}
	t.logger.LogAttrs(ctx, slog.LevelInfo, "scene upload accepted",
		slog.Int64("case_id", caseID), slog.String("task_id", taskID))
	return taskID, nil
}

// Status asks the backend where processing stands right now.
func (t *Tracker) Status(ctx context.Context, caseID int64) (backend.SceneStatus, error) {
	return t.client.GetSceneStatus(ctx, caseID)
}

// Wait polls until processing completes, fails, or ctx is done. On success
// it returns the final status carrying the model path.
func (t *Tracker) Wait(ctx context.Context, caseID int64) (backend.SceneStatus, error) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		status, err := t.client.GetSceneStatus(ctx, caseID)
		if err != nil {
			return backend.SceneStatus{}, errors.Wrap(err, "poll scene status",
				slog.Int64("case_id", caseID))
		}
		switch status.Status {
		case backend.SceneCompleted:
			t.logger.LogAttrs(ctx, slog.LevelInfo, "scene model ready",
				slog.Int64("case_id", caseID), slog.String("model_path", status.ModelPath))
			return status, nil
		case backend.SceneFailed:
			return status, errors.Wrap(ErrProcessingFailed, "poll scene status",
				slog.Int64("case_id", caseID))
		}

		select {
		case <-ctx.Done():
			return backend.SceneStatus{}, errors.Wrap(ctx.Err(), "poll scene status")
		case <-ticker.C:
		}
	}
}
