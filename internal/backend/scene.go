package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"

	"github.com/crimetryx/crimetryx/internal/errors"
)

// SceneState is the reconstruction status of a case's 3D scene.
type SceneState string

const (
	SceneNotStarted SceneState = "not_started"
	SceneQueued     SceneState = "queued"
	SceneProcessing SceneState = "processing"
	SceneCompleted  SceneState = "completed"
	SceneFailed     SceneState = "failed"
)

// SceneStatus is the polled reconstruction state.
type SceneStatus struct {
	Status    SceneState `json:"status"`
	ModelPath string     `json:"model_path,omitempty"`
}

// UploadScene posts the scene video for photogrammetry and returns the
// reconstruction task id.
func (c *Client) UploadScene(ctx context.Context, caseID int64, filename string, video io.Reader) (string, error) {
	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("video", filename)
	if err != nil {
		return "", errors.Wrap(err, "create multipart field")
	}
	if _, err = io.Copy(part, video); err != nil {
		return "", errors.Wrap(err, "copy video into request")
	}
	if err = writer.Close(); err != nil {
		return "", errors.Wrap(err, "finish multipart body")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/api/cases/%d/upload-scene", c.baseURL, caseID), &body)
	if err != nil {
		return "", errors.Wrap(err, "create upload request")
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())

	var out struct {
		Success bool   `json:"success"`
		TaskID  string `json:"task_id"`
		Message string `json:"message"`
	}
	if err = c.do(req, &out); err != nil {
		return "", err
	}
	if !out.Success {
		return "", &APIError{Status: http.StatusUnprocessableEntity, Message: out.Message}
	}
	return out.TaskID, nil
}

// GetSceneStatus returns the current reconstruction state.
func (c *Client) GetSceneStatus(ctx context.Context, caseID int64) (SceneStatus, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/cases/%d/scene-status", caseID), nil)
	if err != nil {
		return SceneStatus{}, err
	}
	var status SceneStatus
	if err = c.do(req, &status); err != nil {
		return SceneStatus{}, err
	}
	return status, nil
}

// Report streams the case's PDF report into w.
func (c *Client) Report(ctx context.Context, caseID int64, w io.Writer) error {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/cases/%d/report", caseID), nil)
	if err != nil {
		return err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(ErrUnreachable, "request report", slog.Int64("caseID", caseID))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.LogAttrs(ctx, slog.LevelError, "close report body", errors.SlogError(closeErr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(ErrNotFound, "request report", slog.Int64("caseID", caseID))
	}
	if resp.StatusCode != http.StatusOK {
		return &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if _, err = io.Copy(w, resp.Body); err != nil {
		return errors.Wrap(err, "stream report", slog.Int64("caseID", caseID))
	}
	return nil
}
