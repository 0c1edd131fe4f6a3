// Package backend is the typed HTTP client for the Crimetryx case-management
// API. The server itself is an external collaborator; this package only
// encodes its REST contract.
package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	// ErrUnreachable wraps transport-level failures: connection refused, DNS,
	// timeouts. Callers use it to decide whether a fallback source may step in.
	ErrUnreachable = errors.NewSentinel("backend unreachable")
	// ErrNotFound is returned for 404 responses.
	ErrNotFound = errors.NewSentinel("not found")
)

// APIError is a non-2xx response from a reachable backend.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("backend returned %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("backend returned %d", e.Status)
}

const defaultTimeout = 10 * time.Second

type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
}

func NewClient(baseURL string, logger *slog.Logger) *Client {
	return &Client{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger.With("source", "backend.Client"),
	}
}

// do executes the request and decodes a JSON response body into out when out
// is non-nil. Transport failures wrap ErrUnreachable; non-2xx responses map
// to ErrNotFound or APIError.
func (c *Client) do(req *http.Request, out any) error {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return errors.Wrap(ErrUnreachable, "request backend",
			slog.String("method", req.Method), slog.String("url", req.URL.String()), slog.String("cause", err.Error()))
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			c.logger.LogAttrs(req.Context(), slog.LevelError, "close response body", errors.SlogError(closeErr))
		}
	}()

	if resp.StatusCode == http.StatusNotFound {
		return errors.Wrap(ErrNotFound, "request backend", slog.String("url", req.URL.String()))
	}
	if resp.StatusCode < http.StatusOK || resp.StatusCode >= http.StatusMultipleChoices {
		return &APIError{Status: resp.StatusCode, Message: decodeErrorMessage(resp.Body)}
	}

	if out == nil {
		return nil
	}
	if err = json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response", slog.String("url", req.URL.String()))
	}
	return nil
}

func decodeErrorMessage(r io.Reader) string {
	var body struct {
		Error string `json:"error"`
	}
	if err := json.NewDecoder(r).Decode(&body); err != nil {
		return ""
	}
	return body.Error
}

func (c *Client) newRequest(ctx context.Context, method, path string, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, errors.Wrap(err, "encode request body")
		}
		reader = bytes.NewReader(encoded)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, errors.Wrap(err, "create request", slog.String("path", path))
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req, nil
}

// Healthy reports whether the backend answers its health check.
func (c *Client) Healthy(ctx context.Context) error {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/health", nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// Login submits credentials and returns the authenticated identity. An auth
// rejection from a reachable backend comes back as *APIError.
func (c *Client) Login(ctx context.Context, investigatorID, password string) (models.Identity, error) {
	payload := struct {
		InvestigatorID string `json:"investigator_id"`
		Password       string `json:"password"`
	}{InvestigatorID: investigatorID, Password: password}

	req, err := c.newRequest(ctx, http.MethodPost, "/api/auth/login", payload)
	if err != nil {
		return models.Identity{}, err
	}

	var out struct {
		Success bool            `json:"success"`
		User    models.Identity `json:"user"`
	}
	if err = c.do(req, &out); err != nil {
		return models.Identity{}, err
	}
	if !out.Success {
		return models.Identity{}, &APIError{Status: http.StatusUnauthorized, Message: "login rejected"}
	}
	return out.User, nil
}

// ListCases returns all cases known to the backend, most recent first.
func (c *Client) ListCases(ctx context.Context) ([]models.Case, error) {
	req, err := c.newRequest(ctx, http.MethodGet, "/api/cases", nil)
	if err != nil {
		return nil, err
	}
	var cases []models.Case
	if err = c.do(req, &cases); err != nil {
		return nil, err
	}
	return cases, nil
}

// CreateCase opens a new case.
func (c *Client) CreateCase(ctx context.Context, draft models.CaseDraft) (models.Case, error) {
	req, err := c.newRequest(ctx, http.MethodPost, "/api/cases", draft)
	if err != nil {
		return models.Case{}, err
	}
	var created models.Case
	if err = c.do(req, &created); err != nil {
		return models.Case{}, err
	}
	return created, nil
}

// GetCase returns a case with its evidence, agent logs, and hypotheses embedded.
func (c *Client) GetCase(ctx context.Context, caseID int64) (models.CaseDetail, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/cases/%d", caseID), nil)
	if err != nil {
		return models.CaseDetail{}, err
	}
	var detail models.CaseDetail
	if err = c.do(req, &detail); err != nil {
		return models.CaseDetail{}, err
	}
	return detail, nil
}

// ListEvidence returns the case's evidence markers.
func (c *Client) ListEvidence(ctx context.Context, caseID int64) ([]models.Evidence, error) {
	req, err := c.newRequest(ctx, http.MethodGet, fmt.Sprintf("/api/cases/%d/evidence", caseID), nil)
	if err != nil {
		return nil, err
	}
	var items []models.Evidence
	if err = c.do(req, &items); err != nil {
		return nil, err
	}
	return items, nil
}

// AddEvidenceRequest is the POST body for placing a marker.
type AddEvidenceRequest struct {
	Type      models.EvidenceType `json:"type"`
	X         float64             `json:"x"`
	Y         float64             `json:"y"`
	Z         float64             `json:"z"`
	Notes     string              `json:"notes,omitempty"`
	CreatedBy string              `json:"created_by,omitempty"`
}

// AddEvidence places a marker; the backend assigns the display code and
// chain-of-custody hash.
func (c *Client) AddEvidence(ctx context.Context, caseID int64, request AddEvidenceRequest) (models.Evidence, error) {
	req, err := c.newRequest(ctx, http.MethodPost, fmt.Sprintf("/api/cases/%d/evidence", caseID), request)
	if err != nil {
		return models.Evidence{}, err
	}
	var created models.Evidence
	if err = c.do(req, &created); err != nil {
		return models.Evidence{}, err
	}
	return created, nil
}

// UpdateEvidence applies a partial patch to a marker.
func (c *Client) UpdateEvidence(ctx context.Context, caseID, evidenceID int64, patch models.EvidencePatch) error {
	req, err := c.newRequest(ctx, http.MethodPut,
		fmt.Sprintf("/api/cases/%d/evidence/%d", caseID, evidenceID), patch)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// DeleteEvidence removes a marker.
func (c *Client) DeleteEvidence(ctx context.Context, caseID, evidenceID int64) error {
	req, err := c.newRequest(ctx, http.MethodDelete,
		fmt.Sprintf("/api/cases/%d/evidence/%d", caseID, evidenceID), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// RunAgent executes one analysis stage on the backend.
func (c *Client) RunAgent(ctx context.Context, caseID int64, agent models.AgentID) (models.StageResult, error) {
	req, err := c.newRequest(ctx, http.MethodPost,
		fmt.Sprintf("/api/cases/%d/agents/%s/run", caseID, agent), nil)
	if err != nil {
		return models.StageResult{}, err
	}
	var result models.StageResult
	if err = c.do(req, &result); err != nil {
		return models.StageResult{}, err
	}
	result.Agent = agent
	return result, nil
}
