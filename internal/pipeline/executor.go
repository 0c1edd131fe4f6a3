package pipeline

import (
	"context"
	"log/slog"

	"github.com/crimetryx/crimetryx/internal/backend"
	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

// Input is everything an agent run gets to look at: the case, its evidence,
// and the outputs of the stages that already completed.
type Input struct {
	Case     models.Case
	Evidence []models.Evidence
	Prior    map[models.AgentID]models.AgentOutput
}

// Executor runs one analysis stage somewhere: on the backend, against a
// model API, or canned.
type Executor interface {
	Execute(ctx context.Context, input Input, agent models.AgentID) (models.StageResult, error)
}

// BackendExecutor delegates stage execution to the case-management backend,
// which holds its own copy of the case data.
type BackendExecutor struct {
	client *backend.Client
}

func NewBackendExecutor(client *backend.Client) *BackendExecutor {
	return &BackendExecutor{client: client}
}

func (e *BackendExecutor) Execute(ctx context.Context, input Input, agent models.AgentID) (models.StageResult, error) {
	return e.client.RunAgent(ctx, input.Case.ID, agent)
}

// FallbackExecutor runs stages on the backend and degrades to the standby
// executor only when the backend is unreachable. A backend that answered
// with a stage failure produced a real result, which is kept.
type FallbackExecutor struct {
	live    Executor
	standby Executor
	logger  *slog.Logger
}

func NewFallbackExecutor(live, standby Executor, logger *slog.Logger) *FallbackExecutor {
	return &FallbackExecutor{live: live, standby: standby, logger: logger}
}

func (e *FallbackExecutor) Execute(ctx context.Context, input Input, agent models.AgentID) (models.StageResult, error) {
	result, err := e.live.Execute(ctx, input, agent)
	if err == nil {
		return result, nil
	}
	if !errors.Is(err, backend.ErrUnreachable) {
		return models.StageResult{}, err
	}
	e.logger.LogAttrs(ctx, slog.LevelWarn, "backend unreachable, running agent locally",
		slog.String("agent", string(agent)), errors.SlogError(err))
	return e.standby.Execute(ctx, input, agent)
}
