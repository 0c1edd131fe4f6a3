// Package pipeline drives the four-stage analysis of a case: the scene
// interpreter, the evidence reasoner, the timeline builder, and the
// hypothesis challenger. Stages form a dependency graph and are scheduled
// in topological order.
package pipeline

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

var (
	ErrUnknownStage  = errors.NewSentinel("unknown pipeline stage")
	ErrStageNotReady = errors.NewSentinel("stage dependencies have not completed")
	ErrStageFailed   = errors.NewSentinel("stage failed")
)

// stageDeps is the dependency graph. models.AgentIDs is a topological order
// of this graph.
var stageDeps = map[models.AgentID][]models.AgentID{
	models.AgentSceneInterpreter:     nil,
	models.AgentEvidenceReasoner:     {models.AgentSceneInterpreter},
	models.AgentTimelineBuilder:      {models.AgentSceneInterpreter, models.AgentEvidenceReasoner},
	models.AgentHypothesisChallenger: {models.AgentTimelineBuilder},
}

// Dependencies returns the stages that must complete before agent may run.
func Dependencies(agent models.AgentID) []models.AgentID {
	return append([]models.AgentID(nil), stageDeps[agent]...)
}

// Sink receives completed stage results and the hypotheses derived from
// them, typically for persistence.
type Sink interface {
	PutResult(ctx context.Context, caseID int64, result models.StageResult) error
	ReplaceHypotheses(ctx context.Context, caseID int64, scenarios []models.Scenario) error
	ApplyChallenge(ctx context.Context, caseID int64, challenge models.Challenge) error
}

// discardSink is used when the caller has nowhere to persist results.
type discardSink struct{}

func (discardSink) PutResult(context.Context, int64, models.StageResult) error { return nil }
func (discardSink) ReplaceHypotheses(context.Context, int64, []models.Scenario) error {
	return nil
}
func (discardSink) ApplyChallenge(context.Context, int64, models.Challenge) error { return nil }

// Runner holds the pipeline state for one case session. Each stage is idle
// until run, and a re-run overwrites whatever state the stage was in, so an
// errored stage never wedges the pipeline.
type Runner struct {
	executor Executor
	sink     Sink
	input    Input
	logger   *slog.Logger
	pause    time.Duration
	sleep    func(ctx context.Context, d time.Duration) error

	mu         sync.Mutex
	results    map[models.AgentID]models.StageResult
	hypotheses []models.Scenario
}

// interStagePause is the breathing room between stages in a full run.
const interStagePause = 500 * time.Millisecond

// Option adjusts a Runner.
type Option func(*Runner)

// WithPause overrides the pause between stages in RunAll.
func WithPause(d time.Duration) Option {
	return func(r *Runner) { r.pause = d }
}

func NewRunner(executor Executor, sink Sink, input Input, logger *slog.Logger, opts ...Option) *Runner {
	if sink == nil {
		sink = discardSink{}
	}
	r := &Runner{
		executor: executor,
		sink:     sink,
		input:    input,
		logger:   logger.With("source", "pipeline.Runner", "case_id", input.Case.ID),
		pause:    interStagePause,
		sleep:    sleepContext,
		results:  make(map[models.AgentID]models.StageResult),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Restore preloads previously persisted stage results, typically when
// reopening a case. Completed stages count as satisfied dependencies.
func (r *Runner) Restore(results []models.StageResult) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.input.Prior == nil {
		r.input.Prior = make(map[models.AgentID]models.AgentOutput)
	}
	for _, result := range results {
		if models.ValidAgentID(result.Agent) {
			r.results[result.Agent] = result
			if result.Status == models.StageCompleted {
				r.input.Prior[result.Agent] = result.Output
			}
		}
	}

	// Rebuild the hypothesis set the same way the live stages would have.
	if builder, ok := r.results[models.AgentTimelineBuilder]; ok && builder.Status == models.StageCompleted {
		r.hypotheses = append([]models.Scenario(nil), builder.Output.Scenarios...)
		if challenger, ok := r.results[models.AgentHypothesisChallenger]; ok && challenger.Status == models.StageCompleted {
			for _, challenge := range challenger.Output.Challenges {
				for i := range r.hypotheses {
					if r.hypotheses[i].ScenarioID == challenge.ScenarioID {
						r.hypotheses[i].Confidence = challenge.RevisedConfidence
						r.hypotheses[i].Contradictions = challenge.Contradictions
					}
				}
			}
		}
	}
}

// Status returns the lifecycle state of one stage.
func (r *Runner) Status(agent models.AgentID) models.StageStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	if result, ok := r.results[agent]; ok {
		return result.Status
	}
	return models.StageIdle
}

// Result returns the stored outcome of one stage, if it has run.
func (r *Runner) Result(agent models.AgentID) (models.StageResult, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result, ok := r.results[agent]
	return result, ok
}

// Results returns all stage outcomes in canonical stage order. Stages that
// never ran are reported idle.
func (r *Runner) Results() []models.StageResult {
	r.mu.Lock()
	defer r.mu.Unlock()
	results := make([]models.StageResult, 0, len(models.AgentIDs))
	for _, agent := range models.AgentIDs {
		if result, ok := r.results[agent]; ok {
			results = append(results, result)
			continue
		}
		results = append(results, models.StageResult{Agent: agent, Status: models.StageIdle})
	}
	return results
}

// Hypotheses returns the current scenario set: the timeline builder's
// output, with any challenger revisions folded in.
func (r *Runner) Hypotheses() []models.Scenario {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]models.Scenario(nil), r.hypotheses...)
}

// RunStage executes one stage. The stage's dependencies must all be in the
// completed state; otherwise ErrStageNotReady names the missing ones.
func (r *Runner) RunStage(ctx context.Context, agent models.AgentID) (models.StageResult, error) {
	if !models.ValidAgentID(agent) {
		return models.StageResult{}, errors.Wrap(ErrUnknownStage, "run stage",
			slog.String("agent", string(agent)))
	}
	if missing := r.missingDeps(agent); len(missing) > 0 {
		return models.StageResult{}, errors.Wrap(ErrStageNotReady, "run stage",
			slog.String("agent", string(agent)),
			slog.String("missing", joinAgents(missing)))
	}

	r.setStatus(agent, models.StageRunning)
	r.logger.LogAttrs(ctx, slog.LevelInfo, "stage started", slog.String("agent", string(agent)))

	result, err := r.executor.Execute(ctx, r.snapshot(), agent)
	if err != nil {
		result = models.StageResult{Agent: agent, Status: models.StageError, Error: err.Error()}
		r.store(ctx, result)
		return models.StageResult{}, errors.Wrap(err, "run stage", slog.String("agent", string(agent)))
	}
	result.Agent = agent
	if result.Status == "" {
		result.Status = models.StageCompleted
	}
	r.store(ctx, result)

	r.logger.LogAttrs(ctx, slog.LevelInfo, "stage finished",
		slog.String("agent", string(agent)),
		slog.String("status", string(result.Status)))

	if result.Status == models.StageError {
		return result, errors.Wrap(ErrStageFailed, "run stage",
			slog.String("agent", string(agent)), slog.String("cause", result.Error))
	}
	return result, nil
}

// RunAll executes every stage in dependency order, pausing briefly between
// stages, and stops at the first failure.
func (r *Runner) RunAll(ctx context.Context) error {
	for i, agent := range models.AgentIDs {
		if i > 0 && r.pause > 0 {
			if err := r.sleep(ctx, r.pause); err != nil {
				return errors.Wrap(err, "pipeline interrupted")
			}
		}
		if _, err := r.RunStage(ctx, agent); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) missingDeps(agent models.AgentID) []models.AgentID {
	r.mu.Lock()
	defer r.mu.Unlock()
	var missing []models.AgentID
	for _, dep := range stageDeps[agent] {
		if result, ok := r.results[dep]; !ok || result.Status != models.StageCompleted {
			missing = append(missing, dep)
		}
	}
	return missing
}

func (r *Runner) setStatus(agent models.AgentID, status models.StageStatus) {
	r.mu.Lock()
	defer r.mu.Unlock()
	result := r.results[agent]
	result.Agent = agent
	result.Status = status
	r.results[agent] = result
}

// snapshot copies the input so an executor never races stage bookkeeping.
func (r *Runner) snapshot() Input {
	r.mu.Lock()
	defer r.mu.Unlock()
	prior := make(map[models.AgentID]models.AgentOutput, len(r.input.Prior))
	for agent, output := range r.input.Prior {
		prior[agent] = output
	}
	return Input{
		Case:     r.input.Case,
		Evidence: append([]models.Evidence(nil), r.input.Evidence...),
		Prior:    prior,
	}
}

// store records a finished stage, feeds its output to downstream stages,
// folds hypotheses, and persists through the sink. Sink failures are logged,
// not fatal: the in-memory pipeline state is the session's source of truth.
func (r *Runner) store(ctx context.Context, result models.StageResult) {
	r.mu.Lock()
	r.results[result.Agent] = result
	if result.Status == models.StageCompleted {
		if r.input.Prior == nil {
			r.input.Prior = make(map[models.AgentID]models.AgentOutput)
		}
		r.input.Prior[result.Agent] = result.Output

		switch result.Agent {
		case models.AgentTimelineBuilder:
			// The scenario set is replaced wholesale, never merged with a
			// previous run's scenarios.
			r.hypotheses = append([]models.Scenario(nil), result.Output.Scenarios...)
		case models.AgentHypothesisChallenger:
			for _, challenge := range result.Output.Challenges {
				for i := range r.hypotheses {
					if r.hypotheses[i].ScenarioID == challenge.ScenarioID {
						r.hypotheses[i].Confidence = challenge.RevisedConfidence
						r.hypotheses[i].Contradictions = challenge.Contradictions
					}
				}
			}
		}
	}
	caseID := r.input.Case.ID
	hypotheses := append([]models.Scenario(nil), r.hypotheses...)
	r.mu.Unlock()

	if err := r.sink.PutResult(ctx, caseID, result); err != nil {
		r.logger.LogAttrs(ctx, slog.LevelWarn, "persisting stage result failed",
			slog.String("agent", string(result.Agent)), errors.SlogError(err))
	}
	if result.Status != models.StageCompleted {
		return
	}
	switch result.Agent {
	case models.AgentTimelineBuilder:
		if err := r.sink.ReplaceHypotheses(ctx, caseID, hypotheses); err != nil {
			r.logger.LogAttrs(ctx, slog.LevelWarn, "persisting hypotheses failed", errors.SlogError(err))
		}
	case models.AgentHypothesisChallenger:
		for _, challenge := range result.Output.Challenges {
			if err := r.sink.ApplyChallenge(ctx, caseID, challenge); err != nil {
				r.logger.LogAttrs(ctx, slog.LevelWarn, "persisting challenge failed",
					slog.String("scenario_id", challenge.ScenarioID), errors.SlogError(err))
			}
		}
	}
}

func joinAgents(agents []models.AgentID) string {
	names := make([]string, len(agents))
	for i, agent := range agents {
		names[i] = string(agent)
	}
	return strings.Join(names, ", ")
}
