package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/crimetryx/crimetryx/internal/errors"
	"github.com/crimetryx/crimetryx/internal/models"
)

var ErrNoAPIKey = errors.NewSentinel("model API key not configured")

// DirectExecutor runs stages as plain chat completions against a model API.
// Each stage is a single prompt; the agent framing lives entirely in the
// prompt text.
type DirectExecutor struct {
	client *openai.Client
	model  string
	logger *slog.Logger
}

const defaultModel = openai.GPT3Dot5Turbo1106

// NewDirectExecutor builds an executor for the given API key. The key may be
// empty; Execute then fails with ErrNoAPIKey so a fallback can take over.
func NewDirectExecutor(apiKey string, logger *slog.Logger) *DirectExecutor {
	e := &DirectExecutor{
		model:  defaultModel,
		logger: logger.With("source", "pipeline.DirectExecutor"),
	}
	if apiKey != "" {
		e.client = openai.NewClient(apiKey)
	}
	return e
}

func (e *DirectExecutor) Execute(ctx context.Context, input Input, agent models.AgentID) (models.StageResult, error) {
	if e.client == nil {
		return models.StageResult{}, errors.Wrap(ErrNoAPIKey, "run agent",
			slog.String("agent", string(agent)))
	}

	prompt, temperature, maxTokens, err := stagePrompt(input, agent)
	if err != nil {
		return models.StageResult{}, err
	}

	start := time.Now()
	completion, err := e.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       e.model,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	elapsed := time.Since(start).Seconds()
	if err != nil {
		return models.StageResult{
			Agent:         agent,
			Status:        models.StageError,
			ExecutionTime: elapsed,
			Error:         err.Error(),
		}, nil
	}

	raw := completion.Choices[0].Message.Content
	var output models.AgentOutput
	if jsonErr := json.Unmarshal([]byte(raw), &output); jsonErr != nil {
		// The model ignored the JSON instruction; keep the prose as reasoning
		// rather than losing the run.
		e.logger.LogAttrs(ctx, slog.LevelWarn, "agent returned non-JSON output",
			slog.String("agent", string(agent)))
		output = models.AgentOutput{Reasoning: raw}
	}

	return models.StageResult{
		Agent:         agent,
		Status:        models.StageCompleted,
		ExecutionTime: elapsed,
		Output:        output,
	}, nil
}

// stagePrompt renders the prompt for one agent along with its sampling
// parameters. The timeline builder samples warmer to diversify scenarios.
func stagePrompt(input Input, agent models.AgentID) (prompt string, temperature float32, maxTokens int, err error) {
	caseJSON, err := json.MarshalIndent(input.Case, "", "  ")
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "encode case")
	}
	evidenceJSON, err := json.MarshalIndent(input.Evidence, "", "  ")
	if err != nil {
		return "", 0, 0, errors.Wrap(err, "encode evidence")
	}

	priorJSON := func(id models.AgentID) []byte {
		data, marshalErr := json.MarshalIndent(input.Prior[id], "", "  ")
		if marshalErr != nil {
			return []byte("{}")
		}
		return data
	}

	switch agent {
	case models.AgentSceneInterpreter:
		prompt = fmt.Sprintf(`You are a forensic scene interpreter AI agent. Analyze the following crime scene data and provide spatial analysis.

SCENE DATA:
%s

EVIDENCE LOCATIONS:
%s

Provide your analysis in the following JSON format:
{
    "entry_exit_points": [
        {"location": "description", "coordinates": {"x": 0, "y": 0, "z": 0}, "type": "entry/exit"}
    ],
    "visibility_analysis": [
        {"from": "location A", "to": "location B", "visible": true/false, "obstructions": []}
    ],
    "distance_constraints": [
        {"from": "evidence A", "to": "evidence B", "distance_meters": 0.0, "significance": "description"}
    ],
    "spatial_observations": [
        "observation 1",
        "observation 2"
    ],
    "reasoning": "Your detailed reasoning about the scene layout"
}

Respond ONLY with valid JSON.`, caseJSON, evidenceJSON)
		return prompt, 0.3, 2000, nil

	case models.AgentEvidenceReasoner:
		prompt = fmt.Sprintf(`You are a forensic evidence reasoning AI agent. Analyze the evidence in context of the scene.

SCENE ANALYSIS:
%s

EVIDENCE LIST:
%s

Provide your analysis in the following JSON format:
{
    "evidence_analysis": [
        {
            "evidence_id": "E-001",
            "type": "bloodstain/weapon/footprint/etc",
            "findings": ["finding 1", "finding 2"],
            "inferred_direction": "description if applicable",
            "consistency_score": 0.0-1.0
        }
    ],
    "pattern_correlations": [
        {
            "evidence_pair": ["E-001", "E-002"],
            "relationship": "description",
            "confidence": 0.0-1.0
        }
    ],
    "anomalies": [
        {"description": "anomaly description", "significance": "high/medium/low"}
    ],
    "reasoning": "Your detailed reasoning about the evidence"
}

Respond ONLY with valid JSON.`, priorJSON(models.AgentSceneInterpreter), evidenceJSON)
		return prompt, 0.3, 2000, nil

	case models.AgentTimelineBuilder:
		prompt = fmt.Sprintf(`You are a forensic timeline reconstruction AI agent. Generate multiple plausible crime scenarios.

SCENE ANALYSIS:
%s

EVIDENCE ANALYSIS:
%s

Generate 2-3 distinct scenarios with different interpretations. Provide in JSON format:
{
    "scenarios": [
        {
            "scenario_id": "A",
            "title": "Brief scenario title",
            "confidence": 0.0-1.0,
            "timeline": [
                {"sequence": 1, "event": "description", "estimated_time": "relative time"},
                {"sequence": 2, "event": "description", "estimated_time": "relative time"}
            ],
            "supporting_evidence": ["E-001", "E-002"],
            "key_assumptions": ["assumption 1"],
            "summary": "Brief scenario summary"
        }
    ],
    "reasoning": "Your reasoning for generating these scenarios"
}

Respond ONLY with valid JSON.`, priorJSON(models.AgentSceneInterpreter), priorJSON(models.AgentEvidenceReasoner))
		return prompt, 0.5, 3000, nil

	case models.AgentHypothesisChallenger:
		scenariosJSON, marshalErr := json.MarshalIndent(input.Prior[models.AgentTimelineBuilder].Scenarios, "", "  ")
		if marshalErr != nil {
			return "", 0, 0, errors.Wrap(marshalErr, "encode scenarios")
		}
		prompt = fmt.Sprintf(`You are a forensic hypothesis challenger AI agent. Your job is to find contradictions and weaknesses in proposed scenarios.

PROPOSED SCENARIOS:
%s

SCENE ANALYSIS:
%s

EVIDENCE ANALYSIS:
%s

Critically analyze each scenario and identify contradictions. Provide in JSON format:
{
    "challenges": [
        {
            "scenario_id": "A",
            "contradictions": [
                {
                    "type": "physical_impossibility/timeline_conflict/evidence_mismatch",
                    "description": "detailed description",
                    "affected_evidence": ["E-001"],
                    "severity": "high/medium/low",
                    "confidence_penalty": 0.0-0.3
                }
            ],
            "revised_confidence": 0.0-1.0,
            "verdict": "supported/partially_supported/contradicted"
        }
    ],
    "cross_scenario_conflicts": [
        {"scenarios": ["A", "B"], "conflict": "description"}
    ],
    "overall_assessment": "summary assessment",
    "reasoning": "Your detailed reasoning"
}

Be critical and thorough. Respond ONLY with valid JSON.`,
			scenariosJSON, priorJSON(models.AgentSceneInterpreter), priorJSON(models.AgentEvidenceReasoner))
		return prompt, 0.3, 2500, nil

	default:
		return "", 0, 0, errors.New("unknown agent", slog.String("agent", string(agent)))
	}
}
