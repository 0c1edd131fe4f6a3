package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/crimetryx/crimetryx/internal/models"
)

// SimulatedExecutor produces canned demo output after a short delay, so the
// full pipeline can be exercised without a backend or an API key.
type SimulatedExecutor struct {
	delay     time.Duration
	sleep     func(ctx context.Context, d time.Duration) error
	randFloat func() float64
}

const simulatedDelay = 2 * time.Second

func NewSimulatedExecutor() *SimulatedExecutor {
	return &SimulatedExecutor{
		delay:     simulatedDelay,
		sleep:     sleepContext,
		randFloat: rand.Float64,
	}
}

// NewInstantSimulatedExecutor skips the demo delay. Used by tests.
func NewInstantSimulatedExecutor() *SimulatedExecutor {
	e := NewSimulatedExecutor()
	e.delay = 0
	return e
}

func (e *SimulatedExecutor) Execute(ctx context.Context, _ Input, agent models.AgentID) (models.StageResult, error) {
	if e.delay > 0 {
		if err := e.sleep(ctx, e.delay); err != nil {
			return models.StageResult{}, err
		}
	}
	return models.StageResult{
		Agent:         agent,
		Status:        models.StageCompleted,
		ExecutionTime: 2.5 + e.randFloat()*2,
		Output:        cannedOutput(agent),
	}, nil
}

func sleepContext(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// cannedOutput is the fixed demo analysis shown when no real agent ran.
func cannedOutput(agent models.AgentID) models.AgentOutput {
	switch agent {
	case models.AgentSceneInterpreter:
		return models.AgentOutput{
			EntryExitPoints: []models.EntryExitPoint{
				{Location: "Main entrance", Kind: "entry"},
				{Location: "Back window", Kind: "possible_exit"},
			},
			VisibilityAnalysis: []models.VisibilityFinding{
				{From: "Doorway", To: "Living room", Visible: true},
			},
			Reasoning: "Scene layout suggests single point of entry with clear sightlines.",
		}
	case models.AgentEvidenceReasoner:
		return models.AgentOutput{
			EvidenceAnalysis: []models.EvidenceFinding{
				{EvidenceID: "E-001", Type: "bloodstain", Findings: []string{
					"Medium-velocity impact spatter",
					"Directionality suggests movement toward exit",
				}},
				{EvidenceID: "E-002", Type: "weapon", Findings: []string{
					"Position consistent with being dropped during egress",
				}},
			},
			Reasoning: "Evidence pattern indicates a brief struggle near the entry point.",
		}
	case models.AgentTimelineBuilder:
		return models.AgentOutput{
			Scenarios: []models.Scenario{
				{
					ScenarioID: "A",
					Title:      "Confrontation at Entry",
					Confidence: 0.72,
					Timeline: []models.TimelineEvent{
						{Sequence: 1, Event: "Perpetrator enters through main entrance", EstimatedTime: "T+0"},
						{Sequence: 2, Event: "Confrontation in living room", EstimatedTime: "T+2min"},
						{Sequence: 3, Event: "Struggle near doorway", EstimatedTime: "T+3min"},
						{Sequence: 4, Event: "Exit through main entrance", EstimatedTime: "T+5min"},
					},
					SupportingEvidence: []string{"E-001", "E-002"},
				},
				{
					ScenarioID: "B",
					Title:      "Staged Scene",
					Confidence: 0.28,
					Timeline: []models.TimelineEvent{
						{Sequence: 1, Event: "Victim incapacitated elsewhere", EstimatedTime: "T+0"},
						{Sequence: 2, Event: "Scene arranged post-mortem", EstimatedTime: "T+30min"},
					},
					SupportingEvidence: []string{"E-003"},
				},
			},
			Reasoning: "Two scenarios fit the spatial evidence; the entry confrontation is better supported.",
		}
	case models.AgentHypothesisChallenger:
		return models.AgentOutput{
			Challenges: []models.Challenge{
				{
					ScenarioID: "A",
					Contradictions: []models.Contradiction{
						{Type: "timeline_conflict", Description: "Blood drying pattern suggests longer timeline than witness accounts"},
					},
					RevisedConfidence: 0.65,
				},
				{
					ScenarioID: "B",
					Contradictions: []models.Contradiction{
						{Type: "physical_impossibility", Description: "No evidence of victim being moved post-mortem"},
					},
					RevisedConfidence: 0.25,
				},
			},
			OverallAssessment: "Scenario A remains most likely but requires timeline verification with forensic lab results.",
		}
	default:
		return models.AgentOutput{}
	}
}
