package store_test

import (
	"context"
	"testing"

	"github.com/crimetryx/crimetryx/internal/models"
	"github.com/stretchr/testify/require"
)

func TestHypothesisRepository_ReplaceAndChallenge(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	first := []models.Scenario{
		{ScenarioID: "A", Title: "Confrontation at Entry", Confidence: 0.72,
			Timeline: []models.TimelineEvent{
				{Sequence: 1, Event: "Perpetrator enters through main door", EstimatedTime: "T+0"},
			},
			SupportingEvidence: []string{"E-001", "E-002"}},
		{ScenarioID: "B", Title: "Staged Scene", Confidence: 0.28,
			SupportingEvidence: []string{"E-003"}},
	}
	require.NoError(t, s.Hypotheses.ReplaceForCase(ctx, c.ID, first))

	// A later run replaces the set in full, no merge.
	second := []models.Scenario{
		{ScenarioID: "C", Title: "Third Party Intruder", Confidence: 0.5},
	}
	require.NoError(t, s.Hypotheses.ReplaceForCase(ctx, c.ID, second))

	got, err := s.Hypotheses.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "C", got[0].ScenarioID)

	challenge := models.Challenge{
		ScenarioID:        "C",
		RevisedConfidence: 0.35,
		Contradictions: []models.Contradiction{
			{Type: "timeline_conflict", Description: "Blood drying pattern suggests longer timeline"},
		},
	}
	require.NoError(t, s.Hypotheses.ApplyChallenge(ctx, c.ID, challenge))

	got, err = s.Hypotheses.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.InDelta(t, 0.35, got[0].Confidence, 1e-9)
	require.Len(t, got[0].Contradictions, 1)
	require.Equal(t, "timeline_conflict", got[0].Contradictions[0].Type)
}

func TestAgentLogRepository_PutOverwritesPriorRun(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	c := newCaseForEvidence(t, s)

	first := models.StageResult{
		Agent:         models.AgentSceneInterpreter,
		Status:        models.StageCompleted,
		ExecutionTime: 2.5,
		Output:        models.AgentOutput{Reasoning: "first pass"},
	}
	require.NoError(t, s.AgentLogs.Put(ctx, c.ID, first))

	second := first
	second.ExecutionTime = 3.1
	second.Output.Reasoning = "second pass"
	require.NoError(t, s.AgentLogs.Put(ctx, c.ID, second))

	logs, err := s.AgentLogs.ListForCase(ctx, c.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1, "re-runs overwrite, at most one live result per stage")
	require.Equal(t, "second pass", logs[0].Output.Reasoning)
	require.InDelta(t, 3.1, logs[0].ExecutionTime, 1e-9)
}
