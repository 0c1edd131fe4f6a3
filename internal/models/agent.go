package models

// AgentID names one of the four fixed analysis stages.
type AgentID string

const (
	AgentSceneInterpreter     AgentID = "scene_interpreter"
	AgentEvidenceReasoner     AgentID = "evidence_reasoner"
	AgentTimelineBuilder      AgentID = "timeline_builder"
	AgentHypothesisChallenger AgentID = "hypothesis_challenger"
)

// AgentIDs lists all agents in their canonical dependency order.
var AgentIDs = []AgentID{
	AgentSceneInterpreter,
	AgentEvidenceReasoner,
	AgentTimelineBuilder,
	AgentHypothesisChallenger,
}

// ValidAgentID reports whether id names a known agent.
func ValidAgentID(id AgentID) bool {
	for _, known := range AgentIDs {
		if known == id {
			return true
		}
	}
	return false
}

// StageStatus is the lifecycle state of one pipeline stage.
type StageStatus string

const (
	StageIdle      StageStatus = "idle"
	StageRunning   StageStatus = "running"
	StageCompleted StageStatus = "completed"
	StageError     StageStatus = "error"
)

// StageResult is the outcome of one agent run. At most one live result
// exists per stage per case session; re-runs overwrite.
type StageResult struct {
	Agent         AgentID     `json:"agent_type"`
	Status        StageStatus `json:"status"`
	ExecutionTime float64     `json:"execution_time"`
	Output        AgentOutput `json:"output"`
	Error         string      `json:"error,omitempty"`
}

// AgentOutput is the structured record an agent produces. The shape varies
// per agent; only the fields relevant to that agent are populated.
type AgentOutput struct {
	// Scene interpreter.
	EntryExitPoints     []EntryExitPoint     `json:"entry_exit_points,omitempty"`
	VisibilityAnalysis  []VisibilityFinding  `json:"visibility_analysis,omitempty"`
	DistanceConstraints []DistanceConstraint `json:"distance_constraints,omitempty"`
	SpatialObservations []string             `json:"spatial_observations,omitempty"`

	// Evidence reasoner.
	EvidenceAnalysis    []EvidenceFinding    `json:"evidence_analysis,omitempty"`
	PatternCorrelations []PatternCorrelation `json:"pattern_correlations,omitempty"`
	Anomalies           []Anomaly            `json:"anomalies,omitempty"`

	// Timeline builder.
	Scenarios []Scenario `json:"scenarios,omitempty"`

	// Hypothesis challenger.
	Challenges             []Challenge             `json:"challenges,omitempty"`
	CrossScenarioConflicts []CrossScenarioConflict `json:"cross_scenario_conflicts,omitempty"`
	OverallAssessment      string                  `json:"overall_assessment,omitempty"`

	// Free-form reasoning, present for every agent.
	Reasoning string `json:"reasoning,omitempty"`
}

type EntryExitPoint struct {
	Location    string    `json:"location"`
	Coordinates *Position `json:"coordinates,omitempty"`
	Kind        string    `json:"type"`
}

type VisibilityFinding struct {
	From         string   `json:"from"`
	To           string   `json:"to"`
	Visible      bool     `json:"visible"`
	Obstructions []string `json:"obstructions,omitempty"`
}

type DistanceConstraint struct {
	From           string  `json:"from"`
	To             string  `json:"to"`
	DistanceMeters float64 `json:"distance_meters"`
	Significance   string  `json:"significance"`
}

type EvidenceFinding struct {
	EvidenceID        string   `json:"evidence_id"`
	Type              string   `json:"type"`
	Findings          []string `json:"findings"`
	InferredDirection string   `json:"inferred_direction,omitempty"`
	ConsistencyScore  float64  `json:"consistency_score,omitempty"`
}

type PatternCorrelation struct {
	EvidencePair []string `json:"evidence_pair"`
	Relationship string   `json:"relationship"`
	Confidence   float64  `json:"confidence"`
}

type Anomaly struct {
	Description  string `json:"description"`
	Significance string `json:"significance"`
}

type Challenge struct {
	ScenarioID        string          `json:"scenario_id"`
	Contradictions    []Contradiction `json:"contradictions"`
	RevisedConfidence float64         `json:"revised_confidence"`
	Verdict           string          `json:"verdict,omitempty"`
}

type CrossScenarioConflict struct {
	Scenarios []string `json:"scenarios"`
	Conflict  string   `json:"conflict"`
}
