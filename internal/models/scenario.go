package models

// TimelineEvent is one step of a reconstructed sequence of events.
type TimelineEvent struct {
	Sequence      int    `json:"sequence"`
	Event         string `json:"event"`
	EstimatedTime string `json:"estimated_time"`
}

// Contradiction is a weakness the hypothesis challenger found in a scenario.
type Contradiction struct {
	Type              string   `json:"type"`
	Description       string   `json:"description"`
	AffectedEvidence  []string `json:"affected_evidence,omitempty"`
	Severity          string   `json:"severity,omitempty"`
	ConfidencePenalty float64  `json:"confidence_penalty,omitempty"`
}

// Scenario is a candidate reconstructed narrative with a confidence score,
// produced by the timeline builder and refined by the hypothesis challenger.
type Scenario struct {
	ScenarioID         string          `json:"scenario_id"`
	Title              string          `json:"title"`
	Confidence         float64         `json:"confidence"`
	Timeline           []TimelineEvent `json:"timeline"`
	SupportingEvidence []string        `json:"supporting_evidence"`
	KeyAssumptions     []string        `json:"key_assumptions,omitempty"`
	Summary            string          `json:"summary,omitempty"`
	Contradictions     []Contradiction `json:"contradictions,omitempty"`
}
