package models

// CaseStatus tracks how far a case has progressed. The client only ever
// assigns StatusActive on creation; later transitions come from the backend.
type CaseStatus string

const (
	StatusActive     CaseStatus = "active"
	StatusProcessing CaseStatus = "processing"
	StatusReady      CaseStatus = "ready"
	StatusAnalyzed   CaseStatus = "analyzed"
	StatusClosed     CaseStatus = "closed"
)

// Case is a unit of investigation work identified by a human-readable code
// such as "CRX-2024-0001".
type Case struct {
	ID             int64      `json:"id" db:"id"`
	Code           string     `json:"case_id" db:"case_id"`
	Location       string     `json:"location" db:"location"`
	Date           string     `json:"date" db:"date"`
	Investigator   string     `json:"investigator" db:"investigator"`
	Status         CaseStatus `json:"status" db:"status"`
	SceneModelPath string     `json:"scene_model_path,omitempty" db:"scene_model_path"`
	CreatedAt      Timestamp  `json:"created_at" db:"created_at"`
}

// CaseDraft holds the fields an investigator fills in when opening a case.
type CaseDraft struct {
	Location     string `json:"location"`
	Date         string `json:"date"`
	Investigator string `json:"investigator"`
}

// CaseDetail is a case with its owned records embedded, as returned by
// GET /api/cases/:id.
type CaseDetail struct {
	Case
	Evidence   []Evidence    `json:"evidence"`
	AgentLogs  []StageResult `json:"agent_logs"`
	Hypotheses []Scenario    `json:"hypotheses"`
}
