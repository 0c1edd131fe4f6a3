package models

// PendingHash is the placeholder shown until a chain-of-custody digest is
// assigned by the storage side.
const PendingHash = "pending..."

// Position is a point in model space.
type Position struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Evidence is a spatially located, typed annotation attached to a case scene.
type Evidence struct {
	ID        int64        `json:"id" db:"id"`
	Code      string       `json:"evidence_id" db:"evidence_id"`
	CaseID    int64        `json:"case_id" db:"case_id"`
	Type      EvidenceType `json:"type" db:"evidence_type"`
	Position  Position     `json:"coordinates"`
	Notes     string       `json:"notes" db:"notes"`
	Hash      string       `json:"hash" db:"hash"`
	CreatedAt Timestamp    `json:"created_at" db:"created_at"`
	CreatedBy string       `json:"created_by" db:"created_by"`
}

// EvidencePatch is a partial update. Nil fields are left untouched.
type EvidencePatch struct {
	Notes *string `json:"notes,omitempty"`
}
