package models

// Identity is the authenticated investigator for the current session.
type Identity struct {
	InvestigatorID string `json:"investigator_id"`
	Name           string `json:"name"`
	Role           string `json:"role"`
}
