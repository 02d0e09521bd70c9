package entity

import (
	"time"

	"github.com/google/uuid"
)

const (
	RequirementTypeFunctional    = "functional"
	RequirementTypeNonFunctional = "non_functional"
	RequirementTypeTechnical     = "technical"
	RequirementTypeBusiness      = "business"
)

// RequirementTypes lists the known types in display order.
var RequirementTypes = []string{
	RequirementTypeFunctional,
	RequirementTypeNonFunctional,
	RequirementTypeTechnical,
	RequirementTypeBusiness,
}

type Requirement struct {
	Id         uuid.UUID      `json:"id"`
	Content    string         `json:"content"`
	Type       string         `json:"type"`
	Confidence float64        `json:"confidence"`
	Rationale  string         `json:"rationale"`
	Implicit   bool           `json:"implicit"`
	CreatedAt  time.Time      `json:"created_at"`
	Metadata   map[string]any `json:"metadata,omitempty"`
}
