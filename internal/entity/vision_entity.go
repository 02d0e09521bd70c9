package entity

import "github.com/google/uuid"

const (
	PriorityMustHave   = "must_have"
	PriorityShouldHave = "should_have"
	PriorityCouldHave  = "could_have"
	PriorityWontHave   = "wont_have"
)

// FeaturePriorities lists the MoSCoW buckets in display order.
var FeaturePriorities = []string{
	PriorityMustHave,
	PriorityShouldHave,
	PriorityCouldHave,
	PriorityWontHave,
}

type PriorityDetail struct {
	Reason string `json:"reason"`
	Impact string `json:"impact"`
}

type ProjectVision struct {
	Goals           []string                  `json:"goals"`
	SuccessCriteria []string                  `json:"success_criteria"`
	TargetUsers     []string                  `json:"target_users"`
	Constraints     []string                  `json:"constraints"`
	Priorities      map[string]PriorityDetail `json:"priorities,omitempty"`
}

// FeaturePriority links a MoSCoW decision to a requirement. RequirementId is
// the stable join key; Feature retains the display text. Dependencies hold
// requirement ids, not content.
type FeaturePriority struct {
	RequirementId uuid.UUID   `json:"requirement_id"`
	Feature       string      `json:"feature"`
	Priority      string      `json:"priority"`
	Rationale     string      `json:"rationale"`
	Dependencies  []uuid.UUID `json:"dependencies,omitempty"`
}
