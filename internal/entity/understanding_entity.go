package entity

import "time"

// UnderstandingStatus is a per-turn snapshot of how well the assistant
// believes it understood the user's input.
type UnderstandingStatus struct {
	Timestamp       time.Time         `json:"timestamp"`
	Confidence      float64           `json:"confidence"`
	KeyPoints       []string          `json:"key_points"`
	Interpretations map[string]string `json:"interpretations,omitempty"`
	UncertainAreas  []string          `json:"uncertain_areas,omitempty"`
	UserInput       string            `json:"user_input"`
	AssistantReply  string            `json:"assistant_reply"`
}
