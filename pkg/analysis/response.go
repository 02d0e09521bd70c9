package analysis

import (
	"encoding/json"
	"fmt"

	"rd-assistant/pkg/llm"
)

// Result is the structured shape every analysis turn decodes into.
type Result struct {
	Response      ReplySection         `json:"response"`
	Understanding UnderstandingSection `json:"understanding"`
	Analysis      AnalysisSection      `json:"analysis"`
	NextSteps     NextStepsSection     `json:"next_steps"`
}

type ReplySection struct {
	Message string `json:"message"`
	Tone    string `json:"tone"`
}

type UnderstandingSection struct {
	Confidence      float64           `json:"confidence"`
	KeyPoints       []string          `json:"keyPoints"`
	Interpretations map[string]string `json:"interpretations"`
	UncertainAreas  []string          `json:"uncertainAreas"`
}

type AnalysisSection struct {
	ExtractedRequirements []ExtractedRequirement `json:"extracted_requirements"`
	IdentifiedConstraints []IdentifiedConstraint `json:"identified_constraints"`
	PotentialRisks        []PotentialRisk        `json:"potential_risks"`
}

type ExtractedRequirement struct {
	Type       string  `json:"type"`
	Content    string  `json:"content"`
	Confidence float64 `json:"confidence"`
	Rationale  string  `json:"rationale"`
	Implicit   bool    `json:"implicit"`
}

type IdentifiedConstraint struct {
	Type    string `json:"type"`
	Content string `json:"content"`
	Impact  string `json:"impact"`
}

type PotentialRisk struct {
	Description string `json:"description"`
	Severity    string `json:"severity"`
	Mitigation  string `json:"mitigation"`
}

type NextStepsSection struct {
	SuggestedTopics      []string `json:"suggested_topics"`
	RecommendedQuestions []string `json:"recommended_questions"`
}

// ErrorResult is the fixed payload returned to callers when the model call or
// response decoding fails. Extraction lists are present but empty so callers
// never branch on a missing analysis.
func ErrorResult(errorMessage string) *Result {
	return &Result{
		Response: ReplySection{
			Message: fmt.Sprintf("An error occurred: %s", errorMessage),
			Tone:    "error",
		},
		Analysis: AnalysisSection{
			ExtractedRequirements: []ExtractedRequirement{},
			IdentifiedConstraints: []IdentifiedConstraint{},
			PotentialRisks:        []PotentialRisk{},
		},
		NextSteps: NextStepsSection{
			SuggestedTopics:      []string{},
			RecommendedQuestions: []string{},
		},
	}
}

// DecodeResult parses a raw model response, stripping any Markdown code
// fence. Decode failures collapse into the fixed error payload.
func DecodeResult(raw string) *Result {
	var result Result
	if err := json.Unmarshal([]byte(llm.StripCodeFences(raw)), &result); err != nil {
		return ErrorResult("failed to parse JSON response")
	}
	return &result
}

// IsError reports whether the result is the fixed error payload.
func (r *Result) IsError() bool {
	return r.Response.Tone == "error"
}
