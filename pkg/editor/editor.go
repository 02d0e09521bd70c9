package editor

import (
	"context"
	"fmt"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/llm"
)

// Edit types accepted by EditRequirement.
const (
	EditContent   = "content"
	EditType      = "type"
	EditRationale = "rationale"
)

// Editor applies user edits to a single requirement after a validation pass
// by the model.
type Editor struct {
	provider llm.LLMProvider
}

func NewEditor(provider llm.LLMProvider) *Editor {
	return &Editor{provider: provider}
}

// Validation is the model's verdict on a proposed edit.
type Validation struct {
	IsValid       bool   `json:"is_valid"`
	Reason        string `json:"reason"`
	Suggestion    string `json:"suggestion"`
	ImprovedValue string `json:"improved_value"`
}

const validateEditPrompt = `A user wants to edit a requirement. Evaluate whether the edit keeps the
requirement well formed and meaningful.

# Current requirement
- Content: %s
- Type: %s
- Rationale: %s

# Proposed edit
- Field: %s
- New value: %s

Rules:
- "type" must be one of functional, non_functional, technical, business.
- "content" must remain a concrete, testable requirement statement.
- "rationale" must explain why the requirement exists.

Respond with JSON in exactly this shape:
{
    "evaluation": {
        "is_valid": true,
        "reason": "why the edit is acceptable or not",
        "suggestion": "advice when the edit is rejected",
        "improved_value": "a better phrasing of the new value, or empty"
    }
}`

type validatePayload struct {
	Evaluation Validation `json:"evaluation"`
}

// EditRequirement validates the edit and, when accepted, returns a copy of
// the requirement with the field replaced. The original is never mutated.
func (e *Editor) EditRequirement(ctx context.Context, req entity.Requirement, editType, newValue string) (*entity.Requirement, *Validation, error) {
	switch editType {
	case EditContent, EditType, EditRationale:
	default:
		return nil, nil, fmt.Errorf("unsupported edit type: %s", editType)
	}

	prompt := fmt.Sprintf(validateEditPrompt, req.Content, req.Type, req.Rationale, editType, newValue)

	var payload validatePayload
	if err := llm.GenerateJSON(ctx, e.provider, prompt, &payload); err != nil {
		return nil, nil, fmt.Errorf("validate edit: %w", err)
	}

	validation := payload.Evaluation
	if !validation.IsValid {
		return nil, &validation, nil
	}

	value := newValue
	if validation.ImprovedValue != "" {
		value = validation.ImprovedValue
	}

	edited := req
	switch editType {
	case EditContent:
		edited.Content = value
	case EditType:
		edited.Type = value
	case EditRationale:
		edited.Rationale = value
	}
	return &edited, &validation, nil
}
