package organizer

import (
	"context"
	"fmt"
	"strings"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/llm"
)

// Organizer restructures the requirement set as a whole: merging duplicates,
// generalizing overly specific items, clarifying vague ones and splitting
// compound ones.
type Organizer struct {
	provider llm.LLMProvider
}

func NewOrganizer(provider llm.LLMProvider) *Organizer {
	return &Organizer{provider: provider}
}

// Result carries the reorganized requirement set together with the changes
// applied and follow-up suggestions.
type Result struct {
	Requirements []entity.Requirement
	Suggestions  []string
	ChangesMade  []map[string]any
}

const organizePrompt = `Reorganize the requirement list below. Merge duplicates, generalize items
that are too specific, clarify vague wording and split requirements that
bundle several concerns. Keep the meaning of every original requirement.

# Current requirements
%s

Respond with JSON in exactly this shape:
{
    "organized_requirements": [
        {
            "type": "functional | non_functional | technical | business",
            "content": "requirement statement",
            "rationale": "why this requirement exists",
            "confidence": 0.95,
            "source_requirements": ["original statements this was derived from"],
            "changes_made": "what changed, or empty if unchanged"
        }
    ],
    "suggestions": ["observations that need user confirmation"],
    "changes_summary": [
        {
            "type": "merge | generalize | clarify | split",
            "description": "what was done",
            "affected_requirements": ["original statements involved"]
        }
    ]
}`

type organizePayload struct {
	OrganizedRequirements []struct {
		Type               string   `json:"type"`
		Content            string   `json:"content"`
		Rationale          string   `json:"rationale"`
		Confidence         float64  `json:"confidence"`
		SourceRequirements []string `json:"source_requirements"`
		ChangesMade        string   `json:"changes_made"`
	} `json:"organized_requirements"`
	Suggestions    []string `json:"suggestions"`
	ChangesSummary []struct {
		Type                 string   `json:"type"`
		Description          string   `json:"description"`
		AffectedRequirements []string `json:"affected_requirements"`
	} `json:"changes_summary"`
}

// Organize proposes a reorganized requirement set. The caller decides whether
// to apply it via Memory.ReplaceRequirements.
func (o *Organizer) Organize(ctx context.Context, mem *entity.Memory) (*Result, error) {
	if len(mem.Requirements) == 0 {
		return &Result{}, nil
	}

	var listing []string
	for _, req := range mem.Requirements {
		listing = append(listing, fmt.Sprintf("- [%s] %s (rationale: %s)", req.Type, req.Content, req.Rationale))
	}
	prompt := fmt.Sprintf(organizePrompt, strings.Join(listing, "\n"))

	var payload organizePayload
	if err := llm.GenerateJSON(ctx, o.provider, prompt, &payload); err != nil {
		return nil, fmt.Errorf("organize requirements: %w", err)
	}

	result := &Result{Suggestions: payload.Suggestions}
	for _, item := range payload.OrganizedRequirements {
		if item.Content == "" {
			continue
		}
		confidence := item.Confidence
		if confidence <= 0 || confidence > 1 {
			confidence = 1.0
		}
		result.Requirements = append(result.Requirements, entity.Requirement{
			Content:    item.Content,
			Type:       normalizeType(item.Type),
			Confidence: confidence,
			Rationale:  item.Rationale,
			Implicit:   false,
			Metadata: map[string]any{
				"source_requirements": item.SourceRequirements,
			},
		})
	}
	for _, change := range payload.ChangesSummary {
		result.ChangesMade = append(result.ChangesMade, map[string]any{
			"type":                  change.Type,
			"description":           change.Description,
			"affected_requirements": change.AffectedRequirements,
		})
	}
	return result, nil
}

func normalizeType(reqType string) string {
	cleaned := strings.ToLower(strings.TrimSpace(reqType))
	for _, known := range entity.RequirementTypes {
		if cleaned == known {
			return cleaned
		}
	}
	return entity.RequirementTypeFunctional
}
