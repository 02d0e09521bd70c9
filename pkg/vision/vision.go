package vision

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/llm"
)

// Manager extracts the project vision from conversation history and derives
// MoSCoW priorities for individual features.
type Manager struct {
	provider llm.LLMProvider
}

func NewManager(provider llm.LLMProvider) *Manager {
	return &Manager{provider: provider}
}

const extractVisionPrompt = `Analyze the conversation below and extract the project vision.

# Conversation
%s

Respond with JSON in exactly this shape:
{
    "vision": {
        "goals": ["project goals"],
        "success_criteria": ["measurable success criteria"],
        "target_users": ["intended user groups"],
        "constraints": ["constraints implied by the vision"],
        "key_priorities": [
            {
                "aspect": "what matters most",
                "reason": "why it matters",
                "impact": "consequence of neglecting it"
            }
        ]
    }
}

Only include points actually supported by the conversation. Do not invent details.`

type visionPayload struct {
	Vision struct {
		Goals           []string `json:"goals"`
		SuccessCriteria []string `json:"success_criteria"`
		TargetUsers     []string `json:"target_users"`
		Constraints     []string `json:"constraints"`
		KeyPriorities   []struct {
			Aspect string `json:"aspect"`
			Reason string `json:"reason"`
			Impact string `json:"impact"`
		} `json:"key_priorities"`
	} `json:"vision"`
}

// ExtractVision derives the project vision from the dialogue so far. A failed
// model call yields an empty vision rather than an error so the conversation
// can continue.
func (m *Manager) ExtractVision(ctx context.Context, conversation []string) *entity.ProjectVision {
	prompt := fmt.Sprintf(extractVisionPrompt, strings.Join(conversation, "\n"))

	var payload visionPayload
	if err := llm.GenerateJSON(ctx, m.provider, prompt, &payload); err != nil {
		return &entity.ProjectVision{Priorities: map[string]entity.PriorityDetail{}}
	}

	vision := &entity.ProjectVision{
		Goals:           payload.Vision.Goals,
		SuccessCriteria: payload.Vision.SuccessCriteria,
		TargetUsers:     payload.Vision.TargetUsers,
		Constraints:     payload.Vision.Constraints,
		Priorities:      map[string]entity.PriorityDetail{},
	}
	for _, p := range payload.Vision.KeyPriorities {
		if p.Aspect == "" {
			continue
		}
		vision.Priorities[p.Aspect] = entity.PriorityDetail{
			Reason: p.Reason,
			Impact: p.Impact,
		}
	}
	return vision
}

const featurePriorityPrompt = `Assess the priority of a single feature against the project vision.

# Project vision
%s

# Feature
%s

Respond with JSON in exactly this shape:
{
    "analysis": {
        "necessity_level": "how essential the feature is to the vision",
        "impact": "what the feature contributes",
        "delay_risk": "what happens if the feature slips",
        "suggested_priority": "must_have | should_have | could_have | wont_have",
        "rationale": "reasoning behind the suggested priority"
    }
}`

type priorityPayload struct {
	Analysis struct {
		NecessityLevel    string `json:"necessity_level"`
		Impact            string `json:"impact"`
		DelayRisk         string `json:"delay_risk"`
		SuggestedPriority string `json:"suggested_priority"`
		Rationale         string `json:"rationale"`
	} `json:"analysis"`
}

// FeatureAssessment is the model's priority judgement for one feature.
type FeatureAssessment struct {
	NecessityLevel    string
	Impact            string
	DelayRisk         string
	SuggestedPriority string
	Rationale         string
}

// AssessFeature scores one feature against the vision. SuggestedPriority is
// always a normalized MoSCoW value.
func (m *Manager) AssessFeature(ctx context.Context, vision *entity.ProjectVision, feature string) (*FeatureAssessment, error) {
	prompt := fmt.Sprintf(featurePriorityPrompt, FormatVisionSummary(vision), feature)

	var payload priorityPayload
	if err := llm.GenerateJSON(ctx, m.provider, prompt, &payload); err != nil {
		return nil, err
	}

	return &FeatureAssessment{
		NecessityLevel:    payload.Analysis.NecessityLevel,
		Impact:            payload.Analysis.Impact,
		DelayRisk:         payload.Analysis.DelayRisk,
		SuggestedPriority: normalizePriority(payload.Analysis.SuggestedPriority),
		Rationale:         payload.Analysis.Rationale,
	}, nil
}

// AnalyzePriorities scores every requirement against the vision and returns a
// MoSCoW assignment per feature. Requirements the model cannot score default
// to could_have.
func (m *Manager) AnalyzePriorities(ctx context.Context, vision *entity.ProjectVision, mem *entity.Memory) []entity.FeaturePriority {
	var priorities []entity.FeaturePriority
	for _, req := range mem.Requirements {
		assessment, err := m.AssessFeature(ctx, vision, req.Content)
		if err != nil {
			priorities = append(priorities, entity.FeaturePriority{
				RequirementId: req.Id,
				Feature:       req.Content,
				Priority:      entity.PriorityCouldHave,
				Rationale:     "Priority could not be assessed automatically",
			})
			continue
		}

		priorities = append(priorities, entity.FeaturePriority{
			RequirementId: req.Id,
			Feature:       req.Content,
			Priority:      assessment.SuggestedPriority,
			Rationale:     assessment.Rationale,
		})
	}
	return priorities
}

func normalizePriority(priority string) string {
	cleaned := strings.ToLower(strings.TrimSpace(priority))
	cleaned = strings.ReplaceAll(cleaned, "'", "")
	cleaned = strings.ReplaceAll(cleaned, " ", "_")
	switch cleaned {
	case entity.PriorityMustHave, entity.PriorityShouldHave,
		entity.PriorityCouldHave, entity.PriorityWontHave:
		return cleaned
	}
	return entity.PriorityCouldHave
}

// FormatVisionSummary renders a vision for console display and prompts.
func FormatVisionSummary(vision *entity.ProjectVision) string {
	if vision == nil {
		return "No vision has been defined yet."
	}

	var b strings.Builder
	b.WriteString("Project Vision\n")

	writeList := func(title string, items []string) {
		if len(items) == 0 {
			return
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", title))
		for _, item := range items {
			b.WriteString(fmt.Sprintf("  - %s\n", item))
		}
	}

	writeList("Goals", vision.Goals)
	writeList("Success criteria", vision.SuccessCriteria)
	writeList("Target users", vision.TargetUsers)
	writeList("Constraints", vision.Constraints)

	if len(vision.Priorities) > 0 {
		b.WriteString("\nKey priorities:\n")
		aspects := make([]string, 0, len(vision.Priorities))
		for aspect := range vision.Priorities {
			aspects = append(aspects, aspect)
		}
		sort.Strings(aspects)
		for _, aspect := range aspects {
			detail := vision.Priorities[aspect]
			b.WriteString(fmt.Sprintf("  - %s\n", aspect))
			if detail.Reason != "" {
				b.WriteString(fmt.Sprintf("    Reason: %s\n", detail.Reason))
			}
			if detail.Impact != "" {
				b.WriteString(fmt.Sprintf("    Impact: %s\n", detail.Impact))
			}
		}
	}

	return b.String()
}

var priorityOrder = []string{
	entity.PriorityMustHave,
	entity.PriorityShouldHave,
	entity.PriorityCouldHave,
	entity.PriorityWontHave,
}

var priorityLabels = map[string]string{
	entity.PriorityMustHave:   "Must Have",
	entity.PriorityShouldHave: "Should Have",
	entity.PriorityCouldHave:  "Could Have",
	entity.PriorityWontHave:   "Won't Have",
}

// FormatPrioritySummary renders feature priorities grouped by MoSCoW bucket.
func FormatPrioritySummary(priorities []entity.FeaturePriority) string {
	if len(priorities) == 0 {
		return "No feature priorities have been assigned yet."
	}

	var b strings.Builder
	b.WriteString("Feature Priorities\n")

	for _, bucket := range priorityOrder {
		var bucketed []entity.FeaturePriority
		for _, p := range priorities {
			if p.Priority == bucket {
				bucketed = append(bucketed, p)
			}
		}
		if len(bucketed) == 0 {
			continue
		}
		b.WriteString(fmt.Sprintf("\n%s:\n", priorityLabels[bucket]))
		for _, p := range bucketed {
			b.WriteString(fmt.Sprintf("  - %s\n", p.Feature))
			if p.Rationale != "" {
				b.WriteString(fmt.Sprintf("    %s\n", p.Rationale))
			}
		}
	}

	return b.String()
}
