package analysis

import (
	"fmt"
	"strings"

	"rd-assistant/internal/entity"
)

const systemPrompt = `You are an experienced systems analyst guiding a requirements-definition conversation.
Follow these principles:

#Role
- Act as a seasoned systems analyst
- Understand the user's intent deeply and give useful advice
- Weave in technical insight where appropriate while keeping business value first

#Conversation style
- Avoid interrogating the user; keep the conversation natural
- Read implicit requirements and constraints out of what the user says
- Use concrete examples where they help deepen understanding

#Priorities
- Balance business value against technical feasibility
- Scalability and maintainability
- Security and privacy
- User experience and accessibility

Always answer with JSON in exactly this shape:
{
    "response": {
        "message": "reply to the user",
        "tone": "empathetic|suggestive|confirming|warning"
    },
    "understanding": {
        "confidence": 0.0-1.0,
        "keyPoints": ["extracted points"],
        "interpretations": {
            "category": "interpretation"
        },
        "uncertainAreas": ["points that need confirmation"]
    },
    "analysis": {
        "extracted_requirements": [
            {
                "type": "functional|non_functional|technical|business",
                "content": "the requirement",
                "confidence": 0.0-1.0,
                "rationale": "why this requirement was extracted",
                "implicit": true|false
            }
        ],
        "identified_constraints": [
            {
                "type": "technical|business|regulatory|resource",
                "content": "the constraint",
                "impact": "scope of impact"
            }
        ],
        "potential_risks": [
            {
                "description": "the risk",
                "severity": "high|medium|low",
                "mitigation": "countermeasure"
            }
        ]
    },
    "next_steps": {
        "suggested_topics": ["topics to discuss next"],
        "recommended_questions": ["questions to ask naturally"]
    }
}`

// BuildPrompt combines the system prompt, the current project context and the
// user's input into a single analysis prompt.
func BuildPrompt(userInput string, mem *entity.Memory) string {
	return fmt.Sprintf("%s\n\n#Current project context\n%s\n\n%s",
		systemPrompt, formatContext(mem), userInput)
}

func formatContext(mem *entity.Memory) string {
	var sections []string

	if mem.ProjectName != "" || mem.ProjectDescription != "" {
		sections = append(sections, "##Project")
		if mem.ProjectName != "" {
			sections = append(sections, fmt.Sprintf("Name: %s", mem.ProjectName))
		}
		if mem.ProjectDescription != "" {
			sections = append(sections, fmt.Sprintf("Description: %s", mem.ProjectDescription))
		}
	}

	if len(mem.Requirements) > 0 {
		sections = append(sections, "##Confirmed requirements")
		for _, req := range mem.Requirements {
			sections = append(sections, fmt.Sprintf("- %s", req.Content))
		}
	}

	if len(mem.Constraints) > 0 {
		sections = append(sections, "##Known constraints")
		for _, c := range mem.Constraints {
			sections = append(sections, fmt.Sprintf("- %s", c.Content))
		}
	}

	if len(mem.KeyDecisions) > 0 {
		sections = append(sections, "##Key decisions")
		for _, d := range mem.KeyDecisions {
			sections = append(sections, fmt.Sprintf("- %s", d.Content))
		}
	}

	if mem.CurrentFocus != "" {
		sections = append(sections, fmt.Sprintf("\n##Current focus\n%s", mem.CurrentFocus))
	}

	return strings.Join(sections, "\n")
}
