package reviewer

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"rd-assistant/pkg/llm"
)

// ExpertRole is one perspective in the review panel.
type ExpertRole struct {
	Name        string
	Description string
	FocusAreas  []string
}

var expertRoles = []ExpertRole{
	{
		Name:        "Technical Architect",
		Description: "Assesses technical feasibility and architectural soundness",
		FocusAreas:  []string{"scalability", "maintainability", "integration complexity", "technology choices"},
	},
	{
		Name:        "Security Specialist",
		Description: "Finds security gaps and compliance issues",
		FocusAreas:  []string{"authentication", "data protection", "audit requirements", "attack surface"},
	},
	{
		Name:        "UX Designer",
		Description: "Evaluates the requirements from the end-user's perspective",
		FocusAreas:  []string{"usability", "accessibility", "user workflows", "error handling for users"},
	},
	{
		Name:        "Business Analyst",
		Description: "Checks alignment with business goals and completeness",
		FocusAreas:  []string{"business value", "missing stakeholders", "measurable outcomes", "scope"},
	},
	{
		Name:        "Project Manager",
		Description: "Judges deliverability, dependencies and risk",
		FocusAreas:  []string{"dependencies", "estimation readiness", "delivery risk", "prioritization"},
	},
}

// Comment is a single expert finding.
type Comment struct {
	Role       string `json:"role"`
	Category   string `json:"category"`
	Content    string `json:"content"`
	Importance string `json:"importance"`
	Suggestion string `json:"suggestion"`
}

// DiscussionTurn is one statement in the simulated panel discussion.
type DiscussionTurn struct {
	Speaker    string `json:"speaker"`
	Point      string `json:"point"`
	ResponseTo string `json:"response_to"`
}

// Improvement is a concrete follow-up the panel recommends.
type Improvement struct {
	Priority   string `json:"priority"`
	Area       string `json:"area"`
	Suggestion string `json:"suggestion"`
	Rationale  string `json:"rationale"`
}

// Result is the full outcome of a panel review.
type Result struct {
	Comments     []Comment        `json:"comments"`
	Discussion   []DiscussionTurn `json:"discussion"`
	Summary      string           `json:"summary"`
	Evaluation   string           `json:"evaluation"`
	Improvements []Improvement    `json:"improvements"`
}

// Reviewer runs a requirements document past a panel of simulated experts.
type Reviewer struct {
	provider  llm.LLMProvider
	processor *DocumentProcessor
}

func NewReviewer(provider llm.LLMProvider, maxTokens int) *Reviewer {
	return &Reviewer{
		provider:  provider,
		processor: NewDocumentProcessor(maxTokens),
	}
}

const roleReviewPrompt = `You are reviewing a requirements document as a %s: %s.
Focus on: %s.

# Document section (%d requirements)
%s

Respond with JSON in exactly this shape:
{
    "comments": [
        {
            "category": "short label for the concern area",
            "content": "the finding itself",
            "importance": "high | medium | low",
            "suggestion": "how to address it"
        }
    ]
}

Only raise points within your focus. Return an empty list if the section is sound.`

type roleReviewPayload struct {
	Comments []Comment `json:"comments"`
}

const discussionPrompt = `A panel of experts reviewed a requirements document and raised the comments
below. Simulate a short discussion where they weigh each other's points, then
summarize.

# Comments
%s

Respond with JSON in exactly this shape:
{
    "discussion": [
        {"speaker": "role name", "point": "their statement", "response_to": "role they respond to, or empty"}
    ],
    "summary": "outcome of the discussion",
    "evaluation": "overall judgement of the document"
}`

type discussionPayload struct {
	Discussion []DiscussionTurn `json:"discussion"`
	Summary    string           `json:"summary"`
	Evaluation string           `json:"evaluation"`
}

const improvementsPrompt = `Based on the review discussion below, list the concrete improvements the
document needs.

# Discussion summary
%s

# Evaluation
%s

Respond with JSON in exactly this shape:
{
    "suggestions": [
        {
            "priority": "high | medium | low",
            "area": "part of the document affected",
            "suggestion": "what to change",
            "rationale": "why it matters"
        }
    ]
}`

type improvementsPayload struct {
	Suggestions []Improvement `json:"suggestions"`
}

// Review runs every expert over every chunk, simulates the panel discussion
// and collects improvement suggestions. A failed call for one role skips that
// role rather than aborting the review.
func (r *Reviewer) Review(ctx context.Context, document string) (*Result, error) {
	if strings.TrimSpace(document) == "" {
		return nil, fmt.Errorf("empty document")
	}
	chunks := r.processor.SplitDocument(document)

	var comments []Comment
	for _, chunk := range chunks {
		for _, role := range expertRoles {
			prompt := fmt.Sprintf(roleReviewPrompt,
				role.Name, role.Description, strings.Join(role.FocusAreas, ", "),
				chunk.RequirementsCount, chunk.Content)

			var payload roleReviewPayload
			if err := llm.GenerateJSON(ctx, r.provider, prompt, &payload); err != nil {
				continue
			}
			for _, c := range payload.Comments {
				c.Role = role.Name
				comments = append(comments, c)
			}
		}
	}
	comments = dedupeComments(comments)
	sortByImportance(comments)

	result := &Result{Comments: comments}
	if len(comments) == 0 {
		result.Summary = "The panel raised no findings."
		return result, nil
	}

	var listing []string
	for _, c := range comments {
		listing = append(listing, fmt.Sprintf("- [%s / %s / %s] %s (suggestion: %s)",
			c.Role, c.Category, c.Importance, c.Content, c.Suggestion))
	}

	var discussion discussionPayload
	if err := llm.GenerateJSON(ctx, r.provider, fmt.Sprintf(discussionPrompt, strings.Join(listing, "\n")), &discussion); err != nil {
		return nil, fmt.Errorf("simulate discussion: %w", err)
	}
	result.Discussion = discussion.Discussion
	result.Summary = discussion.Summary
	result.Evaluation = discussion.Evaluation

	var improvements improvementsPayload
	if err := llm.GenerateJSON(ctx, r.provider, fmt.Sprintf(improvementsPrompt, result.Summary, result.Evaluation), &improvements); err != nil {
		return nil, fmt.Errorf("collect improvements: %w", err)
	}
	result.Improvements = improvements.Suggestions
	sort.SliceStable(result.Improvements, func(i, j int) bool {
		return importanceRank(result.Improvements[i].Priority) < importanceRank(result.Improvements[j].Priority)
	})

	return result, nil
}

// Roles exposes the panel composition for display.
func Roles() []ExpertRole {
	roles := make([]ExpertRole, len(expertRoles))
	copy(roles, expertRoles)
	return roles
}

func dedupeComments(comments []Comment) []Comment {
	seen := map[string]struct{}{}
	var out []Comment
	for _, c := range comments {
		key := c.Content + "\x00" + c.Category
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, c)
	}
	return out
}

func sortByImportance(comments []Comment) {
	sort.SliceStable(comments, func(i, j int) bool {
		return importanceRank(comments[i].Importance) < importanceRank(comments[j].Importance)
	})
}

func importanceRank(importance string) int {
	switch strings.ToLower(importance) {
	case "high":
		return 0
	case "medium":
		return 1
	case "low":
		return 2
	}
	return 3
}
