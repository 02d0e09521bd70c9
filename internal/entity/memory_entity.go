package entity

import (
	"time"

	"github.com/google/uuid"

	"rd-assistant/pkg/history"
)

// Memory is the aggregate holding everything learned about a project during
// a conversation. Mutations go through methods so the change history stays
// consistent with the data.
type Memory struct {
	ProjectName          string
	ProjectDescription   string
	Vision               *ProjectVision
	Requirements         []Requirement
	Constraints          []Constraint
	Risks                []Risk
	KeyDecisions         []Decision
	CurrentFocus         string
	FeaturePriorities    []FeaturePriority
	UnderstandingHistory []UnderstandingStatus

	History *history.Manager
}

func NewMemory() *Memory {
	return &Memory{
		History: history.NewManager(),
	}
}

func (m *Memory) SetProjectInfo(name, description string) {
	m.ProjectName = name
	m.ProjectDescription = description
}

// AddRequirement appends a requirement, assigning an id and creation time
// when missing, and records the change.
func (m *Memory) AddRequirement(req Requirement) Requirement {
	if req.Id == uuid.Nil {
		req.Id = uuid.New()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = time.Now()
	}
	m.Requirements = append(m.Requirements, req)

	m.History.RecordChange(history.ActionAdd, "requirement", req.Content, map[string]any{
		"type":      req.Type,
		"content":   req.Content,
		"rationale": req.Rationale,
	}, "")

	return req
}

// UpdateRequirement replaces the stored requirement with the same id.
func (m *Memory) UpdateRequirement(updated Requirement) bool {
	for i, req := range m.Requirements {
		if req.Id != updated.Id {
			continue
		}

		m.History.RecordChange(history.ActionUpdate, "requirement", req.Content, map[string]any{
			"old_value": req.Content,
			"new_value": updated.Content,
		}, "")

		m.Requirements[i] = updated
		return true
	}
	return false
}

// RemoveRequirement deletes the requirement with the given id.
func (m *Memory) RemoveRequirement(id uuid.UUID) bool {
	for i, req := range m.Requirements {
		if req.Id != id {
			continue
		}

		m.History.RecordChange(history.ActionDelete, "requirement", req.Content, map[string]any{
			"content": req.Content,
			"type":    req.Type,
		}, "")

		m.Requirements = append(m.Requirements[:i], m.Requirements[i+1:]...)
		return true
	}
	return false
}

func (m *Memory) AddConstraint(c Constraint) {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	m.Constraints = append(m.Constraints, c)
}

func (m *Memory) AddRisk(r Risk) {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now()
	}
	m.Risks = append(m.Risks, r)
}

func (m *Memory) UpdateFocus(focus string) {
	m.CurrentFocus = focus
}

func (m *Memory) AddDecision(content string) {
	m.KeyDecisions = append(m.KeyDecisions, Decision{
		Content:   content,
		CreatedAt: time.Now(),
	})
}

func (m *Memory) AddUnderstanding(status UnderstandingStatus) {
	if status.Timestamp.IsZero() {
		status.Timestamp = time.Now()
	}
	m.UnderstandingHistory = append(m.UnderstandingHistory, status)
}

// RecordReview stores a quality review outcome in the change history.
func (m *Memory) RecordReview(req Requirement, qualityScore float64, suggestions []string) {
	m.History.RecordChange(history.ActionReview, "requirement", req.Content, map[string]any{
		"review_score": qualityScore,
		"suggestions":  suggestions,
	}, "")
}

// ReplaceRequirements swaps in a reorganized requirement set and records a
// bulk organize entry describing the changes.
func (m *Memory) ReplaceRequirements(reqs []Requirement, changes []map[string]any) {
	for i := range reqs {
		if reqs[i].Id == uuid.Nil {
			reqs[i].Id = uuid.New()
		}
		if reqs[i].CreatedAt.IsZero() {
			reqs[i].CreatedAt = time.Now()
		}
	}
	m.Requirements = reqs

	m.History.RecordChange(history.ActionOrganize, "requirements", "bulk_update", map[string]any{
		"changes": changes,
	}, "")
}

// UpdateVision replaces the vision and merges its constraints into the
// constraint list as business constraints.
func (m *Memory) UpdateVision(vision *ProjectVision) {
	var oldValue any
	if m.Vision != nil {
		oldValue = *m.Vision
	}
	m.Vision = vision

	m.History.RecordChange(history.ActionUpdate, "vision", "project_vision", map[string]any{
		"old_value": oldValue,
		"new_value": *vision,
	}, "")

	for _, constraint := range vision.Constraints {
		if m.hasConstraint(constraint) {
			continue
		}
		m.AddConstraint(Constraint{
			Content: constraint,
			Type:    "business",
			Impact:  "Derived from the project vision",
		})
	}
}

func (m *Memory) hasConstraint(content string) bool {
	for _, c := range m.Constraints {
		if c.Content == content {
			return true
		}
	}
	return false
}

// UpdatePriorities replaces the feature priorities and propagates each
// priority into the matching requirement's metadata. The join is by
// requirement id; content equality is the fallback for priorities loaded
// from files that predate ids.
func (m *Memory) UpdatePriorities(priorities []FeaturePriority) {
	m.FeaturePriorities = priorities

	for _, p := range priorities {
		for i := range m.Requirements {
			req := &m.Requirements[i]
			if req.Id != p.RequirementId && req.Content != p.Feature {
				continue
			}
			if req.Metadata == nil {
				req.Metadata = map[string]any{}
			}
			req.Metadata["priority"] = p.Priority
		}
	}
}

// RequirementById resolves a requirement by its stable id.
func (m *Memory) RequirementById(id uuid.UUID) (Requirement, bool) {
	for _, req := range m.Requirements {
		if req.Id == id {
			return req, true
		}
	}
	return Requirement{}, false
}

// RequirementsByType groups requirements preserving insertion order inside
// each group.
func (m *Memory) RequirementsByType() map[string][]Requirement {
	grouped := make(map[string][]Requirement, len(RequirementTypes))
	for _, t := range RequirementTypes {
		grouped[t] = nil
	}
	for _, req := range m.Requirements {
		if _, known := grouped[req.Type]; known {
			grouped[req.Type] = append(grouped[req.Type], req)
		}
	}
	return grouped
}
