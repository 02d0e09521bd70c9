package entity

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"rd-assistant/pkg/history"
)

func TestAddRequirementAssignsIdAndRecordsHistory(t *testing.T) {
	m := NewMemory()

	req := m.AddRequirement(Requirement{
		Content:    "Users can export reports as CSV",
		Type:       RequirementTypeFunctional,
		Confidence: 0.9,
		Rationale:  "Requested explicitly",
	})

	assert.NotEqual(t, uuid.Nil, req.Id)
	assert.False(t, req.CreatedAt.IsZero())
	assert.Len(t, m.Requirements, 1)

	assert.Len(t, m.History.Records, 1)
	assert.Equal(t, history.ActionAdd, m.History.Records[0].Action)
	assert.Equal(t, "requirement", m.History.Records[0].TargetType)
}

func TestUpdateAndRemoveRequirement(t *testing.T) {
	m := NewMemory()
	req := m.AddRequirement(Requirement{Content: "original", Type: RequirementTypeFunctional})

	updated := req
	updated.Content = "rewritten"
	assert.True(t, m.UpdateRequirement(updated))
	assert.Equal(t, "rewritten", m.Requirements[0].Content)

	assert.False(t, m.UpdateRequirement(Requirement{Id: uuid.New()}))

	assert.True(t, m.RemoveRequirement(req.Id))
	assert.Empty(t, m.Requirements)
	assert.False(t, m.RemoveRequirement(req.Id))
}

func TestUpdateVisionMergesConstraints(t *testing.T) {
	m := NewMemory()
	m.AddConstraint(Constraint{Content: "Budget capped at 50k USD", Type: "business", Impact: "scope"})

	m.UpdateVision(&ProjectVision{
		Goals:       []string{"Launch within 6 months"},
		Constraints: []string{"Budget capped at 50k USD", "Two developers available"},
	})

	// Existing constraint is not duplicated, the new one is appended
	assert.Len(t, m.Constraints, 2)
	assert.Equal(t, "Two developers available", m.Constraints[1].Content)
	assert.Equal(t, "business", m.Constraints[1].Type)
}

func TestUpdatePrioritiesJoinsByIdWithContentFallback(t *testing.T) {
	m := NewMemory()
	byId := m.AddRequirement(Requirement{Content: "Search across projects", Type: RequirementTypeFunctional})
	legacy := m.AddRequirement(Requirement{Content: "Offline mode", Type: RequirementTypeFunctional})

	m.UpdatePriorities([]FeaturePriority{
		{RequirementId: byId.Id, Feature: "Search across projects", Priority: PriorityMustHave},
		// No id: simulates a priority loaded from an old session file
		{Feature: "Offline mode", Priority: PriorityCouldHave},
	})

	got, ok := m.RequirementById(byId.Id)
	assert.True(t, ok)
	assert.Equal(t, PriorityMustHave, got.Metadata["priority"])

	got, ok = m.RequirementById(legacy.Id)
	assert.True(t, ok)
	assert.Equal(t, PriorityCouldHave, got.Metadata["priority"])
}

func TestRequirementsByTypeSkipsUnknownTypes(t *testing.T) {
	m := NewMemory()
	m.AddRequirement(Requirement{Content: "a", Type: RequirementTypeFunctional})
	m.AddRequirement(Requirement{Content: "b", Type: RequirementTypeBusiness})
	m.AddRequirement(Requirement{Content: "c", Type: "mystery"})

	grouped := m.RequirementsByType()
	assert.Len(t, grouped[RequirementTypeFunctional], 1)
	assert.Len(t, grouped[RequirementTypeBusiness], 1)
	total := 0
	for _, reqs := range grouped {
		total += len(reqs)
	}
	assert.Equal(t, 2, total)
}
