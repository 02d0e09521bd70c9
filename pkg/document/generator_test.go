package document

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/entity"
)

func fixedClock() time.Time {
	return time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
}

func seedMemory() *entity.Memory {
	mem := entity.NewMemory()
	mem.SetProjectInfo("Fleet Tracker", "Vehicle telemetry dashboard")
	mem.AddRequirement(entity.Requirement{
		Content:    "Show live vehicle positions on a map",
		Type:       entity.RequirementTypeFunctional,
		Confidence: 0.85,
		Rationale:  "Dispatchers need realtime visibility",
	})
	mem.AddRequirement(entity.Requirement{
		Content:    "Positions update within 5 seconds",
		Type:       entity.RequirementTypeNonFunctional,
		Confidence: 1.0,
		Implicit:   true,
		Rationale:  "Stale data misleads dispatchers",
	})
	mem.AddConstraint(entity.Constraint{
		Content: "Must run on the existing Kubernetes cluster",
		Type:    "technical",
		Impact:  "Limits resource usage per pod",
	})
	mem.AddRisk(entity.Risk{
		Description: "GPS data may be delayed in tunnels",
		Severity:    "medium",
		Mitigation:  "Interpolate positions from last known heading",
	})
	mem.AddDecision("Use the existing telemetry ingestion system")
	return mem
}

func newFixedGenerator() *Generator {
	g := NewGenerator()
	g.SetClock(fixedClock)
	return g
}

func TestGenerateMarkdownSectionOrder(t *testing.T) {
	out := newFixedGenerator().GenerateMarkdown(seedMemory())

	headings := []string{
		"# Requirements Specification",
		"## Project Overview",
		"## Project Vision",
		"## Requirement Visualization",
		"## Requirements",
		"## Constraints",
		"## Risks",
		"## Key Decisions",
	}
	last := -1
	for _, h := range headings {
		idx := strings.Index(out, h)
		require.GreaterOrEqual(t, idx, 0, h)
		assert.Greater(t, idx, last, h)
		last = idx
	}

	assert.Contains(t, out, "Generated: 2025-03-14 09:26:53")
	assert.Contains(t, out, "#### Show live vehicle positions on a map")
	assert.Contains(t, out, "(confidence: 85.0%)")
	assert.Contains(t, out, "(implicitly extracted)")
	assert.NotContains(t, out, "(confidence: 100.0%)")
}

func TestGenerateMarkdownIsDeterministic(t *testing.T) {
	mem := seedMemory()
	g := newFixedGenerator()

	first := g.GenerateMarkdown(mem)
	second := g.GenerateMarkdown(mem)
	assert.Equal(t, first, second)
}

func TestMermaidFencesAreTerminated(t *testing.T) {
	mem := seedMemory()
	first := mem.Requirements[0]
	mem.UpdatePriorities([]entity.FeaturePriority{
		{RequirementId: first.Id, Feature: first.Content, Priority: entity.PriorityMustHave},
	})

	out := newFixedGenerator().GenerateMarkdown(mem)

	opens := strings.Count(out, "```mermaid")
	closes := strings.Count(out, "```") - opens
	assert.Equal(t, 3, opens)
	assert.Equal(t, opens, closes)
}

func TestVisionSectionGroupsPriorities(t *testing.T) {
	mem := seedMemory()
	mem.UpdateVision(&entity.ProjectVision{
		Goals:           []string{"Reduce dispatch response time"},
		SuccessCriteria: []string{"Average dispatch under 3 minutes"},
		TargetUsers:     []string{"Fleet dispatchers"},
	})
	first := mem.Requirements[0]
	second := mem.Requirements[1]
	mem.UpdatePriorities([]entity.FeaturePriority{
		{RequirementId: second.Id, Feature: second.Content, Priority: entity.PriorityShouldHave,
			Rationale:    "Freshness matters but the map works without it",
			Dependencies: []uuid.UUID{first.Id}},
		{RequirementId: first.Id, Feature: first.Content, Priority: entity.PriorityMustHave},
	})

	out := newFixedGenerator().GenerateMarkdown(mem)

	mustIdx := strings.Index(out, "#### Must Have")
	shouldIdx := strings.Index(out, "#### Should Have")
	require.GreaterOrEqual(t, mustIdx, 0)
	require.GreaterOrEqual(t, shouldIdx, 0)
	assert.Less(t, mustIdx, shouldIdx)
	assert.Contains(t, out, "- Rationale: Freshness matters but the map works without it")
	assert.Contains(t, out, "- Depends on: Show live vehicle positions on a map")
	assert.Contains(t, out, "- Reduce dispatch response time")
}

func TestExportWritesDocumentAndHistory(t *testing.T) {
	dir := t.TempDir()
	mem := seedMemory()

	res, err := newFixedGenerator().Export(mem, dir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "requirements_Fleet_Tracker_20250314_092653.md"), res.RequirementsPath)
	assert.Equal(t, filepath.Join(dir, "change_history_Fleet_Tracker_20250314_092653.md"), res.HistoryPath)

	doc, err := os.ReadFile(res.RequirementsPath)
	require.NoError(t, err)
	assert.Contains(t, string(doc), "# Requirements Specification")

	hist, err := os.ReadFile(res.HistoryPath)
	require.NoError(t, err)
	assert.Contains(t, string(hist), "# Change History")
}
