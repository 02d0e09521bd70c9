package document

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/visualizer"
)

// Generator renders a project memory snapshot into a Markdown requirements
// document. Rendering is pure: the same snapshot and clock produce the same
// document.
type Generator struct {
	visualizer *visualizer.Visualizer
	now        func() time.Time
}

func NewGenerator() *Generator {
	return &Generator{
		visualizer: visualizer.New(),
		now:        time.Now,
	}
}

// SetClock overrides the timestamp source used in headers and filenames.
func (g *Generator) SetClock(now func() time.Time) {
	g.now = now
}

func (g *Generator) GenerateMarkdown(mem *entity.Memory) string {
	sections := []string{
		g.header(),
		g.projectOverview(mem),
		g.visionSection(mem),
		g.visualizationSection(mem),
		g.requirementsSection(mem),
		g.constraintsSection(mem),
		g.risksSection(mem),
		g.decisionsSection(mem),
	}
	return strings.Join(sections, "\n\n")
}

func (g *Generator) header() string {
	return fmt.Sprintf("# Requirements Specification\n\nGenerated: %s\n",
		g.now().Format("2006-01-02 15:04:05"))
}

func (g *Generator) projectOverview(mem *entity.Memory) string {
	name := mem.ProjectName
	if name == "" {
		name = "Not set"
	}
	description := mem.ProjectDescription
	if description == "" {
		description = "Not set"
	}
	return fmt.Sprintf("## Project Overview\n\n### Project Name\n%s\n\n### Description\n%s\n",
		name, description)
}

func (g *Generator) visionSection(mem *entity.Memory) string {
	if mem.Vision == nil {
		return "## Project Vision\n\nNo vision has been defined yet."
	}

	vision := mem.Vision
	sections := []string{"## Project Vision"}

	if len(vision.Goals) > 0 {
		sections = append(sections, "\n### Goals")
		for _, goal := range vision.Goals {
			sections = append(sections, fmt.Sprintf("- %s", goal))
		}
	}

	if len(vision.SuccessCriteria) > 0 {
		sections = append(sections, "\n### Success Criteria")
		for _, criteria := range vision.SuccessCriteria {
			sections = append(sections, fmt.Sprintf("- %s", criteria))
		}
	}

	if len(vision.TargetUsers) > 0 {
		sections = append(sections, "\n### Target Users")
		for _, user := range vision.TargetUsers {
			sections = append(sections, fmt.Sprintf("- %s", user))
		}
	}

	if len(mem.FeaturePriorities) > 0 {
		sections = append(sections, "\n### Feature Priorities")
		for _, bucket := range entity.FeaturePriorities {
			var features []entity.FeaturePriority
			for _, p := range mem.FeaturePriorities {
				if p.Priority == bucket {
					features = append(features, p)
				}
			}
			if len(features) == 0 {
				continue
			}
			sections = append(sections, fmt.Sprintf("\n#### %s", priorityLabel(bucket)))
			for _, feature := range features {
				sections = append(sections, fmt.Sprintf("- %s", feature.Feature))
				if feature.Rationale != "" {
					sections = append(sections, fmt.Sprintf("  - Rationale: %s", feature.Rationale))
				}
				if len(feature.Dependencies) > 0 {
					var names []string
					for _, dep := range feature.Dependencies {
						if req, ok := mem.RequirementById(dep); ok {
							names = append(names, req.Content)
						}
					}
					if len(names) > 0 {
						sections = append(sections, fmt.Sprintf("  - Depends on: %s", strings.Join(names, ", ")))
					}
				}
			}
		}
	}

	return strings.Join(sections, "\n")
}

func priorityLabel(priority string) string {
	switch priority {
	case entity.PriorityMustHave:
		return "Must Have"
	case entity.PriorityShouldHave:
		return "Should Have"
	case entity.PriorityCouldHave:
		return "Could Have"
	case entity.PriorityWontHave:
		return "Won't Have"
	}
	return priority
}

func (g *Generator) visualizationSection(mem *entity.Memory) string {
	sections := []string{"## Requirement Visualization"}

	sections = append(sections, "\n### Requirement Map")
	sections = append(sections, "The mindmap below shows the overall structure of the requirements:")
	sections = append(sections, "\n```mermaid")
	sections = append(sections, g.visualizer.GenerateMindmap(mem))
	sections = append(sections, "```")

	sections = append(sections, "\n### Requirement Relationships")
	sections = append(sections, "The diagram below shows dependencies and relationships between requirements:")
	sections = append(sections, "\n```mermaid")
	sections = append(sections, g.visualizer.GenerateFlowchart(mem))
	sections = append(sections, "```")

	if len(mem.FeaturePriorities) > 0 {
		sections = append(sections, "\n### Priority Map")
		sections = append(sections, "The diagram below shows feature priorities and their dependencies:")
		sections = append(sections, "\n```mermaid")
		sections = append(sections, g.visualizer.GeneratePriorityGraph(mem))
		sections = append(sections, "```")
	}

	return strings.Join(sections, "\n")
}

func (g *Generator) requirementsSection(mem *entity.Memory) string {
	sections := []string{"## Requirements"}

	grouped := mem.RequirementsByType()
	for _, reqType := range entity.RequirementTypes {
		reqs := grouped[reqType]
		if len(reqs) == 0 {
			continue
		}
		sections = append(sections, fmt.Sprintf("\n### %s", visualizer.TypeDisplayName(reqType)))
		for _, req := range reqs {
			sections = append(sections, formatRequirement(req))
		}
	}

	return strings.Join(sections, "\n")
}

func formatRequirement(req entity.Requirement) string {
	var qualifiers []string
	if req.Confidence < 1.0 {
		qualifiers = append(qualifiers, fmt.Sprintf("(confidence: %.1f%%)", req.Confidence*100))
	}
	if req.Implicit {
		qualifiers = append(qualifiers, "(implicitly extracted)")
	}

	return fmt.Sprintf("#### %s\n%s\n\nRationale: %s\n",
		req.Content, strings.Join(qualifiers, " "), req.Rationale)
}

func (g *Generator) constraintsSection(mem *entity.Memory) string {
	if len(mem.Constraints) == 0 {
		return "## Constraints\n\nNo constraints have been identified."
	}

	sections := []string{"## Constraints"}
	for _, constraint := range mem.Constraints {
		sections = append(sections, fmt.Sprintf("### %s\n\n- Type: %s\n- Impact: %s\n",
			constraint.Content, constraint.Type, constraint.Impact))
	}
	return strings.Join(sections, "\n")
}

func (g *Generator) risksSection(mem *entity.Memory) string {
	if len(mem.Risks) == 0 {
		return "## Risks\n\nNo risks have been identified."
	}

	sections := []string{"## Risks"}
	for _, risk := range mem.Risks {
		sections = append(sections, fmt.Sprintf("### %s\n\n- Severity: %s\n- Mitigation: %s\n",
			risk.Description, risk.Severity, risk.Mitigation))
	}
	return strings.Join(sections, "\n")
}

func (g *Generator) decisionsSection(mem *entity.Memory) string {
	if len(mem.KeyDecisions) == 0 {
		return "## Key Decisions\n\nNo key decisions have been recorded."
	}

	sections := []string{"## Key Decisions"}
	for _, decision := range mem.KeyDecisions {
		sections = append(sections, fmt.Sprintf("### %s\n\nDecided: %s\n",
			decision.Content, decision.CreatedAt.Format("2006-01-02 15:04:05")))
	}
	return strings.Join(sections, "\n")
}

// ExportResult names the files written by Export.
type ExportResult struct {
	RequirementsPath string
	HistoryPath      string
}

// Export writes the requirements document and the change history to the
// output directory with timestamped filenames.
func (g *Generator) Export(mem *entity.Memory, outputDir string) (*ExportResult, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return nil, fmt.Errorf("create output dir: %w", err)
	}

	timestamp := g.now().Format("20060102_150405")
	projectName := "project"
	if mem.ProjectName != "" {
		projectName = strings.ReplaceAll(mem.ProjectName, " ", "_")
	}

	docPath := filepath.Join(outputDir, fmt.Sprintf("requirements_%s_%s.md", projectName, timestamp))
	if err := os.WriteFile(docPath, []byte(g.GenerateMarkdown(mem)), 0644); err != nil {
		return nil, fmt.Errorf("write requirements document: %w", err)
	}

	historyPath := filepath.Join(outputDir, fmt.Sprintf("change_history_%s_%s.md", projectName, timestamp))
	if err := os.WriteFile(historyPath, []byte(mem.History.GenerateMarkdown()), 0644); err != nil {
		return nil, fmt.Errorf("write change history: %w", err)
	}

	return &ExportResult{
		RequirementsPath: docPath,
		HistoryPath:      historyPath,
	}, nil
}
