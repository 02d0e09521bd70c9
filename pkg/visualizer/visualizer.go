package visualizer

import (
	"fmt"
	"strings"

	"rd-assistant/internal/entity"
)

// Visualizer renders requirement diagrams as Mermaid definitions and plain
// text views. Callers embedding the Mermaid output are responsible for the
// surrounding code fence.
type Visualizer struct{}

func New() *Visualizer {
	return &Visualizer{}
}

var typeDisplayNames = map[string]string{
	entity.RequirementTypeFunctional:    "Functional Requirements",
	entity.RequirementTypeNonFunctional: "Non-functional Requirements",
	entity.RequirementTypeTechnical:     "Technical Requirements",
	entity.RequirementTypeBusiness:      "Business Requirements",
}

var priorityColors = map[string]string{
	entity.PriorityMustHave:   "#ff6b6b",
	entity.PriorityShouldHave: "#ffd93d",
	entity.PriorityCouldHave:  "#6bff6b",
	entity.PriorityWontHave:   "#d3d3d3",
}

// GenerateMindmap renders the requirement hierarchy as a Mermaid mindmap.
func (v *Visualizer) GenerateMindmap(mem *entity.Memory) string {
	grouped := mem.RequirementsByType()

	lines := []string{"mindmap"}
	lines = append(lines, fmt.Sprintf("  %s", rootLabel(mem)))

	for _, reqType := range entity.RequirementTypes {
		reqs := grouped[reqType]
		if len(reqs) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("    %s", TypeDisplayName(reqType)))
		for _, req := range reqs {
			lines = append(lines, fmt.Sprintf("      %s", truncate(req.Content, 40)))
			if req.Rationale != "" {
				lines = append(lines, fmt.Sprintf("        %s", truncate(req.Rationale, 30)))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// GenerateFlowchart renders requirement relationships as a Mermaid graph.
// Node shape encodes the type: rectangle for functional, rhombus for
// non-functional, stadium for everything else.
func (v *Visualizer) GenerateFlowchart(mem *entity.Memory) string {
	lines := []string{"graph TD"}

	for i, req := range mem.Requirements {
		nodeId := fmt.Sprintf("R%d", i)
		label := truncate(req.Content, 30)
		switch req.Type {
		case entity.RequirementTypeFunctional:
			lines = append(lines, fmt.Sprintf("    %s[%s]", nodeId, label))
		case entity.RequirementTypeNonFunctional:
			lines = append(lines, fmt.Sprintf("    %s{%s}", nodeId, label))
		default:
			lines = append(lines, fmt.Sprintf("    %s([%s])", nodeId, label))
		}
	}

	for i, req1 := range mem.Requirements {
		for j, req2 := range mem.Requirements {
			if i != j && related(req1, req2) {
				lines = append(lines, fmt.Sprintf("    R%d --> R%d", i, j))
			}
		}
	}

	return strings.Join(lines, "\n")
}

// GeneratePriorityGraph renders the MoSCoW priorities with a color legend and
// dependency edges. Dependencies are resolved by requirement id.
func (v *Visualizer) GeneratePriorityGraph(mem *entity.Memory) string {
	lines := []string{"graph TD"}

	indexById := map[string]int{}
	for i, p := range mem.FeaturePriorities {
		indexById[p.RequirementId.String()] = i
	}

	for i, p := range mem.FeaturePriorities {
		nodeId := fmt.Sprintf("F%d", i)
		color, ok := priorityColors[p.Priority]
		if !ok {
			color = priorityColors[entity.PriorityWontHave]
		}
		lines = append(lines, fmt.Sprintf("    %s[%s]", nodeId, truncate(p.Feature, 40)))
		lines = append(lines, fmt.Sprintf("    style %s fill:%s", nodeId, color))

		for _, dep := range p.Dependencies {
			if j, found := indexById[dep.String()]; found {
				lines = append(lines, fmt.Sprintf("    F%d --> %s", j, nodeId))
			}
		}
	}

	lines = append(lines, "    subgraph Priority")
	lines = append(lines, "    L1[Must Have]")
	lines = append(lines, "    L2[Should Have]")
	lines = append(lines, "    L3[Could Have]")
	lines = append(lines, `    L4["Won't Have"]`)
	lines = append(lines, "    end")
	lines = append(lines, fmt.Sprintf("    style L1 fill:%s", priorityColors[entity.PriorityMustHave]))
	lines = append(lines, fmt.Sprintf("    style L2 fill:%s", priorityColors[entity.PriorityShouldHave]))
	lines = append(lines, fmt.Sprintf("    style L3 fill:%s", priorityColors[entity.PriorityCouldHave]))
	lines = append(lines, fmt.Sprintf("    style L4 fill:%s", priorityColors[entity.PriorityWontHave]))

	return strings.Join(lines, "\n")
}

// GenerateTextTree renders the requirements as an indented console tree.
func (v *Visualizer) GenerateTextTree(mem *entity.Memory) string {
	grouped := mem.RequirementsByType()

	var lines []string
	title := mem.ProjectName
	if title == "" {
		title = "Project Requirements"
	}
	lines = append(lines, title, "")

	for _, reqType := range entity.RequirementTypes {
		reqs := grouped[reqType]
		if len(reqs) == 0 {
			continue
		}
		lines = append(lines, fmt.Sprintf("+- %s", TypeDisplayName(reqType)))
		for _, req := range reqs {
			lines = append(lines, fmt.Sprintf("|  +-- %s", req.Content))
			if req.Rationale != "" {
				lines = append(lines, fmt.Sprintf("|      - %s", req.Rationale))
			}
			if req.Confidence < 1.0 {
				lines = append(lines, fmt.Sprintf("|      - confidence: %.1f%%", req.Confidence*100))
			}
		}
		lines = append(lines, "|")
	}

	return strings.Join(lines, "\n")
}

// GenerateTextFlow renders requirement relationships as a console listing.
func (v *Visualizer) GenerateTextFlow(mem *entity.Memory) string {
	lines := []string{"Requirement relationships", ""}

	for i, req1 := range mem.Requirements {
		lines = append(lines, fmt.Sprintf("[%s] %s", req1.Type, req1.Content))
		for j, req2 := range mem.Requirements {
			if i != j && related(req1, req2) {
				lines = append(lines, fmt.Sprintf("  -> [%s] %s", req2.Type, req2.Content))
			}
		}
		lines = append(lines, "")
	}

	return strings.Join(lines, "\n")
}

// TypeDisplayName maps a requirement type to its heading text.
func TypeDisplayName(reqType string) string {
	if name, ok := typeDisplayNames[reqType]; ok {
		return name
	}
	return reqType
}

func rootLabel(mem *entity.Memory) string {
	if mem.ProjectName != "" {
		return sanitize(mem.ProjectName)
	}
	return "Project Requirements"
}

func truncate(text string, maxLength int) string {
	text = sanitize(text)
	runes := []rune(text)
	if len(runes) <= maxLength {
		return text
	}
	return string(runes[:maxLength-3]) + "..."
}

// sanitize strips characters that break Mermaid node labels.
func sanitize(text string) string {
	replacer := strings.NewReplacer(
		"[", "(", "]", ")",
		"{", "(", "}", ")",
		"\n", " ", "\"", "'",
	)
	return replacer.Replace(text)
}

func related(req1, req2 entity.Requirement) bool {
	if req1.Type == req2.Type {
		return true
	}

	words1 := map[string]struct{}{}
	for _, w := range strings.Fields(req1.Content) {
		words1[w] = struct{}{}
	}
	common := 0
	for _, w := range strings.Fields(req2.Content) {
		if _, ok := words1[w]; ok {
			common++
		}
	}
	return common >= 2
}
