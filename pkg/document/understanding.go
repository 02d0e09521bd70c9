package document

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"rd-assistant/internal/entity"
)

// GenerateUnderstandingMarkdown renders the assistant's comprehension of the
// project over time, newest snapshot first.
func (g *Generator) GenerateUnderstandingMarkdown(mem *entity.Memory) string {
	var b strings.Builder
	b.WriteString("# Understanding Status\n\n")
	b.WriteString(fmt.Sprintf("Updated: %s\n", g.now().Format("2006-01-02 15:04:05")))

	if len(mem.UnderstandingHistory) == 0 {
		b.WriteString("\nNo dialogue has been recorded yet.\n")
		return b.String()
	}

	latest := mem.UnderstandingHistory[len(mem.UnderstandingHistory)-1]

	b.WriteString("\n## Current Understanding\n\n")
	b.WriteString(fmt.Sprintf("Confidence: %s %.0f%%\n", confidenceBar(latest.Confidence), latest.Confidence*100))

	if len(latest.KeyPoints) > 0 {
		b.WriteString("\n### Key Points\n")
		for _, point := range latest.KeyPoints {
			b.WriteString(fmt.Sprintf("- %s\n", point))
		}
	}

	if len(latest.Interpretations) > 0 {
		b.WriteString("\n### Interpretations\n")
		topics := make([]string, 0, len(latest.Interpretations))
		for topic := range latest.Interpretations {
			topics = append(topics, topic)
		}
		sort.Strings(topics)
		for _, topic := range topics {
			b.WriteString(fmt.Sprintf("- %s: %s\n", topic, latest.Interpretations[topic]))
		}
	}

	if len(latest.UncertainAreas) > 0 {
		b.WriteString("\n### Uncertain Areas\n")
		for _, area := range latest.UncertainAreas {
			b.WriteString(fmt.Sprintf("- %s\n", area))
		}
	}

	b.WriteString("\n## Dialogue History\n")
	for i := len(mem.UnderstandingHistory) - 1; i >= 0; i-- {
		status := mem.UnderstandingHistory[i]
		b.WriteString(fmt.Sprintf("\n### %s\n\n", status.Timestamp.Format("2006-01-02 15:04:05")))
		b.WriteString(fmt.Sprintf("- User: %s\n", status.UserInput))
		b.WriteString(fmt.Sprintf("- Assistant: %s\n", status.AssistantReply))
		b.WriteString(fmt.Sprintf("- Confidence: %.0f%%\n", status.Confidence*100))
	}

	return b.String()
}

// ExportUnderstanding writes the understanding report to understanding.md in
// the output directory, overwriting the previous snapshot.
func (g *Generator) ExportUnderstanding(mem *entity.Memory, outputDir string) (string, error) {
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}

	path := filepath.Join(outputDir, "understanding.md")
	if err := os.WriteFile(path, []byte(g.GenerateUnderstandingMarkdown(mem)), 0644); err != nil {
		return "", fmt.Errorf("write understanding report: %w", err)
	}
	return path, nil
}

func confidenceBar(confidence float64) string {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	filled := int(confidence * 10)
	return strings.Repeat("#", filled) + strings.Repeat("-", 10-filled)
}
