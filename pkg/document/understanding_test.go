package document

import (
	"os"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/entity"
)

func TestGenerateUnderstandingMarkdown(t *testing.T) {
	mem := entity.NewMemory()
	mem.AddUnderstanding(entity.UnderstandingStatus{
		Timestamp:      time.Date(2025, 3, 14, 9, 0, 0, 0, time.UTC),
		Confidence:     0.4,
		UserInput:      "We need a fleet dashboard",
		AssistantReply: "Tell me about your dispatchers",
	})
	mem.AddUnderstanding(entity.UnderstandingStatus{
		Timestamp:       time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC),
		Confidence:      0.7,
		KeyPoints:       []string{"Dispatchers are the primary users"},
		Interpretations: map[string]string{"realtime": "positions refresh every few seconds"},
		UncertainAreas:  []string{"offline behavior"},
		UserInput:       "Dispatchers watch the map all day",
		AssistantReply:  "How fresh must positions be?",
	})

	out := newFixedGenerator().GenerateUnderstandingMarkdown(mem)

	assert.Contains(t, out, "Confidence: #######--- 70%")
	assert.Contains(t, out, "- Dispatchers are the primary users")
	assert.Contains(t, out, "- realtime: positions refresh every few seconds")
	assert.Contains(t, out, "- offline behavior")

	// newest dialogue entry first
	first := "### 2025-03-14 09:05:00"
	second := "### 2025-03-14 09:00:00"
	assert.Less(t, indexOf(out, first), indexOf(out, second))
}

func indexOf(s, sub string) int {
	return strings.Index(s, sub)
}

func TestInterpretationsRenderInSortedOrder(t *testing.T) {
	mem := entity.NewMemory()
	mem.AddUnderstanding(entity.UnderstandingStatus{
		Timestamp:  time.Date(2025, 3, 14, 9, 5, 0, 0, time.UTC),
		Confidence: 0.7,
		Interpretations: map[string]string{
			"zones":    "depots are grouped by region",
			"alerts":   "drivers get push notifications",
			"realtime": "positions refresh every few seconds",
		},
	})

	g := newFixedGenerator()
	out := g.GenerateUnderstandingMarkdown(mem)

	assert.Less(t, indexOf(out, "- alerts:"), indexOf(out, "- realtime:"))
	assert.Less(t, indexOf(out, "- realtime:"), indexOf(out, "- zones:"))

	// two renders of the same memory are byte identical
	assert.Equal(t, out, g.GenerateUnderstandingMarkdown(mem))
}

func TestGenerateUnderstandingMarkdownEmpty(t *testing.T) {
	out := newFixedGenerator().GenerateUnderstandingMarkdown(entity.NewMemory())
	assert.Contains(t, out, "No dialogue has been recorded yet.")
}

func TestExportUnderstanding(t *testing.T) {
	dir := t.TempDir()
	mem := entity.NewMemory()
	mem.AddUnderstanding(entity.UnderstandingStatus{
		Timestamp:  time.Now(),
		Confidence: 0.5,
		UserInput:  "hello",
	})

	path, err := newFixedGenerator().ExportUnderstanding(mem, dir)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Understanding Status")
}

func TestConfidenceBar(t *testing.T) {
	assert.Equal(t, "----------", confidenceBar(0))
	assert.Equal(t, "#####-----", confidenceBar(0.5))
	assert.Equal(t, "##########", confidenceBar(1))
	assert.Equal(t, "----------", confidenceBar(-3))
}
