package analysis

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"rd-assistant/internal/entity"
)

func TestDecodeResultValidPayload(t *testing.T) {
	raw := `{
		"response": {"message": "Got it", "tone": "confirming"},
		"understanding": {"confidence": 0.82, "keyPoints": ["export"], "interpretations": {"data": "CSV export"}, "uncertainAreas": []},
		"analysis": {
			"extracted_requirements": [
				{"type": "functional", "content": "Export reports as CSV", "confidence": 0.9, "rationale": "stated directly", "implicit": false}
			],
			"identified_constraints": [],
			"potential_risks": []
		},
		"next_steps": {"suggested_topics": ["report formats"], "recommended_questions": []}
	}`

	result := DecodeResult(raw)
	assert.False(t, result.IsError())
	assert.Equal(t, "Got it", result.Response.Message)
	assert.Equal(t, 0.82, result.Understanding.Confidence)
	assert.Len(t, result.Analysis.ExtractedRequirements, 1)
	assert.Equal(t, "functional", result.Analysis.ExtractedRequirements[0].Type)
}

func TestDecodeResultStripsCodeFence(t *testing.T) {
	raw := "```json\n{\"response\": {\"message\": \"ok\", \"tone\": \"empathetic\"}}\n```"
	result := DecodeResult(raw)
	assert.False(t, result.IsError())
	assert.Equal(t, "ok", result.Response.Message)
}

func TestDecodeResultInvalidJSONReturnsErrorPayload(t *testing.T) {
	result := DecodeResult("the model rambled instead of answering")

	assert.True(t, result.IsError())
	assert.Equal(t, "error", result.Response.Tone)
	// Lists are present but empty so callers can range without nil checks
	assert.NotNil(t, result.Analysis.ExtractedRequirements)
	assert.Empty(t, result.Analysis.ExtractedRequirements)
	assert.NotNil(t, result.NextSteps.SuggestedTopics)
}

func TestBuildPromptIncludesContextSections(t *testing.T) {
	mem := entity.NewMemory()
	mem.SetProjectInfo("Inventory Hub", "Warehouse inventory tracker")
	mem.AddRequirement(entity.Requirement{Content: "Scan barcodes", Type: entity.RequirementTypeFunctional})
	mem.AddConstraint(entity.Constraint{Content: "Must run on handheld scanners", Type: "technical", Impact: "hardware"})
	mem.AddDecision("Use an event-driven sync model")
	mem.UpdateFocus("offline behaviour")

	prompt := BuildPrompt("What about sync conflicts?", mem)

	assert.Contains(t, prompt, "Name: Inventory Hub")
	assert.Contains(t, prompt, "- Scan barcodes")
	assert.Contains(t, prompt, "- Must run on handheld scanners")
	assert.Contains(t, prompt, "- Use an event-driven sync model")
	assert.Contains(t, prompt, "##Current focus\noffline behaviour")
	assert.Contains(t, prompt, "What about sync conflicts?")
}
