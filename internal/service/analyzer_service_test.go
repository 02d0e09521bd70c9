package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/llm/llmtest"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

const analysisResponse = `{
	"response": {"message": "Got it, live tracking matters most.", "tone": "neutral"},
	"understanding": {
		"confidence": 0.85,
		"keyPoints": ["realtime tracking is the core feature"],
		"interpretations": {"realtime": "a few seconds of delay at most"},
		"uncertainAreas": ["offline behavior"]
	},
	"analysis": {
		"extracted_requirements": [
			{"type": "functional", "content": "Show live vehicle positions on a map", "confidence": 0.9, "rationale": "stated directly", "implicit": false},
			{"type": "non_functional", "content": "Positions update within 5 seconds", "confidence": 0.6, "rationale": "implied", "implicit": true}
		],
		"identified_constraints": [
			{"type": "technical", "content": "Must reuse the telemetry pipeline", "impact": "limits ingestion format choices"}
		],
		"potential_risks": [
			{"description": "GPS data may be delayed in tunnels", "severity": "medium", "mitigation": "interpolate positions"}
		]
	},
	"next_steps": {
		"suggested_topics": ["map display details"],
		"recommended_questions": ["How many vehicles are tracked at once?"]
	}
}`

func TestProcessMessageMergesConfidentFindings(t *testing.T) {
	stub := llmtest.NewStubProvider(analysisResponse)
	s := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)

	mem := entity.NewMemory()
	result := s.ProcessMessage(context.Background(), mem, "We track our fleet live")

	require.False(t, result.IsError())
	assert.Equal(t, "Got it, live tracking matters most.", result.Response.Message)

	// only the 0.9-confidence requirement clears the merge gate
	require.Len(t, mem.Requirements, 1)
	assert.Equal(t, "Show live vehicle positions on a map", mem.Requirements[0].Content)

	require.Len(t, mem.Constraints, 1)
	require.Len(t, mem.Risks, 1)
	assert.Equal(t, "map display details", mem.CurrentFocus)

	require.Len(t, mem.UnderstandingHistory, 1)
	status := mem.UnderstandingHistory[0]
	assert.Equal(t, 0.85, status.Confidence)
	assert.Equal(t, "We track our fleet live", status.UserInput)
	assert.Equal(t, "Got it, live tracking matters most.", status.AssistantReply)
}

func TestProcessMessageNormalizesUnknownType(t *testing.T) {
	stub := llmtest.NewStubProvider(`{
		"response": {"message": "ok", "tone": "neutral"},
		"understanding": {"confidence": 0.9},
		"analysis": {
			"extracted_requirements": [
				{"type": "Feature", "content": "Export trip reports", "confidence": 0.95}
			],
			"identified_constraints": [],
			"potential_risks": []
		},
		"next_steps": {"suggested_topics": [], "recommended_questions": []}
	}`)
	s := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)

	mem := entity.NewMemory()
	s.ProcessMessage(context.Background(), mem, "we need reports")

	require.Len(t, mem.Requirements, 1)
	assert.Equal(t, entity.RequirementTypeFunctional, mem.Requirements[0].Type)
	assert.Equal(t, "", mem.CurrentFocus)
}

func TestProcessMessageProviderFailure(t *testing.T) {
	stub := llmtest.NewStubProvider()
	stub.Err = errors.New("backend unavailable")
	s := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)

	mem := entity.NewMemory()
	result := s.ProcessMessage(context.Background(), mem, "hello")

	assert.True(t, result.IsError())
	assert.NotNil(t, result.Analysis.ExtractedRequirements)
	assert.Empty(t, mem.Requirements)
	assert.Empty(t, mem.UnderstandingHistory)
}

func TestProcessMessageUnparseableResponse(t *testing.T) {
	stub := llmtest.NewStubProvider("this is not json")
	s := NewAnalyzerService(stub, nopLogger{}, 0.7, 4000)

	mem := entity.NewMemory()
	result := s.ProcessMessage(context.Background(), mem, "hello")

	assert.True(t, result.IsError())
	assert.Empty(t, mem.Requirements)
}
