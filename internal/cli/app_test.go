package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rd-assistant/internal/config"
	"rd-assistant/pkg/llm/llmtest"
)

type nopLogger struct{}

func (nopLogger) Debug(module, message string, details map[string]interface{}) {}
func (nopLogger) Info(module, message string, details map[string]interface{})  {}
func (nopLogger) Warn(module, message string, details map[string]interface{})  {}
func (nopLogger) Error(module, message string, details map[string]interface{}) {}
func (nopLogger) Sync() error                                                  { return nil }

const analysisResponse = `{
	"response": {"message": "Noted, live tracking is the core.", "tone": "neutral"},
	"understanding": {"confidence": 0.9, "keyPoints": ["live tracking"]},
	"analysis": {
		"extracted_requirements": [
			{"type": "functional", "content": "Show live vehicle positions on a map", "confidence": 0.9, "rationale": "stated directly", "implicit": false}
		],
		"identified_constraints": [],
		"potential_risks": []
	},
	"next_steps": {"suggested_topics": ["map display"], "recommended_questions": ["How many vehicles?"]}
}`

const secondAnalysisResponse = `{
	"response": {"message": "Reports noted.", "tone": "neutral"},
	"understanding": {"confidence": 0.9, "keyPoints": ["trip reports"]},
	"analysis": {
		"extracted_requirements": [
			{"type": "functional", "content": "Export trip reports", "confidence": 0.9, "rationale": "stated directly", "implicit": false}
		],
		"identified_constraints": [],
		"potential_risks": []
	},
	"next_steps": {"suggested_topics": [], "recommended_questions": []}
}`

const lowConfidenceResponse = `{
	"response": {"message": "Interesting, tell me more.", "tone": "neutral"},
	"understanding": {"confidence": 0.95, "keyPoints": ["offline use is unclear"]},
	"analysis": {
		"extracted_requirements": [
			{"type": "functional", "content": "Support offline mode", "confidence": 0.2, "rationale": "guessed", "implicit": true}
		],
		"identified_constraints": [],
		"potential_risks": []
	},
	"next_steps": {"suggested_topics": [], "recommended_questions": []}
}`

const visionResponse = `{
	"vision": {
		"goals": ["Reduce dispatch response time"],
		"success_criteria": ["Average dispatch under 3 minutes"],
		"target_users": ["Fleet dispatchers"],
		"constraints": [],
		"key_priorities": [
			{"aspect": "Realtime accuracy", "reason": "Dispatch decisions depend on it", "impact": "Wrong vehicle sent"}
		]
	}
}`

const mustHaveAssessment = `{
	"analysis": {
		"necessity_level": "essential",
		"impact": "core dispatch visibility",
		"delay_risk": "blocks the launch",
		"suggested_priority": "must_have",
		"rationale": "Dispatchers cannot work without it"
	}
}`

const couldHaveAssessment = `{
	"analysis": {
		"necessity_level": "nice to have",
		"impact": "reporting convenience",
		"delay_risk": "none for launch",
		"suggested_priority": "could_have",
		"rationale": "Reports can wait for a later release"
	}
}`

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		App: config.AppConfig{
			OutputDir: t.TempDir(),
		},
		Session: config.SessionConfig{
			SaveDir: t.TempDir(),
		},
		Llm: config.LLMConfig{
			Provider:     "openai",
			Model:        "gpt-4o",
			Temperature:  0.7,
			MaxTokens:    4000,
			ReviewTokens: 32000,
		},
	}
}

func runApp(t *testing.T, script string, responses ...string) string {
	t.Helper()
	stub := llmtest.NewStubProvider(responses...)
	var out bytes.Buffer

	app := New(testConfig(t), stub, nopLogger{}, strings.NewReader(script), &out)
	require.NoError(t, app.Run(context.Background()))
	return out.String()
}

func TestConversationAndStatus(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"We track our fleet live",
		"status",
		"exit",
	}, "\n") + "\n"

	out := runApp(t, script, analysisResponse)

	assert.Contains(t, out, "Noted, live tracking is the core.")
	// high confidence, so the extraction is echoed
	assert.Contains(t, out, "+ [functional] Show live vehicle positions on a map")
	assert.Contains(t, out, "? How many vehicles?")
	assert.Contains(t, out, "requirements: 1")
	assert.Contains(t, out, "focus:        map display")
	// exit exports and saves because the conversation produced content
	assert.Contains(t, out, "saved ")
	assert.Contains(t, out, "requirements_Fleet_Tracker_")
}

func TestEmptySessionSkipsExport(t *testing.T) {
	script := "Fleet Tracker\nVehicle telemetry dashboard\nexit\n"

	out := runApp(t, script)

	assert.NotContains(t, out, "wrote ")
	assert.NotContains(t, out, "saved ")
}

func TestLlmCommand(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"llm",
		"llm bogus",
		"llm ollama llama3",
		"exit",
	}, "\n") + "\n"

	out := runApp(t, script)

	assert.Contains(t, out, "provider: openai  model: gpt-4o")
	assert.Contains(t, out, "switch failed")
	assert.Contains(t, out, "switched to ollama (llama3)")
}

func TestLowConfidenceExtractionsStaySilent(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"Maybe it should work offline too",
		"exit",
	}, "\n") + "\n"

	out := runApp(t, script, lowConfidenceResponse)

	assert.Contains(t, out, "Interesting, tell me more.")
	assert.NotContains(t, out, "+ [functional] Support offline mode")
}

func TestPrioritizeCapturesDependencies(t *testing.T) {
	cfg := testConfig(t)
	stub := llmtest.NewStubProvider(
		analysisResponse,
		secondAnalysisResponse,
		visionResponse,
		mustHaveAssessment,
		couldHaveAssessment,
	)
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"We track our fleet live",
		"We also need trip reports",
		"vision",
		"n", // no batch analysis, the walkthrough follows
		"prioritize",
		"1", // first requirement is a must have
		"2", // it depends on the second requirement
		"3", // second requirement can wait
		"",  // apply
		"document",
		"exit",
	}, "\n") + "\n"

	var out bytes.Buffer
	app := New(cfg, stub, nopLogger{}, strings.NewReader(script), &out)
	require.NoError(t, app.Run(context.Background()))

	text := out.String()
	assert.Contains(t, text, "suggested:  must_have")
	assert.Contains(t, text, "depends on: Export trip reports")
	assert.Contains(t, text, "priorities updated (2 features)")

	entries, err := os.ReadDir(cfg.App.OutputDir)
	require.NoError(t, err)
	var requirementsDoc string
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "requirements_") {
			data, readErr := os.ReadFile(filepath.Join(cfg.App.OutputDir, entry.Name()))
			require.NoError(t, readErr)
			requirementsDoc = string(data)
		}
	}
	require.NotEmpty(t, requirementsDoc)
	assert.Contains(t, requirementsDoc, "Depends on: Export trip reports")
}

func TestQualityScoresEveryRequirement(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"We track our fleet live",
		"We also need trip reports",
		"quality",
		"exit",
	}, "\n") + "\n"

	out := runApp(t, script, analysisResponse, secondAnalysisResponse)

	assert.Contains(t, out, "[1/2] Show live vehicle positions on a map")
	assert.Contains(t, out, "[2/2] Export trip reports")
	assert.Contains(t, out, "requirements analyzed: 2")
	assert.Contains(t, out, "average score:")
	assert.Contains(t, out, "score distribution:")
	assert.Contains(t, out, "excellent (0.8-1.0)")
	// the stub gives flat model scores, so both land below the 0.6 bar
	assert.Contains(t, out, "Needs attention first")
}

func TestReviewOpensWithOverviewViews(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"We track our fleet live",
		"review",
		"exit",
	}, "\n") + "\n"

	out := runApp(t, script, analysisResponse)

	assert.Contains(t, out, "Requirements overview")
	assert.Contains(t, out, "+-- Show live vehicle positions on a map")
	assert.Contains(t, out, "Requirement relationships")
	assert.Contains(t, out, "The panel raised no findings.")
}

func TestExitCanBeDeclined(t *testing.T) {
	script := strings.Join([]string{
		"Fleet Tracker",
		"Vehicle telemetry dashboard",
		"exit",
		"n",
		"status",
		"exit",
		"y",
	}, "\n") + "\n"

	out := runApp(t, script)

	assert.Contains(t, out, "Continuing.")
	assert.Contains(t, out, "requirements: 0")
}

func TestHelpListsCommands(t *testing.T) {
	script := "Fleet Tracker\nVehicle telemetry dashboard\nhelp\nexit\n"

	out := runApp(t, script)

	for _, command := range []string{"status", "document", "review", "prioritize", "organize", "llm"} {
		assert.Contains(t, out, command)
	}
}
