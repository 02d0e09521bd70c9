package service

import (
	"context"
	"strings"

	"rd-assistant/internal/entity"
	"rd-assistant/internal/pkg/logger"
	"rd-assistant/pkg/analysis"
	"rd-assistant/pkg/llm"
)

// Requirements below this confidence stay in the conversation but are not
// merged into memory.
const mergeConfidenceThreshold = 0.7

type IAnalyzerService interface {
	ProcessMessage(ctx context.Context, mem *entity.Memory, input string) *analysis.Result
}

type analyzerService struct {
	provider    llm.LLMProvider
	logger      logger.ILogger
	temperature float64
	maxTokens   int
}

func NewAnalyzerService(provider llm.LLMProvider, log logger.ILogger, temperature float64, maxTokens int) IAnalyzerService {
	return &analyzerService{
		provider:    provider,
		logger:      log,
		temperature: temperature,
		maxTokens:   maxTokens,
	}
}

// ProcessMessage runs one conversation turn: build the contextual prompt,
// decode the model's structured answer and merge confident findings into
// memory. Failures come back as an error-toned result so the conversation
// survives a bad model call.
func (s *analyzerService) ProcessMessage(ctx context.Context, mem *entity.Memory, input string) *analysis.Result {
	prompt := analysis.BuildPrompt(input, mem)

	raw, err := s.provider.Generate(ctx, prompt,
		llm.WithJSONResponse(),
		llm.WithTemperature(s.temperature),
		llm.WithMaxTokens(s.maxTokens),
	)
	if err != nil {
		s.logger.Error("analyzer", "model call failed", map[string]interface{}{"error": err.Error()})
		return analysis.ErrorResult(err.Error())
	}

	result := analysis.DecodeResult(raw)
	if result.IsError() {
		s.logger.Warn("analyzer", "unparseable model response", map[string]interface{}{"raw_length": len(raw)})
		return result
	}

	s.applyToMemory(mem, input, result)
	return result
}

func (s *analyzerService) applyToMemory(mem *entity.Memory, input string, result *analysis.Result) {
	merged := 0
	for _, extracted := range result.Analysis.ExtractedRequirements {
		if extracted.Confidence <= mergeConfidenceThreshold || extracted.Content == "" {
			continue
		}
		mem.AddRequirement(entity.Requirement{
			Content:    extracted.Content,
			Type:       normalizeRequirementType(extracted.Type),
			Confidence: extracted.Confidence,
			Rationale:  extracted.Rationale,
			Implicit:   extracted.Implicit,
		})
		merged++
	}

	for _, constraint := range result.Analysis.IdentifiedConstraints {
		if constraint.Content == "" {
			continue
		}
		mem.AddConstraint(entity.Constraint{
			Content: constraint.Content,
			Type:    constraint.Type,
			Impact:  constraint.Impact,
		})
	}

	for _, risk := range result.Analysis.PotentialRisks {
		if risk.Description == "" {
			continue
		}
		mem.AddRisk(entity.Risk{
			Description: risk.Description,
			Severity:    risk.Severity,
			Mitigation:  risk.Mitigation,
		})
	}

	if len(result.NextSteps.SuggestedTopics) > 0 {
		mem.UpdateFocus(result.NextSteps.SuggestedTopics[0])
	}

	mem.AddUnderstanding(entity.UnderstandingStatus{
		Confidence:      result.Understanding.Confidence,
		KeyPoints:       result.Understanding.KeyPoints,
		Interpretations: result.Understanding.Interpretations,
		UncertainAreas:  result.Understanding.UncertainAreas,
		UserInput:       input,
		AssistantReply:  result.Response.Message,
	})

	s.logger.Info("analyzer", "merged analysis into memory", map[string]interface{}{
		"requirements_merged": merged,
		"constraints":         len(result.Analysis.IdentifiedConstraints),
		"risks":               len(result.Analysis.PotentialRisks),
	})
}

func normalizeRequirementType(reqType string) string {
	cleaned := strings.ToLower(strings.TrimSpace(reqType))
	for _, known := range entity.RequirementTypes {
		if cleaned == known {
			return cleaned
		}
	}
	return entity.RequirementTypeFunctional
}
