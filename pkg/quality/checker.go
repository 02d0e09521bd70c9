package quality

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"unicode"

	"rd-assistant/internal/entity"
	"rd-assistant/pkg/llm"
)

// Score is the detailed quality breakdown for a single requirement. All
// sub-scores and the total are in [0,1].
type Score struct {
	Specificity     float64           `json:"specificity"`
	Measurability   float64           `json:"measurability"`
	Achievability   float64           `json:"achievability"`
	Relevance       float64           `json:"relevance"`
	TimeBound       float64           `json:"time_bound"`
	Clarity         float64           `json:"clarity"`
	Consistency     float64           `json:"consistency"`
	VisionAlignment float64           `json:"vision_alignment"`
	Completeness    float64           `json:"completeness"`
	ContextScore    float64           `json:"context_score"`
	Total           float64           `json:"total"`
	Suggestions     []string          `json:"suggestions"`
	Details         map[string]string `json:"details"`
}

// typeWeights defines per-metric weights for each requirement type. Unknown
// types fall back to the functional table.
var typeWeights = map[string]map[string]float64{
	"functional": {
		"specificity":      1.0,
		"measurability":    0.8,
		"achievability":    0.9,
		"relevance":        0.7,
		"time_bound":       0.6,
		"clarity":          1.0,
		"consistency":      0.8,
		"vision_alignment": 0.7,
		"completeness":     0.9,
		"context_score":    0.8,
	},
	"non_functional": {
		"specificity":      0.9,
		"measurability":    1.0,
		"achievability":    0.8,
		"relevance":        0.8,
		"time_bound":       0.7,
		"clarity":          0.9,
		"consistency":      0.7,
		"vision_alignment": 0.8,
		"completeness":     0.8,
		"context_score":    0.9,
	},
	"technical": {
		"specificity":      1.0,
		"measurability":    0.9,
		"achievability":    1.0,
		"relevance":        0.7,
		"time_bound":       0.8,
		"clarity":          0.9,
		"consistency":      1.0,
		"vision_alignment": 0.6,
		"completeness":     1.0,
		"context_score":    0.7,
	},
	"business": {
		"specificity":      0.8,
		"measurability":    0.7,
		"achievability":    0.7,
		"relevance":        1.0,
		"time_bound":       0.9,
		"clarity":          0.8,
		"consistency":      0.7,
		"vision_alignment": 1.0,
		"completeness":     0.8,
		"context_score":    1.0,
	},
}

type Checker struct {
	provider llm.LLMProvider
}

func NewChecker(provider llm.LLMProvider) *Checker {
	return &Checker{provider: provider}
}

// Analyze produces the full quality breakdown for one requirement against
// the rest of the project memory.
func (c *Checker) Analyze(ctx context.Context, req entity.Requirement, mem *entity.Memory) (*Score, error) {
	scores := map[string]float64{
		"specificity":   c.checkSpecificity(req.Content),
		"measurability": c.checkMeasurability(req.Content),
		"clarity":       c.checkClarity(req.Content),
		"consistency":   c.checkTermConsistency(req, mem),
		"completeness":  c.checkCompleteness(req),
	}

	if mem.Vision != nil {
		scores["vision_alignment"] = c.checkVisionAlignment(ctx, req, mem.Vision)
	}

	for metric, value := range c.analyzeWithModel(ctx, req, mem) {
		scores[metric] = value
	}

	total := WeightedTotal(req.Type, scores)

	details := c.detailedAnalysis(req, scores, mem)
	suggestions := c.buildSuggestions(ctx, req, scores, mem)

	return &Score{
		Specificity:     scores["specificity"],
		Measurability:   scores["measurability"],
		Achievability:   scores["achievability"],
		Relevance:       scores["relevance"],
		TimeBound:       scores["time_bound"],
		Clarity:         scores["clarity"],
		Consistency:     scores["consistency"],
		VisionAlignment: scores["vision_alignment"],
		Completeness:    scores["completeness"],
		ContextScore:    scores["context_score"],
		Total:           total,
		Suggestions:     suggestions,
		Details:         details,
	}, nil
}

// WeightedTotal computes the weighted mean of the given sub-scores using the
// weight table for the requirement type. The denominator always covers the
// full table, so a missing metric lowers the total instead of skewing it.
func WeightedTotal(reqType string, scores map[string]float64) float64 {
	weights, ok := typeWeights[reqType]
	if !ok {
		weights = typeWeights["functional"]
	}

	var sum, weightSum float64
	for metric, weight := range weights {
		weightSum += weight
		if value, present := scores[metric]; present {
			sum += value * weight
		}
	}
	return sum / weightSum
}

func (c *Checker) checkSpecificity(content string) float64 {
	length := len(content)
	var lengthScore float64
	if length < 100 {
		lengthScore = clamp01(float64(length) / 100)
	} else {
		lengthScore = clamp01(200 / float64(length))
	}

	words := map[string]struct{}{}
	for _, w := range strings.Fields(content) {
		words[w] = struct{}{}
	}
	diversityScore := clamp01(float64(len(words)) / 20)

	return (lengthScore + diversityScore) / 2
}

func (c *Checker) checkMeasurability(content string) float64 {
	var score float64
	if strings.ContainsFunc(content, unicode.IsDigit) {
		score += 0.5
	}
	for _, unit := range MeasurableIndicators {
		if strings.Contains(content, unit) {
			score += 0.5
			break
		}
	}
	return clamp01(score)
}

func (c *Checker) checkClarity(content string) float64 {
	words := strings.Fields(content)
	if len(words) == 0 {
		return 0
	}

	ambiguous := 0
	for _, w := range words {
		if _, found := AmbiguousTerms[normalizeWord(w)]; found {
			ambiguous++
		}
	}
	return clamp01(1.0 - float64(ambiguous)/float64(len(words)))
}

func (c *Checker) checkTermConsistency(req entity.Requirement, mem *entity.Memory) float64 {
	termUsage := map[string]int{}
	for _, existing := range mem.Requirements {
		for term := range extractKeyTerms(existing.Content) {
			termUsage[term]++
		}
	}

	currentTerms := extractKeyTerms(req.Content)
	if len(currentTerms) == 0 {
		return 0.5
	}

	consistent := 0
	for term := range currentTerms {
		if termUsage[term] > 1 {
			consistent++
		}
	}
	return float64(consistent) / float64(len(currentTerms))
}

func (c *Checker) checkCompleteness(req entity.Requirement) float64 {
	var score float64
	if strings.TrimSpace(req.Content) != "" {
		score += 0.4
	}
	if strings.TrimSpace(req.Rationale) != "" {
		score += 0.3
	}
	if !req.Implicit {
		score += 0.2
	}
	if len(req.Metadata) > 0 {
		score += 0.1
	}
	return clamp01(score)
}

type modelScores struct {
	Achievability float64 `json:"achievability"`
	Relevance     float64 `json:"relevance"`
	TimeBound     float64 `json:"time_bound"`
	ContextScore  float64 `json:"context_score"`
	Reasoning     string  `json:"reasoning"`
}

func (c *Checker) analyzeWithModel(ctx context.Context, req entity.Requirement, mem *entity.Memory) map[string]float64 {
	prompt := fmt.Sprintf(`Analyze the following requirement against the SMART criteria and answer in JSON.

Requirement: %s
Type: %s
Rationale: %s

Project description:
%s

Score each aspect from 0.0 to 1.0:
1. Achievable: technically and organizationally feasible
2. Relevant: properly tied to the project goals
3. Time-bound: has clear deadlines or time constraints
4. Context: fits the project context

Answer with JSON in exactly this shape:
{
    "achievability": 0.0-1.0,
    "relevance": 0.0-1.0,
    "time_bound": 0.0-1.0,
    "context_score": 0.0-1.0,
    "reasoning": "why these scores"
}`, req.Content, req.Type, req.Rationale, mem.ProjectDescription)

	var resp modelScores
	if err := llm.GenerateJSON(ctx, c.provider, prompt, &resp); err != nil {
		return map[string]float64{
			"achievability": 0.5,
			"relevance":     0.5,
			"time_bound":    0.5,
			"context_score": 0.5,
		}
	}

	return map[string]float64{
		"achievability": clamp01(resp.Achievability),
		"relevance":     clamp01(resp.Relevance),
		"time_bound":    clamp01(resp.TimeBound),
		"context_score": clamp01(resp.ContextScore),
	}
}

func (c *Checker) checkVisionAlignment(ctx context.Context, req entity.Requirement, vision *entity.ProjectVision) float64 {
	prompt := fmt.Sprintf(`Analyze how well the requirement aligns with the project vision and answer in JSON.

Project vision:
Goals: %s
Success criteria: %s
Target users: %s

Requirement:
%s
Type: %s
Rationale: %s

Answer with JSON in exactly this shape:
{
    "alignment_score": 0.0-1.0,
    "reasoning": "why this score"
}`,
		strings.Join(vision.Goals, ", "),
		strings.Join(vision.SuccessCriteria, ", "),
		strings.Join(vision.TargetUsers, ", "),
		req.Content, req.Type, req.Rationale)

	var resp struct {
		AlignmentScore float64 `json:"alignment_score"`
		Reasoning      string  `json:"reasoning"`
	}
	if err := llm.GenerateJSON(ctx, c.provider, prompt, &resp); err != nil {
		return 0.5
	}
	return clamp01(resp.AlignmentScore)
}

func (c *Checker) detailedAnalysis(req entity.Requirement, scores map[string]float64, mem *entity.Memory) map[string]string {
	details := map[string]string{}

	if scores["specificity"] < 0.7 {
		var issues []string
		if len(req.Content) < 50 {
			issues = append(issues, "the requirement text is very short")
		}
		if !strings.ContainsFunc(req.Content, unicode.IsDigit) {
			issues = append(issues, "no numeric criteria are given")
		}
		if found := foundAmbiguousTerms(req.Content); len(found) > 0 {
			issues = append(issues, fmt.Sprintf("ambiguous wording present: %s", strings.Join(found, ", ")))
		}
		if len(issues) > 0 {
			details["specificity"] = strings.Join(issues, "; ")
		}
	}

	if scores["measurability"] < 0.7 {
		var issues []string
		if !containsAnyIndicator(req.Content) {
			issues = append(issues, "no measurable indicators present")
		}
		if !strings.ContainsFunc(req.Content, unicode.IsDigit) {
			issues = append(issues, "no numeric target set")
		}
		if len(issues) > 0 {
			details["measurability"] = strings.Join(issues, "; ")
		}
	}

	if inconsistent := c.findSimilarTerms(req, mem); len(inconsistent) > 0 {
		details["term_consistency"] = fmt.Sprintf(
			"similar terms appear under different spellings: %s", strings.Join(inconsistent, ", "))
	}

	var completenessIssues []string
	if req.Rationale == "" {
		completenessIssues = append(completenessIssues, "no rationale recorded")
	}
	if len(req.Metadata) == 0 {
		completenessIssues = append(completenessIssues, "no metadata recorded")
	} else if _, hasPriority := req.Metadata["priority"]; !hasPriority {
		completenessIssues = append(completenessIssues, "no priority assigned")
	}
	if len(completenessIssues) > 0 {
		details["completeness"] = strings.Join(completenessIssues, "; ")
	}

	if keywords, ok := typeKeywords[req.Type]; ok {
		lower := strings.ToLower(req.Content)
		found := false
		for _, kw := range keywords {
			if strings.Contains(lower, kw) {
				found = true
				break
			}
		}
		if !found {
			details["type_specific"] = fmt.Sprintf(
				"no wording characteristic of a %s requirement", req.Type)
		}
	}

	if implicit := c.implicitDependencies(req, mem); len(implicit) > 0 {
		details["dependencies"] = fmt.Sprintf(
			"implicit dependencies detected: %s", strings.Join(implicit, ", "))
	}

	if duplicates := c.findSimilarRequirements(req, mem); len(duplicates) > 0 {
		details["duplication"] = fmt.Sprintf(
			"similar requirements already exist: %s", strings.Join(duplicates, ", "))
	}

	return details
}

func (c *Checker) findSimilarTerms(req entity.Requirement, mem *entity.Memory) []string {
	allTerms := map[string]struct{}{}
	for _, other := range mem.Requirements {
		if other.Id == req.Id {
			continue
		}
		for term := range extractKeyTerms(other.Content) {
			allTerms[term] = struct{}{}
		}
	}

	var inconsistent []string
	for term := range extractKeyTerms(req.Content) {
		var similar []string
		for other := range allTerms {
			if areTermsSimilar(term, other) {
				similar = append(similar, other)
			}
		}
		if len(similar) > 0 {
			sort.Strings(similar)
			inconsistent = append(inconsistent, fmt.Sprintf("%s (similar: %s)", term, strings.Join(similar, ", ")))
		}
	}
	sort.Strings(inconsistent)
	return inconsistent
}

func (c *Checker) implicitDependencies(req entity.Requirement, mem *entity.Memory) []string {
	contentLower := strings.ToLower(req.Content)

	hasReference := false
	for _, phrase := range referencePhrases {
		if strings.Contains(contentLower, phrase) {
			hasReference = true
			break
		}
	}
	if !hasReference {
		return nil
	}

	var implicit []string
	for _, other := range mem.Requirements {
		if other.Id == req.Id {
			continue
		}
		for term := range extractKeyTerms(other.Content) {
			if strings.Contains(contentLower, term) {
				implicit = append(implicit, other.Content)
				break
			}
		}
	}
	return implicit
}

func (c *Checker) findSimilarRequirements(req entity.Requirement, mem *entity.Memory) []string {
	reqTerms := extractKeyTerms(req.Content)
	if len(reqTerms) == 0 {
		return nil
	}

	var similar []string
	for _, other := range mem.Requirements {
		if other.Id == req.Id {
			continue
		}
		otherTerms := extractKeyTerms(other.Content)
		if len(otherTerms) == 0 {
			continue
		}

		common := 0
		for term := range reqTerms {
			if _, ok := otherTerms[term]; ok {
				common++
			}
		}

		denominator := len(reqTerms)
		if len(otherTerms) > denominator {
			denominator = len(otherTerms)
		}
		if float64(common)/float64(denominator) > 0.5 {
			similar = append(similar, other.Content)
		}
	}
	return similar
}

func (c *Checker) buildSuggestions(ctx context.Context, req entity.Requirement, scores map[string]float64, mem *entity.Memory) []string {
	var suggestions []string

	metrics := make([]string, 0, len(scores))
	for metric := range scores {
		metrics = append(metrics, metric)
	}
	sort.Strings(metrics)
	for _, metric := range metrics {
		if scores[metric] < 0.6 {
			suggestions = append(suggestions, metricSuggestions(metric)...)
		}
	}

	suggestions = append(suggestions, c.contextAwareSuggestions(ctx, req, mem)...)
	return suggestions
}

func metricSuggestions(metric string) []string {
	switch metric {
	case "specificity":
		return []string{"Consider adding concrete numeric targets or conditions"}
	case "measurability":
		return []string{"Consider including measurable success criteria"}
	case "clarity":
		return []string{"Consider replacing vague wording with concrete statements"}
	case "consistency":
		return []string{"Consider aligning terminology with the other requirements"}
	case "completeness":
		return []string{"Consider describing the background and rationale in more detail"}
	case "vision_alignment":
		return []string{"Consider making the link to the project goals explicit"}
	}
	return nil
}

type contextSuggestion struct {
	Point          string `json:"point"`
	Suggestion     string `json:"suggestion"`
	Reason         string `json:"reason"`
	ExpectedImpact string `json:"expected_impact"`
}

func (c *Checker) contextAwareSuggestions(ctx context.Context, req entity.Requirement, mem *entity.Memory) []string {
	prompt := fmt.Sprintf(`Taking the project context into account, generate concrete improvement suggestions for the requirement below and answer in JSON.

Project:
- Name: %s
- Description: %s

Requirement:
- Content: %s
- Type: %s
- Rationale: %s

Answer with JSON in exactly this shape:
{
    "suggestions": [
        {
            "point": "what to improve",
            "suggestion": "the concrete suggestion",
            "reason": "why",
            "expected_impact": "expected effect"
        }
    ]
}`, mem.ProjectName, mem.ProjectDescription, req.Content, req.Type, req.Rationale)

	var resp struct {
		Suggestions []contextSuggestion `json:"suggestions"`
	}
	if err := llm.GenerateJSON(ctx, c.provider, prompt, &resp); err != nil {
		return nil
	}

	var out []string
	for _, item := range resp.Suggestions {
		s := fmt.Sprintf("%s: %s", item.Point, item.Suggestion)
		if item.Reason != "" {
			s += fmt.Sprintf("\n  Reason: %s", item.Reason)
		}
		if item.ExpectedImpact != "" {
			s += fmt.Sprintf("\n  Impact: %s", item.ExpectedImpact)
		}
		out = append(out, s)
	}
	return out
}

func extractKeyTerms(content string) map[string]struct{} {
	terms := map[string]struct{}{}
	for _, w := range strings.Fields(content) {
		word := normalizeWord(w)
		if len(word) <= 2 {
			continue
		}
		if _, stop := stopWords[word]; stop {
			continue
		}
		terms[word] = struct{}{}
	}
	return terms
}

func normalizeWord(w string) string {
	return strings.ToLower(strings.Trim(w, ".,:;!?()[]{}\"'"))
}

func foundAmbiguousTerms(content string) []string {
	var found []string
	for _, w := range strings.Fields(content) {
		word := normalizeWord(w)
		if _, ok := AmbiguousTerms[word]; ok {
			found = append(found, word)
		}
	}
	sort.Strings(found)
	return found
}

func containsAnyIndicator(content string) bool {
	for _, unit := range MeasurableIndicators {
		if strings.Contains(content, unit) {
			return true
		}
	}
	return false
}

func areTermsSimilar(term1, term2 string) bool {
	if term1 == term2 {
		return false
	}
	if strings.Contains(term1, term2) || strings.Contains(term2, term1) {
		return true
	}
	if len(term1) > 3 && len(term2) > 3 {
		distance := levenshtein(term1, term2)
		maxLength := len(term1)
		if len(term2) > maxLength {
			maxLength = len(term2)
		}
		similarity := 1 - float64(distance)/float64(maxLength)
		return similarity > 0.7
	}
	return false
}

func levenshtein(s1, s2 string) int {
	r1, r2 := []rune(s1), []rune(s2)
	if len(r1) < len(r2) {
		r1, r2 = r2, r1
	}
	if len(r2) == 0 {
		return len(r1)
	}

	previous := make([]int, len(r2)+1)
	for i := range previous {
		previous[i] = i
	}

	for i, c1 := range r1 {
		current := make([]int, 0, len(r2)+1)
		current = append(current, i+1)
		for j, c2 := range r2 {
			insertions := previous[j+1] + 1
			deletions := current[j] + 1
			substitutions := previous[j]
			if c1 != c2 {
				substitutions++
			}
			current = append(current, min3(insertions, deletions, substitutions))
		}
		previous = current
	}

	return previous[len(r2)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
