package reviewer

import (
	"strings"
	"unicode"
)

// DocumentProcessor splits a Markdown document into chunks that fit a model
// context window. Chunks are capped at 75% of the token budget to leave room
// for the prompt and the response.
type DocumentProcessor struct {
	maxTokens int
	maxChunk  int
}

func NewDocumentProcessor(maxTokens int) *DocumentProcessor {
	return &DocumentProcessor{
		maxTokens: maxTokens,
		maxChunk:  int(float64(maxTokens) * 0.75),
	}
}

// EstimateTokens approximates the token count of mixed-script text. CJK
// characters weigh roughly one token per two characters, everything else one
// per four.
func (p *DocumentProcessor) EstimateTokens(text string) int {
	cjk := 0
	other := 0
	for _, r := range text {
		if isCJK(r) {
			cjk++
		} else {
			other++
		}
	}
	return cjk/2 + other/4
}

func isCJK(r rune) bool {
	return unicode.In(r, unicode.Han, unicode.Hiragana, unicode.Katakana, unicode.Hangul)
}

// Chunk is a document slice small enough to review in one model call.
type Chunk struct {
	Content           string
	RequirementsCount int
}

// SplitDocument breaks the document on top-level and second-level headings,
// packing consecutive sections into chunks under the token cap. A single
// oversized section becomes its own chunk.
func (p *DocumentProcessor) SplitDocument(document string) []Chunk {
	sections := splitSections(document)

	var chunks []Chunk
	var current []string
	currentTokens := 0

	flush := func() {
		if len(current) == 0 {
			return
		}
		content := strings.Join(current, "\n")
		chunks = append(chunks, Chunk{
			Content:           content,
			RequirementsCount: strings.Count(content, "###"),
		})
		current = nil
		currentTokens = 0
	}

	for _, section := range sections {
		tokens := p.EstimateTokens(section)
		if currentTokens+tokens > p.maxChunk && len(current) > 0 {
			flush()
		}
		current = append(current, section)
		currentTokens += tokens
	}
	flush()

	return chunks
}

func splitSections(document string) []string {
	var sections []string
	var current []string

	for _, line := range strings.Split(document, "\n") {
		if strings.HasPrefix(line, "# ") || strings.HasPrefix(line, "## ") {
			if len(current) > 0 {
				sections = append(sections, strings.Join(current, "\n"))
				current = nil
			}
		}
		current = append(current, line)
	}
	if len(current) > 0 {
		sections = append(sections, strings.Join(current, "\n"))
	}
	return sections
}
