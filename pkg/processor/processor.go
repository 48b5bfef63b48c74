package processor

import (
	"strings"
	"unicode"

	"github.com/xhad/museum/internal/models"
)

type ProcessorConfig struct {
	// KeepStopwords disables stopword removal during tokenization.
	KeepStopwords   bool
	CustomStopwords []string
	// MinTokenLength drops shorter tokens. Defaults to 2.
	MinTokenLength int
	// MaxFeatures caps the index vocabulary to the most frequent terms.
	MaxFeatures int
}

type Processor struct {
	config    ProcessorConfig
	stopwords map[string]bool
}

func NewWithConfig(config ProcessorConfig) Processor {
	if config.MinTokenLength == 0 {
		config.MinTokenLength = 2
	}
	if config.MaxFeatures == 0 {
		config.MaxFeatures = 1000
	}

	stopwords := make(map[string]bool)
	if !config.KeepStopwords {
		for _, w := range getStopwords() {
			stopwords[w] = true
		}
		for _, w := range config.CustomStopwords {
			stopwords[strings.ToLower(w)] = true
		}
	}

	return Processor{
		config:    config,
		stopwords: stopwords,
	}
}

func New() Processor {
	return NewWithConfig(ProcessorConfig{})
}

// Document joins the fields that drive artifact similarity: category,
// materials, function, symbolism and notes.
func (p Processor) Document(r models.Record) string {
	parts := []string{r.Category, r.Materials, r.Function, r.Symbolism, r.Notes}
	return p.cleanText(strings.Join(parts, " "))
}

// EmbeddingText is the richer text sent to the embedding model.
func (p Processor) EmbeddingText(r models.Record) string {
	parts := []string{r.Name, r.Category, r.Origin, r.Era, r.Description, r.Materials, r.Function, r.Symbolism, r.Notes}
	return p.cleanText(strings.Join(parts, ". "))
}

// Tokenize lowercases text and splits it into word tokens, dropping
// stopwords and tokens shorter than MinTokenLength.
func (p Processor) Tokenize(text string) []string {
	words := strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && !unicode.Is(unicode.Mn, r)
	})

	tokens := make([]string, 0, len(words))
	for _, w := range words {
		if len([]rune(w)) < p.config.MinTokenLength || p.stopwords[w] {
			continue
		}
		tokens = append(tokens, w)
	}
	return tokens
}

// Sentences splits text on sentence terminators.
func (p Processor) Sentences(text string) []string {
	return splitIntoSentences(p.cleanText(text))
}

func (p Processor) cleanText(text string) string {
	// Replace multiple spaces with single space
	text = strings.Join(strings.Fields(text), " ")
	return strings.TrimSpace(text)
}

func splitIntoSentences(text string) []string {
	sentenceEnders := []string{". ", "! ", "? "}
	var sentences []string

	current := strings.Builder{}

	for i := 0; i < len(text); i++ {
		current.WriteByte(text[i])

		// Check for sentence endings
		for _, ender := range sentenceEnders {
			if strings.HasSuffix(current.String(), ender) {
				sentences = append(sentences, strings.TrimSpace(current.String()))
				current.Reset()
				break
			}
		}
	}

	// Add any remaining text
	if s := strings.TrimSpace(current.String()); s != "" {
		sentences = append(sentences, s)
	}

	return sentences
}

// Common English stopwords
func getStopwords() []string {
	return []string{
		"a", "about", "after", "all", "also", "an", "and", "any", "are", "as", "at",
		"be", "been", "being", "between", "both", "but", "by", "can", "could", "do",
		"does", "during", "each", "either", "for", "from", "had", "has", "have", "he",
		"her", "his", "how", "if", "in", "into", "is", "it", "its", "may", "more",
		"most", "much", "not", "of", "often", "on", "or", "other", "our", "over",
		"same", "she", "should", "so", "some", "such", "than", "that", "the", "their",
		"them", "then", "there", "these", "they", "this", "those", "through", "to",
		"under", "up", "use", "used", "very", "was", "were", "what", "when", "where",
		"which", "while", "who", "will", "with", "within", "would",
	}
}
