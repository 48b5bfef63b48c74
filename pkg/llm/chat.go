package llm

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/ollama"
	"go.uber.org/zap"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/logging"
)

const (
	SourceLLM      = "llm"
	SourceTemplate = "template"
)

// minExplanationLength rejects truncated or empty model output.
const minExplanationLength = 50

// Generator is the part of a langchaingo model the engine calls.
type Generator interface {
	GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error)
}

// ChatConfig represents the configuration for a chat engine.
type ChatConfig struct {
	Model           string
	Temperature     float64
	MaxTokens       int
	SystemTemplate  string
	ContextTemplate string
	BaseURL         string // Ollama server URL

	// Timeout bounds a single generation. Zero means no limit beyond ctx.
	Timeout time.Duration

	// Disabled answers every request from templates.
	Disabled bool
	Logger   *zap.Logger
}

// ChatEngine generates explanations, comparison narratives and answers with an
// LLM, falling back to fixed templates when the model is unavailable.
type ChatEngine struct {
	config ChatConfig
	llm    Generator
	logger *zap.Logger
}

func applyChatDefaults(config ChatConfig) (ChatConfig, error) {
	if config.Model == "" {
		config.Model = "mistral" // Default Ollama model
	}
	if config.Temperature < 0 || config.Temperature > 2 {
		return config, fmt.Errorf("temperature must be between 0 and 2")
	}
	if config.Temperature == 0 {
		config.Temperature = 0.7
	}
	if config.MaxTokens < 0 {
		return config, fmt.Errorf("max tokens cannot be negative")
	} else if config.MaxTokens == 0 {
		config.MaxTokens = 500
	}
	if config.SystemTemplate == "" {
		config.SystemTemplate = "You are a museum curator providing detailed explanations of cultural artifacts. " +
			"Do not use markdown formatting like # or ** in your response. Use plain text only."
	}
	if config.ContextTemplate == "" {
		config.ContextTemplate = "\nRelevant artifacts:\n%s\nQuestion: %s"
	}
	if config.BaseURL == "" {
		config.BaseURL = "http://localhost:11434" // Default Ollama URL
	}
	return config, nil
}

// NewWithConfig creates a ChatEngine backed by Ollama.
func NewWithConfig(config ChatConfig) (*ChatEngine, error) {
	config, err := applyChatDefaults(config)
	if err != nil {
		return nil, err
	}

	engine := &ChatEngine{
		config: config,
		logger: logging.OrNop(config.Logger).Named("llm"),
	}
	if config.Disabled {
		return engine, nil
	}

	llm, err := ollama.New(ollama.WithModel(config.Model),
		ollama.WithServerURL(config.BaseURL))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize LLM: %w", err)
	}
	engine.llm = llm
	return engine, nil
}

// NewWithGenerator creates a ChatEngine over any generator. A nil generator
// behaves like a disabled engine.
func NewWithGenerator(config ChatConfig, gen Generator) (*ChatEngine, error) {
	config, err := applyChatDefaults(config)
	if err != nil {
		return nil, err
	}
	return &ChatEngine{
		config: config,
		llm:    gen,
		logger: logging.OrNop(config.Logger).Named("llm"),
	}, nil
}

// Enabled reports whether a model is configured.
func (ce *ChatEngine) Enabled() bool { return ce.llm != nil }

func (ce *ChatEngine) Config() ChatConfig { return ce.config }

// Explain describes one artifact for museum visitors. The second result is
// SourceLLM or SourceTemplate.
func (ce *ChatEngine) Explain(ctx context.Context, rec models.Record) (string, string) {
	text, err := ce.generate(ctx, ce.config.SystemTemplate, explainPrompt(rec), minExplanationLength)
	if err != nil {
		ce.logger.Warn("explanation fell back to template", zap.String("artifact_id", rec.ID), zap.Error(err))
		return ExplainTemplate(rec), SourceTemplate
	}
	return text, SourceLLM
}

// CompareNarrative writes a cross-cultural comparison of two artifacts.
func (ce *ChatEngine) CompareNarrative(ctx context.Context, a, b models.Record) (string, string) {
	system := "You are a museum curator providing detailed cross-cultural comparisons of artifacts. " +
		"Do not use markdown formatting like # or ** in your response. Use plain text only."
	text, err := ce.generate(ctx, system, comparePrompt(a, b), minExplanationLength)
	if err != nil {
		ce.logger.Warn("comparison fell back to template",
			zap.String("artifact1_id", a.ID), zap.String("artifact2_id", b.ID), zap.Error(err))
		return CompareTemplate(a, b), SourceTemplate
	}
	return text, SourceLLM
}

// Ask answers a visitor question grounded in the given records.
func (ce *ChatEngine) Ask(ctx context.Context, question string, docs []models.Record) (string, error) {
	if ce.llm == nil {
		return "", ErrDisabled
	}
	return ce.generate(ctx, guideSystemPrompt, ce.askPrompt(question, docs), 1)
}

// AskStream is Ask with the answer delivered in pieces as the model produces
// them. The channel is closed after the last chunk.
func (ce *ChatEngine) AskStream(ctx context.Context, question string, docs []models.Record) (<-chan models.StreamChunk, error) {
	if ce.llm == nil {
		return nil, ErrDisabled
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, guideSystemPrompt),
		llms.TextParts(llms.ChatMessageTypeHuman, ce.askPrompt(question, docs)),
	}

	resultChan := make(chan models.StreamChunk)

	go func() {
		defer close(resultChan)

		send := func(c models.StreamChunk) bool {
			select {
			case resultChan <- c:
				return true
			case <-ctx.Done():
				return false
			}
		}

		streamed := false
		resp, err := ce.llm.GenerateContent(ctx, content,
			llms.WithMaxTokens(ce.config.MaxTokens),
			llms.WithTemperature(ce.config.Temperature),
			llms.WithStreamingFunc(func(ctx context.Context, chunk []byte) error {
				if len(chunk) == 0 {
					return nil
				}
				streamed = true
				if !send(models.StreamChunk{Content: string(chunk)}) {
					return ctx.Err()
				}
				return nil
			}),
		)
		if err != nil {
			send(models.StreamChunk{Err: fmt.Errorf("chat error: %w", err)})
			return
		}

		// Generators without streaming support return the whole answer at once.
		if !streamed && resp != nil {
			for _, choice := range resp.Choices {
				if choice != nil && choice.Content != "" {
					if !send(models.StreamChunk{Content: RemoveMarkdown(choice.Content)}) {
						return
					}
				}
			}
		}
	}()

	return resultChan, nil
}

func (ce *ChatEngine) generate(ctx context.Context, system, prompt string, minLength int) (string, error) {
	if ce.llm == nil {
		return "", ErrDisabled
	}
	if ce.config.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, ce.config.Timeout)
		defer cancel()
	}

	content := []llms.MessageContent{
		llms.TextParts(llms.ChatMessageTypeSystem, system),
		llms.TextParts(llms.ChatMessageTypeHuman, prompt),
	}

	response, err := ce.llm.GenerateContent(ctx, content,
		llms.WithMaxTokens(ce.config.MaxTokens),
		llms.WithTemperature(ce.config.Temperature))
	if err != nil {
		return "", fmt.Errorf("chat error: %w", err)
	}
	if response == nil || len(response.Choices) == 0 || response.Choices[0] == nil {
		return "", ErrEmptyResponse
	}

	text := strings.TrimSpace(RemoveMarkdown(response.Choices[0].Content))
	if len(text) < minLength {
		return "", ErrEmptyResponse
	}
	return text, nil
}
