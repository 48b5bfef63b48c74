package llm_test

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tmc/langchaingo/llms"
	"go.uber.org/goleak"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/internal/types"
	"github.com/xhad/museum/pkg/catalog"
	"github.com/xhad/museum/pkg/llm"
)

var _ types.Explainer = (*llm.ChatEngine)(nil)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeGenerator struct {
	mu      sync.Mutex
	reply   string
	chunks  []string
	err     error
	prompts []string
	opts    llms.CallOptions
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, messages []llms.MessageContent, options ...llms.CallOption) (*llms.ContentResponse, error) {
	f.mu.Lock()
	for _, o := range options {
		o(&f.opts)
	}
	for _, m := range messages {
		for _, p := range m.Parts {
			if tc, ok := p.(llms.TextContent); ok {
				f.prompts = append(f.prompts, tc.Text)
			}
		}
	}
	stream := f.opts.StreamingFunc
	f.mu.Unlock()

	if f.err != nil {
		return nil, f.err
	}
	if stream != nil {
		for _, c := range f.chunks {
			if err := stream(ctx, []byte(c)); err != nil {
				return nil, err
			}
		}
	}
	return &llms.ContentResponse{Choices: []*llms.ContentChoice{{Content: f.reply}}}, nil
}

func record(t *testing.T, id string) models.Record {
	t.Helper()
	for _, r := range catalog.Default().Records() {
		if r.ID == id {
			return r
		}
	}
	t.Fatalf("no catalog record %s", id)
	return models.Record{}
}

func TestNewWithConfig(t *testing.T) {
	engine, err := llm.NewWithConfig(llm.ChatConfig{
		Model:       "testmodel",
		Temperature: 0.5,
		MaxTokens:   1000,
		BaseURL:     "http://localhost:1234",
	})
	require.NoError(t, err)
	assert.True(t, engine.Enabled())
	assert.Equal(t, "testmodel", engine.Config().Model)

	_, err = llm.NewWithConfig(llm.ChatConfig{Temperature: 3})
	assert.Error(t, err)

	_, err = llm.NewWithConfig(llm.ChatConfig{MaxTokens: -1})
	assert.Error(t, err)

	disabled, err := llm.NewWithConfig(llm.ChatConfig{Disabled: true})
	require.NoError(t, err)
	assert.False(t, disabled.Enabled())
}

func TestExplainUsesModelOutput(t *testing.T) {
	gen := &fakeGenerator{reply: "## Overview\nThe **Kasthane** is a ceremonial sword carried by nobles of the Kandyan court."}
	engine, err := llm.NewWithGenerator(llm.ChatConfig{MaxTokens: 321}, gen)
	require.NoError(t, err)

	rec := record(t, "A001")
	text, source := engine.Explain(context.Background(), rec)

	assert.Equal(t, llm.SourceLLM, source)
	assert.Equal(t, "Overview\nThe Kasthane is a ceremonial sword carried by nobles of the Kandyan court.", text)
	assert.Equal(t, 321, gen.opts.MaxTokens)
	require.Len(t, gen.prompts, 2)
	assert.Contains(t, gen.prompts[1], "Name: "+rec.Name)
}

func TestExplainFallsBackToTemplate(t *testing.T) {
	rec := record(t, "A001")
	want := llm.ExplainTemplate(rec)

	tests := []struct {
		name string
		gen  llm.Generator
	}{
		{"no model", nil},
		{"model error", &fakeGenerator{err: errors.New("connection refused")}},
		{"short output", &fakeGenerator{reply: "A sword."}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			engine, err := llm.NewWithGenerator(llm.ChatConfig{}, tt.gen)
			require.NoError(t, err)

			text, source := engine.Explain(context.Background(), rec)
			assert.Equal(t, llm.SourceTemplate, source)
			assert.Equal(t, want, text)
		})
	}
}

func TestExplainTemplate(t *testing.T) {
	rec := record(t, "A001")
	text := llm.ExplainTemplate(rec)

	assert.True(t, strings.HasPrefix(text, rec.Name+"\n\nOverview\n"))
	assert.Contains(t, text, "This "+strings.ToLower(rec.Category)+" originates from "+rec.Origin)
	assert.Contains(t, text, rec.Symbolism)
}

func TestCompareNarrative(t *testing.T) {
	a, b := record(t, "A001"), record(t, "A010")

	engine, err := llm.NewWithGenerator(llm.ChatConfig{}, &fakeGenerator{err: errors.New("down")})
	require.NoError(t, err)
	text, source := engine.CompareNarrative(context.Background(), a, b)
	assert.Equal(t, llm.SourceTemplate, source)
	assert.True(t, strings.HasPrefix(text, "Comparison: "+a.Name+" vs "+b.Name))
	assert.Contains(t, text, a.Origin+" and "+b.Origin)

	reply := "Both blades served ceremonial roles, but the *talwar* favours a broader curve than the kasthane."
	gen := &fakeGenerator{reply: reply}
	engine, err = llm.NewWithGenerator(llm.ChatConfig{}, gen)
	require.NoError(t, err)
	text, source = engine.CompareNarrative(context.Background(), a, b)
	assert.Equal(t, llm.SourceLLM, source)
	assert.NotContains(t, text, "*")
	assert.Contains(t, gen.prompts[1], "Artifact 2: "+b.Name)
}

func TestAsk(t *testing.T) {
	docs := []models.Record{record(t, "A003")}
	gen := &fakeGenerator{reply: "It guards the entrance."}
	engine, err := llm.NewWithGenerator(llm.ChatConfig{}, gen)
	require.NoError(t, err)

	answer, err := engine.Ask(context.Background(), "What does it do?", docs)
	require.NoError(t, err)
	assert.Equal(t, "It guards the entrance.", answer)
	assert.Contains(t, gen.prompts[1], "Question: What does it do?")
	assert.Contains(t, gen.prompts[1], "Artifact A003")

	disabled, err := llm.NewWithGenerator(llm.ChatConfig{}, nil)
	require.NoError(t, err)
	_, err = disabled.Ask(context.Background(), "?", docs)
	assert.ErrorIs(t, err, llm.ErrDisabled)
}

func collect(ch <-chan models.StreamChunk) (string, error) {
	var sb strings.Builder
	var err error
	for c := range ch {
		if c.Err != nil {
			err = c.Err
			continue
		}
		sb.WriteString(c.Content)
	}
	return sb.String(), err
}

func TestAskStream(t *testing.T) {
	docs := []models.Record{record(t, "A003")}

	engine, err := llm.NewWithGenerator(llm.ChatConfig{}, &fakeGenerator{chunks: []string{"It ", "guards ", "doors."}})
	require.NoError(t, err)
	ch, err := engine.AskStream(context.Background(), "What does it do?", docs)
	require.NoError(t, err)
	text, err := collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "It guards doors.", text)

	// Without streaming chunks the final response is sent whole.
	engine, err = llm.NewWithGenerator(llm.ChatConfig{}, &fakeGenerator{reply: "**Whole** answer"})
	require.NoError(t, err)
	ch, err = engine.AskStream(context.Background(), "q", docs)
	require.NoError(t, err)
	text, err = collect(ch)
	require.NoError(t, err)
	assert.Equal(t, "Whole answer", text)

	engine, err = llm.NewWithGenerator(llm.ChatConfig{}, &fakeGenerator{err: errors.New("boom")})
	require.NoError(t, err)
	ch, err = engine.AskStream(context.Background(), "q", docs)
	require.NoError(t, err)
	_, err = collect(ch)
	assert.ErrorContains(t, err, "boom")
}

func TestAskStreamStopsOnCancel(t *testing.T) {
	engine, err := llm.NewWithGenerator(llm.ChatConfig{}, &fakeGenerator{chunks: []string{"a", "b", "c"}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	ch, err := engine.AskStream(ctx, "q", nil)
	require.NoError(t, err)

	<-ch
	cancel()
	for range ch {
	}
}

func TestRemoveMarkdown(t *testing.T) {
	in := "# Title\n## Sub\nSome **bold** and *italic* with [a link](http://x.y)."
	assert.Equal(t, "Title\nSub\nSome bold and italic with a link.", llm.RemoveMarkdown(in))
}

func TestTemplateAnswer(t *testing.T) {
	assert.Equal(t, llm.NotFound, llm.TemplateAnswer("anything", nil))

	rec := record(t, "A003")
	answer := llm.TemplateAnswer("what is this?", []models.Record{rec})
	assert.True(t, strings.HasPrefix(answer, rec.Name+" is a "))
	assert.Contains(t, answer, rec.Origin)
}

func TestSources(t *testing.T) {
	docs := []models.Record{{ID: "A001"}, {ID: "A003"}, {ID: "A001"}}
	assert.Equal(t, []string{"A001", "A003"}, llm.Sources(docs))
	assert.Empty(t, llm.Sources(nil))
}
