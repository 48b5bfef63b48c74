package llm

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/xhad/museum/internal/models"
	"github.com/xhad/museum/pkg/compare"
)

var (
	ErrDisabled      = errors.New("llm disabled")
	ErrEmptyResponse = errors.New("empty response from LLM")
)

// NotFound is the answer given when the context does not cover a question.
const NotFound = "I don't know that information."

const guideSystemPrompt = `You are a knowledgeable and friendly museum guide.
Answer ONLY using the information provided about the artifacts.
For general questions give an overview with the artifact's name, period, origin and key details.
For specific questions give a focused answer of two to four sentences.
If the answer is not in the artifacts, say: "` + NotFound + `"
Do not use markdown formatting. Use plain text only.`

var markdownRules = []struct {
	re   *regexp.Regexp
	repl string
}{
	{regexp.MustCompile(`(?m)^#+\s+`), ""},
	{regexp.MustCompile(`\*\*(.+?)\*\*`), "$1"},
	{regexp.MustCompile(`\*(.+?)\*`), "$1"},
	{regexp.MustCompile(`\[(.+?)\]\(.+?\)`), "$1"},
}

// RemoveMarkdown strips headers, bold, italics and links from model output.
func RemoveMarkdown(text string) string {
	for _, r := range markdownRules {
		text = r.re.ReplaceAllString(text, r.repl)
	}
	return text
}

func explainPrompt(r models.Record) string {
	return fmt.Sprintf(`Provide a detailed, engaging explanation of this artifact in English:

Name: %s
Category: %s
Origin: %s
Era: %s
Materials: %s
Function: %s
Symbolism: %s
Special Features: %s

Write a comprehensive explanation covering:
1. Historical context and significance
2. Materials and craftsmanship
3. Function and use
4. Cultural and symbolic meaning
5. Notable features

Make it engaging and educational for museum visitors.`,
		r.Name, r.Category, r.Origin, r.Era, r.Materials, r.Function, r.Symbolism, r.Notes)
}

func comparePrompt(a, b models.Record) string {
	var sb strings.Builder
	sb.WriteString("Compare these two artifacts in English, highlighting similarities and differences:\n\n")
	for i, r := range []models.Record{a, b} {
		fmt.Fprintf(&sb, "Artifact %d: %s\n", i+1, r.Name)
		fmt.Fprintf(&sb, "- Origin: %s\n- Era: %s\n- Category: %s\n", r.Origin, r.Era, r.Category)
		fmt.Fprintf(&sb, "- Materials: %s\n- Function: %s\n- Symbolism: %s\n\n", r.Materials, r.Function, r.Symbolism)
	}
	sb.WriteString(`Provide a detailed comparison covering:
1. Design similarities and differences
2. Material and craftsmanship comparison
3. Functional purposes
4. Ceremonial and ritual use
5. Historical context
6. Cultural symbolism
7. Cross-cultural connections

Make it insightful and educational.`)
	return sb.String()
}

func (ce *ChatEngine) askPrompt(question string, docs []models.Record) string {
	return fmt.Sprintf(ce.config.ContextTemplate, formatContext(docs), question)
}

func formatContext(docs []models.Record) string {
	var sb strings.Builder
	for _, d := range docs {
		fmt.Fprintf(&sb, "Artifact %s: %s (%s, %s, %s)\n", d.ID, d.Name, d.Category, d.Origin, d.Era)
		if d.Description != "" {
			fmt.Fprintf(&sb, "%s\n", d.Description)
		}
		fmt.Fprintf(&sb, "Materials: %s\nFunction: %s\nSymbolism: %s\n\n", d.Materials, d.Function, d.Symbolism)
	}
	return sb.String()
}

// ExplainTemplate is the explanation given when no model answers.
func ExplainTemplate(r models.Record) string {
	return fmt.Sprintf(`%s

Overview
This %s originates from %s and dates to %s.

Materials and Craftsmanship
%s

Function and Use
%s

Cultural Significance
%s

Special Features
%s

This artifact represents an important piece of cultural heritage, showcasing the craftsmanship, beliefs, and practices of its time and place.`,
		r.Name, strings.ToLower(r.Category), r.Origin, r.Era, r.Materials, r.Function, r.Symbolism, r.Notes)
}

// CompareTemplate is the comparison narrative given when no model answers.
func CompareTemplate(a, b models.Record) string {
	return fmt.Sprintf(`Comparison: %[1]s vs %[2]s

Design Comparison
Both artifacts share similar functions as %[3]ss, though they originate from different cultural contexts: %[4]s and %[5]s.

Materials
%[1]s: %[6]s
%[2]s: %[7]s

Functional Purposes
%[1]s: %[8]s
%[2]s: %[9]s

Cultural Significance
%[1]s: %[10]s
%[2]s: %[11]s

Historical Context
These artifacts represent different cultural approaches to similar needs, showcasing both unique regional characteristics and universal human practices.`,
		a.Name, b.Name, strings.ToLower(a.Category), a.Origin, b.Origin,
		a.Materials, b.Materials,
		compare.Truncate(a.Function, 200), compare.Truncate(b.Function, 200),
		compare.Truncate(a.Symbolism, 200), compare.Truncate(b.Symbolism, 200))
}

// TemplateAnswer answers from the retrieved records without a model: an
// overview of the best match, or NotFound when nothing was retrieved.
func TemplateAnswer(question string, docs []models.Record) string {
	if len(docs) == 0 {
		return NotFound
	}
	d := docs[0]
	answer := fmt.Sprintf("%s is a %s from %s, dating to %s.",
		d.Name, strings.ToLower(d.Category), d.Origin, d.Era)
	if d.Function != "" {
		answer += " " + d.Function
	}
	if d.Symbolism != "" {
		answer += " " + d.Symbolism
	}
	return answer
}

// Sources lists the record IDs an answer was grounded in, without duplicates.
func Sources(docs []models.Record) []string {
	seen := make(map[string]bool, len(docs))
	sources := make([]string, 0, len(docs))
	for _, d := range docs {
		if !seen[d.ID] {
			seen[d.ID] = true
			sources = append(sources, d.ID)
		}
	}
	return sources
}
