package genai

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"google.golang.org/genai"

	"github.com/emiliopalmerini/abadmin/internal/ports"
)

const systemInstruction = `You help product teams design A/B tests.
Answer with a numbered list of testable hypotheses, one per line.
Each hypothesis names the change, the expected effect on the primary metric and why.
Do not add any other text.`

// Generator drafts hypotheses with a Gemini model.
type Generator struct {
	model    string
	complete func(ctx context.Context, prompt string) (string, error)
}

// NewGenerator creates a generator backed by the Gemini API.
func NewGenerator(ctx context.Context, apiKey, model string) (*Generator, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("GenAI API key not configured")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemInstruction, genai.RoleUser),
		Temperature:       genai.Ptr[float32](0.7),
		MaxOutputTokens:   1024,
	}

	return &Generator{
		model: model,
		complete: func(ctx context.Context, prompt string) (string, error) {
			resp, err := client.Models.GenerateContent(ctx, model, genai.Text(prompt), config)
			if err != nil {
				return "", err
			}
			return resp.Text(), nil
		},
	}, nil
}

func (g *Generator) Generate(ctx context.Context, prompt ports.HypothesisPrompt) ([]string, error) {
	text, err := g.complete(ctx, buildPrompt(prompt))
	if err != nil {
		return nil, fmt.Errorf("failed to generate content with %s: %w", g.model, err)
	}

	hypotheses := parseList(text)
	if len(hypotheses) == 0 {
		return nil, fmt.Errorf("model returned no hypotheses")
	}
	if prompt.Count > 0 && len(hypotheses) > prompt.Count {
		hypotheses = hypotheses[:prompt.Count]
	}
	return hypotheses, nil
}

func buildPrompt(p ports.HypothesisPrompt) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Suggest %d hypotheses for the A/B test %q.\n", max(p.Count, 1), p.TestName)
	if p.Description != "" {
		fmt.Fprintf(&b, "Description: %s\n", p.Description)
	}
	if p.PrimaryMetric != "" {
		fmt.Fprintf(&b, "Primary metric: %s\n", p.PrimaryMetric)
	}
	if len(p.Variations) > 0 {
		fmt.Fprintf(&b, "Variations: %s\n", strings.Join(p.Variations, ", "))
	}
	return b.String()
}

var listMarker = regexp.MustCompile(`^\s*(?:[-*•]|\(?\d{1,2}[.)])\s+`)

// parseList extracts items from a numbered or bulleted list. Lines without
// a marker continue the previous item.
func parseList(text string) []string {
	var items []string
	for _, line := range strings.Split(text, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" {
			continue
		}
		if loc := listMarker.FindStringIndex(line); loc != nil {
			items = append(items, strings.TrimSpace(line[loc[1]:]))
			continue
		}
		if len(items) > 0 {
			items[len(items)-1] += " " + trimmed
		}
	}

	out := items[:0]
	for _, it := range items {
		it = strings.TrimSpace(strings.ReplaceAll(it, "**", ""))
		if it != "" {
			out = append(out, it)
		}
	}
	return out
}
