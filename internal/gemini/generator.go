// Package gemini implements outline generation over the Gemini API.
package gemini

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash"

const systemPrompt = `You write slide outlines for presentations.
Reply with a JSON array of short slide titles and nothing else.`

// Generator asks Gemini for outline titles.
type Generator struct {
	client *genai.Client
	model  string
	logger *slog.Logger
}

// NewGenerator creates a Gemini-backed generator.
func NewGenerator(ctx context.Context, apiKey, model string, logger *slog.Logger) (*Generator, error) {
	if apiKey == "" {
		return nil, errors.New("gemini API key is required")
	}
	if model == "" {
		model = DefaultModel
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating genai client: %w", err)
	}
	return &Generator{client: client, model: model, logger: logger}, nil
}

// GenerateOutlines returns up to count slide titles for prompt.
func (g *Generator) GenerateOutlines(ctx context.Context, prompt string, count int) ([]string, error) {
	request := fmt.Sprintf("Write exactly %d slide titles for a presentation about:\n%s", count, prompt)
	resp, err := g.client.Models.GenerateContent(ctx, g.model, genai.Text(request), &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(systemPrompt, genai.RoleUser),
		ResponseMIMEType:  "application/json",
	})
	if err != nil {
		return nil, fmt.Errorf("generating outlines: %w", err)
	}

	titles, err := ParseTitles(resp.Text(), count)
	if err != nil {
		return nil, err
	}
	if g.logger != nil {
		g.logger.Debug("outlines generated", "model", g.model, "count", len(titles))
	}
	return titles, nil
}

var (
	fence  = regexp.MustCompile("(?s)^```[a-zA-Z]*\\s*(.*?)\\s*```$")
	bullet = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s+`)
)

// ParseTitles reads model output as a JSON array of strings (optionally inside
// a code fence), an object with a "titles" or "outlines" array, or a bulleted
// list. At most count titles are returned when count is positive.
func ParseTitles(text string, count int) ([]string, error) {
	text = strings.TrimSpace(text)
	if m := fence.FindStringSubmatch(text); m != nil {
		text = m[1]
	}
	if text == "" {
		return nil, errors.New("empty model response")
	}

	var titles []string
	switch {
	case strings.HasPrefix(text, "["):
		if err := json.Unmarshal([]byte(text), &titles); err != nil {
			return nil, fmt.Errorf("decoding title list: %w", err)
		}
	case strings.HasPrefix(text, "{"):
		var obj struct {
			Titles   []string `json:"titles"`
			Outlines []string `json:"outlines"`
		}
		if err := json.Unmarshal([]byte(text), &obj); err != nil {
			return nil, fmt.Errorf("decoding title object: %w", err)
		}
		titles = obj.Titles
		if len(titles) == 0 {
			titles = obj.Outlines
		}
	default:
		for _, line := range strings.Split(text, "\n") {
			titles = append(titles, bullet.ReplaceAllString(line, ""))
		}
	}

	out := make([]string, 0, len(titles))
	for _, t := range titles {
		t = strings.TrimSpace(strings.Trim(strings.TrimSpace(t), `"`))
		if t == "" {
			continue
		}
		out = append(out, t)
		if count > 0 && len(out) == count {
			break
		}
	}
	if len(out) == 0 {
		return nil, errors.New("model response contained no titles")
	}
	return out, nil
}
