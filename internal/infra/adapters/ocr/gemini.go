// File: internal/infra/adapters/ocr/gemini.go
package ocr

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/genai"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

var _ adapter.TextExtractor = (*GeminiExtractor)(nil)

type GeminiExtractor struct {
	client *genai.Client
	model  string
}

// NewGeminiExtractor creates a Gemini extractor using the official SDK.
func NewGeminiExtractor(ctx context.Context, apiKey, baseURL, model string) (*GeminiExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("gemini: empty api key")
	}
	if model == "" {
		model = "gemini-2.0-flash"
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
		HTTPOptions: genai.HTTPOptions{
			BaseURL: baseURL,
		},
	})
	if err != nil {
		return nil, err
	}
	return &GeminiExtractor{client: c, model: model}, nil
}

func (g *GeminiExtractor) Name() string { return "gemini" }

func (g *GeminiExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	if len(png) == 0 {
		return model.ExtractionFailed(g.Name(), "empty image")
	}
	contents := []*genai.Content{{
		Role: genai.RoleUser,
		Parts: []*genai.Part{
			{InlineData: &genai.Blob{MIMEType: "image/png", Data: png}},
			{Text: visionPrompt},
		},
	}}
	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, nil)
	if err != nil {
		return model.ExtractionFailed(g.Name(), err.Error())
	}
	text := responseText(resp)
	if text == "" {
		return model.ExtractionFailed(g.Name(), "empty response")
	}
	return model.ExtractedText(g.Name(), text)
}

func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, p := range resp.Candidates[0].Content.Parts {
		if p != nil && p.Text != "" {
			b.WriteString(p.Text)
		}
	}
	return strings.TrimSpace(b.String())
}
