package ocr

import (
	"context"
	"errors"
	"strings"

	"github.com/openai/openai-go/v2"
	"github.com/openai/openai-go/v2/option"

	"receipt-desk-bot/internal/domain/model"
	"receipt-desk-bot/internal/domain/ports/adapter"
)

// Compile-time assurance this adapter satisfies the port
var _ adapter.TextExtractor = (*OpenAIExtractor)(nil)

// OpenAIExtractor reads receipts with a vision-capable chat model. Any
// OpenAI-compatible gateway works through baseURL.
type OpenAIExtractor struct {
	client openai.Client
	model  string
}

func NewOpenAIExtractor(apiKey, baseURL, model string) (*OpenAIExtractor, error) {
	if apiKey == "" {
		return nil, errors.New("openai api key empty")
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(strings.TrimRight(baseURL, "/")+"/"))
	}
	return &OpenAIExtractor{client: openai.NewClient(opts...), model: model}, nil
}

func (o *OpenAIExtractor) Name() string { return "openai" }

func (o *OpenAIExtractor) Extract(ctx context.Context, png []byte) model.Extraction {
	if len(png) == 0 {
		return model.ExtractionFailed(o.Name(), "empty image")
	}
	resp, err := o.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
		Model: openai.ChatModel(o.model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			openai.UserMessage([]openai.ChatCompletionContentPartUnionParam{
				openai.TextContentPart(visionPrompt),
				openai.ImageContentPart(openai.ChatCompletionContentPartImageImageURLParam{
					URL: pngDataURL(png),
				}),
			}),
		},
	})
	if err != nil {
		return model.ExtractionFailed(o.Name(), err.Error())
	}
	for _, c := range resp.Choices {
		if c.Message.Content != "" {
			return model.ExtractedText(o.Name(), strings.TrimSpace(c.Message.Content))
		}
	}
	return model.ExtractionFailed(o.Name(), "no choice content")
}
