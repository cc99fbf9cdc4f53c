package llm

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient carries the arabifier: converting English text into casual
// Egyptian Arabic as written on social media.
type AnthropicClient struct {
	client    *anthropic.Client
	model     anthropic.Model
	modelName string
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{
		client:    &client,
		model:     anthropic.ModelClaudeSonnet4_0,
		modelName: string(anthropic.ModelClaudeSonnet4_0),
	}
}

func (c *AnthropicClient) Arabify(ctx context.Context, text string) (*ArabifyResult, error) {
	resp, err := c.client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 2048,
		System: []anthropic.TextBlockParam{
			{Text: arabifySystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("Arabify this text:\n\n" + text)),
		},
	})

	if err != nil {
		return nil, fmt.Errorf("anthropic API error: %w", err)
	}

	if len(resp.Content) == 0 {
		return nil, fmt.Errorf("no response from anthropic")
	}

	content := cleanJSONResponse(resp.Content[0].Text)

	var parsed struct {
		ArabifiedText string `json:"arabified_text"`
		Note          string `json:"note"`
	}

	err = json.Unmarshal([]byte(content), &parsed)
	if err != nil {
		return nil, fmt.Errorf("failed to parse response: %w, content: %s", err, content)
	}

	if parsed.ArabifiedText == "" {
		return nil, fmt.Errorf("empty arabified_text in response")
	}

	return &ArabifyResult{
		OriginalText:  text,
		ArabifiedText: parsed.ArabifiedText,
		Note:          parsed.Note,
		ModelUsed:     c.modelName,
	}, nil
}
