package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
)

const maxToolRounds = 8

// OpenAIClient runs the monitoring synthesis: a chat completion that may
// call the registered fetcher tools before producing the structured report.
type OpenAIClient struct {
	client    *openai.Client
	model     openai.ChatModel
	modelName string
	tools     []Tool
}

func NewOpenAIClient(apiKey, model string, tools []Tool) *OpenAIClient {
	client := openai.NewClient(option.WithAPIKey(apiKey))
	chatModel := openai.ChatModel(model)
	if model == "" {
		chatModel = openai.ChatModelGPT4oMini
	}
	return &OpenAIClient{
		client:    &client,
		model:     chatModel,
		modelName: string(chatModel),
		tools:     tools,
	}
}

func (c *OpenAIClient) ModelName() string {
	return c.modelName
}

// Synthesize drives the tool loop: the model decides which fetchers to call
// and how often; once it answers without tool calls, the answer is parsed
// and validated as the report.
func (c *OpenAIClient) Synthesize(ctx context.Context) (*MonitorOutput, error) {
	toolParams := make([]openai.ChatCompletionToolParam, len(c.tools))
	for i, t := range c.tools {
		toolParams[i] = openai.ChatCompletionToolParam{
			Function: openai.FunctionDefinitionParam{
				Name:        t.Name,
				Description: openai.String(t.Description),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": map[string]interface{}{},
				},
			},
		}
	}

	messages := []openai.ChatCompletionMessageParamUnion{
		openai.SystemMessage(monitorSystemPrompt),
		openai.UserMessage(monitorUserPrompt),
	}

	for round := 0; round < maxToolRounds; round++ {
		resp, err := c.client.Chat.Completions.New(ctx, openai.ChatCompletionNewParams{
			Model:    c.model,
			Messages: messages,
			Tools:    toolParams,
		})
		if err != nil {
			return nil, fmt.Errorf("openai API error: %w", err)
		}

		if len(resp.Choices) == 0 {
			return nil, fmt.Errorf("no response from openai")
		}

		msg := resp.Choices[0].Message
		if len(msg.ToolCalls) == 0 {
			return parseMonitorOutput(msg.Content)
		}

		messages = append(messages, msg.ToParam())
		for _, call := range msg.ToolCalls {
			slog.Info("synthesis tool call", "tool", call.Function.Name)
			messages = append(messages, openai.ToolMessage(c.invokeTool(ctx, call.Function.Name), call.ID))
		}
	}

	return nil, fmt.Errorf("model did not produce a report after %d tool rounds", maxToolRounds)
}

func (c *OpenAIClient) invokeTool(ctx context.Context, name string) string {
	for _, t := range c.tools {
		if t.Name != name {
			continue
		}
		payload, err := t.Call(ctx)
		if err != nil {
			slog.Error("tool invocation failed", "tool", name, "error", err)
			return fmt.Sprintf(`{"error":%q}`, err.Error())
		}
		return payload
	}
	return fmt.Sprintf(`{"error":"unknown tool %s"}`, name)
}

func parseMonitorOutput(content string) (*MonitorOutput, error) {
	content = cleanJSONResponse(content)

	var out MonitorOutput
	if err := json.Unmarshal([]byte(content), &out); err != nil {
		return nil, &SchemaError{Field: "output", Reason: fmt.Sprintf("not valid JSON: %v", err)}
	}

	if err := ValidateMonitorOutput(&out); err != nil {
		return nil, err
	}

	return &out, nil
}
