package llm

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAI 是一个用于 OpenAI API 的模型客户端。
type OpenAI struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOpenAI 创建一个新的 OpenAI 客户端。baseURL 为空时使用官方端点。
func NewOpenAI(model, apiKey, baseURL string) (*OpenAI, error) {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAI{client: client, model: model}, nil
}

// Complete 使用 OpenAI API 生成文本。
func (o *OpenAI) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: prompt,
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}

// CompleteWithImage 使用 OpenAI 视觉 API 生成文本。
// 图片以 base64 data URI 的形式随消息发送。
func (o *OpenAI) CompleteWithImage(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	if imageData == "" {
		return o.Complete(ctx, systemPrompt, prompt)
	}

	var messages []openai.ChatCompletionMessage
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: prompt,
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:image/jpeg;base64,%s", imageData),
				},
			},
		},
	})

	resp, err := o.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    o.model,
		Messages: messages,
	})
	if err != nil {
		return "", fmt.Errorf("failed to create vision completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices returned")
	}

	return resp.Choices[0].Message.Content, nil
}
