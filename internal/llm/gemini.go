package llm

import (
	"context"
	"encoding/base64"
	"fmt"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// Gemini 是一个用于 Gemini API 的模型客户端。
type Gemini struct {
	model *genai.GenerativeModel // Gemini 生成模型实例。
}

// NewGemini 创建一个新的 Gemini 客户端。
func NewGemini(ctx context.Context, model, apiKey string) (*Gemini, error) {
	// 使用 API 密钥创建 GenAI 客户端。
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &Gemini{model: client.GenerativeModel(model)}, nil
}

// Complete 使用 Gemini API 生成文本。
func (g *Gemini) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return g.generate(ctx, systemPrompt, genai.Text(prompt))
}

// CompleteWithImage 使用 Gemini API 生成文本，图片以 base64 编码传入。
func (g *Gemini) CompleteWithImage(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	if imageData == "" {
		return g.Complete(ctx, systemPrompt, prompt)
	}

	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}

	return g.generate(ctx, systemPrompt, genai.Text(prompt), genai.ImageData("jpeg", raw))
}

func (g *Gemini) generate(ctx context.Context, systemPrompt string, parts ...genai.Part) (string, error) {
	if systemPrompt != "" {
		g.model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(systemPrompt)},
		}
	}

	resp, err := g.model.GenerateContent(ctx, parts...)
	if err != nil {
		return "", fmt.Errorf("failed to generate content with gemini: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", fmt.Errorf("no candidates returned")
	}

	var result string
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			result += string(text)
		}
	}
	return result, nil
}
