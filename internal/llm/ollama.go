package llm

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"
	"time"

	olla "github.com/ollama/ollama/api"
)

// Ollama 是一个用于 Ollama API 的模型客户端。
type Ollama struct {
	client *olla.Client // Ollama 客户端实例。
	model  string       // 要使用的模型名称。
}

// NewOllama 创建一个新的 Ollama 客户端。
// baseURL 为空时默认为 "http://localhost:11434"。
func NewOllama(model, baseURL string) (*Ollama, error) {
	if baseURL == "" {
		baseURL = "http://localhost:11434"
	}

	parsedURL, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("invalid base URL: %w", err)
	}

	// 创建一个带有超时设置的 HTTP 客户端。
	hc := &http.Client{
		Timeout: 120 * time.Second,
	}

	client := olla.NewClient(parsedURL, hc)

	return &Ollama{client: client, model: model}, nil
}

// Complete 使用 Ollama API 生成文本。
func (o *Ollama) Complete(ctx context.Context, systemPrompt, prompt string) (string, error) {
	return o.generate(ctx, systemPrompt, prompt, nil)
}

// CompleteWithImage 使用 Ollama API 生成文本，图片以 base64 编码传入。
func (o *Ollama) CompleteWithImage(ctx context.Context, systemPrompt, prompt, imageData string) (string, error) {
	if imageData == "" {
		return o.Complete(ctx, systemPrompt, prompt)
	}

	raw, err := base64.StdEncoding.DecodeString(imageData)
	if err != nil {
		return "", fmt.Errorf("invalid base64 image data: %w", err)
	}

	return o.generate(ctx, systemPrompt, prompt, []olla.ImageData{raw})
}

func (o *Ollama) generate(ctx context.Context, systemPrompt, prompt string, images []olla.ImageData) (string, error) {
	var result string
	stream := false

	err := o.client.Generate(ctx, &olla.GenerateRequest{
		Model:  o.model,
		System: systemPrompt,
		Prompt: prompt,
		Images: images,
		Stream: &stream,
	}, func(resp olla.GenerateResponse) error {
		result = resp.Response
		return nil
	})
	if err != nil {
		return "", fmt.Errorf("failed to generate content with ollama: %w", err)
	}

	return result, nil
}
