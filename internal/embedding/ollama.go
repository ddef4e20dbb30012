package embedding

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	ollama "github.com/ollama/ollama/api"
)

// OllamaModel 是一个用于 Ollama API 的 Embedding 模型客户端。
type OllamaModel struct {
	client *ollama.Client // Ollama 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOllamaModel 创建一个新的 OllamaModel 客户端。
// baseURL 为空时默认为 "http://localhost:11434"。
func NewOllamaModel(model, baseURL string) (*OllamaModel, error) {
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

	client := ollama.NewClient(parsedURL, hc)

	return &OllamaModel{client: client, model: model}, nil
}

// Embed 为单个文本生成嵌入向量。
func (m *OllamaModel) Embed(ctx context.Context, text string) ([]float32, error) {
	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: text,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get embeddings from ollama: %w", err)
	}

	if len(resp.Embeddings) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	return resp.Embeddings[0], nil
}

// EmbedBatch 为一批文本生成嵌入向量。
func (m *OllamaModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	// 使用 Ollama 的批量嵌入功能。
	resp, err := m.client.Embed(ctx, &ollama.EmbedRequest{
		Model: m.model,
		Input: texts,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get batch embeddings from ollama: %w", err)
	}

	return resp.Embeddings, nil
}
