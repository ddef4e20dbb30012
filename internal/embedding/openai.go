package embedding

import (
	"context"
	"fmt"

	openai "github.com/meguminnnnnnnnn/go-openai"
)

// OpenAIModel 是一个用于 OpenAI API 的 Embedding 模型客户端。
type OpenAIModel struct {
	client *openai.Client // OpenAI 客户端实例。
	model  string         // 要使用的模型名称。
}

// NewOpenAIModel 创建一个新的 OpenAIModel 客户端。baseURL 为空时使用官方端点。
func NewOpenAIModel(apiKey, modelName, baseURL string) (*OpenAIModel, error) {
	config := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		config.BaseURL = baseURL
	}
	client := openai.NewClientWithConfig(config)
	return &OpenAIModel{client: client, model: modelName}, nil
}

// Embed 使用 OpenAI API 为单个文本生成嵌入向量。
func (m *OpenAIModel) Embed(ctx context.Context, text string) ([]float32, error) {
	embeddings, err := m.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return embeddings[0], nil
}

// EmbedBatch 使用 OpenAI API 为一批文本生成嵌入向量。
func (m *OpenAIModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	// 构建 OpenAI Embedding 请求。
	req := openai.EmbeddingRequest{
		Input: texts,
		Model: openai.EmbeddingModel(m.model),
	}

	resp, err := m.client.CreateEmbeddings(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create embeddings: %w", err)
	}

	if len(resp.Data) == 0 {
		return nil, fmt.Errorf("no embeddings returned")
	}

	// 将结果转换为 [][]float32 格式。
	embeddings := make([][]float32, len(resp.Data))
	for i, d := range resp.Data {
		embeddings[i] = d.Embedding
	}

	return embeddings, nil
}
