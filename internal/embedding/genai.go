package embedding

import (
	"context"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GoogleModel 是一个用于 Google GenAI Embedding API 的客户端。
type GoogleModel struct {
	model *genai.EmbeddingModel
}

// NewGoogleModel 创建并返回一个新的 GoogleModel 客户端实例。
func NewGoogleModel(apiKey string, modelName string) (*GoogleModel, error) {
	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, err
	}

	return &GoogleModel{
		model: client.EmbeddingModel(modelName),
	}, nil
}

// Embed 为单个文本生成嵌入向量。
func (m *GoogleModel) Embed(ctx context.Context, text string) ([]float32, error) {
	res, err := m.model.EmbedContent(ctx, genai.Text(text))
	if err != nil {
		return nil, err
	}
	return res.Embedding.Values, nil
}

// EmbedBatch 为一批文本生成嵌入向量。
func (m *GoogleModel) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	// 创建一个新的批量嵌入请求。
	batch := m.model.NewBatch()
	for _, text := range texts {
		batch.AddContent(genai.Text(text))
	}

	res, err := m.model.BatchEmbedContents(ctx, batch)
	if err != nil {
		return nil, err
	}

	// 将结果转换为 [][]float32 格式。
	embeddings := make([][]float32, 0, len(res.Embeddings))
	for _, emb := range res.Embeddings {
		embeddings = append(embeddings, emb.Values)
	}

	return embeddings, nil
}
