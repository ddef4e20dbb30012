package embedding

import (
	"DocuGraph/internal/config"
	"fmt"
)

// New 根据配置创建并返回一个新的 Embedding 模型实例。
func New(cfg *config.EmbeddingConfig) (Embedding, error) {
	// 根据提供商类型创建相应的 Embedding 模型实例。
	switch cfg.Provider {
	case "google":
		return NewGoogleModel(cfg.Model.APIKey, cfg.Model.Name)
	case "openai":
		return NewOpenAIModel(cfg.Model.APIKey, cfg.Model.Name, cfg.Model.BaseURL)
	case "ollama":
		return NewOllamaModel(cfg.Model.Name, cfg.Model.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported provider: %s", cfg.Provider)
	}
}
