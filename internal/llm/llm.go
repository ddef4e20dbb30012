package llm

import (
	"DocuGraph/internal/config"
	"context"
	"fmt"
)

// ChatModel 定义了文本补全模型的通用接口。
type ChatModel interface {
	// Complete 根据系统提示词和用户提示词生成一段文本。
	Complete(ctx context.Context, systemPrompt, prompt string) (string, error)
}

// VisionModel 定义了视觉模型的通用接口。
// imageData 为 base64 编码的图片内容，为空时退化为纯文本补全。
type VisionModel interface {
	ChatModel
	CompleteWithImage(ctx context.Context, systemPrompt, prompt, imageData string) (string, error)
}

// NewChatModel 是一个工厂函数，根据配置创建文本补全模型客户端。
func NewChatModel(cfg *config.LLMConfig) (ChatModel, error) {
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(cfg.Model.Name, cfg.Model.APIKey, cfg.Model.BaseURL)
	case "ollama":
		return NewOllama(cfg.Model.Name, cfg.Model.BaseURL)
	case "gemini":
		return NewGemini(context.Background(), cfg.Model.Name, cfg.Model.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// NewVisionModel 是一个工厂函数，根据配置创建视觉模型客户端。
// 未单独配置视觉模型时，复用文本模型的配置。
func NewVisionModel(cfg *config.LLMConfig) (VisionModel, error) {
	model := cfg.VisionModel
	if model.Name == "" {
		model = cfg.Model
	}
	switch cfg.Provider {
	case "openai":
		return NewOpenAI(model.Name, model.APIKey, model.BaseURL)
	case "ollama":
		return NewOllama(model.Name, model.BaseURL)
	case "gemini":
		return NewGemini(context.Background(), model.Name, model.APIKey)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}
