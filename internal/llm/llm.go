package llm

import (
	"context"
	"fmt"

	"MeetMind/internal/config"
	"MeetMind/internal/models"
)

// LLM 定义了所有大型语言模型客户端必须实现的通用接口。
type LLM interface {
	GenerateContent(ctx context.Context, req *models.GenerateContentRequest) (*models.GenerateContentResponse, error)
	GenerateContentStream(ctx context.Context, req *models.GenerateContentRequest) (<-chan *models.GenerateContentResponse, error)
}

// NewClient 是一个工厂函数，根据提供的配置创建并返回一个实现了 LLM 接口的客户端。
func NewClient(cfg config.LLMConfig) (LLM, error) {
	switch cfg.Provider {
	case "gemini":
		return NewGemini(context.Background(), cfg.Model, cfg.APIKey)
	case "openai":
		return NewOpenAI(cfg.Model, cfg.APIKey, cfg.BaseURL)
	case "ollama":
		return NewOllama(cfg.Model, cfg.BaseURL)
	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}
}

// Generate 是一个便捷函数：发送单条文本提示并返回首个文本回复。
func Generate(ctx context.Context, client LLM, prompt string) (string, error) {
	resp, err := client.GenerateContent(ctx, &models.GenerateContentRequest{
		Content: []models.Content{
			{
				Role:  models.SpeakerUser,
				Parts: []*models.Part{{Text: prompt}},
			},
		},
	})
	if err != nil {
		return "", err
	}
	return resp.Text(), nil
}
