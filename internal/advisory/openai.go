package advisory

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/karthikdoguparthi/KisaanGrow/internal/i18n"
	"github.com/sashabaranov/go-openai"
)

const (
	model       = openai.GPT4oMini
	maxTokens   = 200
	temperature = 0.3
)

type OpenAIGateway struct {
	client *openai.Client
}

// NewOpenAIGateway returns nil when apiKey is empty so that callers fall back
// to static advice. baseURL overrides the API endpoint when set.
func NewOpenAIGateway(apiKey, baseURL string) *OpenAIGateway {
	if apiKey == "" {
		return nil
	}
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIGateway{client: openai.NewClientWithConfig(cfg)}
}

func prompt(quantity float64, days int, lang string) string {
	qty := strconv.FormatFloat(quantity, 'f', -1, 64)
	if lang == i18n.Hindi {
		return fmt.Sprintf("किसान के लिए %s टन गन्ने और %d दिनों के आधार पर एक छोटी, सरल और उपयोगी सलाह दें।", qty, days)
	}
	return fmt.Sprintf("Give short, simple and useful advice for a farmer based on %s tonnes of sugarcane and %d days.", qty, days)
}

func (g *OpenAIGateway) Advice(ctx context.Context, quantity float64, daysUntilSlot int, lang string) (string, error) {
	if g == nil {
		return "", ErrNoCredentials
	}
	resp, err := g.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleUser, Content: prompt(quantity, daysUntilSlot, lang)},
		},
		MaxTokens:   maxTokens,
		Temperature: temperature,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", errors.New("chat completion: no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
