package ai

import (
	"context"
	"errors"
	"fmt"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

// OpenAIClient talks to an OpenAI-compatible /chat/completions endpoint.
type OpenAIClient struct {
	client *openai.Client
	log    *zap.Logger
}

func NewOpenAIClient(apiKey, baseURL string, log *zap.Logger) *OpenAIClient {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAIClient{
		client: openai.NewClientWithConfig(cfg),
		log:    log,
	}
}

func (c *OpenAIClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	parts := make([]openai.ChatMessagePart, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p.Type {
		case PartText:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeText,
				Text: p.Text,
			})
		case PartImageURL:
			parts = append(parts, openai.ChatMessagePart{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL:    p.ImageURL,
					Detail: openai.ImageURLDetailAuto,
				},
			})
		}
	}

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     req.Model,
		MaxTokens: req.MaxTokens,
		Messages: []openai.ChatCompletionMessage{{
			Role:         openai.ChatMessageRoleUser,
			MultiContent: parts,
		}},
	})
	if err != nil {
		return "", c.classify(err)
	}

	if len(resp.Choices) == 0 {
		c.log.Error("Chat completion returned no choices", zap.String("model", req.Model))
		return "", fmt.Errorf("%w: no choices in response", domain.ErrAnalysisRequestFailed)
	}

	content := resp.Choices[0].Message.Content
	if content == "" {
		c.log.Error("Chat completion returned empty content",
			zap.String("model", req.Model),
			zap.String("finish_reason", string(resp.Choices[0].FinishReason)))
		return "", fmt.Errorf("%w: empty completion", domain.ErrAnalysisRequestFailed)
	}

	return content, nil
}

func (c *OpenAIClient) classify(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		c.log.Error("Chat completion rejected",
			zap.Int("status", apiErr.HTTPStatusCode),
			zap.Error(err))
		return fmt.Errorf("%w: %v", classifyStatus(apiErr.HTTPStatusCode), err)
	}

	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) {
		c.log.Error("Chat completion request failed",
			zap.Int("status", reqErr.HTTPStatusCode),
			zap.Error(err))
		return fmt.Errorf("%w: %v", classifyStatus(reqErr.HTTPStatusCode), err)
	}

	c.log.Error("Chat completion request failed", zap.Error(err))
	return fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
}
