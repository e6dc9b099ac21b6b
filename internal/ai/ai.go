// Package ai adapts hosted multimodal chat-completion APIs to a single
// ChatCompleter interface. Adapters classify failures into
// domain.ErrUpstreamRejected or domain.ErrAnalysisRequestFailed and never retry.
package ai

import (
	"context"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

type PartType string

const (
	PartText     PartType = "text"
	PartImageURL PartType = "image_url"
)

// ContentPart is one element of a multimodal user message.
type ContentPart struct {
	Type     PartType
	Text     string
	ImageURL string
}

func TextPart(text string) ContentPart {
	return ContentPart{Type: PartText, Text: text}
}

func ImagePart(url string) ContentPart {
	return ContentPart{Type: PartImageURL, ImageURL: url}
}

// ChatRequest is a single user message made of ordered parts.
type ChatRequest struct {
	Model     string
	Parts     []ContentPart
	MaxTokens int
}

// ChatCompleter returns the text of the first completion choice.
type ChatCompleter interface {
	Complete(ctx context.Context, req ChatRequest) (string, error)
}

// NewChatCompleter builds the client selected by AI_PROVIDER.
func NewChatCompleter(ctx context.Context, cfg *config.AIConfig, log *zap.Logger) (ChatCompleter, error) {
	switch cfg.Provider {
	case config.ProviderOpenAI:
		return NewOpenAIClient(cfg.OpenAIAPIKey, cfg.OpenAIBaseURL, log), nil
	case config.ProviderGemini:
		client, err := NewGeminiClient(ctx, cfg.GeminiAPIKey, "", log)
		if err != nil {
			return nil, err
		}
		return client, nil
	default:
		return nil, fmt.Errorf("unknown ai provider %q", cfg.Provider)
	}
}

// classifyStatus maps an upstream HTTP status to a domain error. Requests the
// endpoint refuses as too large or malformed are UpstreamRejected; everything
// else is a plain request failure.
func classifyStatus(status int) error {
	switch status {
	case http.StatusBadRequest, http.StatusRequestEntityTooLarge, http.StatusUnprocessableEntity:
		return domain.ErrUpstreamRejected
	default:
		return domain.ErrAnalysisRequestFailed
	}
}
