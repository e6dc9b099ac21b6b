package service

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/ai"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

const interestPrompt = `You are a friendly and insightful guide for an "interest discovery picture book" app.
The following images were all uploaded by one person because they found them interesting.
Look across every image and find the themes, colors, shapes or subjects they have in common.
Write a short, positive and encouraging summary in Japanese, about 2-3 sentences, addressed directly to the person who collected the images, telling them what they seem to be interested in.
Start with a friendly greeting.`

type AnalysisService interface {
	// Analyze sends every URL in one request and returns the first
	// completion's text verbatim.
	Analyze(ctx context.Context, urls []string) (string, error)
}

type analysisService struct {
	chat ai.ChatCompleter
	cfg  *config.Config
	log  *zap.Logger
}

func NewAnalysisService(chat ai.ChatCompleter, cfg *config.Config, log *zap.Logger) AnalysisService {
	return &analysisService{
		chat: chat,
		cfg:  cfg,
		log:  log,
	}
}

func (s *analysisService) Analyze(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", domain.ErrNoImagesToAnalyze
	}

	parts := make([]ai.ContentPart, 0, len(urls)+1)
	parts = append(parts, ai.TextPart(interestPrompt))
	for _, u := range urls {
		parts = append(parts, ai.ImagePart(u))
	}

	ctx, cancel := context.WithTimeout(ctx, s.cfg.App.AnalyzeTimeout)
	defer cancel()

	model := s.cfg.AI.ActiveModel()
	analysis, err := s.chat.Complete(ctx, ai.ChatRequest{
		Model:     model,
		Parts:     parts,
		MaxTokens: s.cfg.AI.MaxTokens,
	})
	if err != nil {
		s.log.Error("Failed to analyze images",
			zap.String("model", model),
			zap.Int("images", len(urls)),
			zap.Error(err))
		if errors.Is(err, domain.ErrUpstreamRejected) || errors.Is(err, domain.ErrAnalysisRequestFailed) {
			return "", err
		}
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
	}

	s.log.Info("Images analyzed",
		zap.String("model", model),
		zap.Int("images", len(urls)))

	return analysis, nil
}
