package ai

import (
	"context"
	"errors"
	"fmt"
	"mime"
	"net/url"
	"path"
	"strings"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

const defaultImageMIMEType = "image/jpeg"

// GeminiClient wraps the Google GenAI client for the Gemini API.
type GeminiClient struct {
	client *genai.Client
	log    *zap.Logger
}

// NewGeminiClient creates a Gemini API client. baseURL is only set in tests.
func NewGeminiClient(ctx context.Context, apiKey, baseURL string, log *zap.Logger) (*GeminiClient, error) {
	cc := &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	}
	if baseURL != "" {
		cc.HTTPOptions = genai.HTTPOptions{BaseURL: baseURL}
	}

	client, err := genai.NewClient(ctx, cc)
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	return &GeminiClient{client: client, log: log}, nil
}

func (g *GeminiClient) Complete(ctx context.Context, req ChatRequest) (string, error) {
	parts := make([]*genai.Part, 0, len(req.Parts))
	for _, p := range req.Parts {
		switch p.Type {
		case PartText:
			parts = append(parts, genai.NewPartFromText(p.Text))
		case PartImageURL:
			parts = append(parts, genai.NewPartFromURI(p.ImageURL, imageMIMEType(p.ImageURL)))
		}
	}

	resp, err := g.client.Models.GenerateContent(ctx, req.Model,
		[]*genai.Content{{Role: "user", Parts: parts}},
		&genai.GenerateContentConfig{MaxOutputTokens: int32(req.MaxTokens)},
	)
	if err != nil {
		return "", g.classify(err)
	}

	if resp == nil || len(resp.Candidates) == 0 {
		g.log.Error("Gemini returned no candidates", zap.String("model", req.Model))
		return "", fmt.Errorf("%w: no candidates in response", domain.ErrAnalysisRequestFailed)
	}

	text := resp.Text()
	if text == "" {
		g.log.Error("Gemini returned empty text",
			zap.String("model", req.Model),
			zap.String("finish_reason", string(resp.Candidates[0].FinishReason)))
		return "", fmt.Errorf("%w: empty completion", domain.ErrAnalysisRequestFailed)
	}

	return text, nil
}

func (g *GeminiClient) classify(err error) error {
	var apiErr genai.APIError
	if errors.As(err, &apiErr) {
		g.log.Error("Gemini rejected request",
			zap.Int("status", apiErr.Code),
			zap.Error(err))
		return fmt.Errorf("%w: %v", classifyStatus(apiErr.Code), err)
	}

	g.log.Error("Gemini request failed", zap.Error(err))
	return fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
}

// imageMIMEType guesses the MIME type of an image URL from its extension.
func imageMIMEType(rawURL string) string {
	p := rawURL
	if u, err := url.Parse(rawURL); err == nil {
		p = u.Path
	}
	if ct := mime.TypeByExtension(strings.ToLower(path.Ext(p))); strings.HasPrefix(ct, "image/") {
		return ct
	}
	return defaultImageMIMEType
}
