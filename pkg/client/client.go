// Package client drives the upload, gallery and analysis workflow from Go.
// Client speaks the HTTP API; Controller holds the per-session state the
// gallery page renders.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

const defaultTimeout = 90 * time.Second

// Client calls the /api endpoints of a running server.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) UploadImage(ctx context.Context, file *domain.File) (*domain.UploadResult, error) {
	if file == nil || file.Reader == nil {
		return nil, domain.ErrNoFileSelected
	}

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", file.Name)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	if _, err := io.Copy(part, file.Reader); err != nil {
		return nil, fmt.Errorf("%w: read file: %v", domain.ErrStorageWriteFailed, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/upload", &body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	var out domain.UploadResult
	status, err := c.do(req, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}
	switch status {
	case http.StatusOK:
		return &out, nil
	case http.StatusBadRequest:
		return nil, domain.ErrNoFileSelected
	default:
		return nil, fmt.Errorf("%w: status %d", domain.ErrStorageWriteFailed, status)
	}
}

func (c *Client) ListImages(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/images", nil)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGalleryListFailed, err)
	}

	var out struct {
		Images []string `json:"images"`
	}
	status, err := c.do(req, &out)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGalleryListFailed, err)
	}
	if status != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", domain.ErrGalleryListFailed, status)
	}
	if out.Images == nil {
		out.Images = []string{}
	}
	return out.Images, nil
}

func (c *Client) Analyze(ctx context.Context, urls []string) (string, error) {
	if len(urls) == 0 {
		return "", domain.ErrNoImagesToAnalyze
	}

	payload, err := json.Marshal(struct {
		ImageURLs []string `json:"imageUrls"`
	}{ImageURLs: urls})
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/analyze", bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	var out struct {
		Analysis string `json:"analysis"`
	}
	status, err := c.do(req, &out)
	if err != nil {
		return "", fmt.Errorf("%w: %v", domain.ErrAnalysisRequestFailed, err)
	}
	switch status {
	case http.StatusOK:
		if out.Analysis == "" {
			return "", fmt.Errorf("%w: empty analysis in response", domain.ErrAnalysisRequestFailed)
		}
		return out.Analysis, nil
	case http.StatusBadRequest:
		return "", domain.ErrNoImagesToAnalyze
	default:
		return "", fmt.Errorf("%w: status %d", domain.ErrAnalysisRequestFailed, status)
	}
}

// do sends req and decodes a 200 body into out. Error bodies are dropped;
// the status code carries the meaning.
func (c *Client) do(req *http.Request, out any) (int, error) {
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, resp.Body)
		return resp.StatusCode, nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return resp.StatusCode, fmt.Errorf("decode response: %w", err)
	}
	return resp.StatusCode, nil
}
