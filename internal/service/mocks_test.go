package service

import (
	"context"
	"errors"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/ai"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

// --- Mocks ---

type mockStorage struct {
	mu        sync.Mutex
	objects   []domain.ObjectInfo
	uploads   []string
	bodies    []io.Reader
	contents  []string
	sizes     []int64
	types     []string
	listCalls int
	uploadErr error
	listErr   error
	tick      time.Time
}

func newMockStorage() *mockStorage {
	return &mockStorage{tick: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
}

func (m *mockStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.uploads = append(m.uploads, key)
	if m.uploadErr != nil {
		return m.uploadErr
	}
	data, err := io.ReadAll(body)
	if err != nil {
		return err
	}
	m.bodies = append(m.bodies, body)
	m.contents = append(m.contents, string(data))
	m.sizes = append(m.sizes, size)
	m.types = append(m.types, contentType)
	m.tick = m.tick.Add(time.Second)
	m.objects = append(m.objects, domain.ObjectInfo{Path: key, CreatedAt: m.tick, Size: size})
	return nil
}

func (m *mockStorage) List(ctx context.Context, prefix string, opts domain.ListOptions) ([]domain.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.listCalls++
	if m.listErr != nil {
		return nil, m.listErr
	}

	var out []domain.ObjectInfo
	for _, o := range m.objects {
		if strings.HasPrefix(o.Path, prefix+"/") {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	if opts.Offset < len(out) {
		out = out[opts.Offset:]
	} else {
		out = nil
	}
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *mockStorage) PublicURL(key string) string {
	return "https://cdn.example.com/images/" + key
}

type mockChat struct {
	mu       sync.Mutex
	requests []ai.ChatRequest
	text     string
	err      error
	block    bool
}

func (m *mockChat) Complete(ctx context.Context, req ai.ChatRequest) (string, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	block := m.block
	m.mu.Unlock()

	if block {
		<-ctx.Done()
		return "", ctx.Err()
	}
	return m.text, m.err
}

func (m *mockChat) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

var errBoom = errors.New("boom")

func testConfig() *config.Config {
	return &config.Config{
		AI: config.AIConfig{
			Provider:  config.ProviderOpenAI,
			Model:     "gpt-4o",
			MaxTokens: 200,
		},
		App: config.AppConfig{
			UploadPrefix:   "public",
			GalleryLimit:   100,
			UploadTimeout:  time.Second,
			ListTimeout:    time.Second,
			AnalyzeTimeout: time.Second,
		},
	}
}

func nopLogger() *zap.Logger { return zap.NewNop() }
