package server

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/ai"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/service"
	"github.com/Engineer-Guild-Hackathon/team-9-app/pkg/client"
)

const publicBase = "https://cdn.example.com/images"

// memStorage is an in-memory ObjectStorage.
type memStorage struct {
	mu      sync.Mutex
	objects []domain.ObjectInfo
	writes  []string
	listErr error
}

func (m *memStorage) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	if _, err := io.Copy(io.Discard, body); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writes = append(m.writes, key)
	m.objects = append(m.objects, domain.ObjectInfo{Path: key, CreatedAt: time.Now(), Size: size})
	return nil
}

func (m *memStorage) List(ctx context.Context, prefix string, opts domain.ListOptions) ([]domain.ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, m.listErr
	}
	out := make([]domain.ObjectInfo, 0, len(m.objects))
	for _, o := range m.objects {
		if strings.HasPrefix(o.Path, prefix+"/") {
			out = append(out, o)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Path > out[j].Path })
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (m *memStorage) PublicURL(key string) string {
	return publicBase + "/" + key
}

func (m *memStorage) written() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.writes...)
}

func (m *memStorage) setListErr(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.listErr = err
}

func testConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{Host: "127.0.0.1", Port: "0"},
		AI: config.AIConfig{
			Provider:  config.ProviderOpenAI,
			Model:     "gpt-4o",
			MaxTokens: 200,
		},
		App: config.AppConfig{
			UploadPrefix:   "public",
			GalleryLimit:   100,
			MaxUploadSize:  8 << 20,
			UploadTimeout:  5 * time.Second,
			ListTimeout:    5 * time.Second,
			AnalyzeTimeout: 5 * time.Second,
		},
	}
}

type testEnv struct {
	store     *memStorage
	api       *httptest.Server
	chatCalls *int32
}

func newTestEnv(t *testing.T, chatResponse string) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	var calls int32
	upstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, chatResponse)
	}))
	t.Cleanup(upstream.Close)

	cfg := testConfig()
	log := zap.NewNop()
	store := &memStorage{}
	chat := ai.NewOpenAIClient("test-key", upstream.URL+"/v1", log)

	srv, err := NewWithServices(cfg, log,
		service.NewImageService(store, cfg, log),
		service.NewAnalysisService(chat, cfg, log))
	require.NoError(t, err)

	api := httptest.NewServer(srv.Handler())
	t.Cleanup(api.Close)

	return &testEnv{store: store, api: api, chatCalls: &calls}
}

func TestEndToEnd_UploadListAnalyze(t *testing.T) {
	env := newTestEnv(t, `{"choices":[{"message":{"content":"素敵な写真ですね！"}}]}`)
	ctx := context.Background()

	c := client.New(env.api.URL)
	ctrl := client.NewController(c, c, c, zap.NewNop())
	require.NoError(t, ctrl.Refresh(ctx))
	assert.Empty(t, ctrl.Snapshot().Images)

	// (1)-(2) select and upload.
	res, err := ctrl.Upload(ctx, &domain.File{Name: "my photo!.png", Reader: strings.NewReader("\x89PNG\r\n\x1a\n")})
	require.NoError(t, err)
	writes := env.store.written()
	require.Len(t, writes, 1)
	assert.Regexp(t, `^public/\d+_my_photo_\.png$`, writes[0])
	assert.Equal(t, writes[0], res.Path)

	// (3) the refresh after upload puts it first.
	snap := ctrl.Snapshot()
	require.NotEmpty(t, snap.Images)
	assert.Equal(t, publicBase+"/"+res.Path, snap.Images[0])

	// (4)-(6) analyze.
	got, err := ctrl.Analyze(ctx)
	require.NoError(t, err)
	assert.Equal(t, "素敵な写真ですね！", got)
	assert.Equal(t, "素敵な写真ですね！", ctrl.Snapshot().Analysis)
	assert.Equal(t, int32(1), atomic.LoadInt32(env.chatCalls))
}

func TestEndToEnd_ListFailureKeepsGallery(t *testing.T) {
	env := newTestEnv(t, `{"choices":[{"message":{"content":"T"}}]}`)
	ctx := context.Background()

	c := client.New(env.api.URL)
	ctrl := client.NewController(c, c, c, zap.NewNop())

	_, err := ctrl.Upload(ctx, &domain.File{Name: "a.png", Reader: strings.NewReader("a")})
	require.NoError(t, err)
	before := ctrl.Snapshot().Images
	require.Len(t, before, 1)

	env.store.setListErr(assert.AnError)
	err = ctrl.Refresh(ctx)
	assert.ErrorIs(t, err, domain.ErrGalleryListFailed)

	snap := ctrl.Snapshot()
	assert.Equal(t, before, snap.Images)
	assert.Equal(t, client.GalleryLoadFailed, snap.GalleryStatus)
}

func TestEndToEnd_AnalyzeWithoutImages(t *testing.T) {
	env := newTestEnv(t, `{"choices":[{"message":{"content":"T"}}]}`)
	ctx := context.Background()

	c := client.New(env.api.URL)
	ctrl := client.NewController(c, c, c, zap.NewNop())
	require.NoError(t, ctrl.Refresh(ctx))

	_, err := ctrl.Analyze(ctx)
	assert.ErrorIs(t, err, domain.ErrNoImagesToAnalyze)
	assert.Equal(t, int32(0), atomic.LoadInt32(env.chatCalls))
}

func TestRoutes(t *testing.T) {
	env := newTestEnv(t, `{"choices":[{"message":{"content":"T"}}]}`)

	t.Run("gallery page", func(t *testing.T) {
		resp, err := http.Get(env.api.URL + "/")
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
		assert.Contains(t, string(body), "メタ認知図鑑")
		assert.NotEmpty(t, resp.Header.Get("X-Request-ID"))
	})

	t.Run("static script", func(t *testing.T) {
		resp, err := http.Get(env.api.URL + "/static/app.js")
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("request id is propagated", func(t *testing.T) {
		req, _ := http.NewRequest(http.MethodGet, env.api.URL+"/health", nil)
		req.Header.Set("X-Request-ID", "abc-123")
		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		defer resp.Body.Close()
		assert.Equal(t, "abc-123", resp.Header.Get("X-Request-ID"))
	})

	t.Run("analyze without urls", func(t *testing.T) {
		resp, err := http.Post(env.api.URL+"/api/analyze", "application/json", strings.NewReader(`{"imageUrls":[]}`))
		require.NoError(t, err)
		defer resp.Body.Close()
		body, _ := io.ReadAll(resp.Body)

		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.JSONEq(t, `{"error":"Image URLs are required"}`, string(body))
	})
}
