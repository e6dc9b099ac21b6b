package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/ai"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/handler"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/repository"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/service"
	"github.com/Engineer-Guild-Hackathon/team-9-app/web"
)

type Server struct {
	httpServer *http.Server
	cfg        *config.Config
	log        *zap.Logger
}

// New wires the configured object store and chat provider into a server.
func New(ctx context.Context, cfg *config.Config, log *zap.Logger) (*Server, error) {
	repo, err := repository.NewObjectStorage(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create object storage: %w", err)
	}

	chat, err := ai.NewChatCompleter(ctx, &cfg.AI, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create chat client: %w", err)
	}

	imageService := service.NewImageService(repo, cfg, log)
	analysisService := service.NewAnalysisService(chat, cfg, log)

	return NewWithServices(cfg, log, imageService, analysisService)
}

func NewWithServices(cfg *config.Config, log *zap.Logger, images service.ImageService, analysis service.AnalysisService) (*Server, error) {
	h := handler.NewHandler(images, analysis, log)

	router, err := newRouter(cfg, h, log)
	if err != nil {
		return nil, err
	}

	server := &Server{
		httpServer: &http.Server{
			Addr:              cfg.Server.Host + ":" + cfg.Server.Port,
			Handler:           router,
			ReadHeaderTimeout: 10 * time.Second,
			ReadTimeout:       cfg.App.UploadTimeout + 10*time.Second,
			WriteTimeout:      cfg.App.AnalyzeTimeout + 10*time.Second,
			MaxHeaderBytes:    1 << 20, // 1 MB
		},
		cfg: cfg,
		log: log,
	}

	log.Info("Server created successfully",
		zap.String("host", cfg.Server.Host),
		zap.String("port", cfg.Server.Port),
		zap.String("storage", cfg.Storage.Driver),
		zap.String("ai_provider", cfg.AI.Provider))

	return server, nil
}

func newRouter(cfg *config.Config, h *handler.Handler, log *zap.Logger) (*gin.Engine, error) {
	router := gin.New()
	router.Use(gin.Recovery(), requestID(), requestLogger(log), securityHeaders())
	router.MaxMultipartMemory = cfg.App.MaxUploadSize

	tmpl, err := web.Templates()
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}
	router.SetHTMLTemplate(tmpl)

	static, err := web.Static()
	if err != nil {
		return nil, fmt.Errorf("failed to open static assets: %w", err)
	}

	router.GET("/", h.GetUI)
	router.GET("/health", h.HealthCheck)

	api := router.Group("/api")
	{
		api.POST("/analyze", h.Analyze)
		api.POST("/upload", h.UploadImage)
		api.GET("/images", h.ListImages)
	}

	router.StaticFS("/static", http.FS(static))

	return router, nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *Server) Run() error {
	s.log.Info("Server is running",
		zap.String("host", s.cfg.Server.Host),
		zap.String("port", s.cfg.Server.Port),
		zap.String("address", s.httpServer.Addr))

	return s.httpServer.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down server")
	return s.httpServer.Shutdown(ctx)
}
