package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/service"
)

const (
	errImageURLsRequired = "Image URLs are required"
	errAnalyzeFailed     = "Failed to analyze images"
	errNoFileSelected    = "No file selected"
	errUploadFailed      = "Failed to upload image"
	errListFailed        = "Failed to list images"
)

type Handler struct {
	images   service.ImageService
	analysis service.AnalysisService
	log      *zap.Logger
}

func NewHandler(images service.ImageService, analysis service.AnalysisService, log *zap.Logger) *Handler {
	return &Handler{
		images:   images,
		analysis: analysis,
		log:      log,
	}
}

type analyzeRequest struct {
	ImageURLs []string `json:"imageUrls"`
}

// Analyze relays the image URLs to the chat-completion collaborator.
func (h *Handler) Analyze(c *gin.Context) {
	var req analyzeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.log.Warn("Invalid analyze request", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageURLsRequired})
		return
	}
	if len(req.ImageURLs) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": errImageURLsRequired})
		return
	}

	analysis, err := h.analysis.Analyze(c.Request.Context(), req.ImageURLs)
	if err != nil {
		if errors.Is(err, domain.ErrNoImagesToAnalyze) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errImageURLsRequired})
			return
		}
		h.log.Error("AI analysis error",
			zap.Int("images", len(req.ImageURLs)),
			zap.Bool("upstream_rejected", errors.Is(err, domain.ErrUpstreamRejected)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errAnalyzeFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"analysis": analysis})
}

func (h *Handler) UploadImage(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		h.log.Warn("Failed to get file from form", zap.Error(err))
		c.JSON(http.StatusBadRequest, gin.H{"error": errNoFileSelected})
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.log.Error("Failed to open file", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errUploadFailed})
		return
	}
	defer f.Close()

	result, err := h.images.UploadImage(c.Request.Context(), &domain.File{
		Name:   fh.Filename,
		Size:   fh.Size,
		Reader: f,
	})
	if err != nil {
		if errors.Is(err, domain.ErrNoFileSelected) {
			c.JSON(http.StatusBadRequest, gin.H{"error": errNoFileSelected})
			return
		}
		h.log.Error("Failed to upload image", zap.String("filename", fh.Filename), zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errUploadFailed})
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *Handler) ListImages(c *gin.Context) {
	images, err := h.images.ListImages(c.Request.Context())
	if err != nil {
		h.log.Error("Failed to list images", zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": errListFailed})
		return
	}

	c.JSON(http.StatusOK, gin.H{"images": images})
}

func (h *Handler) HealthCheck(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "OK"})
}

func (h *Handler) GetUI(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"title": "メタ認知図鑑",
	})
}
