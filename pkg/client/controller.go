package client

import (
	"context"
	"errors"
	"sync"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

// Status messages shown to the user.
const (
	MsgSelectImage     = "画像をアップロードしてください"
	MsgUploading       = "アップロード中..."
	MsgUploaded        = "アップロードが完了しました！"
	MsgAnalyzing       = "分析中..."
	MsgAnalyzed        = "分析が完了しました"
	MsgGalleryLoadFail = "画像の読み込みに失敗しました"
)

type Uploader interface {
	UploadImage(ctx context.Context, file *domain.File) (*domain.UploadResult, error)
}

type GalleryLister interface {
	ListImages(ctx context.Context) ([]string, error)
}

type Analyzer interface {
	Analyze(ctx context.Context, urls []string) (string, error)
}

type GalleryStatus int

const (
	GalleryNotLoaded GalleryStatus = iota
	GalleryLoaded
	GalleryLoadFailed
)

func (s GalleryStatus) String() string {
	switch s {
	case GalleryLoaded:
		return "loaded"
	case GalleryLoadFailed:
		return "load_failed"
	default:
		return "not_loaded"
	}
}

type AnalysisState int

const (
	AnalysisIdle AnalysisState = iota
	AnalysisRequesting
	AnalysisSucceeded
	AnalysisFailed
)

func (s AnalysisState) String() string {
	switch s {
	case AnalysisRequesting:
		return "requesting"
	case AnalysisSucceeded:
		return "succeeded"
	case AnalysisFailed:
		return "failed"
	default:
		return "idle"
	}
}

// Snapshot is a copy of the controller state for rendering.
type Snapshot struct {
	Images        []string
	GalleryStatus GalleryStatus
	Analysis      string
	AnalysisState AnalysisState
	Uploading     bool
	Message       string
}

// Controller owns the gallery list and the last analysis result for one
// session. Each operation applies exactly one state transition when it
// completes; a failure in one operation never touches the other's state.
type Controller struct {
	uploader Uploader
	gallery  GalleryLister
	analyzer Analyzer
	log      *zap.Logger

	mu            sync.Mutex
	images        []string
	galleryStatus GalleryStatus
	analysis      string
	analysisState AnalysisState
	uploading     bool
	message       string
	refreshSeq    uint64
}

func NewController(uploader Uploader, gallery GalleryLister, analyzer Analyzer, log *zap.Logger) *Controller {
	return &Controller{
		uploader: uploader,
		gallery:  gallery,
		analyzer: analyzer,
		log:      log,
		message:  MsgSelectImage,
	}
}

// Refresh replaces the gallery on success. On failure the previous list is
// kept and the status becomes GalleryLoadFailed. Only the most recently
// issued refresh is applied; an older listing that completes later is dropped.
func (c *Controller) Refresh(ctx context.Context) error {
	c.mu.Lock()
	c.refreshSeq++
	seq := c.refreshSeq
	c.mu.Unlock()

	urls, err := c.gallery.ListImages(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.refreshSeq {
		c.log.Debug("Dropping superseded gallery listing", zap.Uint64("seq", seq), zap.Error(err))
		return nil
	}

	if err != nil {
		c.log.Error("Failed to refresh gallery", zap.Error(err))
		c.galleryStatus = GalleryLoadFailed
		c.message = MsgGalleryLoadFail
		return err
	}

	c.images = append([]string(nil), urls...)
	if c.galleryStatus == GalleryLoadFailed && c.message == MsgGalleryLoadFail {
		c.message = MsgSelectImage
	}
	c.galleryStatus = GalleryLoaded
	return nil
}

// Upload stores one file and then refreshes the gallery. A refresh failure
// after a successful upload does not fail the upload.
func (c *Controller) Upload(ctx context.Context, file *domain.File) (*domain.UploadResult, error) {
	c.mu.Lock()
	if file == nil {
		c.message = domain.UserMessage(domain.ErrNoFileSelected)
		c.mu.Unlock()
		return nil, domain.ErrNoFileSelected
	}
	if c.uploading {
		c.mu.Unlock()
		return nil, domain.ErrUploadInProgress
	}
	c.uploading = true
	c.message = MsgUploading
	c.mu.Unlock()

	res, err := c.uploader.UploadImage(ctx, file)

	c.mu.Lock()
	c.uploading = false
	if err != nil {
		c.log.Error("Upload failed", zap.String("filename", file.Name), zap.Error(err))
		c.message = domain.UserMessage(err)
		c.mu.Unlock()
		return nil, err
	}
	c.message = MsgUploaded
	c.mu.Unlock()

	if err := c.Refresh(ctx); err != nil {
		c.log.Warn("Gallery refresh after upload failed", zap.Error(err))
	}

	return res, nil
}

// Analyze sends the current gallery snapshot to the analyzer. It refuses to
// start while another analysis is requesting.
func (c *Controller) Analyze(ctx context.Context) (string, error) {
	c.mu.Lock()
	if c.analysisState == AnalysisRequesting {
		c.mu.Unlock()
		return "", domain.ErrAnalysisInProgress
	}
	if len(c.images) == 0 {
		c.message = domain.UserMessage(domain.ErrNoImagesToAnalyze)
		c.mu.Unlock()
		return "", domain.ErrNoImagesToAnalyze
	}
	urls := append([]string(nil), c.images...)
	c.analysisState = AnalysisRequesting
	c.message = MsgAnalyzing
	c.mu.Unlock()

	analysis, err := c.analyzer.Analyze(ctx, urls)

	c.mu.Lock()
	defer c.mu.Unlock()

	if err != nil {
		c.log.Error("Analysis failed", zap.Int("images", len(urls)), zap.Error(err))
		c.analysisState = AnalysisFailed
		err = wrapAnalysisErr(err)
		c.message = domain.UserMessage(err)
		return "", err
	}

	c.analysis = analysis
	c.analysisState = AnalysisSucceeded
	c.message = MsgAnalyzed
	return analysis, nil
}

func (c *Controller) Snapshot() Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()

	return Snapshot{
		Images:        append([]string(nil), c.images...),
		GalleryStatus: c.galleryStatus,
		Analysis:      c.analysis,
		AnalysisState: c.analysisState,
		Uploading:     c.uploading,
		Message:       c.message,
	}
}

// wrapAnalysisErr leaves classified errors alone and marks anything else as
// a request failure.
func wrapAnalysisErr(err error) error {
	switch {
	case errors.Is(err, domain.ErrAnalysisRequestFailed),
		errors.Is(err, domain.ErrUpstreamRejected),
		errors.Is(err, domain.ErrNoImagesToAnalyze):
		return err
	}
	return errors.Join(domain.ErrAnalysisRequestFailed, err)
}
