package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/repository"
	"github.com/Engineer-Guild-Hackathon/team-9-app/pkg/utils"
)

type ImageService interface {
	// UploadImage writes exactly one object. It never refreshes the gallery.
	UploadImage(ctx context.Context, file *domain.File) (*domain.UploadResult, error)
	// ListImages returns public URLs, newest first, bounded by the gallery limit.
	ListImages(ctx context.Context) ([]string, error)
}

type imageService struct {
	repo  repository.ObjectStorage
	cfg   *config.Config
	log   *zap.Logger
	clock *millisClock
}

func NewImageService(repo repository.ObjectStorage, cfg *config.Config, log *zap.Logger) ImageService {
	return &imageService{
		repo:  repo,
		cfg:   cfg,
		log:   log,
		clock: newMillisClock(time.Now),
	}
}

func (s *imageService) UploadImage(ctx context.Context, file *domain.File) (*domain.UploadResult, error) {
	if file == nil || file.Reader == nil {
		return nil, domain.ErrNoFileSelected
	}

	body, size, sniff, err := uploadBody(file)
	if err != nil {
		s.log.Error("Failed to read file",
			zap.String("filename", file.Name),
			zap.Error(err))
		return nil, fmt.Errorf("%w: read file: %v", domain.ErrStorageWriteFailed, err)
	}

	key := s.objectKey(file.Name)
	contentType := utils.DetectContentType(file.Name, sniff)

	ctx, cancel := context.WithTimeout(ctx, s.cfg.App.UploadTimeout)
	defer cancel()

	if err := s.repo.Upload(ctx, key, body, size, contentType); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorageWriteFailed, err)
	}

	result := &domain.UploadResult{
		Path:      key,
		PublicURL: s.repo.PublicURL(key),
	}

	s.log.Info("Image uploaded successfully",
		zap.String("path", key),
		zap.String("filename", file.Name),
		zap.Int64("size", size))

	return result, nil
}

func (s *imageService) ListImages(ctx context.Context) ([]string, error) {
	ctx, cancel := context.WithTimeout(ctx, s.cfg.App.ListTimeout)
	defer cancel()

	objects, err := s.repo.List(ctx, s.cfg.App.UploadPrefix, domain.ListOptions{
		Limit:  s.cfg.App.GalleryLimit,
		Offset: 0,
		SortBy: domain.SortCreatedAtDesc,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrGalleryListFailed, err)
	}

	urls := make([]string, 0, len(objects))
	for _, obj := range objects {
		urls = append(urls, s.repo.PublicURL(obj.Path))
	}

	return urls, nil
}

// objectKey builds "<prefix>/<millis>_<sanitized name>".
func (s *imageService) objectKey(name string) string {
	return fmt.Sprintf("%s/%d_%s", s.cfg.App.UploadPrefix, s.clock.Next(), utils.SanitizeFilename(name))
}

// sniffLen is how much of a file content-type detection looks at.
const sniffLen = 512

// uploadBody reads the head of the file for content-type detection and
// returns a body streaming the whole file. Seekable readers are rewound and
// passed through so the S3 client can still seek them. Only a non-seekable
// reader of unknown size is buffered.
func uploadBody(file *domain.File) (io.Reader, int64, []byte, error) {
	sniff := make([]byte, sniffLen)
	n, err := io.ReadFull(file.Reader, sniff)
	if err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, io.ErrUnexpectedEOF) {
		return nil, 0, nil, err
	}
	sniff = sniff[:n]

	if seeker, ok := file.Reader.(io.Seeker); ok {
		size := file.Size
		if size <= 0 {
			end, err := seeker.Seek(0, io.SeekEnd)
			if err != nil {
				return nil, 0, nil, fmt.Errorf("measure file: %w", err)
			}
			size = end
		}
		if _, err := seeker.Seek(0, io.SeekStart); err != nil {
			return nil, 0, nil, fmt.Errorf("rewind file: %w", err)
		}
		return file.Reader, size, sniff, nil
	}

	if file.Size > 0 {
		return io.MultiReader(bytes.NewReader(sniff), file.Reader), file.Size, sniff, nil
	}

	rest, err := io.ReadAll(file.Reader)
	if err != nil {
		return nil, 0, nil, err
	}
	data := append(sniff, rest...)
	return bytes.NewReader(data), int64(len(data)), sniff, nil
}

// millisClock hands out strictly increasing epoch milliseconds, so two
// uploads in the same process never share a timestamp.
type millisClock struct {
	mu   sync.Mutex
	last int64
	now  func() time.Time
}

func newMillisClock(now func() time.Time) *millisClock {
	return &millisClock{now: now}
}

func (c *millisClock) Next() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()

	ms := c.now().UnixMilli()
	if ms <= c.last {
		ms = c.last + 1
	}
	c.last = ms
	return ms
}
