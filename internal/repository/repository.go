package repository

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

// ObjectStorage is the object-store collaborator. Implementations do not
// retry; callers decide what a failure means.
type ObjectStorage interface {
	Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error
	List(ctx context.Context, prefix string, opts domain.ListOptions) ([]domain.ObjectInfo, error)
	PublicURL(key string) string
}

// NewObjectStorage builds the store selected by STORAGE_DRIVER.
func NewObjectStorage(ctx context.Context, cfg *config.Config, log *zap.Logger) (ObjectStorage, error) {
	switch cfg.Storage.Driver {
	case config.StorageDriverS3:
		return NewS3Repository(ctx, &cfg.S3, log)
	case config.StorageDriverMinio:
		return NewMinioRepository(ctx, &cfg.S3, log)
	default:
		return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
	}
}

// publicURL appends an object key to a public base URL. Each key segment is
// path-escaped; it never fails.
func publicURL(base, key string) string {
	segments := strings.Split(strings.TrimLeft(key, "/"), "/")
	for i, s := range segments {
		segments[i] = url.PathEscape(s)
	}
	return strings.TrimRight(base, "/") + "/" + strings.Join(segments, "/")
}

// listPrefix turns "public" into "public/" so a sibling like "public2/" is not
// matched.
func listPrefix(prefix string) string {
	prefix = strings.Trim(prefix, "/")
	if prefix == "" {
		return ""
	}
	return prefix + "/"
}

// sortAndPage orders objects as requested and applies offset and limit.
// Ties on creation time are broken by key so the order is stable.
func sortAndPage(objects []domain.ObjectInfo, opts domain.ListOptions) []domain.ObjectInfo {
	asc := opts.SortBy == domain.SortCreatedAtAsc
	sort.SliceStable(objects, func(i, j int) bool {
		a, b := objects[i], objects[j]
		if !a.CreatedAt.Equal(b.CreatedAt) {
			if asc {
				return a.CreatedAt.Before(b.CreatedAt)
			}
			return a.CreatedAt.After(b.CreatedAt)
		}
		if asc {
			return a.Path < b.Path
		}
		return a.Path > b.Path
	})

	if opts.Offset > 0 {
		if opts.Offset >= len(objects) {
			return []domain.ObjectInfo{}
		}
		objects = objects[opts.Offset:]
	}
	if opts.Limit > 0 && len(objects) > opts.Limit {
		objects = objects[:opts.Limit]
	}
	return objects
}
