package repository

import (
	"context"
	"io"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	"go.uber.org/zap"

	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/config"
	"github.com/Engineer-Guild-Hackathon/team-9-app/internal/domain"
)

type minioRepository struct {
	client *minio.Client
	cfg    *config.S3Config
	log    *zap.Logger
}

func NewMinioRepository(ctx context.Context, cfg *config.S3Config, log *zap.Logger) (ObjectStorage, error) {
	client, err := minio.New(cfg.EndpointHost(), &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		return nil, err
	}

	repo := &minioRepository{
		client: client,
		cfg:    cfg,
		log:    log,
	}

	if err := repo.ensureBucketExists(ctx); err != nil {
		log.Warn("Failed to ensure bucket exists", zap.Error(err))
	}

	return repo, nil
}

func (r *minioRepository) ensureBucketExists(ctx context.Context) error {
	exists, err := r.client.BucketExists(ctx, r.cfg.BucketName)
	if err != nil {
		return err
	}
	if exists {
		r.log.Info("Bucket already exists", zap.String("bucket", r.cfg.BucketName))
		return nil
	}

	r.log.Info("Creating bucket", zap.String("bucket", r.cfg.BucketName))
	if err := r.client.MakeBucket(ctx, r.cfg.BucketName, minio.MakeBucketOptions{Region: r.cfg.Region}); err != nil {
		return err
	}

	r.log.Info("Bucket created successfully", zap.String("bucket", r.cfg.BucketName))
	return nil
}

func (r *minioRepository) Upload(ctx context.Context, key string, body io.Reader, size int64, contentType string) error {
	info, err := r.client.PutObject(ctx, r.cfg.BucketName, key, body, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		r.log.Error("Failed to upload file to MinIO",
			zap.String("key", key),
			zap.Error(err))
		return err
	}

	r.log.Info("File uploaded to MinIO",
		zap.String("key", key),
		zap.String("etag", info.ETag),
		zap.Int64("size", info.Size))

	return nil
}

func (r *minioRepository) List(ctx context.Context, prefix string, opts domain.ListOptions) ([]domain.ObjectInfo, error) {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var objects []domain.ObjectInfo
	for obj := range r.client.ListObjects(ctx, r.cfg.BucketName, minio.ListObjectsOptions{
		Prefix:    listPrefix(prefix),
		Recursive: true,
	}) {
		if obj.Err != nil {
			r.log.Error("Failed to list files in MinIO",
				zap.String("prefix", prefix),
				zap.Error(obj.Err))
			return nil, obj.Err
		}
		objects = append(objects, domain.ObjectInfo{
			Path:      obj.Key,
			CreatedAt: obj.LastModified,
			Size:      obj.Size,
		})
	}

	return sortAndPage(objects, opts), nil
}

func (r *minioRepository) PublicURL(key string) string {
	return publicURL(r.cfg.PublicBaseURL, key)
}
