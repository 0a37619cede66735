package storage

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/arahman-dev/blogfolio-api/pkg/config"
)

// objectStoreAPI is the narrow slice of the MinIO client this package needs.
// Tests inject a fake so no object-storage server is required.
type objectStoreAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

type minioWrapper struct{ c *minio.Client }

func (w minioWrapper) BucketExists(ctx context.Context, bucket string) (bool, error) {
	return w.c.BucketExists(ctx, bucket)
}

func (w minioWrapper) MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error {
	return w.c.MakeBucket(ctx, bucket, opts)
}

func (w minioWrapper) PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error) {
	return w.c.PutObject(ctx, bucket, object, reader, size, opts)
}

func (w minioWrapper) RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error {
	return w.c.RemoveObject(ctx, bucket, object, opts)
}

// ImageStore saves uploaded post images into a MinIO bucket and hands back
// publicly reachable URLs.
type ImageStore struct {
	api           objectStoreAPI
	bucket        string
	publicBaseURL string
}

// NewImageStore dials MinIO and ensures the configured bucket exists.
func NewImageStore(ctx context.Context, cfg config.StorageConfig) (*ImageStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("dial minio: %w", err)
	}
	return newImageStore(ctx, minioWrapper{c: client}, cfg.Bucket, cfg.PublicBaseURL)
}

// NewImageStoreWithAPI allows injecting a mockable API (used in tests).
func NewImageStoreWithAPI(ctx context.Context, api objectStoreAPI, bucket, publicBaseURL string) (*ImageStore, error) {
	return newImageStore(ctx, api, bucket, publicBaseURL)
}

func newImageStore(ctx context.Context, api objectStoreAPI, bucket, publicBaseURL string) (*ImageStore, error) {
	s := &ImageStore{
		api:           api,
		bucket:        bucket,
		publicBaseURL: strings.TrimRight(publicBaseURL, "/"),
	}
	if err := s.ensureBucket(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *ImageStore) ensureBucket(ctx context.Context) error {
	exists, err := s.api.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket existence: %w", err)
	}
	if !exists {
		if err := s.api.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
			return fmt.Errorf("create bucket: %w", err)
		}
	}
	return nil
}

// Put streams an object into the bucket and returns its public URL.
func (s *ImageStore) Put(ctx context.Context, object, contentType string, reader io.Reader, size int64) (string, error) {
	_, err := s.api.PutObject(ctx, s.bucket, object, reader, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("put object: %w", err)
	}
	return s.URL(object), nil
}

// Remove deletes an object from the bucket.
func (s *ImageStore) Remove(ctx context.Context, object string) error {
	if err := s.api.RemoveObject(ctx, s.bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("remove object: %w", err)
	}
	return nil
}

// URL returns the public URL for an object in the bucket.
func (s *ImageStore) URL(object string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicBaseURL, s.bucket, object)
}
