// Package storage persists ticket photo uploads in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"github.com/google/uuid"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"

	"github.com/spec-kit/civictrack/internal/config"
)

// PhotoStore saves an uploaded photo and returns its public URL.
type PhotoStore interface {
	Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error)
}

// MinioPhotoStore stores photos in a MinIO/S3 bucket.
type MinioPhotoStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioPhotoStore connects to the object store and ensures the bucket
// exists.
func NewMinioPhotoStore(ctx context.Context, cfg config.StorageConfig) (*MinioPhotoStore, error) {
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connect object store: %w", err)
	}

	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("check bucket: %w", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("create bucket: %w", err)
		}
	}

	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return &MinioPhotoStore{
		client:  client,
		bucket:  cfg.Bucket,
		baseURL: fmt.Sprintf("%s://%s/%s", scheme, cfg.Endpoint, cfg.Bucket),
	}, nil
}

// Save uploads one photo under a random object name, keeping the original
// extension.
func (s *MinioPhotoStore) Save(ctx context.Context, filename string, r io.Reader, size int64, contentType string) (string, error) {
	objectName := uuid.NewString() + path.Ext(filename)
	_, err := s.client.PutObject(ctx, s.bucket, objectName, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("upload photo: %w", err)
	}
	return s.baseURL + "/" + objectName, nil
}
