package storage

import (
	"SwipeVault/config"
	"context"
	"fmt"
	"io"
	"log"
	"net/url"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// R2Store implements Store against Cloudflare R2 through the S3 API.
type R2Store struct {
	client *minio.Client
	bucket string
}

// NewR2Store builds a Store from a MinIO client and bucket.
func NewR2Store(client *minio.Client, bucket string) *R2Store {
	return &R2Store{client: client, bucket: bucket}
}

// PutObject uploads an object.
func (s *R2Store) PutObject(ctx context.Context, key string, reader io.Reader, size int64, opts PutOptions) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{
		ContentType: opts.ContentType,
	})
	return err
}

// GetObject fetches an object and its metadata.
func (s *R2Store) GetObject(ctx context.Context, key string) (io.ReadCloser, ObjectInfo, error) {
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, ObjectInfo{}, err
	}
	stat, err := obj.Stat()
	if err != nil {
		_ = obj.Close()
		return nil, ObjectInfo{}, err
	}
	info := ObjectInfo{
		Key:         key,
		Size:        stat.Size,
		ContentType: stat.ContentType,
	}
	return obj, info, nil
}

// RemoveObject deletes an object. S3-style deletes of absent keys succeed,
// which keeps the call idempotent for repeated reaps.
func (s *R2Store) RemoveObject(ctx context.Context, key string) error {
	return s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
}

// PresignedGet returns a time-bounded read URL for a private object.
func (s *R2Store) PresignedGet(ctx context.Context, key string, expiry time.Duration) (string, error) {
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, nil)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// PresignedGetWithFilename returns a presigned URL that forces a download
// filename and content type on the response.
func (s *R2Store) PresignedGetWithFilename(
	ctx context.Context,
	key string,
	expiry time.Duration,
	filename string,
	contentType string,
) (string, error) {
	values := url.Values{}
	if contentType != "" {
		values.Set("response-content-type", contentType)
	}
	if filename != "" {
		values.Set("response-content-disposition", fmt.Sprintf("attachment; filename=\"%s\"", filename))
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, expiry, values)
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

// InitR2 initializes the process-wide R2 client and bucket. Missing
// configuration is fatal here rather than silently degrading later.
func InitR2() {
	cfg := config.R2()
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		Secure: cfg.UseSSL,
		Region: cfg.Region,
	})
	if err != nil {
		log.Fatalln("r2 client error:", err)
	}
	ctx := context.Background()
	exists, err := client.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		log.Fatalln("check bucket fail:", err)
	}
	if !exists {
		if err := client.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{Region: cfg.Region}); err != nil {
			log.Fatalln("create bucket fail:", err)
		}
	}
	Default = NewR2Store(client, cfg.Bucket)
}
