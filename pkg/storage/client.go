package storage

import (
	"bytes"
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"
	"time"

	"github.com/arepabuelas/arepabuelas-backend/pkg/config"
	"github.com/arepabuelas/arepabuelas-backend/pkg/logger"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Client wraps the S3-compatible object store that holds uploaded images.
type Client struct {
	api       objectAPI
	bucket    string
	publicURL string
}

// Pinger exposes the health check surface.
type Pinger interface {
	Ping(ctx context.Context) error
}

type objectAPI interface {
	BucketExists(ctx context.Context, bucket string) (bool, error)
	MakeBucket(ctx context.Context, bucket string, opts minio.MakeBucketOptions) error
	PutObject(ctx context.Context, bucket, object string, reader io.Reader, size int64, opts minio.PutObjectOptions) (minio.UploadInfo, error)
	RemoveObject(ctx context.Context, bucket, object string, opts minio.RemoveObjectOptions) error
}

var allowedContentTypes = map[string]string{
	"image/png":  ".png",
	"image/jpeg": ".jpg",
}

// New connects to the object store and ensures the configured bucket exists.
func New(ctx context.Context, cfg config.StorageConfig, logg *logger.Logger) (*Client, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("storage endpoint is required")
	}
	if cfg.Bucket == "" {
		return nil, errors.New("storage bucket is required")
	}

	api, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("connecting to object storage: %w", err)
	}

	client := &Client{
		api:       api,
		bucket:    cfg.Bucket,
		publicURL: publicBase(cfg),
	}

	exists, err := api.BucketExists(ctx, cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("checking bucket: %w", err)
	}
	if !exists {
		if err := api.MakeBucket(ctx, cfg.Bucket, minio.MakeBucketOptions{}); err != nil {
			return nil, fmt.Errorf("creating bucket: %w", err)
		}
		if logg != nil {
			logg.Info(ctx, "storage bucket created")
		}
	}

	return client, nil
}

func publicBase(cfg config.StorageConfig) string {
	if cfg.PublicURL != "" {
		return strings.TrimRight(cfg.PublicURL, "/")
	}
	scheme := "http"
	if cfg.UseSSL {
		scheme = "https"
	}
	return fmt.Sprintf("%s://%s", scheme, cfg.Endpoint)
}

// UploadImage stores the payload under a generated key and returns the public
// URL the catalog/profile records reference.
func (c *Client) UploadImage(ctx context.Context, prefix, contentType string, payload []byte) (string, error) {
	ext, ok := allowedContentTypes[contentType]
	if !ok {
		return "", fmt.Errorf("unsupported image content type %q", contentType)
	}

	key, err := objectKey(prefix, ext)
	if err != nil {
		return "", err
	}

	reader := bytes.NewReader(payload)
	_, err = c.api.PutObject(ctx, c.bucket, key, reader, int64(len(payload)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("uploading object: %w", err)
	}

	return fmt.Sprintf("%s/%s/%s", c.publicURL, c.bucket, key), nil
}

// Remove deletes the object referenced by a previously returned public URL.
// Unknown URLs are ignored so stale references never block a delete.
func (c *Client) Remove(ctx context.Context, publicRef string) error {
	marker := "/" + c.bucket + "/"
	idx := strings.Index(publicRef, marker)
	if idx < 0 {
		return nil
	}
	key := publicRef[idx+len(marker):]
	if key == "" {
		return nil
	}
	return c.api.RemoveObject(ctx, c.bucket, key, minio.RemoveObjectOptions{})
}

// Ping verifies the bucket is reachable.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.api.BucketExists(ctx, c.bucket)
	return err
}

func objectKey(prefix, ext string) (string, error) {
	suffix := make([]byte, 8)
	if _, err := rand.Read(suffix); err != nil {
		return "", fmt.Errorf("generate object key: %w", err)
	}
	name := fmt.Sprintf("%s_%d_%s%s", prefix, time.Now().UnixMilli(), hex.EncodeToString(suffix), ext)
	return path.Clean(name), nil
}
