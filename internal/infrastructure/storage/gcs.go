package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"cloud.google.com/go/storage"
	"go.uber.org/zap"
	"google.golang.org/api/googleapi"

	"easysign/internal/config"
)

// GCSStore keeps blobs in a Google Cloud Storage bucket
type GCSStore struct {
	client    *storage.Client
	bucket    string
	publicURL string
	remote    *HTTPFetcher
	logger    *zap.Logger
}

func NewGCSStore(ctx context.Context, cfg *config.Config, remote *HTTPFetcher, logger *zap.Logger) (*GCSStore, error) {
	if cfg.Storage.GCS.Bucket == "" {
		return nil, errors.New("storage.gcs.bucket is required for the gcs driver")
	}

	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	publicURL := strings.TrimRight(cfg.Storage.GCS.PublicBaseURL, "/")
	if publicURL == "" {
		publicURL = "https://storage.googleapis.com/" + cfg.Storage.GCS.Bucket
	}

	logger.Info("GCS storage initialized",
		zap.String("bucket", cfg.Storage.GCS.Bucket),
		zap.String("public_url", publicURL),
	)

	return &GCSStore{
		client:    client,
		bucket:    cfg.Storage.GCS.Bucket,
		publicURL: publicURL,
		remote:    remote,
		logger:    logger,
	}, nil
}

func (s *GCSStore) Upload(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}

	obj := s.client.Bucket(s.bucket).Object(key).If(storage.Conditions{DoesNotExist: true})
	w := obj.NewWriter(ctx)
	w.ContentType = contentType

	if _, err := w.Write(data); err != nil {
		w.Close()
		return "", fmt.Errorf("failed to write object %s: %w", key, err)
	}
	if err := w.Close(); err != nil {
		var apiErr *googleapi.Error
		if errors.As(err, &apiErr) && apiErr.Code == http.StatusPreconditionFailed {
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, key)
		}
		return "", fmt.Errorf("failed to finalize object %s: %w", key, err)
	}

	s.logger.Info("Object uploaded",
		zap.String("bucket", s.bucket),
		zap.String("key", key),
		zap.Int("size_bytes", len(data)),
	)

	return s.publicURL + "/" + key, nil
}

func (s *GCSStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return s.remote.Fetch(ctx, url)
	}
	key := strings.TrimPrefix(url, prefix)

	r, err := s.client.Bucket(s.bucket).Object(key).NewReader(ctx)
	if err != nil {
		if errors.Is(err, storage.ErrObjectNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to open object %s: %w", key, err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read object %s: %w", key, err)
	}
	return data, nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}
