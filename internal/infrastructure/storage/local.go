package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"easysign/internal/config"
)

// LocalStore keeps blobs on disk under BasePath and serves them under PublicURL
type LocalStore struct {
	basePath  string
	publicURL string
	folders   []string
	remote    *HTTPFetcher
	logger    *zap.Logger
}

func NewLocalStore(cfg *config.Config, remote *HTTPFetcher, logger *zap.Logger) (*LocalStore, error) {
	s := &LocalStore{
		basePath:  cfg.Storage.Local.BasePath,
		publicURL: strings.TrimRight(cfg.Storage.Local.PublicURL, "/"),
		folders:   []string{cfg.Storage.OriginalFolder, cfg.Storage.SignedFolder},
		remote:    remote,
		logger:    logger,
	}

	if err := s.ensureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to create storage directories: %w", err)
	}

	logger.Info("Local storage initialized",
		zap.String("base_path", s.basePath),
		zap.String("public_url", s.publicURL),
	)

	return s, nil
}

func (s *LocalStore) ensureDirectories() error {
	for _, folder := range s.folders {
		dir := filepath.Join(s.basePath, filepath.FromSlash(folder))
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %w", dir, err)
		}
	}
	return nil
}

func (s *LocalStore) Upload(ctx context.Context, folder, name string, data []byte, contentType string) (string, error) {
	key, err := objectKey(folder, name)
	if err != nil {
		return "", err
	}
	filePath := filepath.Join(s.basePath, filepath.FromSlash(key))

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	// O_EXCL keeps stored blobs immutable
	f, err := os.OpenFile(filePath, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0644)
	if err != nil {
		if errors.Is(err, fs.ErrExist) {
			return "", fmt.Errorf("%w: %s", ErrAlreadyExists, key)
		}
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if _, err := f.Write(data); err != nil {
		f.Close()
		os.Remove(filePath)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(filePath)
		return "", fmt.Errorf("failed to close file: %w", err)
	}

	s.logger.Info("File stored",
		zap.String("key", key),
		zap.String("content_type", contentType),
		zap.Int("size_bytes", len(data)),
	)

	return s.publicURL + "/" + key, nil
}

func (s *LocalStore) Fetch(ctx context.Context, url string) ([]byte, error) {
	prefix := s.publicURL + "/"
	if !strings.HasPrefix(url, prefix) {
		return s.remote.Fetch(ctx, url)
	}

	key, err := objectKey("", strings.TrimPrefix(url, prefix))
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(filepath.Join(s.basePath, filepath.FromSlash(key)))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}
