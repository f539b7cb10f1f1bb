package storage

import (
	"context"
	"errors"
	"path"
	"strings"
)

var (
	ErrNotFound      = errors.New("storage: object not found")
	ErrAlreadyExists = errors.New("storage: object already exists")
)

// Store persists immutable blobs and resolves them back from their public URL.
// Upload never overwrites an existing key.
type Store interface {
	Upload(ctx context.Context, folder, name string, data []byte, contentType string) (string, error)
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// objectKey joins folder and name into a slash separated key
func objectKey(folder, name string) (string, error) {
	key := path.Clean(path.Join(folder, name))
	if key == "." || strings.HasPrefix(key, "../") || key == ".." || strings.HasPrefix(key, "/") {
		return "", errors.New("storage: invalid object key " + folder + "/" + name)
	}
	return key, nil
}
