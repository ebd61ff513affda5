package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// URLPrefix is the route the upload directory is served under.
const URLPrefix = "/uploads"

// FSStore keeps uploaded blobs on local disk and serves them from
// PublicURL + URLPrefix.
type FSStore struct {
	Dir       string
	PublicURL string
}

// NewFSStore takes the site's base URL. A base that already ends in
// URLPrefix is accepted and trimmed so object URLs carry the prefix once.
func NewFSStore(dir, publicURL string) *FSStore {
	base := strings.TrimRight(publicURL, "/")
	base = strings.TrimSuffix(base, URLPrefix)
	return &FSStore{Dir: dir, PublicURL: base}
}

// Put writes data under key and returns the URL it is reachable at.
func (s *FSStore) Put(ctx context.Context, key string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean := filepath.Clean("/" + key)[1:]
	if clean == "" || strings.HasPrefix(clean, "..") {
		return "", fmt.Errorf("invalid object key %q", key)
	}

	path := filepath.Join(s.Dir, clean)
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("failed to create upload dir: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("failed to write object: %w", err)
	}
	return s.PublicURL + URLPrefix + "/" + filepath.ToSlash(clean), nil
}

func (s *FSStore) Delete(ctx context.Context, key string) error {
	clean := filepath.Clean("/" + key)[1:]
	err := os.Remove(filepath.Join(s.Dir, clean))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}
