package storage

import (
	"context"
	"time"
)

// Store is the narrow object-storage interface the rest of the app consumes.
// The core never retries: failures surface as ErrNotConfigured or *UpstreamError.
type Store interface {
	Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) (string, error)
	PublicURL(path string) (string, error)
	SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error)
	Delete(ctx context.Context, paths []string) error
}

// Service wraps a Store with an optional public-bucket URL override for
// deployments serving objects from a CDN path.
type Service struct {
	Store           Store
	PublicBucketURL string
}

// Upload stores the file and returns (stored path, public URL).
func (s *Service) Upload(ctx context.Context, path string, data []byte, contentType string, upsert bool) (string, string, error) {
	stored, err := s.Store.Upload(ctx, path, data, contentType, upsert)
	if err != nil {
		return "", "", err
	}
	publicURL, err := s.PublicURLFor(stored)
	if err != nil {
		return stored, "", err
	}
	return stored, publicURL, nil
}

// PublicURLFor resolves the public URL, preferring the configured bucket URL.
func (s *Service) PublicURLFor(path string) (string, error) {
	if s.PublicBucketURL != "" {
		base := s.PublicBucketURL
		for len(base) > 0 && base[len(base)-1] == '/' {
			base = base[:len(base)-1]
		}
		for len(path) > 0 && path[0] == '/' {
			path = path[1:]
		}
		return base + "/" + path, nil
	}
	return s.Store.PublicURL(path)
}

// SignedURL creates a temporary signed URL.
func (s *Service) SignedURL(ctx context.Context, path string, expiresIn time.Duration) (string, error) {
	return s.Store.SignedURL(ctx, path, expiresIn)
}

// Delete removes a single object.
func (s *Service) Delete(ctx context.Context, path string) error {
	return s.Store.Delete(ctx, []string{path})
}
