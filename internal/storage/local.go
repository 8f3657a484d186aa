// Package storage keeps ticket attachment bytes outside the database.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/natefinch/atomic"
)

// ErrInvalidKey is returned for keys that would escape the store root.
var ErrInvalidKey = errors.New("invalid object key")

// ObjectStore stores uploaded files under opaque keys.
type ObjectStore interface {
	Put(ctx context.Context, key string, r io.Reader) error
	Remove(ctx context.Context, key string) error
	PublicURL(key string) string
}

// LocalStore writes objects below a root directory. Each write goes to a
// temp file that is renamed into place, so readers never see a partial file.
type LocalStore struct {
	root    string
	baseURL string
}

// NewLocalStore creates the root directory if needed.
func NewLocalStore(root, publicBaseURL string) (*LocalStore, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create storage root: %w", err)
	}
	return &LocalStore{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Root returns the directory objects are written under.
func (s *LocalStore) Root() string {
	return s.root
}

func (s *LocalStore) Put(ctx context.Context, key string, r io.Reader) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("create object dir: %w", err)
	}
	if err := atomic.WriteFile(full, r); err != nil {
		return fmt.Errorf("write object %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) Remove(_ context.Context, key string) error {
	full, err := s.resolve(key)
	if err != nil {
		return err
	}
	if err := os.Remove(full); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove object %s: %w", key, err)
	}
	return nil
}

func (s *LocalStore) PublicURL(key string) string {
	return s.baseURL + "/" + strings.TrimLeft(path.Clean("/"+key), "/")
}

func (s *LocalStore) resolve(key string) (string, error) {
	cleaned := path.Clean("/" + key)
	if key == "" || cleaned == "/" || cleaned != "/"+key {
		return "", fmt.Errorf("%w: %q", ErrInvalidKey, key)
	}
	return filepath.Join(s.root, filepath.FromSlash(cleaned)), nil
}

// AttachmentKey builds a unique key for a file uploaded to a ticket:
// "<ticket id>/<unix millis>-<random>.<ext>". The original file name only
// contributes its extension.
func AttachmentKey(ticketID, fileName string, now time.Time) string {
	random := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	key := fmt.Sprintf("%s/%d-%s", ticketID, now.UnixMilli(), random)
	if ext := strings.TrimPrefix(filepath.Ext(fileName), "."); ext != "" && !strings.ContainsAny(ext, `/\`) {
		key += "." + strings.ToLower(ext)
	}
	return key
}
