package objectstore

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"subweave/internal/config"
	"subweave/internal/fileutil"
	"subweave/internal/services"
)

// Store publishes local files for an offline recognition backend.
type Store interface {
	Put(ctx context.Context, localPath string) (key string, err error)
	URL(key string) (string, error)
	Delete(ctx context.Context, key string) error
}

const defaultSignedTTL = time.Hour

// DirStore copies files into a directory served by an external web server
// and builds URLs under the configured base. With a signing secret set the
// URLs carry an expiry and an HMAC-SHA256 signature.
type DirStore struct {
	dir     string
	baseURL string
	secret  string
	ttl     time.Duration
	now     func() time.Time
}

// NewDirStore validates the object-store config and returns a store.
func NewDirStore(cfg config.ObjectStore) (*DirStore, error) {
	if cfg.Dir == "" {
		return nil, services.Wrap(services.ErrConfiguration, "asr_prepare", "object store", "object_store.dir is required", nil)
	}
	if cfg.BaseURL == "" {
		return nil, services.Wrap(services.ErrConfiguration, "asr_prepare", "object store", "object_store.base_url is required", nil)
	}
	ttl := time.Duration(cfg.SignedTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = defaultSignedTTL
	}
	return &DirStore{
		dir:     cfg.Dir,
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		secret:  cfg.SigningSecret,
		ttl:     ttl,
		now:     time.Now,
	}, nil
}

// Put copies the file into the store under a fresh key.
func (s *DirStore) Put(_ context.Context, localPath string) (string, error) {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("ensure store dir: %w", err)
	}
	key := uuid.NewString() + filepath.Ext(localPath)
	if err := fileutil.CopyFileVerified(localPath, filepath.Join(s.dir, key)); err != nil {
		return "", fmt.Errorf("copy into store: %w", err)
	}
	return key, nil
}

// URL builds the fetch URL for a stored key. A configured signing secret
// yields an expiring signed URL, otherwise the public base is used as-is.
func (s *DirStore) URL(key string) (string, error) {
	if key == "" || strings.Contains(key, "/") {
		return "", fmt.Errorf("invalid object key %q", key)
	}
	plain := s.baseURL + "/" + key
	if s.secret == "" {
		return plain, nil
	}
	expires := s.now().Add(s.ttl).Unix()
	values := url.Values{}
	values.Set("expires", strconv.FormatInt(expires, 10))
	values.Set("signature", s.sign(key, expires))
	return plain + "?" + values.Encode(), nil
}

// Delete removes a stored object. Missing objects are not an error.
func (s *DirStore) Delete(_ context.Context, key string) error {
	if key == "" || strings.Contains(key, "/") {
		return fmt.Errorf("invalid object key %q", key)
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// Publish copies the file into the store and returns its fetch URL. This is
// the uploader seam the recognition engine consumes.
func (s *DirStore) Publish(ctx context.Context, localPath string) (string, error) {
	key, err := s.Put(ctx, localPath)
	if err != nil {
		return "", err
	}
	return s.URL(key)
}

// Verify reports whether a signature matches the key and expiry and the
// expiry has not passed. The serving side uses it to validate requests.
func (s *DirStore) Verify(key string, expires int64, signature string) bool {
	if s.secret == "" {
		return true
	}
	if s.now().Unix() > expires {
		return false
	}
	return hmac.Equal([]byte(signature), []byte(s.sign(key, expires)))
}

// Sweep removes stored objects older than maxAge. The store holds only
// transient per-job audio, so anything stale is an orphan from a crashed run.
func (s *DirStore) Sweep(maxAge time.Duration) error {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return err
	}
	cutoff := s.now().Add(-maxAge)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().Before(cutoff) {
			os.Remove(filepath.Join(s.dir, entry.Name()))
		}
	}
	return nil
}

func (s *DirStore) sign(key string, expires int64) string {
	mac := hmac.New(sha256.New, []byte(s.secret))
	fmt.Fprintf(mac, "%s\n%d", key, expires)
	return hex.EncodeToString(mac.Sum(nil))
}
