package objectstore

import (
	"context"
	"net/url"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"subweave/internal/config"
)

func newTestStore(t *testing.T, secret string) *DirStore {
	t.Helper()
	store, err := NewDirStore(config.ObjectStore{
		Dir:              t.TempDir(),
		BaseURL:          "https://media.example/store/",
		SigningSecret:    secret,
		SignedTTLSeconds: 600,
	})
	if err != nil {
		t.Fatalf("NewDirStore: %v", err)
	}
	return store
}

func TestPutCopiesAndURLIsPublic(t *testing.T) {
	store := newTestStore(t, "")

	src := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(src, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
	key, err := store.Put(context.Background(), src)
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if !strings.HasSuffix(key, ".wav") {
		t.Errorf("key %q should keep the extension", key)
	}
	data, err := os.ReadFile(filepath.Join(store.dir, key))
	if err != nil || string(data) != "pcm" {
		t.Fatalf("stored object wrong: %q, %v", data, err)
	}

	got, err := store.URL(key)
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	if got != "https://media.example/store/"+key {
		t.Errorf("URL = %q", got)
	}
}

func TestSignedURLVerifies(t *testing.T) {
	store := newTestStore(t, "sekrit")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return base }

	signed, err := store.URL("abc.wav")
	if err != nil {
		t.Fatalf("URL: %v", err)
	}
	parsed, err := url.Parse(signed)
	if err != nil {
		t.Fatal(err)
	}
	expires, err := strconv.ParseInt(parsed.Query().Get("expires"), 10, 64)
	if err != nil {
		t.Fatalf("expires missing: %v", err)
	}
	if want := base.Add(600 * time.Second).Unix(); expires != want {
		t.Errorf("expires = %d, want %d", expires, want)
	}
	sig := parsed.Query().Get("signature")
	if !store.Verify("abc.wav", expires, sig) {
		t.Error("signature must verify before expiry")
	}
	if store.Verify("other.wav", expires, sig) {
		t.Error("signature must bind to the key")
	}

	store.now = func() time.Time { return base.Add(time.Hour) }
	if store.Verify("abc.wav", expires, sig) {
		t.Error("signature must expire")
	}
}

func TestDeleteIgnoresMissing(t *testing.T) {
	store := newTestStore(t, "")
	if err := store.Delete(context.Background(), "gone.wav"); err != nil {
		t.Errorf("Delete missing: %v", err)
	}
	if err := store.Delete(context.Background(), "../escape"); err == nil {
		t.Error("Delete must reject path traversal keys")
	}
}

func TestPublishReturnsFetchableURL(t *testing.T) {
	store := newTestStore(t, "")
	src := filepath.Join(t.TempDir(), "audio.wav")
	if err := os.WriteFile(src, []byte("pcm"), 0o644); err != nil {
		t.Fatal(err)
	}
	got, err := store.Publish(context.Background(), src)
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if !strings.HasPrefix(got, "https://media.example/store/") {
		t.Errorf("Publish URL = %q", got)
	}
}

func TestSweepRemovesStaleObjects(t *testing.T) {
	store := newTestStore(t, "")
	stale := filepath.Join(store.dir, "old.wav")
	if err := os.WriteFile(stale, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	old := time.Now().Add(-48 * time.Hour)
	if err := os.Chtimes(stale, old, old); err != nil {
		t.Fatal(err)
	}
	fresh := filepath.Join(store.dir, "new.wav")
	if err := os.WriteFile(fresh, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}

	if err := store.Sweep(24 * time.Hour); err != nil {
		t.Fatalf("Sweep: %v", err)
	}
	if _, err := os.Stat(stale); !os.IsNotExist(err) {
		t.Error("stale object survived sweep")
	}
	if _, err := os.Stat(fresh); err != nil {
		t.Error("fresh object removed by sweep")
	}
}
