package media

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/getcoveredlife/studio/model"
)

func newTestUploader(t *testing.T) *DiskUploader {
	t.Helper()
	u, err := NewDiskUploader(t.TempDir(), "/media/", 1)
	if err != nil {
		t.Fatalf("NewDiskUploader: %v", err)
	}
	return u
}

func TestUpload_storesFileAndReturnsURL(t *testing.T) {
	u := newTestUploader(t)
	content := []byte("fake png bytes")

	asset, err := u.Upload("image/png", int64(len(content)), bytes.NewReader(content))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if asset.ID == "" {
		t.Fatal("expected a generated asset id")
	}
	if !strings.HasPrefix(asset.URL, "/media/") || !strings.HasSuffix(asset.URL, ".png") {
		t.Fatalf("unexpected URL %q", asset.URL)
	}
	if asset.Size != int64(len(content)) {
		t.Fatalf("size = %d, want %d", asset.Size, len(content))
	}

	stored, err := os.ReadFile(filepath.Join(u.Dir(), asset.ID+".png"))
	if err != nil {
		t.Fatalf("read stored file: %v", err)
	}
	if !bytes.Equal(stored, content) {
		t.Fatal("stored content does not match upload")
	}
}

func TestUpload_generatesDistinctNames(t *testing.T) {
	u := newTestUploader(t)

	first, err := u.Upload("image/jpeg", 1, strings.NewReader("a"))
	if err != nil {
		t.Fatalf("first upload: %v", err)
	}
	second, err := u.Upload("image/jpeg", 1, strings.NewReader("b"))
	if err != nil {
		t.Fatalf("second upload: %v", err)
	}
	if first.URL == second.URL {
		t.Fatalf("uploads collided on %q", first.URL)
	}
}

func TestUpload_rejectsUnsupportedType(t *testing.T) {
	u := newTestUploader(t)

	_, err := u.Upload("application/x-msdownload", 4, strings.NewReader("MZ.."))
	env, ok := err.(*model.ErrorEnvelope)
	if !ok {
		t.Fatalf("expected ErrorEnvelope, got %v", err)
	}
	if env.Code != model.ErrBadRequest {
		t.Fatalf("code = %s, want %s", env.Code, model.ErrBadRequest)
	}
}

func TestUpload_parsesContentTypeParameters(t *testing.T) {
	u := newTestUploader(t)

	asset, err := u.Upload("image/svg+xml; charset=utf-8", 5, strings.NewReader("<svg>"))
	if err != nil {
		t.Fatalf("Upload: %v", err)
	}
	if !strings.HasSuffix(asset.URL, ".svg") {
		t.Fatalf("unexpected URL %q", asset.URL)
	}
}

func TestUpload_rejectsDeclaredOversize(t *testing.T) {
	u := newTestUploader(t)

	_, err := u.Upload("image/png", 2<<20, strings.NewReader("x"))
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", err)
	}
}

func TestUpload_rejectsActualOversizeAndCleansUp(t *testing.T) {
	u := newTestUploader(t)
	oversized := bytes.Repeat([]byte("x"), (1<<20)+1)

	// Declared size lies; the copy still enforces the limit.
	_, err := u.Upload("image/png", 10, bytes.NewReader(oversized))
	env, ok := err.(*model.ErrorEnvelope)
	if !ok || env.Code != model.ErrBadRequest {
		t.Fatalf("expected BAD_REQUEST, got %v", err)
	}

	entries, err := os.ReadDir(u.Dir())
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected rejected upload to be removed, found %d files", len(entries))
	}
}
