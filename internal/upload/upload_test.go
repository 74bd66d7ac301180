package upload

import (
	"bytes"
	"mime/multipart"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/harusame/merchandise-manager/internal/clock"
)

var uploadNow = time.Date(2026, 3, 18, 9, 30, 45, 0, time.Local)

func newUploadRequest(t *testing.T, field, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("create form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func TestFromRequestStoresAllowedImage(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, clock.NewMockClock(uploadNow))
	body, ct := newUploadRequest(t, "photo", "camera.JPG", "fake-image-bytes")
	req := httptest.NewRequest("POST", "/add", body)
	req.Header.Set("Content-Type", ct)

	path, err := store.FromRequest(req, "photo")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	want := filepath.Join(dir, "20260318_093045_camera.JPG")
	if path != want {
		t.Fatalf("expected %s got %s", want, path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read back: %v", err)
	}
	if string(data) != "fake-image-bytes" {
		t.Fatalf("content mismatch: %q", data)
	}
}

func TestFromRequestSkipsDisallowedExtension(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, clock.NewMockClock(uploadNow))
	body, ct := newUploadRequest(t, "photo", "malware.exe", "nope")
	req := httptest.NewRequest("POST", "/add", body)
	req.Header.Set("Content-Type", ct)

	path, err := store.FromRequest(req, "photo")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if path != "" {
		t.Fatalf("disallowed extension must be skipped, got %s", path)
	}
	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Fatalf("nothing should be written, found %d entries", len(entries))
	}
}

func TestFromRequestNoFile(t *testing.T) {
	store := NewStore(t.TempDir(), clock.NewMockClock(uploadNow))
	body, ct := newUploadRequest(t, "other_field", "x.png", "data")
	req := httptest.NewRequest("POST", "/add", body)
	req.Header.Set("Content-Type", ct)

	path, err := store.FromRequest(req, "photo")
	if err != nil || path != "" {
		t.Fatalf("missing field should be a silent no-op, got path=%q err=%v", path, err)
	}
}

func TestSanitizeStripsPathComponents(t *testing.T) {
	dir := t.TempDir()
	store := NewStore(dir, clock.NewMockClock(uploadNow))
	body, ct := newUploadRequest(t, "photo", "../../etc/passwd.png", "data")
	req := httptest.NewRequest("POST", "/add", body)
	req.Header.Set("Content-Type", ct)

	path, err := store.FromRequest(req, "photo")
	if err != nil {
		t.Fatalf("store: %v", err)
	}
	if path == "" {
		t.Fatalf("png upload should be stored")
	}
	if !strings.HasPrefix(path, dir) || strings.Contains(filepath.Base(path), "..") {
		t.Fatalf("path traversal not neutralized: %s", path)
	}
}

func TestAllowed(t *testing.T) {
	for _, name := range []string{"a.png", "b.jpg", "c.JPEG", "d.gif", "e.webp"} {
		if !Allowed(name) {
			t.Fatalf("%s should be allowed", name)
		}
	}
	for _, name := range []string{"a.bmp", "b.svg", "noext", "c.png.exe"} {
		if Allowed(name) {
			t.Fatalf("%s should be rejected", name)
		}
	}
}
