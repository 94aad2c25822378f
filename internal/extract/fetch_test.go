package extract

import (
	"context"
	"encoding/base64"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/llm"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

type fakeObjects struct {
	bucket, key string
	data        []byte
	err         error
}

func (f *fakeObjects) Get(_ context.Context, bucket, key string, _ int64) ([]byte, string, error) {
	f.bucket, f.key = bucket, key
	return f.data, "image/png", f.err
}

func newFetcher(objects ObjectGetter, maxBytes int64) *ImageFetcher {
	return NewImageFetcher(common.ImageConfig{MaxBytes: maxBytes, FetchTimeout: 2 * time.Second}, objects, logging.Discard())
}

func TestFetchHTTP(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(pngBytes)
	}))
	defer srv.Close()

	img, err := newFetcher(nil, 1024).Fetch(context.Background(), srv.URL+"/license")
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != string(pngBytes) || img.MIMEType != "image/png" {
		t.Fatalf("got %d bytes, mime %q", len(img.Data), img.MIMEType)
	}
}

func TestFetchHTTPExtensionFallback(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("opaque"))
	}))
	defer srv.Close()

	img, err := newFetcher(nil, 1024).Fetch(context.Background(), srv.URL+"/card.webp")
	if err != nil {
		t.Fatal(err)
	}
	if img.MIMEType != "image/webp" {
		t.Fatalf("mime = %q", img.MIMEType)
	}
}

func TestFetchHTTPNon2xx(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "gone", http.StatusNotFound)
	}))
	defer srv.Close()

	_, err := newFetcher(nil, 1024).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrUpstream) {
		t.Fatalf("expected upstream error, got %v", err)
	}
	var se *llm.StatusError
	if !errors.As(err, &se) || se.StatusCode != http.StatusNotFound {
		t.Fatalf("expected wrapped StatusError, got %v", err)
	}
}

func TestFetchHTTPTooLarge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	}))
	defer srv.Close()

	_, err := newFetcher(nil, 16).Fetch(context.Background(), srv.URL)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFetchS3(t *testing.T) {
	objects := &fakeObjects{data: pngBytes}
	img, err := newFetcher(objects, 1024).Fetch(context.Background(), "s3://licenses/2024/id-1.png")
	if err != nil {
		t.Fatal(err)
	}
	if objects.bucket != "licenses" || objects.key != "2024/id-1.png" {
		t.Fatalf("got bucket %q key %q", objects.bucket, objects.key)
	}
	if img.MIMEType != "image/png" {
		t.Fatalf("mime = %q", img.MIMEType)
	}
}

func TestFetchS3NotConfigured(t *testing.T) {
	_, err := newFetcher(nil, 1024).Fetch(context.Background(), "s3://licenses/id-1.png")
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestFetchDataURL(t *testing.T) {
	raw := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes)
	img, err := newFetcher(nil, 1024).Fetch(context.Background(), raw)
	if err != nil {
		t.Fatal(err)
	}
	if string(img.Data) != string(pngBytes) || img.MIMEType != "image/png" {
		t.Fatalf("unexpected %+v", img)
	}

	if _, err := newFetcher(nil, 1024).Fetch(context.Background(), "data:image/png,plain"); !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("non-base64 data URL: got %v", err)
	}
}

func TestFetchRejectsOtherSchemes(t *testing.T) {
	for _, raw := range []string{"ftp://example.com/a.png", "file:///etc/passwd", "not a url", ""} {
		if _, err := newFetcher(nil, 1024).Fetch(context.Background(), raw); !errors.Is(err, common.ErrInvalidInput) {
			t.Errorf("Fetch(%q) = %v, want invalid input", raw, err)
		}
	}
}
