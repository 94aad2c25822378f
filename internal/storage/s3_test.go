package storage

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/joseph-ayodele/personal-info-parser/internal/common"
	"github.com/joseph-ayodele/personal-info-parser/internal/logging"
)

func newTestStore(t *testing.T, h http.HandlerFunc) *S3Store {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	store, err := NewS3Store(context.Background(), common.StorageConfig{
		S3Region:    "us-east-1",
		S3Endpoint:  srv.URL,
		S3AccessKey: "AKIATEST",
		S3SecretKey: "secret",
	}, logging.Discard())
	if err != nil {
		t.Fatal(err)
	}
	return store
}

func TestS3StoreGet(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet || r.URL.Path != "/licenses/id-1.png" {
			t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
		}
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write([]byte("pngbytes"))
	})

	data, ct, err := store.Get(context.Background(), "licenses", "id-1.png", 1024)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != "pngbytes" || ct != "image/png" {
		t.Fatalf("got %q %q", data, ct)
	}
}

func TestS3StoreGetTooLarge(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write(make([]byte, 64))
	})
	_, _, err := store.Get(context.Background(), "b", "k", 16)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input, got %v", err)
	}
}

func TestS3StoreGetMissingKey(t *testing.T) {
	store := newTestStore(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/xml")
		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`<?xml version="1.0" encoding="UTF-8"?><Error><Code>NoSuchKey</Code><Message>The specified key does not exist.</Message></Error>`))
	})
	_, _, err := store.Get(context.Background(), "b", "missing.png", 16)
	if !errors.Is(err, common.ErrInvalidInput) {
		t.Fatalf("expected invalid input for missing key, got %v", err)
	}
}
