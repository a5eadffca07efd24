package service

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	appconfig "github.com/jmylchreest/refyne-catalog/internal/config"
)

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeS3 records object uploads.
type fakeS3 struct {
	mu      sync.Mutex
	puts    []string
	types   []string
	objects map[string]string
}

func newFakeS3(t *testing.T) (*fakeS3, *httptest.Server) {
	t.Helper()
	f := &fakeS3{objects: map[string]string{}}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		f.mu.Lock()
		defer f.mu.Unlock()
		switch r.Method {
		case http.MethodPut:
			body, _ := io.ReadAll(r.Body)
			f.puts = append(f.puts, r.URL.Path)
			f.types = append(f.types, r.Header.Get("Content-Type"))
			f.objects[r.URL.Path] = string(body)
			w.WriteHeader(http.StatusOK)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	}))
	t.Cleanup(srv.Close)
	return f, srv
}

func enabledStorage(t *testing.T, endpoint string) *StorageService {
	t.Helper()
	svc, err := NewStorageService(&appconfig.Config{
		StorageEnabled:   true,
		StorageEndpoint:  endpoint,
		StorageAccessKey: "test-key",
		StorageSecretKey: "test-secret",
		StorageBucket:    "catalog-bucket",
		StorageRegion:    "auto",
	}, quietLogger())
	if err != nil {
		t.Fatalf("NewStorageService() error = %v", err)
	}
	return svc
}

// ========================================
// StorageService Tests
// ========================================

// ----------------------------------------
// Constructor Tests
// ----------------------------------------

func TestNewStorageService_Disabled(t *testing.T) {
	svc, err := NewStorageService(&appconfig.Config{StorageEnabled: false}, quietLogger())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if svc == nil {
		t.Fatal("expected service, got nil")
	}
	if svc.IsEnabled() {
		t.Error("expected storage to be disabled")
	}
	if svc.client != nil {
		t.Error("expected client to be nil when disabled")
	}
	if svc.bucket != "" {
		t.Error("expected bucket to be empty when disabled")
	}
}

func TestNewStorageService_Enabled(t *testing.T) {
	svc := enabledStorage(t, "https://fly.storage.tigris.dev")
	if !svc.IsEnabled() || svc.client == nil {
		t.Fatal("expected enabled storage with a client")
	}
	if svc.bucket != "catalog-bucket" {
		t.Errorf("bucket = %q", svc.bucket)
	}
}

// ----------------------------------------
// Disabled Storage Behavior Tests
// ----------------------------------------

func TestStorageService_Disabled(t *testing.T) {
	svc, _ := NewStorageService(&appconfig.Config{}, quietLogger())
	ctx := context.Background()

	key, err := svc.StoreOutput(ctx, "run", "products_shopify", []byte("x"))
	if err != nil || key != "" {
		t.Errorf("StoreOutput() = %q, %v, want silent no-op", key, err)
	}
	if _, err := svc.OutputPresignedURL(ctx, "catalog/run/x.csv", 0); !errors.Is(err, ErrStorageDisabled) {
		t.Errorf("OutputPresignedURL() error = %v, want ErrStorageDisabled", err)
	}
}

// ----------------------------------------
// Enabled Storage Behavior Tests
// ----------------------------------------

func TestStorageService_StoreOutput(t *testing.T) {
	fake, srv := newFakeS3(t)
	svc := enabledStorage(t, srv.URL)
	ctx := context.Background()

	key, err := svc.StoreOutput(ctx, "01HZXRUNID", "products_shopify", []byte("Handle,Title\n"))
	if err != nil {
		t.Fatalf("StoreOutput() error = %v", err)
	}
	if key != "catalog/01HZXRUNID/products_shopify.csv" {
		t.Errorf("key = %q", key)
	}
	fake.mu.Lock()
	defer fake.mu.Unlock()
	if len(fake.puts) != 1 || fake.puts[0] != "/catalog-bucket/"+key {
		t.Errorf("PUT paths = %v, want path-style bucket/key", fake.puts)
	}
	if !strings.HasPrefix(fake.types[0], "text/csv") {
		t.Errorf("Content-Type = %q, want text/csv", fake.types[0])
	}

	url, err := svc.OutputPresignedURL(ctx, key, 0)
	if err != nil {
		t.Fatalf("OutputPresignedURL() error = %v", err)
	}
	if !strings.HasPrefix(url, srv.URL+"/catalog-bucket/"+key) || !strings.Contains(url, "X-Amz-Signature=") {
		t.Errorf("presigned URL = %q", url)
	}
}

func TestArchiveKey(t *testing.T) {
	if got := ArchiveKey("RUN", "stock_shopify"); got != "catalog/RUN/stock_shopify.csv" {
		t.Errorf("ArchiveKey() = %q", got)
	}
}
