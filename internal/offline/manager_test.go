package offline

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"
)

func newTestManager(t *testing.T) *Manager {
	t.Helper()
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create blob store: %v", err)
	}
	return NewManager(store)
}

func TestDownload_SuccessStoresPayload(t *testing.T) {
	payload := []byte("fake video bytes")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(payload)
	}))
	defer srv.Close()

	m := newTestManager(t)

	var lastPct float64
	ok := m.Download(context.Background(), "install-a", "v1", srv.URL, func(pct float64) {
		if pct < lastPct {
			t.Errorf("Progress went backwards: %v after %v", pct, lastPct)
		}
		lastPct = pct
	})

	if !ok {
		t.Fatalf("Expected download to succeed")
	}
	if lastPct != 100 {
		t.Errorf("Expected final progress 100, got %v", lastPct)
	}
	if !m.IsCached("install-a", srv.URL) {
		t.Errorf("Expected payload cached")
	}
	got, ok := m.Get("install-a", srv.URL)
	if !ok || string(got) != string(payload) {
		t.Errorf("Expected cached payload %q, got %q (ok=%v)", payload, got, ok)
	}
	if m.InFlight() != nil {
		t.Errorf("Expected slot released after download")
	}
}

func TestDownload_ServerErrorReturnsFalse(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	m := newTestManager(t)
	if m.Download(context.Background(), "install-a", "v1", srv.URL, nil) {
		t.Errorf("Expected failure on 500 response")
	}
	if m.IsCached("install-a", srv.URL) {
		t.Errorf("Failed download must not cache anything")
	}
}

func TestDownload_UnreachableHostReturnsFalse(t *testing.T) {
	m := newTestManager(t)
	if m.Download(context.Background(), "install-a", "v1", "http://127.0.0.1:1/nope.mp4", nil) {
		t.Errorf("Expected failure for unreachable host")
	}
}

func TestDownload_SecondConcurrentRejected(t *testing.T) {
	release := make(chan struct{})
	started := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		close(started)
		<-release
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	m := newTestManager(t)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		m.Download(context.Background(), "install-a", "v1", srv.URL, nil)
	}()

	select {
	case <-started:
	case <-time.After(2 * time.Second):
		t.Fatalf("First download never started")
	}

	// Slot is occupied: a second download must be rejected, not run,
	// even when it comes from a different install.
	if m.Download(context.Background(), "install-b", "v2", srv.URL+"/other", nil) {
		t.Errorf("Expected second concurrent download to be rejected")
	}
	if inflight := m.InFlight(); inflight == nil || inflight.ID != "v1" {
		t.Errorf("Expected v1 to own the slot, got %+v", inflight)
	}

	close(release)
	wg.Wait()

	if m.InFlight() != nil {
		t.Errorf("Expected slot free after completion")
	}
}

func TestCacheIsScopedPerInstall(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	m := newTestManager(t)

	if !m.Download(context.Background(), "install-a", "v1", srv.URL, nil) {
		t.Fatalf("Download failed")
	}

	// The same URL is not cached for anyone else.
	if m.IsCached("install-b", srv.URL) {
		t.Errorf("Expected install-b to see a cold cache for install-a's blob")
	}
	if _, ok := m.Get("install-b", srv.URL); ok {
		t.Errorf("Expected install-b lookup to miss")
	}

	// One install evicting its copy leaves the other's intact.
	if !m.Download(context.Background(), "install-b", "v1", srv.URL, nil) {
		t.Fatalf("Second install's download failed")
	}
	if err := m.Remove("install-a", srv.URL); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if m.IsCached("install-a", srv.URL) {
		t.Errorf("Expected install-a's blob evicted")
	}
	if !m.IsCached("install-b", srv.URL) {
		t.Errorf("Eviction by install-a must not touch install-b's blob")
	}
}

func TestRemove_Idempotent(t *testing.T) {
	m := newTestManager(t)

	if err := m.Remove("install-a", "http://host/absent.mp4"); err != nil {
		t.Errorf("Removing absent url must be a no-op, got %v", err)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("data"))
	}))
	defer srv.Close()

	if !m.Download(context.Background(), "install-a", "v1", srv.URL, nil) {
		t.Fatalf("Download failed")
	}
	if err := m.Remove("install-a", srv.URL); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if m.IsCached("install-a", srv.URL) {
		t.Errorf("Expected url evicted")
	}
	if err := m.Remove("install-a", srv.URL); err != nil {
		t.Errorf("Second remove must be a no-op, got %v", err)
	}
}

func TestBlobStore_GetAbsent(t *testing.T) {
	store, err := NewBlobStore(t.TempDir())
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	if _, ok := store.Get("install-a", "http://host/never.mp4"); ok {
		t.Errorf("Expected absent lookup to report !ok")
	}
}
