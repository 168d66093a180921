// Package offline caches individual video payloads on disk so playback
// works with no network. One download may run at a time system-wide;
// the ledger's downloadedIds linkage belongs to the caller.
package offline

import (
	"context"
	"io"
	"log"
	"net/http"
	"sync"
	"time"

	"hadiqa-backend/internal/models"
)

type Manager struct {
	store  *BlobStore
	client *http.Client

	mu     sync.Mutex
	active *models.DownloadProgress
}

func NewManager(store *BlobStore) *Manager {
	return &Manager{
		store:  store,
		client: &http.Client{Timeout: 10 * time.Minute},
	}
}

// InFlight returns a copy of the current download slot, or nil.
func (m *Manager) InFlight() *models.DownloadProgress {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active == nil {
		return nil
	}
	cp := *m.active
	return &cp
}

func (m *Manager) begin(videoID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.active != nil {
		return false
	}
	m.active = &models.DownloadProgress{ID: videoID, Progress: 0}
	return true
}

func (m *Manager) end() {
	m.mu.Lock()
	m.active = nil
	m.mu.Unlock()
}

func (m *Manager) setProgress(pct float64) {
	m.mu.Lock()
	if m.active != nil && pct > m.active.Progress {
		m.active.Progress = pct
	}
	m.mu.Unlock()
}

// Download fetches the full resource, reporting monotonic progress in
// [0,100], and stores the payload on success under the requesting
// install's key. It returns false on any network or storage error and
// when the global slot is already taken; it never panics and never
// partially caches.
func (m *Manager) Download(ctx context.Context, installID, videoID, url string, onProgress func(pct float64)) bool {
	if !m.begin(videoID) {
		log.Printf("offline: download of %s rejected, slot busy", videoID)
		return false
	}
	defer m.end()

	report := func(pct float64) {
		m.setProgress(pct)
		if onProgress != nil {
			onProgress(pct)
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		log.Printf("offline: bad download url for %s: %v", videoID, err)
		return false
	}

	resp, err := m.client.Do(req)
	if err != nil {
		log.Printf("offline: download of %s failed: %v", videoID, err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		log.Printf("offline: download of %s got status %d", videoID, resp.StatusCode)
		return false
	}

	report(0)
	total := resp.ContentLength
	buf := make([]byte, 64*1024)
	var payload []byte
	var read int64
	for {
		n, err := resp.Body.Read(buf)
		if n > 0 {
			payload = append(payload, buf[:n]...)
			read += int64(n)
			if total > 0 {
				pct := float64(read) / float64(total) * 100
				if pct > 100 {
					pct = 100
				}
				report(pct)
			}
		}
		if err == io.EOF {
			break
		}
		if err != nil {
			log.Printf("offline: download of %s interrupted: %v", videoID, err)
			return false
		}
	}

	if err := m.store.Put(installID, url, payload); err != nil {
		log.Printf("offline: failed to store %s: %v", videoID, err)
		return false
	}
	report(100)
	return true
}

// Remove evicts the cached payload; idempotent if absent.
func (m *Manager) Remove(installID, url string) error {
	return m.store.Remove(installID, url)
}

func (m *Manager) IsCached(installID, url string) bool {
	return m.store.IsCached(installID, url)
}

func (m *Manager) Get(installID, url string) ([]byte, bool) {
	return m.store.Get(installID, url)
}
