package services

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"log"

	"hadiqa-backend/internal/feed"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/repository"
)

// MediaHostClient pulls the published resource list from the media
// host's JSON endpoint. The endpoint is optional: installs that serve
// the catalog purely from the database run without one.
type MediaHostClient struct {
	baseURL string
	http    *http.Client
}

func NewMediaHostClient(baseURL string) *MediaHostClient {
	return &MediaHostClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 20 * time.Second},
	}
}

func (c *MediaHostClient) Configured() bool {
	return c != nil && c.baseURL != ""
}

// FetchCatalog downloads the full published video list.
func (c *MediaHostClient) FetchCatalog(ctx context.Context) ([]models.Video, error) {
	if !c.Configured() {
		return nil, fmt.Errorf("media host not configured")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/videos.json", nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch catalog: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("media host returned status %d", resp.StatusCode)
	}

	var videos []models.Video
	if err := json.NewDecoder(resp.Body).Decode(&videos); err != nil {
		return nil, fmt.Errorf("failed to decode catalog: %w", err)
	}
	return videos, nil
}

// CatalogService owns the in-memory catalog snapshot the feed is
// composed from. The snapshot is replaced atomically on refresh; a
// failed refresh keeps the previous snapshot so the feed never goes
// empty because an upstream blinked.
type CatalogService struct {
	repo   *repository.VideoRepo
	host   *MediaHostClient
	gemini *GeminiService

	mu       sync.RWMutex
	snapshot []models.Video
}

func NewCatalogService(repo *repository.VideoRepo, host *MediaHostClient, gemini *GeminiService) *CatalogService {
	return &CatalogService{
		repo:   repo,
		host:   host,
		gemini: gemini,
	}
}

// Refresh rebuilds the snapshot: pull the remote list when a media host
// is configured (mirroring it into the database), otherwise read the
// database, then apply the recommended ordering on top.
func (s *CatalogService) Refresh(ctx context.Context) error {
	videos, err := s.load(ctx)
	if err != nil {
		log.Printf("Catalog refresh failed, keeping previous snapshot: %v", err)
		return err
	}

	order := s.gemini.RecommendOrder(ctx, videos, models.EmptyInteractions())
	videos = feed.MergeOrder(videos, order)

	s.mu.Lock()
	s.snapshot = videos
	s.mu.Unlock()
	return nil
}

func (s *CatalogService) load(ctx context.Context) ([]models.Video, error) {
	if s.host.Configured() {
		remote, err := s.host.FetchCatalog(ctx)
		if err != nil {
			return nil, err
		}
		if err := s.sync(ctx, remote); err != nil {
			log.Printf("Catalog mirror to database failed: %v", err)
		}
		return remote, nil
	}
	return s.repo.List(ctx, "")
}

// sync mirrors the remote list into the database so the catalog
// survives media host outages.
func (s *CatalogService) sync(ctx context.Context, remote []models.Video) error {
	for _, v := range remote {
		if err := s.repo.Upsert(ctx, &v); err != nil {
			return err
		}
	}
	return nil
}

// Snapshot returns the current catalog in recommended order. The
// returned slice is shared; callers must not mutate it.
func (s *CatalogService) Snapshot() []models.Video {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshot
}

// VideoByAnyID resolves a video by either its id or its public id.
func (s *CatalogService) VideoByAnyID(id string) (models.Video, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, v := range s.snapshot {
		if v.ID == id || v.PublicID == id {
			return v, true
		}
	}
	return models.Video{}, false
}

// PersonalOrder returns the catalog reordered for one install's taste.
// Advisory only: the shared snapshot is untouched.
func (s *CatalogService) PersonalOrder(ctx context.Context, inter models.UserInteractions) []models.Video {
	snapshot := s.Snapshot()
	order := s.gemini.RecommendOrder(ctx, snapshot, inter)
	return feed.MergeOrder(snapshot, order)
}
