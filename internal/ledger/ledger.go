// Package ledger owns the persisted record of a single installation's
// interactions: likes, dislikes, saves, saved categories, watch
// progress and downloads. Every mutation rewrites the whole blob.
package ledger

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"hadiqa-backend/internal/models"
)

const keyPrefix = "interactions:v1:"

type Service struct {
	store Store
	mu    sync.Mutex
}

func NewService(store Store) *Service {
	return &Service{store: store}
}

// Load reads the installation's ledger. A missing key or a corrupt
// blob yields the zero ledger; load never fails the caller.
func (s *Service) Load(ctx context.Context, installID string) models.UserInteractions {
	raw, ok, err := s.store.Get(ctx, keyPrefix+installID)
	if err != nil {
		log.Printf("ledger: read failed for %s: %v", installID, err)
		return models.EmptyInteractions()
	}
	if !ok {
		return models.EmptyInteractions()
	}

	inter := models.EmptyInteractions()
	if err := json.Unmarshal([]byte(raw), &inter); err != nil {
		log.Printf("ledger: corrupt blob for %s, resetting: %v", installID, err)
		return models.EmptyInteractions()
	}
	normalize(&inter)
	return inter
}

func (s *Service) save(ctx context.Context, installID string, inter models.UserInteractions) {
	data, err := json.Marshal(inter)
	if err != nil {
		log.Printf("ledger: marshal failed for %s: %v", installID, err)
		return
	}
	if err := s.store.Set(ctx, keyPrefix+installID, string(data)); err != nil {
		log.Printf("ledger: write failed for %s: %v", installID, err)
	}
}

// mutate serializes writes so successive user actions apply in order.
func (s *Service) mutate(ctx context.Context, installID string, fn func(*models.UserInteractions)) models.UserInteractions {
	s.mu.Lock()
	defer s.mu.Unlock()

	inter := s.Load(ctx, installID)
	fn(&inter)
	s.save(ctx, installID, inter)
	return inter
}

// ToggleLike likes an unliked id and unlikes a liked one. Liking
// always clears the id from the disliked set.
func (s *Service) ToggleLike(ctx context.Context, installID, id string) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		if u.Liked(id) {
			u.LikedIDs = remove(u.LikedIDs, id)
			return
		}
		u.LikedIDs = append(u.LikedIDs, id)
		u.DislikedIDs = remove(u.DislikedIDs, id)
	})
}

// ToggleDislike adds the id to the disliked set (idempotent) and
// clears any like. Closing an open player overlay for the video is the
// caller's responsibility.
func (s *Service) ToggleDislike(ctx context.Context, installID, id string) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		if !u.Disliked(id) {
			u.DislikedIDs = append(u.DislikedIDs, id)
		}
		u.LikedIDs = remove(u.LikedIDs, id)
	})
}

// Restore removes the id from the disliked set (the Hidden surface's
// un-hide action).
func (s *Service) Restore(ctx context.Context, installID, id string) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		u.DislikedIDs = remove(u.DislikedIDs, id)
	})
}

func (s *Service) ToggleSave(ctx context.Context, installID, id string) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		if u.Saved(id) {
			u.SavedIDs = remove(u.SavedIDs, id)
		} else {
			u.SavedIDs = append(u.SavedIDs, id)
		}
	})
}

func (s *Service) ToggleSaveCategory(ctx context.Context, installID, name string) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		if u.SavedCategory(name) {
			u.SavedCategoryNames = remove(u.SavedCategoryNames, name)
		} else {
			u.SavedCategoryNames = append(u.SavedCategoryNames, name)
		}
	})
}

// RecordProgress upserts the watch entry for id. Stored progress only
// ever increases; frequent time-update events coalesce through this
// rule rather than queueing.
func (s *Service) RecordProgress(ctx context.Context, installID, id string, progress float64) models.UserInteractions {
	if progress < 0 {
		progress = 0
	}
	if progress > 1 {
		progress = 1
	}
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		for i := range u.WatchHistory {
			if u.WatchHistory[i].ID == id {
				if progress > u.WatchHistory[i].Progress {
					u.WatchHistory[i].Progress = progress
				}
				return
			}
		}
		u.WatchHistory = append(u.WatchHistory, models.WatchEntry{ID: id, Progress: progress})
	})
}

// SetDownloaded records cache membership. Callers must only invoke it
// after the offline cache confirmed the corresponding mutation, so the
// ledger and the cache stay in lock-step.
func (s *Service) SetDownloaded(ctx context.Context, installID, id string, present bool) models.UserInteractions {
	return s.mutate(ctx, installID, func(u *models.UserInteractions) {
		if present {
			if !u.Downloaded(id) {
				u.DownloadedIDs = append(u.DownloadedIDs, id)
			}
		} else {
			u.DownloadedIDs = remove(u.DownloadedIDs, id)
		}
	})
}

func remove(list []string, v string) []string {
	out := list[:0]
	for _, x := range list {
		if x != v {
			out = append(out, x)
		}
	}
	return out
}

// normalize repairs nil slices from hand-edited or partial blobs.
func normalize(u *models.UserInteractions) {
	if u.LikedIDs == nil {
		u.LikedIDs = []string{}
	}
	if u.DislikedIDs == nil {
		u.DislikedIDs = []string{}
	}
	if u.SavedIDs == nil {
		u.SavedIDs = []string{}
	}
	if u.SavedCategoryNames == nil {
		u.SavedCategoryNames = []string{}
	}
	if u.WatchHistory == nil {
		u.WatchHistory = []models.WatchEntry{}
	}
	if u.DownloadedIDs == nil {
		u.DownloadedIDs = []string{}
	}
}
