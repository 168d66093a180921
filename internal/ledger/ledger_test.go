package ledger

import (
	"context"
	"testing"
)

const install = "test-install"

func newTestService() *Service {
	return NewService(NewMemoryStore())
}

func TestLoad_MissingKeyReturnsEmpty(t *testing.T) {
	s := newTestService()
	inter := s.Load(context.Background(), install)

	if len(inter.LikedIDs) != 0 || len(inter.DislikedIDs) != 0 ||
		len(inter.SavedIDs) != 0 || len(inter.WatchHistory) != 0 ||
		len(inter.DownloadedIDs) != 0 || len(inter.SavedCategoryNames) != 0 {
		t.Errorf("Expected empty ledger, got %+v", inter)
	}
}

func TestLoad_CorruptBlobReturnsEmpty(t *testing.T) {
	tests := []struct {
		name string
		blob string
	}{
		{"not json", "{{{not json"},
		{"wrong type", `"just a string"`},
		{"empty", ""},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			store := NewMemoryStore()
			store.Set(context.Background(), keyPrefix+install, tc.blob)

			s := NewService(store)
			inter := s.Load(context.Background(), install)
			if inter.LikedIDs == nil || len(inter.LikedIDs) != 0 {
				t.Errorf("Expected empty ledger for corrupt blob %q, got %+v", tc.blob, inter)
			}
		})
	}
}

func TestLoad_PartialBlobNormalized(t *testing.T) {
	store := NewMemoryStore()
	store.Set(context.Background(), keyPrefix+install, `{"likedIds":["a"]}`)

	s := NewService(store)
	inter := s.Load(context.Background(), install)

	if !inter.Liked("a") {
		t.Errorf("Expected liked id to survive partial blob")
	}
	if inter.WatchHistory == nil || inter.DownloadedIDs == nil {
		t.Errorf("Expected nil slices to be normalized, got %+v", inter)
	}
}

func TestToggleLike_RoundTrip(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	inter := s.ToggleLike(ctx, install, "v1")
	if !inter.Liked("v1") {
		t.Fatalf("Expected v1 liked after first toggle")
	}

	inter = s.ToggleLike(ctx, install, "v1")
	if inter.Liked("v1") {
		t.Fatalf("Expected v1 unliked after second toggle")
	}
	if len(inter.LikedIDs) != 0 || len(inter.DislikedIDs) != 0 {
		t.Errorf("Expected original state after round trip, got %+v", inter)
	}
}

func TestLikeDislike_MutuallyExclusive(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.ToggleDislike(ctx, install, "v1")
	inter := s.ToggleLike(ctx, install, "v1")
	if !inter.Liked("v1") || inter.Disliked("v1") {
		t.Errorf("Like must clear dislike, got %+v", inter)
	}

	inter = s.ToggleDislike(ctx, install, "v1")
	if inter.Liked("v1") || !inter.Disliked("v1") {
		t.Errorf("Dislike must clear like, got %+v", inter)
	}

	// Dislike is idempotent set-add.
	inter = s.ToggleDislike(ctx, install, "v1")
	if got := len(inter.DislikedIDs); got != 1 {
		t.Errorf("Expected 1 disliked id after repeat dislike, got %d", got)
	}
}

func TestDislike_FromEmptyLedger(t *testing.T) {
	s := newTestService()
	inter := s.ToggleDislike(context.Background(), install, "x")

	if len(inter.DislikedIDs) != 1 || inter.DislikedIDs[0] != "x" {
		t.Errorf(`Expected dislikedIds = ["x"], got %v`, inter.DislikedIDs)
	}
}

func TestRestore_RemovesDislike(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.ToggleDislike(ctx, install, "v1")
	inter := s.Restore(ctx, install, "v1")
	if inter.Disliked("v1") {
		t.Errorf("Expected v1 restored, got %+v", inter)
	}
}

func TestRecordProgress_OnlyIncreases(t *testing.T) {
	tests := []struct {
		name     string
		p1, p2   float64
		expected float64
	}{
		{"increase", 0.2, 0.6, 0.6},
		{"decrease ignored", 0.6, 0.2, 0.6},
		{"equal kept", 0.4, 0.4, 0.4},
		{"clamped above one", 0.5, 1.7, 1.0},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			s := newTestService()
			ctx := context.Background()

			s.RecordProgress(ctx, install, "v1", tc.p1)
			inter := s.RecordProgress(ctx, install, "v1", tc.p2)

			if len(inter.WatchHistory) != 1 {
				t.Fatalf("Expected single history entry, got %d", len(inter.WatchHistory))
			}
			if got := inter.WatchHistory[0].Progress; got != tc.expected {
				t.Errorf("Expected progress %v, got %v", tc.expected, got)
			}
		})
	}
}

func TestRecordProgress_OneEntryPerID(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	s.RecordProgress(ctx, install, "a", 0.1)
	s.RecordProgress(ctx, install, "b", 0.2)
	inter := s.RecordProgress(ctx, install, "a", 0.3)

	if len(inter.WatchHistory) != 2 {
		t.Fatalf("Expected 2 history entries, got %d", len(inter.WatchHistory))
	}
}

func TestToggleSaveAndCategory(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	inter := s.ToggleSave(ctx, install, "v1")
	if !inter.Saved("v1") {
		t.Errorf("Expected v1 saved")
	}
	inter = s.ToggleSave(ctx, install, "v1")
	if inter.Saved("v1") {
		t.Errorf("Expected v1 unsaved after second toggle")
	}

	inter = s.ToggleSaveCategory(ctx, install, "رعب حقيقي")
	if !inter.SavedCategory("رعب حقيقي") {
		t.Errorf("Expected category saved")
	}
}

func TestSetDownloaded(t *testing.T) {
	s := newTestService()
	ctx := context.Background()

	inter := s.SetDownloaded(ctx, install, "v1", true)
	if !inter.Downloaded("v1") {
		t.Errorf("Expected v1 downloaded")
	}

	// Idempotent add.
	inter = s.SetDownloaded(ctx, install, "v1", true)
	if len(inter.DownloadedIDs) != 1 {
		t.Errorf("Expected 1 downloaded id, got %d", len(inter.DownloadedIDs))
	}

	inter = s.SetDownloaded(ctx, install, "v1", false)
	if inter.Downloaded("v1") {
		t.Errorf("Expected v1 removed")
	}
}

func TestMutationsPersistAcrossServices(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	first := NewService(store)
	first.ToggleLike(ctx, install, "v1")
	first.RecordProgress(ctx, install, "v1", 0.5)

	second := NewService(store)
	inter := second.Load(ctx, install)
	if !inter.Liked("v1") || len(inter.WatchHistory) != 1 {
		t.Errorf("Expected persisted ledger to survive reload, got %+v", inter)
	}
}
