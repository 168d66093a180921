package models

// WatchEntry records how far a video has been played, in [0,1].
type WatchEntry struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
}

// UserInteractions is the per-installation interaction ledger. The id
// slices are semantically sets; watchHistory holds at most one entry
// per id, appended in first-watch order.
type UserInteractions struct {
	LikedIDs           []string     `json:"likedIds"`
	DislikedIDs        []string     `json:"dislikedIds"`
	SavedIDs           []string     `json:"savedIds"`
	SavedCategoryNames []string     `json:"savedCategoryNames"`
	WatchHistory       []WatchEntry `json:"watchHistory"`
	DownloadedIDs      []string     `json:"downloadedIds"`
}

// EmptyInteractions is the zero-value ledger used for fresh installs
// and as the recovery value for corrupt persisted blobs. Slices are
// non-nil so the JSON wire shape stays stable.
func EmptyInteractions() UserInteractions {
	return UserInteractions{
		LikedIDs:           []string{},
		DislikedIDs:        []string{},
		SavedIDs:           []string{},
		SavedCategoryNames: []string{},
		WatchHistory:       []WatchEntry{},
		DownloadedIDs:      []string{},
	}
}

func (u *UserInteractions) Liked(id string) bool { return contains(u.LikedIDs, id) }

func (u *UserInteractions) Disliked(id string) bool { return contains(u.DislikedIDs, id) }

func (u *UserInteractions) Saved(id string) bool { return contains(u.SavedIDs, id) }

func (u *UserInteractions) Downloaded(id string) bool { return contains(u.DownloadedIDs, id) }

func (u *UserInteractions) SavedCategory(name string) bool {
	return contains(u.SavedCategoryNames, name)
}

func contains(list []string, v string) bool {
	for _, x := range list {
		if x == v {
			return true
		}
	}
	return false
}

// DownloadProgress is the ephemeral state of the single global
// download slot: at most one exists system-wide and it is never
// persisted. Progress is a percentage in [0,100].
type DownloadProgress struct {
	ID       string  `json:"id"`
	Progress float64 `json:"progress"`
}
