package models

// VideoCard is a catalog item enriched with everything a card needs to
// render: deterministic stats, ledger flags, and the trending flag
// (curated or recent).
type VideoCard struct {
	Video
	StatViews    int     `json:"stat_views"`
	StatLikes    int     `json:"stat_likes"`
	IsLiked      bool    `json:"is_liked"`
	IsSaved      bool    `json:"is_saved"`
	IsDownloaded bool    `json:"is_downloaded"`
	IsTrending   bool    `json:"is_trending"`
	Progress     float64 `json:"progress,omitempty"`
}

// FeedSection is one titled strip of the home surface.
type FeedSection struct {
	Key    string      `json:"key"`
	Title  string      `json:"title"`
	Layout string      `json:"layout"` // marquee | grid | spotlight
	Videos []VideoCard `json:"videos"`
}

// HomeFeed is the fully composed home surface.
type HomeFeed struct {
	Sections        []FeedSection `json:"sections"`
	Categories      []string      `json:"categories"`
	RotationCounter int64         `json:"rotation_counter"`
}

// CategoryFeed is the single-category surface; IsSaved reflects the
// ledger's saved-category set.
type CategoryFeed struct {
	Category string      `json:"category"`
	IsSaved  bool        `json:"is_saved"`
	Videos   []VideoCard `json:"videos"`
}
