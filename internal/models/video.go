package models

import "time"

type VideoType string

const (
	VideoTypeShort VideoType = "short"
	VideoTypeLong  VideoType = "long"
)

// OfficialCategories is the curated category list shown in the client's
// marquee nav and the admin upload form. Category is still a free string
// on Video; this list is advisory.
var OfficialCategories = []string{
	"هجمات مرعبة",
	"رعب حقيقي",
	"رعب الحيوانات",
	"أخطر المشاهد",
	"أهوال مرعبة",
	"رعب كوميدي",
	"لحظات مرعبة",
	"صدمه",
}

// Video is one playable catalog item. JSON field names follow the
// client's wire shape, including the camelCase isFeatured flag.
// Likes/Views are origin-reported numbers and are superseded at render
// time by the deterministic stats generator.
type Video struct {
	ID           string     `json:"id"`
	PublicID     string     `json:"public_id"`
	VideoURL     string     `json:"video_url"`
	PosterURL    string     `json:"poster_url,omitempty"`
	Type         VideoType  `json:"type"`
	Title        string     `json:"title"`
	Category     string     `json:"category"`
	Tags         []string   `json:"tags,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	ExternalLink string     `json:"external_link,omitempty"`
	IsFeatured   bool       `json:"isFeatured"`
	Likes        int        `json:"likes"`
	Views        int        `json:"views"`
}

// CreatedAtOrZero treats a missing timestamp as the epoch, which sorts
// undated videos to the bottom of every recency ranking.
func (v *Video) CreatedAtOrZero() time.Time {
	if v.CreatedAt == nil {
		return time.Time{}
	}
	return *v.CreatedAt
}

// RegisterVideoRequest is the upload-widget result handed to the admin
// surface. Orientation decides the video type: portrait is a short.
type RegisterVideoRequest struct {
	PublicID     string `json:"public_id"`
	SecureURL    string `json:"secure_url"`
	PosterURL    string `json:"poster_url"`
	Width        int    `json:"width"`
	Height       int    `json:"height"`
	Title        string `json:"title"`
	Category     string `json:"category"`
	ExternalLink string `json:"external_link"`
}

type UpdateVideoRequest struct {
	Title        string   `json:"title"`
	Category     string   `json:"category"`
	Tags         []string `json:"tags"`
	ExternalLink string   `json:"external_link"`
	IsFeatured   bool     `json:"isFeatured"`
}

// VideoMetadata is an AI title/tags suggestion.
type VideoMetadata struct {
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}
