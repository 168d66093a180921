// Package feed turns (catalog, ledger, rotation counter) into every
// ordered and filtered view the client renders. All selection functions
// are pure and never mutate their inputs; a missing or malformed entry
// is skipped, never an error.
package feed

import (
	"sort"
	"strings"

	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/stats"
)

const (
	recentWindow   = 10
	searchLimit    = 15
	progressFloor  = 0.05
	progressCeil   = 0.95
)

// MergeOrder applies a recommended id ordering to the catalog: every
// video whose id (or public_id) appears in order comes first, in that
// order; duplicates collapse to first occurrence; unknown ids are
// dropped; every remaining video follows in catalog order.
func MergeOrder(catalog []models.Video, order []string) []models.Video {
	index := make(map[string]int, len(catalog)*2)
	for i, v := range catalog {
		if _, ok := index[v.ID]; !ok {
			index[v.ID] = i
		}
		if _, ok := index[v.PublicID]; !ok {
			index[v.PublicID] = i
		}
	}

	out := make([]models.Video, 0, len(catalog))
	used := make(map[int]bool, len(catalog))
	for _, id := range order {
		i, ok := index[id]
		if !ok || used[i] {
			continue
		}
		used[i] = true
		out = append(out, catalog[i])
	}
	for i, v := range catalog {
		if !used[i] {
			out = append(out, v)
		}
	}
	return out
}

// Rotate selects a count-sized window starting at
// (counter+offset)*count mod len(list), wrapping circularly. Lists no
// longer than count are returned whole. Distinct offsets give sections
// independent-looking shuffles off one shared counter.
func Rotate(list []models.Video, count int, counter int64, offset int) []models.Video {
	if count <= 0 || len(list) <= count {
		return list
	}
	start := int(((counter + int64(offset)) * int64(count)) % int64(len(list)))
	if start < 0 {
		start += len(list)
	}

	selected := make([]models.Video, 0, count)
	selected = append(selected, list[start:min(start+count, len(list))]...)
	if len(selected) < count {
		selected = append(selected, list[:count-len(selected)]...)
	}
	return selected
}

// RecentIDs returns the ids of the newest videos by created_at
// (missing timestamps sort last). These are flagged trending alongside
// the manually curated isFeatured items.
func RecentIDs(catalog []models.Video) []string {
	sorted := make([]models.Video, len(catalog))
	copy(sorted, catalog)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CreatedAtOrZero().After(sorted[j].CreatedAtOrZero())
	})

	n := min(recentWindow, len(sorted))
	ids := make([]string, 0, n)
	for _, v := range sorted[:n] {
		ids = append(ids, v.ID)
	}
	return ids
}

// ByType partitions the catalog.
func ByType(catalog []models.Video, t models.VideoType) []models.Video {
	out := make([]models.Video, 0, len(catalog))
	for _, v := range catalog {
		if v.Type == t {
			out = append(out, v)
		}
	}
	return out
}

// ByCategory matches case-insensitively on the exact category name.
func ByCategory(catalog []models.Video, category string) []models.Video {
	out := []models.Video{}
	for _, v := range catalog {
		if strings.EqualFold(v.Category, category) {
			out = append(out, v)
		}
	}
	return out
}

// Search is a case-insensitive substring match on title or category,
// capped at 15 results.
func Search(catalog []models.Video, query string) []models.Video {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return []models.Video{}
	}

	out := []models.Video{}
	for _, v := range catalog {
		if strings.Contains(strings.ToLower(v.Title), q) ||
			strings.Contains(strings.ToLower(v.Category), q) {
			out = append(out, v)
			if len(out) == searchLimit {
				break
			}
		}
	}
	return out
}

// ContinueWatching resolves partially-watched history entries
// (0.05 < progress < 0.95) against the catalog, most recent first.
// Entries whose video no longer exists are skipped.
func ContinueWatching(catalog []models.Video, inter models.UserInteractions) []models.Video {
	byID := indexByAnyID(catalog)

	out := []models.Video{}
	for i := len(inter.WatchHistory) - 1; i >= 0; i-- {
		h := inter.WatchHistory[i]
		if h.Progress <= progressFloor || h.Progress >= progressCeil {
			continue
		}
		if v, ok := byID[h.ID]; ok {
			out = append(out, v)
		}
	}
	return out
}

// Trending merges the curator-flagged videos with the recency window,
// drops excluded (disliked) ids and duplicates, and orders curated
// first, then by reported views descending.
func Trending(catalog []models.Video, excludedIDs []string) []models.Video {
	excluded := make(map[string]bool, len(excludedIDs))
	for _, id := range excludedIDs {
		excluded[id] = true
	}

	combined := []models.Video{}
	seen := map[string]bool{}
	for _, v := range catalog {
		if v.IsFeatured && !excluded[v.ID] {
			combined = append(combined, v)
			seen[v.ID] = true
		}
	}

	recent := make([]models.Video, 0, len(catalog))
	for _, v := range catalog {
		if !excluded[v.ID] {
			recent = append(recent, v)
		}
	}
	sort.SliceStable(recent, func(i, j int) bool {
		return recent[i].CreatedAtOrZero().After(recent[j].CreatedAtOrZero())
	})
	for _, v := range recent[:min(recentWindow, len(recent))] {
		if !seen[v.ID] {
			combined = append(combined, v)
			seen[v.ID] = true
		}
	}

	sort.SliceStable(combined, func(i, j int) bool {
		if combined[i].IsFeatured != combined[j].IsFeatured {
			return combined[i].IsFeatured
		}
		return combined[i].Views > combined[j].Views
	})
	return combined
}

// ResolveIDs maps a ledger id list to existing videos, preserving list
// order and silently skipping missing ones.
func ResolveIDs(catalog []models.Video, ids []string) []models.Video {
	byID := indexByAnyID(catalog)
	out := []models.Video{}
	seen := map[string]bool{}
	for _, id := range ids {
		v, ok := byID[id]
		if !ok || seen[v.ID] {
			continue
		}
		seen[v.ID] = true
		out = append(out, v)
	}
	return out
}

// Cards enriches videos with deterministic stats and ledger flags.
func Cards(videos []models.Video, inter models.UserInteractions, recentIDs []string) []models.VideoCard {
	recent := make(map[string]bool, len(recentIDs))
	for _, id := range recentIDs {
		recent[id] = true
	}

	progress := make(map[string]float64, len(inter.WatchHistory))
	for _, h := range inter.WatchHistory {
		progress[h.ID] = h.Progress
	}

	cards := make([]models.VideoCard, 0, len(videos))
	for _, v := range videos {
		st := stats.Compute(v.VideoURL)
		p := progress[v.ID]
		if p == 0 {
			p = progress[v.PublicID]
		}
		cards = append(cards, models.VideoCard{
			Video:        v,
			StatViews:    st.Views,
			StatLikes:    st.Likes,
			IsLiked:      inter.Liked(v.ID),
			IsSaved:      inter.Saved(v.ID),
			IsDownloaded: inter.Downloaded(v.ID),
			IsTrending:   v.IsFeatured || recent[v.ID],
			Progress:     p,
		})
	}
	return cards
}

// Home composes the fixed section layout of the home surface. Section
// keys and window sizes mirror the client's original page; the shared
// counter with distinct offsets makes sections rotate independently.
func Home(catalog []models.Video, inter models.UserInteractions, counter int64) models.HomeFeed {
	shorts := ByType(catalog, models.VideoTypeShort)
	longs := ByType(catalog, models.VideoTypeLong)
	recent := RecentIDs(catalog)

	section := func(key, title, layout string, videos []models.Video) models.FeedSection {
		return models.FeedSection{
			Key:    key,
			Title:  title,
			Layout: layout,
			Videos: Cards(videos, inter, recent),
		}
	}

	sections := []models.FeedSection{
		section("shorts-marquee-1", "ومضات مرعبة سريعة", "marquee", Rotate(shorts, 12, counter, 0)),
		section("longs-marquee-1", "عرض الأساطير الطويلة", "marquee", Rotate(longs, 8, counter, 0)),
		section("shorts-grid-1", "المختار من القبو (شورتي)", "grid", Rotate(shorts, 4, counter, 0)),
		section("longs-spotlight", "أهوال حصرية مختارة", "spotlight", Rotate(longs, 2, counter, 0)),
	}

	if cw := ContinueWatching(catalog, inter); len(cw) > 0 {
		sections = append(sections, section("continue-watching", "نكمل الحكاية", "marquee", cw))
	}

	sections = append(sections,
		section("shorts-marquee-2", "ومضات من الجحيم", "marquee", Rotate(shorts, 12, counter, 2)),
		section("longs-marquee-2", "حكايات القبور الطويلة", "marquee", Rotate(longs, 8, counter, 2)),
		section("shorts-grid-2", "همسات الظلام (شورتي)", "grid", Rotate(shorts, 4, counter, 1)),
		section("shorts-marquee-3", "أرشيف الأهوال الأخير", "marquee", Rotate(shorts, 12, counter, 3)),
		section("longs-marquee-3", "الخروج من القبو", "marquee", Rotate(longs, 8, counter, 3)),
	)

	return models.HomeFeed{
		Sections:        sections,
		Categories:      models.OfficialCategories,
		RotationCounter: counter,
	}
}

func indexByAnyID(catalog []models.Video) map[string]models.Video {
	byID := make(map[string]models.Video, len(catalog)*2)
	for _, v := range catalog {
		if _, ok := byID[v.ID]; !ok {
			byID[v.ID] = v
		}
		if _, ok := byID[v.PublicID]; !ok {
			byID[v.PublicID] = v
		}
	}
	return byID
}
