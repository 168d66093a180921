package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadiqa-backend/internal/feed"
	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/services"
)

// FeedHandler composes every consumer-facing surface from the catalog
// snapshot and the caller's interaction ledger.
type FeedHandler struct {
	catalog *services.CatalogService
	ledger  *ledger.Service
	rotator *feed.Rotator
}

func NewFeedHandler(catalog *services.CatalogService, ledgerSvc *ledger.Service, rotator *feed.Rotator) *FeedHandler {
	return &FeedHandler{
		catalog: catalog,
		ledger:  ledgerSvc,
		rotator: rotator,
	}
}

func (h *FeedHandler) Home(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	writeJSON(w, http.StatusOK, feed.Home(snapshot, inter, h.rotator.Counter()))
}

// Recommended returns the catalog in an order personalized to the
// caller's liked history.
func (h *FeedHandler) Recommended(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)

	ordered := h.catalog.PersonalOrder(r.Context(), inter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.cards(ordered, inter),
	})
}

func (h *FeedHandler) Trending(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	trending := feed.Trending(snapshot, inter.DislikedIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.cards(trending, inter),
	})
}

func (h *FeedHandler) Likes(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	liked := feed.ResolveIDs(snapshot, inter.LikedIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.cards(liked, inter),
	})
}

func (h *FeedHandler) Saved(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	saved := feed.ResolveIDs(snapshot, inter.SavedIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos":     h.cards(saved, inter),
		"categories": inter.SavedCategoryNames,
	})
}

// Hidden lists the videos the caller disliked, for the restore screen.
func (h *FeedHandler) Hidden(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	hidden := feed.ResolveIDs(snapshot, inter.DislikedIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.cards(hidden, inter),
	})
}

func (h *FeedHandler) Category(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	name := chi.URLParam(r, "name")
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	videos := feed.ByCategory(snapshot, name)
	writeJSON(w, http.StatusOK, models.CategoryFeed{
		Category: name,
		IsSaved:  inter.SavedCategory(name),
		Videos:   h.cards(videos, inter),
	})
}

func (h *FeedHandler) Search(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	query := r.URL.Query().Get("q")
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	results := feed.Search(snapshot, query)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"query":  query,
		"videos": h.cards(results, inter),
	})
}

func (h *FeedHandler) ContinueWatching(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	watching := feed.ContinueWatching(snapshot, inter)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos": h.cards(watching, inter),
	})
}

func (h *FeedHandler) GetVideo(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	video, ok := h.catalog.VideoByAnyID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	inter := h.ledger.Load(r.Context(), installID)
	cards := h.cards([]models.Video{video}, inter)
	writeJSON(w, http.StatusOK, cards[0])
}

func (h *FeedHandler) cards(videos []models.Video, inter models.UserInteractions) []models.VideoCard {
	return feed.Cards(videos, inter, feed.RecentIDs(h.catalog.Snapshot()))
}
