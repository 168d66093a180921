package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"hadiqa-backend/internal/feed"
	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/offline"
	"hadiqa-backend/internal/services"
	"hadiqa-backend/internal/websocket"
	"hadiqa-backend/internal/worker"
)

// OfflineHandler manages the download surface. Requests are accepted
// only while the single download slot is free; everything else is a
// 409 the client surfaces as "a download is already running".
type OfflineHandler struct {
	catalog *services.CatalogService
	ledger  *ledger.Service
	manager *offline.Manager
	pool    *worker.Pool
	hub     *websocket.Hub
}

func NewOfflineHandler(catalog *services.CatalogService, ledgerSvc *ledger.Service, manager *offline.Manager, pool *worker.Pool, hub *websocket.Hub) *OfflineHandler {
	return &OfflineHandler{
		catalog: catalog,
		ledger:  ledgerSvc,
		manager: manager,
		pool:    pool,
		hub:     hub,
	}
}

func (h *OfflineHandler) Start(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())

	var req models.StartDownloadRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.VideoID == "" {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "video_id is required", r))
		return
	}

	video, ok := h.catalog.VideoByAnyID(req.VideoID)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	if h.manager.IsCached(installID, video.VideoURL) {
		h.ledger.SetDownloaded(r.Context(), installID, video.ID, true)
		h.hub.SendToInstall(installID, models.WSMessage{
			Type: "download_complete",
			Payload: models.DownloadUpdate{
				VideoID:  video.ID,
				Progress: 100,
			},
		})
		writeJSON(w, http.StatusOK, map[string]string{"status": "already_downloaded"})
		return
	}

	if h.manager.InFlight() != nil {
		writeJSON(w, http.StatusConflict, errorResp("DOWNLOAD_IN_PROGRESS", "Another download is already running", r))
		return
	}

	job := models.DownloadJob{
		ID:        uuid.New().String(),
		InstallID: installID,
		VideoID:   video.ID,
		VideoURL:  video.VideoURL,
	}
	if err := h.pool.Enqueue(r.Context(), job); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to queue download", r))
		return
	}

	writeJSON(w, http.StatusAccepted, map[string]string{
		"job_id": job.ID,
		"status": "queued",
	})
}

// List returns the caller's downloaded videos plus whichever download
// is currently in flight.
func (h *OfflineHandler) List(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	inter := h.ledger.Load(r.Context(), installID)
	snapshot := h.catalog.Snapshot()

	downloaded := feed.ResolveIDs(snapshot, inter.DownloadedIDs)
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"videos":    feed.Cards(downloaded, inter, feed.RecentIDs(snapshot)),
		"in_flight": h.manager.InFlight(),
	})
}

// Delete evicts a cached video and clears its ledger flag.
func (h *OfflineHandler) Delete(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	video, ok := h.catalog.VideoByAnyID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	if err := h.manager.Remove(installID, video.VideoURL); err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to remove cached video", r))
		return
	}

	writeJSON(w, http.StatusOK, h.ledger.SetDownloaded(r.Context(), installID, video.ID, false))
}

// Serve streams a cached video body for offline playback.
func (h *OfflineHandler) Serve(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	video, ok := h.catalog.VideoByAnyID(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video not found", r))
		return
	}

	data, ok := h.manager.Get(installID, video.VideoURL)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorResp("NOT_FOUND", "Video is not cached", r))
		return
	}

	w.Header().Set("Content-Type", "video/mp4")
	w.Write(data)
}
