package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/view"
)

// ViewHandler exposes the navigation state machine over HTTP so the
// client can restore and mutate its session from any tab.
type ViewHandler struct {
	viewCtrl *view.Controller
}

func NewViewHandler(viewCtrl *view.Controller) *ViewHandler {
	return &ViewHandler{viewCtrl: viewCtrl}
}

func (h *ViewHandler) Get(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	writeJSON(w, http.StatusOK, h.viewCtrl.Session(installID))
}

func (h *ViewHandler) Navigate(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())

	var req models.NavigateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.viewCtrl.Navigate(installID, view.BaseState(req.View), req.Category)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

// StartOffline resets the session to the offline landing surface, used
// when the client boots without connectivity.
func (h *ViewHandler) StartOffline(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	writeJSON(w, http.StatusOK, h.viewCtrl.StartOffline(installID))
}

func (h *ViewHandler) OpenOverlay(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	kind := view.OverlayKind(chi.URLParam(r, "kind"))

	var req models.OpenOverlayRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	session, err := h.viewCtrl.OpenOverlay(installID, kind, req.VideoID)
	if err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", err.Error(), r))
		return
	}

	writeJSON(w, http.StatusOK, session)
}

func (h *ViewHandler) CloseOverlay(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	kind := view.OverlayKind(chi.URLParam(r, "kind"))

	writeJSON(w, http.StatusOK, h.viewCtrl.CloseOverlay(installID, kind))
}
