package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/view"
)

// InteractionsHandler mutates the per-install ledger. Every mutation
// responds with the full updated ledger so the client can replace its
// local copy wholesale.
type InteractionsHandler struct {
	ledger   *ledger.Service
	viewCtrl *view.Controller
}

func NewInteractionsHandler(ledgerSvc *ledger.Service, viewCtrl *view.Controller) *InteractionsHandler {
	return &InteractionsHandler{
		ledger:   ledgerSvc,
		viewCtrl: viewCtrl,
	}
}

func (h *InteractionsHandler) Get(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	writeJSON(w, http.StatusOK, h.ledger.Load(r.Context(), installID))
}

func (h *InteractionsHandler) Like(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	writeJSON(w, http.StatusOK, h.ledger.ToggleLike(r.Context(), installID, id))
}

// Dislike hides the video everywhere and closes any open player, so
// the user never keeps watching something they just rejected.
func (h *InteractionsHandler) Dislike(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	inter := h.ledger.ToggleDislike(r.Context(), installID, id)
	h.viewCtrl.CloseOverlays(installID)

	writeJSON(w, http.StatusOK, inter)
}

func (h *InteractionsHandler) Restore(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	writeJSON(w, http.StatusOK, h.ledger.Restore(r.Context(), installID, id))
}

func (h *InteractionsHandler) Save(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	writeJSON(w, http.StatusOK, h.ledger.ToggleSave(r.Context(), installID, id))
}

func (h *InteractionsHandler) SaveCategory(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	name := chi.URLParam(r, "name")

	writeJSON(w, http.StatusOK, h.ledger.ToggleSaveCategory(r.Context(), installID, name))
}

func (h *InteractionsHandler) Progress(w http.ResponseWriter, r *http.Request) {
	installID := middleware.GetInstallID(r.Context())
	id := chi.URLParam(r, "id")

	var req models.ProgressRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	writeJSON(w, http.StatusOK, h.ledger.RecordProgress(r.Context(), installID, id, req.Progress))
}
