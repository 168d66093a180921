package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/services"
)

type AdminHandler struct {
	admin   *services.AdminService
	gemini  *services.GeminiService
	jwtAuth *middleware.JWTAuth
}

func NewAdminHandler(admin *services.AdminService, gemini *services.GeminiService, jwtAuth *middleware.JWTAuth) *AdminHandler {
	return &AdminHandler{
		admin:   admin,
		gemini:  gemini,
		jwtAuth: jwtAuth,
	}
}

// Auth exchanges the shared passcode for a short-lived admin token.
func (h *AdminHandler) Auth(w http.ResponseWriter, r *http.Request) {
	var req models.AdminAuthRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	if err := h.admin.Authenticate(req.Passcode); err != nil {
		handleServiceError(w, r, err)
		return
	}

	token, err := h.jwtAuth.GenerateAdminToken()
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to generate token", r))
		return
	}

	writeJSON(w, http.StatusOK, models.AdminAuthResponse{
		AccessToken: token,
		ExpiresIn:   900,
	})
}

func (h *AdminHandler) ListVideos(w http.ResponseWriter, r *http.Request) {
	videos, err := h.admin.ListVideos(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, errorResp("INTERNAL_ERROR", "Failed to list videos", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{"videos": videos})
}

func (h *AdminHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.RegisterVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	video, err := h.admin.RegisterVideo(r.Context(), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusCreated, video)
}

func (h *AdminHandler) Update(w http.ResponseWriter, r *http.Request) {
	var req models.UpdateVideoRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	video, err := h.admin.UpdateVideo(r.Context(), chi.URLParam(r, "id"), req)
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

func (h *AdminHandler) ToggleFeatured(w http.ResponseWriter, r *http.Request) {
	video, err := h.admin.ToggleFeatured(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, video)
}

func (h *AdminHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.admin.DeleteVideo(r.Context(), chi.URLParam(r, "id")); err != nil {
		handleServiceError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{"message": "Video deleted"})
}

func (h *AdminHandler) SuggestMetadata(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestMetadataRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	writeJSON(w, http.StatusOK, h.gemini.SuggestMetadata(r.Context(), req.Category))
}

func (h *AdminHandler) SuggestTags(w http.ResponseWriter, r *http.Request) {
	var req models.SuggestTagsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"tags": h.gemini.SuggestTags(r.Context(), req.Title, req.Category),
	})
}

func (h *AdminHandler) Diagnostics(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.admin.Diagnostics(r.Context()))
}

// Categories returns the curated category list for the upload form.
func (h *AdminHandler) Categories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"categories": models.OfficialCategories,
	})
}
