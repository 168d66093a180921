package handlers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"hadiqa-backend/internal/ledger"
	"hadiqa-backend/internal/middleware"
	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/services"
	"hadiqa-backend/internal/view"
)

func testRouter(t *testing.T) (chi.Router, *InteractionsHandler, *ViewHandler) {
	t.Helper()

	ledgerSvc := ledger.NewService(ledger.NewMemoryStore())
	viewCtrl := view.NewController()

	ih := NewInteractionsHandler(ledgerSvc, viewCtrl)
	vh := NewViewHandler(viewCtrl)

	r := chi.NewRouter()
	r.Use(middleware.InstallID)
	r.Get("/interactions", ih.Get)
	r.Post("/interactions/like/{id}", ih.Like)
	r.Post("/interactions/dislike/{id}", ih.Dislike)
	r.Post("/interactions/restore/{id}", ih.Restore)
	r.Put("/interactions/progress/{id}", ih.Progress)
	r.Get("/view", vh.Get)
	r.Post("/view/navigate", vh.Navigate)
	r.Post("/view/overlays/{kind}", vh.OpenOverlay)

	return r, ih, vh
}

func doRequest(t *testing.T, r http.Handler, method, path, installID, body string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("{}")
	} else {
		reader = strings.NewReader(body)
	}

	req := httptest.NewRequest(method, path, reader)
	if installID != "" {
		req.Header.Set("X-Install-ID", installID)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestMissingInstallIDRejected(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doRequest(t, r, http.MethodGet, "/interactions", "", "")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without install header, got %d", w.Code)
	}
}

func TestLikeRoundTrip(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doRequest(t, r, http.MethodPost, "/interactions/like/v1", "install-a", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}

	var inter models.UserInteractions
	if err := json.NewDecoder(w.Body).Decode(&inter); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !inter.Liked("v1") {
		t.Error("expected v1 to be liked")
	}

	// Second toggle clears it
	w = doRequest(t, r, http.MethodPost, "/interactions/like/v1", "install-a", "")
	json.NewDecoder(w.Body).Decode(&inter)
	if inter.Liked("v1") {
		t.Error("expected second toggle to clear the like")
	}
}

func TestDislikeClosesOverlays(t *testing.T) {
	r, _, _ := testRouter(t)

	w := doRequest(t, r, http.MethodPost, "/view/overlays/short_player", "install-a", `{"video_id":"v1"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 opening overlay, got %d", w.Code)
	}

	doRequest(t, r, http.MethodPost, "/interactions/dislike/v1", "install-a", "")

	w = doRequest(t, r, http.MethodGet, "/view", "install-a", "")
	var session view.Session
	json.NewDecoder(w.Body).Decode(&session)
	if session.ShortOverlay != nil || session.LongOverlay != nil {
		t.Error("expected dislike to close all overlays")
	}
}

func TestNavigateValidation(t *testing.T) {
	r, _, _ := testRouter(t)

	tests := []struct {
		name string
		body string
		want int
	}{
		{"valid view", `{"view":"trend"}`, http.StatusOK},
		{"category with name", `{"view":"category","category":"رعب حقيقي"}`, http.StatusOK},
		{"category without name", `{"view":"category"}`, http.StatusBadRequest},
		{"unknown view", `{"view":"nope"}`, http.StatusBadRequest},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := doRequest(t, r, http.MethodPost, "/view/navigate", "install-a", tc.body)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}

func TestProgressOnlyIncreases(t *testing.T) {
	r, _, _ := testRouter(t)

	doRequest(t, r, http.MethodPut, "/interactions/progress/v1", "install-a", `{"progress":0.6}`)
	w := doRequest(t, r, http.MethodPut, "/interactions/progress/v1", "install-a", `{"progress":0.3}`)

	var inter models.UserInteractions
	json.NewDecoder(w.Body).Decode(&inter)

	found := false
	for _, entry := range inter.WatchHistory {
		if entry.ID == "v1" {
			found = true
			if entry.Progress != 0.6 {
				t.Errorf("expected progress to stay at 0.6, got %v", entry.Progress)
			}
		}
	}
	if !found {
		t.Fatal("expected a watch history entry for v1")
	}
}

func TestAdminAuth(t *testing.T) {
	admin := services.NewAdminService(nil, nil, nil, nil, "1985", "")
	jwtAuth := middleware.NewJWTAuth("test-secret")
	h := NewAdminHandler(admin, nil, jwtAuth)

	r := chi.NewRouter()
	r.Post("/admin/auth", h.Auth)

	w := doRequest(t, r, http.MethodPost, "/admin/auth", "", `{"passcode":"wrong"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for wrong passcode, got %d", w.Code)
	}

	w = doRequest(t, r, http.MethodPost, "/admin/auth", "", `{"passcode":"1985"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200 for correct passcode, got %d", w.Code)
	}

	var resp models.AdminAuthResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.AccessToken == "" || resp.ExpiresIn != 900 {
		t.Errorf("unexpected auth response: %+v", resp)
	}
}

func TestHandleServiceError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"validation", &services.ValidationError{Fields: map[string]string{"title": "required"}}, http.StatusBadRequest},
		{"conflict", &services.ConflictError{Message: "busy"}, http.StatusConflict},
		{"not found", &services.NotFoundError{Message: "missing"}, http.StatusNotFound},
		{"unauthorized", &services.UnauthorizedError{Message: "nope"}, http.StatusUnauthorized},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			handleServiceError(w, req, tc.err)
			if w.Code != tc.want {
				t.Errorf("expected %d, got %d", tc.want, w.Code)
			}
		})
	}
}
