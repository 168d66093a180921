package services

import (
	"context"
	"crypto/subtle"
	"errors"
	"strings"
	"time"

	"log"

	"github.com/jackc/pgx/v5"
	"golang.org/x/crypto/bcrypt"

	"hadiqa-backend/internal/models"
	"hadiqa-backend/internal/repository"
)

// AdminService gates the management surface behind the shared passcode
// and orchestrates catalog writes. Every successful write refreshes the
// catalog snapshot so the feed reflects it immediately.
type AdminService struct {
	repo    *repository.VideoRepo
	catalog *CatalogService
	gemini  *GeminiService
	host    *MediaHostClient

	passcode     string
	passcodeHash string
}

func NewAdminService(repo *repository.VideoRepo, catalog *CatalogService, gemini *GeminiService, host *MediaHostClient, passcode, passcodeHash string) *AdminService {
	return &AdminService{
		repo:         repo,
		catalog:      catalog,
		gemini:       gemini,
		host:         host,
		passcode:     passcode,
		passcodeHash: passcodeHash,
	}
}

// Authenticate checks the submitted passcode. When a bcrypt hash is
// configured it wins over the plaintext value; plaintext comparison is
// constant time.
func (s *AdminService) Authenticate(passcode string) error {
	if s.passcodeHash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(s.passcodeHash), []byte(passcode)); err != nil {
			return &UnauthorizedError{Message: "Invalid passcode"}
		}
		return nil
	}

	if s.passcode == "" {
		return &UnauthorizedError{Message: "Admin access is not configured"}
	}
	if subtle.ConstantTimeCompare([]byte(s.passcode), []byte(passcode)) != 1 {
		return &UnauthorizedError{Message: "Invalid passcode"}
	}
	return nil
}

// RegisterVideo records an upload-widget result as a catalog entry.
// Orientation decides the type: portrait uploads become shorts.
func (s *AdminService) RegisterVideo(ctx context.Context, req models.RegisterVideoRequest) (*models.Video, error) {
	fields := make(map[string]string)
	if strings.TrimSpace(req.PublicID) == "" {
		fields["public_id"] = "Public id is required"
	}
	if strings.TrimSpace(req.SecureURL) == "" {
		fields["secure_url"] = "Secure URL is required"
	}
	if strings.TrimSpace(req.Title) == "" {
		fields["title"] = "Title is required"
	}
	if strings.TrimSpace(req.Category) == "" {
		fields["category"] = "Category is required"
	}
	if len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	videoType := models.VideoTypeLong
	if req.Height > req.Width {
		videoType = models.VideoTypeShort
	}

	now := time.Now()
	video := &models.Video{
		ID:           req.PublicID,
		PublicID:     req.PublicID,
		VideoURL:     req.SecureURL,
		PosterURL:    req.PosterURL,
		Type:         videoType,
		Title:        req.Title,
		Category:     req.Category,
		CreatedAt:    &now,
		ExternalLink: req.ExternalLink,
	}

	if err := s.repo.Create(ctx, video); err != nil {
		return nil, err
	}

	s.refreshCatalog(ctx)
	return video, nil
}

// UpdateVideo edits the mutable fields of an existing entry, resolved
// by id or public id.
func (s *AdminService) UpdateVideo(ctx context.Context, id string, req models.UpdateVideoRequest) (*models.Video, error) {
	video, err := s.repo.GetByAnyID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Video not found"}
		}
		return nil, err
	}

	if strings.TrimSpace(req.Title) == "" {
		return nil, &ValidationError{Fields: map[string]string{"title": "Title is required"}}
	}

	video.Title = req.Title
	video.Category = req.Category
	video.Tags = req.Tags
	video.ExternalLink = req.ExternalLink
	video.IsFeatured = req.IsFeatured

	if err := s.repo.Update(ctx, video); err != nil {
		return nil, err
	}

	s.refreshCatalog(ctx)
	return video, nil
}

// ToggleFeatured flips the curated flag that feeds the trending rail.
func (s *AdminService) ToggleFeatured(ctx context.Context, id string) (*models.Video, error) {
	video, err := s.repo.GetByAnyID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &NotFoundError{Message: "Video not found"}
		}
		return nil, err
	}

	video.IsFeatured = !video.IsFeatured
	if err := s.repo.Update(ctx, video); err != nil {
		return nil, err
	}

	s.refreshCatalog(ctx)
	return video, nil
}

func (s *AdminService) DeleteVideo(ctx context.Context, id string) error {
	video, err := s.repo.GetByAnyID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return &NotFoundError{Message: "Video not found"}
		}
		return err
	}

	if err := s.repo.Delete(ctx, video.ID); err != nil {
		return err
	}

	s.refreshCatalog(ctx)
	return nil
}

func (s *AdminService) ListVideos(ctx context.Context, search string) ([]models.Video, error) {
	return s.repo.List(ctx, search)
}

func (s *AdminService) refreshCatalog(ctx context.Context) {
	if err := s.catalog.Refresh(ctx); err != nil {
		log.Printf("Catalog refresh after admin write failed: %v", err)
	}
}

// Diagnostics runs the admin console's system checks against the AI
// backend and the media host.
func (s *AdminService) Diagnostics(ctx context.Context) models.Diagnostics {
	diag := models.Diagnostics{Gemini: "ok", MediaHost: "ok"}

	if err := s.gemini.Ping(ctx); err != nil {
		diag.Gemini = err.Error()
	}

	if !s.host.Configured() {
		diag.MediaHost = "not configured"
	} else if _, err := s.host.FetchCatalog(ctx); err != nil {
		diag.MediaHost = err.Error()
	}

	return diag
}
