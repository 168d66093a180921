package repository

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"hadiqa-backend/internal/models"
)

type VideoRepo struct {
	pool *pgxpool.Pool
}

func NewVideoRepo(pool *pgxpool.Pool) *VideoRepo {
	return &VideoRepo{pool: pool}
}

const videoColumns = `id, public_id, video_url, poster_url, type, title, category, tags, created_at, external_link, is_featured, likes, views`

func scanVideo(row pgx.Row) (*models.Video, error) {
	v := &models.Video{}
	err := row.Scan(
		&v.ID, &v.PublicID, &v.VideoURL, &v.PosterURL, &v.Type, &v.Title,
		&v.Category, &v.Tags, &v.CreatedAt, &v.ExternalLink, &v.IsFeatured,
		&v.Likes, &v.Views,
	)
	if err != nil {
		return nil, err
	}
	return v, nil
}

func (r *VideoRepo) Create(ctx context.Context, v *models.Video) error {
	query := `INSERT INTO videos (id, public_id, video_url, poster_url, type, title, category, tags, created_at, external_link, is_featured, likes, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)`

	_, err := r.pool.Exec(ctx, query,
		v.ID, v.PublicID, v.VideoURL, v.PosterURL, v.Type, v.Title,
		v.Category, v.Tags, v.CreatedAt, v.ExternalLink, v.IsFeatured,
		v.Likes, v.Views,
	)
	return err
}

// Upsert mirrors a remote catalog entry, keyed by public id.
func (r *VideoRepo) Upsert(ctx context.Context, v *models.Video) error {
	query := `INSERT INTO videos (id, public_id, video_url, poster_url, type, title, category, tags, created_at, external_link, is_featured, likes, views)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13)
		ON CONFLICT (public_id) DO UPDATE SET
			video_url = EXCLUDED.video_url,
			poster_url = EXCLUDED.poster_url,
			type = EXCLUDED.type,
			title = EXCLUDED.title,
			category = EXCLUDED.category,
			tags = EXCLUDED.tags,
			external_link = EXCLUDED.external_link,
			is_featured = EXCLUDED.is_featured,
			likes = EXCLUDED.likes,
			views = EXCLUDED.views`

	_, err := r.pool.Exec(ctx, query,
		v.ID, v.PublicID, v.VideoURL, v.PosterURL, v.Type, v.Title,
		v.Category, v.Tags, v.CreatedAt, v.ExternalLink, v.IsFeatured,
		v.Likes, v.Views,
	)
	return err
}

func (r *VideoRepo) Update(ctx context.Context, v *models.Video) error {
	query := `UPDATE videos SET title = $1, category = $2, tags = $3, external_link = $4, is_featured = $5 WHERE id = $6`
	_, err := r.pool.Exec(ctx, query, v.Title, v.Category, v.Tags, v.ExternalLink, v.IsFeatured, v.ID)
	return err
}

func (r *VideoRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM videos WHERE id = $1", id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

// GetByAnyID resolves a video by either key the client may hold.
func (r *VideoRepo) GetByAnyID(ctx context.Context, id string) (*models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos WHERE id = $1 OR public_id = $1`
	return scanVideo(r.pool.QueryRow(ctx, query, id))
}

// List returns the catalog newest first, optionally filtered by a
// title/category substring.
func (r *VideoRepo) List(ctx context.Context, search string) ([]models.Video, error) {
	query := `SELECT ` + videoColumns + ` FROM videos`
	args := []interface{}{}
	if search != "" {
		query += ` WHERE title ILIKE $1 OR category ILIKE $1`
		args = append(args, "%"+search+"%")
	}
	query += ` ORDER BY created_at DESC NULLS LAST`

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	videos := []models.Video{}
	for rows.Next() {
		v, err := scanVideo(rows)
		if err != nil {
			return nil, err
		}
		videos = append(videos, *v)
	}
	return videos, rows.Err()
}
