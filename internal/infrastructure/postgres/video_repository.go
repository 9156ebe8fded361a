package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// DBTX is an interface that abstracts pgxpool.Pool and pgx.Tx for testability.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// VideoRepository implements repository.VideoRepository using PostgreSQL.
type VideoRepository struct {
	db DBTX
}

// NewVideoRepository creates a new VideoRepository instance.
func NewVideoRepository(db DBTX) *VideoRepository {
	return &VideoRepository{db: db}
}

// Create persists a new video entity.
func (r *VideoRepository) Create(ctx context.Context, video *model.Video) error {
	const query = `
		INSERT INTO videos (id, user_id, title, genre, status, source_key, duration, thumbnail_key, hls_master_key, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
	`

	_, err := r.db.Exec(ctx, query,
		video.ID,
		video.UserID,
		video.Title,
		video.Genre,
		video.Status.String(),
		video.SourceKey,
		video.Duration,
		nullString(video.ThumbnailKey),
		nullString(video.HLSMasterKey),
		video.CreatedAt,
		video.UpdatedAt,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return repository.ErrDuplicateVideo
		}
		return fmt.Errorf("failed to create video: %w", err)
	}

	return nil
}

// GetByID retrieves a video by its unique identifier.
func (r *VideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	const query = `
		SELECT id, user_id, title, genre, status, source_key, duration, thumbnail_key, hls_master_key, created_at, updated_at
		FROM videos
		WHERE id = $1
	`

	video, err := scanVideo(r.db.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repository.ErrVideoNotFound
		}
		return nil, fmt.Errorf("failed to get video by ID: %w", err)
	}

	return video, nil
}

// GetByUserID retrieves all videos belonging to a user.
func (r *VideoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Video, error) {
	const query = `
		SELECT id, user_id, title, genre, status, source_key, duration, thumbnail_key, hls_master_key, created_at, updated_at
		FROM videos
		WHERE user_id = $1
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query videos by user ID: %w", err)
	}
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideoFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// ListAll retrieves every video record, for the analytics exporter.
func (r *VideoRepository) ListAll(ctx context.Context) ([]*model.Video, error) {
	const query = `
		SELECT id, user_id, title, genre, status, source_key, duration, thumbnail_key, hls_master_key, created_at, updated_at
		FROM videos
		ORDER BY created_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all videos: %w", err)
	}
	defer rows.Close()

	var videos []*model.Video
	for rows.Next() {
		video, err := scanVideoFromRows(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan video: %w", err)
		}
		videos = append(videos, video)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating videos: %w", err)
	}

	return videos, nil
}

// Update persists changes to every mutable field of an existing video.
func (r *VideoRepository) Update(ctx context.Context, video *model.Video) error {
	const query = `
		UPDATE videos
		SET title = $2, genre = $3, status = $4, duration = $5, thumbnail_key = $6, hls_master_key = $7, updated_at = $8
		WHERE id = $1
	`

	video.UpdatedAt = time.Now()

	tag, err := r.db.Exec(ctx, query,
		video.ID,
		video.Title,
		video.Genre,
		video.Status.String(),
		video.Duration,
		nullString(video.ThumbnailKey),
		nullString(video.HLSMasterKey),
		video.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to update video: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// UpdateStatus updates only the status field of a video.
func (r *VideoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	const query = `
		UPDATE videos
		SET status = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, status.String(), time.Now())
	if err != nil {
		return fmt.Errorf("failed to update video status: %w", err)
	}

	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}

	return nil
}

// SetDuration updates only the duration column, so a concurrent
// sibling stage writing thumbnail_key or hls_master_key commutes with
// this write instead of racing it.
func (r *VideoRepository) SetDuration(ctx context.Context, id uuid.UUID, seconds int) error {
	const query = `
		UPDATE videos
		SET duration = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, seconds, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set video duration: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

// SetThumbnailKey updates only the thumbnail_key column.
func (r *VideoRepository) SetThumbnailKey(ctx context.Context, id uuid.UUID, key string) error {
	const query = `
		UPDATE videos
		SET thumbnail_key = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, key, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set thumbnail key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

// SetHLSMasterKey updates only the hls_master_key column.
func (r *VideoRepository) SetHLSMasterKey(ctx context.Context, id uuid.UUID, key string) error {
	const query = `
		UPDATE videos
		SET hls_master_key = $2, updated_at = $3
		WHERE id = $1
	`

	tag, err := r.db.Exec(ctx, query, id, key, time.Now())
	if err != nil {
		return fmt.Errorf("failed to set hls master key: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

// Delete removes a video record.
func (r *VideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM videos WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete video: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrVideoNotFound
	}
	return nil
}

// scanVideo scans a single row into a Video model.
func scanVideo(row pgx.Row) (*model.Video, error) {
	var (
		video        model.Video
		status       string
		duration     *int
		thumbnailKey *string
		hlsMasterKey *string
	)

	err := row.Scan(
		&video.ID,
		&video.UserID,
		&video.Title,
		&video.Genre,
		&status,
		&video.SourceKey,
		&duration,
		&thumbnailKey,
		&hlsMasterKey,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	hydrateVideo(&video, status, duration, thumbnailKey, hlsMasterKey)
	return &video, nil
}

// scanVideoFromRows scans from pgx.Rows into a Video model.
func scanVideoFromRows(rows pgx.Rows) (*model.Video, error) {
	var (
		video        model.Video
		status       string
		duration     *int
		thumbnailKey *string
		hlsMasterKey *string
	)

	err := rows.Scan(
		&video.ID,
		&video.UserID,
		&video.Title,
		&video.Genre,
		&status,
		&video.SourceKey,
		&duration,
		&thumbnailKey,
		&hlsMasterKey,
		&video.CreatedAt,
		&video.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	hydrateVideo(&video, status, duration, thumbnailKey, hlsMasterKey)
	return &video, nil
}

func hydrateVideo(video *model.Video, status string, duration *int, thumbnailKey, hlsMasterKey *string) {
	video.Status = model.Status(status)
	video.Duration = duration
	if thumbnailKey != nil {
		video.ThumbnailKey = *thumbnailKey
	}
	if hlsMasterKey != nil {
		video.HLSMasterKey = *hlsMasterKey
	}
}

// nullString returns nil for empty strings, otherwise returns a pointer to the string.
func nullString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}

// Compile-time verification that VideoRepository implements repository.VideoRepository.
var _ repository.VideoRepository = (*VideoRepository)(nil)
