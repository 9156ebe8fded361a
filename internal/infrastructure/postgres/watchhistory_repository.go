package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// WatchHistoryRepository implements repository.WatchHistoryRepository
// using PostgreSQL. The (user_id, video_id) uniqueness invariant is
// enforced by a unique index; Upsert is the only write path and
// relies on it via ON CONFLICT.
type WatchHistoryRepository struct {
	db DBTX
}

// NewWatchHistoryRepository creates a new WatchHistoryRepository instance.
func NewWatchHistoryRepository(db DBTX) *WatchHistoryRepository {
	return &WatchHistoryRepository{db: db}
}

// Upsert inserts or updates the watch-progress row for (userID, videoID).
// The xmax = 0 trick distinguishes a fresh insert from an update
// within a single round trip to the database.
func (r *WatchHistoryRepository) Upsert(ctx context.Context, userID, videoID uuid.UUID, progress int) (*model.WatchHistory, bool, error) {
	const query = `
		INSERT INTO watch_history (id, user_id, video_id, progress_seconds, updated_at)
		VALUES ($1, $2, $3, $4, now())
		ON CONFLICT (user_id, video_id) DO UPDATE
		SET progress_seconds = EXCLUDED.progress_seconds, updated_at = EXCLUDED.updated_at
		RETURNING id, user_id, video_id, progress_seconds, updated_at, (xmax = 0) AS inserted
	`

	var (
		row     model.WatchHistory
		created bool
	)
	err := r.db.QueryRow(ctx, query, uuid.New(), userID, videoID, progress).Scan(
		&row.ID, &row.UserID, &row.VideoID, &row.ProgressSeconds, &row.UpdatedAt, &created,
	)
	if err != nil {
		return nil, false, fmt.Errorf("failed to upsert watch history: %w", err)
	}

	return &row, created, nil
}

// ListForUser returns every row for userID, optionally filtered to a
// single video, newest first.
func (r *WatchHistoryRepository) ListForUser(ctx context.Context, userID uuid.UUID, videoID *uuid.UUID) ([]*model.WatchHistory, error) {
	query := `
		SELECT id, user_id, video_id, progress_seconds, updated_at
		FROM watch_history
		WHERE user_id = $1
	`
	args := []any{userID}
	if videoID != nil {
		query += " AND video_id = $2"
		args = append(args, *videoID)
	}
	query += " ORDER BY updated_at DESC"

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query watch history: %w", err)
	}
	defer rows.Close()

	var history []*model.WatchHistory
	for rows.Next() {
		var row model.WatchHistory
		if err := rows.Scan(&row.ID, &row.UserID, &row.VideoID, &row.ProgressSeconds, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch history row: %w", err)
		}
		history = append(history, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watch history: %w", err)
	}

	return history, nil
}

// ListAll retrieves every watch-history row, for the analytics exporter.
func (r *WatchHistoryRepository) ListAll(ctx context.Context) ([]*model.WatchHistory, error) {
	const query = `
		SELECT id, user_id, video_id, progress_seconds, updated_at
		FROM watch_history
		ORDER BY updated_at DESC
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query all watch history: %w", err)
	}
	defer rows.Close()

	var history []*model.WatchHistory
	for rows.Next() {
		var row model.WatchHistory
		if err := rows.Scan(&row.ID, &row.UserID, &row.VideoID, &row.ProgressSeconds, &row.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watch history row: %w", err)
		}
		history = append(history, &row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watch history: %w", err)
	}

	return history, nil
}

// Delete removes a row by its ID.
func (r *WatchHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	const query = `DELETE FROM watch_history WHERE id = $1`

	tag, err := r.db.Exec(ctx, query, id)
	if err != nil {
		return fmt.Errorf("failed to delete watch history: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repository.ErrWatchHistoryNotFound
	}
	return nil
}

var _ repository.WatchHistoryRepository = (*WatchHistoryRepository)(nil)
