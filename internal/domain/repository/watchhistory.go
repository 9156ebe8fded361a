package repository

import (
	"context"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
)

// WatchHistoryRepository defines the interface for watch-progress
// persistence. Implementations must enforce the uniqueness invariant
// on (UserID, VideoID) at the storage layer; Upsert is the only write
// path.
type WatchHistoryRepository interface {
	// Upsert inserts a new row for (userID, videoID) or updates the
	// progress and updatedAt of the existing one. created reports
	// whether a new row was inserted.
	Upsert(ctx context.Context, userID, videoID uuid.UUID, progress int) (row *model.WatchHistory, created bool, err error)

	// ListForUser returns every row for userID, optionally filtered to
	// a single video, sorted by UpdatedAt descending.
	ListForUser(ctx context.Context, userID uuid.UUID, videoID *uuid.UUID) ([]*model.WatchHistory, error)

	// ListAll retrieves every watch-history row, for the analytics
	// exporter's snapshot sweep. Returns empty slice if none exist.
	ListAll(ctx context.Context) ([]*model.WatchHistory, error)

	// Delete removes a row by its ID. Returns ErrWatchHistoryNotFound
	// if no such row exists.
	Delete(ctx context.Context, id uuid.UUID) error
}
