package usecase

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// IdentityContext carries the calling actor's identity into an
// operation explicitly, rather than consulting a process-wide
// current-user. Every WatchProgressService method takes one.
type IdentityContext struct {
	UserID  uuid.UUID
	IsAdmin bool
}

// WatchProgressService defines the business logic for per-user
// watch-progress tracking.
type WatchProgressService interface {
	// UpdateProgress upserts the caller's progress for a video,
	// enforcing the progress-vs-duration bound.
	UpdateProgress(ctx context.Context, identity IdentityContext, videoID uuid.UUID, progress int) (*model.WatchHistory, error)

	// ListForUser returns the caller's own rows, newest updatedAt
	// first, optionally filtered to one video.
	ListForUser(ctx context.Context, identity IdentityContext, videoID *uuid.UUID) ([]*model.WatchHistory, error)

	// Delete removes a row. Only an admin identity may do this;
	// anyone else gets model.ErrForbidden.
	Delete(ctx context.Context, identity IdentityContext, id uuid.UUID) error
}

type watchProgressService struct {
	watchHistory repository.WatchHistoryRepository
	videos       repository.VideoRepository
}

// NewWatchProgressService creates a new WatchProgressService.
func NewWatchProgressService(
	watchHistory repository.WatchHistoryRepository,
	videos repository.VideoRepository,
) WatchProgressService {
	return &watchProgressService{
		watchHistory: watchHistory,
		videos:       videos,
	}
}

func (s *watchProgressService) UpdateProgress(ctx context.Context, identity IdentityContext, videoID uuid.UUID, progress int) (*model.WatchHistory, error) {
	video, err := s.videos.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := model.ValidateProgress(progress, video.Duration); err != nil {
		return nil, err
	}

	row, _, err := s.watchHistory.Upsert(ctx, identity.UserID, videoID, progress)
	if err != nil {
		return nil, fmt.Errorf("upsert watch history: %w", err)
	}
	return row, nil
}

func (s *watchProgressService) ListForUser(ctx context.Context, identity IdentityContext, videoID *uuid.UUID) ([]*model.WatchHistory, error) {
	return s.watchHistory.ListForUser(ctx, identity.UserID, videoID)
}

func (s *watchProgressService) Delete(ctx context.Context, identity IdentityContext, id uuid.UUID) error {
	if !identity.IsAdmin {
		return model.ErrForbidden
	}
	return s.watchHistory.Delete(ctx, id)
}
