package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// WatchHistory records how far a user has progressed into a video.
// At most one row exists per (UserID, VideoID) pair; Upsert is the
// only write path that creates or advances one.
type WatchHistory struct {
	ID              uuid.UUID
	UserID          uuid.UUID
	VideoID         uuid.UUID
	ProgressSeconds int
	UpdatedAt       time.Time
}

var (
	// ErrProgressExceedsDuration is returned when progress exceeds a
	// video's known duration.
	ErrProgressExceedsDuration = errors.New("progress exceeds video duration")

	// ErrNegativeProgress is returned for a progress value below zero.
	ErrNegativeProgress = errors.New("progress cannot be negative")

	// ErrForbidden is returned when a non-admin actor attempts a
	// privileged operation.
	ErrForbidden = errors.New("actor lacks required privilege")
)

// ValidateProgress checks the progress bound against a video's
// duration. duration is nil when the video has not yet been probed,
// in which case any non-negative progress is accepted.
func ValidateProgress(progress int, duration *int) error {
	if progress < 0 {
		return ErrNegativeProgress
	}
	if duration != nil && progress > *duration {
		return ErrProgressExceedsDuration
	}
	return nil
}

// NewWatchHistory constructs a WatchHistory row for an initial insert.
func NewWatchHistory(userID, videoID uuid.UUID, progress int) *WatchHistory {
	return &WatchHistory{
		ID:              uuid.New(),
		UserID:          userID,
		VideoID:         videoID,
		ProgressSeconds: progress,
		UpdatedAt:       time.Now(),
	}
}
