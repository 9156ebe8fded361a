package model

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

// Status represents the processing state of a video during ingestion.
type Status string

const (
	StatusPending Status = "PENDING"
	StatusProbed  Status = "PROBED"
	StatusReady   Status = "READY"
	StatusFailed  Status = "FAILED"
)

// Valid status transitions:
// PENDING -Probe ok-> PROBED -(Thumb ok and HLS ok)-> READY
//    |                    |
//    +-fatal-> FAILED <---+
var validTransitions = map[Status][]Status{
	StatusPending: {StatusProbed, StatusFailed},
	StatusProbed:  {StatusReady, StatusFailed},
	StatusReady:   {},
	StatusFailed:  {},
}

func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProbed, StatusReady, StatusFailed:
		return true
	default:
		return false
	}
}

func (s Status) CanTransitionTo(next Status) bool {
	allowed, exists := validTransitions[s]
	if !exists {
		return false
	}
	for _, status := range allowed {
		if status == next {
			return true
		}
	}
	return false
}

func (s Status) String() string {
	return string(s)
}

// Video represents a video entity in the domain. SourceKey is set at
// creation and is read-only thereafter; Duration, ThumbnailKey and
// HLSMasterKey become non-null independently as pipeline stages
// complete.
type Video struct {
	ID        uuid.UUID
	UserID    uuid.UUID
	Title     string
	Genre     string
	Status    Status
	SourceKey string

	Duration     *int
	ThumbnailKey string
	HLSMasterKey string

	CreatedAt time.Time
	UpdatedAt time.Time
}

var (
	ErrEmptyTitle        = errors.New("title cannot be empty")
	ErrInvalidUserID     = errors.New("user ID cannot be nil")
	ErrInvalidTransition = errors.New("invalid status transition")
	ErrTitleTooLong      = errors.New("title exceeds maximum length of 255 characters")
	ErrEmptySourceKey    = errors.New("source key cannot be empty")
)

const maxTitleLength = 255

// NewVideo creates a new Video with PENDING status, identity by the
// upload that created it.
func NewVideo(userID uuid.UUID, title, genre, sourceKey string) (*Video, error) {
	if userID == uuid.Nil {
		return nil, ErrInvalidUserID
	}
	if title == "" {
		return nil, ErrEmptyTitle
	}
	if len(title) > maxTitleLength {
		return nil, ErrTitleTooLong
	}
	if sourceKey == "" {
		return nil, ErrEmptySourceKey
	}

	now := time.Now()
	return &Video{
		ID:        uuid.New(),
		UserID:    userID,
		Title:     title,
		Genre:     genre,
		Status:    StatusPending,
		SourceKey: sourceKey,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// TransitionTo attempts to change the video status.
// Returns error if the transition is not allowed.
func (v *Video) TransitionTo(next Status) error {
	if !next.IsValid() {
		return ErrInvalidTransition
	}
	if !v.Status.CanTransitionTo(next) {
		return ErrInvalidTransition
	}
	v.Status = next
	v.UpdatedAt = time.Now()
	return nil
}

// SetDuration records the probed duration in whole seconds.
func (v *Video) SetDuration(seconds int) {
	v.Duration = &seconds
	v.UpdatedAt = time.Now()
}

// SetThumbnailKey records the storage key of the generated poster image.
func (v *Video) SetThumbnailKey(key string) {
	v.ThumbnailKey = key
	v.UpdatedAt = time.Now()
}

// SetHLSMasterKey records the storage key of the generated HLS master playlist.
func (v *Video) SetHLSMasterKey(key string) {
	v.HLSMasterKey = key
	v.UpdatedAt = time.Now()
}

// AllAssetsReady reports whether every derived artifact has been produced.
// READY is the derived predicate that all three fields are populated.
func (v *Video) AllAssetsReady() bool {
	return v.Duration != nil && v.ThumbnailKey != "" && v.HLSMasterKey != ""
}

// IsReady returns true if the video is ready for streaming.
func (v *Video) IsReady() bool {
	return v.Status == StatusReady
}

// IsFailed returns true if the video processing failed.
func (v *Video) IsFailed() bool {
	return v.Status == StatusFailed
}
