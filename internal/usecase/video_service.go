package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// ErrVideoAlreadyCompleted reports a processing request for a video that has
// already completed; the HTTP handler maps it to 409 Conflict. videoService
// itself does not return it: TriggerProcess on a video that has left PENDING
// returns nil without doing anything.
var ErrVideoAlreadyCompleted = errors.New("video processing has already completed")

// CreateVideoInput contains the input parameters for creating a video.
type CreateVideoInput struct {
	UserID   uuid.UUID
	Title    string
	Genre    string
	FileName string
}

// CreateVideoOutput contains the result of creating a video.
type CreateVideoOutput struct {
	Video     *model.Video
	UploadURL string
}

// PlaybackURLs holds the presigned URLs GetPlaybackURLs returns. A nil
// field means that artifact hasn't been produced yet.
type PlaybackURLs struct {
	ThumbnailURL      *string
	MasterPlaylistURL *string
}

// ProcessTrigger starts ingestion for a video once its source object has
// been uploaded. Satisfied by *pipeline.Orchestrator; narrowed to this
// single method so usecase doesn't depend on the rest of that package.
type ProcessTrigger interface {
	TriggerProcess(ctx context.Context, videoID uuid.UUID) error
}

// VideoService defines the interface for video business logic operations.
type VideoService interface {
	// CreateVideo creates video metadata and returns a presigned upload URL.
	// The caller (API handler) must invoke TriggerProcess once the upload
	// completes; the pipeline cannot probe a source object that isn't
	// fully written yet.
	CreateVideo(ctx context.Context, input CreateVideoInput) (*CreateVideoOutput, error)

	// TriggerProcess initiates ingestion for an uploaded video. Idempotent
	// per pipeline.Orchestrator.TriggerProcess - a no-op once the video has
	// left PENDING.
	TriggerProcess(ctx context.Context, videoID uuid.UUID) error

	// DeleteVideo removes the video record and enqueues a DeleteAssets GC
	// sweep for whatever derived artifacts it produced. Idempotent: a
	// second call on an already-deleted video succeeds without effect.
	DeleteVideo(ctx context.Context, videoID uuid.UUID) error

	// GetVideo retrieves video information by ID.
	GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error)

	// GetPlaybackURLs returns presigned URLs for the thumbnail and HLS
	// master playlist. A field is nil if that artifact hasn't been
	// produced yet.
	GetPlaybackURLs(ctx context.Context, videoID uuid.UUID) (*PlaybackURLs, error)
}

// VideoServiceConfig holds configuration for VideoService.
type VideoServiceConfig struct {
	UploadURLExpiry time.Duration
	PresignTTL      time.Duration
}

// DefaultVideoServiceConfig returns the default configuration.
func DefaultVideoServiceConfig() VideoServiceConfig {
	return VideoServiceConfig{
		UploadURLExpiry: 15 * time.Minute,
		PresignTTL:      time.Hour,
	}
}

type videoService struct {
	repo         repository.VideoRepository
	storage      repository.ObjectStorage
	queue        repository.MessageQueue
	orchestrator ProcessTrigger

	uploadURLExpiry time.Duration
	presignTTL      time.Duration
}

// NewVideoService creates a new VideoService instance.
func NewVideoService(
	repo repository.VideoRepository,
	storage repository.ObjectStorage,
	queue repository.MessageQueue,
	orchestrator ProcessTrigger,
	cfg VideoServiceConfig,
) VideoService {
	return &videoService{
		repo:            repo,
		storage:         storage,
		queue:           queue,
		orchestrator:    orchestrator,
		uploadURLExpiry: cfg.UploadURLExpiry,
		presignTTL:      cfg.PresignTTL,
	}
}

// CreateVideo creates video metadata and generates a presigned upload URL.
func (s *videoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*CreateVideoOutput, error) {
	videoID := uuid.New()
	key, _ := model.NewSourceKey(input.FileName, time.Now().Unix())

	video, err := model.NewVideo(input.UserID, input.Title, input.Genre, key)
	if err != nil {
		return nil, err
	}
	video.ID = videoID

	uploadURL, err := s.storage.GeneratePresignedUploadURL(ctx, key, s.uploadURLExpiry)
	if err != nil {
		return nil, fmt.Errorf("generate presigned upload URL: %w", err)
	}

	if err := s.repo.Create(ctx, video); err != nil {
		return nil, fmt.Errorf("create video: %w", err)
	}

	return &CreateVideoOutput{
		Video:     video,
		UploadURL: uploadURL,
	}, nil
}

// TriggerProcess delegates to the orchestrator, which owns idempotency.
func (s *videoService) TriggerProcess(ctx context.Context, videoID uuid.UUID) error {
	return s.orchestrator.TriggerProcess(ctx, videoID)
}

// DeleteVideo removes the video record and enqueues the GC sweep for its
// derived artifacts. A video already gone is treated as success.
func (s *videoService) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return nil
		}
		return err
	}

	if err := s.repo.Delete(ctx, videoID); err != nil {
		if errors.Is(err, repository.ErrVideoNotFound) {
			return nil
		}
		return fmt.Errorf("delete video: %w", err)
	}

	return s.queue.Publish(ctx, repository.Job{
		Kind:            repository.KindDeleteAssets,
		VideoID:         videoID,
		Base:            model.BaseFromSourceKey(video.SourceKey),
		DeleteSourceKey: video.SourceKey,
		ThumbnailKey:    video.ThumbnailKey,
		HLSMasterKey:    video.HLSMasterKey,
	})
}

// GetVideo retrieves video information by ID.
func (s *videoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	return s.repo.GetByID(ctx, videoID)
}

// GetPlaybackURLs presigns whichever derived artifacts exist.
func (s *videoService) GetPlaybackURLs(ctx context.Context, videoID uuid.UUID) (*PlaybackURLs, error) {
	video, err := s.repo.GetByID(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return s.presignPlaybackURLs(ctx, video)
}

func (s *videoService) presignPlaybackURLs(ctx context.Context, video *model.Video) (*PlaybackURLs, error) {
	urls := &PlaybackURLs{}

	if video.ThumbnailKey != "" {
		url, err := s.storage.GeneratePresignedDownloadURL(ctx, video.ThumbnailKey, s.presignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign thumbnail: %w", err)
		}
		urls.ThumbnailURL = &url
	}

	if video.HLSMasterKey != "" {
		url, err := s.storage.GeneratePresignedDownloadURL(ctx, video.HLSMasterKey, s.presignTTL)
		if err != nil {
			return nil, fmt.Errorf("presign master playlist: %w", err)
		}
		urls.MasterPlaylistURL = &url
	}

	return urls, nil
}
