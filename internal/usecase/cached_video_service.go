package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
	"github.com/hszk-dev/gostream/internal/infrastructure/cache"
	"github.com/hszk-dev/gostream/internal/infrastructure/metrics"
	"golang.org/x/sync/singleflight"
)

// CachedVideoServiceConfig holds configuration for CachedVideoService.
type CachedVideoServiceConfig struct {
	// CacheTTL is the TTL for cached video metadata.
	CacheTTL time.Duration
	// PresignTTL is the TTL used for GetPlaybackURLs presigns.
	PresignTTL time.Duration
}

// DefaultCachedVideoServiceConfig returns the default configuration.
func DefaultCachedVideoServiceConfig() CachedVideoServiceConfig {
	return CachedVideoServiceConfig{
		CacheTTL:   5 * time.Minute,
		PresignTTL: time.Hour,
	}
}

// cachedVideoService wraps VideoService with caching capabilities.
// It implements the decorator pattern to add caching without modifying the original service.
type cachedVideoService struct {
	delegate VideoService
	storage  repository.ObjectStorage
	cache    cache.VideoCache
	sfGroup  singleflight.Group

	cacheTTL   time.Duration
	presignTTL time.Duration
}

// NewCachedVideoService creates a new CachedVideoService wrapping the provided VideoService.
func NewCachedVideoService(
	delegate VideoService,
	storage repository.ObjectStorage,
	videoCache cache.VideoCache,
	cfg CachedVideoServiceConfig,
) VideoService {
	return &cachedVideoService{
		delegate:   delegate,
		storage:    storage,
		cache:      videoCache,
		cacheTTL:   cfg.CacheTTL,
		presignTTL: cfg.PresignTTL,
	}
}

// CreateVideo delegates to the underlying service.
// No caching for create operations - the video is immediately returned.
func (s *cachedVideoService) CreateVideo(ctx context.Context, input CreateVideoInput) (*CreateVideoOutput, error) {
	return s.delegate.CreateVideo(ctx, input)
}

// TriggerProcess invalidates the cache and delegates to the underlying service.
// Cache invalidation happens before processing to ensure stale data is not served
// during the transition out of PENDING.
func (s *cachedVideoService) TriggerProcess(ctx context.Context, videoID uuid.UUID) error {
	if err := s.cache.Delete(ctx, videoID); err != nil {
		slog.Warn("failed to invalidate cache on trigger process",
			"video_id", videoID,
			"error", err,
		)
	}

	return s.delegate.TriggerProcess(ctx, videoID)
}

// DeleteVideo invalidates the cache and delegates to the underlying service.
func (s *cachedVideoService) DeleteVideo(ctx context.Context, videoID uuid.UUID) error {
	if err := s.delegate.DeleteVideo(ctx, videoID); err != nil {
		return err
	}
	if err := s.cache.Delete(ctx, videoID); err != nil {
		slog.Warn("failed to invalidate cache on delete video",
			"video_id", videoID,
			"error", err,
		)
	}
	return nil
}

// GetVideo retrieves video information with caching.
// Uses singleflight to prevent cache stampede on concurrent requests for the same video.
func (s *cachedVideoService) GetVideo(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	video, err := s.getVideoCoalesced(ctx, videoID)
	if err != nil {
		return nil, err
	}
	return video, nil
}

// GetPlaybackURLs reuses the cached video read, then presigns whichever
// derived artifacts exist. Presigned URLs themselves are never cached.
func (s *cachedVideoService) GetPlaybackURLs(ctx context.Context, videoID uuid.UUID) (*PlaybackURLs, error) {
	video, err := s.getVideoCoalesced(ctx, videoID)
	if err != nil {
		return nil, err
	}

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

// getVideoCoalesced uses singleflight to prevent cache stampede on
// concurrent requests for the same video.
func (s *cachedVideoService) getVideoCoalesced(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	key := videoID.String()
	result, err, shared := s.sfGroup.Do(key, func() (any, error) {
		return s.getVideoWithCache(ctx, videoID)
	})

	if shared {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightShared).Inc()
	} else {
		metrics.SingleflightRequestsTotal.WithLabelValues(metrics.SingleflightInitiated).Inc()
	}

	if err != nil {
		return nil, err
	}
	return result.(*model.Video), nil
}

// getVideoWithCache implements the cache-aside pattern.
func (s *cachedVideoService) getVideoWithCache(ctx context.Context, videoID uuid.UUID) (*model.Video, error) {
	video, err := s.cache.Get(ctx, videoID)
	if err != nil {
		slog.Warn("cache get failed, falling back to database",
			"video_id", videoID,
			"error", err,
		)
	}

	if video != nil {
		return video, nil // Cache hit
	}

	video, err = s.delegate.GetVideo(ctx, videoID)
	if err != nil {
		return nil, err
	}

	if err := s.cache.Set(ctx, video, s.cacheTTL); err != nil {
		slog.Warn("failed to cache video",
			"video_id", videoID,
			"error", err,
		)
	}

	return video, nil
}
