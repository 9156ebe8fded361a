package usecase

import (
	"context"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// mockVideoRepository provides a configurable mock for VideoRepository.
type mockVideoRepository struct {
	createFn       func(ctx context.Context, video *model.Video) error
	getByIDFn      func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	getByUserIDFn  func(ctx context.Context, userID uuid.UUID) ([]*model.Video, error)
	listAllFn      func(ctx context.Context) ([]*model.Video, error)
	updateFn       func(ctx context.Context, video *model.Video) error
	updateStatusFn func(ctx context.Context, id uuid.UUID, status model.Status) error
	setDurationFn  func(ctx context.Context, id uuid.UUID, seconds int) error
	setThumbnailFn func(ctx context.Context, id uuid.UUID, key string) error
	setHLSMasterFn func(ctx context.Context, id uuid.UUID, key string) error
	deleteFn       func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVideoRepository) Create(ctx context.Context, video *model.Video) error {
	if m.createFn != nil {
		return m.createFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) GetByID(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVideoRepository) GetByUserID(ctx context.Context, userID uuid.UUID) ([]*model.Video, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockVideoRepository) ListAll(ctx context.Context) ([]*model.Video, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockVideoRepository) Update(ctx context.Context, video *model.Video) error {
	if m.updateFn != nil {
		return m.updateFn(ctx, video)
	}
	return nil
}

func (m *mockVideoRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.Status) error {
	if m.updateStatusFn != nil {
		return m.updateStatusFn(ctx, id, status)
	}
	return nil
}

func (m *mockVideoRepository) SetDuration(ctx context.Context, id uuid.UUID, seconds int) error {
	if m.setDurationFn != nil {
		return m.setDurationFn(ctx, id, seconds)
	}
	return nil
}

func (m *mockVideoRepository) SetThumbnailKey(ctx context.Context, id uuid.UUID, key string) error {
	if m.setThumbnailFn != nil {
		return m.setThumbnailFn(ctx, id, key)
	}
	return nil
}

func (m *mockVideoRepository) SetHLSMasterKey(ctx context.Context, id uuid.UUID, key string) error {
	if m.setHLSMasterFn != nil {
		return m.setHLSMasterFn(ctx, id, key)
	}
	return nil
}

func (m *mockVideoRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockWatchHistoryRepository provides a configurable mock for WatchHistoryRepository.
type mockWatchHistoryRepository struct {
	upsertFn      func(ctx context.Context, userID, videoID uuid.UUID, progress int) (*model.WatchHistory, bool, error)
	listForUserFn func(ctx context.Context, userID uuid.UUID, videoID *uuid.UUID) ([]*model.WatchHistory, error)
	listAllFn     func(ctx context.Context) ([]*model.WatchHistory, error)
	deleteFn      func(ctx context.Context, id uuid.UUID) error
}

func (m *mockWatchHistoryRepository) Upsert(ctx context.Context, userID, videoID uuid.UUID, progress int) (*model.WatchHistory, bool, error) {
	if m.upsertFn != nil {
		return m.upsertFn(ctx, userID, videoID, progress)
	}
	return model.NewWatchHistory(userID, videoID, progress), true, nil
}

func (m *mockWatchHistoryRepository) ListForUser(ctx context.Context, userID uuid.UUID, videoID *uuid.UUID) ([]*model.WatchHistory, error) {
	if m.listForUserFn != nil {
		return m.listForUserFn(ctx, userID, videoID)
	}
	return nil, nil
}

func (m *mockWatchHistoryRepository) ListAll(ctx context.Context) ([]*model.WatchHistory, error) {
	if m.listAllFn != nil {
		return m.listAllFn(ctx)
	}
	return nil, nil
}

func (m *mockWatchHistoryRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

// mockObjectStorage provides a configurable mock for ObjectStorage.
type mockObjectStorage struct {
	generatePresignedUploadURLFn   func(ctx context.Context, key string, expiry time.Duration) (string, error)
	generatePresignedDownloadURLFn func(ctx context.Context, key string, expiry time.Duration) (string, error)
	uploadFn                       func(ctx context.Context, key string, reader io.Reader, contentType string) error
	downloadFn                     func(ctx context.Context, key string) (io.ReadCloser, error)
	deleteFn                       func(ctx context.Context, key string) error
	deletePrefixFn                 func(ctx context.Context, prefix string) error
	existsFn                       func(ctx context.Context, key string) (bool, error)
}

func (m *mockObjectStorage) GeneratePresignedUploadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedUploadURLFn != nil {
		return m.generatePresignedUploadURLFn(ctx, key, expiry)
	}
	return "http://example.com/upload", nil
}

func (m *mockObjectStorage) GeneratePresignedDownloadURL(ctx context.Context, key string, expiry time.Duration) (string, error) {
	if m.generatePresignedDownloadURLFn != nil {
		return m.generatePresignedDownloadURLFn(ctx, key, expiry)
	}
	return "http://example.com/download", nil
}

func (m *mockObjectStorage) Upload(ctx context.Context, key string, reader io.Reader, contentType string) error {
	if m.uploadFn != nil {
		return m.uploadFn(ctx, key, reader, contentType)
	}
	return nil
}

func (m *mockObjectStorage) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.downloadFn != nil {
		return m.downloadFn(ctx, key)
	}
	return nil, nil
}

func (m *mockObjectStorage) Delete(ctx context.Context, key string) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, key)
	}
	return nil
}

func (m *mockObjectStorage) DeletePrefix(ctx context.Context, prefix string) error {
	if m.deletePrefixFn != nil {
		return m.deletePrefixFn(ctx, prefix)
	}
	return nil
}

func (m *mockObjectStorage) Exists(ctx context.Context, key string) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, key)
	}
	return false, nil
}

// mockMessageQueue provides a configurable mock for MessageQueue.
type mockMessageQueue struct {
	publishFn func(ctx context.Context, job repository.Job) error
	consumeFn func(ctx context.Context, handler func(job repository.Job) error) error
}

func (m *mockMessageQueue) Publish(ctx context.Context, job repository.Job) error {
	if m.publishFn != nil {
		return m.publishFn(ctx, job)
	}
	return nil
}

func (m *mockMessageQueue) Consume(ctx context.Context, handler func(job repository.Job) error) error {
	if m.consumeFn != nil {
		return m.consumeFn(ctx, handler)
	}
	return nil
}

func (m *mockMessageQueue) Close() error {
	return nil
}

// mockProcessTrigger provides a configurable mock for ProcessTrigger.
type mockProcessTrigger struct {
	triggerProcessFn func(ctx context.Context, videoID uuid.UUID) error
}

func (m *mockProcessTrigger) TriggerProcess(ctx context.Context, videoID uuid.UUID) error {
	if m.triggerProcessFn != nil {
		return m.triggerProcessFn(ctx, videoID)
	}
	return nil
}

// mockRateGate provides a configurable mock for RateGate.
type mockRateGate struct {
	admitFn func(ctx context.Context, key string, window time.Duration) (bool, error)
}

func (m *mockRateGate) Admit(ctx context.Context, key string, window time.Duration) (bool, error) {
	if m.admitFn != nil {
		return m.admitFn(ctx, key, window)
	}
	return true, nil
}

// mockVideoCache provides a configurable mock for cache.VideoCache.
type mockVideoCache struct {
	getFn    func(ctx context.Context, id uuid.UUID) (*model.Video, error)
	setFn    func(ctx context.Context, video *model.Video, ttl time.Duration) error
	deleteFn func(ctx context.Context, id uuid.UUID) error
}

func (m *mockVideoCache) Get(ctx context.Context, id uuid.UUID) (*model.Video, error) {
	if m.getFn != nil {
		return m.getFn(ctx, id)
	}
	return nil, nil
}

func (m *mockVideoCache) Set(ctx context.Context, video *model.Video, ttl time.Duration) error {
	if m.setFn != nil {
		return m.setFn(ctx, video, ttl)
	}
	return nil
}

func (m *mockVideoCache) Delete(ctx context.Context, id uuid.UUID) error {
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}
