package usecase

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

func TestSnapshotExporter_Export_UploadsJSONSnapshot(t *testing.T) {
	videos := &mockVideoRepository{
		listAllFn: func(ctx context.Context) ([]*model.Video, error) {
			return []*model.Video{{Title: "a"}, {Title: "b"}}, nil
		},
	}
	var uploadedKey string
	var uploadedContentType string
	var uploadedBody []byte
	storage := &mockObjectStorage{
		uploadFn: func(ctx context.Context, key string, reader io.Reader, contentType string) error {
			uploadedKey = key
			uploadedContentType = contentType
			body, err := io.ReadAll(reader)
			if err != nil {
				t.Fatalf("read upload body: %v", err)
			}
			uploadedBody = body
			return nil
		},
	}
	rateGate := &mockRateGate{}

	exporter := NewSnapshotExporter(videos, &mockWatchHistoryRepository{}, storage, rateGate, time.Hour)

	if err := exporter.Export(context.Background(), "Video"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if !strings.HasPrefix(uploadedKey, "exports/video_") || !strings.HasSuffix(uploadedKey, ".json") {
		t.Errorf("key = %s, want exports/video_*.json", uploadedKey)
	}
	if uploadedContentType != "application/json" {
		t.Errorf("contentType = %s, want application/json", uploadedContentType)
	}
	if !strings.Contains(string(uploadedBody), `"a"`) || !strings.Contains(string(uploadedBody), `"b"`) {
		t.Errorf("body = %s, want both video titles present", uploadedBody)
	}
}

func TestSnapshotExporter_Export_SkippedWhenWindowAlreadyClaimed(t *testing.T) {
	var uploadCalled bool
	storage := &mockObjectStorage{
		uploadFn: func(ctx context.Context, key string, reader io.Reader, contentType string) error {
			uploadCalled = true
			return nil
		},
	}
	rateGate := &mockRateGate{
		admitFn: func(ctx context.Context, key string, window time.Duration) (bool, error) {
			return false, nil
		},
	}

	exporter := NewSnapshotExporter(&mockVideoRepository{}, &mockWatchHistoryRepository{}, storage, rateGate, time.Hour)

	if err := exporter.Export(context.Background(), "Video"); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if uploadCalled {
		t.Error("expected upload to be skipped when the rate gate denies admission")
	}
}

func TestSnapshotExporter_Export_UnknownEntity(t *testing.T) {
	exporter := NewSnapshotExporter(&mockVideoRepository{}, &mockWatchHistoryRepository{}, &mockObjectStorage{}, &mockRateGate{}, time.Hour)

	err := exporter.Export(context.Background(), "NotARealEntity")
	if !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("error = %v, want ErrEntityNotFound", err)
	}
}

func TestSnapshotExporter_HandleJob_DispatchesByEntityName(t *testing.T) {
	var queried bool
	history := &mockWatchHistoryRepository{
		listAllFn: func(ctx context.Context) ([]*model.WatchHistory, error) {
			queried = true
			return nil, nil
		},
	}

	exporter := NewSnapshotExporter(&mockVideoRepository{}, history, &mockObjectStorage{}, &mockRateGate{}, time.Hour)

	job := repository.Job{Kind: repository.KindExportSnapshot, EntityName: "WatchHistory"}
	if err := exporter.HandleJob(context.Background(), job); err != nil {
		t.Fatalf("HandleJob() error = %v", err)
	}
	if !queried {
		t.Error("expected the WatchHistory snapshotter to run")
	}
}

func TestSnapshotExporter_ExportEntityNames_IncludesBothEntities(t *testing.T) {
	exporter := NewSnapshotExporter(&mockVideoRepository{}, &mockWatchHistoryRepository{}, &mockObjectStorage{}, &mockRateGate{}, time.Hour)

	names := exporter.ExportEntityNames()
	want := map[string]bool{"Video": true, "WatchHistory": true}
	if len(names) != len(want) {
		t.Fatalf("got %d entity names, want %d", len(names), len(want))
	}
	for _, n := range names {
		if !want[n] {
			t.Errorf("unexpected entity name %q", n)
		}
	}
}
