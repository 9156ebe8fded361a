package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/repository"
)

// Snapshotter produces a JSON snapshot of one entity's full table for
// the analytics exporter.
type Snapshotter interface {
	Name() string
	Snapshot(ctx context.Context) ([]byte, error)
}

// videoSnapshotter dumps every video record.
type videoSnapshotter struct {
	videos repository.VideoRepository
}

func (s *videoSnapshotter) Name() string { return "Video" }

func (s *videoSnapshotter) Snapshot(ctx context.Context) ([]byte, error) {
	rows, err := s.videos.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list videos: %w", err)
	}
	return json.Marshal(rows)
}

// watchHistorySnapshotter dumps every watch-progress record.
type watchHistorySnapshotter struct {
	watchHistory repository.WatchHistoryRepository
}

func (s *watchHistorySnapshotter) Name() string { return "WatchHistory" }

func (s *watchHistorySnapshotter) Snapshot(ctx context.Context) ([]byte, error) {
	rows, err := s.watchHistory.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list watch history: %w", err)
	}
	return json.Marshal(rows)
}

// RateGate admits at most one caller per key within a time bucket.
// Satisfied by *cache.RateGate.
type RateGate interface {
	Admit(ctx context.Context, key string, window time.Duration) (bool, error)
}

// ErrEntityNotFound is returned when ExportSnapshot names an entity no
// Snapshotter is registered for.
var ErrEntityNotFound = fmt.Errorf("exporter: unknown entity")

// SnapshotExporter writes a JSON snapshot of an entity's table to
// object storage on an hourly cadence, throttled by RateGate so a
// scheduler misfire or a backlog of retried jobs can't produce more
// than one export per entity per window.
type SnapshotExporter struct {
	snapshotters map[string]Snapshotter
	storage      repository.ObjectStorage
	rateGate     RateGate
	window       time.Duration
}

// NewSnapshotExporter wires the Video and WatchHistory snapshotters.
func NewSnapshotExporter(
	videos repository.VideoRepository,
	watchHistory repository.WatchHistoryRepository,
	storage repository.ObjectStorage,
	rateGate RateGate,
	window time.Duration,
) *SnapshotExporter {
	vs := &videoSnapshotter{videos: videos}
	ws := &watchHistorySnapshotter{watchHistory: watchHistory}
	return &SnapshotExporter{
		snapshotters: map[string]Snapshotter{
			vs.Name(): vs,
			ws.Name(): ws,
		},
		storage:  storage,
		rateGate: rateGate,
		window:   window,
	}
}

// Export snapshots entityName and uploads it, unless another caller
// already claimed this window's export for the same entity.
func (e *SnapshotExporter) Export(ctx context.Context, entityName string) error {
	snapshotter, ok := e.snapshotters[entityName]
	if !ok {
		return fmt.Errorf("%w: %s", ErrEntityNotFound, entityName)
	}

	admitted, err := e.rateGate.Admit(ctx, "export:"+entityName, e.window)
	if err != nil {
		return fmt.Errorf("rate gate: %w", err)
	}
	if !admitted {
		slog.Info("export skipped, already claimed this window", "entity", entityName)
		return nil
	}

	data, err := snapshotter.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("snapshot %s: %w", entityName, err)
	}

	key := exportKey(entityName)
	if err := e.storage.Upload(ctx, key, bytes.NewReader(data), "application/json"); err != nil {
		slog.Error("export upload failed", "entity", entityName, "key", key, "error", err)
		return fmt.Errorf("upload export: %w", err)
	}

	slog.Info("export successful", "entity", entityName, "key", key, "rows_bytes", len(data))
	return nil
}

// HandleJob dispatches a KindExportSnapshot job to Export by its
// EntityName. The caller (worker pool) must only route jobs of this
// kind here.
func (e *SnapshotExporter) HandleJob(ctx context.Context, job repository.Job) error {
	return e.Export(ctx, job.EntityName)
}

// ExportEntityNames returns every registered entity, for the
// scheduler to register one periodic export job per entity.
func (e *SnapshotExporter) ExportEntityNames() []string {
	names := make([]string, 0, len(e.snapshotters))
	for name := range e.snapshotters {
		names = append(names, name)
	}
	return names
}

// exportKey mirrors the source exporter's timestamped, randomized path
// convention: exports/{entity}_{yyyy-mm-dd_hh-mm-ss}_{rand8}.json
func exportKey(entityName string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	randID := strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
	return fmt.Sprintf("exports/%s_%s_%s.json", strings.ToLower(entityName), timestamp, randID)
}
