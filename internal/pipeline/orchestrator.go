package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/google/uuid"
	"github.com/hszk-dev/gostream/internal/domain/model"
	"github.com/hszk-dev/gostream/internal/domain/repository"
	"github.com/hszk-dev/gostream/internal/infrastructure/cache"
	"github.com/hszk-dev/gostream/internal/infrastructure/metrics"
	"github.com/hszk-dev/gostream/internal/transcoder"
)

// thumbnailAtSecond is the offset into the source video the poster
// frame is captured from.
const thumbnailAtSecond = 5

// Orchestrator decomposes a video's ingestion into independent PROBE,
// THUMBNAIL and TRANSCODE_HLS jobs, tracks their completion against
// the Video's three derived-artifact fields, and classifies stage
// failures into retry-or-fail per §4.1.
type Orchestrator struct {
	videos  repository.VideoRepository
	storage repository.ObjectStorage
	queue   repository.MessageQueue
	cache   cache.VideoCache

	prober     transcoder.Prober
	thumbnails transcoder.ThumbnailExtractor
	renditions transcoder.Transcoder

	tempDir    string
	presignTTL time.Duration
	log        *slog.Logger
}

// Config holds the tunables for an Orchestrator.
type Config struct {
	TempDir string

	// PresignTTL is the expiry used for the presigned segment and
	// variant-playlist URLs baked into uploaded HLS manifests.
	PresignTTL time.Duration
}

// DefaultConfig returns production defaults.
func DefaultConfig() Config {
	return Config{TempDir: os.TempDir(), PresignTTL: time.Hour}
}

// NewOrchestrator wires an Orchestrator's dependencies. cache may be
// nil to disable cache invalidation on status change.
func NewOrchestrator(
	videos repository.VideoRepository,
	storage repository.ObjectStorage,
	queue repository.MessageQueue,
	videoCache cache.VideoCache,
	prober transcoder.Prober,
	thumbnails transcoder.ThumbnailExtractor,
	renditions transcoder.Transcoder,
	cfg Config,
	log *slog.Logger,
) *Orchestrator {
	return &Orchestrator{
		videos:     videos,
		storage:    storage,
		queue:      queue,
		cache:      videoCache,
		prober:     prober,
		thumbnails: thumbnails,
		renditions: renditions,
		tempDir:    cfg.TempDir,
		presignTTL: cfg.PresignTTL,
		log:        log,
	}
}

// TriggerProcess starts ingestion for a freshly-uploaded video by
// publishing its PROBE job. Idempotent: calling it again once the
// video has left PENDING is a no-op.
func (o *Orchestrator) TriggerProcess(ctx context.Context, videoID uuid.UUID) error {
	video, err := o.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.Status != model.StatusPending {
		return nil
	}
	return o.queue.Publish(ctx, repository.Job{
		Kind:      repository.KindProbe,
		VideoID:   video.ID,
		SourceKey: video.SourceKey,
		Base:      model.BaseFromSourceKey(video.SourceKey),
	})
}

// HandleJob dispatches a single job pulled off the queue to its
// stage handler, retrying transient failures per RunWithRetry. It does
// not republish the job itself; the queue's Consume loop does that with
// an incremented Attempt when HandleJob returns an error. Any error left
// after the retries transitions the job's video to FAILED, except for
// DELETE_ASSETS jobs and jobs without a VideoID.
func (o *Orchestrator) HandleJob(ctx context.Context, job repository.Job) error {
	var stage func(ctx context.Context) error
	switch job.Kind {
	case repository.KindProbe:
		stage = func(ctx context.Context) error { return o.runProbe(ctx, job) }
	case repository.KindThumbnail:
		stage = func(ctx context.Context) error { return o.runThumbnail(ctx, job) }
	case repository.KindTranscodeHLS:
		stage = func(ctx context.Context) error { return o.runTranscodeHLS(ctx, job) }
	case repository.KindDeleteAssets:
		stage = func(ctx context.Context) error { return o.runDeleteAssets(ctx, job) }
	default:
		return fmt.Errorf("pipeline: unhandled job kind %q", job.Kind)
	}

	started := time.Now()
	attempted := false
	handler := func(ctx context.Context) error {
		if attempted {
			metrics.PipelineRetriesTotal.WithLabelValues(string(job.Kind)).Inc()
		}
		attempted = true
		return stage(ctx)
	}

	err := RunWithRetry(ctx, handler)
	metrics.PipelineStageDurationSeconds.WithLabelValues(string(job.Kind)).Observe(time.Since(started).Seconds())

	if err == nil {
		metrics.PipelineJobsTotal.WithLabelValues(string(job.Kind), metrics.JobOutcomeSuccess).Inc()
		return nil
	}
	metrics.PipelineJobsTotal.WithLabelValues(string(job.Kind), metrics.JobOutcomeFailed).Inc()

	if job.VideoID != uuid.Nil && job.Kind != repository.KindDeleteAssets {
		if failErr := o.failVideo(ctx, job.VideoID); failErr != nil {
			o.log.Error("failed to mark video failed", "video_id", job.VideoID, "error", failErr)
		}
	}
	return err
}

// runProbe reads the source's duration and, on success, fans out the
// THUMBNAIL and TRANSCODE_HLS jobs that only depend on PROBED state.
func (o *Orchestrator) runProbe(ctx context.Context, job repository.Job) error {
	dir, release, err := o.acquireWorkDir(job.VideoID)
	if err != nil {
		return fmt.Errorf("acquire work dir: %w", err)
	}
	defer release()

	inputPath, err := o.download(ctx, job.SourceKey, dir)
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	seconds, err := o.prober.Probe(ctx, inputPath)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrProbeFailed, err)
	}

	video, err := o.videos.GetByID(ctx, job.VideoID)
	if err != nil {
		return err
	}
	if err := o.videos.SetDuration(ctx, job.VideoID, seconds); err != nil {
		return fmt.Errorf("persist duration: %w", err)
	}
	if video.Status == model.StatusPending {
		if err := o.videos.UpdateStatus(ctx, job.VideoID, model.StatusProbed); err != nil {
			return fmt.Errorf("transition to probed: %w", err)
		}
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		if err := o.queue.Publish(gctx, repository.Job{
			Kind:      repository.KindThumbnail,
			VideoID:   job.VideoID,
			SourceKey: job.SourceKey,
			Base:      job.Base,
		}); err != nil {
			return fmt.Errorf("publish thumbnail job: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		if err := o.queue.Publish(gctx, repository.Job{
			Kind:      repository.KindTranscodeHLS,
			VideoID:   job.VideoID,
			SourceKey: job.SourceKey,
			Base:      job.Base,
		}); err != nil {
			return fmt.Errorf("publish transcode job: %w", err)
		}
		return nil
	})
	return g.Wait()
}

// runThumbnail extracts and uploads the poster frame, then checks
// whether the video has become fully ready.
func (o *Orchestrator) runThumbnail(ctx context.Context, job repository.Job) error {
	dir, release, err := o.acquireWorkDir(job.VideoID)
	if err != nil {
		return fmt.Errorf("acquire work dir: %w", err)
	}
	defer release()

	inputPath, err := o.download(ctx, job.SourceKey, dir)
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	outputPath := filepath.Join(dir, "thumbnail.jpg")
	if err := o.thumbnails.ExtractThumbnail(ctx, inputPath, outputPath, thumbnailAtSecond); err != nil {
		return fmt.Errorf("extract thumbnail: %w", err)
	}

	key := model.ThumbnailKey(job.Base)
	if err := o.uploadFile(ctx, outputPath, key, "image/jpeg"); err != nil {
		return fmt.Errorf("upload thumbnail: %w", err)
	}

	if err := o.videos.SetThumbnailKey(ctx, job.VideoID, key); err != nil {
		return fmt.Errorf("persist thumbnail key: %w", err)
	}

	return o.maybePromoteReady(ctx, job.VideoID)
}

// runTranscodeHLS produces every rendition, assembles and uploads the
// master playlist, then checks whether the video has become ready.
func (o *Orchestrator) runTranscodeHLS(ctx context.Context, job repository.Job) error {
	dir, release, err := o.acquireWorkDir(job.VideoID)
	if err != nil {
		return fmt.Errorf("acquire work dir: %w", err)
	}
	defer release()

	inputPath, err := o.download(ctx, job.SourceKey, dir)
	if err != nil {
		return fmt.Errorf("download source: %w", err)
	}

	outputDir := filepath.Join(dir, "hls")
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create hls output dir: %w", err)
	}

	outputs, err := o.renditions.TranscodeRenditions(ctx, inputPath, outputDir)
	if err != nil {
		return fmt.Errorf("transcode renditions: %w", err)
	}

	variantKeys := make([]string, len(outputs))
	for i, out := range outputs {
		segmentKeys := make([]string, len(out.SegmentPaths))
		for j, segPath := range out.SegmentPaths {
			segKey := model.HLSSegmentKey(job.Base, out.Rendition.Height, j)
			if err := o.uploadFile(ctx, segPath, segKey, "video/mp2t"); err != nil {
				return fmt.Errorf("upload %s segment %d: %w", out.Rendition.Name, j, err)
			}
			segmentKeys[j] = segKey
		}

		rawPlaylist, err := os.ReadFile(out.PlaylistPath)
		if err != nil {
			return fmt.Errorf("read %s playlist: %w", out.Rendition.Name, err)
		}

		nextSegment := 0
		rewritten, err := transcoder.RewriteVariantPlaylist(string(rawPlaylist), func(segment string) (string, error) {
			if nextSegment >= len(segmentKeys) {
				return "", fmt.Errorf("playlist references more segments than ffmpeg produced")
			}
			url, err := o.storage.GeneratePresignedDownloadURL(ctx, segmentKeys[nextSegment], o.presignTTL)
			nextSegment++
			return url, err
		})
		if err != nil {
			return fmt.Errorf("rewrite %s playlist: %w", out.Rendition.Name, err)
		}

		variantKey := model.HLSVariantPlaylistKey(job.Base, out.Rendition.Height)
		if err := o.uploadBytes(ctx, []byte(rewritten), variantKey, "application/vnd.apple.mpegurl"); err != nil {
			return fmt.Errorf("upload %s playlist: %w", out.Rendition.Name, err)
		}
		variantKeys[i] = variantKey
	}

	nextVariant := 0
	master, err := transcoder.BuildMasterPlaylist(outputs, func(out transcoder.RenditionOutput) (string, error) {
		url, err := o.storage.GeneratePresignedDownloadURL(ctx, variantKeys[nextVariant], o.presignTTL)
		nextVariant++
		return url, err
	})
	if err != nil {
		return fmt.Errorf("build master playlist: %w", err)
	}

	masterKey := model.HLSMasterKey(job.Base)
	if err := o.uploadBytes(ctx, []byte(master), masterKey, "application/vnd.apple.mpegurl"); err != nil {
		return fmt.Errorf("upload master playlist: %w", err)
	}

	if err := o.videos.SetHLSMasterKey(ctx, job.VideoID, masterKey); err != nil {
		return fmt.Errorf("persist hls master key: %w", err)
	}

	return o.maybePromoteReady(ctx, job.VideoID)
}

// runDeleteAssets removes every object a video ever produced. Used
// for GC sweeps following a video delete; missing keys are not an
// error.
func (o *Orchestrator) runDeleteAssets(ctx context.Context, job repository.Job) error {
	if job.DeleteSourceKey != "" {
		if err := o.storage.Delete(ctx, job.DeleteSourceKey); err != nil {
			return fmt.Errorf("delete source: %w", err)
		}
	}
	if job.ThumbnailKey != "" {
		if err := o.storage.Delete(ctx, job.ThumbnailKey); err != nil {
			return fmt.Errorf("delete thumbnail: %w", err)
		}
	}
	if job.HLSMasterKey != "" {
		if err := o.storage.DeletePrefix(ctx, model.HLSPrefix(job.Base)); err != nil {
			return fmt.Errorf("delete hls assets: %w", err)
		}
	}
	return nil
}

// maybePromoteReady transitions PROBED to READY once every derived
// field has been populated. The caller's write landed via a
// field-scoped setter, so this re-reads the full row to check the
// other two fields a sibling stage may have already set.
func (o *Orchestrator) maybePromoteReady(ctx context.Context, videoID uuid.UUID) error {
	video, err := o.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.Status != model.StatusProbed || !video.AllAssetsReady() {
		return nil
	}
	if err := o.videos.UpdateStatus(ctx, videoID, model.StatusReady); err != nil {
		return fmt.Errorf("transition to ready: %w", err)
	}
	o.invalidateCache(ctx, videoID)
	return nil
}

func (o *Orchestrator) failVideo(ctx context.Context, videoID uuid.UUID) error {
	video, err := o.videos.GetByID(ctx, videoID)
	if err != nil {
		return err
	}
	if video.Status != model.StatusPending && video.Status != model.StatusProbed {
		return nil
	}
	if err := o.videos.UpdateStatus(ctx, videoID, model.StatusFailed); err != nil {
		return err
	}
	o.invalidateCache(ctx, videoID)
	return nil
}

func (o *Orchestrator) invalidateCache(ctx context.Context, videoID uuid.UUID) {
	if o.cache == nil {
		return
	}
	if err := o.cache.Delete(ctx, videoID); err != nil {
		o.log.Warn("failed to invalidate video cache", "video_id", videoID, "error", err)
	}
}

// acquireWorkDir reserves a scratch directory for a job and returns a
// release func that removes it. Every exit path from a stage handler
// must call release, mirroring a single acquire/defer-release pair
// instead of a stack of cleanup branches.
func (o *Orchestrator) acquireWorkDir(videoID uuid.UUID) (dir string, release func(), err error) {
	parent := filepath.Join(o.tempDir, "gostream")
	if err := os.MkdirAll(parent, 0o755); err != nil {
		return "", nil, err
	}
	dir, err = os.MkdirTemp(parent, videoID.String()+"-")
	if err != nil {
		return "", nil, err
	}
	return dir, func() { _ = os.RemoveAll(dir) }, nil
}

func (o *Orchestrator) download(ctx context.Context, key, dir string) (string, error) {
	reader, err := o.storage.Download(ctx, key)
	if err != nil {
		return "", err
	}
	defer func() { _ = reader.Close() }()

	localPath := filepath.Join(dir, filepath.Base(key))
	file, err := os.Create(localPath)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(file, reader); err != nil {
		_ = file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", err
	}
	return localPath, nil
}

func (o *Orchestrator) uploadFile(ctx context.Context, localPath, key, contentType string) error {
	file, err := os.Open(localPath)
	if err != nil {
		return err
	}
	defer func() { _ = file.Close() }()
	return o.storage.Upload(ctx, key, file, contentType)
}

// uploadBytes uploads in-memory content, for playlists rewritten with
// presigned URLs that never need a transient local copy.
func (o *Orchestrator) uploadBytes(ctx context.Context, data []byte, key, contentType string) error {
	return o.storage.Upload(ctx, key, bytes.NewReader(data), contentType)
}
