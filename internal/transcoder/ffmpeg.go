package transcoder

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
)

// FFmpegConfig holds configuration for the FFmpeg transcoder.
type FFmpegConfig struct {
	// FFmpegPath is the path to the ffmpeg binary.
	// If empty, "ffmpeg" will be used (assumes it's in PATH).
	FFmpegPath string

	// HLSSegmentDuration is the target duration of each HLS segment in seconds.
	// Default: 10, matching the original encoder.
	HLSSegmentDuration int

	// HLSPlaylistType sets the playlist type.
	// Use "vod" for Video on Demand (adds EXT-X-ENDLIST tag).
	HLSPlaylistType string
}

// DefaultFFmpegConfig returns an FFmpegConfig with production-ready defaults.
func DefaultFFmpegConfig() FFmpegConfig {
	return FFmpegConfig{
		FFmpegPath:         "ffmpeg",
		HLSSegmentDuration: 10,
		HLSPlaylistType:    "vod",
	}
}

// FFmpegTranscoder implements Transcoder and ThumbnailExtractor using
// the FFmpeg CLI.
type FFmpegTranscoder struct {
	config FFmpegConfig
}

var (
	_ Transcoder         = (*FFmpegTranscoder)(nil)
	_ ThumbnailExtractor = (*FFmpegTranscoder)(nil)
)

// NewFFmpegTranscoder creates a new FFmpeg-based transcoder.
func NewFFmpegTranscoder(cfg FFmpegConfig) *FFmpegTranscoder {
	return &FFmpegTranscoder{config: cfg}
}

func (t *FFmpegTranscoder) binary() string {
	if t.config.FFmpegPath != "" {
		return t.config.FFmpegPath
	}
	return "ffmpeg"
}

// TranscodeRenditions encodes inputPath into one HLS rendition per
// entry in Renditions, each in its own "{outputDir}/{name}/" folder.
func (t *FFmpegTranscoder) TranscodeRenditions(ctx context.Context, inputPath, outputDir string) ([]RenditionOutput, error) {
	if err := t.validateInput(inputPath); err != nil {
		return nil, err
	}
	if err := t.validateOutputDir(outputDir); err != nil {
		return nil, err
	}

	outputs := make([]RenditionOutput, 0, len(Renditions))
	for _, r := range Renditions {
		renditionDir := filepath.Join(outputDir, r.Name)
		if err := os.MkdirAll(renditionDir, 0o755); err != nil {
			return nil, fmt.Errorf("create rendition dir %s: %w", r.Name, err)
		}

		out, err := t.transcodeOne(ctx, inputPath, renditionDir, r)
		if err != nil {
			return nil, fmt.Errorf("rendition %s: %w", r.Name, err)
		}
		outputs = append(outputs, out)
	}

	return outputs, nil
}

func (t *FFmpegTranscoder) transcodeOne(ctx context.Context, inputPath, renditionDir string, r Rendition) (RenditionOutput, error) {
	playlistPath := filepath.Join(renditionDir, "playlist.m3u8")
	segmentPattern := filepath.Join(renditionDir, "segment_%03d.ts")

	args := t.buildFFmpegArgs(inputPath, playlistPath, segmentPattern, r)
	cmd := exec.CommandContext(ctx, t.binary(), args...)

	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return RenditionOutput{}, fmt.Errorf("transcoding cancelled: %w", ctx.Err())
		}
		return RenditionOutput{}, fmt.Errorf("ffmpeg execution failed: %w", err)
	}

	segments, err := t.collectSegments(renditionDir)
	if err != nil {
		return RenditionOutput{}, err
	}

	return RenditionOutput{
		Rendition:    r,
		PlaylistPath: playlistPath,
		SegmentPaths: segments,
	}, nil
}

// ExtractThumbnail captures a single JPEG frame at atSecond.
func (t *FFmpegTranscoder) ExtractThumbnail(ctx context.Context, inputPath, outputPath string, atSecond int) error {
	if err := t.validateInput(inputPath); err != nil {
		return err
	}

	args := []string{
		"-ss", fmt.Sprintf("%d", atSecond),
		"-i", inputPath,
		"-vframes", "1",
		"-y",
		outputPath,
	}
	cmd := exec.CommandContext(ctx, t.binary(), args...)
	if err := cmd.Run(); err != nil {
		if ctx.Err() != nil {
			return fmt.Errorf("thumbnail extraction cancelled: %w", ctx.Err())
		}
		return fmt.Errorf("ffmpeg execution failed: %w", err)
	}
	return nil
}

// validateInput checks if the input file exists and is readable.
func (t *FFmpegTranscoder) validateInput(inputPath string) error {
	info, err := os.Stat(inputPath)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("input file does not exist: %s", inputPath)
		}
		return fmt.Errorf("failed to access input file: %w", err)
	}
	if info.IsDir() {
		return fmt.Errorf("input path is a directory, expected a file: %s", inputPath)
	}
	return nil
}

// validateOutputDir checks if the output directory exists.
func (t *FFmpegTranscoder) validateOutputDir(outputDir string) error {
	info, err := os.Stat(outputDir)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("output directory does not exist: %s", outputDir)
		}
		return fmt.Errorf("failed to access output directory: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("output path is not a directory: %s", outputDir)
	}
	return nil
}

// buildFFmpegArgs constructs the FFmpeg command arguments for one
// rendition. Flags and their ordering match the original encoder's
// single-resolution invocation.
func (t *FFmpegTranscoder) buildFFmpegArgs(inputPath, playlistPath, segmentPattern string, r Rendition) []string {
	scaleFilter := fmt.Sprintf("scale=-2:%d", r.Height)

	return []string{
		"-i", inputPath,
		"-vf", scaleFilter,
		"-c:a", "aac", "-ar", "48000", "-b:a", "128k",
		"-c:v", "h264", "-profile:v", "main", "-crf", "20",
		"-sc_threshold", "0", "-g", "48", "-keyint_min", "48",
		"-hls_time", fmt.Sprintf("%d", t.config.HLSSegmentDuration),
		"-hls_playlist_type", t.config.HLSPlaylistType,
		"-hls_list_size", "0",
		"-b:v", fmt.Sprintf("%dk", r.BitrateKbps),
		"-maxrate", fmt.Sprintf("%dk", r.MaxrateKbps),
		"-bufsize", fmt.Sprintf("%dk", r.BufsizeKbps),
		"-hls_segment_filename", segmentPattern,
		"-y",
		playlistPath,
	}
}

// collectSegments finds all generated .ts segment files in dir.
func (t *FFmpegTranscoder) collectSegments(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read rendition dir: %w", err)
	}

	var segments []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		if strings.HasSuffix(entry.Name(), ".ts") {
			segments = append(segments, filepath.Join(dir, entry.Name()))
		}
	}
	if len(segments) == 0 {
		return nil, fmt.Errorf("no segments generated in %s", dir)
	}
	return segments, nil
}
