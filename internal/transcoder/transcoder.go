package transcoder

import (
	"context"
)

// RenditionOutput is the result of encoding one Rendition: a variant
// playlist plus the segment files it references.
type RenditionOutput struct {
	Rendition    Rendition
	PlaylistPath string
	SegmentPaths []string
}

// Transcoder produces every configured Rendition from a single source
// file in one call, so the orchestrator doesn't need to know how many
// ffmpeg invocations that takes.
type Transcoder interface {
	// TranscodeRenditions encodes inputPath into outputDir, one
	// subdirectory per Rendition, returning each rendition's playlist
	// and segment paths. outputDir must already exist.
	TranscodeRenditions(ctx context.Context, inputPath, outputDir string) ([]RenditionOutput, error)
}

// Prober reads a source file's duration without transcoding it.
type Prober interface {
	// Probe returns the source's duration truncated to whole seconds.
	// Returns a wrapped error if ffprobe fails or reports no parseable
	// duration; the streams are not inspected. The orchestrator wraps
	// any such error in pipeline.ErrProbeFailed.
	Probe(ctx context.Context, inputPath string) (seconds int, err error)
}

// ThumbnailExtractor captures a single poster frame from a source file.
type ThumbnailExtractor interface {
	// ExtractThumbnail writes a JPEG frame captured at atSecond into
	// outputPath.
	ExtractThumbnail(ctx context.Context, inputPath, outputPath string, atSecond int) error
}
