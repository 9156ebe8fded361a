package transcoder

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// FFprobeProber implements Prober by shelling out to ffprobe.
type FFprobeProber struct {
	// FFprobePath is the path to the ffprobe binary. Empty uses
	// "ffprobe" from PATH.
	FFprobePath string
}

// NewFFprobeProber builds an FFprobeProber using ffprobePath, or the
// PATH-resolved "ffprobe" if ffprobePath is empty.
func NewFFprobeProber(ffprobePath string) *FFprobeProber {
	return &FFprobeProber{FFprobePath: ffprobePath}
}

func (p *FFprobeProber) binary() string {
	if p.FFprobePath != "" {
		return p.FFprobePath
	}
	return "ffprobe"
}

// Probe runs ffprobe against inputPath and returns its duration
// truncated to whole seconds.
func (p *FFprobeProber) Probe(ctx context.Context, inputPath string) (int, error) {
	cmd := exec.CommandContext(ctx, p.binary(),
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		inputPath,
	)
	var stdout bytes.Buffer
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return 0, fmt.Errorf("ffprobe: %w", err)
	}

	text := strings.TrimSpace(stdout.String())
	if text == "" || text == "N/A" {
		return 0, fmt.Errorf("ffprobe returned no duration for %s", inputPath)
	}

	duration, err := strconv.ParseFloat(text, 64)
	if err != nil {
		return 0, fmt.Errorf("parse ffprobe duration %q: %w", text, err)
	}

	return int(duration), nil
}
