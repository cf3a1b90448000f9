// Package extractor rasterizes video frames with ffmpeg.
package extractor

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"

	"vidscribe/internal/artifact"
	"vidscribe/internal/models"
)

// DefaultInterval is the default sampling interval in seconds.
const DefaultInterval = 1.0

type Extractor struct {
	logger *slog.Logger
}

func New(logger *slog.Logger) *Extractor {
	return &Extractor{logger: logger}
}

// Duration returns a video's duration in seconds via ffprobe.
func (e *Extractor) Duration(ctx context.Context, videoPath string) (float64, error) {
	cmd := exec.CommandContext(ctx,
		"ffprobe",
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		videoPath,
	)
	out, err := cmd.Output()
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: %w", videoPath, err)
	}
	dur, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, fmt.Errorf("ffprobe %s: bad duration %q: %w", videoPath, strings.TrimSpace(string(out)), err)
	}
	return dur, nil
}

// Extract samples one frame every interval seconds into
// frames/<name>_%04d.png next to the video, downscaled to 720p. It returns
// the number of frames written.
func (e *Extractor) Extract(ctx context.Context, videoPath string, interval float64) (int, error) {
	if _, err := os.Stat(videoPath); err != nil {
		return 0, fmt.Errorf("video file does not exist at path %q: %w", videoPath, err)
	}
	if interval <= 0 {
		interval = DefaultInterval
	}

	dir := filepath.Dir(videoPath)
	video := models.VideoIdentity(videoPath)
	framesDir := artifact.FramesDir(dir)
	if err := os.MkdirAll(framesDir, 0o755); err != nil {
		return 0, fmt.Errorf("create frames directory %q: %w", framesDir, err)
	}

	e.logger.Debug("extracting frames",
		"video", video,
		"interval", interval,
		"dir", framesDir,
	)

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-i", videoPath,
		"-vf", fmt.Sprintf("fps=%g,scale=-2:720:flags=lanczos", 1/interval),
		"-q:v", "2",
		"-y",
		artifact.FramePattern(dir, video),
	)
	if out, err := cmd.CombinedOutput(); err != nil {
		return 0, fmt.Errorf("ffmpeg failed for %s: %w\n%s", videoPath, err, out)
	}

	frames, err := artifact.FrameFiles(artifact.NewFSStore(), dir, video)
	if err != nil {
		return 0, err
	}
	e.logger.Debug("extracted frames", "video", video, "count", len(frames))
	return len(frames), nil
}
