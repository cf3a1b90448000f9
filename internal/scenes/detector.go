// Package scenes detects scene boundaries with ffmpeg's scene filter and
// shapes the result into the per-video scene artifact.
package scenes

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os/exec"

	"vidscribe/internal/extractor"
	"vidscribe/internal/models"
)

// DefaultThreshold is the default scene-change detection threshold.
const DefaultThreshold = 0.4

type Detector struct {
	logger *slog.Logger
	probe  *extractor.Extractor
}

func New(logger *slog.Logger) *Detector {
	return &Detector{logger: logger, probe: extractor.New(logger)}
}

// Detect runs ffmpeg's select filter over the video and returns the scene
// document: boundary changes plus the contiguous segments between them. A
// video with no detected changes yields a single scene spanning the whole
// duration.
func (d *Detector) Detect(ctx context.Context, videoPath string, threshold float64) (*models.SceneDocument, error) {
	duration, err := d.probe.Duration(ctx, videoPath)
	if err != nil {
		return nil, err
	}

	cmd := exec.CommandContext(ctx,
		"ffmpeg",
		"-i", videoPath,
		"-filter:v", fmt.Sprintf("select='gt(scene,%g)',showinfo", threshold),
		"-f", "null",
		"-",
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg scene detection failed for %s: %w\n%s", videoPath, err, stderr.String())
	}

	changes := ParseSceneChanges(stderr.String(), threshold)
	d.logger.Debug("detected scene changes", "video", videoPath, "count", len(changes))

	scenes := BuildScenes(changes, duration)
	return &models.SceneDocument{
		VideoFile:      videoPath,
		SceneThreshold: threshold,
		TotalScenes:    len(scenes),
		Scenes:         scenes,
	}, nil
}
