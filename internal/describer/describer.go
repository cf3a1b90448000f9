// Package describer turns a video's extracted frames into the per-frame
// description artifact by fanning frames out to a vision model.
package describer

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"sync"

	"vidscribe/internal/artifact"
	"vidscribe/internal/models"
)

// DefaultWorkers sizes the frame worker pool.
const DefaultWorkers = 4

type workItem struct {
	framePath string
	timestamp string
	frameNum  int
	total     int
}

type frameResult struct {
	timestamp string
	text      string
}

type Describer struct {
	model    VisionModel
	logger   *slog.Logger
	workers  int
	interval float64
}

// New builds a describer. interval is the extraction sampling interval in
// seconds; frame N maps to timestamp (N-1)*interval.
func New(model VisionModel, logger *slog.Logger, workers int, interval float64) *Describer {
	if workers <= 0 {
		workers = DefaultWorkers
	}
	if interval <= 0 {
		interval = 1.0
	}
	return &Describer{model: model, logger: logger, workers: workers, interval: interval}
}

// Describe produces the description document for one video from its frames
// directory. Frames are processed by a bounded worker pool; results are
// keyed by timestamp, so arrival order does not matter. Any frame failure
// fails the whole document: a partial document must never be written, or the
// resumability check would treat it as complete.
func (d *Describer) Describe(ctx context.Context, store artifact.Store, dir, video string) (models.FrameDescriptionDocument, error) {
	frames, err := artifact.FrameFiles(store, dir, video)
	if err != nil {
		return nil, err
	}
	if len(frames) == 0 {
		return nil, fmt.Errorf("no frames found for video %q in %s", video, artifact.FramesDir(dir))
	}
	sort.Strings(frames)

	work := make(chan workItem, len(frames))
	results := make(chan frameResult, len(frames))
	errs := make(chan error, len(frames))

	var wg sync.WaitGroup
	for i := 0; i < d.workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range work {
				text, err := d.model.Describe(ctx, item.framePath)
				if err != nil {
					errs <- fmt.Errorf("frame %d/%d: %w", item.frameNum, item.total, err)
					continue
				}
				d.logger.Debug("described frame",
					"video", video,
					"frame", item.frameNum,
					"total", item.total,
				)
				results <- frameResult{timestamp: item.timestamp, text: strings.TrimSpace(text)}
			}
		}()
	}

	queued := 0
	for _, name := range frames {
		num, ok := frameNumber(video, name)
		if !ok {
			d.logger.Warn("skipping invalid frame name", "frame", name)
			continue
		}
		work <- workItem{
			framePath: filepath.Join(artifact.FramesDir(dir), name),
			timestamp: models.FormatFrameTimestamp(float64(num-1) * d.interval),
			frameNum:  num,
			total:     len(frames),
		}
		queued++
	}
	close(work)
	wg.Wait()
	close(results)
	close(errs)

	if queued == 0 {
		return nil, fmt.Errorf("no valid frame names for video %q in %s", video, artifact.FramesDir(dir))
	}

	var failures []string
	for err := range errs {
		failures = append(failures, err.Error())
	}
	if len(failures) > 0 {
		return nil, fmt.Errorf("describing %s: %s", video, strings.Join(failures, "; "))
	}

	doc := make(models.FrameDescriptionDocument, queued)
	for res := range results {
		doc[res.timestamp] = res.text
	}
	return doc, nil
}

// frameNumber parses NNNN out of <video>_NNNN.png.
func frameNumber(video, name string) (int, bool) {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	numStr := strings.TrimPrefix(stem, video+"_")
	if numStr == stem {
		return 0, false
	}
	num, err := strconv.Atoi(numStr)
	if err != nil {
		return 0, false
	}
	return num, true
}
