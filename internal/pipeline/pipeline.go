// Package pipeline orchestrates the artifact stages across a directory tree
// of videos: extraction, scene detection, description, and grouping, with
// per-(video, stage) resumability derived from artifact presence.
package pipeline

import (
	"context"
	"log/slog"
	"sync"

	"vidscribe/internal/artifact"
	"vidscribe/internal/describer"
	"vidscribe/internal/extractor"
	"vidscribe/internal/grouper"
	"vidscribe/internal/models"
	"vidscribe/internal/scenes"
)

// Extractor rasterizes a video's frames. Implementations own their tool
// invocation and timeout policy; the pipeline treats a failure as a terminal
// per-video error.
type Extractor interface {
	Extract(ctx context.Context, videoPath string, interval float64) (int, error)
}

// SceneDetector produces the scene-boundary document for one video.
type SceneDetector interface {
	Detect(ctx context.Context, videoPath string, threshold float64) (*models.SceneDocument, error)
}

// FrameDescriber produces the per-frame description document for one video
// from its extracted frames.
type FrameDescriber interface {
	Describe(ctx context.Context, store artifact.Store, dir, video string) (models.FrameDescriptionDocument, error)
}

// Collaborators bundles the three external stage implementations.
type Collaborators struct {
	Extractor Extractor
	Scenes    SceneDetector
	Describer FrameDescriber
}

// Options carries the per-run tunables.
type Options struct {
	Interval       float64
	SceneThreshold float64
	GroupThreshold float64
	Workers        int
	Force          bool
}

// Summary reports what a run accomplished. Per-video failures are recorded
// here rather than aborting the batch.
type Summary struct {
	VideosFound     int
	VideosSucceeded int
	Failures        []*StageError
	FoldersWritten  []string
}

type Pipeline struct {
	store   artifact.Store
	logger  *slog.Logger
	collab  Collaborators
	opts    Options
	grouper *grouper.Grouper
}

func New(store artifact.Store, logger *slog.Logger, collab Collaborators, opts Options) *Pipeline {
	if opts.Interval <= 0 {
		opts.Interval = extractor.DefaultInterval
	}
	if opts.SceneThreshold <= 0 {
		opts.SceneThreshold = scenes.DefaultThreshold
	}
	if opts.GroupThreshold <= 0 {
		opts.GroupThreshold = grouper.DefaultThreshold
	}
	if opts.Workers <= 0 {
		opts.Workers = describer.DefaultWorkers
	}
	return &Pipeline{
		store:   store,
		logger:  logger,
		collab:  collab,
		opts:    opts,
		grouper: grouper.New(opts.GroupThreshold),
	}
}

// Run executes every stage for every video under root, then writes one
// folder document per directory. Already-complete stages are skipped unless
// forced; already-complete videos still appear in the folder document from
// their existing artifacts. Videos within a directory are processed by a
// bounded worker pool and merged by identity after all workers finish.
func (p *Pipeline) Run(ctx context.Context, root string) (*Summary, error) {
	dirs, videosByDir, err := Discover(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, dir := range dirs {
		videos := videosByDir[dir]
		summary.VideosFound += len(videos)

		results := p.processDirectory(ctx, dir, videos, summary)
		if len(results) == 0 {
			continue
		}
		doc := models.FolderDocument{Folder: dir, Videos: results}
		if err := artifact.WriteJSON(p.store, artifact.GroupedPath(dir), doc); err != nil {
			p.logger.Error("writing folder document failed", "dir", dir, "error", err)
			continue
		}
		summary.VideosSucceeded += len(results)
		summary.FoldersWritten = append(summary.FoldersWritten, artifact.GroupedPath(dir))
		p.logger.Info("folder document written",
			"path", artifact.GroupedPath(dir),
			"videos", len(results),
		)
	}

	for _, failure := range summary.Failures {
		p.logger.Error("video failed", "video", failure.Video, "stage", failure.Stage, "error", failure.Err)
	}
	if summary.VideosFound > 0 && summary.VideosSucceeded == 0 {
		return summary, ErrNoVideosSucceeded
	}
	return summary, nil
}

// processDirectory fans the directory's videos out to workers and merges the
// outcomes by video identity once every worker has finished, so the folder
// document assembly never races with stage work.
func (p *Pipeline) processDirectory(ctx context.Context, dir string, videos []string, summary *Summary) map[string]models.VideoResult {
	type outcome struct {
		video  string
		result models.VideoResult
		err    *StageError
	}

	jobs := make(chan string, len(videos))
	outcomes := make(chan outcome, len(videos))

	workers := p.opts.Workers
	if workers > len(videos) {
		workers = len(videos)
	}
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for videoPath := range jobs {
				result, stageErr := p.processVideo(ctx, dir, videoPath)
				outcomes <- outcome{video: models.VideoIdentity(videoPath), result: result, err: stageErr}
			}
		}()
	}
	for _, videoPath := range videos {
		jobs <- videoPath
	}
	close(jobs)
	wg.Wait()
	close(outcomes)

	results := make(map[string]models.VideoResult)
	for o := range outcomes {
		if o.err != nil {
			summary.Failures = append(summary.Failures, o.err)
			continue
		}
		results[o.video] = o.result
	}
	return results
}

// processVideo runs the stages for one video in order: extraction, then
// scene detection and description (no data dependency between those two),
// then grouping in memory. It returns a StageError on the first terminal
// per-video failure. A scene-detection failure is not terminal: grouping
// proceeds with scenes-info omitted.
func (p *Pipeline) processVideo(ctx context.Context, dir, videoPath string) (models.VideoResult, *StageError) {
	video := models.VideoIdentity(videoPath)

	if stageState(p.store, dir, video, artifact.KindFrames, p.opts.Force) == StageDone {
		p.logger.Debug("frames up to date", "video", video)
	} else {
		count, err := p.collab.Extractor.Extract(ctx, videoPath, p.opts.Interval)
		if err != nil {
			return models.VideoResult{}, &StageError{Video: video, Stage: artifact.KindFrames, Err: err}
		}
		p.logger.Info("frames extracted", "video", video, "count", count)
	}

	scenesDoc := p.sceneStage(ctx, dir, videoPath, video)

	doc, stageErr := p.descriptionStage(ctx, dir, video)
	if stageErr != nil {
		return models.VideoResult{}, stageErr
	}

	return p.grouper.Result(doc, scenesDoc), nil
}

// sceneStage returns the video's scene document, reusing a valid existing
// artifact unless forced. Failures only cost the scene annotation.
func (p *Pipeline) sceneStage(ctx context.Context, dir, videoPath, video string) *models.SceneDocument {
	if stageState(p.store, dir, video, artifact.KindScenes, p.opts.Force) == StageDone {
		var doc models.SceneDocument
		if err := artifact.ReadJSON(p.store, artifact.ScenePath(dir, video), &doc); err == nil {
			p.logger.Debug("scenes up to date", "video", video)
			return &doc
		}
	}

	doc, err := p.collab.Scenes.Detect(ctx, videoPath, p.opts.SceneThreshold)
	if err != nil {
		p.logger.Warn("scene detection failed, continuing without scenes", "video", video, "error", err)
		return nil
	}
	if err := artifact.WriteJSON(p.store, artifact.ScenePath(dir, video), doc); err != nil {
		p.logger.Warn("writing scene document failed", "video", video, "error", err)
		return nil
	}
	p.logger.Info("scenes detected", "video", video, "scenes", doc.TotalScenes)
	return doc
}

// descriptionStage returns the video's description document, reusing a
// valid existing artifact unless forced. A failure here is terminal for the
// video: without descriptions there is nothing to group.
func (p *Pipeline) descriptionStage(ctx context.Context, dir, video string) (models.FrameDescriptionDocument, *StageError) {
	if stageState(p.store, dir, video, artifact.KindDescription, p.opts.Force) == StageDone {
		var doc models.FrameDescriptionDocument
		if err := artifact.ReadJSON(p.store, artifact.DescriptionPath(dir, video), &doc); err == nil {
			p.logger.Debug("description up to date", "video", video)
			return doc, nil
		}
	}

	doc, err := p.collab.Describer.Describe(ctx, p.store, dir, video)
	if err != nil {
		return nil, &StageError{Video: video, Stage: artifact.KindDescription, Err: err}
	}
	if err := artifact.WriteJSON(p.store, artifact.DescriptionPath(dir, video), doc); err != nil {
		return nil, &StageError{Video: video, Stage: artifact.KindDescription, Err: err}
	}
	p.logger.Info("description generated", "video", video, "frames", len(doc))
	return doc, nil
}
