package pipeline

import (
	"context"
	"fmt"
	"io/fs"
	"path/filepath"
	"sort"
	"strings"

	"vidscribe/internal/artifact"
	"vidscribe/internal/models"
)

// ExtractAll runs only the extraction stage for every video under root,
// skipping videos whose frames already exist unless forced.
func (p *Pipeline) ExtractAll(ctx context.Context, root string) error {
	dirs, videosByDir, err := Discover(root)
	if err != nil {
		return err
	}

	var found, failed int
	for _, dir := range dirs {
		for _, videoPath := range videosByDir[dir] {
			found++
			video := models.VideoIdentity(videoPath)
			if stageState(p.store, dir, video, artifact.KindFrames, p.opts.Force) == StageDone {
				p.logger.Info("frames already exist, skipping", "video", video)
				continue
			}
			count, err := p.collab.Extractor.Extract(ctx, videoPath, p.opts.Interval)
			if err != nil {
				p.logger.Error("extraction failed", "video", video, "error", err)
				failed++
				continue
			}
			p.logger.Info("frames extracted", "video", video, "count", count)
		}
	}
	if found == 0 {
		p.logger.Info("no video files found", "dir", root)
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("extraction failed for %d of %d videos", failed, found)
	}
	return nil
}

// DetectAll runs only the scene-detection stage for every video under root.
func (p *Pipeline) DetectAll(ctx context.Context, root string) error {
	dirs, videosByDir, err := Discover(root)
	if err != nil {
		return err
	}

	var found, failed int
	for _, dir := range dirs {
		for _, videoPath := range videosByDir[dir] {
			found++
			video := models.VideoIdentity(videoPath)
			if stageState(p.store, dir, video, artifact.KindScenes, p.opts.Force) == StageDone {
				p.logger.Info("scene document already exists, skipping", "video", video)
				continue
			}
			doc, err := p.collab.Scenes.Detect(ctx, videoPath, p.opts.SceneThreshold)
			if err != nil {
				p.logger.Error("scene detection failed", "video", video, "error", err)
				failed++
				continue
			}
			if err := artifact.WriteJSON(p.store, artifact.ScenePath(dir, video), doc); err != nil {
				p.logger.Error("writing scene document failed", "video", video, "error", err)
				failed++
				continue
			}
			p.logger.Info("scenes detected", "video", video, "scenes", doc.TotalScenes)
		}
	}
	if found == 0 {
		p.logger.Info("no video files found", "dir", root)
		return nil
	}
	if failed > 0 {
		return fmt.Errorf("scene detection failed for %d of %d videos", failed, found)
	}
	return nil
}

// DescribeAll runs only the description stage for every directory under
// root that has a frames directory. At least one frames directory must
// exist.
func (p *Pipeline) DescribeAll(ctx context.Context, root string) error {
	frameDirs, err := framesDirs(root)
	if err != nil {
		return err
	}
	if len(frameDirs) == 0 {
		return fmt.Errorf("no frames directory found under %q (run extract first)", root)
	}

	var failed int
	for _, dir := range frameDirs {
		videos, err := artifact.FrameVideos(p.store, dir)
		if err != nil {
			return err
		}
		for _, video := range videos {
			if stageState(p.store, dir, video, artifact.KindDescription, p.opts.Force) == StageDone {
				p.logger.Info("description already exists, skipping", "video", video)
				continue
			}
			doc, err := p.collab.Describer.Describe(ctx, p.store, dir, video)
			if err != nil {
				p.logger.Error("description failed", "video", video, "error", err)
				failed++
				continue
			}
			if err := artifact.WriteJSON(p.store, artifact.DescriptionPath(dir, video), doc); err != nil {
				p.logger.Error("writing description failed", "video", video, "error", err)
				failed++
				continue
			}
			p.logger.Info("description generated", "video", video, "frames", len(doc))
		}
	}
	if failed > 0 {
		return fmt.Errorf("description failed for %d videos", failed)
	}
	return nil
}

// GroupAll runs only the grouping stage: for every directory under root
// holding per-video description artifacts, it merges them with any scene
// artifacts into that directory's folder document. Videos whose description
// artifact is unreadable are reported and excluded.
func (p *Pipeline) GroupAll(root string) (*Summary, error) {
	dirs, err := descriptionDirs(root)
	if err != nil {
		return nil, err
	}

	summary := &Summary{}
	for _, dir := range dirs {
		videos, err := descriptionVideos(p.store, dir)
		if err != nil {
			return nil, err
		}
		results := make(map[string]models.VideoResult)
		for _, video := range videos {
			summary.VideosFound++
			var doc models.FrameDescriptionDocument
			if err := artifact.ReadJSON(p.store, artifact.DescriptionPath(dir, video), &doc); err != nil {
				summary.Failures = append(summary.Failures, &StageError{Video: video, Stage: artifact.KindGrouped, Err: err})
				continue
			}
			results[video] = p.grouper.Result(doc, p.readScenes(dir, video))
		}
		if len(results) == 0 {
			continue
		}
		folderDoc := models.FolderDocument{Folder: dir, Videos: results}
		if err := artifact.WriteJSON(p.store, artifact.GroupedPath(dir), folderDoc); err != nil {
			return nil, err
		}
		summary.VideosSucceeded += len(results)
		summary.FoldersWritten = append(summary.FoldersWritten, artifact.GroupedPath(dir))
		p.logger.Info("folder document written", "path", artifact.GroupedPath(dir), "videos", len(results))
	}

	for _, failure := range summary.Failures {
		p.logger.Error("grouping failed", "video", failure.Video, "error", failure.Err)
	}
	return summary, nil
}

// readScenes loads a video's scene artifact if present and valid. Grouping
// does not require it.
func (p *Pipeline) readScenes(dir, video string) *models.SceneDocument {
	if !artifact.Complete(p.store, dir, video, artifact.KindScenes) {
		return nil
	}
	var doc models.SceneDocument
	if err := artifact.ReadJSON(p.store, artifact.ScenePath(dir, video), &doc); err != nil {
		return nil
	}
	return &doc
}

// framesDirs finds every directory under root that contains a frames
// subdirectory.
func framesDirs(root string) ([]string, error) {
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() && d.Name() == "frames" {
			dirs = append(dirs, filepath.Dir(path))
			return filepath.SkipDir
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// descriptionDirs finds every directory under root holding per-video
// description artifacts.
func descriptionDirs(root string) ([]string, error) {
	seen := make(map[string]bool)
	var dirs []string
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "frames" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if strings.HasSuffix(path, ".description.json") {
			dir := filepath.Dir(path)
			if !seen[dir] {
				seen[dir] = true
				dirs = append(dirs, dir)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(dirs)
	return dirs, nil
}

// descriptionVideos lists video identities with a description artifact in
// dir, sorted for deterministic folder documents.
func descriptionVideos(s artifact.Store, dir string) ([]string, error) {
	names, err := s.List(dir)
	if err != nil {
		return nil, err
	}
	var videos []string
	for _, name := range names {
		if strings.HasSuffix(name, ".description.json") {
			videos = append(videos, strings.TrimSuffix(name, ".description.json"))
		}
	}
	sort.Strings(videos)
	return videos, nil
}
