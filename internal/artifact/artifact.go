// Package artifact defines the on-disk layout of pipeline stage outputs and
// the store abstraction behind the resumability checks. A stage is "done"
// for a video exactly when its expected artifact exists and parses; there is
// no state file, no database, and no mtime comparison.
package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// Kind identifies one stage's artifact category.
type Kind string

const (
	KindFrames      Kind = "frames"
	KindScenes      Kind = "scenes"
	KindDescription Kind = "description"
	KindGrouped     Kind = "grouped"
)

// FramesDir is the directory holding extracted frame images for every video
// in dir. It is skipped during video discovery.
func FramesDir(dir string) string {
	return filepath.Join(dir, "frames")
}

// FramePattern is the ffmpeg output pattern for a video's frame sequence.
func FramePattern(dir, video string) string {
	return filepath.Join(FramesDir(dir), video+"_%04d.png")
}

// ScenePath is the scene-detection artifact for one video.
func ScenePath(dir, video string) string {
	return filepath.Join(dir, video+".scene.json")
}

// DescriptionPath is the per-frame description artifact for one video.
func DescriptionPath(dir, video string) string {
	return filepath.Join(dir, video+".description.json")
}

// GroupedPath is the folder-level document aggregating all grouped videos in
// dir. This is the only artifact intended for long-term retention.
func GroupedPath(dir string) string {
	return filepath.Join(dir, filepath.Base(dir)+".descriptions.json")
}

// Store abstracts artifact persistence so that completeness checks, the
// grouping inputs, and cleanup can be tested against an in-memory fake.
type Store interface {
	Exists(path string) bool
	Read(path string) ([]byte, error)
	Write(path string, data []byte) error
	Remove(path string) error
	RemoveAll(path string) error
	// List returns the names of regular files directly under dir. A missing
	// directory yields an empty list, not an error.
	List(dir string) ([]string, error)
}

// ReadJSON reads and unmarshals an artifact document.
func ReadJSON(s Store, path string, v any) error {
	data, err := s.Read(path)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

// WriteJSON marshals v the way every artifact in the pipeline is written:
// two-space indent, unescaped text, trailing newline. Marshaling is
// deterministic, so rewriting identical inputs yields identical bytes.
func WriteJSON(s Store, path string, v any) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return err
	}
	return s.Write(path, buf.Bytes())
}

// FrameFiles lists a video's extracted frame images in frame order.
func FrameFiles(s Store, dir, video string) ([]string, error) {
	names, err := s.List(FramesDir(dir))
	if err != nil {
		return nil, err
	}
	var frames []string
	for _, name := range names {
		if strings.HasPrefix(name, video+"_") && strings.HasSuffix(strings.ToLower(name), ".png") {
			frames = append(frames, name)
		}
	}
	return frames, nil
}

// FrameVideos lists the video identities that have at least one extracted
// frame in dir's frames directory. Frame names follow <video>_NNNN.png;
// names that do not are ignored.
func FrameVideos(s Store, dir string) ([]string, error) {
	names, err := s.List(FramesDir(dir))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]bool)
	var videos []string
	for _, name := range names {
		if !strings.HasSuffix(strings.ToLower(name), ".png") {
			continue
		}
		stem := strings.TrimSuffix(name, filepath.Ext(name))
		idx := strings.LastIndex(stem, "_")
		if idx <= 0 {
			continue
		}
		video, frame := stem[:idx], stem[idx+1:]
		if _, err := strconv.Atoi(frame); err != nil {
			continue
		}
		if !seen[video] {
			seen[video] = true
			videos = append(videos, video)
		}
	}
	sort.Strings(videos)
	return videos, nil
}

// Complete reports whether a stage's expected artifact is present and
// usable: syntactically valid JSON for document kinds, at least one
// extracted frame for KindFrames. Read and parse failures count as
// incomplete and trigger regeneration; they are never fatal.
func Complete(s Store, dir, video string, kind Kind) bool {
	switch kind {
	case KindFrames:
		frames, err := FrameFiles(s, dir, video)
		return err == nil && len(frames) > 0
	case KindScenes:
		return validJSON(s, ScenePath(dir, video))
	case KindDescription:
		return validJSON(s, DescriptionPath(dir, video))
	case KindGrouped:
		return validJSON(s, GroupedPath(dir))
	default:
		return false
	}
}

func validJSON(s Store, path string) bool {
	data, err := s.Read(path)
	if err != nil {
		return false
	}
	return json.Valid(data)
}
