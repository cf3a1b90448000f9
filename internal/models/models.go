package models

import (
	"path/filepath"
	"sort"
	"strings"
)

// FrameDescriptionDocument maps a frame timestamp in HHH:MM:SS.mmm form to
// the raw vision-model description of the frame sampled at that instant.
// The fixed-width key format makes lexicographic order chronological.
type FrameDescriptionDocument map[string]string

// Timestamps returns the document's keys in chronological order.
func (d FrameDescriptionDocument) Timestamps() []string {
	keys := make([]string, 0, len(d))
	for ts := range d {
		keys = append(keys, ts)
	}
	sort.Strings(keys)
	return keys
}

// SceneChange is a single detected boundary inside a scene.
type SceneChange struct {
	FrameNumber int     `json:"frame_number"`
	Timestamp   string  `json:"timestamp"`
	Seconds     float64 `json:"seconds"`
	SceneScore  float64 `json:"scene_score"`
}

// Scene is one contiguous segment between detected boundaries.
type Scene struct {
	SceneNumber  int           `json:"scene_number"`
	StartTime    string        `json:"start_time"`
	EndTime      string        `json:"end_time"`
	Duration     float64       `json:"duration"`
	SceneChanges []SceneChange `json:"scene_changes"`
}

// SceneDocument is the scene-detection artifact for one video. Scenes are
// contiguous, non-overlapping, and numbered densely from 1.
type SceneDocument struct {
	VideoFile      string  `json:"video_file"`
	SceneThreshold float64 `json:"scene_threshold"`
	TotalScenes    int     `json:"total_scenes"`
	Scenes         []Scene `json:"scenes"`
}

// GroupedRun is a maximal run of consecutive frames whose descriptions are
// mutually similar. The description is the run's first frame's original text.
type GroupedRun struct {
	StartTime   string `json:"start_time"`
	EndTime     string `json:"end_time"`
	Description string `json:"description"`
}

// VideoResult is one video's final record: the grouped timeline plus the
// scene document attached verbatim. The two are independent views over the
// same video and are never intersected.
type VideoResult struct {
	Timestamps []GroupedRun   `json:"timestamps"`
	ScenesInfo *SceneDocument `json:"scenes-info,omitempty"`
}

// FolderDocument aggregates every successfully grouped video in one
// directory. It is overwritten whole on each successful run.
type FolderDocument struct {
	Folder string                 `json:"folder"`
	Videos map[string]VideoResult `json:"videos"`
}

// VideoIdentity derives the stable per-directory key for a video file: its
// base name without extension.
func VideoIdentity(videoPath string) string {
	base := filepath.Base(videoPath)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
