package scenes

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"vidscribe/internal/models"
)

var (
	frameRe   = regexp.MustCompile(`n:\s*(\d+)`)
	ptsTimeRe = regexp.MustCompile(`pts_time:\s*([0-9]+(?:\.[0-9]+)?)`)
)

// ParseSceneChanges extracts selected-frame records from ffmpeg's showinfo
// stderr output. Each showinfo line corresponds to one frame the select
// filter passed through, i.e. one scene change. The filter does not report
// the raw change score on these lines, so the score is recorded as just
// above the threshold that selected it.
func ParseSceneChanges(stderr string, threshold float64) []models.SceneChange {
	var changes []models.SceneChange
	for _, line := range strings.Split(stderr, "\n") {
		if !strings.Contains(line, "Parsed_showinfo") || !strings.Contains(line, "pts_time:") {
			continue
		}
		fm := frameRe.FindStringSubmatch(line)
		tm := ptsTimeRe.FindStringSubmatch(line)
		if fm == nil || tm == nil {
			continue
		}
		frame, err := strconv.Atoi(fm[1])
		if err != nil {
			continue
		}
		seconds, err := strconv.ParseFloat(tm[1], 64)
		if err != nil {
			continue
		}
		changes = append(changes, models.SceneChange{
			FrameNumber: frame,
			Timestamp:   models.FormatSceneTimestamp(seconds),
			Seconds:     seconds,
			SceneScore:  threshold + 0.1,
		})
	}
	sort.Slice(changes, func(i, j int) bool { return changes[i].Seconds < changes[j].Seconds })
	return changes
}

// BuildScenes turns boundary changes into contiguous, non-overlapping
// segments numbered densely from 1. Each scene starts at its boundary and
// ends at the next boundary, or at the video's end for the last one.
func BuildScenes(changes []models.SceneChange, duration float64) []models.Scene {
	if len(changes) == 0 {
		return []models.Scene{{
			SceneNumber:  1,
			StartTime:    "00:00:00.000",
			EndTime:      models.FormatSceneTimestamp(duration),
			Duration:     duration,
			SceneChanges: []models.SceneChange{},
		}}
	}

	scenes := make([]models.Scene, 0, len(changes))
	for i, change := range changes {
		endSeconds := duration
		endTime := models.FormatSceneTimestamp(duration)
		if i < len(changes)-1 {
			endSeconds = changes[i+1].Seconds
			endTime = changes[i+1].Timestamp
		}
		scenes = append(scenes, models.Scene{
			SceneNumber:  i + 1,
			StartTime:    change.Timestamp,
			EndTime:      endTime,
			Duration:     round3(endSeconds - change.Seconds),
			SceneChanges: []models.SceneChange{change},
		})
	}
	return scenes
}

func round3(v float64) float64 {
	return float64(int64(v*1000+0.5)) / 1000
}
