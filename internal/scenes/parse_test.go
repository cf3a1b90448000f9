package scenes

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscribe/internal/models"
)

const showinfoOutput = `ffmpeg version 6.1 Copyright (c) 2000-2023 the FFmpeg developers
Input #0, mov,mp4,m4a,3gp,3g2,mj2, from 'clip.mp4':
  Duration: 00:00:30.00, start: 0.000000, bitrate: 1205 kb/s
[Parsed_showinfo_1 @ 0x5581] n:   0 pts:  98304 pts_time:4.096   duration:    512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x5581] n:   1 pts: 294912 pts_time:12.288  duration:    512 fmt:yuv420p
[Parsed_showinfo_1 @ 0x5581] color_range:tv color_space:bt709
frame=    2 fps=0.0 q=-0.0 Lsize=N/A time=00:00:29.96 bitrate=N/A speed= 110x
`

func TestParseSceneChanges(t *testing.T) {
	changes := ParseSceneChanges(showinfoOutput, 0.4)

	require.Len(t, changes, 2)
	assert.Equal(t, models.SceneChange{
		FrameNumber: 0,
		Timestamp:   "00:00:04.096",
		Seconds:     4.096,
		SceneScore:  0.5,
	}, changes[0])
	assert.Equal(t, 1, changes[1].FrameNumber)
	assert.InDelta(t, 12.288, changes[1].Seconds, 1e-9)
}

func TestParseSceneChangesIgnoresUnrelatedLines(t *testing.T) {
	assert.Empty(t, ParseSceneChanges("frame=  100 fps=25 time=00:00:04.00\n", 0.4))
	assert.Empty(t, ParseSceneChanges("", 0.4))
}

func TestParseSceneChangesSortsBySeconds(t *testing.T) {
	out := "[Parsed_showinfo_1 @ 0x1] n: 1 pts_time:12.0\n" +
		"[Parsed_showinfo_1 @ 0x1] n: 0 pts_time:4.0\n"

	changes := ParseSceneChanges(out, 0.4)
	require.Len(t, changes, 2)
	assert.Less(t, changes[0].Seconds, changes[1].Seconds)
}

func TestBuildScenesNoChanges(t *testing.T) {
	scenes := BuildScenes(nil, 30)

	require.Len(t, scenes, 1)
	assert.Equal(t, models.Scene{
		SceneNumber:  1,
		StartTime:    "00:00:00.000",
		EndTime:      "00:00:30.000",
		Duration:     30,
		SceneChanges: []models.SceneChange{},
	}, scenes[0])
}

func TestBuildScenes(t *testing.T) {
	changes := ParseSceneChanges(showinfoOutput, 0.4)
	scenes := BuildScenes(changes, 30)

	require.Len(t, scenes, 2)

	// Contiguous segments, numbered densely from 1; the last scene runs to
	// the video's end.
	assert.Equal(t, 1, scenes[0].SceneNumber)
	assert.Equal(t, "00:00:04.096", scenes[0].StartTime)
	assert.Equal(t, "00:00:12.288", scenes[0].EndTime)
	assert.InDelta(t, 8.192, scenes[0].Duration, 1e-9)

	assert.Equal(t, 2, scenes[1].SceneNumber)
	assert.Equal(t, "00:00:12.288", scenes[1].StartTime)
	assert.Equal(t, "00:00:30.000", scenes[1].EndTime)
	assert.InDelta(t, 17.712, scenes[1].Duration, 1e-9)

	require.Len(t, scenes[0].SceneChanges, 1)
	assert.Equal(t, changes[0], scenes[0].SceneChanges[0])
}
