package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatFrameTimestamp(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "000:00:00.000"},
		{1, "000:00:01.000"},
		{59.999, "000:00:59.999"},
		{60, "000:01:00.000"},
		{3661.5, "001:01:01.500"},
		{-5, "000:00:00.000"},
		{360000, "100:00:00.000"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatFrameTimestamp(tt.seconds))
	}
}

func TestFormatFrameTimestampOrderMatchesTimeOrder(t *testing.T) {
	// Fixed-width keys are what makes map-key sorting chronological.
	prev := FormatFrameTimestamp(0)
	for _, s := range []float64{0.5, 1, 59, 60, 3599, 3600, 35999, 36000, 360000} {
		cur := FormatFrameTimestamp(s)
		assert.Less(t, prev, cur)
		prev = cur
	}
}

func TestFormatSceneTimestamp(t *testing.T) {
	assert.Equal(t, "00:00:00.000", FormatSceneTimestamp(0))
	assert.Equal(t, "00:00:04.100", FormatSceneTimestamp(4.1))
	assert.Equal(t, "01:01:01.500", FormatSceneTimestamp(3661.5))
	assert.Equal(t, "00:00:00.000", FormatSceneTimestamp(-1))
}

func TestParseTimestamp(t *testing.T) {
	t.Run("frame format", func(t *testing.T) {
		got, err := ParseTimestamp("001:01:01.500")
		require.NoError(t, err)
		assert.InDelta(t, 3661.5, got, 1e-9)
	})

	t.Run("scene format", func(t *testing.T) {
		got, err := ParseTimestamp("00:00:04.100")
		require.NoError(t, err)
		assert.InDelta(t, 4.1, got, 1e-9)
	})

	t.Run("round trip", func(t *testing.T) {
		for _, s := range []float64{0, 1.25, 59.999, 3600, 7261.042} {
			got, err := ParseTimestamp(FormatFrameTimestamp(s))
			require.NoError(t, err)
			assert.InDelta(t, s, got, 1e-3)
		}
	})

	t.Run("rejects malformed input", func(t *testing.T) {
		for _, bad := range []string{"", "12:34", "a:b:c", "1:2:3:4", "00:xx:00.000"} {
			_, err := ParseTimestamp(bad)
			assert.Error(t, err, "input %q", bad)
		}
	})
}

func TestTimestampsSorted(t *testing.T) {
	doc := FrameDescriptionDocument{
		"000:00:02.000": "c",
		"000:00:00.000": "a",
		"000:00:01.000": "b",
	}
	assert.Equal(t, []string{"000:00:00.000", "000:00:01.000", "000:00:02.000"}, doc.Timestamps())
}

func TestVideoIdentity(t *testing.T) {
	assert.Equal(t, "clip", VideoIdentity("/videos/demo/clip.mp4"))
	assert.Equal(t, "my_video.backup", VideoIdentity("my_video.backup.mkv"))
	assert.Equal(t, "noext", VideoIdentity("noext"))
}
