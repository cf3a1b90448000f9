package describer

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vidscribe/internal/artifact"
)

// fakeModel answers with a canned description per frame path.
type fakeModel struct {
	mu      sync.Mutex
	calls   int
	answers map[string]string
	fail    map[string]error
}

func (m *fakeModel) Describe(_ context.Context, imagePath string) (string, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	name := filepath.Base(imagePath)
	if err := m.fail[name]; err != nil {
		return "", err
	}
	if text, ok := m.answers[name]; ok {
		return text, nil
	}
	return "a frame", nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func seedFrames(t *testing.T, store artifact.Store, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		require.NoError(t, store.Write(filepath.Join(artifact.FramesDir(dir), name), []byte("png")))
	}
}

func TestDescribeKeysByTimestamp(t *testing.T) {
	store := artifact.NewMemStore()
	dir := "videos"
	seedFrames(t, store, dir, "clip_0001.png", "clip_0002.png", "clip_0003.png")
	model := &fakeModel{answers: map[string]string{
		"clip_0001.png": "a red car  ",
		"clip_0002.png": "a red car on the road",
		"clip_0003.png": "a blue bicycle",
	}}

	doc, err := New(model, testLogger(), 2, 1.0).Describe(context.Background(), store, dir, "clip")
	require.NoError(t, err)

	// Frame N samples the instant (N-1)*interval; whitespace is trimmed.
	assert.Equal(t, map[string]string{
		"000:00:00.000": "a red car",
		"000:00:01.000": "a red car on the road",
		"000:00:02.000": "a blue bicycle",
	}, map[string]string(doc))
}

func TestDescribeHonorsInterval(t *testing.T) {
	store := artifact.NewMemStore()
	dir := "videos"
	seedFrames(t, store, dir, "clip_0001.png", "clip_0002.png")

	doc, err := New(&fakeModel{}, testLogger(), 1, 2.5).Describe(context.Background(), store, dir, "clip")
	require.NoError(t, err)

	assert.Contains(t, doc, "000:00:00.000")
	assert.Contains(t, doc, "000:00:02.500")
}

func TestDescribeFailsWholeDocumentOnAnyFrameError(t *testing.T) {
	store := artifact.NewMemStore()
	dir := "videos"
	seedFrames(t, store, dir, "clip_0001.png", "clip_0002.png", "clip_0003.png")
	model := &fakeModel{fail: map[string]error{
		"clip_0002.png": errors.New("model timeout"),
	}}

	doc, err := New(model, testLogger(), 2, 1.0).Describe(context.Background(), store, dir, "clip")

	require.Error(t, err)
	assert.Nil(t, doc, "a partial document would read as a complete artifact")
	assert.Contains(t, err.Error(), "model timeout")
}

func TestDescribeNoFrames(t *testing.T) {
	store := artifact.NewMemStore()

	_, err := New(&fakeModel{}, testLogger(), 1, 1.0).Describe(context.Background(), store, "videos", "clip")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no frames found")
}

func TestDescribeIgnoresOtherVideosFrames(t *testing.T) {
	store := artifact.NewMemStore()
	dir := "videos"
	seedFrames(t, store, dir, "clip_0001.png", "other_0001.png", "other_0002.png")
	model := &fakeModel{}

	doc, err := New(model, testLogger(), 4, 1.0).Describe(context.Background(), store, dir, "clip")
	require.NoError(t, err)
	assert.Len(t, doc, 1)
	assert.Equal(t, 1, model.calls)
}

func TestFrameNumber(t *testing.T) {
	tests := []struct {
		video string
		name  string
		num   int
		ok    bool
	}{
		{"clip", "clip_0001.png", 1, true},
		{"clip", "clip_0042.png", 42, true},
		{"my_video", "my_video_0007.png", 7, true},
		{"clip", "clip.png", 0, false},
		{"clip", "clip_abcd.png", 0, false},
		{"clip", "other_0001.png", 0, false},
	}
	for _, tt := range tests {
		num, ok := frameNumber(tt.video, tt.name)
		assert.Equal(t, tt.ok, ok, tt.name)
		assert.Equal(t, tt.num, num, tt.name)
	}
}
