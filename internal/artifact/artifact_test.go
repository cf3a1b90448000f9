package artifact

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestArtifactPaths(t *testing.T) {
	dir := filepath.Join("videos", "demo")

	assert.Equal(t, filepath.Join(dir, "frames"), FramesDir(dir))
	assert.Equal(t, filepath.Join(dir, "frames", "clip_%04d.png"), FramePattern(dir, "clip"))
	assert.Equal(t, filepath.Join(dir, "clip.scene.json"), ScenePath(dir, "clip"))
	assert.Equal(t, filepath.Join(dir, "clip.description.json"), DescriptionPath(dir, "clip"))
	assert.Equal(t, filepath.Join(dir, "demo.descriptions.json"), GroupedPath(dir))
}

func TestWriteJSONDeterministic(t *testing.T) {
	store := NewMemStore()
	doc := map[string]string{
		"000:00:01.000": "b",
		"000:00:00.000": "a",
	}

	require.NoError(t, WriteJSON(store, "out.json", doc))
	first, err := store.Read("out.json")
	require.NoError(t, err)

	require.NoError(t, WriteJSON(store, "out.json", doc))
	second, err := store.Read("out.json")
	require.NoError(t, err)

	assert.Equal(t, first, second, "rewriting identical content must be byte-identical")
	assert.Equal(t, byte('\n'), first[len(first)-1])
	// Map keys marshal sorted, so the artifact is chronological on disk.
	assert.Less(t,
		indexOf(t, first, "000:00:00.000"),
		indexOf(t, first, "000:00:01.000"),
	)
}

func TestWriteJSONDoesNotEscapeText(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, WriteJSON(store, "out.json", map[string]string{"k": "a <red> car & truck"}))

	data, err := store.Read("out.json")
	require.NoError(t, err)
	assert.Contains(t, string(data), "a <red> car & truck")
}

func TestReadJSONReportsParseErrors(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Write("bad.json", []byte("{not json")))

	var v map[string]string
	err := ReadJSON(store, "bad.json", &v)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "bad.json")
}

func TestFrameFiles(t *testing.T) {
	store := NewMemStore()
	dir := "videos"
	for _, name := range []string{"clip_0001.png", "clip_0002.png", "other_0001.png", "clip_notes.txt"} {
		require.NoError(t, store.Write(filepath.Join(FramesDir(dir), name), []byte("x")))
	}

	frames, err := FrameFiles(store, dir, "clip")
	require.NoError(t, err)
	assert.Equal(t, []string{"clip_0001.png", "clip_0002.png"}, frames)
}

func TestFrameVideos(t *testing.T) {
	store := NewMemStore()
	dir := "videos"
	for _, name := range []string{
		"clip_0001.png",
		"clip_0002.png",
		"my_video_0001.png", // identity contains an underscore
		"notaframe.png",     // no frame number suffix
		"readme.txt",
	} {
		require.NoError(t, store.Write(filepath.Join(FramesDir(dir), name), []byte("x")))
	}

	videos, err := FrameVideos(store, dir)
	require.NoError(t, err)
	assert.Equal(t, []string{"clip", "my_video"}, videos)
}

func TestComplete(t *testing.T) {
	store := NewMemStore()
	dir := "videos"

	t.Run("missing artifacts are incomplete", func(t *testing.T) {
		assert.False(t, Complete(store, dir, "clip", KindFrames))
		assert.False(t, Complete(store, dir, "clip", KindScenes))
		assert.False(t, Complete(store, dir, "clip", KindDescription))
		assert.False(t, Complete(store, dir, "clip", KindGrouped))
	})

	t.Run("frames need at least one image", func(t *testing.T) {
		require.NoError(t, store.Write(filepath.Join(FramesDir(dir), "clip_0001.png"), []byte("png")))
		assert.True(t, Complete(store, dir, "clip", KindFrames))
		assert.False(t, Complete(store, dir, "other", KindFrames))
	})

	t.Run("truncated JSON is incomplete, not fatal", func(t *testing.T) {
		require.NoError(t, store.Write(DescriptionPath(dir, "clip"), []byte(`{"000:00:00.000": "a red`)))
		assert.False(t, Complete(store, dir, "clip", KindDescription))
	})

	t.Run("valid JSON is complete", func(t *testing.T) {
		require.NoError(t, store.Write(DescriptionPath(dir, "clip"), []byte(`{"000:00:00.000": "a red car"}`)))
		assert.True(t, Complete(store, dir, "clip", KindDescription))

		require.NoError(t, store.Write(ScenePath(dir, "clip"), []byte(`{"video_file": "clip.mp4"}`)))
		assert.True(t, Complete(store, dir, "clip", KindScenes))
	})

	t.Run("unknown kind", func(t *testing.T) {
		assert.False(t, Complete(store, dir, "clip", Kind("bogus")))
	})
}

func TestFSStore(t *testing.T) {
	store := NewFSStore()
	dir := t.TempDir()
	path := filepath.Join(dir, "sub", "doc.json")

	assert.False(t, store.Exists(path))

	require.NoError(t, store.Write(path, []byte(`{}`)), "Write creates parent directories")
	assert.True(t, store.Exists(path))

	data, err := store.Read(path)
	require.NoError(t, err)
	assert.Equal(t, []byte(`{}`), data)

	names, err := store.List(filepath.Join(dir, "sub"))
	require.NoError(t, err)
	assert.Equal(t, []string{"doc.json"}, names)

	names, err = store.List(filepath.Join(dir, "missing"))
	require.NoError(t, err)
	assert.Empty(t, names)

	require.NoError(t, store.Remove(path))
	assert.False(t, store.Exists(path))
	require.NoError(t, store.Remove(path), "removing a missing file is not an error")

	require.NoError(t, store.RemoveAll(filepath.Join(dir, "sub")))
	_, err = os.Stat(filepath.Join(dir, "sub"))
	assert.True(t, os.IsNotExist(err))
}

func TestMemStoreDirSemantics(t *testing.T) {
	store := NewMemStore()
	require.NoError(t, store.Write(filepath.Join("a", "b", "one.json"), []byte("1")))
	require.NoError(t, store.Write(filepath.Join("a", "b", "c", "two.json"), []byte("2")))

	assert.True(t, store.Exists(filepath.Join("a", "b")))

	names, err := store.List(filepath.Join("a", "b"))
	require.NoError(t, err)
	assert.Equal(t, []string{"one.json"}, names, "List is non-recursive")

	require.NoError(t, store.RemoveAll(filepath.Join("a", "b")))
	assert.False(t, store.Exists(filepath.Join("a", "b", "one.json")))
	assert.False(t, store.Exists(filepath.Join("a", "b", "c", "two.json")))
}

func indexOf(t *testing.T, data []byte, substr string) int {
	t.Helper()
	i := bytes.Index(data, []byte(substr))
	require.GreaterOrEqual(t, i, 0, "expected %q in output", substr)
	return i
}
