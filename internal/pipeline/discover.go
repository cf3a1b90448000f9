package pipeline

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// videoExtensions is the set of container formats treated as videos.
var videoExtensions = map[string]bool{
	".mp4":  true,
	".avi":  true,
	".mov":  true,
	".mkv":  true,
	".webm": true,
	".flv":  true,
	".m4v":  true,
	".wmv":  true,
}

// Discover walks root recursively and returns the directories containing
// video files, in lexicographic order, with each directory's videos sorted.
// frames/ subdirectories are skipped so extracted frame images are never
// mistaken for videos.
func Discover(root string) (dirs []string, videosByDir map[string][]string, err error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, nil, fmt.Errorf("directory %q does not exist: %w", root, err)
	}
	if !info.IsDir() {
		return nil, nil, fmt.Errorf("%q is not a directory", root)
	}

	videosByDir = make(map[string][]string)
	err = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "frames" && path != root {
				return filepath.SkipDir
			}
			return nil
		}
		if videoExtensions[strings.ToLower(filepath.Ext(path))] {
			dir := filepath.Dir(path)
			videosByDir[dir] = append(videosByDir[dir], path)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	for dir := range videosByDir {
		sort.Strings(videosByDir[dir])
		dirs = append(dirs, dir)
	}
	sort.Strings(dirs)
	return dirs, videosByDir, nil
}
