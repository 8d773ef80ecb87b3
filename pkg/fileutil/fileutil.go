// Package fileutil provides helpers for reading snapshot and image files.
package fileutil

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/aihub-tools/aihub-export/pkg/logger"
)

var log = logger.New("fileutil:fileutil")

// MaxFileSize matches the largest message the server accepts (50 MB).
const MaxFileSize = 50 << 20

// pngSignature is the 8-byte header of every PNG file.
var pngSignature = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n'}

// ErrNotPNG is returned when an image file does not start with the PNG signature.
var ErrNotPNG = errors.New("file is not a PNG image")

// snapshotExtensions are the file types accepted as workflow snapshots.
var snapshotExtensions = map[string]bool{
	".json": true,
	".yaml": true,
	".yml":  true,
}

// FileExists checks if a file exists and is not a directory.
func FileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}

// DirExists checks if a directory exists.
func DirExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.IsDir()
}

// ReadLimited reads a whole file, failing when it is larger than max bytes.
func ReadLimited(path string, max int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, max+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	if int64(len(data)) > max {
		return nil, fmt.Errorf("%s is larger than %d bytes", path, max)
	}
	log.Printf("Read file: path=%s, size=%d bytes", path, len(data))
	return data, nil
}

// ReadPNG reads an image file and checks that it is a PNG.
func ReadPNG(path string) ([]byte, error) {
	data, err := ReadLimited(path, MaxFileSize)
	if err != nil {
		return nil, err
	}
	if !IsPNG(data) {
		return nil, fmt.Errorf("%s: %w", path, ErrNotPNG)
	}
	return data, nil
}

// IsPNG reports whether data starts with the PNG signature.
func IsPNG(data []byte) bool {
	return bytes.HasPrefix(data, pngSignature)
}

// IsSnapshotFile reports whether path has a snapshot extension.
func IsSnapshotFile(path string) bool {
	return snapshotExtensions[strings.ToLower(filepath.Ext(path))]
}

// ExpandSnapshotPaths replaces every directory argument with the snapshot
// files directly inside it. Files are kept as given. The result is sorted
// and free of duplicates.
func ExpandSnapshotPaths(args []string) ([]string, error) {
	seen := map[string]bool{}
	var out []string
	add := func(p string) {
		if !seen[p] {
			seen[p] = true
			out = append(out, p)
		}
	}

	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(filepath.Clean(arg))
			continue
		}
		entries, err := os.ReadDir(arg)
		if err != nil {
			return nil, err
		}
		for _, entry := range entries {
			if entry.IsDir() || !IsSnapshotFile(entry.Name()) {
				continue
			}
			add(filepath.Join(arg, entry.Name()))
		}
	}
	sort.Strings(out)
	log.Printf("Expanded %d arguments to %d snapshot files", len(args), len(out))
	return out, nil
}
