// Package scanner finds litmus test files under a directory tree.
package scanner

import (
	"os"
	"path/filepath"
	"sort"
	"strings"
)

type FileInfo struct {
	Path string
	Size int64
}

// Scanner walks rootDir for files with one of the given extensions.
// Hidden directories such as a checker cache are not entered.
type Scanner struct {
	rootDir    string
	extensions []string
}

func New(rootDir string, extensions ...string) *Scanner {
	return &Scanner{
		rootDir:    rootDir,
		extensions: extensions,
	}
}

// Scan returns the matching files sorted by path.
func (s *Scanner) Scan() ([]FileInfo, error) {
	var files []FileInfo
	err := s.walk(func(path string, info os.FileInfo) {
		if !info.IsDir() && s.isTargetFile(path) {
			files = append(files, FileInfo{Path: path, Size: info.Size()})
		}
	})
	sort.Slice(files, func(i, j int) bool { return files[i].Path < files[j].Path })
	return files, err
}

// Dirs returns every directory Scan would enter, rootDir first.
func (s *Scanner) Dirs() ([]string, error) {
	var dirs []string
	err := s.walk(func(path string, info os.FileInfo) {
		if info.IsDir() {
			dirs = append(dirs, path)
		}
	})
	return dirs, err
}

func (s *Scanner) walk(visit func(path string, info os.FileInfo)) error {
	return filepath.Walk(s.rootDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path != s.rootDir && isHidden(info.Name()) {
			return filepath.SkipDir
		}
		visit(path, info)
		return nil
	})
}

func isHidden(name string) bool {
	return strings.HasPrefix(name, ".") && name != "." && name != ".."
}

func (s *Scanner) isTargetFile(path string) bool {
	if len(s.extensions) == 0 {
		return true
	}

	ext := filepath.Ext(path)
	for _, targetExt := range s.extensions {
		if ext == targetExt {
			return true
		}
	}
	return false
}
