package ignore

import (
	"bufio"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/spf13/afero"
)

// Sources lists the directories whose ignore files are merged, in load order
type Sources struct {
	Home  string
	Left  string
	Right string
}

// Files returns the ignore file paths in load order: home, left, right.
// Empty directories are skipped.
func (s Sources) Files() []string {
	var files []string
	for _, dir := range []string{s.Home, s.Left, s.Right} {
		if dir == "" {
			continue
		}
		files = append(files, filepath.Join(dir, FileName))
	}
	return files
}

// Load reads and merges the ignore files of every source. Later files'
// patterns are appended after earlier ones and can override them. Missing
// files are skipped. With noIgnore only DefaultPatterns apply.
func Load(fsys afero.Fs, sources Sources, noIgnore bool) (*Matcher, error) {
	if noIgnore {
		m, _ := Compile(nil)
		return m, nil
	}

	var lines []string
	for _, file := range sources.Files() {
		fileLines, err := ReadLines(fsys, file)
		if err != nil {
			return nil, err
		}
		lines = append(lines, fileLines...)
	}

	m, errs := Compile(lines)
	if len(errs) > 0 {
		return nil, errors.Join(errs...)
	}
	return m, nil
}

// ReadLines returns the raw lines of an ignore file, or nothing if it does
// not exist
func ReadLines(fsys afero.Fs, path string) ([]string, error) {
	file, err := fsys.Open(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) || os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to open ignore file %s: %w", path, err)
	}
	defer file.Close()

	var lines []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		lines = append(lines, scanner.Text())
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read ignore file %s: %w", path, err)
	}

	return lines, nil
}
