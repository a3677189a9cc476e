// Package scan enumerates the regular files of a directory tree.
package scan

import (
	"context"
	"fmt"
	"path"
	"runtime"
	"sort"

	mapset "github.com/deckarep/golang-set/v2"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/treesync/pkg/ignore"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/storage"
)

// DefaultWorkers returns the default directory fan-out
func DefaultWorkers() int {
	return 4 * runtime.NumCPU()
}

// Scanner walks trees concurrently, one task per directory
type Scanner struct {
	Workers int
	Logger  logging.Logger
}

// New creates a scanner with the given fan-out (0 = default)
func New(workers int, logger logging.Logger) *Scanner {
	return &Scanner{Workers: workers, Logger: logger}
}

func (s *Scanner) workers() int {
	if s == nil || s.Workers < 1 {
		return DefaultWorkers()
	}
	return s.Workers
}

func (s *Scanner) logger() logging.Logger {
	if s == nil {
		return logging.NewNullLogger()
	}
	return logging.OrNull(s.Logger)
}

// Scan returns the relative paths of every regular file under the backend
// root that the matcher does not ignore. With recursive false only direct
// children of the root are visited. Any enumeration error aborts the scan
// with an AccessDeniedError.
func (s *Scanner) Scan(ctx context.Context, backend storage.Backend, recursive bool, matcher *ignore.Matcher) (mapset.Set[string], error) {
	files := mapset.NewSet[string]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	var walk func(dir string) error
	walk = func(dir string) error {
		entries, err := backend.ReadDir(gctx, dir)
		if err != nil {
			return models.AccessDenied(fmt.Sprintf("cannot enumerate %s in %s", dir, backend.Root()), err)
		}

		for _, entry := range entries {
			switch {
			case entry.IsSymlink:
				continue
			case entry.IsDir:
				if !recursive {
					continue
				}
				if !matcher.HasNegations() && matcher.ShouldIgnore(entry.RelativePath, true) {
					continue
				}
				child := entry.RelativePath
				if !g.TryGo(func() error { return walk(child) }) {
					// Pool is saturated, descend inline
					if err := walk(child); err != nil {
						return err
					}
				}
			case entry.IsRegular():
				if !matcher.ShouldIgnore(entry.RelativePath, false) {
					files.Add(entry.RelativePath)
				}
			}
		}
		return nil
	}

	err := walk(".")
	if werr := g.Wait(); err == nil {
		err = werr
	}
	if err != nil {
		return nil, err
	}

	s.logger().Debug(ctx, "scan complete", logging.Fields{
		"root":      backend.Root(),
		"recursive": recursive,
		"files":     files.Cardinality(),
	})
	return files, nil
}

// ScanDirectories lists the regular files directly inside each of dirs and
// unions them. Directories missing from the backend are skipped. Used to
// probe only the right-hand leaf directories.
func (s *Scanner) ScanDirectories(ctx context.Context, backend storage.Backend, dirs []string, matcher *ignore.Matcher) (mapset.Set[string], error) {
	files := mapset.NewSet[string]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.workers())

	for _, dir := range dirs {
		dir := models.NormalizeRelative(dir)
		g.Go(func() error {
			exists, err := backend.Exists(gctx, dir)
			if err != nil {
				return models.AccessDenied(fmt.Sprintf("cannot stat %s in %s", dir, backend.Root()), err)
			}
			if !exists {
				return nil
			}
			info, err := backend.Lstat(gctx, dir)
			if err != nil {
				return models.AccessDenied(fmt.Sprintf("cannot stat %s in %s", dir, backend.Root()), err)
			}
			if !info.IsDir {
				return nil
			}

			entries, err := backend.ReadDir(gctx, dir)
			if err != nil {
				return models.AccessDenied(fmt.Sprintf("cannot enumerate %s in %s", dir, backend.Root()), err)
			}
			for _, entry := range entries {
				if entry.IsRegular() && !matcher.ShouldIgnore(entry.RelativePath, false) {
					files.Add(entry.RelativePath)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	s.logger().Debug(ctx, "leaf scan complete", logging.Fields{
		"root":        backend.Root(),
		"directories": len(dirs),
		"files":       files.Cardinality(),
	})
	return files, nil
}

// LeafDirectories returns the directories that hold files but no
// subdirectories containing files. Every directory prefix of the given
// paths is collected ("." for the root) and any prefix that is the parent
// of another prefix is dropped. The result is sorted.
func LeafDirectories(paths []string) []string {
	prefixes := mapset.NewThreadUnsafeSet[string]()
	for _, p := range paths {
		dir := path.Dir(models.NormalizeRelative(p))
		for {
			prefixes.Add(dir)
			if dir == "." {
				break
			}
			dir = path.Dir(dir)
		}
	}

	parents := mapset.NewThreadUnsafeSet[string]()
	for dir := range prefixes.Iter() {
		if dir != "." {
			parents.Add(path.Dir(dir))
		}
	}

	leaves := prefixes.Difference(parents).ToSlice()
	sort.Strings(leaves)
	return leaves
}
