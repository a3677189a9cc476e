// Package diff compares two directory trees into a DirectoryDifference.
//
// The right tree is enumerated according to the inclusion mode: fully
// (all), not at all with per-path existence probes (none), or only inside
// the left tree's leaf directories (leaf-folders-only). Paths present on
// both sides are checked by size then content; when fuzzy matching is on,
// the leftovers of each side are paired by filename similarity.
package diff

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"sync"
	"syscall"

	mapset "github.com/deckarep/golang-set/v2"
	"github.com/spf13/afero"
	"golang.org/x/sync/errgroup"

	"github.com/sdejongh/treesync/pkg/compare"
	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/scan"
	"github.com/sdejongh/treesync/pkg/similarity"
	"github.com/sdejongh/treesync/pkg/storage"
)

const compareBufferSize = 64 * 1024

// Engine runs comparisons
type Engine struct {
	// Fs is the filesystem both trees live on, the OS filesystem when nil
	Fs      afero.Fs
	Scanner *scan.Scanner
	// Workers bounds concurrent content checks (0 = default)
	Workers int
	Logger  logging.Logger

	binary *compare.BinaryComparator
	once   sync.Once
}

// NewEngine creates an engine on the OS filesystem
func NewEngine(workers int, logger logging.Logger) *Engine {
	return &Engine{
		Scanner: scan.New(workers, logger),
		Workers: workers,
		Logger:  logger,
	}
}

func (e *Engine) init() {
	e.once.Do(func() {
		if e.Fs == nil {
			e.Fs = afero.NewOsFs()
		}
		if e.Scanner == nil {
			e.Scanner = scan.New(e.Workers, e.Logger)
		}
		if e.Workers < 1 {
			e.Workers = scan.DefaultWorkers()
		}
		e.Logger = logging.OrNull(e.Logger)
		e.binary = compare.NewBinaryComparator(compareBufferSize)
	})
}

// Open validates both roots and returns their backends
func (e *Engine) Open(leftRoot, rightRoot string) (*storage.Local, *storage.Local, error) {
	e.init()
	left, err := storage.NewLocalFs(e.Fs, leftRoot)
	if err != nil {
		return nil, nil, err
	}
	right, err := storage.NewLocalFs(e.Fs, rightRoot)
	if err != nil {
		return nil, nil, err
	}
	return left, right, nil
}

// Compare produces the difference between opts.Left and opts.Right.
// Missing or non-directory roots fail with InvalidDirectoryError; any
// enumeration or read failure aborts with AccessDeniedError.
func (e *Engine) Compare(ctx context.Context, opts Options) (*models.DirectoryDifference, error) {
	e.init()
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	inclusion, _ := models.ParseScanInclusionMode(string(opts.Inclusion))

	left, right, err := e.Open(opts.Left, opts.Right)
	if err != nil {
		return nil, err
	}

	leftFiles, err := e.Scanner.Scan(ctx, left, opts.Recursive, opts.Ignore)
	if err != nil {
		return nil, err
	}

	var rightFiles mapset.Set[string]
	reportRightOnly := true

	switch inclusion {
	case models.IncludeNone:
		reportRightOnly = false
		if opts.Fuzzy() {
			// fuzzy candidates need the full right listing
			rightFiles, err = e.Scanner.Scan(ctx, right, opts.Recursive, opts.Ignore)
		} else {
			rightFiles, err = e.probe(ctx, right, leftFiles)
		}
	case models.IncludeLeafFoldersOnly:
		rightFiles, err = e.Scanner.ScanDirectories(ctx, right, scan.LeafDirectories(leftFiles.ToSlice()), opts.Ignore)
		if err == nil {
			var present mapset.Set[string]
			present, err = e.probe(ctx, right, leftFiles.Difference(rightFiles))
			if err == nil {
				rightFiles = rightFiles.Union(present)
			}
		}
	default:
		rightFiles, err = e.Scanner.Scan(ctx, right, opts.Recursive, opts.Ignore)
	}
	if err != nil {
		return nil, err
	}

	result, err := e.compareSets(ctx, left, right, leftFiles, rightFiles, opts)
	if err != nil {
		return nil, err
	}
	if !reportRightOnly {
		result.onlyInRight = nil
	}

	diff, err := models.NewDirectoryDifference(result.onlyInLeft, result.onlyInRight, result.modified.ToSlice(), result.common.ToSlice(), result.matches)
	if err != nil {
		return nil, err
	}

	summary := diff.Summary()
	e.Logger.Info(ctx, "comparison complete", logging.Fields{
		"left":        left.Root(),
		"right":       right.Root(),
		"inclusion":   string(inclusion),
		"fuzzy":       opts.Fuzzy(),
		"onlyInLeft":  summary.OnlyInLeft,
		"onlyInRight": summary.OnlyInRight,
		"modified":    summary.Modified,
		"common":      summary.Common,
		"fuzzyPairs":  len(result.matches),
	})
	return diff, nil
}

type setResult struct {
	onlyInLeft  []string
	onlyInRight []string
	modified    mapset.Set[string]
	common      mapset.Set[string]
	matches     map[string]string
}

// compareSets splits two path sets into the four difference classes
func (e *Engine) compareSets(ctx context.Context, left, right storage.Backend, leftFiles, rightFiles mapset.Set[string], opts Options) (*setResult, error) {
	res := &setResult{
		modified: mapset.NewSet[string](),
		common:   mapset.NewSet[string](),
		matches:  make(map[string]string),
	}

	onlyLeft := leftFiles.Difference(rightFiles)
	onlyRight := rightFiles.Difference(leftFiles)
	candidates := leftFiles.Intersect(rightFiles)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)

	for _, p := range candidates.ToSlice() {
		p := p
		g.Go(func() error {
			cmp, err := e.binary.Compare(gctx, left, right, p, p)
			if err != nil {
				return models.AccessDenied(fmt.Sprintf("cannot compare %s", p), err)
			}
			if cmp.Equal() {
				res.common.Add(p)
			} else {
				res.modified.Add(p)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	if opts.Fuzzy() && onlyLeft.Cardinality() > 0 && onlyRight.Cardinality() > 0 {
		pairs := similarity.FindFuzzyMatches(onlyLeft.ToSlice(), onlyRight.ToSlice(), opts.MatchPrecision)

		var comparator compare.Comparator = e.binary
		if opts.SizeTolerance > 0 {
			comparator = compare.NewSizeComparator(opts.SizeTolerance)
		}

		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(e.Workers)
		for l, r := range pairs {
			l, r := l, r
			g.Go(func() error {
				cmp, err := comparator.Compare(gctx, left, right, l, r)
				if err != nil {
					return models.AccessDenied(fmt.Sprintf("cannot compare %s with %s", l, r), err)
				}
				if cmp.Equal() {
					res.common.Add(l)
				} else {
					res.modified.Add(l)
				}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}

		for l, r := range pairs {
			onlyLeft.Remove(l)
			onlyRight.Remove(r)
			res.matches[l] = r
		}

		e.Logger.Debug(ctx, "fuzzy matching complete", logging.Fields{
			"precision": opts.MatchPrecision,
			"tolerance": opts.SizeTolerance,
			"pairs":     len(pairs),
		})
	}

	res.onlyInLeft = onlyLeft.ToSlice()
	res.onlyInRight = onlyRight.ToSlice()
	return res, nil
}

// probe returns the subset of paths that exist as regular files on the
// backend, without enumerating it. Anything else at a file's path, such as
// a directory or a symlink, counts as absent, the same as in a full scan.
func (e *Engine) probe(ctx context.Context, backend storage.Backend, paths mapset.Set[string]) (mapset.Set[string], error) {
	present := mapset.NewSet[string]()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.Workers)

	for _, p := range paths.ToSlice() {
		p := p
		g.Go(func() error {
			info, err := backend.Lstat(gctx, p)
			if err != nil {
				if errors.Is(err, fs.ErrNotExist) || errors.Is(err, syscall.ENOTDIR) {
					return nil
				}
				return models.AccessDenied(fmt.Sprintf("cannot stat %s in %s", p, backend.Root()), err)
			}
			if info.IsRegular() {
				present.Add(p)
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return present, nil
}
