package sync

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"

	"github.com/sdejongh/treesync/pkg/logging"
	"github.com/sdejongh/treesync/pkg/models"
	"github.com/sdejongh/treesync/pkg/ratelimit"
)

const (
	// DefaultChunkSize is the streaming copy buffer
	DefaultChunkSize = 1024 * 1024
	// DefaultWorkers is the size of the executor pool
	DefaultWorkers = 5
	// wholeFileFactor times the chunk size is the smallest streamed file
	wholeFileFactor = 10
)

// ProgressFunc receives the cumulative bytes written for an operation
// after each chunk
type ProgressFunc func(op models.FileOperation, written, total int64)

// Executor discharges file operations on a fixed worker pool.
// The zero value copies on the OS filesystem with default settings.
type Executor struct {
	Fs         afero.Fs
	Workers    int
	ChunkSize  int
	Limiter    *ratelimit.Limiter
	Progress   *Progress
	OnProgress ProgressFunc
	Logger     logging.Logger
}

// NewExecutor creates an executor on the OS filesystem
func NewExecutor(workers, chunkSize int, logger logging.Logger) *Executor {
	return &Executor{Workers: workers, ChunkSize: chunkSize, Logger: logger}
}

func (e *Executor) fs() afero.Fs {
	if e.Fs == nil {
		return afero.NewOsFs()
	}
	return e.Fs
}

func (e *Executor) workers() int {
	if e.Workers < 1 {
		return DefaultWorkers
	}
	return e.Workers
}

func (e *Executor) chunkSize() int {
	if e.ChunkSize < 1 {
		return DefaultChunkSize
	}
	return e.ChunkSize
}

// Threshold returns the size from which files are streamed in chunks
func (e *Executor) Threshold() int64 {
	return int64(wholeFileFactor * e.chunkSize())
}

// run state shared by the workers of one Execute call
type batch struct {
	*Executor
	fsys   afero.Fs
	logger logging.Logger
	pool   *sync.Pool
}

func (e *Executor) newBatch() *batch {
	size := e.chunkSize()
	return &batch{
		Executor: e,
		fsys:     e.fs(),
		logger:   logging.OrNull(e.Logger),
		pool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, size)
				return &buf
			},
		},
	}
}

// Execute runs ops and streams exactly one result per operation. The
// channel is closed once every operation has been discharged. Operations
// not yet started when ctx is done fail with the context error.
func (e *Executor) Execute(ctx context.Context, ops []models.FileOperation) <-chan models.OperationResult {
	b := e.newBatch()
	results := make(chan models.OperationResult, len(ops))
	queue := make(chan models.FileOperation)

	var wg sync.WaitGroup
	for i := 0; i < min(e.workers(), max(len(ops), 1)); i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for op := range queue {
				results <- b.run(ctx, op)
			}
		}()
	}

	go func() {
		for _, op := range ops {
			if err := ctx.Err(); err != nil {
				results <- b.finish(models.Failure(op, models.OperationFailed("cancelled before start: "+op.RelativePath, err)))
				continue
			}
			queue <- op
		}
		close(queue)
		wg.Wait()
		close(results)
	}()

	return results
}

// Flush synthesizes a zero-byte success for every operation without
// touching the filesystem
func (e *Executor) Flush(ops []models.FileOperation) <-chan models.OperationResult {
	b := e.newBatch()
	results := make(chan models.OperationResult, len(ops))
	for _, op := range ops {
		results <- b.finish(models.Success(op, 0))
	}
	close(results)
	return results
}

// run executes a single operation
func (b *batch) run(ctx context.Context, op models.FileOperation) models.OperationResult {
	switch op.Type {
	case models.OpInfo, models.OpCompareError:
		return b.finish(models.Success(op, 0))
	case models.OpDelete:
		if err := b.remove(op.DestinationPath); err != nil {
			return b.finish(models.Failure(op, models.OperationFailed("delete "+op.RelativePath, err)))
		}
		return b.finish(models.Success(op, 0))
	case models.OpCopy, models.OpUpdate:
		n, err := b.copyFile(ctx, op)
		if err != nil {
			return b.finish(models.Failure(op, err))
		}
		return b.finish(models.Success(op, n))
	default:
		return b.finish(models.Failure(op, models.OperationFailed(fmt.Sprintf("unknown operation type %q", op.Type), nil)))
	}
}

func (b *batch) finish(r models.OperationResult) models.OperationResult {
	b.Progress.Finish(!r.Succeeded())
	fields := logging.Fields{
		"type":  string(r.Operation.Type),
		"path":  r.Operation.RelativePath,
		"bytes": r.BytesTransferred,
	}
	if r.Err != nil {
		b.logger.Error(context.Background(), "operation failed", r.Err, fields)
	} else {
		b.logger.Debug(context.Background(), "operation complete", fields)
	}
	return r
}

// remove deletes a path; an absent path is not an error
func (b *batch) remove(path string) error {
	err := b.fsys.Remove(path)
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// copyFile writes the source over the destination. Small files are copied
// in one pass; files of at least Threshold bytes stream chunk by chunk with
// a progress callback after each one. The written byte count must equal the
// source size. A short write leaves the partial destination in place.
func (b *batch) copyFile(ctx context.Context, op models.FileOperation) (int64, error) {
	info, err := b.fsys.Stat(op.SourcePath)
	if err != nil {
		return 0, models.OperationFailed("stat source "+op.RelativePath, err)
	}
	if info.IsDir() {
		return 0, models.OperationFailed("source is a directory: "+op.RelativePath, nil)
	}
	size := info.Size()

	if err := b.fsys.MkdirAll(filepath.Dir(op.DestinationPath), 0755); err != nil {
		return 0, models.OperationFailed("create parent directories for "+op.RelativePath, err)
	}
	if err := b.remove(op.DestinationPath); err != nil {
		return 0, models.OperationFailed("remove existing "+op.RelativePath, err)
	}

	src, err := b.fsys.Open(op.SourcePath)
	if err != nil {
		return 0, models.OperationFailed("open source "+op.RelativePath, err)
	}
	defer src.Close()

	dst, err := b.fsys.OpenFile(op.DestinationPath, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return 0, models.OperationFailed("create destination "+op.RelativePath, err)
	}

	reader := ratelimit.NewReader(ctx, src, b.Limiter)

	var written int64
	if size < b.Threshold() {
		written, err = io.Copy(dst, reader)
		b.Progress.AddBytes(written)
		if err == nil && b.OnProgress != nil {
			b.OnProgress(op, written, size)
		}
	} else {
		written, err = b.copyChunked(op, dst, reader, size)
	}

	if closeErr := dst.Close(); err == nil && closeErr != nil {
		err = closeErr
	}
	if err != nil {
		return written, models.OperationFailed("copy "+op.RelativePath, err)
	}

	if written != size {
		return written, models.OperationFailed(fmt.Sprintf("copy %s: wrote %d of %d bytes", op.RelativePath, written, size), nil)
	}

	if err := b.fsys.Chtimes(op.DestinationPath, info.ModTime(), info.ModTime()); err != nil {
		b.logger.Warn(ctx, "failed to preserve modification time", logging.Fields{"path": op.RelativePath, "error": err.Error()})
	}

	return written, nil
}

func (b *batch) copyChunked(op models.FileOperation, dst io.Writer, src io.Reader, size int64) (int64, error) {
	bufPtr := b.pool.Get().(*[]byte)
	defer b.pool.Put(bufPtr)
	buf := *bufPtr

	var written int64
	for {
		n, rerr := io.ReadFull(src, buf)
		if n > 0 {
			w, werr := dst.Write(buf[:n])
			written += int64(w)
			b.Progress.AddBytes(int64(w))
			if werr != nil {
				return written, werr
			}
			if w != n {
				return written, io.ErrShortWrite
			}
			if b.OnProgress != nil {
				b.OnProgress(op, written, size)
			}
		}
		if rerr == io.EOF || rerr == io.ErrUnexpectedEOF {
			return written, nil
		}
		if rerr != nil {
			return written, rerr
		}
	}
}

// PlannedBytes returns the total source size of the copy and update
// operations in ops. Sources that cannot be stat'ed count as zero.
func (e *Executor) PlannedBytes(ops []models.FileOperation) int64 {
	fsys := e.fs()
	var total int64
	for _, op := range ops {
		if op.Type != models.OpCopy && op.Type != models.OpUpdate {
			continue
		}
		if op.Size > 0 {
			total += op.Size
			continue
		}
		if info, err := fsys.Stat(op.SourcePath); err == nil && !info.IsDir() {
			total += info.Size()
		}
	}
	return total
}
