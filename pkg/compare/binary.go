package compare

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/sdejongh/treesync/pkg/storage"
)

// BinaryComparator compares files byte-by-byte after a size check
type BinaryComparator struct {
	bufferSize int
	bufferPool *sync.Pool
}

// NewBinaryComparator creates a new byte-by-byte comparator
func NewBinaryComparator(bufferSize int) *BinaryComparator {
	if bufferSize < 4096 {
		bufferSize = 4096
	}
	return &BinaryComparator{
		bufferSize: bufferSize,
		bufferPool: &sync.Pool{
			New: func() interface{} {
				buf := make([]byte, bufferSize)
				return &buf
			},
		},
	}
}

// Compare compares two files byte-by-byte
func (c *BinaryComparator) Compare(ctx context.Context, left, right storage.Backend, leftPath, rightPath string) (*Comparison, error) {
	cmp := &Comparison{LeftPath: leftPath, RightPath: rightPath}

	leftInfo, err := left.Stat(ctx, leftPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat left: %w", err)
	}
	rightInfo, err := right.Stat(ctx, rightPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat right: %w", err)
	}

	// Quick check: if sizes differ, files are different
	if leftInfo.Size != rightInfo.Size {
		cmp.Result = Different
		cmp.Reason = fmt.Sprintf("size mismatch: left=%d, right=%d", leftInfo.Size, rightInfo.Size)
		return cmp, nil
	}

	leftReader, err := left.Open(ctx, leftPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open left file: %w", err)
	}
	defer leftReader.Close()

	rightReader, err := right.Open(ctx, rightPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open right file: %w", err)
	}
	defer rightReader.Close()

	leftBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(leftBufPtr)
	leftBuf := *leftBufPtr

	rightBufPtr := c.bufferPool.Get().(*[]byte)
	defer c.bufferPool.Put(rightBufPtr)
	rightBuf := *rightBufPtr

	var compared int64
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		// ReadFull keeps both sides aligned on short reads
		leftN, leftErr := io.ReadFull(leftReader, leftBuf)
		rightN, rightErr := io.ReadFull(rightReader, rightBuf)

		if leftErr != nil && !isEOF(leftErr) {
			return nil, fmt.Errorf("failed to read left: %w", leftErr)
		}
		if rightErr != nil && !isEOF(rightErr) {
			return nil, fmt.Errorf("failed to read right: %w", rightErr)
		}

		if leftN != rightN || !bytes.Equal(leftBuf[:leftN], rightBuf[:rightN]) {
			cmp.Result = Different
			cmp.Reason = fmt.Sprintf("content differs at byte offset %d", compared+firstDiff(leftBuf[:leftN], rightBuf[:rightN]))
			return cmp, nil
		}
		compared += int64(leftN)

		if leftErr != nil || rightErr != nil {
			if isEOF(leftErr) != isEOF(rightErr) {
				cmp.Result = Different
				cmp.Reason = fmt.Sprintf("one file ends at %d", compared)
				return cmp, nil
			}
			break
		}
	}

	cmp.Result = Same
	cmp.Reason = fmt.Sprintf("binary content matches (%d bytes)", compared)
	return cmp, nil
}

// Name returns the comparator name
func (c *BinaryComparator) Name() string {
	return "binary"
}

func isEOF(err error) bool {
	return errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF)
}

func firstDiff(a, b []byte) int64 {
	n := min(len(a), len(b))
	for i := 0; i < n; i++ {
		if a[i] != b[i] {
			return int64(i)
		}
	}
	return int64(n)
}
