// Package ratelimit caps the aggregate throughput of file copies.
package ratelimit

import (
	"context"
	"io"

	"golang.org/x/time/rate"
)

// minBucket keeps bursts large enough for whole copy chunks
const minBucket = 64 * 1024

// Limiter is a byte-rate limiter shared by every copy of one run
type Limiter struct {
	limiter        *rate.Limiter
	bytesPerSecond int64
	burst          int
}

// NewLimiter creates a limiter for the given rate. A non-positive rate
// returns nil, which every function in this package treats as unlimited.
func NewLimiter(bytesPerSecond int64) *Limiter {
	if bytesPerSecond <= 0 {
		return nil
	}

	// One second worth of data, never below minBucket
	burst := int(max(bytesPerSecond, minBucket))

	return &Limiter{
		limiter:        rate.NewLimiter(rate.Limit(bytesPerSecond), burst),
		bytesPerSecond: bytesPerSecond,
		burst:          burst,
	}
}

// Rate returns the configured bytes per second, 0 when unlimited
func (l *Limiter) Rate() int64 {
	if l == nil {
		return 0
	}
	return l.bytesPerSecond
}

// Burst returns the largest amount charged in one step
func (l *Limiter) Burst() int {
	if l == nil {
		return 0
	}
	return l.burst
}

// Wait blocks until n bytes may be transferred or ctx is done. Requests larger
// than the burst are served in burst-sized installments.
func (l *Limiter) Wait(ctx context.Context, n int64) error {
	if l == nil {
		return nil
	}
	for n > 0 {
		chunk := min(n, int64(l.burst))
		if err := l.limiter.WaitN(ctx, int(chunk)); err != nil {
			return err
		}
		n -= chunk
	}
	return nil
}

// Reader wraps an io.Reader with bandwidth limiting
type Reader struct {
	reader  io.Reader
	limiter *Limiter
	ctx     context.Context
}

// NewReader wraps r; a nil limiter returns r unchanged
func NewReader(ctx context.Context, r io.Reader, limiter *Limiter) io.Reader {
	if limiter == nil {
		return r
	}
	return &Reader{reader: r, limiter: limiter, ctx: ctx}
}

// Read reads at most one burst and then waits for the bytes actually read
func (r *Reader) Read(p []byte) (int, error) {
	if err := r.ctx.Err(); err != nil {
		return 0, err
	}
	if len(p) > r.limiter.burst {
		p = p[:r.limiter.burst]
	}
	n, err := r.reader.Read(p)
	if n > 0 {
		if werr := r.limiter.Wait(r.ctx, int64(n)); werr != nil {
			return n, werr
		}
	}
	return n, err
}
