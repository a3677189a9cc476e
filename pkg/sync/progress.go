package sync

import "sync"

// Progress accumulates bytes and finished operations across workers.
// A nil Progress discards updates.
type Progress struct {
	mu         sync.Mutex
	bytes      int64
	operations int
	failed     int
}

// NewProgress creates an empty accumulator
func NewProgress() *Progress {
	return &Progress{}
}

// AddBytes records n more bytes written
func (p *Progress) AddBytes(n int64) {
	if p == nil || n == 0 {
		return
	}
	p.mu.Lock()
	p.bytes += n
	p.mu.Unlock()
}

// Finish records a discharged operation
func (p *Progress) Finish(failed bool) {
	if p == nil {
		return
	}
	p.mu.Lock()
	p.operations++
	if failed {
		p.failed++
	}
	p.mu.Unlock()
}

// Snapshot returns the running totals
func (p *Progress) Snapshot() (bytes int64, operations, failed int) {
	if p == nil {
		return 0, 0, 0
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.bytes, p.operations, p.failed
}

// Bytes returns the bytes written so far
func (p *Progress) Bytes() int64 {
	b, _, _ := p.Snapshot()
	return b
}
