// Package buffer transfers variable-length result sets out of pooled,
// fixed-capacity scratch buffers into caller-owned slices.
//
// A producer obtains a Buffer from a Pool, fills it and reports how many
// records are valid. Take copies exactly that many records into a fresh
// slice and hands the storage back to the pool it came from. Each Buffer
// can be taken or released once; a second attempt fails with
// ErrAlreadyTaken and never touches the pool.
package buffer

import (
	"errors"
	"sync"
	"sync/atomic"
)

// Sentinel errors for the buffer package.
var (
	// ErrCountExceedsCapacity is returned when the reported record count is
	// negative or larger than the buffer's capacity.
	ErrCountExceedsCapacity = errors.New("buffer: count exceeds capacity")

	// ErrAlreadyTaken is returned when a buffer is transferred twice.
	ErrAlreadyTaken = errors.New("buffer: already taken")
)

// Pool is a thread-safe pool of fixed-capacity record storage.
type Pool[T any] struct {
	mu       sync.Mutex
	free     [][]T
	capacity int
	maxFree  int

	outstanding atomic.Int64
}

// NewPool creates a pool whose buffers hold capacity records. At most
// maxFree idle allocations are retained; 0 means unlimited.
func NewPool[T any](capacity, maxFree int) *Pool[T] {
	return &Pool[T]{
		capacity: max(capacity, 0),
		maxFree:  maxFree,
	}
}

// Capacity returns the record capacity of buffers from this pool.
func (p *Pool[T]) Capacity() int {
	return p.capacity
}

// Outstanding returns the number of buffers handed out and not yet
// returned.
func (p *Pool[T]) Outstanding() int {
	return int(p.outstanding.Load())
}

// Get returns an empty buffer with the pool's capacity.
func (p *Pool[T]) Get() *Buffer[T] {
	p.outstanding.Add(1)

	p.mu.Lock()
	var data []T
	if n := len(p.free); n > 0 {
		data = p.free[n-1]
		p.free[n-1] = nil
		p.free = p.free[:n-1]
	}
	p.mu.Unlock()

	if data == nil {
		data = make([]T, p.capacity)
	}
	return &Buffer[T]{data: data, n: len(data), pool: p}
}

func (p *Pool[T]) put(data []T) {
	p.outstanding.Add(-1)
	clear(data)

	p.mu.Lock()
	defer p.mu.Unlock()
	if p.maxFree > 0 && len(p.free) >= p.maxFree {
		return
	}
	p.free = append(p.free, data)
}

// Buffer is pooled scratch storage for records of type T.
// A Buffer is owned by a single producer until it is taken.
type Buffer[T any] struct {
	data  []T
	n     int
	pool  *Pool[T]
	taken atomic.Bool
}

// Data returns the full-capacity backing slice for the producer to fill.
// It must not be used after Take or Release.
func (b *Buffer[T]) Data() []T {
	return b.data
}

// Cap returns the number of records the buffer can hold.
func (b *Buffer[T]) Cap() int {
	return b.n
}

// Take copies the first count records into a new slice and returns the
// storage to its pool. The result is never nil.
func Take[T any](b *Buffer[T], count int) ([]T, error) {
	if count < 0 || count > b.n {
		return nil, ErrCountExceedsCapacity
	}
	if !b.taken.CompareAndSwap(false, true) {
		return nil, ErrAlreadyTaken
	}

	out := make([]T, count)
	copy(out, b.data[:count])
	b.giveBack()
	return out, nil
}

// Release returns the storage to its pool without copying. It is the
// error path counterpart of Take and reports ErrAlreadyTaken likewise.
func (b *Buffer[T]) Release() error {
	if !b.taken.CompareAndSwap(false, true) {
		return ErrAlreadyTaken
	}
	b.giveBack()
	return nil
}

func (b *Buffer[T]) giveBack() {
	if b.pool != nil {
		b.pool.put(b.data)
	}
}
