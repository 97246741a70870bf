package history

import "fmt"

// Buffer is a fixed-capacity FIFO of scalar samples used for trend charts.
// When full, pushing a new sample evicts the oldest one. The capacity is
// fixed at construction and never exceeded.
type Buffer struct {
	samples []float64
	head    int
	size    int
}

// New creates a Buffer holding at most capacity samples.
func New(capacity int) (*Buffer, error) {
	if capacity <= 0 {
		return nil, fmt.Errorf("history: capacity must be positive, got %d", capacity)
	}
	return &Buffer{samples: make([]float64, capacity)}, nil
}

// Push appends a sample, evicting the oldest if the buffer is full.
func (b *Buffer) Push(v float64) {
	idx := (b.head + b.size) % len(b.samples)
	b.samples[idx] = v
	if b.size < len(b.samples) {
		b.size++
	} else {
		b.head = (b.head + 1) % len(b.samples)
	}
}

// Values returns the buffered samples oldest-first. The returned slice is a
// copy and safe to retain.
func (b *Buffer) Values() []float64 {
	out := make([]float64, b.size)
	for i := 0; i < b.size; i++ {
		out[i] = b.samples[(b.head+i)%len(b.samples)]
	}
	return out
}

// Len returns the number of buffered samples.
func (b *Buffer) Len() int { return b.size }

// Cap returns the fixed capacity.
func (b *Buffer) Cap() int { return len(b.samples) }

// Latest returns the most recent sample, or false if the buffer is empty.
func (b *Buffer) Latest() (float64, bool) {
	if b.size == 0 {
		return 0, false
	}
	return b.samples[(b.head+b.size-1)%len(b.samples)], true
}
