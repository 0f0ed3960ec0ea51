package audio

import "sync/atomic"

// RingBuffer is a bounded single-producer/single-consumer queue of blocks.
// Push is only called by the producer and Pop/Peek only by the consumer;
// Reset requires both sides to be idle.
type RingBuffer struct {
	slots []*Block
	head  atomic.Uint64 // next slot to read
	tail  atomic.Uint64 // next slot to write
}

// NewRingBuffer creates a ring holding at most capacity blocks
func NewRingBuffer(capacity int) *RingBuffer {
	if capacity < 1 {
		capacity = 1
	}
	return &RingBuffer{slots: make([]*Block, capacity)}
}

// Push appends b and reports false when the ring is full
func (r *RingBuffer) Push(b *Block) bool {
	tail := r.tail.Load()
	if tail-r.head.Load() >= uint64(len(r.slots)) {
		return false
	}
	r.slots[tail%uint64(len(r.slots))] = b
	r.tail.Store(tail + 1)
	return true
}

// Pop removes and returns the oldest block, or nil when empty
func (r *RingBuffer) Pop() *Block {
	head := r.head.Load()
	if head == r.tail.Load() {
		return nil
	}
	i := head % uint64(len(r.slots))
	b := r.slots[i]
	r.slots[i] = nil
	r.head.Store(head + 1)
	return b
}

// Peek returns the oldest block without removing it
func (r *RingBuffer) Peek() *Block {
	head := r.head.Load()
	if head == r.tail.Load() {
		return nil
	}
	return r.slots[head%uint64(len(r.slots))]
}

// Len returns the number of queued blocks
func (r *RingBuffer) Len() int {
	return int(r.tail.Load() - r.head.Load())
}

// Cap returns the ring capacity in blocks
func (r *RingBuffer) Cap() int {
	return len(r.slots)
}

// Reset drops every queued block
func (r *RingBuffer) Reset() {
	for i := range r.slots {
		r.slots[i] = nil
	}
	r.head.Store(0)
	r.tail.Store(0)
}
