// Package audio implements the Core Host's audio path (spec C3): a
// bounded, thread-safe ring buffer (FIFO) plus an adaptive-ratio
// resampler that converts the loaded module's native sample rate to the
// host's output rate.
package audio

import "sync"

// FIFO is a fixed-capacity byte ring buffer. It is the only Core Host
// object with its own synchronization: the frame loop writes to it from
// the instance's pinned goroutine, and a separate host audio puller
// reads from it, possibly from another goroutine.
type FIFO struct {
	mu     sync.Mutex
	buffer []byte
	avail  int // bytes currently occupied
	first  int // read cursor
	last   int // write cursor
}

// NewFIFO creates a FIFO of the given capacity, which must be a power of
// two (8 KiB is a typical size for one frame's worth of resampled audio).
func NewFIFO(size int) *FIFO {
	if size <= 0 || size&(size-1) != 0 {
		panic("audio: FIFO size must be a power of two")
	}
	return &FIFO{buffer: make([]byte, size)}
}

// Size returns the FIFO's total capacity in bytes.
func (f *FIFO) Size() int {
	return len(f.buffer)
}

// Occupied returns the number of bytes currently buffered.
func (f *FIFO) Occupied() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.avail
}

// Free returns the number of bytes of spare capacity.
func (f *FIFO) Free() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.buffer) - f.avail
}

// Reset empties the FIFO without changing its capacity.
func (f *FIFO) Reset() {
	f.mu.Lock()
	f.avail = 0
	f.first = 0
	f.last = 0
	f.mu.Unlock()
}

// Write copies src into the FIFO, truncating silently to the available
// free space if src is larger than it. It returns the number of bytes
// actually written.
func (f *FIFO) Write(src []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(src)
	free := len(f.buffer) - f.avail
	if n > free {
		n = free
	}
	if n == 0 {
		return 0
	}

	first := n
	if f.last+first > len(f.buffer) {
		first = len(f.buffer) - f.last
	}
	copy(f.buffer[f.last:], src[:first])
	if rem := n - first; rem > 0 {
		copy(f.buffer[:rem], src[first:n])
	}

	f.last = (f.last + n) % len(f.buffer)
	f.avail += n
	return n
}

// Read copies up to len(dst) bytes out of the FIFO into dst, truncating
// silently to the available occupied bytes. It returns the number of
// bytes actually read.
func (f *FIFO) Read(dst []byte) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	n := len(dst)
	if n > f.avail {
		n = f.avail
	}
	if n == 0 {
		return 0
	}

	first := n
	if f.first+first > len(f.buffer) {
		first = len(f.buffer) - f.first
	}
	copy(dst[:first], f.buffer[f.first:])
	if rem := n - first; rem > 0 {
		copy(dst[first:n], f.buffer[:rem])
	}

	f.first = (f.first + n) % len(f.buffer)
	f.avail -= n
	return n
}
