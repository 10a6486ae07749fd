package audio

import (
	"errors"
	"sync"
)

// ErrBufferFull is returned when the buffer exceeds its maximum size
var ErrBufferFull = errors.New("audio buffer full")

// Buffer accumulates audio chunks until flushed.
type Buffer struct {
	chunks    [][]byte
	totalSize int
	maxSize   int
	mu        sync.Mutex
}

// NewBuffer creates a buffer with the specified maximum size in bytes.
func NewBuffer(maxSize int) *Buffer {
	return &Buffer{maxSize: maxSize}
}

// MaxSize returns the maximum buffer size.
func (b *Buffer) MaxSize() int {
	return b.maxSize
}

// Append adds an audio chunk. Returns ErrBufferFull when adding the chunk
// would exceed the maximum size.
func (b *Buffer) Append(chunk []byte) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	newSize := b.totalSize + len(chunk)
	if newSize > b.maxSize {
		return ErrBufferFull
	}
	b.chunks = append(b.chunks, chunk)
	b.totalSize = newSize
	return nil
}

// Flush concatenates all chunks in order, clears the buffer, and returns
// the complete audio data.
func (b *Buffer) Flush() []byte {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.chunks) == 0 {
		return nil
	}
	result := make([]byte, 0, b.totalSize)
	for _, chunk := range b.chunks {
		result = append(result, chunk...)
	}
	b.chunks = nil
	b.totalSize = 0
	return result
}

// Clear empties the buffer without returning data.
func (b *Buffer) Clear() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.chunks = nil
	b.totalSize = 0
}

// Size returns the current total buffered bytes.
func (b *Buffer) Size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.totalSize
}

// IsEmpty returns true when no chunks are buffered.
func (b *Buffer) IsEmpty() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.chunks) == 0
}
