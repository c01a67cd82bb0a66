// Package delay provides a circular delay line and a tempo-synced feedback
// echo built on it.
package delay

import "fmt"

// Line is a circular delay line.
type Line struct {
	buffer   []float64
	writePos int
}

// NewLine returns a line holding size samples.
func NewLine(size int) (*Line, error) {
	if size <= 0 {
		return nil, fmt.Errorf("delay: line size must be > 0: %d", size)
	}

	return &Line{buffer: make([]float64, size)}, nil
}

// Len returns the capacity in samples.
func (l *Line) Len() int { return len(l.buffer) }

// Write appends one sample, overwriting the oldest.
func (l *Line) Write(sample float64) {
	l.buffer[l.writePos] = sample

	l.writePos++
	if l.writePos >= len(l.buffer) {
		l.writePos = 0
	}
}

// Read returns the sample written delay writes ago; Read(1) is the newest.
// Delays are clamped to [1, Len].
func (l *Line) Read(delay int) float64 {
	size := len(l.buffer)
	delay = min(max(delay, 1), size)

	return l.buffer[(l.writePos-delay+size)%size]
}

// Reset clears the line.
func (l *Line) Reset() {
	clear(l.buffer)
	l.writePos = 0
}
