// Package playback streams a sample source to the audio device through
// ebiten's audio context.
package playback

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"math"
	"sync"
	"time"

	ebitaudio "github.com/hajimehoshi/ebiten/v2/audio"
)

// Source fills interleaved stereo float32 frames.
type Source interface {
	Process(dst []float32)
}

// FinishingSource is a Source with an end. Once Finished reports true the
// stream returns io.EOF.
type FinishingSource interface {
	Source
	Finished() bool
}

const bytesPerFrame = 8 // two little-endian float32 samples

// StreamReader adapts a Source to the io.Reader ebiten expects for F32
// players.
type StreamReader struct {
	mu     sync.Mutex
	source Source
	buf    []float32
}

// NewStreamReader wraps source.
func NewStreamReader(source Source) *StreamReader {
	return &StreamReader{source: source}
}

// Read renders len(p)/8 frames into p.
func (r *StreamReader) Read(p []byte) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	frames := len(p) / bytesPerFrame
	if frames == 0 {
		return 0, nil
	}

	need := 2 * frames
	if cap(r.buf) < need {
		r.buf = make([]float32, need)
	}

	r.buf = r.buf[:need]
	r.source.Process(r.buf)

	for i, v := range r.buf {
		binary.LittleEndian.PutUint32(p[4*i:], math.Float32bits(v))
	}

	n := frames * bytesPerFrame
	if fs, ok := r.source.(FinishingSource); ok && fs.Finished() {
		return n, io.EOF
	}

	return n, nil
}

// Close implements io.Closer.
func (r *StreamReader) Close() error { return nil }

var (
	contextOnce       sync.Once
	sharedContext     *ebitaudio.Context
	contextSampleRate int
)

// audioContext returns the process-wide ebiten context, which can only be
// created once and at one rate.
func audioContext(sampleRate int) (*ebitaudio.Context, error) {
	contextOnce.Do(func() {
		contextSampleRate = sampleRate
		sharedContext = ebitaudio.NewContext(sampleRate)
	})

	if contextSampleRate != sampleRate {
		return nil, fmt.Errorf("playback: audio context already running at %d Hz (requested %d Hz)",
			contextSampleRate, sampleRate)
	}

	return sharedContext, nil
}

// Player plays a Source on the default device.
type Player struct {
	player *ebitaudio.Player
	reader *StreamReader
}

// NewPlayer creates a paused player for source at sampleRate.
func NewPlayer(sampleRate int, source Source) (*Player, error) {
	if sampleRate <= 0 {
		return nil, fmt.Errorf("playback: sample rate must be > 0: %d", sampleRate)
	}

	if source == nil {
		return nil, errors.New("playback: nil source")
	}

	ctx, err := audioContext(sampleRate)
	if err != nil {
		return nil, err
	}

	reader := NewStreamReader(source)

	pl, err := ctx.NewPlayerF32(reader)
	if err != nil {
		return nil, fmt.Errorf("playback: %w", err)
	}

	return &Player{player: pl, reader: reader}, nil
}

// Play starts or resumes playback.
func (p *Player) Play() { p.player.Play() }

// Pause pauses playback.
func (p *Player) Pause() { p.player.Pause() }

// IsPlaying reports whether the device is consuming audio.
func (p *Player) IsPlaying() bool { return p.player.IsPlaying() }

// Position returns what the listener is hearing now.
func (p *Player) Position() time.Duration { return p.player.Position() }

// SetBufferSize sets the device buffer; smaller is lower latency.
func (p *Player) SetBufferSize(d time.Duration) { p.player.SetBufferSize(d) }

// Close stops playback and releases the player.
func (p *Player) Close() error {
	p.player.Pause()

	if err := p.player.Close(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}

	return p.reader.Close()
}
