package cv

import "github.com/cwbudde/algo-acid/dsp/core"

// DefaultLightLambda is the fall rate of a smoothed light in 1/s.
const DefaultLightLambda = 30.0

// PeakFilter follows the peak of a signal: it jumps up to new maxima and
// decays exponentially towards lower input with rate Lambda (1/s).
type PeakFilter struct {
	Lambda float64
	out    float64
}

// Process feeds x observed over deltaTime seconds and returns the new peak.
func (p *PeakFilter) Process(deltaTime, x float64) float64 {
	k := core.Clamp(p.Lambda*deltaTime, 0, 1)
	y := p.out + (x-p.out)*k
	if x > y {
		y = x
	}

	p.out = core.FlushDenormals(y)

	return p.out
}

// Out returns the current peak.
func (p *PeakFilter) Out() float64 { return p.out }

// Reset clears the follower.
func (p *PeakFilter) Reset() { p.out = 0 }

// Light is an indicator brightness in [0, 1].
type Light struct {
	brightness float64
}

// Set sets the brightness immediately.
func (l *Light) Set(brightness float64) {
	l.brightness = core.Clamp(brightness, 0, 1)
}

// SetSmooth rises instantly and falls exponentially with DefaultLightLambda
// over deltaTime seconds.
func (l *Light) SetSmooth(brightness, deltaTime float64) {
	brightness = core.Clamp(brightness, 0, 1)
	if brightness >= l.brightness {
		l.brightness = brightness
		return
	}

	k := core.Clamp(DefaultLightLambda*deltaTime, 0, 1)
	l.brightness = core.FlushDenormals(l.brightness + (brightness-l.brightness)*k)
}

// Brightness returns the current brightness.
func (l *Light) Brightness() float64 { return l.brightness }
