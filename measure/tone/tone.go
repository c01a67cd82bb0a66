package tone

import (
	"errors"
	"fmt"
	"math"

	algofft "github.com/MeKo-Christian/algo-fft"
	"github.com/cwbudde/algo-acid/dsp/window"
	"github.com/cwbudde/algo-vecmath"
)

const (
	defaultMinHz = 20.0
	minSamples   = 16
)

var errSilent = errors.New("tone: signal is silent")

// Config holds analysis parameters.
type Config struct {
	SampleRate float64
	// FFTSize is rounded up to a power of two; zero picks the smallest power
	// of two that holds the signal.
	FFTSize int
	// MinHz excludes bins below it from peak and centroid search.
	MinHz      float64
	WindowType window.Type
}

// Result holds the measured features.
type Result struct {
	PeakHz     float64
	PeakLevel  float64 // linear amplitude of the peak partial
	CentroidHz float64
	RMS        float64
	Bins       int

	// ResolutionHz is the window's equivalent noise bandwidth in Hz.
	ResolutionHz float64
}

// Analyze windows signal, transforms it and extracts features.
func Analyze(signal []float64, cfg Config) (Result, error) {
	if cfg.SampleRate <= 0 || math.IsNaN(cfg.SampleRate) || math.IsInf(cfg.SampleRate, 0) {
		return Result{}, fmt.Errorf("tone: sample rate must be > 0 and finite: %f", cfg.SampleRate)
	}

	if len(signal) < minSamples {
		return Result{}, fmt.Errorf("tone: need at least %d samples: %d", minSamples, len(signal))
	}

	if cfg.MinHz <= 0 {
		cfg.MinHz = defaultMinHz
	}

	if cfg.WindowType == window.TypeRectangular {
		cfg.WindowType = window.TypeHann
	}

	fftSize := nextPowerOf2(max(cfg.FFTSize, len(signal)))

	res := Result{RMS: rms(signal)}
	if res.RMS == 0 {
		return res, errSilent
	}

	coeffs := window.Generate(cfg.WindowType, len(signal), window.WithPeriodic())

	gain, err := window.CoherentGain(coeffs)
	if err != nil {
		return Result{}, err
	}

	enbw, err := window.EquivalentNoiseBandwidth(coeffs)
	if err != nil {
		return Result{}, err
	}

	res.ResolutionHz = enbw * cfg.SampleRate / float64(len(signal))

	windowed, err := window.ApplyCoefficients(signal, coeffs)
	if err != nil {
		return Result{}, err
	}

	in := make([]complex128, fftSize)
	for i, v := range windowed {
		in[i] = complex(v, 0)
	}

	plan, err := algofft.NewPlan64(fftSize)
	if err != nil {
		return Result{}, fmt.Errorf("tone: fft plan: %w", err)
	}

	out := make([]complex128, fftSize)
	if err := plan.Forward(out, in); err != nil {
		return Result{}, fmt.Errorf("tone: fft: %w", err)
	}

	half := fftSize/2 + 1
	re := make([]float64, half)
	im := make([]float64, half)

	for i := range half {
		re[i] = real(out[i])
		im[i] = imag(out[i])
	}

	mag := make([]float64, half)
	vecmath.Magnitude(mag, re, im)

	binHz := cfg.SampleRate / float64(fftSize)
	first := int(math.Ceil(cfg.MinHz / binHz))
	res.Bins = half

	peak := -1
	var weighted, total float64

	for k := max(first, 1); k < half-1; k++ {
		weighted += float64(k) * binHz * mag[k]
		total += mag[k]

		if peak < 0 || mag[k] > mag[peak] {
			peak = k
		}
	}

	if peak < 0 || total == 0 {
		return res, errSilent
	}

	res.CentroidHz = weighted / total

	offset := parabolicOffset(mag[peak-1], mag[peak], mag[peak+1])
	res.PeakHz = (float64(peak) + offset) * binHz
	res.PeakLevel = 2 * mag[peak] / (gain * float64(len(signal)))

	return res, nil
}

// parabolicOffset returns the fractional bin offset of a peak from its
// neighbours.
func parabolicOffset(a, b, c float64) float64 {
	den := a - 2*b + c
	if den == 0 {
		return 0
	}

	return 0.5 * (a - c) / den
}

func rms(x []float64) float64 {
	var sum float64
	for _, v := range x {
		sum += v * v
	}

	return math.Sqrt(sum / float64(len(x)))
}

func nextPowerOf2(n int) int {
	p := 1
	for p < n {
		p <<= 1
	}

	return p
}
