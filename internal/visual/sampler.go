// Package visual turns recently played audio into spectrum bar levels.
package visual

import (
	"math"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
)

// WindowSize is the number of samples analyzed per frame
const WindowSize = 1024

const (
	minFreq    = 40
	maxFreq    = 16000
	decay      = 0.8
	attackKeep = 0.4
	decayKeep  = 0.75
)

// Frame holds one level in [0,1] per band, lowest frequency first
type Frame []float64

// Sampler computes spectrum frames over log-spaced frequency bands.
// It is not safe for concurrent use.
type Sampler struct {
	bands  int
	edges  []float64 // len(bands)+1, in Hz
	rate   float64
	window []float64
	buf    []float64
	prev   []float64
}

// NewSampler creates a sampler with the given number of bands for audio at
// sampleRate
func NewSampler(bands, sampleRate int) *Sampler {
	if bands < 1 {
		bands = 1
	}
	s := &Sampler{
		bands:  bands,
		window: make([]float64, WindowSize),
		buf:    make([]float64, WindowSize),
		prev:   make([]float64, bands),
	}
	for i := range s.window {
		s.window[i] = 0.5 * (1 - math.Cos(2*math.Pi*float64(i)/float64(WindowSize-1)))
	}
	s.SetSampleRate(sampleRate)
	return s
}

// SetSampleRate recomputes the band edges for a new stream rate
func (s *Sampler) SetSampleRate(sampleRate int) {
	if sampleRate <= 0 {
		sampleRate = 44100
	}
	if float64(sampleRate) == s.rate {
		return
	}
	s.rate = float64(sampleRate)

	hi := math.Min(maxFreq, s.rate/2)
	s.edges = make([]float64, s.bands+1)
	for i := range s.edges {
		s.edges[i] = minFreq * math.Pow(hi/minFreq, float64(i)/float64(s.bands))
	}
}

// Edges returns the band boundaries in Hz
func (s *Sampler) Edges() []float64 {
	return append([]float64(nil), s.edges...)
}

// Sample analyzes the newest WindowSize samples. With no samples the
// previous levels decay towards zero.
func (s *Sampler) Sample(samples []float64) Frame {
	frame := make(Frame, s.bands)
	if len(samples) == 0 {
		for b := range frame {
			frame[b] = s.prev[b] * decay
			s.prev[b] = frame[b]
		}
		return frame
	}

	if len(samples) > WindowSize {
		samples = samples[len(samples)-WindowSize:]
	}
	clear(s.buf)
	copy(s.buf, samples)
	for i := range s.buf {
		s.buf[i] *= s.window[i]
	}

	spectrum := fft.FFTReal(s.buf)
	binHz := s.rate / WindowSize
	last := len(spectrum)/2 - 1

	for b := range frame {
		lo := max(1, int(s.edges[b]/binHz))
		hi := min(last, max(lo, int(s.edges[b+1]/binHz)))

		var sum float64
		for i := lo; i <= hi; i++ {
			sum += cmplx.Abs(spectrum[i])
		}
		sum /= float64(hi - lo + 1)

		var level float64
		if sum > 0 {
			level = (20*math.Log10(sum) + 10) / 50
		}
		level = max(0, min(1, level))

		// fast attack, slow decay
		if level > s.prev[b] {
			level = level*(1-attackKeep) + s.prev[b]*attackKeep
		} else {
			level = level*(1-decayKeep) + s.prev[b]*decayKeep
		}
		frame[b] = level
		s.prev[b] = level
	}
	return frame
}

// Reset clears the smoothing state
func (s *Sampler) Reset() {
	clear(s.prev)
}
