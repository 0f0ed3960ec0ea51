package visual

import (
	"math"
	"testing"
)

func sine(freq, amp float64, rate, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = amp * math.Sin(2*math.Pi*freq*float64(i)/float64(rate))
	}
	return out
}

func TestSampleSilence(t *testing.T) {
	s := NewSampler(12, 44100)
	frame := s.Sample(make([]float64, WindowSize))

	if len(frame) != 12 {
		t.Fatalf("frame has %d bands, want 12", len(frame))
	}
	for b, v := range frame {
		if v != 0 {
			t.Errorf("band %d = %v for silence, want 0", b, v)
		}
	}
}

func TestSamplePeaksAtToneBand(t *testing.T) {
	const rate = 44100
	s := NewSampler(12, rate)
	edges := s.Edges()

	want := -1
	for b := 0; b < len(edges)-1; b++ {
		if edges[b] <= 440 && 440 < edges[b+1] {
			want = b
		}
	}
	if want < 0 {
		t.Fatal("no band covers 440 Hz")
	}

	frame := s.Sample(sine(440, 0.1, rate, 4096))
	peak := 0
	for b, v := range frame {
		if v < 0 || v > 1 {
			t.Errorf("band %d = %v outside [0,1]", b, v)
		}
		if v > frame[peak] {
			peak = b
		}
	}
	if peak != want {
		t.Errorf("loudest band = %d, want %d (frame %v)", peak, want, frame)
	}
}

func TestSampleDecaysWithoutAudio(t *testing.T) {
	s := NewSampler(8, 44100)
	prev := s.Sample(sine(1000, 0.5, 44100, WindowSize))

	for i := 0; i < 50; i++ {
		frame := s.Sample(nil)
		for b := range frame {
			if frame[b] > prev[b] {
				t.Fatalf("band %d rose from %v to %v without audio", b, prev[b], frame[b])
			}
		}
		prev = frame
	}
	for b, v := range prev {
		if v > 0.01 {
			t.Errorf("band %d = %v after decaying, want near 0", b, v)
		}
	}
}

func TestEdgesFollowSampleRate(t *testing.T) {
	s := NewSampler(4, 44100)
	if top := s.Edges()[4]; math.Abs(top-maxFreq) > 1e-6 {
		t.Errorf("top edge = %v, want %v", top, maxFreq)
	}

	s.SetSampleRate(8000)
	if top := s.Edges()[4]; math.Abs(top-4000) > 1e-6 {
		t.Errorf("top edge at 8 kHz = %v, want Nyquist 4000", top)
	}
}
