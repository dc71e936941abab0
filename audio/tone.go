package audio

import (
	"fmt"
	"math"
	"os"
	"time"

	"github.com/gopxl/beep/v2"
	"github.com/gopxl/beep/v2/wav"
)

const toneRate = beep.SampleRate(44100)

// Tone is a decaying sine used as a test signal.
type Tone struct {
	Freq     float64
	Duration time.Duration
	Volume   float64
	Decay    float64
}

// DefaultTone is short and high enough to hear on laptop speakers.
var DefaultTone = Tone{Freq: 880, Duration: 600 * time.Millisecond, Volume: 0.5, Decay: 4}

// Streamer renders the tone as a beep.Streamer at 44.1kHz.
func (t Tone) Streamer() beep.Streamer {
	n := toneRate.N(t.Duration)
	i := 0
	return beep.StreamerFunc(func(samples [][2]float64) (int, bool) {
		if i >= n {
			return 0, false
		}
		c := 0
		for ; c < len(samples) && i < n; c, i = c+1, i+1 {
			at := float64(i) / float64(toneRate)
			envelope := math.Exp(-at * t.Decay)
			s := math.Sin(2*math.Pi*t.Freq*at) * t.Volume * envelope
			samples[c] = [2]float64{s, s}
		}
		return c, true
	})
}

// WriteWAV renders the tone to a 16-bit stereo WAV file.
func (t Tone) WriteWAV(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	format := beep.Format{SampleRate: toneRate, NumChannels: 2, Precision: 2}
	if err := wav.Encode(f, t.Streamer(), format); err != nil {
		f.Close()
		return fmt.Errorf("encoding tone: %w", err)
	}
	return f.Close()
}
