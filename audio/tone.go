package audio

import (
	"math"

	"github.com/gopxl/beep"
)

// attackSeconds is the fade-in of every cue, long enough to avoid clicks
const attackSeconds = 0.005

func semitones(n int) float64 {
	return math.Pow(2, float64(n)/12)
}

// envelope ramps up over the attack and decays linearly to zero at length samples
func envelope(sr beep.SampleRate, pos, length int) float64 {
	if length <= 0 || pos >= length {
		return 0
	}
	attack := math.Min(float64(pos)/(float64(sr)*attackSeconds), 1)
	release := 1 - float64(pos)/float64(length)
	return attack * release
}

// ToneGenerator is a sine tone shaped by the cue envelope
type ToneGenerator struct {
	sr     beep.SampleRate
	freq   float64
	gain   float64
	length int
	pos    int
}

// NewToneGenerator creates a tone of length samples
func NewToneGenerator(sr beep.SampleRate, freq float64, length int, gain float64) *ToneGenerator {
	return &ToneGenerator{sr: sr, freq: freq, gain: gain, length: length}
}

func (g *ToneGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)
		sample := 0.3 * g.gain * envelope(g.sr, g.pos, g.length) * math.Sin(2*math.Pi*g.freq*t)
		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *ToneGenerator) Err() error {
	return nil
}

// BuzzGenerator is a harmonic-rich low buzz shaped by the cue envelope
type BuzzGenerator struct {
	sr     beep.SampleRate
	freq   float64
	gain   float64
	length int
	pos    int
}

// NewBuzzGenerator creates a buzz of length samples
func NewBuzzGenerator(sr beep.SampleRate, freq float64, length int, gain float64) *BuzzGenerator {
	return &BuzzGenerator{sr: sr, freq: freq, gain: gain, length: length}
}

func (g *BuzzGenerator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		t := float64(g.pos) / float64(g.sr)

		sample := 0.3 * math.Sin(2*math.Pi*g.freq*t)
		sample += 0.15 * math.Sin(2*math.Pi*g.freq*2*t)
		sample += 0.075 * math.Sin(2*math.Pi*g.freq*3*t)
		sample *= 0.5 * g.gain * envelope(g.sr, g.pos, g.length)

		samples[i][0] = sample
		samples[i][1] = sample
		g.pos++
	}
	return len(samples), true
}

func (g *BuzzGenerator) Err() error {
	return nil
}
