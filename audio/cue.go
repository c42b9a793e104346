// Package audio plays short synthesized cues for map interaction
// Audio is optional: every method is safe before or without Initialize
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/geomap/core"
)

const (
	sampleRate = beep.SampleRate(48000)

	selectDuration = 90 * time.Millisecond
	missDuration   = 120 * time.Millisecond
	loadedDuration = 40 * time.Millisecond

	// Base pitch of the selection cue; pie sectors step up a whole tone each
	selectHz = 660.0
	missHz   = 110.0
	loadedHz = 1320.0
)

// CuePlayer mixes selection, miss and loaded cues onto the speaker
type CuePlayer struct {
	mu     sync.Mutex
	mixer  *beep.Mixer
	volume float64
	ready  bool
}

// NewCuePlayer creates a player; volume is clamped to [0,1]
func NewCuePlayer(volume float64) *CuePlayer {
	return &CuePlayer{mixer: &beep.Mixer{}, volume: min(max(volume, 0), 1)}
}

// Initialize opens the speaker; failure leaves the player silent
func (p *CuePlayer) Initialize() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.ready {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(p.mixer)
	p.ready = true
	return nil
}

// Close silences pending cues
func (p *CuePlayer) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready {
		return
	}
	speaker.Lock()
	p.mixer.Clear()
	speaker.Unlock()
	p.ready = false
}

// PlaySelect plays a rising two-note chirp; sector >= 0 raises the pitch per pie wedge
func (p *CuePlayer) PlaySelect(sector int) {
	hz := selectHz * semitones(2*max(sector, 0)%12)
	n := sampleRate.N(selectDuration / 2)
	p.play(beep.Seq(
		beep.Take(n, NewToneGenerator(sampleRate, hz, n, p.volume)),
		beep.Take(n, NewToneGenerator(sampleRate, hz*semitones(7), n, p.volume)),
	))
}

// PlayMiss plays a short low buzz
func (p *CuePlayer) PlayMiss() {
	n := sampleRate.N(missDuration)
	p.play(beep.Take(n, NewBuzzGenerator(sampleRate, missHz, n, p.volume)))
}

// PlayLoaded plays a faint tick when the map finishes loading
func (p *CuePlayer) PlayLoaded() {
	n := sampleRate.N(loadedDuration)
	p.play(beep.Take(n, NewToneGenerator(sampleRate, loadedHz, n, p.volume*0.5)))
}

func (p *CuePlayer) play(s beep.Streamer) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if !p.ready || p.volume == 0 {
		return
	}
	speaker.Lock()
	p.mixer.Add(s)
	speaker.Unlock()
	core.Logger().Debug("audio_cue", "active", p.mixer.Len())
}
