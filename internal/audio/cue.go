// Package audio plays short cues for front-end events.
package audio

import (
	"sync"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/generators"
	"github.com/gopxl/beep/speaker"
)

const (
	sampleRate = beep.SampleRate(44100)
	toneLength = 70 * time.Millisecond
	cueVolume  = 0.25
)

// Cue plays the drain open/close chirp. A Cue whose Initialize failed, or was
// never called, stays silent.
type Cue struct {
	mu          sync.Mutex
	mixer       *beep.Mixer
	initialized bool
}

// NewCue creates a silent cue player.
func NewCue() *Cue {
	return &Cue{mixer: &beep.Mixer{}}
}

// Initialize opens the audio device.
func (c *Cue) Initialize() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.initialized {
		return nil
	}
	if err := speaker.Init(sampleRate, sampleRate.N(50*time.Millisecond)); err != nil {
		return err
	}
	speaker.Play(c.mixer)
	c.initialized = true
	return nil
}

// Drain plays a rising chirp when the drain opens and a falling one when it
// closes.
func (c *Cue) Drain(open bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	s, err := DrainTone(open, sampleRate)
	if err != nil {
		return
	}
	speaker.Lock()
	c.mixer.Add(s)
	speaker.Unlock()
}

// Close stops playback and releases the device.
func (c *Cue) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.initialized {
		return
	}
	speaker.Lock()
	c.mixer.Clear()
	speaker.Unlock()
	speaker.Close()
	c.initialized = false
}

// DrainTone builds the two-note chirp for a drain toggle.
func DrainTone(open bool, rate beep.SampleRate) (beep.Streamer, error) {
	freqs := [2]float64{440, 660}
	if !open {
		freqs[0], freqs[1] = freqs[1], freqs[0]
	}
	notes := make([]beep.Streamer, 0, len(freqs))
	for _, f := range freqs {
		tone, err := generators.SineTone(rate, f)
		if err != nil {
			return nil, err
		}
		notes = append(notes, beep.Take(rate.N(toneLength), tone))
	}
	return &volume{s: beep.Seq(notes...), gain: cueVolume}, nil
}

type volume struct {
	s    beep.Streamer
	gain float64
}

func (v *volume) Stream(samples [][2]float64) (int, bool) {
	n, ok := v.s.Stream(samples)
	for i := 0; i < n; i++ {
		samples[i][0] *= v.gain
		samples[i][1] *= v.gain
	}
	return n, ok
}

func (v *volume) Err() error { return v.s.Err() }
