package audio

import (
	"testing"

	"github.com/gopxl/beep"
)

func TestDrainToneLength(t *testing.T) {
	rate := beep.SampleRate(8000)
	s, err := DrainTone(true, rate)
	if err != nil {
		t.Fatalf("DrainTone() = %v", err)
	}
	buf := make([][2]float64, 256)
	total := 0
	for i := 0; i < 1000; i++ {
		n, ok := s.Stream(buf)
		total += n
		for j := 0; j < n; j++ {
			if buf[j][0] < -cueVolume-1e-9 || buf[j][0] > cueVolume+1e-9 {
				t.Fatalf("sample %f exceeds cue volume", buf[j][0])
			}
		}
		if !ok || n == 0 {
			break
		}
	}
	if want := 2 * rate.N(toneLength); total != want {
		t.Fatalf("streamed %d samples, want %d", total, want)
	}
}

func TestUninitializedCueIsSilent(t *testing.T) {
	c := NewCue()
	c.Drain(true)
	c.Close()
}
