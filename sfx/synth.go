package sfx

import (
	"math"
	"math/rand/v2"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"
	"github.com/milk9111/shapefall/common"
)

type WaveType int

const (
	WaveSine WaveType = iota
	WaveSquare
	WaveTriangle
	WaveNoise
)

// oscillator produces a fixed-length tone whose frequency glides linearly
// from freq to endFreq.
type oscillator struct {
	freq     float64
	endFreq  float64
	phase    float64
	duration int
	position int
	wave     WaveType
	rate     beep.SampleRate
	noise    *rand.Rand
}

func NewOscillator(freq, endFreq float64, duration time.Duration, wave WaveType, rate beep.SampleRate) beep.Streamer {
	return &oscillator{
		freq:     freq,
		endFreq:  endFreq,
		duration: rate.N(duration),
		wave:     wave,
		rate:     rate,
		noise:    rand.New(rand.NewPCG(uint64(freq), uint64(endFreq))),
	}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			if o.phase < 0.5 {
				val = 1
			} else {
				val = -1
			}
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		case WaveNoise:
			val = o.noise.Float64()*2 - 1
		}
		samples[i][0] = val
		samples[i][1] = val

		progress := float64(o.position) / float64(o.duration)
		freq := common.Lerp(o.freq, o.endFreq, progress)
		o.phase += freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope applies a linear attack and release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}
		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if releaseStart := e.total - e.release; e.release > 0 && e.position >= releaseStart {
			vol = math.Min(vol, float64(e.total-e.position)/float64(e.release))
		}
		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// volume wraps s with a linear gain; zero or less is silent.
func volume(s beep.Streamer, gain float64) beep.Streamer {
	if gain <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(gain)}
}

// Blip is the rising chirp played when a shape appears.
func Blip(rate beep.SampleRate, gain float64) beep.Streamer {
	d := 70 * time.Millisecond
	tone := NewEnvelope(NewOscillator(520, 880, d, WaveTriangle, rate), d, 5*time.Millisecond, 40*time.Millisecond, rate)
	return volume(tone, gain)
}

// Pop is the short falling burst played when a shape is clicked away.
func Pop(rate beep.SampleRate, gain float64) beep.Streamer {
	d := 90 * time.Millisecond
	body := NewEnvelope(NewOscillator(660, 180, d, WaveSine, rate), d, 2*time.Millisecond, 70*time.Millisecond, rate)
	click := NewEnvelope(NewOscillator(1, 1, 15*time.Millisecond, WaveNoise, rate), 15*time.Millisecond, 0, 12*time.Millisecond, rate)
	return volume(beep.Mix(volume(body, 0.8), volume(click, 0.3)), gain)
}

// Sweep is the descending square run played when the canvas is cleared.
func Sweep(rate beep.SampleRate, gain float64) beep.Streamer {
	notes := []float64{880, 660, 440}
	parts := make([]beep.Streamer, 0, len(notes))
	for _, f := range notes {
		d := 45 * time.Millisecond
		parts = append(parts, NewEnvelope(NewOscillator(f, f, d, WaveSquare, rate), d, 2*time.Millisecond, 30*time.Millisecond, rate))
	}
	return volume(beep.Seq(parts...), gain*0.5)
}
