package sfx

import (
	"log"

	"github.com/gopxl/beep"
	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/milk9111/shapefall/config"
	"github.com/milk9111/shapefall/ecs"
)

type Sound int

const (
	SoundSpawn Sound = iota
	SoundDelete
	SoundClear
)

// maxVoices caps simultaneous sounds so a burst of spawns does not clip.
const maxVoices = 8

// Bank holds rendered sounds and plays them through an ebiten audio
// context. A nil context gives a silent bank.
type Bank struct {
	ctx     *audio.Context
	pcm     map[Sound][]byte
	voices  []*audio.Player
	enabled bool
}

// NewBank renders every sound at the context's sample rate.
func NewBank(ctx *audio.Context, spec config.AudioSpec) *Bank {
	b := &Bank{ctx: ctx, pcm: make(map[Sound][]byte), enabled: spec.Enabled && ctx != nil}
	if !b.enabled {
		return b
	}
	rate := beep.SampleRate(ctx.SampleRate())
	b.pcm[SoundSpawn] = Render(Blip(rate, spec.Volume))
	b.pcm[SoundDelete] = Render(Pop(rate, spec.Volume))
	b.pcm[SoundClear] = Render(Sweep(rate, spec.Volume))
	return b
}

func (b *Bank) Enabled() bool {
	return b != nil && b.enabled
}

func (b *Bank) SetEnabled(on bool) {
	if b == nil {
		return
	}
	b.enabled = on && b.ctx != nil && len(b.pcm) > 0
}

// Play starts s unless the bank is silent or every voice is busy.
func (b *Bank) Play(s Sound) {
	if !b.Enabled() {
		return
	}
	pcm, ok := b.pcm[s]
	if !ok || len(pcm) == 0 {
		return
	}

	live := b.voices[:0]
	for _, p := range b.voices {
		if p.IsPlaying() {
			live = append(live, p)
		} else {
			_ = p.Close()
		}
	}
	b.voices = live
	if len(b.voices) >= maxVoices {
		return
	}

	p := b.ctx.NewPlayerFromBytes(pcm)
	p.Play()
	b.voices = append(b.voices, p)
}

// HandleEvent maps world events onto sounds.
func (b *Bank) HandleEvent(ev ecs.Event) {
	switch ev.Type {
	case ecs.EventShapeSpawned:
		b.Play(SoundSpawn)
	case ecs.EventShapeRemoved:
		b.Play(SoundDelete)
	case ecs.EventCanvasCleared:
		if n, _ := ev.Data.(int); n > 0 {
			b.Play(SoundClear)
		}
	}
}

func (b *Bank) Close() {
	if b == nil {
		return
	}
	for _, p := range b.voices {
		if err := p.Close(); err != nil {
			log.Printf("sfx: close player: %v", err)
		}
	}
	b.voices = nil
}
