package assets

import (
	"bytes"
	"fmt"
	"sync"

	"github.com/hajimehoshi/ebiten/v2/audio"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/font/gofont/goregular"
)

// SampleRate is the rate of the shared audio context.
const SampleRate = 44100

var (
	audioOnce    sync.Once
	audioContext *audio.Context

	fontOnce   sync.Once
	fontSource *text.GoTextFaceSource
	fontErr    error
)

// AudioContext returns the process-wide audio context. ebiten allows only
// one per process.
func AudioContext() *audio.Context {
	audioOnce.Do(func() {
		audioContext = audio.CurrentContext()
		if audioContext == nil {
			audioContext = audio.NewContext(SampleRate)
		}
	})
	return audioContext
}

// HUDFace is the fixed-width face used for overlays.
func HUDFace() text.Face {
	return text.NewGoXFace(basicfont.Face7x13)
}

// UIFace returns the Go Regular face at size, for control panel labels.
func UIFace(size float64) (text.Face, error) {
	fontOnce.Do(func() {
		fontSource, fontErr = text.NewGoTextFaceSource(bytes.NewReader(goregular.TTF))
	})
	if fontErr != nil {
		return nil, fmt.Errorf("assets: load go regular: %w", fontErr)
	}
	return &text.GoTextFace{Source: fontSource, Size: size}, nil
}
