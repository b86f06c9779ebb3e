package component

import "github.com/tanema/gween"

// FadeIn eases a freshly spawned node's alpha up to fully opaque.
type FadeIn struct {
	Tween *gween.Tween
}

var FadeInComponent = NewComponent[FadeIn]()
