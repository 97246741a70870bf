// Package overlay maps bounding boxes from source pixel space to
// percent-of-frame coordinates so the presentation layer can place overlays
// on a scaled video element.
package overlay

import "fmt"

// Box is an axis-aligned bounding box. Units depend on context: pixels going
// into Normalize, percent of frame coming out.
type Box struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Normalizer converts pixel boxes to frame-relative percentages against a
// fixed reference resolution. The resolution is the upstream camera's capture
// size and is configuration, not something inferred from the stream.
type Normalizer struct {
	refWidth  float64
	refHeight float64
}

// NewNormalizer creates a Normalizer for the given reference resolution.
func NewNormalizer(refWidth, refHeight float64) (*Normalizer, error) {
	if refWidth <= 0 || refHeight <= 0 {
		return nil, fmt.Errorf("overlay: reference resolution must be positive, got %gx%g", refWidth, refHeight)
	}
	return &Normalizer{refWidth: refWidth, refHeight: refHeight}, nil
}

// Normalize maps a pixel-space box to percent-of-frame coordinates.
func (n *Normalizer) Normalize(b Box) Box {
	return Box{
		X:      b.X / n.refWidth * 100,
		Y:      b.Y / n.refHeight * 100,
		Width:  b.Width / n.refWidth * 100,
		Height: b.Height / n.refHeight * 100,
	}
}
