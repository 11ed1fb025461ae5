package recolor

import (
	"fmt"
	"math"

	"github.com/lucasb-eyer/go-colorful"
)

// MatchTolerance is the largest per-channel difference at which two colors
// are considered the same palette entry: one 8-bit quantization step.
const MatchTolerance = 1.0 / 255

// maxDistance is the largest possible L1 distance between two colors in the
// unit cube.
const maxDistance = 3.0

// Color is an RGB triple with components in [0, 1].
type Color struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
}

// RGBA is a displayed vertex color. Alpha is carried through the host but
// ignored by palette matching.
type RGBA struct {
	R float64 `json:"r"`
	G float64 `json:"g"`
	B float64 `json:"b"`
	A float64 `json:"a"`
}

// RGB builds a Color, clamping each component into [0, 1].
func RGB(r, g, b float64) Color {
	return Color{R: clamp01(r), G: clamp01(g), B: clamp01(b)}
}

// ParseHex parses "#rrggbb" (or "#rgb") into a Color.
func ParseHex(value string) (Color, error) {
	c, err := colorful.Hex(value)
	if err != nil {
		return Color{}, fmt.Errorf("recolor: parse color %q: %w", value, err)
	}
	return fromColorful(c), nil
}

// HSV builds a Color from hue in degrees and saturation/value in [0, 1].
func HSV(h, s, v float64) Color {
	return fromColorful(colorful.Hsv(h, clamp01(s), clamp01(v)))
}

// Hex formats the color as "#rrggbb".
func (c Color) Hex() string {
	return c.colorful().Clamped().Hex()
}

// HSV returns hue in degrees and saturation/value in [0, 1].
func (c Color) HSV() (h, s, v float64) {
	return c.colorful().Hsv()
}

// Distance is the L1 distance between c and other.
func (c Color) Distance(other Color) float64 {
	return math.Abs(c.R-other.R) + math.Abs(c.G-other.G) + math.Abs(c.B-other.B)
}

// Matches reports whether every channel of c is within MatchTolerance of
// other.
func (c Color) Matches(other Color) bool {
	return math.Abs(c.R-other.R) < MatchTolerance &&
		math.Abs(c.G-other.G) < MatchTolerance &&
		math.Abs(c.B-other.B) < MatchTolerance
}

// Mix linearly interpolates between c and other.
func (c Color) Mix(other Color, t float64) Color {
	t = clamp01(t)
	return Color{
		R: c.R + (other.R-c.R)*t,
		G: c.G + (other.G-c.G)*t,
		B: c.B + (other.B-c.B)*t,
	}
}

// Opaque returns the displayed form of c with full alpha.
func (c Color) Opaque() RGBA {
	return RGBA{R: c.R, G: c.G, B: c.B, A: 1}
}

// RGB drops the alpha channel.
func (c RGBA) RGB() Color {
	return Color{R: c.R, G: c.G, B: c.B}
}

func (c Color) colorful() colorful.Color {
	return colorful.Color{R: c.R, G: c.G, B: c.B}
}

func fromColorful(c colorful.Color) Color {
	c = c.Clamped()
	return Color{R: c.R, G: c.G, B: c.B}
}

// nearestIndex returns the index of the color in colors closest to target by
// L1 distance. The first minimum wins; an empty slice yields 0.
func nearestIndex(colors []Color, target Color) int {
	nearest := 0
	best := maxDistance
	for i, c := range colors {
		if d := c.Distance(target); d < best {
			best = d
			nearest = i
		}
	}
	return nearest
}

// matchIndex returns the first color in colors that Matches target.
func matchIndex(colors []Color, target Color) (int, bool) {
	for i, c := range colors {
		if c.Matches(target) {
			return i, true
		}
	}
	return -1, false
}

func clamp01(v float64) float64 {
	if math.IsNaN(v) || v <= 0 {
		return 0
	}
	if v >= 1 {
		return 1
	}
	return v
}
