package render

import "image/color"

// colormapStop anchors the magnitude colormap at one normalized position
type colormapStop struct {
	pos     float64
	r, g, b float64
}

// colormapStops approximates the perceptually uniform dark-to-bright maps
// commonly used for spectrograms: black through purple and red up to yellow.
var colormapStops = []colormapStop{
	{0.00, 0, 0, 4},
	{0.25, 81, 18, 124},
	{0.50, 183, 55, 121},
	{0.75, 252, 137, 97},
	{1.00, 252, 255, 164},
}

// colormap maps a normalized magnitude in [0, 1] to a display color.
// Values outside the range are clamped.
func colormap(v float64) color.RGBA {
	if v <= 0 {
		s := colormapStops[0]
		return color.RGBA{uint8(s.r), uint8(s.g), uint8(s.b), 255}
	}
	if v >= 1 {
		s := colormapStops[len(colormapStops)-1]
		return color.RGBA{uint8(s.r), uint8(s.g), uint8(s.b), 255}
	}

	for i := 1; i < len(colormapStops); i++ {
		hi := colormapStops[i]
		if v > hi.pos {
			continue
		}
		lo := colormapStops[i-1]
		t := (v - lo.pos) / (hi.pos - lo.pos)
		return color.RGBA{
			R: uint8(lo.r + t*(hi.r-lo.r)),
			G: uint8(lo.g + t*(hi.g-lo.g)),
			B: uint8(lo.b + t*(hi.b-lo.b)),
			A: 255,
		}
	}

	s := colormapStops[len(colormapStops)-1]
	return color.RGBA{uint8(s.r), uint8(s.g), uint8(s.b), 255}
}
