package render

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"os"

	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"

	"github.com/RyanBlaney/sonido-scope/logging"
	"github.com/RyanBlaney/sonido-scope/spectrogram"
)

// Layout constants in pixels
const (
	marginLeft   = 72
	marginRight  = 96
	marginTop    = 28
	marginBottom = 32
	colorbarGap  = 16
	colorbarW    = 18
	numYTicks    = 6
	numXTicks    = 5
)

// Config holds renderer options
type Config struct {
	// BodyWidth and BodyHeight size the spectrogram body (excluding
	// margins, labels and the colorbar).
	BodyWidth  int `json:"body_width"`
	BodyHeight int `json:"body_height"`
}

// DefaultConfig returns the default render configuration
func DefaultConfig() *Config {
	return &Config{
		BodyWidth:  800,
		BodyHeight: 400,
	}
}

// Renderer draws a SpectrogramResult as a color-mapped image with axis tick
// labels and a decibel colorbar. It is stateless with respect to results; one
// renderer can serve many sounds.
type Renderer struct {
	config *Config
	logger logging.Logger
}

// NewRenderer creates a renderer. A nil config uses DefaultConfig.
func NewRenderer(config *Config) *Renderer {
	if config == nil {
		config = DefaultConfig()
	}
	return &Renderer{
		config: config,
		logger: logging.WithFields(logging.Fields{
			"component": "spectrogram_renderer",
		}),
	}
}

// Render draws the result into a new image
func (r *Renderer) Render(result *spectrogram.Result) *image.RGBA {
	bodyW, bodyH := r.config.BodyWidth, r.config.BodyHeight
	width := marginLeft + bodyW + marginRight
	height := marginTop + bodyH + marginBottom

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.White, image.Point{}, draw.Src)

	r.drawBody(img, result)
	r.drawYAxis(img, result)
	r.drawXAxis(img, result)
	r.drawColorbar(img, result)
	drawText(img, marginLeft, marginTop-10, Title(result))

	r.logger.Debug("Spectrogram rendered", logging.Fields{
		"label":  result.Label,
		"mode":   result.Axis.Mode,
		"width":  width,
		"height": height,
	})

	return img
}

// RenderToFile renders the result and writes it as a PNG
func (r *Renderer) RenderToFile(result *spectrogram.Result, path string) error {
	img := r.Render(result)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := png.Encode(f, img); err != nil {
		return fmt.Errorf("failed to encode %s: %w", path, err)
	}

	r.logger.Info("Spectrogram written", logging.Fields{
		"label": result.Label,
		"path":  path,
	})

	return nil
}

// Title derives the window title from the sound label and axis mode
func Title(result *spectrogram.Result) string {
	scale := "Hz"
	if result.Axis.Mode == spectrogram.AxisNote {
		scale = "note"
	}
	return fmt.Sprintf("Spectrogram in %s scale of %s", scale, result.Label)
}

// drawBody paints the color-mapped decibel matrix. Low frequencies sit at the
// bottom. For hz-log mode the vertical placement is logarithmic in frequency;
// the decibel values themselves are untouched.
func (r *Renderer) drawBody(img *image.RGBA, result *spectrogram.Result) {
	matrix := result.Matrix
	bodyW, bodyH := r.config.BodyWidth, r.config.BodyHeight
	floor := matrix.FloorDB

	for y := 0; y < bodyH; y++ {
		frac := 1.0 - float64(y)/float64(bodyH-1)
		bin := r.binForFraction(result, frac)
		for x := 0; x < bodyW; x++ {
			frame := int(float64(x) / float64(bodyW) * float64(matrix.TimeFrames))
			frame = min(frame, matrix.TimeFrames-1)

			db := matrix.Values[bin][frame]
			v := (db - floor) / (0 - floor)
			img.SetRGBA(marginLeft+x, marginTop+y, colormap(v))
		}
	}
}

// binForFraction maps a vertical fraction (0 = bottom) to a frequency bin
func (r *Renderer) binForFraction(result *spectrogram.Result, frac float64) int {
	numBins := result.Matrix.FreqBins
	if result.Axis.Mode != spectrogram.AxisHzLog || numBins < 3 {
		bin := int(math.Round(frac * float64(numBins-1)))
		return min(max(bin, 0), numBins-1)
	}

	// Geometric interpolation between the first nonzero bin and Nyquist;
	// the very bottom row shows the DC bin.
	if frac <= 0 {
		return 0
	}
	fMin := result.Axis.Frequencies[1]
	fMax := result.Axis.Frequencies[numBins-1]
	freq := fMin * math.Pow(fMax/fMin, frac)
	bin := int(math.Round(freq * float64(result.FrameSize) / float64(result.SampleRate)))
	return min(max(bin, 0), numBins-1)
}

// drawYAxis draws frequency or note tick labels along the left edge
func (r *Renderer) drawYAxis(img *image.RGBA, result *spectrogram.Result) {
	bodyH := r.config.BodyHeight

	for i := 0; i < numYTicks; i++ {
		frac := float64(i) / float64(numYTicks-1)
		y := marginTop + int((1.0-frac)*float64(bodyH-1))
		bin := r.binForFraction(result, frac)

		var label string
		if result.Axis.Mode == spectrogram.AxisNote {
			label = result.Axis.Notes[bin].Name
		} else {
			label = formatHz(result.Axis.Frequencies[bin])
		}

		drawTick(img, marginLeft-4, y, true)
		drawText(img, 6, y+4, label)
	}
}

// drawXAxis draws time tick labels along the bottom edge
func (r *Renderer) drawXAxis(img *image.RGBA, result *spectrogram.Result) {
	bodyW, bodyH := r.config.BodyWidth, r.config.BodyHeight

	for i := 0; i < numXTicks; i++ {
		frac := float64(i) / float64(numXTicks-1)
		x := marginLeft + int(frac*float64(bodyW-1))
		frame := frac * float64(result.Matrix.TimeFrames-1)
		seconds := frame * result.TimeResolution

		drawTick(img, x, marginTop+bodyH+2, false)
		drawText(img, x-12, marginTop+bodyH+16, fmt.Sprintf("%.1fs", seconds))
	}
}

// drawColorbar draws the decibel legend on the right edge
func (r *Renderer) drawColorbar(img *image.RGBA, result *spectrogram.Result) {
	bodyH := r.config.BodyHeight
	floor := result.Matrix.FloorDB
	x0 := marginLeft + r.config.BodyWidth + colorbarGap

	for y := 0; y < bodyH; y++ {
		v := 1.0 - float64(y)/float64(bodyH-1)
		c := colormap(v)
		for x := x0; x < x0+colorbarW; x++ {
			img.SetRGBA(x, marginTop+y, c)
		}
	}

	labels := []struct {
		frac float64
		text string
	}{
		{1.0, "+0 dB"},
		{0.5, fmt.Sprintf("%+.0f dB", floor/2)},
		{0.0, fmt.Sprintf("%+.0f dB", floor)},
	}
	for _, l := range labels {
		y := marginTop + int((1.0-l.frac)*float64(bodyH-1))
		drawText(img, x0+colorbarW+4, y+4, l.text)
	}
}

// formatHz formats a frequency for a tick label
func formatHz(freq float64) string {
	if freq >= 1000 {
		return fmt.Sprintf("%.1f kHz", freq/1000)
	}
	return fmt.Sprintf("%.0f Hz", freq)
}

// drawTick draws a short tick mark, horizontal for the y axis and vertical
// for the x axis
func drawTick(img *image.RGBA, x, y int, horizontal bool) {
	black := color.RGBA{A: 255}
	for i := 0; i < 4; i++ {
		if horizontal {
			img.SetRGBA(x+i, y, black)
		} else {
			img.SetRGBA(x, y+i, black)
		}
	}
}

// drawText renders a small label with the fixed-size basic font
func drawText(img *image.RGBA, x, y int, s string) {
	d := &font.Drawer{
		Dst:  img,
		Src:  image.NewUniform(color.RGBA{A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(x, y),
	}
	d.DrawString(s)
}
