package export

import (
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/oksvg"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"
	"golang.org/x/image/draw"
)

// DefaultScale is the raster scale used when none is given.
const DefaultScale = 2.0

// Raster limits. Requests beyond them fail before any pixel buffer is
// allocated.
const (
	MaxScale  = 10.0
	MaxPixels = 64 << 20
)

// ErrTooLarge is returned when the requested raster exceeds MaxScale or
// MaxPixels.
var ErrTooLarge = errors.New("export: image too large")

// Fallback canvas size for graphics that declare no usable dimensions.
const (
	fallbackWidth  = 600
	fallbackHeight = 400
)

// PNGOptions controls rasterisation.
type PNGOptions struct {
	// Scale multiplies the graphic's intrinsic size. Zero means DefaultScale.
	Scale float64
	// Background is a CSS colour (hex, rgb()/rgba() or name) painted under the
	// graphic. Empty means white.
	Background string
}

// PNG rasterises the SVG graphic onto a background-filled canvas of the
// graphic's size times the scale and encodes it as diagram.png.
func PNG(graphic string, opts PNGOptions) (Download, error) {
	if strings.TrimSpace(graphic) == "" {
		return Download{}, ErrNoGraphic
	}
	scale := opts.Scale
	if scale == 0 {
		scale = DefaultScale
	}
	if scale < 0 || math.IsNaN(scale) || math.IsInf(scale, 0) {
		return Download{}, fmt.Errorf("export: invalid scale %v", opts.Scale)
	}
	if scale > MaxScale {
		return Download{}, fmt.Errorf("%w: scale %v exceeds %v", ErrTooLarge, scale, MaxScale)
	}
	bg, err := ParseColor(opts.Background)
	if err != nil {
		return Download{}, err
	}

	w, h, err := Dimensions(graphic)
	if err != nil {
		return Download{}, err
	}
	if fw, fh := w*scale, h*scale; fw*fh > MaxPixels {
		return Download{}, fmt.Errorf("%w: %.0fx%.0f exceeds %d pixels", ErrTooLarge, fw, fh, MaxPixels)
	}
	pw := int(w * scale)
	ph := int(h * scale)
	if pw <= 0 || ph <= 0 {
		return Download{}, fmt.Errorf("export: canvas has zero size (%dx%d)", pw, ph)
	}

	icon, err := oksvg.ReadIconStream(strings.NewReader(graphic), oksvg.IgnoreErrorMode)
	if err != nil {
		return Download{}, fmt.Errorf("export: parse svg: %w", err)
	}
	icon.SetTarget(0, 0, float64(pw), float64(ph))

	img := image.NewRGBA(image.Rect(0, 0, pw, ph))
	draw.Draw(img, img.Bounds(), &image.Uniform{C: bg}, image.Point{}, draw.Src)

	scanner := rasterx.NewScannerGV(pw, ph, img, img.Bounds())
	raster := rasterx.NewDasher(pw, ph, scanner)
	icon.Draw(raster, 1.0)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return Download{}, fmt.Errorf("export: encode png: %w", err)
	}
	return Download{
		Filename:    PNGFilename,
		ContentType: PNGContentType,
		Data:        buf.Bytes(),
	}, nil
}

// Dimensions reports the intrinsic size of an SVG document: the declared
// width and height when both are absolute lengths, otherwise the viewBox,
// otherwise 600x400.
func Dimensions(graphic string) (float64, float64, error) {
	root, err := rootElement(graphic)
	if err != nil {
		return 0, 0, err
	}

	var width, height, viewBox string
	for _, a := range root.Attr {
		switch a.Name.Local {
		case "width":
			width = a.Value
		case "height":
			height = a.Value
		case "viewBox":
			viewBox = a.Value
		}
	}

	w, wok := parseLength(width)
	h, hok := parseLength(height)
	if wok && hok {
		return w, h, nil
	}
	if vw, vh, ok := parseViewBox(viewBox); ok {
		// A single absolute side keeps the viewBox aspect ratio.
		switch {
		case wok:
			return w, w * vh / vw, nil
		case hok:
			return h * vw / vh, h, nil
		}
		return vw, vh, nil
	}
	return fallbackWidth, fallbackHeight, nil
}

func rootElement(graphic string) (xml.StartElement, error) {
	dec := xml.NewDecoder(strings.NewReader(graphic))
	dec.Strict = false
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return xml.StartElement{}, errors.New("export: graphic has no svg element")
		}
		if err != nil {
			return xml.StartElement{}, fmt.Errorf("export: parse svg: %w", err)
		}
		if se, ok := tok.(xml.StartElement); ok {
			if se.Name.Local != "svg" {
				return xml.StartElement{}, fmt.Errorf("export: root element is <%s>, not <svg>", se.Name.Local)
			}
			return se, nil
		}
	}
}

// parseLength accepts unitless and px lengths. Percentages and other relative
// units are rejected.
func parseLength(s string) (float64, bool) {
	s = strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(s), "px"))
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || v <= 0 {
		return 0, false
	}
	return v, true
}

func parseViewBox(s string) (float64, float64, bool) {
	fields := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == ' ' || r == '\t' || r == '\n' })
	if len(fields) != 4 {
		return 0, 0, false
	}
	w, err1 := strconv.ParseFloat(fields[2], 64)
	h, err2 := strconv.ParseFloat(fields[3], 64)
	if err1 != nil || err2 != nil || w <= 0 || h <= 0 {
		return 0, 0, false
	}
	return w, h, true
}

// ParseColor parses a CSS colour: #rgb, #rrggbb, #rrggbbaa, rgb(), rgba(),
// "transparent" or a named colour. Empty means white.
func ParseColor(s string) (color.Color, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch {
	case s == "":
		return color.White, nil
	case s == "transparent":
		return color.Transparent, nil
	case strings.HasPrefix(s, "#"):
		return parseHex(s[1:])
	case strings.HasPrefix(s, "rgb"):
		return parseRGBFunc(s)
	}
	if c, ok := colornames.Map[s]; ok {
		return c, nil
	}
	return nil, fmt.Errorf("export: unknown colour %q", s)
}

func parseHex(h string) (color.Color, error) {
	if len(h) == 3 {
		h = string([]byte{h[0], h[0], h[1], h[1], h[2], h[2]})
	}
	if len(h) == 6 {
		h += "ff"
	}
	if len(h) != 8 {
		return nil, fmt.Errorf("export: invalid hex colour #%s", h)
	}
	v, err := strconv.ParseUint(h, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("export: invalid hex colour #%s", h)
	}
	c := color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}
	return c, nil
}

func parseRGBFunc(s string) (color.Color, error) {
	open, end := strings.IndexByte(s, '('), strings.LastIndexByte(s, ')')
	if open < 0 || end < open {
		return nil, fmt.Errorf("export: invalid colour %q", s)
	}
	parts := strings.FieldsFunc(s[open+1:end], func(r rune) bool { return r == ',' || r == ' ' || r == '/' })
	if len(parts) != 3 && len(parts) != 4 {
		return nil, fmt.Errorf("export: invalid colour %q", s)
	}
	var ch [3]uint8
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseFloat(parts[i], 64)
		if err != nil || v < 0 || v > 255 {
			return nil, fmt.Errorf("export: invalid colour %q", s)
		}
		ch[i] = uint8(math.Round(v))
	}
	alpha := uint8(255)
	if len(parts) == 4 {
		a, err := strconv.ParseFloat(parts[3], 64)
		if err != nil || a < 0 || a > 1 {
			return nil, fmt.Errorf("export: invalid colour %q", s)
		}
		alpha = uint8(math.Round(a * 255))
	}
	return color.NRGBA{R: ch[0], G: ch[1], B: ch[2], A: alpha}, nil
}
