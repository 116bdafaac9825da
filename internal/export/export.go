// Package export turns a rendered diagram into downloadable SVG and PNG files.
package export

import (
	"errors"
	"strings"
)

// ErrNoGraphic is returned when there is no rendered diagram to export.
var ErrNoGraphic = errors.New("export: no rendered diagram")

// File names and content types of the downloads.
const (
	SVGFilename    = "diagram.svg"
	SVGContentType = "image/svg+xml"
	PNGFilename    = "diagram.png"
	PNGContentType = "image/png"
)

// Download is a file ready to be handed to the user.
type Download struct {
	Filename    string
	ContentType string
	Data        []byte
}

// SVG packages the rendered graphic verbatim.
func SVG(graphic string) (Download, error) {
	if strings.TrimSpace(graphic) == "" {
		return Download{}, ErrNoGraphic
	}
	return Download{
		Filename:    SVGFilename,
		ContentType: SVGContentType,
		Data:        []byte(graphic),
	}, nil
}
