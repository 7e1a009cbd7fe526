package render

import (
	"bytes"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"os"
	"strings"

	"github.com/rezonia/invoice-generator/internal/model"
)

// LogoPolicy decides what happens when the logo cannot be read
type LogoPolicy int

const (
	// LogoSkip omits an unreadable logo and records a warning
	LogoSkip LogoPolicy = iota
	// LogoFail aborts the export with RESOURCE_UNREADABLE
	LogoFail
)

func (p LogoPolicy) String() string {
	if p == LogoFail {
		return "fail"
	}
	return "skip"
}

// ParseLogoPolicy maps "skip" or "fail" to a policy
func ParseLogoPolicy(s string) (LogoPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "skip":
		return LogoSkip, nil
	case "fail":
		return LogoFail, nil
	default:
		return LogoSkip, fmt.Errorf("unknown logo policy %q (want skip or fail)", s)
	}
}

// logo is a decoded image header plus its raw bytes
type logo struct {
	path      string
	data      []byte
	imageType string
	width     int // pixels
	height    int // pixels
}

// gofpdf image types by image package format name
var imageTypes = map[string]string{
	"png":  "PNG",
	"jpeg": "JPG",
	"gif":  "GIF",
}

func loadLogo(path string) (*logo, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, model.ErrResourceUnreadable(path, err)
	}

	cfg, format, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, model.ErrResourceUnreadable(path, err)
	}

	imageType, ok := imageTypes[format]
	if !ok {
		return nil, model.ErrResourceUnreadable(path, fmt.Errorf("unsupported image format %s", format))
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, model.ErrResourceUnreadable(path, fmt.Errorf("empty image %dx%d", cfg.Width, cfg.Height))
	}

	return &logo{
		path:      path,
		data:      data,
		imageType: imageType,
		width:     cfg.Width,
		height:    cfg.Height,
	}, nil
}

// ScaleLogo returns the printed size of a logo of pxW x pxH pixels.
// The width is fixed and the height follows the aspect ratio; a logo
// taller than maxHeight is shrunk until it fits, keeping the ratio.
// maxHeight <= 0 disables the limit.
func ScaleLogo(pxW, pxH int, width, maxHeight float64) (w, h float64) {
	w = width
	h = float64(pxH) * width / float64(pxW)
	if maxHeight > 0 && h > maxHeight {
		w = w * maxHeight / h
		h = maxHeight
	}
	return w, h
}
