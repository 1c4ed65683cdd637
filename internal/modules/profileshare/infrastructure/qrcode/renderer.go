package qrcode

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"io"
	"strconv"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/saransh1220/premium-profile/internal/modules/profileshare/domain"
	goqrcode "github.com/skip2/go-qrcode"
	_ "golang.org/x/image/webp"
)

const (
	// overlayPercent is the share of the QR edge the center image may cover.
	overlayPercent = 22
	platePadding   = 6
)

// Renderer draws QR codes as PNG images
type Renderer struct{}

func NewRenderer() *Renderer {
	return &Renderer{}
}

// DecodeOverlay reads a jpeg, png, gif, bmp or webp image, applying EXIF orientation.
func (r *Renderer) DecodeOverlay(src io.Reader) (image.Image, error) {
	img, err := imaging.Decode(src, imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("failed to decode overlay: %w", err)
	}
	return img, nil
}

// Render encodes content as a size x size PNG in the given colors. When
// overlay is set it is centered on a plate and the highest error correction
// level is used so the covered modules stay recoverable.
func (r *Renderer) Render(content string, settings domain.QRSettings, size int, overlay image.Image) ([]byte, error) {
	fg, err := ParseColor(settings.DotColor)
	if err != nil {
		return nil, err
	}
	bg, err := ParseColor(settings.BgColor)
	if err != nil {
		return nil, err
	}

	level := goqrcode.Medium
	if overlay != nil {
		level = goqrcode.Highest
	}
	code, err := goqrcode.New(content, level)
	if err != nil {
		return nil, fmt.Errorf("failed to encode qr code: %w", err)
	}
	code.ForegroundColor = fg
	code.BackgroundColor = bg

	img := code.Image(size)
	if overlay != nil {
		img = withOverlay(img, overlay, bg)
	}

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, img, imaging.PNG); err != nil {
		return nil, fmt.Errorf("failed to encode png: %w", err)
	}
	return buf.Bytes(), nil
}

func withOverlay(code, overlay image.Image, bg color.Color) image.Image {
	edge := code.Bounds().Dx() * overlayPercent / 100
	logo := imaging.Fit(overlay, edge, edge, imaging.Lanczos)

	plateColor := bg
	if _, _, _, a := bg.RGBA(); a == 0 {
		plateColor = color.White
	}
	plate := imaging.New(logo.Bounds().Dx()+2*platePadding, logo.Bounds().Dy()+2*platePadding, plateColor)
	plate = imaging.OverlayCenter(plate, logo, 1)

	return imaging.OverlayCenter(code, plate, 1)
}

// ParseColor parses "#rgb", "#rgba", "#rrggbb", "#rrggbbaa" or "transparent".
func ParseColor(s string) (color.Color, error) {
	if strings.EqualFold(s, "transparent") {
		return color.Transparent, nil
	}
	hex, ok := strings.CutPrefix(s, "#")
	if !ok {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	if len(hex) == 3 || len(hex) == 4 {
		var long strings.Builder
		for _, c := range hex {
			long.WriteRune(c)
			long.WriteRune(c)
		}
		hex = long.String()
	}
	if len(hex) == 6 {
		hex += "ff"
	}
	if len(hex) != 8 {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return nil, fmt.Errorf("invalid color %q", s)
	}
	return color.NRGBA{R: uint8(v >> 24), G: uint8(v >> 16), B: uint8(v >> 8), A: uint8(v)}, nil
}
