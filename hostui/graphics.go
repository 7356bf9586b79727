// Package hostui adapts the Core Host's abstract presentation interfaces
// (video.HostGraphics, the audio consumer side of audio.FIFO, and input
// polling) onto a concrete desktop stack: github.com/hajimehoshi/ebiten/v2
// for video and input, github.com/ebitengine/oto/v3 for audio.
package hostui

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/retrohost/corehost/video"
)

// Graphics implements video.HostGraphics with an ebiten.Image backing
// store, one per live frame image (the Translator never keeps more than
// one allocated at a time).
type Graphics struct{}

// NewGraphics returns a Graphics adapter. There is no per-instance state:
// every allocation is a fresh ebiten.Image owned by the returned Image.
func NewGraphics() *Graphics {
	return &Graphics{}
}

// NewImage allocates an ebiten-backed image matching format's layout.
func (g *Graphics) NewImage(width, height int, format video.HostFormat) (video.Image, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("hostui: invalid image size %dx%d", width, height)
	}
	return &frameImage{
		img:    ebiten.NewImage(width, height),
		width:  width,
		height: height,
		format: format,
	}, nil
}

// ReplacePixels uploads pixels into img. The Translator always calls
// this with the full image extents (x=0, y=0, width/height matching
// img's own), so this adapter only supports that case.
func (g *Graphics) ReplacePixels(img video.Image, x, y, width, height int, pixels []byte) error {
	fi, ok := img.(*frameImage)
	if !ok {
		return fmt.Errorf("hostui: ReplacePixels called with foreign Image type")
	}
	if x != 0 || y != 0 || width != fi.width || height != fi.height {
		return fmt.Errorf("hostui: partial ReplacePixels not supported (got %d,%d %dx%d, image is %dx%d)",
			x, y, width, height, fi.width, fi.height)
	}
	fi.img.WritePixels(toRGBA(pixels, fi.format, width, height))
	return nil
}

// toRGBA expands a host-format pixel buffer to the 8-bit RGBA ebiten's
// WritePixels requires. HostRGBA8 is already in that layout; the 16-bit
// formats are widened channel by channel.
func toRGBA(src []byte, format video.HostFormat, width, height int) []byte {
	if format == video.HostRGBA8 {
		return src
	}

	dst := make([]byte, width*height*4)
	for i := 0; i < width*height; i++ {
		lo := src[i*2]
		hi := src[i*2+1]
		v := uint16(lo) | uint16(hi)<<8

		var r, g, b, a byte
		switch format {
		case video.HostRGB565:
			r = expand5(byte((v >> 11) & 0x1F))
			g = expand6(byte((v >> 5) & 0x3F))
			b = expand5(byte(v & 0x1F))
			a = 0xFF
		default: // HostRGB5A1 (XRGB1555)
			r = expand5(byte((v >> 10) & 0x1F))
			g = expand5(byte((v >> 5) & 0x1F))
			b = expand5(byte(v & 0x1F))
			a = 0xFF
		}

		o := i * 4
		dst[o] = r
		dst[o+1] = g
		dst[o+2] = b
		dst[o+3] = a
	}
	return dst
}

func expand5(v byte) byte { return byte((uint16(v)*0xFF + 15) / 31) }
func expand6(v byte) byte { return byte((uint16(v)*0xFF + 31) / 63) }

// frameImage wraps a single ebiten.Image and satisfies video.Image.
type frameImage struct {
	img    *ebiten.Image
	width  int
	height int
	format video.HostFormat
}

func (f *frameImage) Width() int                { return f.width }
func (f *frameImage) Height() int               { return f.height }
func (f *frameImage) Format() video.HostFormat  { return f.format }
