// Package video implements the Core Host's video path (spec C4): pixel
// format translation from the module's native frame buffer format into
// whatever 2D image format the host presentation layer accepts, plus the
// scratch-buffer and cached-image lifecycle that governs when a new host
// image must be (re)allocated.
package video

import "fmt"

// PixelFormat is the module's native pixel format, as set via
// SET_PIXEL_FORMAT.
type PixelFormat int

const (
	FormatXRGB1555 PixelFormat = iota
	FormatXRGB8888
	FormatRGB565
)

// HostFormat is the format of the image the host presentation layer
// renders, one per PixelFormat.
type HostFormat int

const (
	HostRGB5A1 HostFormat = iota
	HostRGBA8
	HostRGB565
)

// BytesPerPixel returns the bytes-per-pixel of a host format.
func (f HostFormat) BytesPerPixel() int {
	switch f {
	case HostRGBA8:
		return 4
	default:
		return 2
	}
}

func hostFormatFor(pf PixelFormat) HostFormat {
	switch pf {
	case FormatXRGB8888:
		return HostRGBA8
	case FormatRGB565:
		return HostRGB565
	default:
		return HostRGB5A1
	}
}

// Image is the host-owned 2D surface a Translator draws into. Allocation
// and pixel replacement are delegated to the embedding presentation
// layer (HostGraphics); Translator only decides when a new one is
// needed and what bytes to hand it.
type Image interface {
	Width() int
	Height() int
	Format() HostFormat
}

// HostGraphics allocates and updates the images a Translator targets.
type HostGraphics interface {
	NewImage(width, height int, format HostFormat) (Image, error)
	ReplacePixels(img Image, x, y, width, height int, pixels []byte) error
}

// Translator owns the scratch buffer and cached image a module's video
// refresh callback writes into across frames.
type Translator struct {
	host HostGraphics

	image  Image
	format PixelFormat
	width  int
	height int

	scratch []byte
}

// NewTranslator creates a Translator that allocates images through host.
func NewTranslator(host HostGraphics) *Translator {
	return &Translator{host: host}
}

// Image returns the currently cached host image, or nil if none has
// been allocated yet.
func (t *Translator) Image() Image {
	return t.image
}

// InvalidateGeometry forces image reconstruction on the next Refresh,
// as required when the module issues SET_SYSTEM_AV_INFO or SET_GEOMETRY.
func (t *Translator) InvalidateGeometry() {
	t.image = nil
	t.scratch = nil
}

// Refresh is the module's video refresh callback. data is nil for frame
// duplication, in which case Refresh is a no-op: the cached image and
// scratch buffer are left untouched and nothing is sent to the host.
func (t *Translator) Refresh(data []byte, format PixelFormat, width, height, pitch int) error {
	if data == nil {
		return nil
	}

	if t.image == nil || t.width != width || t.height != height || t.format != format {
		hf := hostFormatFor(format)
		bpp := hf.BytesPerPixel()

		t.image = nil
		t.scratch = nil

		img, err := t.host.NewImage(width, height, hf)
		if err != nil {
			return fmt.Errorf("video: allocating %dx%d image: %w", width, height, err)
		}

		t.image = img
		t.format = format
		t.width = width
		t.height = height
		t.scratch = make([]byte, width*height*bpp)
	}

	hf := hostFormatFor(format)
	bpp := hf.BytesPerPixel()

	switch format {
	case FormatXRGB8888:
		translateXRGB8888(data, t.scratch, width, height, pitch)
	default:
		copyRows(data, t.scratch, width, height, pitch, bpp)
	}

	return t.host.ReplacePixels(t.image, 0, 0, width, height, t.scratch)
}

// translateXRGB8888 reads 32-bit 0xAARRGGBB source pixels and writes
// RGBA8 destination pixels, forcing full opacity and honoring src's row
// pitch in bytes.
func translateXRGB8888(src, dst []byte, width, height, pitch int) {
	for y := 0; y < height; y++ {
		srow := src[y*pitch:]
		drow := dst[y*width*4:]
		for x := 0; x < width; x++ {
			so := x * 4
			v := uint32(srow[so]) | uint32(srow[so+1])<<8 | uint32(srow[so+2])<<16 | uint32(srow[so+3])<<24

			r := byte((v >> 16) & 0xFF) // R in AARRGGBB order
			g := byte((v >> 8) & 0xFF)  // G unchanged
			b := byte(v & 0xFF)         // B in AARRGGBB order

			do := x * 4
			drow[do] = r
			drow[do+1] = g
			drow[do+2] = b
			drow[do+3] = 0xFF
		}
	}
}

// copyRows is a pitch-aware memcpy per row, used for formats the host
// accepts as-is (RGB565, XRGB1555).
func copyRows(src, dst []byte, width, height, pitch, bpp int) {
	rowBytes := width * bpp
	for y := 0; y < height; y++ {
		copy(dst[y*rowBytes:(y+1)*rowBytes], src[y*pitch:y*pitch+rowBytes])
	}
}
