// Package raster holds decoded pixel data as a flat, row-major sample buffer.
//
// A Buffer stores Width*Height pixels of 1 (gray) or 3 (RGB) channels, top row
// first. Sample (x, y, c) lives at (y*Width+x)*Channels+c. Filters mutate a
// Buffer in place; the bmp package creates and consumes them.
package raster

import (
	"errors"
	"fmt"
	"image"
	"image/color"
)

// Supported channel counts.
const (
	Gray = 1
	RGB  = 3
)

var (
	// ErrShapeMismatch reports an operation that cannot run on a buffer of this
	// channel count, or a sample slice whose length disagrees with the geometry.
	ErrShapeMismatch = errors.New("raster: shape mismatch")

	// ErrEmptyBuffer reports an operation that needs at least one pixel.
	ErrEmptyBuffer = errors.New("raster: empty buffer")
)

// Buffer is a width x height grid of 8-bit samples.
type Buffer struct {
	Width    int
	Height   int
	Channels int
	Samples  []byte
}

// Info describes the geometry of a buffer.
type Info struct {
	Width    int
	Height   int
	Channels int
}

// BitDepth returns the bits per pixel of the on-disk format for this shape.
func (i Info) BitDepth() int { return i.Channels * 8 }

// New allocates a zeroed buffer. Zero-sized buffers are allowed; negative
// dimensions and channel counts other than 1 and 3 are not.
func New(width, height, channels int) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	return &Buffer{
		Width:    width,
		Height:   height,
		Channels: channels,
		Samples:  make([]byte, width*height*channels),
	}, nil
}

// FromSamples wraps samples without copying. len(samples) must equal
// width*height*channels.
func FromSamples(width, height, channels int, samples []byte) (*Buffer, error) {
	if err := checkShape(width, height, channels); err != nil {
		return nil, err
	}
	if len(samples) != width*height*channels {
		return nil, fmt.Errorf("%w: %d samples for %dx%dx%d", ErrShapeMismatch, len(samples), width, height, channels)
	}
	return &Buffer{Width: width, Height: height, Channels: channels, Samples: samples}, nil
}

func checkShape(width, height, channels int) error {
	if channels != Gray && channels != RGB {
		return fmt.Errorf("%w: %d channels", ErrShapeMismatch, channels)
	}
	if width < 0 || height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrShapeMismatch, width, height)
	}
	return nil
}

// Info returns the buffer geometry.
func (b *Buffer) Info() Info {
	return Info{Width: b.Width, Height: b.Height, Channels: b.Channels}
}

// Stride is the number of samples in one row.
func (b *Buffer) Stride() int { return b.Width * b.Channels }

// Pixels is the number of pixels in the buffer.
func (b *Buffer) Pixels() int { return b.Width * b.Height }

// Empty reports whether the buffer holds no pixels.
func (b *Buffer) Empty() bool { return b.Pixels() == 0 }

// Offset returns the index of the first sample of pixel (x, y).
func (b *Buffer) Offset(x, y int) int {
	return (y*b.Width + x) * b.Channels
}

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && y >= 0 && x < b.Width && y < b.Height
}

// Pixel returns a view of the samples at (x, y). Writes through the view
// modify the buffer.
func (b *Buffer) Pixel(x, y int) Pixel {
	i := b.Offset(x, y)
	return Pixel(b.Samples[i : i+b.Channels : i+b.Channels])
}

// Row returns a view of row y.
func (b *Buffer) Row(y int) []byte {
	s := b.Stride()
	return b.Samples[y*s : (y+1)*s]
}

// Require fails with ErrShapeMismatch unless the buffer has the given channel count.
func (b *Buffer) Require(channels int) error {
	if b.Channels != channels {
		return fmt.Errorf("%w: need %d channel(s), buffer has %d", ErrShapeMismatch, channels, b.Channels)
	}
	return nil
}

// SameShape reports whether o has the same width, height and channel count.
func (b *Buffer) SameShape(o *Buffer) bool {
	return b.Info() == o.Info()
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	c := *b
	c.Samples = append([]byte(nil), b.Samples...)
	return &c
}

// NewLike allocates a zeroed buffer with the same shape as b.
func (b *Buffer) NewLike() *Buffer {
	return &Buffer{
		Width:    b.Width,
		Height:   b.Height,
		Channels: b.Channels,
		Samples:  make([]byte, len(b.Samples)),
	}
}

// Swap replaces the contents of b with those of o, which must have the same
// shape. It is how filters commit a scratch result.
func (b *Buffer) Swap(o *Buffer) error {
	if !b.SameShape(o) {
		return fmt.Errorf("%w: cannot swap %v into %v", ErrShapeMismatch, o.Info(), b.Info())
	}
	b.Samples, o.Samples = o.Samples, b.Samples
	return nil
}

// ColorModel implements image.Image.
func (b *Buffer) ColorModel() color.Model {
	if b.Channels == Gray {
		return color.GrayModel
	}
	return color.RGBAModel
}

// Bounds implements image.Image.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// At implements image.Image.
func (b *Buffer) At(x, y int) color.Color {
	if !b.In(x, y) {
		return color.RGBA{}
	}
	p := b.Pixel(x, y)
	if b.Channels == Gray {
		return color.Gray{Y: p[0]}
	}
	return color.RGBA{R: p[0], G: p[1], B: p[2], A: 0xff}
}
