// Filters perform color manipulation and per-pixel operations
package filters

import (
	"errors"
	"fmt"

	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/utils"
)

// ErrUnknownChannel reports a channel name other than red, green or blue.
var ErrUnknownChannel = errors.New("filters: unknown channel")

// Inverts (negates) every sample: s -> 255 - s
func Negative(b *raster.Buffer) {
	for i, s := range b.Samples {
		b.Samples[i] = 255 - s
	}
}

// Converts an RGB buffer to gray by averaging the channels (truncating)
func Grayscale(b *raster.Buffer) error {
	if err := b.Require(raster.RGB); err != nil {
		return err
	}

	for i := 0; i < len(b.Samples); i += 3 {
		p := raster.Pixel(b.Samples[i : i+3])
		r, g, bl := p.RGB()
		p.Fill(byte(utils.Average(int(r), int(g), int(bl))))
	}
	return nil
}

// Converts an RGB buffer to gray with the ITU-R 601-2 luma transform
func GrayscaleLuma(b *raster.Buffer) error {
	if err := b.Require(raster.RGB); err != nil {
		return err
	}

	for i := 0; i < len(b.Samples); i += 3 {
		p := raster.Pixel(b.Samples[i : i+3])
		r, g, bl := p.RGB()
		L := int(r)*299/1000 + int(g)*587/1000 + int(bl)*114/1000
		p.Fill(byte(L))
	}
	return nil
}

// Adds delta to every sample, saturating at 0 and 255
func Brightness(b *raster.Buffer, delta int) {
	for i, s := range b.Samples {
		b.Samples[i] = utils.ClampInt(int(s) + delta)
	}
}

// Binarizes a gray buffer: samples >= t become 255, the rest 0
func Threshold(b *raster.Buffer, t int) error {
	if err := b.Require(raster.Gray); err != nil {
		return err
	}

	for i, s := range b.Samples {
		if int(s) >= t {
			b.Samples[i] = 255
		} else {
			b.Samples[i] = 0
		}
	}
	return nil
}

// Adjusts the Contrast of a buffer in-place around each channel's mean.
// factor > 1.0 increases Contrast, factor < 1.0 decreases it.
func Contrast(b *raster.Buffer, factor float64) error {
	if b.Empty() {
		return raster.ErrEmptyBuffer
	}

	// Compute mean for each channel
	sums := make([]int, b.Channels)
	for i, s := range b.Samples {
		sums[i%b.Channels] += int(s)
	}
	means := make([]float64, b.Channels)
	for c, sum := range sums {
		means[c] = float64(sum) / float64(b.Pixels())
	}

	// Apply contrast
	for i, s := range b.Samples {
		m := means[i%b.Channels]
		b.Samples[i] = utils.ClampFloat(float64(s)*factor + (1-factor)*m)
	}
	return nil
}

// Keeps a single color channel of an RGB buffer and zeroes the others.
// channel can be one of (`red`, `green`, and `blue`)
func Channel(b *raster.Buffer, channel string) error {
	if err := b.Require(raster.RGB); err != nil {
		return err
	}

	var keep int
	switch channel {
	case "red":
		keep = 0
	case "green":
		keep = 1
	case "blue":
		keep = 2
	default:
		return fmt.Errorf("%w: %q (want red, green or blue)", ErrUnknownChannel, channel)
	}

	for i := range b.Samples {
		if i%3 != keep {
			b.Samples[i] = 0
		}
	}
	return nil
}
