// Package histogram computes intensity histograms and applies histogram
// equalization to raster buffers.
//
// Gray buffers are equalized directly. RGB buffers are converted to YUV, the
// luma channel is equalized and the result converted back, which stretches
// contrast without shifting hue.
//
// The two paths derive the CDF minimum differently: the gray path uses the
// first non-zero CDF entry, the RGB path always uses cdf[0]. Images whose
// darkest luma bin is empty therefore map their darkest pixel above 0 in the
// RGB path. Both behaviors are kept as they are.
package histogram

import (
	"fmt"

	"github.com/samber/lo"

	"github.com/anas-shakeel/go-bmp/internal/logging"
	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/utils"
)

// Levels is the number of intensity levels of an 8-bit sample.
const Levels = 256

// Histogram counts occurrences of each intensity level.
type Histogram [Levels]int

// CDF is the running sum of a Histogram; the last entry equals the total count.
type CDF [Levels]int

// LUT maps an intensity level to its equalized level.
type LUT [Levels]byte

// Total returns the number of samples counted.
func (h *Histogram) Total() int {
	return lo.Sum(h[:])
}

// CDF returns the cumulative distribution of h.
func (h *Histogram) CDF() CDF {
	var cdf CDF
	cdf[0] = h[0]
	for i := 1; i < Levels; i++ {
		cdf[i] = cdf[i-1] + h[i]
	}
	return cdf
}

// FirstNonZero returns the first non-zero entry of the CDF, or 0 if all are zero.
func (c *CDF) FirstNonZero() int {
	for _, v := range c {
		if v != 0 {
			return v
		}
	}
	return 0
}

// Compute returns the histogram of a gray buffer.
func Compute(b *raster.Buffer) (Histogram, error) {
	if err := b.Require(raster.Gray); err != nil {
		return Histogram{}, err
	}
	return ComputeChannel(b, 0)
}

// ComputeChannel returns the histogram of channel c (0 for gray; 0, 1, 2 for
// red, green, blue).
func ComputeChannel(b *raster.Buffer, c int) (Histogram, error) {
	var h Histogram
	if c < 0 || c >= b.Channels {
		return h, fmt.Errorf("%w: channel %d of %d", raster.ErrShapeMismatch, c, b.Channels)
	}
	for i := c; i < len(b.Samples); i += b.Channels {
		h[b.Samples[i]]++
	}
	return h, nil
}

// ComputeLuma returns the histogram of the rounded luma of an RGB buffer, the
// distribution that Equalize flattens for color images.
func ComputeLuma(b *raster.Buffer) (Histogram, error) {
	if err := b.Require(raster.RGB); err != nil {
		return Histogram{}, err
	}
	var h Histogram
	for i := 0; i < len(b.Samples); i += 3 {
		y, _, _ := toYUV(raster.Pixel(b.Samples[i : i+3]))
		h[lumaBin(y)]++
	}
	return h, nil
}

// NewLUT builds the equalization table
//
//	lut[i] = round((cdf[i] - cdfMin) / (total - cdfMin) * 255)
//
// clamped to [0, 255]. When total == cdfMin every entry is 0.
func NewLUT(cdf CDF, total, cdfMin int) LUT {
	var lut LUT
	if total == cdfMin {
		return lut
	}
	span := float64(total - cdfMin)
	for i, v := range cdf {
		lut[i] = utils.RoundClamp(float64(v-cdfMin) / span * 255)
	}
	return lut
}

// Equalize flattens the intensity distribution of b in place.
func Equalize(b *raster.Buffer) error {
	if b.Empty() {
		return raster.ErrEmptyBuffer
	}

	switch b.Channels {
	case raster.Gray:
		return equalizeGray(b)
	case raster.RGB:
		return equalizeRGB(b)
	default:
		return fmt.Errorf("%w: %d channels", raster.ErrShapeMismatch, b.Channels)
	}
}

func equalizeGray(b *raster.Buffer) error {
	h, err := Compute(b)
	if err != nil {
		return err
	}
	cdf := h.CDF()
	total := b.Pixels()
	cdfMin := cdf.FirstNonZero()
	lut := NewLUT(cdf, total, cdfMin)

	for i, s := range b.Samples {
		b.Samples[i] = lut[s]
	}

	logging.Logger().Debug("equalized gray", "total", total, "cdfMin", cdfMin)
	return nil
}

func equalizeRGB(b *raster.Buffer) error {
	n := b.Pixels()
	ys := make([]float64, n)
	us := make([]float64, n)
	vs := make([]float64, n)

	var h Histogram
	for p := range n {
		i := p * 3
		ys[p], us[p], vs[p] = toYUV(raster.Pixel(b.Samples[i : i+3]))
		h[lumaBin(ys[p])]++
	}

	cdf := h.CDF()
	cdfMin := cdf[0]
	lut := NewLUT(cdf, n, cdfMin)

	out := b.NewLike()
	for p := range n {
		y := float64(lut[lumaBin(ys[p])])
		r, g, bl := fromYUV(y, us[p], vs[p])
		raster.Pixel(out.Samples[p*3 : p*3+3]).SetRGB(r, g, bl)
	}

	logging.Logger().Debug("equalized luma", "total", n, "cdfMin", cdfMin)
	return b.Swap(out)
}

func lumaBin(y float64) byte {
	return utils.RoundClamp(y)
}
