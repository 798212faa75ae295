package filters

import (
	"errors"
	"fmt"
	"slices"

	"github.com/samber/lo"

	"github.com/anas-shakeel/go-bmp/internal/logging"
	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/utils"
)

// ErrInvalidKernel reports a kernel that is not square with an odd side.
var ErrInvalidKernel = errors.New("filters: invalid kernel")

// Kernel is a square convolution matrix of side 2n+1, stored row-major.
// Weights are used as given; blur kernels are expected to sum to 1.
type Kernel struct {
	Side    int
	Weights []float64
}

// Creates a kernel of the given side from row-major weights
func NewKernel(side int, weights ...float64) (Kernel, error) {
	k := Kernel{Side: side, Weights: weights}
	if err := k.validate(); err != nil {
		return Kernel{}, err
	}
	return k, nil
}

// Creates a kernel from a matrix, which must be square with an odd side
func KernelFromRows(rows [][]float64) (Kernel, error) {
	side := len(rows)
	weights := make([]float64, 0, side*side)
	for j, row := range rows {
		if len(row) != side {
			return Kernel{}, fmt.Errorf("%w: row %d has %d weights, want %d", ErrInvalidKernel, j, len(row), side)
		}
		weights = append(weights, row...)
	}
	return NewKernel(side, weights...)
}

func (k Kernel) validate() error {
	if k.Side <= 0 || k.Side%2 == 0 {
		return fmt.Errorf("%w: side %d is not a positive odd number", ErrInvalidKernel, k.Side)
	}
	if len(k.Weights) != k.Side*k.Side {
		return fmt.Errorf("%w: %d weights for side %d", ErrInvalidKernel, len(k.Weights), k.Side)
	}
	return nil
}

// Radius is n for a kernel of side 2n+1.
func (k Kernel) Radius() int { return k.Side / 2 }

// At returns the weight in row j, column i.
func (k Kernel) At(i, j int) float64 { return k.Weights[j*k.Side+i] }

// Convolve replaces every sample with the weighted sum of its neighborhood,
// rounded and clamped to [0, 255]. Channels are filtered independently.
//
// Neighbors outside the image are left out of the sum: border pixels get a
// partial window with the same weights as interior pixels, so a blur darkens
// the edges. The result is built in a scratch buffer and swapped in at the end.
func Convolve(b *raster.Buffer, k Kernel) error {
	if err := k.validate(); err != nil {
		return err
	}

	out := b.NewLike()
	n := k.Radius()
	acc := make([]float64, b.Channels)

	for y := range b.Height {
		for x := range b.Width {
			clear(acc)
			for j := range k.Side {
				sy := y + j - n
				if sy < 0 || sy >= b.Height {
					continue
				}
				for i := range k.Side {
					sx := x + i - n
					if sx < 0 || sx >= b.Width {
						continue
					}
					w := k.At(i, j)
					p := b.Pixel(sx, sy)
					for c, s := range p {
						acc[c] += w * float64(s)
					}
				}
			}

			dst := out.Pixel(x, y)
			for c, v := range acc {
				dst[c] = utils.RoundClamp(v)
			}
		}
	}

	logging.Logger().Debug("convolved", "side", k.Side, "width", b.Width, "height", b.Height)
	return b.Swap(out)
}

// Fixed 3x3 kernels.
var (
	BoxBlur = Kernel{Side: 3, Weights: []float64{
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
		1.0 / 9, 1.0 / 9, 1.0 / 9,
	}}
	GaussianBlur = Kernel{Side: 3, Weights: []float64{
		1.0 / 16, 2.0 / 16, 1.0 / 16,
		2.0 / 16, 4.0 / 16, 2.0 / 16,
		1.0 / 16, 2.0 / 16, 1.0 / 16,
	}}
	Outline = Kernel{Side: 3, Weights: []float64{
		-1, -1, -1,
		-1, 8, -1,
		-1, -1, -1,
	}}
	Emboss = Kernel{Side: 3, Weights: []float64{
		-2, -1, 0,
		-1, 1, 1,
		0, 1, 2,
	}}
	Sharpen = Kernel{Side: 3, Weights: []float64{
		0, -1, 0,
		-1, 5, -1,
		0, -1, 0,
	}}
)

var presets = map[string]Kernel{
	"box-blur":      BoxBlur,
	"gaussian-blur": GaussianBlur,
	"outline":       Outline,
	"emboss":        Emboss,
	"sharpen":       Sharpen,
}

// Returns a copy of the named preset kernel
func Preset(name string) (Kernel, bool) {
	k, ok := presets[name]
	if !ok {
		return Kernel{}, false
	}
	return Kernel{Side: k.Side, Weights: slices.Clone(k.Weights)}, true
}

// Returns the preset names in sorted order
func PresetNames() []string {
	names := lo.Keys(presets)
	slices.Sort(names)
	return names
}
