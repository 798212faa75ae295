package session

import (
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/samber/lo"

	"github.com/anas-shakeel/go-bmp/internal/adjustments"
	"github.com/anas-shakeel/go-bmp/internal/bmp"
	"github.com/anas-shakeel/go-bmp/internal/filters"
	"github.com/anas-shakeel/go-bmp/internal/histogram"
)

var (
	// ErrUnknownOp reports an operation name that is not registered.
	ErrUnknownOp = errors.New("session: unknown operation")

	// ErrBadArgument reports a missing, extra or unparsable operation argument.
	ErrBadArgument = errors.New("session: bad argument")
)

// Op is a named operation with an optional argument, written "name" or "name=arg".
type Op struct {
	Name string
	Arg  string
}

func (o Op) String() string {
	if o.Arg == "" {
		return o.Name
	}
	return o.Name + "=" + o.Arg
}

// ParseOp parses "name" or "name=arg".
func ParseOp(s string) (Op, error) {
	name, arg, _ := strings.Cut(strings.TrimSpace(s), "=")
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" {
		return Op{}, fmt.Errorf("%w: empty operation", ErrUnknownOp)
	}
	if _, ok := registry[name]; !ok {
		return Op{}, fmt.Errorf("%w: %q", ErrUnknownOp, name)
	}
	return Op{Name: name, Arg: strings.TrimSpace(arg)}, nil
}

type opSpec struct {
	usage    string
	needsArg bool
	apply    func(b *bmp.Bitmap, arg string) error
}

var registry = map[string]opSpec{
	"negative": {usage: "invert every sample", apply: func(b *bmp.Bitmap, _ string) error {
		filters.Negative(b.Raster)
		return nil
	}},
	"grayscale": {usage: "average R, G, B (24-bit only)", apply: func(b *bmp.Bitmap, _ string) error {
		return filters.Grayscale(b.Raster)
	}},
	"luma": {usage: "ITU-R 601-2 luma grayscale (24-bit only)", apply: func(b *bmp.Bitmap, _ string) error {
		return filters.GrayscaleLuma(b.Raster)
	}},
	"brightness": {usage: "brightness=DELTA, added to every sample", needsArg: true, apply: func(b *bmp.Bitmap, arg string) error {
		delta, err := parseInt(arg)
		if err != nil {
			return err
		}
		filters.Brightness(b.Raster, delta)
		return nil
	}},
	"contrast": {usage: "contrast=FACTOR around the channel mean", needsArg: true, apply: func(b *bmp.Bitmap, arg string) error {
		f, err := strconv.ParseFloat(arg, 64)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadArgument, err)
		}
		return filters.Contrast(b.Raster, f)
	}},
	"threshold": {usage: "threshold=T, samples >= T become white (8-bit only)", needsArg: true, apply: func(b *bmp.Bitmap, arg string) error {
		t, err := parseInt(arg)
		if err != nil {
			return err
		}
		return filters.Threshold(b.Raster, t)
	}},
	"channel": {usage: "channel=red|green|blue, zero the other channels (24-bit only)", needsArg: true, apply: func(b *bmp.Bitmap, arg string) error {
		return filters.Channel(b.Raster, strings.ToLower(arg))
	}},
	"equalize": {usage: "histogram equalization (luma for 24-bit)", apply: func(b *bmp.Bitmap, _ string) error {
		return histogram.Equalize(b.Raster)
	}},
	"crop": {usage: "crop=X,Y,W,H from the top-left corner", needsArg: true, apply: func(b *bmp.Bitmap, arg string) error {
		parts := strings.Split(arg, ",")
		if len(parts) != 4 {
			return fmt.Errorf("%w: crop wants X,Y,W,H", ErrBadArgument)
		}
		v := make([]int, 4)
		for i, p := range parts {
			n, err := parseInt(p)
			if err != nil {
				return err
			}
			v[i] = n
		}
		cropped, err := adjustments.Crop(b.Raster, v[0], v[1], v[2], v[3])
		if err != nil {
			return err
		}
		b.Raster = cropped
		return nil
	}},
}

func init() {
	for _, name := range filters.PresetNames() {
		registry[name] = opSpec{
			usage: "3x3 " + name + " convolution",
			apply: func(b *bmp.Bitmap, _ string) error {
				k, _ := filters.Preset(name)
				return filters.Convolve(b.Raster, k)
			},
		}
	}
}

func parseInt(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrBadArgument, err)
	}
	return n, nil
}

// OpNames returns the registered operation names, sorted.
func OpNames() []string {
	names := lo.Keys(registry)
	slices.Sort(names)
	return names
}

// Usage returns a one-line description of the named operation.
func Usage(name string) string {
	return registry[name].usage
}
