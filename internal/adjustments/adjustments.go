// Adjusts image dimensions, orientation, or structure.
package adjustments

import (
	"fmt"

	"github.com/anas-shakeel/go-bmp/internal/raster"
)

// Crops a region of the buffer into a new buffer (0,0 is at the top-left of the image)
func Crop(b *raster.Buffer, x, y, width, height int) (*raster.Buffer, error) {
	// Validate bounds
	if x < 0 || y < 0 || width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: crop %dx%d at (%d,%d)", raster.ErrShapeMismatch, width, height, x, y)
	} else if width+x > b.Width {
		return nil, fmt.Errorf("%w: crop width out of bounds", raster.ErrShapeMismatch)
	} else if height+y > b.Height {
		return nil, fmt.Errorf("%w: crop height out of bounds", raster.ErrShapeMismatch)
	}

	cropped, err := raster.New(width, height, b.Channels)
	if err != nil {
		return nil, err
	}

	// Copy row segments
	for row := range height {
		start := b.Offset(x, row+y)
		copy(cropped.Row(row), b.Samples[start:start+cropped.Stride()])
	}
	return cropped, nil
}
