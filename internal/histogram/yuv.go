package histogram

import (
	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/utils"
)

// toYUV converts an RGB pixel to BT.601 analog YUV.
func toYUV(p raster.Pixel) (y, u, v float64) {
	r8, g8, b8 := p.RGB()
	r, g, b := float64(r8), float64(g8), float64(b8)

	y = 0.299*r + 0.587*g + 0.114*b
	u = -0.14713*r - 0.28886*g + 0.436*b
	v = 0.615*r - 0.51499*g - 0.10001*b
	return y, u, v
}

// fromYUV converts back to RGB, clamping each channel to [0, 255] and
// truncating the fraction.
func fromYUV(y, u, v float64) (r, g, b byte) {
	r = utils.ClampFloat(y + 1.13983*v)
	g = utils.ClampFloat(y - 0.39465*u - 0.58060*v)
	b = utils.ClampFloat(y + 2.03211*u)
	return r, g, b
}
