// Package preview prints raster buffers to true-color terminals.
package preview

import (
	"bufio"
	"fmt"
	"image"
	"io"

	"golang.org/x/image/draw"

	"github.com/anas-shakeel/go-bmp/internal/raster"
	"github.com/anas-shakeel/go-bmp/internal/utils"
)

// Each pixel is printed as a block of two spaces, roughly square in most fonts.
const block = "  "

// Render writes b to w as colored blocks, one line per row. Images wider than
// maxWidth pixels are scaled down first, keeping the aspect ratio.
// maxWidth <= 0 disables scaling.
func Render(w io.Writer, b *raster.Buffer, maxWidth int) error {
	if b.Empty() {
		return raster.ErrEmptyBuffer
	}

	var src image.Image = b
	if maxWidth > 0 && b.Width > maxWidth {
		height := max(1, b.Height*maxWidth/b.Width)
		dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
		draw.ApproxBiLinear.Scale(dst, dst.Bounds(), b, b.Bounds(), draw.Src, nil)
		src = dst
	}

	bw := bufio.NewWriter(w)
	bounds := src.Bounds()
	for y := bounds.Min.Y; y < bounds.Max.Y; y++ {
		for x := bounds.Min.X; x < bounds.Max.X; x++ {
			r, g, bl, _ := src.At(x, y).RGBA()
			fmt.Fprint(bw, utils.ColoredBlock(block, int(r>>8), int(g>>8), int(bl>>8)))
		}
		fmt.Fprintln(bw)
	}
	return bw.Flush()
}
