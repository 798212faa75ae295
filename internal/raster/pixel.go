package raster

// Pixel is a view into one pixel of a Buffer: one gray sample or R, G, B.
type Pixel []byte

// RGB returns the pixel as red, green and blue. Gray pixels are replicated.
func (p Pixel) RGB() (r, g, b byte) {
	if len(p) == Gray {
		return p[0], p[0], p[0]
	}
	return p[0], p[1], p[2]
}

// SetRGB stores r, g, b into an RGB pixel.
func (p Pixel) SetRGB(r, g, b byte) {
	p[0], p[1], p[2] = r, g, b
}

// Fill sets every channel of the pixel to v.
func (p Pixel) Fill(v byte) {
	for c := range p {
		p[c] = v
	}
}

// AppendBGR appends the pixel in on-disk channel order (Blue, Green, Red).
func (p Pixel) AppendBGR(dst []byte) []byte {
	r, g, b := p.RGB()
	return append(dst, b, g, r)
}
