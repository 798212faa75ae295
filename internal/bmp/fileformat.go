// BMP-specific structs, constants and layout arithmetic
package bmp

// The BitmapFileHeader structure contains information about the type, size,
// and layout of a file that contains a DIB [device-independent bitmap].
// https://learn.microsoft.com/en-us/windows/win32/api/wingdi/ns-wingdi-bitmapfileheader

type BitmapFileHeader struct {
	Type      [2]byte // The file type: must be 0x4d42 (ASCII string "BM").
	Size      uint32  // The size, in bytes, of the bitmap file.
	Reserved1 uint16  // Reserved; must be zero.
	Reserved2 uint16  // Reserved; must be zero.
	OffBits   uint32  // Bitmap File Offset (In bytes) to Pixel Arrays
}

// The BitmapInfoHeader structure contains information about the
// dimensions and color format of DIB [device-independent bitmap].

type BitmapInfoHeader struct {
	Size            uint32 // The number of bytes required by the structure.
	Width           int32  // The width of the bitmap, in pixels.
	Height          int32  // The height of the bitmap, in pixels (negative: rows stored top-down)
	Planes          uint16 // The number of planes for the target device.
	BitCount        uint16 // The number of bits-per-pixel.
	Compression     uint32 // The type of compression
	SizeImage       uint32 // The size of the image (in bytes).
	XPixelsPerM     int32  // The horizontal resolution, in pixels-per-meter.
	YPixelsPerM     int32  // The vertical resolution, in pixels-per-meter.
	ColorsUsed      uint32 // Number of color indexes that are actually used by bitmap.
	ColorsImportant uint32 // Number of color indexes required for displaying the bitmap.
}

const (
	fileHeaderLen  = 14
	infoHeaderLen  = 40
	HeaderLen      = fileHeaderLen + infoHeaderLen // 54
	ColorTableLen  = 256 * 4                       // 1024
	indexedDataOff = HeaderLen + ColorTableLen     // 1078

	compressionRGB = 0    // BI_RGB (uncompressed)
	resolution     = 2835 // pixels-per-meter, ~72 DPI
)

// "BM" read as a little-endian uint16 is 0x4D42.
var signature = [2]byte{0x42, 0x4d}

// Returns the on-disk row size: width*bytesPerPixel rounded up to 4 bytes
func rowSize(width, bytesPerPixel int) int {
	return ((width*bytesPerPixel + 3) / 4) * 4
}

// Returns the number of zero bytes that follow each row
func rowPadding(width, bytesPerPixel int) int {
	return (4 - (width*bytesPerPixel)%4) % 4
}

// Builds fresh headers for an image of the given geometry (bottom-up rows)
func newHeaders(width, height, bitCount int) (BitmapFileHeader, BitmapInfoHeader) {
	sizeImage := uint32(rowSize(width, bitCount/8) * height)
	offBits := uint32(HeaderLen)
	var colorsUsed uint32
	if bitCount == 8 {
		offBits = indexedDataOff
		colorsUsed = 256
	}

	bfh := BitmapFileHeader{Type: signature, Size: offBits + sizeImage, OffBits: offBits}
	bih := BitmapInfoHeader{
		Size:        infoHeaderLen,
		Width:       int32(width),
		Height:      int32(height),
		Planes:      1,
		BitCount:    uint16(bitCount),
		Compression: compressionRGB,
		SizeImage:   sizeImage,
		XPixelsPerM: resolution,
		YPixelsPerM: resolution,
		ColorsUsed:  colorsUsed,
	}
	return bfh, bih
}

// GrayColorTable returns the identity palette (i, i, i, 0) for i in 0..255.
func GrayColorTable() []byte {
	table := make([]byte, ColorTableLen)
	for i := range 256 {
		table[i*4] = byte(i)
		table[i*4+1] = byte(i)
		table[i*4+2] = byte(i)
	}
	return table
}
