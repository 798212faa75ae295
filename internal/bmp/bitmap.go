// bmp package reads and writes uncompressed 8-bit (gray indexed) and 24-bit bitmaps
package bmp

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/anas-shakeel/go-bmp/internal/logging"
	"github.com/anas-shakeel/go-bmp/internal/raster"
)

// Bitmap is a decoded image together with the bytes needed to write it back.
//
// For 8-bit images Header and ColorTable hold the 54 header bytes and the
// 1024-byte palette exactly as read. They are nil for synthesized images, in
// which case Encode generates a header and a gray identity palette.
type Bitmap struct {
	Filename   string
	Raster     *raster.Buffer
	Header     []byte
	ColorTable []byte
}

// Meta summarizes a bitmap as it would be written to disk.
type Meta struct {
	Filename    string
	Width       int
	Height      int
	Channels    int
	BitCount    int
	Stride      int // row size in bytes, padding included
	Padding     int // zero bytes after each row
	ImageSize   int // pixel data size in bytes
	FileSize    int
	PixelOffset int
}

// Creates and returns a zeroed bitmap (channels: 1 for 8-bit gray, 3 for 24-bit)
func NewBitmap(width, height, channels int) (*Bitmap, error) {
	if width <= 0 {
		return nil, fmt.Errorf("%w: width must be greater than 0", ErrUnsupportedFormat)
	} else if height <= 0 {
		return nil, fmt.Errorf("%w: height must be greater than 0", ErrUnsupportedFormat)
	}

	buf, err := raster.New(width, height, channels)
	if err != nil {
		return nil, err
	}
	return &Bitmap{Raster: buf}, nil
}

// Wraps an existing raster buffer in a bitmap without provenance bytes
func FromRaster(buf *raster.Buffer) *Bitmap {
	return &Bitmap{Raster: buf}
}

// Reads and decodes a bitmap file
func ReadFile(filename string) (*Bitmap, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, &IOError{Op: "open", Path: filename, Err: err}
	}

	b, err := Decode(data)
	if err != nil {
		return nil, err
	}
	b.Filename = filename
	return b, nil
}

// Decodes a complete bitmap file held in memory
func Decode(data []byte) (*Bitmap, error) {
	if len(data) < HeaderLen {
		return nil, &IOError{Op: "read header", Err: io.ErrUnexpectedEOF}
	}

	// Read File Header and Info Header
	r := bytes.NewReader(data)
	var bfHeader BitmapFileHeader
	var biHeader BitmapInfoHeader
	if err := binary.Read(r, binary.LittleEndian, &bfHeader); err != nil {
		return nil, &IOError{Op: "read header", Err: err}
	}
	if bfHeader.Type != signature {
		return nil, fmt.Errorf("%w: got %#02x %#02x", ErrInvalidSignature, bfHeader.Type[0], bfHeader.Type[1])
	}
	if err := binary.Read(r, binary.LittleEndian, &biHeader); err != nil {
		return nil, &IOError{Op: "read header", Err: err}
	}

	// Only uncompressed 8 and 24 bit images
	if biHeader.Compression != compressionRGB {
		return nil, fmt.Errorf("%w: compression method %d", ErrUnsupportedFormat, biHeader.Compression)
	}
	var channels int
	switch biHeader.BitCount {
	case 8:
		channels = raster.Gray
	case 24:
		channels = raster.RGB
	default:
		return nil, fmt.Errorf("%w: %d bits per pixel", ErrUnsupportedFormat, biHeader.BitCount)
	}

	width := int(biHeader.Width)
	height := int(biHeader.Height)
	topDown := false // Pixels are stored TopDown?
	if height < 0 {
		topDown = true
		height = -height
	}
	if width <= 0 || height == 0 {
		return nil, fmt.Errorf("%w: invalid size %dx%d", ErrUnsupportedFormat, width, height)
	}

	stride := rowSize(width, channels)
	b := &Bitmap{}

	// Locate the pixel array
	var pixels []byte
	if channels == raster.Gray {
		if len(data) < indexedDataOff {
			return nil, &IOError{Op: "read color table", Err: io.ErrUnexpectedEOF}
		}
		b.Header = append([]byte(nil), data[:HeaderLen]...)
		b.ColorTable = append([]byte(nil), data[HeaderLen:indexedDataOff]...)

		dataSize := int(biHeader.SizeImage)
		if dataSize == 0 {
			dataSize = rowSize(width, 1) * height
		}
		if dataSize > len(data)-indexedDataOff || height > dataSize/stride {
			return nil, &IOError{Op: "read pixels", Err: io.ErrUnexpectedEOF}
		}
		pixels = data[indexedDataOff:]
	} else {
		offset := int(bfHeader.OffBits)
		if offset < HeaderLen {
			return nil, fmt.Errorf("%w: pixel offset %d inside header", ErrUnsupportedFormat, offset)
		}
		if offset > len(data) || height > (len(data)-offset)/stride {
			return nil, &IOError{Op: "read pixels", Err: io.ErrUnexpectedEOF}
		}
		pixels = data[offset:]
	}

	buf, err := raster.New(width, height, channels)
	if err != nil {
		return nil, err
	}

	// Populate the buffer, first visual row at index 0
	for i := range height {
		rowIndex := height - i - 1
		if topDown {
			rowIndex = i
		}
		src := pixels[i*stride : i*stride+width*channels]
		dst := buf.Row(rowIndex)

		if channels == raster.Gray {
			copy(dst, src)
			continue
		}
		// BGR on disk, RGB in memory
		for x := 0; x < len(src); x += 3 {
			dst[x], dst[x+1], dst[x+2] = src[x+2], src[x+1], src[x]
		}
	}
	b.Raster = buf

	logging.Logger().Debug("bmp decoded",
		"width", width, "height", height, "bits", biHeader.BitCount, "topDown", topDown)
	return b, nil
}

// Encodes the bitmap to w (rows bottom-up, each padded to 4 bytes)
func Encode(w io.Writer, b *Bitmap) error {
	buf := b.Raster
	if buf == nil || buf.Empty() {
		return fmt.Errorf("%w: nothing to encode", raster.ErrEmptyBuffer)
	}

	// Create a buffer (to reduce syscalls)
	bw := bufio.NewWriter(w)

	var err error
	switch buf.Channels {
	case raster.Gray:
		err = b.encodeGray(bw)
	case raster.RGB:
		err = b.encodeRGB(bw)
	default:
		return fmt.Errorf("%w: %d channels", raster.ErrShapeMismatch, buf.Channels)
	}
	if err != nil {
		return &IOError{Op: "write", Err: err}
	}

	if err := bw.Flush(); err != nil {
		return &IOError{Op: "write", Err: err}
	}
	logging.Logger().Debug("bmp encoded",
		"width", buf.Width, "height", buf.Height, "bits", buf.Channels*8)
	return nil
}

func (b *Bitmap) encodeRGB(w *bufio.Writer) error {
	buf := b.Raster
	bfHeader, biHeader := newHeaders(buf.Width, buf.Height, 24)

	// Write File Header
	if err := binary.Write(w, binary.LittleEndian, &bfHeader); err != nil {
		return err
	}
	// Write Info Header
	if err := binary.Write(w, binary.LittleEndian, &biHeader); err != nil {
		return err
	}

	return writeRows(w, buf, false)
}

func (b *Bitmap) encodeGray(w *bufio.Writer) error {
	buf := b.Raster
	topDown := false
	extra := 0

	if biHeader, ok := b.preservedHeader(); ok {
		// Passthrough: the header goes out exactly as it came in
		if _, err := w.Write(b.Header); err != nil {
			return err
		}
		topDown = biHeader.Height < 0
		if size := int(biHeader.SizeImage); size > rowSize(buf.Width, 1)*buf.Height {
			extra = size - rowSize(buf.Width, 1)*buf.Height
		}
	} else {
		bfHeader, biHeader := newHeaders(buf.Width, buf.Height, 8)
		if err := binary.Write(w, binary.LittleEndian, &bfHeader); err != nil {
			return err
		}
		if err := binary.Write(w, binary.LittleEndian, &biHeader); err != nil {
			return err
		}
	}

	table := b.ColorTable
	if len(table) != ColorTableLen {
		table = GrayColorTable()
	}
	if _, err := w.Write(table); err != nil {
		return err
	}

	if err := writeRows(w, buf, topDown); err != nil {
		return err
	}
	_, err := w.Write(make([]byte, extra))
	return err
}

// Reports whether the captured 8-bit header still describes the raster
func (b *Bitmap) preservedHeader() (BitmapInfoHeader, bool) {
	var biHeader BitmapInfoHeader
	if len(b.Header) != HeaderLen {
		return biHeader, false
	}
	err := binary.Read(bytes.NewReader(b.Header[fileHeaderLen:]), binary.LittleEndian, &biHeader)
	if err != nil || biHeader.BitCount != 8 {
		return biHeader, false
	}

	height := int(biHeader.Height)
	if height < 0 {
		height = -height
	}
	if int(biHeader.Width) != b.Raster.Width || height != b.Raster.Height {
		return biHeader, false
	}
	return biHeader, true
}

// Writes the pixel rows, last visual row first unless topDown
func writeRows(w io.Writer, buf *raster.Buffer, topDown bool) error {
	paddingBytes := make([]byte, rowPadding(buf.Width, buf.Channels))
	row := make([]byte, 0, rowSize(buf.Width, buf.Channels))

	for i := range buf.Height {
		y := buf.Height - i - 1
		if topDown {
			y = i
		}

		row = row[:0]
		if buf.Channels == raster.Gray {
			row = append(row, buf.Row(y)...)
		} else {
			for x := range buf.Width {
				row = buf.Pixel(x, y).AppendBGR(row)
			}
		}
		row = append(row, paddingBytes...)

		if _, err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

// Saves the bitmap image onto local disk
func (b *Bitmap) Save(filename string) error {
	f, err := os.Create(filename)
	if err != nil {
		return &IOError{Op: "create", Path: filename, Err: err}
	}

	err = Encode(f, b)
	var ioErr *IOError
	if errors.As(err, &ioErr) && ioErr.Path == "" {
		ioErr.Path = filename
	}
	if cerr := f.Close(); err == nil && cerr != nil {
		err = &IOError{Op: "close", Path: filename, Err: cerr}
	}
	return err
}

// Returns a deep copy of the bitmap
func (b *Bitmap) Clone() *Bitmap {
	c := &Bitmap{
		Filename:   b.Filename,
		Header:     append([]byte(nil), b.Header...),
		ColorTable: append([]byte(nil), b.ColorTable...),
	}
	if b.Raster != nil {
		c.Raster = b.Raster.Clone()
	}
	return c
}

// Returns the on-disk layout of the bitmap
func (b *Bitmap) Meta() Meta {
	buf := b.Raster
	stride := rowSize(buf.Width, buf.Channels)
	m := Meta{
		Filename:    b.Filename,
		Width:       buf.Width,
		Height:      buf.Height,
		Channels:    buf.Channels,
		BitCount:    buf.Channels * 8,
		Stride:      stride,
		Padding:     rowPadding(buf.Width, buf.Channels),
		ImageSize:   stride * buf.Height,
		PixelOffset: HeaderLen,
	}
	if buf.Channels == raster.Gray {
		m.PixelOffset = indexedDataOff
		if biHeader, ok := b.preservedHeader(); ok && int(biHeader.SizeImage) > m.ImageSize {
			m.ImageSize = int(biHeader.SizeImage)
		}
	}
	m.FileSize = m.PixelOffset + m.ImageSize
	return m
}
