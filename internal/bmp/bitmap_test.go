package bmp

import (
	"bytes"
	"encoding/binary"
	"errors"
	"image"
	"image/color"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	xbmp "golang.org/x/image/bmp"

	"github.com/anas-shakeel/go-bmp/internal/raster"
)

// build24 lays out a 24-bit file by hand. rows are top-first RGB triples.
func build24(t *testing.T, width int, rows [][]byte, topDown bool) []byte {
	t.Helper()
	height := len(rows)
	stride := ((width*3 + 3) / 4) * 4

	var out bytes.Buffer
	h := int32(height)
	if topDown {
		h = -h
	}
	require.NoError(t, binary.Write(&out, binary.LittleEndian, BitmapFileHeader{
		Type: [2]byte{'B', 'M'}, Size: uint32(54 + stride*height), OffBits: 54,
	}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, BitmapInfoHeader{
		Size: 40, Width: int32(width), Height: h, Planes: 1, BitCount: 24, SizeImage: uint32(stride * height),
	}))
	for i := range height {
		y := height - 1 - i
		if topDown {
			y = i
		}
		row := rows[y]
		for x := 0; x < width; x++ {
			out.Write([]byte{row[x*3+2], row[x*3+1], row[x*3]})
		}
		out.Write(make([]byte, stride-width*3))
	}
	return out.Bytes()
}

// build8 lays out an 8-bit file with a recognizable (non-identity) palette.
func build8(t *testing.T, width int, rows [][]byte, sizeImage uint32, padByte byte) []byte {
	t.Helper()
	height := len(rows)
	stride := ((width + 3) / 4) * 4

	var out bytes.Buffer
	require.NoError(t, binary.Write(&out, binary.LittleEndian, BitmapFileHeader{
		Type: [2]byte{'B', 'M'}, Size: uint32(1078 + stride*height), Reserved1: 0xBEEF, OffBits: 1078,
	}))
	require.NoError(t, binary.Write(&out, binary.LittleEndian, BitmapInfoHeader{
		Size: 40, Width: int32(width), Height: int32(height), Planes: 1, BitCount: 8,
		SizeImage: sizeImage, XPixelsPerM: 1234, YPixelsPerM: 4321, ColorsUsed: 256,
	}))
	for i := range 256 {
		out.Write([]byte{byte(255 - i), byte(i), byte(i / 2), 0})
	}
	for i := range height {
		out.Write(rows[height-1-i])
		out.Write(bytes.Repeat([]byte{padByte}, stride-width))
	}
	return out.Bytes()
}

func TestDecode24FlipsRowsAndSwapsChannels(t *testing.T) {
	rows := [][]byte{
		{255, 0, 0, 0, 255, 0, 0, 0, 255}, // top: red green blue
		{10, 20, 30, 40, 50, 60, 70, 80, 90},
	}
	b, err := Decode(build24(t, 3, rows, false))
	require.NoError(t, err)

	require.Equal(t, raster.Info{Width: 3, Height: 2, Channels: 3}, b.Raster.Info())
	want := append(append([]byte{}, rows[0]...), rows[1]...)
	if diff := cmp.Diff(want, b.Raster.Samples); diff != "" {
		t.Errorf("samples (-want +got):\n%s", diff)
	}
	assert.Nil(t, b.Header)
	assert.Nil(t, b.ColorTable)
}

func TestDecode24TopDown(t *testing.T) {
	rows := [][]byte{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	b, err := Decode(build24(t, 1, rows, true))
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9}, b.Raster.Samples)
}

func TestDecode8StripsPaddingAndKeepsProvenance(t *testing.T) {
	rows := [][]byte{
		{1, 2, 3, 4, 5},
		{6, 7, 8, 9, 10},
	}
	data := build8(t, 5, rows, 0, 0xAA)
	b, err := Decode(data)
	require.NoError(t, err)

	assert.Equal(t, raster.Info{Width: 5, Height: 2, Channels: 1}, b.Raster.Info())
	assert.Equal(t, []byte{1, 2, 3, 4, 5, 6, 7, 8, 9, 10}, b.Raster.Samples)
	assert.Equal(t, data[:54], b.Header)
	assert.Equal(t, data[54:1078], b.ColorTable)
}

func TestDecodeErrors(t *testing.T) {
	valid24 := build24(t, 2, [][]byte{{1, 2, 3, 4, 5, 6}, {1, 2, 3, 4, 5, 6}}, false)
	valid8 := build8(t, 4, [][]byte{{1, 2, 3, 4}}, 0, 0)

	patch := func(src []byte, off int, v any) []byte {
		out := append([]byte(nil), src...)
		var b bytes.Buffer
		require.NoError(t, binary.Write(&b, binary.LittleEndian, v))
		copy(out[off:], b.Bytes())
		return out
	}

	tests := []struct {
		name    string
		data    []byte
		wantErr error
	}{
		{"zero signature", patch(valid24, 0, [2]byte{0x00, 0x00}), ErrInvalidSignature},
		{"swapped signature", patch(valid24, 0, [2]byte{'M', 'B'}), ErrInvalidSignature},
		{"half signature", patch(valid24, 0, [2]byte{'B', 'X'}), ErrInvalidSignature},
		{"16 bits", patch(valid24, 28, uint16(16)), ErrUnsupportedFormat},
		{"32 bits", patch(valid24, 28, uint16(32)), ErrUnsupportedFormat},
		{"1 bit", patch(valid8, 28, uint16(1)), ErrUnsupportedFormat},
		{"rle8", patch(valid8, 30, uint32(1)), ErrUnsupportedFormat},
		{"bitfields", patch(valid24, 30, uint32(3)), ErrUnsupportedFormat},
		{"zero width", patch(valid24, 18, int32(0)), ErrUnsupportedFormat},
		{"negative width", patch(valid24, 18, int32(-2)), ErrUnsupportedFormat},
		{"zero height", patch(valid24, 22, int32(0)), ErrUnsupportedFormat},
		{"offset inside header", patch(valid24, 10, uint32(20)), ErrUnsupportedFormat},
		{"empty", nil, io.ErrUnexpectedEOF},
		{"short header", valid24[:30], io.ErrUnexpectedEOF},
		{"short pixels 24", valid24[:len(valid24)-1], io.ErrUnexpectedEOF},
		{"offset past end", patch(valid24, 10, uint32(4096)), io.ErrUnexpectedEOF},
		{"huge height", patch(valid24, 22, int32(1<<30)), io.ErrUnexpectedEOF},
		{"short color table", valid8[:600], io.ErrUnexpectedEOF},
		{"short pixels 8", valid8[:len(valid8)-2], io.ErrUnexpectedEOF},
		{"size field past end", patch(valid8, 34, uint32(400)), io.ErrUnexpectedEOF},
		{"size field too small", patch(valid8, 34, uint32(2)), io.ErrUnexpectedEOF},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := Decode(tt.data)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, b)
		})
	}
}

func TestShortReadIsIOError(t *testing.T) {
	_, err := Decode([]byte("BM"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "read header", ioErr.Op)
}

func TestEncode24Layout(t *testing.T) {
	buf, err := raster.FromSamples(1, 2, raster.RGB, []byte{1, 2, 3, 4, 5, 6})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, FromRaster(buf)))
	data := out.Bytes()

	// 1 pixel = 3 bytes + 1 padding byte per row
	require.Len(t, data, 54+4*2)
	le := binary.LittleEndian
	assert.Equal(t, []byte("BM"), data[0:2])
	assert.Equal(t, uint32(62), le.Uint32(data[2:]))
	assert.Equal(t, uint32(54), le.Uint32(data[10:]))
	assert.Equal(t, uint32(40), le.Uint32(data[14:]))
	assert.Equal(t, int32(1), int32(le.Uint32(data[18:])))
	assert.Equal(t, int32(2), int32(le.Uint32(data[22:])))
	assert.Equal(t, uint16(1), le.Uint16(data[26:]))
	assert.Equal(t, uint16(24), le.Uint16(data[28:]))
	assert.Equal(t, uint32(0), le.Uint32(data[30:]))
	assert.Equal(t, uint32(8), le.Uint32(data[34:]))
	assert.Equal(t, uint32(2835), le.Uint32(data[38:]))
	assert.Equal(t, uint32(2835), le.Uint32(data[42:]))

	// bottom row first, BGR, zero padded
	assert.Equal(t, []byte{6, 5, 4, 0, 3, 2, 1, 0}, data[54:])
}

func TestRoundTrip24(t *testing.T) {
	for _, width := range []int{1, 2, 3, 4, 5, 7} {
		buf, err := raster.New(width, 3, raster.RGB)
		require.NoError(t, err)
		for i := range buf.Samples {
			buf.Samples[i] = byte(i*37 + width)
		}

		var out bytes.Buffer
		require.NoError(t, Encode(&out, FromRaster(buf)))
		assert.Len(t, out.Bytes(), 54+rowSize(width, 3)*3, "width %d", width)

		got, err := Decode(out.Bytes())
		require.NoError(t, err)
		assert.Equal(t, buf.Info(), got.Raster.Info(), "width %d", width)
		assert.Equal(t, buf.Samples, got.Raster.Samples, "width %d", width)
	}
}

func TestDecodeEncodeDecode24(t *testing.T) {
	rows := [][]byte{{9, 8, 7, 6, 5, 4}, {3, 2, 1, 0, 255, 128}}
	first, err := Decode(build24(t, 2, rows, true))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, first))
	second, err := Decode(out.Bytes())
	require.NoError(t, err)

	assert.Equal(t, first.Raster, second.Raster)
}

func TestEncode8PassthroughIsByteExact(t *testing.T) {
	rows := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}, {9, 10, 11, 12}}
	data := build8(t, 4, rows, 12, 0)

	b, err := Decode(data)
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, b))
	assert.Equal(t, data, out.Bytes())
}

func TestEncode8PassthroughReplacesPaddingWithZeros(t *testing.T) {
	rows := [][]byte{{1, 2, 3}, {4, 5, 6}}
	b, err := Decode(build8(t, 3, rows, 0, 0xFF))
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, b))

	assert.Equal(t, b.Header, out.Bytes()[:54])
	assert.Equal(t, []byte{4, 5, 6, 0, 1, 2, 3, 0}, out.Bytes()[1078:])
}

func TestEncode8SynthesizedUsesGrayTable(t *testing.T) {
	buf, err := raster.FromSamples(2, 1, raster.Gray, []byte{0, 200})
	require.NoError(t, err)

	var out bytes.Buffer
	require.NoError(t, Encode(&out, FromRaster(buf)))
	data := out.Bytes()

	require.Len(t, data, 1078+4)
	le := binary.LittleEndian
	assert.Equal(t, uint32(1078), le.Uint32(data[10:]))
	assert.Equal(t, uint16(8), le.Uint16(data[28:]))
	assert.Equal(t, uint32(4), le.Uint32(data[34:]))
	assert.Equal(t, []byte{0, 0, 0, 0, 1, 1, 1, 0}, data[54:62])
	assert.Equal(t, []byte{255, 255, 255, 0}, data[1074:1078])
	assert.Equal(t, []byte{0, 200, 0, 0}, data[1078:])
}

func TestEncode8RegeneratesHeaderAfterResize(t *testing.T) {
	rows := [][]byte{{1, 2, 3, 4}, {5, 6, 7, 8}}
	b, err := Decode(build8(t, 4, rows, 0, 0))
	require.NoError(t, err)

	cropped, err := raster.FromSamples(2, 1, raster.Gray, []byte{1, 2})
	require.NoError(t, err)
	b.Raster = cropped

	var out bytes.Buffer
	require.NoError(t, Encode(&out, b))
	data := out.Bytes()

	assert.Equal(t, int32(2), int32(binary.LittleEndian.Uint32(data[18:])))
	assert.Equal(t, int32(1), int32(binary.LittleEndian.Uint32(data[22:])))
	assert.Equal(t, b.ColorTable, data[54:1078], "palette is kept")

	again, err := Decode(data)
	require.NoError(t, err)
	assert.Equal(t, []byte{1, 2}, again.Raster.Samples)
}

func TestEncodeEmpty(t *testing.T) {
	buf, err := raster.New(0, 0, raster.RGB)
	require.NoError(t, err)
	assert.ErrorIs(t, Encode(io.Discard, FromRaster(buf)), raster.ErrEmptyBuffer)
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) { return 0, errors.New("disk full") }

func TestEncodeWriteFailure(t *testing.T) {
	b, err := NewBitmap(64, 64, raster.RGB)
	require.NoError(t, err)

	err = Encode(failingWriter{}, b)
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "write", ioErr.Op)
	assert.EqualError(t, ioErr.Err, "disk full")
}

func TestNewBitmapRejectsNonPositive(t *testing.T) {
	_, err := NewBitmap(0, 1, raster.RGB)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewBitmap(1, -1, raster.Gray)
	assert.ErrorIs(t, err, ErrUnsupportedFormat)
	_, err = NewBitmap(1, 1, 2)
	assert.ErrorIs(t, err, raster.ErrShapeMismatch)
}

func TestReadFileAndSave(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "in.bmp")
	data := build24(t, 3, [][]byte{{1, 2, 3, 4, 5, 6, 7, 8, 9}}, false)
	require.NoError(t, os.WriteFile(src, data, 0o644))

	b, err := ReadFile(src)
	require.NoError(t, err)
	assert.Equal(t, src, b.Filename)

	dst := filepath.Join(dir, "out.bmp")
	require.NoError(t, b.Save(dst))
	saved, err := os.ReadFile(dst)
	require.NoError(t, err)

	// The hand-built fixture has no resolution fields; pixels must match.
	assert.Equal(t, data[54:], saved[54:])
}

func TestReadFileMissing(t *testing.T) {
	_, err := ReadFile(filepath.Join(t.TempDir(), "nope.bmp"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "open", ioErr.Op)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestSaveIntoMissingDirectory(t *testing.T) {
	b, err := NewBitmap(1, 1, raster.RGB)
	require.NoError(t, err)
	err = b.Save(filepath.Join(t.TempDir(), "missing", "out.bmp"))
	var ioErr *IOError
	require.True(t, errors.As(err, &ioErr))
	assert.Equal(t, "create", ioErr.Op)
}

func TestCloneIsIndependent(t *testing.T) {
	b, err := Decode(build8(t, 4, [][]byte{{1, 2, 3, 4}}, 0, 0))
	require.NoError(t, err)

	c := b.Clone()
	c.Raster.Samples[0] = 99
	c.Header[0] = 'X'

	assert.Equal(t, byte(1), b.Raster.Samples[0])
	assert.Equal(t, byte('B'), b.Header[0])
}

func TestMeta(t *testing.T) {
	b, err := NewBitmap(5, 2, raster.RGB)
	require.NoError(t, err)
	m := b.Meta()
	assert.Equal(t, 16, m.Stride)
	assert.Equal(t, 1, m.Padding)
	assert.Equal(t, 32, m.ImageSize)
	assert.Equal(t, 54+32, m.FileSize)
	assert.Equal(t, 24, m.BitCount)

	g, err := NewBitmap(5, 2, raster.Gray)
	require.NoError(t, err)
	m = g.Meta()
	assert.Equal(t, 8, m.Stride)
	assert.Equal(t, 3, m.Padding)
	assert.Equal(t, 1078, m.PixelOffset)
	assert.Equal(t, 1078+16, m.FileSize)
}

// The reference decoder must agree with what we write.
func TestEncodeMatchesReferenceDecoder(t *testing.T) {
	rgb, err := raster.New(5, 3, raster.RGB)
	require.NoError(t, err)
	for i := range rgb.Samples {
		rgb.Samples[i] = byte(i * 11)
	}
	gray, err := raster.New(3, 4, raster.Gray)
	require.NoError(t, err)
	for i := range gray.Samples {
		gray.Samples[i] = byte(i * 20)
	}

	for _, buf := range []*raster.Buffer{rgb, gray} {
		var out bytes.Buffer
		require.NoError(t, Encode(&out, FromRaster(buf)))

		img, err := xbmp.Decode(&out)
		require.NoError(t, err)
		require.Equal(t, buf.Bounds(), img.Bounds())

		for y := range buf.Height {
			for x := range buf.Width {
				r, g, b := buf.Pixel(x, y).RGB()
				want := color.RGBA{R: r, G: g, B: b, A: 0xff}
				assert.Equal(t, want, color.RGBAModel.Convert(img.At(x, y)), "pixel %d,%d", x, y)
			}
		}
	}
}

// And we must read what the reference encoder writes.
func TestDecodeReferenceEncoderOutput(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 3, 2))
	for y := range 2 {
		for x := range 3 {
			src.SetRGBA(x, y, color.RGBA{R: uint8(x * 80), G: uint8(y * 100), B: uint8(x + y), A: 0xff})
		}
	}
	graySrc := image.NewGray(image.Rect(0, 0, 5, 2))
	for i := range graySrc.Pix {
		graySrc.Pix[i] = uint8(i * 25)
	}

	for _, img := range []image.Image{src, graySrc} {
		var out bytes.Buffer
		require.NoError(t, xbmp.Encode(&out, img))

		b, err := Decode(out.Bytes())
		require.NoError(t, err)
		for y := range 2 {
			for x := range img.Bounds().Dx() {
				want := color.RGBAModel.Convert(img.At(x, y))
				assert.Equal(t, want, color.RGBAModel.Convert(b.Raster.At(x, y)), "pixel %d,%d", x, y)
			}
		}
	}
}
