package dataset

import (
	"bufio"
	"compress/gzip"
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"
)

// IDX magic numbers.
const (
	imageMagic = 0x00000803 // 2051
	labelMagic = 0x00000801 // 2049
)

// IDXImages is a decoded IDX image file.
type IDXImages struct {
	Rows   int
	Cols   int
	Pixels [][]byte // [count][Rows*Cols], 0-255
}

// DecodeImages reads an IDX image stream.
//
// Layout (big endian):
//
//	magic number: 0x00000803
//	number of images: 4 bytes
//	number of rows: 4 bytes
//	number of cols: 4 bytes
//	pixel data: unsigned bytes
func DecodeImages(r io.Reader) (*IDXImages, error) {
	var header [4]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read image header: %w", err)
	}
	if header[0] != imageMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header[0], imageMagic)
	}

	count, rows, cols := int(header[1]), int(header[2]), int(header[3])
	size := rows * cols
	pixels := make([][]byte, count)
	for i := range pixels {
		pixels[i] = make([]byte, size)
		if _, err := io.ReadFull(r, pixels[i]); err != nil {
			return nil, fmt.Errorf("read image %d: %w", i, err)
		}
	}
	return &IDXImages{Rows: rows, Cols: cols, Pixels: pixels}, nil
}

// DecodeLabels reads an IDX label stream.
//
// Layout (big endian):
//
//	magic number: 0x00000801
//	number of labels: 4 bytes
//	label data: unsigned bytes
func DecodeLabels(r io.Reader) ([]byte, error) {
	var header [2]uint32
	if err := binary.Read(r, binary.BigEndian, &header); err != nil {
		return nil, fmt.Errorf("read label header: %w", err)
	}
	if header[0] != labelMagic {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrInvalidMagic, header[0], labelMagic)
	}

	labels := make([]byte, header[1])
	if _, err := io.ReadFull(r, labels); err != nil {
		return nil, fmt.Errorf("read labels: %w", err)
	}
	return labels, nil
}

// ReadImages decodes an IDX image file, gunzipping it if the name ends
// in ".gz".
func ReadImages(path string) (*IDXImages, error) {
	var images *IDXImages
	err := withIDX(path, func(r io.Reader) (err error) {
		images, err = DecodeImages(r)
		return err
	})
	return images, err
}

// ReadLabels decodes an IDX label file, gunzipping it if the name ends
// in ".gz".
func ReadLabels(path string) ([]byte, error) {
	var labels []byte
	err := withIDX(path, func(r io.Reader) (err error) {
		labels, err = DecodeLabels(r)
		return err
	})
	return labels, err
}

func withIDX(path string, decode func(io.Reader) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	var r io.Reader = bufio.NewReader(f)
	if strings.HasSuffix(path, ".gz") {
		zr, err := gzip.NewReader(r)
		if err != nil {
			return fmt.Errorf("gzip %s: %w", path, err)
		}
		defer zr.Close()
		r = zr
	}

	if err := decode(r); err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}
	return nil
}
