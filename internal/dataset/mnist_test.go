package dataset

import (
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// writeMNIST writes tiny 2x2 IDX files using the MNIST file names.
func writeMNIST(t *testing.T, dir string, train, test int, gz bool) {
	t.Helper()
	write := func(name string, data []byte) {
		if gz {
			name += ".gz"
			data = gzipBytes(t, data)
		}
		require.NoError(t, os.WriteFile(filepath.Join(dir, name), data, 0o600))
	}
	pair := func(imageName, labelName string, n int) {
		pixels := make([][]byte, n)
		labels := make([]byte, n)
		for i := range pixels {
			pixels[i] = []byte{byte(i), 255, 0, 51}
			labels[i] = byte(i % NumClasses)
		}
		write(imageName, encodeImages(t, 2, 2, pixels))
		write(labelName, encodeLabels(t, labels))
	}
	pair(TrainImagesFile, TrainLabelsFile, train)
	pair(TestImagesFile, TestLabelsFile, test)
}

func TestLoad(t *testing.T) {
	for _, gz := range []bool{false, true} {
		name := "raw"
		if gz {
			name = "gzip"
		}
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeMNIST(t, dir, 10, 4, gz)

			data, err := Load(dir, Options{ValidationSize: 3})
			require.NoError(t, err)

			train, validation, test := data.Splits()
			assert.Equal(t, 7, train.Len())
			assert.Equal(t, 3, validation.Len())
			assert.Equal(t, 4, test.Len())

			// Validation is the head of the training file, train the rest.
			for i, img := range validation.Images() {
				assert.InDelta(t, float64(i)/255, img[0], 1e-6, "validation %d", i)
				assert.Equal(t, OneHot(i, NumClasses), validation.Labels()[i])
			}
			for i, img := range train.Images() {
				assert.InDelta(t, float64(i+3)/255, img[0], 1e-6, "train %d", i)
				assert.Equal(t, OneHot(i+3, NumClasses), train.Labels()[i])
			}
			assert.InDelta(t, 1.0, train.Images()[0][1], 1e-6)
			assert.InDelta(t, 0.2, train.Images()[0][3], 1e-6)
		})
	}
}

func TestLoadDefaultValidationTooLarge(t *testing.T) {
	dir := t.TempDir()
	writeMNIST(t, dir, 10, 4, false)

	_, err := Load(dir, Options{})
	assert.ErrorIs(t, err, ErrInvalidSplit)

	data, err := Load(dir, Options{ValidationSize: -1})
	require.NoError(t, err)
	assert.Equal(t, 10, data.Train().Len())
	assert.Equal(t, 0, data.Validation().Len())
}

func TestLoadMissingFiles(t *testing.T) {
	_, err := Load(t.TempDir(), Options{})
	assert.True(t, errors.Is(err, fs.ErrNotExist))
}

func TestLoadCountMismatch(t *testing.T) {
	dir := t.TempDir()
	writeMNIST(t, dir, 10, 4, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, TestLabelsFile), encodeLabels(t, []byte{1, 2}), 0o600))

	_, err := Load(dir, Options{ValidationSize: 2})
	assert.ErrorIs(t, err, ErrCountMismatch)
}

func TestLoadVerifyRejectsUnknownArchive(t *testing.T) {
	dir := t.TempDir()
	writeMNIST(t, dir, 10, 4, true)

	_, err := Load(dir, Options{ValidationSize: 2, Verify: true})
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestNormalize(t *testing.T) {
	out := Normalize([]byte{0, 255, 51})
	assert.Equal(t, float32(0), out[0])
	assert.Equal(t, float32(1), out[1])
	assert.InDelta(t, 0.2, out[2], 1e-6)
}

func TestLoadLabelOutOfRange(t *testing.T) {
	dir := t.TempDir()
	writeMNIST(t, dir, 10, 4, false)
	require.NoError(t, os.WriteFile(filepath.Join(dir, TestLabelsFile), encodeLabels(t, []byte{1, 2, 12, 3}), 0o600))

	_, err := Load(dir, Options{ValidationSize: 2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "label out of range")
}
