package tempfile_test

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ufinke/cubaja-sub001/tempfile"
)

func TestSingleTempFile(t *testing.T) {
	line := "The quick brown fox jumps over the lazy dog"
	tempWriter, err := tempfile.New(t.TempDir(), tempfile.Options{})
	require.NoError(t, err)

	n, err := tempWriter.WriteString(line)
	require.NoError(t, err)
	require.Equal(t, len(line), n)
	require.Equal(t, 1, tempWriter.Size())

	name := tempWriter.Name()
	assert.True(t, strings.HasPrefix(filepath.Base(name), tempfile.DefaultPrefix))

	tempReader, err := tempWriter.Save()
	require.NoError(t, err)
	require.Equal(t, 1, tempReader.Size())

	got, err := io.ReadAll(tempReader.Read(0))
	require.NoError(t, err)
	require.Equal(t, line, string(got))

	require.NoError(t, tempReader.Close())
	_, err = os.Stat(name)
	require.True(t, os.IsNotExist(err), "temp file exists after closing")
}

func TestTempFileRepeat(t *testing.T) {
	for _, c := range []tempfile.Compression{tempfile.CompressionNone, tempfile.CompressionLZ4} {
		t.Run(c.String(), func(t *testing.T) {
			iterations := 10
			line := "The quick brown fox jumps over the lazy dog"
			// blocks far smaller than a section force sections across many blocks
			tempWriter, err := tempfile.New(t.TempDir(), tempfile.Options{BlockSize: 64, Compression: c})
			require.NoError(t, err)

			for i := 0; i < iterations; i++ {
				for j := 0; j < 20; j++ {
					_, err := fmt.Fprintf(tempWriter, "%d: %s\n", i, line)
					require.NoError(t, err)
				}
				require.Equal(t, i+1, tempWriter.Size())
				section, err := tempWriter.Next()
				require.NoError(t, err)
				assert.Greater(t, section.Blocks, 1)
			}
			stats := tempWriter.Stats()
			assert.Equal(t, iterations, stats.Sections)

			name := tempWriter.Name()
			tempReader, err := tempWriter.Save()
			require.NoError(t, err)

			_, err = os.Stat(name)
			require.False(t, os.IsNotExist(err), "temp file does not exist for reading")
			require.Equal(t, iterations, tempReader.Size())

			for i := iterations - 1; i >= 0; i-- {
				got, err := io.ReadAll(tempReader.Read(i))
				require.NoError(t, err)
				expected := strings.Repeat(fmt.Sprintf("%d: %s\n", i, line), 20)
				require.Equal(t, expected, string(got))
			}
			require.NoError(t, tempReader.Close())
			_, err = os.Stat(name)
			require.True(t, os.IsNotExist(err), "temp file exists after closing")
		})
	}
}

func TestCompressionShrinksRepetitiveData(t *testing.T) {
	payload := bytes.Repeat([]byte("abcdefgh"), 4096)

	plain := tempfile.Mock(0, tempfile.Options{BlockSize: 4096})
	packed := tempfile.Mock(0, tempfile.Options{BlockSize: 4096, Compression: tempfile.CompressionLZ4})
	for _, w := range []tempfile.TempWriter{plain, packed} {
		_, err := w.Write(payload)
		require.NoError(t, err)
		_, err = w.Next()
		require.NoError(t, err)
	}
	assert.Equal(t, int64(len(payload)), plain.Stats().RawBytes)
	assert.Equal(t, plain.Stats().RawBytes, packed.Stats().RawBytes)
	assert.Less(t, packed.Stats().StoredBytes, plain.Stats().StoredBytes)

	r, err := packed.Save()
	require.NoError(t, err)
	got, err := io.ReadAll(r.Read(0))
	require.NoError(t, err)
	assert.Equal(t, payload, got)
	require.NoError(t, r.Close())
}

func TestMockSections(t *testing.T) {
	w := tempfile.Mock(128, tempfile.Options{BlockSize: 7})
	require.Equal(t, 0, w.Size())
	for _, s := range []string{"first", "second section", "third"} {
		_, err := w.WriteString(s)
		require.NoError(t, err)
		_, err = w.Next()
		require.NoError(t, err)
	}
	r, err := w.Save()
	require.NoError(t, err)
	require.Equal(t, 3, r.Size())

	got, err := io.ReadAll(r.Read(1))
	require.NoError(t, err)
	assert.Equal(t, "second section", string(got))

	assert.Panics(t, func() { r.Read(3) })
	require.NoError(t, r.Close())
}

func TestSaveWithoutData(t *testing.T) {
	w := tempfile.Mock(0, tempfile.Options{})
	r, err := w.Save()
	require.NoError(t, err)
	require.Equal(t, 1, r.Size())
	got, err := io.ReadAll(r.Read(0))
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestWriterAbort(t *testing.T) {
	w, err := tempfile.New(t.TempDir(), tempfile.Options{})
	require.NoError(t, err)
	_, err = w.WriteString("abandoned")
	require.NoError(t, err)

	name := w.Name()
	require.NoError(t, w.Close())
	_, err = os.Stat(name)
	assert.True(t, os.IsNotExist(err))
	// a second close is harmless
	assert.NoError(t, w.Close())
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := tempfile.New(filepath.Join(t.TempDir(), "missing"), tempfile.Options{})
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}
