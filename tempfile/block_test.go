package tempfile

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBlockFrames(t *testing.T) {
	var sink bytes.Buffer
	w := newBlockWriter(&sink, 10, CompressionNone)

	_, err := w.Write([]byte("0123456789abcdefghij-"))
	require.NoError(t, err)
	s, err := w.next()
	require.NoError(t, err)

	assert.Equal(t, Section{Offset: 0, Length: 3*HeaderSize + 21, Blocks: 3, RawBytes: 21}, s)
	assert.Equal(t, int64(sink.Len()), s.Length)

	got, err := io.ReadAll(&blockReader{src: bytes.NewReader(sink.Bytes())})
	require.NoError(t, err)
	assert.Equal(t, "0123456789abcdefghij-", string(got))
}

func TestBlockReaderCorrupt(t *testing.T) {
	frame, err := encodeBlock(CompressionNone, []byte("payload"))
	require.NoError(t, err)

	_, err = io.ReadAll(&blockReader{src: bytes.NewReader(frame[:HeaderSize+3])})
	assert.ErrorIs(t, err, io.ErrUnexpectedEOF)

	frame[0] = 0x55
	_, err = io.ReadAll(&blockReader{src: bytes.NewReader(frame)})
	assert.ErrorContains(t, err, "unknown block method")
}

func TestIncompressibleBlockStoredPlain(t *testing.T) {
	raw := []byte{0x01, 0x9f, 0x33, 0x70}
	frame, err := encodeBlock(CompressionLZ4, raw)
	require.NoError(t, err)
	assert.Equal(t, methodNone, frame[0])
	assert.Equal(t, raw, frame[HeaderSize:])
}
