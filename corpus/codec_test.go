package corpus

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"errors"
	"io"
	"path/filepath"
	"testing"

	"github.com/ganarajpr/rgfe-sub000/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleEntries() []core.CorpusEntry {
	return []core.CorpusEntry{
		{
			ID:          "rv-10-129-1",
			Text:        "nāsad āsīn no sad āsīt tadānīṃ",
			SourceLabel: "rigveda",
			Reference:   "10.129.1",
			Embedding:   []float32{0.1, -0.2, 0.3, 0.4},
		},
		{
			ID:          "rv-10-129-2",
			Text:        "na mṛtyur āsīd amṛtaṃ na tarhi",
			SourceLabel: "rigveda",
			Reference:   "10.129.2",
			Embedding:   []float32{0.5, 0.6, -0.7, 0.8},
		},
	}
}

func roundTrip(t *testing.T, entries []core.CorpusEntry) []core.CorpusEntry {
	t.Helper()

	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, entries))

	decoded, header, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, currentVersion, header.Version)
	return decoded
}

func TestRoundTrip(t *testing.T) {
	entries := sampleEntries()
	decoded := roundTrip(t, entries)
	assert.Equal(t, entries, decoded)
}

func TestRoundTrip_EmptyCorpus(t *testing.T) {
	decoded := roundTrip(t, []core.CorpusEntry{})
	assert.Empty(t, decoded)
}

func TestRoundTrip_EmptyFields(t *testing.T) {
	entries := []core.CorpusEntry{
		{ID: "rv-stub", Text: "", SourceLabel: "", Reference: "1.1.1", Embedding: nil},
	}
	decoded := roundTrip(t, entries)
	require.Len(t, decoded, 1)
	assert.Equal(t, entries[0], decoded[0])
}

func TestDecode_HeaderDimension(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleEntries()))

	_, header, err := Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 4, header.Dimension)
}

func TestDecode_NotGzip(t *testing.T) {
	_, _, err := Decode(bytes.NewReader([]byte("not a gzip stream")))
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecode_TruncatedPayload(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, sampleEntries()))

	// Re-compress a truncated copy of the payload so the gzip layer is intact
	// but the entry section is cut short.
	zr, err := gzip.NewReader(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	payload, err := io.ReadAll(zr)
	require.NoError(t, err)

	var truncated bytes.Buffer
	zw := gzip.NewWriter(&truncated)
	_, err = zw.Write(payload[:len(payload)-10])
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, err = Decode(&truncated)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecode_TrailingBytes(t *testing.T) {
	var payload bytes.Buffer

	header := []byte(`{"version":1,"dimension":0}`)
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(header)))
	payload.Write(scratch[:])
	payload.Write(header)
	binary.LittleEndian.PutUint32(scratch[:], 0) // entryCount
	payload.Write(scratch[:])
	payload.Write(scratch[:]) // totalSize
	payload.WriteString("garbage")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(payload.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, err = Decode(&buf)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrFormat)
	assert.Contains(t, err.Error(), "trailing")
}

func TestDecode_LengthExceedsBuffer(t *testing.T) {
	var payload bytes.Buffer

	header := []byte(`{"version":1,"dimension":0}`)
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(header)))
	payload.Write(scratch[:])
	payload.Write(header)
	binary.LittleEndian.PutUint32(scratch[:], 1) // one entry
	payload.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], 0) // totalSize
	payload.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], 5000) // id length far beyond buffer
	payload.Write(scratch[:])
	payload.WriteString("id")

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(payload.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrFormat)
}

func TestDecode_EmbeddingNotMultipleOfFour(t *testing.T) {
	var payload bytes.Buffer
	var scratch [4]byte

	header := []byte(`{"version":1,"dimension":0}`)
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(header)))
	payload.Write(scratch[:])
	payload.Write(header)
	binary.LittleEndian.PutUint32(scratch[:], 1)
	payload.Write(scratch[:])
	binary.LittleEndian.PutUint32(scratch[:], 0)
	payload.Write(scratch[:])

	writeField := func(b []byte) {
		binary.LittleEndian.PutUint32(scratch[:], uint32(len(b)))
		payload.Write(scratch[:])
		payload.Write(b)
	}
	writeField([]byte("rv-1"))
	writeField([]byte("text"))
	writeField([]byte("rigveda"))
	writeField([]byte("1.1.1"))
	writeField([]byte{1, 2, 3}) // 3 bytes: not a whole float32

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write(payload.Bytes())
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	_, _, err = Decode(&buf)
	assert.ErrorIs(t, err, ErrFormat)
}

// failingWriter rejects every write.
type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestEncode_WriterError(t *testing.T) {
	err := Encode(failingWriter{}, sampleEntries())
	assert.Error(t, err)
}

func TestWriteBytes_PropagatesError(t *testing.T) {
	assert.Error(t, writeBytes(failingWriter{}, []byte("payload")))

	var buf bytes.Buffer
	require.NoError(t, writeBytes(&buf, []byte("payload")))
	assert.Equal(t, 4+len("payload"), buf.Len())
}

func TestEncodeDecodeFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corpus.idx")
	entries := sampleEntries()

	require.NoError(t, EncodeFile(path, entries))

	decoded, header, err := DecodeFile(path)
	require.NoError(t, err)
	assert.Equal(t, entries, decoded)
	assert.Equal(t, 4, header.Dimension)
}

func TestDecodeFile_Missing(t *testing.T) {
	_, _, err := DecodeFile(filepath.Join(t.TempDir(), "nope.idx"))
	assert.Error(t, err)
}
