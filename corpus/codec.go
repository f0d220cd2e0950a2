package corpus

import (
	"bytes"
	"compress/gzip"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"os"

	"github.com/ganarajpr/rgfe-sub000/core"
)

// Header describes the JSON header embedded at the start of an index file.
// Unknown header fields are ignored for forward compatibility.
type Header struct {
	Version   int    `json:"version"`
	Dimension int    `json:"dimension"`
	Source    string `json:"source,omitempty"`
}

// currentVersion is written by Encode.
const currentVersion = 1

// Decode reads a complete index file from r and returns the corpus entries
// together with the decoded header. Any truncation, oversized length prefix
// or trailing garbage yields an error wrapping ErrFormat.
func Decode(r io.Reader) ([]core.CorpusEntry, Header, error) {
	zr, err := gzip.NewReader(r)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	defer zr.Close()

	payload, err := io.ReadAll(zr)
	if err != nil {
		return nil, Header{}, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	cur := &cursor{buf: payload}

	headerBytes, err := cur.lengthPrefixed("header")
	if err != nil {
		return nil, Header{}, err
	}
	var header Header
	if err := json.Unmarshal(headerBytes, &header); err != nil {
		return nil, Header{}, fmt.Errorf("%w: header: %v", ErrFormat, err)
	}

	entryCount, err := cur.uint32("entry count")
	if err != nil {
		return nil, Header{}, err
	}
	// Reserved total-size field; read and discarded.
	if _, err := cur.uint32("total size"); err != nil {
		return nil, Header{}, err
	}

	entries := make([]core.CorpusEntry, 0, entryCount)
	for i := uint32(0); i < entryCount; i++ {
		entry, err := cur.entry(i)
		if err != nil {
			return nil, Header{}, err
		}
		entries = append(entries, entry)
	}

	if cur.remaining() != 0 {
		return nil, Header{}, fmt.Errorf("%w: %d trailing bytes after %d entries",
			ErrFormat, cur.remaining(), entryCount)
	}

	return entries, header, nil
}

// DecodeFile opens and decodes the index file at path.
func DecodeFile(path string) ([]core.CorpusEntry, Header, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, Header{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Encode writes entries to w in the binary index format. The header records
// the embedding dimension observed on the first entry with a non-empty
// embedding, or zero for a corpus without vectors.
func Encode(w io.Writer, entries []core.CorpusEntry) error {
	dimension := 0
	for _, e := range entries {
		if len(e.Embedding) > 0 {
			dimension = len(e.Embedding)
			break
		}
	}

	headerBytes, err := json.Marshal(Header{Version: currentVersion, Dimension: dimension})
	if err != nil {
		return err
	}

	var body bytes.Buffer
	for i := range entries {
		fields := [][]byte{
			[]byte(entries[i].ID),
			[]byte(entries[i].Text),
			[]byte(entries[i].SourceLabel),
			[]byte(entries[i].Reference),
			embeddingBytes(entries[i].Embedding),
		}
		for _, field := range fields {
			if err := writeBytes(&body, field); err != nil {
				return err
			}
		}
	}

	zw := gzip.NewWriter(w)
	var scratch [4]byte

	if err := writeBytes(zw, headerBytes); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(entries)))
	if _, err := zw.Write(scratch[:]); err != nil {
		return err
	}
	binary.LittleEndian.PutUint32(scratch[:], uint32(body.Len()))
	if _, err := zw.Write(scratch[:]); err != nil {
		return err
	}
	if _, err := zw.Write(body.Bytes()); err != nil {
		return err
	}

	return zw.Close()
}

// EncodeFile encodes entries into a new index file at path.
func EncodeFile(path string, entries []core.CorpusEntry) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := Encode(f, entries); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func writeBytes(w io.Writer, b []byte) error {
	var scratch [4]byte
	binary.LittleEndian.PutUint32(scratch[:], uint32(len(b)))
	if _, err := w.Write(scratch[:]); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func embeddingBytes(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[i*4:], math.Float32bits(f))
	}
	return b
}

// cursor walks the decompressed payload keeping strict offset accounting.
type cursor struct {
	buf    []byte
	offset int
}

func (c *cursor) remaining() int {
	return len(c.buf) - c.offset
}

func (c *cursor) uint32(field string) (uint32, error) {
	if c.remaining() < 4 {
		return 0, fmt.Errorf("%w: truncated reading %s at offset %d", ErrFormat, field, c.offset)
	}
	v := binary.LittleEndian.Uint32(c.buf[c.offset:])
	c.offset += 4
	return v, nil
}

func (c *cursor) lengthPrefixed(field string) ([]byte, error) {
	n, err := c.uint32(field)
	if err != nil {
		return nil, err
	}
	if uint32(c.remaining()) < n {
		return nil, fmt.Errorf("%w: %s declares %d bytes but only %d remain",
			ErrFormat, field, n, c.remaining())
	}
	b := c.buf[c.offset : c.offset+int(n)]
	c.offset += int(n)
	return b, nil
}

func (c *cursor) entry(i uint32) (core.CorpusEntry, error) {
	var entry core.CorpusEntry

	id, err := c.lengthPrefixed(fmt.Sprintf("entry %d id", i))
	if err != nil {
		return entry, err
	}
	text, err := c.lengthPrefixed(fmt.Sprintf("entry %d text", i))
	if err != nil {
		return entry, err
	}
	source, err := c.lengthPrefixed(fmt.Sprintf("entry %d source", i))
	if err != nil {
		return entry, err
	}
	ref, err := c.lengthPrefixed(fmt.Sprintf("entry %d reference", i))
	if err != nil {
		return entry, err
	}
	emb, err := c.lengthPrefixed(fmt.Sprintf("entry %d embedding", i))
	if err != nil {
		return entry, err
	}
	if len(emb)%4 != 0 {
		return entry, fmt.Errorf("%w: entry %d embedding length %d is not a multiple of 4",
			ErrFormat, i, len(emb))
	}

	entry.ID = string(id)
	entry.Text = string(text)
	entry.SourceLabel = string(source)
	entry.Reference = string(ref)
	if len(emb) > 0 {
		entry.Embedding = make([]float32, len(emb)/4)
		for j := range entry.Embedding {
			entry.Embedding[j] = math.Float32frombits(binary.LittleEndian.Uint32(emb[j*4:]))
		}
	}

	return entry, nil
}
