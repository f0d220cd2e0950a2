package embedcache

import (
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/raw"
	"github.com/mus-format/mus-go/varint"
)

// cacheRecord is the value stored per cache key. The original text is kept
// alongside the vector so a hash collision is detected on read instead of
// silently serving the wrong embedding.
type cacheRecord struct {
	Text   string
	Vector []float32
}

// cacheRecordMUS serializes cacheRecord in the MUS format: length-prefixed
// text, then a varint element count followed by raw float32 values.
var cacheRecordMUS = cacheRecordSer{}

type cacheRecordSer struct{}

func (cacheRecordSer) Marshal(r cacheRecord, bs []byte) (n int) {
	n = ord.String.Marshal(r.Text, bs)
	n += varint.Uint64.Marshal(uint64(len(r.Vector)), bs[n:])
	for _, f := range r.Vector {
		n += raw.Float32.Marshal(f, bs[n:])
	}
	return n
}

func (cacheRecordSer) Unmarshal(bs []byte) (r cacheRecord, n int, err error) {
	r.Text, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}

	var count uint64
	var n1 int
	count, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	if count > 0 {
		r.Vector = make([]float32, count)
		for i := range r.Vector {
			r.Vector[i], n1, err = raw.Float32.Unmarshal(bs[n:])
			n += n1
			if err != nil {
				return
			}
		}
	}
	return
}

func (cacheRecordSer) Size(r cacheRecord) (size int) {
	size = ord.String.Size(r.Text)
	size += varint.Uint64.Size(uint64(len(r.Vector)))
	for _, f := range r.Vector {
		size += raw.Float32.Size(f)
	}
	return size
}

func (cacheRecordSer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}

	var count uint64
	var n1 int
	count, n1, err = varint.Uint64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}

	for i := uint64(0); i < count; i++ {
		n1, err = raw.Float32.Skip(bs[n:])
		n += n1
		if err != nil {
			return
		}
	}
	return
}

// marshalCacheRecord serializes a cacheRecord to bytes.
func marshalCacheRecord(r cacheRecord) []byte {
	buf := make([]byte, cacheRecordMUS.Size(r))
	cacheRecordMUS.Marshal(r, buf)
	return buf
}

// unmarshalCacheRecord deserializes a cacheRecord from bytes.
func unmarshalCacheRecord(data []byte) (cacheRecord, error) {
	r, _, err := cacheRecordMUS.Unmarshal(data)
	return r, err
}
