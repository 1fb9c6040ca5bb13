package container

import (
	"bytes"
	"fmt"

	"github.com/zxdxjtu/der/internal/der"
)

// encodeMeta writes the META chunk payload: entry_result_id (4),
// capability bitset (4), trait_count (4), then per-trait
// {name_len, name_bytes, pre_count, [pre_strings], post_count,
// [post_strings]} (§4.1).
func encodeMeta(p *der.Program) ([]byte, error) {
	var buf bytes.Buffer
	writeU32(&buf, p.Metadata.EntryResultID)
	writeU32(&buf, uint32(p.Metadata.Capabilities))
	writeU32(&buf, uint32(len(p.Metadata.Traits)))
	for _, t := range p.Metadata.Traits {
		writeString(&buf, t.Name)
		writeU32(&buf, uint32(len(t.Preconditions)))
		for _, s := range t.Preconditions {
			writeString(&buf, s)
		}
		writeU32(&buf, uint32(len(t.Postconditions)))
		for _, s := range t.Postconditions {
			writeString(&buf, s)
		}
	}
	return buf.Bytes(), nil
}

func decodeMeta(p *der.Program, payload []byte) error {
	r := newReader(payload)
	entry, err := r.u32()
	if err != nil {
		return wrapMeta(err)
	}
	caps, err := r.u32()
	if err != nil {
		return wrapMeta(err)
	}
	traitCount, err := r.u32()
	if err != nil {
		return wrapMeta(err)
	}

	traits := make([]der.Trait, 0, traitCount)
	for i := uint32(0); i < traitCount; i++ {
		name, err := r.str()
		if err != nil {
			return wrapMeta(err)
		}
		preCount, err := r.u32()
		if err != nil {
			return wrapMeta(err)
		}
		pre := make([]string, preCount)
		for j := range pre {
			if pre[j], err = r.str(); err != nil {
				return wrapMeta(err)
			}
		}
		postCount, err := r.u32()
		if err != nil {
			return wrapMeta(err)
		}
		post := make([]string, postCount)
		for j := range post {
			if post[j], err = r.str(); err != nil {
				return wrapMeta(err)
			}
		}
		traits = append(traits, der.Trait{Name: name, Preconditions: pre, Postconditions: post})
	}

	p.Metadata.EntryResultID = entry
	p.Metadata.Capabilities = der.CapabilitySet(caps)
	p.Metadata.Traits = traits
	return nil
}

func wrapMeta(err error) error {
	return fmt.Errorf("%w: META chunk: %v", der.ErrChunkOutOfBounds, err)
}

func writeString(buf *bytes.Buffer, s string) {
	writeU32(buf, uint32(len(s)))
	buf.WriteString(s)
}

// reader is a small bounds-checked cursor over a chunk payload, grounded
// on the teacher's ReadInt/ReadNum/ReadStr helpers (util.go) but operating
// on a plain []byte slice with an explicit bounds check per read instead
// of scanning a []OpCode tape for a NUL terminator.
type reader struct {
	data []byte
	pos  int
}

func newReader(data []byte) *reader { return &reader{data: data} }

func (r *reader) need(n int) error {
	if r.pos+n > len(r.data) {
		return fmt.Errorf("truncated at offset %d, need %d more bytes", r.pos, n)
	}
	return nil
}

func (r *reader) u8() (uint8, error) {
	if err := r.need(1); err != nil {
		return 0, err
	}
	v := r.data[r.pos]
	r.pos++
	return v, nil
}

func (r *reader) u16() (uint16, error) {
	if err := r.need(2); err != nil {
		return 0, err
	}
	v := readU16(r.data[r.pos : r.pos+2])
	r.pos += 2
	return v, nil
}

func (r *reader) u32() (uint32, error) {
	if err := r.need(4); err != nil {
		return 0, err
	}
	v := readU32(r.data[r.pos : r.pos+4])
	r.pos += 4
	return v, nil
}

func (r *reader) u64() (uint64, error) {
	if err := r.need(8); err != nil {
		return 0, err
	}
	v := readU64(r.data[r.pos : r.pos+8])
	r.pos += 8
	return v, nil
}

func (r *reader) bytes(n int) ([]byte, error) {
	if err := r.need(n); err != nil {
		return nil, err
	}
	v := r.data[r.pos : r.pos+n]
	r.pos += n
	return v, nil
}

func (r *reader) str() (string, error) {
	n, err := r.u32()
	if err != nil {
		return "", err
	}
	b, err := r.bytes(int(n))
	if err != nil {
		return "", err
	}
	return string(b), nil
}
