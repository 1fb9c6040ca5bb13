package container

import (
	"bytes"
	"fmt"
	"math"

	"github.com/zxdxjtu/der/internal/der"
)

// Constant-kind byte values on disk (§4.1): 0=Int, 1=Float, 2=String, 3=Bool.
const (
	kindInt    = 0
	kindFloat  = 1
	kindString = 2
	kindBool   = 3
)

// encodeCnst writes the CNST chunk payload: entry_count (4), then records
// {kind (1), length (4), bytes} (§4.1).
func encodeCnst(p *der.Program) []byte {
	entries := p.Constants.All()
	var buf bytes.Buffer
	writeU32(&buf, uint32(len(entries)))
	for _, c := range entries {
		encodeConstant(&buf, c)
	}
	return buf.Bytes()
}

func encodeConstant(buf *bytes.Buffer, c der.Constant) {
	switch c.Kind {
	case der.ConstKindInt:
		buf.WriteByte(kindInt)
		writeU32(buf, 8)
		writeU64(buf, uint64(c.Int))
	case der.ConstKindFloat:
		buf.WriteByte(kindFloat)
		writeU32(buf, 8)
		writeU64(buf, math.Float64bits(c.Flt))
	case der.ConstKindString:
		buf.WriteByte(kindString)
		writeU32(buf, uint32(len(c.Str)))
		buf.WriteString(c.Str)
	case der.ConstKindBool:
		buf.WriteByte(kindBool)
		writeU32(buf, 1)
		if c.Bool {
			buf.WriteByte(1)
		} else {
			buf.WriteByte(0)
		}
	}
}

func decodeCnst(p *der.Program, payload []byte) error {
	r := newReader(payload)
	count, err := r.u32()
	if err != nil {
		return wrapCnst(err)
	}
	for i := uint32(0); i < count; i++ {
		c, err := decodeConstant(r)
		if err != nil {
			return wrapCnst(err)
		}
		p.Constants.Add(c)
	}
	return nil
}

func decodeConstant(r *reader) (der.Constant, error) {
	kind, err := r.u8()
	if err != nil {
		return der.Constant{}, err
	}
	length, err := r.u32()
	if err != nil {
		return der.Constant{}, err
	}
	raw, err := r.bytes(int(length))
	if err != nil {
		return der.Constant{}, err
	}
	switch kind {
	case kindInt:
		if len(raw) != 8 {
			return der.Constant{}, fmt.Errorf("%w: Int constant length %d", der.ErrBadConstantKind, len(raw))
		}
		return der.ConstInt(int64(readU64(raw))), nil
	case kindFloat:
		if len(raw) != 8 {
			return der.Constant{}, fmt.Errorf("%w: Float constant length %d", der.ErrBadConstantKind, len(raw))
		}
		return der.ConstFloat(math.Float64frombits(readU64(raw))), nil
	case kindString:
		return der.ConstString(string(raw)), nil
	case kindBool:
		if len(raw) != 1 {
			return der.Constant{}, fmt.Errorf("%w: Bool constant length %d", der.ErrBadConstantKind, len(raw))
		}
		return der.ConstBool(raw[0] != 0), nil
	default:
		return der.Constant{}, fmt.Errorf("%w: kind byte %d", der.ErrBadConstantKind, kind)
	}
}

func wrapCnst(err error) error {
	return fmt.Errorf("%w: CNST chunk: %v", der.ErrTruncatedNode, err)
}
