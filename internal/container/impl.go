package container

import (
	"bytes"
	"fmt"

	"github.com/zxdxjtu/der/internal/der"
)

// encodeImpl writes the IMPL chunk payload: node_count (4), then
// node_count 29-byte node records holding every §3.1 field (§4.1).
func encodeImpl(p *der.Program) []byte {
	var buf bytes.Buffer
	buf.Grow(4 + len(p.Nodes)*nodeByteWidth)
	writeU32(&buf, uint32(len(p.Nodes)))
	for _, n := range p.Nodes {
		encodeNode(&buf, n)
	}
	return buf.Bytes()
}

func encodeNode(buf *bytes.Buffer, n der.Node) {
	writeU16(buf, uint16(n.Opcode))
	writeU16(buf, uint16(n.Flags))
	writeU32(buf, n.ResultID)
	writeU64(buf, n.Timestamp)
	buf.WriteByte(n.ArgCount)
	for _, a := range n.Args {
		writeU32(buf, a)
	}
}

func decodeImpl(payload []byte) ([]der.Node, error) {
	r := newReader(payload)
	count, err := r.u32()
	if err != nil {
		return nil, fmt.Errorf("%w: IMPL chunk: %v", der.ErrTruncatedNode, err)
	}
	nodes := make([]der.Node, count)
	for i := range nodes {
		n, err := decodeNode(r)
		if err != nil {
			return nil, fmt.Errorf("%w: IMPL chunk node %d: %v", der.ErrTruncatedNode, i, err)
		}
		nodes[i] = n
	}
	return nodes, nil
}

func decodeNode(r *reader) (der.Node, error) {
	opcode, err := r.u16()
	if err != nil {
		return der.Node{}, err
	}
	flags, err := r.u16()
	if err != nil {
		return der.Node{}, err
	}
	resultID, err := r.u32()
	if err != nil {
		return der.Node{}, err
	}
	timestamp, err := r.u64()
	if err != nil {
		return der.Node{}, err
	}
	argCount, err := r.u8()
	if err != nil {
		return der.Node{}, err
	}
	var args [der.MaxArgs]uint32
	for i := range args {
		v, err := r.u32()
		if err != nil {
			return der.Node{}, err
		}
		args[i] = v
	}
	return der.Node{
		Opcode:    der.OpCode(opcode),
		Flags:     der.NodeFlag(flags),
		ResultID:  resultID,
		Timestamp: timestamp,
		ArgCount:  argCount,
		Args:      args,
	}, nil
}
