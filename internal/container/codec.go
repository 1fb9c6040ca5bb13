// Package container implements the DER binary file format (§4.1): a
// 16-byte header, a chunk directory, and four self-describing chunk
// payloads (META, IMPL, CNST, PROF), encoded/decoded byte-identically.
package container

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/zxdxjtu/der/internal/der"
)

// Magic is the 4-byte file signature "DER!" (§6.1).
var Magic = [4]byte{0x44, 0x45, 0x52, 0x21}

const (
	headerSize    = 16
	dirEntrySize  = 16 // tag(4) + length(4) + offset(8)
	nodeByteWidth = 29 // opcode(2) + flags(2) + result_id(4) + timestamp(8) + arg_count(1) + args(3×4)
)

var (
	tagMeta = [4]byte{'M', 'E', 'T', 'A'}
	tagImpl = [4]byte{'I', 'M', 'P', 'L'}
	tagCnst = [4]byte{'C', 'N', 'S', 'T'}
	tagProf = [4]byte{'P', 'R', 'O', 'F'}
)

type chunkHeader struct {
	tag    [4]byte
	length uint32
	offset uint64
}

// Encode serializes program into the DER binary format (§4.1). Calling
// Encode on the output of Decode for any program this package wrote
// reproduces byte-identical output (§8 property 1).
func Encode(program *der.Program) ([]byte, error) {
	metaPayload, err := encodeMeta(program)
	if err != nil {
		return nil, err
	}
	implPayload := encodeImpl(program)
	cnstPayload := encodeCnst(program)
	profPayload := program.Proof

	type namedChunk struct {
		tag     [4]byte
		payload []byte
	}
	chunks := []namedChunk{
		{tagMeta, metaPayload},
		{tagImpl, implPayload},
		{tagCnst, cnstPayload},
		{tagProf, profPayload},
	}
	for _, u := range program.UnknownChunks {
		chunks = append(chunks, namedChunk{u.Tag, u.Payload})
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(chunks)*dirEntrySize)

	buf.Write(Magic[:])
	writeU16(&buf, program.Metadata.Version.Major)
	writeU16(&buf, program.Metadata.Version.Minor)
	writeU32(&buf, 0) // flags, reserved
	writeU32(&buf, uint32(len(chunks)))

	offset := uint64(headerSize + len(chunks)*dirEntrySize)
	for _, c := range chunks {
		buf.Write(c.tag[:])
		writeU32(&buf, uint32(len(c.payload)))
		writeU64(&buf, offset)
		offset += uint64(len(c.payload))
	}
	for _, c := range chunks {
		buf.Write(c.payload)
	}

	return buf.Bytes(), nil
}

// Decode parses bytes produced by Encode back into a Program. Unrecognized
// chunk tags are preserved verbatim as UnknownChunk entries rather than
// rejected (§9 open question 2, pinned in SPEC_FULL.md §4.1): a forward
// compatible pass-through is the only choice that keeps this
// implementation's own round-trip contract intact once a later minor
// version introduces a new tag.
func Decode(data []byte) (*der.Program, error) {
	if len(data) < headerSize {
		return nil, fmt.Errorf("%w: file shorter than header", der.ErrTruncatedNode)
	}
	if !bytes.Equal(data[0:4], Magic[:]) {
		return nil, fmt.Errorf("%w: got %x", der.ErrBadMagic, data[0:4])
	}
	major := readU16(data[4:6])
	minor := readU16(data[6:8])
	if major != der.CurrentVersion.Major {
		return nil, fmt.Errorf("%w: %d.%d", der.ErrUnsupportedVersion, major, minor)
	}
	chunkCount := readU32(data[12:16])

	dirEnd := headerSize + int(chunkCount)*dirEntrySize
	if dirEnd > len(data) {
		return nil, fmt.Errorf("%w: chunk directory truncated", der.ErrChunkOutOfBounds)
	}

	headers := make([]chunkHeader, chunkCount)
	for i := 0; i < int(chunkCount); i++ {
		entry := data[headerSize+i*dirEntrySize : headerSize+(i+1)*dirEntrySize]
		var tag [4]byte
		copy(tag[:], entry[0:4])
		headers[i] = chunkHeader{
			tag:    tag,
			length: readU32(entry[4:8]),
			offset: readU64(entry[8:16]),
		}
	}

	p := der.NewProgram()
	p.Metadata.Version = der.Version{Major: major, Minor: minor}

	var sawMeta, sawImpl, sawCnst bool
	for _, h := range headers {
		start := int(h.offset)
		end := start + int(h.length)
		if start < 0 || end > len(data) || end < start {
			return nil, fmt.Errorf("%w: chunk %q at %d..%d", der.ErrChunkOutOfBounds, h.tag, start, end)
		}
		payload := data[start:end]

		switch h.tag {
		case tagMeta:
			if err := decodeMeta(p, payload); err != nil {
				return nil, err
			}
			sawMeta = true
		case tagImpl:
			nodes, err := decodeImpl(payload)
			if err != nil {
				return nil, err
			}
			p.Nodes = nodes
			sawImpl = true
		case tagCnst:
			if err := decodeCnst(p, payload); err != nil {
				return nil, err
			}
			sawCnst = true
		case tagProf:
			p.Proof = append([]byte(nil), payload...)
		default:
			p.UnknownChunks = append(p.UnknownChunks, der.UnknownChunk{
				Tag:     h.tag,
				Payload: append([]byte(nil), payload...),
			})
		}
	}
	if !sawMeta || !sawImpl || !sawCnst {
		return nil, fmt.Errorf("%w: missing required chunk (META=%t IMPL=%t CNST=%t)", der.ErrChunkOutOfBounds, sawMeta, sawImpl, sawCnst)
	}

	p.RebuildIndex()
	if err := der.Validate(p); err != nil {
		return nil, err
	}
	return p, nil
}

func writeU16(buf *bytes.Buffer, v uint16) {
	var b [2]byte
	binary.LittleEndian.PutUint16(b[:], v)
	buf.Write(b[:])
}

func writeU32(buf *bytes.Buffer, v uint32) {
	var b [4]byte
	binary.LittleEndian.PutUint32(b[:], v)
	buf.Write(b[:])
}

func writeU64(buf *bytes.Buffer, v uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], v)
	buf.Write(b[:])
}

func readU16(b []byte) uint16 { return binary.LittleEndian.Uint16(b) }
func readU32(b []byte) uint32 { return binary.LittleEndian.Uint32(b) }
func readU64(b []byte) uint64 { return binary.LittleEndian.Uint64(b) }
