package container

import (
	"testing"

	"github.com/zxdxjtu/der/internal/der"
)

func buildSimpleProgram(t *testing.T) *der.Program {
	t.Helper()
	b := der.NewBuilder()
	ca := b.AddConstant(der.ConstInt(10))
	cb := b.AddConstant(der.ConstInt(20))
	na := b.AddNode(der.OpConstInt, uint32(ca))
	nb := b.AddNode(der.OpConstInt, uint32(cb))
	sum := b.AddNode(der.OpAdd, na, nb)
	if err := b.SetEntry(sum); err != nil {
		t.Fatalf("SetEntry: %v", err)
	}
	b.RequireCapability(der.CapUI)
	b.AddTrait(der.Trait{Name: "deterministic", Preconditions: []string{"none"}, Postconditions: []string{"always"}})

	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}
	return p
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	p := buildSimpleProgram(t)

	encoded, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if !p.Equal(decoded) {
		t.Fatalf("round trip mismatch:\noriginal: %s\ndecoded:  %s", p, decoded)
	}

	reencoded, err := Encode(decoded)
	if err != nil {
		t.Fatalf("re-Encode: %v", err)
	}
	if string(reencoded) != string(encoded) {
		t.Fatalf("Encode(Decode(Encode(p))) != Encode(p)")
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	p := buildSimpleProgram(t)
	encoded, _ := Encode(p)
	corrupt := append([]byte(nil), encoded...)
	corrupt[0] = 'X'

	if _, err := Decode(corrupt); err == nil {
		t.Fatal("Decode with corrupt magic: want error, got nil")
	}
}

func TestDecodeRejectsTruncatedHeader(t *testing.T) {
	if _, err := Decode([]byte{0x44, 0x45, 0x52}); err == nil {
		t.Fatal("Decode on 3-byte input: want error, got nil")
	}
}

func TestDecodeRejectsChunkOutOfBounds(t *testing.T) {
	p := buildSimpleProgram(t)
	encoded, _ := Encode(p)
	truncated := encoded[:len(encoded)-4]

	if _, err := Decode(truncated); err == nil {
		t.Fatal("Decode on truncated payload: want error, got nil")
	}
}

func TestUnknownChunkPreservedAcrossRoundTrip(t *testing.T) {
	p := buildSimpleProgram(t)
	p.UnknownChunks = append(p.UnknownChunks, der.UnknownChunk{
		Tag:     [4]byte{'Z', 'Z', 'Z', 'Z'},
		Payload: []byte{1, 2, 3, 4, 5},
	})

	encoded, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(decoded.UnknownChunks) != 1 {
		t.Fatalf("len(UnknownChunks) = %d, want 1", len(decoded.UnknownChunks))
	}
	got := decoded.UnknownChunks[0]
	if got.Tag != [4]byte{'Z', 'Z', 'Z', 'Z'} || string(got.Payload) != string([]byte{1, 2, 3, 4, 5}) {
		t.Fatalf("UnknownChunks[0] = %+v, want tag ZZZZ payload [1 2 3 4 5]", got)
	}
}

func TestStringConstantRoundTripsMultiByteUTF8(t *testing.T) {
	b := der.NewBuilder()
	c := b.AddConstant(der.ConstString("héllo wörld 日本語"))
	n := b.AddNode(der.OpConstString, uint32(c))
	b.SetEntry(n)
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	encoded, err := Encode(p)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, err := decoded.Constants.Get(0)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Str != "héllo wörld 日本語" {
		t.Fatalf("round-tripped string = %q, want %q", got.Str, "héllo wörld 日本語")
	}
}

func TestProofChunkRoundTrips(t *testing.T) {
	b := der.NewBuilder()
	c := b.AddConstant(der.ConstBool(true))
	n := b.AddNode(der.OpConstBool, uint32(c))
	b.SetEntry(n)
	b.SetProof([]byte("opaque-proof-bytes"))
	p, err := b.Build()
	if err != nil {
		t.Fatalf("Build: %v", err)
	}

	encoded, _ := Encode(p)
	decoded, err := Decode(encoded)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if string(decoded.Proof) != "opaque-proof-bytes" {
		t.Fatalf("decoded.Proof = %q, want %q", decoded.Proof, "opaque-proof-bytes")
	}
}
