package der

import "fmt"

// Builder constructs a Program in memory: interning constants, appending
// nodes with freshly assigned result ids, and declaring the entry point
// (§4.2). Result ids are assigned 1, 2, 3, … in builder order; 0 is
// reserved "none".
type Builder struct {
	program *Program
	nextID  uint32
	clock   uint64
}

// NewBuilder returns an empty builder.
func NewBuilder() *Builder {
	return &Builder{
		program: NewProgram(),
		nextID:  1,
	}
}

// AddConstant interns value into the pool, returning its stable index.
func (b *Builder) AddConstant(value Constant) int {
	return b.program.Constants.Add(value)
}

// AddNode appends a node with the given opcode and up to three arguments,
// assigning it a fresh monotone result id and the builder's logical clock
// as its timestamp. It panics if more than MaxArgs arguments are given —
// that is a caller bug, not a recoverable runtime condition.
func (b *Builder) AddNode(op OpCode, args ...uint32) uint32 {
	if len(args) > MaxArgs {
		panic(fmt.Sprintf("der: AddNode(%s): %d args exceeds MaxArgs", op, len(args)))
	}
	n := Node{
		Opcode:    op,
		ResultID:  b.nextID,
		Timestamp: b.clock,
		ArgCount:  uint8(len(args)),
	}
	copy(n.Args[:], args)
	b.program.Nodes = append(b.program.Nodes, n)
	b.nextID++
	b.clock++
	return n.ResultID
}

// SetFlag ORs flag into the Flags of the node identified by resultID. It is
// a no-op if no node with that result id has been added.
func (b *Builder) SetFlag(resultID uint32, flag NodeFlag) {
	for i := range b.program.Nodes {
		if b.program.Nodes[i].ResultID == resultID {
			b.program.Nodes[i].Flags |= flag
			return
		}
	}
}

// SetEntry declares the program's entry node. Fails if resultID has not
// been produced by a prior AddNode call.
func (b *Builder) SetEntry(resultID uint32) error {
	if _, ok := b.findNode(resultID); !ok {
		return fmt.Errorf("der: SetEntry: %w: %d", ErrUnknownEntry, resultID)
	}
	b.program.Metadata.EntryResultID = resultID
	return nil
}

// RequireCapability adds cap to the program's declared capability set.
func (b *Builder) RequireCapability(cap CapabilitySet) {
	b.program.Metadata.Capabilities = b.program.Metadata.Capabilities.With(cap)
}

// AddTrait appends an opaque named trait to the program's metadata.
func (b *Builder) AddTrait(t Trait) {
	b.program.Metadata.Traits = append(b.program.Metadata.Traits, t)
}

// SetProof attaches an opaque proof chunk, preserved verbatim across
// round-trip and never interpreted by this implementation.
func (b *Builder) SetProof(proof []byte) {
	b.program.Proof = append([]byte(nil), proof...)
}

func (b *Builder) findNode(resultID uint32) (Node, bool) {
	for _, n := range b.program.Nodes {
		if n.ResultID == resultID {
			return n, true
		}
	}
	return Node{}, false
}

// Validate runs the DAG, reference-resolution, and shallow-arity checks
// against the builder's current state without mutating it. Deterministic
// and idempotent.
func (b *Builder) Validate() error {
	snapshot := &Program{
		Metadata:  b.program.Metadata,
		Nodes:     append([]Node(nil), b.program.Nodes...),
		Constants: *b.program.Constants.Clone(),
		Proof:     b.program.Proof,
	}
	snapshot.rebuildIndex()
	return Validate(snapshot)
}

// Build validates the builder's state and returns the finished Program. The
// returned Program is an independent copy; further Builder calls do not
// affect it.
func (b *Builder) Build() (*Program, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	p := &Program{
		Metadata:  b.program.Metadata,
		Nodes:     append([]Node(nil), b.program.Nodes...),
		Constants: *b.program.Constants.Clone(),
		Proof:     append([]byte(nil), b.program.Proof...),
	}
	p.Metadata.Traits = append([]Trait(nil), b.program.Metadata.Traits...)
	p.rebuildIndex()
	return p, nil
}
