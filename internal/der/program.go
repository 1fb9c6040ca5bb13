package der

import "fmt"

// Version is the container format's major.minor version (§6.1).
type Version struct {
	Major uint16
	Minor uint16
}

// CurrentVersion is the version this implementation writes.
var CurrentVersion = Version{Major: 1, Minor: 0}

// Trait is an opaque named contract carried in META: a name plus
// pre/postcondition strings the core stores but never interprets (§3.3).
type Trait struct {
	Name           string
	Preconditions  []string
	Postconditions []string
}

// UnknownChunk preserves a chunk tag this implementation does not
// recognize so that Decode(Encode(p)) remains byte-identical even as new
// chunk tags are introduced in later minor versions (§9 open question 2).
type UnknownChunk struct {
	Tag     [4]byte
	Payload []byte
}

// Metadata is the program-level information stored in the META chunk.
type Metadata struct {
	EntryResultID uint32
	Capabilities  CapabilitySet
	Traits        []Trait
	Version       Version
}

// Program is the in-memory graph described in spec.md §3.3: an ordered node
// arena with a result-id index, a constant pool, metadata, and an opaque
// proof chunk. A Program is built by Builder, optionally round-tripped
// through the container codec, then handed to an Executor, which marks it
// started (MarkStarted). Marking only sets a flag that EnsureMutable
// reports; the exported fields are not locked against writes.
type Program struct {
	Metadata      Metadata
	Nodes         []Node
	Constants     ConstantPool
	Proof         []byte
	UnknownChunks []UnknownChunk

	index   map[uint32]int
	started bool
}

// NewProgram returns an empty program with a populated result-id index.
func NewProgram() *Program {
	return &Program{
		Metadata: Metadata{Version: CurrentVersion},
		index:    make(map[uint32]int),
	}
}

// Index returns the node-array position of resultID, or false if unknown.
func (p *Program) Index(resultID uint32) (int, bool) {
	if p.index == nil {
		p.rebuildIndex()
	}
	idx, ok := p.index[resultID]
	return idx, ok
}

// NodeByResultID returns the node identified by resultID.
func (p *Program) NodeByResultID(resultID uint32) (Node, bool) {
	idx, ok := p.Index(resultID)
	if !ok {
		return Node{}, false
	}
	return p.Nodes[idx], true
}

func (p *Program) rebuildIndex() {
	p.index = make(map[uint32]int, len(p.Nodes))
	for i, n := range p.Nodes {
		p.index[n.ResultID] = i
	}
}

// RebuildIndex recomputes the result-id index from p.Nodes. Exported for
// the container package's decoder, which assigns Nodes directly from the
// IMPL chunk before any index exists.
func (p *Program) RebuildIndex() { p.rebuildIndex() }

// setNodes installs a fresh node slice and rebuilds the index. The builder
// and the container decoder do not call it: the builder appends to Nodes
// directly and the decoder assigns Nodes and then calls RebuildIndex.
func (p *Program) setNodes(nodes []Node) {
	p.Nodes = nodes
	p.rebuildIndex()
}

// MarkStarted records that execution has begun. Called by Executor at the
// start of every Execute/ExecuteNode; afterwards EnsureMutable returns
// ErrProgramFinalized. No Builder method or field write checks the flag.
func (p *Program) MarkStarted() { p.started = true }

// Started reports whether execution has begun on this program value.
func (p *Program) Started() bool { return p.started }

// EnsureMutable returns ErrProgramFinalized if execution has already begun.
func (p *Program) EnsureMutable() error {
	if p.started {
		return ErrProgramFinalized
	}
	return nil
}

// Clone returns a deep copy of the program, suitable for running on an
// independent Executor in parallel (§5: "a program may be cloned to run on
// multiple executors in parallel; heap cells are per-executor"). The clone
// is never marked started, regardless of the receiver's state.
func (p *Program) Clone() *Program {
	clone := &Program{
		Metadata:  p.Metadata,
		Nodes:     make([]Node, len(p.Nodes)),
		Constants: *p.Constants.Clone(),
		Proof:     append([]byte(nil), p.Proof...),
	}
	copy(clone.Nodes, p.Nodes)
	clone.Metadata.Traits = append([]Trait(nil), p.Metadata.Traits...)
	clone.UnknownChunks = append([]UnknownChunk(nil), p.UnknownChunks...)
	clone.rebuildIndex()
	return clone
}

// Equal reports structural equality of nodes, constants, metadata, and
// proof bytes — the comparison spec.md §8 property 1 (round-trip identity)
// is defined against.
func (p *Program) Equal(other *Program) bool {
	if other == nil {
		return false
	}
	if p.Metadata.EntryResultID != other.Metadata.EntryResultID ||
		p.Metadata.Capabilities != other.Metadata.Capabilities ||
		p.Metadata.Version != other.Metadata.Version {
		return false
	}
	if len(p.Metadata.Traits) != len(other.Metadata.Traits) {
		return false
	}
	for i, t := range p.Metadata.Traits {
		o := other.Metadata.Traits[i]
		if t.Name != o.Name || !stringsEqual(t.Preconditions, o.Preconditions) || !stringsEqual(t.Postconditions, o.Postconditions) {
			return false
		}
	}
	if len(p.Nodes) != len(other.Nodes) {
		return false
	}
	for i, n := range p.Nodes {
		if n != other.Nodes[i] {
			return false
		}
	}
	if len(p.Constants.All()) != len(other.Constants.All()) {
		return false
	}
	for i, c := range p.Constants.All() {
		if c != other.Constants.All()[i] {
			return false
		}
	}
	if string(p.Proof) != string(other.Proof) {
		return false
	}
	if len(p.UnknownChunks) != len(other.UnknownChunks) {
		return false
	}
	for i, c := range p.UnknownChunks {
		o := other.UnknownChunks[i]
		if c.Tag != o.Tag || string(c.Payload) != string(o.Payload) {
			return false
		}
	}
	return true
}

func stringsEqual(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func (p *Program) String() string {
	return fmt.Sprintf("Program{nodes=%d consts=%d entry=%d caps=%s}",
		len(p.Nodes), p.Constants.Len(), p.Metadata.EntryResultID, p.Metadata.Capabilities)
}
