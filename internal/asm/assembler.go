package asm

import (
	"fmt"
	"strconv"

	"github.com/zxdxjtu/der/internal/der"
)

// Assemble parses .dasm source and builds a validated der.Program through
// der.Builder — the only producer surface this repo ships that exercises
// the builder API from a human-writable file rather than Go test code.
func Assemble(source string) (*der.Program, error) {
	file, err := Parse(source)
	if err != nil {
		return nil, fmt.Errorf("asm: parse: %w", err)
	}

	b := der.NewBuilder()
	constNames := make(map[string]int)
	nodeNames := make(map[string]uint32)
	var entry *EntryDecl

	for _, d := range file.Decls {
		switch {
		case d.Cap != nil:
			capSet, ok := der.CapabilityByName(d.Cap.Name)
			if !ok {
				return nil, fmt.Errorf("asm: unknown capability %q", d.Cap.Name)
			}
			b.RequireCapability(capSet)

		case d.Const != nil:
			c, err := constantFrom(d.Const)
			if err != nil {
				return nil, fmt.Errorf("asm: const %s: %w", d.Const.Name, err)
			}
			if _, dup := constNames[d.Const.Name]; dup {
				return nil, fmt.Errorf("asm: const %s declared twice", d.Const.Name)
			}
			constNames[d.Const.Name] = b.AddConstant(c)

		case d.Node != nil:
			op, ok := der.OpCodeByName(d.Node.Op)
			if !ok {
				return nil, fmt.Errorf("asm: node %s: unknown opcode %q", d.Node.Name, d.Node.Op)
			}
			if _, dup := nodeNames[d.Node.Name]; dup {
				return nil, fmt.Errorf("asm: node %s declared twice", d.Node.Name)
			}
			args, err := resolveArgs(op, d.Node.Args, constNames, nodeNames)
			if err != nil {
				return nil, fmt.Errorf("asm: node %s: %w", d.Node.Name, err)
			}
			nodeNames[d.Node.Name] = b.AddNode(op, args...)

		case d.Entry != nil:
			entry = d.Entry

		default:
			return nil, fmt.Errorf("asm: empty declaration")
		}
	}

	if entry != nil {
		id, ok := nodeNames[entry.Name]
		if !ok {
			return nil, fmt.Errorf("asm: entry %s: undeclared node", entry.Name)
		}
		if err := b.SetEntry(id); err != nil {
			return nil, fmt.Errorf("asm: %w", err)
		}
	}

	return b.Build()
}

func constantFrom(c *ConstDecl) (der.Constant, error) {
	switch c.Kind {
	case "int":
		if c.Int == nil {
			return der.Constant{}, fmt.Errorf("int constant needs an integer literal")
		}
		return der.ConstInt(*c.Int), nil
	case "float":
		switch {
		case c.Float != nil:
			return der.ConstFloat(*c.Float), nil
		case c.Int != nil:
			return der.ConstFloat(float64(*c.Int)), nil
		default:
			return der.Constant{}, fmt.Errorf("float constant needs a numeric literal")
		}
	case "string":
		if c.Str == nil {
			return der.Constant{}, fmt.Errorf("string constant needs a string literal")
		}
		return der.ConstString(*c.Str), nil
	case "bool":
		if c.Bool == nil {
			return der.Constant{}, fmt.Errorf("bool constant needs true or false")
		}
		switch *c.Bool {
		case "true":
			return der.ConstBool(true), nil
		case "false":
			return der.ConstBool(false), nil
		default:
			return der.Constant{}, fmt.Errorf("bool constant must be true or false, got %q", *c.Bool)
		}
	default:
		return der.Constant{}, fmt.Errorf("unknown constant kind %q", c.Kind)
	}
}

// resolveArgs turns each textual ArgRef into the uint32 the node's Args
// slot actually stores: a constant-pool index for Const* opcodes, a
// literal immediate for Alloc/LoadArg, and a node's result id otherwise.
func resolveArgs(op der.OpCode, refs []*ArgRef, constNames map[string]int, nodeNames map[string]uint32) ([]uint32, error) {
	out := make([]uint32, len(refs))
	for i, ref := range refs {
		switch {
		case op.Valid() && isConstOpcode(op) && i == 0:
			name, err := identOf(ref)
			if err != nil {
				return nil, err
			}
			idx, ok := constNames[name]
			if !ok {
				return nil, fmt.Errorf("undeclared constant %q", name)
			}
			out[i] = uint32(idx)

		case (op == der.OpAlloc || op == der.OpLoadArg) && i == 0:
			if ref.Lit == nil {
				return nil, fmt.Errorf("arg %d must be a literal integer", i)
			}
			out[i] = uint32(*ref.Lit)

		default:
			name, err := identOf(ref)
			if err != nil {
				return nil, err
			}
			id, ok := nodeNames[name]
			if !ok {
				return nil, fmt.Errorf("undeclared node %q", name)
			}
			out[i] = id
		}
	}
	return out, nil
}

func identOf(ref *ArgRef) (string, error) {
	if ref.Name == nil {
		return "", fmt.Errorf("expected a name, got a literal")
	}
	return *ref.Name, nil
}

func isConstOpcode(op der.OpCode) bool {
	switch op {
	case der.OpConstInt, der.OpConstFloat, der.OpConstString, der.OpConstBool:
		return true
	default:
		return false
	}
}

// quoteForDasm renders a string constant back into .dasm source form, used
// by a disassembler-to-source round trip if one is ever added; kept here
// since it is the grammar's own escaping rule.
func quoteForDasm(s string) string {
	return strconv.Quote(s)
}
