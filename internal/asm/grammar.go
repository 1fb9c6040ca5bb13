// Package asm is a minimal human-writable textual surface that assembles
// into a der.Program via the builder API (§4.2) — a stand-in for the
// out-of-core "AI translator" producer spec.md §1 names as a collaborator
// rather than core scope. Grammar parsing uses
// github.com/alecthomas/participle/v2, grounded on
// oisee-psil/pkg/parser/parser.go's struct-tagged grammar idiom.
package asm

import (
	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// File is the top-level AST node: a flat list of declarations, order
// significant for node/constant numbering (§4.2: "result ids assigned 1,
// 2, 3, ... in builder order").
type File struct {
	Decls []*Decl `@@*`
}

// Decl is one of the four declaration forms a .dasm file is built from.
type Decl struct {
	Cap   *CapDecl   `  @@`
	Const *ConstDecl `| @@`
	Node  *NodeDecl  `| @@`
	Entry *EntryDecl `| @@`
}

// CapDecl declares one required capability bit (§6.5), e.g. "cap UI".
type CapDecl struct {
	Name string `"cap" @Ident`
}

// ConstDecl interns one constant-pool entry (§3.2), e.g.
// "const c0 = int 10" or `const greeting = string "hello"`.
type ConstDecl struct {
	Name  string  `"const" @Ident "="`
	Kind  string  `@("int" | "float" | "string" | "bool")`
	Int   *int64  `( @Int`
	Float *float64 `| @Float`
	Str   *string  `| @String`
	Bool  *string  `| @Ident )`
}

// NodeDecl declares one graph node, e.g. "node n3 = Add(n1, n2)".
type NodeDecl struct {
	Name string    `"node" @Ident "=" `
	Op   string    `@Ident "("`
	Args []*ArgRef `( @@ ("," @@)* )? ")"`
}

// ArgRef is either a reference to an earlier const/node name, or a literal
// immediate integer (used for Alloc's size and LoadArg's index).
type ArgRef struct {
	Name *string `  @Ident`
	Lit  *int64  `| @Int`
}

// EntryDecl declares the program's entry node, e.g. "entry n3".
type EntryDecl struct {
	Name string `"entry" @Ident`
}

var dasmLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "Whitespace", Pattern: `[ \t\r\n]+`},
	{Name: "Comment", Pattern: `#[^\n]*`},
	// Keywords are their own token type, checked before the generic Ident
	// rule, the same ordering trick oisee-psil's lexer uses for "DEFINE".
	{Name: "Keyword", Pattern: `\b(cap|const|node|entry|int|float|string|bool)\b`},
	{Name: "Float", Pattern: `-?[0-9]+\.[0-9]+`},
	{Name: "Int", Pattern: `-?[0-9]+`},
	{Name: "String", Pattern: `"(\\.|[^"\\])*"`},
	{Name: "Ident", Pattern: `[a-zA-Z_][a-zA-Z0-9_]*`},
	{Name: "Punct", Pattern: `[=(),]`},
})

var parser = participle.MustBuild[File](
	participle.Lexer(dasmLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.Unquote("String"),
)

// Parse parses .dasm source text into a File AST.
func Parse(source string) (*File, error) {
	return parser.ParseString("", source)
}
