package runtime

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/zxdxjtu/der/internal/der"
)

// evalPrint implements Print(value) (§4.3, §6.4): accepts any value, uses
// the canonical to_string, followed by a single newline (pinning §8
// scenario 4's parenthetical), and yields the printed value unchanged.
func (e *Executor) evalPrint(value Value) (Value, error) {
	fmt.Fprintln(e.stdout, value.String())
	return value, nil
}

// evalRead implements Read() (§4.3): reads one line from stdin, trimming
// the trailing newline, and returns it as a String.
func (e *Executor) evalRead() (Value, error) {
	line, err := e.stdin.ReadString('\n')
	if err != nil && line == "" {
		return Value{}, execErr(ErrIO, der.NoResult, der.OpRead, "%v", err)
	}
	return StringValue(strings.TrimRight(line, "\r\n")), nil
}

// resolvePath joins path against the executor's WorkDir, if one was set
// via WithWorkDir; otherwise path is used as given.
func (e *Executor) resolvePath(path string) string {
	if e.workDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(e.workDir, path)
}

// evalFileOpen implements FileOpen(path) (§4.3): verifies the path exists
// (os.Stat succeeds), returning the path back as a String handle — this
// executor keeps file handles implicit (by path) rather than introducing a
// distinct handle value kind, since spec.md's Value variants (§3.4) have
// no file-handle variant and FileRead/FileWrite both take a path directly.
func (e *Executor) evalFileOpen(n der.Node, path Value) (Value, error) {
	if err := requireKind(n, path, KindString); err != nil {
		return Value{}, err
	}
	full := e.resolvePath(path.Str)
	if _, err := os.Stat(full); err != nil {
		return Value{}, execErr(ErrIO, n.ResultID, n.Opcode, "%v", err)
	}
	e.openFiles[n.ResultID] = &openFile{path: full}
	return StringValue(path.Str), nil
}

// evalFileRead implements FileRead(path) (§4.3): reads the whole file as a
// String.
func (e *Executor) evalFileRead(n der.Node, path Value) (Value, error) {
	if err := requireKind(n, path, KindString); err != nil {
		return Value{}, err
	}
	content, err := os.ReadFile(e.resolvePath(path.Str))
	if err != nil {
		return Value{}, execErr(ErrIO, n.ResultID, n.Opcode, "%v", err)
	}
	return StringValue(string(content)), nil
}

// evalFileWrite implements FileWrite(path, content) (§4.3): writes content
// to path, creating or truncating it, returning the number of bytes
// written as an Int.
func (e *Executor) evalFileWrite(n der.Node, path, content Value) (Value, error) {
	if err := requireKind(n, path, KindString); err != nil {
		return Value{}, err
	}
	if err := requireKind(n, content, KindString); err != nil {
		return Value{}, err
	}
	full := e.resolvePath(path.Str)
	if err := os.WriteFile(full, []byte(content.Str), 0644); err != nil {
		return Value{}, execErr(ErrIO, n.ResultID, n.Opcode, "%v", err)
	}
	return IntValue(int64(len(content.Str))), nil
}
