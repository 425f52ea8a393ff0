package progress

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	lua "github.com/yuin/gopher-lua"
)

const defaultLuaTimeout = time.Second

// Lua runs a user script to derive the marker. The script sees the log as the
// global table `lines` (1-based) and returns a string; nil or "" means Unknown.
type Lua struct {
	code    string
	timeout time.Duration
}

// NewLua returns a Lua parser for inline code, or for the file at path when
// code is empty.
func NewLua(code, path string, timeout time.Duration) (*Lua, error) {
	if code == "" && path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("progress script: %w", err)
		}
		code = string(b)
	}
	if strings.TrimSpace(code) == "" {
		return nil, fmt.Errorf("progress script: empty")
	}
	if timeout <= 0 {
		timeout = defaultLuaTimeout
	}
	return &Lua{code: code, timeout: timeout}, nil
}

// Parse implements Parser.
func (p *Lua) Parse(lines []string) (string, error) {
	L := newSandboxState()
	defer L.Close()

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()
	L.SetContext(ctx)

	tbl := L.CreateTable(len(lines), 0)
	for _, line := range lines {
		tbl.Append(lua.LString(line))
	}
	L.SetGlobal("lines", tbl)

	fn, err := L.LoadString(p.code)
	if err != nil {
		return Unknown, fmt.Errorf("progress script: %v", err)
	}
	L.Push(fn)
	if err := L.PCall(0, 1, nil); err != nil {
		if ctx.Err() != nil {
			return Unknown, fmt.Errorf("progress script: timeout after %s", p.timeout)
		}
		return Unknown, fmt.Errorf("progress script: %v", err)
	}
	ret := L.Get(-1)
	L.Pop(1)
	switch v := ret.(type) {
	case lua.LString:
		if s := strings.TrimSpace(string(v)); s != "" {
			return s, nil
		}
		return Unknown, nil
	case lua.LNumber:
		return v.String(), nil
	default:
		if ret == lua.LNil {
			return Unknown, nil
		}
		return Unknown, fmt.Errorf("progress script: expected string result, got %s", ret.Type())
	}
}

// newSandboxState opens only the base, string, table and math libraries.
func newSandboxState() *lua.LState {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		fn   lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.StringLibName, lua.OpenString},
		{lua.TabLibName, lua.OpenTable},
		{lua.MathLibName, lua.OpenMath},
	} {
		L.Push(L.NewFunction(lib.fn))
		L.Push(lua.LString(lib.name))
		L.Call(1, 0)
	}
	// The base library exposes file loaders; the sandbox has no filesystem.
	for _, name := range []string{"dofile", "loadfile", "require"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L
}
