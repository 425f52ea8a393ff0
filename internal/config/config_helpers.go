package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"cuelang.org/go/cue"
	"cuelang.org/go/cue/cuecontext"
)

// compileCUE loads and compiles a CUE file at the given path.
func compileCUE(path string) (cue.Value, error) {
	if filepath.Ext(path) != ".cue" {
		return cue.Value{}, errors.New("unsupported config format: expected .cue")
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return cue.Value{}, fmt.Errorf("failed to read config: %w", err)
	}
	ctx := cuecontext.New()
	v := ctx.CompileBytes(data, cue.Filename(path))
	if err := v.Err(); err != nil {
		return cue.Value{}, fmt.Errorf("invalid config: %v", err)
	}
	return v, nil
}

func lookup(v cue.Value, path string) cue.Value {
	return v.LookupPath(cue.ParsePath(path))
}

// optString decodes an optional string field into dst.
func optString(v cue.Value, path string, dst *string) error {
	f := lookup(v, path)
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.StringKind {
		return fmt.Errorf("invalid type for field: %s (expected string)", path)
	}
	return f.Decode(dst)
}

// optInt decodes an optional int field into dst.
func optInt(v cue.Value, path string, dst *int) error {
	f := lookup(v, path)
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.IntKind {
		return fmt.Errorf("invalid type for field: %s (expected int)", path)
	}
	return f.Decode(dst)
}

// optStringList decodes an optional list of strings into dst.
func optStringList(v cue.Value, path string, dst *[]string) error {
	f := lookup(v, path)
	if !f.Exists() {
		return nil
	}
	if f.Kind() != cue.ListKind {
		return fmt.Errorf("invalid type for field: %s (expected list of strings)", path)
	}
	var out []string
	if err := f.Decode(&out); err != nil {
		return fmt.Errorf("invalid type for field: %s (expected list of strings)", path)
	}
	*dst = out
	return nil
}
