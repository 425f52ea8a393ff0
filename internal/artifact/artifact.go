// Package artifact names and writes the files produced by one run.
package artifact

import (
	"os"
	"path/filepath"
	"time"
)

// StampLayout formats run timestamps as yyyyMMdd_HHmm.
const StampLayout = "20060102_1504"

// Log is a locally written log or excerpt file.
type Log struct {
	Path      string
	CreatedAt time.Time
}

// Name returns the file name without its directory.
func (l Log) Name() string { return filepath.Base(l.Path) }

// Stamp formats t for artifact file names.
func Stamp(t time.Time) string { return t.Format(StampLayout) }

// BuildLogName is the full build log name for a run started at t.
func BuildLogName(t time.Time) string { return "build_" + Stamp(t) + ".log" }

// ErrorLogName is the error excerpt name for a run started at t.
func ErrorLogName(t time.Time) string { return "error_" + Stamp(t) + ".log" }

// SummaryName is the YAML run summary name for a run started at t.
func SummaryName(t time.Time) string { return "build_" + Stamp(t) + ".yaml" }

// Write stores text as dir/name, creating dir when missing. The file is
// written whole; a crash mid-write may leave it truncated.
func Write(dir, name, text string) (Log, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return Log{}, err
	}
	p := filepath.Join(dir, name)
	if err := os.WriteFile(p, []byte(text), 0o644); err != nil {
		return Log{}, err
	}
	return Log{Path: p, CreatedAt: time.Now()}, nil
}
