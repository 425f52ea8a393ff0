package excerpt

import (
	"fmt"
	"math"
	"reflect"
	"testing"
)

func numberedLines(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = fmt.Sprintf("line %d", i)
	}
	return out
}

func TestExcerpt_NoMatch(t *testing.T) {
	lines := []string{"compiling", "linking", "done"}
	if _, ok := Excerpt(lines, DefaultKeywords, DefaultRadius); ok {
		t.Fatalf("expected no excerpt")
	}
	if _, ok := Excerpt(nil, DefaultKeywords, DefaultRadius); ok {
		t.Fatalf("expected no excerpt for empty log")
	}
}

func TestExcerpt_SingleMatchWindowClamped(t *testing.T) {
	lines := numberedLines(200)
	lines[50] = "FAILED: task X"
	w, ok := Excerpt(lines, DefaultKeywords, 100)
	if !ok {
		t.Fatalf("expected excerpt")
	}
	if w.Anchor != 50 || w.Start != 0 || w.Keyword != "FAILED:" {
		t.Fatalf("unexpected window: anchor=%d start=%d kw=%q", w.Anchor, w.Start, w.Keyword)
	}
	if len(w.Lines) != 151 {
		t.Fatalf("expected lines 0..150, got %d lines", len(w.Lines))
	}
	if w.Lines[0] != "line 0" || w.Lines[150] != "line 150" {
		t.Fatalf("unexpected bounds: %q .. %q", w.Lines[0], w.Lines[150])
	}
}

func TestExcerpt_UpperBoundClamped(t *testing.T) {
	lines := numberedLines(20)
	lines[18] = "Error: boom"
	w, ok := Excerpt(lines, DefaultKeywords, 5)
	if !ok {
		t.Fatalf("expected excerpt")
	}
	if w.Start != 13 || len(w.Lines) != 7 {
		t.Fatalf("unexpected window: start=%d len=%d", w.Start, len(w.Lines))
	}
	if w.Lines[len(w.Lines)-1] != "line 19" {
		t.Fatalf("unexpected last line: %q", w.Lines[len(w.Lines)-1])
	}
}

func TestExcerpt_AnchorsOnLastMatch(t *testing.T) {
	w, ok := Excerpt([]string{"ERROR a", "x", "ERROR b"}, []string{"ERROR"}, 0)
	if !ok {
		t.Fatalf("expected excerpt")
	}
	if !reflect.DeepEqual(w.Lines, []string{"ERROR b"}) {
		t.Fatalf("unexpected lines: %v", w.Lines)
	}
}

func TestExcerpt_KeywordPriority(t *testing.T) {
	lines := []string{"a", "Error in foo", "b", "c"}
	w, ok := Excerpt(lines, []string{"FAILED:", "Error"}, 0)
	if !ok || w.Keyword != "Error" || w.Anchor != 1 {
		t.Fatalf("unexpected window: %+v ok=%v", w, ok)
	}

	lines = []string{"FAILED: one", "error later", "tail"}
	w, ok = Excerpt(lines, []string{"FAILED:", "error"}, 0)
	if !ok || w.Keyword != "FAILED:" || w.Anchor != 0 {
		t.Fatalf("first keyword must win: %+v", w)
	}
}

func TestExcerpt_DoesNotAliasInput(t *testing.T) {
	lines := []string{"Error"}
	w, _ := Excerpt(lines, DefaultKeywords, 1)
	w.Lines[0] = "changed"
	if lines[0] != "Error" {
		t.Fatalf("input mutated")
	}
}

func TestWindowText(t *testing.T) {
	w := Window{Lines: []string{"a", "b"}}
	if got := w.Text(); got != "a\nb\n" {
		t.Fatalf("unexpected text: %q", got)
	}
}

func TestSplitLines(t *testing.T) {
	if got := SplitLines(""); got != nil {
		t.Fatalf("expected nil, got %v", got)
	}
	got := SplitLines("a\r\nb\n\nc\n")
	want := []string{"a", "b", "", "c"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("want %v got %v", want, got)
	}
}

func TestExcerpt_HugeRadiusReturnsWholeLog(t *testing.T) {
	lines := []string{"a", "FAILED: x", "b"}
	w, ok := Excerpt(lines, []string{"FAILED:"}, math.MaxInt)
	if !ok {
		t.Fatalf("expected excerpt")
	}
	if !reflect.DeepEqual(w.Lines, lines) || w.Start != 0 || w.Anchor != 1 {
		t.Fatalf("unexpected window: %+v", w)
	}
}
