package progress

import (
	"strings"
	"testing"
	"time"
)

func TestBracket_LastBracketLineWins(t *testing.T) {
	lines := []string{
		"[  1% 10/1000] compile a",
		"[ 42% 420/1000] compile b",
		"FAILED: out/b.o",
		"ninja: build stopped",
	}
	got, err := Bracket{}.Parse(lines)
	if err != nil || got != "42" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestBracket_DefaultsToUnknown(t *testing.T) {
	got, _ := Bracket{}.Parse([]string{"no progress here", " [ 5%] indented"})
	if got != Unknown {
		t.Fatalf("got %q", got)
	}
	got, _ = Bracket{}.Parse(nil)
	if got != Unknown {
		t.Fatalf("got %q", got)
	}
}

func TestBracket_ShortLine(t *testing.T) {
	got, _ := Bracket{}.Parse([]string{"[7"})
	if got != "7" {
		t.Fatalf("got %q", got)
	}
	got, _ = Bracket{}.Parse([]string{"[  "})
	if got != Unknown {
		t.Fatalf("got %q", got)
	}
}

func TestLua_ReturnsMarker(t *testing.T) {
	code := `
for i = #lines, 1, -1 do
  local pct = string.match(lines[i], "^%[(%d+)%%%]")
  if pct then return pct .. "%" end
end
return nil`
	p, err := NewLua(code, "", time.Second)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	got, err := p.Parse([]string{"[10%] a", "[55%] b", "done"})
	if err != nil || got != "55%" {
		t.Fatalf("got %q err %v", got, err)
	}
	got, err = p.Parse([]string{"nothing"})
	if err != nil || got != Unknown {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestLua_NumberResult(t *testing.T) {
	p, _ := NewLua("return #lines", "", time.Second)
	got, err := p.Parse([]string{"a", "b", "c"})
	if err != nil || got != "3" {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestLua_Timeout(t *testing.T) {
	p, _ := NewLua("while true do end", "", 50*time.Millisecond)
	got, err := p.Parse(nil)
	if err == nil || !strings.Contains(err.Error(), "timeout") || got != Unknown {
		t.Fatalf("got %q err %v", got, err)
	}
}

func TestLua_NoFilesystem(t *testing.T) {
	p, _ := NewLua(`return io == nil and os == nil and dofile == nil`, "", time.Second)
	_, err := p.Parse(nil)
	if err == nil || !strings.Contains(err.Error(), "expected string") {
		t.Fatalf("expected boolean result to be rejected, got %v", err)
	}
}

func TestNewLua_Empty(t *testing.T) {
	if _, err := NewLua("  ", "", 0); err == nil {
		t.Fatalf("expected error")
	}
}

func TestBracket_MultibyteMarker(t *testing.T) {
	got, err := Bracket{}.Parse([]string{"[ ✓ step done"})
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	if got != "✓" {
		t.Fatalf("unexpected marker: %q", got)
	}
}
