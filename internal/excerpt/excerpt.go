// Package excerpt slices the failure context out of a captured build log.
package excerpt

import "strings"

// DefaultRadius is the number of lines kept on each side of the anchor line.
const DefaultRadius = 100

// DefaultKeywords are the failure markers, highest priority first.
var DefaultKeywords = []string{"FAILED:", "Error", "ERROR", "error"}

// Window is a contiguous slice of log lines centered on a failure marker.
type Window struct {
	Keyword string
	// Anchor is the index of the matched line in the full log.
	Anchor int
	// Start is the index of Lines[0] in the full log.
	Start int
	Lines []string
}

// Text joins the window lines, each terminated by a newline.
func (w Window) Text() string {
	var b strings.Builder
	for _, l := range w.Lines {
		b.WriteString(l)
		b.WriteByte('\n')
	}
	return b.String()
}

// Excerpt finds the first keyword, in priority order, that occurs in any line,
// anchors on the last line containing it and returns the lines within radius of
// that anchor, clamped to the log bounds. Later keywords are never consulted once
// one matches. It reports false when no keyword matches.
func Excerpt(lines, keywords []string, radius int) (Window, bool) {
	if radius < 0 {
		radius = 0
	}
	if radius > len(lines) {
		radius = len(lines)
	}
	for _, kw := range keywords {
		if kw == "" {
			continue
		}
		anchor := lastIndexContaining(lines, kw)
		if anchor < 0 {
			continue
		}
		start := anchor - radius
		if start < 0 {
			start = 0
		}
		end := anchor + radius + 1
		if end > len(lines) {
			end = len(lines)
		}
		out := make([]string, end-start)
		copy(out, lines[start:end])
		return Window{Keyword: kw, Anchor: anchor, Start: start, Lines: out}, true
	}
	return Window{}, false
}

func lastIndexContaining(lines []string, kw string) int {
	for i := len(lines) - 1; i >= 0; i-- {
		if strings.Contains(lines[i], kw) {
			return i
		}
	}
	return -1
}

// SplitLines splits captured output into lines. A trailing newline does not
// produce an empty final line and CRLF terminators are normalized.
func SplitLines(text string) []string {
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	lines := strings.Split(text, "\n")
	for i, l := range lines {
		lines[i] = strings.TrimSuffix(l, "\r")
	}
	return lines
}
