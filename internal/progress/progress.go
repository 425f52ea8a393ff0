// Package progress extracts a short build progress marker from a log.
package progress

import "strings"

// Unknown is reported when no marker can be derived.
const Unknown = "Unknown"

// Parser derives a progress marker from the log lines of one run.
type Parser interface {
	Parse(lines []string) (string, error)
}

// Bracket reads progress counters printed as the first characters of a line,
// such as ninja's "[ 42% 1234/5678] ...". The last such line wins and the
// three characters after the bracket are returned, trimmed.
type Bracket struct{}

// Parse implements Parser.
func (Bracket) Parse(lines []string) (string, error) {
	for i := len(lines) - 1; i >= 0; i-- {
		line := lines[i]
		if !strings.HasPrefix(line, "[") {
			continue
		}
		runes := []rune(line)
		end := 4
		if end > len(runes) {
			end = len(runes)
		}
		if marker := strings.TrimSpace(string(runes[1:end])); marker != "" {
			return marker, nil
		}
		return Unknown, nil
	}
	return Unknown, nil
}
