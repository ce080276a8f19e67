// Package recognizer implements text-line recognition (spec.md C4):
// oriented-crop preprocessing of detected boxes, batched inference, and
// CTC greedy decoding through a character dictionary.
package recognizer

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
)

// ErrEmptyDictionary is returned by LoadDictionary for a file with no
// usable lines.
var ErrEmptyDictionary = errors.New("recognizer: dictionary is empty")

// Dictionary maps CTC class indices to characters. Index 0 is always the
// blank (never emitted as a rune); indices 1..len(Lines) map to the
// dictionary's lines in order; index len(Lines)+1 is a trailing space, per
// spec §6's "caller-side mapping prepends a blank and appends a space".
type Dictionary struct {
	Lines []string
}

// LoadDictionary reads a UTF-8 text file, one token per line (a token is
// usually a single rune but may be a multi-codepoint grapheme), trimming a
// leading BOM and line terminators. Blank lines are preserved as tokens —
// some charsets use a literal space line.
func LoadDictionary(path string) (*Dictionary, error) {
	f, err := os.Open(path) //nolint:gosec // dictionary path is operator-supplied configuration
	if err != nil {
		return nil, fmt.Errorf("recognizer: open dictionary: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	var lines []string
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := scanner.Text()
		line = strings.TrimSuffix(line, "\r")
		if lineNum == 1 {
			line = strings.TrimPrefix(line, "\xef\xbb\xbf")
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("recognizer: read dictionary: %w", err)
	}
	if len(lines) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyDictionary, path)
	}
	return &Dictionary{Lines: lines}, nil
}

// Size is the alphabet size V a recognition model must be trained against:
// blank + dictionary lines + trailing space.
func (d *Dictionary) Size() int { return len(d.Lines) + 2 }

// Token maps a CTC class index to its string, per spec §6/§4.4: 0 → "",
// 1..N → dictionary lines, N+1 → a single space. Indices outside this range
// map to "".
func (d *Dictionary) Token(index int) string {
	switch {
	case index == 0:
		return ""
	case index >= 1 && index <= len(d.Lines):
		return d.Lines[index-1]
	case index == len(d.Lines)+1:
		return " "
	default:
		return ""
	}
}
