package domain

import (
	"iter"
	"strings"
)

// Line is one source line addressed by its 1-based position in the original
// text. Blank lines participate in numbering but are never yielded, so line
// numbers always match what the author sees in an editor.
type Line struct {
	Number int
	Text   string
}

// Lines returns a lazy sequence over the non-blank lines of source. Lines are
// split on "\n" with a trailing "\r" stripped, numbered from 1. Blank
// (empty or whitespace-only) lines advance the counter but are skipped. The
// sequence is deterministic and restartable: ranging over it twice yields the
// same lines in the same order.
func Lines(source string) iter.Seq[Line] {
	return func(yield func(Line) bool) {
		rest := source
		for number := 1; rest != ""; number++ {
			text, remainder, found := strings.Cut(rest, "\n")
			text = strings.TrimSuffix(text, "\r")
			if strings.TrimSpace(text) != "" {
				if !yield(Line{Number: number, Text: text}) {
					return
				}
			}
			if !found {
				return
			}
			rest = remainder
		}
	}
}

// CollectLines materializes the sequence for callers that need the full
// listing up front.
func CollectLines(source string) []Line {
	var lines []Line
	for line := range Lines(source) {
		lines = append(lines, line)
	}
	return lines
}

// LineIndex returns the non-blank lines keyed by line number. Useful for
// checking that an externally produced line reference points at a real line.
func LineIndex(source string) map[int]Line {
	index := make(map[int]Line)
	for line := range Lines(source) {
		index[line.Number] = line
	}
	return index
}
