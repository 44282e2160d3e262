package patch

import (
	"strings"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

// Synthesizer turns a rewritten source into a reviewable unified diff
type Synthesizer struct {
	extractor *Extractor
}

// NewSynthesizer creates a new patch synthesizer
func NewSynthesizer() *Synthesizer {
	return &Synthesizer{
		extractor: NewExtractor(),
	}
}

// Synthesize builds an IssuePatch describing the change from the submitted
// code to its corrected version. Returns nil when the correction is empty
// or identical to the original.
func (s *Synthesizer) Synthesize(lang domain.Language, original, fixed string) *domain.IssuePatch {
	fixed = s.extractor.StripFences(fixed)
	if strings.TrimSpace(fixed) == "" || fixed == original {
		return nil
	}

	return &domain.IssuePatch{
		Issue:       "full revision",
		Explanation: "Unified diff from the submitted code to the corrected version.",
		Patch:       generateDiff(defaultFileName(lang), original, fixed),
	}
}

// Normalize unwraps a reply fragment that arrived inside a code fence
func (s *Synthesizer) Normalize(text string) string {
	return s.extractor.StripFences(text)
}

// defaultFileName names the file in diff headers for a language
func defaultFileName(lang domain.Language) string {
	ext := languageToExtension(string(lang))
	if ext == "" {
		return "code.txt"
	}
	return "main" + ext
}

func generateDiff(file, original, proposed string) string {
	if original == "" {
		// New file - show all lines as additions
		lines := strings.Split(proposed, "\n")
		var diff strings.Builder
		diff.WriteString("--- /dev/null\n")
		diff.WriteString("+++ " + file + "\n")
		diff.WriteString("@@ -0,0 +1," + itoa(len(lines)) + " @@\n")
		for _, line := range lines {
			diff.WriteString("+" + line + "\n")
		}
		return diff.String()
	}

	return unifiedDiff(file, original, proposed)
}

func unifiedDiff(file, original, proposed string) string {
	origLines := strings.Split(original, "\n")
	newLines := strings.Split(proposed, "\n")

	var diff strings.Builder
	diff.WriteString("--- " + file + "\n")
	diff.WriteString("+++ " + file + "\n")

	// Simple diff: show full file replacement for now
	// A proper diff algorithm (Myers diff) would be more sophisticated
	diff.WriteString("@@ -1," + itoa(len(origLines)) + " +1," + itoa(len(newLines)) + " @@\n")

	for _, line := range origLines {
		diff.WriteString("-" + line + "\n")
	}
	for _, line := range newLines {
		diff.WriteString("+" + line + "\n")
	}

	return diff.String()
}

// DiffStats counts added and removed lines in a unified diff, skipping the
// --- and +++ header lines
func DiffStats(diff string) (added, removed int) {
	for _, line := range strings.Split(diff, "\n") {
		if strings.HasPrefix(line, "+") && !strings.HasPrefix(line, "+++") {
			added++
		}
		if strings.HasPrefix(line, "-") && !strings.HasPrefix(line, "---") {
			removed++
		}
	}
	return added, removed
}

func itoa(n int) string {
	if n == 0 {
		return "0"
	}
	var result []byte
	for n > 0 {
		result = append([]byte{byte('0' + n%10)}, result...)
		n /= 10
	}
	return string(result)
}
