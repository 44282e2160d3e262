package patch

import (
	"strings"
	"testing"

	"github.com/felixgeelhaar/gloss/internal/domain"
)

func TestSynthesizer_Synthesize(t *testing.T) {
	s := NewSynthesizer()

	t.Run("builds diff for a changed source", func(t *testing.T) {
		original := "def add(a, b):\n    return a - b\n"
		fixed := "def add(a, b):\n    return a + b\n"

		p := s.Synthesize(domain.LanguagePython, original, fixed)
		if p == nil {
			t.Fatal("Synthesize() returned nil for a real change")
		}
		if p.Issue == "" || p.Explanation == "" {
			t.Error("synthesized patch should describe itself")
		}
		if !strings.Contains(p.Patch, "--- main.py") {
			t.Errorf("diff should name the python file, got:\n%s", p.Patch)
		}
		if !strings.Contains(p.Patch, "-    return a - b") {
			t.Error("diff should show the removed line")
		}
		if !strings.Contains(p.Patch, "+    return a + b") {
			t.Error("diff should show the added line")
		}
	})

	t.Run("nil when fixed code is empty", func(t *testing.T) {
		if p := s.Synthesize(domain.LanguagePython, "x = 1\n", ""); p != nil {
			t.Errorf("Synthesize() = %+v, want nil", p)
		}
	})

	t.Run("nil when nothing changed", func(t *testing.T) {
		src := "x = 1\n"
		if p := s.Synthesize(domain.LanguagePython, src, src); p != nil {
			t.Errorf("Synthesize() = %+v, want nil", p)
		}
	})

	t.Run("unwraps fenced fixed code", func(t *testing.T) {
		original := "x = 1"
		fixed := "```python\nx = 2\n```"

		p := s.Synthesize(domain.LanguagePython, original, fixed)
		if p == nil {
			t.Fatal("Synthesize() returned nil")
		}
		if strings.Contains(p.Patch, "```") {
			t.Errorf("diff should not contain fence markers, got:\n%s", p.Patch)
		}
		if !strings.Contains(p.Patch, "+x = 2") {
			t.Errorf("diff should carry the unwrapped code, got:\n%s", p.Patch)
		}
	})

	t.Run("fenced fixed code identical to original", func(t *testing.T) {
		if p := s.Synthesize(domain.LanguageGo, "package main", "```go\npackage main\n```"); p != nil {
			t.Errorf("Synthesize() = %+v, want nil", p)
		}
	})
}

func TestSynthesizer_Normalize(t *testing.T) {
	s := NewSynthesizer()

	if got := s.Normalize("```python\nprint(1)\n```"); got != "print(1)" {
		t.Errorf("Normalize() = %q, want unwrapped code", got)
	}
	if got := s.Normalize("plain text"); got != "plain text" {
		t.Errorf("Normalize() = %q, want unchanged", got)
	}
}

func TestDefaultFileName(t *testing.T) {
	tests := []struct {
		lang domain.Language
		want string
	}{
		{domain.LanguagePython, "main.py"},
		{domain.LanguageJavaScript, "main.js"},
		{domain.LanguageJava, "main.java"},
		{domain.LanguageCPP, "main.cpp"},
		{domain.LanguageCSharp, "main.cs"},
		{domain.LanguageGo, "main.go"},
		{domain.Language("fortran"), "code.txt"},
	}

	for _, tt := range tests {
		t.Run(string(tt.lang), func(t *testing.T) {
			if got := defaultFileName(tt.lang); got != tt.want {
				t.Errorf("defaultFileName(%q) = %q, want %q", tt.lang, got, tt.want)
			}
		})
	}
}

func TestGenerateDiff_NewFile(t *testing.T) {
	diff := generateDiff("main.go", "", "package main\n\nfunc main() {}\n")

	if diff == "" {
		t.Error("generateDiff() returned empty string")
	}

	// Check it has new file indicators
	if !strings.Contains(diff, "--- /dev/null") {
		t.Error("new file diff should have /dev/null source")
	}
	if !strings.Contains(diff, "+++ main.go") {
		t.Error("new file diff should have target filename")
	}
	if !strings.Contains(diff, "+package main") {
		t.Error("new file diff should have + prefixed lines")
	}
}

func TestGenerateDiff_ModifiedFile(t *testing.T) {
	original := "package main\n\nfunc old() {}\n"
	proposed := "package main\n\nfunc new() {}\n"

	diff := generateDiff("main.go", original, proposed)

	if diff == "" {
		t.Error("generateDiff() returned empty string")
	}

	// Check unified diff format
	if !strings.Contains(diff, "--- main.go") {
		t.Error("modified diff should have source filename")
	}
	if !strings.Contains(diff, "+++ main.go") {
		t.Error("modified diff should have target filename")
	}
	if !strings.Contains(diff, "-func old()") {
		t.Error("modified diff should have removed lines")
	}
	if !strings.Contains(diff, "+func new()") {
		t.Error("modified diff should have added lines")
	}
}

func TestDiffStats(t *testing.T) {
	diff := generateDiff("main.py", "a = 1\nb = 2", "a = 1\nb = 3\nc = 4")

	added, removed := DiffStats(diff)
	if added != 3 {
		t.Errorf("added = %d, want 3", added)
	}
	if removed != 2 {
		t.Errorf("removed = %d, want 2", removed)
	}

	// Header lines never count
	added, removed = DiffStats("--- main.py\n+++ main.py\n")
	if added != 0 || removed != 0 {
		t.Errorf("headers counted: added=%d removed=%d", added, removed)
	}
}

func TestItoa(t *testing.T) {
	tests := []struct {
		n    int
		want string
	}{
		{0, "0"},
		{1, "1"},
		{10, "10"},
		{123, "123"},
		{9999, "9999"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			got := itoa(tt.n)
			if got != tt.want {
				t.Errorf("itoa(%d) = %q, want %q", tt.n, got, tt.want)
			}
		})
	}
}
