package patch

import (
	"regexp"
	"strings"
)

// Extractor parses model reply content to extract fenced code blocks
type Extractor struct {
	codeBlockRegex *regexp.Regexp
}

// NewExtractor creates a new code block extractor
func NewExtractor() *Extractor {
	return &Extractor{
		// Matches fenced code blocks with optional language
		codeBlockRegex: regexp.MustCompile("(?s)```(\\w+)?\\s*\\n(.+?)```"),
	}
}

// CodeBlock represents an extracted code block
type CodeBlock struct {
	Language string
	Content  string
}

// ExtractCodeBlocks returns every fenced block found in content
func (e *Extractor) ExtractCodeBlocks(content string) []CodeBlock {
	matches := e.codeBlockRegex.FindAllStringSubmatch(content, -1)
	if matches == nil {
		return nil
	}

	var blocks []CodeBlock
	for _, match := range matches {
		lang := ""
		if len(match) > 1 {
			lang = match[1]
		}
		code := ""
		if len(match) > 2 {
			code = strings.TrimSpace(match[2])
		}

		if code == "" {
			continue
		}

		blocks = append(blocks, CodeBlock{
			Language: lang,
			Content:  code,
		})
	}

	return blocks
}

// StripFences unwraps content that is nothing more than a single fenced
// block. Models wrap JSON and code in ``` fences even when told not to.
func (e *Extractor) StripFences(content string) string {
	trimmed := strings.TrimSpace(content)
	if !strings.HasPrefix(trimmed, "```") || !strings.HasSuffix(trimmed, "```") {
		return content
	}

	blocks := e.ExtractCodeBlocks(trimmed)
	if len(blocks) != 1 {
		return content
	}
	return blocks[0].Content
}

func languageToExtension(lang string) string {
	switch strings.ToLower(lang) {
	case "go", "golang":
		return ".go"
	case "python", "py":
		return ".py"
	case "javascript", "js":
		return ".js"
	case "java":
		return ".java"
	case "cpp", "c++":
		return ".cpp"
	case "csharp", "c#":
		return ".cs"
	default:
		return ""
	}
}
