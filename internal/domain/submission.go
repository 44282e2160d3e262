package domain

import (
	"fmt"
	"strings"
)

// Language identifies the programming language a submission is written in.
type Language string

const (
	LanguagePython     Language = "python"
	LanguageJavaScript Language = "javascript"
	LanguageJava       Language = "java"
	LanguageCPP        Language = "cpp"
	LanguageCSharp     Language = "csharp"
	LanguageGo         Language = "go"
)

// SupportedLanguages lists the languages a submission may declare, in the
// order they are advertised to clients.
func SupportedLanguages() []Language {
	return []Language{
		LanguagePython,
		LanguageJavaScript,
		LanguageJava,
		LanguageCPP,
		LanguageCSharp,
		LanguageGo,
	}
}

// Valid reports whether the language is one of the supported set.
func (l Language) Valid() bool {
	switch l {
	case LanguagePython, LanguageJavaScript, LanguageJava, LanguageCPP, LanguageCSharp, LanguageGo:
		return true
	}
	return false
}

// String returns the wire form of the language.
func (l Language) String() string {
	return string(l)
}

// SkillLevel describes how experienced the submitting learner is. It steers
// the depth and vocabulary of generated explanations.
type SkillLevel string

const (
	SkillBeginner     SkillLevel = "beginner"
	SkillIntermediate SkillLevel = "intermediate"
	SkillAdvanced     SkillLevel = "advanced"
)

// Valid reports whether the skill level is one of the known set.
func (s SkillLevel) Valid() bool {
	switch s {
	case SkillBeginner, SkillIntermediate, SkillAdvanced:
		return true
	}
	return false
}

// String returns the wire form of the skill level.
func (s SkillLevel) String() string {
	return string(s)
}

// Token budget bounds for a single analysis. Budgets outside the range are
// clamped, never rejected.
const (
	MinTokenBudget     = 256
	DefaultTokenBudget = 1024
	MaxTokenBudget     = 4096
)

// Options tune how a single submission is analyzed.
type Options struct {
	// SafeRun requests remote execution of the submission. No analysis
	// currently executes code; the flag is carried through so providers can
	// see the caller's intent.
	SafeRun bool
	// IncludeVideos asks for related video resources alongside explanations.
	IncludeVideos bool
	// MaxTokens bounds the model reply size for this request.
	MaxTokens int
}

// DefaultOptions returns the options applied when a request carries none.
func DefaultOptions() Options {
	return Options{
		SafeRun:       false,
		IncludeVideos: true,
		MaxTokens:     DefaultTokenBudget,
	}
}

// Normalize clamps the token budget into [MinTokenBudget, MaxTokenBudget].
// A zero budget means unset and falls back to the default.
func (o Options) Normalize() Options {
	switch {
	case o.MaxTokens == 0:
		o.MaxTokens = DefaultTokenBudget
	case o.MaxTokens < MinTokenBudget:
		o.MaxTokens = MinTokenBudget
	case o.MaxTokens > MaxTokenBudget:
		o.MaxTokens = MaxTokenBudget
	}
	return o
}

// Submission is one piece of code sent in for analysis, together with the
// declared language, the learner's skill level, and per-request options.
// Submissions live for a single request; nothing about them is retained.
type Submission struct {
	Source   string
	Language Language
	Level    SkillLevel
	Options  Options
}

// NewSubmission builds a submission from raw client input. Enum casings are
// normalized and options clamped; validation is a separate, pure step.
func NewSubmission(source, language, level string, opts Options) Submission {
	return Submission{
		Source:   source,
		Language: Language(strings.ToLower(strings.TrimSpace(language))),
		Level:    SkillLevel(strings.ToLower(strings.TrimSpace(level))),
		Options:  opts.Normalize(),
	}
}

// Validate checks the submission against the intake rules and returns the
// first violation found. It inspects only the submission itself.
func (s Submission) Validate() error {
	if strings.TrimSpace(s.Source) == "" {
		return ErrEmptySubmission
	}
	if !s.Language.Valid() {
		return fmt.Errorf("%w %q (supported: %s)", ErrUnsupportedLanguage, string(s.Language), languageList())
	}
	if !s.Level.Valid() {
		return fmt.Errorf("%w %q (expected beginner, intermediate or advanced)", ErrUnknownSkillLevel, string(s.Level))
	}
	return nil
}

func languageList() string {
	names := make([]string, 0, len(SupportedLanguages()))
	for _, l := range SupportedLanguages() {
		names = append(names, string(l))
	}
	return strings.Join(names, ", ")
}
