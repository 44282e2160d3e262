package domain

import "errors"

// -----------------------------------------------------------------------------
// Domain Errors
// These errors represent domain-level failures. Services return them wrapped
// with context; the transport layer maps them to status codes in one place.
// -----------------------------------------------------------------------------

// Validation errors. Their text is shown to clients verbatim.
var (
	ErrEmptySubmission     = errors.New("code is empty")
	ErrUnsupportedLanguage = errors.New("unsupported language")
	ErrUnknownSkillLevel   = errors.New("unknown skill level")
)

// Provider errors. A mandatory provider failing with any of these fails the
// request; an optional provider failing degrades to an empty result.
var (
	ErrProviderUnavailable = errors.New("provider unavailable")
	ErrProviderTimeout     = errors.New("provider timed out")
	ErrMalformedReply      = errors.New("malformed provider reply")
)

// ErrAssembly signals that provider results could not be merged into a
// contract-compliant response. Reaching it is a programming error, never a
// consequence of client input.
var ErrAssembly = errors.New("response assembly violated contract")
