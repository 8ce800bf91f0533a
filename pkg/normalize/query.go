// Package normalize turns a parsed Wolfram Alpha result tree into the
// ordered sequence of content blocks returned to the MCP host, and
// validates the inbound query before any network call is made.
package normalize

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

const (
	// MinQueryLength and MaxQueryLength bound the trimmed query, in
	// runes. The advertised tool schema declares a narrower 1-500
	// range; the runtime bound is authoritative.
	MinQueryLength = 2
	MaxQueryLength = 1000
)

// Query is a validated, trimmed query string.
type Query string

// ValidationReason classifies why a raw query was rejected.
type ValidationReason int

const (
	ReasonNotAString ValidationReason = iota
	ReasonEmpty
	ReasonTooShort
	ReasonTooLong
)

func (r ValidationReason) String() string {
	switch r {
	case ReasonNotAString:
		return "not_a_string"
	case ReasonEmpty:
		return "empty"
	case ReasonTooShort:
		return "too_short"
	case ReasonTooLong:
		return "too_long"
	default:
		return "unknown"
	}
}

// ValidationError reports a rejected query. Length is the trimmed rune
// count where relevant.
type ValidationError struct {
	Reason ValidationReason
	Length int
}

func (e *ValidationError) Error() string {
	switch e.Reason {
	case ReasonNotAString:
		return "query must be a string"
	case ReasonEmpty:
		return "query must be a non-empty string"
	case ReasonTooShort:
		return fmt.Sprintf("query is too short: %d characters (minimum %d)", e.Length, MinQueryLength)
	case ReasonTooLong:
		return fmt.Sprintf("query is too long: %d characters (maximum %d)", e.Length, MaxQueryLength)
	default:
		return "query is invalid"
	}
}

// Hint returns guidance for the caller.
func (e *ValidationError) Hint() string {
	switch e.Reason {
	case ReasonNotAString, ReasonEmpty:
		return "Provide a question or calculation as the 'query' string, e.g. \"What is 2+2?\"."
	case ReasonTooShort:
		return "Ask a fuller question; single characters rarely make a meaningful query."
	case ReasonTooLong:
		return "Shorten the query or split it into multiple questions."
	default:
		return "Rephrase the query and try again."
	}
}

// ValidateQuery is the single gate before any network activity. It trims
// surrounding whitespace, then enforces the length bounds.
func ValidateQuery(raw interface{}) (Query, error) {
	s, ok := raw.(string)
	if !ok {
		return "", &ValidationError{Reason: ReasonNotAString}
	}

	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return "", &ValidationError{Reason: ReasonEmpty}
	}

	length := utf8.RuneCountInString(trimmed)
	if length < MinQueryLength {
		return "", &ValidationError{Reason: ReasonTooShort, Length: length}
	}
	if length > MaxQueryLength {
		return "", &ValidationError{Reason: ReasonTooLong, Length: length}
	}

	return Query(trimmed), nil
}
