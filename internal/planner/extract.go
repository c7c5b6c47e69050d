package planner

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"
)

var (
	ErrContentFormat = errors.New("model output is not a JSON document")
	ErrParse         = errors.New("model output could not be parsed")
)

// Payload selects the JSON shape the candidate must have.
type Payload int

const (
	ObjectPayload Payload = iota
	ArrayPayload
)

func (p Payload) delims() (byte, byte) {
	if p == ArrayPayload {
		return '[', ']'
	}
	return '{', '}'
}

// FormatError reports a candidate that does not look like JSON. Head and
// Tail hold the first and last 50 characters for diagnostics.
type FormatError struct {
	Head string
	Tail string
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("%s: starts %q, ends %q", ErrContentFormat, e.Head, e.Tail)
}

func (e *FormatError) Is(target error) bool { return target == ErrContentFormat }

// ParseError wraps a JSON decoding failure of the candidate.
type ParseError struct {
	Err error
}

func (e *ParseError) Error() string { return fmt.Sprintf("%s: %v", ErrParse, e.Err) }

func (e *ParseError) Is(target error) bool { return target == ErrParse }

func (e *ParseError) Unwrap() error { return e.Err }

// Extraction is the model output split into its reasoning trace and the JSON
// candidate.
type Extraction struct {
	Reasoning string
	JSON      string
}

const (
	thinkOpen  = "<think>"
	thinkClose = "</think>"
	diagLen    = 50
)

var tagPattern = regexp.MustCompile(`<[^>]*>`)

// Extract isolates the JSON candidate from raw model output. Reasoning models
// wrap their trace in <think> tags ahead of the answer.
func Extract(content string, want Payload) (Extraction, error) {
	var out Extraction
	candidate := content

	if strings.Contains(content, thinkOpen) && strings.Contains(content, thinkClose) {
		before, after, _ := strings.Cut(content, thinkClose)
		if _, reasoning, ok := strings.Cut(before, thinkOpen); ok {
			out.Reasoning = strings.TrimSpace(reasoning)
		}
		candidate = after
	}

	candidate = strings.TrimSpace(tagPattern.ReplaceAllString(candidate, ""))

	open, close := want.delims()
	if candidate == "" || candidate[0] != open || candidate[len(candidate)-1] != close {
		return out, &FormatError{Head: head(candidate, diagLen), Tail: tail(candidate, diagLen)}
	}

	out.JSON = candidate
	return out, nil
}

func head(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

func tail(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[len(r)-n:])
}
