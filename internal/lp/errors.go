package lp

import (
	"errors"
	"fmt"
)

// Error kinds carried by ParseError, matchable with errors.Is.
var (
	// ErrDuplicateSection reports a second Max/Min direction line.
	ErrDuplicateSection = errors.New("duplicate section")
	// ErrFormat reports a malformed term, expression, constraint, bound
	// line or numeric literal.
	ErrFormat = errors.New("format error")
	// ErrUnexpectedLine reports content that no section can accept.
	ErrUnexpectedLine = errors.New("unexpected line")
)

// ParseError is a fatal problem in the input text. Line is 1-based;
// Column is 1-based and 0 when unknown.
type ParseError struct {
	Kind    error
	Line    int
	Column  int
	Snippet string
	Msg     string
}

func (e *ParseError) Error() string {
	detail := e.Msg
	if e.Snippet != "" {
		detail = fmt.Sprintf("%s: %q", e.Msg, e.Snippet)
	}
	if e.Column > 0 {
		return fmt.Sprintf("line %d, column %d: %s", e.Line, e.Column, detail)
	}
	return fmt.Sprintf("line %d: %s", e.Line, detail)
}

func (e *ParseError) Unwrap() error { return e.Kind }

func formatErr(line, column int, snippet, msg string) *ParseError {
	return &ParseError{Kind: ErrFormat, Line: line, Column: column, Snippet: snippet, Msg: msg}
}
