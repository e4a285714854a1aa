// Package kenererr attaches one of the lib-kener kind errors to a
// formatted message, so callers dispatch with errors.Is instead of
// parsing text.
package kenererr

import (
	"fmt"
	"strings"
)

// Error is one problem of a known kind, with an optional cause.
type Error struct {
	kind    error
	cause   error
	message string
}

// New makes an Error of the given kind. A non-nil cause is appended
// to the message and reachable through errors.Unwrap.
func New(kind error, cause error, format string, args ...any) Error {
	msg := fmt.Sprintf(format, args...)
	if cause != nil {
		if msg == "" {
			msg = cause.Error()
		} else {
			msg += ": " + cause.Error()
		}
	}

	return Error{
		kind:    kind,
		cause:   cause,
		message: msg,
	}
}

func (e Error) Error() string {
	return e.message
}

func (e Error) Unwrap() error {
	return e.cause
}

func (e Error) Is(target error) bool {
	return e.kind == target
}

// List reports several problems of one kind at once, one indented
// line each. Configuration loading uses it so a bad file surfaces
// every mistake in a single run.
type List struct {
	What     error
	Children []error
}

func (l List) Error() string {
	lines := make([]string, 0, len(l.Children)+1)
	lines = append(lines, l.What.Error()+":")
	for _, e := range l.Children {
		lines = append(lines, "  "+e.Error())
	}
	return strings.Join(lines, "\n")
}

func (l List) Unwrap() error {
	return l.What
}

// ListBuilder accumulates problems for a List.
type ListBuilder struct {
	What     error
	Children []error
}

// Pushf records one problem.
func (lb *ListBuilder) Pushf(format string, args ...any) {
	lb.Children = append(lb.Children, fmt.Errorf(format, args...))
}

// Build returns the collected List, or nil when nothing was pushed.
func (lb *ListBuilder) Build() error {
	if len(lb.Children) == 0 {
		return nil
	}
	return List{What: lb.What, Children: lb.Children}
}
