package errs

import (
	"fmt"
	"strings"

	cr "github.com/cockroachdb/errors"
)

// Wrap annotates err with msg and captures the call site.
func Wrap(err error, msg string) error {
	if err == nil {
		return nil
	}
	return cr.Wrap(err, msg)
}

// New creates a sentinel error with a stack trace attached.
func New(msg string) error {
	return cr.New(msg)
}

// Mark gives err the identity of markErr without discarding the cause.
// cockroachdb's own Mark records the identity in a side channel that only
// its errors.Is can see; handlers and tests match sentinels with the
// standard library's errors.Is, so the mark must sit in the unwrap chain.
func Mark(err error, markErr error) error {
	if err == nil {
		return markErr
	}
	return &marked{cause: err, mark: markErr}
}

type marked struct {
	cause error
	mark  error
}

func (e *marked) Error() string { return e.cause.Error() }

func (e *marked) Unwrap() []error { return []error{e.mark, e.cause} }

func (e *marked) Format(s fmt.State, verb rune) {
	if verb == 'v' && s.Flag('+') {
		fmt.Fprintf(s, "%+v\nmarked as: %v", e.cause, e.mark)
		return
	}
	fmt.Fprint(s, e.Error())
}

func ExtractStackLines(err error, maxLines int) []string {
	if err == nil {
		return nil
	}
	s := fmt.Sprintf("%+v", err)
	lines := strings.Split(s, "\n")
	if maxLines > 0 && len(lines) > maxLines {
		lines = lines[:maxLines]
	}
	return lines
}
