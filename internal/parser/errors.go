package parser

import "fmt"

// MalformedHeaderError reports a header block that never reached its
// blank-line terminator before the end of the input.
type MalformedHeaderError struct {
	Line int
}

func (e *MalformedHeaderError) Error() string {
	return fmt.Sprintf("header block not terminated before end of input (line %d)", e.Line)
}

// InvalidNumericTokenError reports a data row token that is not a valid
// floating-point literal.
type InvalidNumericTokenError struct {
	Line  int
	Token string
}

func (e *InvalidNumericTokenError) Error() string {
	return fmt.Sprintf("invalid numeric token %q on line %d", e.Token, e.Line)
}

// OrphanExternalChannelError reports an external-channel block that appears
// before any primary block.
type OrphanExternalChannelError struct {
	Line int
}

func (e *OrphanExternalChannelError) Error() string {
	return fmt.Sprintf("external channel block at line %d precedes any primary block", e.Line)
}

// MissingRequiredFieldError reports a retained group that lacks an energy or
// count channel after normalization.
type MissingRequiredFieldError struct {
	Field     string
	GroupName string
}

func (e *MissingRequiredFieldError) Error() string {
	return fmt.Sprintf("group %q has no %s channel after normalization", e.GroupName, e.Field)
}

// ParseError is the envelope returned for any failure while parsing a file.
// It carries the file path and the 1-based line of the offending content and
// wraps the typed cause, so callers can match with errors.As.
type ParseError struct {
	Path string
	Line int
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("parse %s: line %d: %v", e.Path, e.Line, e.Err)
	}
	return fmt.Sprintf("parse %s: %v", e.Path, e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }
