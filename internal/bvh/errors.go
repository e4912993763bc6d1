package bvh

import (
	"errors"
	"fmt"
)

// Sentinel causes carried by ParseError.
var (
	ErrSyntax           = errors.New("syntax error")
	ErrBraceNesting     = errors.New("unbalanced braces")
	ErrUnknownChannel   = errors.New("unknown channel")
	ErrChannelCount     = errors.New("channel count mismatch")
	ErrRotationChannels = errors.New("joint needs exactly one rotation channel per axis")
	ErrFrameCount       = errors.New("frame count mismatch")
)

// ParseError reports malformed input. Parsing stops at the first one and no
// partial skeleton is returned.
type ParseError struct {
	Line int // 1-based; 0 when the error is not tied to a line
	Err  error
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("bvh: line %d: %v", e.Line, e.Err)
	}
	return fmt.Sprintf("bvh: %v", e.Err)
}

func (e *ParseError) Unwrap() error { return e.Err }

func errorf(line int, cause error, format string, args ...any) *ParseError {
	return &ParseError{Line: line, Err: fmt.Errorf("%w: %s", cause, fmt.Sprintf(format, args...))}
}
