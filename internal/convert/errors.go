// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"errors"
	"fmt"

	"github.com/pdiddy/ebook-converter/pkg/types"
)

// Kind classifies a dispatcher failure.
type Kind string

const (
	KindUnsupportedInputFormat Kind = "unsupported_input_format"
	KindUnsupportedPair        Kind = "unsupported_pair"
	KindConversionFailed       Kind = "conversion_failed"
	KindInvalidRequest         Kind = "invalid_request"
)

// Sentinel errors for errors.Is checks against a *Error of the same kind.
var (
	ErrUnsupportedInputFormat = errors.New("unsupported input format")
	ErrUnsupportedPair        = errors.New("unsupported conversion pair")
	ErrConversionFailed       = errors.New("conversion failed")
	ErrInvalidRequest         = errors.New("invalid request")
)

// Error is the only error type Convert returns. Source and Target are set
// when they were known at the point of failure.
type Error struct {
	Kind   Kind
	Source types.Format
	Target types.Format
	Detail string
	Err    error
}

func (e *Error) Error() string {
	switch e.Kind {
	case KindUnsupportedInputFormat:
		return "input format not supported: " + e.Detail
	case KindUnsupportedPair:
		msg := fmt.Sprintf("conversion from %s to %s is not supported", e.Source, e.Target)
		if e.Detail != "" {
			msg += ": " + e.Detail
		}
		return msg
	case KindConversionFailed:
		return fmt.Sprintf("converting %s to %s: %s", e.Source, e.Target, e.Detail)
	case KindInvalidRequest:
		return "invalid request: " + e.Detail
	}
	return e.Detail
}

func (e *Error) Unwrap() error { return e.Err }

// Is matches the sentinel for e.Kind.
func (e *Error) Is(target error) bool {
	return target == sentinel(e.Kind)
}

func sentinel(k Kind) error {
	switch k {
	case KindUnsupportedInputFormat:
		return ErrUnsupportedInputFormat
	case KindUnsupportedPair:
		return ErrUnsupportedPair
	case KindConversionFailed:
		return ErrConversionFailed
	case KindInvalidRequest:
		return ErrInvalidRequest
	}
	return nil
}

// KindOf returns the Kind of the first *Error in err's chain, or "" when
// there is none.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

func invalidRequest(detail string) *Error {
	return &Error{Kind: KindInvalidRequest, Detail: detail}
}
