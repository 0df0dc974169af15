package rewriter

import (
	"errors"
	"fmt"

	"github.com/Warbo/python-decompiler/pkg/ast"
	"github.com/Warbo/python-decompiler/pkg/common"
)

type ErrorKind int

const (
	UnmatchedShape ErrorKind = iota + 1
	ArityMismatch
	RoundTripViolation
	RecursionLimit
)

func (k ErrorKind) String() string {
	switch k {
	case UnmatchedShape:
		return "UnmatchedShape"
	case ArityMismatch:
		return "ArityMismatch"
	case RoundTripViolation:
		return "RoundTripViolation"
	case RecursionLimit:
		return "RecursionLimit"
	}
	return "Unknown"
}

// Sentinels for errors.Is.
var (
	ErrUnmatchedShape     = errors.New("unmatched shape")
	ErrArityMismatch      = errors.New("arity mismatch")
	ErrRoundTripViolation = errors.New("round-trip violation")
	ErrRecursionLimit     = errors.New("recursion limit exceeded")
)

// Error is a failure to transform or render a node. Group names the rule
// group that was being applied, for example "render/If".
type Error struct {
	Kind        ErrorKind
	Tag         ast.Tag
	Group       string
	Alternative string
	Path        *common.Path
	Detail      string
	Err         error
}

func (e *Error) Error() string {
	msg := fmt.Sprintf("%s: %s in group %s", e.Kind, e.Tag, e.Group)
	if e.Alternative != "" {
		msg += fmt.Sprintf(" (alternative %q)", e.Alternative)
	}
	msg += " at " + e.Path.String()
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Is(target error) bool {
	switch target {
	case ErrUnmatchedShape:
		return e.Kind == UnmatchedShape
	case ErrArityMismatch:
		return e.Kind == ArityMismatch
	case ErrRoundTripViolation:
		return e.Kind == RoundTripViolation
	case ErrRecursionLimit:
		return e.Kind == RecursionLimit
	}
	return false
}

func (e *Error) Unwrap() error {
	return e.Err
}

// AsError extracts the first *Error in err's chain.
func AsError(err error) (*Error, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}
