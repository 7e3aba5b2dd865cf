package herr

import (
	"fmt"
)

// Stringer is satisfied by hints; declared locally to keep this package a
// leaf that everything else can import without cycles.
type Stringer interface {
	String() string
}

type Unclassified struct {
	From  error
	stack []byte
}

func (e Unclassified) Error() string {
	return fmt.Sprintf("unclassified error: %v", e.From)
}
func (e Unclassified) Code() ErrCode    { return None }
func (e Unclassified) getStack() []byte { return e.stack }
func (e Unclassified) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewMalformedHint reports a template instantiation with too few or too
// many arguments. Always fatal.
type NewMalformedHint struct {
	Hint      Stringer
	NumParams int
	NumArgs   int
	stack     []byte
}

func (e NewMalformedHint) Error() string {
	if e.NumArgs == 0 {
		return fmt.Sprintf("%stype hint %v is subscripted by no argument hints", Placeholder, e.Hint)
	}
	return fmt.Sprintf(
		"%stype hint %v is subscripted by %d argument hints for only %d type parameters",
		Placeholder, e.Hint, e.NumArgs, e.NumParams)
}
func (e NewMalformedHint) Code() ErrCode    { return MalformedHint }
func (e NewMalformedHint) getStack() []byte { return e.stack }
func (e NewMalformedHint) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewBoundViolation reports a concrete argument failing a type parameter's
// declared bound. Culprit carries the offending argument for downstream
// diagnostics.
type NewBoundViolation struct {
	Hint    Stringer
	Param   Stringer
	Bound   Stringer
	Culprit Stringer
	stack   []byte
}

func (e NewBoundViolation) Error() string {
	return fmt.Sprintf(
		"%stype hint %v instantiates parameter %v with %v, which is not a subtype of its bound %v",
		Placeholder, e.Hint, e.Param, e.Culprit, e.Bound)
}
func (e NewBoundViolation) Code() ErrCode    { return BoundViolation }
func (e NewBoundViolation) getStack() []byte { return e.stack }
func (e NewBoundViolation) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewBadIdentifier reports a reference or scope name that is not a valid
// dotted identifier. Raised at construction time, before any caching.
type NewBadIdentifier struct {
	Name  string
	What  string // "forward reference", "forward scope name", ...
	stack []byte
}

func (e NewBadIdentifier) Error() string {
	return fmt.Sprintf("%s%s %q is not a valid dotted identifier", Placeholder, e.What, e.Name)
}
func (e NewBadIdentifier) Code() ErrCode    { return BadIdentifier }
func (e NewBadIdentifier) getStack() []byte { return e.stack }
func (e NewBadIdentifier) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewNotFound is the standard "key not found" failure raised by a forward
// scope miss when the caller is not trusted to receive a fabricated proxy.
// Recoverable by that caller.
type NewNotFound struct {
	Scope string
	Name  string
	stack []byte
}

func (e NewNotFound) Error() string {
	return fmt.Sprintf("forward scope %q has no attribute %q", e.Scope, e.Name)
}
func (e NewNotFound) Code() ErrCode    { return NotFound }
func (e NewNotFound) getStack() []byte { return e.stack }
func (e NewNotFound) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewUnsupportedHint reports an object that cannot be interpreted as a hint
type NewUnsupportedHint struct {
	Value any
	stack []byte
}

func (e NewUnsupportedHint) Error() string {
	return fmt.Sprintf("%sobject %v (%T) is not a supported type hint", Placeholder, e.Value, e.Value)
}
func (e NewUnsupportedHint) Code() ErrCode    { return UnsupportedHint }
func (e NewUnsupportedHint) getStack() []byte { return e.stack }
func (e NewUnsupportedHint) withStack(stack []byte) Error {
	e.stack = stack
	return e
}

// NewBadCallable reports a contextually invalid callable annotation, such
// as a generator whose return slot is not a generator hint.
type NewBadCallable struct {
	Func   string
	Slot   string
	Reason string
	stack  []byte
}

func (e NewBadCallable) Error() string {
	return fmt.Sprintf("%scallable %q slot %q: %s", Placeholder, e.Func, e.Slot, e.Reason)
}
func (e NewBadCallable) Code() ErrCode    { return BadCallable }
func (e NewBadCallable) getStack() []byte { return e.stack }
func (e NewBadCallable) withStack(stack []byte) Error {
	e.stack = stack
	return e
}
