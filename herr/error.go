package herr

import (
	"fmt"
	"log/slog"
	"runtime/debug"
	"strings"
)

// enableDebugErrorPrinting makes errors include their stacktrace when printed
const enableDebugErrorPrinting bool = false
const enableDebugFullStacktrace bool = false

// Placeholder is the magic substring opening every message that may cross
// the sanitizer boundary. The sanitizer replaces it with a caller-supplied
// site prefix via Reprefix before the error reaches users.
const Placeholder = "$%SITE%$ "

type ErrCode int

const (
	None ErrCode = iota
	MalformedHint
	BoundViolation
	BadIdentifier
	NotFound
	UnsupportedHint
	BadCallable
)

// Error is the interface satisfied by every failure this module raises
type Error interface {
	error
	Code() ErrCode

	withStack([]byte) Error
	getStack() []byte
}

func FormatWithCode(e Error) string {
	if enableDebugErrorPrinting && e.getStack() != nil {
		stack := string(e.getStack())
		if !enableDebugFullStacktrace {
			stack = strings.Split(stack, "\n")[6]
		}
		return fmt.Sprintf("%s:(E%03d) %s", stack, e.Code(), e.Error())
	}
	return fmt.Sprintf("(E%03d) %s", e.Code(), e.Error())
}

func New[E Error](err E) Error {
	return err.withStack(debug.Stack())
}

// Reprefix substitutes the Placeholder in err's message with prefix.
// Non-herr errors pass through untouched. This is message decoration,
// not stack unwinding suppression: code, stack and the wrapped error
// remain reachable through Code and Unwrap.
func Reprefix(err error, prefix string) error {
	if err == nil {
		return nil
	}
	herr, ok := err.(Error)
	if !ok {
		return err
	}
	if inner, ok := herr.(prefixed); ok {
		herr = inner.inner
	}
	return prefixed{inner: herr, prefix: prefix}
}

type prefixed struct {
	inner  Error
	prefix string
}

func (e prefixed) Error() string {
	return strings.ReplaceAll(e.inner.Error(), Placeholder, e.prefix)
}
func (e prefixed) Code() ErrCode { return e.inner.Code() }
func (e prefixed) Unwrap() error { return e.inner }
func (e prefixed) getStack() []byte {
	return e.inner.getStack()
}
func (e prefixed) withStack(stack []byte) Error {
	e.inner = e.inner.withStack(stack)
	return e
}

// CodeOf returns the code of err, or None when err was not raised here
func CodeOf(err error) ErrCode {
	if herr, ok := err.(Error); ok {
		return herr.Code()
	}
	return None
}

// IsNotFound reports whether err is the standard lookup failure raised by
// a forward scope miss from an untrusted caller
func IsNotFound(err error) bool {
	return CodeOf(err) == NotFound
}

// Errors accumulates failures across one annotated-site processing
type Errors struct {
	errs []Error
}

func (r *Errors) With(err ...Error) *Errors {
	if r == nil {
		return &Errors{errs: err}
	}
	r.errs = append(r.errs, err...)
	return r
}

func (r *Errors) Errors() []Error {
	if r == nil {
		return nil
	}
	return r.errs
}

func (r *Errors) HasError() bool {
	return r != nil && len(r.errs) > 0
}

func (r *Errors) LogValue() slog.Value {
	var vals []slog.Attr
	for i, v := range r.errs {
		vals = append(vals, slog.Attr{
			Key: fmt.Sprint("e", i),
			Value: slog.GroupValue(
				slog.Attr{
					Key:   "msg",
					Value: slog.StringValue(FormatWithCode(v)),
				},
			),
		})
	}
	return slog.GroupValue(vals...)
}
