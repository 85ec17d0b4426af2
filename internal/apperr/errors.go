package apperr

import "errors"

type Kind int

const (
	KindInternal Kind = iota
	KindInvalid       // 400
	KindNotFound      // 404
	KindConflict      // 409
)

// Error is a domain error with a user-facing Turkish message.
type Error struct {
	Kind Kind
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) ErrorKind() Kind { return e.Kind }

func Invalid(msg string) *Error  { return &Error{Kind: KindInvalid, Msg: msg} }
func NotFound(msg string) *Error { return &Error{Kind: KindNotFound, Msg: msg} }
func Conflict(msg string) *Error { return &Error{Kind: KindConflict, Msg: msg} }

type kinded interface {
	ErrorKind() Kind
}

// KindOf returns the kind of the first classified error in err's chain
// and that error's own message.
func KindOf(err error) (Kind, string) {
	var k kinded
	if errors.As(err, &k) {
		if e, ok := k.(error); ok {
			return k.ErrorKind(), e.Error()
		}
		return k.ErrorKind(), ""
	}
	return KindInternal, ""
}
