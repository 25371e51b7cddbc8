package returncodes

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/xerrors"
)

// The three kinds of failures the protocol distinguishes. Every error
// returned by the protocol packages wraps one of them, so callers can sort
// them with xerrors.Is.
var (
	// ErrValidation is returned for malformed input: missing fields, wrong
	// vector sizes, non-distinct codes or mismatched groups. It is always
	// raised before any cryptographic operation runs.
	ErrValidation = xerrors.New("validation error")
	// ErrProtocolState is returned when the persisted protocol state does
	// not allow the operation: a missing allow list or a one-shot operation
	// that was already performed for a verification card.
	ErrProtocolState = xerrors.New("protocol state error")
	// ErrProofFailure is returned when a zero-knowledge proof sent by
	// another party does not verify.
	ErrProofFailure = xerrors.New("proof failure")
)

// kindError attaches a kind to a message while keeping the message as the
// only visible text.
type kindError struct {
	kind  error
	msg   string
	frame xerrors.Frame
}

func newKindError(kind error, format string, args []interface{}) error {
	return &kindError{
		kind:  kind,
		msg:   fmt.Sprintf(format, args...),
		frame: xerrors.Caller(2),
	}
}

// Validationf returns an error of kind ErrValidation.
func Validationf(format string, args ...interface{}) error {
	return newKindError(ErrValidation, format, args)
}

// ProtocolStatef returns an error of kind ErrProtocolState.
func ProtocolStatef(format string, args ...interface{}) error {
	return newKindError(ErrProtocolState, format, args)
}

// ProofFailuref returns an error of kind ErrProofFailure.
func ProofFailuref(format string, args ...interface{}) error {
	return newKindError(ErrProofFailure, format, args)
}

func (e *kindError) Error() string {
	return e.kind.Error() + ": " + e.msg
}

// Is makes the error comparable to its kind.
func (e *kindError) Is(target error) bool {
	return target == e.kind
}

// Format prints the error to the formatter.
func (e *kindError) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

// FormatError prints the error and, in detailed mode, the frame where it
// was created.
func (e *kindError) FormatError(p xerrors.Printer) error {
	p.Print(e.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}

// MaxWireErrorLength bounds the text of an error returned to a remote
// client. onet sends it as the reason of a websocket close frame, which
// holds at most 123 bytes, after its own 36 byte prefix
// "unexpected error: processing error: ".
const MaxWireErrorLength = 87

var kinds = []error{ErrValidation, ErrProtocolState, ErrProofFailure}

// Kind returns the kind of err, or nil if it has none.
func Kind(err error) error {
	for _, kind := range kinds {
		if xerrors.Is(err, kind) {
			return kind
		}
	}
	return nil
}

// WireError returns the text of err as a single line of at most
// MaxWireErrorLength bytes that starts with the kind of err.
func WireError(err error) error {
	if err == nil {
		return nil
	}
	text := strings.Join(strings.Fields(err.Error()), " ")
	if kind := Kind(err); kind != nil && !strings.HasPrefix(text, kind.Error()) {
		text = kind.Error() + ": " + text
	}
	if len(text) > MaxWireErrorLength {
		n := MaxWireErrorLength
		for n > 0 && !utf8.RuneStart(text[n]) {
			n--
		}
		text = text[:n]
	}
	return xerrors.New(text)
}

// Error is an error received from a remote node. It has the kind named in
// its text, and the frame where it was received.
type Error struct {
	err   error
	kind  error
	frame xerrors.Frame
}

// FromWire returns err with the kind its text starts with or contains, as
// written by WireError.
func FromWire(err error) error {
	if err == nil {
		return nil
	}
	e := &Error{err: err, frame: xerrors.Caller(1)}
	for _, kind := range kinds {
		if strings.Contains(err.Error(), kind.Error()+": ") {
			e.kind = kind
			break
		}
	}
	return e
}

func (e *Error) Error() string {
	return e.err.Error()
}

// Unwrap returns the next error in the chain.
func (e *Error) Unwrap() error {
	return e.err
}

// Is makes the error comparable to its kind.
func (e *Error) Is(target error) bool {
	return e.kind != nil && target == e.kind
}

// Format prints the error to the formatter.
func (e *Error) Format(f fmt.State, c rune) {
	xerrors.FormatError(e, f, c)
}

// FormatError prints the error to the printer. It prints
// the frame when the '+' is used in combination with 'v'.
func (e *Error) FormatError(p xerrors.Printer) error {
	p.Print(e.err.Error())
	if p.Detail() {
		e.frame.Format(p)
	}
	return nil
}
