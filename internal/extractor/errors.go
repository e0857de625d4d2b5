package extractor

import "fmt"

// Kind classifies extraction failures for callers that map them to
// user-facing responses.
type Kind int

const (
	// KindMalformed covers unreadable, corrupt or text-less documents.
	KindMalformed Kind = iota + 1
	// KindCredential means the document is encrypted and the password
	// was missing or wrong.
	KindCredential
)

func (k Kind) String() string {
	switch k {
	case KindCredential:
		return "credential"
	case KindMalformed:
		return "malformed"
	default:
		return "unknown"
	}
}

// Error is returned by every extraction entry point.
type Error struct {
	Kind Kind
	Op   string
	Err  error
}

func (e *Error) Error() string {
	return fmt.Sprintf("pdf %s: %s: %v", e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same Kind, so errors.Is(err, ErrCredential)
// works regardless of Op.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind
}

// Sentinels for errors.Is.
var (
	ErrCredential = &Error{Kind: KindCredential, Op: "open", Err: fmt.Errorf("password required or incorrect")}
	ErrMalformed  = &Error{Kind: KindMalformed, Op: "open", Err: fmt.Errorf("unreadable document")}
)

func credentialError(op string, err error) error {
	return &Error{Kind: KindCredential, Op: op, Err: err}
}

func malformedError(op string, err error) error {
	return &Error{Kind: KindMalformed, Op: op, Err: err}
}
