package identity

import "errors"

// Error kinds returned by the identity provider, decoupled from the
// provider's own exception names and message texts.
var (
	ErrAccountExists    = errors.New("account already exists")
	ErrAlreadyConfirmed = errors.New("account already confirmed")
	ErrCodeMismatch     = errors.New("invalid confirmation code")
	ErrNotAuthorized    = errors.New("incorrect username or password")
	ErrNotConfirmed     = errors.New("account not confirmed")
	ErrRejected         = errors.New("request rejected by identity provider")
)

// Error carries an error kind together with the provider's own message.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Kind.Error() + ": " + e.Message }

func (e *Error) Unwrap() error { return e.Kind }

func newError(kind error, message string) error {
	return &Error{Kind: kind, Message: message}
}

// Reason returns the provider message for display, falling back to the
// full error text.
func Reason(err error) string {
	var e *Error
	if errors.As(err, &e) && e.Message != "" {
		return e.Message
	}
	return err.Error()
}
