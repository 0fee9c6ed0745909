package remote

import (
	"errors"
	"fmt"
)

// Kind is the normalized failure taxonomy of the record service.
type Kind string

const (
	// KindConfig means required connection parameters are missing. Fatal.
	KindConfig Kind = "config"
	// KindTransport means the request never reached the service.
	KindTransport Kind = "transport"
	// KindService means the service answered with a non-success status.
	KindService Kind = "service"
	// KindDecode means the service answered 2xx with a body we cannot read.
	KindDecode Kind = "decode"
)

// Error wraps record service failures with a normalized category.
type Error struct {
	Kind       Kind
	Op         string
	StatusCode int
	Body       string
	Err        error
}

func (e *Error) Error() string {
	switch {
	case e.Kind == KindService && e.Body != "":
		return fmt.Sprintf("%s: HTTP %d: %s", e.Op, e.StatusCode, e.Body)
	case e.Kind == KindService:
		return fmt.Sprintf("%s: HTTP %d", e.Op, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s [%s]: %v", e.Op, e.Kind, e.Err)
	}
	return fmt.Sprintf("%s [%s]", e.Op, e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// KindOf extracts the category of a record service error.
func KindOf(err error) (Kind, bool) {
	var re *Error
	if errors.As(err, &re) {
		return re.Kind, true
	}
	return "", false
}

var (
	ErrMissingBaseURL     = errors.New("record service base URL is not configured")
	ErrMissingCredentials = errors.New("record service credentials are not configured")
)
