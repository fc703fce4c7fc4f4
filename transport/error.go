package transport

import (
	"fmt"
	"net"

	"github.com/pkg/errors"
)

// Error is a network level failure: the request never produced a response.
type Error struct {
	Method string
	Url    string
	Err    error
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s %s could not be completed: %s", e.Method, e.Url, e.Err)
}

func (e *Error) Cause() error {
	return e.Err
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Timeout() bool {
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}
