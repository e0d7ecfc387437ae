// internal/blockchain/substrate/errors.go
package substrate

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrBlockNotFound is returned when the node has no block at the requested height
	ErrBlockNotFound = errors.New("block not found")

	// ErrInvalidResponse is returned when the node answers with malformed data
	ErrInvalidResponse = errors.New("invalid RPC response")

	// ErrShortInput is returned when a SCALE value ends before all fields are read
	ErrShortInput = errors.New("unexpected end of SCALE input")

	// ErrInvalidAddress is returned for SS58 strings that fail to decode or verify
	ErrInvalidAddress = errors.New("invalid SS58 address")
)

// Error describes a failed JSON-RPC call
type Error struct {
	Err      error
	Endpoint string
	Method   string
}

// Error implements the error interface
func (e *Error) Error() string {
	return fmt.Sprintf("RPC error [%s] at %s: %v", e.Method, e.Endpoint, e.Err)
}

// Unwrap returns the underlying error
func (e *Error) Unwrap() error {
	return e.Err
}

// NewError wraps err with the call context and records a stack trace
func NewError(err error, endpoint, method string) error {
	return errors.WithStack(&Error{
		Err:      err,
		Endpoint: endpoint,
		Method:   method,
	})
}
