package merger

import (
	"errors"
	"fmt"

	"github.com/davidvella/merger/keydef"
	"github.com/davidvella/merger/source"
)

var (
	// ErrProtocol is returned when the session API is used out of order.
	ErrProtocol = errors.New("merger: protocol misuse")
	// ErrClosed is returned by every call on a closed session.
	ErrClosed = fmt.Errorf("%w: session is closed", ErrProtocol)
	// ErrConfig matches key definition errors returned by New.
	ErrConfig = keydef.ErrConfig
	// ErrMalformedInput matches errors caused by bad envelopes, bad tuple
	// bytes or non-tuple values produced by function sources.
	ErrMalformedInput = source.ErrMalformed
	// ErrResourceExhausted matches every *ResourceError.
	ErrResourceExhausted = errors.New("merger: resource exhausted")
)

// ResourceError reports a failed allocation.
type ResourceError struct {
	Size int    // bytes requested
	What string // what the memory was for
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("merger: failed to allocate %d bytes for %s", e.Size, e.What)
}

func (e *ResourceError) Unwrap() error { return ErrResourceExhausted }
