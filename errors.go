package wirebit

import (
	"errors"
	"fmt"
)

// Error taxonomy per the wirebit link contract. Callers switch on these
// with errors.Is; adapters may wrap them with additional context via
// fmt.Errorf("%w", ...).
var (
	// ErrInvalidArgument signals a bad DLC, undersized frame, wrong
	// frame type presented to an adapter, or a corrupt record length.
	ErrInvalidArgument = errors.New("wirebit: invalid argument")

	// ErrFormat signals a magic or version mismatch on decode.
	ErrFormat = errors.New("wirebit: format error")

	// ErrTimeout signals a ring that is momentarily empty or full, or a
	// frame that is not yet due for delivery. Callers retry after an
	// external wait; wirebit never retries internally.
	ErrTimeout = errors.New("wirebit: timeout")

	// ErrIOError signals an unexpected OS failure from an underlying
	// adapter (outside this module's core).
	ErrIOError = errors.New("wirebit: I/O error")

	// ErrNotFound signals a missing OS interface or shared-memory
	// segment when attaching rather than creating.
	ErrNotFound = errors.New("wirebit: not found")

	// ErrClosed is the sentinel for use of a link or endpoint after
	// Close. No Link or endpoint in this module returns it: use after
	// Close is not detected.
	ErrClosed = errors.New("wirebit: closed")

	// ErrCorrupt signals ring corruption detected by pop_frame: a
	// record length outside (0, capacity]. It wraps ErrInvalidArgument,
	// so errors.Is matches either. The ring must be recreated; wirebit
	// does not attempt to resynchronize.
	ErrCorrupt = fmt.Errorf("%w: ring corrupt", ErrInvalidArgument)
)
