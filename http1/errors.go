package http1

import "errors"

// Caller errors, as opposed to wire errors carried by status.Error. Hitting
// one of these means the calling code drives the parser wrong, not that the
// peer sent garbage.
var (
	// ErrClosed is returned by Write and Resume once the parser is done for:
	// after a parse error, after the final message of a connection that isn't
	// keep-alive, or after Close.
	ErrClosed = errors.New("parser is closed")
	// ErrPaused is returned by Write while the parser is paused. Buffered
	// bytes are kept, the chunk of the offending call is not.
	ErrPaused = errors.New("parser is paused")
)
