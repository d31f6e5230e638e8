package status

import "errors"

// Kind classifies parse failures. Every kind is terminal: the message it
// occurred in cannot be recovered, and neither can the byte stream after it.
type Kind uint8

const (
	// KindGrammar marks bytes that violate the wire grammar itself: malformed
	// start lines, prohibited characters, missing separators.
	KindGrammar Kind = iota + 1
	// KindLimit marks messages that exceed a configured bound.
	KindLimit
	// KindFraming marks conflicting or unusable body length information,
	// the request smuggling surface.
	KindFraming
	// KindChunk marks malformed chunked transfer coding.
	KindChunk
	// KindMode marks a message of a type the parser was configured to reject.
	KindMode
)

func (k Kind) String() string {
	switch k {
	case KindGrammar:
		return "grammar"
	case KindLimit:
		return "limit"
	case KindFraming:
		return "framing"
	case KindChunk:
		return "chunk"
	case KindMode:
		return "mode"
	default:
		return "unknown"
	}
}

type Error struct {
	Message string
	Kind    Kind
}

func NewError(kind Kind, message string) error {
	return Error{
		Kind:    kind,
		Message: message,
	}
}

func (e Error) Error() string {
	return e.Message
}

// KindOf reports the Kind of an error produced by this package, or zero for
// foreign errors.
func KindOf(err error) Kind {
	var e Error
	if errors.As(err, &e) {
		return e.Kind
	}

	return 0
}

var (
	ErrBadStartLine   = NewError(KindGrammar, "malformed start line")
	ErrBadMethod      = NewError(KindGrammar, "request method is not supported")
	ErrBadVersion     = NewError(KindGrammar, "HTTP version not supported")
	ErrBadStatus      = NewError(KindGrammar, "malformed response status code")
	ErrBadTarget      = NewError(KindGrammar, "prohibited characters in request target")
	ErrBadHeader      = NewError(KindGrammar, "prohibited characters in header name")
	ErrBadHeaderValue = NewError(KindGrammar, "prohibited characters in header value")
	ErrMissingColon   = NewError(KindGrammar, "header line misses a colon")

	ErrStartLineTooLong = NewError(KindLimit, "start line is too long")
	ErrHeadersTooLarge  = NewError(KindLimit, "too large headers section")
	ErrBodyTooLarge     = NewError(KindLimit, "message body is too large")

	ErrDuplicateContentLength = NewError(KindFraming, "duplicate content-length")
	ErrBadContentLength       = NewError(KindFraming, "malformed content-length value")
	ErrMixedFraming           = NewError(KindFraming, "content-length conflicts with transfer-encoding")

	ErrBadChunk        = NewError(KindChunk, "malformed chunk-encoded data")
	ErrChunkTooLarge   = NewError(KindChunk, "chunk size is too large")
	ErrMissingChunkEnd = NewError(KindChunk, "expected line terminator after chunk data")

	ErrUnexpectedRequest  = NewError(KindMode, "unexpected request message")
	ErrUnexpectedResponse = NewError(KindMode, "unexpected response message")
)
