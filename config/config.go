package config

import "math"

// Mode restricts which message kinds the parser accepts.
type Mode uint8

const (
	// Both accepts requests and responses, telling them apart by the start
	// line shape.
	Both Mode = iota + 1
	// RequestOnly rejects responses with a mode error.
	RequestOnly
	// ResponseOnly rejects requests with a mode error.
	ResponseOnly
)

func (m Mode) String() string {
	switch m {
	case Both:
		return "both"
	case RequestOnly:
		return "request-only"
	case ResponseOnly:
		return "response-only"
	default:
		return "unknown"
	}
}

type (
	StartLineSize struct {
		Default, Maximal int
	}

	HeadersSpace struct {
		Default, Maximal int
	}

	StartLine struct {
		// Size is the buffer storing the start line until it completes.
		// The Maximal boundary rejects the message once crossed, so setting
		// it too low makes long request targets fail with a limit error.
		Size StartLineSize
	}

	Headers struct {
		// Space limits the amount of memory occupied by the header section
		// of a single message, the buffered unterminated tail included.
		// Crossing the Maximal boundary is detected mid-section, before
		// the terminating empty line ever arrives.
		Space HeadersSpace
		// PairsPrealloc is the initial capacity of the header storage.
		PairsPrealloc int
	}

	Body struct {
		// MaxSize bounds the decoded body size in bytes. It applies to both
		// framings: a bigger content-length is rejected already at the
		// header stage, chunked bodies are rejected as soon as the running
		// total crosses the limit. math.MaxUint64 means unbounded.
		MaxSize uint64
	}
)

// Config holds everything tunable about the parser: the accepted message
// kinds, restrictions and pre-allocations.
//
// Always modify defaults returned via Default() instead of initializing the
// struct manually, otherwise zero-valued limits will reject everything.
type Config struct {
	Mode      Mode
	StartLine StartLine
	Headers   Headers
	Body      Body
}

// Default returns a well-balanced config. Limits follow common practice of
// web entities: start lines up to 8kb, header sections up to 16kb, bodies
// unbounded.
func Default() *Config {
	return &Config{
		Mode: Both,
		StartLine: StartLine{
			Size: StartLineSize{
				Default: 2 * 1024,
				Maximal: 8 * 1024,
			},
		},
		Headers: Headers{
			Space: HeadersSpace{
				Default: 1 * 1024,
				Maximal: 16 * 1024,
			},
			PairsPrealloc: 10,
		},
		Body: Body{
			MaxSize: math.MaxUint64,
		},
	}
}
