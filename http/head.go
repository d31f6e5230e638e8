package http

import (
	"github.com/cobalt-web/cobalt/http/method"
	"github.com/cobalt-web/cobalt/http/proto"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/cobalt-web/cobalt/kv"
)

// RequestHead carries everything known about a request once its header section
// is complete. The instance and its Headers storage are owned by the parser
// and recycled for the next message on the connection, so values that must
// outlive the callback have to be copied out.
type RequestHead struct {
	Method method.Method
	// Target is the request target exactly as it appeared on the wire. No
	// normalization or percent-decoding is applied.
	Target string
	Proto  proto.Proto
	// Headers keeps all header fields in wire order, names lowercased,
	// values verbatim with surrounding whitespace trimmed.
	Headers *kv.Storage
	// KeepAlive reports whether the connection survives this message,
	// combining the connection header with the protocol default.
	KeepAlive bool
	// Upgrade is set when an upgrade header was present.
	Upgrade bool
}

// Reset prepares the head for the next message, keeping allocations.
func (r *RequestHead) Reset() {
	r.Method = method.Unknown
	r.Target = ""
	r.Proto = proto.Unknown
	r.Headers.Clear()
	r.KeepAlive = false
	r.Upgrade = false
}

// ResponseHead is the response counterpart of RequestHead, with the same
// ownership rules.
type ResponseHead struct {
	Proto proto.Proto
	Code  status.Code
	// Reason is the reason phrase with surrounding whitespace trimmed.
	// May be empty.
	Reason    string
	Headers   *kv.Storage
	KeepAlive bool
	Upgrade   bool
}

// Reset prepares the head for the next message, keeping allocations.
func (r *ResponseHead) Reset() {
	r.Proto = proto.Unknown
	r.Code = 0
	r.Reason = ""
	r.Headers.Clear()
	r.KeepAlive = false
	r.Upgrade = false
}
