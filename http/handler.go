package http

// Signal is returned by OnBody to steer the parser.
type Signal uint8

const (
	// Continue lets the parser keep going.
	Continue Signal = iota + 1
	// Pause freezes the parser right after the current chunk. No further
	// callbacks fire until Resume is called; bytes already received stay
	// buffered.
	Pause
)

// Handler receives parse events. All callbacks are invoked synchronously
// from Write or Resume, strictly in wire order: a head first, body chunks
// in the order their bytes arrived, then completion. With pipelined
// messages the completion of one always precedes the head of the next.
//
// Returning a non-nil error from any callback kills the parser; the error
// is handed back to the Write caller as-is.
type Handler interface {
	// OnRequestHead fires once the header section of a request is fully
	// parsed and validated. The head is only valid until the callback
	// returns.
	OnRequestHead(head *RequestHead) error
	// OnResponseHead is the response counterpart of OnRequestHead.
	OnResponseHead(head *ResponseHead) error
	// OnBody fires for every decoded piece of the message body: the
	// payload of both framings is delivered in wire order, chunked
	// framing metadata stripped. The chunk aliases the parser's buffer
	// and must not be retained after the callback returns.
	OnBody(chunk []byte) (Signal, error)
	// OnComplete fires when the message ends. Bodiless messages complete
	// immediately after their head callback.
	OnComplete() error
}
