// Package stream adapts the push parser to pull-style consumption: a Scanner
// pumps an io.Reader through the parser and hands out complete messages that
// own all of their memory.
package stream

import (
	"strings"

	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/kv"
	"github.com/indigo-web/utils/uf"
	json "github.com/json-iterator/go"
)

// Message is one complete message lifted off the stream. Unlike the heads
// handed to parser callbacks it aliases no parser memory, so it may be kept
// around and used long after the scanner moved on.
type Message struct {
	// Request is set on request messages, Response on response ones.
	// Exactly one of the two is non-nil.
	Request  *http.RequestHead
	Response *http.ResponseHead
	// Body is the complete de-framed body. If a codec matched the
	// message's content-encoding, Body is the decoded form.
	Body []byte
}

// Headers returns the header section of whichever side the message is.
func (m *Message) Headers() *kv.Storage {
	if m.Request != nil {
		return m.Request.Headers
	}

	return m.Response.Headers
}

// Text returns the body as a string without copying.
func (m *Message) Text() string {
	return uf.B2S(m.Body)
}

// JSON decodes the body into model. Whether the body actually is JSON is the
// caller's business, the content-type header being the usual place to look.
func (m *Message) JSON(model any) error {
	iterator := json.ConfigDefault.BorrowIterator(m.Body)
	iterator.ReadVal(model)
	err := iterator.Error
	json.ConfigDefault.ReturnIterator(iterator)

	return err
}

func copyRequestHead(head *http.RequestHead) *http.RequestHead {
	return &http.RequestHead{
		Method:    head.Method,
		Target:    strings.Clone(head.Target),
		Proto:     head.Proto,
		Headers:   copyHeaders(head.Headers),
		KeepAlive: head.KeepAlive,
		Upgrade:   head.Upgrade,
	}
}

func copyResponseHead(head *http.ResponseHead) *http.ResponseHead {
	return &http.ResponseHead{
		Proto:     head.Proto,
		Code:      head.Code,
		Reason:    strings.Clone(head.Reason),
		Headers:   copyHeaders(head.Headers),
		KeepAlive: head.KeepAlive,
		Upgrade:   head.Upgrade,
	}
}

// copyHeaders clones the pairs and the strings themselves: strings exposed by
// the parser alias buffers that are recycled for the next message.
func copyHeaders(src *kv.Storage) *kv.Storage {
	dst := kv.NewPrealloc(src.Len())
	for _, pair := range src.Expose() {
		dst.Add(strings.Clone(pair.Key), strings.Clone(pair.Value))
	}

	return dst
}
