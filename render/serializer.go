// Package render serializes message heads and bodies back into their wire
// form. It is the exact dual of the parser: output produced here parses back
// into the same events.
package render

import (
	"io"
	"log"
	"strconv"

	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/http/proto"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/cobalt-web/cobalt/kv"
	"github.com/indigo-web/utils/strcomp"
)

const (
	crlf    = "\r\n"
	colonsp = ": "

	contentLength    = "Content-Length: "
	transferEncoding = "Transfer-Encoding: "
)

// minimalChunkBuffSize defines the lowest accepted size of the streaming
// buffer. Chunked framing needs room for the hex length and two CRLFs besides
// the data itself
const minimalChunkBuffSize = 16

var chunkedFinalizer = []byte("0\r\n\r\n")

// Body describes a message payload and thereby chooses its framing: byte
// payloads and sized streams travel with a Content-Length, unsized streams
// are chunked.
type Body struct {
	content []byte
	stream  io.Reader
	size    int
	chunked bool
}

// Bytes frames an in-memory payload with its exact Content-Length. A nil
// slice is a legal empty body.
func Bytes(b []byte) Body {
	return Body{content: b, size: len(b)}
}

// SizedStream frames a reader of known length with Content-Length, streaming
// it through the serializer's buffer.
func SizedStream(r io.Reader, size int) Body {
	return Body{stream: r, size: size}
}

// Stream frames a reader of unknown length with chunked transfer encoding.
func Stream(r io.Reader) Body {
	return Body{stream: r, chunked: true}
}

type Serializer struct {
	buff []byte
	// chunkBuff isn't allocated until a stream body actually shows up, which
	// keeps byte-payload-only users from paying for it
	chunkBuff      []byte
	chunkBuffSize  int
	defaultHeaders defaultHeaders
}

// NewSerializer constructs a serializer writing through buff. Default headers
// are rendered into every message unless the head carries a header with the
// same name.
func NewSerializer(buff []byte, chunkBuffSize int, defHdrs map[string]string) *Serializer {
	if chunkBuffSize < minimalChunkBuffSize {
		log.Printf("misconfiguration: chunk buffer size is set to %d, "+
			"however minimal possible value is %d. Setting it hard to %d\n",
			chunkBuffSize, minimalChunkBuffSize, minimalChunkBuffSize,
		)

		chunkBuffSize = minimalChunkBuffSize
	}

	return &Serializer{
		buff:           buff[:0],
		chunkBuffSize:  chunkBuffSize,
		defaultHeaders: processDefaultHeaders(defHdrs),
	}
}

// WriteRequest renders a complete request. An HTTP/0.9 head renders as the
// bare request line, as there is nowhere to put headers or a body in that
// protocol.
func (s *Serializer) WriteRequest(w io.Writer, head *http.RequestHead, body Body) error {
	defer s.clear()

	s.buff = append(s.buff, head.Method.String()...)
	s.sp()
	s.buff = append(s.buff, head.Target...)

	if head.Proto == proto.HTTP09 {
		s.crlf()

		return s.flush(w)
	}

	s.sp()
	s.renderProtocol(head.Proto)
	s.crlf()

	return s.finish(w, head.Headers, body)
}

// WriteResponse renders a complete response.
func (s *Serializer) WriteResponse(w io.Writer, head *http.ResponseHead, body Body) error {
	defer s.clear()

	s.renderProtocol(head.Proto)
	s.sp()
	s.renderStatusLine(head)

	return s.finish(w, head.Headers, body)
}

func (s *Serializer) renderStatusLine(head *http.ResponseHead) {
	s.buff = strconv.AppendUint(s.buff, uint64(head.Code), 10)

	reason := head.Reason
	if reason == "" {
		reason = status.Text(head.Code)
	}

	if len(reason) > 0 {
		s.sp()
		s.buff = append(s.buff, reason...)
	}

	s.crlf()
}

func (s *Serializer) finish(w io.Writer, headers *kv.Storage, body Body) error {
	s.renderHeaders(headers)

	switch {
	case body.chunked:
		s.renderKnownHeader(transferEncoding, "chunked")
		s.crlf()
		if err := s.flush(w); err != nil {
			return err
		}

		return s.writeChunkedBody(body.stream, w)
	case body.stream != nil:
		s.renderContentLength(int64(body.size))
		s.crlf()
		if err := s.flush(w); err != nil {
			return err
		}

		return s.writePlainBody(body.stream, w)
	default:
		s.renderContentLength(int64(len(body.content)))
		s.crlf()
		s.buff = append(s.buff, body.content...)

		return s.flush(w)
	}
}

func (s *Serializer) renderHeaders(headers *kv.Storage) {
	if headers != nil {
		for _, header := range headers.Expose() {
			// framing is for the serializer to decide, stored framing
			// headers would only conflict with it
			if strcomp.EqualFold(header.Key, "content-length") ||
				strcomp.EqualFold(header.Key, "transfer-encoding") {
				continue
			}

			s.renderHeader(header)
			s.defaultHeaders.Exclude(header.Key)
		}
	}

	for _, header := range s.defaultHeaders {
		if header.Excluded {
			continue
		}

		s.buff = append(s.buff, header.Full...)
	}
}

func (s *Serializer) writePlainBody(r io.Reader, w io.Writer) error {
	s.growChunkBuff()

	for {
		n, err := r.Read(s.chunkBuff)

		if n > 0 {
			if _, werr := w.Write(s.chunkBuff[:n]); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			return nil
		default:
			return err
		}
	}
}

func (s *Serializer) writeChunkedBody(r io.Reader, w io.Writer) error {
	const (
		hexValueOffset = 8
		crlfSize       = 1 /* CR */ + 1 /* LF */
		buffOffset     = hexValueOffset + crlfSize
	)

	s.growChunkBuff()

	for {
		n, err := r.Read(s.chunkBuff[buffOffset : len(s.chunkBuff)-crlfSize])

		if n > 0 {
			// the hex length is rendered right-aligned against the fixed
			// offset, the unused prefix is simply not sent
			buff := strconv.AppendUint(s.chunkBuff[:0], uint64(n), 16)
			blankSpace := hexValueOffset - len(buff)
			copy(s.chunkBuff[blankSpace:], buff)
			copy(s.chunkBuff[hexValueOffset:], crlf)
			copy(s.chunkBuff[buffOffset+n:], crlf)

			if _, werr := w.Write(s.chunkBuff[blankSpace : buffOffset+n+crlfSize]); werr != nil {
				return werr
			}
		}

		switch err {
		case nil:
		case io.EOF:
			_, werr := w.Write(chunkedFinalizer)

			return werr
		default:
			return err
		}
	}
}

func (s *Serializer) growChunkBuff() {
	if len(s.chunkBuff) == 0 {
		s.chunkBuff = make([]byte, s.chunkBuffSize)
	}
}

// renderHeader writes a complete header field line including the trailing
// CRLF.
func (s *Serializer) renderHeader(header kv.Pair) {
	s.buff = append(s.buff, header.Key...)
	s.colonsp()
	s.buff = append(s.buff, header.Value...)
	s.crlf()
}

func (s *Serializer) renderContentLength(value int64) {
	s.buff = strconv.AppendInt(append(s.buff, contentLength...), value, 10)
	s.crlf()
}

// renderKnownHeader differs from renderHeader only by the key being known to
// need no separator rendering.
func (s *Serializer) renderKnownHeader(key, value string) {
	s.buff = append(s.buff, key...)
	s.buff = append(s.buff, value...)
	s.crlf()
}

func (s *Serializer) renderProtocol(protocol proto.Proto) {
	if protocol == proto.Unknown {
		// heads are sometimes built by hand and never told their version.
		// The only sensible guess is the latest one supported
		protocol = proto.HTTP11
	}

	s.buff = append(s.buff, protocol.String()...)
}

func (s *Serializer) sp() {
	s.buff = append(s.buff, ' ')
}

func (s *Serializer) colonsp() {
	s.buff = append(s.buff, colonsp...)
}

func (s *Serializer) crlf() {
	s.buff = append(s.buff, crlf...)
}

func (s *Serializer) flush(w io.Writer) error {
	if len(s.buff) == 0 {
		return nil
	}

	_, err := w.Write(s.buff)
	s.buff = s.buff[:0]

	return err
}

func (s *Serializer) clear() {
	s.buff = s.buff[:0]
	s.defaultHeaders.Reset()
}

func processDefaultHeaders(hdrs map[string]string) defaultHeaders {
	processed := make(defaultHeaders, 0, len(hdrs))

	for key, value := range hdrs {
		full := key + colonsp + value + crlf
		processed = append(processed, defaultHeader{
			// only the freshly built line is retained, letting the GC
			// release the original map
			Key:  full[:len(key)],
			Full: full,
		})
	}

	return processed
}

type defaultHeader struct {
	Excluded bool
	Key      string
	Full     string
}

type defaultHeaders []defaultHeader

func (d defaultHeaders) Exclude(key string) {
	for i, header := range d {
		if strcomp.EqualFold(header.Key, key) {
			header.Excluded = true
			d[i] = header

			return
		}
	}
}

func (d defaultHeaders) Reset() {
	for i := range d {
		d[i].Excluded = false
	}
}
