package http1

import (
	"bytes"
	"fmt"
	"math"

	"github.com/cobalt-web/cobalt/config"
	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/http/method"
	"github.com/cobalt-web/cobalt/http/proto"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/cobalt-web/cobalt/kv"
	"github.com/indigo-web/utils/buffer"
	"github.com/indigo-web/utils/uf"
	ascii "github.com/scott-ainsworth/go-ascii"
)

const versionPrefix = "HTTP/"

// framing is the per-message body accounting. It is reset wholesale between
// messages of one connection.
type framing struct {
	contentLength    uint64
	hasContentLength bool
	chunked          bool
	sawTransferEnc   bool
	connection       string
	upgrade          bool
	bodyRead         uint64
	chunkSize        uint64
	chunkRead        uint64
	lastChunk        bool
	headersSize      int
}

// Parser is an incremental HTTP/1.x message parser. Byte chunks pushed via
// Write come out the other side as head, body and completion events on the
// Handler, in strict wire order. One instance serves exactly one connection
// and owns all of its state, so instances are independent and free to run on
// different goroutines, while a single instance must never be shared without
// external synchronization.
type Parser struct {
	cfg     *config.Config
	handler http.Handler

	cur   cursor
	state parseState
	fr    framing

	isRequest bool
	keepAlive bool

	headers  *kv.Storage
	reqHead  *http.RequestHead
	respHead *http.ResponseHead

	startLineBuff *buffer.Buffer
	headersBuff   *buffer.Buffer

	paused bool
	closed bool
}

// New constructs a parser pushing events into handler. A nil cfg means
// config.Default().
func New(handler http.Handler, cfg *config.Config) *Parser {
	if cfg == nil {
		cfg = config.Default()
	}

	headers := kv.NewPrealloc(cfg.Headers.PairsPrealloc)

	return &Parser{
		cfg:           cfg,
		handler:       handler,
		state:         eAwaitingStartLine,
		headers:       headers,
		reqHead:       &http.RequestHead{Headers: headers},
		respHead:      &http.ResponseHead{Headers: headers},
		startLineBuff: buffer.New(cfg.StartLine.Size.Default, cfg.StartLine.Size.Maximal),
		headersBuff:   buffer.New(cfg.Headers.Space.Default, cfg.Headers.Space.Maximal),
	}
}

// Write feeds one chunk and drives the machine forward until the buffered
// bytes run out, a callback pauses the parser, or a fatal error occurs. The
// returned error is either a status.Error describing why the stream is
// garbage, an error propagated from a callback, or one of the caller errors
// of this package. Any non-nil error except ErrPaused leaves the parser
// closed.
func (p *Parser) Write(data []byte) error {
	if p.closed {
		return ErrClosed
	}

	if p.paused {
		return ErrPaused
	}

	p.cur.write(data)

	return p.run()
}

// Pause freezes the parser before its next step, the same way returning
// Pause from OnBody does. Already buffered bytes are kept.
func (p *Parser) Pause() {
	if !p.closed {
		p.paused = true
	}
}

// Resume lifts a pause and immediately replays the buffered remainder.
// Resuming a parser that isn't paused is a no-op.
func (p *Parser) Resume() error {
	if p.closed {
		return ErrClosed
	}

	if !p.paused {
		return nil
	}

	p.paused = false

	return p.run()
}

// Idle reports whether the parser sits exactly between messages: nothing
// buffered, no message half-read. A finished parser counts as idle, which
// makes Idle the right check for whether an EOF is a clean one.
func (p *Parser) Idle() bool {
	return p.closed || (p.state == eAwaitingStartLine && p.cur.pending() == 0)
}

// Close discards all buffered state and makes every subsequent Write and
// Resume fail with ErrClosed. Close never emits callbacks and is idempotent.
func (p *Parser) Close() {
	p.closed = true
	p.paused = false
	p.cur.discard()
}

func (p *Parser) run() error {
	for {
		proceed, err := p.step()
		if err != nil {
			p.closed = true
			p.cur.discard()

			return err
		}

		if !proceed || p.paused || p.closed {
			return nil
		}
	}
}

// step advances the machine by one transition. It either consumes buffered
// bytes and reports progress, or reports that it is starving for input.
func (p *Parser) step() (proceed bool, err error) {
	switch p.state {
	case eAwaitingStartLine:
		return p.startLine()
	case eReadingHeaderName, eReadingHeaderValue:
		return p.headerField()
	case eHeadersDone:
		return p.headersDone()
	case eReadingFixedBody:
		return p.fixedBody()
	case eReadingChunkSize:
		return p.chunkSize()
	case eReadingChunkData:
		return p.chunkData()
	case eReadingChunkTrailer:
		return p.chunkTrailer()
	case eMessageComplete:
		return p.complete()
	default:
		panic(fmt.Sprintf("BUG: unexpected state: %v", p.state))
	}
}

func (p *Parser) startLine() (bool, error) {
	line, ok := p.cur.line()
	if !ok {
		if p.cur.pending() > p.cfg.StartLine.Size.Maximal {
			return false, status.ErrStartLineTooLong
		}

		return false, nil
	}

	if len(line)+len(crlf) > p.cfg.StartLine.Size.Maximal {
		return false, status.ErrStartLineTooLong
	}

	if bytes.IndexByte(line, 0) != -1 {
		return false, status.ErrBadStartLine
	}

	if bytes.HasPrefix(line, []byte(versionPrefix)) {
		return p.statusLine(line)
	}

	return p.requestLine(line)
}

func (p *Parser) requestLine(line []byte) (bool, error) {
	if p.cfg.Mode == config.ResponseOnly {
		return false, status.ErrUnexpectedRequest
	}

	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return false, status.ErrBadStartLine
	}

	m := method.Parse(uf.B2S(line[:sp]))
	if m == method.Unknown {
		return false, status.ErrBadMethod
	}

	rest := line[sp+1:]
	target := rest
	// a two-field request line carries no version literal at all
	version := proto.HTTP09

	if sp = bytes.IndexByte(rest, ' '); sp != -1 {
		target = rest[:sp]
		versionBytes := rest[sp+1:]
		if bytes.IndexByte(versionBytes, ' ') != -1 {
			return false, status.ErrBadStartLine
		}

		version = proto.FromBytes(versionBytes)
		if version == proto.Unknown {
			return false, status.ErrBadVersion
		}
	}

	if len(target) == 0 {
		return false, status.ErrBadStartLine
	}

	for _, c := range target {
		if !ascii.IsPrint(c) {
			return false, status.ErrBadTarget
		}
	}

	if !p.startLineBuff.Append(target) {
		return false, status.ErrStartLineTooLong
	}

	p.isRequest = true
	p.reqHead.Method = m
	p.reqHead.Target = uf.B2S(p.startLineBuff.Finish())
	p.reqHead.Proto = version
	p.state = eReadingHeaderName

	return true, nil
}

func (p *Parser) statusLine(line []byte) (bool, error) {
	if p.cfg.Mode == config.RequestOnly {
		return false, status.ErrUnexpectedResponse
	}

	sp := bytes.IndexByte(line, ' ')
	if sp == -1 {
		return false, status.ErrBadStartLine
	}

	version := proto.FromBytes(line[:sp])
	if version == proto.Unknown || version == proto.HTTP09 {
		return false, status.ErrBadVersion
	}

	rest := line[sp+1:]
	codeBytes := rest
	var reason []byte

	if sp = bytes.IndexByte(rest, ' '); sp != -1 {
		codeBytes = rest[:sp]
		reason = rest[sp+1:]
	}

	code, valid := parseStatusCode(codeBytes)
	if !valid {
		return false, status.ErrBadStatus
	}

	if !p.startLineBuff.Append(trimWS(reason)) {
		return false, status.ErrStartLineTooLong
	}

	p.isRequest = false
	p.respHead.Proto = version
	p.respHead.Code = code
	p.respHead.Reason = uf.B2S(p.startLineBuff.Finish())
	p.state = eReadingHeaderName

	return true, nil
}

func (p *Parser) headerField() (bool, error) {
	line, ok := p.cur.line()
	if !ok {
		// the unterminated tail counts against the limit too, so that a
		// never-ending header line fails fast instead of buffering forever
		if p.fr.headersSize+p.cur.pending() > p.cfg.Headers.Space.Maximal {
			return false, status.ErrHeadersTooLarge
		}

		if bytes.IndexByte(p.cur.window(), ':') == -1 {
			p.state = eReadingHeaderName
		} else {
			p.state = eReadingHeaderValue
		}

		return false, nil
	}

	if len(line) == 0 {
		p.state = eHeadersDone

		return true, nil
	}

	p.fr.headersSize += len(line) + len(crlf)
	if p.fr.headersSize > p.cfg.Headers.Space.Maximal {
		return false, status.ErrHeadersTooLarge
	}

	colon := bytes.IndexByte(line, ':')
	if colon == -1 {
		return false, status.ErrMissingColon
	}

	name := line[:colon]
	if len(name) == 0 {
		return false, status.ErrBadHeader
	}

	for i, c := range name {
		switch {
		// rejecting whitespace here is what kills obs-fold continuations
		case c <= ' ' || c >= 0x7F:
			return false, status.ErrBadHeader
		case c >= 'A' && c <= 'Z':
			name[i] = c + 0x20
		}
	}

	rawValue := trimWS(line[colon+1:])
	for _, c := range rawValue {
		// no control bytes except tab, so a smuggled CR or LF cannot
		// survive into a stored value
		if c < 0x20 && c != '\t' {
			return false, status.ErrBadHeaderValue
		}
	}

	if !p.headersBuff.Append(name) {
		return false, status.ErrHeadersTooLarge
	}

	key := uf.B2S(p.headersBuff.Finish())

	if !p.headersBuff.Append(rawValue) {
		return false, status.ErrHeadersTooLarge
	}

	value := uf.B2S(p.headersBuff.Finish())
	p.headers.Add(key, value)

	return true, p.updateFraming(key, value)
}

// updateFraming tracks the framing-relevant fields. Keys arrive already
// lowercased.
func (p *Parser) updateFraming(key, value string) error {
	switch key {
	case "content-length":
		if p.fr.hasContentLength {
			return status.ErrDuplicateContentLength
		}

		if p.fr.sawTransferEnc {
			return status.ErrMixedFraming
		}

		length, err := parseContentLength(value, p.cfg.Body.MaxSize)
		if err != nil {
			return err
		}

		p.fr.contentLength = length
		p.fr.hasContentLength = true
	case "transfer-encoding":
		if p.fr.hasContentLength {
			return status.ErrMixedFraming
		}

		p.fr.sawTransferEnc = true
		if containsFold(value, "chunked") {
			p.fr.chunked = true
		}
	case "connection":
		p.fr.connection = value
	case "upgrade":
		p.fr.upgrade = true
	}

	return nil
}

func (p *Parser) headersDone() (bool, error) {
	p.keepAlive = p.shouldKeepAlive()

	var err error
	if p.isRequest {
		p.reqHead.KeepAlive = p.keepAlive
		p.reqHead.Upgrade = p.fr.upgrade
		err = p.handler.OnRequestHead(p.reqHead)
	} else {
		p.respHead.KeepAlive = p.keepAlive
		p.respHead.Upgrade = p.fr.upgrade
		err = p.handler.OnResponseHead(p.respHead)
	}
	if err != nil {
		return false, err
	}

	switch {
	case !p.expectBody():
		p.state = eMessageComplete
	case p.fr.chunked:
		p.state = eReadingChunkSize
	default:
		p.state = eReadingFixedBody
	}

	return true, nil
}

func (p *Parser) shouldKeepAlive() bool {
	switch {
	case containsFold(p.fr.connection, "close"):
		return false
	case containsFold(p.fr.connection, "keep-alive"):
		return true
	default:
		return p.messageProto() == proto.HTTP11
	}
}

func (p *Parser) messageProto() proto.Proto {
	if p.isRequest {
		return p.reqHead.Proto
	}

	return p.respHead.Proto
}

func (p *Parser) expectBody() bool {
	if !p.isRequest {
		code := p.respHead.Code
		if code < 200 || code == status.NoContent || code == status.NotModified {
			return false
		}
	}

	if p.fr.chunked {
		return true
	}

	return p.fr.hasContentLength && p.fr.contentLength > 0
}

func (p *Parser) fixedBody() (bool, error) {
	window := p.cur.window()
	if len(window) == 0 {
		return false, nil
	}

	n := p.fr.contentLength - p.fr.bodyRead
	if uint64(len(window)) < n {
		n = uint64(len(window))
	}

	p.fr.bodyRead += n
	if p.fr.bodyRead > p.cfg.Body.MaxSize {
		return false, status.ErrBodyTooLarge
	}

	chunk := window[:n]
	p.cur.advance(int(n))

	signal, err := p.handler.OnBody(chunk)
	if err != nil {
		return false, err
	}

	if signal == http.Pause {
		p.paused = true
	}

	if p.fr.bodyRead == p.fr.contentLength {
		p.state = eMessageComplete
	}

	return true, nil
}

func (p *Parser) complete() (bool, error) {
	if err := p.handler.OnComplete(); err != nil {
		return false, err
	}

	if !p.keepAlive {
		p.closed = true
		p.cur.discard()

		return false, nil
	}

	p.resetMessage()

	return true, nil
}

func (p *Parser) resetMessage() {
	p.fr = framing{}
	p.reqHead.Reset()
	p.respHead.Reset()
	p.startLineBuff.Clear()
	p.headersBuff.Clear()
	p.state = eAwaitingStartLine
}

func parseStatusCode(b []byte) (status.Code, bool) {
	if len(b) != 3 {
		return 0, false
	}

	var code status.Code
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}

		code = code*10 + status.Code(c-'0')
	}

	return code, code >= 100
}

func parseContentLength(value string, limit uint64) (uint64, error) {
	if len(value) == 0 || value[0] == '+' {
		return 0, status.ErrBadContentLength
	}

	var n uint64
	for i := 0; i < len(value); i++ {
		c := value[i]
		if c < '0' || c > '9' {
			return 0, status.ErrBadContentLength
		}

		digit := uint64(c - '0')
		if n > (math.MaxUint64-digit)/10 {
			return 0, status.ErrBadContentLength
		}

		n = n*10 + digit
	}

	if n > limit {
		return 0, status.ErrBodyTooLarge
	}

	return n, nil
}

func trimWS(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\t') {
		start++
	}

	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\t') {
		end--
	}

	return b[start:end]
}

// containsFold reports whether s contains token case-insensitively. The
// token must be given lowercase.
func containsFold(s, token string) bool {
	if len(token) == 0 {
		return true
	}

outer:
	for i := 0; i+len(token) <= len(s); i++ {
		for j := 0; j < len(token); j++ {
			if lower(s[i+j]) != token[j] {
				continue outer
			}
		}

		return true
	}

	return false
}

// lower folds ASCII uppercase only, leaving every other byte untouched.
func lower(c byte) byte {
	if c >= 'A' && c <= 'Z' {
		c += 0x20
	}

	return c
}
