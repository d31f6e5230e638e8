package stream

import (
	"bytes"
	"io"
	"log"

	"github.com/cobalt-web/cobalt/codec"
	"github.com/cobalt-web/cobalt/config"
	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/http1"
)

const defaultReadBuffer = 4096

// Logger is the logging dependency of the Scanner. *log.Logger satisfies it.
type Logger interface {
	Printf(fmt string, v ...any)
}

// Options tunes a Scanner. The zero value is fully usable.
type Options struct {
	// Config is handed to the underlying parser. Nil means config.Default().
	Config *config.Config
	// Codecs decode bodies whose content-encoding matches a codec token.
	// Bodies with no or unknown encoding are delivered as they came.
	Codecs []codec.Codec
	// Logger receives scanner diagnostics. Nil means log.Default().
	Logger Logger
	// LogMessages makes the scanner print a line per delivered message.
	LogMessages bool
	// ReadBuffer is the size of a single read off the source. Zero picks
	// the default of 4096 bytes.
	ReadBuffer int
}

// Scanner is the pull-style complement of the parser: instead of receiving
// callbacks, the caller asks for the next complete message. It reads the
// source lazily, so a Scanner over a live connection only consumes what the
// messages it was asked for require.
type Scanner struct {
	src         io.Reader
	parser      *http1.Parser
	buff        []byte
	queue       []*Message
	pending     *Message
	codecs      codec.Cache
	logger      Logger
	logMessages bool
	err         error
}

// NewScanner returns a Scanner consuming src.
func NewScanner(src io.Reader, opts Options) *Scanner {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.ReadBuffer == 0 {
		opts.ReadBuffer = defaultReadBuffer
	}

	s := &Scanner{
		src:         src,
		buff:        make([]byte, opts.ReadBuffer),
		codecs:      codec.NewCache(opts.Codecs),
		logger:      opts.Logger,
		logMessages: opts.LogMessages,
	}
	s.parser = http1.New(collector{s}, opts.Config)

	return s
}

// Next returns the next complete message. Messages completed before a parse
// error surfaced are delivered first, the error after them. A source that
// ends between messages yields io.EOF, one that ends mid-message yields
// io.ErrUnexpectedEOF.
func (s *Scanner) Next() (*Message, error) {
	for {
		if len(s.queue) > 0 {
			m := s.queue[0]
			s.queue = s.queue[1:]

			m, err := s.decode(m)
			if err == nil && s.logMessages {
				s.logMessage(m)
			}

			return m, err
		}

		if s.err != nil {
			return nil, s.err
		}

		n, err := s.src.Read(s.buff)
		if n > 0 {
			if werr := s.parser.Write(s.buff[:n]); werr != nil {
				s.err = werr
				continue
			}
		}
		if err != nil {
			if err == io.EOF && !s.parser.Idle() {
				err = io.ErrUnexpectedEOF
			}
			if s.err == nil {
				s.err = err
			}
		}
	}
}

// Messages drains the scanner, returning every remaining complete message.
// A clean end of the source is not an error.
func (s *Scanner) Messages() ([]*Message, error) {
	var all []*Message

	for {
		m, err := s.Next()
		switch err {
		case nil:
			all = append(all, m)
		case io.EOF:
			return all, nil
		default:
			return all, err
		}
	}
}

func (s *Scanner) decode(m *Message) (*Message, error) {
	token := m.Headers().Value("content-encoding")
	if token == "" || len(m.Body) == 0 {
		return m, nil
	}

	inst := s.codecs.Get(token)
	if inst == nil {
		s.logger.Printf("stream: no %q codec, delivering the body encoded", token)
		return m, nil
	}

	if err := inst.ResetDecompressor(bytes.NewReader(m.Body)); err != nil {
		return nil, err
	}

	plain, err := io.ReadAll(inst)
	if err != nil {
		return nil, err
	}

	m.Body = plain

	return m, nil
}

func (s *Scanner) logMessage(m *Message) {
	if m.Request != nil {
		s.logger.Printf("%s %s %d", m.Request.Method.String(), m.Request.Target, len(m.Body))
		return
	}

	s.logger.Printf("%s %d %d", m.Response.Proto.String(), m.Response.Code, len(m.Body))
}

// collector is the parser handler filling the scanner's queue. Heads are
// copied out right away, as the parser reuses them for the next message.
type collector struct {
	s *Scanner
}

func (c collector) OnRequestHead(head *http.RequestHead) error {
	c.s.pending = &Message{Request: copyRequestHead(head)}
	return nil
}

func (c collector) OnResponseHead(head *http.ResponseHead) error {
	c.s.pending = &Message{Response: copyResponseHead(head)}
	return nil
}

func (c collector) OnBody(chunk []byte) (http.Signal, error) {
	c.s.pending.Body = append(c.s.pending.Body, chunk...)
	return http.Continue, nil
}

func (c collector) OnComplete() error {
	c.s.queue = append(c.s.queue, c.s.pending)
	c.s.pending = nil
	return nil
}
