package http1

import (
	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/cobalt-web/cobalt/internal/hexconv"
	ascii "github.com/scott-ainsworth/go-ascii"
)

// maxChunkSizeDigits caps the hex literal of a chunk size. Sixteen nibbles
// fill a uint64 exactly, so the accumulator below cannot overflow.
const maxChunkSizeDigits = 16

func (p *Parser) chunkSize() (bool, error) {
	line, ok := p.cur.line()
	if !ok {
		return false, nil
	}

	if len(line) == 0 || hexconv.Halfbyte[line[0]] == 0xFF {
		return false, status.ErrBadChunk
	}

	var (
		size   uint64
		digits int
	)

	i := 0
	for ; i < len(line); i++ {
		val := hexconv.Halfbyte[line[i]]
		if val == 0xFF {
			break
		}

		if digits++; digits > maxChunkSizeDigits {
			return false, status.ErrChunkTooLarge
		}

		size = size<<4 | uint64(val)
	}

	// past the literal only whitespace and an extension may follow. The
	// extension is ignored, control bytes in it are still fatal.
	for ; i < len(line); i++ {
		if line[i] == ' ' || line[i] == '\t' {
			continue
		}

		if line[i] != ';' {
			return false, status.ErrBadChunk
		}

		break
	}

	for ; i < len(line); i++ {
		if line[i] != '\t' && !ascii.IsPrint(line[i]) {
			return false, status.ErrBadChunk
		}
	}

	if size == 0 {
		p.fr.lastChunk = true
		p.state = eReadingChunkTrailer
	} else {
		p.fr.chunkSize = size
		p.fr.chunkRead = 0
		p.state = eReadingChunkData
	}

	return true, nil
}

func (p *Parser) chunkData() (bool, error) {
	window := p.cur.window()
	if len(window) == 0 {
		return false, nil
	}

	n := p.fr.chunkSize - p.fr.chunkRead
	if uint64(len(window)) < n {
		n = uint64(len(window))
	}

	p.fr.chunkRead += n
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

	if p.fr.chunkRead == p.fr.chunkSize {
		p.state = eReadingChunkTrailer
	}

	return true, nil
}

// chunkTrailer expects the CRLF closing a chunk, and nothing else: trailer
// fields after the terminal chunk are rejected, not skipped.
func (p *Parser) chunkTrailer() (bool, error) {
	window := p.cur.window()
	if len(window) == 0 {
		return false, nil
	}

	if window[0] != '\r' {
		return false, status.ErrMissingChunkEnd
	}

	if len(window) < 2 {
		return false, nil
	}

	if window[1] != '\n' {
		return false, status.ErrMissingChunkEnd
	}

	p.cur.advance(2)

	if p.fr.lastChunk {
		p.state = eMessageComplete
	} else {
		p.state = eReadingChunkSize
	}

	return true, nil
}
