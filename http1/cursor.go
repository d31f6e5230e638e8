package http1

import "bytes"

var crlf = []byte("\r\n")

// cursor accumulates incoming chunks and presents the unread remainder as a
// single contiguous window. Bytes before the read position are logically
// consumed and get compacted away on the next write, which is exactly why
// body slices handed to callbacks must not outlive them.
type cursor struct {
	buf []byte
	pos int
}

// write concatenates data onto the unconsumed remainder of previous writes,
// reclaiming the consumed prefix first.
func (c *cursor) write(data []byte) {
	if c.pos > 0 {
		n := copy(c.buf, c.buf[c.pos:])
		c.buf = c.buf[:n]
		c.pos = 0
	}

	c.buf = append(c.buf, data...)
}

// window returns the unread bytes. The slice stays valid until the next write.
func (c *cursor) window() []byte {
	return c.buf[c.pos:]
}

// pending returns the number of unread bytes.
func (c *cursor) pending() int {
	return len(c.buf) - c.pos
}

// advance consumes n bytes of the window.
func (c *cursor) advance(n int) {
	c.pos += n
}

// line returns the bytes up to the next CRLF pair, the terminator excluded,
// and consumes the line including the terminator. A bare LF never terminates
// a line: whether the bytes around it are valid is for the grammar checks to
// decide once the line actually completes.
func (c *cursor) line() ([]byte, bool) {
	idx := bytes.Index(c.window(), crlf)
	if idx == -1 {
		return nil, false
	}

	line := c.window()[:idx]
	c.pos += idx + 2

	return line, true
}

// discard throws away everything, consumed or not.
func (c *cursor) discard() {
	c.buf = c.buf[:0]
	c.pos = 0
}
