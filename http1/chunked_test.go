package http1

import (
	"strings"
	"testing"

	"github.com/cobalt-web/cobalt/config"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/stretchr/testify/require"
)

func chunkedRequest(body string) string {
	return "POST / HTTP/1.1\r\nTransfer-Encoding: chunked\r\n\r\n" + body
}

func TestChunkedBody(t *testing.T) {
	t.Run("two chunks", func(t *testing.T) {
		raw := chunkedRequest("5\r\nHello\r\n7\r\n, World\r\n0\r\n\r\n")
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, 1, r.completed)
		require.Equal(t, "Hello, World", r.bodies[0])
	})

	t.Run("fuzz chunked by different chunk sizes", func(t *testing.T) {
		raw := []byte(chunkedRequest("5\r\nHello\r\n7\r\n, World\r\n0\r\n\r\n"))

		for i := 1; i < len(raw); i++ {
			p, r := getParser()
			require.NoErrorf(t, feedPartially(p, raw, i), "happened at chunk size %d", i)
			require.Equalf(t, 1, r.completed, "happened at chunk size %d", i)
			require.Equalf(t, "Hello, World", r.bodies[0], "happened at chunk size %d", i)
		}
	})

	t.Run("hex size in both cases", func(t *testing.T) {
		raw := chunkedRequest("a\r\n0123456789\r\nA\r\n0123456789\r\n0\r\n\r\n")
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, "01234567890123456789", r.bodies[0])
	})

	t.Run("chunk extensions are ignored", func(t *testing.T) {
		raw := chunkedRequest("5;name=value\r\nHello\r\n0\r\n\r\n")
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, "Hello", r.bodies[0])
	})

	t.Run("whitespace before the extension", func(t *testing.T) {
		raw := chunkedRequest("5 \t;ext\r\nHello\r\n0\r\n\r\n")
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, "Hello", r.bodies[0])
	})

	t.Run("chunked response", func(t *testing.T) {
		raw := "HTTP/1.1 200 OK\r\nTransfer-Encoding: chunked\r\n\r\n" +
			"6\r\nstream\r\n3\r\ned!\r\n0\r\n\r\n"
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, "streamed!", r.bodies[0])
	})

	t.Run("keep-alive across chunked messages", func(t *testing.T) {
		raw := chunkedRequest("3\r\nfoo\r\n0\r\n\r\n") + chunkedRequest("3\r\nbar\r\n0\r\n\r\n")
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, []string{"foo", "bar"}, r.bodies)
	})

	t.Run("transfer-encoding matching is case-insensitive", func(t *testing.T) {
		raw := "POST / HTTP/1.1\r\nTransfer-Encoding: Chunked\r\n\r\n3\r\nfoo\r\n0\r\n\r\n"
		p, r := getParser()
		require.NoError(t, p.Write([]byte(raw)))
		require.Equal(t, "foo", r.bodies[0])
	})
}

func TestChunkedBodyErrors(t *testing.T) {
	check := func(t *testing.T, body string, wantErr error) {
		p, _ := getParser()
		require.EqualError(t, p.Write([]byte(chunkedRequest(body))), wantErr.Error())
	}

	t.Run("empty size line", func(t *testing.T) {
		check(t, "\r\nHello\r\n0\r\n\r\n", status.ErrBadChunk)
	})

	t.Run("size is not hex", func(t *testing.T) {
		check(t, "x5\r\nHello\r\n0\r\n\r\n", status.ErrBadChunk)
	})

	t.Run("junk after the size", func(t *testing.T) {
		check(t, "5x\r\nHello\r\n0\r\n\r\n", status.ErrBadChunk)
	})

	t.Run("junk after the size and a space", func(t *testing.T) {
		check(t, "5 x\r\nHello\r\n0\r\n\r\n", status.ErrBadChunk)
	})

	t.Run("control byte in the extension", func(t *testing.T) {
		check(t, "5;a\x01b\r\nHello\r\n0\r\n\r\n", status.ErrBadChunk)
	})

	t.Run("size literal overflow", func(t *testing.T) {
		check(t, strings.Repeat("1", 17)+"\r\n", status.ErrChunkTooLarge)
	})

	t.Run("missing terminator after chunk data", func(t *testing.T) {
		check(t, "5\r\nHelloX", status.ErrMissingChunkEnd)
	})

	t.Run("LF alone after chunk data", func(t *testing.T) {
		check(t, "5\r\nHello\n", status.ErrMissingChunkEnd)
	})

	t.Run("trailer fields are rejected", func(t *testing.T) {
		check(t, "0\r\nExpires: never\r\n\r\n", status.ErrMissingChunkEnd)
	})

	t.Run("body over the limit", func(t *testing.T) {
		cfg := config.Default()
		cfg.Body.MaxSize = 8
		p := New(newRecorder(), cfg)
		raw := chunkedRequest("5\r\nHello\r\n5\r\nWorld\r\n0\r\n\r\n")
		require.EqualError(t, p.Write([]byte(raw)), status.ErrBodyTooLarge.Error())
	})
}
