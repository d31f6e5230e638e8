package codec

import (
	"bytes"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/require"
)

func compress(t *testing.T, inst Instance, text string) []byte {
	buff := bytes.NewBuffer(nil)
	inst.ResetCompressor(buff)
	_, err := inst.Write([]byte(text))
	require.NoError(t, err)
	require.NoError(t, inst.Close())

	return buff.Bytes()
}

func decompress(t *testing.T, inst Instance, raw io.Reader) string {
	require.NoError(t, inst.ResetDecompressor(raw))
	text, err := io.ReadAll(inst)
	require.NoError(t, err)

	return string(text)
}

func TestRoundTrip(t *testing.T) {
	codecs := []Codec{NewGZIP(), NewDeflate(), NewZSTD()}

	for _, c := range codecs {
		c := c

		t.Run(c.Token(), func(t *testing.T) {
			inst := c.New()
			text := strings.Repeat("Hello, world! Lorem ipsum! ", 100)
			raw := compress(t, inst, text)
			require.Equal(t, text, decompress(t, inst, bytes.NewReader(raw)))
		})

		t.Run(c.Token()+" scattered", func(t *testing.T) {
			inst := c.New()
			text := strings.Repeat("Hello, world! Lorem ipsum! ", 100)
			raw := compress(t, inst, text)
			// feeding a byte at a time models a heavily fragmented stream
			result := decompress(t, inst, iotest.OneByteReader(bytes.NewReader(raw)))
			require.Equal(t, text, result)
		})

		t.Run(c.Token()+" instance is reusable", func(t *testing.T) {
			inst := c.New()
			first := compress(t, inst, "first payload")
			second := compress(t, inst, "second payload")
			require.Equal(t, "first payload", decompress(t, inst, bytes.NewReader(first)))
			require.Equal(t, "second payload", decompress(t, inst, bytes.NewReader(second)))
		})

		t.Run(c.Token()+" instances are independent", func(t *testing.T) {
			left, right := c.New(), c.New()
			leftBuff, rightBuff := bytes.NewBuffer(nil), bytes.NewBuffer(nil)
			left.ResetCompressor(leftBuff)
			right.ResetCompressor(rightBuff)
			_, err := left.Write([]byte("left stream"))
			require.NoError(t, err)
			_, err = right.Write([]byte("right stream"))
			require.NoError(t, err)
			require.NoError(t, left.Close())
			require.NoError(t, right.Close())
			require.Equal(t, "left stream", decompress(t, c.New(), bytes.NewReader(leftBuff.Bytes())))
			require.Equal(t, "right stream", decompress(t, c.New(), bytes.NewReader(rightBuff.Bytes())))
		})
	}
}

func TestCache(t *testing.T) {
	t.Run("instantiates lazily and once", func(t *testing.T) {
		cache := NewCache([]Codec{NewGZIP(), NewDeflate()})
		first := cache.Get("gzip")
		require.NotNil(t, first)
		require.Same(t, first, cache.Get("gzip"))
	})

	t.Run("unknown token", func(t *testing.T) {
		cache := NewCache([]Codec{NewGZIP()})
		require.Nil(t, cache.Get("br"))
	})

	t.Run("accept-encoding string", func(t *testing.T) {
		cache := NewCache([]Codec{NewGZIP(), NewDeflate(), NewZSTD()})
		require.Equal(t, "gzip, deflate, zstd", cache.AcceptEncoding())
	})

	t.Run("no codecs means identity", func(t *testing.T) {
		require.Equal(t, "identity", NewCache(nil).AcceptEncoding())
	})
}
