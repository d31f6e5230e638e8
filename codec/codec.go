// Package codec implements content codings for message payloads.
package codec

import (
	"io"
	"strings"
)

// Codec describes one content coding. The codec itself is a stateless
// factory, the instances it produces are stateful and meant to be re-used
// through their Reset methods.
type Codec interface {
	// Token returns the coding token the codec answers to.
	Token() string
	New() Instance
}

type Instance interface {
	Compressor
	Decompressor
}

type Compressor interface {
	io.WriteCloser
	ResetCompressor(w io.Writer)
}

type Decompressor interface {
	io.Reader
	ResetDecompressor(source io.Reader) error
}

// Cache hands out codec instances by token, instantiating every codec at
// most once.
type Cache struct {
	accept    string
	codecs    []Codec
	instances []Instance
}

func NewCache(codecs []Codec) Cache {
	return Cache{
		accept:    acceptEncoding(codecs),
		codecs:    codecs,
		instances: make([]Instance, len(codecs)),
	}
}

func (c Cache) find(token string) (int, Codec) {
	for i, entry := range c.codecs {
		if entry.Token() == token {
			return i, entry
		}
	}

	return -1, nil
}

// Get returns an instance of the codec answering to token, nil if no such
// codec is known.
func (c Cache) Get(token string) Instance {
	idx, cd := c.find(token)
	if idx == -1 {
		return nil
	}

	inst := c.instances[idx]
	if inst == nil {
		inst = cd.New()
		c.instances[idx] = inst
	}

	return inst
}

// AcceptEncoding returns the tokens of all known codecs in the form they are
// advertised on the wire.
func (c Cache) AcceptEncoding() string {
	return c.accept
}

func acceptEncoding(codecs []Codec) string {
	if len(codecs) == 0 {
		return "identity"
	}

	var b strings.Builder

	b.WriteString(codecs[0].Token())
	for _, c := range codecs[1:] {
		b.WriteString(", ")
		b.WriteString(c.Token())
	}

	return b.String()
}
