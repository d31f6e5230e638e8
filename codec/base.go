package codec

import "io"

var _ Codec = baseCodec{}

type instantiator = func() Instance

type baseCodec struct {
	token   string
	newInst instantiator
}

func newBaseCodec(token string, newInst instantiator) baseCodec {
	return baseCodec{
		token:   token,
		newInst: newInst,
	}
}

func (b baseCodec) Token() string {
	return b.token
}

func (b baseCodec) New() Instance {
	return b.newInst()
}

var _ Instance = new(baseInstance)

type (
	decoderResetter = func(decoder io.Reader, source io.Reader) error

	writeResetter interface {
		io.WriteCloser
		Reset(dst io.Writer)
	}
)

type baseInstance struct {
	reset decoderResetter
	w     writeResetter // compressor
	r     io.Reader     // decompressor
	dst   io.Closer
}

func newBaseInstance(encoder writeResetter, decoder io.Reader, reset decoderResetter) *baseInstance {
	return &baseInstance{
		reset: reset,
		w:     encoder,
		r:     decoder,
	}
}

func (b *baseInstance) ResetCompressor(w io.Writer) {
	b.w.Reset(w)
	b.dst = nil

	if c, ok := w.(io.Closer); ok {
		b.dst = c
	}
}

func (b *baseInstance) Write(p []byte) (n int, err error) {
	return b.w.Write(p)
}

func (b *baseInstance) Close() error {
	if err := b.w.Close(); err != nil {
		return err
	}

	if b.dst != nil {
		return b.dst.Close()
	}

	return nil
}

func (b *baseInstance) ResetDecompressor(source io.Reader) error {
	return b.reset(b.r, source)
}

func (b *baseInstance) Read(p []byte) (n int, err error) {
	return b.r.Read(p)
}

func genericResetter(decoder io.Reader, source io.Reader) error {
	type resetter interface {
		Reset(r io.Reader) error
	}

	if reset, ok := decoder.(resetter); ok {
		return reset.Reset(source)
	}

	return nil
}
