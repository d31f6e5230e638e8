package codec

import (
	"io"

	"github.com/klauspost/compress/flate"
)

func NewDeflate() Codec {
	reset := func(decoder io.Reader, source io.Reader) error {
		return decoder.(flate.Resetter).Reset(source, nil)
	}

	return newBaseCodec("deflate", func() Instance {
		writer, err := flate.NewWriter(nil, 5)
		if err != nil {
			panic(err)
		}

		return newBaseInstance(writer, flate.NewReader(nil), reset)
	})
}
