package codec

import (
	"github.com/klauspost/compress/zstd"
)

func NewZSTD() Codec {
	return newBaseCodec("zstd", func() Instance {
		w, err := zstd.NewWriter(nil)
		if err != nil {
			panic(err)
		}

		r, err := zstd.NewReader(nil)
		if err != nil {
			panic(err)
		}

		return newBaseInstance(w, r, genericResetter)
	})
}
