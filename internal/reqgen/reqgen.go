// Package reqgen renders synthetic requests of controlled shape for
// benchmarks and stress tests.
package reqgen

import (
	"strconv"
	"strings"

	"github.com/cobalt-web/cobalt/kv"
)

// Headers produces n-1 distinct filler headers plus a Host.
func Headers(n int) *kv.Storage {
	hdrs := kv.NewPrealloc(n)

	for i := 0; i < n-1; i++ {
		hdrs.Add("some-random-header-name-nobody-cares-about"+strconv.Itoa(i), strings.Repeat("b", 100))
	}

	return hdrs.Add("Host", "localhost")
}

// HeadersBlock renders the pairs into their wire form, without the
// terminating empty line.
func HeadersBlock(hdrs *kv.Storage) (buff []byte) {
	for _, pair := range hdrs.Expose() {
		buff = append(buff, pair.Key+": "+pair.Value+"\r\n"...)
	}

	return buff
}

// Generate renders a complete keep-alive GET request for /uri carrying n
// headers.
func Generate(uri string, n int) (request []byte) {
	request = append(request, "GET /"+uri+" HTTP/1.1\r\n"...)
	request = append(request, HeadersBlock(Headers(n))...)

	return append(request, '\r', '\n')
}
