package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/cobalt-web/cobalt/http"
	"github.com/cobalt-web/cobalt/http/method"
	"github.com/cobalt-web/cobalt/http/proto"
	"github.com/cobalt-web/cobalt/http/status"
	"github.com/cobalt-web/cobalt/internal/reqgen"
	"github.com/stretchr/testify/require"
)

type sinkhole struct{}

func (sinkhole) Write(p []byte) (int, error) {
	return len(p), nil
}

func responseSize(head *http.ResponseHead, body Body, defHdrs map[string]string) (int64, error) {
	var w bytes.Buffer
	err := NewSerializer(nil, 128, defHdrs).WriteResponse(&w, head, body)

	return int64(w.Len()), err
}

func requestSize(head *http.RequestHead, body Body) (int64, error) {
	var w bytes.Buffer
	err := NewSerializer(nil, 128, nil).WriteRequest(&w, head, body)

	return int64(w.Len()), err
}

func BenchmarkSerializer(b *testing.B) {
	defaultHeadersSmall := map[string]string{
		"Server": "cobalt",
	}
	defaultHeadersMedium := map[string]string{
		"Server":           "cobalt",
		"Connection":       "keep-alive",
		"Accept-Encodings": "identity",
	}

	head := &http.ResponseHead{Proto: proto.HTTP11, Code: status.OK}

	b.Run("no body no def headers", func(b *testing.B) {
		s := NewSerializer(make([]byte, 0, 1024), 128, nil)
		size, err := responseSize(head, Bytes(nil), nil)
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteResponse(sinkhole{}, head, Bytes(nil))
		}
	})

	b.Run("with 4kb body", func(b *testing.B) {
		payload := []byte(strings.Repeat("a", 4096))
		s := NewSerializer(make([]byte, 0, 8192), 128, nil)
		size, err := responseSize(head, Bytes(payload), nil)
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteResponse(sinkhole{}, head, Bytes(payload))
		}
	})

	b.Run("no body 1 def header", func(b *testing.B) {
		s := NewSerializer(make([]byte, 0, 1024), 128, defaultHeadersSmall)
		size, err := responseSize(head, Bytes(nil), defaultHeadersSmall)
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteResponse(sinkhole{}, head, Bytes(nil))
		}
	})

	b.Run("no body 3 def headers", func(b *testing.B) {
		s := NewSerializer(make([]byte, 0, 1024), 128, defaultHeadersMedium)
		size, err := responseSize(head, Bytes(nil), defaultHeadersMedium)
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteResponse(sinkhole{}, head, Bytes(nil))
		}
	})

	b.Run("no body 15 headers", func(b *testing.B) {
		head := &http.ResponseHead{
			Proto:   proto.HTTP11,
			Code:    status.OK,
			Headers: reqgen.Headers(15),
		}
		s := NewSerializer(make([]byte, 0, 4096), 128, nil)
		size, err := responseSize(head, Bytes(nil), nil)
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteResponse(sinkhole{}, head, Bytes(nil))
		}
	})

	b.Run("chunked 4kb stream", func(b *testing.B) {
		payload := []byte(strings.Repeat("a", 4096))
		size, err := responseSize(head, Stream(bytes.NewReader(payload)), nil)
		require.NoError(b, err)
		s := NewSerializer(make([]byte, 0, 1024), 4096, nil)
		r := bytes.NewReader(payload)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			r.Reset(payload)
			_ = s.WriteResponse(sinkhole{}, head, Stream(r))
		}
	})

	b.Run("request no body", func(b *testing.B) {
		head := &http.RequestHead{
			Method:  method.GET,
			Target:  "/",
			Proto:   proto.HTTP11,
			Headers: reqgen.Headers(5),
		}
		s := NewSerializer(make([]byte, 0, 1024), 128, nil)
		size, err := requestSize(head, Bytes(nil))
		require.NoError(b, err)
		b.SetBytes(size)
		b.ReportAllocs()
		b.ResetTimer()

		for i := 0; i < b.N; i++ {
			_ = s.WriteRequest(sinkhole{}, head, Bytes(nil))
		}
	})
}
