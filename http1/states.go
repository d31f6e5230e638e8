package http1

type parseState uint8

const (
	eAwaitingStartLine parseState = iota + 1
	eReadingHeaderName
	eReadingHeaderValue
	eHeadersDone
	eReadingFixedBody
	eReadingChunkSize
	eReadingChunkData
	eReadingChunkTrailer
	eMessageComplete
)
