package proto

import "github.com/indigo-web/utils/uf"

type Proto uint8

const (
	Unknown Proto = 0
	HTTP09  Proto = 1 << iota
	HTTP10
	HTTP11
	HTTP20

	HTTP1 = HTTP10 | HTTP11
)

var literals = [...]string{
	HTTP09: "HTTP/0.9",
	HTTP10: "HTTP/1.0",
	HTTP11: "HTTP/1.1",
	HTTP20: "HTTP/2.0",
}

var versions = [...]string{
	HTTP09: "0.9",
	HTTP10: "1.0",
	HTTP11: "1.1",
	HTTP20: "2.0",
}

// String returns the protocol literal as it appears on the wire, e.g. "HTTP/1.1".
func (p Proto) String() string {
	if int(p) >= len(literals) {
		return ""
	}

	return literals[p]
}

// Version returns the bare "major.minor" version string, e.g. "1.1".
func (p Proto) Version() string {
	if int(p) >= len(versions) {
		return ""
	}

	return versions[p]
}

const (
	protoTokenLength   = len("HTTP/x.x")
	majorVersionOffset = len("HTTP/x") - 1
	versionDotOffset   = len("HTTP/x.") - 1
	minorVersionOffset = len("HTTP/x.x") - 1
	httpScheme         = "HTTP/"
)

var majorMinorVersionLUT = [10][10]Proto{
	0: {9: HTTP09},
	1: {0: HTTP10, 1: HTTP11},
	2: {0: HTTP20},
}

// FromBytes recognizes the four exact wire literals HTTP/0.9, HTTP/1.0,
// HTTP/1.1 and HTTP/2.0. Anything else, shortened forms included, maps
// to Unknown.
func FromBytes(raw []byte) Proto {
	if len(raw) != protoTokenLength || uf.B2S(raw[:majorVersionOffset]) != httpScheme ||
		raw[versionDotOffset] != '.' {
		return Unknown
	}

	return Parse(raw[majorVersionOffset]-'0', raw[minorVersionOffset]-'0')
}

func Parse(major, minor uint8) Proto {
	if major > 9 || minor > 9 {
		return Unknown
	}

	return majorMinorVersionLUT[major][minor]
}
