// Package pattern compiles route templates like /users/{id}/posts or
// /static/* into matchers. Parameter values are captured into kv.Storage,
// so a match carries its parameters the same way a message carries its
// headers.
package pattern

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/cobalt-web/cobalt/kv"
)

type parserState uint8

const (
	eStatic parserState = iota + 1
	eSlash
	eParam
	eFinishParam
	eWildcard
)

var ErrEmptyPattern = errors.New("pattern cannot be empty")

type segment struct {
	payload    string
	isParam    bool
	isWildcard bool
}

// Pattern is a compiled route template. Templates consist of path sections
// separated by slashes; a section is either static text, a {name} parameter
// matching one non-empty section, or a trailing * matching the whole rest of
// the path. Parameters and the wildcard must span a whole section.
type Pattern struct {
	raw    string
	re     *regexp.Regexp
	params []string
}

// Parse compiles tmpl into a Pattern.
func Parse(tmpl string) (*Pattern, error) {
	if len(tmpl) == 0 {
		return nil, ErrEmptyPattern
	}
	if tmpl[0] != '/' {
		return nil, fmt.Errorf("%q: a leading slash is required", tmpl)
	}

	var (
		segments []segment
		offset   = 1
		state    = eSlash
	)

	for i := 1; i < len(tmpl); i++ {
		switch state {
		case eStatic:
			switch tmpl[i] {
			case '/':
				segments = append(segments, segment{payload: tmpl[offset:i]})
				offset = i + 1
				state = eSlash
			case '{', '*':
				return nil, fmt.Errorf("%q: a dynamic part must span a whole path section", tmpl)
			}
		case eSlash:
			switch tmpl[i] {
			case '/':
				segments = append(segments, segment{})
				offset = i + 1
			case '{':
				offset = i + 1
				state = eParam
			case '*':
				if i != len(tmpl)-1 {
					return nil, fmt.Errorf("%q: the wildcard must end the pattern", tmpl)
				}

				segments = append(segments, segment{isWildcard: true})
				state = eWildcard
			default:
				state = eStatic
			}
		case eParam:
			switch tmpl[i] {
			case '}':
				segments = append(segments, segment{payload: tmpl[offset:i], isParam: true})
				state = eFinishParam
			case '/', '{':
				return nil, fmt.Errorf("%q: slashes and braces are not allowed inside a parameter name", tmpl)
			}
		case eFinishParam:
			switch tmpl[i] {
			case '/':
				offset = i + 1
				state = eSlash
			default:
				return nil, fmt.Errorf("%q: a dynamic part must span a whole path section", tmpl)
			}
		}
	}

	switch state {
	case eStatic:
		segments = append(segments, segment{payload: tmpl[offset:]})
	case eSlash:
		segments = append(segments, segment{})
	case eParam:
		return nil, fmt.Errorf("%q: unterminated parameter", tmpl)
	}

	return compile(tmpl, segments), nil
}

// MustParse is Parse, except it panics on malformed templates.
func MustParse(tmpl string) *Pattern {
	pattern, err := Parse(tmpl)
	if err != nil {
		panic(err.Error())
	}

	return pattern
}

func compile(tmpl string, segments []segment) *Pattern {
	pattern := &Pattern{raw: tmpl}

	var (
		expr    strings.Builder
		dynamic bool
	)

	expr.WriteByte('^')

	for _, seg := range segments {
		expr.WriteByte('/')

		switch {
		case seg.isWildcard:
			expr.WriteString("(.*)")
			pattern.params = append(pattern.params, "*")
			dynamic = true
		case seg.isParam:
			expr.WriteString("([^/]+)")
			pattern.params = append(pattern.params, seg.payload)
			dynamic = true
		default:
			expr.WriteString(regexp.QuoteMeta(seg.payload))
		}
	}

	expr.WriteByte('$')

	// static patterns are matched by plain comparison instead
	if dynamic {
		pattern.re = regexp.MustCompile(expr.String())
	}

	return pattern
}

// Match reports whether path matches the pattern. On a match, the returned
// storage holds a value per named parameter plus the rest of the path under
// "*" if the pattern ends in a wildcard; it is nil for static patterns.
func (p *Pattern) Match(path string) (*kv.Storage, bool) {
	if p.re == nil {
		return nil, path == p.raw
	}

	groups := p.re.FindStringSubmatch(path)
	if groups == nil {
		return nil, false
	}

	params := kv.NewPrealloc(len(p.params))
	for i, name := range p.params {
		if name != "" {
			params.Add(name, groups[i+1])
		}
	}

	return params, true
}

// IsStatic tells whether the pattern contains any dynamic parts.
func (p *Pattern) IsStatic() bool {
	return p.re == nil
}

// String returns the template the pattern was parsed from.
func (p *Pattern) String() string {
	return p.raw
}
