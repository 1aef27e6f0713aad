package registry

import (
	"regexp"
	"strings"

	"github.com/pkg/errors"
)

// ErrInvalidPattern is returned for a wildcard that does not compile, such as
// a reversed range "[z-a]".
var ErrInvalidPattern = errors.New("registry: invalid pattern")

// compileGlob turns a shell-style wildcard into an anchored regexp.
// '*' matches any substring (including '/'), '?' one character, and
// "[...]" / "[!...]" a character class.
func compileGlob(pattern string) (*regexp.Regexp, error) {
	rs := []rune(pattern)

	var b strings.Builder
	b.WriteString(`(?s)^`)
	for i := 0; i < len(rs); i++ {
		switch c := rs[i]; c {
		case '*':
			b.WriteString(`.*`)
		case '?':
			b.WriteString(`.`)
		case '[':
			end := -1
			for j := i + 1; j < len(rs); j++ {
				if rs[j] == ']' && j > i+1 {
					end = j
					break
				}
			}
			if end < 0 {
				b.WriteString(`\[`)
				continue
			}
			class := string(rs[i+1 : end])
			i = end
			b.WriteByte('[')
			switch {
			case strings.HasPrefix(class, "!"):
				b.WriteByte('^')
				class = class[1:]
			case strings.HasPrefix(class, "^"):
				b.WriteString(`\^`)
				class = class[1:]
			}
			b.WriteString(strings.ReplaceAll(class, `\`, `\\`))
			b.WriteByte(']')
		default:
			b.WriteString(regexp.QuoteMeta(string(c)))
		}
	}
	b.WriteString(`$`)

	re, err := regexp.Compile(b.String())
	if err != nil {
		return nil, errors.Wrapf(ErrInvalidPattern, "%q: %v", pattern, err)
	}
	return re, nil
}
