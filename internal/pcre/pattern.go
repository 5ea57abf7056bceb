package pcre

import (
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// Pattern is a parsed delimited pattern: the translated syntax tree of the
// regex body plus the modifier set that followed the closing delimiter.
type Pattern struct {
	Tree      *Node
	Modifiers Modifiers
}

var (
	// ErrNoDelimiter means no usable opening delimiter was found before
	// the first alphanumeric, backslash or non-ASCII character.
	ErrNoDelimiter = errors.New("no delimiter found")

	// ErrUnterminated means the opening delimiter was never closed.
	ErrUnterminated = errors.New("missing closing delimiter")
)

// PatternError wraps any failure of Parse together with the offending
// pattern text.
type PatternError struct {
	Pattern string
	Err     error
}

func (e *PatternError) Error() string {
	return fmt.Sprintf("pattern %q: %v", e.Pattern, e.Err)
}

func (e *PatternError) Unwrap() error { return e.Err }

// Parse compiles a delimited pattern of the form /body/modifiers.
// Every error it returns is a *PatternError; Unwrap exposes the
// underlying ModifierError, SyntaxError or delimiter sentinel.
func Parse(pattern string) (*Pattern, error) {
	p, err := parse(pattern)
	if err != nil {
		return nil, &PatternError{Pattern: pattern, Err: err}
	}
	return p, nil
}

func parse(pattern string) (*Pattern, error) {
	body, modText, err := splitDelimiters(pattern)
	if err != nil {
		return nil, err
	}
	mods, err := ParseModifiers(modText)
	if err != nil {
		return nil, err
	}
	tree, err := translate(body, mods)
	if err != nil {
		return nil, err
	}
	return &Pattern{Tree: tree, Modifiers: mods}, nil
}

// splitDelimiters cuts a raw pattern into the regex body and the trailing
// modifier text. The opening delimiter is the first ASCII byte that is
// neither alphanumeric nor a backslash, skipping leading ASCII whitespace;
// the body runs to the last occurrence of the matching closing byte.
// Both delimiters are single ASCII bytes, so the cut cannot fall inside a
// UTF-8 sequence.
func splitDelimiters(pattern string) (body, modifiers string, err error) {
	start := -1
	var open byte
	for i := 0; i < len(pattern); i++ {
		b := pattern[i]
		if asciiSpace(b) {
			continue
		}
		if b < utf8.RuneSelf && !asciiAlnum(b) && b != '\\' {
			open = b
			start = i + 1
		}
		break
	}
	if start < 0 {
		return "", "", ErrNoDelimiter
	}
	end := strings.LastIndexByte(pattern[start:], closingDelimiter(open))
	if end < 0 {
		return "", "", ErrUnterminated
	}
	return pattern[start : start+end], pattern[start+end+1:], nil
}

// closingDelimiter returns the byte that closes an opening delimiter. The
// four bracket characters close with their counterparts; everything else
// closes with itself.
func closingDelimiter(open byte) byte {
	switch open {
	case '(':
		return ')'
	case '<':
		return '>'
	case '[':
		return ']'
	case '{':
		return '}'
	}
	return open
}

// asciiSpace reports the ASCII whitespace PHP skips before the opening
// delimiter: space, tab, line feed, form feed and carriage return.
func asciiSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\f', '\r':
		return true
	}
	return false
}

func asciiAlnum(b byte) bool {
	return b >= '0' && b <= '9' || b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z'
}
