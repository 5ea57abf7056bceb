package pcre

import "fmt"

// Modifiers records the modifier letters that followed the closing
// delimiter. Repeating a letter is harmless.
type Modifiers struct {
	// Consumed by the translator.
	Caseless  bool // i: letters match both cases
	Multiline bool // m: ^ and $ match at line boundaries
	DotAll    bool // s: . also matches line feeds
	Extended  bool // x: pattern whitespace and # comments are ignored
	Ungreedy  bool // U: quantifiers are lazy unless suffixed with ?

	// Carried through without affecting the tree.
	Anchored      bool // A: match only at the subject start
	DollarEndOnly bool // D: $ matches only at the subject end
	Extra         bool // X: strict escape checking
	UTF8          bool // u: subject and pattern are UTF-8
	Speedup       bool // S: extra study pass, a no-op since PCRE 8.20

	// Recognized but rejected after scanning. J permits duplicate group
	// names, which changes capture numbering in ways the tree does not
	// represent.
	InfoJChanged bool // J
}

// ModifierError reports a modifier character that cannot be honored.
// Unsupported distinguishes a letter whose semantics are deliberately not
// modeled from one that is simply unknown.
type ModifierError struct {
	Char        rune
	Unsupported bool
}

func (e *ModifierError) Error() string {
	if e.Unsupported {
		return fmt.Sprintf("unsupported modifier %q", e.Char)
	}
	return fmt.Sprintf("unrecognized modifier %q", e.Char)
}

// ParseModifiers interprets the modifier text that follows a pattern's
// closing delimiter. Newlines, carriage returns and spaces between letters
// are skipped, matching what preg_match tolerates.
func ParseModifiers(s string) (Modifiers, error) {
	var m Modifiers
	for _, r := range s {
		switch r {
		case '\n', '\r', ' ':
			// Separator, not a modifier.
		case 'i':
			m.Caseless = true
		case 'm':
			m.Multiline = true
		case 's':
			m.DotAll = true
		case 'x':
			m.Extended = true
		case 'A':
			m.Anchored = true
		case 'D':
			m.DollarEndOnly = true
		case 'S':
			m.Speedup = true
		case 'U':
			m.Ungreedy = true
		case 'X':
			m.Extra = true
		case 'J':
			m.InfoJChanged = true
		case 'u':
			m.UTF8 = true
		default:
			return Modifiers{}, &ModifierError{Char: r}
		}
	}
	if m.InfoJChanged {
		return Modifiers{}, &ModifierError{Char: 'J', Unsupported: true}
	}
	return m, nil
}
