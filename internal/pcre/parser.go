package pcre

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Largest count accepted inside {m,n}, the same bound preg_match imposes.
const maxRepeatCount = 65535

// SyntaxError reports a malformed or unsupported regex body together with
// the byte offset at which parsing gave up. Under the x modifier the
// offset refers to the body with whitespace and comments stripped.
type SyntaxError struct {
	Pos int
	Msg string
}

func (e *SyntaxError) Error() string {
	return fmt.Sprintf("regex syntax error at offset %d: %s", e.Pos, e.Msg)
}

// flags is the modifier state consulted during translation. A scoped group
// (?i:...) saves and restores it; a directive (?i) rewrites it until the
// enclosing group ends.
type flags struct {
	caseless  bool
	multiline bool
	dotAll    bool
	ungreedy  bool
}

type parser struct {
	input    string
	pos      int
	captures int            // capture indices handed out so far
	names    map[string]int // named-group indices, for duplicate checks
	flags    flags
}

// translate parses a regex body into its syntax tree, resolving every
// modifier-dependent construct along the way.
func translate(body string, mods Modifiers) (*Node, error) {
	if mods.Extended {
		body = stripExtended(body)
	}
	p := &parser{
		input: body,
		names: make(map[string]int),
		flags: flags{
			caseless:  mods.Caseless,
			multiline: mods.Multiline,
			dotAll:    mods.DotAll,
			ungreedy:  mods.Ungreedy,
		},
	}
	n, err := p.alternation()
	if err != nil {
		return nil, err
	}
	if p.pos < len(p.input) {
		// alternation only ever stops early at a ')'.
		return nil, p.errorf("unmatched closing parenthesis")
	}
	return n, nil
}

// stripExtended removes unescaped pattern whitespace and #-to-end-of-line
// comments, which is the x modifier's reading of the body. Escapes survive
// intact, so an escaped space still matches a space and \# a hash.
func stripExtended(body string) string {
	var b strings.Builder
	b.Grow(len(body))
	for i := 0; i < len(body); {
		c := body[i]
		switch {
		case c == '\\' && i+1 < len(body):
			_, size := utf8.DecodeRuneInString(body[i+1:])
			b.WriteString(body[i : i+1+size])
			i += 1 + size
		case c == '#':
			for i < len(body) && body[i] != '\n' {
				i++
			}
		case patternSpace(c):
			i++
		default:
			b.WriteByte(c)
			i++
		}
	}
	return b.String()
}

// patternSpace is the whitespace the x modifier ignores.
func patternSpace(b byte) bool {
	switch b {
	case ' ', '\t', '\n', '\v', '\f', '\r':
		return true
	}
	return false
}

func (p *parser) errorf(format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: p.pos, Msg: fmt.Sprintf(format, args...)}
}

func (p *parser) errorAt(pos int, format string, args ...any) *SyntaxError {
	return &SyntaxError{Pos: pos, Msg: fmt.Sprintf(format, args...)}
}

// peek returns the next byte without consuming it, or 0 past the end.
func (p *parser) peek() byte {
	if p.pos < len(p.input) {
		return p.input[p.pos]
	}
	return 0
}

// peekAt returns the byte n past the cursor, or 0 past the end.
func (p *parser) peekAt(n int) byte {
	if p.pos+n < len(p.input) {
		return p.input[p.pos+n]
	}
	return 0
}

// eat consumes the next byte if it matches b.
func (p *parser) eat(b byte) bool {
	if p.pos < len(p.input) && p.input[p.pos] == b {
		p.pos++
		return true
	}
	return false
}

func (p *parser) alternation() (*Node, error) {
	first, err := p.concat()
	if err != nil {
		return nil, err
	}
	if !p.eat('|') {
		return first, nil
	}
	subs := []*Node{first}
	for {
		next, err := p.concat()
		if err != nil {
			return nil, err
		}
		subs = append(subs, next)
		if !p.eat('|') {
			break
		}
	}
	for _, sub := range subs {
		if sub.Op == OpEmpty {
			return nil, p.errorf("dangling alternation bar")
		}
	}
	return &Node{Op: OpAlternate, Sub: subs}, nil
}

func (p *parser) concat() (*Node, error) {
	var subs []*Node
	for p.pos < len(p.input) {
		if c := p.input[p.pos]; c == '|' || c == ')' {
			break
		}
		t, err := p.term()
		if err != nil {
			return nil, err
		}
		if t != nil {
			subs = append(subs, t)
		}
	}
	switch len(subs) {
	case 0:
		return &Node{Op: OpEmpty}, nil
	case 1:
		return subs[0], nil
	}
	return &Node{Op: OpConcat, Sub: subs}, nil
}

// term parses one atom and any quantifier following it. A nil node with a
// nil error means the term was an inline flag directive.
func (p *parser) term() (*Node, error) {
	atom, err := p.atom()
	if err != nil {
		return nil, err
	}
	if atom == nil {
		return nil, nil
	}
	return p.quantifier(atom)
}

func (p *parser) atom() (*Node, error) {
	switch c := p.input[p.pos]; c {
	case '(':
		return p.group()
	case '[':
		return p.class()
	case '.':
		p.pos++
		return &Node{Op: OpClass, Ranges: p.dotRanges()}, nil
	case '^':
		p.pos++
		if p.flags.multiline {
			return &Node{Op: OpBeginLine}, nil
		}
		return &Node{Op: OpBeginText}, nil
	case '$':
		p.pos++
		if p.flags.multiline {
			return &Node{Op: OpEndLine}, nil
		}
		return &Node{Op: OpEndText}, nil
	case '\\':
		return p.escape()
	case '*', '+', '?':
		return nil, p.errorf("quantifier without a preceding atom")
	case '{':
		if asciiDigit(p.peekAt(1)) {
			return nil, p.errorf("quantifier without a preceding atom")
		}
		p.pos++
		return p.literal('{'), nil
	default:
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		p.pos += size
		return p.literal(r), nil
	}
}

// dotRanges is the match set of the dot: every scalar value, minus the
// line feed unless dotall is in effect.
func (p *parser) dotRanges() []ClassRange {
	if p.flags.dotAll {
		return []ClassRange{{0, surrogateMin - 1}, {surrogateMax + 1, utf8.MaxRune}}
	}
	return []ClassRange{{0, '\n' - 1}, {'\n' + 1, surrogateMin - 1}, {surrogateMax + 1, utf8.MaxRune}}
}

// literal builds the node for one literal character. Under caseless
// matching a character with case partners becomes the class of its fold
// orbit, which keeps the modifier visible in the tree itself.
func (p *parser) literal(r rune) *Node {
	if p.flags.caseless {
		if ranges := foldOrbit(r); ranges != nil {
			return &Node{Op: OpClass, Ranges: ranges}
		}
	}
	return &Node{Op: OpLiteral, Rune: r}
}

// repeatable reports whether an atom may carry a quantifier. The
// zero-width assertions may not, as preg_match has it.
func repeatable(atom *Node) bool {
	switch atom.Op {
	case OpBeginLine, OpEndLine, OpBeginText, OpEndText, OpWordBoundary:
		return false
	}
	return true
}

func (p *parser) quantifier(atom *Node) (*Node, error) {
	var min, max int
	switch p.peek() {
	case '*':
		min, max = 0, -1
	case '+':
		min, max = 1, -1
	case '?':
		min, max = 0, 1
	case '{':
		if !asciiDigit(p.peekAt(1)) {
			return atom, nil // literal brace, not a quantifier
		}
		if !repeatable(atom) {
			return nil, p.errorf("quantifier applied to a zero-width assertion")
		}
		return p.countedQuantifier(atom)
	default:
		return atom, nil
	}
	if !repeatable(atom) {
		return nil, p.errorf("quantifier applied to a zero-width assertion")
	}
	p.pos++
	return p.finishQuantifier(atom, min, max)
}

func (p *parser) countedQuantifier(atom *Node) (*Node, error) {
	start := p.pos
	p.pos++ // '{'
	min, err := p.repeatCount()
	if err != nil {
		return nil, err
	}
	max := min
	if p.eat(',') {
		if p.peek() == '}' {
			max = -1
		} else if max, err = p.repeatCount(); err != nil {
			return nil, err
		}
	}
	if !p.eat('}') {
		return nil, p.errorAt(start, "unclosed counted repetition")
	}
	if max >= 0 && min > max {
		return nil, p.errorAt(start, "counted repetition bounds out of order")
	}
	return p.finishQuantifier(atom, min, max)
}

func (p *parser) repeatCount() (int, error) {
	start := p.pos
	for asciiDigit(p.peek()) {
		p.pos++
	}
	if p.pos == start {
		return 0, p.errorf("expected repetition count")
	}
	n, err := strconv.Atoi(p.input[start:p.pos])
	if err != nil || n > maxRepeatCount {
		return 0, p.errorAt(start, "repetition count too large")
	}
	return n, nil
}

func (p *parser) finishQuantifier(atom *Node, min, max int) (*Node, error) {
	greedy := true
	switch p.peek() {
	case '?':
		p.pos++
		greedy = false
	case '+':
		return nil, p.errorf("possessive quantifiers are not supported")
	}
	if p.flags.ungreedy {
		greedy = !greedy
	}
	return &Node{Op: OpRepeat, Sub: []*Node{atom}, Min: min, Max: max, Greedy: greedy}, nil
}

func (p *parser) group() (*Node, error) {
	open := p.pos
	p.pos++ // '('
	if p.eat('?') {
		return p.specialGroup(open)
	}
	p.captures++
	index := p.captures
	saved := p.flags
	sub, err := p.alternation()
	if err != nil {
		return nil, err
	}
	p.flags = saved
	if !p.eat(')') {
		return nil, p.errorAt(open, "unclosed group")
	}
	return &Node{Op: OpGroup, Sub: []*Node{sub}, Index: index}, nil
}

// specialGroup dispatches everything that begins with "(?".
func (p *parser) specialGroup(open int) (*Node, error) {
	switch c := p.peek(); c {
	case ':':
		p.pos++
		saved := p.flags
		sub, err := p.alternation()
		if err != nil {
			return nil, err
		}
		p.flags = saved
		if !p.eat(')') {
			return nil, p.errorAt(open, "unclosed group")
		}
		return &Node{Op: OpGroup, Sub: []*Node{sub}}, nil
	case '=', '!':
		return nil, p.errorAt(open, "look-ahead assertions are not supported")
	case '<':
		if b := p.peekAt(1); b == '=' || b == '!' {
			return nil, p.errorAt(open, "look-behind assertions are not supported")
		}
		return p.namedGroup(open, '>')
	case '\'':
		return p.namedGroup(open, '\'')
	case 'P':
		switch p.peekAt(1) {
		case '<':
			p.pos++
			return p.namedGroup(open, '>')
		case '=', '>':
			return nil, p.errorAt(open, "group references are not supported")
		default:
			return nil, p.errorAt(open, "unrecognized group syntax")
		}
	case 'R':
		if p.peekAt(1) == ')' {
			return nil, p.errorAt(open, "recursion is not supported")
		}
		return nil, p.errorAt(open, "unrecognized group syntax")
	case '#':
		return nil, p.errorAt(open, "comment groups are not supported")
	case '|':
		return nil, p.errorAt(open, "branch reset groups are not supported")
	case '(':
		return nil, p.errorAt(open, "conditional groups are not supported")
	case '+':
		return nil, p.errorAt(open, "subroutine calls are not supported")
	default:
		if asciiDigit(c) {
			return nil, p.errorAt(open, "subroutine calls are not supported")
		}
		return p.flagGroup(open)
	}
}

// namedGroup parses the three named-capture spellings (?<name>, (?'name'
// and (?P<name> with the cursor on the opening quote character.
func (p *parser) namedGroup(open int, closeDelim byte) (*Node, error) {
	p.pos++ // the '<' or the quote
	start := p.pos
	for asciiWord(p.peek()) {
		p.pos++
	}
	name := p.input[start:p.pos]
	switch {
	case name == "":
		return nil, p.errorf("empty capture group name")
	case asciiDigit(name[0]):
		return nil, p.errorAt(start, "capture group name begins with a digit")
	case !p.eat(closeDelim):
		return nil, p.errorf("unterminated capture group name")
	}
	if _, dup := p.names[name]; dup {
		return nil, p.errorAt(start, "duplicate capture group name %q", name)
	}
	p.captures++
	index := p.captures
	p.names[name] = index
	saved := p.flags
	sub, err := p.alternation()
	if err != nil {
		return nil, err
	}
	p.flags = saved
	if !p.eat(')') {
		return nil, p.errorAt(open, "unclosed group")
	}
	return &Node{Op: OpGroup, Sub: []*Node{sub}, Index: index, Name: name}, nil
}

// flagGroup parses (?flags) and (?flags:...) once the leading "(?" is
// consumed. The directive form rewrites the parser's flag state, which the
// enclosing group undoes on exit; the scoped form undoes it itself and
// yields a non-capturing group.
func (p *parser) flagGroup(open int) (*Node, error) {
	saved := p.flags
	clearing := false
	seen := false
	set := func(f *bool) {
		*f = !clearing
		seen = true
	}
	for {
		switch c := p.peek(); c {
		case 'i':
			set(&p.flags.caseless)
		case 'm':
			set(&p.flags.multiline)
		case 's':
			set(&p.flags.dotAll)
		case 'U':
			set(&p.flags.ungreedy)
		case 'x':
			return nil, p.errorf("the x flag is only supported as a pattern modifier")
		case '-':
			if clearing {
				return nil, p.errorf("repeated - in inline flags")
			}
			clearing = true
			seen = true
		case ':':
			p.pos++
			sub, err := p.alternation()
			if err != nil {
				return nil, err
			}
			if !p.eat(')') {
				return nil, p.errorAt(open, "unclosed group")
			}
			p.flags = saved
			return &Node{Op: OpGroup, Sub: []*Node{sub}}, nil
		case ')':
			if !seen {
				return nil, p.errorf("empty flag group")
			}
			p.pos++
			// Directive: the new flags apply to the rest of the
			// enclosing group.
			return nil, nil
		case 0:
			return nil, p.errorAt(open, "unclosed group")
		default:
			return nil, p.errorf("unrecognized inline flag %q", rune(c))
		}
		p.pos++
	}
}

// escape parses a backslash sequence in atom position.
func (p *parser) escape() (*Node, error) {
	start := p.pos
	p.pos++ // '\'
	if p.pos >= len(p.input) {
		return nil, p.errorAt(start, "trailing backslash")
	}
	switch c := p.input[p.pos]; c {
	case 'b', 'B':
		p.pos++
		return &Node{Op: OpWordBoundary}, nil
	case 'A':
		p.pos++
		return &Node{Op: OpBeginText}, nil
	case 'z':
		p.pos++
		return &Node{Op: OpEndText}, nil
	case 'Z':
		return nil, p.errorf("the \\Z anchor is not supported")
	case 'G':
		return nil, p.errorf("the \\G anchor is not supported")
	case 'd', 'D', 's', 'S', 'w', 'W':
		p.pos++
		ranges := perlRanges(c)
		if p.flags.caseless {
			ranges = foldRanges(ranges)
		}
		return &Node{Op: OpClass, Ranges: ranges}, nil
	case 'p', 'P':
		p.pos++
		ranges, err := p.unicodeClassRanges(c == 'P')
		if err != nil {
			return nil, err
		}
		return &Node{Op: OpClass, Ranges: ranges}, nil
	case 'k', 'g':
		return nil, p.errorf("backreferences are not supported")
	case 'R':
		return nil, p.errorf("the \\R newline escape is not supported")
	case 'K':
		return nil, p.errorf("the \\K reset escape is not supported")
	case 'Q':
		return nil, p.errorf("\\Q...\\E quoting is not supported")
	case 'X':
		return nil, p.errorf("the \\X cluster escape is not supported")
	default:
		if c >= '1' && c <= '9' {
			return nil, p.errorf("backreferences are not supported")
		}
		r, err := p.escapeChar()
		if err != nil {
			return nil, err
		}
		return p.literal(r), nil
	}
}

// escapeChar resolves the escapes denoting a single character, with the
// cursor on the character after the backslash.
func (p *parser) escapeChar() (rune, error) {
	switch c := p.input[p.pos]; c {
	case 'n':
		p.pos++
		return '\n', nil
	case 'r':
		p.pos++
		return '\r', nil
	case 't':
		p.pos++
		return '\t', nil
	case 'f':
		p.pos++
		return '\f', nil
	case 'v':
		p.pos++
		return '\v', nil
	case 'a':
		p.pos++
		return '\a', nil
	case 'e':
		p.pos++
		return 0x1B, nil
	case '0':
		p.pos++
		return 0, nil
	case 'x':
		p.pos++
		return p.hexEscape()
	case 'c':
		p.pos++
		return p.controlEscape()
	}
	r, size := utf8.DecodeRuneInString(p.input[p.pos:])
	if r < utf8.RuneSelf && asciiAlnum(byte(r)) {
		return 0, p.errorf("unrecognized escape \\%c", r)
	}
	p.pos += size
	return r, nil
}

// hexEscape resolves \xHH and \x{HEX} with the cursor after the x. Bare
// \x with no digits is NUL, as preg_match has it.
func (p *parser) hexEscape() (rune, error) {
	if p.eat('{') {
		start := p.pos
		for p.pos < len(p.input) && p.input[p.pos] != '}' {
			p.pos++
		}
		if p.pos >= len(p.input) {
			return 0, p.errorAt(start, "unclosed \\x{...} escape")
		}
		digits := p.input[start:p.pos]
		p.pos++ // '}'
		v, err := strconv.ParseUint(digits, 16, 32)
		if err != nil || !utf8.ValidRune(rune(v)) {
			return 0, p.errorAt(start, "invalid code point in \\x{...} escape")
		}
		return rune(v), nil
	}
	var v rune
	for n := 0; n < 2; n++ {
		d, ok := hexDigit(p.peek())
		if !ok {
			break
		}
		v = v<<4 | d
		p.pos++
	}
	return v, nil
}

// controlEscape resolves \cX to the control character it names: the
// upper-cased X with bit 0x40 flipped.
func (p *parser) controlEscape() (rune, error) {
	if p.pos >= len(p.input) || p.input[p.pos] >= utf8.RuneSelf {
		return 0, p.errorf("invalid \\c escape")
	}
	c := p.input[p.pos]
	p.pos++
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	return rune(c ^ 0x40), nil
}

// unicodeClassRanges resolves \p and \P classes with the cursor after the
// p. Both the braced and the single-letter names are accepted, and \p{^L}
// is the third spelling of \P{L}. Under caseless matching the fold
// widening happens before any negation, so \P{Lu} excludes the
// lower-case partners as well.
func (p *parser) unicodeClassRanges(negate bool) ([]ClassRange, error) {
	start := p.pos
	var name string
	if p.eat('{') {
		end := strings.IndexByte(p.input[p.pos:], '}')
		if end < 0 {
			return nil, p.errorAt(start, "unclosed \\p{...} class")
		}
		name = p.input[p.pos : p.pos+end]
		p.pos += end + 1
	} else {
		if p.pos >= len(p.input) {
			return nil, p.errorAt(start, "missing \\p class name")
		}
		name = p.input[p.pos : p.pos+1]
		p.pos++
	}
	if inner, ok := strings.CutPrefix(name, "^"); ok {
		negate = !negate
		name = inner
	}
	t := unicodeClass(name)
	if t == nil {
		return nil, p.errorAt(start, "unknown Unicode class %q", name)
	}
	ranges := tableRanges(t)
	if p.flags.caseless {
		ranges = foldRanges(ranges)
	}
	if negate {
		ranges = negateRanges(ranges)
	} else {
		ranges = dropSurrogates(ranges)
	}
	return ranges, nil
}

// class parses a bracketed character class. The resulting ranges are
// normalized, widened with case folds under the i modifier, and turned
// into their complement when the class is negated.
func (p *parser) class() (*Node, error) {
	open := p.pos
	p.pos++ // '['
	negate := p.eat('^')
	var ranges []ClassRange
	first := true
	for {
		if p.pos >= len(p.input) {
			return nil, p.errorAt(open, "unclosed character class")
		}
		if p.input[p.pos] == ']' && !first {
			p.pos++
			break
		}
		first = false
		if strings.HasPrefix(p.input[p.pos:], "[:") {
			set, err := p.posixClass()
			if err != nil {
				return nil, err
			}
			ranges = append(ranges, set...)
			continue
		}
		lo, set, err := p.classAtom()
		if err != nil {
			return nil, err
		}
		if set != nil {
			ranges = append(ranges, set...)
			continue
		}
		hi := lo
		if p.peek() == '-' && p.pos+1 < len(p.input) && p.input[p.pos+1] != ']' {
			dash := p.pos
			p.pos++
			hi, set, err = p.classAtom()
			if err != nil {
				return nil, err
			}
			if set != nil {
				return nil, p.errorAt(dash, "invalid range end in character class")
			}
			if hi < lo {
				return nil, p.errorAt(dash, "character class range out of order")
			}
		}
		ranges = append(ranges, ClassRange{lo, hi})
	}
	ranges = normalizeRanges(ranges)
	if p.flags.caseless {
		ranges = foldRanges(ranges)
	}
	if negate {
		ranges = negateRanges(ranges)
	} else {
		ranges = dropSurrogates(ranges)
	}
	return &Node{Op: OpClass, Ranges: ranges}, nil
}

// classAtom reads one class member: either a single character, returned
// as a rune, or a multi-character escape such as \d, returned as ranges.
func (p *parser) classAtom() (rune, []ClassRange, error) {
	if p.input[p.pos] != '\\' {
		r, size := utf8.DecodeRuneInString(p.input[p.pos:])
		p.pos += size
		return r, nil, nil
	}
	start := p.pos
	p.pos++
	if p.pos >= len(p.input) {
		return 0, nil, p.errorAt(start, "trailing backslash")
	}
	switch c := p.input[p.pos]; c {
	case 'b':
		// Inside a class, \b is the backspace character.
		p.pos++
		return '\b', nil, nil
	case 'd', 'D', 's', 'S', 'w', 'W':
		p.pos++
		return 0, perlRanges(c), nil
	case 'p', 'P':
		p.pos++
		set, err := p.unicodeClassRanges(c == 'P')
		return 0, set, err
	default:
		r, err := p.escapeChar()
		return r, nil, err
	}
}

// posixClass parses [:name:] and [:^name:] inside a character class with
// the cursor on the inner opening bracket.
func (p *parser) posixClass() ([]ClassRange, error) {
	start := p.pos
	p.pos += 2 // "[:"
	negate := p.eat('^')
	end := strings.Index(p.input[p.pos:], ":]")
	if end < 0 {
		return nil, p.errorAt(start, "unclosed POSIX character class")
	}
	name := p.input[p.pos : p.pos+end]
	p.pos += end + 2
	ranges, ok := posixClasses[name]
	if !ok {
		return nil, p.errorAt(start, "unknown POSIX character class %q", name)
	}
	if negate {
		return negateRanges(ranges), nil
	}
	return ranges, nil
}

func hexDigit(b byte) (rune, bool) {
	switch {
	case b >= '0' && b <= '9':
		return rune(b - '0'), true
	case b >= 'a' && b <= 'f':
		return rune(b-'a') + 10, true
	case b >= 'A' && b <= 'F':
		return rune(b-'A') + 10, true
	}
	return 0, false
}

func asciiDigit(b byte) bool { return b >= '0' && b <= '9' }

func asciiWord(b byte) bool { return asciiAlnum(b) || b == '_' }
