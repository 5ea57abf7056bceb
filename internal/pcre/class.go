package pcre

import (
	"slices"
	"unicode"
	"unicode/utf8"
)

// Simple case folding only acts inside this window of the Unicode space;
// clamping fold scans to it keeps folding of huge ranges cheap.
const (
	minFold = 0x0041
	maxFold = 0x1E943
)

// The surrogate halves are not scalar values and never appear in UTF-8
// subjects, so no class may contain them.
const (
	surrogateMin = 0xD800
	surrogateMax = 0xDFFF
)

// The predefined classes follow their Unicode reading: \d is Nd, \s is
// White_Space, and \w approximates the word property as letters, marks,
// decimal digits, connector punctuation and the two join controls.
var (
	digitRanges = tableRanges(unicode.Nd)
	spaceRanges = tableRanges(unicode.White_Space)
	wordRanges  = normalizeRanges(append(
		tableRanges(unicode.L, unicode.M, unicode.Nd, unicode.Pc),
		ClassRange{0x200C, 0x200C}, ClassRange{0x200D, 0x200D},
	))
)

// The POSIX classes keep their traditional ASCII meaning.
var posixClasses = map[string][]ClassRange{
	"alnum":  {{'0', '9'}, {'A', 'Z'}, {'a', 'z'}},
	"alpha":  {{'A', 'Z'}, {'a', 'z'}},
	"ascii":  {{0, 0x7F}},
	"blank":  {{'\t', '\t'}, {' ', ' '}},
	"cntrl":  {{0, 0x1F}, {0x7F, 0x7F}},
	"digit":  {{'0', '9'}},
	"graph":  {{'!', '~'}},
	"lower":  {{'a', 'z'}},
	"print":  {{' ', '~'}},
	"punct":  {{'!', '/'}, {':', '@'}, {'[', '`'}, {'{', '~'}},
	"space":  {{'\t', '\r'}, {' ', ' '}},
	"upper":  {{'A', 'Z'}},
	"word":   {{'0', '9'}, {'A', 'Z'}, {'_', '_'}, {'a', 'z'}},
	"xdigit": {{'0', '9'}, {'A', 'F'}, {'a', 'f'}},
}

// perlRanges resolves \d, \s, \w and their upper-case negations.
func perlRanges(c byte) []ClassRange {
	var ranges []ClassRange
	switch c {
	case 'd', 'D':
		ranges = digitRanges
	case 's', 'S':
		ranges = spaceRanges
	case 'w', 'W':
		ranges = wordRanges
	}
	if c == 'D' || c == 'S' || c == 'W' {
		return negateRanges(ranges)
	}
	return ranges
}

// unicodeClass resolves a \p class name against the general categories
// first and the script tables second.
func unicodeClass(name string) *unicode.RangeTable {
	if t, ok := unicode.Categories[name]; ok {
		return t
	}
	if t, ok := unicode.Scripts[name]; ok {
		return t
	}
	return nil
}

// tableRanges flattens unicode range tables into sorted class ranges.
func tableRanges(tables ...*unicode.RangeTable) []ClassRange {
	var out []ClassRange
	for _, t := range tables {
		for _, r := range t.R16 {
			out = strideRanges(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
		}
		for _, r := range t.R32 {
			out = strideRanges(out, rune(r.Lo), rune(r.Hi), rune(r.Stride))
		}
	}
	return normalizeRanges(out)
}

func strideRanges(out []ClassRange, lo, hi, stride rune) []ClassRange {
	if stride == 1 {
		return append(out, ClassRange{lo, hi})
	}
	for c := lo; c <= hi; c += stride {
		out = append(out, ClassRange{c, c})
	}
	return out
}

// normalizeRanges sorts ranges and merges every overlapping or adjacent
// pair, producing the canonical form Node.Ranges promises.
func normalizeRanges(ranges []ClassRange) []ClassRange {
	if len(ranges) <= 1 {
		return ranges
	}
	slices.SortFunc(ranges, func(a, b ClassRange) int {
		if a.Lo != b.Lo {
			return int(a.Lo - b.Lo)
		}
		return int(a.Hi - b.Hi)
	})
	out := ranges[:1]
	for _, r := range ranges[1:] {
		last := &out[len(out)-1]
		if r.Lo <= last.Hi+1 {
			if r.Hi > last.Hi {
				last.Hi = r.Hi
			}
			continue
		}
		out = append(out, r)
	}
	return out
}

// negateRanges complements a normalized range set within the Unicode
// scalar values.
func negateRanges(ranges []ClassRange) []ClassRange {
	out := make([]ClassRange, 0, len(ranges)+1)
	next := rune(0)
	for _, r := range ranges {
		if r.Lo > next {
			out = append(out, ClassRange{next, r.Lo - 1})
		}
		if r.Hi+1 > next {
			next = r.Hi + 1
		}
	}
	if next <= utf8.MaxRune {
		out = append(out, ClassRange{next, utf8.MaxRune})
	}
	return dropSurrogates(out)
}

// dropSurrogates cuts the surrogate halves out of a normalized range set.
func dropSurrogates(ranges []ClassRange) []ClassRange {
	out := make([]ClassRange, 0, len(ranges)+1)
	for _, r := range ranges {
		if r.Hi < surrogateMin || r.Lo > surrogateMax {
			out = append(out, r)
			continue
		}
		if r.Lo < surrogateMin {
			out = append(out, ClassRange{r.Lo, surrogateMin - 1})
		}
		if r.Hi > surrogateMax {
			out = append(out, ClassRange{surrogateMax + 1, r.Hi})
		}
	}
	return out
}

// foldRanges widens a normalized range set with the case-folding orbit of
// every member that has one. The input is left untouched; the predefined
// class tables are shared.
func foldRanges(ranges []ClassRange) []ClassRange {
	folded := slices.Clone(ranges)
	for _, r := range ranges {
		lo, hi := r.Lo, r.Hi
		if lo < minFold {
			lo = minFold
		}
		if hi > maxFold {
			hi = maxFold
		}
		for c := lo; c <= hi; c++ {
			for f := unicode.SimpleFold(c); f != c; f = unicode.SimpleFold(f) {
				folded = append(folded, ClassRange{f, f})
			}
		}
	}
	return normalizeRanges(folded)
}

// foldOrbit returns the sorted ranges covering r and every character that
// simple-folds to it, or nil when r has no case partners.
func foldOrbit(r rune) []ClassRange {
	if unicode.SimpleFold(r) == r {
		return nil
	}
	ranges := []ClassRange{{r, r}}
	for f := unicode.SimpleFold(r); f != r; f = unicode.SimpleFold(f) {
		ranges = append(ranges, ClassRange{f, f})
	}
	return normalizeRanges(ranges)
}
