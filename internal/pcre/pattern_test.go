package pcre

import (
	"errors"
	"reflect"
	"testing"
)

func TestParse(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    *Pattern
	}{
		{
			name:    "slash delimiters",
			pattern: "/ab/",
			want:    &Pattern{Tree: cat(lit('a'), lit('b'))},
		},
		{
			name:    "caseless pattern folds its literals",
			pattern: "/ab+c/i",
			want: &Pattern{
				Tree: cat(
					cls(ClassRange{'A', 'A'}, ClassRange{'a', 'a'}),
					rep(1, -1, true, cls(ClassRange{'B', 'B'}, ClassRange{'b', 'b'})),
					cls(ClassRange{'C', 'C'}, ClassRange{'c', 'c'}),
				),
				Modifiers: Modifiers{Caseless: true},
			},
		},
		{
			name:    "brace delimiters with a modifier",
			pattern: "{a}m",
			want:    &Pattern{Tree: lit('a'), Modifiers: Modifiers{Multiline: true}},
		},
		{
			name:    "angle delimiters",
			pattern: "<a>",
			want:    &Pattern{Tree: lit('a')},
		},
		{
			name:    "square bracket delimiters around a class",
			pattern: "[[a]]",
			want:    &Pattern{Tree: cls(ClassRange{'a', 'a'})},
		},
		{
			name:    "body may contain the closing delimiter",
			pattern: "/a/b/",
			want:    &Pattern{Tree: cat(lit('a'), lit('/'), lit('b'))},
		},
		{
			name:    "leading whitespace is skipped",
			pattern: "  /a/",
			want:    &Pattern{Tree: lit('a')},
		},
		{
			name:    "tilde delimiter with spaced modifiers",
			pattern: "~8~ i",
			want:    &Pattern{Tree: lit('8'), Modifiers: Modifiers{Caseless: true}},
		},
		{
			name:    "empty body",
			pattern: "//",
			want:    &Pattern{Tree: emp()},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Parse(tt.pattern)
			if err != nil {
				t.Fatalf("Parse(%q) error = %v", tt.pattern, err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Parse(%q) = %v %+v, want %v %+v",
					tt.pattern, got.Tree, got.Modifiers, tt.want.Tree, tt.want.Modifiers)
			}
		})
	}
}

func TestParseDelimiterErrors(t *testing.T) {
	tests := []struct {
		name    string
		pattern string
		want    error
	}{
		{"empty input", "", ErrNoDelimiter},
		{"alphanumeric start", "abc", ErrNoDelimiter},
		{"digit start", "1a1", ErrNoDelimiter},
		{"backslash start", `\a\`, ErrNoDelimiter},
		{"non-ascii start", "éaé", ErrNoDelimiter},
		{"whitespace only", "   ", ErrNoDelimiter},
		{"unterminated", "/ab", ErrUnterminated},
		{"unterminated bracket pair", "{ab", ErrUnterminated},
		{"bare delimiter", "/", ErrUnterminated},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse(tt.pattern)
			if !errors.Is(err, tt.want) {
				t.Fatalf("Parse(%q) error = %v, want %v", tt.pattern, err, tt.want)
			}
			var pe *PatternError
			if !errors.As(err, &pe) || pe.Pattern != tt.pattern {
				t.Errorf("Parse(%q) error = %#v, want a *PatternError carrying the pattern", tt.pattern, err)
			}
		})
	}
}

func TestParseWrapsModifierError(t *testing.T) {
	_, err := Parse("/a/Z")
	var me *ModifierError
	if !errors.As(err, &me) {
		t.Fatalf("Parse error = %v, want a *ModifierError", err)
	}
	if me.Char != 'Z' || me.Unsupported {
		t.Errorf("ModifierError = %+v, want unrecognized 'Z'", me)
	}
}

func TestParseIsDeterministic(t *testing.T) {
	const pattern = "/^([a-zäö-ü]+)(.*)$/sD"
	first, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", pattern, err)
	}
	second, err := Parse(pattern)
	if err != nil {
		t.Fatalf("Parse(%q) error = %v", pattern, err)
	}
	if !reflect.DeepEqual(first, second) {
		t.Errorf("Parse(%q) differs between runs:\n%v\n%v", pattern, first.Tree, second.Tree)
	}
}
