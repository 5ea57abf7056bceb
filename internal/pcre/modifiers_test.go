package pcre

import (
	"errors"
	"testing"
)

func TestParseModifiers(t *testing.T) {
	tests := []struct {
		name string
		text string
		want Modifiers
	}{
		{"empty", "", Modifiers{}},
		{"single letter", "i", Modifiers{Caseless: true}},
		{
			name: "common lowercase set",
			text: "imsxu",
			want: Modifiers{Caseless: true, Multiline: true, DotAll: true, Extended: true, UTF8: true},
		},
		{
			name: "uppercase set",
			text: "ADSUX",
			want: Modifiers{Anchored: true, DollarEndOnly: true, Speedup: true, Ungreedy: true, Extra: true},
		},
		{
			name: "separators between letters",
			text: "i m\ns\r",
			want: Modifiers{Caseless: true, Multiline: true, DotAll: true},
		},
		{"repeated letters", "iii", Modifiers{Caseless: true}},
		{"linktrail modifiers", "sD", Modifiers{DotAll: true, DollarEndOnly: true}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseModifiers(tt.text)
			if err != nil {
				t.Fatalf("ParseModifiers(%q) error = %v", tt.text, err)
			}
			if got != tt.want {
				t.Errorf("ParseModifiers(%q) = %+v, want %+v", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseModifiersErrors(t *testing.T) {
	tests := []struct {
		name        string
		text        string
		char        rune
		unsupported bool
	}{
		{"unrecognized letter", "Z", 'Z', false},
		{"unrecognized non-ascii", "é", 'é', false},
		{"unsupported J", "J", 'J', true},
		{"J among valid letters", "iJm", 'J', true},
		{"unrecognized letter reported before J", "JZ", 'Z', false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModifiers(tt.text)
			var me *ModifierError
			if !errors.As(err, &me) {
				t.Fatalf("ParseModifiers(%q) error = %v, want a *ModifierError", tt.text, err)
			}
			if me.Char != tt.char || me.Unsupported != tt.unsupported {
				t.Errorf("ParseModifiers(%q) error = %+v, want char %q unsupported %t",
					tt.text, me, tt.char, tt.unsupported)
			}
		})
	}
}
