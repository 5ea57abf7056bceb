/*
Package pcre parses the delimited regular expression dialect PHP exposes
through its preg_* functions, which is the dialect MediaWiki reports in its
site configuration (most prominently the linktrail pattern).

# Overview

A PHP PCRE pattern is a regex body wrapped in a delimiter pair, followed by
modifier letters:

	/^([a-z]+)(.*)$/sD

Parse splits the three parts, interprets the modifiers, and translates the
body into a small syntax tree. The tree is built for structural inspection
rather than matching: modifiers that change what the pattern can match are
folded into the tree itself, so consumers never need to carry the modifier
set alongside it.

# Delimiters

The opening delimiter is the first ASCII character of the pattern that is
neither alphanumeric nor a backslash; leading ASCII whitespace is skipped.
The bracket characters pair with their counterparts, every other delimiter
closes with itself:

	/abc/        plain
	{abc}        bracket pair
	~abc~i       self-paired with a modifier

The body ends at the last occurrence of the closing delimiter, so an
unescaped delimiter character may still appear inside the body.

# Modifiers

The recognized modifier letters follow preg_match: i, m, s, x, A, D, S, U,
X, J and u. Newlines, carriage returns and spaces between letters are
skipped. An unknown letter is rejected, as is J, whose duplicate-name
capture semantics this package does not model.

# Translation

The translator resolves every context-dependent construct while building
the tree:

  - Under i, characters with case partners become classes holding their
    full case-folding orbit, and classes of every spelling gain their
    case-folded closure before any negation applies.
  - Under s, the dot matches every Unicode scalar value; otherwise every
    scalar value except the line feed.
  - Under m, the line anchors ^ and $ become line-boundary assertions
    instead of text-boundary assertions.
  - Under U, the meaning of the lazy quantifier suffix is inverted.
  - Under x, unescaped whitespace and #-to-end-of-line comments are
    stripped from the body before parsing.
  - Negated character classes are materialized as the concrete ranges
    they match.

Constructs whose match set cannot be represented structurally, such as
look-around assertions and backreferences, are rejected with a
SyntaxError.
*/
package pcre
