package extract

import (
	"fmt"
	"slices"

	"go.uber.org/zap"

	"github.com/wikimark/wikiconf/internal/pcre"
	"github.com/wikimark/wikiconf/internal/siteinfo"
)

// LinkTrailGroupIndex is the capturing group that holds the repeated trail
// character in every linktrail pattern MediaWiki emits.
const LinkTrailGroupIndex = 1

// GroupNotFoundError means the pattern has no capturing group with the
// requested index.
type GroupNotFoundError struct {
	Pattern string
	Index   int
}

func (e *GroupNotFoundError) Error() string {
	return fmt.Sprintf("group %d not found in link trail pattern %q", e.Index, e.Pattern)
}

// GroupStructureError means the capturing group's child list is malformed,
// so no repeated body can be determined.
type GroupStructureError struct {
	Pattern string
	Index   int
}

func (e *GroupStructureError) Error() string {
	return fmt.Sprintf("group %d of link trail pattern %q has a malformed body", e.Index, e.Pattern)
}

// CharacterSetStructureError means character enumeration reached a node
// that does not describe a plain set of alternative characters.
type CharacterSetStructureError struct {
	Op pcre.Op
}

func (e *CharacterSetStructureError) Error() string {
	return fmt.Sprintf("cannot enumerate the characters of a %s node", e.Op)
}

// LinkTrail extracts the set of characters the wiki's linktrail pattern
// lets a link label spill over into.
func LinkTrail(logger *zap.Logger, q *siteinfo.Query) ([]rune, error) {
	return LinkTrailPattern(logger, q.General.LinkTrail, LinkTrailGroupIndex)
}

// LinkTrailPattern parses a delimited pattern, locates the capturing group
// with the given index and enumerates the characters its repeated body
// matches. A group wrapping nothing yields an empty set.
func LinkTrailPattern(logger *zap.Logger, pattern string, index int) ([]rune, error) {
	logger.Debug("link trail pattern", zap.String("pattern", pattern))
	p, err := pcre.Parse(pattern)
	if err != nil {
		return nil, err
	}
	group := p.Tree.FindGroup(index)
	if group == nil {
		return nil, &GroupNotFoundError{Pattern: pattern, Index: index}
	}
	body, err := repeatedBody(pattern, index, group)
	if err != nil {
		return nil, err
	}
	if body == nil {
		logger.Debug("link trail group is empty")
		return nil, nil
	}
	logger.Debug("link trail repeated body", zap.String("node", body.String()))
	return Characters(body)
}

// repeatedBody unwraps the group down to the node worth enumerating: the
// inner child of a repetition, nil for an empty group, or the group's
// direct child as-is when no quantifier is visible.
func repeatedBody(pattern string, index int, group *pcre.Node) (*pcre.Node, error) {
	if len(group.Sub) != 1 {
		return nil, &GroupStructureError{Pattern: pattern, Index: index}
	}
	child := group.Sub[0]
	switch child.Op {
	case pcre.OpEmpty:
		return nil, nil
	case pcre.OpRepeat:
		if len(child.Sub) != 1 {
			return nil, &GroupStructureError{Pattern: pattern, Index: index}
		}
		return child.Sub[0], nil
	default:
		return child, nil
	}
}

// Characters enumerates every character the node can match, sorted and
// deduplicated. Only alternations, classes, groups and literals describe
// such a set; any other node fails.
func Characters(body *pcre.Node) ([]rune, error) {
	set := make(map[rune]struct{})
	if err := charactersOf(body, set); err != nil {
		return nil, err
	}
	chars := make([]rune, 0, len(set))
	for c := range set {
		chars = append(chars, c)
	}
	slices.Sort(chars)
	return chars, nil
}

func charactersOf(n *pcre.Node, set map[rune]struct{}) error {
	switch n.Op {
	case pcre.OpAlternate:
		for _, sub := range n.Sub {
			if err := charactersOf(sub, set); err != nil {
				return err
			}
		}
		return nil
	case pcre.OpClass:
		for _, r := range n.Ranges {
			for c := r.Lo; c <= r.Hi; c++ {
				set[c] = struct{}{}
			}
		}
		return nil
	case pcre.OpGroup:
		if len(n.Sub) != 1 {
			return &CharacterSetStructureError{Op: n.Op}
		}
		return charactersOf(n.Sub[0], set)
	case pcre.OpLiteral:
		set[n.Rune] = struct{}{}
		return nil
	default:
		return &CharacterSetStructureError{Op: n.Op}
	}
}
