// Package extract derives the configuration sets a wikitext parser needs
// from a wiki's siteinfo query: namespace names, extension tags, magic
// words, protocol prefixes and the link trail alphabet.
package extract

import (
	"fmt"
	"slices"
	"strings"

	"go.uber.org/zap"

	"github.com/wikimark/wikiconf/internal/siteinfo"
)

// ConfigurationSource is everything the generator needs to describe one
// wiki. All slices are sorted and free of duplicates.
type ConfigurationSource struct {
	CategoryNamespaces []string
	ExtensionTags      []string
	FileNamespaces     []string
	LinkTrail          []rune
	MagicWords         []string
	Protocols          []string
	RedirectMagicWords []string
}

// NamespaceNotFoundError means no namespace in the query carries the
// requested canonical name.
type NamespaceNotFoundError struct {
	Canonical string
}

func (e *NamespaceNotFoundError) Error() string {
	return fmt.Sprintf("namespace not found: %q", e.Canonical)
}

// MalformedExtensionTagError means an extensiontags entry was not wrapped
// in angle brackets.
type MalformedExtensionTagError struct {
	Tag string
}

func (e *MalformedExtensionTagError) Error() string {
	return fmt.Sprintf("malformed extension tag: %q", e.Tag)
}

// Source assembles the full configuration for one wiki. Extraction is
// strictly sequential and aborts on the first failing field.
func Source(logger *zap.Logger, q *siteinfo.Query) (*ConfigurationSource, error) {
	categoryNamespaces, err := Namespaces(q, "Category")
	if err != nil {
		return nil, err
	}
	logger.Debug("category namespaces",
		zap.Int("count", len(categoryNamespaces)),
		zap.Strings("names", categoryNamespaces))

	fileNamespaces, err := Namespaces(q, "File")
	if err != nil {
		return nil, err
	}
	logger.Debug("file namespaces",
		zap.Int("count", len(fileNamespaces)),
		zap.Strings("names", fileNamespaces))

	extensionTags, err := ExtensionTags(q)
	if err != nil {
		return nil, err
	}
	logger.Debug("extension tags",
		zap.Int("count", len(extensionTags)),
		zap.Strings("tags", extensionTags))

	protocols := Protocols(q)
	logger.Debug("protocols",
		zap.Int("count", len(protocols)),
		zap.Strings("prefixes", protocols))

	linkTrail, err := LinkTrail(logger, q)
	if err != nil {
		return nil, err
	}
	if len(linkTrail) <= 1<<7 {
		logger.Debug("link trail",
			zap.Int("count", len(linkTrail)),
			zap.String("characters", string(linkTrail)))
	} else {
		// Some wikis admit most of the Unicode space; logging it all
		// helps nobody.
		logger.Debug("link trail", zap.Int("count", len(linkTrail)))
	}

	magicWords := MagicWords(q)
	logger.Debug("magic words",
		zap.Int("count", len(magicWords)),
		zap.Strings("words", magicWords))

	redirectMagicWords := RedirectMagicWords(q)
	logger.Debug("redirect magic words",
		zap.Int("count", len(redirectMagicWords)),
		zap.Strings("words", redirectMagicWords))

	return &ConfigurationSource{
		CategoryNamespaces: categoryNamespaces,
		ExtensionTags:      extensionTags,
		FileNamespaces:     fileNamespaces,
		LinkTrail:          linkTrail,
		MagicWords:         magicWords,
		Protocols:          protocols,
		RedirectMagicWords: redirectMagicWords,
	}, nil
}

// Namespaces collects every name the wiki accepts for the namespace with
// the given canonical name: its aliases, the canonical name itself and the
// localized name, all lowercased.
func Namespaces(q *siteinfo.Query, canonical string) ([]string, error) {
	ns, ok := findNamespace(q, canonical)
	if !ok {
		return nil, &NamespaceNotFoundError{Canonical: canonical}
	}
	set := make(stringSet)
	for _, alias := range q.NamespaceAliases {
		if alias.ID == ns.ID {
			set.add(strings.ToLower(alias.Alias))
		}
	}
	set.add(strings.ToLower(canonical))
	set.add(strings.ToLower(ns.Name))
	return set.sorted(), nil
}

// findNamespace scans namespaces in key order, so repeated runs always
// pick the same entry even if a canonical name were duplicated.
func findNamespace(q *siteinfo.Query, canonical string) (siteinfo.Namespace, bool) {
	keys := make([]string, 0, len(q.Namespaces))
	for k := range q.Namespaces {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	for _, k := range keys {
		if ns := q.Namespaces[k]; ns.Canonical == canonical {
			return ns, true
		}
	}
	return siteinfo.Namespace{}, false
}

// ExtensionTags strips the angle brackets off every reported extension tag
// and lowercases the names.
func ExtensionTags(q *siteinfo.Query) ([]string, error) {
	set := make(stringSet, len(q.ExtensionTags))
	for _, tag := range q.ExtensionTags {
		inner, ok := strings.CutPrefix(tag, "<")
		if ok {
			inner, ok = strings.CutSuffix(inner, ">")
		}
		if !ok {
			return nil, &MalformedExtensionTagError{Tag: tag}
		}
		set.add(strings.ToLower(inner))
	}
	return set.sorted(), nil
}

// Protocols lowercases the external link protocol prefixes.
func Protocols(q *siteinfo.Query) []string {
	set := make(stringSet, len(q.Protocols))
	for _, p := range q.Protocols {
		set.add(strings.ToLower(p))
	}
	return set.sorted()
}

// MagicWords collects the names and aliases of the double-underscore magic
// words, trimmed of their underscores and lowercased. Words of any other
// shape are skipped, not rejected.
func MagicWords(q *siteinfo.Query) []string {
	set := make(stringSet)
	for _, mw := range q.MagicWords {
		for _, alias := range mw.Aliases {
			addDoubleUnderscore(set, alias)
		}
		addDoubleUnderscore(set, mw.Name)
	}
	return set.sorted()
}

func addDoubleUnderscore(set stringSet, word string) {
	inner, ok := strings.CutPrefix(word, "__")
	if ok {
		inner, ok = strings.CutSuffix(inner, "__")
	}
	if ok {
		set.add(strings.ToLower(inner))
	}
}

// RedirectMagicWords collects the aliases of the redirect magic word with
// any leading # removed, lowercased, plus the word "redirect" itself.
func RedirectMagicWords(q *siteinfo.Query) []string {
	const name = "redirect"
	set := make(stringSet)
	for _, mw := range q.MagicWords {
		if mw.Name != name {
			continue
		}
		for _, alias := range mw.Aliases {
			set.add(strings.ToLower(strings.TrimPrefix(alias, "#")))
		}
	}
	set.add(name)
	return set.sorted()
}

type stringSet map[string]struct{}

func (s stringSet) add(v string) { s[v] = struct{}{} }

func (s stringSet) sorted() []string {
	out := make([]string, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	slices.Sort(out)
	return out
}
