// Package siteinfo fetches and decodes the slice of a MediaWiki site's
// configuration that wikitext parsing depends on, using the public
// action=query&meta=siteinfo API.
package siteinfo

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Response is the top-level API envelope. MediaWiki reports failures
// in-band: errors or warnings may accompany or replace the query payload,
// so the payload stays raw until DecodeQuery inspects the envelope.
type Response struct {
	Query json.RawMessage `json:"query"`

	Errors   Errors `json:"errors"`
	Warnings Errors `json:"warnings"`
}

// ErrNoQuery means the envelope carried neither a query payload nor any
// error or warning explaining its absence.
var ErrNoQuery = errors.New("no errors or warnings, and no query found")

// DecodeQuery unpacks the query payload, refusing envelopes that carry
// API errors or warnings.
func (r *Response) DecodeQuery() (*Query, error) {
	if len(r.Errors) > 0 {
		return nil, r.Errors
	}
	if len(r.Warnings) > 0 {
		return nil, r.Warnings
	}
	if len(r.Query) == 0 {
		return nil, ErrNoQuery
	}
	var q Query
	if err := json.Unmarshal(r.Query, &q); err != nil {
		return nil, fmt.Errorf("siteinfo query: %w", err)
	}
	return &q, nil
}

// Query carries the six siteinfo properties the extractor consumes. The
// API returns many more fields per object; only the ones used here are
// declared.
type Query struct {
	ExtensionTags    []string             `json:"extensiontags"`
	General          General              `json:"general"`
	MagicWords       []MagicWord          `json:"magicwords"`
	NamespaceAliases []NamespaceAlias     `json:"namespacealiases"`
	Namespaces       map[string]Namespace `json:"namespaces"`
	Protocols        []string             `json:"protocols"`
}

type General struct {
	LinkTrail string `json:"linktrail"`
}

type MagicWord struct {
	Aliases       []string `json:"aliases"`
	CaseSensitive bool     `json:"case-sensitive"`
	Name          string   `json:"name"`
}

type NamespaceAlias struct {
	ID    int64  `json:"id"`
	Alias string `json:"alias"`
}

type Namespace struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	Canonical string `json:"canonical"`
}

// Errors is the plaintext error list returned under errorformat=plaintext.
// It doubles as an error value so the whole list can be returned as one
// failure.
type Errors []ResponseError

func (e Errors) Error() string {
	msgs := make([]string, len(e))
	for i, re := range e {
		msgs[i] = re.Error()
	}
	return strings.Join(msgs, "; ")
}

// ResponseError is one entry of an errors or warnings list.
type ResponseError struct {
	Code   string          `json:"code"`
	Data   json.RawMessage `json:"data"`
	Module string          `json:"module"`
	Text   string          `json:"text"`
}

func (e ResponseError) Error() string {
	if len(e.Data) > 0 {
		return fmt.Sprintf("siteinfo API [%s] %s %s (%s)", e.Module, e.Code, e.Text, e.Data)
	}
	return fmt.Sprintf("siteinfo API [%s] %s %s", e.Module, e.Code, e.Text)
}
