package siteinfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleQuery = `{
	"query": {
		"extensiontags": ["<pre>", "<nowiki>", "<gallery>"],
		"general": {"linktrail": "/^([a-z]+)(.*)$/sD", "sitename": "Test Wiki"},
		"magicwords": [
			{"name": "redirect", "aliases": ["#REDIRECT"], "case-sensitive": false},
			{"name": "toc", "aliases": ["__TOC__"], "case-sensitive": false}
		],
		"namespacealiases": [{"id": 6, "alias": "Image"}],
		"namespaces": {
			"0": {"id": 0, "name": "", "content": true},
			"6": {"id": 6, "name": "File", "canonical": "File", "content": false},
			"14": {"id": 14, "name": "Category", "canonical": "Category"}
		},
		"protocols": ["http://", "https://", "mailto:"]
	}
}`

func TestNewEndpointURL(t *testing.T) {
	e, err := NewEndpoint("en.wikipedia.org")
	require.NoError(t, err)

	u := e.URL()
	assert.True(t, strings.HasPrefix(u, "https://en.wikipedia.org/w/api.php?"), "url = %s", u)
	for _, fragment := range []string{
		"action=query",
		"meta=siteinfo",
		"format=json",
		"formatversion=2",
		"errorformat=plaintext",
		"siprop=extensiontags%7Cgeneral%7Cmagicwords%7Cnamespacealiases%7Cnamespaces%7Cprotocols",
	} {
		assert.Contains(t, u, fragment)
	}
}

func TestNewEndpointRejectsBadDomains(t *testing.T) {
	for _, domain := range []string{
		"",
		"en.wikipedia.org/w",
		"https://en.wikipedia.org",
		"host:8080",
		"two words",
		"query?x=1",
	} {
		t.Run(domain, func(t *testing.T) {
			_, err := NewEndpoint(domain)
			assert.Error(t, err)
		})
	}
}

func TestFetchQuery(t *testing.T) {
	var gotUA string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA = r.Header.Get("User-Agent")
		assert.Equal(t, "/w/api.php", r.URL.Path)
		assert.Equal(t, "siteinfo", r.URL.Query().Get("meta"))
		assert.Equal(t, "2", r.URL.Query().Get("formatversion"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(sampleQuery))
	}))
	defer server.Close()

	e, err := NewEndpoint("example.org",
		WithBaseURL(server.URL+"/w/api.php"),
		WithUserAgent("wikiconf/0.1.0 (test)"),
	)
	require.NoError(t, err)

	q, err := e.FetchQuery(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "wikiconf/0.1.0 (test)", gotUA)
	assert.Equal(t, "/^([a-z]+)(.*)$/sD", q.General.LinkTrail)
	assert.Equal(t, []string{"<pre>", "<nowiki>", "<gallery>"}, q.ExtensionTags)
	assert.Equal(t, []string{"http://", "https://", "mailto:"}, q.Protocols)
	assert.Len(t, q.MagicWords, 2)
	assert.Equal(t, "redirect", q.MagicWords[0].Name)
	assert.Equal(t, []string{"#REDIRECT"}, q.MagicWords[0].Aliases)

	require.Contains(t, q.Namespaces, "14")
	assert.Equal(t, int64(14), q.Namespaces["14"].ID)
	assert.Equal(t, "Category", q.Namespaces["14"].Canonical)
	assert.Equal(t, "", q.Namespaces["0"].Canonical)

	require.Len(t, q.NamespaceAliases, 1)
	assert.Equal(t, int64(6), q.NamespaceAliases[0].ID)
	assert.Equal(t, "Image", q.NamespaceAliases[0].Alias)
}

func TestFetchRejectsErrorStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	}))
	defer server.Close()

	e, err := NewEndpoint("example.org", WithBaseURL(server.URL+"/w/api.php"))
	require.NoError(t, err)

	_, err = e.Fetch(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "503")
}

func TestFetchHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer server.Close()

	e, err := NewEndpoint("example.org", WithBaseURL(server.URL+"/w/api.php"))
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = e.Fetch(ctx)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestDecodeQueryEnvelopes(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name:    "api error",
			body:    `{"errors": [{"code": "badvalue", "module": "main", "text": "Unrecognized value for parameter \"siprop\"."}]}`,
			wantErr: `siteinfo API [main] badvalue Unrecognized value for parameter "siprop".`,
		},
		{
			name: "multiple errors joined",
			body: `{"errors": [
				{"code": "a", "module": "m1", "text": "first"},
				{"code": "b", "module": "m2", "text": "second"}
			]}`,
			wantErr: "siteinfo API [m1] a first; siteinfo API [m2] b second",
		},
		{
			name:    "warnings also refuse decoding",
			body:    `{"query": {"protocols": []}, "warnings": [{"code": "deprecated", "module": "query", "text": "old param"}]}`,
			wantErr: "siteinfo API [query] deprecated old param",
		},
		{
			name:    "empty envelope",
			body:    `{}`,
			wantErr: ErrNoQuery.Error(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			e, err := NewEndpoint("example.org", WithBaseURL(server.URL+"/w/api.php"))
			require.NoError(t, err)

			resp, err := e.Fetch(context.Background())
			require.NoError(t, err)

			_, err = resp.DecodeQuery()
			require.Error(t, err)
			assert.Equal(t, tt.wantErr, err.Error())
		})
	}
}
