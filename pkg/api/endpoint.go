// Package api defines the endpoint descriptors for the NBA Stats API and
// small helpers shared by all endpoint families.
package api

import (
	"net/url"
	"strings"
)

// BaseURL is the fixed host all stats endpoints live under.
const BaseURL = "https://stats.nba.com/stats"

// DefaultHeaders are required by the stats API; requests without a
// browser-like header set are rejected or silently stalled.
var DefaultHeaders = map[string]string{
	"Accept":          "*/*",
	"Accept-Language": "en-US,en;q=0.5",
	"Connection":      "keep-alive",
	"Referer":         "https://stats.nba.com/",
	"Pragma":          "no-cache",
	"Cache-Control":   "no-cache",
	"User-Agent":      "Mozilla/5.0 (Windows NT 10.0; Win64; x64; rv:109.0) Gecko/20100101 Firefox/113.0",
}

// Param is one query parameter. Parameters are kept as an ordered slice
// rather than a map so the serialized query string is stable and matches
// the order the endpoint declared.
type Param struct {
	Key   string
	Value string
}

// Endpoint describes one remote resource: a path below BaseURL and its
// query parameters. Endpoints are immutable values constructed once per
// logical request.
type Endpoint struct {
	path   string
	params []Param
}

// NewEndpoint creates an endpoint descriptor for the given path segment
// (e.g. "leaguestandingsv3") and parameters.
func NewEndpoint(path string, params ...Param) Endpoint {
	p := make([]Param, len(params))
	copy(p, params)
	return Endpoint{path: path, params: p}
}

// Path returns the path segment below BaseURL.
func (e Endpoint) Path() string {
	return e.path
}

// Params returns a copy of the ordered query parameters.
func (e Endpoint) Params() []Param {
	p := make([]Param, len(e.params))
	copy(p, e.params)
	return p
}

// Query serializes the parameters in declaration order with standard URL
// escaping.
func (e Endpoint) Query() string {
	var b strings.Builder
	for i, p := range e.params {
		if i > 0 {
			b.WriteByte('&')
		}
		b.WriteString(url.QueryEscape(p.Key))
		b.WriteByte('=')
		b.WriteString(url.QueryEscape(p.Value))
	}
	return b.String()
}

// URL joins a base URL, the path, and the query string.
func (e Endpoint) URL(base string) string {
	u := strings.TrimSuffix(base, "/") + "/" + e.path
	if q := e.Query(); q != "" {
		u += "?" + q
	}
	return u
}

// String returns the path with its query, for logging.
func (e Endpoint) String() string {
	if q := e.Query(); q != "" {
		return e.path + "?" + q
	}
	return e.path
}
