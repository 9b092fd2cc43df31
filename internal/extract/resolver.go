// Package extract implements the fallback-chain claim resolver shared by
// every request extractor in cookiegate.
//
// Historically the user-id, language, and login-token lookups each carried
// their own cookie/header fallback logic and drifted apart. The resolver
// collapses them into one primitive: an ordered chain of (source, name)
// references evaluated left to right, first non-empty value wins.
package extract

import "net/http"

// Source identifies where a chain entry reads from.
type Source int

const (
	// SourceCookie reads a request cookie.
	SourceCookie Source = iota
	// SourceHeader reads a request header.
	SourceHeader
)

// Ref is one entry in a fallback chain.
type Ref struct {
	Source Source
	Name   string
}

// Cookie builds a cookie chain entry.
func Cookie(name string) Ref {
	return Ref{Source: SourceCookie, Name: name}
}

// Header builds a header chain entry.
func Header(name string) Ref {
	return Ref{Source: SourceHeader, Name: name}
}

// Resolve evaluates the chain against r and returns the first non-empty
// value, or the empty string when nothing matched. Missing fields are never
// an error.
func Resolve(r *http.Request, chain []Ref) string {
	for _, ref := range chain {
		switch ref.Source {
		case SourceCookie:
			if c, err := r.Cookie(ref.Name); err == nil && c.Value != "" {
				return c.Value
			}
		case SourceHeader:
			if v := r.Header.Get(ref.Name); v != "" {
				return v
			}
		}
	}
	return ""
}
