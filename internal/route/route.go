// Package route maps application URLs onto the browse route and the backend
// index paths behind it.
package route

import "strings"

// DefaultBrowsePath is the prefix all tree routes are mounted under.
const DefaultBrowsePath = "tree"

// Kind identifies the page a URL belongs to.
type Kind int

const (
	None Kind = iota
	Welcome
	Browse
)

func (k Kind) String() string {
	switch k {
	case Welcome:
		return "welcome"
	case Browse:
		return "browse"
	default:
		return "none"
	}
}

// Route is the result of matching an application path.
type Route struct {
	Kind Kind
	// CatchAll is set when the path continued past the browse prefix.
	CatchAll bool
	// Segments holds the escaped segments after the browse prefix. A
	// trailing "" stands for a trailing slash.
	Segments []string
}

// Resolver converts between route segments and backend paths.
type Resolver struct {
	BrowsePath string
}

// NewResolver returns a resolver for routes mounted under browsePath.
func NewResolver(browsePath string) *Resolver {
	browsePath = strings.Trim(browsePath, "/")
	if browsePath == "" {
		browsePath = DefaultBrowsePath
	}
	return &Resolver{BrowsePath: browsePath}
}

// Match resolves an escaped URL path (no query, no fragment).
func (r *Resolver) Match(urlPath string) Route {
	segs := Split(urlPath)
	if len(segs) == 0 {
		return Route{Kind: Welcome}
	}
	if segs[0] != r.BrowsePath {
		return Route{Kind: None}
	}
	if len(segs) == 1 {
		return Route{Kind: Browse}
	}
	return Route{Kind: Browse, CatchAll: true, Segments: segs[1:]}
}

// BackendPath returns the index path requested for segments.
func (r *Resolver) BackendPath(segments []string, catchAll bool) string {
	if len(segments) == 0 || !catchAll {
		return "/"
	}
	return "/" + strings.Join(segments, "/")
}

// ParentURL returns the application URL one level above segments.
func (r *Resolver) ParentURL(segments []string) string {
	if len(segments) == 0 {
		return "/"
	}
	drop := 1
	if segments[len(segments)-1] == "" {
		drop = 2
	}
	rest := segments[:max(len(segments)-drop, 0)]
	if len(rest) > 0 {
		return "/" + r.BrowsePath + "/" + strings.Join(rest, "/") + "/"
	}
	return "/" + r.BrowsePath + "/"
}

// URL returns the application URL for an index path as listed by the
// backend (leading slash, already escaped).
func (r *Resolver) URL(indexPath string) string {
	if !strings.HasPrefix(indexPath, "/") {
		indexPath = "/" + indexPath
	}
	return "/" + r.BrowsePath + indexPath
}

// DecodePlus turns every literal %2B back into '+'. The index service
// expects '+' unescaped while the URL layer escapes it.
func DecodePlus(path string) string {
	return strings.ReplaceAll(path, "%2B", "+")
}

// Split cuts an absolute URL path into segments. "/" and "" yield no
// segments; a trailing slash yields a trailing "".
func Split(urlPath string) []string {
	urlPath = strings.TrimPrefix(urlPath, "/")
	if urlPath == "" {
		return nil
	}
	return strings.Split(urlPath, "/")
}
