package router

import (
	"net/url"
	"slices"
	"strings"
)

// URLTree is a parsed application URL.
type URLTree struct {
	// Segments are escaped path segments; a trailing "" keeps a trailing
	// slash.
	Segments []string
	Query    string
	// Fragment is nil when the URL had no '#'.
	Fragment *string
}

// Parse splits an application URL into a tree. Segments are re-escaped so
// that "a b" and "a%20b" compare equal.
func Parse(raw string) URLTree {
	var t URLTree
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		frag := raw[i+1:]
		t.Fragment = &frag
		raw = raw[:i]
	}
	if i := strings.IndexByte(raw, '?'); i >= 0 {
		t.Query = raw[i+1:]
		raw = raw[:i]
	}
	t.Segments = splitPath(raw)
	return t
}

// Path serializes the tree without query or fragment.
func (t URLTree) Path() string {
	return "/" + strings.Join(t.Segments, "/")
}

// String serializes the tree.
func (t URLTree) String() string {
	var b strings.Builder
	b.WriteString(t.Path())
	if t.Query != "" {
		b.WriteByte('?')
		b.WriteString(t.Query)
	}
	if t.Fragment != nil {
		b.WriteByte('#')
		b.WriteString(*t.Fragment)
	}
	return b.String()
}

// HasFragment reports whether the tree carries a non-empty fragment.
func (t URLTree) HasFragment() bool {
	return t.Fragment != nil && *t.Fragment != ""
}

// WithoutFragment returns a copy with the fragment removed.
func (t URLTree) WithoutFragment() URLTree {
	return URLTree{Segments: slices.Clone(t.Segments), Query: t.Query}
}

// Fragment returns a pointer to s, for use in Extras.
func Fragment(s string) *string { return &s }

// StripFragment returns everything before the first '#'.
func StripFragment(raw string) string {
	if i := strings.IndexByte(raw, '#'); i >= 0 {
		return raw[:i]
	}
	return raw
}

func splitPath(p string) []string {
	p = strings.TrimPrefix(p, "/")
	if p == "" {
		return nil
	}
	segs := strings.Split(p, "/")
	for i, s := range segs {
		segs[i] = escapeSegment(s)
	}
	return segs
}

func escapeSegment(s string) string {
	u, err := url.PathUnescape(s)
	if err != nil {
		return s
	}
	return url.PathEscape(u)
}

// resolve appends a relative path to base, honouring "." and "..".
func resolve(base []string, rel string) []string {
	out := slices.Clone(base)
	if n := len(out); n > 0 && out[n-1] == "" {
		out = out[:n-1]
	}
	parts := strings.Split(rel, "/")
	for i, p := range parts {
		last := i == len(parts)-1
		switch p {
		case ".":
			if last {
				out = append(out, "")
			}
		case "..":
			if len(out) > 0 {
				out = out[:len(out)-1]
			}
			if last {
				out = append(out, "")
			}
		default:
			out = append(out, escapeSegment(p))
		}
	}
	return out
}
