package router

import "strings"

// LocationStrategy maps internal URLs onto the address the application is
// served from.
type LocationStrategy struct {
	BaseHref string
}

// PrepareExternalURL prefixes an internal URL with the base href.
func (l LocationStrategy) PrepareExternalURL(internal string) string {
	base := strings.TrimSuffix(l.BaseHref, "/")
	if internal == "" {
		return base + "/"
	}
	if !strings.HasPrefix(internal, "/") {
		internal = "/" + internal
	}
	return base + internal
}

// StripBase removes the base href from an address, the inverse of
// PrepareExternalURL.
func (l LocationStrategy) StripBase(external string) string {
	base := strings.TrimSuffix(l.BaseHref, "/")
	if base == "" || !strings.HasPrefix(external, base) {
		return external
	}
	rest := strings.TrimPrefix(external, base)
	if rest == "" || !strings.HasPrefix(rest, "/") {
		return "/" + rest
	}
	return rest
}
