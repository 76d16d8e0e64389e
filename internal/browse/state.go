// Package browse turns index entries, or the failure to fetch one, into the
// state a browse page renders.
package browse

import (
	"errors"
	"net/url"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/claes/mediaweb/internal/backend"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
)

// DefaultRootName is shown for the index root.
const DefaultRootName = "Browse"

// State is the renderable kind of a view.
type State string

const (
	StateNone      State = "none"
	StateDirectory State = "directory"
	StateFile      State = "file"
	StateMediaFile State = "media-file"
	StateError     State = "error"
)

// Origin records whether name and parent came from a fetched entry or were
// guessed from the route after a failed fetch.
type Origin int

const (
	OriginNone Origin = iota
	OriginConfirmed
	OriginOptimistic
)

// ViewState is everything a browse page renders. It is replaced whole on
// every fetch completion.
type ViewState struct {
	Name      string
	Path      string
	State     State
	HasParent bool
	ParentURL string
	Detail    model.Detail
	Error     string
	Origin    Origin

	// Children is the directory listing sorted by name.
	Children []model.DirectoryChild
	FileURL  string
	MimeType string

	// Conflicted mirrors model.EntryInfo.Conflicted.
	Conflicted bool
}

// StructuredError returns the error the backend reported for this node.
// It is empty unless the state is an error taken from a fetched entry.
func (vs ViewState) StructuredError() model.IndexError {
	if vs.State != StateError || vs.Origin != OriginConfirmed {
		return ""
	}
	return model.IndexError(vs.Error)
}

// Initial is the state of a view before its fetch completes.
func Initial() ViewState {
	return ViewState{Name: "Loading...", Path: "Loading...", State: StateNone}
}

// Options holds what the transitions need besides the entry.
type Options struct {
	Resolver *route.Resolver
	RootName string
	// ResolveURL turns backend-relative file urls into fetchable ones.
	ResolveURL func(string) string
	// Language drives the collation of directory listings.
	Language language.Tag
}

func (o Options) withDefaults() Options {
	if o.Resolver == nil {
		o.Resolver = route.NewResolver(route.DefaultBrowsePath)
	}
	if o.RootName == "" {
		o.RootName = DefaultRootName
	}
	if o.ResolveURL == nil {
		o.ResolveURL = func(s string) string { return s }
	}
	if o.Language == language.Und {
		o.Language = language.English
	}
	return o
}

var errNoDetail = &backend.TransportError{
	StatusText: "Malformed Response",
	Malformed:  true,
	Err:        errors.New("entry carries no detail"),
}

// FromEntry builds the state for a fetched entry at segments.
func FromEntry(entry *model.EntryInfo, segments []string, opts Options) ViewState {
	opts = opts.withDefaults()

	vs := ViewState{
		Path:       entry.PathPretty,
		State:      StateNone,
		Detail:     entry.Detail,
		Origin:     OriginConfirmed,
		Conflicted: entry.Conflicted,
	}
	if entry.Name == "" {
		vs.Name = opts.RootName
	} else {
		vs.Name = entry.Name
		vs.HasParent = true
		vs.ParentURL = opts.Resolver.ParentURL(segments)
	}

	switch d := entry.Detail.(type) {
	case *model.Directory:
		vs.State = StateDirectory
		vs.Children = sortChildren(d.Children, opts.Language)
	case *model.File:
		vs.State = StateFile
		if IsMedia(d.MimeType) {
			vs.State = StateMediaFile
		}
		vs.FileURL = opts.ResolveURL(d.URL)
		vs.MimeType = d.MimeType
	case *model.EntryError:
		vs.State = StateError
		vs.Error = string(d.Error)
	}
	return vs
}

// FromFailure builds the state for a fetch that produced no entry. Name and
// parent are derived from the route alone.
func FromFailure(err error, segments []string, backendPath string, opts Options) ViewState {
	opts = opts.withDefaults()

	vs := ViewState{
		Name:      opts.RootName,
		Path:      unescape(backendPath),
		State:     StateError,
		Error:     FailureText(err),
		Origin:    OriginOptimistic,
		HasParent: len(segments) > 0,
	}
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] != "" {
			vs.Name = unescape(segments[i])
			break
		}
	}
	if vs.HasParent {
		vs.ParentURL = opts.Resolver.ParentURL(segments)
	}
	return vs
}

// FailureText is the status text shown for a failed fetch.
func FailureText(err error) string {
	var te *backend.TransportError
	if errors.As(err, &te) && te.StatusText != "" {
		return te.StatusText
	}
	return "Unknown Error"
}

// IsMedia reports whether a file of this type gets the media player.
func IsMedia(mimeType string) bool {
	return strings.HasPrefix(mimeType, "video/")
}

func sortChildren(children []model.DirectoryChild, tag language.Tag) []model.DirectoryChild {
	sorted := slices.Clone(children)
	col := collate.New(tag)
	slices.SortStableFunc(sorted, func(a, b model.DirectoryChild) int {
		return col.CompareString(a.Name, b.Name)
	})
	return sorted
}

func unescape(s string) string {
	if u, err := url.PathUnescape(s); err == nil {
		return u
	}
	return s
}
