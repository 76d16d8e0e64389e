// Package router keeps the client-side location: URL trees, a history stack
// and navigation events.
package router

import (
	"slices"
	"strings"
	"sync"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/dom"
	"github.com/claes/mediaweb/internal/metrics"
)

// Source says what triggered a navigation.
type Source int

const (
	SourceImperative Source = iota
	SourceLink
	SourceScroll
	SourceHistory
)

func (s Source) String() string {
	switch s {
	case SourceLink:
		return "link"
	case SourceScroll:
		return "scroll"
	case SourceHistory:
		return "history"
	default:
		return "imperative"
	}
}

// Extras controls how CreateURLTree resolves relative commands.
type Extras struct {
	RelativeTo []string
	Fragment   *string
}

// NavigateOptions controls a single navigation.
type NavigateOptions struct {
	// ReplaceURL overwrites the current history entry instead of pushing.
	ReplaceURL bool
	// Force navigates even when the target equals the current URL.
	Force  bool
	Source Source
}

// NavigationEnd is emitted after every completed navigation.
type NavigationEnd struct {
	ID       int
	URL      string
	Tree     URLTree
	Source   Source
	Replaced bool
}

// Option configures a Router.
type Option func(*Router)

// WithScroller installs the anchor scroller, called with the fragment of
// every navigation that carries one.
func WithScroller(fn func(fragment string)) Option {
	return func(r *Router) { r.scroller = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(r *Router) { r.log = log }
}

// WithInitialURL sets the starting location without emitting an event.
func WithInitialURL(u string) Option {
	return func(r *Router) { r.history = []string{Parse(u).String()} }
}

// Router tracks the current location.
type Router struct {
	mu       sync.Mutex
	history  []string
	id       int
	nextSub  uint64
	subs     map[uint64]func(NavigationEnd)
	scroller func(string)
	log      *zap.Logger
}

// New returns a router positioned at "/".
func New(opts ...Option) *Router {
	r := &Router{
		history: []string{"/"},
		subs:    make(map[uint64]func(NavigationEnd)),
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// URL returns the current serialized URL.
func (r *Router) URL() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.history[len(r.history)-1]
}

// CurrentTree returns the parsed current URL.
func (r *Router) CurrentTree() URLTree { return Parse(r.URL()) }

// ParseURL parses an application URL.
func (r *Router) ParseURL(u string) URLTree { return Parse(u) }

// SerializeURL serializes a tree.
func (r *Router) SerializeURL(t URLTree) string { return t.String() }

// CreateURLTree builds a tree from path commands. A command starting with
// '/' is absolute; otherwise it is resolved against extras.RelativeTo.
func (r *Router) CreateURLTree(commands []string, extras Extras) URLTree {
	path := strings.Join(commands, "/")
	var query string
	if i := strings.IndexByte(path, '?'); i >= 0 {
		query = path[i+1:]
		path = path[:i]
	}

	var segs []string
	switch {
	case strings.HasPrefix(path, "/"):
		segs = splitPath(path)
	case path == "":
		segs = append(segs, extras.RelativeTo...)
	default:
		segs = resolve(extras.RelativeTo, path)
	}
	return URLTree{Segments: segs, Query: query, Fragment: extras.Fragment}
}

// Navigate parses u and navigates to it.
func (r *Router) Navigate(u string, opts NavigateOptions) bool {
	return r.NavigateByURL(Parse(u), opts)
}

// NavigateByURL moves to t. Navigating to the current URL is skipped unless
// opts.Force is set; the result reports whether a navigation happened.
func (r *Router) NavigateByURL(t URLTree, opts NavigateOptions) bool {
	target := t.String()

	r.mu.Lock()
	current := r.history[len(r.history)-1]
	if target == current && !opts.Force {
		r.mu.Unlock()
		r.log.Debug("navigation skipped", zap.String("url", target))
		return false
	}
	if opts.ReplaceURL {
		r.history[len(r.history)-1] = target
	} else {
		r.history = append(r.history, target)
	}
	r.id++
	ev := NavigationEnd{ID: r.id, URL: target, Tree: t, Source: opts.Source, Replaced: opts.ReplaceURL}
	r.mu.Unlock()

	r.finish(ev)
	return true
}

// Back pops the current history entry. It reports false at the first entry.
func (r *Router) Back() bool {
	r.mu.Lock()
	if len(r.history) < 2 {
		r.mu.Unlock()
		return false
	}
	r.history = r.history[:len(r.history)-1]
	target := r.history[len(r.history)-1]
	r.id++
	ev := NavigationEnd{ID: r.id, URL: target, Tree: Parse(target), Source: SourceHistory}
	r.mu.Unlock()

	r.finish(ev)
	return true
}

// Depth returns the number of history entries.
func (r *Router) Depth() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.history)
}

func (r *Router) finish(ev NavigationEnd) {
	metrics.RecordNavigation(ev.Source.String())
	r.log.Debug("navigation end",
		zap.Int("id", ev.ID),
		zap.String("url", ev.URL),
		zap.Stringer("source", ev.Source),
		zap.Bool("replaced", ev.Replaced),
	)

	r.mu.Lock()
	fns := make([]func(NavigationEnd), 0, len(r.subs))
	ids := make([]uint64, 0, len(r.subs))
	for id := range r.subs {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	for _, id := range ids {
		fns = append(fns, r.subs[id])
	}
	scroller := r.scroller
	r.mu.Unlock()

	if scroller != nil && ev.Tree.HasFragment() {
		scroller(*ev.Tree.Fragment)
	}
	for _, fn := range fns {
		fn(ev)
	}
}

// Subscribe registers fn for navigation-end events.
func (r *Router) Subscribe(fn func(NavigationEnd)) *dom.Subscription {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextSub++
	id := r.nextSub
	r.subs[id] = fn
	return dom.NewSubscription(func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		delete(r.subs, id)
	})
}
