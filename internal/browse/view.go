package browse

import (
	"context"
	"slices"
	"sync"

	"go.uber.org/atomic"
	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/metrics"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
)

// Fetcher loads index entries. *backend.Client implements it.
type Fetcher interface {
	Index(ctx context.Context, path string) (*model.EntryInfo, error)
}

// Ticket identifies one fetch issued by a view.
type Ticket struct {
	gen uint64
}

// View is the browse page for one route. It lives from route entry until
// Close; results that arrive for an older ticket or after Close are dropped.
type View struct {
	segments []string
	catchAll bool
	opts     Options
	setTitle func(string)
	log      *zap.Logger

	gen    atomic.Uint64
	closed atomic.Bool

	mu    sync.Mutex
	state ViewState
}

// ViewOption configures a View.
type ViewOption func(*View)

// WithTitle installs the document title sink.
func WithTitle(fn func(string)) ViewOption {
	return func(v *View) { v.setTitle = fn }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) ViewOption {
	return func(v *View) { v.log = log }
}

// NewView creates the view for a matched browse route.
func NewView(r route.Route, opts Options, vopts ...ViewOption) *View {
	v := &View{
		segments: slices.Clone(r.Segments),
		catchAll: r.CatchAll,
		opts:     opts.withDefaults(),
		setTitle: func(string) {},
		log:      zap.NewNop(),
		state:    Initial(),
	}
	for _, opt := range vopts {
		opt(v)
	}
	return v
}

// Segments returns the route segments the view was created for.
func (v *View) Segments() []string { return slices.Clone(v.segments) }

// BackendPath is the index path the view fetches.
func (v *View) BackendPath() string {
	return route.DecodePlus(v.opts.Resolver.BackendPath(v.segments, v.catchAll))
}

// State returns the current view state.
func (v *View) State() ViewState {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.state
}

// Begin starts a fetch. Any ticket handed out earlier becomes stale.
func (v *View) Begin() Ticket {
	return Ticket{gen: v.gen.Inc()}
}

// Complete applies a fetched entry. It reports false when the result was
// dropped.
func (v *View) Complete(t Ticket, entry *model.EntryInfo) bool {
	if entry == nil || entry.Detail == nil {
		return v.Fail(t, errNoDetail)
	}
	return v.apply(t, func() ViewState { return FromEntry(entry, v.segments, v.opts) })
}

// Fail applies a fetch failure. It reports false when the result was
// dropped.
func (v *View) Fail(t Ticket, err error) bool {
	return v.apply(t, func() ViewState {
		return FromFailure(err, v.segments, v.BackendPath(), v.opts)
	})
}

func (v *View) apply(t Ticket, next func() ViewState) bool {
	if v.closed.Load() || t.gen != v.gen.Load() {
		metrics.RecordStaleResult()
		v.log.Debug("dropping stale result",
			zap.Uint64("ticket", t.gen),
			zap.Uint64("current", v.gen.Load()),
			zap.Bool("closed", v.closed.Load()),
		)
		return false
	}

	vs := next()
	v.mu.Lock()
	v.state = vs
	v.mu.Unlock()

	if vs.Conflicted {
		v.log.Warn("entry populated several detail variants", zap.String("path", vs.Path), zap.String("state", string(vs.State)))
	}
	v.setTitle(vs.Name)
	return true
}

// Load fetches the view's entry and applies the result. Every failure ends
// in the error state; nothing is returned to the caller but the state.
func (v *View) Load(ctx context.Context, f Fetcher) ViewState {
	t := v.Begin()
	path := v.BackendPath()
	v.log.Debug("loading path", zap.String("path", path))

	entry, err := f.Index(ctx, path)
	if err != nil {
		v.Fail(t, err)
	} else {
		v.Complete(t, entry)
	}
	return v.State()
}

// Close tears the view down. Later results are ignored.
func (v *View) Close() {
	v.closed.Store(true)
}

// Closed reports whether Close was called.
func (v *View) Closed() bool { return v.closed.Load() }
