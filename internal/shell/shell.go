// Package shell is a line-oriented terminal front-end. It renders pages as
// numbered anchors and drives the same router, link interceptor and browse
// views a browser page would.
package shell

import (
	"bufio"
	"context"
	"io"
	"os"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/anchor"
	"github.com/claes/mediaweb/internal/browse"
	"github.com/claes/mediaweb/internal/dom"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
	"github.com/claes/mediaweb/internal/router"
	"github.com/claes/mediaweb/internal/store"
)

// Backend is what the shell needs from the index service.
type Backend interface {
	browse.Fetcher
	Status(ctx context.Context) (*model.Status, error)
	URL(u string) string
}

// Config wires a Shell.
type Config struct {
	Backend   Backend
	Resolver  *route.Resolver
	Location  router.LocationStrategy
	Marker    string
	Localizer *locale.Localizer
	// StatePath is where the last URL is kept between runs. Empty disables
	// persistence.
	StatePath string
	Logger    *zap.Logger
	Out       io.Writer
}

// Shell is one terminal session. All methods except Run must be called from
// the goroutine that owns the shell.
type Shell struct {
	cfg     Config
	log     *zap.Logger
	out     io.Writer
	doc     *dom.Document
	router  *router.Router
	anchors *anchor.Service

	events  chan func()
	stop    chan struct{}
	pending int
	subs    []*dom.Subscription

	page     *page
	title    string
	scrolled string
	done     bool
	ctx      context.Context
}

// New creates a shell. Call Start, or Run, to show the first page.
func New(cfg Config) *Shell {
	if cfg.Resolver == nil {
		cfg.Resolver = route.NewResolver(route.DefaultBrowsePath)
	}
	if cfg.Marker == "" {
		cfg.Marker = router.DefaultMarker
	}
	if cfg.Location.BaseHref == "" {
		cfg.Location.BaseHref = "/"
	}
	if cfg.Localizer == nil {
		cfg.Localizer = locale.MustNew().Localizer()
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.Out == nil {
		cfg.Out = os.Stdout
	}

	s := &Shell{
		cfg:    cfg,
		log:    cfg.Logger.Named("shell"),
		out:    cfg.Out,
		doc:    dom.NewDocument(),
		events: make(chan func(), 16),
		stop:   make(chan struct{}),
		ctx:    context.Background(),
	}
	s.router = router.New(
		router.WithScroller(s.scrollTo),
		router.WithLogger(s.log),
	)
	s.anchors = anchor.New(s.router, cfg.Location,
		anchor.WithMarker(cfg.Marker),
		anchor.WithLogger(s.log),
	)
	return s
}

// Router exposes the session router.
func (s *Shell) Router() *router.Router { return s.router }

// Title is the current document title.
func (s *Shell) Title() string { return s.title }

// Done reports whether the session asked to quit.
func (s *Shell) Done() bool { return s.done }

// Pending is the number of fetches not yet applied.
func (s *Shell) Pending() int { return s.pending }

// Start wires the document listeners and navigates to start. An empty start
// restores the last persisted URL, or "/".
func (s *Shell) Start(ctx context.Context, start string) {
	s.ctx = ctx
	if start == "" {
		start = s.restore(ctx)
	}
	s.subs = append(s.subs,
		s.router.Subscribe(s.onNavigate),
		s.anchors.Attach(),
		s.anchors.Listen(s.doc),
		router.LinkDirective(s.doc, s.router, s.cfg.Marker),
	)
	s.anchors.Navigate(start, true)
}

// Step runs one queued event, waiting for it if needed. It reports false
// when ctx is done.
func (s *Shell) Step(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return false
	case fn := <-s.events:
		fn()
		return true
	}
}

// Run drives the session from in until quit, EOF or ctx cancellation.
// Lines are only accepted while no fetch is pending.
func (s *Shell) Run(ctx context.Context, in io.Reader, start string) error {
	s.Start(ctx, start)
	defer s.Close(ctx)

	lines := make(chan string)
	go s.readLines(in, lines)

	for !s.done {
		var input <-chan string
		if s.pending == 0 {
			s.prompt()
			input = lines
		}
		select {
		case <-ctx.Done():
			return nil
		case fn := <-s.events:
			fn()
		case line, ok := <-input:
			if !ok {
				return nil
			}
			s.Exec(line)
		}
	}
	return nil
}

func (s *Shell) readLines(in io.Reader, lines chan<- string) {
	defer close(lines)
	sc := bufio.NewScanner(in)
	for sc.Scan() {
		select {
		case lines <- sc.Text():
		case <-s.stop:
			return
		}
	}
	if err := sc.Err(); err != nil {
		s.log.Warn("read input", zap.Error(err))
	}
}

// Close persists the session and releases every subscription.
func (s *Shell) Close(ctx context.Context) {
	select {
	case <-s.stop:
		return
	default:
		close(s.stop)
	}
	s.leavePage()
	for _, sub := range s.subs {
		sub.Release()
	}
	s.subs = nil
	s.persist(ctx)
}

func (s *Shell) restore(ctx context.Context) string {
	if s.cfg.StatePath == "" {
		return "/"
	}
	st, err := store.LoadState(ctx, s.cfg.StatePath)
	if err != nil {
		s.log.Warn("load session state", zap.Error(err))
		return "/"
	}
	if st.LastURL == "" {
		return "/"
	}
	s.log.Debug("restoring session", zap.String("url", st.LastURL))
	return st.LastURL
}

func (s *Shell) persist(ctx context.Context) {
	if s.cfg.StatePath == "" {
		return
	}
	// a cancelled run still gets to save
	ctx = context.WithoutCancel(ctx)
	if err := store.SaveState(ctx, s.cfg.StatePath, store.State{LastURL: s.router.URL()}); err != nil {
		s.log.Warn("save session state", zap.Error(err))
	}
}

// post queues fn for the loop goroutine. It gives up once the shell closed.
func (s *Shell) post(fn func()) {
	select {
	case s.events <- fn:
	case <-s.stop:
	}
}

func (s *Shell) scrollTo(fragment string) {
	s.scrolled = fragment
	s.printf("%s\n", dimStyle.Render("→ #"+fragment))
}
