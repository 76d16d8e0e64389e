package http

import (
	"context"
	"html/template"
	nethttp "net/http"
	"strings"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/browse"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/logging"
	"github.com/claes/mediaweb/internal/metrics"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
	"github.com/claes/mediaweb/internal/router"
)

// Backend is what the front-end needs from the index service.
// *backend.Client implements it.
type Backend interface {
	browse.Fetcher
	Status(ctx context.Context) (*model.Status, error)
	URL(u string) string
}

// Deps wires the server.
type Deps struct {
	Backend  Backend
	Resolver *route.Resolver
	Location router.LocationStrategy
	// Marker prefixes the attribute stamped on template anchors.
	Marker string
	// Language is the configured language, used after Accept-Language.
	Language string
	Catalog  *locale.Catalog
	Logger   *zap.Logger
}

type server struct {
	deps Deps
	tpl  *template.Template
	log  *zap.Logger
}

// NewServer creates an HTTP handler that browses the remote index.
func NewServer(d Deps) nethttp.Handler {
	if d.Resolver == nil {
		d.Resolver = route.NewResolver(route.DefaultBrowsePath)
	}
	if d.Marker == "" {
		d.Marker = router.DefaultMarker
	}
	if d.Location.BaseHref == "" {
		d.Location.BaseHref = "/"
	}
	if d.Catalog == nil {
		d.Catalog = locale.MustNew()
	}
	if d.Logger == nil {
		d.Logger = zap.NewNop()
	}
	s := &server{deps: d, tpl: newTemplates(d.Marker), log: d.Logger.Named("http")}

	mux := nethttp.NewServeMux()
	mux.HandleFunc("/", s.handlePage)
	mux.Handle("/health", HealthHandler(d.Backend.Status))
	mux.Handle("/metrics", metrics.Handler())
	return logging.Middleware(metrics.Middleware(s.routeLabel, mux))
}

func (s *server) routeLabel(r *nethttp.Request) string {
	switch r.URL.Path {
	case "/health", "/metrics":
		return strings.TrimPrefix(r.URL.Path, "/")
	}
	return s.deps.Resolver.Match(s.appPath(r)).Kind.String()
}

// appPath is the escaped request path with the base href removed.
func (s *server) appPath(r *nethttp.Request) string {
	return s.deps.Location.StripBase(r.URL.EscapedPath())
}

func (s *server) handlePage(w nethttp.ResponseWriter, r *nethttp.Request) {
	if r.Method != nethttp.MethodGet && r.Method != nethttp.MethodHead {
		httpError(w, nethttp.StatusMethodNotAllowed, "method not allowed")
		return
	}
	p := s.appPath(r)
	l := s.deps.Catalog.Localizer(r.Header.Get("Accept-Language"), s.deps.Language)

	rt := s.deps.Resolver.Match(p)
	switch rt.Kind {
	case route.Welcome:
		s.handleWelcome(w, r, p, l)
	case route.Browse:
		s.handleBrowse(w, r, p, rt, l)
	default:
		s.render(w, r, nethttp.StatusNotFound, "notfound", s.newPage(l, l.T(locale.MsgPageNotFound)))
	}
}

func (s *server) handleBrowse(w nethttp.ResponseWriter, r *nethttp.Request, p string, rt route.Route, l *locale.Localizer) {
	log := logging.WithContext(r.Context())
	var title string
	v := browse.NewView(rt, browse.Options{
		Resolver:   s.deps.Resolver,
		RootName:   l.T(locale.MsgBrowse),
		ResolveURL: s.deps.Backend.URL,
		Language:   l.Tag(),
	}, browse.WithTitle(func(t string) { title = t }), browse.WithLogger(log))
	defer v.Close()

	vs := v.Load(r.Context(), s.deps.Backend)

	// Relative child links only resolve against a directory URL.
	if vs.State == browse.StateDirectory && !strings.HasSuffix(p, "/") {
		target := s.deps.Location.PrepareExternalURL(p + "/")
		if r.URL.RawQuery != "" {
			target += "?" + r.URL.RawQuery
		}
		nethttp.Redirect(w, r, target, nethttp.StatusMovedPermanently)
		return
	}

	page := s.newPage(l, title)
	page.View = vs
	page.ParentHref = s.deps.Location.PrepareExternalURL(vs.ParentURL)
	page.Children = s.childLinks(vs.Children)
	if vs.State == browse.StateError {
		page.ErrorText = l.IndexError(vs.StructuredError(), vs.Error)
	}
	s.render(w, r, viewStatus(vs), "browse", page)
}

func (s *server) childLinks(children []model.DirectoryChild) []childLink {
	links := make([]childLink, 0, len(children))
	for _, c := range children {
		link := s.deps.Resolver.URL(c.Path)
		dir := c.Type == model.TypeDirectory
		if dir && !strings.HasSuffix(link, "/") {
			link += "/"
		}
		links = append(links, childLink{
			Name: c.Name,
			Dir:  dir,
			Link: link,
			Href: s.deps.Location.PrepareExternalURL(link),
		})
	}
	return links
}

// viewStatus maps a view state onto the response status. Structured
// errors keep the backend's status; failures to reach it are gateway
// errors.
func viewStatus(vs browse.ViewState) int {
	if vs.State != browse.StateError {
		return nethttp.StatusOK
	}
	switch vs.StructuredError() {
	case model.NotFound:
		return nethttp.StatusNotFound
	case model.Forbidden:
		return nethttp.StatusForbidden
	}
	return nethttp.StatusBadGateway
}

func (s *server) newPage(l *locale.Localizer, title string) *page {
	browseURL := s.deps.Resolver.URL("/")
	return &page{
		Title:      title,
		Lang:       l.Tag().String(),
		L:          l,
		HomeHref:   s.deps.Location.PrepareExternalURL("/"),
		BrowseURL:  browseURL,
		BrowseHref: s.deps.Location.PrepareExternalURL(browseURL),
	}
}

func (s *server) render(w nethttp.ResponseWriter, r *nethttp.Request, status int, name string, data *page) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if r.Method == nethttp.MethodHead {
		return
	}
	if err := s.tpl.ExecuteTemplate(w, name, data); err != nil {
		logging.WithContext(r.Context()).Error("render failed", zap.String("template", name), zap.Error(err))
	}
}

func httpError(w nethttp.ResponseWriter, code int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.WriteHeader(code)
	_, _ = w.Write([]byte(msg))
}
