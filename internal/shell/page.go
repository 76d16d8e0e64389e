package shell

import (
	"strings"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/browse"
	"github.com/claes/mediaweb/internal/dom"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/markdown"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
	"github.com/claes/mediaweb/internal/router"
)

// browseLinkClass marks directory entries, which navigate by index path.
const browseLinkClass = "browse-link"

// page is the component mounted for the current route.
type page struct {
	kind route.Kind
	path string

	view *browse.View
	sub  *dom.Subscription

	// welcome
	loaded  bool
	heading string
	content string

	links []*dom.Element
}

func (p *page) release() {
	if p.view != nil {
		p.view.Close()
	}
	p.sub.Release()
}

func (s *Shell) onNavigate(ev router.NavigationEnd) {
	p := s.cfg.Location.StripBase(ev.Tree.Path())
	if s.page != nil && s.page.path == p {
		// same page, only the fragment moved
		return
	}
	s.mount(p)
}

// mount replaces the current page with the one for path.
func (s *Shell) mount(p string) {
	s.leavePage()
	rt := s.cfg.Resolver.Match(p)
	s.log.Debug("mount page", zap.String("path", p), zap.Stringer("route", rt.Kind))

	pg := &page{kind: rt.Kind, path: p}
	s.page = pg
	switch rt.Kind {
	case route.Welcome:
		s.loadWelcome(pg)
	case route.Browse:
		s.loadBrowse(pg, rt)
	default:
		s.title = s.cfg.Localizer.T(locale.MsgPageNotFound)
		s.render()
	}
}

func (s *Shell) leavePage() {
	if s.page != nil {
		s.page.release()
		s.page = nil
	}
}

// reload mounts the current page again.
func (s *Shell) reload() {
	if s.page != nil {
		s.mount(s.page.path)
	}
}

func (s *Shell) loadBrowse(pg *page, rt route.Route) {
	l := s.cfg.Localizer
	v := browse.NewView(rt, browse.Options{
		Resolver:   s.cfg.Resolver,
		RootName:   l.T(locale.MsgBrowse),
		ResolveURL: s.cfg.Backend.URL,
		Language:   l.Tag(),
	}, browse.WithTitle(func(t string) { s.title = t }), browse.WithLogger(s.log))
	pg.view = v
	pg.sub = s.doc.Listen("click", s.onBrowseLink)
	s.title = l.T(locale.MsgLoading)

	t := v.Begin()
	path := v.BackendPath()
	ctx := s.ctx
	s.pending++
	go func() {
		entry, err := s.cfg.Backend.Index(ctx, path)
		s.post(func() {
			s.pending--
			var applied bool
			if err != nil {
				applied = v.Fail(t, err)
			} else {
				applied = v.Complete(t, entry)
			}
			if !applied {
				return
			}
			s.canonicalize(pg)
			s.buildBrowseLinks(pg)
			s.render()
		})
	}()
}

// canonicalize gives directory URLs their trailing slash, as the HTTP
// front-end does with a redirect. The page stays mounted.
func (s *Shell) canonicalize(pg *page) {
	if pg.view.State().State != browse.StateDirectory || strings.HasSuffix(pg.path, "/") {
		return
	}
	pg.path += "/"
	target := s.cfg.Location.PrepareExternalURL(pg.path)
	s.router.Navigate(target, router.NavigateOptions{ReplaceURL: true, Source: router.SourceImperative})
}

// onBrowseLink navigates directory entries by their index path.
func (s *Shell) onBrowseLink(ev *dom.Event) {
	el := ev.Target
	if !el.IsAnchor() || !el.HasClass(browseLinkClass) {
		return
	}
	ev.PreventDefault()
	indexPath, ok := el.Attr("data-path")
	if !ok {
		return
	}
	s.router.Navigate(s.cfg.Resolver.URL(indexPath), router.NavigateOptions{Source: router.SourceLink})
}

func (s *Shell) buildBrowseLinks(pg *page) {
	vs := pg.view.State()
	l := s.cfg.Localizer
	var links []*dom.Element
	if vs.HasParent {
		links = append(links, dom.NewAnchor(vs.ParentURL, "⬅ "+l.T(locale.MsgUp),
			dom.Attr{Name: s.cfg.Marker + "-up"},
			dom.Attr{Name: router.LinkAttr, Value: vs.ParentURL},
		))
	}
	switch vs.State {
	case browse.StateDirectory:
		for _, c := range vs.Children {
			href := s.cfg.Resolver.URL(c.Path)
			text := c.Name
			if c.Type == model.TypeDirectory {
				if !strings.HasSuffix(href, "/") {
					href += "/"
				}
				text += "/"
			}
			links = append(links, dom.NewAnchor(href, text,
				dom.Attr{Name: s.cfg.Marker + "-entry"},
				dom.Attr{Name: "class", Value: browseLinkClass},
				dom.Attr{Name: "data-path", Value: c.Path},
			))
		}
	case browse.StateFile, browse.StateMediaFile:
		links = append(links, dom.NewAnchor(vs.FileURL, l.T(locale.MsgDownload),
			dom.Attr{Name: s.cfg.Marker + "-download"},
		))
	}
	pg.links = links
}

func (s *Shell) loadWelcome(pg *page) {
	s.title = s.cfg.Localizer.T(locale.MsgLoading)
	ctx := s.ctx
	s.pending++
	go func() {
		st, err := s.cfg.Backend.Status(ctx)
		s.post(func() {
			s.pending--
			if s.page != pg {
				return
			}
			s.applyWelcome(pg, st, err)
			s.render()
		})
	}()
}

func (s *Shell) applyWelcome(pg *page, st *model.Status, err error) {
	l := s.cfg.Localizer
	pg.loaded = true
	if err != nil {
		s.log.Warn("welcome status unavailable", zap.Error(err))
		pg.heading = l.T(locale.MsgErrorLoadingTitle)
		pg.content = l.T(locale.MsgErrorLoadingContent)
		s.title = pg.heading
		return
	}
	pg.heading = st.WelcomeTitle
	if pg.heading == "" {
		pg.heading = st.Name
	}
	pg.content = st.WelcomeContent
	s.title = pg.heading

	// Collect rich-text links as they are normalized; they carry no marker.
	var links []*dom.Element
	md := markdown.New(func(href, title, text string) string {
		dest := s.anchors.RewriteLink(href, title, text)
		if text == "" {
			text = dest
		}
		links = append(links, dom.NewAnchor(dest, text))
		return dest
	})
	if _, err := md.Render(st.WelcomeContent); err != nil {
		s.log.Warn("render welcome content", zap.Error(err))
	}
	links = append(links, dom.NewAnchor(s.cfg.Resolver.URL("/"), l.T(locale.MsgBrowse),
		dom.Attr{Name: s.cfg.Marker + "-browse"},
		dom.Attr{Name: router.LinkAttr, Value: s.cfg.Resolver.URL("/")},
	))
	pg.links = links
}
