package http

import (
	"html/template"
	nethttp "net/http"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/anchor"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/logging"
	"github.com/claes/mediaweb/internal/markdown"
	"github.com/claes/mediaweb/internal/router"
)

func (s *server) handleWelcome(w nethttp.ResponseWriter, r *nethttp.Request, p string, l *locale.Localizer) {
	log := logging.WithContext(r.Context())
	page := s.newPage(l, "")

	status, err := s.deps.Backend.Status(r.Context())
	if err != nil {
		log.Warn("welcome status unavailable", zap.Error(err))
		page.Title = l.T(locale.MsgErrorLoadingTitle)
		page.Content = template.HTML(template.HTMLEscapeString(l.T(locale.MsgErrorLoadingContent)))
		s.render(w, r, nethttp.StatusOK, "welcome", page)
		return
	}

	page.Title = status.WelcomeTitle
	if page.Title == "" {
		page.Title = status.Name
	}

	// Rich-text links resolve against the page they appear on.
	rt := router.New(router.WithInitialURL(p), router.WithLogger(log))
	svc := anchor.New(rt, s.deps.Location, anchor.WithMarker(s.deps.Marker), anchor.WithLogger(log))
	html, err := markdown.New(svc.RewriteLink).Render(status.WelcomeContent)
	if err != nil {
		s.log.Error("render welcome content", zap.Error(err))
		page.Content = template.HTML(template.HTMLEscapeString(l.T(locale.MsgErrorLoadingContent)))
	} else {
		// goldmark escapes raw HTML unless configured otherwise.
		page.Content = template.HTML(html)
	}
	page.Version = status.Version
	s.render(w, r, nethttp.StatusOK, "welcome", page)
}
