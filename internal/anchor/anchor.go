// Package anchor routes links found in rendered rich text through the
// client router instead of letting them reload the page.
//
// Anchors emitted by the application's own templates are stamped with a
// marker attribute and handled by their own directive; everything else with
// an internal href is intercepted here. Hrefs are classified as external only
// when they start with http:// or https://, so protocol-relative links
// ("//host/x") are treated as internal.
package anchor

import (
	"regexp"
	"strings"

	"go.uber.org/zap"

	"github.com/claes/mediaweb/internal/dom"
	"github.com/claes/mediaweb/internal/metrics"
	"github.com/claes/mediaweb/internal/router"
)

// Router is the part of the client router the service drives.
type Router interface {
	URL() string
	CurrentTree() router.URLTree
	ParseURL(u string) router.URLTree
	CreateURLTree(commands []string, extras router.Extras) router.URLTree
	SerializeURL(t router.URLTree) string
	NavigateByURL(t router.URLTree, opts router.NavigateOptions) bool
	Subscribe(fn func(router.NavigationEnd)) *dom.Subscription
}

var externalURL = regexp.MustCompile(`^https?://`)

// IsExternal reports whether href leaves the application.
func IsExternal(href string) bool {
	return externalURL.MatchString(href)
}

// Decision is the classification of a clicked anchor.
type Decision struct {
	External      bool
	RouterManaged bool
}

// Intercept reports whether the click should be routed by the service.
func (d Decision) Intercept() bool { return !d.External && !d.RouterManaged }

func (d Decision) String() string {
	switch {
	case d.External:
		return "external"
	case d.RouterManaged:
		return "template"
	default:
		return "internal"
	}
}

// Service intercepts anchor clicks and normalizes rich-text links.
type Service struct {
	router   Router
	location router.LocationStrategy
	marker   string
	log      *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithMarker sets the template marker attribute prefix.
func WithMarker(marker string) Option {
	return func(s *Service) { s.marker = marker }
}

// WithLogger sets the logger.
func WithLogger(log *zap.Logger) Option {
	return func(s *Service) { s.log = log }
}

// New returns a service bound to r.
func New(r Router, location router.LocationStrategy, opts ...Option) *Service {
	s := &Service{
		router:   r,
		location: location,
		marker:   router.DefaultMarker,
		log:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Decide classifies an anchor element.
func (s *Service) Decide(el *dom.Element) Decision {
	href, _ := el.Attr("href")
	return Decision{
		External:      IsExternal(href),
		RouterManaged: router.IsTemplateAnchor(el, s.marker),
	}
}

// InterceptClick routes clicks on internal anchors that no template
// directive owns. Anchors without an href are not links and are skipped.
func (s *Service) InterceptClick(ev *dom.Event) {
	el := ev.Target
	if !el.IsAnchor() {
		return
	}
	href, _ := el.Attr("href")
	if href == "" {
		return
	}
	d := s.Decide(el)
	metrics.RecordLinkDecision(d.String())
	if !d.Intercept() {
		return
	}
	ev.PreventDefault()
	s.navigate(href, false, router.SourceLink)
}

// Navigate routes to url. The navigation is forced so that a URL equal to
// the current one still completes, which the fragment scrolling relies on.
func (s *Service) Navigate(url string, replaceURL bool) bool {
	return s.navigate(url, replaceURL, router.SourceImperative)
}

func (s *Service) navigate(url string, replaceURL bool, source router.Source) bool {
	tree := s.URLTree(url)
	s.log.Debug("navigate",
		zap.String("href", url),
		zap.String("target", tree.String()),
		zap.Bool("replace", replaceURL),
	)
	return s.router.NavigateByURL(tree, router.NavigateOptions{
		ReplaceURL: replaceURL,
		Force:      true,
		Source:     source,
	})
}

// URLTree resolves url against the current route. A fragment-only url
// keeps the current path.
func (s *Service) URLTree(url string) router.URLTree {
	path := router.StripFragment(url)
	if path == "" {
		path = router.StripFragment(s.router.URL())
	}
	extras := router.Extras{
		RelativeTo: s.router.CurrentTree().Segments,
		Fragment:   s.router.ParseURL(url).Fragment,
	}
	return s.router.CreateURLTree([]string{path}, extras)
}

// NormalizeExternalURL returns the absolute application address of an
// internal url. External urls are returned unchanged.
func (s *Service) NormalizeExternalURL(url string) string {
	if IsExternal(url) {
		return url
	}
	serialized := s.router.SerializeURL(s.URLTree(url))
	return s.location.PrepareExternalURL(serialized)
}

// RewriteLink adapts NormalizeExternalURL to the rich-text link hook.
func (s *Service) RewriteLink(href, title, text string) string {
	return s.NormalizeExternalURL(strings.TrimSpace(href))
}

// ScrollToAnchor re-navigates to the current URL, replacing the history
// entry, when it carries a fragment. It reports whether it navigated.
func (s *Service) ScrollToAnchor() bool {
	current := s.router.URL()
	if !s.router.ParseURL(current).HasFragment() {
		return false
	}
	return s.navigate(current, true, router.SourceScroll)
}

// Listen intercepts document clicks until the subscription is released.
func (s *Service) Listen(doc *dom.Document) *dom.Subscription {
	return doc.Listen("click", s.InterceptClick)
}

// Attach scrolls to the current fragment after every navigation the
// service did not issue for scrolling itself.
func (s *Service) Attach() *dom.Subscription {
	return s.router.Subscribe(func(ev router.NavigationEnd) {
		if ev.Source == router.SourceScroll {
			return
		}
		s.ScrollToAnchor()
	})
}
