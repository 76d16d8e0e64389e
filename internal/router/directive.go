package router

import (
	"strings"

	"github.com/claes/mediaweb/internal/dom"
)

// LinkAttr holds the target of a template link.
const LinkAttr = "router-link"

// DefaultMarker prefixes the attribute stamped on every anchor rendered by
// the application's own templates.
const DefaultMarker = "data-tpl"

// IsTemplateAnchor reports whether el was rendered by an application
// template, i.e. carries an attribute whose name starts with marker.
func IsTemplateAnchor(el *dom.Element, marker string) bool {
	for _, name := range el.AttributeNames() {
		if strings.HasPrefix(name, marker) {
			return true
		}
	}
	return false
}

// LinkDirective navigates template anchors that carry a router-link
// attribute. Release the subscription when the owning view goes away.
func LinkDirective(doc *dom.Document, r *Router, marker string) *dom.Subscription {
	return doc.Listen("click", func(ev *dom.Event) {
		el := ev.Target
		if !el.IsAnchor() || !IsTemplateAnchor(el, marker) {
			return
		}
		target, ok := el.Attr(LinkAttr)
		if !ok {
			return
		}
		ev.PreventDefault()
		r.Navigate(target, NavigateOptions{Source: SourceLink})
	})
}
