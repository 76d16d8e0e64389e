// Package dom is a small document model: elements with ordered attributes
// and a document that dispatches events to scoped listeners.
package dom

import (
	"slices"
	"strings"
	"sync"
)

// Attr is a single element attribute.
type Attr struct {
	Name  string
	Value string
}

// Element is a rendered node that can be the target of an event.
type Element struct {
	Tag   string
	Text  string
	attrs []Attr
}

// NewElement returns an element with the given attributes in order.
func NewElement(tag string, attrs ...Attr) *Element {
	return &Element{Tag: strings.ToLower(tag), attrs: slices.Clone(attrs)}
}

// NewAnchor returns an <a> element pointing at href.
func NewAnchor(href, text string, attrs ...Attr) *Element {
	el := NewElement("a", append([]Attr{{Name: "href", Value: href}}, attrs...)...)
	el.Text = text
	return el
}

// IsAnchor reports whether the element is an <a>.
func (e *Element) IsAnchor() bool { return e != nil && e.Tag == "a" }

// Attr returns the value of the named attribute.
func (e *Element) Attr(name string) (string, bool) {
	for _, a := range e.attrs {
		if a.Name == name {
			return a.Value, true
		}
	}
	return "", false
}

// SetAttr adds or replaces an attribute.
func (e *Element) SetAttr(name, value string) {
	for i := range e.attrs {
		if e.attrs[i].Name == name {
			e.attrs[i].Value = value
			return
		}
	}
	e.attrs = append(e.attrs, Attr{Name: name, Value: value})
}

// AttributeNames lists attribute names in document order.
func (e *Element) AttributeNames() []string {
	names := make([]string, len(e.attrs))
	for i, a := range e.attrs {
		names[i] = a.Name
	}
	return names
}

// Attrs returns a copy of the attributes.
func (e *Element) Attrs() []Attr { return slices.Clone(e.attrs) }

// HasClass reports whether class is listed in the class attribute.
func (e *Element) HasClass(class string) bool {
	v, ok := e.Attr("class")
	if !ok {
		return false
	}
	return slices.Contains(strings.Fields(v), class)
}

// Event is dispatched to document listeners.
type Event struct {
	Type   string
	Target *Element

	prevented bool
}

// Click returns a click event on target.
func Click(target *Element) *Event {
	return &Event{Type: "click", Target: target}
}

// PreventDefault suppresses the default action of the event.
func (ev *Event) PreventDefault() { ev.prevented = true }

// DefaultPrevented reports whether a listener suppressed the default action.
func (ev *Event) DefaultPrevented() bool { return ev.prevented }

// Listener handles a dispatched event.
type Listener func(*Event)

// Document fans events out to the listeners subscribed for their type.
type Document struct {
	mu        sync.Mutex
	next      uint64
	listeners map[string][]entry
}

type entry struct {
	id uint64
	fn Listener
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{listeners: make(map[string][]entry)}
}

// Listen subscribes fn to events of type typ until the returned
// subscription is released.
func (d *Document) Listen(typ string, fn Listener) *Subscription {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.next++
	id := d.next
	d.listeners[typ] = append(d.listeners[typ], entry{id: id, fn: fn})
	return NewSubscription(func() { d.remove(typ, id) })
}

func (d *Document) remove(typ string, id uint64) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.listeners[typ] = slices.DeleteFunc(d.listeners[typ], func(e entry) bool { return e.id == id })
}

// Dispatch delivers ev to every listener of its type in subscription order.
func (d *Document) Dispatch(ev *Event) {
	d.mu.Lock()
	fns := make([]Listener, 0, len(d.listeners[ev.Type]))
	for _, e := range d.listeners[ev.Type] {
		fns = append(fns, e.fn)
	}
	d.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// Listeners returns how many listeners are subscribed for typ.
func (d *Document) Listeners(typ string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[typ])
}

// Subscription releases a listener. Release may be called more than once.
type Subscription struct {
	once    sync.Once
	release func()
}

// NewSubscription wraps a release function.
func NewSubscription(release func()) *Subscription {
	return &Subscription{release: release}
}

// Release unsubscribes the listener.
func (s *Subscription) Release() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		if s.release != nil {
			s.release()
		}
	})
}
