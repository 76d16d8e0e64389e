package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claes/mediaweb/internal/dom"
)

func TestParse(t *testing.T) {
	tree := Parse("/tree/my dir/a%2Bb/?x=1#sec")
	assert.Equal(t, []string{"tree", "my%20dir", "a+b", ""}, tree.Segments)
	assert.Equal(t, "x=1", tree.Query)
	require.NotNil(t, tree.Fragment)
	assert.Equal(t, "sec", *tree.Fragment)
	assert.Equal(t, "/tree/my%20dir/a+b/?x=1#sec", tree.String())

	assert.Nil(t, Parse("/").Segments)
	assert.Equal(t, "/", Parse("").String())
	assert.Equal(t, "/a#", Parse("/a#").String())
	assert.False(t, Parse("/a#").HasFragment())
}

func TestCreateURLTree(t *testing.T) {
	r := New()
	base := []string{"tree", "a", ""}

	tests := []struct {
		name    string
		command string
		want    string
	}{
		{"absolute", "/tree/b/", "/tree/b/"},
		{"relative child", "c.md", "/tree/a/c.md"},
		{"dot", "./c/", "/tree/a/c/"},
		{"parent", "../", "/tree/"},
		{"parent twice", "../../x", "/x"},
		{"empty", "", "/tree/a/"},
		{"query", "c?x=y", "/tree/a/c?x=y"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := r.CreateURLTree([]string{tt.command}, Extras{RelativeTo: base})
			assert.Equal(t, tt.want, got.String())
		})
	}

	withFrag := r.CreateURLTree([]string{"/tree/a/"}, Extras{Fragment: Fragment("sec")})
	assert.Equal(t, "/tree/a/#sec", withFrag.String())
}

func TestNavigateByURL(t *testing.T) {
	r := New(WithInitialURL("/tree/a/"))
	var events []NavigationEnd
	sub := r.Subscribe(func(ev NavigationEnd) { events = append(events, ev) })
	defer sub.Release()

	assert.False(t, r.Navigate("/tree/a/", NavigateOptions{}), "same url without force is skipped")
	assert.Empty(t, events)

	assert.True(t, r.Navigate("/tree/a/", NavigateOptions{Force: true}))
	require.Len(t, events, 1)
	assert.Equal(t, 2, r.Depth())

	assert.True(t, r.Navigate("/tree/b/", NavigateOptions{ReplaceURL: true, Source: SourceLink}))
	assert.Equal(t, 2, r.Depth())
	assert.Equal(t, "/tree/b/", r.URL())
	assert.True(t, events[1].Replaced)
	assert.Equal(t, SourceLink, events[1].Source)

	assert.True(t, r.Back())
	assert.Equal(t, "/tree/a/", r.URL())
	assert.Equal(t, SourceHistory, events[2].Source)
	assert.False(t, r.Back())
}

func TestScroller(t *testing.T) {
	var scrolled []string
	r := New(WithScroller(func(f string) { scrolled = append(scrolled, f) }))

	r.Navigate("/a#one", NavigateOptions{})
	r.Navigate("/b", NavigateOptions{})
	r.Navigate("/c#", NavigateOptions{})
	assert.Equal(t, []string{"one"}, scrolled)
}

func TestLocationStrategy(t *testing.T) {
	assert.Equal(t, "/tree/a", LocationStrategy{BaseHref: "/"}.PrepareExternalURL("/tree/a"))
	assert.Equal(t, "/app/tree/a", LocationStrategy{BaseHref: "/app/"}.PrepareExternalURL("/tree/a"))
	assert.Equal(t, "/app/", LocationStrategy{BaseHref: "/app"}.PrepareExternalURL(""))
	assert.Equal(t, "/tree/a", LocationStrategy{BaseHref: "/app/"}.StripBase("/app/tree/a"))
	assert.Equal(t, "/", LocationStrategy{BaseHref: "/app/"}.StripBase("/app"))
}

func TestLinkDirective(t *testing.T) {
	doc := dom.NewDocument()
	r := New()
	sub := LinkDirective(doc, r, DefaultMarker)

	up := dom.NewAnchor("/tree/", "Up", dom.Attr{Name: "data-tpl-c1"}, dom.Attr{Name: LinkAttr, Value: "/tree/"})
	ev := dom.Click(up)
	doc.Dispatch(ev)
	assert.True(t, ev.DefaultPrevented())
	assert.Equal(t, "/tree/", r.URL())

	plain := dom.NewAnchor("/tree/x", "x", dom.Attr{Name: LinkAttr, Value: "/tree/x"})
	ev = dom.Click(plain)
	doc.Dispatch(ev)
	assert.False(t, ev.DefaultPrevented(), "anchors without the template marker are left alone")

	sub.Release()
	ev = dom.Click(up)
	doc.Dispatch(ev)
	assert.False(t, ev.DefaultPrevented())
}
