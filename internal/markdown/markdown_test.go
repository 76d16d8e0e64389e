package markdown

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type call struct{ href, title, text string }

func TestRender_LinkHook(t *testing.T) {
	var calls []call
	r := New(func(href, title, text string) string {
		calls = append(calls, call{href, title, text})
		if href == "/tree/movies" {
			return "http://app.local/tree/movies"
		}
		return href
	})

	out, err := r.Render(`See [the **movies**](/tree/movies "Movies") or [docs](https://example.com/docs).`)
	require.NoError(t, err)

	assert.Equal(t, []call{
		{"/tree/movies", "Movies", "the movies"},
		{"https://example.com/docs", "", "docs"},
	}, calls)
	assert.Contains(t, out, `href="http://app.local/tree/movies"`)
	assert.Contains(t, out, `title="Movies"`)
	assert.Contains(t, out, `href="https://example.com/docs"`)
}

func TestRender_AutoLink(t *testing.T) {
	var hrefs []string
	r := New(func(href, title, text string) string {
		hrefs = append(hrefs, href)
		return href + "#x"
	})

	out, err := r.Render("Visit <https://example.com/a> today.")
	require.NoError(t, err)

	assert.Equal(t, []string{"https://example.com/a"}, hrefs)
	assert.Contains(t, out, `<a href="https://example.com/a#x">https://example.com/a</a>`)
	assert.Contains(t, out, "today.")
}

func TestRender_EmailAutoLinkUntouched(t *testing.T) {
	called := false
	r := New(func(href, title, text string) string {
		called = true
		return href
	})

	out, err := r.Render("<admin@example.com>")
	require.NoError(t, err)
	assert.False(t, called)
	assert.Contains(t, out, `mailto:admin@example.com`)
}

func TestRender_NilHook(t *testing.T) {
	out, err := New(nil).Render("# Welcome\n\n[home](/)")
	require.NoError(t, err)
	assert.Contains(t, out, "<h1>Welcome</h1>")
	assert.Contains(t, out, `<a href="/">home</a>`)
}
