package locale

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/language"
)

func TestCatalog_Match(t *testing.T) {
	c, err := New()
	require.NoError(t, err)

	assert.Equal(t, language.English, c.Match())
	assert.Equal(t, language.English, c.Match("fr-FR,de;q=0.8"))
	assert.Equal(t, language.Swedish, c.Match("sv-SE,en;q=0.5"))
	assert.Equal(t, language.Swedish, c.Match("", "sv"))
	assert.Equal(t, language.English, c.Match("not a language;;"))
}

func TestLocalizer_T(t *testing.T) {
	c := MustNew()

	en := c.Localizer("en")
	assert.Equal(t, "Browse", en.T(MsgBrowse))
	assert.Equal(t, "Error loading title", en.T(MsgErrorLoadingTitle))
	assert.Equal(t, "Error loading content", en.T(MsgErrorLoadingContent))
	assert.Equal(t, "Loading...", en.T(MsgLoading))
	assert.Equal(t, "Missing", en.T("Missing"))

	sv := c.Localizer("sv")
	assert.Equal(t, "Bläddra", sv.T(MsgBrowse))
	assert.Equal(t, language.Swedish, sv.Tag())
}

func TestLocalizer_Count(t *testing.T) {
	en := MustNew().Localizer("en")
	assert.Equal(t, "1 entry", en.Count(MsgEntries, 1))
	assert.Equal(t, "3 entries", en.Count(MsgEntries, 3))
}
