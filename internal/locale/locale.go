// Package locale holds the user-facing strings and picks a language for a
// request.
package locale

import (
	"embed"
	"fmt"
	"io/fs"

	"github.com/BurntSushi/toml"
	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/claes/mediaweb/internal/model"
)

// Message ids.
const (
	MsgBrowse              = "Browse"
	MsgLoading             = "Loading"
	MsgUp                  = "Up"
	MsgHome                = "Home"
	MsgEmptyDirectory      = "EmptyDirectory"
	MsgDownload            = "Download"
	MsgErrorLoadingTitle   = "ErrorLoadingTitle"
	MsgErrorLoadingContent = "ErrorLoadingContent"
	MsgNotFound            = "NotFound"
	MsgForbidden           = "Forbidden"
	MsgPageNotFound        = "PageNotFound"
	MsgEntries             = "Entries"
)

//go:embed locales/*.toml
var locales embed.FS

// Catalog is the set of loaded translations.
type Catalog struct {
	bundle  *i18n.Bundle
	tags    []language.Tag
	matcher language.Matcher
}

// New loads the embedded translations. English is the fallback.
func New() (*Catalog, error) {
	bundle := i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	files, err := fs.Glob(locales, "locales/*.toml")
	if err != nil {
		return nil, err
	}
	for _, f := range files {
		if _, err := bundle.LoadMessageFileFS(locales, f); err != nil {
			return nil, fmt.Errorf("load %s: %w", f, err)
		}
	}
	tags := bundle.LanguageTags()
	return &Catalog{
		bundle:  bundle,
		tags:    tags,
		matcher: language.NewMatcher(tags),
	}, nil
}

// MustNew is New for package initialisation.
func MustNew() *Catalog {
	c, err := New()
	if err != nil {
		panic(err)
	}
	return c
}

// Languages lists the loaded languages, fallback first.
func (c *Catalog) Languages() []language.Tag { return c.tags }

// Match picks the best loaded language for preferences such as a
// configured language or an Accept-Language header. Unparsable preferences
// are ignored.
func (c *Catalog) Match(prefs ...string) language.Tag {
	var want []language.Tag
	for _, p := range prefs {
		if p == "" {
			continue
		}
		tags, _, err := language.ParseAcceptLanguage(p)
		if err != nil {
			continue
		}
		want = append(want, tags...)
	}
	_, idx, _ := c.matcher.Match(want...)
	return c.tags[idx]
}

// Localizer returns a localizer for the best match of prefs.
func (c *Catalog) Localizer(prefs ...string) *Localizer {
	tag := c.Match(prefs...)
	return &Localizer{
		tag: tag,
		l:   i18n.NewLocalizer(c.bundle, tag.String()),
	}
}

// Localizer translates message ids into one language.
type Localizer struct {
	tag language.Tag
	l   *i18n.Localizer
}

// Tag is the language the localizer translates into.
func (l *Localizer) Tag() language.Tag { return l.tag }

// T translates id. Unknown ids are returned as is.
func (l *Localizer) T(id string) string {
	s, err := l.l.Localize(&i18n.LocalizeConfig{MessageID: id})
	if err != nil {
		return id
	}
	return s
}

// Count translates a plural message with a Count template value.
func (l *Localizer) Count(id string, n int) string {
	s, err := l.l.Localize(&i18n.LocalizeConfig{
		MessageID:    id,
		PluralCount:  n,
		TemplateData: map[string]any{"Count": n},
	})
	if err != nil {
		return fmt.Sprintf("%d", n)
	}
	return s
}

// IndexError translates a structured backend error. Anything else, such as
// a transport status text, is returned as fallback.
func (l *Localizer) IndexError(e model.IndexError, fallback string) string {
	switch e {
	case model.NotFound:
		return l.T(MsgNotFound)
	case model.Forbidden:
		return l.T(MsgForbidden)
	}
	return fallback
}
