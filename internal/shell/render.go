package shell

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/rodaine/table"

	"github.com/claes/mediaweb/internal/anchor"
	"github.com/claes/mediaweb/internal/browse"
	"github.com/claes/mediaweb/internal/dom"
	"github.com/claes/mediaweb/internal/locale"
	"github.com/claes/mediaweb/internal/route"
)

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("#FFFFFF"))
	errorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF0000"))
	infoStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#0099FF"))
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#888888"))
	boldStyle  = lipgloss.NewStyle().Bold(true)
)

func (s *Shell) printf(format string, args ...any) {
	_, _ = fmt.Fprintf(s.out, format, args...)
}

func (s *Shell) errorf(format string, args ...any) {
	s.printf("%s\n", errorStyle.Render(fmt.Sprintf(format, args...)))
}

func (s *Shell) infof(format string, args ...any) {
	s.printf("%s\n", infoStyle.Render(fmt.Sprintf(format, args...)))
}

func (s *Shell) prompt() {
	s.printf("%s ", dimStyle.Render(s.router.URL()+" >"))
}

// render prints the current page.
func (s *Shell) render() {
	pg := s.page
	if pg == nil {
		return
	}
	l := s.cfg.Localizer
	s.printf("\n%s\n", titleStyle.Render(s.title))

	switch pg.kind {
	case route.Welcome:
		if !pg.loaded {
			s.printf("%s\n", dimStyle.Render(l.T(locale.MsgLoading)))
			return
		}
		if pg.content != "" {
			s.printf("%s\n", pg.content)
		}
	case route.Browse:
		vs := pg.view.State()
		s.printf("%s\n", dimStyle.Render(vs.Path))
		switch vs.State {
		case browse.StateNone:
			s.printf("%s\n", dimStyle.Render(l.T(locale.MsgLoading)))
			return
		case browse.StateError:
			s.printf("%s\n", errorStyle.Render(l.IndexError(vs.StructuredError(), vs.Error)))
		case browse.StateDirectory:
			if len(vs.Children) == 0 {
				s.printf("%s\n", dimStyle.Render(l.T(locale.MsgEmptyDirectory)))
			} else {
				s.printf("%s\n", dimStyle.Render(l.Count(locale.MsgEntries, len(vs.Children))))
			}
		case browse.StateFile, browse.StateMediaFile:
			s.printf("%s\n", dimStyle.Render(vs.MimeType))
		}
	default:
		return
	}
	s.printLinks(pg.links)
}

func (s *Shell) printLinks(links []*dom.Element) {
	if len(links) == 0 {
		return
	}
	tbl := table.New("#", "Link", "Target")
	tbl.WithWriter(s.out)
	tbl.WithPadding(2)
	tbl.WithWidthFunc(lipgloss.Width)
	tbl.WithFirstColumnFormatter(func(format string, vals ...any) string {
		return boldStyle.Render(fmt.Sprintf(format, vals...))
	})
	for i, el := range links {
		href, _ := el.Attr("href")
		target := href
		if anchor.IsExternal(href) {
			target = infoStyle.Render(href)
		}
		tbl.AddRow(i+1, el.Text, target)
	}
	tbl.Print()
}
