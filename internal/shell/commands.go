package shell

import (
	"strconv"
	"strings"

	"github.com/claes/mediaweb/internal/anchor"
	"github.com/claes/mediaweb/internal/dom"
)

const helpText = `commands:
  <n>, open <n>   follow link n
  go <url>        navigate to an application url
  up              go to the parent directory
  back            go back in history
  ls              show the current page again
  reload          fetch the current page again
  help            show this help
  quit            leave`

// Exec runs one command line.
func (s *Shell) Exec(line string) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return
	}
	cmd, args := fields[0], fields[1:]

	if n, err := strconv.Atoi(cmd); err == nil {
		s.open(n)
		return
	}
	switch cmd {
	case "open":
		if len(args) != 1 {
			s.errorf("usage: open <n>")
			return
		}
		n, err := strconv.Atoi(args[0])
		if err != nil {
			s.errorf("not a link number: %s", args[0])
			return
		}
		s.open(n)
	case "go":
		if len(args) != 1 {
			s.errorf("usage: go <url>")
			return
		}
		if anchor.IsExternal(args[0]) {
			s.external(args[0])
			return
		}
		s.anchors.Navigate(args[0], false)
	case "up":
		if el := s.findLink(s.cfg.Marker + "-up"); el != nil {
			s.click(el)
			return
		}
		s.infof("already at the top")
	case "back":
		if !s.router.Back() {
			s.infof("no earlier page")
		}
	case "ls":
		s.render()
	case "reload":
		s.reload()
	case "help", "?":
		s.printf("%s\n", helpText)
	case "quit", "exit", "q":
		s.done = true
	default:
		s.errorf("unknown command %q, try help", cmd)
	}
}

// Links returns the anchors of the current page in display order.
func (s *Shell) Links() []*dom.Element {
	if s.page == nil {
		return nil
	}
	return s.page.links
}

func (s *Shell) open(n int) {
	links := s.Links()
	if n < 1 || n > len(links) {
		s.errorf("no link %d", n)
		return
	}
	s.click(links[n-1])
}

// click dispatches a click on el. Whatever no listener handled leaves the
// application.
func (s *Shell) click(el *dom.Element) {
	ev := dom.Click(el)
	s.doc.Dispatch(ev)
	if ev.DefaultPrevented() {
		return
	}
	href, _ := el.Attr("href")
	s.external(href)
}

func (s *Shell) external(href string) {
	s.printf("%s %s\n", infoStyle.Render("open externally:"), href)
}

func (s *Shell) findLink(attr string) *dom.Element {
	for _, el := range s.Links() {
		if _, ok := el.Attr(attr); ok {
			return el
		}
	}
	return nil
}
