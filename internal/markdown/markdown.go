// Package markdown renders rich text with a hook over every link.
package markdown

import (
	"bytes"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/parser"
	"github.com/yuin/goldmark/text"
	"github.com/yuin/goldmark/util"
)

// LinkHook returns the destination a link is rendered with.
type LinkHook func(href, title, text string) string

// Renderer converts markdown to HTML.
type Renderer struct {
	md goldmark.Markdown
}

// New returns a renderer that passes every link through hook. A nil hook
// leaves links untouched.
func New(hook LinkHook) *Renderer {
	exts := []goldmark.Extender{extension.GFM}
	if hook != nil {
		exts = append(exts, &linkRewriter{hook: hook})
	}
	return &Renderer{md: goldmark.New(goldmark.WithExtensions(exts...))}
}

// Render converts src to HTML.
func (r *Renderer) Render(src string) (string, error) {
	var buf bytes.Buffer
	if err := r.md.Convert([]byte(src), &buf); err != nil {
		return "", err
	}
	return buf.String(), nil
}

type linkRewriter struct {
	hook LinkHook
}

func (e *linkRewriter) Extend(m goldmark.Markdown) {
	m.Parser().AddOptions(parser.WithASTTransformers(
		util.Prioritized(&linkTransformer{hook: e.hook}, 100),
	))
}

type linkTransformer struct {
	hook LinkHook
}

func (t *linkTransformer) Transform(node *ast.Document, reader text.Reader, pc parser.Context) {
	source := reader.Source()
	var autolinks []*ast.AutoLink
	_ = ast.Walk(node, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch link := n.(type) {
		case *ast.Link:
			dest := t.hook(string(link.Destination), string(link.Title), plainText(link, source))
			link.Destination = []byte(dest)
		case *ast.AutoLink:
			if link.AutoLinkType == ast.AutoLinkURL {
				autolinks = append(autolinks, link)
			}
		}
		return ast.WalkContinue, nil
	})

	// Autolinks render their label as destination, so they become plain
	// links once rewritten. Replacing them during the walk would cut it short.
	for _, al := range autolinks {
		href := string(al.URL(source))
		label := string(al.Label(source))
		link := ast.NewLink()
		link.Destination = []byte(t.hook(href, "", label))
		link.AppendChild(link, ast.NewString([]byte(label)))
		if parent := al.Parent(); parent != nil {
			parent.ReplaceChild(parent, al, link)
		}
	}
}

func plainText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch v := c.(type) {
		case *ast.Text:
			b.Write(v.Segment.Value(source))
		case *ast.String:
			b.Write(v.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}
