package http

import (
	"html/template"

	"github.com/claes/mediaweb/internal/browse"
	"github.com/claes/mediaweb/internal/locale"
)

type page struct {
	Title string
	Lang  string
	L     *locale.Localizer

	HomeHref   string
	BrowseURL  string
	BrowseHref string

	// welcome
	Content template.HTML
	Version string

	// browse
	View       browse.ViewState
	ParentHref string
	Children   []childLink
	ErrorText  string
}

type childLink struct {
	Name string
	Dir  bool
	Link string // application url
	Href string // with base href
}

// newTemplates parses the page templates. Every anchor the templates emit
// carries an attribute named after marker so the link interceptor leaves it
// to the template link directive.
func newTemplates(marker string) *template.Template {
	return template.Must(template.New("page").Funcs(template.FuncMap{
		"tpl": func(name string) template.HTMLAttr {
			return template.HTMLAttr(marker + "-" + name)
		},
	}).Parse(pageTpl))
}

const pageTpl = `{{define "head"}}<!doctype html>
<html lang="{{.Lang}}">
<meta charset="utf-8" />
<meta name="viewport" content="width=device-width, initial-scale=1" />
<title>{{.Title}}</title>
<style>
body{font-family:system-ui,-apple-system,Segoe UI,Roboto;max-width:1100px;margin:0 auto;padding:1rem}
header{display:flex;justify-content:space-between;align-items:center;margin-bottom:1rem}
ul{list-style:none;padding:0;margin:0}
.entries li a{display:block;padding:6px;border-radius:6px;text-decoration:none;color:inherit}
.entries li a:hover{background:#f6f6f6}
.panel{border:1px solid #ddd;border-radius:8px;padding:12px}
video{max-width:100%;border-radius:6px}
.error{color:#b00020;font-weight:600}
.muted, small{color:#666}
</style>
<header>
  <div>
    <a {{tpl "home"}} href="{{.HomeHref}}" router-link="/">{{.L.T "Home"}}</a>
    <a {{tpl "browse"}} href="{{.BrowseHref}}" router-link="{{.BrowseURL}}" style="margin-left:8px">{{.L.T "Browse"}}</a>
  </div>
</header>
{{end}}

{{define "welcome"}}{{template "head" .}}
<main>
  <h1>{{.Title}}</h1>
  <article class="panel">{{.Content}}</article>
  {{if .Version}}<small>{{.Version}}</small>{{end}}
</main>
</html>
{{end}}

{{define "browse"}}{{template "head" .}}
<main>
  <div>
    {{if .View.HasParent}}<a {{tpl "up"}} href="{{.ParentHref}}" router-link="{{.View.ParentURL}}">⬅ {{.L.T "Up"}}</a>{{end}}
    <strong style="margin-left:8px">{{.View.Name}}</strong>
    <small style="margin-left:8px">{{.View.Path}}</small>
  </div>
  <hr/>
  {{if eq .View.State "directory"}}
    {{if .Children}}
    <div class="panel">
      <ul class="entries">
      {{range .Children}}
        <li class="{{if .Dir}}dir{{else}}file{{end}}"><a {{tpl "entry"}} class="browse-link" href="{{.Href}}" router-link="{{.Link}}">{{if .Dir}}📁{{else}}📄{{end}} {{.Name}}</a></li>
      {{end}}
      </ul>
    </div>
    <small>{{.L.Count "Entries" (len .Children)}}</small>
    {{else}}
    <small>{{.L.T "EmptyDirectory"}}</small>
    {{end}}
  {{else if eq .View.State "media-file"}}
    <video controls autoplay>
      <source src="{{.View.FileURL}}" type="{{.View.MimeType}}">
    </video>
    <p><a {{tpl "download"}} href="{{.View.FileURL}}" download>{{.L.T "Download"}}</a></p>
  {{else if eq .View.State "file"}}
    <p class="muted">{{.View.MimeType}}</p>
    <p><a {{tpl "download"}} href="{{.View.FileURL}}" download>{{.L.T "Download"}}</a></p>
  {{else if eq .View.State "error"}}
    <p class="error">{{.ErrorText}}</p>
  {{end}}
</main>
</html>
{{end}}

{{define "notfound"}}{{template "head" .}}
<main>
  <h1>{{.Title}}</h1>
</main>
</html>
{{end}}`
