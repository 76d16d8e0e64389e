package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claes/mediaweb/internal/backend"
	"github.com/claes/mediaweb/internal/model"
	"github.com/claes/mediaweb/internal/route"
)

type fakeFetcher struct {
	entries map[string]*model.EntryInfo
	err     error
	paths   []string
}

func (f *fakeFetcher) Index(_ context.Context, path string) (*model.EntryInfo, error) {
	f.paths = append(f.paths, path)
	if f.err != nil {
		return nil, f.err
	}
	if e, ok := f.entries[path]; ok {
		return e, nil
	}
	return nil, &backend.TransportError{StatusCode: 500, StatusText: "Internal Server Error"}
}

func browseRoute(t *testing.T, urlPath string) route.Route {
	t.Helper()
	r := route.NewResolver("tree").Match(urlPath)
	require.Equal(t, route.Browse, r.Kind)
	return r
}

func TestView_InitialState(t *testing.T) {
	v := NewView(browseRoute(t, "/tree"), opts())
	vs := v.State()
	assert.Equal(t, "Loading...", vs.Name)
	assert.Equal(t, StateNone, vs.State)
	assert.False(t, vs.HasParent)
	assert.Equal(t, "/", v.BackendPath())
}

func TestView_BackendPathDecodesPlus(t *testing.T) {
	v := NewView(browseRoute(t, "/tree/a%2Bb/c"), opts())
	assert.Equal(t, "/a+b/c", v.BackendPath())
}

func TestView_LoadDirectory(t *testing.T) {
	f := &fakeFetcher{entries: map[string]*model.EntryInfo{
		"/": {Name: "", PathPretty: "/", Detail: &model.Directory{}},
	}}
	var titles []string
	v := NewView(browseRoute(t, "/tree/"), opts(), WithTitle(func(s string) { titles = append(titles, s) }))

	vs := v.Load(context.Background(), f)
	assert.Equal(t, StateDirectory, vs.State)
	assert.Equal(t, "Browse", vs.Name)
	assert.False(t, vs.HasParent)
	assert.Equal(t, []string{"Browse"}, titles)
	assert.Equal(t, []string{"/"}, f.paths)
}

func TestView_LoadFailure(t *testing.T) {
	f := &fakeFetcher{err: &backend.TransportError{StatusText: "Unknown Error", Err: errors.New("connection refused")}}
	var title string
	v := NewView(browseRoute(t, "/tree/a"), opts(), WithTitle(func(s string) { title = s }))

	vs := v.Load(context.Background(), f)
	assert.Equal(t, StateError, vs.State)
	assert.Equal(t, "Unknown Error", vs.Error)
	assert.Equal(t, "a", vs.Name)
	assert.True(t, vs.HasParent)
	assert.Equal(t, "a", title)
}

func TestView_StaleTicketIgnored(t *testing.T) {
	v := NewView(browseRoute(t, "/tree/a"), opts())

	first := v.Begin()
	second := v.Begin()

	assert.False(t, v.Complete(first, &model.EntryInfo{Name: "old", Detail: &model.Directory{}}))
	assert.Equal(t, StateNone, v.State().State)

	assert.True(t, v.Complete(second, &model.EntryInfo{Name: "a", Detail: &model.File{MimeType: "video/mp4"}}))
	assert.Equal(t, StateMediaFile, v.State().State)

	assert.False(t, v.Fail(first, errors.New("late")))
	assert.Equal(t, StateMediaFile, v.State().State)
}

func TestView_ResultAfterCloseIgnored(t *testing.T) {
	titled := false
	v := NewView(browseRoute(t, "/tree/a"), opts(), WithTitle(func(string) { titled = true }))

	tk := v.Begin()
	v.Close()
	assert.True(t, v.Closed())

	assert.False(t, v.Complete(tk, &model.EntryInfo{Name: "a", Detail: &model.Directory{}}))
	assert.Equal(t, "Loading...", v.State().Name)
	assert.False(t, titled)
}

func TestView_EntryWithoutDetailFails(t *testing.T) {
	v := NewView(browseRoute(t, "/tree/a"), opts())

	assert.True(t, v.Complete(v.Begin(), &model.EntryInfo{Name: "a"}))
	vs := v.State()
	assert.Equal(t, StateError, vs.State)
	assert.Equal(t, "Malformed Response", vs.Error)
	assert.Equal(t, OriginOptimistic, vs.Origin)
}

func TestView_SegmentsAreCopied(t *testing.T) {
	v := NewView(browseRoute(t, "/tree/a/b"), opts())
	segs := v.Segments()
	segs[0] = "x"
	assert.Equal(t, []string{"a", "b"}, v.Segments())
}
