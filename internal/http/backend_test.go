package http

import (
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/claes/mediaweb/internal/backend"
	"github.com/claes/mediaweb/internal/model"
)

type fakeReply struct {
	status int
	body   string
}

// fakeIndex serves canned envelopes keyed by the escaped index path.
type fakeIndex struct {
	mu      sync.Mutex
	entries map[string]fakeReply
	status  *fakeReply
	seen    []string
}

func (f *fakeIndex) ServeHTTP(w nethttp.ResponseWriter, r *nethttp.Request) {
	p := r.URL.EscapedPath()
	w.Header().Set("Content-Type", "application/json")
	switch {
	case p == "/api/v1/status":
		if f.status == nil {
			w.WriteHeader(nethttp.StatusInternalServerError)
			return
		}
		w.WriteHeader(f.status.status)
		_, _ = w.Write([]byte(f.status.body))
	case strings.HasPrefix(p, "/api/v1/index/files"):
		idx := strings.TrimPrefix(p, "/api/v1/index/files")
		f.mu.Lock()
		f.seen = append(f.seen, idx)
		rep, ok := f.entries[idx]
		f.mu.Unlock()
		if !ok {
			w.WriteHeader(nethttp.StatusInternalServerError)
			_, _ = w.Write([]byte(`{"Ok":null,"Err":"no fixture"}`))
			return
		}
		w.WriteHeader(rep.status)
		_, _ = w.Write([]byte(rep.body))
	default:
		w.WriteHeader(nethttp.StatusNotFound)
	}
}

func (f *fakeIndex) paths() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.seen...)
}

func okEntry(t *testing.T, e model.EntryInfo) fakeReply {
	t.Helper()
	data, err := json.Marshal(model.Result[model.EntryInfo]{Ok: &e})
	if err != nil {
		t.Fatalf("marshal entry: %v", err)
	}
	return fakeReply{status: 200, body: string(data)}
}

func dirEntry(t *testing.T, name, path string, children ...model.DirectoryChild) fakeReply {
	t.Helper()
	return okEntry(t, model.EntryInfo{Name: name, Path: path, PathPretty: path, Detail: &model.Directory{Children: children}})
}

func newTestServer(t *testing.T, idx *fakeIndex) nethttp.Handler {
	t.Helper()
	ts := httptest.NewServer(idx)
	t.Cleanup(ts.Close)
	return NewServer(Deps{Backend: backend.New(backend.Config{BaseURL: ts.URL})})
}
