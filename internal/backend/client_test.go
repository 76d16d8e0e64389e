package backend

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claes/mediaweb/internal/model"
)

func testClient(t *testing.T, handler http.Handler) *Client {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)
	return New(Config{BaseURL: ts.URL + "/"})
}

func replyHandler(status int, body string) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	})
}

func TestIndex_Directory(t *testing.T) {
	var gotPath string
	c := testClient(t, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.EscapedPath()
		_, _ = w.Write([]byte(`{"Ok":{"name":"a b","path":"/a%20b/","path_pretty":"/a b/","detail":{"Directory":{"children":[]},"File":null,"Error":null}},"Err":null}`))
	}))

	entry, err := c.Index(context.Background(), "/a%20b/")
	require.NoError(t, err)
	assert.Equal(t, "/api/v1/index/files/a%20b/", gotPath)
	assert.Equal(t, "a b", entry.Name)
	assert.IsType(t, &model.Directory{}, entry.Detail)
	assert.Equal(t, KindEntry, Classify(entry, err))
}

func TestIndex_StructuredNotFound(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusNotFound,
		`{"Ok":{"name":"gone","path":"/gone","path_pretty":"/gone","detail":{"Error":{"error":"NotFound"}}},"Err":null}`))

	entry, err := c.Index(context.Background(), "/gone")
	require.NoError(t, err)
	assert.Equal(t, StructuredNotFound, Classify(entry, err))
}

func TestIndex_StructuredForbidden(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusForbidden,
		`{"Ok":{"name":"secret","path":"/secret","path_pretty":"/secret","detail":{"type":"Error","error":"Forbidden"}},"Err":null}`))

	entry, err := c.Index(context.Background(), "/secret")
	require.NoError(t, err)
	assert.Equal(t, StructuredForbidden, Classify(entry, err))
}

func TestIndex_TransportFailure(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusInternalServerError, `{"Ok":null,"Err":"disk on fire"}`))

	entry, err := c.Index(context.Background(), "/a")
	require.Error(t, err)
	assert.Nil(t, entry)

	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, 500, te.StatusCode)
	assert.Equal(t, "Internal Server Error", te.StatusText)
	assert.Equal(t, "disk on fire", te.Message)
	assert.Equal(t, TransportFailure, Classify(entry, err))
}

func TestIndex_UnparsableErrorBody(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusBadGateway, `<html>bad gateway</html>`))

	_, err := c.Index(context.Background(), "/a")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, "Bad Gateway", te.StatusText)
	assert.False(t, te.Malformed)
}

func TestIndex_MalformedSuccess(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusOK, `{"Ok":null,"Err":null}`))

	_, err := c.Index(context.Background(), "/a")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.True(t, te.Malformed)
	assert.Equal(t, "Malformed Response", te.StatusText)
	assert.Equal(t, MalformedResponse, Classify(nil, err))
}

func TestIndex_Unreachable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	c := New(Config{BaseURL: ts.URL})
	ts.Close()

	_, err := c.Index(context.Background(), "/")
	var te *TransportError
	require.True(t, errors.As(err, &te))
	assert.Zero(t, te.StatusCode)
	assert.Equal(t, "Unknown Error", te.StatusText)
}

func TestStatus(t *testing.T) {
	c := testClient(t, replyHandler(http.StatusOK,
		`{"Ok":{"name":"media-server-one","version":"0.1.0","welcome_title":"Hi","welcome_content":"# Hello"},"Err":null}`))

	st, err := c.Status(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "media-server-one", st.Name)
	assert.Equal(t, "# Hello", st.WelcomeContent)
}

func TestURL(t *testing.T) {
	c := New(Config{BaseURL: "http://media:9090/"})
	assert.Equal(t, "http://media:9090/cdn/files/a.mp4", c.URL("/cdn/files/a.mp4"))
	assert.Equal(t, "http://media:9090/cdn/x", c.URL("cdn/x"))
	assert.Equal(t, "https://other/x", c.URL("https://other/x"))
	assert.Equal(t, "http://media:9090", c.BaseURL())
}
