package webx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func noop(f *Flow, args ...any) error { return nil }

func TestWebLongestPrefixWins(t *testing.T) {
	w := NewWeb()
	w.Route("api/*", "get", noop, "short")
	w.Route("api/users/*", "get", noop, "long")

	rt := w.find("api/users/42", "get")
	require.NotNil(t, rt)
	assert.Equal(t, "long", rt.args[0])

	rt = w.find("api/other", "get")
	require.NotNil(t, rt)
	assert.Equal(t, "short", rt.args[0])
}

func TestWebExactOutranksWildcard(t *testing.T) {
	w := NewWeb()
	w.Route("static*", "get", noop, "wild")
	w.Route("static", "get", noop, "exact")

	rt := w.find("static", "get")
	require.NotNil(t, rt)
	assert.Equal(t, "exact", rt.args[0])

	rt = w.find("staticfile", "get")
	require.NotNil(t, rt)
	assert.Equal(t, "wild", rt.args[0])
}

func TestWebMethodList(t *testing.T) {
	w := NewWeb()
	w.Route("a", "get,post", noop)

	assert.NotNil(t, w.find("a", "get"))
	assert.NotNil(t, w.find("a", "post"))
	assert.Nil(t, w.find("a", "put"))
}

func TestWebDefaultMethods(t *testing.T) {
	w := NewWeb()
	w.Route("a", "", noop)

	assert.NotNil(t, w.find("a", "get"))
	assert.NotNil(t, w.find("a", "post"))
	assert.Nil(t, w.find("a", "delete"))
}

func TestWebCaseInsensitive(t *testing.T) {
	w := NewWeb()
	w.Route("Api/Users", "GET", noop)

	assert.NotNil(t, w.find("API/USERS", "get"))
	assert.NotNil(t, w.find("api/users", "GET"))
}

func TestWebNoMatchIsNotAnError(t *testing.T) {
	w := NewWeb()
	w.Route("a", "get", noop)

	assert.Nil(t, w.find("b", "get"))
	assert.Nil(t, w.find("", "get"))
}

func TestWebMostRecentWinsAmongTies(t *testing.T) {
	w := NewWeb()
	w.Route("a", "get", noop, "first")
	w.Route("a", "get", noop, "second")

	rt := w.find("a", "get")
	require.NotNil(t, rt)
	assert.Equal(t, "second", rt.args[0])
}

func TestWebPseudoMethods(t *testing.T) {
	w := NewWeb()
	w.Route("admin/*", MethodBefore, noop, "auth")
	w.Route("*", MethodAfter, noop)

	// pseudo-methods never match a real method lookup
	assert.Nil(t, w.find("admin/panel", "get"))
	assert.NotNil(t, w.find("admin/panel", MethodBefore))
	assert.NotNil(t, w.find("anything", MethodAfter))
}

func TestWebEmptyMethodDefaultsToGet(t *testing.T) {
	w := NewWeb()
	w.Route("a", "get", noop)

	assert.NotNil(t, w.find("a", ""))
}

func TestWebRootWildcardMatchesEverything(t *testing.T) {
	w := NewWeb()
	w.Route("*", "get", noop)

	assert.NotNil(t, w.find("", "get"))
	assert.NotNil(t, w.find("deep/nested/path", "get"))
}
