package webx

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestURLDecode(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"a+b", "a b"},
		{"%41", "A"},
		{"abc", "abc"},
		{"%E4%B8%96%E7%95%8C", "世界"},
		{"100%", "100%"},  // trailing '%' with no escape stays literal
		{"a%2Fb", "a/b"},
	}
	for _, c := range cases {
		got, err := URLDecode([]byte(c.in))
		require.NoError(t, err, "decode %q", c.in)
		assert.Equal(t, c.want, got, "decode %q", c.in)
	}
}

func TestURLDecodeErrors(t *testing.T) {
	_, err := URLDecode([]byte("%zz"))
	assert.ErrorIs(t, err, ErrBadEncoding)

	_, err = URLDecode([]byte("%FF%FE"))
	assert.ErrorIs(t, err, ErrBadEncoding) // not valid utf-8
}

func TestURLEncode(t *testing.T) {
	assert.Equal(t, "AZaz09-._~", string(URLEncode("AZaz09-._~", false)))
	assert.Equal(t, "a/b", string(URLEncode("a/b", false)))
	assert.Equal(t, "a%2Fb", string(URLEncode("a/b", true)))
	assert.Equal(t, "a%20b%26c", string(URLEncode("a b&c", false)))
	assert.Equal(t, "%E4%B8%96%E7%95%8C", string(URLEncode("世界", false)))
}

func TestURLCodecRoundTrip(t *testing.T) {
	for _, s := range []string{
		"", "plain", "with space", "a/b/c", "key=value&x",
		"ünïcode 世界", "100% +done", "~-._",
	} {
		got, err := URLDecode(URLEncode(s, true))
		require.NoError(t, err, "round trip %q", s)
		assert.Equal(t, s, got, "round trip %q", s)
	}
}

func TestParamDecode(t *testing.T) {
	params, err := ParamDecode([]byte("a=1&b=2&a=3&novalue&=skipped"))
	require.NoError(t, err)
	assert.Equal(t, []Param{
		{"a", "1"}, {"b", "2"}, {"a", "3"}, {"novalue", ""},
	}, params)

	v, ok := ParamGet(params, "a")
	assert.True(t, ok)
	assert.Equal(t, "1", v)

	_, ok = ParamGet(params, "missing")
	assert.False(t, ok)

	assert.Equal(t, []string{"1", "3"}, ParamArray(params, "a"))
}

func TestParamEncode(t *testing.T) {
	b := ParamEncode([]Param{{"a", "1"}, {"", "dropped"}, {"k", "v w"}})
	assert.Equal(t, "a=1&k=v%20w", string(b))
}

func TestParamCodecRoundTrip(t *testing.T) {
	in := []Param{{"q", "hello world"}, {"path", "/a/b"}, {"q", "wieder"}}
	out, err := ParamDecode(ParamEncode(in))
	require.NoError(t, err)
	assert.Equal(t, in, out)
}

func TestMimeType(t *testing.T) {
	assert.Equal(t, "text/html", MimeType("html"))
	assert.Equal(t, "text/html", MimeType("HTM"))
	assert.Equal(t, "image/jpeg", MimeType("jpg"))
	assert.Equal(t, "application/octet-stream", MimeType("bin"))
	assert.Equal(t, "application/octet-stream", MimeType(""))
}
