package webx

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countingWriter records the size of each flushed write.
type countingWriter struct {
	buf    bytes.Buffer
	writes []int
}

func (w *countingWriter) Write(b []byte) (int, error) {
	w.writes = append(w.writes, len(b))
	return w.buf.Write(b)
}

func respondFlow(t *testing.T, limit int, build func(f *Flow)) (string, *countingWriter) {
	t.Helper()
	out := &countingWriter{}
	f := newFlow(context.Background(), rwPair{r: strings.NewReader(""), w: out}, limit)
	if build != nil {
		build(f)
	}
	require.NoError(t, f.respond())
	return out.buf.String(), out
}

func splitResponse(t *testing.T, raw string) (status string, headers []string, body string) {
	t.Helper()
	head, body, ok := strings.Cut(raw, "\r\n\r\n")
	require.True(t, ok, "response %q has no header terminator", raw)
	lines := strings.Split(head, "\r\n")
	return lines[0], lines[1:], body
}

func TestRespondDefaultNotFound(t *testing.T) {
	raw, _ := respondFlow(t, 1024, nil)

	status, headers, body := splitResponse(t, raw)
	assert.Equal(t, "HTTP/1.0 404 NOT FOUND", status)
	assert.Contains(t, headers, "Content-Type: text/plain; charset=utf-8")
	assert.Equal(t, "!!! NOT FOUND !!!", body)
}

func TestRespondText(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendText("hello")
	})

	status, headers, body := splitResponse(t, raw)
	assert.Equal(t, "HTTP/1.0 200 OK", status)
	assert.Contains(t, headers, "Content-Type: text/plain; charset=utf-8")
	assert.Contains(t, headers, "Connection: Close")
	assert.Equal(t, "hello", body)
}

func TestRespondStatusOverride(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendHTML("<p>gone</p>", WithStatus(404, "LOST"))
	})

	status, headers, body := splitResponse(t, raw)
	assert.Equal(t, "HTTP/1.0 404 LOST", status)
	assert.Contains(t, headers, "Content-Type: text/html; charset=utf-8")
	assert.Equal(t, "<p>gone</p>", body)
}

func TestRespondSequenceHeader(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.Tail.Add("X-Multi", "one")
		f.Tail.Add("X-Multi", "two")
		f.SendText("ok")
	})

	_, headers, _ := splitResponse(t, raw)
	assert.Contains(t, headers, "X-Multi: one")
	assert.Contains(t, headers, "X-Multi: two")
}

func TestRespondCookies(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SetCookie("user", "b ob", &CookieAttrs{MaxAge: 60})
		f.SendText("ok")
	})

	_, headers, _ := splitResponse(t, raw)
	assert.Contains(t, headers, "Set-Cookie: user=b%20ob; Max-Age=60")
}

func TestRespondJSON(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendJSON(map[string]any{"return": "ok"})
	})

	_, headers, body := splitResponse(t, raw)
	assert.Contains(t, headers, "Content-Type: application/json; charset=utf-8")
	assert.Contains(t, headers, "Cache-Control: no-store")
	assert.Equal(t, `{"return":"ok"}`, body)
}

func TestRespondForm(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendForm([]Param{{"a", "1"}, {"b", "x y"}})
	})

	_, headers, body := splitResponse(t, raw)
	assert.Contains(t, headers, "Content-Type: application/x-www-form-urlencoded; charset=utf-8")
	assert.Equal(t, "a=1&b=x%20y", body)
}

func TestRespondRedirect(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendRedirect("/login")
	})

	status, headers, body := splitResponse(t, raw)
	assert.Equal(t, "HTTP/1.0 302 REDIR", status)
	assert.Contains(t, headers, "Location: /login")
	assert.Empty(t, body)
}

func TestRespondProducer(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.SendText("ignored")
		f.SendProducer(func() ([]byte, error) { return []byte("produced"), nil })
	})

	_, _, body := splitResponse(t, raw)
	assert.Equal(t, "produced", body)
}

func TestRespondProducerError(t *testing.T) {
	out := &countingWriter{}
	f := newFlow(context.Background(), rwPair{r: strings.NewReader(""), w: out}, 1024)
	boom := errors.New("boom")
	f.SendProducer(func() ([]byte, error) { return nil, boom })
	assert.ErrorIs(t, f.respond(), boom)
}

func TestRespondStreamChunks(t *testing.T) {
	body := strings.Repeat("s", 10)
	raw, out := respondFlow(t, 4, func(f *Flow) {
		f.SendStream(strings.NewReader(body))
	})

	_, _, got := splitResponse(t, raw)
	assert.Equal(t, body, got)
	// each limit-sized chunk is flushed on its own
	require.GreaterOrEqual(t, len(out.writes), 3)
	last := out.writes[len(out.writes)-1]
	assert.LessOrEqual(t, last, 4)
}

func TestRespondDefaultStatus(t *testing.T) {
	raw, _ := respondFlow(t, 1024, func(f *Flow) {
		f.Send("bare")
	})

	status, _, body := splitResponse(t, raw)
	assert.Equal(t, "HTTP/1.0 200 OK", status)
	assert.Equal(t, "bare", body)
}
