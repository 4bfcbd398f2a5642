package webx

import (
	"io"
	"os"
	"strconv"
	"strings"
)

type sendConfig struct {
	status int
	reason string
	maxAge int // negative means no Cache-Control
}

// SendOption adjusts the status, reason or caching of a Send* helper.
type SendOption func(*sendConfig)

// WithStatus overrides the helper's status code and reason phrase.
func WithStatus(status int, reason string) SendOption {
	return func(c *sendConfig) {
		c.status = status
		c.reason = reason
	}
}

// WithMaxAge sets Cache-Control: public, max-age=seconds. A negative
// value removes the helper's Cache-Control entirely.
func WithMaxAge(seconds int) SendOption {
	return func(c *sendConfig) {
		c.maxAge = seconds
	}
}

func (f *Flow) sendConfig(maxAge int, opts []SendOption) sendConfig {
	cfg := sendConfig{status: 200, reason: "OK", maxAge: maxAge}
	for _, o := range opts {
		o(&cfg)
	}
	f.Status = cfg.status
	f.Reason = cfg.reason
	if cfg.maxAge >= 0 {
		f.Tail.Set("Cache-Control", "public, max-age="+strconv.Itoa(cfg.maxAge))
	}
	return cfg
}

// SendText responds with a plain-text body.
func (f *Flow) SendText(s string, opts ...SendOption) {
	f.sendConfig(-1, opts)
	f.Tail.Set("Content-Type", "text/plain; charset=utf-8")
	f.payload = payload{kind: payloadText, text: s}
}

// SendHTML responds with an HTML body.
func (f *Flow) SendHTML(s string, opts ...SendOption) {
	f.sendConfig(-1, opts)
	f.Tail.Set("Content-Type", "text/html; charset=utf-8")
	f.payload = payload{kind: payloadText, text: s}
}

// SendJSON responds with v compact-encoded as JSON at write time.
func (f *Flow) SendJSON(v any, opts ...SendOption) {
	f.sendConfig(-1, opts)
	f.Tail.Set("Content-Type", "application/json; charset=utf-8")
	f.Tail.Set("Cache-Control", "no-store")
	f.payload = payload{kind: payloadJSON, value: v}
}

// SendForm responds with ordered pairs url-encoded as the body.
func (f *Flow) SendForm(params []Param, opts ...SendOption) {
	f.sendConfig(-1, opts)
	f.Tail.Set("Content-Type", "application/x-www-form-urlencoded; charset=utf-8")
	f.Tail.Set("Cache-Control", "no-store")
	f.payload = payload{kind: payloadForm, form: params}
}

// SendRedirect responds with a 302 pointing at url. The body is empty.
func (f *Flow) SendRedirect(url string) {
	f.Tail.Set("Location", url)
	f.Status = 302
	f.Reason = "REDIR"
	f.payload = payload{kind: payloadBytes}
}

// SendFile streams the named file in limit-sized chunks, with the
// Content-Type chosen by extension and a default max-age of one day.
// The file is opened lazily when the response is written.
func (f *Flow) SendFile(file string, opts ...SendOption) {
	f.sendConfig(86400, opts)
	ext := ""
	if i := strings.LastIndexByte(file, '.'); i >= 0 {
		ext = file[i+1:]
	}
	f.Tail.Set("Content-Type", MimeType(ext)+"; charset=utf-8")
	f.payload = payload{kind: payloadStream, open: func() (io.ReadCloser, error) {
		return os.Open(file)
	}}
}

// Send sets a bare text payload without touching status or headers.
func (f *Flow) Send(s string) {
	f.payload = payload{kind: payloadText, text: s}
}

// SendBytes sets a bare byte payload without touching status or headers.
func (f *Flow) SendBytes(b []byte) {
	f.payload = payload{kind: payloadBytes, raw: b}
}

// SendStream sets a streaming payload written one limit-sized chunk at
// a time.
func (f *Flow) SendStream(r io.Reader) {
	f.payload = payload{kind: payloadStream, stream: r}
}

// SendProducer sets a payload produced by fn, invoked once at write
// time.
func (f *Flow) SendProducer(fn func() ([]byte, error)) {
	f.payload = payload{kind: payloadProducer, producer: fn}
}
