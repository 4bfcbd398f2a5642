package webx

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"unicode/utf8"

	json "github.com/goccy/go-json"

	"dqx0.com/go/web/webx/internal/http1"
)

type bodyState uint8

const (
	bodyNone bodyState = iota
	bodyRaw
	bodyJSON
	bodyForm
	bodyStream
)

type setCookie struct {
	name  string
	value []byte // pre-encoded value plus attribute suffixes
}

// Flow is the per-connection request/response context. It is created
// once per accepted connection, owned exclusively by that connection's
// goroutine, and never shared.
//
// The parsed fields (Method, Path, Ver, Head, Cookie) are set once by
// parse; hooks may rewrite Path before the main dispatch. Status,
// Reason and Tail accumulate the response; Var is opaque inter-hook
// storage.
type Flow struct {
	rd    *http1.Reader
	bw    *bufio.Writer
	limit int
	ctx   context.Context

	Method string
	Path   string
	Ver    string
	Head   map[string]string
	Cookie map[string]string

	Var map[string]any

	Status int
	Reason string
	Tail   Header

	queryRaw  []byte
	query     []Param
	queryDone bool

	contentLength int64 // -1 when absent

	body     bodyState
	recvRaw  []byte
	recvJSON any
	recvForm []Param

	cookies []setCookie
	payload payload
}

func newFlow(ctx context.Context, rw io.ReadWriter, limit int) *Flow {
	return &Flow{
		rd:            http1.NewReader(rw, limit),
		bw:            bufio.NewWriter(rw),
		limit:         limit,
		ctx:           ctx,
		Var:           map[string]any{},
		Tail:          Header{"Connection": {"Close"}},
		contentLength: -1,
	}
}

// Context returns the connection's context, Background when unset.
func (f *Flow) Context() context.Context {
	if f == nil || f.ctx == nil {
		return context.Background()
	}
	return f.ctx
}

// Handled reports whether a response payload has been set.
func (f *Flow) Handled() bool {
	return f.payload.kind != payloadUnset
}

// parse reads and decodes the request line and headers. It fails with
// ErrBadRequest on a malformed request line, ErrTooLarge when a line or
// the declared body length exceeds the limit, and ErrBadEncoding on
// undecodable path or cookie bytes. Nothing past the header block is
// consumed.
func (f *Flow) parse() error {
	line, err := f.readLine()
	if err != nil {
		if errors.Is(err, ErrTooLarge) {
			return err
		}
		return fmt.Errorf("%w: %v", ErrBadRequest, err)
	}
	fields := bytes.Fields(line)
	if len(fields) < 3 {
		return fmt.Errorf("%w: %q", ErrBadRequest, line)
	}
	f.Method = strings.ToLower(string(fields[0]))
	if _, ver, ok := bytes.Cut(fields[2], []byte("/")); ok {
		f.Ver = string(ver)
	} else {
		f.Ver = "1.1"
	}

	target, rawq, _ := bytes.Cut(fields[1], []byte("?"))
	f.queryRaw = append([]byte(nil), bytes.TrimLeft(rawq, "?")...)
	// Drop scheme/host remnants before the first separator.
	target = bytes.ReplaceAll(target, []byte(`\`), []byte("/"))
	if _, rest, ok := bytes.Cut(target, []byte("/")); ok {
		p, err := URLDecode(rest)
		if err != nil {
			return err
		}
		f.Path = strings.ToLower(p)
	}

	f.Head = map[string]string{}
	f.Cookie = map[string]string{}
	for {
		line, err := f.readLine()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if errors.Is(err, ErrTooLarge) {
				return err
			}
			return fmt.Errorf("%w: %v", ErrBadRequest, err)
		}
		if len(line) == 0 {
			break
		}
		name, val, hasColon := bytes.Cut(line, []byte(":"))
		key := strings.ToLower(string(bytes.TrimSpace(name)))
		if key == "cookie" {
			if !hasColon {
				continue
			}
			for _, frag := range bytes.Split(val, []byte(";")) {
				ck, cv, _ := bytes.Cut(frag, []byte("="))
				k, err := URLDecode(bytes.TrimSpace(ck))
				if err != nil {
					return err
				}
				v, err := URLDecode(bytes.TrimSpace(cv))
				if err != nil {
					return err
				}
				f.Cookie[k] = v
			}
			continue
		}
		f.Head[key] = string(bytes.TrimSpace(val))
	}

	if v, ok := f.Head["content-length"]; ok {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil || n < 0 {
			return fmt.Errorf("%w: content-length %q", ErrBadRequest, v)
		}
		if n > int64(f.limit) {
			return fmt.Errorf("%w: content-length %d over limit %d", ErrTooLarge, n, f.limit)
		}
		f.contentLength = n
	}
	return nil
}

func (f *Flow) readLine() ([]byte, error) {
	line, err := f.rd.ReadLine()
	if errors.Is(err, io.ErrShortBuffer) {
		return nil, fmt.Errorf("%w: line over %d bytes", ErrTooLarge, f.limit)
	}
	return line, err
}

// Query decodes the raw query string into ordered pairs, once; later
// calls return the cached result.
func (f *Flow) Query() ([]Param, error) {
	if !f.queryDone {
		q, err := ParamDecode(f.queryRaw)
		if err != nil {
			return nil, err
		}
		f.query = q
		f.queryDone = true
		f.queryRaw = nil
	}
	return f.query, nil
}

func (f *Flow) readAll() ([]byte, error) {
	if f.contentLength >= 0 {
		return f.rd.ReadBody(int(f.contentLength))
	}
	b, err := f.rd.ReadBounded()
	if errors.Is(err, io.ErrShortBuffer) {
		return nil, fmt.Errorf("%w: body over %d bytes", ErrTooLarge, f.limit)
	}
	return b, err
}

// RecvBytes reads the whole request body: exactly Content-Length bytes
// when declared, otherwise a bounded best-effort read capped at the
// limit. The result is cached; the body accessors are mutually
// exclusive and the first call wins.
func (f *Flow) RecvBytes() ([]byte, error) {
	switch f.body {
	case bodyRaw:
		return f.recvRaw, nil
	case bodyNone:
	default:
		return nil, ErrBodyConsumed
	}
	b, err := f.readAll()
	if err != nil {
		return nil, err
	}
	f.body = bodyRaw
	f.recvRaw = b
	return b, nil
}

// RecvJSON decodes the body as a JSON value. The body must be valid
// UTF-8 and valid JSON, else ErrBadEncoding.
func (f *Flow) RecvJSON() (any, error) {
	switch f.body {
	case bodyJSON:
		return f.recvJSON, nil
	case bodyNone:
	default:
		return nil, ErrBodyConsumed
	}
	b, err := f.readAll()
	if err != nil {
		return nil, err
	}
	if !utf8.Valid(b) {
		return nil, fmt.Errorf("%w: body is not utf-8", ErrBadEncoding)
	}
	var v any
	if err := json.Unmarshal(b, &v); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadEncoding, err)
	}
	f.body = bodyJSON
	f.recvJSON = v
	return v, nil
}

// RecvForm decodes the body as url-encoded ordered pairs.
func (f *Flow) RecvForm() ([]Param, error) {
	switch f.body {
	case bodyForm:
		return f.recvForm, nil
	case bodyNone:
	default:
		return nil, ErrBodyConsumed
	}
	b, err := f.readAll()
	if err != nil {
		return nil, err
	}
	params, err := ParamDecode(b)
	if err != nil {
		return nil, err
	}
	f.body = bodyForm
	f.recvForm = params
	return params, nil
}

// RecvStream exposes the body as a finite, non-restartable stream
// without buffering it, for uploads too large to hold in memory. It
// cannot be combined with the other accessors.
func (f *Flow) RecvStream() (io.Reader, error) {
	if f.body != bodyNone {
		return nil, ErrBodyConsumed
	}
	f.body = bodyStream
	return f.rd.Body(f.contentLength), nil
}

// CookieAttrs are the optional Set-Cookie attributes, appended verbatim
// in the order Path, Domain, Expires, Max-Age, Secure, HttpOnly,
// Partitioned. MaxAge follows the net/http convention: 0 omits the
// attribute, negative emits Max-Age=0.
type CookieAttrs struct {
	Path        string
	Domain      string
	Expires     string
	MaxAge      int
	Secure      bool
	HttpOnly    bool
	Partitioned bool
}

// SetCookie queues a Set-Cookie header. The value is percent-encoded;
// attribute suffixes are not.
func (f *Flow) SetCookie(name, value string, attrs *CookieAttrs) {
	v := URLEncode(value, false)
	if attrs != nil {
		if attrs.Path != "" {
			v = append(v, ("; Path="+attrs.Path)...)
		}
		if attrs.Domain != "" {
			v = append(v, ("; Domain="+attrs.Domain)...)
		}
		if attrs.Expires != "" {
			v = append(v, ("; Expires="+attrs.Expires)...)
		}
		if attrs.MaxAge > 0 {
			v = append(v, ("; Max-Age="+strconv.Itoa(attrs.MaxAge))...)
		} else if attrs.MaxAge < 0 {
			v = append(v, "; Max-Age=0"...)
		}
		if attrs.Secure {
			v = append(v, "; Secure"...)
		}
		if attrs.HttpOnly {
			v = append(v, "; HttpOnly"...)
		}
		if attrs.Partitioned {
			v = append(v, "; Partitioned"...)
		}
	}
	f.putCookie(name, v)
}

// DelCookie queues a Set-Cookie header that expires the cookie.
func (f *Flow) DelCookie(name string) {
	f.putCookie(name, []byte("; Expires=Thu, 01 Jan 1970 00:00:01 GMT; Max-Age=0"))
}

func (f *Flow) putCookie(name string, value []byte) {
	for i := range f.cookies {
		if f.cookies[i].name == name {
			f.cookies[i].value = value
			return
		}
	}
	f.cookies = append(f.cookies, setCookie{name: name, value: value})
}
