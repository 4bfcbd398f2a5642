package webx

import (
	"fmt"
	"io"

	json "github.com/goccy/go-json"

	"dqx0.com/go/web/webx/internal/http1"
)

const notFoundResponse = "HTTP/1.0 404 NOT FOUND\r\n" +
	"Content-Type: text/plain; charset=utf-8\r\n\r\n" +
	"!!! NOT FOUND !!!"

// respond serializes the accumulated response state onto the wire. An
// unset payload descriptor synthesizes the default 404; an :after hook
// that already supplied its own 404 takes precedence because the
// descriptor is no longer unset.
func (f *Flow) respond() error {
	if f.payload.kind == payloadUnset {
		if _, err := io.WriteString(f.bw, notFoundResponse); err != nil {
			return err
		}
		return f.bw.Flush()
	}
	status := f.Status
	if status == 0 {
		status = 200
	}
	if err := http1.WriteStatusLine(f.bw, status, f.Reason); err != nil {
		return err
	}
	for k, vv := range f.Tail {
		if k == "" {
			continue
		}
		for _, v := range vv {
			if err := http1.WriteHeaderLine(f.bw, k, v); err != nil {
				return err
			}
		}
	}
	for _, c := range f.cookies {
		if c.name == "" {
			continue
		}
		if err := http1.WriteSetCookie(f.bw, URLEncode(c.name, false), c.value); err != nil {
			return err
		}
	}
	if err := http1.EndHeaders(f.bw); err != nil {
		return err
	}
	if err := f.writeBody(); err != nil {
		return err
	}
	return f.bw.Flush()
}

func (f *Flow) writeBody() error {
	switch f.payload.kind {
	case payloadText:
		_, err := io.WriteString(f.bw, f.payload.text)
		return err
	case payloadBytes:
		_, err := f.bw.Write(f.payload.raw)
		return err
	case payloadJSON:
		b, err := json.Marshal(f.payload.value)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrBadEncoding, err)
		}
		_, err = f.bw.Write(b)
		return err
	case payloadForm:
		_, err := f.bw.Write(ParamEncode(f.payload.form))
		return err
	case payloadStream:
		src := f.payload.stream
		if f.payload.open != nil {
			rc, err := f.payload.open()
			if err != nil {
				return err
			}
			defer rc.Close()
			src = rc
		}
		return f.streamBody(src)
	case payloadProducer:
		b, err := f.payload.producer()
		if err != nil {
			return err
		}
		_, err = f.bw.Write(b)
		return err
	}
	return nil
}

// streamBody copies src one limit-sized chunk at a time, flushing after
// each chunk so no more than one unwritten chunk is ever held.
func (f *Flow) streamBody(src io.Reader) error {
	buf := make([]byte, f.limit)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			if _, werr := f.bw.Write(buf[:n]); werr != nil {
				return werr
			}
			if werr := f.bw.Flush(); werr != nil {
				return werr
			}
		}
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
