package http1

import (
	"bytes"
	"io"
)

// Reader reads request bytes through a bounded intermediate buffer.
// The buffer never holds more than the configured limit; leftover bytes
// from header parsing are handed to body reads before the socket is
// touched again.
type Reader struct {
	r     io.Reader
	limit int
	buf   []byte
}

func NewReader(r io.Reader, limit int) *Reader {
	return &Reader{r: r, limit: limit}
}

// ReadLine returns the next line with trailing CR/LF stripped. A line
// longer than the limit fails with io.ErrShortBuffer. At EOF any
// unterminated remainder is returned as the final line; io.EOF is
// returned only when nothing remains.
func (r *Reader) ReadLine() ([]byte, error) {
	for {
		if i := bytes.IndexByte(r.buf, '\n'); i >= 0 {
			line := bytes.TrimRight(r.buf[:i], "\r\n")
			r.buf = r.buf[i+1:]
			return line, nil
		}
		room := r.limit - len(r.buf)
		if room <= 0 {
			return nil, io.ErrShortBuffer
		}
		chunk := make([]byte, room)
		n, err := r.r.Read(chunk)
		if n > 0 {
			r.buf = append(r.buf, chunk[:n]...)
		}
		if err != nil {
			if err != io.EOF {
				return nil, err
			}
			if len(r.buf) == 0 {
				return nil, io.EOF
			}
			line := bytes.TrimRight(r.buf, "\r\n")
			r.buf = nil
			return line, nil
		}
	}
}

// ReadBody returns exactly n body bytes, consuming parse leftovers first.
func (r *Reader) ReadBody(n int) ([]byte, error) {
	out := r.buf
	r.buf = nil
	if len(out) >= n {
		r.buf = out[n:]
		return out[:n:n], nil
	}
	tail := make([]byte, n-len(out))
	if _, err := io.ReadFull(r.r, tail); err != nil {
		return nil, err
	}
	return append(out, tail...), nil
}

// ReadBounded reads the body until EOF when no length was declared. A
// body that fills the whole buffer is treated as overflow and fails
// with io.ErrShortBuffer.
func (r *Reader) ReadBounded() ([]byte, error) {
	out := r.buf
	r.buf = nil
	for {
		if len(out) >= r.limit {
			return nil, io.ErrShortBuffer
		}
		chunk := make([]byte, r.limit-len(out))
		n, err := r.r.Read(chunk)
		if n > 0 {
			out = append(out, chunk[:n]...)
		}
		if err == io.EOF {
			if len(out) >= r.limit {
				return nil, io.ErrShortBuffer
			}
			return out, nil
		}
		if err != nil {
			return nil, err
		}
	}
}

// Body exposes the request body as a finite, non-restartable stream,
// bounded by the declared Content-Length when cl >= 0. Nothing is
// buffered beyond the parse leftovers already read.
func (r *Reader) Body(cl int64) io.Reader {
	left := r.buf
	r.buf = nil
	if cl < 0 {
		return io.MultiReader(bytes.NewReader(left), r.r)
	}
	if int64(len(left)) >= cl {
		return bytes.NewReader(left[:cl])
	}
	return io.MultiReader(bytes.NewReader(left), io.LimitReader(r.r, cl-int64(len(left))))
}
