package http1

import (
	"bufio"
	"fmt"
	"strings"
)

// WriteStatusLine writes the HTTP/1.0 status line. An empty reason falls
// back to the standard phrase for the code.
func WriteStatusLine(bw *bufio.Writer, status int, reason string) error {
	if reason == "" {
		reason = DefaultReason(status)
	}
	_, err := fmt.Fprintf(bw, "HTTP/1.0 %d %s\r\n", status, reason)
	return err
}

// WriteHeaderLine writes one header line, stripping control characters
// from the value.
func WriteHeaderLine(bw *bufio.Writer, key, value string) error {
	_, err := fmt.Fprintf(bw, "%s: %s\r\n", key, sanitizeValue(value))
	return err
}

// WriteSetCookie writes one Set-Cookie line. The name must already be
// percent-encoded; value carries the encoded cookie value plus any
// attribute suffixes, emitted verbatim.
func WriteSetCookie(bw *bufio.Writer, name, value []byte) error {
	if _, err := bw.WriteString("Set-Cookie: "); err != nil {
		return err
	}
	if _, err := bw.Write(name); err != nil {
		return err
	}
	if err := bw.WriteByte('='); err != nil {
		return err
	}
	if _, err := bw.Write(value); err != nil {
		return err
	}
	_, err := bw.WriteString("\r\n")
	return err
}

// EndHeaders terminates the header block.
func EndHeaders(bw *bufio.Writer) error {
	_, err := bw.WriteString("\r\n")
	return err
}

func DefaultReason(code int) string {
	switch code {
	case 200:
		return "OK"
	case 201:
		return "Created"
	case 204:
		return "No Content"
	case 301:
		return "Moved Permanently"
	case 302:
		return "Found"
	case 304:
		return "Not Modified"
	case 400:
		return "Bad Request"
	case 401:
		return "Unauthorized"
	case 403:
		return "Forbidden"
	case 404:
		return "Not Found"
	case 500:
		return "Internal Server Error"
	case 501:
		return "Not Implemented"
	default:
		return "NA"
	}
}

func sanitizeValue(v string) string {
	if v == "" {
		return v
	}
	// Remove CR/LF and other control chars except HTAB
	var b strings.Builder
	b.Grow(len(v))
	for i := 0; i < len(v); i++ {
		c := v[i]
		if c == '\r' || c == '\n' || c == 0x7f {
			continue
		}
		if c < 0x20 && c != '\t' {
			continue
		}
		b.WriteByte(c)
	}
	return b.String()
}
