package webx

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Param is one ordered key/value pair of form or query data.
type Param struct {
	Key   string
	Value string
}

const hexUpper = "0123456789ABCDEF"

// URLEncode percent-encodes s. The unreserved bytes A-Z a-z 0-9 - . _ ~
// stay as-is, as does '/' unless safe is set; everything else becomes
// %XX with uppercase hex.
func URLEncode(s string, safe bool) []byte {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		b := s[i]
		switch {
		case b >= 'A' && b <= 'Z', b >= 'a' && b <= 'z', b >= '0' && b <= '9',
			b == '-', b == '.', b == '_', b == '~',
			b == '/' && !safe:
			out = append(out, b)
		default:
			out = append(out, '%', hexUpper[b>>4], hexUpper[b&0x0F])
		}
	}
	return out
}

// URLDecode reverses percent-encoding: '+' becomes a space, %XX becomes
// the byte it names. A '%' without two following bytes is kept literal.
// The decoded bytes must form valid UTF-8.
func URLDecode(b []byte) (string, error) {
	out := make([]byte, 0, len(b))
	for i := 0; i < len(b); i++ {
		c := b[i]
		switch {
		case c == '+':
			out = append(out, ' ')
		case c == '%' && i+2 < len(b):
			hi := unhex(b[i+1])
			lo := unhex(b[i+2])
			if hi < 0 || lo < 0 {
				return "", fmt.Errorf("%w: bad percent escape %q", ErrBadEncoding, b[i:i+3])
			}
			out = append(out, byte(hi<<4|lo))
			i += 2
		default:
			out = append(out, c)
		}
	}
	if !utf8.Valid(out) {
		return "", fmt.Errorf("%w: invalid utf-8", ErrBadEncoding)
	}
	return string(out), nil
}

func unhex(c byte) int {
	switch {
	case c >= '0' && c <= '9':
		return int(c - '0')
	case c >= 'a' && c <= 'f':
		return int(c-'a') + 10
	case c >= 'A' && c <= 'F':
		return int(c-'A') + 10
	}
	return -1
}

// ParamDecode parses application/x-www-form-urlencoded bytes into
// ordered pairs. Pairs with an empty key are skipped; a pair without
// '=' decodes to an empty value.
func ParamDecode(b []byte) ([]Param, error) {
	var out []Param
	for _, kv := range bytes.Split(b, []byte("&")) {
		k, v, _ := bytes.Cut(kv, []byte("="))
		k = bytes.TrimSpace(k)
		if len(k) == 0 {
			continue
		}
		key, err := URLDecode(k)
		if err != nil {
			return nil, err
		}
		val, err := URLDecode(bytes.TrimSpace(v))
		if err != nil {
			return nil, err
		}
		out = append(out, Param{Key: key, Value: val})
	}
	return out, nil
}

// ParamEncode serializes ordered pairs as
// application/x-www-form-urlencoded bytes. Pairs with an empty key are
// skipped.
func ParamEncode(params []Param) []byte {
	var out []byte
	for _, p := range params {
		if p.Key == "" {
			continue
		}
		if len(out) > 0 {
			out = append(out, '&')
		}
		out = append(out, URLEncode(p.Key, false)...)
		out = append(out, '=')
		out = append(out, URLEncode(p.Value, false)...)
	}
	return out
}

// ParamGet returns the first value stored under name.
func ParamGet(params []Param, name string) (string, bool) {
	for _, p := range params {
		if p.Key == name {
			return p.Value, true
		}
	}
	return "", false
}

// ParamArray returns every value stored under name, in order.
func ParamArray(params []Param, name string) []string {
	var out []string
	for _, p := range params {
		if p.Key == name {
			out = append(out, p.Value)
		}
	}
	return out
}
