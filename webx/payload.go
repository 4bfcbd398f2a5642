package webx

import "io"

type payloadKind uint8

const (
	payloadUnset payloadKind = iota
	payloadText
	payloadBytes
	payloadJSON
	payloadForm
	payloadStream
	payloadProducer
)

// payload is the tagged response-body descriptor. Any kind but
// payloadUnset means the request has been handled; the serializer
// branches on the tag alone.
type payload struct {
	kind     payloadKind
	text     string
	raw      []byte
	value    any
	form     []Param
	stream   io.Reader
	open     func() (io.ReadCloser, error) // lazy stream source, opened at write time
	producer func() ([]byte, error)
}
