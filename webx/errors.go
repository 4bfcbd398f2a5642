package webx

import "errors"

var (
	ErrBadRequest   = errors.New("webx: bad request line")
	ErrTooLarge     = errors.New("webx: size limit exceeded")
	ErrBadEncoding  = errors.New("webx: malformed encoding")
	ErrHandler      = errors.New("webx: handler failure")
	ErrBodyConsumed = errors.New("webx: request body already consumed")
	ErrServerClosed = errors.New("webx: server closed")
)
