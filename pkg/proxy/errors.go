package proxy

import (
	"errors"
	"io"
)

var (
	ErrRequestMalformed    = errors.New("malformed request line")
	ErrUnimplementedMethod = errors.New("request method not implemented")
	ErrHeaderMalformed     = errors.New("malformed request headers")
	ErrEntityMalformed     = errors.New("malformed request entity")
	ErrUpstreamConnect     = errors.New("upstream connect failed")
	ErrUpstreamMalformed   = errors.New("malformed upstream response")
	// errInternal covers states the parser should never report.
	errInternal = errors.New("internal error")
)

// The 500 text is deliberately "Bad Request"; clients have seen it that way.
const (
	responseBadRequest     = "HTTP/1.0 400 Bad Request\r\n\r\n"
	responseNotImplemented = "HTTP/1.0 501 Not Implemented\r\n\r\n"
	responseInternal       = "HTTP/1.0 500 Bad Request\r\n\r\n"
)

// clientResponse maps a request-side failure to the status sent to the client.
func clientResponse(err error) (int, string) {
	switch {
	case errors.Is(err, ErrRequestMalformed),
		errors.Is(err, ErrHeaderMalformed),
		errors.Is(err, ErrEntityMalformed):
		return 400, responseBadRequest
	case errors.Is(err, ErrUnimplementedMethod):
		return 501, responseNotImplemented
	default:
		return 500, responseInternal
	}
}

// writeClientError sends the bodiless error response for err and returns its status.
func writeClientError(w io.Writer, err error) (int, error) {
	status, resp := clientResponse(err)
	_, werr := io.WriteString(w, resp)
	return status, werr
}
