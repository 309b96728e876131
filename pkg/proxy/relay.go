package proxy

import (
	"errors"
	"io"
	"strconv"
	"strings"

	"github.com/rs/zerolog"

	"github.com/ashpect/fwdproxy/pkg/cache"
	"github.com/ashpect/fwdproxy/pkg/request"
)

// errClientWrite marks a failed write to the client; relaying stops there.
var errClientWrite = errors.New("client write failed")

type relayResult struct {
	status int
	stored bool
}

// responseHead is what the relay learns from the upstream status line and headers.
type responseHead struct {
	status      int
	eligible    bool
	length      int
	hasLength   bool
	contentType string
	hasType     bool
}

// serveFromCache answers with a synthesized 200 carrying the stored body.
func (h *Handler) serveFromCache(w io.Writer, e cache.Entry) error {
	head := "HTTP/1.0 200 OK\r\n" +
		"Server: " + h.serverName + "\r\n" +
		"Content-Length: " + strconv.Itoa(e.Length) + "\r\n" +
		"Content-Type: " + e.ContentType + "\r\n" +
		"\r\n"
	if _, err := io.WriteString(w, head); err != nil {
		return err
	}
	_, err := w.Write(e.Content)
	return err
}

// relay forwards the upstream response to the client. The status line and
// headers are passed on line by line as they are read. A cache-eligible body
// within the size ceiling is copied into the store while it is relayed;
// everything else is copied through untouched until upstream closes.
//
// If upstream closes early during a cached transfer, the bytes already sent
// to the client stay sent, so the client may see a truncated body.
func (h *Handler) relay(client io.Writer, upstream io.Reader, key cache.Key, log zerolog.Logger) relayResult {
	ur := request.NewReader(upstream)

	head, err := relayHead(client, ur)
	res := relayResult{status: head.status}
	switch {
	case errors.Is(err, errClientWrite), errors.Is(err, io.EOF):
		log.Debug().Err(err).Msg("relay ended in response head")
		return res
	case err != nil:
		log.Debug().Err(err).Msg("passing response through")
	case !head.eligible || !head.hasLength || !head.hasType:
	case head.length > h.store.ObjectCeiling():
		log.Debug().Int("length", head.length).Msg("response too large to cache")
	default:
		stored, err := h.store.TryInsert(key, io.TeeReader(ur, client), head.length, head.contentType)
		if !errors.Is(err, cache.ErrTooLarge) {
			if err != nil {
				log.Debug().Err(err).Msg("response not cached")
			}
			res.stored = stored
			return res
		}
	}

	if _, err := io.Copy(client, ur); err != nil {
		log.Debug().Err(err).Msg("pass-through relay")
	}
	return res
}

// relayHead copies the status line and header lines to client while parsing
// them. It stops early, without error, once the status rules out caching.
// ErrUpstreamMalformed means the rest of the response must be passed through
// as is.
func relayHead(client io.Writer, ur *request.Reader) (responseHead, error) {
	var head responseHead

	line, err := ur.ReadLine()
	if werr := forward(client, line); werr != nil {
		return head, werr
	}
	if err != nil {
		if errors.Is(err, request.ErrLineTooLong) {
			return head, ErrUpstreamMalformed
		}
		return head, err
	}

	fields := strings.Fields(line)
	if len(fields) >= 2 {
		head.status, _ = strconv.Atoi(fields[1])
	}
	if len(fields) != 3 || fields[1] != "200" {
		return head, nil
	}
	head.eligible = true

	for {
		line, err := ur.ReadLine()
		if werr := forward(client, line); werr != nil {
			return head, werr
		}
		if errors.Is(err, request.ErrLineTooLong) {
			return head, ErrUpstreamMalformed
		}
		if err != nil {
			return head, err
		}
		if line == "\r\n" || line == "\n" {
			return head, nil
		}

		name, value, ok := splitResponseHeader(line)
		if !ok {
			return head, ErrUpstreamMalformed
		}
		switch strings.ToLower(name) {
		case "content-length":
			n, err := strconv.Atoi(value)
			head.length, head.hasLength = n, err == nil && n >= 0
		case "content-type":
			head.contentType, head.hasType = value, true
		}
	}
}

// splitResponseHeader is looser than the request header parser: the value
// may hold several tokens and is kept whole.
func splitResponseHeader(line string) (name, value string, ok bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return "", "", false
	}
	value = strings.TrimSpace(line[colon+1:])
	if value == "" {
		return "", "", false
	}
	return line[:colon], value, true
}

func forward(client io.Writer, line string) error {
	if line == "" {
		return nil
	}
	if _, err := io.WriteString(client, line); err != nil {
		return errClientWrite
	}
	return nil
}
