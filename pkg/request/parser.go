package request

import (
	"errors"
	"io"
	"strings"
)

const (
	MethodGet  = "GET"
	MethodPost = "POST"

	DefaultMaxHeaders = 512
	defaultPort       = "80"
	schemePrefix      = "http://"
)

// ParserOption is a functional option for building a Parser
type ParserOption func(*Parser)

// WithPost enables POST next to GET. Any other method is unimplemented.
func WithPost(enabled bool) ParserOption {
	return func(p *Parser) {
		p.allowPost = enabled
	}
}

// WithMaxHeaders sets how many header pairs a request may carry. max must be > 0.
func WithMaxHeaders(max int) ParserOption {
	return func(p *Parser) {
		if max > 0 {
			p.maxHeaders = max
		} else {
			panic("max headers must be > 0")
		}
	}
}

// Parser tokenizes client request lines and header blocks.
// A Parser holds no per-request state and is safe for concurrent use.
type Parser struct {
	allowPost  bool
	maxHeaders int
}

func NewParser(opts ...ParserOption) *Parser {
	p := &Parser{maxHeaders: DefaultMaxHeaders}
	for _, o := range opts {
		o(p)
	}
	return p
}

// ReadRequestLine reads one line from r and parses it. A read failure or an
// empty stream yields a malformed line.
func (p *Parser) ReadRequestLine(r *Reader) Line {
	line, err := r.ReadLine()
	if err != nil {
		return Line{Status: LineMalformed}
	}
	return p.ParseRequestLine(line)
}

// ParseRequestLine parses "METHOD URI VERSION". The three fields must make up
// the whole line. The URI is lowercased before it is split, path included.
func (p *Parser) ParseRequestLine(line string) Line {
	fields := strings.Fields(line)
	if len(fields) != 3 {
		return Line{Status: LineMalformed}
	}
	method, uri, version := fields[0], fields[1], fields[2]

	if !p.methodAllowed(method) {
		return Line{Status: LineUnimplemented}
	}

	host, port, path, ok := splitURI(strings.ToLower(uri))
	if !ok {
		return Line{Status: LineMalformed}
	}

	return Line{
		Method:  method,
		Host:    host,
		Port:    port,
		Path:    path,
		Version: version,
		Status:  LineOK,
	}
}

func (p *Parser) methodAllowed(method string) bool {
	switch method {
	case MethodGet:
		return true
	case MethodPost:
		return p.allowPost
	}
	return false
}

// splitURI splits http://host[:port]path. Host and path are required, and an
// explicit port must not be empty.
func splitURI(uri string) (host, port, path string, ok bool) {
	rest, found := strings.CutPrefix(uri, schemePrefix)
	if !found {
		return "", "", "", false
	}

	end := strings.IndexAny(rest, ":/")
	if end <= 0 {
		return "", "", "", false
	}
	host, rest = rest[:end], rest[end:]

	port = defaultPort
	if rest[0] == ':' {
		rest = rest[1:]
		end = strings.IndexByte(rest, '/')
		if end == -1 {
			end = len(rest)
		}
		if end == 0 {
			return "", "", "", false
		}
		port, rest = rest[:end], rest[end:]
	}

	if rest == "" {
		return "", "", "", false
	}
	return host, port, rest, true
}

// ParseHeaders reads "Name: Value" lines until a blank line or end of stream.
// Any line that is not exactly one name and one value token rejects the whole
// block, as does a block with more pairs than the configured maximum.
func (p *Parser) ParseHeaders(r *Reader) HeaderSet {
	var hs HeaderSet
	for {
		line, err := r.ReadLine()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return HeaderSet{Status: HeadersMalformed}
		}
		if isBlank(line) {
			break
		}

		h, ok := parseHeaderLine(line)
		if !ok || len(hs.Headers) >= p.maxHeaders {
			return HeaderSet{Status: HeadersMalformed}
		}
		hs.Headers = append(hs.Headers, h)
	}
	hs.Status = HeadersOK
	return hs
}

func parseHeaderLine(line string) (Header, bool) {
	colon := strings.IndexByte(line, ':')
	if colon <= 0 {
		return Header{}, false
	}
	value := strings.Fields(line[colon+1:])
	if len(value) != 1 {
		return Header{}, false
	}
	return Header{Name: line[:colon], Value: value[0]}, true
}

// ParseEntity reads the request body. Bodies are not supported yet, so this
// consumes nothing and always succeeds.
func (p *Parser) ParseEntity(_ *Reader) Entity {
	return Entity{Status: EntityOK}
}
