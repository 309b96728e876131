package request

type LineStatus int

const (
	LineOK LineStatus = iota
	LineMalformed
	LineUnimplemented
)

func (s LineStatus) String() string {
	switch s {
	case LineOK:
		return "ok"
	case LineMalformed:
		return "malformed"
	case LineUnimplemented:
		return "unimplemented"
	}
	return "unknown"
}

// Line is a parsed request line. Host and Path are lowercased by the parser.
// Upstream lines produced by ToUpstreamLine leave Host and Port empty.
type Line struct {
	Method  string
	Host    string
	Port    string
	Path    string
	Version string
	Status  LineStatus
}

// URI rebuilds the absolute URI the line was parsed from (after lowercasing).
func (l Line) URI() string {
	if l.Host == "" {
		return l.Path
	}
	if l.Port == "80" {
		return "http://" + l.Host + l.Path
	}
	return "http://" + l.Host + ":" + l.Port + l.Path
}

type HeaderStatus int

const (
	HeadersOK HeaderStatus = iota
	HeadersMalformed
)

type Header struct {
	Name  string
	Value string
}

// HeaderSet keeps header pairs in arrival order, duplicates included.
//
// HasEntityBody is never set by ParseHeaders: request bodies are not
// supported, so the branch in the connection handler that checks it is
// never taken.
type HeaderSet struct {
	Headers       []Header
	HasEntityBody bool
	Status        HeaderStatus
}

func (h HeaderSet) Count() int {
	return len(h.Headers)
}

// Get returns the first value whose name matches exactly.
func (h HeaderSet) Get(name string) (string, bool) {
	for _, hdr := range h.Headers {
		if hdr.Name == name {
			return hdr.Value, true
		}
	}
	return "", false
}

type EntityStatus int

const (
	EntityOK EntityStatus = iota
	EntityMalformed
)

// Entity is the request body. Always empty for now.
type Entity struct {
	Data   []byte
	Status EntityStatus
}
