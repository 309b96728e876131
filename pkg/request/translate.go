package request

// DefaultUserAgent is sent upstream in place of whatever the client used.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:10.0.3) Gecko/20120305 Firefox/10.0.3"

// replacedHeaders are always set by the proxy. Client headers with exactly
// these names are dropped; matching is case-sensitive.
var replacedHeaders = []string{
	"Host",
	"User-Agent",
	"Connection",
	"Proxy-Connection",
}

func isReplaced(name string) bool {
	for _, r := range replacedHeaders {
		if name == r {
			return true
		}
	}
	return false
}

// ToUpstreamLine keeps method, path and version. Host and port travel in the
// Host header instead.
func ToUpstreamLine(l Line) Line {
	return Line{
		Method:  l.Method,
		Path:    l.Path,
		Version: l.Version,
		Status:  l.Status,
	}
}

// ToUpstreamHeaders prepends Host, User-Agent, Connection and
// Proxy-Connection, then appends the client's remaining headers in order.
// A client header named "host" is not a match for "Host" and is kept.
func ToUpstreamHeaders(h HeaderSet, l Line, userAgent string) HeaderSet {
	if userAgent == "" {
		userAgent = DefaultUserAgent
	}
	out := HeaderSet{
		Headers:       make([]Header, 0, len(h.Headers)+len(replacedHeaders)),
		HasEntityBody: h.HasEntityBody,
		Status:        h.Status,
	}
	out.Headers = append(out.Headers,
		Header{Name: "Host", Value: l.Host},
		Header{Name: "User-Agent", Value: userAgent},
		Header{Name: "Connection", Value: "close"},
		Header{Name: "Proxy-Connection", Value: "close"},
	)
	for _, hdr := range h.Headers {
		if isReplaced(hdr.Name) {
			continue
		}
		out.Headers = append(out.Headers, hdr)
	}
	return out
}
