package proxy

import (
	"io"
	"net"
	"time"

	"github.com/rs/zerolog"

	"github.com/ashpect/fwdproxy/pkg/accesslog"
	"github.com/ashpect/fwdproxy/pkg/cache"
	"github.com/ashpect/fwdproxy/pkg/client"
	"github.com/ashpect/fwdproxy/pkg/request"
	"github.com/ashpect/fwdproxy/pkg/utils"
)

const defaultServerName = "Tiny Web Server"

// Handler serves exactly one request per client connection. All handlers
// built around the same Store share its cache.
type Handler struct {
	store      *cache.Store
	connector  client.Connector
	parser     *request.Parser
	userAgent  string
	serverName string
	log        zerolog.Logger
	access     accesslog.Recorder
}

type HandlerOption func(*Handler)

func WithParser(p *request.Parser) HandlerOption {
	return func(h *Handler) {
		h.parser = p
	}
}

// WithUserAgent sets the User-Agent sent upstream.
func WithUserAgent(ua string) HandlerOption {
	return func(h *Handler) {
		h.userAgent = ua
	}
}

// WithServerName sets the Server header of responses served from the cache.
func WithServerName(name string) HandlerOption {
	return func(h *Handler) {
		h.serverName = name
	}
}

func WithLogger(log zerolog.Logger) HandlerOption {
	return func(h *Handler) {
		h.log = log
	}
}

func WithAccessLog(r accesslog.Recorder) HandlerOption {
	return func(h *Handler) {
		h.access = r
	}
}

func NewHandler(store *cache.Store, connector client.Connector, opts ...HandlerOption) *Handler {
	h := &Handler{
		store:      store,
		connector:  connector,
		parser:     request.NewParser(),
		userAgent:  request.DefaultUserAgent,
		serverName: defaultServerName,
		log:        zerolog.Nop(),
		access:     accesslog.Nop,
	}

	for _, opt := range opts {
		opt(h)
	}
	return h
}

// countingWriter tracks how many bytes reached the client.
type countingWriter struct {
	w io.Writer
	n int64
}

func (c *countingWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// ServeConn handles one request on conn and closes it.
func (h *Handler) ServeConn(conn net.Conn) {
	defer conn.Close()

	start := time.Now()
	remote := "unknown"
	if addr := conn.RemoteAddr(); addr != nil {
		remote = addr.String()
	}
	out := &countingWriter{w: conn}
	rec := accesslog.Record{Time: start, Client: remote}
	log := h.log.With().Str("client", remote).Logger()

	h.serve(conn, out, &rec, log)

	rec.Bytes = out.n
	h.access.Record(rec)
	log.Debug().
		Str("method", rec.Method).
		Str("uri", rec.URI).
		Str("outcome", string(rec.Outcome)).
		Int("status", rec.Status).
		Int64("bytes", rec.Bytes).
		Dur("elapsed", time.Since(start)).
		Msg("connection done")
}

func (h *Handler) serve(conn net.Conn, out *countingWriter, rec *accesslog.Record, log zerolog.Logger) {
	cr := request.NewReader(conn)

	line := h.parser.ReadRequestLine(cr)
	switch line.Status {
	case request.LineOK:
	case request.LineMalformed:
		h.reject(out, rec, ErrRequestMalformed, log)
		return
	case request.LineUnimplemented:
		h.reject(out, rec, ErrUnimplementedMethod, log)
		return
	default:
		h.reject(out, rec, errInternal, log)
		return
	}
	rec.Method, rec.URI = line.Method, line.URI()
	log = log.With().Str("method", line.Method).Str("uri", rec.URI).Logger()
	key := cacheKey(line)

	if entry, ok := h.store.Lookup(key); ok {
		// The header block is read and discarded so the client's
		// pending bytes are consumed before the reply goes out.
		h.parser.ParseHeaders(cr)
		rec.Outcome = accesslog.OutcomeHit
		rec.Status = 200
		if err := h.serveFromCache(out, entry); err != nil {
			log.Debug().Err(err).Msg("write cached response")
		}
		return
	}

	headers := h.parser.ParseHeaders(cr)
	if headers.Status != request.HeadersOK {
		h.reject(out, rec, ErrHeaderMalformed, log)
		return
	}
	utils.PrintRequest(line, headers, "Client request")

	upstream, err := h.connector.Connect(line.Host, line.Port)
	if err != nil {
		// No response is written: the client only sees the connection close.
		log.Warn().Err(err).Msg(ErrUpstreamConnect.Error())
		rec.Outcome = accesslog.OutcomeAborted
		return
	}
	defer upstream.Close()

	upLine := request.ToUpstreamLine(line)
	upHeaders := request.ToUpstreamHeaders(headers, line, h.userAgent)
	utils.PrintRequest(upLine, upHeaders, "Upstream request")

	if err := request.WriteLine(upstream, upLine); err != nil {
		h.abort(rec, err, "send request line", log)
		return
	}
	if err := request.WriteHeaders(upstream, upHeaders); err != nil {
		h.abort(rec, err, "send request headers", log)
		return
	}

	if headers.HasEntityBody {
		// Request bodies are unsupported; ParseHeaders never sets this.
		h.abort(rec, nil, "request has entity body", log)
		return
	}
	entity := h.parser.ParseEntity(cr)
	if entity.Status != request.EntityOK {
		h.reject(out, rec, ErrEntityMalformed, log)
		return
	}
	if err := request.WriteEntity(upstream, entity); err != nil {
		h.abort(rec, err, "send request entity", log)
		return
	}

	res := h.relay(out, upstream, key, log)
	rec.Status = res.status
	if res.stored {
		rec.Outcome = accesslog.OutcomeStored
	} else {
		rec.Outcome = accesslog.OutcomeRelayed
	}
}

func (h *Handler) reject(out io.Writer, rec *accesslog.Record, cause error, log zerolog.Logger) {
	status, err := writeClientError(out, cause)
	rec.Outcome = accesslog.OutcomeRejected
	rec.Status = status
	log.Debug().Err(cause).Int("status", status).Msg("rejected request")
	if err != nil {
		log.Debug().Err(err).Msg("write error response")
	}
}

func (h *Handler) abort(rec *accesslog.Record, err error, what string, log zerolog.Logger) {
	rec.Outcome = accesslog.OutcomeAborted
	log.Debug().Err(err).Msg(what)
}

func cacheKey(l request.Line) cache.Key {
	return cache.Key{
		Method:  l.Method,
		Host:    l.Host,
		Port:    l.Port,
		Path:    l.Path,
		Version: l.Version,
	}
}
