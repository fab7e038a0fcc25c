package xhttp

import (
	"context"
	"reflect"
	"runtime"
	"slices"
	"time"

	"github.com/nimasrn/bookkeeper/pkg/logger"
	"github.com/valyala/fasthttp"
)

var DefaultServerOption = ServerOption{
	Handler: func(ctx *RequestCtx) {
		ctx.Error(StatusText(StatusNotFound), StatusNotFound)
	},
	IdleTimeout:           time.Second * 10,
	MaxIdleWorkerDuration: time.Minute * 1,
	TCPKeepalivePeriod:    time.Minute * 120, // linux default
	MaxRequestBodySize:    1 * 1024 * 1024,   // invoices are small JSON documents
	ReadBufferSize:        1024 * 8,          // also, max header size
	WriteBufferSize:       1024 * 8,
	ReadTimeout:           time.Second * 5,
	WriteTimeout:          time.Second * 5,
	Concurrency:           10_000,
	MaxConnsPerIP:         1_000,
	ErrorHandler: func(ctx *RequestCtx, err error) {
		logger.Warn("[xhttp] error", "error", err)
	},
	TCPKeepalive:                  true,
	DisablePreParseMultipartForm:  true,
	NoDefaultServerHeader:         true,
	NoDefaultContentType:          true,
	CloseOnShutdown:               true,
	DisableHeaderNamesNormalizing: false,
	Logger:                        logger.GetLogger(),
}

type RequestHeader = fasthttp.RequestHeader
type ResponseHeader = fasthttp.ResponseHeader
type Server = fasthttp.Server

type ServerOption struct {
	Handler RequestHandler

	// idle keep-alive connections are closed after this long, otherwise a burst of clients
	// can exhaust the open files limit
	IdleTimeout time.Duration

	MaxIdleWorkerDuration time.Duration
	TCPKeepalivePeriod    time.Duration

	// requests larger than this are rejected before reaching a handler
	MaxRequestBodySize int

	// ReadBufferSize is the per-connection buffer size for requests' reading.
	ReadBufferSize int

	// WriteBufferSize is the size of the write buffer used by the ResponseWriter.
	WriteBufferSize int

	// ReadTimeout is the maximum duration for reading the entire request, including the body.
	ReadTimeout time.Duration

	// WriteTimeout is the maximum duration before timing out writes of the response.
	WriteTimeout time.Duration

	// Concurrency is the maximum number of concurrent connections to serve.
	Concurrency int

	MaxConnsPerIP      int
	MaxRequestsPerConn int

	ErrorHandler                  func(ctx *RequestCtx, err error)
	Name                          string
	TCPKeepalive                  bool
	DisablePreParseMultipartForm  bool
	DisableHeaderNamesNormalizing bool
	NoDefaultServerHeader         bool
	NoDefaultContentType          bool
	CloseOnShutdown               bool
	Logger                        logger.Logger
}

type Engine struct {
	*Router
	*Server
	option ServerOption
	middle []MiddlewareFunc
}

func newServer(options ServerOption) *fasthttp.Server {
	return &fasthttp.Server{
		Handler:                       options.Handler,
		ErrorHandler:                  options.ErrorHandler,
		Name:                          options.Name,
		Concurrency:                   options.Concurrency,
		ReadBufferSize:                options.ReadBufferSize,
		WriteBufferSize:               options.WriteBufferSize,
		ReadTimeout:                   options.ReadTimeout,
		WriteTimeout:                  options.WriteTimeout,
		IdleTimeout:                   options.IdleTimeout,
		MaxConnsPerIP:                 options.MaxConnsPerIP,
		MaxRequestsPerConn:            options.MaxRequestsPerConn,
		MaxIdleWorkerDuration:         options.MaxIdleWorkerDuration,
		TCPKeepalivePeriod:            options.TCPKeepalivePeriod,
		MaxRequestBodySize:            options.MaxRequestBodySize,
		TCPKeepalive:                  options.TCPKeepalive,
		DisablePreParseMultipartForm:  options.DisablePreParseMultipartForm,
		DisableHeaderNamesNormalizing: options.DisableHeaderNamesNormalizing,
		NoDefaultServerHeader:         options.NoDefaultServerHeader,
		NoDefaultContentType:          options.NoDefaultContentType,
		CloseOnShutdown:               options.CloseOnShutdown,
		Logger:                        options.Logger,
	}
}

func NewServer(options ServerOption) *Engine {
	return &Engine{
		Server: newServer(options),
		Router: CreateDefaultRouter(),
		option: options,
	}
}

func CreateServer() *Engine {
	s := NewServer(DefaultServerOption)
	s.Server.Logger = logger.GetLogger()
	return s
}

func (e *Engine) ListenAndServe(addr string) error {
	err := e.DoRouting()
	if err != nil {
		return err
	}
	e.Server.Logger.Printf("[xhttp] server is listening on %s", addr)
	if err := e.Server.ListenAndServe(addr); err != nil {
		return err
	}
	return nil
}

func (e *Engine) DoRouting() error {
	// log all registered routes grouped by method
	for method, route := range e.Router.List() {
		for _, r := range route {
			e.Server.Logger.Printf("[xhttp] method: %s, path: %s", method, r)
		}
	}
	e.Server.Handler = e.Router.Handler
	// the first registered middleware must end up outermost, so wrap in reverse
	slices.Reverse(e.middle)
	for i, m := range e.middle {
		e.Server.Handler = m(e.Server.Handler)
		e.Server.Logger.Printf("[xhttp] middleware %d registered - %s", i+1, runtime.FuncForPC(reflect.ValueOf(m).Pointer()).Name())
	}
	return nil
}

// Use adds middleware to the chain which is run for every request, in registration order.
func (e *Engine) Use(middleware MiddlewareFunc) {
	e.middle = append(e.middle, middleware)
}

// Shutdown gracefully shuts down the server without interrupting any active connections,
// giving up once ctx is done.
func (e *Engine) Shutdown(ctx context.Context) {
	e.Server.Logger.Printf("[xhttp] closing all connections..")
	if err := e.Server.ShutdownWithContext(ctx); err != nil {
		e.Server.Logger.Printf("[xhttp] error while shutting down: %v", err)
	}
}
