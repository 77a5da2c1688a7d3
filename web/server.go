// Package web is a small HTTP framework: a method-keyed routing tree with
// static, regexp, parameter and wildcard segments, middlewares that can be
// attached globally or to a route, and a buffered response that middlewares
// may rewrite before it is flushed.
package web

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

type HandleFunc func(ctx *Context)

// Middleware 洋葱模式，next 之前是请求，之后是响应
type Middleware func(next HandleFunc) HandleFunc

var _ Server = (*HTTPServer)(nil)

type Server interface {
	http.Handler

	// Start 监听 addr 直到出错，例如 ":8081"
	Start(addr string) error

	// AddRoute 注册路由，ms 只对这个路由以及它下面的路由生效
	AddRoute(method string, path string, handleFunc HandleFunc, ms ...Middleware)
}

type HTTPServerOption func(server *HTTPServer)

type HTTPServer struct {
	router
	mdls      []Middleware
	tplEngine TemplateEngine
	logger    zerolog.Logger
}

func NewHTTPServer(opts ...HTTPServerOption) *HTTPServer {
	s := &HTTPServer{
		router: newRouter(),
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func ServerWithTemplateEngine(engine TemplateEngine) HTTPServerOption {
	return func(server *HTTPServer) {
		server.tplEngine = engine
	}
}

func ServerWithMiddleware(mdls ...Middleware) HTTPServerOption {
	return func(server *HTTPServer) {
		server.mdls = append(server.mdls, mdls...)
	}
}

// ServerWithLogger 用于记录写回响应失败之类的错误
func ServerWithLogger(logger zerolog.Logger) HTTPServerOption {
	return func(server *HTTPServer) {
		server.logger = logger
	}
}

// Use 注册全局的 middleware，先注册的在外层
func (s *HTTPServer) Use(mdls ...Middleware) {
	s.mdls = append(s.mdls, mdls...)
}

// UseV 在某个路由上注册 middleware。
// 这个路由不需要有 handler，例如在 /panels 上注册，对 /panels/:panel 也生效
func (s *HTTPServer) UseV(method string, path string, mdls ...Middleware) {
	root, ok := s.trees[method]
	if !ok {
		root = &node{path: "/"}
		s.trees[method] = root
	}
	cur := root
	if path != "/" {
		for _, seg := range strings.Split(strings.Trim(path, "/"), "/") {
			cur = cur.childOrCreate(seg)
		}
	}
	cur.mdls = append(cur.mdls, mdls...)
}

func (s *HTTPServer) ServeHTTP(writer http.ResponseWriter, request *http.Request) {
	ctx := &Context{
		Req:       request,
		Resp:      writer,
		tplEngine: s.tplEngine,
	}

	mi, ok := s.findRoute(request.Method, request.URL.Path)
	var mdls []Middleware
	if ok {
		mdls = mi.mdls
	}

	// 路由级别的在内层，全局的在外层
	root := s.serve
	for i := len(mdls) - 1; i >= 0; i-- {
		root = mdls[i](root)
	}
	for i := len(s.mdls) - 1; i >= 0; i-- {
		root = s.mdls[i](root)
	}

	// 最外层负责把缓存的响应写回去
	var m Middleware = func(next HandleFunc) HandleFunc {
		return func(ctx *Context) {
			next(ctx)
			s.flashResp(ctx)
		}
	}
	root = m(root)
	root(ctx)
}

// serve 查找路由并且执行业务逻辑
func (s *HTTPServer) serve(ctx *Context) {
	mi, ok := s.findRoute(ctx.Req.Method, ctx.Req.URL.Path)
	if !ok || mi.n.handler == nil {
		if allowed := s.allowed(ctx.Req.URL.Path); len(allowed) > 0 {
			ctx.Resp.Header().Set("Allow", strings.Join(allowed, ", "))
			ctx.RespString(http.StatusMethodNotAllowed, "Method Not Allowed")
			return
		}
		ctx.RespString(http.StatusNotFound, "Not Found")
		return
	}
	ctx.PathParams = mi.pathParams
	ctx.MatchedRoute = mi.n.route
	mi.n.handler(ctx)
}

func (s *HTTPServer) flashResp(ctx *Context) {
	if ctx.RespStatusCode > 0 {
		ctx.Resp.WriteHeader(ctx.RespStatusCode)
	}
	if _, err := ctx.Resp.Write(ctx.RespData); err != nil {
		s.logger.Error().Err(err).Str("path", ctx.Req.URL.Path).Msg("web: write response")
	}
}

func (s *HTTPServer) Start(addr string) error {
	l, err := net.Listen("tcp", addr)
	if err != nil {
		return err
	}
	return http.Serve(l, s)
}

// Run serves on addr until ctx is cancelled, then shuts down gracefully
// within grace.
func (s *HTTPServer) Run(ctx context.Context, addr string, grace time.Duration, extra ...Route) error {
	mux := http.NewServeMux()
	for _, r := range extra {
		mux.Handle(r.Pattern, r.Handler)
	}
	mux.Handle("/", s)

	srv := &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// Route mounts a plain http.Handler next to the framework, e.g. /metrics.
type Route struct {
	Pattern string
	Handler http.Handler
}

func (s *HTTPServer) AddRoute(method string, path string, handleFunc HandleFunc, ms ...Middleware) {
	s.addRoute(method, path, handleFunc, ms...)
}

func (s *HTTPServer) Get(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.addRoute(http.MethodGet, path, handleFunc, ms...)
}

func (s *HTTPServer) Post(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.addRoute(http.MethodPost, path, handleFunc, ms...)
}

func (s *HTTPServer) Put(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.addRoute(http.MethodPut, path, handleFunc, ms...)
}

func (s *HTTPServer) Delete(path string, handleFunc HandleFunc, ms ...Middleware) {
	s.addRoute(http.MethodDelete, path, handleFunc, ms...)
}
