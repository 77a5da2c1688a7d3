// Package playground is a small web application for browsing a network of
// the ad service: one panel per entity type, a PQL console and a network
// switcher. Panels answer with HTML fragments, or JSON with format=json.
package playground

import (
	"embed"
	"errors"
	"io/fs"
	"net/http"
	"net/url"
	"strings"

	"github.com/coderi421/adkit/service"
	"github.com/coderi421/adkit/session"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/web"
	lru "github.com/hashicorp/golang-lru"
	"github.com/rs/zerolog"
)

//go:embed templates/*.gohtml
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

const (
	tokenKey   = "token"
	networkKey = "network"
)

// ClientFactory builds a client that authenticates with token and sends
// networkCode in the request header. An empty networkCode is allowed for
// calls such as getAllNetworks.
type ClientFactory func(token string, networkCode string) *soap.Client

type Option func(a *App)

type App struct {
	sessions  *session.Manager
	clients   ClientFactory
	logger    zerolog.Logger
	tpl       *web.GoTemplateEngine
	cacheSize int
	// cache 缓存渲染好的面板，key 见 cacheKey
	cache  *lru.Cache
	panels map[string]panelFunc
	// panelNames 首页上面板的顺序
	panelNames []string
}

func WithLogger(logger zerolog.Logger) Option {
	return func(a *App) {
		a.logger = logger
	}
}

// WithCacheSize 设置最多缓存多少个面板结果，0 表示不缓存
func WithCacheSize(n int) Option {
	return func(a *App) {
		a.cacheSize = n
	}
}

func New(sessions *session.Manager, clients ClientFactory, opts ...Option) (*App, error) {
	tpl := &web.GoTemplateEngine{}
	if err := tpl.LoadFromFS(templateFS, nil, "templates/*.gohtml"); err != nil {
		return nil, err
	}
	a := &App{
		sessions:  sessions,
		clients:   clients,
		logger:    zerolog.Nop(),
		tpl:       tpl,
		cacheSize: 128,
		panels: map[string]panelFunc{
			"ad-units":           adUnitsPanel,
			"companies":          listPanel(service.Companies, "company"),
			"creatives":          listPanel(service.Creatives, "creative"),
			"creative-templates": listPanel(service.CreativeTemplates, "creative_template"),
			"custom-targeting":   customTargetingPanel,
			"labels":             listPanel(service.Labels, "label"),
			"licas":              licasPanel,
			"orders":             ordersPanel,
			"placements":         listPanel(service.Placements, "placement"),
			"roles":              rolesPanel,
			"users":              listPanel(service.Users, "user"),
			"teams":              listPanel(service.Teams, "team"),
		},
		panelNames: []string{
			"ad-units", "companies", "creatives", "creative-templates",
			"custom-targeting", "labels", "licas", "orders", "placements",
			"roles", "users", "teams",
		},
	}
	for _, opt := range opts {
		opt(a)
	}
	if a.cacheSize > 0 {
		c, err := lru.New(a.cacheSize)
		if err != nil {
			return nil, err
		}
		a.cache = c
	}
	return a, nil
}

// NewServer creates a server that renders with the playground templates and
// has every playground route registered.
func (a *App) NewServer(opts ...web.HTTPServerOption) *web.HTTPServer {
	opts = append([]web.HTTPServerOption{web.ServerWithTemplateEngine(a.tpl)}, opts...)
	s := web.NewHTTPServer(opts...)
	a.Register(s)
	return s
}

func (a *App) Register(s *web.HTTPServer) {
	assets, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	static := web.NewStaticResourceHandler(assets, web.WithFileCache(1<<20, 16))
	s.Get("/static/:file", static.Handle)

	s.Get("/", a.index)
	s.Post("/login", a.login)
	s.Get("/logout", a.logout)

	checkLogin := a.sessions.CheckLogin()
	s.Get("/networks", a.networks, checkLogin)
	s.Post("/network", a.switchNetwork, checkLogin)
	s.Post("/panels/:panel", a.panel, checkLogin)
	s.Post("/pql", a.pql, checkLogin)
}

// serviceUser 对应 session 里保存的登录信息
type serviceUser struct {
	sessID  string
	token   string
	network string
}

func (a *App) serviceUser(ctx *web.Context) (*serviceUser, error) {
	sess, err := a.sessions.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	rc := ctx.Req.Context()
	token, err := sess.Get(rc, tokenKey)
	if err != nil {
		return nil, err
	}
	network, err := sess.Get(rc, networkKey)
	if err != nil && !errors.Is(err, session.ErrKeyNotFound) {
		return nil, err
	}
	return &serviceUser{sessID: sess.ID(), token: token, network: network}, nil
}

type indexPage struct {
	LoggedIn bool
	Networks []service.Network
	Current  string
	Error    string
	Panels   []string
}

func (a *App) index(ctx *web.Context) {
	page := indexPage{Panels: a.panelNames}
	page.Error, _ = ctx.QueryValue("error").String()
	if u, err := a.serviceUser(ctx); err == nil {
		page.LoggedIn = true
		page.Current = u.network
		networks, err := service.Networks(a.clients(u.token, "")).GetAllNetworks(ctx.Req.Context())
		if err != nil {
			a.logger.Error().Err(err).Msg("playground: load networks")
			page.Error = err.Error()
		}
		page.Networks = networks
	}
	if err := ctx.Render("index", page); err != nil {
		a.logger.Error().Err(err).Msg("playground: render index")
	}
}

// login 验证 token：能列出 network 才算登录成功。
// 默认使用第一个 network，表单里指定的 network 必须属于这个用户
func (a *App) login(ctx *web.Context) {
	token := strings.TrimSpace(ctx.FormValueOrEmpty("token"))
	if token == "" {
		a.redirectWithError(ctx, "Failed to authenticate: missing token")
		return
	}
	rc := ctx.Req.Context()
	networks, err := service.Networks(a.clients(token, "")).GetAllNetworks(rc)
	if err != nil {
		a.redirectWithError(ctx, "Failed to authenticate: "+strings.ReplaceAll(err.Error(), "\n", " "))
		return
	}
	network := pickNetwork(networks, ctx.FormValueOrEmpty("network"))

	if old, err := a.sessions.GetSession(ctx); err == nil {
		a.purge(old.ID())
		_ = a.sessions.Store.Remove(rc, old.ID())
	}
	sess, err := a.sessions.InitSession(ctx)
	if err != nil {
		a.redirectWithError(ctx, err.Error())
		return
	}
	if err = sess.Set(rc, tokenKey, token); err != nil {
		a.redirectWithError(ctx, err.Error())
		return
	}
	if err = sess.Set(rc, networkKey, network); err != nil {
		a.redirectWithError(ctx, err.Error())
		return
	}
	a.logger.Info().Str("network", network).Int("networks", len(networks)).Msg("playground: login")
	ctx.Redirect(http.StatusSeeOther, "/")
}

func pickNetwork(networks []service.Network, want string) string {
	for _, n := range networks {
		if want != "" && n.NetworkCode == want {
			return want
		}
	}
	if len(networks) == 0 {
		return ""
	}
	return networks[0].NetworkCode
}

func (a *App) redirectWithError(ctx *web.Context, msg string) {
	a.logger.Warn().Str("error", msg).Msg("playground: login failed")
	if sess, err := a.sessions.GetSession(ctx); err == nil {
		a.purge(sess.ID())
		_ = a.sessions.RemoveSession(ctx)
	}
	ctx.Redirect(http.StatusSeeOther, "/?error="+url.QueryEscape(msg))
}

func (a *App) logout(ctx *web.Context) {
	if sess, err := a.sessions.GetSession(ctx); err == nil {
		a.purge(sess.ID())
		if err = a.sessions.RemoveSession(ctx); err != nil {
			a.logger.Error().Err(err).Msg("playground: logout")
		}
	}
	ctx.Redirect(http.StatusSeeOther, "/")
}

// switchNetwork 换了 network 之后缓存的面板都失效了
func (a *App) switchNetwork(ctx *web.Context) {
	network := strings.TrimSpace(ctx.FormValueOrEmpty("network"))
	if network == "" {
		ctx.RespString(http.StatusBadRequest, "missing network")
		return
	}
	sess, err := a.sessions.GetSession(ctx)
	if err != nil {
		ctx.RespString(http.StatusUnauthorized, "Unauthorized")
		return
	}
	if err = sess.Set(ctx.Req.Context(), networkKey, network); err != nil {
		ctx.RespString(http.StatusInternalServerError, err.Error())
		return
	}
	a.purge(sess.ID())
	ctx.Redirect(http.StatusSeeOther, "/")
}

func (a *App) networks(ctx *web.Context) {
	a.runPanel(ctx, "networks", networksPanel)
}

func (a *App) pql(ctx *web.Context) {
	a.runPanel(ctx, "pql", pqlPanel)
}

func (a *App) panel(ctx *web.Context) {
	name, _ := ctx.PathValue("panel").String()
	fn, ok := a.panels[name]
	if !ok {
		a.fail(ctx, ctx.FormValueOrEmpty("format"), http.StatusNotFound, errUnknownPanel)
		return
	}
	a.runPanel(ctx, name, fn)
}

func (a *App) runPanel(ctx *web.Context, name string, fn panelFunc) {
	form := readForm(ctx.FormValueOrEmpty)
	format := ctx.FormValueOrEmpty("format")
	u, err := a.serviceUser(ctx)
	if err != nil {
		a.fail(ctx, format, http.StatusUnauthorized, err)
		return
	}
	key := cacheKey(u.sessID, u.network, name, format, form)
	if a.fromCache(ctx, key) {
		return
	}

	res, err := fn(ctx.Req.Context(), a.clients(u.token, u.network), form)
	if err != nil {
		status := http.StatusBadGateway
		var pe *paramError
		if errors.As(err, &pe) {
			status = http.StatusBadRequest
		}
		a.logger.Error().Err(err).Str("panel", name).Str("network", u.network).Msg("playground: panel failed")
		a.fail(ctx, format, status, err)
		return
	}
	if format == "json" {
		err = ctx.RespJSONOK(res.payload)
	} else {
		err = ctx.Render("fragment", res.fragment)
	}
	if err != nil {
		a.logger.Error().Err(err).Str("panel", name).Msg("playground: render panel")
		ctx.RespString(http.StatusInternalServerError, "render failed")
		return
	}
	a.toCache(ctx, key)
}

// fail 按请求的格式输出错误
func (a *App) fail(ctx *web.Context, format string, status int, err error) {
	if format == "json" {
		_ = ctx.RespJSON(status, map[string]string{"error": err.Error()})
		return
	}
	ctx.RespStatusCode = status
	if rerr := ctx.Render("fragment", fragment{Message: &message{Error: true, Text: err.Error()}}); rerr != nil {
		ctx.RespString(status, err.Error())
	}
}
