package cli

import (
	"net/http"

	"github.com/coderi421/adkit/middleware/accesslog"
	"github.com/coderi421/adkit/middleware/errhdl"
	webotel "github.com/coderi421/adkit/middleware/opentelemetry"
	webprom "github.com/coderi421/adkit/middleware/prometheus"
	"github.com/coderi421/adkit/middleware/recovery"
	"github.com/coderi421/adkit/playground"
	"github.com/coderi421/adkit/session"
	"github.com/coderi421/adkit/session/cookie"
	"github.com/coderi421/adkit/session/memory"
	redisstore "github.com/coderi421/adkit/session/redis"
	soapprom "github.com/coderi421/adkit/soap/middlewares/prometheus"
	"github.com/coderi421/adkit/web"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
)

const (
	sessionCookie = "adkit_sess"
	sessionCtxKey = "_sess"
)

var internalErrorPage = []byte(`<p class="dfp-error">Error: internal server error</p>`)

type ServeOptions struct {
	*RootOptions
	Addr string
}

func NewServeCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ServeOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the playground web application",
		Long: `Serve the playground: sign in with an access token, switch networks and
browse the entities of the network panel by panel. Metrics are exposed on
/metrics.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, opts)
		},
	}

	cmd.Flags().StringVar(&opts.Addr, "addr", "", "listen address, overrides server.addr")

	return cmd
}

func runServe(cmd *cobra.Command, opts *ServeOptions) error {
	srv, closeFn, err := opts.buildServer(prometheus.DefaultRegisterer)
	if err != nil {
		return WrapExitError(ExitCommandError, "build server", err)
	}
	defer func() {
		if err := closeFn(); err != nil {
			opts.Logger.Error().Err(err).Msg("close session store")
		}
	}()

	addr := opts.Config.Server.Addr
	if opts.Addr != "" {
		addr = opts.Addr
	}
	opts.Logger.Info().Str("addr", addr).Str("sessionStore", opts.Config.Server.SessionStore).Msg("serving playground")
	err = srv.Run(cmd.Context(), addr, opts.Config.Server.GracePeriod,
		web.Route{Pattern: "/metrics", Handler: promhttp.Handler()})
	if err != nil {
		return WrapExitError(ExitFailure, "serve", err)
	}
	opts.Logger.Info().Msg("playground stopped")
	return nil
}

// buildServer 组装 playground。返回的 close 用于关闭 session 存储
func (o *ServeOptions) buildServer(reg prometheus.Registerer) (*web.HTTPServer, func() error, error) {
	store, closeFn := o.sessionStore()
	sessions := &session.Manager{
		Store:      store,
		Propagator: cookie.NewPropagator(sessionCookie),
		SessCtxKey: sessionCtxKey,
	}

	clients := o.clientFactory(soapprom.MiddlewareBuilder{
		Namespace:  "adkit",
		Subsystem:  "soap",
		Name:       "call_duration_ms",
		Help:       "duration of the calls to the ad service",
		Registerer: reg,
	}.Build())

	app, err := playground.New(sessions, clients,
		playground.WithLogger(o.Logger),
		playground.WithCacheSize(o.Config.Server.PanelCacheSize))
	if err != nil {
		_ = closeFn()
		return nil, nil, err
	}

	srv := app.NewServer(
		web.ServerWithLogger(o.Logger),
		web.ServerWithMiddleware(
			webotel.MiddlewareBuilder{}.Build(),
			webprom.MiddlewareBuilder{
				Namespace:  "adkit",
				Subsystem:  "playground",
				Name:       "http_response",
				Help:       "duration of the playground responses",
				Registerer: reg,
			}.Build(),
			accesslog.NewBuilder(o.Logger).Skip("/static/:file").Build(),
			errhdl.NewMiddlewareBuilder().AddCode(http.StatusInternalServerError, internalErrorPage).Build(),
			recovery.NewBuilder(o.Logger).Build(),
		),
	)
	return srv, closeFn, nil
}

func (o *ServeOptions) sessionStore() (session.Store, func() error) {
	cfg := o.Config.Server
	if cfg.SessionStore == "redis" {
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		return redisstore.NewStore(client, redisstore.WithExpiration(cfg.SessionTTL)), client.Close
	}
	return memory.NewStore(cfg.SessionTTL), func() error { return nil }
}
