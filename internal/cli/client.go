package cli

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/coderi421/adkit/internal/config"
	"github.com/coderi421/adkit/service"
	"github.com/coderi421/adkit/soap"
	"github.com/coderi421/adkit/soap/middlewares/opentelemetry"
	"github.com/coderi421/adkit/soap/middlewares/querylog"
	"github.com/coderi421/adkit/statement"
	"golang.org/x/oauth2"
)

// clientFactory builds clients sharing one HTTP client and one middleware
// chain. token and networkCode vary per caller.
func (o *RootOptions) clientFactory(extra ...soap.Middleware) func(token string, networkCode string) *soap.Client {
	cfg := o.Config.Service
	hc := &http.Client{Timeout: cfg.Timeout}
	mdls := append([]soap.Middleware{
		querylog.NewBuilder(o.Logger).SlowThreshold(cfg.SlowThreshold).Build(),
		opentelemetry.MiddlewareBuilder{}.Build(),
	}, extra...)
	return func(token string, networkCode string) *soap.Client {
		opts := []soap.ClientOption{
			soap.WithHTTPClient(hc),
			soap.WithVersion(cfg.Version),
			soap.WithNetworkCode(networkCode),
			soap.WithApplicationName(cfg.ApplicationName),
			soap.WithMiddlewares(mdls...),
		}
		if token != "" {
			opts = append(opts, soap.WithTokenSource(oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token})))
		}
		return soap.NewClient(cfg.Endpoint, opts...)
	}
}

// client 命令行使用配置里的 token 和 network
func (o *RootOptions) client() (*soap.Client, error) {
	cfg := o.Config.Service
	if cfg.Token == "" {
		return nil, NewExitError(ExitCommandError,
			"missing access token: set service.token or "+config.EnvPrefix+"SERVICE_TOKEN")
	}
	return o.clientFactory()(cfg.Token, cfg.NetworkCode), nil
}

func lookupEntity(name string) (service.Factory, error) {
	f, ok := service.Lookup(name)
	if !ok {
		return nil, NewExitError(ExitCommandError,
			fmt.Sprintf("unknown entity %q, expected one of: %s", name, strings.Join(service.Names(), ", ")))
	}
	return f, nil
}

// parseBinds 解析 --bind name=value，数字和 true/false 按类型绑定，其它都是文本
func parseBinds(binds []string) ([]statement.BindVariable, error) {
	res := make([]statement.BindVariable, 0, len(binds))
	for _, b := range binds {
		name, raw, ok := strings.Cut(b, "=")
		if !ok || name == "" {
			return nil, NewExitError(ExitCommandError, fmt.Sprintf("invalid --bind %q, expected name=value", b))
		}
		bv, err := statement.Bind(name, bindValue(raw))
		if err != nil {
			return nil, WrapExitError(ExitCommandError, "invalid --bind "+b, err)
		}
		res = append(res, bv)
	}
	return res, nil
}

func bindValue(raw string) any {
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return n
	}
	if raw == "true" || raw == "false" {
		return raw == "true"
	}
	return raw
}

func newStatement(filter string, binds []string) (statement.Statement, error) {
	vars, err := parseBinds(binds)
	if err != nil {
		return statement.Statement{}, err
	}
	return statement.New(filter, vars...), nil
}
