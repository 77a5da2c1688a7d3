// Package soap is the transport under the typed service proxies: it wraps
// a request in a SOAP 1.1 envelope, posts it to the service endpoint and
// decodes either the rval of the response or the fault.
package soap

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"

	"golang.org/x/oauth2"
)

const (
	// DefaultVersion is the API version used when none is configured.
	DefaultVersion = "v201211"

	namespacePrefix = "https://www.google.com/apis/ads/publisher/"

	// 错误响应只保留前面一部分
	maxErrorBody = 4 << 10
)

// NamespaceFor returns the XML namespace of the given API version.
func NamespaceFor(version string) string {
	return namespacePrefix + version
}

type ClientOption func(c *Client)

// Client posts envelopes to <endpoint>/<service>. It is safe for concurrent
// use once built.
type Client struct {
	endpoint   string
	namespace  string
	header     RequestHeader
	httpClient *http.Client
	ts         oauth2.TokenSource
	mdls       []Middleware

	handler Handler
}

// NewClient creates a client for the service root, e.g.
// https://ads.example.com/apis/ads/publisher/v201211.
func NewClient(endpoint string, opts ...ClientOption) *Client {
	c := &Client{
		endpoint:   strings.TrimRight(endpoint, "/"),
		namespace:  NamespaceFor(DefaultVersion),
		httpClient: http.DefaultClient,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.ts != nil {
		base := c.httpClient.Transport
		if base == nil {
			base = http.DefaultTransport
		}
		c.httpClient = &http.Client{
			Transport: &oauth2.Transport{Source: c.ts, Base: base},
			Timeout:   c.httpClient.Timeout,
		}
	}
	c.buildChain()
	return c
}

func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithTokenSource authenticates every request with the bearer token from ts.
func WithTokenSource(ts oauth2.TokenSource) ClientOption {
	return func(c *Client) {
		c.ts = ts
	}
}

func WithNetworkCode(code string) ClientOption {
	return func(c *Client) {
		c.header.NetworkCode = code
	}
}

func WithApplicationName(name string) ClientOption {
	return func(c *Client) {
		c.header.ApplicationName = name
	}
}

// WithVersion selects the XML namespace of the given API version.
func WithVersion(version string) ClientOption {
	return func(c *Client) {
		c.namespace = NamespaceFor(version)
	}
}

func WithNamespace(ns string) ClientOption {
	return func(c *Client) {
		c.namespace = ns
	}
}

// WithMiddlewares 第一个中间件在最外层
func WithMiddlewares(mdls ...Middleware) ClientOption {
	return func(c *Client) {
		c.mdls = append(c.mdls, mdls...)
	}
}

// NetworkCode returns the network code sent in the request header.
func (c *Client) NetworkCode() string {
	return c.header.NetworkCode
}

// WithNetwork returns a copy of c that talks to another network.
// Transport and middlewares are shared.
func (c *Client) WithNetwork(code string) *Client {
	cp := *c
	cp.header.NetworkCode = code
	cp.buildChain()
	return &cp
}

func (c *Client) buildChain() {
	root := Handler(c.roundTrip)
	for i := len(c.mdls) - 1; i >= 0; i-- {
		root = c.mdls[i](root)
	}
	c.handler = root
}

// Invoke runs inv through the middlewares and the transport. On success the
// rval of the response has been decoded into inv.Response.
func (c *Client) Invoke(ctx context.Context, inv *Invocation) error {
	res := c.handler(ctx, inv)
	if res == nil {
		return fmt.Errorf("%w: %s.%s", ErrNoResult, inv.Service, inv.Operation)
	}
	return res.Err
}

// Call is Invoke for callers that do not need middleware metadata.
func (c *Client) Call(ctx context.Context, service, operation string, req any, resp any) error {
	return c.Invoke(ctx, &Invocation{
		Service:   service,
		Operation: operation,
		Request:   req,
		Response:  resp,
	})
}

func (c *Client) roundTrip(ctx context.Context, inv *Invocation) *Result {
	var body bytes.Buffer
	if err := encodeEnvelope(&body, c.namespace, c.header, inv); err != nil {
		return &Result{Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint+"/"+inv.Service, &body)
	if err != nil {
		return &Result{Err: err}
	}
	req.Header.Set("Content-Type", "text/xml; charset=utf-8")
	req.Header.Set("SOAPAction", `""`)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &Result{Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Result{Err: err}
	}

	ok := resp.StatusCode >= 200 && resp.StatusCode < 300
	fault, err := decodeEnvelope(data, inv.Response)
	switch {
	case fault != nil:
		return &Result{Err: fault}
	case !ok:
		// 非 2xx 而且也不是 SOAP fault，例如网关返回的 HTML
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return &Result{Err: &HTTPError{StatusCode: resp.StatusCode, Body: string(data)}}
	case err != nil:
		return &Result{Err: err}
	}
	return &Result{Response: inv.Response}
}
