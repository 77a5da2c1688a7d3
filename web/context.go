package web

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/url"
	"strconv"
)

var errKeyNotFound = errors.New("web: key not found")

// Context carries one request through the middlewares and the handler.
type Context struct {
	Req *http.Request
	// Resp 原生的 ResponseWriter。直接写 Resp 相当于绕开了 RespStatusCode 和 RespData，
	// 其它中间件将无法修改响应
	Resp       http.ResponseWriter
	PathParams map[string]string

	// 缓存的响应，在所有 middleware 执行完之后才写回去
	RespStatusCode int
	RespData       []byte

	queryValues url.Values

	// 命中的路由，例如 /panels/:panel
	MatchedRoute string

	tplEngine TemplateEngine

	// UserValues 用于在不同 Middleware 之间传递数据，第一次使用时才初始化
	UserValues map[string]any
}

func (c *Context) BindJSON(val any) error {
	if c.Req.Body == nil {
		return errors.New("web: request body is nil")
	}
	return json.NewDecoder(c.Req.Body).Decode(val)
}

// Render executes the named template into the response buffer.
func (c *Context) Render(tplName string, data any) error {
	if c.tplEngine == nil {
		c.RespStatusCode = http.StatusInternalServerError
		return errors.New("web: no template engine configured")
	}
	var err error
	c.RespData, err = c.tplEngine.Render(c.Req.Context(), tplName, data)
	if err != nil {
		c.RespStatusCode = http.StatusInternalServerError
		return err
	}
	if c.RespStatusCode == 0 {
		c.RespStatusCode = http.StatusOK
	}
	c.Resp.Header().Set("Content-Type", "text/html; charset=utf-8")
	return nil
}

// FormValue reads a form field, url-encoded body included.
func (c *Context) FormValue(key string) StringValue {
	if err := c.Req.ParseForm(); err != nil {
		return StringValue{err: err}
	}
	if _, ok := c.Req.Form[key]; !ok {
		return StringValue{err: errKeyNotFound}
	}
	return StringValue{val: c.Req.Form.Get(key)}
}

// FormValueOrEmpty 没有这个字段的时候返回空字符串
func (c *Context) FormValueOrEmpty(key string) string {
	val, _ := c.FormValue(key).String()
	return val
}

// QueryValue 查询参数没有缓存，所以自己缓存起来
func (c *Context) QueryValue(key string) StringValue {
	if c.queryValues == nil {
		c.queryValues = c.Req.URL.Query()
	}
	vals, ok := c.queryValues[key]
	if !ok {
		return StringValue{err: errKeyNotFound}
	}
	if len(vals) == 1 {
		return StringValue{val: vals[0]}
	}
	return StringValue{val: vals[0], multiVal: vals}
}

func (c *Context) PathValue(key string) StringValue {
	val, ok := c.PathParams[key]
	if !ok {
		return StringValue{err: errKeyNotFound}
	}
	return StringValue{val: val}
}

func (c *Context) SetCookie(cookie *http.Cookie) {
	http.SetCookie(c.Resp, cookie)
}

func (c *Context) RespJSONOK(val any) error {
	return c.RespJSON(http.StatusOK, val)
}

func (c *Context) RespJSON(code int, val any) error {
	bs, err := json.Marshal(val)
	if err != nil {
		return err
	}
	c.Resp.Header().Set("Content-Type", "application/json")
	c.RespStatusCode = code
	c.RespData = bs
	return nil
}

// RespString 例如重定向之后的提示，或者纯文本的错误
func (c *Context) RespString(code int, s string) {
	c.RespStatusCode = code
	c.RespData = []byte(s)
}

func (c *Context) Redirect(code int, location string) {
	c.Resp.Header().Set("Location", location)
	c.RespStatusCode = code
}

type StringValue struct {
	val      string
	multiVal []string
	err      error
}

func (s StringValue) String() (string, error) {
	return s.val, s.err
}

func (s StringValue) StringMultiVal() ([]string, error) {
	if s.multiVal == nil && s.err == nil {
		return []string{s.val}, nil
	}
	return s.multiVal, s.err
}

func (s StringValue) ToInt64() (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return strconv.ParseInt(s.val, 10, 64)
}
