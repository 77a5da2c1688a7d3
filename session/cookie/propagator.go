package cookie

import (
	"net/http"
)

type PropagatorOption func(propagator *Propagator)

// Propagator carries the session id in a cookie.
type Propagator struct {
	cookieName string
	cookieOpt  func(c *http.Cookie)
}

// WithCookieOption 修改 Name 和 Value 以外的属性，例如 Secure、Domain
func WithCookieOption(opt func(c *http.Cookie)) PropagatorOption {
	return func(propagator *Propagator) {
		propagator.cookieOpt = opt
	}
}

func NewPropagator(cookieName string, opts ...PropagatorOption) *Propagator {
	res := &Propagator{
		cookieName: cookieName,
		cookieOpt:  func(c *http.Cookie) {},
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func (p *Propagator) newCookie(value string) *http.Cookie {
	c := &http.Cookie{
		Name:     p.cookieName,
		Value:    value,
		Path:     "/",
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
	p.cookieOpt(c)
	return c
}

func (p *Propagator) Inject(id string, writer http.ResponseWriter) error {
	http.SetCookie(writer, p.newCookie(id))
	return nil
}

func (p *Propagator) Extract(req *http.Request) (string, error) {
	c, err := req.Cookie(p.cookieName)
	if err != nil {
		return "", err
	}
	return c.Value, nil
}

// Remove 让浏览器立刻删除 cookie
func (p *Propagator) Remove(writer http.ResponseWriter) error {
	c := p.newCookie("")
	c.MaxAge = -1
	http.SetCookie(writer, c)
	return nil
}
