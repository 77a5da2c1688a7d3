package session_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/coderi421/adkit/session"
	"github.com/coderi421/adkit/session/cookie"
	"github.com/coderi421/adkit/session/memory"
	"github.com/coderi421/adkit/web"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(m *session.Manager) *web.HTTPServer {
	s := web.NewHTTPServer()
	s.Use(m.CheckLogin("/login"))
	s.Get("/login", func(ctx *web.Context) {
		sess, err := m.InitSession(ctx)
		if err != nil {
			ctx.RespString(http.StatusInternalServerError, err.Error())
			return
		}
		if err = sess.Set(ctx.Req.Context(), "network", "1234"); err != nil {
			ctx.RespString(http.StatusInternalServerError, err.Error())
			return
		}
		ctx.RespString(http.StatusOK, "ok")
	})
	s.Get("/resource", func(ctx *web.Context) {
		sess, err := m.GetSession(ctx)
		if err != nil {
			ctx.RespString(http.StatusInternalServerError, err.Error())
			return
		}
		val, err := sess.Get(ctx.Req.Context(), "network")
		if err != nil {
			ctx.RespString(http.StatusInternalServerError, err.Error())
			return
		}
		ctx.RespString(http.StatusOK, val)
	})
	s.Get("/logout", func(ctx *web.Context) {
		if err := m.RemoveSession(ctx); err != nil {
			ctx.RespString(http.StatusInternalServerError, err.Error())
			return
		}
		ctx.RespString(http.StatusOK, "bye")
	})
	return s
}

func TestManager(t *testing.T) {
	m := &session.Manager{
		Store:      memory.NewStore(time.Minute),
		Propagator: cookie.NewPropagator("sessid"),
		SessCtxKey: "_sess",
	}
	s := newTestServer(m)

	do := func(path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodGet, path, nil)
		for _, c := range cookies {
			req.AddCookie(c)
		}
		recorder := httptest.NewRecorder()
		s.ServeHTTP(recorder, req)
		return recorder
	}

	// 没有登录
	resp := do("/resource")
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
	assert.Equal(t, "Unauthorized", resp.Body.String())

	resp = do("/login")
	require.Equal(t, http.StatusOK, resp.Code)
	cookies := resp.Result().Cookies()
	require.Len(t, cookies, 1)
	sessCookie := cookies[0]
	assert.Equal(t, "sessid", sessCookie.Name)
	assert.NotEmpty(t, sessCookie.Value)

	resp = do("/resource", sessCookie)
	assert.Equal(t, http.StatusOK, resp.Code)
	assert.Equal(t, "1234", resp.Body.String())

	// 未知的 session id
	resp = do("/resource", &http.Cookie{Name: "sessid", Value: "unknown"})
	assert.Equal(t, http.StatusUnauthorized, resp.Code)

	resp = do("/logout", sessCookie)
	assert.Equal(t, http.StatusOK, resp.Code)

	resp = do("/resource", sessCookie)
	assert.Equal(t, http.StatusUnauthorized, resp.Code)
}

func TestManager_GetSessionCached(t *testing.T) {
	store := memory.NewStore(time.Minute)
	m := &session.Manager{
		Store:      store,
		Propagator: cookie.NewPropagator("sessid"),
		SessCtxKey: "_sess",
	}
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	ctx := &web.Context{Req: req, Resp: httptest.NewRecorder()}

	_, err := m.GetSession(ctx)
	assert.ErrorIs(t, err, session.ErrSessionNotFound)

	sess, err := m.InitSession(ctx)
	require.NoError(t, err)

	// 缓存在 UserValues 里面，不会再去 Store 里面查
	require.NoError(t, store.Remove(req.Context(), sess.ID()))
	got, err := m.GetSession(ctx)
	require.NoError(t, err)
	assert.Equal(t, sess.ID(), got.ID())
}
