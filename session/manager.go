package session

import (
	"net/http"

	"github.com/coderi421/adkit/web"
	"github.com/google/uuid"
)

// Manager 为了简化使用，提供了一些常用的方法
type Manager struct {
	Store
	Propagator
	// SessCtxKey 在 ctx.UserValues 里面缓存 session 用的 key
	SessCtxKey string
}

// GetSession returns the session of the request, caching it in
// ctx.UserValues so that later middlewares skip the store.
func (m *Manager) GetSession(ctx *web.Context) (Session, error) {
	if ctx.UserValues == nil {
		ctx.UserValues = make(map[string]any, 1)
	}
	if val, ok := ctx.UserValues[m.SessCtxKey]; ok {
		return val.(Session), nil
	}

	id, err := m.Extract(ctx.Req)
	if err != nil {
		return nil, ErrSessionNotFound
	}
	sess, err := m.Get(ctx.Req.Context(), id)
	if err != nil {
		return nil, err
	}
	ctx.UserValues[m.SessCtxKey] = sess
	return sess, nil
}

// InitSession 生成一个新的 session，id 使用 uuid
func (m *Manager) InitSession(ctx *web.Context) (Session, error) {
	id := uuid.New().String()
	sess, err := m.Generate(ctx.Req.Context(), id)
	if err != nil {
		return nil, err
	}
	if err = m.Inject(id, ctx.Resp); err != nil {
		return nil, err
	}
	if ctx.UserValues == nil {
		ctx.UserValues = make(map[string]any, 1)
	}
	ctx.UserValues[m.SessCtxKey] = sess
	return sess, nil
}

func (m *Manager) RefreshSession(ctx *web.Context) (Session, error) {
	sess, err := m.GetSession(ctx)
	if err != nil {
		return nil, err
	}
	if err = m.Refresh(ctx.Req.Context(), sess.ID()); err != nil {
		return nil, err
	}
	if err = m.Inject(sess.ID(), ctx.Resp); err != nil {
		return nil, err
	}
	return sess, nil
}

func (m *Manager) RemoveSession(ctx *web.Context) error {
	sess, err := m.GetSession(ctx)
	if err != nil {
		return err
	}
	if err = m.Store.Remove(ctx.Req.Context(), sess.ID()); err != nil {
		return err
	}
	delete(ctx.UserValues, m.SessCtxKey)
	return m.Propagator.Remove(ctx.Resp)
}

// CheckLogin rejects requests without a live session with 401, except for
// the paths in skip. A live session gets its expiration refreshed.
func (m *Manager) CheckLogin(skip ...string) web.Middleware {
	skipped := make(map[string]struct{}, len(skip))
	for _, p := range skip {
		skipped[p] = struct{}{}
	}
	return func(next web.HandleFunc) web.HandleFunc {
		return func(ctx *web.Context) {
			if _, ok := skipped[ctx.Req.URL.Path]; ok {
				next(ctx)
				return
			}
			// 不管发生了什么错误，对于用户都是未授权
			if _, err := m.RefreshSession(ctx); err != nil {
				ctx.RespString(http.StatusUnauthorized, "Unauthorized")
				return
			}
			next(ctx)
		}
	}
}
