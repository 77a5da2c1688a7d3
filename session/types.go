// Package session keeps per-visitor state on the server side. A Store holds
// the sessions, a Propagator carries the session id between requests.
package session

import (
	"context"
	"errors"
	"net/http"
)

var (
	ErrSessionNotFound = errors.New("session: session not found")
	ErrKeyNotFound     = errors.New("session: key not found")
)

// Session 存储在 Store 里面
type Session interface {
	// Get returns ErrKeyNotFound for a missing key.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, val string) error
	// Delete 删除不存在的 key 不是错误
	Delete(ctx context.Context, key string) error
	ID() string
}

type Store interface {
	// Generate 生成一个 session，id 已经存在的时候返回错误
	Generate(ctx context.Context, id string) (Session, error)
	// Refresh 延长过期时间，id 保持不变
	Refresh(ctx context.Context, id string) error
	Remove(ctx context.Context, id string) error
	// Get returns ErrSessionNotFound when id is unknown or expired.
	Get(ctx context.Context, id string) (Session, error)
}

// Propagator 处理请求中的 session id
type Propagator interface {
	// Inject 必须是幂等的
	Inject(id string, writer http.ResponseWriter) error
	Extract(req *http.Request) (string, error)
	Remove(writer http.ResponseWriter) error
}
