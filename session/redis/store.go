package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/coderi421/adkit/session"
	redis "github.com/redis/go-redis/v9"
)

var errSessionAlreadyExist = errors.New("redis-session: session id already exists")

type StoreOption func(store *Store)

// Store keeps every session as a redis hash named <prefix>_<id>.
type Store struct {
	prefix     string
	client     redis.Cmdable
	expiration time.Duration
}

func NewStore(client redis.Cmdable, opts ...StoreOption) *Store {
	res := &Store{
		client:     client,
		prefix:     "adkit_session",
		expiration: time.Minute * 15,
	}
	for _, opt := range opts {
		opt(res)
	}
	return res
}

func WithPrefix(prefix string) StoreOption {
	return func(store *Store) {
		store.prefix = prefix
	}
}

func WithExpiration(expiration time.Duration) StoreOption {
	return func(store *Store) {
		store.expiration = expiration
	}
}

func (s *Store) key(id string) string {
	return fmt.Sprintf("%s_%s", s.prefix, id)
}

// generateLua 已经存在返回 -1，否则写入 _sess_id 并设置过期时间
const generateLua = `
if redis.call("exists", KEYS[1]) == 1
then
	return -1
else
	redis.call("hset", KEYS[1], ARGV[1], ARGV[2])
	return redis.call("pexpire", KEYS[1], ARGV[3])
end
`

func (s *Store) Generate(ctx context.Context, id string) (session.Session, error) {
	key := s.key(id)
	res, err := s.client.Eval(ctx, generateLua, []string{key}, "_sess_id", id, s.expiration.Milliseconds()).Int()
	if err != nil {
		return nil, err
	}
	if res < 0 {
		return nil, errSessionAlreadyExist
	}
	return &redisSession{key: key, id: id, client: s.client}, nil
}

func (s *Store) Refresh(ctx context.Context, id string) error {
	affected, err := s.client.Expire(ctx, s.key(id), s.expiration).Result()
	if err != nil {
		return err
	}
	if !affected {
		return session.ErrSessionNotFound
	}
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	return s.client.Del(ctx, s.key(id)).Err()
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	key := s.key(id)
	cnt, err := s.client.Exists(ctx, key).Result()
	if err != nil {
		return nil, err
	}
	if cnt == 0 {
		return nil, session.ErrSessionNotFound
	}
	return &redisSession{key: key, id: id, client: s.client}, nil
}

type redisSession struct {
	key    string
	id     string
	client redis.Cmdable
}

func (r *redisSession) Get(ctx context.Context, key string) (string, error) {
	val, err := r.client.HGet(ctx, r.key, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", session.ErrKeyNotFound
	}
	return val, err
}

// setLua session 过期之后不能再写入，否则会产生一个永不过期的 hash
const setLua = `
if redis.call("exists", KEYS[1]) == 1
then
	return redis.call("hset", KEYS[1], ARGV[1], ARGV[2])
else
	return -1
end
`

func (r *redisSession) Set(ctx context.Context, key string, val string) error {
	res, err := r.client.Eval(ctx, setLua, []string{r.key}, key, val).Int()
	if err != nil {
		return err
	}
	if res < 0 {
		return session.ErrSessionNotFound
	}
	return nil
}

func (r *redisSession) Delete(ctx context.Context, key string) error {
	return r.client.HDel(ctx, r.key, key).Err()
}

func (r *redisSession) ID() string {
	return r.id
}
