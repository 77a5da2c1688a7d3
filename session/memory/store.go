package memory

import (
	"context"
	"sync"
	"time"

	"github.com/coderi421/adkit/session"
	cache "github.com/patrickmn/go-cache"
)

// Store keeps sessions in process memory. go-cache takes care of expiring
// them.
type Store struct {
	// Refresh 需要先查再写，不能和 Remove 交错
	mutex      sync.Mutex
	c          *cache.Cache
	expiration time.Duration
}

func NewStore(expiration time.Duration) *Store {
	return &Store{
		c:          cache.New(expiration, time.Second),
		expiration: expiration,
	}
}

func (s *Store) Generate(ctx context.Context, id string) (session.Session, error) {
	sess := &memorySession{
		id:   id,
		data: make(map[string]string),
	}
	if err := s.c.Add(id, sess, s.expiration); err != nil {
		return nil, err
	}
	return sess, nil
}

func (s *Store) Refresh(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	sess, ok := s.c.Get(id)
	if !ok {
		return session.ErrSessionNotFound
	}
	s.c.Set(id, sess, s.expiration)
	return nil
}

func (s *Store) Remove(ctx context.Context, id string) error {
	s.mutex.Lock()
	defer s.mutex.Unlock()
	s.c.Delete(id)
	return nil
}

func (s *Store) Get(ctx context.Context, id string) (session.Session, error) {
	sess, ok := s.c.Get(id)
	if !ok {
		return nil, session.ErrSessionNotFound
	}
	return sess.(*memorySession), nil
}

type memorySession struct {
	mutex sync.RWMutex
	id    string
	data  map[string]string
}

func (m *memorySession) Get(ctx context.Context, key string) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()
	val, ok := m.data[key]
	if !ok {
		return "", session.ErrKeyNotFound
	}
	return val, nil
}

func (m *memorySession) Set(ctx context.Context, key string, val string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.data[key] = val
	return nil
}

func (m *memorySession) Delete(ctx context.Context, key string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	delete(m.data, key)
	return nil
}

func (m *memorySession) ID() string {
	return m.id
}
