package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/WilliamZhang9/Call2Map/config"
)

// mirror reflects session lifecycle events into an external system so
// operators can inspect active calls. Implementations are best-effort and
// are never consulted for dialogue state.
type mirror interface {
	record(ctx context.Context, s *Session)
	forget(ctx context.Context, id string)
	close()
}

// Store is the authoritative map of active call sessions. The store-level
// lock covers only insert/lookup/remove and is never held across external
// calls; mirror writes happen after it is released, so Redis latency can't
// stall unrelated sessions.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	mirror         mirror
	maxSessions    int
	sessionTimeout time.Duration
}

// NewStore creates a session store, connecting to Redis if reachable.
// Redis being down is not an error; the store runs memory-only.
func NewStore(cfg *config.Config) *Store {
	store := NewMemoryStore(cfg.MaxSessions, cfg.SessionTimeout)

	redisClient := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPassword,
		DB:       0,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		redisClient.Close()
		return store
	}

	store.mirror = &redisMirror{client: redisClient, ttl: cfg.SessionTimeout}
	return store
}

// NewMemoryStore creates a store with no Redis mirror, for tests and
// single-process setups.
func NewMemoryStore(maxSessions int, sessionTimeout time.Duration) *Store {
	return &Store{
		sessions:       make(map[string]*Session),
		maxSessions:    maxSessions,
		sessionTimeout: sessionTimeout,
	}
}

// GetOrCreate returns the session for id, creating it on first sight.
func (st *Store) GetOrCreate(ctx context.Context, id, caller string) (*Session, error) {
	st.mu.Lock()
	if s, ok := st.sessions[id]; ok {
		st.mu.Unlock()
		return s, nil
	}
	if len(st.sessions) >= st.maxSessions {
		st.mu.Unlock()
		return nil, fmt.Errorf("maximum sessions reached")
	}
	s := newSession(id, caller)
	st.sessions[id] = s
	st.mu.Unlock()

	if st.mirror != nil {
		st.mirror.record(ctx, s)
	}
	return s, nil
}

// Get retrieves a session by ID.
func (st *Store) Get(id string) (*Session, bool) {
	st.mu.RLock()
	defer st.mu.RUnlock()
	s, ok := st.sessions[id]
	return s, ok
}

// Remove evicts a session, e.g. when the call ends.
func (st *Store) Remove(ctx context.Context, id string) {
	st.mu.Lock()
	_, ok := st.sessions[id]
	delete(st.sessions, id)
	st.mu.Unlock()

	if ok && st.mirror != nil {
		st.mirror.forget(ctx, id)
	}
}

// Count returns the number of active sessions.
func (st *Store) Count() int {
	st.mu.RLock()
	defer st.mu.RUnlock()
	return len(st.sessions)
}

// CleanupIdle evicts sessions with no activity within the session timeout.
func (st *Store) CleanupIdle(ctx context.Context) {
	now := time.Now()
	var evicted []string

	st.mu.Lock()
	for id, s := range st.sessions {
		if now.Sub(s.LastActivity()) > st.sessionTimeout {
			delete(st.sessions, id)
			evicted = append(evicted, id)
		}
	}
	st.mu.Unlock()

	if st.mirror != nil {
		for _, id := range evicted {
			st.mirror.forget(ctx, id)
		}
	}
}

// StartCleanupRoutine runs periodic idle-session cleanup until ctx is done.
func (st *Store) StartCleanupRoutine(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			st.CleanupIdle(ctx)
		}
	}
}

// Shutdown drops all sessions and closes the mirror connection.
func (st *Store) Shutdown() {
	st.mu.Lock()
	for id := range st.sessions {
		delete(st.sessions, id)
	}
	st.mu.Unlock()

	if st.mirror != nil {
		st.mirror.close()
	}
}

// redisMirror publishes session metadata to Redis for operator visibility.
type redisMirror struct {
	client *redis.Client
	ttl    time.Duration
}

func (m *redisMirror) record(ctx context.Context, s *Session) {
	m.client.HSet(ctx, "session:"+s.ID, map[string]interface{}{
		"caller":        s.Caller,
		"created_at":    s.CreatedAt.Format(time.RFC3339),
		"last_activity": s.LastActivity().Format(time.RFC3339),
		"status":        "active",
	})
	m.client.SAdd(ctx, "active_sessions", s.ID)
	m.client.Expire(ctx, "session:"+s.ID, m.ttl)
}

func (m *redisMirror) forget(ctx context.Context, id string) {
	m.client.Del(ctx, "session:"+id)
	m.client.SRem(ctx, "active_sessions", id)
}

func (m *redisMirror) close() {
	m.client.Close()
}
