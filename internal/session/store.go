// Package session owns the per-user session lifecycle: the in-memory
// store, the artifact cache, and the fixed time-to-live after which all
// session state is discarded.
package session

import (
	"time"

	"github.com/abinmathew/leave-letter-assistant/internal/wizard"
	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"
	"go.uber.org/zap"
)

// DefaultTTL is the window after document generation during which
// download, forward and regenerate actions remain valid.
const DefaultTTL = 180 * time.Second

// idleExpiration reaps sessions abandoned mid-wizard; the artifact TTL
// is enforced separately against the generation timestamp.
const idleExpiration = 30 * time.Minute

// Store keeps sessions in memory. Nothing survives a process restart.
type Store struct {
	cache  *cache.Cache
	engine *wizard.Engine
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

// NewStore builds the session store. ttl <= 0 selects DefaultTTL; now is
// the clock used for expiry checks, pass time.Now outside tests.
func NewStore(engine *wizard.Engine, ttl time.Duration, now func() time.Time, logger *zap.Logger) *Store {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Store{
		cache:  cache.New(idleExpiration, 10*time.Minute),
		engine: engine,
		ttl:    ttl,
		now:    now,
		logger: logger,
	}
}

// Create starts a fresh session at step 0.
func (st *Store) Create() *wizard.Session {
	s := st.engine.NewSession(uuid.NewString())
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
	st.logger.Info("Session created", zap.String("session_id", s.ID))
	return s
}

// Get returns the session for id. When the artifact TTL has elapsed the
// stored session is discarded and a fresh one is returned under the
// same id: the wizard restarts at step 0 with an empty transcript and
// any unretrieved artifact is lost.
func (st *Store) Get(id string) (*wizard.Session, bool) {
	v, found := st.cache.Get(id)
	if !found {
		return nil, false
	}
	s := v.(*wizard.Session)

	if st.expired(s) {
		st.logger.Info("Session expired, discarding",
			zap.String("session_id", id),
			zap.Time("generated_at", s.Artifact.GeneratedAt))
		fresh := st.engine.NewSession(id)
		st.cache.Set(id, fresh, cache.DefaultExpiration)
		return fresh, true
	}
	return s, true
}

// Save writes the session back and refreshes the idle expiration.
func (st *Store) Save(s *wizard.Session) {
	st.cache.Set(s.ID, s, cache.DefaultExpiration)
}

// Reset discards all state for id and returns a fresh session under the
// same id.
func (st *Store) Reset(id string) *wizard.Session {
	fresh := st.engine.NewSession(id)
	st.cache.Set(id, fresh, cache.DefaultExpiration)
	st.logger.Info("Session reset", zap.String("session_id", id))
	return fresh
}

// Remaining reports how much of the artifact validity window is left.
// Zero when no artifact has been generated yet.
func (st *Store) Remaining(s *wizard.Session) time.Duration {
	if s.Artifact == nil {
		return 0
	}
	left := st.ttl - st.now().Sub(s.Artifact.GeneratedAt)
	if left < 0 {
		return 0
	}
	return left
}

func (st *Store) expired(s *wizard.Session) bool {
	return s.Artifact != nil && st.now().Sub(s.Artifact.GeneratedAt) >= st.ttl
}
