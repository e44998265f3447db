package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/patrickmn/go-cache"

	"ai-interviewer-be/pkg/interview/coordinator"
)

// LiveSession is the in-memory handle for an interview that is currently
// on air: the coordinator actor plus the session's timing budget.
type LiveSession struct {
	Id            uuid.UUID
	Topic         string
	TargetSeconds int
	StartedAt     time.Time
	Coordinator   *coordinator.Coordinator
}

// SessionRegistry holds live sessions. Entries never expire on their own;
// a session leaves the registry only when explicitly ended.
type SessionRegistry struct {
	cache *cache.Cache
}

func NewSessionRegistry() *SessionRegistry {
	return &SessionRegistry{
		cache: cache.New(cache.NoExpiration, 10*time.Minute),
	}
}

func (r *SessionRegistry) Save(session *LiveSession) {
	r.cache.Set(session.Id.String(), session, cache.NoExpiration)
}

func (r *SessionRegistry) Get(sessionId uuid.UUID) (*LiveSession, bool) {
	if x, found := r.cache.Get(sessionId.String()); found {
		return x.(*LiveSession), true
	}
	return nil, false
}

func (r *SessionRegistry) Delete(sessionId uuid.UUID) {
	r.cache.Delete(sessionId.String())
}
