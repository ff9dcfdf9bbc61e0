package core

import (
	"context"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	dm "github.com/ignaciocanosa/Precios-Relativos/data/models"
)

const SessionCookieName = "rp_session"

type sessionKey struct{}

// Session carries the per user state: its own catalog and the last comparison it ran.
type Session struct {
	Id       string
	Catalog  *Catalog
	lastSeen time.Time

	mu   sync.Mutex
	last *ComparisonResult
}

// Remember keeps res so the chart and the export of the same selection reuse it.
func (s *Session) Remember(res *ComparisonResult) {
	if res == nil || res.Outcome != OutcomeRatio {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.last = res
}

// Recall returns the remembered comparison when it was run with the same settings.
func (s *Session) Recall(settings ComparisonSettings) (*ComparisonResult, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.last == nil || !s.last.Settings.sameAs(settings) {
		return nil, false
	}
	return s.last, true
}

// SessionStore hands every browser its own catalog, seeded from the same built-ins.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[string]*Session
	seed     []dm.SeriesDescriptor
	ttl      time.Duration
	now      func() time.Time
}

func NewSessionStore(seed []dm.SeriesDescriptor, ttl time.Duration) *SessionStore {
	return &SessionStore{
		sessions: make(map[string]*Session),
		seed:     seed,
		ttl:      ttl,
		now:      time.Now,
	}
}

// Get returns the live session for id, or creates a new one when id is unknown or expired.
func (ss *SessionStore) Get(id string) *Session {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := ss.now()
	if s, ok := ss.sessions[id]; ok && now.Sub(s.lastSeen) <= ss.ttl {
		s.lastSeen = now
		return s
	}

	s := &Session{
		Id:       uuid.NewString(),
		Catalog:  NewCatalog(ss.seed),
		lastSeen: now,
	}
	ss.sessions[s.Id] = s
	return s
}

func (ss *SessionStore) Len() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()
	return len(ss.sessions)
}

// Reap drops sessions idle for longer than the ttl and returns how many went away.
func (ss *SessionStore) Reap() int {
	ss.mu.Lock()
	defer ss.mu.Unlock()

	now := ss.now()
	reaped := 0
	for id, s := range ss.sessions {
		if now.Sub(s.lastSeen) > ss.ttl {
			delete(ss.sessions, id)
			reaped++
		}
	}
	if reaped > 0 {
		log.Printf("reaped %d idle sessions, %d left", reaped, len(ss.sessions))
	}
	return reaped
}

// Middleware attaches the caller's session to the request context and refreshes the cookie.
func (ss *SessionStore) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		var id string
		if cookie, err := req.Cookie(SessionCookieName); err == nil {
			id = cookie.Value
		}

		s := ss.Get(id)
		http.SetCookie(w, &http.Cookie{
			Name:     SessionCookieName,
			Value:    s.Id,
			Path:     "/",
			MaxAge:   int(ss.ttl.Seconds()),
			HttpOnly: true,
			SameSite: http.SameSiteLaxMode,
		})

		next.ServeHTTP(w, req.WithContext(context.WithValue(req.Context(), sessionKey{}, s)))
	})
}

func SessionFromContext(ctx context.Context) (*Session, bool) {
	s, ok := ctx.Value(sessionKey{}).(*Session)
	return s, ok
}
