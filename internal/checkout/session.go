package checkout

import (
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Session holds the per-user checkout conversation state. Sessions live in
// memory only; an abandoned session stays around until the next checkout
// attempt overwrites it.
type Session struct {
	State      State
	OrderID    uint
	CartID     uint
	UserID     uint
	TotalPrice decimal.Decimal

	Address      string
	Phone        string
	Comment      string
	DeliveryDate time.Time
}

// SessionStore keeps sessions keyed by Telegram user id. All access goes
// through the mutex, so two concurrent updates from the same user cannot
// interleave inside a session.
type SessionStore struct {
	mu       sync.Mutex
	sessions map[int64]*Session
}

func NewSessionStore() *SessionStore {
	return &SessionStore{
		sessions: make(map[int64]*Session),
	}
}

func (s *SessionStore) Get(telegramID int64) (Session, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[telegramID]
	if !ok {
		return Session{}, false
	}
	return *session, true
}

// Update applies fn to the user's session atomically, creating the session
// if it does not exist yet.
func (s *SessionStore) Update(telegramID int64, fn func(*Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()

	session, ok := s.sessions[telegramID]
	if !ok {
		session = &Session{State: StateIdle}
		s.sessions[telegramID] = session
	}
	fn(session)
}

func (s *SessionStore) Clear(telegramID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.sessions, telegramID)
}
