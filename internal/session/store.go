package session

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/sirupsen/logrus"

	"rently/client/internal/backend"
	"rently/client/internal/models"
	"rently/client/internal/storage"
)

// Session is the authenticated-identity state of the client process.
// IsAuthenticated is true exactly when a token is present.
type Session struct {
	Token           string
	User            *models.User
	IsAuthenticated bool
}

// Role returns the current role, or empty when unauthenticated.
func (s Session) Role() models.Role {
	if s.User == nil {
		return ""
	}
	return s.User.Role
}

// UserID returns the current user id, or zero when unauthenticated.
func (s Session) UserID() int64 {
	if s.User == nil {
		return 0
	}
	return s.User.ID
}

// AuthAPI is the slice of the backend the session store drives.
type AuthAPI interface {
	Authenticate(backend.Credentials) (*backend.AuthResponse, error)
	Register(backend.RegisterRequest) (*backend.AuthResponse, error)
	CurrentUser() (*models.User, error)
	UpdateProfile(backend.ProfileUpdate) (*models.User, error)
	ChangePassword(currentPassword, newPassword string) error
}

// Store is the single process-wide source of truth for who is logged in.
// All mutations go through its operations; each persists to durable storage
// before the new state becomes observable, and subscribers are notified of
// every committed change.
type Store struct {
	api     AuthAPI
	storage *storage.Store
	logger  *logrus.Logger

	// commitMu serializes mutations: the read-modify-write of the session
	// and its persistence form one critical section, so a slow commit can
	// never overwrite a newer one and storage always agrees with memory.
	commitMu sync.Mutex

	mu          sync.RWMutex
	session     Session
	subscribers []func(Session)
}

// NewStore creates the session store and rehydrates any persisted session
// from durable storage.
func NewStore(api AuthAPI, st *storage.Store, logger *logrus.Logger) *Store {
	s := &Store{
		api:     api,
		storage: st,
		logger:  logger,
	}
	s.rehydrate()
	return s
}

func (s *Store) rehydrate() {
	token, ok, err := s.storage.Get(storage.KeyToken)
	if err != nil {
		s.logger.WithError(err).Warn("Could not read persisted session")
		return
	}
	if !ok || token == "" {
		return
	}

	session := Session{Token: token, IsAuthenticated: true}

	if raw, ok, err := s.storage.Get(storage.KeyUser); err == nil && ok {
		var user models.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			s.logger.WithError(err).Warn("Failed to parse persisted user, discarding")
		} else {
			session.User = &user
		}
	}

	s.session = session
	s.logger.WithField("user_id", session.UserID()).Info("Rehydrated session from storage")
}

// Current returns the latest committed session.
func (s *Store) Current() Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session
}

// Token returns the current token, or empty when unauthenticated. Wired into
// the backend client as its token source.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

// Subscribe registers a callback invoked after every committed mutation.
func (s *Store) Subscribe(fn func(Session)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

// Login authenticates against the backend. On success the session is
// replaced atomically and persisted; on failure the session is left
// untouched and the error returned to the caller.
func (s *Store) Login(creds backend.Credentials) (Session, error) {
	resp, err := s.api.Authenticate(creds)
	if err != nil {
		return s.Current(), err
	}
	return s.commitAuth(resp), nil
}

// Register creates an account and logs in, with the same contract as Login.
func (s *Store) Register(req backend.RegisterRequest) (Session, error) {
	resp, err := s.api.Register(req)
	if err != nil {
		return s.Current(), err
	}
	return s.commitAuth(resp), nil
}

// UpdateProfile sends the edited fields to the backend and merges the
// returned user into the session. The token is not altered.
func (s *Store) UpdateProfile(update backend.ProfileUpdate) (Session, error) {
	user, err := s.api.UpdateProfile(update)
	if err != nil {
		return s.Current(), err
	}
	return s.commitUser(user), nil
}

// RefreshProfile re-reads the profile from the backend, replacing the user
// fields without touching the token.
func (s *Store) RefreshProfile() (Session, error) {
	user, err := s.api.CurrentUser()
	if err != nil {
		return s.Current(), err
	}
	return s.commitUser(user), nil
}

// ChangePassword is a pass-through; it never mutates the session.
func (s *Store) ChangePassword(currentPassword, newPassword string) error {
	return s.api.ChangePassword(currentPassword, newPassword)
}

// Logout clears the session and erases every persisted field. It always
// succeeds and makes no backend call.
func (s *Store) Logout() {
	s.commitMu.Lock()
	if err := s.storage.Clear(); err != nil {
		s.logger.WithError(err).Warn("Failed to erase persisted session")
	}

	s.mu.Lock()
	s.session = Session{}
	s.mu.Unlock()
	s.commitMu.Unlock()

	s.logger.Info("Session cleared")
	s.notify(Session{})
}

// TokenExpired reports whether the stored token carries an exp claim in the
// past. The token is parsed without signature verification; the backend
// remains the authority, this only lets the UI redirect to login before
// issuing a doomed request.
func (s *Store) TokenExpired() bool {
	token := s.Token()
	if token == "" {
		return false
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return false
	}

	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return false
	}
	return exp.Before(time.Now())
}

func (s *Store) commitAuth(resp *backend.AuthResponse) Session {
	user := resp.User
	next := Session{
		Token:           resp.Token,
		User:            &user,
		IsAuthenticated: true,
	}

	s.commitMu.Lock()
	s.persist(next)

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	s.commitMu.Unlock()

	s.logger.WithFields(logrus.Fields{
		"user_id": user.ID,
		"role":    user.Role,
	}).Info("Session established")

	s.notify(next)
	return next
}

func (s *Store) commitUser(user *models.User) Session {
	s.commitMu.Lock()

	s.mu.RLock()
	next := s.session
	s.mu.RUnlock()

	next.User = user
	s.persist(next)

	s.mu.Lock()
	s.session = next
	s.mu.Unlock()
	s.commitMu.Unlock()

	s.notify(next)
	return next
}

// persist writes the session fields to durable storage before the mutation
// becomes observable. Persistence failures are logged, not fatal: the
// backend accepted the operation and the in-memory session must reflect it.
func (s *Store) persist(session Session) {
	if err := s.storage.Set(storage.KeyToken, session.Token); err != nil {
		s.logger.WithError(err).Warn("Failed to persist token")
	}
	if session.User != nil {
		raw, err := json.Marshal(session.User)
		if err != nil {
			s.logger.WithError(err).Warn("Failed to marshal user for persistence")
		} else if err := s.storage.Set(storage.KeyUser, string(raw)); err != nil {
			s.logger.WithError(err).Warn("Failed to persist user")
		}
		if err := s.storage.Set(storage.KeyRole, string(session.User.Role)); err != nil {
			s.logger.WithError(err).Warn("Failed to persist role")
		}
	}
}

func (s *Store) notify(session Session) {
	s.mu.RLock()
	subscribers := s.subscribers
	s.mu.RUnlock()

	for _, fn := range subscribers {
		fn(session)
	}
}
