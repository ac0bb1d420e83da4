package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/phoneshop/posclient/internal/client/models"
	"github.com/phoneshop/posclient/internal/client/repositories/credentials"
	"github.com/phoneshop/posclient/internal/client/tokens"
	"github.com/phoneshop/posclient/internal/common"
	"github.com/phoneshop/posclient/internal/logging"
)

var ErrEmptyAccessToken = errors.New("access token must not be empty")

// Storage is the durable side of the store: direct reads plus atomic
// write batches. credentials.SQLiteStorage implements it.
type Storage interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Update(ctx context.Context, fn func(ctx context.Context, repo credentials.Repository) error) error
}

// Snapshot is an immutable copy of the session state.
type Snapshot struct {
	AccessToken  string
	RefreshToken string
	User         *models.UserProfile

	// AccessExpiresAt is read from the access token's exp claim when it is
	// a JWT. It is informational; expiry is detected by the backend's 401.
	AccessExpiresAt time.Time
}

// IsAuthenticated reports whether both an access token and a user are held.
func (s Snapshot) IsAuthenticated() bool {
	return s.AccessToken != "" && s.User != nil
}

func (s Snapshot) clone() Snapshot {
	if s.User != nil {
		u := *s.User
		s.User = &u
	}
	return s
}

// Store owns the process-wide session. Mutations go through Establish,
// RotateTokens and Terminate; each persists before it returns.
type Store struct {
	mu      sync.RWMutex
	storage Storage
	log     logging.Logger
	state   Snapshot

	// notifyMu keeps listener calls in mutation order. Listeners may read
	// the store but must neither mutate it nor unsubscribe from inside
	// the callback.
	notifyMu  sync.Mutex
	listeners map[int]func(Snapshot)
	nextID    int
}

// NewStore returns an empty store. Call Hydrate to resume a persisted session.
func NewStore(storage Storage, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		storage:   storage,
		log:       log.With("component", "session"),
		listeners: make(map[int]func(Snapshot)),
	}
}

// Hydrate loads the persisted session. A session is resumed only when both
// the access token and a parseable user record are present; anything else,
// including storage errors, yields an empty session.
func (s *Store) Hydrate(ctx context.Context) Snapshot {
	s.mu.Lock()
	s.state = s.load(ctx)
	snap := s.state.clone()
	s.commitAndNotify()
	return snap
}

func (s *Store) load(ctx context.Context) Snapshot {
	access, err := s.storage.Get(ctx, common.AccessTokenKey)
	if err != nil {
		s.log.Warn(ctx, "reading access token failed, starting signed out", "error", err)
		return Snapshot{}
	}
	rawUser, err := s.storage.Get(ctx, common.UserKey)
	if err != nil {
		s.log.Warn(ctx, "reading user failed, starting signed out", "error", err)
		return Snapshot{}
	}
	if len(access) == 0 || len(rawUser) == 0 {
		return Snapshot{}
	}

	var user models.UserProfile
	if err := json.Unmarshal(rawUser, &user); err != nil {
		s.log.Warn(ctx, "stored user is corrupt, starting signed out", "error", err)
		return Snapshot{}
	}

	refresh, err := s.storage.Get(ctx, common.RefreshTokenKey)
	if err != nil {
		s.log.Warn(ctx, "reading refresh token failed, resuming without it", "error", err)
		refresh = nil
	}

	return withExpiry(Snapshot{
		AccessToken:  string(access),
		RefreshToken: string(refresh),
		User:         &user,
	})
}

// Establish replaces the whole session. An empty refreshToken clears any
// stored one. On a storage error the in-memory session is left unchanged.
func (s *Store) Establish(ctx context.Context, user models.UserProfile, accessToken, refreshToken string) error {
	if accessToken == "" {
		return ErrEmptyAccessToken
	}
	rawUser, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode user: %w", err)
	}

	s.mu.Lock()
	err = s.storage.Update(ctx, func(ctx context.Context, repo credentials.Repository) error {
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(accessToken)); err != nil {
			return err
		}
		if err := setOrDelete(ctx, repo, common.RefreshTokenKey, refreshToken); err != nil {
			return err
		}
		return repo.Set(ctx, common.UserKey, rawUser)
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist session: %w", err)
	}

	s.state = withExpiry(Snapshot{AccessToken: accessToken, RefreshToken: refreshToken, User: &user})
	s.commitAndNotify()
	return nil
}

// RotateTokens swaps the access token and, when refreshToken is non-nil,
// the refresh token (an empty value clears it). The user is kept as is.
func (s *Store) RotateTokens(ctx context.Context, accessToken string, refreshToken *string) error {
	if accessToken == "" {
		return ErrEmptyAccessToken
	}

	s.mu.Lock()
	err := s.storage.Update(ctx, func(ctx context.Context, repo credentials.Repository) error {
		if err := repo.Set(ctx, common.AccessTokenKey, []byte(accessToken)); err != nil {
			return err
		}
		if refreshToken == nil {
			return nil
		}
		return setOrDelete(ctx, repo, common.RefreshTokenKey, *refreshToken)
	})
	if err != nil {
		s.mu.Unlock()
		return fmt.Errorf("persist tokens: %w", err)
	}

	next := s.state
	next.AccessToken = accessToken
	if refreshToken != nil {
		next.RefreshToken = *refreshToken
	}
	s.state = withExpiry(next)
	s.commitAndNotify()
	return nil
}

// Terminate signs out: memory is cleared unconditionally, then every
// credential key is erased. Calling it on an empty session is harmless.
// The returned error only reports that durable erasure failed. Erasure
// ignores ctx cancellation: a sign-out must not be left half done.
func (s *Store) Terminate(ctx context.Context) error {
	ctx = context.WithoutCancel(ctx)

	s.mu.Lock()
	s.state = Snapshot{}
	err := s.storage.Update(ctx, func(ctx context.Context, repo credentials.Repository) error {
		for _, key := range common.CredentialKeys {
			if err := repo.Delete(ctx, key); err != nil {
				return err
			}
		}
		return nil
	})
	s.commitAndNotify()

	if err != nil {
		s.log.Error(ctx, "erasing stored credentials failed", "error", err)
		return fmt.Errorf("erase session: %w", err)
	}
	return nil
}

// commitAndNotify must be called with s.mu held; it releases it.
func (s *Store) commitAndNotify() {
	snap := s.state.clone()
	s.notifyMu.Lock()
	s.mu.Unlock()
	defer s.notifyMu.Unlock()
	s.notify(snap)
}

func (s *Store) notify(snap Snapshot) {
	for _, fn := range s.listeners {
		fn(snap.clone())
	}
}

// Subscribe registers fn to receive a snapshot after every transition and
// after Hydrate. The returned func removes the listener.
func (s *Store) Subscribe(fn func(Snapshot)) (cancel func()) {
	s.notifyMu.Lock()
	defer s.notifyMu.Unlock()

	id := s.nextID
	s.nextID++
	s.listeners[id] = fn

	var once sync.Once
	return func() {
		once.Do(func() {
			s.notifyMu.Lock()
			delete(s.listeners, id)
			s.notifyMu.Unlock()
		})
	}
}

func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.clone()
}

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.IsAuthenticated()
}

func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.AccessToken
}

func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.RefreshToken
}

// User returns a copy of the signed-in user, or nil.
func (s *Store) User() *models.UserProfile {
	return s.Snapshot().User
}

func setOrDelete(ctx context.Context, repo credentials.Repository, key, value string) error {
	if value == "" {
		return repo.Delete(ctx, key)
	}
	return repo.Set(ctx, key, []byte(value))
}

func withExpiry(s Snapshot) Snapshot {
	s.AccessExpiresAt = time.Time{}
	if exp, err := tokens.ExpiresAt(s.AccessToken); err == nil {
		s.AccessExpiresAt = exp
	}
	return s
}
