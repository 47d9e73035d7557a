package session

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strconv"
	"sync"

	"github.com/dmitrijs2005/vmgen/internal/client/models"
	"github.com/dmitrijs2005/vmgen/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/vmgen/internal/dbx"
	"github.com/dmitrijs2005/vmgen/internal/logging"
)

// Persisted keys.
const (
	KeyUser            = "user"
	KeyToken           = "token"
	KeyRefreshToken    = "refreshToken"
	KeyIsAuthenticated = "isAuthenticated"
)

// Fixed credentials injected in local mode.
const (
	LocalAccessToken  = "local-hardcoded-token"
	LocalRefreshToken = "local-hardcoded-refresh-token"
)

// LocalUser is the account every local-mode session runs as.
var LocalUser = models.User{ID: "local-user-uuid", Email: "local@user.com", Role: models.RoleAdmin}

// State is an immutable view of the session.
type State struct {
	AccessToken   string
	RefreshToken  string
	User          *models.User
	Authenticated bool
	Local         bool
}

// Store is safe for concurrent use.
type Store struct {
	db      *sql.DB
	newRepo func(dbx.DBTX) metadata.Repository
	log     logging.Logger

	// wmu serializes transitions so persisted and in-memory state agree.
	wmu   sync.Mutex
	mu    sync.RWMutex
	state State
}

// NewStore returns an empty store persisting into db. A nil db keeps the
// session in memory only.
func NewStore(db *sql.DB, log logging.Logger) *Store {
	if log == nil {
		log = logging.Nop()
	}
	return &Store{
		db: db,
		newRepo: func(q dbx.DBTX) metadata.Repository {
			return metadata.NewSQLiteRepository(q)
		},
		log: log,
	}
}

// Restore loads the persisted session. A missing or partial record leaves
// the corresponding fields empty.
func (s *Store) Restore(ctx context.Context) error {
	if s.db == nil {
		return nil
	}
	s.wmu.Lock()
	defer s.wmu.Unlock()

	values, err := s.newRepo(s.db).List(ctx)
	if err != nil {
		return fmt.Errorf("restore session: %w", err)
	}

	var st State
	st.AccessToken = string(values[KeyToken])
	st.RefreshToken = string(values[KeyRefreshToken])
	if raw := values[KeyUser]; len(raw) > 0 {
		var u models.User
		if err := json.Unmarshal(raw, &u); err != nil {
			s.log.Warn(ctx, "discarding malformed persisted user", "error", err)
		} else {
			st.User = &u
		}
	}
	st.Authenticated = st.AccessToken != ""
	if flag, err := strconv.ParseBool(string(values[KeyIsAuthenticated])); err == nil && flag != st.Authenticated {
		s.log.Debug(ctx, "persisted auth flag disagrees with token, trusting token", "flag", flag)
	}

	s.replace(st)
	s.log.Debug(ctx, "session restored", "authenticated", st.Authenticated)
	return nil
}

// Snapshot returns a copy of the current state.
func (s *Store) Snapshot() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st := s.state
	if st.User != nil {
		u := *st.User
		st.User = &u
	}
	return st
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

func (s *Store) IsAuthenticated() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Authenticated
}

func (s *Store) IsLocal() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Local
}

// User returns the signed-in user, if any.
func (s *Store) User() (models.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.state.User == nil {
		return models.User{}, false
	}
	return *s.state.User, true
}

// Login stores a fresh token pair together with the user they belong to.
func (s *Store) Login(ctx context.Context, accessToken, refreshToken string, user models.User) error {
	return s.transition(ctx, func(st *State) {
		st.AccessToken = accessToken
		st.RefreshToken = refreshToken
		st.User = &user
		st.Authenticated = accessToken != ""
	})
}

// SetTokens replaces both tokens atomically and keeps the user.
func (s *Store) SetTokens(ctx context.Context, accessToken, refreshToken string) error {
	return s.transition(ctx, func(st *State) {
		st.AccessToken = accessToken
		st.RefreshToken = refreshToken
		st.Authenticated = accessToken != ""
	})
}

func (s *Store) UpdateUser(ctx context.Context, user models.User) error {
	return s.transition(ctx, func(st *State) {
		st.User = &user
	})
}

// Clear logs out. Local mode survives a logout with the fixed session, since
// there is no way to sign in again.
func (s *Store) Clear(ctx context.Context) error {
	if s.IsLocal() {
		s.log.Info(ctx, "logout ignored in local mode")
		return nil
	}
	return s.transition(ctx, func(st *State) {
		*st = State{}
	})
}

// InitLocal switches the session to local mode. The fixed session is kept in
// memory only so it never leaks into a later remote run.
func (s *Store) InitLocal(ctx context.Context) {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	u := LocalUser
	s.replace(State{
		AccessToken:   LocalAccessToken,
		RefreshToken:  LocalRefreshToken,
		User:          &u,
		Authenticated: true,
		Local:         true,
	})
	s.log.Info(ctx, "local session initialized", "user", u.Email)
}

func (s *Store) transition(ctx context.Context, apply func(*State)) error {
	s.wmu.Lock()
	defer s.wmu.Unlock()

	next := s.Snapshot()
	apply(&next)

	if !next.Local {
		if err := s.persist(ctx, next); err != nil {
			return err
		}
	}
	s.replace(next)
	return nil
}

func (s *Store) replace(st State) {
	s.mu.Lock()
	s.state = st
	s.mu.Unlock()
}

func (s *Store) persist(ctx context.Context, st State) error {
	if s.db == nil {
		return nil
	}

	var userJSON []byte
	if st.User != nil {
		b, err := json.Marshal(st.User)
		if err != nil {
			return fmt.Errorf("encode user: %w", err)
		}
		userJSON = b
	}

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.newRepo(tx)
		if st.AccessToken == "" && st.RefreshToken == "" && st.User == nil {
			for _, k := range []string{KeyUser, KeyToken, KeyRefreshToken, KeyIsAuthenticated} {
				if err := repo.Delete(ctx, k); err != nil {
					return err
				}
			}
			return nil
		}
		if err := setOrDelete(ctx, repo, KeyUser, userJSON); err != nil {
			return err
		}
		if err := setOrDelete(ctx, repo, KeyToken, []byte(st.AccessToken)); err != nil {
			return err
		}
		if err := setOrDelete(ctx, repo, KeyRefreshToken, []byte(st.RefreshToken)); err != nil {
			return err
		}
		return repo.Set(ctx, KeyIsAuthenticated, []byte(strconv.FormatBool(st.Authenticated)))
	})
	if err != nil {
		return fmt.Errorf("persist session: %w", err)
	}
	return nil
}

func setOrDelete(ctx context.Context, repo metadata.Repository, key string, value []byte) error {
	if len(value) == 0 {
		return repo.Delete(ctx, key)
	}
	return repo.Set(ctx, key, value)
}
