// Package session holds the logged-in user's identity: the bearer token, the
// owner id scoping all local data, and the username. The session is persisted
// in the metadata store so a restart lands back in the same account without
// re-entering credentials (as long as the token has not expired).
package session

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	"github.com/dkazakov/fieldsale/internal/client/api"
	"github.com/dkazakov/fieldsale/internal/client/repositories/metadata"
	"github.com/dkazakov/fieldsale/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

const (
	keyToken    = "session_token"
	keyOwner    = "session_owner"
	keyUsername = "session_username"
)

// Manager is the process-wide session state. It implements api.TokenSource,
// so the HTTP client picks up the token as soon as login completes.
type Manager struct {
	meta metadata.Repository
	log  logging.Logger

	mu       sync.Mutex
	token    string
	ownerID  int64
	username string
}

func NewManager(meta metadata.Repository, log logging.Logger) *Manager {
	return &Manager{meta: meta, log: log}
}

// Token implements api.TokenSource. Empty until login or restore.
func (m *Manager) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.token
}

// OwnerID returns the logged-in owner id, or 0 when logged out.
func (m *Manager) OwnerID() int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.ownerID
}

// Username returns the logged-in username, or "" when logged out.
func (m *Manager) Username() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.username
}

// LoggedIn reports whether a session is active in memory.
func (m *Manager) LoggedIn() bool {
	return m.Token() != ""
}

// Valid reports whether the session token exists and has not expired. The
// expiry comes from the unverified JWT claims: the client cannot check the
// signature, only the server can, but it can avoid doomed requests.
func (m *Manager) Valid() bool {
	tokenStr := m.Token()
	if tokenStr == "" {
		return false
	}
	token, _, err := jwt.NewParser().ParseUnverified(tokenStr, jwt.MapClaims{})
	if err != nil {
		return false
	}
	exp, err := token.Claims.GetExpirationTime()
	if err != nil {
		return false
	}
	if exp == nil {
		return true
	}
	return time.Now().Before(exp.Time)
}

// Login authenticates against the server via client and persists the session.
func (m *Manager) Login(ctx context.Context, client api.Client, username, password string) (int64, error) {
	res, err := client.Login(ctx, username, password)
	if err != nil {
		return 0, err
	}

	if err := m.persist(ctx, res.Token, res.OwnerID, username); err != nil {
		return 0, fmt.Errorf("saving session: %w", err)
	}

	m.mu.Lock()
	m.token = res.Token
	m.ownerID = res.OwnerID
	m.username = username
	m.mu.Unlock()

	m.log.Info(ctx, "logged in", "username", username, "ownerId", res.OwnerID)
	return res.OwnerID, nil
}

func (m *Manager) persist(ctx context.Context, token string, ownerID int64, username string) error {
	if err := m.meta.Set(ctx, keyToken, []byte(token)); err != nil {
		return err
	}
	if err := m.meta.Set(ctx, keyOwner, []byte(strconv.FormatInt(ownerID, 10))); err != nil {
		return err
	}
	return m.meta.Set(ctx, keyUsername, []byte(username))
}

// Restore loads a previously persisted session. It returns false without
// error when no session is stored or the stored token has expired.
func (m *Manager) Restore(ctx context.Context) (bool, error) {
	token, err := m.meta.Get(ctx, keyToken)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	if len(token) == 0 {
		return false, nil
	}

	rawOwner, err := m.meta.Get(ctx, keyOwner)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}
	ownerID, err := strconv.ParseInt(string(rawOwner), 10, 64)
	if err != nil || ownerID <= 0 {
		return false, fmt.Errorf("stored session carries bad owner id %q", rawOwner)
	}

	username, err := m.meta.Get(ctx, keyUsername)
	if err != nil {
		return false, fmt.Errorf("loading session: %w", err)
	}

	m.mu.Lock()
	m.token = string(token)
	m.ownerID = ownerID
	m.username = string(username)
	m.mu.Unlock()

	if !m.Valid() {
		m.log.Info(ctx, "stored session expired", "username", string(username))
		if err := m.Logout(ctx); err != nil {
			return false, err
		}
		return false, nil
	}

	m.log.Info(ctx, "session restored", "username", string(username), "ownerId", ownerID)
	return true, nil
}

// Logout clears the session in memory and on disk. Cached entity data is the
// caller's concern; the session manager only owns identity.
func (m *Manager) Logout(ctx context.Context) error {
	m.mu.Lock()
	m.token = ""
	m.ownerID = 0
	m.username = ""
	m.mu.Unlock()

	for _, key := range []string{keyToken, keyOwner, keyUsername} {
		if err := m.meta.Delete(ctx, key); err != nil {
			return fmt.Errorf("clearing session: %w", err)
		}
	}
	return nil
}
