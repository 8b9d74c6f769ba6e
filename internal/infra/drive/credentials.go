package drive

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	drive "google.golang.org/api/drive/v3"
)

// TokenState is the lifecycle state of the stored credential.
type TokenState string

const (
	TokenAbsent  TokenState = "absent"
	TokenValid   TokenState = "valid"
	TokenExpired TokenState = "expired"
)

// ErrNotAuthorized is returned when no token exists and no interactive flow is available.
var ErrNotAuthorized = errors.New("google drive not authorized")

// Authorizer runs the one-time interactive consent flow and returns an authorization code.
type Authorizer interface {
	Authorize(ctx context.Context, cfg *oauth2.Config, state string) (code string, err error)
}

// CredentialManager owns the Drive OAuth token. Transitions:
// absent -> valid via Authorizer, expired -> valid via silent refresh.
type CredentialManager struct {
	cfg        *oauth2.Config
	store      TokenStore
	authorizer Authorizer

	mu sync.Mutex
}

// NewCredentialManager creates a manager. authorizer may be nil for non-interactive use.
func NewCredentialManager(cfg *oauth2.Config, store TokenStore, authorizer Authorizer) *CredentialManager {
	return &CredentialManager{
		cfg:        cfg,
		store:      store,
		authorizer: authorizer,
	}
}

// LoadOAuthConfig reads a Google client secrets file.
func LoadOAuthConfig(path string) (*oauth2.Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read client secrets: %w", err)
	}
	cfg, err := google.ConfigFromJSON(data, drive.DriveFileScope)
	if err != nil {
		return nil, fmt.Errorf("failed to parse client secrets: %w", err)
	}
	return cfg, nil
}

// State reports the current credential state.
func (m *CredentialManager) State() (TokenState, error) {
	tok, err := m.store.Load()
	if err != nil {
		return TokenAbsent, err
	}
	return stateOf(tok), nil
}

func stateOf(tok *oauth2.Token) TokenState {
	switch {
	case tok == nil || (tok.AccessToken == "" && tok.RefreshToken == ""):
		return TokenAbsent
	case tok.Valid():
		return TokenValid
	default:
		return TokenExpired
	}
}

// TokenSource drives the state machine to valid and returns a source that persists
// every refreshed token.
func (m *CredentialManager) TokenSource(ctx context.Context) (oauth2.TokenSource, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	tok, err := m.store.Load()
	if err != nil {
		return nil, err
	}

	switch stateOf(tok) {
	case TokenAbsent:
		if m.authorizer == nil {
			return nil, ErrNotAuthorized
		}
		slog.Warn("Google Drive authentication required, starting interactive flow")
		tok, err = m.authorize(ctx)
		if err != nil {
			return nil, err
		}
	case TokenExpired:
		slog.Info("Refreshing expired Google Drive token")
		tok, err = m.cfg.TokenSource(ctx, tok).Token()
		if err != nil {
			return nil, fmt.Errorf("failed to refresh token: %w", err)
		}
	}

	if err := m.store.Save(tok); err != nil {
		return nil, err
	}

	return &persistingSource{
		base:  m.cfg.TokenSource(context.WithoutCancel(ctx), tok),
		store: m.store,
		last:  tok.AccessToken,
	}, nil
}

func (m *CredentialManager) authorize(ctx context.Context) (*oauth2.Token, error) {
	state, err := randomState()
	if err != nil {
		return nil, err
	}
	code, err := m.authorizer.Authorize(ctx, m.cfg, state)
	if err != nil {
		return nil, fmt.Errorf("interactive authorization failed: %w", err)
	}
	tok, err := m.cfg.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("failed to exchange authorization code: %w", err)
	}
	return tok, nil
}

// persistingSource saves the token whenever the underlying source refreshes it.
type persistingSource struct {
	base  oauth2.TokenSource
	store TokenStore

	mu   sync.Mutex
	last string
}

func (s *persistingSource) Token() (*oauth2.Token, error) {
	tok, err := s.base.Token()
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if tok.AccessToken != s.last {
		if err := s.store.Save(tok); err != nil {
			slog.Warn("Failed to persist refreshed Drive token", "error", err)
		} else {
			s.last = tok.AccessToken
		}
	}
	return tok, nil
}
