package session

import (
	"context"
	"errors"
	"fmt"

	v1 "axiapac.com/selfservice/selfservice/v1"
	"axiapac.com/selfservice/selfservice/v1/common"
	"axiapac.com/selfservice/storage"
	"go.uber.org/zap"
)

var ErrNotLoggedIn = errors.New("not logged in")

// Auth is the subset of the auth endpoint the session needs.
type Auth interface {
	Login(ctx context.Context, email, password string) (*common.LoginResponse, v1.Outcome)
	Logout(ctx context.Context) v1.Outcome
	ChangePassword(ctx context.Context, oldPassword, newPassword string) v1.Outcome
}

// AttendanceCache is cleared for the user on logout.
type AttendanceCache interface {
	Clear(ctx context.Context, userID int64) error
}

type Manager struct {
	Auth       Auth
	Store      storage.Store
	Tokens     *storage.TokenStore
	Attendance AttendanceCache
	Logger     *zap.Logger
}

func NewManager(auth Auth, store storage.Store, attendance AttendanceCache, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		Auth:       auth,
		Store:      store,
		Tokens:     storage.NewTokenStore(store),
		Attendance: attendance,
		Logger:     logger,
	}
}

// Login authenticates and persists the token and user profile. Nothing is
// stored when the login fails.
func (m *Manager) Login(ctx context.Context, email, password string) (*common.User, v1.Outcome) {
	resp, outcome := m.Auth.Login(ctx, email, password)
	if !outcome.OK() {
		m.Logger.Info("login failed", zap.String("kind", outcome.Kind.String()))
		return nil, outcome
	}

	if err := m.Tokens.SetToken(ctx, resp.AccessToken); err != nil {
		return nil, v1.Fail(v1.KindUnknown, fmt.Sprintf("store token: %v", err))
	}
	if err := storage.SetJSON(ctx, m.Store, storage.UserKey, resp.User); err != nil {
		return nil, v1.Fail(v1.KindUnknown, fmt.Sprintf("store user: %v", err))
	}

	m.Logger.Info("logged in", zap.Int64("user_id", resp.User.ID))
	return resp.User, outcome
}

// Logout tells the server (best effort) and then drops every piece of local
// session state, including the user's cached attendance.
func (m *Manager) Logout(ctx context.Context) error {
	user, err := m.CurrentUser(ctx)
	if err != nil && !errors.Is(err, ErrNotLoggedIn) {
		m.Logger.Warn("stored user unreadable", zap.Error(err))
	}

	if token, _ := m.Tokens.Token(ctx); token != "" {
		if outcome := m.Auth.Logout(ctx); !outcome.OK() {
			m.Logger.Warn("remote logout failed",
				zap.String("kind", outcome.Kind.String()),
				zap.String("message", outcome.Message),
			)
		}
	}

	var errs []error
	if err := m.Tokens.Clear(ctx); err != nil {
		errs = append(errs, fmt.Errorf("clear token: %w", err))
	}
	if err := m.Store.Delete(ctx, storage.UserKey); err != nil {
		errs = append(errs, fmt.Errorf("clear user: %w", err))
	}
	if user != nil && m.Attendance != nil {
		if err := m.Attendance.Clear(ctx, user.ID); err != nil {
			errs = append(errs, fmt.Errorf("clear attendance: %w", err))
		}
	}
	return errors.Join(errs...)
}

// CurrentUser returns the stored profile or ErrNotLoggedIn.
func (m *Manager) CurrentUser(ctx context.Context) (*common.User, error) {
	var user common.User
	err := storage.GetJSON(ctx, m.Store, storage.UserKey, &user)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, ErrNotLoggedIn
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}

// ChangePassword requires a session; the server validates the old password.
func (m *Manager) ChangePassword(ctx context.Context, oldPassword, newPassword string) v1.Outcome {
	if _, err := m.CurrentUser(ctx); err != nil {
		return v1.Fail(v1.KindUnauthenticated, "Not logged in")
	}
	return m.Auth.ChangePassword(ctx, oldPassword, newPassword)
}
