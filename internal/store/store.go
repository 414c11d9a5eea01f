// Package store defines the persistence contracts used by the services.
// The SQLite implementation lives in store/sqlite.
package store

import (
	"context"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
)

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) error
	GetUser(ctx context.Context, id string) (*domain.User, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, user *domain.User) error
	CountUsers(ctx context.Context) (int, error)
}

// SessionStore persists refresh sessions.
type SessionStore interface {
	CreateSession(ctx context.Context, session *domain.Session) error
	GetSession(ctx context.Context, id string) (*domain.Session, error)
	GetSessionByRefreshToken(ctx context.Context, tokenHash string) (*domain.Session, error)
	UpdateSession(ctx context.Context, session *domain.Session) error
	DeleteSession(ctx context.Context, id string) error
	GetSessionsByUser(ctx context.Context, userID string) ([]*domain.Session, error)
	DeleteExpiredSessions(ctx context.Context) (int, error)
}

// FastStore persists fasting sessions. At most one session per user is active.
type FastStore interface {
	// GetActiveFast returns store.ErrNotFound when the user has no active fast.
	GetActiveFast(ctx context.Context, userID string) (*domain.FastingSession, error)
	GetFast(ctx context.Context, userID, id string) (*domain.FastingSession, error)
	// ListFasts returns fasts newest first. limit <= 0 returns all of them.
	ListFasts(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error)
	// ListCompletedFasts is ListFasts without the active fast.
	ListCompletedFasts(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error)
	ListFastsSince(ctx context.Context, userID string, since time.Time) ([]*domain.FastingSession, error)
	ListActiveFasts(ctx context.Context) ([]*domain.FastingSession, error)
	// CreateFast returns store.ErrAlreadyExists when the user already has an active fast.
	CreateFast(ctx context.Context, fast *domain.FastingSession) error
	// CompleteFast persists a stopped fast. It returns store.ErrNotFound unless the stored
	// row is still active.
	CompleteFast(ctx context.Context, fast *domain.FastingSession) error
	UpdateFastGoal(ctx context.Context, userID string, goalHours float64) (*domain.FastingSession, error)
	DeleteFast(ctx context.Context, userID, id string) (*domain.FastingSession, error)
}

// HydrationStore persists water intake logs.
type HydrationStore interface {
	CreateHydration(ctx context.Context, log *domain.HydrationLog) error
	ListHydration(ctx context.Context, userID string, from, to time.Time) ([]*domain.HydrationLog, error)
	LatestHydration(ctx context.Context, userID string) (*domain.HydrationLog, error)
	DeleteHydration(ctx context.Context, userID, id string) error
}

// MoodStore persists mood logs.
type MoodStore interface {
	CreateMood(ctx context.Context, log *domain.MoodLog) error
	ListMoods(ctx context.Context, userID string, from, to time.Time) ([]*domain.MoodLog, error)
	DeleteMood(ctx context.Context, userID, id string) error
}

// Store is the full persistence surface.
type Store interface {
	UserStore
	SessionStore
	FastStore
	HydrationStore
	MoodStore

	Ping(ctx context.Context) error
	Close() error
}
