package sqlite

import (
	"context"
	"database/sql"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
	"github.com/fastlogapp/fastlog-server/internal/store"
)

// fastColumns must match the scan order in scanFast.
const fastColumns = `id, user_id, created_at, updated_at, start_time, end_time,
	duration, goal_hours, goal_reached, is_active, notes`

func scanFast(row scanner) (*domain.FastingSession, error) {
	var (
		f                               domain.FastingSession
		createdAt, updatedAt, startTime string
		endTime                         sql.NullString
		goalReached, isActive           int
	)
	if err := row.Scan(
		&f.ID,
		&f.UserID,
		&createdAt,
		&updatedAt,
		&startTime,
		&endTime,
		&f.Duration,
		&f.GoalHours,
		&goalReached,
		&isActive,
		&f.Notes,
	); err != nil {
		return nil, err
	}

	var err error
	if f.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if f.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	if f.StartTime, err = parseTime(startTime); err != nil {
		return nil, err
	}
	if f.EndTime, err = parseNullableTime(endTime); err != nil {
		return nil, err
	}
	f.GoalReached = goalReached != 0
	f.IsActive = isActive != 0

	return &f, nil
}

// GetActiveFast returns the user's running fast.
func (s *Store) GetActiveFast(ctx context.Context, userID string) (*domain.FastingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions WHERE user_id = ? AND is_active = 1`, userID)

	f, err := scanFast(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// GetFast returns one of the user's fasts by ID.
func (s *Store) GetFast(ctx context.Context, userID, id string) (*domain.FastingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions WHERE id = ? AND user_id = ?`, id, userID)

	f, err := scanFast(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// ListFasts returns the user's fasts by creation time, newest first.
func (s *Store) ListFasts(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	if limit <= 0 {
		limit = -1 // SQLite: no limit
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions
		WHERE user_id = ? ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFast)
}

// ListCompletedFasts returns the user's stopped fasts by creation time, newest first.
func (s *Store) ListCompletedFasts(ctx context.Context, userID string, limit int) ([]*domain.FastingSession, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions
		WHERE user_id = ? AND is_active = 0 ORDER BY created_at DESC, id DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFast)
}

// ListFastsSince returns fasts that started at or after since, newest first.
func (s *Store) ListFastsSince(ctx context.Context, userID string, since time.Time) ([]*domain.FastingSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions
		WHERE user_id = ? AND start_time >= ? ORDER BY start_time DESC`, userID, formatTime(since))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFast)
}

// ListActiveFasts returns every running fast across users.
func (s *Store) ListActiveFasts(ctx context.Context) ([]*domain.FastingSession, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+fastColumns+` FROM fasting_sessions WHERE is_active = 1`)
	if err != nil {
		return nil, err
	}
	return collect(rows, scanFast)
}

// CreateFast inserts a fast. The partial unique index on active fasts turns a second
// concurrent start into store.ErrAlreadyExists.
func (s *Store) CreateFast(ctx context.Context, f *domain.FastingSession) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO fasting_sessions (
			id, user_id, created_at, updated_at, start_time, end_time,
			duration, goal_hours, goal_reached, is_active, notes
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		f.ID,
		f.UserID,
		formatTime(f.CreatedAt),
		formatTime(f.UpdatedAt),
		formatTime(f.StartTime),
		nullTimeString(f.EndTime),
		f.Duration,
		f.GoalHours,
		boolToInt(f.GoalReached),
		boolToInt(f.IsActive),
		f.Notes,
	)
	if isUniqueViolation(err) {
		return store.ErrAlreadyExists
	}
	return err
}

// CompleteFast writes the final state of a stopped fast. Only a row that is still
// active is updated, so duration and goal_reached are written once.
func (s *Store) CompleteFast(ctx context.Context, f *domain.FastingSession) error {
	result, err := s.db.ExecContext(ctx, `
		UPDATE fasting_sessions SET
			updated_at = ?,
			end_time = ?,
			duration = ?,
			goal_reached = ?,
			is_active = 0,
			notes = ?
		WHERE id = ? AND user_id = ? AND is_active = 1`,
		formatTime(f.UpdatedAt),
		nullTimeString(f.EndTime),
		f.Duration,
		boolToInt(f.GoalReached),
		f.Notes,
		f.ID,
		f.UserID,
	)
	if err != nil {
		return err
	}
	return expectOne(result)
}

// UpdateFastGoal changes the goal of the user's active fast and returns it.
func (s *Store) UpdateFastGoal(ctx context.Context, userID string, goalHours float64) (*domain.FastingSession, error) {
	row := s.db.QueryRowContext(ctx, `
		UPDATE fasting_sessions SET goal_hours = ?, updated_at = ?
		WHERE user_id = ? AND is_active = 1
		RETURNING `+fastColumns,
		goalHours, formatTime(time.Now()), userID)

	f, err := scanFast(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

// DeleteFast removes one of the user's fasts and returns what was deleted.
func (s *Store) DeleteFast(ctx context.Context, userID, id string) (*domain.FastingSession, error) {
	row := s.db.QueryRowContext(ctx,
		`DELETE FROM fasting_sessions WHERE id = ? AND user_id = ? RETURNING `+fastColumns,
		id, userID)

	f, err := scanFast(row)
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}
