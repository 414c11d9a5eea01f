package sqlite

import (
	"context"
	"time"

	"github.com/fastlogapp/fastlog-server/internal/domain"
)

const hydrationColumns = `id, user_id, amount, goal, timestamp`

func scanHydration(row scanner) (*domain.HydrationLog, error) {
	var (
		l  domain.HydrationLog
		ts string
	)
	if err := row.Scan(&l.ID, &l.UserID, &l.Amount, &l.Goal, &ts); err != nil {
		return nil, err
	}
	var err error
	if l.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateHydration inserts a water intake log.
func (s *Store) CreateHydration(ctx context.Context, l *domain.HydrationLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO hydration_logs (`+hydrationColumns+`) VALUES (?, ?, ?, ?, ?)`,
		l.ID, l.UserID, l.Amount, l.Goal, formatTime(l.Timestamp))
	return err
}

// ListHydration returns logs with from <= timestamp <= to, newest first.
func (s *Store) ListHydration(ctx context.Context, userID string, from, to time.Time) ([]*domain.HydrationLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+hydrationColumns+` FROM hydration_logs
		WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC`,
		userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanHydration)
}

// LatestHydration returns the user's most recent log on any day.
func (s *Store) LatestHydration(ctx context.Context, userID string) (*domain.HydrationLog, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+hydrationColumns+` FROM hydration_logs
		WHERE user_id = ? ORDER BY timestamp DESC LIMIT 1`, userID)

	l, err := scanHydration(row)
	if err != nil {
		return nil, notFound(err)
	}
	return l, nil
}

// DeleteHydration removes one of the user's logs.
func (s *Store) DeleteHydration(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM hydration_logs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}

const moodColumns = `id, user_id, mood, energy, notes, timestamp`

func scanMood(row scanner) (*domain.MoodLog, error) {
	var (
		l    domain.MoodLog
		mood string
		ts   string
	)
	if err := row.Scan(&l.ID, &l.UserID, &mood, &l.Energy, &l.Notes, &ts); err != nil {
		return nil, err
	}
	l.Mood = domain.Mood(mood)
	var err error
	if l.Timestamp, err = parseTime(ts); err != nil {
		return nil, err
	}
	return &l, nil
}

// CreateMood inserts a mood log.
func (s *Store) CreateMood(ctx context.Context, l *domain.MoodLog) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO mood_logs (`+moodColumns+`) VALUES (?, ?, ?, ?, ?, ?)`,
		l.ID, l.UserID, string(l.Mood), l.Energy, l.Notes, formatTime(l.Timestamp))
	return err
}

// ListMoods returns logs with from <= timestamp <= to, newest first.
func (s *Store) ListMoods(ctx context.Context, userID string, from, to time.Time) ([]*domain.MoodLog, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+moodColumns+` FROM mood_logs
		WHERE user_id = ? AND timestamp >= ? AND timestamp <= ?
		ORDER BY timestamp DESC`,
		userID, formatTime(from), formatTime(to))
	if err != nil {
		return nil, err
	}
	return collect(rows, scanMood)
}

// DeleteMood removes one of the user's mood logs.
func (s *Store) DeleteMood(ctx context.Context, userID, id string) error {
	result, err := s.db.ExecContext(ctx,
		`DELETE FROM mood_logs WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return err
	}
	return expectOne(result)
}
