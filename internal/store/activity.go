package store

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// LogActivity appends one entry to the activity log.
func (s *Store) LogActivity(ctx context.Context, actionType, profileID, profileName, details string) error {
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO activity_log (id, timestamp, action_type, profile_id, profile_name, details)
		VALUES (?, ?, ?, ?, ?, ?)`,
		uuid.NewString(), time.Now().UnixMilli(), actionType, profileID, profileName, details)
	if err != nil {
		return fmt.Errorf("store: log activity: %w", err)
	}
	return nil
}

// ListActivity returns the most recent activity entries up to limit.
func (s *Store) ListActivity(ctx context.Context, limit int) ([]*ActivityEntry, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT id, timestamp, action_type, profile_id, profile_name, details
		FROM activity_log ORDER BY timestamp DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []*ActivityEntry
	for rows.Next() {
		var e ActivityEntry
		var pid, pname *string
		if err := rows.Scan(&e.ID, &e.Timestamp, &e.ActionType, &pid, &pname, &e.Details); err != nil {
			return nil, fmt.Errorf("store: scan activity: %w", err)
		}
		if pid != nil {
			e.ProfileID = *pid
		}
		if pname != nil {
			e.ProfileName = *pname
		}
		entries = append(entries, &e)
	}
	return entries, rows.Err()
}

// BumpDailyStat adds deltas to today's counters, creating the row as needed.
func (s *Store) BumpDailyStat(ctx context.Context, likesReceived, matches, autolikes int) error {
	today := time.Now().Format("2006-01-02")
	_, err := s.DB.ExecContext(ctx,
		`INSERT INTO daily_stats (date, likes_received, matches, autolikes)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(date) DO UPDATE SET
			likes_received = likes_received + excluded.likes_received,
			matches = matches + excluded.matches,
			autolikes = autolikes + excluded.autolikes`,
		today, likesReceived, matches, autolikes)
	if err != nil {
		return fmt.Errorf("store: bump daily stats: %w", err)
	}
	return nil
}

// DailyStatsRange returns the last n days of counters, most recent first.
func (s *Store) DailyStatsRange(ctx context.Context, days int) ([]*DailyStats, error) {
	if days <= 0 {
		days = 7
	}
	rows, err := s.DB.QueryContext(ctx,
		`SELECT date, likes_received, matches, autolikes
		FROM daily_stats ORDER BY date DESC LIMIT ?`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var stats []*DailyStats
	for rows.Next() {
		var d DailyStats
		if err := rows.Scan(&d.Date, &d.LikesReceived, &d.Matches, &d.Autolikes); err != nil {
			return nil, fmt.Errorf("store: scan daily stats: %w", err)
		}
		stats = append(stats, &d)
	}
	return stats, rows.Err()
}
