package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"
)

const profileColumns = `id, name, display_name, age, has_voted, photo, interests,
	education, height, smoking, drinking, exercise, pets, politics, religion,
	zodiac, dating_intentions, city, country, distance_short, online_status,
	is_verified, instagram_connected, spotify_track, first_seen, last_seen`

// UpsertProfile inserts a profile or, when the id already exists, refreshes
// every mutable field in place. first_seen is preserved on conflict and
// last_seen is always advanced, which makes the operation idempotent.
func (s *Store) UpsertProfile(ctx context.Context, p *Profile) error {
	now := time.Now().UnixMilli()
	if p.FirstSeen == 0 {
		p.FirstSeen = now
	}
	p.LastSeen = now

	interests, err := json.Marshal(p.Interests)
	if err != nil {
		return fmt.Errorf("store: marshal interests: %w", err)
	}
	if p.Interests == nil {
		interests = []byte("[]")
	}

	_, err = s.DB.ExecContext(ctx,
		`INSERT INTO profiles (`+profileColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name=excluded.name, display_name=excluded.display_name,
			age=excluded.age, has_voted=excluded.has_voted,
			photo=excluded.photo, interests=excluded.interests,
			education=excluded.education, height=excluded.height,
			smoking=excluded.smoking, drinking=excluded.drinking,
			exercise=excluded.exercise, pets=excluded.pets,
			politics=excluded.politics, religion=excluded.religion,
			zodiac=excluded.zodiac, dating_intentions=excluded.dating_intentions,
			city=excluded.city, country=excluded.country,
			distance_short=excluded.distance_short, online_status=excluded.online_status,
			is_verified=excluded.is_verified, instagram_connected=excluded.instagram_connected,
			spotify_track=excluded.spotify_track, last_seen=excluded.last_seen`,
		p.ID, p.Name, p.DisplayName, p.Age, p.HasVoted, p.Photo, string(interests),
		p.Education, p.Height, p.Smoking, p.Drinking, p.Exercise, p.Pets,
		p.Politics, p.Religion, p.Zodiac, p.DatingIntentions, p.City, p.Country,
		p.DistanceShort, p.OnlineStatus, p.IsVerified, p.InstagramConnected,
		p.SpotifyTrack, p.FirstSeen, p.LastSeen,
	)
	if err != nil {
		return fmt.Errorf("store: upsert profile %s: %w", p.ID, err)
	}
	return nil
}

// GetProfile retrieves a profile by ID, or nil when absent.
func (s *Store) GetProfile(ctx context.Context, id string) (*Profile, error) {
	row := s.DB.QueryRowContext(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE id = ?`, id)
	p, err := scanProfile(row.Scan)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return p, err
}

// ListProfiles returns all profiles, most recently seen first.
func (s *Store) ListProfiles(ctx context.Context) ([]*Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY last_seen DESC`)
}

// ListByVote returns profiles filtered by the has_voted flag, most recent first.
func (s *Store) ListByVote(ctx context.Context, voted bool) ([]*Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles WHERE has_voted = ? ORDER BY last_seen DESC`,
		voted)
}

// RecentProfiles returns the most recently seen profiles up to limit.
func (s *Store) RecentProfiles(ctx context.Context, limit int) ([]*Profile, error) {
	return s.queryProfiles(ctx,
		`SELECT `+profileColumns+` FROM profiles ORDER BY last_seen DESC LIMIT ?`, limit)
}

// CountStats returns aggregate profile counters.
func (s *Store) CountStats(ctx context.Context) (*Stats, error) {
	var st Stats
	queries := []struct {
		sql  string
		dest *int
	}{
		{`SELECT COUNT(*) FROM profiles`, &st.Total},
		{`SELECT COUNT(*) FROM profiles WHERE has_voted = 0`, &st.NewLikes},
		{`SELECT COUNT(*) FROM profiles WHERE has_voted = 1`, &st.Matches},
		{`SELECT COUNT(*) FROM profiles WHERE is_verified = 1`, &st.Verified},
		{`SELECT COUNT(*) FROM profiles WHERE instagram_connected = 1`, &st.WithInstagram},
		{`SELECT COUNT(*) FROM profiles WHERE interests != '[]' AND interests != ''`, &st.WithInterests},
	}
	for _, q := range queries {
		if err := s.DB.QueryRowContext(ctx, q.sql).Scan(q.dest); err != nil {
			return nil, fmt.Errorf("store: count stats: %w", err)
		}
	}
	return &st, nil
}

// ClearProfiles removes all stored profiles. The activity log is kept.
func (s *Store) ClearProfiles(ctx context.Context) error {
	_, err := s.DB.ExecContext(ctx, `DELETE FROM profiles`)
	return err
}

func (s *Store) queryProfiles(ctx context.Context, query string, args ...any) ([]*Profile, error) {
	rows, err := s.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var profiles []*Profile
	for rows.Next() {
		p, err := scanProfile(rows.Scan)
		if err != nil {
			return nil, err
		}
		profiles = append(profiles, p)
	}
	return profiles, rows.Err()
}

func scanProfile(scan func(dest ...any) error) (*Profile, error) {
	var p Profile
	var hasVoted, verified, instagram int
	var interests string
	err := scan(
		&p.ID, &p.Name, &p.DisplayName, &p.Age, &hasVoted, &p.Photo, &interests,
		&p.Education, &p.Height, &p.Smoking, &p.Drinking, &p.Exercise, &p.Pets,
		&p.Politics, &p.Religion, &p.Zodiac, &p.DatingIntentions, &p.City,
		&p.Country, &p.DistanceShort, &p.OnlineStatus, &verified, &instagram,
		&p.SpotifyTrack, &p.FirstSeen, &p.LastSeen,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("store: scan profile: %w", err)
	}
	p.HasVoted = hasVoted != 0
	p.IsVerified = verified != 0
	p.InstagramConnected = instagram != 0
	p.Interests = []string{}
	if interests != "" {
		if err := json.Unmarshal([]byte(interests), &p.Interests); err != nil {
			p.Interests = []string{}
		}
	}
	return &p, nil
}
