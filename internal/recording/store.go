package recording

import (
	"context"
	"errors"
	"time"

	"backend-runaway/internal/db"
)

// ErrStoreUnavailable is returned when the service runs without a
// database connection.
var ErrStoreUnavailable = errors.New("activity store unavailable")

// ActivityStore persists finished activities. The route travels as the
// encoded polyline string; readers decode it with the matching codec.
type ActivityStore struct {
	db db.Querier
}

func NewActivityStore(q db.Querier) *ActivityStore {
	return &ActivityStore{db: q}
}

func (s *ActivityStore) SaveActivity(ctx context.Context, a Activity) error {
	if s == nil || s.db == nil {
		return ErrStoreUnavailable
	}
	_, err := s.db.Exec(ctx, `
		INSERT INTO activities (id, activity_type, name, started_at, ended_at, distance_m, active_seconds, avg_speed_mps, point_count, route)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10)
	`, a.Session.ID, a.Session.ActivityType, a.Session.Name, a.Session.StartedAt, a.Session.EndedAt,
		a.Metrics.TotalDistanceM, a.Metrics.ActiveSeconds, a.Metrics.AvgSpeedMps, a.Metrics.PointCount, a.Polyline)
	return err
}

// SavedActivity is the read model for consumers that fetch a stored
// activity back, route string included.
type SavedActivity struct {
	ID            string    `json:"id"`
	ActivityType  string    `json:"activity_type"`
	Name          string    `json:"name"`
	StartedAt     time.Time `json:"started_at"`
	EndedAt       time.Time `json:"ended_at"`
	DistanceM     float64   `json:"distance_m"`
	ActiveSeconds float64   `json:"active_seconds"`
	AvgSpeedMps   float64   `json:"avg_speed_mps"`
	PointCount    int       `json:"point_count"`
	Route         string    `json:"route"`
}

func (s *ActivityStore) GetActivity(ctx context.Context, id string) (SavedActivity, error) {
	var a SavedActivity
	if s == nil || s.db == nil {
		return a, ErrStoreUnavailable
	}
	row := s.db.QueryRow(ctx, `
		SELECT id, activity_type, name, started_at, ended_at, distance_m, active_seconds, avg_speed_mps, point_count, COALESCE(route,'')
		FROM activities WHERE id=$1
	`, id)
	if err := row.Scan(&a.ID, &a.ActivityType, &a.Name, &a.StartedAt, &a.EndedAt,
		&a.DistanceM, &a.ActiveSeconds, &a.AvgSpeedMps, &a.PointCount, &a.Route); err != nil {
		return SavedActivity{}, err
	}
	return a, nil
}

func (s *ActivityStore) ListActivities(ctx context.Context, limit int) ([]SavedActivity, error) {
	if s == nil || s.db == nil {
		return nil, ErrStoreUnavailable
	}
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(ctx, `
		SELECT id, activity_type, name, started_at, ended_at, distance_m, active_seconds, avg_speed_mps, point_count, COALESCE(route,'')
		FROM activities ORDER BY started_at DESC LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SavedActivity
	for rows.Next() {
		var a SavedActivity
		if err := rows.Scan(&a.ID, &a.ActivityType, &a.Name, &a.StartedAt, &a.EndedAt,
			&a.DistanceM, &a.ActiveSeconds, &a.AvgSpeedMps, &a.PointCount, &a.Route); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, nil
}
