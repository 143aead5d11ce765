// Package persistence contains the stored-procedure-backed collaborator
// clients for the dispatch database. Each client is a thin pass-through: the
// business logic lives in the procedures, the Go side only binds parameters
// and maps results.
package persistence

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/naveenkultimatevirtualemployee/jnjbackendlive-sub004/pkg/live"
)

// TrackingStore persists live GPS state through the tracking procedures.
type TrackingStore struct {
	pool   *pgxpool.Pool
	logger zerolog.Logger
}

// NewTrackingStore creates a tracking collaborator over the given pool.
func NewTrackingStore(pool *pgxpool.Pool, logger zerolog.Logger) (*TrackingStore, error) {
	if pool == nil {
		return nil, errors.New("pgx pool cannot be nil")
	}
	return &TrackingStore{
		pool:   pool,
		logger: logger.With().Str("component", "TrackingStore").Logger(),
	}, nil
}

// SaveCoordinateSample records one GPS fix for an assignment.
func (s *TrackingStore) SaveCoordinateSample(ctx context.Context, sample live.CoordinateSample) error {
	_, err := s.pool.Exec(ctx,
		`SELECT sp_insert_live_coordinates($1, $2, $3, $4, $5)`,
		sample.AssignmentID, sample.TrackID, sample.LatLong, sample.IsDeadMile, sample.CurrentButtonID,
	)
	if err != nil {
		return fmt.Errorf("insert live coordinates for assignment %d: %w", sample.AssignmentID, err)
	}
	return nil
}

// GetStoredPath fetches the previously stored direction path for an
// assignment. A missing path is not an error; an empty DirectionPath is
// returned instead.
func (s *TrackingStore) GetStoredPath(ctx context.Context, assignmentID int64) (live.DirectionPath, error) {
	path := live.DirectionPath{AssignmentID: assignmentID}
	err := s.pool.QueryRow(ctx,
		`SELECT path_json, eta FROM sp_get_direction_path($1)`,
		assignmentID,
	).Scan(&path.Path, &path.ETA)
	if errors.Is(err, pgx.ErrNoRows) {
		return live.DirectionPath{AssignmentID: assignmentID}, nil
	}
	if err != nil {
		return live.DirectionPath{}, fmt.Errorf("fetch direction path for assignment %d: %w", assignmentID, err)
	}
	return path, nil
}

// SavePath inserts or updates the direction path for an assignment.
func (s *TrackingStore) SavePath(ctx context.Context, path live.DirectionPath, update bool) error {
	proc := `SELECT sp_insert_direction_path($1, $2, $3)`
	if update {
		proc = `SELECT sp_update_direction_path($1, $2, $3)`
	}
	if _, err := s.pool.Exec(ctx, proc, path.AssignmentID, path.Path, path.ETA); err != nil {
		return fmt.Errorf("save direction path for assignment %d (update=%t): %w", path.AssignmentID, update, err)
	}
	return nil
}
