package catalog

import (
	"context"
	"fmt"
	"time"
)

// Stats returns the number of tracks in each status.
func (s *Store) Stats(ctx context.Context) (map[Status]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT status, COUNT(*) FROM caption_tracks GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("query stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[Status]int, len(allStatuses))
	for rows.Next() {
		var (
			statusStr string
			count     int
		)
		if err := rows.Scan(&statusStr, &count); err != nil {
			return nil, fmt.Errorf("scan stats: %w", err)
		}
		stats[Status(statusStr)] = count
	}
	return stats, rows.Err()
}

// Health summarizes the catalog for status displays and preflight checks.
func (s *Store) Health(ctx context.Context) (HealthSummary, error) {
	stats, err := s.Stats(ctx)
	if err != nil {
		return HealthSummary{}, err
	}

	summary := HealthSummary{}
	for status, count := range stats {
		summary.Total += count
		switch status {
		case StatusDone:
			summary.Done += count
		case StatusFailed:
			summary.Failed += count
		case StatusSkippedIndex:
			summary.SkippedIdx += count
		default:
			summary.InFlight += count
		}
	}
	return summary, nil
}

// RetryFailed moves failed tracks back to resolved so the next processing
// run picks them up again. Returns the number of tracks flipped.
func (s *Store) RetryFailed(ctx context.Context, videoID string) (int64, error) {
	query := `UPDATE caption_tracks
        SET status = ?, error_message = NULL, skip_reason = NULL, updated_at = ?
        WHERE status = ?`
	args := []any{StatusResolved, time.Now().UTC().Format(time.RFC3339Nano), StatusFailed}
	if videoID != "" {
		query += ` AND video_id = ?`
		args = append(args, videoID)
	}

	res, err := s.execWithRetry(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("retry failed tracks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

// ClearFailed removes all failed tracks.
func (s *Store) ClearFailed(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusFailed)
}

// ClearDone removes all completed tracks.
func (s *Store) ClearDone(ctx context.Context) (int64, error) {
	return s.clearByStatus(ctx, StatusDone)
}

// ClearAll removes every track from the catalog.
func (s *Store) ClearAll(ctx context.Context) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM caption_tracks`)
	if err != nil {
		return 0, fmt.Errorf("clear tracks: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}

func (s *Store) clearByStatus(ctx context.Context, status Status) (int64, error) {
	res, err := s.execWithRetry(ctx, `DELETE FROM caption_tracks WHERE status = ?`, status)
	if err != nil {
		return 0, fmt.Errorf("clear %s tracks: %w", status, err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected: %w", err)
	}
	return affected, nil
}
