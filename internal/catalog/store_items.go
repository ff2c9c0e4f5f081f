package catalog

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"
)

const trackColumns = "id, video_id, media_path, language, source, fetch_url, fetch_format, status, error_message, skip_reason, subtitle_path, cue_count, chunk_count, run_id, created_at, updated_at"

func scanTrack(scanner interface{ Scan(dest ...any) error }) (*TrackRecord, error) {
	var (
		id           int64
		videoID      string
		mediaPath    sql.NullString
		language     string
		source       string
		fetchURL     sql.NullString
		fetchFormat  sql.NullString
		statusStr    string
		errorMessage sql.NullString
		skipReason   sql.NullString
		subtitlePath sql.NullString
		cueCount     sql.NullInt64
		chunkCount   sql.NullInt64
		runID        sql.NullString
		createdRaw   sql.NullString
		updatedRaw   sql.NullString
	)

	if err := scanner.Scan(
		&id,
		&videoID,
		&mediaPath,
		&language,
		&source,
		&fetchURL,
		&fetchFormat,
		&statusStr,
		&errorMessage,
		&skipReason,
		&subtitlePath,
		&cueCount,
		&chunkCount,
		&runID,
		&createdRaw,
		&updatedRaw,
	); err != nil {
		return nil, err
	}

	record := &TrackRecord{
		ID:           id,
		VideoID:      videoID,
		MediaPath:    mediaPath.String,
		Language:     language,
		Source:       source,
		FetchURL:     fetchURL.String,
		FetchFormat:  fetchFormat.String,
		Status:       Status(statusStr),
		ErrorMessage: errorMessage.String,
		SkipReason:   skipReason.String,
		SubtitlePath: subtitlePath.String,
		CueCount:     cueCount.Int64,
		ChunkCount:   chunkCount.Int64,
		RunID:        runID.String,
	}

	if created, err := parseTimeString(createdRaw.String); err == nil {
		record.CreatedAt = created
	}
	if updated, err := parseTimeString(updatedRaw.String); err == nil {
		record.UpdatedAt = updated
	}
	return record, nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func parseTimeString(value string) (time.Time, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return time.Time{}, errors.New("empty timestamp")
	}
	return time.Parse(time.RFC3339Nano, trimmed)
}

// Insert persists a freshly resolved track. VideoID, Language, Source, and
// Status must be set by the caller.
func (s *Store) Insert(ctx context.Context, record *TrackRecord) (*TrackRecord, error) {
	if record == nil {
		return nil, errors.New("record is nil")
	}
	if record.VideoID == "" || record.Language == "" || record.Source == "" {
		return nil, errors.New("video id, language, and source are required")
	}
	if record.Status == "" {
		record.Status = StatusResolved
	}

	timestamp := time.Now().UTC().Format(time.RFC3339Nano)
	res, err := s.execWithRetry(
		ctx,
		`INSERT INTO caption_tracks (
            video_id, media_path, language, source, fetch_url, fetch_format,
            status, error_message, skip_reason, subtitle_path,
            cue_count, chunk_count, run_id, created_at, updated_at
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.VideoID,
		nullableString(record.MediaPath),
		record.Language,
		record.Source,
		nullableString(record.FetchURL),
		nullableString(record.FetchFormat),
		record.Status,
		nullableString(record.ErrorMessage),
		nullableString(record.SkipReason),
		nullableString(record.SubtitlePath),
		record.CueCount,
		record.ChunkCount,
		nullableString(record.RunID),
		timestamp,
		timestamp,
	)
	if err != nil {
		return nil, fmt.Errorf("insert track: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("last insert id: %w", err)
	}

	return s.GetByID(ctx, id)
}

// GetByID fetches a track record by identifier.
func (s *Store) GetByID(ctx context.Context, id int64) (*TrackRecord, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+trackColumns+` FROM caption_tracks WHERE id = ?`, id)
	record, err := scanTrack(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get track: %w", err)
	}
	return record, nil
}

// Update persists changes to an existing track record.
func (s *Store) Update(ctx context.Context, record *TrackRecord) error {
	if record == nil {
		return errors.New("record is nil")
	}
	record.UpdatedAt = time.Now().UTC()
	if err := s.execWithoutResultRetry(
		ctx,
		`UPDATE caption_tracks
         SET video_id = ?, media_path = ?, language = ?, source = ?,
             fetch_url = ?, fetch_format = ?, status = ?, error_message = ?,
             skip_reason = ?, subtitle_path = ?, cue_count = ?, chunk_count = ?,
             run_id = ?, updated_at = ?
         WHERE id = ?`,
		record.VideoID,
		nullableString(record.MediaPath),
		record.Language,
		record.Source,
		nullableString(record.FetchURL),
		nullableString(record.FetchFormat),
		record.Status,
		nullableString(record.ErrorMessage),
		nullableString(record.SkipReason),
		nullableString(record.SubtitlePath),
		record.CueCount,
		record.ChunkCount,
		nullableString(record.RunID),
		record.UpdatedAt.Format(time.RFC3339Nano),
		record.ID,
	); err != nil {
		return fmt.Errorf("update track: %w", err)
	}
	return nil
}

// ListByVideo returns all tracks for a video ordered by language then source.
func (s *Store) ListByVideo(ctx context.Context, videoID string) ([]*TrackRecord, error) {
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM caption_tracks WHERE video_id = ? ORDER BY language, source`,
		videoID,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks by video: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// ListByStatus returns all tracks currently in any of the given statuses.
func (s *Store) ListByStatus(ctx context.Context, statuses ...Status) ([]*TrackRecord, error) {
	if len(statuses) == 0 {
		return nil, nil
	}
	placeholders := make([]string, len(statuses))
	args := make([]any, len(statuses))
	for i, status := range statuses {
		placeholders[i] = "?"
		args[i] = status
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM caption_tracks WHERE status IN (`+strings.Join(placeholders, ", ")+`) ORDER BY id`,
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("list tracks by status: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// ListRecent returns the most recently updated tracks, newest first.
func (s *Store) ListRecent(ctx context.Context, limit int) ([]*TrackRecord, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.QueryContext(
		ctx,
		`SELECT `+trackColumns+` FROM caption_tracks ORDER BY updated_at DESC, id DESC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list recent tracks: %w", err)
	}
	defer rows.Close()
	return collectTracks(rows)
}

// Reset removes every track recorded for a video so a fresh run can insert
// new rows with stable semantics.
func (s *Store) Reset(ctx context.Context, videoID string) error {
	if strings.TrimSpace(videoID) == "" {
		return errors.New("video id is required")
	}
	if err := s.execWithoutResultRetry(ctx, `DELETE FROM caption_tracks WHERE video_id = ?`, videoID); err != nil {
		return fmt.Errorf("reset video tracks: %w", err)
	}
	return nil
}

func collectTracks(rows *sql.Rows) ([]*TrackRecord, error) {
	var records []*TrackRecord
	for rows.Next() {
		record, err := scanTrack(rows)
		if err != nil {
			return nil, fmt.Errorf("scan track: %w", err)
		}
		records = append(records, record)
	}
	return records, rows.Err()
}
