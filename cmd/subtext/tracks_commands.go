package main

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"subtext/internal/catalog"
	"subtext/internal/config"
)

func newTracksCommand(ctx *commandContext) *cobra.Command {
	tracksCmd := &cobra.Command{
		Use:   "tracks",
		Short: "Inspect and maintain the track catalog",
	}

	tracksCmd.AddCommand(newTracksListCommand(ctx))
	tracksCmd.AddCommand(newTracksRetryCommand(ctx))
	tracksCmd.AddCommand(newTracksClearCommand(ctx))

	return tracksCmd
}

func newTracksListCommand(ctx *commandContext) *cobra.Command {
	var (
		statusFilters []string
		videoFilter   string
		limit         int
		jsonOutput    bool
	)

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List catalog tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				var (
					records []*catalog.TrackRecord
					err     error
				)
				switch {
				case strings.TrimSpace(videoFilter) != "":
					records, err = store.ListByVideo(cmd.Context(), strings.TrimSpace(videoFilter))
				case len(statusFilters) > 0:
					statuses := make([]catalog.Status, 0, len(statusFilters))
					for _, raw := range statusFilters {
						status, ok := catalog.ParseStatus(raw)
						if !ok {
							return fmt.Errorf("unknown status %q", raw)
						}
						statuses = append(statuses, status)
					}
					records, err = store.ListByStatus(cmd.Context(), statuses...)
				default:
					records, err = store.ListRecent(cmd.Context(), limit)
				}
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeTrackListJSON(cmd, records)
				}
				out := cmd.OutOrStdout()
				if len(records) == 0 {
					fmt.Fprintln(out, "No tracks in the catalog")
					return nil
				}
				fmt.Fprintln(out, renderTable(
					[]string{"ID", "Video", "Track", "Status", "Cues", "Chunks", "Updated", "Detail"},
					buildTrackRows(records),
					0, 4, 5,
				))
				return nil
			})
		},
	}

	cmd.Flags().StringSliceVarP(&statusFilters, "status", "s", nil, "Filter by track status (repeatable)")
	cmd.Flags().StringVar(&videoFilter, "video", "", "Show tracks for one video id")
	cmd.Flags().IntVar(&limit, "limit", 50, "Maximum rows without filters")
	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of a table")
	return cmd
}

func buildTrackRows(records []*catalog.TrackRecord) [][]string {
	rows := make([][]string, 0, len(records))
	for _, record := range records {
		detail := record.ErrorMessage
		if detail == "" {
			detail = record.SkipReason
		}
		rows = append(rows, []string{
			strconv.FormatInt(record.ID, 10),
			record.VideoID,
			record.Label(),
			string(record.Status),
			strconv.FormatInt(record.CueCount, 10),
			strconv.FormatInt(record.ChunkCount, 10),
			record.UpdatedAt.Local().Format(time.RFC3339),
			detail,
		})
	}
	return rows
}

func writeTrackListJSON(cmd *cobra.Command, records []*catalog.TrackRecord) error {
	type jsonTrack struct {
		ID           int64  `json:"id"`
		VideoID      string `json:"video_id"`
		Language     string `json:"language"`
		Source       string `json:"source"`
		Status       string `json:"status"`
		CueCount     int64  `json:"cue_count"`
		ChunkCount   int64  `json:"chunk_count"`
		SubtitlePath string `json:"subtitle_path,omitempty"`
		SkipReason   string `json:"skip_reason,omitempty"`
		Error        string `json:"error,omitempty"`
		RunID        string `json:"run_id,omitempty"`
		UpdatedAt    string `json:"updated_at"`
	}
	items := make([]jsonTrack, 0, len(records))
	for _, record := range records {
		items = append(items, jsonTrack{
			ID:           record.ID,
			VideoID:      record.VideoID,
			Language:     record.Language,
			Source:       record.Source,
			Status:       string(record.Status),
			CueCount:     record.CueCount,
			ChunkCount:   record.ChunkCount,
			SubtitlePath: record.SubtitlePath,
			SkipReason:   record.SkipReason,
			Error:        record.ErrorMessage,
			RunID:        record.RunID,
			UpdatedAt:    record.UpdatedAt.UTC().Format(time.RFC3339),
		})
	}
	return writeJSON(cmd, map[string]any{"tracks": items})
}

func newTracksRetryCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "retry [video-id]",
		Short: "Move failed tracks back to resolved",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			videoID := ""
			if len(args) == 1 {
				videoID = strings.TrimSpace(args[0])
			}
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				updated, err := store.RetryFailed(cmd.Context(), videoID)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Retried %d failed tracks\n", updated)
				return nil
			})
		},
	}
	return cmd
}

func newTracksClearCommand(ctx *commandContext) *cobra.Command {
	var (
		clearFailed bool
		clearDone   bool
		clearAll    bool
	)

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Remove catalog tracks",
		RunE: func(cmd *cobra.Command, args []string) error {
			selected := 0
			for _, flag := range []bool{clearFailed, clearDone, clearAll} {
				if flag {
					selected++
				}
			}
			if selected != 1 {
				return errors.New("specify exactly one of --failed, --done, or --all")
			}
			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				var (
					removed int64
					err     error
					label   string
				)
				switch {
				case clearFailed:
					removed, err = store.ClearFailed(cmd.Context())
					label = "failed tracks"
				case clearDone:
					removed, err = store.ClearDone(cmd.Context())
					label = "done tracks"
				default:
					removed, err = store.ClearAll(cmd.Context())
					label = "tracks"
				}
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared %d %s\n", removed, label)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&clearFailed, "failed", false, "Remove only failed tracks")
	cmd.Flags().BoolVar(&clearDone, "done", false, "Remove only done tracks")
	cmd.Flags().BoolVar(&clearAll, "all", false, "Remove every track")
	return cmd
}
