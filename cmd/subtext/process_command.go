package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"time"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"subtext/internal/catalog"
	"subtext/internal/config"
	"subtext/internal/events"
	"subtext/internal/fetch"
	"subtext/internal/notifications"
	"subtext/internal/pipeline"
	"subtext/internal/preflight"
	"subtext/internal/search"
	"subtext/internal/storage"
)

const lockFileName = "subtext.lock"

func newProcessCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "process <media-path|directory>...",
		Short: "Fetch, store, and index captions for archived videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()

			if len(cfg.Captions.Languages) == 0 {
				fmt.Fprintln(out, "Captions disabled (captions.languages is empty)")
				return nil
			}

			media, err := discoverMedia(args)
			if err != nil {
				return err
			}
			if len(media) == 0 {
				fmt.Fprintln(out, "No media files with metadata sidecars found")
				return nil
			}

			logger, err := ctx.logger()
			if err != nil {
				return err
			}

			lock := flock.New(filepath.Join(cfg.Paths.StateDir, lockFileName))
			locked, err := lock.TryLock()
			if err != nil {
				return fmt.Errorf("acquire process lock: %w", err)
			}
			if !locked {
				return errors.New("another subtext run is already processing this catalog")
			}
			defer func() { _ = lock.Unlock() }()

			return ctx.withStore(func(_ *config.Config, store *catalog.Store) error {
				checks := preflight.RunAll(cmd.Context(), cfg, store)
				if !preflight.AllPassed(checks) {
					fmt.Fprintln(out, renderChecks(checks))
					return errors.New("preflight checks failed")
				}

				var indexer pipeline.Indexer
				if cfg.Index.Enabled {
					client, err := search.New(search.FromSettings(cfg.Index))
					if err != nil {
						return err
					}
					indexer = client
				}

				publisher, err := events.NewPublisher(cfg, logger)
				if err != nil {
					return err
				}
				defer publisher.Close()

				orchestrator, err := pipeline.New(pipeline.Options{
					Config:    cfg,
					Store:     store,
					Fetcher:   fetch.New(fetch.FromSettings(cfg.Fetch)),
					Storage:   storage.NewStore(),
					Indexer:   indexer,
					Publisher: publisher,
					Logger:    logger,
				})
				if err != nil {
					return err
				}
				runner, err := pipeline.NewRunner(orchestrator, notifications.NewService(cfg), logger)
				if err != nil {
					return err
				}

				summary := runner.Run(cmd.Context(), media)

				if jsonOutput {
					if err := writeRunSummaryJSON(cmd, summary); err != nil {
						return err
					}
				} else {
					printRunSummary(out, summary)
				}

				if problems := summary.Failed + summary.VideoErrors; problems > 0 {
					return fmt.Errorf("run finished with %d failures", problems)
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit the run summary as JSON")
	return cmd
}

func printRunSummary(out io.Writer, summary pipeline.RunSummary) {
	rows := [][]string{
		{"Videos", strconv.Itoa(len(summary.Videos))},
		{"Tracks", strconv.Itoa(summary.TrackTotal())},
		{"Indexed", strconv.Itoa(summary.Indexed)},
		{"Skipped index", strconv.Itoa(summary.Skipped)},
		{"Failed", strconv.Itoa(summary.Failed)},
	}
	fmt.Fprintln(out, renderTable([]string{"Outcome", "Count"}, rows, 1))
	fmt.Fprintf(out, "Run %s finished in %s\n", summary.RunID, summary.Duration.Round(time.Millisecond))

	for _, video := range summary.Videos {
		if video.Err != nil {
			fmt.Fprintf(out, "  %s: %v\n", video.MediaPath, video.Err)
		}
		for _, track := range video.Tracks {
			if track.Record == nil || track.Record.Status != catalog.StatusFailed {
				continue
			}
			fmt.Fprintf(out, "  %s %s: %s\n", video.VideoID, track.Record.Label(), track.Record.ErrorMessage)
		}
	}
}

func writeRunSummaryJSON(cmd *cobra.Command, summary pipeline.RunSummary) error {
	type jsonTrack struct {
		Language string `json:"language"`
		Source   string `json:"source"`
		Status   string `json:"status"`
		Reason   string `json:"reason,omitempty"`
		Error    string `json:"error,omitempty"`
	}
	type jsonVideo struct {
		MediaPath string      `json:"media_path"`
		VideoID   string      `json:"video_id,omitempty"`
		Error     string      `json:"error,omitempty"`
		Tracks    []jsonTrack `json:"tracks,omitempty"`
	}

	videos := make([]jsonVideo, 0, len(summary.Videos))
	for _, video := range summary.Videos {
		jv := jsonVideo{MediaPath: video.MediaPath, VideoID: video.VideoID}
		if video.Err != nil {
			jv.Error = video.Err.Error()
		}
		for _, track := range video.Tracks {
			if track.Record == nil {
				continue
			}
			jv.Tracks = append(jv.Tracks, jsonTrack{
				Language: track.Record.Language,
				Source:   track.Record.Source,
				Status:   string(track.Record.Status),
				Reason:   track.Record.SkipReason,
				Error:    track.Record.ErrorMessage,
			})
		}
		videos = append(videos, jv)
	}

	return writeJSON(cmd, map[string]any{
		"run_id":   summary.RunID,
		"duration": summary.Duration.String(),
		"indexed":  summary.Indexed,
		"skipped":  summary.Skipped,
		"failed":   summary.Failed,
		"videos":   videos,
	})
}
