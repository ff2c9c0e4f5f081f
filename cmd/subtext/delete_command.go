package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"subtext/internal/catalog"
	"subtext/internal/config"
	"subtext/internal/mediameta"
	"subtext/internal/search"
	"subtext/internal/storage"
)

func newDeleteCommand(ctx *commandContext) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete <media-path>...",
		Short: "Remove subtitle sidecars, indexed chunks, and catalog rows for videos",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				var indexClient *search.Client
				if cfg.Index.Enabled {
					client, err := search.New(search.FromSettings(cfg.Index))
					if err != nil {
						return err
					}
					indexClient = client
				}

				out := cmd.OutOrStdout()
				for _, arg := range args {
					mediaPath, err := config.ExpandPath(arg)
					if err != nil {
						return err
					}
					info, err := mediameta.LoadForMedia(mediaPath)
					if err != nil {
						return fmt.Errorf("resolve video for %s: %w", mediaPath, err)
					}

					records, err := store.ListByVideo(cmd.Context(), info.ID)
					if err != nil {
						return err
					}
					languages := collectLanguages(cfg.Captions.Languages, records)

					removed, err := storage.NewStore().Remove(mediaPath, languages)
					if err != nil {
						return fmt.Errorf("remove subtitles for %s: %w", info.ID, err)
					}
					for _, path := range removed {
						fmt.Fprintf(out, "Removed %s\n", path)
					}

					if indexClient != nil {
						deleted, err := indexClient.DeleteByVideo(cmd.Context(), info.ID)
						if err != nil {
							return fmt.Errorf("purge index for %s: %w", info.ID, err)
						}
						fmt.Fprintf(out, "Purged %d indexed chunks for %s\n", deleted, info.ID)
					}

					if err := store.Reset(cmd.Context(), info.ID); err != nil {
						return fmt.Errorf("clear catalog for %s: %w", info.ID, err)
					}
					fmt.Fprintf(out, "Cleared catalog rows for %s\n", info.ID)
				}
				return nil
			})
		},
	}
	return cmd
}

// collectLanguages joins the configured languages with every language the
// catalog has seen for the video, so delete reaches sidecars written under
// an older language policy.
func collectLanguages(configured []string, records []*catalog.TrackRecord) []string {
	seen := make(map[string]struct{}, len(configured)+len(records))
	languages := make([]string, 0, len(configured)+len(records))
	add := func(lang string) {
		if lang == "" {
			return
		}
		if _, ok := seen[lang]; ok {
			return
		}
		seen[lang] = struct{}{}
		languages = append(languages, lang)
	}
	for _, lang := range configured {
		add(lang)
	}
	for _, record := range records {
		add(record.Language)
	}
	return languages
}
