package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"subtext/internal/catalog"
	"subtext/internal/config"
	"subtext/internal/preflight"
)

var statusOrder = []catalog.Status{
	catalog.StatusResolved,
	catalog.StatusFetched,
	catalog.StatusParsed,
	catalog.StatusStored,
	catalog.StatusIndexed,
	catalog.StatusSkippedIndex,
	catalog.StatusDone,
	catalog.StatusFailed,
}

func newStatusCommand(ctx *commandContext) *cobra.Command {
	var jsonOutput bool

	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show environment checks and catalog health",
		RunE: func(cmd *cobra.Command, args []string) error {
			return ctx.withStore(func(cfg *config.Config, store *catalog.Store) error {
				checks := preflight.RunAll(cmd.Context(), cfg, store)
				stats, err := store.Stats(cmd.Context())
				if err != nil {
					return err
				}
				health, err := store.Health(cmd.Context())
				if err != nil {
					return err
				}

				if jsonOutput {
					return writeStatusJSON(cmd, checks, stats, health)
				}

				out := cmd.OutOrStdout()
				fmt.Fprintln(out, renderChecks(checks))

				rows := make([][]string, 0, len(statusOrder))
				for _, status := range statusOrder {
					count, ok := stats[status]
					if !ok {
						continue
					}
					rows = append(rows, []string{string(status), strconv.Itoa(count)})
				}
				if len(rows) == 0 {
					fmt.Fprintln(out, "Catalog is empty")
				} else {
					fmt.Fprintln(out, renderTable([]string{"Status", "Tracks"}, rows, 1))
				}
				fmt.Fprintf(out, "%d tracks total: %d done, %d failed, %d skipped index, %d in flight\n",
					health.Total, health.Done, health.Failed, health.SkippedIdx, health.InFlight)

				if !preflight.AllPassed(checks) {
					return fmt.Errorf("%d checks failed", countFailedChecks(checks))
				}
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&jsonOutput, "json", false, "Emit JSON instead of tables")
	return cmd
}

func renderChecks(checks []preflight.Result) string {
	rows := make([][]string, 0, len(checks))
	for _, check := range checks {
		state := "ok"
		if !check.Passed {
			state = "FAIL"
		}
		rows = append(rows, []string{check.Name, state, check.Detail})
	}
	return renderTable([]string{"Check", "State", "Detail"}, rows)
}

func countFailedChecks(checks []preflight.Result) int {
	failed := 0
	for _, check := range checks {
		if !check.Passed {
			failed++
		}
	}
	return failed
}

func writeStatusJSON(cmd *cobra.Command, checks []preflight.Result, stats map[catalog.Status]int, health catalog.HealthSummary) error {
	type jsonCheck struct {
		Name   string `json:"name"`
		Passed bool   `json:"passed"`
		Detail string `json:"detail"`
	}
	jsonChecks := make([]jsonCheck, 0, len(checks))
	for _, check := range checks {
		jsonChecks = append(jsonChecks, jsonCheck{Name: check.Name, Passed: check.Passed, Detail: check.Detail})
	}

	statusCounts := make(map[string]int, len(stats))
	for status, count := range stats {
		statusCounts[string(status)] = count
	}

	return writeJSON(cmd, map[string]any{
		"checks": jsonChecks,
		"tracks": statusCounts,
		"health": map[string]int{
			"total":         health.Total,
			"done":          health.Done,
			"failed":        health.Failed,
			"skipped_index": health.SkippedIdx,
			"in_flight":     health.InFlight,
		},
	})
}
