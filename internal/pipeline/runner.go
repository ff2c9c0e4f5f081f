package pipeline

import (
	"context"
	"log/slog"
	"strconv"
	"sync"
	"time"

	"github.com/google/uuid"

	"subtext/internal/catalog"
	"subtext/internal/logging"
	"subtext/internal/notifications"
	"subtext/internal/services"
)

// Runner fans a batch of media files out across the orchestrator and
// reports the aggregate outcome.
type Runner struct {
	orchestrator *Orchestrator
	notifier     notifications.Service
	logger       *slog.Logger
}

// NewRunner wires a runner around an orchestrator. Notifier and logger
// are optional.
func NewRunner(orchestrator *Orchestrator, notifier notifications.Service, logger *slog.Logger) (*Runner, error) {
	if orchestrator == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "runner", "orchestrator is required", nil)
	}
	if notifier == nil {
		notifier = silentNotifier{}
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	return &Runner{orchestrator: orchestrator, notifier: notifier, logger: logger}, nil
}

// RunSummary aggregates one processing run. Failed counts tracks that
// ended in the failed state; VideoErrors counts media files that could
// not be processed at all.
type RunSummary struct {
	RunID       string
	Started     time.Time
	Duration    time.Duration
	Videos      []VideoResult
	Indexed     int
	Skipped     int
	Failed      int
	VideoErrors int
}

// TrackTotal returns how many tracks the run touched.
func (s RunSummary) TrackTotal() int {
	return s.Indexed + s.Skipped + s.Failed
}

// Run processes every media path and returns the summary. A fresh run
// identifier is minted and stamped on every catalog record the run
// creates. Individual video failures are collected, never fatal.
func (r *Runner) Run(ctx context.Context, mediaPaths []string) RunSummary {
	runID := uuid.NewString()
	ctx = services.WithRequestID(ctx, runID)
	logger := logging.WithContext(ctx, r.logger)

	summary := RunSummary{RunID: runID, Started: time.Now().UTC()}
	if len(mediaPaths) == 0 {
		logger.Info("nothing to process")
		return summary
	}

	logger.Info("caption run started", logging.Int("videos", len(mediaPaths)))
	r.notify(ctx, notifications.EventRunStarted, notifications.Payload{
		"videos": strconv.Itoa(len(mediaPaths)),
	})

	results := make([]VideoResult, len(mediaPaths))
	workers := r.orchestrator.cfg.Workers.Count
	if workers < 1 {
		workers = 1
	}
	if workers > len(mediaPaths) {
		workers = len(mediaPaths)
	}

	jobs := make(chan int, len(mediaPaths))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				results[idx] = r.orchestrator.ProcessVideo(ctx, mediaPaths[idx])
			}
		}()
	}
	for idx := range mediaPaths {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()

	summary.Videos = results
	summary.Duration = time.Since(summary.Started)
	for _, video := range results {
		if video.Err != nil {
			summary.VideoErrors++
			logger.Error("video failed", logging.String("media", video.MediaPath), logging.Error(video.Err))
		}
		for _, track := range video.Tracks {
			switch {
			case track.Record == nil || track.Record.Status == catalog.StatusFailed:
				summary.Failed++
			case track.Record.SkipReason != "":
				summary.Skipped++
			default:
				summary.Indexed++
			}
		}
	}

	logger.Info("caption run complete",
		logging.Int("indexed", summary.Indexed),
		logging.Int("skipped", summary.Skipped),
		logging.Int("failed", summary.Failed),
		logging.Int("video_errors", summary.VideoErrors),
		logging.Duration("duration", summary.Duration),
	)
	r.notify(ctx, notifications.EventRunCompleted, notifications.Payload{
		"indexed":  strconv.Itoa(summary.Indexed),
		"skipped":  strconv.Itoa(summary.Skipped),
		"failed":   strconv.Itoa(summary.Failed + summary.VideoErrors),
		"duration": summary.Duration.Round(time.Second).String(),
	})
	return summary
}

func (r *Runner) notify(ctx context.Context, event notifications.Event, payload notifications.Payload) {
	if err := r.notifier.Publish(ctx, event, payload); err != nil {
		r.logger.Warn("notification failed", logging.String("event", string(event)), logging.Error(err))
	}
}

type silentNotifier struct{}

func (silentNotifier) Publish(context.Context, notifications.Event, notifications.Payload) error {
	return nil
}
