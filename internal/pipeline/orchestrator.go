package pipeline

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"subtext/internal/captions"
	"subtext/internal/catalog"
	"subtext/internal/chunk"
	"subtext/internal/config"
	"subtext/internal/events"
	"subtext/internal/logging"
	"subtext/internal/mediameta"
	"subtext/internal/services"
	"subtext/internal/tracks"
)

// Fetcher downloads the raw caption payload for a resolved track.
type Fetcher interface {
	Fetch(ctx context.Context, ref tracks.Ref) ([]byte, error)
}

// Storage writes subtitle documents next to their media files and
// returns the path it wrote.
type Storage interface {
	Write(ctx context.Context, mediaPath, language string, document []byte) (string, error)
}

// Indexer pushes chunk documents into the search index.
type Indexer interface {
	Bulk(ctx context.Context, chunks []chunk.Chunk) error
}

// Publisher broadcasts track lifecycle transitions to the event bus.
type Publisher interface {
	PublishTrack(event events.TrackEvent) error
}

// Options bundles the collaborators an orchestrator needs. Publisher
// and Logger are optional; the rest are required, except Indexer which
// may be nil while indexing is disabled.
type Options struct {
	Config    *config.Config
	Store     *catalog.Store
	Fetcher   Fetcher
	Storage   Storage
	Indexer   Indexer
	Publisher Publisher
	Logger    *slog.Logger
}

// Orchestrator drives caption tracks through the processing state
// machine one video at a time.
type Orchestrator struct {
	cfg       *config.Config
	store     *catalog.Store
	fetcher   Fetcher
	storage   Storage
	indexer   Indexer
	publisher Publisher
	logger    *slog.Logger
}

// New validates the options and returns a ready orchestrator.
func New(opts Options) (*Orchestrator, error) {
	if opts.Config == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "config is required", nil)
	}
	if opts.Store == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "catalog store is required", nil)
	}
	if opts.Fetcher == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "fetcher is required", nil)
	}
	if opts.Storage == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "storage is required", nil)
	}
	if opts.Config.Index.Enabled && opts.Indexer == nil {
		return nil, services.Wrap(services.ErrConfiguration, "pipeline", "new", "indexer is required while indexing is enabled", nil)
	}
	publisher := opts.Publisher
	if publisher == nil {
		publisher = discardPublisher{}
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "pipeline")
	return &Orchestrator{
		cfg:       opts.Config,
		store:     opts.Store,
		fetcher:   opts.Fetcher,
		storage:   opts.Storage,
		indexer:   opts.Indexer,
		publisher: publisher,
		logger:    logger,
	}, nil
}

// TrackResult reports the final record for one processed track. Err is
// set when the track ended in failed or skipped_index with a cause.
type TrackResult struct {
	Record *catalog.TrackRecord
	Err    error
}

// VideoResult gathers the track results for one media file. Err is set
// only when the video could not be processed at all; per-track failures
// live in Tracks.
type VideoResult struct {
	MediaPath string
	VideoID   string
	Title     string
	Tracks    []TrackResult
	Err       error
}

// ProcessVideo resolves the caption tracks for one media file and walks
// each through the state machine. Earlier records for the same video
// are cleared first, so re-processing is idempotent. Track failures are
// isolated from each other.
func (o *Orchestrator) ProcessVideo(ctx context.Context, mediaPath string) VideoResult {
	result := VideoResult{MediaPath: mediaPath}

	info, err := mediameta.LoadForMedia(mediaPath)
	if err != nil {
		result.Err = fmt.Errorf("load video metadata: %w", err)
		return result
	}
	result.VideoID = info.ID
	result.Title = info.Title

	ctx = services.WithVideoID(ctx, info.ID)
	logger := logging.WithContext(ctx, o.logger)

	refs := tracks.Resolve(info.ID, info, tracks.Policy{
		Languages:    o.cfg.Captions.Languages,
		AutoFallback: o.cfg.Captions.AutoFallback,
	})

	if err := o.store.Reset(ctx, info.ID); err != nil {
		result.Err = fmt.Errorf("reset catalog records: %w", err)
		return result
	}
	if len(refs) == 0 {
		logger.Info("no caption tracks resolved")
		return result
	}

	runID, _ := services.RequestIDFromContext(ctx)
	records := make([]*catalog.TrackRecord, len(refs))
	for i, ref := range refs {
		record, err := o.store.Insert(ctx, &catalog.TrackRecord{
			VideoID:     info.ID,
			MediaPath:   mediaPath,
			Language:    ref.Language,
			Source:      string(ref.Source),
			FetchURL:    ref.Fetch.URL,
			FetchFormat: ref.Fetch.Format,
			Status:      catalog.StatusResolved,
			RunID:       runID,
		})
		if err != nil {
			result.Err = fmt.Errorf("record resolved track %s: %w", ref.Label(), err)
			return result
		}
		records[i] = record
	}
	logger.Info("caption tracks resolved", logging.Int("tracks", len(refs)))

	result.Tracks = make([]TrackResult, len(refs))
	workers := o.cfg.Workers.PerVideo
	if workers < 1 {
		workers = 1
	}
	if workers > len(refs) {
		workers = len(refs)
	}
	if workers == 1 {
		for i := range refs {
			result.Tracks[i] = o.processTrack(ctx, records[i], refs[i], info)
		}
		return result
	}

	jobs := make(chan int, len(refs))
	var wg sync.WaitGroup
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for idx := range jobs {
				result.Tracks[idx] = o.processTrack(ctx, records[idx], refs[idx], info)
			}
		}()
	}
	for idx := range refs {
		jobs <- idx
	}
	close(jobs)
	wg.Wait()
	return result
}

func (o *Orchestrator) processTrack(ctx context.Context, record *catalog.TrackRecord, ref tracks.Ref, info *mediameta.Info) TrackResult {
	ctx = services.WithTrack(ctx, ref.Label())

	payload, err := o.fetcher.Fetch(services.WithStage(ctx, "fetch"), ref)
	if err != nil {
		return o.finishWithError(ctx, record, err)
	}
	o.transition(ctx, record, catalog.StatusFetched)

	parseCtx := services.WithStage(ctx, "parse")
	rawEvents, err := captions.DecodeEvents(payload)
	if err != nil {
		wrapped := services.Wrap(services.ErrMalformedPayload, "pipeline", "parse", ref.Label(), err)
		return o.finishWithError(parseCtx, record, wrapped)
	}
	cues := captions.Flatten(rawEvents, ref.Source, logging.WithContext(parseCtx, o.logger))
	document := captions.FormatVTT(cues, ref.Language)
	record.CueCount = int64(len(cues))
	o.transition(parseCtx, record, catalog.StatusParsed)

	storeCtx := services.WithStage(ctx, "store")
	path, err := o.storage.Write(storeCtx, record.MediaPath, record.Language, []byte(document))
	if err != nil {
		return o.finishWithError(storeCtx, record, err)
	}
	record.SubtitlePath = path
	o.transition(storeCtx, record, catalog.StatusStored)

	indexCtx := services.WithStage(ctx, "index")
	if !o.cfg.Index.Enabled {
		return o.skipIndex(indexCtx, record, "indexing disabled", nil)
	}
	if len(cues) == 0 {
		return o.skipIndex(indexCtx, record, "no cues", nil)
	}

	chunks := chunk.Build(cues, chunk.Meta{
		VideoID:     record.VideoID,
		Language:    record.Language,
		Source:      ref.Source,
		Title:       info.Title,
		Channel:     info.Channel,
		ChannelID:   info.ChannelID,
		RefreshedAt: time.Now().UTC().Unix(),
	}, o.cfg.Index.ChunkSize)
	if err := o.indexer.Bulk(indexCtx, chunks); err != nil {
		return o.finishWithError(indexCtx, record, err)
	}
	record.ChunkCount = int64(len(chunks))
	o.transition(indexCtx, record, catalog.StatusIndexed)
	o.transition(ctx, record, catalog.StatusDone)

	logging.WithContext(ctx, o.logger).Info("track processed",
		logging.Int64("cues", record.CueCount),
		logging.Int64("chunks", record.ChunkCount),
	)
	return TrackResult{Record: record}
}

// skipIndex parks a stored track in skipped_index and completes it.
// The subtitle document stays on disk; only the search index is
// missing it.
func (o *Orchestrator) skipIndex(ctx context.Context, record *catalog.TrackRecord, reason string, cause error) TrackResult {
	record.SkipReason = reason
	o.transition(ctx, record, catalog.StatusSkippedIndex)
	o.transition(ctx, record, catalog.StatusDone)
	logging.WithContext(ctx, o.logger).Info("track stored without indexing", logging.String("reason", reason))
	return TrackResult{Record: record, Err: cause}
}

func (o *Orchestrator) finishWithError(ctx context.Context, record *catalog.TrackRecord, err error) TrackResult {
	if services.FailureStatus(err) == catalog.StatusSkippedIndex {
		return o.skipIndex(ctx, record, err.Error(), err)
	}
	record.ErrorMessage = err.Error()
	o.transition(ctx, record, catalog.StatusFailed)
	logging.WithContext(ctx, o.logger).Error("track failed", logging.Error(err))
	return TrackResult{Record: record, Err: err}
}

// transition advances the record, persists it, and publishes the
// change. Persistence and publishing are best effort; a catalog or bus
// hiccup must not strand an otherwise healthy track.
func (o *Orchestrator) transition(ctx context.Context, record *catalog.TrackRecord, status catalog.Status) {
	record.Status = status
	if err := o.store.Update(ctx, record); err != nil {
		logging.WithContext(ctx, o.logger).Warn("persist track status",
			logging.String("status", string(status)),
			logging.Error(err),
		)
	}
	event := events.TrackEvent{
		VideoID:  record.VideoID,
		Language: record.Language,
		Source:   record.Source,
		Status:   string(status),
		Reason:   record.SkipReason,
		RunID:    record.RunID,
	}
	if err := o.publisher.PublishTrack(event); err != nil {
		logging.WithContext(ctx, o.logger).Warn("publish track event", logging.Error(err))
	}
}

type discardPublisher struct{}

func (discardPublisher) PublishTrack(events.TrackEvent) error { return nil }
