package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/nats-io/nats.go"

	"subtext/internal/config"
	"subtext/internal/logging"
)

// TrackEvent captures one track state transition.
type TrackEvent struct {
	VideoID    string    `json:"video_id"`
	Language   string    `json:"language"`
	Source     string    `json:"source"`
	Status     string    `json:"status"`
	Reason     string    `json:"reason,omitempty"`
	RunID      string    `json:"run_id,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Publisher emits track lifecycle events.
type Publisher interface {
	PublishTrack(event TrackEvent) error
	Close()
}

// Subject returns the NATS subject a transition to the given status is
// published on.
func Subject(prefix, status string) string {
	prefix = strings.Trim(strings.TrimSpace(prefix), ".")
	if prefix == "" {
		return "track." + status
	}
	return prefix + ".track." + status
}

// NewPublisher connects to NATS when an event bus is configured and
// returns a noop publisher otherwise.
func NewPublisher(cfg *config.Config, logger *slog.Logger) (Publisher, error) {
	natsURL := strings.TrimSpace(cfg.Events.NATSURL)
	if natsURL == "" {
		return noopPublisher{}, nil
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "events")

	nc, err := nats.Connect(natsURL,
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(-1),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("event bus disconnected", logging.Error(err))
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("event bus reconnected")
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("events: nats connect: %w", err)
	}
	return &natsPublisher{nc: nc, prefix: cfg.Events.SubjectPrefix}, nil
}

type natsPublisher struct {
	nc     *nats.Conn
	prefix string
}

func (p *natsPublisher) PublishTrack(event TrackEvent) error {
	if strings.TrimSpace(event.VideoID) == "" {
		return errors.New("events: video id is required")
	}
	if strings.TrimSpace(event.Status) == "" {
		return errors.New("events: status is required")
	}
	if event.OccurredAt.IsZero() {
		event.OccurredAt = time.Now().UTC()
	}
	data, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("events: encode event: %w", err)
	}
	if err := p.nc.Publish(Subject(p.prefix, event.Status), data); err != nil {
		return fmt.Errorf("events: publish: %w", err)
	}
	return nil
}

func (p *natsPublisher) Close() {
	_ = p.nc.Drain()
}

type noopPublisher struct{}

func (noopPublisher) PublishTrack(TrackEvent) error { return nil }
func (noopPublisher) Close()                        {}
