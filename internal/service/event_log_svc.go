package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/metrics"
	"github.com/tgo/embedhub/internal/pkg/redis"
	"github.com/tgo/embedhub/internal/repository"
)

const eventLogTimeout = 5 * time.Second

// EventPublisher is implemented by *redis.Client.
type EventPublisher interface {
	Publish(ctx context.Context, stream string, payload interface{}) (string, error)
}

var _ EventPublisher = (*redis.Client)(nil)

// EventMessage is the payload pushed to the event stream.
type EventMessage struct {
	ID         uint                   `json:"id"`
	Event      string                 `json:"event"`
	Metadata   map[string]interface{} `json:"metadata,omitempty"`
	UserID     *uint                  `json:"userId,omitempty"`
	OccurredAt time.Time              `json:"occurredAt"`
}

type EventLogService struct {
	repo      *repository.EventLogRepository
	publisher EventPublisher
	stream    string
}

// NewEventLogService builds the service. publisher may be nil, in which case
// events are only stored in the database.
func NewEventLogService(repo *repository.EventLogRepository, publisher EventPublisher, stream string) *EventLogService {
	return &EventLogService{repo: repo, publisher: publisher, stream: stream}
}

// LogEvent stores the event and forwards it to the event stream. Errors are
// returned for callers that care; request handlers use LogEventAsync.
func (s *EventLogService) LogEvent(ctx context.Context, event string, metadata map[string]interface{}, userID *uint) (*model.EventLog, error) {
	entry := &model.EventLog{Event: event, UserID: userID}
	if len(metadata) > 0 {
		data, err := json.Marshal(metadata)
		if err != nil {
			return nil, err
		}
		text := string(data)
		entry.Metadata = &text
	}

	if err := s.repo.Create(ctx, entry); err != nil {
		metrics.EventsLoggedTotal.WithLabelValues("database", "failure").Inc()
		return nil, err
	}
	metrics.EventsLoggedTotal.WithLabelValues("database", "success").Inc()

	if s.publisher != nil && s.stream != "" {
		_, err := s.publisher.Publish(ctx, s.stream, EventMessage{
			ID:         entry.ID,
			Event:      entry.Event,
			Metadata:   metadata,
			UserID:     userID,
			OccurredAt: entry.OccurredAt,
		})
		if err != nil {
			metrics.EventsLoggedTotal.WithLabelValues("stream", "failure").Inc()
			logrus.WithError(err).WithField("event", event).Warn("Failed to publish event to stream")
		} else {
			metrics.EventsLoggedTotal.WithLabelValues("stream", "success").Inc()
		}
	}
	return entry, nil
}

// LogEventAsync records the event in the background. Failures are only logged
// and never reach the caller.
func (s *EventLogService) LogEventAsync(event string, metadata map[string]interface{}, userID *uint) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), eventLogTimeout)
		defer cancel()
		if _, err := s.LogEvent(ctx, event, metadata, userID); err != nil {
			logrus.WithError(err).WithField("event", event).Error("Failed to log event")
		}
	}()
}
