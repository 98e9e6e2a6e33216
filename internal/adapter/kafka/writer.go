package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/pipeline-incident-report/internal/config"
	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

type messageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

// Writer publishes plotted incidents to a Kafka topic.
// It implements pipeline.IncidentPublisher.
type Writer struct {
	writer messageWriter
	topic  string
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured incident topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:                   kafkago.TCP(cfg.KafkaBrokers...),
		Topic:                  cfg.KafkaTopic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	}
	return &Writer{writer: w, topic: cfg.KafkaTopic, logger: logger}
}

// incidentMessage is the JSON payload of one feed message.
type incidentMessage struct {
	Line        int               `json:"line"`
	Class       string            `json:"class"`
	Severity    float64           `json:"severity"`
	Point       domain.Point      `json:"point"`
	Geohash     string            `json:"geohash"`
	Backfilled  bool              `json:"backfilled"`
	Fields      map[string]string `json:"fields"`
	GeneratedAt time.Time         `json:"generated_at"`
}

// Publish serializes incidents and writes them in a single WriteMessages call.
// Messages are keyed by geohash so nearby incidents share a partition.
func (w *Writer) Publish(ctx context.Context, incidents []domain.Incident, generatedAt time.Time) error {
	if len(incidents) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(incidents))
	for i := range incidents {
		msg, err := serializeToMessage(incidents[i], generatedAt)
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write %d incidents to %s: %w", len(msgs), w.topic, err)
	}
	w.logger.Info("incidents published", "topic", w.topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// serializeToMessage marshals an Incident into a Kafka message.
func serializeToMessage(inc domain.Incident, generatedAt time.Time) (kafkago.Message, error) {
	data, err := json.Marshal(incidentMessage{
		Line:        inc.Line,
		Class:       inc.Class.String(),
		Severity:    inc.Severity,
		Point:       inc.Point,
		Geohash:     inc.Geohash,
		Backfilled:  inc.Backfilled,
		Fields:      inc.Record,
		GeneratedAt: generatedAt.UTC(),
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize incident line %d: %w", inc.Line, err)
	}
	return kafkago.Message{
		Key:   []byte(inc.Geohash),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "incident_class", Value: []byte(inc.Class.String())},
			{Key: "generated_at", Value: []byte(generatedAt.UTC().Format(time.RFC3339))},
		},
	}, nil
}
