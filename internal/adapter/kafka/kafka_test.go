package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/pipeline-incident-report/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWriter struct {
	msgs   []kafkago.Message
	err    error
	closed bool
}

func (f *fakeWriter) WriteMessages(_ context.Context, msgs ...kafkago.Message) error {
	if f.err != nil {
		return f.err
	}
	f.msgs = append(f.msgs, msgs...)
	return nil
}

func (f *fakeWriter) Close() error {
	f.closed = true
	return nil
}

func testIncident() domain.Incident {
	return domain.Incident{
		Line:     2,
		Record:   domain.Record{domain.ColumnState: "PA", domain.ColumnFatal: "0"},
		Point:    domain.Point{Lon: -75, Lat: 40},
		Geohash:  "dr4et3f",
		Class:    domain.ClassNonFatal,
		Severity: domain.NonFatalPlaceholder,
	}
}

func TestSerializeToMessage(t *testing.T) {
	now := time.Date(2024, 4, 26, 15, 10, 0, 0, time.UTC)

	msg, err := serializeToMessage(testIncident(), now)
	require.NoError(t, err)

	assert.Equal(t, []byte("dr4et3f"), msg.Key)
	require.Len(t, msg.Headers, 2)
	assert.Equal(t, "incident_class", msg.Headers[0].Key)
	assert.Equal(t, []byte("non_fatal"), msg.Headers[0].Value)
	assert.Equal(t, "generated_at", msg.Headers[1].Key)
	assert.Equal(t, []byte(now.Format(time.RFC3339)), msg.Headers[1].Value)

	var payload incidentMessage
	require.NoError(t, json.Unmarshal(msg.Value, &payload))
	assert.Equal(t, 2, payload.Line)
	assert.Equal(t, "non_fatal", payload.Class)
	assert.InDelta(t, 0.1, payload.Severity, 1e-12)
	assert.Equal(t, domain.Point{Lon: -75, Lat: 40}, payload.Point)
	assert.Equal(t, "PA", payload.Fields[domain.ColumnState])
	assert.True(t, now.Equal(payload.GeneratedAt))
}

func TestWriter_Publish(t *testing.T) {
	fw := &fakeWriter{}
	w := &Writer{writer: fw, topic: "pipeline-incidents", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	fatal := testIncident()
	fatal.Line = 3
	fatal.Class = domain.ClassFatal
	fatal.Severity = 2

	require.NoError(t, w.Publish(context.Background(), []domain.Incident{testIncident(), fatal}, time.Now()))

	require.Len(t, fw.msgs, 2)
	assert.Equal(t, []byte("fatal"), fw.msgs[1].Headers[0].Value)

	require.NoError(t, w.Close())
	assert.True(t, fw.closed)
}

func TestWriter_PublishEmpty(t *testing.T) {
	fw := &fakeWriter{err: errors.New("should not be called")}
	w := &Writer{writer: fw, logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	require.NoError(t, w.Publish(context.Background(), nil, time.Now()))
}

func TestWriter_PublishError(t *testing.T) {
	fw := &fakeWriter{err: errors.New("broker down")}
	w := &Writer{writer: fw, topic: "pipeline-incidents", logger: slog.New(slog.NewTextHandler(io.Discard, nil))}

	err := w.Publish(context.Background(), []domain.Incident{testIncident()}, time.Now())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "pipeline-incidents")
	assert.Contains(t, err.Error(), "broker down")
}
