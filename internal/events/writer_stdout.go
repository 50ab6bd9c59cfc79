package events

import (
	"context"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"go.uber.org/zap"
)

// StdoutWriter logs events instead of shipping them. Used when no broker is
// configured, typically local development.
type StdoutWriter struct{}

func (s *StdoutWriter) Write(ctx context.Context, topic string, e cloudevents.Event) error {
	zap.S().Named("stdout_writer").Infow("event emitted", "topic", topic, "event", e)
	return nil
}

func (s *StdoutWriter) Close(_ context.Context) error {
	return nil
}
