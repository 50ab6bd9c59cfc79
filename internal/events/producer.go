package events

import (
	"context"
	"io"
	"time"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	MutationMessageKind string = "nl.educert.pvb.events.mutation"
	AuditMessageKind    string = "nl.educert.pvb.events.audit"
	defaultTopic        string = "nl.educert.pvb.events"

	eventSource = "educert.pvb.service"
)

// Writer is the interface to be implemented by the underlying writer.
type Writer interface {
	Write(ctx context.Context, topic string, e cloudevents.Event) error
	Close(ctx context.Context) error
}

// EventProducer queues outgoing events so the mutating caller is never
// blocked on the writer.
type EventProducer struct {
	queue    *queue
	notifyCh chan struct{}
	doneCh   chan struct{}
	writer   Writer
	topic    string
	source   string
}

func NewEventProducer(w Writer, opts ...ProducerOptions) *EventProducer {
	ep := &EventProducer{
		queue:    newQueue(),
		notifyCh: make(chan struct{}, 1),
		doneCh:   make(chan struct{}),
		writer:   w,
		topic:    defaultTopic,
		source:   eventSource,
	}

	for _, o := range opts {
		o(ep)
	}

	go ep.run()
	return ep
}

func (ep *EventProducer) Write(ctx context.Context, kind string, body io.Reader) error {
	d, err := io.ReadAll(body)
	if err != nil {
		return err
	}

	ep.queue.PushBack(&message{
		Kind: kind,
		Data: d,
	})

	select {
	case ep.notifyCh <- struct{}{}:
	default:
	}

	return nil
}

func (ep *EventProducer) Close() error {
	closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	g, ctx := errgroup.WithContext(closeCtx)
	g.Go(func() error {
		close(ep.doneCh)
		return ep.writer.Close(ctx)
	})
	if err := g.Wait(); err != nil {
		zap.S().Named("event_producer").Errorf("event producer closed with error: %s", err)
		return err
	}

	zap.S().Named("event_producer").Info("event producer closed")

	return nil
}

func (ep *EventProducer) run() {
	for {
		if ep.queue.Size() == 0 {
			select {
			case <-ep.notifyCh:
			case <-ep.doneCh:
				return
			}
		}

		msg := ep.queue.Pop()
		if msg == nil {
			continue
		}

		e := cloudevents.NewEvent()
		e.SetID(uuid.NewString())
		e.SetSource(ep.source)
		e.SetType(msg.Kind)
		_ = e.SetData(*cloudevents.StringOfApplicationJSON(), msg.Data)

		if err := ep.writer.Write(context.TODO(), ep.topic, e); err != nil {
			zap.S().Named("event_producer").Errorw("failed to send message", "error", err, "event", e)
		}
	}
}
