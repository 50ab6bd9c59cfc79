package events

type ProducerOptions func(e *EventProducer)

// WithOutputTopic overrides the topic events are written to.
func WithOutputTopic(topic string) ProducerOptions {
	return func(e *EventProducer) {
		e.topic = topic
	}
}

// WithSource overrides the cloudevents source attribute, for deployments
// running more than one instance of the service.
func WithSource(source string) ProducerOptions {
	return func(e *EventProducer) {
		e.source = source
	}
}
