package publisher

// Publisher represents a service for publishing review change events
type Publisher interface {
	// Publish publishes an event payload under the given event key
	Publish(event string, payload []byte) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
