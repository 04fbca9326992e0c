// Package messaging defines the minimal queue abstraction used to fan out
// approval-prompt and decision events to observers such as UIs or headless
// deciders.
package messaging

import "context"

// Queue is an abstract message queue for any payload type.
type Queue[T any] interface {
	// Publish adds a new message with the payload to the queue.
	Publish(ctx context.Context, t *T) error

	// Consume retrieves a single message, blocking until one is available
	// or the context is done.
	Consume(ctx context.Context) (Message[T], error)
}

// Message is a payload retrieved from a queue.
type Message[T any] interface {
	// T returns the payload of this message.
	T() *T

	// Ack acknowledges successful processing.
	Ack() error

	// Nack indicates failed processing; implementations may retry or dead-letter.
	Nack(err error) error
}
