// Package messaging defines the event publishing contract.
package messaging

import (
	"context"
)

// Event is a message that knows its subject and wire encoding.
type Event interface {
	Subject() string
	Payload() ([]byte, error)
}

type Publisher interface {
	Publish(ctx context.Context, event Event) error
}
