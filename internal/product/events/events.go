// Package events defines the change notifications emitted after a product mutation is persisted.
package events

import (
	"encoding/json"
	"time"

	"github.com/abgdnv/techstore/internal/platform/messaging"
	"github.com/google/uuid"
)

const (
	// StreamName is the JetStream stream holding product events.
	StreamName = "PRODUCTS"
	// StreamSubjects matches every product event subject.
	StreamSubjects = "products.>"

	CreatedSubject = "products.created"
	UpdatedSubject = "products.updated"
	DeletedSubject = "products.deleted"
)

// Product is the product snapshot carried by an event.
type Product struct {
	ID       int64   `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Quantity int64   `json:"quantity"`
}

// ProductEvent is published on CreatedSubject, UpdatedSubject or DeletedSubject.
// Product is nil for deletions.
type ProductEvent struct {
	EventID    uuid.UUID `json:"event_id"`
	ProductID  int64     `json:"product_id"`
	Product    *Product  `json:"product,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`

	subject string
}

var _ messaging.Event = ProductEvent{}

func newEvent(subject string, id int64, product *Product) ProductEvent {
	return ProductEvent{
		EventID:    uuid.New(),
		ProductID:  id,
		Product:    product,
		OccurredAt: time.Now().UTC(),
		subject:    subject,
	}
}

func NewProductCreated(p Product) ProductEvent {
	return newEvent(CreatedSubject, p.ID, &p)
}

func NewProductUpdated(p Product) ProductEvent {
	return newEvent(UpdatedSubject, p.ID, &p)
}

func NewProductDeleted(id int64) ProductEvent {
	return newEvent(DeletedSubject, id, nil)
}

func (e ProductEvent) Subject() string {
	return e.subject
}

func (e ProductEvent) Payload() ([]byte, error) {
	return json.Marshal(e)
}
