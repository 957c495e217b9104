package enums

import "fmt"

// EventType names the domain events published after a successful commit.
type EventType string

const (
	EventSaleCompleted  EventType = "sale.completed"
	EventSaleDeleted    EventType = "sale.deleted"
	EventStockChanged   EventType = "stock.changed"
	EventInvoiceCreated EventType = "invoice.created"
	EventInvoicePaid    EventType = "invoice.paid"
)

var validEventTypes = []EventType{
	EventSaleCompleted,
	EventSaleDeleted,
	EventStockChanged,
	EventInvoiceCreated,
	EventInvoicePaid,
}

// String implements fmt.Stringer.
func (e EventType) String() string {
	return string(e)
}

// IsValid reports whether the value is a known EventType.
func (e EventType) IsValid() bool {
	for _, candidate := range validEventTypes {
		if candidate == e {
			return true
		}
	}
	return false
}

// ParseEventType converts raw input into an EventType.
func ParseEventType(value string) (EventType, error) {
	for _, candidate := range validEventTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid event type %q", value)
}
