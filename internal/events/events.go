package events

import "time"

// EventType identifies published events.
type EventType string

const (
	EventOrderPlaced EventType = "commerce.order_placed"
	EventAlertRaised EventType = "monitoring.alert_raised"
)

// Event is the envelope published on the dispatcher.
type Event struct {
	ID        string
	Type      EventType
	Timestamp time.Time
	Payload   any
}

// OrderPlacedPayload accompanies EventOrderPlaced.
type OrderPlacedPayload struct {
	OrderID   string
	UserID    string
	ItemCount int
	Total     string
}

// AlertRaisedPayload accompanies EventAlertRaised.
type AlertRaisedPayload struct {
	ServerID   string
	ServerName string
	Message    string
}
