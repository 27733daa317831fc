// Package messaging is the Kafka event bus for order lifecycle events.
// Trace context travels in message headers so a consumer span links back
// to the HTTP request that caused the event.
package messaging

// Topics carrying order events. Both are keyed by order id.
const (
	TopicOrderPlaced        = "order.placed"
	TopicOrderStatusChanged = "order.status_changed"
)
