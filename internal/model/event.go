package model

import "time"

// RawEvent is one inbound notification as handed over by the collector.
type RawEvent struct {
	SenderID   string
	Body       string
	ReceivedAt time.Time
}

// NewRawEvent builds a RawEvent from a millisecond Unix timestamp.
func NewRawEvent(senderID, body string, receivedAtMillis int64) RawEvent {
	return RawEvent{
		SenderID:   senderID,
		Body:       body,
		ReceivedAt: time.UnixMilli(receivedAtMillis).UTC(),
	}
}

// ReceivedAtMillis returns ReceivedAt as milliseconds since the Unix epoch.
func (e RawEvent) ReceivedAtMillis() int64 {
	return e.ReceivedAt.UnixMilli()
}
