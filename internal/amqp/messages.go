package amqp

import (
	"encoding/json"
	"time"
)

// InvalidationMessage tells the refresh worker that the derived caches of
// a collection/year pair went stale after a confirmed mutation. It carries
// no record data; the worker refetches the authoritative state itself.
type InvalidationMessage struct {
	Collection string    `json:"collection"`
	Year       string    `json:"year"`
	Timestamp  time.Time `json:"timestamp"`
}

func NewInvalidationMessage(collection, year string) *InvalidationMessage {
	return &InvalidationMessage{
		Collection: collection,
		Year:       year,
		Timestamp:  time.Now(),
	}
}

func (m *InvalidationMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

func InvalidationMessageFromJSON(data []byte) (*InvalidationMessage, error) {
	var msg InvalidationMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
