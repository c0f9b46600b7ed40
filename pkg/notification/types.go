package notification

import "time"

// MessageType categorizes a notification message
type MessageType string

const (
	TypeSuccess MessageType = "success"
	TypeError   MessageType = "error"
	TypeWarning MessageType = "warning"
)

// Message represents a notification message
type Message struct {
	Type      MessageType            `json:"type"`
	Title     string                 `json:"title"`
	Text      string                 `json:"text"`
	Fields    map[string]interface{} `json:"fields,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
}

// Notifier is the interface for notification channels
type Notifier interface {
	Send(message *Message) error
	GetChannelType() string
}
