package notification

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// SlackNotifier implements the Notifier interface for Slack-compatible
// incoming webhooks
type SlackNotifier struct {
	webhookURL string
	channel    string
}

// NewSlackNotifier creates a new Slack notifier
func NewSlackNotifier(webhookURL, channel string) *SlackNotifier {
	return &SlackNotifier{
		webhookURL: webhookURL,
		channel:    channel,
	}
}

// SlackWebhookPayload represents the payload structure for Slack webhooks
type SlackWebhookPayload struct {
	Channel     string            `json:"channel,omitempty"`
	Username    string            `json:"username,omitempty"`
	Text        string            `json:"text,omitempty"`
	Attachments []SlackAttachment `json:"attachments,omitempty"`
}

// SlackAttachment represents an attachment in Slack message
type SlackAttachment struct {
	Color     string       `json:"color,omitempty"`
	Title     string       `json:"title,omitempty"`
	Text      string       `json:"text,omitempty"`
	Fields    []SlackField `json:"fields,omitempty"`
	Footer    string       `json:"footer,omitempty"`
	Timestamp int64        `json:"ts,omitempty"`
}

// SlackField represents a field in Slack attachment
type SlackField struct {
	Title string `json:"title"`
	Value string `json:"value"`
	Short bool   `json:"short"`
}

// Send sends a notification message to Slack
func (s *SlackNotifier) Send(message *Message) error {
	payload := s.createPayload(message)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal Slack payload: %w", err)
	}

	req, err := http.NewRequest("POST", s.webhookURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", "DriveView/1.0")

	client := &http.Client{Timeout: 30 * time.Second}
	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("slack webhook returned status %d", resp.StatusCode)
	}

	return nil
}

// GetChannelType returns the notification channel type
func (s *SlackNotifier) GetChannelType() string {
	return "slack"
}

// createPayload creates a Slack webhook payload from a message
func (s *SlackNotifier) createPayload(message *Message) *SlackWebhookPayload {
	attachment := SlackAttachment{
		Color:     s.getColorForType(message.Type),
		Title:     message.Title,
		Text:      message.Text,
		Footer:    "Drive Secure Viewer",
		Timestamp: message.Timestamp.Unix(),
	}

	for key, value := range message.Fields {
		attachment.Fields = append(attachment.Fields, SlackField{
			Title: key,
			Value: fmt.Sprintf("%v", value),
			Short: true,
		})
	}

	payload := &SlackWebhookPayload{
		Attachments: []SlackAttachment{attachment},
	}
	if s.channel != "" {
		payload.Channel = s.channel
	}

	return payload
}

// getColorForType returns the attachment color for a message type
func (s *SlackNotifier) getColorForType(messageType MessageType) string {
	switch messageType {
	case TypeSuccess:
		return "good"
	case TypeError:
		return "danger"
	case TypeWarning:
		return "warning"
	default:
		return ""
	}
}
