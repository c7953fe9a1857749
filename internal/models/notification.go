package models

import "time"

// NotificationType categorizes an activity record.
type NotificationType string

const (
	NotificationSuccess NotificationType = "success"
	NotificationError   NotificationType = "error"
	NotificationWarning NotificationType = "warning"
	NotificationInfo    NotificationType = "info"
)

// Notification is one activity-log record, appended by mutation-producing
// operations and mutated only to flip Read. The feed is device-local.
type Notification struct {
	// ID is derived from the creation time (milliseconds since epoch,
	// as a string), mirroring how the feed originally keyed records.
	ID        string           `json:"id"`
	Type      NotificationType `json:"type"`
	Title     string           `json:"title"`
	Message   string           `json:"message"`
	Timestamp time.Time        `json:"timestamp"`
	Read      bool             `json:"read"`
}
