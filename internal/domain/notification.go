package domain

import (
	"fmt"
	"time"
)

type NotificationType string

const (
	NotificationInfo    NotificationType = "info"
	NotificationSuccess NotificationType = "success"
	NotificationWarning NotificationType = "warning"
)

// ParseNotificationType defaults an empty string to info.
func ParseNotificationType(s string) (NotificationType, error) {
	switch t := NotificationType(s); t {
	case "":
		return NotificationInfo, nil
	case NotificationInfo, NotificationSuccess, NotificationWarning:
		return t, nil
	}
	return "", fmt.Errorf("unknown notification type %q: %w", s, ErrValidation)
}

type Notification struct {
	NotificationID string           `json:"id" dynamodbav:"notification_id"`
	UserEmail      string           `json:"user_email" dynamodbav:"user_email"`
	Message        string           `json:"message" dynamodbav:"message"`
	Type           NotificationType `json:"type" dynamodbav:"type"`
	Read           bool             `json:"read" dynamodbav:"read"`
	CreatedAt      time.Time        `json:"created" dynamodbav:"created_at"`
}

// SendNotificationRequest is the admin send payload. UserEmail is required
// unless Broadcast is set.
type SendNotificationRequest struct {
	UserEmail string `json:"user_email" validate:"omitempty,email"`
	Message   string `json:"message" validate:"required"`
	Type      string `json:"type"`
	Broadcast bool   `json:"broadcast"`
}
