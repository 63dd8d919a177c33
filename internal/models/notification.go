package models

import "time"

// NotificationEvent names events published to the notification service.
type NotificationEvent string

const (
	NotificationItemApproved      NotificationEvent = "VERIFICATION_APPROVED"
	NotificationItemRejected      NotificationEvent = "VERIFICATION_REJECTED"
	NotificationItemOverridden    NotificationEvent = "AUTO_VERIFICATION_OVERRIDDEN"
	NotificationAchievementEarned NotificationEvent = "ACHIEVEMENT_EARNED"
)

// Notification is the payload handed to the external delivery service.
type Notification struct {
	ID          string                 `json:"id"`
	Event       NotificationEvent      `json:"event"`
	RecipientID string                 `json:"recipientId"`
	TargetType  string                 `json:"targetType,omitempty"`
	TargetID    string                 `json:"targetId,omitempty"`
	Payload     map[string]interface{} `json:"payload,omitempty"`
	CreatedAt   time.Time              `json:"createdAt"`
}
