package entity

import "time"

// Notification is an in-app message for a staff member. DeliveryStatus
// tracks the push to Lark, independently of whether the user has read it.
type Notification struct {
	ID                int64      `json:"id"`
	UserID            string     `json:"user_id"`
	Message           string     `json:"message"`
	RelatedEntityType string     `json:"related_entity_type"`
	RelatedEntityID   int64      `json:"related_entity_id"`
	IsRead            bool       `json:"is_read"`
	DeliveryStatus    string     `json:"delivery_status"`
	ErrorMessage      string     `json:"error_message,omitempty"`
	SentAt            *time.Time `json:"sent_at,omitempty"`
	CreatedAt         time.Time  `json:"created_at"`
}
