package entity

import "time"

// Client is a registered borrower.
type Client struct {
	ID          int64     `json:"id"`
	FullName    string    `json:"full_name"`
	PhoneNumber string    `json:"phone_number"`
	IDNumber    string    `json:"id_number"`
	Email       string    `json:"email,omitempty"`
	Address     string    `json:"address,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
