package entity

import "time"

// StaffMember is an employee who can act in the approval chain and receive
// notifications. LarkOpenID is empty for staff without a Lark account.
type StaffMember struct {
	ID         string    `json:"id"`
	FullName   string    `json:"full_name"`
	Role       string    `json:"role"`
	LarkOpenID string    `json:"lark_open_id,omitempty"`
	Active     bool      `json:"active"`
	CreatedAt  time.Time `json:"created_at"`
}
