package entity

import "time"

// WorkflowHistory is an append-only record of a decision taken on an application.
type WorkflowHistory struct {
	ID            int64     `json:"id"`
	ApplicationID int64     `json:"application_id"`
	Role          string    `json:"role"`
	Decision      string    `json:"decision"`
	FromStage     string    `json:"from_stage"`
	ToStage       string    `json:"to_stage"`
	Notes         string    `json:"notes,omitempty"`
	ActorID       string    `json:"actor_id,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}
