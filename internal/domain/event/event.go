package event

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// Payload keys used by workflow events
const (
	KeyFrom  = "from"
	KeyTo    = "to"
	KeyBy    = "by"
	KeyNotes = "notes"
)

// Event represents a domain event
type Event struct {
	ID            string                 `json:"id"`
	Type          Type                   `json:"type"`
	ApplicationID int64                  `json:"application_id"`
	Payload       map[string]interface{} `json:"payload"`
	Timestamp     time.Time              `json:"timestamp"`
	CorrelationID string                 `json:"correlation_id"`
}

// NewEvent creates a new domain event with generated IDs and the current time
func NewEvent(eventType Type, applicationID int64, payload map[string]interface{}) *Event {
	return NewEventWithCorrelation(eventType, applicationID, payload, uuid.NewString())
}

// NewEventWithCorrelation creates an event linked to a correlation chain
func NewEventWithCorrelation(eventType Type, applicationID int64, payload map[string]interface{}, correlationID string) *Event {
	if payload == nil {
		payload = make(map[string]interface{})
	}
	return &Event{
		ID:            uuid.NewString(),
		Type:          eventType,
		ApplicationID: applicationID,
		Payload:       payload,
		Timestamp:     time.Now(),
		CorrelationID: correlationID,
	}
}

// FromWorkflow wraps a workflow transition in a domain event.
func FromWorkflow(ev workflow.Event, correlationID string) *Event {
	var t Type
	switch ev.Kind {
	case workflow.EventAdvanced:
		t = TypeStageAdvanced
	case workflow.EventRejected:
		t = TypeApplicationRejected
	case workflow.EventApprovedFinal:
		t = TypeApplicationApproved
	}

	payload := map[string]interface{}{
		KeyFrom: string(ev.From),
		KeyBy:   string(ev.By),
	}
	if ev.To != "" {
		payload[KeyTo] = string(ev.To)
	}
	if ev.Notes != "" {
		payload[KeyNotes] = ev.Notes
	}
	return NewEventWithCorrelation(t, ev.ApplicationID, payload, correlationID)
}

// Submitted returns the event for a new application. Submission is the
// field officer's implicit approval, so it reads as an advance to the manager.
func Submitted(applicationID int64, correlationID string) *Event {
	return NewEventWithCorrelation(TypeApplicationSubmitted, applicationID, map[string]interface{}{
		KeyFrom: string(workflow.RoleFieldOfficer),
		KeyTo:   string(workflow.RoleManager),
		KeyBy:   string(workflow.RoleFieldOfficer),
	}, correlationID)
}

// Workflow converts the event back into the workflow transition it carries.
func (e *Event) Workflow() (workflow.Event, error) {
	var kind workflow.EventKind
	switch e.Type {
	case TypeApplicationSubmitted, TypeStageAdvanced:
		kind = workflow.EventAdvanced
	case TypeApplicationRejected:
		kind = workflow.EventRejected
	case TypeApplicationApproved:
		kind = workflow.EventApprovedFinal
	default:
		return workflow.Event{}, fmt.Errorf("event %s is not a workflow event", e.Type)
	}

	return workflow.Event{
		Kind:          kind,
		ApplicationID: e.ApplicationID,
		From:          workflow.Role(e.GetPayloadString(KeyFrom)),
		To:            workflow.Role(e.GetPayloadString(KeyTo)),
		By:            workflow.Role(e.GetPayloadString(KeyBy)),
		Notes:         e.GetPayloadString(KeyNotes),
	}, nil
}

// WithPayload returns a copy of the event with key set in its payload
func (e *Event) WithPayload(key string, value interface{}) *Event {
	payload := make(map[string]interface{}, len(e.Payload)+1)
	for k, v := range e.Payload {
		payload[k] = v
	}
	payload[key] = value

	c := *e
	c.Payload = payload
	return &c
}

// GetPayloadString retrieves a string value from the payload
func (e *Event) GetPayloadString(key string) string {
	if val, ok := e.Payload[key]; ok {
		if str, ok := val.(string); ok {
			return str
		}
	}
	return ""
}

// GetPayloadInt retrieves an int64 value from the payload
func (e *Event) GetPayloadInt(key string) int64 {
	if val, ok := e.Payload[key]; ok {
		switch v := val.(type) {
		case int64:
			return v
		case int:
			return int64(v)
		case float64:
			return int64(v)
		}
	}
	return 0
}
