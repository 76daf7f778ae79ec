package workflow

import "fmt"

// Audience says who should hear about an event.
type Audience string

const (
	// AudienceRole targets every active staff member holding Notice.Role.
	AudienceRole Audience = "role"
	// AudienceCreator targets the staff member who created the application.
	AudienceCreator Audience = "creator"
)

// Notice is the notification derived from a workflow event.
type Notice struct {
	Audience Audience
	Role     Role
	Message  string
}

// NotificationFor maps an event to the notice it should produce. Advancing
// alerts the next role; a rejection or final approval goes back to the
// application's creator.
func NotificationFor(ev Event) (Notice, bool) {
	switch ev.Kind {
	case EventAdvanced:
		if !ev.To.IsValid() {
			return Notice{}, false
		}
		return Notice{
			Audience: AudienceRole,
			Role:     ev.To,
			Message: fmt.Sprintf("Loan application #%d was approved by the %s and awaits your review as %s.",
				ev.ApplicationID, ev.From.Title(), ev.To.Title()),
		}, true
	case EventRejected:
		msg := fmt.Sprintf("Loan application #%d was rejected by the %s.", ev.ApplicationID, ev.By.Title())
		if ev.Notes != "" {
			msg += " Reason: " + ev.Notes
		}
		return Notice{Audience: AudienceCreator, Message: msg}, true
	case EventApprovedFinal:
		return Notice{
			Audience: AudienceCreator,
			Message:  fmt.Sprintf("Loan application #%d has been fully approved by the CEO.", ev.ApplicationID),
		}, true
	}
	return Notice{}, false
}

// StatusFor returns the application status string mirrored from a workflow.
func StatusFor(state WorkflowState) string {
	switch state.FinalResult {
	case ResultSuccessful:
		return "approved"
	case ResultFailed:
		return "rejected"
	}
	return "pending_" + string(state.CurrentStage)
}
