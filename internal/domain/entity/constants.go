package entity

// Notification delivery status constants
const (
	DeliveryPending = "PENDING"
	DeliverySent    = "SENT"
	DeliveryFailed  = "FAILED"
	DeliverySkipped = "SKIPPED"
)

// Related entity types carried on notifications
const (
	EntityLoanApplication = "loan_application"
	EntityClient          = "client"
)

// EmploymentUnemployed is the employment status that triggers the
// unemployment rejection reason.
const EmploymentUnemployed = "unemployed"
