package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// LoanApplication is a request for a loan filed by a field officer on a
// client's behalf. Status mirrors the application's workflow.
type LoanApplication struct {
	ID               int64           `json:"id"`
	ClientName       string          `json:"client_name"`
	PhoneNumber      string          `json:"phone_number"`
	IDNumber         string          `json:"id_number"`
	LoanAmount       decimal.Decimal `json:"loan_amount"`
	LoanType         string          `json:"loan_type,omitempty"`
	EmploymentStatus string          `json:"employment_status,omitempty"`
	MonthlyIncome    decimal.Decimal `json:"monthly_income"`
	Status           string          `json:"status"`
	CreatedBy        string          `json:"created_by,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}
