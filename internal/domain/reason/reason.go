// Package reason drafts the notes recorded with a rejection or a downsized
// approval when the deciding officer leaves them blank.
package reason

import (
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

var (
	one             = decimal.NewFromInt(1)
	monthsPerYear   = decimal.NewFromInt(12)
	directorRiskCap = decimal.RequireFromString("0.6")
	hundred         = decimal.NewFromInt(100)
)

var boilerplate = map[workflow.Role]string{
	workflow.RoleFieldOfficer: "The applicant's details could not be verified during the field assessment.",
	workflow.RoleManager:      "The application is missing supporting documentation required for approval.",
	workflow.RoleDirector:     "The applicant's risk profile does not meet the company's lending criteria.",
	workflow.RoleChairperson:  "Approving this loan would raise the portfolio's risk exposure beyond acceptable limits.",
	workflow.RoleCEO:          "The loan does not align with the company's current strategic lending priorities.",
}

// RoleBoilerplate returns the default rejection note for role.
func RoleBoilerplate(role workflow.Role) string {
	if msg, ok := boilerplate[role]; ok {
		return msg
	}
	return "The application does not meet the requirements for approval at this stage."
}

// DebtToIncome returns loan / (monthlyIncome × 12). monthlyIncome must be positive.
func DebtToIncome(loan, monthlyIncome decimal.Decimal) decimal.Decimal {
	return loan.Div(monthlyIncome.Mul(monthsPerYear))
}

// GenerateRejectionReason drafts a rejection note. The first rule that
// applies wins:
//
//  1. the loan exceeds the applicant's annual income
//  2. a director sees a debt-to-income ratio above 60%
//  3. the applicant is unemployed
//  4. the deciding role's standard note
//
// Amount texts may carry thousands separators and a UGX prefix. Unparseable
// amounts, or a monthly income that is not positive, return a
// money.ValidationError.
func GenerateRejectionReason(role workflow.Role, employmentStatus, loanAmountText, monthlyIncomeText string) (string, error) {
	loan, err := money.ParseField("loan amount", loanAmountText)
	if err != nil {
		return "", err
	}
	income, err := money.ParsePositive("monthly income", monthlyIncomeText)
	if err != nil {
		return "", err
	}

	ratio := DebtToIncome(loan, income)
	switch {
	case ratio.GreaterThan(one):
		return fmt.Sprintf("The requested loan of %s exceeds the applicant's annual income of %s (debt-to-income ratio %s).",
			money.Format(loan), money.Format(income.Mul(monthsPerYear)), money.Percent(ratio)), nil
	case ratio.GreaterThan(directorRiskCap) && role == workflow.RoleDirector:
		return fmt.Sprintf("The debt-to-income ratio of %s is above the %s risk threshold set for director approval.",
			money.Percent(ratio), money.Percent(directorRiskCap)), nil
	case strings.EqualFold(strings.TrimSpace(employmentStatus), entity.EmploymentUnemployed):
		return "The applicant is currently unemployed and has no verifiable income to service the loan.", nil
	}
	return RoleBoilerplate(role), nil
}

// GenerateDownsizingReason explains an approval for less than was requested.
// The original amount and monthly income must be positive, and the approved
// amount must not exceed the original.
func GenerateDownsizingReason(originalAmountText, approvedAmountText, monthlyIncomeText string) (string, error) {
	original, err := money.ParsePositive("original amount", originalAmountText)
	if err != nil {
		return "", err
	}
	approved, err := money.ParseField("approved amount", approvedAmountText)
	if err != nil {
		return "", err
	}
	if approved.GreaterThan(original) {
		return "", &money.ValidationError{Field: "approved amount", Value: approvedAmountText, Reason: "must not exceed the original amount"}
	}
	income, err := money.ParsePositive("monthly income", monthlyIncomeText)
	if err != nil {
		return "", err
	}

	reduction := original.Sub(approved).Div(original).Mul(hundred)
	return fmt.Sprintf("The loan amount was adjusted from %s to %s, a %s%% reduction, bringing the debt-to-income ratio from %s to %s.",
		money.Format(original), money.Format(approved), reduction.StringFixed(1),
		money.Percent(DebtToIncome(original, income)), money.Percent(DebtToIncome(approved, income))), nil
}
