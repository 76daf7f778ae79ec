package reason

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

func TestGenerateRejectionReason_ExceedsAnnualIncome(t *testing.T) {
	msg, err := GenerateRejectionReason(workflow.RoleDirector, "employed", "50,000,000", "2,000,000")
	require.NoError(t, err)

	assert.Contains(t, msg, "exceeds the applicant's annual income")
	assert.Contains(t, msg, "208.3%")
	assert.Contains(t, msg, "UGX 50,000,000")
	assert.Contains(t, msg, "UGX 24,000,000")
}

func TestGenerateRejectionReason_RatioOfOneDoesNotExceed(t *testing.T) {
	msg, err := GenerateRejectionReason(workflow.RoleManager, "employed", "24,000,000", "2,000,000")
	require.NoError(t, err)
	assert.NotContains(t, msg, "exceeds")
	assert.Equal(t, RoleBoilerplate(workflow.RoleManager), msg)

	msg, err = GenerateRejectionReason(workflow.RoleDirector, "employed", "24,000,000", "2,000,000")
	require.NoError(t, err)
	assert.NotContains(t, msg, "annual income")
	assert.Contains(t, msg, "100.0%")
	assert.Contains(t, msg, "risk threshold")
}

func TestGenerateRejectionReason_Priority(t *testing.T) {
	tests := []struct {
		name       string
		role       workflow.Role
		employment string
		loan       string
		income     string
		contains   string
	}{
		{"director above risk cap", workflow.RoleDirector, "employed", "18,000,000", "2,000,000", "75.0%"},
		{"manager above risk cap falls through", workflow.RoleManager, "employed", "18,000,000", "2,000,000", "documentation"},
		{"unemployed", workflow.RoleManager, "Unemployed", "12,000,000", "2,000,000", "unemployed"},
		{"director boilerplate", workflow.RoleDirector, "self-employed", "1,000,000", "2,000,000", "risk profile"},
		{"chairperson boilerplate", workflow.RoleChairperson, "employed", "1,000,000", "2,000,000", "portfolio"},
		{"ceo boilerplate", workflow.RoleCEO, "employed", "1,000,000", "2,000,000", "strategic"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := GenerateRejectionReason(tt.role, tt.employment, tt.loan, tt.income)
			require.NoError(t, err)
			assert.Contains(t, msg, tt.contains)
		})
	}
}

func TestGenerateRejectionReason_InvalidInput(t *testing.T) {
	tests := []struct {
		name   string
		loan   string
		income string
	}{
		{"non-numeric loan", "lots", "2,000,000"},
		{"non-numeric income", "1,000,000", "n/a"},
		{"zero income", "1,000,000", "0"},
		{"empty income", "1,000,000", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := GenerateRejectionReason(workflow.RoleManager, "employed", tt.loan, tt.income)
			assert.ErrorIs(t, err, money.ErrValidation)
			assert.Empty(t, msg)
		})
	}
}

func TestGenerateDownsizingReason(t *testing.T) {
	msg, err := GenerateDownsizingReason("50,000,000", "30,000,000", "4,000,000")
	require.NoError(t, err)

	assert.Contains(t, msg, "UGX 50,000,000")
	assert.Contains(t, msg, "UGX 30,000,000")
	assert.Contains(t, msg, "40.0% reduction")
	assert.Contains(t, msg, "104.2%")
	assert.Contains(t, msg, "62.5%")
}

func TestGenerateDownsizingReason_InvalidInput(t *testing.T) {
	_, err := GenerateDownsizingReason("0", "0", "1,000")
	assert.ErrorIs(t, err, money.ErrValidation)

	_, err = GenerateDownsizingReason("1,000", "abc", "1,000")
	assert.ErrorIs(t, err, money.ErrValidation)

	_, err = GenerateDownsizingReason("1,000", "500", "-1")
	assert.ErrorIs(t, err, money.ErrValidation)
}

func TestGenerateDownsizingReason_ApprovedAboveOriginal(t *testing.T) {
	tests := []struct {
		name     string
		approved string
		wantErr  bool
	}{
		{name: "above original", approved: "12,000,000", wantErr: true},
		{name: "equal to original", approved: "10,000,000"},
		{name: "below original", approved: "8,000,000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			msg, err := GenerateDownsizingReason("10,000,000", tt.approved, "1,000,000")
			if tt.wantErr {
				assert.ErrorIs(t, err, money.ErrValidation)
				assert.Contains(t, err.Error(), "approved amount")
				return
			}
			require.NoError(t, err)
			assert.NotContains(t, msg, "a -")
		})
	}
}

func TestDebtToIncome(t *testing.T) {
	ratio := DebtToIncome(decimal.NewFromInt(24000000), decimal.NewFromInt(2000000))
	assert.True(t, ratio.Equal(decimal.NewFromInt(1)))
}
