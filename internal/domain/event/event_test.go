package event

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

func TestType_IsValid(t *testing.T) {
	for _, typ := range WorkflowTypes {
		assert.True(t, typ.IsValid(), typ)
	}
	assert.False(t, Type("instance.created").IsValid())
	assert.Equal(t, "workflow.advanced", TypeStageAdvanced.String())
}

func TestNewEvent(t *testing.T) {
	e := NewEvent(TypeStageAdvanced, 7, nil)

	_, err := uuid.Parse(e.ID)
	assert.NoError(t, err)
	_, err = uuid.Parse(e.CorrelationID)
	assert.NoError(t, err)
	assert.NotEqual(t, e.ID, e.CorrelationID)
	assert.Equal(t, int64(7), e.ApplicationID)
	assert.NotNil(t, e.Payload)
	assert.False(t, e.Timestamp.IsZero())
}

func TestFromWorkflow_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   workflow.Event
		typ  Type
	}{
		{
			name: "advanced",
			in:   workflow.Event{Kind: workflow.EventAdvanced, ApplicationID: 3, From: workflow.RoleManager, To: workflow.RoleDirector, By: workflow.RoleManager, Notes: "ok"},
			typ:  TypeStageAdvanced,
		},
		{
			name: "rejected",
			in:   workflow.Event{Kind: workflow.EventRejected, ApplicationID: 3, From: workflow.RoleDirector, By: workflow.RoleDirector, Notes: "too risky"},
			typ:  TypeApplicationRejected,
		},
		{
			name: "approved final",
			in:   workflow.Event{Kind: workflow.EventApprovedFinal, ApplicationID: 3, From: workflow.RoleCEO, By: workflow.RoleCEO},
			typ:  TypeApplicationApproved,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := FromWorkflow(tt.in, "corr-1")
			assert.Equal(t, tt.typ, e.Type)
			assert.Equal(t, "corr-1", e.CorrelationID)

			back, err := e.Workflow()
			require.NoError(t, err)
			assert.Equal(t, tt.in, back)
		})
	}
}

func TestSubmitted_ReadsAsAdvanceToManager(t *testing.T) {
	back, err := Submitted(11, "c").Workflow()
	require.NoError(t, err)
	assert.Equal(t, workflow.EventAdvanced, back.Kind)
	assert.Equal(t, workflow.RoleManager, back.To)
	assert.Equal(t, int64(11), back.ApplicationID)
}

func TestWorkflow_UnknownType(t *testing.T) {
	_, err := NewEvent(Type("other"), 1, nil).Workflow()
	assert.Error(t, err)
}

func TestWithPayload_DoesNotMutateOriginal(t *testing.T) {
	e := NewEvent(TypeStageAdvanced, 1, map[string]interface{}{"a": "1"})
	e2 := e.WithPayload("b", int64(2))

	assert.Equal(t, "", e.GetPayloadString("b"))
	assert.Equal(t, int64(2), e2.GetPayloadInt("b"))
	assert.Equal(t, "1", e2.GetPayloadString("a"))
	assert.Equal(t, e.ID, e2.ID)
}
