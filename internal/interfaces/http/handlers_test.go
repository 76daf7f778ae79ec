package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/port"
	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/matching"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type fakeLoans struct {
	submitted *entity.LoanApplication
	apps      map[int64]*entity.LoanApplication
	err       error
}

func (f *fakeLoans) Submit(_ context.Context, app *entity.LoanApplication) (*entity.LoanApplication, error) {
	if f.err != nil {
		return nil, f.err
	}
	app.ID = 1
	app.Status = "pending"
	f.submitted = app
	return app, nil
}

func (f *fakeLoans) Get(_ context.Context, id int64) (*entity.LoanApplication, error) {
	if app, ok := f.apps[id]; ok {
		return app, nil
	}
	return nil, fmt.Errorf("application %d: %w", id, port.ErrNotFound)
}

func (f *fakeLoans) List(context.Context, int, int) ([]*entity.LoanApplication, error) {
	if f.err != nil {
		return nil, f.err
	}
	return []*entity.LoanApplication{}, nil
}

type fakeWorkflow struct {
	cmd service.DecisionCommand
	err error
}

func (f *fakeWorkflow) RecordDecision(_ context.Context, cmd service.DecisionCommand) (*service.DecisionResult, error) {
	f.cmd = cmd
	if f.err != nil {
		return nil, f.err
	}
	state := workflow.NewWorkflowState(cmd.ApplicationID)
	return &service.DecisionResult{State: state, Status: workflow.StatusFor(state)}, nil
}

func (f *fakeWorkflow) GetWorkflow(_ context.Context, id int64) (*workflow.WorkflowState, error) {
	state := workflow.NewWorkflowState(id)
	return &state, nil
}

func (f *fakeWorkflow) History(context.Context, int64) ([]*entity.WorkflowHistory, error) {
	return []*entity.WorkflowHistory{}, nil
}

type fakeMatches struct{}

func (fakeMatches) ApplicationsForClient(context.Context, int64) ([]entity.LoanApplication, error) {
	return nil, nil
}

func (fakeMatches) RankForClient(context.Context, int64) ([]matching.MatchResult, error) {
	return []matching.MatchResult{}, nil
}

type fakeNotifications struct {
	service.NotificationService
	userID string
	readID int64
}

func (f *fakeNotifications) ListForUser(_ context.Context, userID string, _, _ int) ([]*entity.Notification, error) {
	f.userID = userID
	return []*entity.Notification{{ID: 1, UserID: userID, Message: "hello"}}, nil
}

func (f *fakeNotifications) MarkRead(_ context.Context, id int64) error {
	f.readID = id
	return nil
}

type fakeTransfer struct {
	fileName  string
	createdBy string
	payload   []byte
}

func (f *fakeTransfer) ExportApplications(_ context.Context, w io.Writer) (int, error) {
	_, err := w.Write([]byte("PK-apps"))
	return 2, err
}

func (f *fakeTransfer) ExportClients(_ context.Context, w io.Writer) (int, error) {
	_, err := w.Write([]byte("PK-clients"))
	return 1, err
}

func (f *fakeTransfer) ImportApplications(_ context.Context, fileName string, r io.Reader, createdBy string) (*service.ImportReport, error) {
	f.fileName = fileName
	f.createdBy = createdBy
	f.payload, _ = io.ReadAll(r)
	return &service.ImportReport{Imported: 3, Failed: []port.RowError{{Row: 4, Message: "bad amount"}}}, nil
}

func (f *fakeTransfer) ImportClients(_ context.Context, fileName string, r io.Reader) (*service.ImportReport, error) {
	f.fileName = fileName
	f.payload, _ = io.ReadAll(r)
	return &service.ImportReport{Imported: 1}, nil
}

type fakeStaff struct {
	port.StaffRepository
	saved *entity.StaffMember
}

func (f *fakeStaff) Upsert(_ context.Context, staff *entity.StaffMember) error {
	f.saved = staff
	return nil
}

type fixture struct {
	router   *gin.Engine
	loans    *fakeLoans
	workflow *fakeWorkflow
	notes    *fakeNotifications
	transfer *fakeTransfer
	staff    *fakeStaff
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		loans:    &fakeLoans{apps: map[int64]*entity.LoanApplication{7: {ID: 7, ClientName: "Jane Doe"}}},
		workflow: &fakeWorkflow{},
		notes:    &fakeNotifications{},
		transfer: &fakeTransfer{},
		staff:    &fakeStaff{},
	}
	cfg := DefaultServerConfig()
	cfg.Mode = gin.TestMode
	server := NewServer(cfg, Dependencies{
		Loans:         f.loans,
		Workflow:      f.workflow,
		Clients:       service.NewClientService(nil, nopLogger{}),
		Matches:       fakeMatches{},
		Notifications: f.notes,
		Transfer:      f.transfer,
		Staff:         f.staff,
	}, nopLogger{})
	f.router = server.Router()
	return f
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}) (*httptest.ResponseRecorder, Response) {
	t.Helper()
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	var resp Response
	if rec.Header().Get("Content-Type") != xlsxContentType {
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp), rec.Body.String())
	}
	return rec, resp
}

func TestHealthCheck(t *testing.T) {
	f := newFixture(t)
	rec, resp := f.do(t, http.MethodGet, "/health", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
}

func TestSubmitApplication(t *testing.T) {
	t.Run("amount as text", func(t *testing.T) {
		f := newFixture(t)
		rec, resp := f.do(t, http.MethodPost, "/api/applications", map[string]interface{}{
			"client_name":    "Jane Doe",
			"loan_amount":    "UGX 2,000,000",
			"monthly_income": "500,000",
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.True(t, resp.Success)
		assert.Equal(t, "2000000", f.loans.submitted.LoanAmount.String())
		assert.Equal(t, "500000", f.loans.submitted.MonthlyIncome.String())
	})

	t.Run("amount as number", func(t *testing.T) {
		f := newFixture(t)
		rec, _ := f.do(t, http.MethodPost, "/api/applications", map[string]interface{}{
			"client_name": "Jane Doe",
			"loan_amount": 1500000,
		})
		require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
		assert.Equal(t, "1500000", f.loans.submitted.LoanAmount.String())
		assert.True(t, f.loans.submitted.MonthlyIncome.IsZero())
	})

	t.Run("bad amount", func(t *testing.T) {
		f := newFixture(t)
		rec, resp := f.do(t, http.MethodPost, "/api/applications", map[string]interface{}{
			"client_name": "Jane Doe",
			"loan_amount": "lots",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.False(t, resp.Success)
		assert.Contains(t, resp.Error, "loan amount")
		assert.Nil(t, f.loans.submitted)
	})

	t.Run("missing client name", func(t *testing.T) {
		f := newFixture(t)
		rec, _ := f.do(t, http.MethodPost, "/api/applications", map[string]interface{}{"loan_amount": "100"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})
}

func TestGetApplication(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodGet, "/api/applications/7", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)

	rec, resp = f.do(t, http.MethodGet, "/api/applications/99", nil)
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.False(t, resp.Success)

	rec, _ = f.do(t, http.MethodGet, "/api/applications/abc", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestInternalErrorsAreHidden(t *testing.T) {
	f := newFixture(t)
	f.loans.err = errors.New("disk on fire")

	rec, resp := f.do(t, http.MethodGet, "/api/applications", nil)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal server error", resp.Error)
}

func TestRecordDecision(t *testing.T) {
	t.Run("passes parsed command", func(t *testing.T) {
		f := newFixture(t)
		rec, resp := f.do(t, http.MethodPost, "/api/applications/7/decisions", map[string]string{
			"role":     "manager",
			"decision": "approve",
			"notes":    "fine",
			"actor_id": "u-1",
		})
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		assert.True(t, resp.Success)
		assert.Equal(t, int64(7), f.workflow.cmd.ApplicationID)
		assert.Equal(t, workflow.RoleManager, f.workflow.cmd.Role)
		assert.Equal(t, workflow.DecisionApprove, f.workflow.cmd.Decision)
		assert.Equal(t, "u-1", f.workflow.cmd.ActorID)
	})

	t.Run("unknown role", func(t *testing.T) {
		f := newFixture(t)
		rec, _ := f.do(t, http.MethodPost, "/api/applications/7/decisions", map[string]string{
			"role":     "janitor",
			"decision": "approve",
		})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("out of turn", func(t *testing.T) {
		f := newFixture(t)
		f.workflow.err = fmt.Errorf("director cannot decide yet: %w", workflow.ErrForbidden)
		rec, resp := f.do(t, http.MethodPost, "/api/applications/7/decisions", map[string]string{
			"role":     "director",
			"decision": "approve",
		})
		assert.Equal(t, http.StatusForbidden, rec.Code)
		assert.Contains(t, resp.Error, "not permitted")
	})

	t.Run("concurrent update", func(t *testing.T) {
		f := newFixture(t)
		f.workflow.err = fmt.Errorf("workflow 7: %w", port.ErrConflict)
		rec, _ := f.do(t, http.MethodPost, "/api/applications/7/decisions", map[string]string{
			"role":     "manager",
			"decision": "approve",
		})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})
}

func TestReasons(t *testing.T) {
	f := newFixture(t)

	rec, resp := f.do(t, http.MethodPost, "/api/reasons/rejection", map[string]interface{}{
		"role":              "manager",
		"employment_status": "employed",
		"loan_amount":       "UGX 50,000,000",
		"monthly_income":    1000000,
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	data := resp.Data.(map[string]interface{})
	assert.Contains(t, data["reason"], "exceeds the applicant's annual income")

	rec, _ = f.do(t, http.MethodPost, "/api/reasons/rejection", map[string]interface{}{
		"role":           "manager",
		"loan_amount":    "100",
		"monthly_income": "0",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp = f.do(t, http.MethodPost, "/api/reasons/downsizing", map[string]interface{}{
		"original_amount": "10,000,000",
		"approved_amount": "6,000,000",
		"monthly_income":  "1,000,000",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.NotEmpty(t, resp.Data.(map[string]interface{})["reason"])
}

func TestNotifications(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodGet, "/api/notifications", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec, resp := f.do(t, http.MethodGet, "/api/notifications?user_id=mgr-1", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Equal(t, "mgr-1", f.notes.userID)

	rec, _ = f.do(t, http.MethodPost, "/api/notifications/5/read", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, int64(5), f.notes.readID)
}

func TestUpsertStaff(t *testing.T) {
	f := newFixture(t)

	rec, _ := f.do(t, http.MethodPut, "/api/staff/mgr-1", map[string]string{
		"full_name":    "Grace Manager",
		"role":         "Manager",
		"lark_open_id": "ou_123",
	})
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	require.NotNil(t, f.staff.saved)
	assert.Equal(t, "mgr-1", f.staff.saved.ID)
	assert.Equal(t, string(workflow.RoleManager), f.staff.saved.Role)
	assert.True(t, f.staff.saved.Active)

	rec, _ = f.do(t, http.MethodPut, "/api/staff/x", map[string]string{"role": "janitor"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestExportApplications(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodGet, "/api/applications/export", nil)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, xlsxContentType, rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "applications-")
	assert.Equal(t, "2", rec.Header().Get("X-Row-Count"))
	assert.Equal(t, "PK-apps", rec.Body.String())
}

func TestImportApplications(t *testing.T) {
	f := newFixture(t)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("created_by", "officer-1"))
	part, err := mw.CreateFormFile("file", "batch.xlsx")
	require.NoError(t, err)
	_, err = part.Write([]byte("workbook-bytes"))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/applications/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	f.router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "batch.xlsx", f.transfer.fileName)
	assert.Equal(t, "officer-1", f.transfer.createdBy)
	assert.Equal(t, "workbook-bytes", string(f.transfer.payload))

	var resp struct {
		Data service.ImportReport `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 3, resp.Data.Imported)
	require.Len(t, resp.Data.Failed, 1)
	assert.Equal(t, 4, resp.Data.Failed[0].Row)
}

func TestImportWithoutFile(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodPost, "/api/clients/import", nil)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateClientValidation(t *testing.T) {
	f := newFixture(t)
	rec, _ := f.do(t, http.MethodPost, "/api/clients", map[string]string{
		"full_name": "Jane Doe",
		"email":     "not-an-email",
	})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}
