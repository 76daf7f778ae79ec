package http

import (
	"bytes"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"github.com/2caleb/gold-charp-investments-sub003/internal/application/service"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/money"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

// Handlers contains all HTTP request handlers
type Handlers struct {
	deps           Dependencies
	maxUploadBytes int64
	logger         Logger
}

// NewHandlers creates a new Handlers instance
func NewHandlers(deps Dependencies, maxUploadBytes int64, logger Logger) *Handlers {
	return &Handlers{
		deps:           deps,
		maxUploadBytes: maxUploadBytes,
		logger:         logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status     string      `json:"status"`
	Timestamp  string      `json:"timestamp"`
	Components interface{} `json:"components,omitempty"`
}

// HealthCheck handles GET /health
func (h *Handlers) HealthCheck(c *gin.Context) {
	response := HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC().Format(time.RFC3339),
	}
	if h.deps.Health != nil {
		healthy, details := h.deps.Health(c.Request.Context())
		response.Components = details
		if !healthy {
			response.Status = "unhealthy"
			c.JSON(http.StatusServiceUnavailable, Response{Success: false, Data: response, Error: "unhealthy"})
			return
		}
	}
	ok(c, http.StatusOK, response)
}

// SubmitApplicationRequest is the body of POST /api/applications
type SubmitApplicationRequest struct {
	ClientName       string     `json:"client_name" binding:"required"`
	PhoneNumber      string     `json:"phone_number"`
	IDNumber         string     `json:"id_number"`
	LoanAmount       AmountText `json:"loan_amount" binding:"required"`
	LoanType         string     `json:"loan_type"`
	EmploymentStatus string     `json:"employment_status"`
	MonthlyIncome    AmountText `json:"monthly_income"`
	CreatedBy        string     `json:"created_by"`
}

// SubmitApplication handles POST /api/applications
func (h *Handlers) SubmitApplication(c *gin.Context) {
	var req SubmitApplicationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	amount, err := money.ParsePositive("loan amount", string(req.LoanAmount))
	if err != nil {
		h.writeError(c, err)
		return
	}
	income := decimal.Zero
	if req.MonthlyIncome != "" {
		if income, err = money.ParseField("monthly income", string(req.MonthlyIncome)); err != nil {
			h.writeError(c, err)
			return
		}
	}

	app, err := h.deps.Loans.Submit(c.Request.Context(), &entity.LoanApplication{
		ClientName:       req.ClientName,
		PhoneNumber:      req.PhoneNumber,
		IDNumber:         req.IDNumber,
		LoanAmount:       amount,
		LoanType:         req.LoanType,
		EmploymentStatus: req.EmploymentStatus,
		MonthlyIncome:    income,
		CreatedBy:        req.CreatedBy,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, app)
}

// ListApplications handles GET /api/applications
func (h *Handlers) ListApplications(c *gin.Context) {
	var page Page
	if err := c.ShouldBindQuery(&page); err != nil {
		fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	apps, err := h.deps.Loans.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, apps)
}

// GetApplication handles GET /api/applications/:id
func (h *Handlers) GetApplication(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	app, err := h.deps.Loans.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, app)
}

// GetWorkflow handles GET /api/applications/:id/workflow
func (h *Handlers) GetWorkflow(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	state, err := h.deps.Workflow.GetWorkflow(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{
		"workflow": state,
		"status":   workflow.StatusFor(*state),
	})
}

// GetHistory handles GET /api/applications/:id/history
func (h *Handlers) GetHistory(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	history, err := h.deps.Workflow.History(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, history)
}

// DecisionRequest is the body of POST /api/applications/:id/decisions
type DecisionRequest struct {
	Role     string `json:"role" binding:"required"`
	Decision string `json:"decision" binding:"required"`
	Notes    string `json:"notes"`
	ActorID  string `json:"actor_id"`
}

// RecordDecision handles POST /api/applications/:id/decisions
func (h *Handlers) RecordDecision(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}

	role, err := workflow.ParseRole(req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	decision, err := workflow.ParseDecision(req.Decision)
	if err != nil {
		h.writeError(c, err)
		return
	}

	result, err := h.deps.Workflow.RecordDecision(c.Request.Context(), service.DecisionCommand{
		ApplicationID: id,
		Role:          role,
		Decision:      decision,
		Notes:         req.Notes,
		ActorID:       req.ActorID,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, result)
}

// ExportApplications handles GET /api/applications/export
func (h *Handlers) ExportApplications(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.deps.Transfer.ExportApplications(c.Request.Context(), &buf)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.sendWorkbook(c, "applications", n, buf.Bytes())
}

// ImportApplications handles POST /api/applications/import (multipart field "file")
func (h *Handlers) ImportApplications(c *gin.Context) {
	fileName, data, valid := h.upload(c)
	if !valid {
		return
	}
	report, err := h.deps.Transfer.ImportApplications(c.Request.Context(), fileName, bytes.NewReader(data), c.PostForm("created_by"))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}

func (h *Handlers) sendWorkbook(c *gin.Context, kind string, rows int, data []byte) {
	name := fmt.Sprintf("%s-%s.xlsx", kind, time.Now().UTC().Format("20060102"))
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, name))
	c.Header("X-Row-Count", fmt.Sprint(rows))
	c.Data(http.StatusOK, xlsxContentType, data)
}

// upload reads the multipart "file" field, enforcing the size limit
func (h *Handlers) upload(c *gin.Context) (string, []byte, bool) {
	if h.maxUploadBytes > 0 {
		c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)
	}
	fh, err := c.FormFile("file")
	if err != nil {
		fail(c, http.StatusBadRequest, "multipart field \"file\" is required")
		return "", nil, false
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, http.StatusBadRequest, "cannot open uploaded file")
		return "", nil, false
	}
	defer f.Close()

	var buf bytes.Buffer
	if _, err := buf.ReadFrom(f); err != nil {
		fail(c, http.StatusBadRequest, "cannot read uploaded file")
		return "", nil, false
	}
	return fh.Filename, buf.Bytes(), true
}
