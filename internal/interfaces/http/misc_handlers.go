package http

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/reason"
	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/workflow"
)

// RejectionReasonRequest is the body of POST /api/reasons/rejection
type RejectionReasonRequest struct {
	Role             string     `json:"role" binding:"required"`
	EmploymentStatus string     `json:"employment_status"`
	LoanAmount       AmountText `json:"loan_amount"`
	MonthlyIncome    AmountText `json:"monthly_income"`
}

// RejectionReason handles POST /api/reasons/rejection
func (h *Handlers) RejectionReason(c *gin.Context) {
	var req RejectionReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	role, err := workflow.ParseRole(req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}
	text, err := reason.GenerateRejectionReason(role, req.EmploymentStatus, string(req.LoanAmount), string(req.MonthlyIncome))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"reason": text})
}

// DownsizingReasonRequest is the body of POST /api/reasons/downsizing
type DownsizingReasonRequest struct {
	OriginalAmount AmountText `json:"original_amount"`
	ApprovedAmount AmountText `json:"approved_amount"`
	MonthlyIncome  AmountText `json:"monthly_income"`
}

// DownsizingReason handles POST /api/reasons/downsizing
func (h *Handlers) DownsizingReason(c *gin.Context) {
	var req DownsizingReasonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	text, err := reason.GenerateDownsizingReason(string(req.OriginalAmount), string(req.ApprovedAmount), string(req.MonthlyIncome))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"reason": text})
}

// ListNotificationsRequest represents query parameters for GET /api/notifications
type ListNotificationsRequest struct {
	UserID string `form:"user_id" binding:"required"`
	Page
}

// ListNotifications handles GET /api/notifications?user_id=
func (h *Handlers) ListNotifications(c *gin.Context) {
	var req ListNotificationsRequest
	if err := c.ShouldBindQuery(&req); err != nil {
		fail(c, http.StatusBadRequest, "user_id is required")
		return
	}
	list, err := h.deps.Notifications.ListForUser(c.Request.Context(), req.UserID, req.Limit, req.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, list)
}

// MarkNotificationRead handles POST /api/notifications/:id/read
func (h *Handlers) MarkNotificationRead(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	if err := h.deps.Notifications.MarkRead(c.Request.Context(), id); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, gin.H{"id": id, "is_read": true})
}

// UpsertStaffRequest is the body of PUT /api/staff/:id
type UpsertStaffRequest struct {
	FullName   string `json:"full_name"`
	Role       string `json:"role" binding:"required"`
	LarkOpenID string `json:"lark_open_id"`
	Active     *bool  `json:"active"`
}

// UpsertStaff handles PUT /api/staff/:id
func (h *Handlers) UpsertStaff(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	var req UpsertStaffRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	role, err := workflow.ParseRole(req.Role)
	if err != nil {
		h.writeError(c, err)
		return
	}

	staff := &entity.StaffMember{
		ID:         id,
		FullName:   req.FullName,
		Role:       string(role),
		LarkOpenID: req.LarkOpenID,
		Active:     req.Active == nil || *req.Active,
	}
	if err := h.deps.Staff.Upsert(c.Request.Context(), staff); err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, staff)
}
