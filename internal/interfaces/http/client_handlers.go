package http

import (
	"bytes"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/2caleb/gold-charp-investments-sub003/internal/domain/entity"
)

// CreateClientRequest is the body of POST /api/clients
type CreateClientRequest struct {
	FullName    string `json:"full_name" binding:"required"`
	PhoneNumber string `json:"phone_number"`
	IDNumber    string `json:"id_number"`
	Email       string `json:"email"`
	Address     string `json:"address"`
}

// CreateClient handles POST /api/clients
func (h *Handlers) CreateClient(c *gin.Context) {
	var req CreateClientRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, err.Error())
		return
	}
	client, err := h.deps.Clients.Create(c.Request.Context(), &entity.Client{
		FullName:    req.FullName,
		PhoneNumber: req.PhoneNumber,
		IDNumber:    req.IDNumber,
		Email:       req.Email,
		Address:     req.Address,
	})
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusCreated, client)
}

// ListClients handles GET /api/clients
func (h *Handlers) ListClients(c *gin.Context) {
	var page Page
	if err := c.ShouldBindQuery(&page); err != nil {
		fail(c, http.StatusBadRequest, "invalid query parameters")
		return
	}
	clients, err := h.deps.Clients.List(c.Request.Context(), page.Limit, page.Offset)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, clients)
}

// GetClient handles GET /api/clients/:id
func (h *Handlers) GetClient(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	client, err := h.deps.Clients.Get(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, client)
}

// ClientApplications handles GET /api/clients/:id/applications. Results are
// ranked by match score.
func (h *Handlers) ClientApplications(c *gin.Context) {
	id, valid := pathID(c)
	if !valid {
		return
	}
	ranked, err := h.deps.Matches.RankForClient(c.Request.Context(), id)
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, ranked)
}

// ExportClients handles GET /api/clients/export
func (h *Handlers) ExportClients(c *gin.Context) {
	var buf bytes.Buffer
	n, err := h.deps.Transfer.ExportClients(c.Request.Context(), &buf)
	if err != nil {
		h.writeError(c, err)
		return
	}
	h.sendWorkbook(c, "clients", n, buf.Bytes())
}

// ImportClients handles POST /api/clients/import (multipart field "file")
func (h *Handlers) ImportClients(c *gin.Context) {
	fileName, data, valid := h.upload(c)
	if !valid {
		return
	}
	report, err := h.deps.Transfer.ImportClients(c.Request.Context(), fileName, bytes.NewReader(data))
	if err != nil {
		h.writeError(c, err)
		return
	}
	ok(c, http.StatusOK, report)
}
