package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/events"
	"github.com/dannygauntletai/autocrm/internal/mailer"
	"github.com/dannygauntletai/autocrm/internal/model"
	"github.com/dannygauntletai/autocrm/internal/service"
)

// Mailer is the outbound-notification surface the ticket handler uses;
// *mailer.Client satisfies it.
type Mailer interface {
	SendTicketConfirmationAsync(p mailer.ConfirmationParams)
	SendTicketResponseAsync(p mailer.ResponseParams)
}

type TicketHandler struct {
	svc    service.TicketServicer
	mail   Mailer
	events events.TicketEventProducer
}

func NewTicketHandler(svc service.TicketServicer, mail Mailer, producer events.TicketEventProducer) *TicketHandler {
	return &TicketHandler{svc: svc, mail: mail, events: producer}
}

// publishAsync fires an event in its own goroutine with its own timeout so
// it survives request cancellation but cannot hang forever.
func (h *TicketHandler) publishAsync(event string, payload map[string]interface{}) {
	if h.events == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		h.events.ProduceTicketEvent(ctx, event, payload)
	}()
}

type createTicketRequest struct {
	Subject        string  `json:"subject" binding:"required"`
	Description    string  `json:"description" binding:"required"`
	RequesterEmail string  `json:"requester_email" binding:"required,email"`
	Status         string  `json:"status"`
	Priority       string  `json:"priority"`
	Category       string  `json:"category"`
	AssigneeID     *string `json:"assignee_id"`
	TeamID         *string `json:"team_id"`
}

func (h *TicketHandler) Create(c *gin.Context) {
	var req createTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	status := model.TicketStatus(req.Status)
	if req.Status == "" {
		status = model.TicketStatusNew
	} else if !status.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
		return
	}
	priority := model.TicketPriority(req.Priority)
	if req.Priority == "" {
		priority = model.TicketPriorityNormal
	} else if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}
	category := model.TicketCategory(req.Category)
	if req.Category != "" && !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	ticket := &model.Ticket{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterEmail: req.RequesterEmail,
		Status:         status,
		Priority:       priority,
		Category:       category,
		AssigneeID:     req.AssigneeID,
		TeamID:         req.TeamID,
	}
	if err := h.svc.Create(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}
	h.publishAsync(events.TicketCreated, events.TicketPayload(ticket))
	c.JSON(http.StatusCreated, ticket)
}

type publicTicketRequest struct {
	Email       string `json:"email" binding:"required,email"`
	Subject     string `json:"subject" binding:"required"`
	Description string `json:"description" binding:"required"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
}

// CreatePublic is the unauthenticated submission endpoint behind the public
// ticket form. Status is always "new" and a confirmation email goes out
// asynchronously.
func (h *TicketHandler) CreatePublic(c *gin.Context) {
	var req publicTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	priority := model.TicketPriority(req.Priority)
	if req.Priority == "" {
		priority = model.TicketPriorityNormal
	} else if !priority.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
		return
	}
	category := model.TicketCategory(req.Category)
	if req.Category == "" {
		category = model.TicketCategoryGeneralInquiry
	} else if !category.Valid() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
		return
	}
	ticket := &model.Ticket{
		Subject:        req.Subject,
		Description:    req.Description,
		RequesterEmail: req.Email,
		Status:         model.TicketStatusNew,
		Priority:       priority,
		Category:       category,
	}
	if err := h.svc.Create(c.Request.Context(), ticket); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create ticket"})
		return
	}
	if h.mail != nil {
		h.mail.SendTicketConfirmationAsync(mailer.ConfirmationParams{
			To:          ticket.RequesterEmail,
			TicketID:    ticket.ID,
			Subject:     ticket.Subject,
			Description: ticket.Description,
		})
	}
	h.publishAsync(events.TicketCreated, events.TicketPayload(ticket))
	c.JSON(http.StatusCreated, ticket)
}

func (h *TicketHandler) Get(c *gin.Context) {
	t, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, t)
}

func (h *TicketHandler) List(c *gin.Context) {
	filter := make(map[string]interface{})
	if v := c.Query("status"); v != "" {
		filter["status = ?"] = v
	}
	if v := c.Query("priority"); v != "" {
		filter["priority = ?"] = v
	}
	if v := c.Query("category"); v != "" {
		filter["category = ?"] = v
	}
	if v := c.Query("assignee_id"); v != "" {
		filter["assignee_id = ?"] = v
	}
	if v := c.Query("team_id"); v != "" {
		filter["team_id = ?"] = v
	}
	if v := c.Query("requester_email"); v != "" {
		filter["requester_email = ?"] = v
	}

	limit := 0
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			limit = parsed
		}
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed >= 0 {
			offset = parsed
		}
	}

	items, total, err := h.svc.List(c.Request.Context(), filter, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list tickets"})
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"tickets": items,
		"total":   total,
	})
}

type updateTicketRequest struct {
	Subject     *string `json:"subject,omitempty"`
	Description *string `json:"description,omitempty"`
	Status      *string `json:"status,omitempty"`
	Priority    *string `json:"priority,omitempty"`
	Category    *string `json:"category,omitempty"`
	AssigneeID  *string `json:"assignee_id,omitempty"`
	TeamID      *string `json:"team_id,omitempty"`
}

func (h *TicketHandler) Update(c *gin.Context) {
	var req updateTicketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	changes := make(map[string]interface{})
	if req.Subject != nil {
		changes["subject"] = *req.Subject
	}
	if req.Description != nil {
		changes["description"] = *req.Description
	}
	if req.Status != nil {
		if !model.TicketStatus(*req.Status).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status"})
			return
		}
		changes["status"] = *req.Status
	}
	if req.Priority != nil {
		if !model.TicketPriority(*req.Priority).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid priority"})
			return
		}
		changes["priority"] = *req.Priority
	}
	if req.Category != nil {
		if !model.TicketCategory(*req.Category).Valid() {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid category"})
			return
		}
		changes["category"] = *req.Category
	}
	if req.AssigneeID != nil {
		changes["assignee_id"] = *req.AssigneeID
	}
	if req.TeamID != nil {
		changes["team_id"] = *req.TeamID
	}
	if len(changes) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no changes"})
		return
	}
	t, err := h.svc.Update(c.Request.Context(), c.Param("id"), changes)
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	// Re-fetch for the full entity (GORM Updates does not refresh all fields).
	if full, _ := h.svc.GetByID(c.Request.Context(), c.Param("id")); full != nil {
		h.publishAsync(events.TicketUpdated, events.TicketPayload(full))
		t = full
	}
	c.JSON(http.StatusOK, t)
}
