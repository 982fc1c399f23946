package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/events"
	"github.com/dannygauntletai/autocrm/internal/mailer"
	"github.com/dannygauntletai/autocrm/internal/model"
)

type createCommentRequest struct {
	AuthorID   string `json:"author_id" binding:"required"`
	Content    string `json:"content" binding:"required"`
	IsInternal bool   `json:"is_internal"`
}

// CreateComment records a staff reply. Customer-visible replies trigger a
// notification email to the requester; internal notes never leave the
// system.
func (h *TicketHandler) CreateComment(c *gin.Context) {
	ticket, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	var req createCommentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid body"})
		return
	}
	comment, err := h.svc.AddComment(c.Request.Context(), ticket.ID,
		model.StaffAuthor(req.AuthorID), req.Content, req.IsInternal, false)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to create comment"})
		return
	}

	if !req.IsInternal && ticket.RequesterEmail != "" && h.mail != nil {
		responder := "Support Team"
		if profile, err := h.svc.GetProfile(c.Request.Context(), req.AuthorID); err == nil {
			responder = profile.DisplayName()
		}
		h.mail.SendTicketResponseAsync(mailer.ResponseParams{
			To:            ticket.RequesterEmail,
			TicketID:      ticket.ID,
			Subject:       ticket.Subject,
			Response:      req.Content,
			ResponderName: responder,
		})
	}
	h.publishAsync(events.CommentCreated, events.CommentPayload(comment))
	c.JSON(http.StatusCreated, comment)
}

func (h *TicketHandler) ListComments(c *gin.Context) {
	ticket, err := h.svc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, errs.ErrTicketNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "ticket not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	items, err := h.svc.ListComments(c.Request.Context(), ticket.ID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "failed to list comments"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"comments": items})
}
