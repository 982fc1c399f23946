package handler

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/events"
	"github.com/dannygauntletai/autocrm/internal/inbound"
	"github.com/dannygauntletai/autocrm/internal/model"
)

// ReplyProcessor is the core pipeline behind the webhook;
// *inbound.Processor satisfies it.
type ReplyProcessor interface {
	Process(ctx context.Context, payload inbound.Payload) (*model.Comment, error)
}

// InboundHandler receives inbound-email provider callbacks and turns
// customer replies into ticket comments.
type InboundHandler struct {
	processor ReplyProcessor
	events    events.TicketEventProducer
}

func NewInboundHandler(processor ReplyProcessor, producer events.TicketEventProducer) *InboundHandler {
	return &InboundHandler{processor: processor, events: producer}
}

// The provider calls this endpoint from a browser-less backend, but the
// original deployment also allowed dashboard-originated test calls, so the
// permissive CORS surface is kept.
func setCORSHeaders(c *gin.Context) {
	c.Header("Access-Control-Allow-Origin", "*")
	c.Header("Access-Control-Allow-Headers", "authorization, x-client-info, apikey, content-type")
	c.Header("Access-Control-Allow-Methods", "POST, OPTIONS")
}

// Preflight answers the CORS preflight for the webhook endpoint.
func (h *InboundHandler) Preflight(c *gin.Context) {
	setCORSHeaders(c)
	c.String(http.StatusOK, "ok")
}

func replyError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": gin.H{"message": message}})
}

// HandleReply processes one inbound email reply. Every rejection is
// terminal; the provider retries based on the returned status code.
func (h *InboundHandler) HandleReply(c *gin.Context) {
	setCORSHeaders(c)

	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		replyError(c, http.StatusBadRequest, "failed to read request body")
		return
	}
	payload := inbound.ParsePayload(c.GetHeader("Content-Type"), body)

	comment, err := h.processor.Process(c.Request.Context(), payload)
	if err != nil {
		switch {
		case errors.Is(err, errs.ErrNoTicketID):
			replyError(c, http.StatusBadRequest, "No ticket ID found in recipient")
		case errors.Is(err, errs.ErrTicketNotFound):
			replyError(c, http.StatusNotFound, "Ticket not found")
		case errors.Is(err, errs.ErrUnauthorizedSender):
			replyError(c, http.StatusForbidden, "Unauthorized sender")
		case errors.Is(err, errs.ErrNoContent):
			replyError(c, http.StatusBadRequest, "No content found in email")
		case errors.Is(err, errs.ErrNoContentAfterClean):
			replyError(c, http.StatusBadRequest, "No content found after removing quotes")
		default:
			log.Printf("inbound: process reply: %v", err)
			replyError(c, http.StatusInternalServerError, "Failed to create comment")
		}
		return
	}

	if h.events != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			h.events.ProduceTicketEvent(ctx, events.CommentCreated, events.CommentPayload(comment))
		}()
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "commentId": comment.ID})
}
