package inbound

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/model"
)

// TicketStore is the slice of the ticket service the processor needs.
// *service.TicketService satisfies it.
type TicketStore interface {
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	AddComment(ctx context.Context, ticketID string, author model.Author, content string, internal, fromEmail bool) (*model.Comment, error)
	UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error
}

// Processor turns an inbound email reply into a ticket comment.
type Processor struct {
	tickets TicketStore
	logger  *log.Logger
}

// ProcessorOption customizes the Processor.
type ProcessorOption func(*Processor)

// WithProcessorLogger overrides the logger used for diagnostics.
func WithProcessorLogger(logger *log.Logger) ProcessorOption {
	return func(p *Processor) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// NewProcessor builds a processor backed by the given ticket store.
func NewProcessor(tickets TicketStore, opts ...ProcessorOption) *Processor {
	p := &Processor{
		tickets: tickets,
		logger:  log.Default(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

var angleAddrRe = regexp.MustCompile(`<(.+)>`)

// senderAddress extracts the bare address from a From value that is either
// "Display Name <email>" or a bare email.
func senderAddress(from string) string {
	if m := angleAddrRe.FindStringSubmatch(from); m != nil {
		return m[1]
	}
	return strings.TrimSpace(from)
}

// ticketIDFromRecipient derives the ticket id from the local part of the
// reply address, e.g. "abc123" from "abc123@inbound.example.com".
func ticketIDFromRecipient(to string) string {
	local, _, _ := strings.Cut(strings.TrimSpace(to), "@")
	return local
}

// Process runs the full reply pipeline: resolve the ticket from the
// recipient address, verify the sender is the requester, extract and clean
// the reply body, persist it as a customer comment, and reopen the ticket
// if it was closed. Reopening is best-effort; the comment is already
// durable when it runs, so a failure there is logged, not returned.
func (p *Processor) Process(ctx context.Context, payload Payload) (*model.Comment, error) {
	ticketID := ticketIDFromRecipient(payload.To)
	if ticketID == "" {
		return nil, errs.ErrNoTicketID
	}

	ticket, err := p.tickets.GetByID(ctx, ticketID)
	if err != nil {
		return nil, err
	}

	// The sole authorization gate: the reply must come from the address the
	// ticket was opened with. Comparison is exact; trust is rooted in the
	// inbound provider reporting the envelope sender correctly.
	from := senderAddress(payload.From)
	if from != ticket.RequesterEmail {
		p.logger.Printf("inbound: sender %q is not requester of ticket %s", from, ticketID)
		return nil, errs.ErrUnauthorizedSender
	}

	content, err := ExtractContent(payload)
	if err != nil {
		return nil, err
	}
	clean := CleanReply(content)
	if clean == "" {
		return nil, errs.ErrNoContentAfterClean
	}

	comment, err := p.tickets.AddComment(ctx, ticketID, model.CustomerAuthor(), clean, false, true)
	if err != nil {
		return nil, fmt.Errorf("create comment: %w", err)
	}

	if ticket.Status == model.TicketStatusClosed {
		if err := p.tickets.UpdateStatus(ctx, ticketID, model.TicketStatusOpen); err != nil {
			p.logger.Printf("inbound: reopen ticket %s: %v", ticketID, err)
		}
	}

	return comment, nil
}
