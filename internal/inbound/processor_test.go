package inbound

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/model"
)

type fakeTicketStore struct {
	tickets       map[string]*model.Ticket
	comments      []model.Comment
	statusUpdates map[string]model.TicketStatus
	commentErr    error
	statusErr     error
}

func newFakeTicketStore(tickets ...*model.Ticket) *fakeTicketStore {
	s := &fakeTicketStore{
		tickets:       make(map[string]*model.Ticket),
		statusUpdates: make(map[string]model.TicketStatus),
	}
	for _, t := range tickets {
		s.tickets[t.ID] = t
	}
	return s
}

func (s *fakeTicketStore) GetByID(_ context.Context, id string) (*model.Ticket, error) {
	t, ok := s.tickets[id]
	if !ok {
		return nil, errs.ErrTicketNotFound
	}
	copied := *t
	return &copied, nil
}

func (s *fakeTicketStore) AddComment(_ context.Context, ticketID string, author model.Author, content string, internal, fromEmail bool) (*model.Comment, error) {
	if s.commentErr != nil {
		return nil, s.commentErr
	}
	c := model.Comment{
		ID:          "comment-1",
		TicketID:    ticketID,
		AuthorID:    author.ProfileID(),
		Content:     content,
		IsInternal:  internal,
		IsFromEmail: fromEmail,
	}
	s.comments = append(s.comments, c)
	return &c, nil
}

func (s *fakeTicketStore) UpdateStatus(_ context.Context, id string, status model.TicketStatus) error {
	if s.statusErr != nil {
		return s.statusErr
	}
	s.statusUpdates[id] = status
	return nil
}

func closedTicket() *model.Ticket {
	return &model.Ticket{
		ID:             "abc123",
		RequesterEmail: "jane@example.com",
		Status:         model.TicketStatusClosed,
	}
}

func replyPayload() Payload {
	return Payload{
		To:   "abc123@inbound.example.com",
		From: "Jane Doe <jane@example.com>",
		Text: "Thanks!\n\nOn Mon, Support wrote:\n> original question",
	}
}

func TestProcessCreatesCommentAndReopens(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	p := NewProcessor(store)

	comment, err := p.Process(context.Background(), replyPayload())
	require.NoError(t, err)

	require.Len(t, store.comments, 1)
	got := store.comments[0]
	assert.Equal(t, "abc123", got.TicketID)
	assert.Equal(t, "Thanks!", got.Content)
	assert.False(t, got.IsInternal)
	assert.True(t, got.IsFromEmail)
	assert.Nil(t, got.AuthorID)
	assert.Equal(t, "comment-1", comment.ID)
	assert.Equal(t, model.TicketStatusOpen, store.statusUpdates["abc123"])
}

func TestProcessOpenTicketStaysOpen(t *testing.T) {
	ticket := closedTicket()
	ticket.Status = model.TicketStatusOpen
	store := newFakeTicketStore(ticket)

	_, err := NewProcessor(store).Process(context.Background(), replyPayload())
	require.NoError(t, err)
	assert.Empty(t, store.statusUpdates)
}

func TestProcessUnauthorizedSender(t *testing.T) {
	ticket := closedTicket()
	ticket.RequesterEmail = "other@example.com"
	store := newFakeTicketStore(ticket)

	_, err := NewProcessor(store).Process(context.Background(), replyPayload())
	assert.ErrorIs(t, err, errs.ErrUnauthorizedSender)
	assert.Empty(t, store.comments)
	assert.Empty(t, store.statusUpdates)
}

func TestProcessSenderComparisonIsCaseSensitive(t *testing.T) {
	// Deliberate behavior carried over from the original gate: the compare
	// is exact, so a case-shifted address is rejected.
	store := newFakeTicketStore(closedTicket())
	payload := replyPayload()
	payload.From = "Jane Doe <Jane@Example.com>"

	_, err := NewProcessor(store).Process(context.Background(), payload)
	assert.ErrorIs(t, err, errs.ErrUnauthorizedSender)
}

func TestProcessBareFromAddress(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	payload := replyPayload()
	payload.From = "  jane@example.com  "

	_, err := NewProcessor(store).Process(context.Background(), payload)
	require.NoError(t, err)
	require.Len(t, store.comments, 1)
}

func TestProcessNoTicketID(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	for _, to := range []string{"", "@inbound.example.com", "   "} {
		payload := replyPayload()
		payload.To = to
		_, err := NewProcessor(store).Process(context.Background(), payload)
		assert.ErrorIs(t, err, errs.ErrNoTicketID, "to=%q", to)
	}
	assert.Empty(t, store.comments)
}

func TestProcessTicketNotFound(t *testing.T) {
	store := newFakeTicketStore()
	_, err := NewProcessor(store).Process(context.Background(), replyPayload())
	assert.ErrorIs(t, err, errs.ErrTicketNotFound)
}

func TestProcessNoContent(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	payload := replyPayload()
	payload.Text = ""

	_, err := NewProcessor(store).Process(context.Background(), payload)
	assert.ErrorIs(t, err, errs.ErrNoContent)
	assert.Empty(t, store.comments)
}

func TestProcessNothingLeftAfterCleaning(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	payload := replyPayload()
	payload.Text = "> quoted line\n> another quoted line\n"

	_, err := NewProcessor(store).Process(context.Background(), payload)
	assert.ErrorIs(t, err, errs.ErrNoContentAfterClean)
	assert.Empty(t, store.comments)
}

func TestProcessCommentInsertFailure(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	store.commentErr = errors.New("connection reset")

	_, err := NewProcessor(store).Process(context.Background(), replyPayload())
	require.Error(t, err)
	assert.NotErrorIs(t, err, errs.ErrNoContent)
	assert.Empty(t, store.statusUpdates, "reopen must not run when the insert failed")
}

func TestProcessReopenFailureDoesNotFailRequest(t *testing.T) {
	store := newFakeTicketStore(closedTicket())
	store.statusErr = errors.New("deadlock detected")

	comment, err := NewProcessor(store).Process(context.Background(), replyPayload())
	require.NoError(t, err)
	assert.NotNil(t, comment)
	require.Len(t, store.comments, 1)
}
