package events

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannygauntletai/autocrm/internal/model"
)

func TestUnconfiguredProducerIsNoop(t *testing.T) {
	p := NewProducer(nil, "")
	p.ProduceTicketEvent(context.Background(), TicketCreated, map[string]interface{}{"k": "v"})
	assert.NoError(t, p.Close())

	p = NewProducer([]string{"broker:9092"}, "")
	p.ProduceTicketEvent(context.Background(), TicketCreated, nil)
	assert.NoError(t, p.Close())
}

func TestTicketPayload(t *testing.T) {
	assert.Nil(t, TicketPayload(nil))

	got := TicketPayload(&model.Ticket{
		ID:             "t1",
		Subject:        "Broken login",
		Status:         model.TicketStatusOpen,
		Priority:       model.TicketPriorityHigh,
		Category:       model.TicketCategoryBilling,
		RequesterEmail: "jane@example.com",
	})
	require.NotNil(t, got)
	assert.Equal(t, "t1", got["ticket_id"])
	assert.Equal(t, "open", got["status"])
	assert.Equal(t, "high", got["priority"])
	assert.Equal(t, "jane@example.com", got["requester_email"])
}

func TestCommentPayload(t *testing.T) {
	assert.Nil(t, CommentPayload(nil))

	got := CommentPayload(&model.Comment{
		ID:          "c1",
		TicketID:    "t1",
		IsFromEmail: true,
	})
	require.NotNil(t, got)
	assert.Equal(t, "c1", got["comment_id"])
	assert.Equal(t, "t1", got["ticket_id"])
	assert.Equal(t, true, got["is_from_email"])
	assert.Equal(t, false, got["is_internal"])
}
