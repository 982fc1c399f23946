package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/model"
)

// TicketServicer is what handlers depend on, so tests can swap in a fake.
type TicketServicer interface {
	Create(ctx context.Context, t *model.Ticket) error
	GetByID(ctx context.Context, id string) (*model.Ticket, error)
	List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Ticket, error)
	UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error
	AddComment(ctx context.Context, ticketID string, author model.Author, content string, internal, fromEmail bool) (*model.Comment, error)
	ListComments(ctx context.Context, ticketID string) ([]model.Comment, error)
	GetProfile(ctx context.Context, id string) (*model.Profile, error)
}

type TicketService struct {
	db *gorm.DB
}

func NewTicketService(db *gorm.DB) *TicketService {
	return &TicketService{db: db}
}

func (s *TicketService) Create(ctx context.Context, t *model.Ticket) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *TicketService) GetByID(ctx context.Context, id string) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) List(ctx context.Context, filter map[string]interface{}, limit, offset int) ([]model.Ticket, int64, error) {
	var items []model.Ticket
	var total int64
	tx := s.db.WithContext(ctx).Model(&model.Ticket{})
	for k, v := range filter {
		tx = tx.Where(k, v)
	}
	if err := tx.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	if limit > 0 {
		tx = tx.Limit(limit)
	}
	if offset > 0 {
		tx = tx.Offset(offset)
	}
	if err := tx.Order("created_at DESC").Find(&items).Error; err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func (s *TicketService) Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Ticket, error) {
	var t model.Ticket
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTicketNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TicketService) UpdateStatus(ctx context.Context, id string, status model.TicketStatus) error {
	res := s.db.WithContext(ctx).Model(&model.Ticket{}).
		Where("id = ?", id).
		Update("status", status)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTicketNotFound
	}
	return nil
}

func (s *TicketService) AddComment(ctx context.Context, ticketID string, author model.Author, content string, internal, fromEmail bool) (*model.Comment, error) {
	c := &model.Comment{
		ID:          uuid.NewString(),
		TicketID:    ticketID,
		AuthorID:    author.ProfileID(),
		Content:     content,
		IsInternal:  internal,
		IsFromEmail: fromEmail,
	}
	if err := s.db.WithContext(ctx).Create(c).Error; err != nil {
		return nil, err
	}
	return c, nil
}

func (s *TicketService) ListComments(ctx context.Context, ticketID string) ([]model.Comment, error) {
	var items []model.Comment
	err := s.db.WithContext(ctx).
		Where("ticket_id = ?", ticketID).
		Order("created_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (s *TicketService) GetProfile(ctx context.Context, id string) (*model.Profile, error) {
	var p model.Profile
	if err := s.db.WithContext(ctx).First(&p, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &p, nil
}
