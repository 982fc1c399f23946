package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/model"
)

// TeamServicer is what handlers depend on, so tests can swap in a fake.
type TeamServicer interface {
	Create(ctx context.Context, t *model.Team) error
	GetByID(ctx context.Context, id string) (*model.Team, error)
	List(ctx context.Context) ([]model.Team, error)
	Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Team, error)
	Delete(ctx context.Context, id string) error
	AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) (*model.TeamMember, error)
	RemoveMember(ctx context.Context, teamID, userID string) error
	ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error)
}

type TeamService struct {
	db *gorm.DB
}

func NewTeamService(db *gorm.DB) *TeamService {
	return &TeamService{db: db}
}

func (s *TeamService) Create(ctx context.Context, t *model.Team) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	return s.db.WithContext(ctx).Create(t).Error
}

func (s *TeamService) GetByID(ctx context.Context, id string) (*model.Team, error) {
	var t model.Team
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTeamNotFound
		}
		return nil, err
	}
	return &t, nil
}

func (s *TeamService) List(ctx context.Context) ([]model.Team, error) {
	var items []model.Team
	if err := s.db.WithContext(ctx).Order("name ASC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

func (s *TeamService) Update(ctx context.Context, id string, changes map[string]interface{}) (*model.Team, error) {
	var t model.Team
	if err := s.db.WithContext(ctx).First(&t, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errs.ErrTeamNotFound
		}
		return nil, err
	}
	if err := s.db.WithContext(ctx).Model(&t).Updates(changes).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

func (s *TeamService) Delete(ctx context.Context, id string) error {
	res := s.db.WithContext(ctx).Delete(&model.Team{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrTeamNotFound
	}
	return nil
}

func (s *TeamService) AddMember(ctx context.Context, teamID, userID string, role model.TeamRole) (*model.TeamMember, error) {
	if _, err := s.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	m := &model.TeamMember{
		ID:     uuid.NewString(),
		TeamID: teamID,
		UserID: userID,
		Role:   role,
	}
	if err := s.db.WithContext(ctx).Create(m).Error; err != nil {
		return nil, err
	}
	return m, nil
}

func (s *TeamService) RemoveMember(ctx context.Context, teamID, userID string) error {
	res := s.db.WithContext(ctx).
		Delete(&model.TeamMember{}, "team_id = ? AND user_id = ?", teamID, userID)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return errs.ErrMemberNotFound
	}
	return nil
}

func (s *TeamService) ListMembers(ctx context.Context, teamID string) ([]model.TeamMember, error) {
	if _, err := s.GetByID(ctx, teamID); err != nil {
		return nil, err
	}
	var items []model.TeamMember
	err := s.db.WithContext(ctx).
		Where("team_id = ?", teamID).
		Order("joined_at ASC").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
