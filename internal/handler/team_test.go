package handler

import (
	"context"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dannygauntletai/autocrm/internal/errs"
	"github.com/dannygauntletai/autocrm/internal/model"
)

type fakeTeamService struct {
	teams   map[string]*model.Team
	members map[string][]model.TeamMember
}

func newFakeTeamService() *fakeTeamService {
	return &fakeTeamService{
		teams:   make(map[string]*model.Team),
		members: make(map[string][]model.TeamMember),
	}
}

func (f *fakeTeamService) Create(_ context.Context, t *model.Team) error {
	if t.ID == "" {
		t.ID = "team-1"
	}
	f.teams[t.ID] = t
	return nil
}

func (f *fakeTeamService) GetByID(_ context.Context, id string) (*model.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, errs.ErrTeamNotFound
	}
	return t, nil
}

func (f *fakeTeamService) List(_ context.Context) ([]model.Team, error) {
	var out []model.Team
	for _, t := range f.teams {
		out = append(out, *t)
	}
	return out, nil
}

func (f *fakeTeamService) Update(_ context.Context, id string, changes map[string]interface{}) (*model.Team, error) {
	t, ok := f.teams[id]
	if !ok {
		return nil, errs.ErrTeamNotFound
	}
	if v, ok := changes["name"]; ok {
		t.Name = v.(string)
	}
	return t, nil
}

func (f *fakeTeamService) Delete(_ context.Context, id string) error {
	if _, ok := f.teams[id]; !ok {
		return errs.ErrTeamNotFound
	}
	delete(f.teams, id)
	return nil
}

func (f *fakeTeamService) AddMember(_ context.Context, teamID, userID string, role model.TeamRole) (*model.TeamMember, error) {
	if _, ok := f.teams[teamID]; !ok {
		return nil, errs.ErrTeamNotFound
	}
	m := model.TeamMember{ID: "member-1", TeamID: teamID, UserID: userID, Role: role}
	f.members[teamID] = append(f.members[teamID], m)
	return &m, nil
}

func (f *fakeTeamService) RemoveMember(_ context.Context, teamID, userID string) error {
	for i, m := range f.members[teamID] {
		if m.UserID == userID {
			f.members[teamID] = append(f.members[teamID][:i], f.members[teamID][i+1:]...)
			return nil
		}
	}
	return errs.ErrMemberNotFound
}

func (f *fakeTeamService) ListMembers(_ context.Context, teamID string) ([]model.TeamMember, error) {
	if _, ok := f.teams[teamID]; !ok {
		return nil, errs.ErrTeamNotFound
	}
	return f.members[teamID], nil
}

func newTeamRouter(svc *fakeTeamService) *gin.Engine {
	h := NewTeamHandler(svc)
	r := gin.New()
	r.POST("/api/v1/teams", h.Create)
	r.GET("/api/v1/teams/:id", h.Get)
	r.PATCH("/api/v1/teams/:id", h.Update)
	r.DELETE("/api/v1/teams/:id", h.Delete)
	r.POST("/api/v1/teams/:id/members", h.AddMember)
	r.DELETE("/api/v1/teams/:id/members/:userID", h.RemoveMember)
	r.GET("/api/v1/teams/:id/members", h.ListMembers)
	return r
}

func TestCreateTeam(t *testing.T) {
	svc := newFakeTeamService()
	r := newTeamRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/teams", `{"name":"Billing"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.teams, 1)
	assert.Equal(t, "Billing", svc.teams["team-1"].Name)
}

func TestCreateTeamMissingName(t *testing.T) {
	r := newTeamRouter(newFakeTeamService())
	w := doJSON(r, http.MethodPost, "/api/v1/teams", `{}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestGetTeamNotFound(t *testing.T) {
	r := newTeamRouter(newFakeTeamService())
	w := doJSON(r, http.MethodGet, "/api/v1/teams/nope", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDeleteTeam(t *testing.T) {
	svc := newFakeTeamService()
	svc.teams["team-1"] = &model.Team{ID: "team-1", Name: "Billing"}
	r := newTeamRouter(svc)

	w := doJSON(r, http.MethodDelete, "/api/v1/teams/team-1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, svc.teams)
}

func TestAddMemberDefaultsRole(t *testing.T) {
	svc := newFakeTeamService()
	svc.teams["team-1"] = &model.Team{ID: "team-1", Name: "Billing"}
	r := newTeamRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/teams/team-1/members", `{"user_id":"u1"}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	require.Len(t, svc.members["team-1"], 1)
	assert.Equal(t, model.TeamRoleMember, svc.members["team-1"][0].Role)
}

func TestAddMemberInvalidRole(t *testing.T) {
	svc := newFakeTeamService()
	svc.teams["team-1"] = &model.Team{ID: "team-1"}
	r := newTeamRouter(svc)

	w := doJSON(r, http.MethodPost, "/api/v1/teams/team-1/members",
		`{"user_id":"u1","role":"boss"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRemoveMember(t *testing.T) {
	svc := newFakeTeamService()
	svc.teams["team-1"] = &model.Team{ID: "team-1"}
	svc.members["team-1"] = []model.TeamMember{{ID: "m1", TeamID: "team-1", UserID: "u1", Role: model.TeamRoleMember}}
	r := newTeamRouter(svc)

	w := doJSON(r, http.MethodDelete, "/api/v1/teams/team-1/members/u1", "")
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Empty(t, svc.members["team-1"])

	w = doJSON(r, http.MethodDelete, "/api/v1/teams/team-1/members/u1", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
}
