package model

import "time"

type TicketStatus string

const (
	TicketStatusNew     TicketStatus = "new"
	TicketStatusOpen    TicketStatus = "open"
	TicketStatusPending TicketStatus = "pending"
	TicketStatusClosed  TicketStatus = "closed"
)

func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusNew, TicketStatusOpen, TicketStatusPending, TicketStatusClosed:
		return true
	}
	return false
}

type TicketPriority string

const (
	TicketPriorityLow    TicketPriority = "low"
	TicketPriorityNormal TicketPriority = "normal"
	TicketPriorityHigh   TicketPriority = "high"
	TicketPriorityUrgent TicketPriority = "urgent"
)

func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityNormal, TicketPriorityHigh, TicketPriorityUrgent:
		return true
	}
	return false
}

type TicketCategory string

const (
	TicketCategoryAccountAccess  TicketCategory = "account_access"
	TicketCategoryTechnicalIssue TicketCategory = "technical_issue"
	TicketCategoryBilling        TicketCategory = "billing"
	TicketCategoryFeatureRequest TicketCategory = "feature_request"
	TicketCategoryGeneralInquiry TicketCategory = "general_inquiry"
)

func (c TicketCategory) Valid() bool {
	switch c {
	case TicketCategoryAccountAccess, TicketCategoryTechnicalIssue, TicketCategoryBilling,
		TicketCategoryFeatureRequest, TicketCategoryGeneralInquiry:
		return true
	}
	return false
}

type UserRole string

const (
	UserRoleAdmin    UserRole = "admin"
	UserRoleAgent    UserRole = "agent"
	UserRoleCustomer UserRole = "customer"
)

type TeamRole string

const (
	TeamRoleLeader TeamRole = "leader"
	TeamRoleMember TeamRole = "member"
)

func (r TeamRole) Valid() bool {
	return r == TeamRoleLeader || r == TeamRoleMember
}

type Ticket struct {
	ID             string         `gorm:"type:uuid;primaryKey" json:"id"`
	Subject        string         `gorm:"type:varchar(255);not null" json:"subject"`
	Description    string         `gorm:"type:text;not null" json:"description"`
	Status         TicketStatus   `gorm:"type:varchar(32);index;not null" json:"status"`
	Priority       TicketPriority `gorm:"type:varchar(32);index;not null" json:"priority"`
	Category       TicketCategory `gorm:"type:varchar(64);index" json:"category"`
	RequesterEmail string         `gorm:"type:varchar(255);index;not null" json:"requester_email"`
	AssigneeID     *string        `gorm:"type:uuid;index" json:"assignee_id,omitempty"`
	TeamID         *string        `gorm:"type:uuid;index" json:"team_id,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID          string  `gorm:"type:uuid;primaryKey" json:"id"`
	TicketID    string  `gorm:"type:uuid;index;not null" json:"ticket_id"`
	AuthorID    *string `gorm:"type:uuid;index" json:"author_id,omitempty"`
	Content     string  `gorm:"type:text;not null" json:"content"`
	IsInternal  bool    `gorm:"not null;default:false" json:"is_internal"`
	IsFromEmail bool    `gorm:"not null;default:false" json:"is_from_email"`

	CreatedAt time.Time `json:"created_at"`
}

type Profile struct {
	ID        string    `gorm:"type:uuid;primaryKey" json:"id"`
	FirstName *string   `gorm:"type:varchar(255)" json:"first_name,omitempty"`
	LastName  *string   `gorm:"type:varchar(255)" json:"last_name,omitempty"`
	Email     string    `gorm:"type:varchar(255);uniqueIndex;not null" json:"email"`
	AvatarURL *string   `gorm:"type:text" json:"avatar_url,omitempty"`
	Role      UserRole  `gorm:"type:varchar(32);not null" json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName is used when notifying requesters who responded to a ticket.
func (p *Profile) DisplayName() string {
	name := ""
	if p.FirstName != nil {
		name = *p.FirstName
	}
	if p.LastName != nil {
		if name != "" {
			name += " "
		}
		name += *p.LastName
	}
	if name == "" {
		return p.Email
	}
	return name
}

type Team struct {
	ID          string    `gorm:"type:uuid;primaryKey" json:"id"`
	Name        string    `gorm:"type:varchar(255);not null" json:"name"`
	Description *string   `gorm:"type:text" json:"description,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

type TeamMember struct {
	ID       string    `gorm:"type:uuid;primaryKey" json:"id"`
	TeamID   string    `gorm:"type:uuid;uniqueIndex:idx_team_members_team_user;not null" json:"team_id"`
	UserID   string    `gorm:"type:uuid;uniqueIndex:idx_team_members_team_user;not null" json:"user_id"`
	Role     TeamRole  `gorm:"type:varchar(32);not null" json:"role"`
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joined_at"`
}
