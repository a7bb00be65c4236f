package repository

import (
	"context"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
)

// UserRepository persists user accounts.
type UserRepository interface {
	// CreateWithProfile inserts a user and its profile atomically.
	CreateWithProfile(ctx context.Context, user *models.User, profile *models.Profile) error
	GetByID(ctx context.Context, id string) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	GetBySubject(ctx context.Context, subject string) (*models.User, error)
	LinkSubject(ctx context.Context, id, subject string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
	SetDisabled(ctx context.Context, id string, disabled bool) error
}

// SessionRepository persists server-side sessions keyed by token hash.
type SessionRepository interface {
	Create(ctx context.Context, session *models.Session) error
	GetByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	ListByUserID(ctx context.Context, userID string) ([]models.Session, error)
	// Touch records use of a session and moves its expiry.
	Touch(ctx context.Context, id string, lastUsed, expiresAt time.Time) error
	RevokeByTokenHash(ctx context.Context, tokenHash string) (*models.Session, error)
	RevokeByUserID(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, before time.Time) (int, error)
}

// ProfileFilter narrows ProfileRepository.List.
type ProfileFilter struct {
	Role string
}

// ProfileRepository persists user profiles. Profiles are never deleted.
type ProfileRepository interface {
	GetByUserID(ctx context.Context, userID string) (*models.Profile, error)
	// GetRole reads only the role column.
	GetRole(ctx context.Context, userID string) (string, error)
	List(ctx context.Context, filter ProfileFilter) ([]models.Profile, error)
	UpdateDetails(ctx context.Context, userID, fullName string, attributes models.JSONMap) (*models.Profile, error)
	UpdateRole(ctx context.Context, userID, role string) error
}

// OpportunityFilter narrows OpportunityRepository.List.
type OpportunityFilter struct {
	PartnerID string
	Status    string
}

// OpportunityRepository persists partner opportunities.
type OpportunityRepository interface {
	Create(ctx context.Context, o *models.Opportunity) error
	GetByID(ctx context.Context, id string) (*models.Opportunity, error)
	List(ctx context.Context, filter OpportunityFilter) ([]models.Opportunity, error)
	Update(ctx context.Context, o *models.Opportunity) error
	Delete(ctx context.Context, id string) error
}

// ApplicationFilter narrows ApplicationRepository.List. PartnerID restricts
// to applications on opportunities owned by that partner.
type ApplicationFilter struct {
	ApplicantID   string
	OpportunityID string
	PartnerID     string
	Status        string
}

// ApplicationRepository persists applications to opportunities.
type ApplicationRepository interface {
	Create(ctx context.Context, a *models.Application) error
	GetByID(ctx context.Context, id string) (*models.Application, error)
	List(ctx context.Context, filter ApplicationFilter) ([]models.Application, error)
	UpdateStatus(ctx context.Context, id, status, notes string) error
}

// MentorshipFilter narrows MentorshipRepository.List.
type MentorshipFilter struct {
	MentorID string
	MenteeID string
	Status   string
}

// MentorshipRepository persists mentor/mentee assignments.
type MentorshipRepository interface {
	Create(ctx context.Context, m *models.MentorshipAssignment) error
	GetByID(ctx context.Context, id string) (*models.MentorshipAssignment, error)
	List(ctx context.Context, filter MentorshipFilter) ([]models.MentorshipAssignment, error)
	Update(ctx context.Context, id, status, notes string) error
}
