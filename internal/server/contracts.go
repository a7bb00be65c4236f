package server

import (
	"context"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/programs"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/storage"
)

// accountService is the slice of iam.Service the handlers use.
type accountService interface {
	Register(ctx context.Context, in iam.RegisterInput, meta sessionstore.Meta) (*iam.SignIn, error)
	Login(ctx context.Context, email, password string, meta sessionstore.Meta) (*iam.SignIn, error)
	SSOSignIn(ctx context.Context, id auth.Identity, meta sessionstore.Meta) (*iam.SignIn, error)
	Logout(ctx context.Context, token string) error
	RevokeUser(ctx context.Context, userID string) (int, error)
	SetDisabled(ctx context.Context, userID string, disabled bool) error
}

// profileService is the slice of profiles.Service the handlers use.
type profileService interface {
	GetProfile(ctx context.Context, userID string) (*models.Profile, error)
	ListProfiles(ctx context.Context, role string) ([]models.Profile, error)
	UpdateDetails(ctx context.Context, userID, fullName string, attributes map[string]any) (*models.Profile, error)
	UpdateRole(ctx context.Context, actingUserID, targetUserID, newRole string) (*models.Profile, error)
	Organization(ctx context.Context, userID string) (profiles.Organization, error)
	SetOrganization(ctx context.Context, userID string, org profiles.Organization) (profiles.Organization, error)
}

// programService is the slice of programs.Service the handlers use.
type programService interface {
	ListOpportunities(ctx context.Context, caller gate.Principal, status string) ([]models.Opportunity, error)
	ListOpenOpportunities(ctx context.Context) ([]models.Opportunity, error)
	OpenOpportunity(ctx context.Context, id string) (*models.Opportunity, error)
	CreateOpportunity(ctx context.Context, caller gate.Principal, in programs.OpportunityInput) (*models.Opportunity, error)
	GetOpportunity(ctx context.Context, caller gate.Principal, id string) (*models.Opportunity, error)
	UpdateOpportunity(ctx context.Context, caller gate.Principal, id string, in programs.OpportunityInput) (*models.Opportunity, error)
	CloseOpportunity(ctx context.Context, caller gate.Principal, id string) (*models.Opportunity, error)
	DeleteOpportunity(ctx context.Context, caller gate.Principal, id string) error

	SubmitApplication(ctx context.Context, caller gate.Principal, opportunityID string, answers map[string]any) (*models.Application, error)
	ListMyApplications(ctx context.Context, caller gate.Principal) ([]models.Application, error)
	GetMyApplication(ctx context.Context, caller gate.Principal, id string) (*models.Application, error)
	WithdrawApplication(ctx context.Context, caller gate.Principal, id string) (*models.Application, error)
	ListReviewableApplications(ctx context.Context, caller gate.Principal, f programs.ReviewFilter) ([]models.Application, error)
	ReviewApplication(ctx context.Context, caller gate.Principal, id, status, notes string) (*models.Application, error)

	AssignMentor(ctx context.Context, caller gate.Principal, mentorID, menteeID, notes string) (*models.MentorshipAssignment, error)
	ListMentorships(ctx context.Context, caller gate.Principal, status string) ([]models.MentorshipAssignment, error)
	UpdateMentorship(ctx context.Context, caller gate.Principal, id, status, notes string) (*models.MentorshipAssignment, error)
}

// uploadService presigns document uploads. A disabled service reports
// storage.ErrDisabled.
type uploadService interface {
	PresignUpload(ctx context.Context, userID, filename, contentType string) (*storage.Upload, error)
}

// pinger checks database reachability.
type pinger interface {
	PingContext(ctx context.Context) error
}

var (
	_ accountService = (*iam.Service)(nil)
	_ profileService = (*profiles.Service)(nil)
	_ programService = (*programs.Service)(nil)
	_ uploadService  = (*storage.Presigner)(nil)
)
