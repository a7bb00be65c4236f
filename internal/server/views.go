package server

import (
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
)

// UserResponse is the public view of a user and their profile.
type UserResponse struct {
	ID          string         `json:"id"`
	Email       string         `json:"email,omitempty"`
	FullName    string         `json:"full_name"`
	Role        gate.Role      `json:"role"`
	Home        string         `json:"home"`
	SSO         bool           `json:"sso"`
	Disabled    bool           `json:"disabled"`
	Attributes  map[string]any `json:"attributes,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	LastLoginAt *time.Time     `json:"last_login_at,omitempty"`
}

func userView(p *models.Profile) UserResponse {
	role := gate.Role(p.Role)
	out := UserResponse{
		ID:         p.UserID,
		FullName:   p.FullName,
		Role:       role,
		Home:       role.Home(),
		Attributes: p.Attributes,
		CreatedAt:  p.CreatedAt,
	}
	if p.User != nil {
		out.Email = p.User.Email
		out.SSO = p.User.Subject != nil
		out.Disabled = p.User.Disabled()
		out.LastLoginAt = p.User.LastLoginAt
	}
	return out
}

func userViews(ps []models.Profile) []UserResponse {
	out := make([]UserResponse, 0, len(ps))
	for i := range ps {
		out = append(out, userView(&ps[i]))
	}
	return out
}

// SignInResponse answers register and login.
type SignInResponse struct {
	UserID    string    `json:"user_id"`
	Email     string    `json:"email"`
	Role      gate.Role `json:"role"`
	Redirect  string    `json:"redirect"`
	ExpiresAt time.Time `json:"expires_at"`
	// Token is returned for API clients that cannot hold cookies.
	Token string `json:"token"`
}

func signInView(in *iam.SignIn, redirect string) SignInResponse {
	return SignInResponse{
		UserID:    in.User.ID,
		Email:     in.User.Email,
		Role:      in.Role,
		Redirect:  redirect,
		ExpiresAt: in.Session.ExpiresAt,
		Token:     in.Session.Token,
	}
}

// OpportunityResponse is the public view of an opportunity.
type OpportunityResponse struct {
	ID          string         `json:"id"`
	PartnerID   string         `json:"partner_id"`
	Title       string         `json:"title"`
	Description string         `json:"description"`
	Category    string         `json:"category"`
	Status      string         `json:"status"`
	Deadline    *time.Time     `json:"deadline,omitempty"`
	FormSchema  map[string]any `json:"form_schema,omitempty"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
}

func opportunityView(o *models.Opportunity) OpportunityResponse {
	return OpportunityResponse{
		ID:          o.ID,
		PartnerID:   o.PartnerID,
		Title:       o.Title,
		Description: o.Description,
		Category:    o.Category,
		Status:      o.Status,
		Deadline:    o.Deadline,
		FormSchema:  o.FormSchema,
		CreatedAt:   o.CreatedAt,
		UpdatedAt:   o.UpdatedAt,
	}
}

func opportunityViews(opps []models.Opportunity) []OpportunityResponse {
	out := make([]OpportunityResponse, 0, len(opps))
	for i := range opps {
		out = append(out, opportunityView(&opps[i]))
	}
	return out
}

// ApplicationResponse is the public view of an application.
type ApplicationResponse struct {
	ID            string               `json:"id"`
	OpportunityID string               `json:"opportunity_id"`
	ApplicantID   string               `json:"applicant_id"`
	Answers       map[string]any       `json:"answers"`
	Status        string               `json:"status"`
	ReviewNotes   string               `json:"review_notes,omitempty"`
	Opportunity   *OpportunityResponse `json:"opportunity,omitempty"`
	CreatedAt     time.Time            `json:"created_at"`
	UpdatedAt     time.Time            `json:"updated_at"`
}

func applicationView(a *models.Application) ApplicationResponse {
	out := ApplicationResponse{
		ID:            a.ID,
		OpportunityID: a.OpportunityID,
		ApplicantID:   a.ApplicantID,
		Answers:       a.Answers,
		Status:        a.Status,
		ReviewNotes:   a.ReviewNotes,
		CreatedAt:     a.CreatedAt,
		UpdatedAt:     a.UpdatedAt,
	}
	if a.Opportunity != nil {
		o := opportunityView(a.Opportunity)
		o.FormSchema = nil
		out.Opportunity = &o
	}
	return out
}

func applicationViews(as []models.Application) []ApplicationResponse {
	out := make([]ApplicationResponse, 0, len(as))
	for i := range as {
		out = append(out, applicationView(&as[i]))
	}
	return out
}

// MentorshipResponse is the public view of a mentor assignment.
type MentorshipResponse struct {
	ID        string    `json:"id"`
	MentorID  string    `json:"mentor_id"`
	MenteeID  string    `json:"mentee_id"`
	Status    string    `json:"status"`
	Notes     string    `json:"notes"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func mentorshipView(m *models.MentorshipAssignment) MentorshipResponse {
	return MentorshipResponse{
		ID:        m.ID,
		MentorID:  m.MentorID,
		MenteeID:  m.MenteeID,
		Status:    m.Status,
		Notes:     m.Notes,
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func mentorshipViews(ms []models.MentorshipAssignment) []MentorshipResponse {
	out := make([]MentorshipResponse, 0, len(ms))
	for i := range ms {
		out = append(out, mentorshipView(&ms[i]))
	}
	return out
}
