package models

import (
	"time"

	"github.com/uptrace/bun"
)

// Opportunity statuses
const (
	OpportunityOpen   = "open"
	OpportunityClosed = "closed"
)

// Application statuses
const (
	ApplicationSubmitted   = "submitted"
	ApplicationUnderReview = "under_review"
	ApplicationAccepted    = "accepted"
	ApplicationRejected    = "rejected"
	ApplicationWithdrawn   = "withdrawn"
)

// Mentorship statuses
const (
	MentorshipActive    = "active"
	MentorshipPaused    = "paused"
	MentorshipCompleted = "completed"
)

// Opportunity is a grant, scholarship or program posted by a partner.
// FormSchema, when non-empty, is a JSON Schema the application answers must satisfy.
type Opportunity struct {
	bun.BaseModel `bun:"table:opportunities,alias:o"`

	ID          string     `bun:"id,pk,type:uuid"`
	PartnerID   string     `bun:"partner_id,notnull,type:uuid"`
	Title       string     `bun:"title,notnull"`
	Description string     `bun:"description,notnull,default:''"`
	Category    string     `bun:"category,notnull,default:''"`
	Status      string     `bun:"status,notnull"`
	Deadline    *time.Time `bun:"deadline"`
	FormSchema  JSONMap    `bun:"form_schema,type:jsonb,notnull"`
	CreatedAt   time.Time  `bun:"created_at,notnull"`
	UpdatedAt   time.Time  `bun:"updated_at,notnull"`
}

// AcceptingApplications reports whether an application may be submitted at now.
func (o *Opportunity) AcceptingApplications(now time.Time) bool {
	if o.Status != OpportunityOpen {
		return false
	}
	return o.Deadline == nil || now.Before(*o.Deadline)
}

// Application is an applicant's submission to an opportunity.
type Application struct {
	bun.BaseModel `bun:"table:applications,alias:a"`

	ID            string    `bun:"id,pk,type:uuid"`
	OpportunityID string    `bun:"opportunity_id,notnull,type:uuid"`
	ApplicantID   string    `bun:"applicant_id,notnull,type:uuid"`
	Answers       JSONMap   `bun:"answers,type:jsonb,notnull"`
	Status        string    `bun:"status,notnull"`
	ReviewNotes   string    `bun:"review_notes,notnull,default:''"`
	CreatedAt     time.Time `bun:"created_at,notnull"`
	UpdatedAt     time.Time `bun:"updated_at,notnull"`

	Opportunity *Opportunity `bun:"rel:belongs-to,join:opportunity_id=id"`
}

// MentorshipAssignment pairs a mentor with a mentee.
type MentorshipAssignment struct {
	bun.BaseModel `bun:"table:mentorship_assignments,alias:ma"`

	ID        string    `bun:"id,pk,type:uuid"`
	MentorID  string    `bun:"mentor_id,notnull,type:uuid"`
	MenteeID  string    `bun:"mentee_id,notnull,type:uuid"`
	Status    string    `bun:"status,notnull"`
	Notes     string    `bun:"notes,notnull,default:''"`
	CreatedAt time.Time `bun:"created_at,notnull"`
	UpdatedAt time.Time `bun:"updated_at,notnull"`
}
