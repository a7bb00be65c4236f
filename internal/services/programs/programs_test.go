package programs

import (
	"context"
	"testing"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/dbtest"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/profiles"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/uptrace/bun"
)

type env struct {
	svc       *Service
	db        *bun.DB
	admin     gate.Principal
	partner   gate.Principal
	other     gate.Principal
	applicant gate.Principal
	mentor    gate.Principal
}

func principal(t *testing.T, db *bun.DB, email string, role gate.Role) gate.Principal {
	u := dbtest.SeedUser(t, db, email, string(role))
	return gate.Principal{UserID: u.ID, Role: role}
}

func setup(t *testing.T) env {
	t.Helper()
	db := dbtest.Open(t)
	svc, err := NewService(Deps{
		Opportunities: repository.NewBunOpportunityRepository(db),
		Applications:  repository.NewBunApplicationRepository(db),
		Mentorships:   repository.NewBunMentorshipRepository(db),
		Roles:         profiles.NewService(repository.NewBunProfileRepository(db), nil, profiles.CacheOptions{}, nil),
	})
	require.NoError(t, err)
	return env{
		svc:       svc,
		db:        db,
		admin:     principal(t, db, "admin@example.org", gate.RoleAdmin),
		partner:   principal(t, db, "partner@example.org", gate.RolePartner),
		other:     principal(t, db, "other@example.org", gate.RolePartner),
		applicant: principal(t, db, "app@example.org", gate.RoleApplicant),
		mentor:    principal(t, db, "mentor@example.org", gate.RoleMentor),
	}
}

var essaySchema = map[string]any{
	"type":     "object",
	"required": []any{"essay", "age"},
	"properties": map[string]any{
		"essay": map[string]any{"type": "string", "minLength": 10},
		"age":   map[string]any{"type": "integer", "minimum": 16},
	},
}

func TestOpportunityOwnership(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	o, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: " Scholarship ", Category: "education"})
	require.NoError(t, err)
	assert.Equal(t, "Scholarship", o.Title)
	assert.Equal(t, models.OpportunityOpen, o.Status)

	_, err = e.svc.CreateOpportunity(ctx, e.other, OpportunityInput{Title: "Grant"})
	require.NoError(t, err)

	mine, err := e.svc.ListOpportunities(ctx, e.partner, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	all, err := e.svc.ListOpportunities(ctx, e.admin, "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	_, err = e.svc.GetOpportunity(ctx, e.other, o.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = e.svc.UpdateOpportunity(ctx, e.other, o.ID, OpportunityInput{Title: "Hijacked"})
	assert.ErrorIs(t, err, ErrNotOwner)
	assert.ErrorIs(t, e.svc.DeleteOpportunity(ctx, e.other, o.ID), ErrNotOwner)

	updated, err := e.svc.UpdateOpportunity(ctx, e.admin, o.ID, OpportunityInput{Title: "Scholarship 2027"})
	require.NoError(t, err)
	assert.Equal(t, "Scholarship 2027", updated.Title)

	closed, err := e.svc.CloseOpportunity(ctx, e.partner, o.ID)
	require.NoError(t, err)
	assert.Equal(t, models.OpportunityClosed, closed.Status)

	require.NoError(t, e.svc.DeleteOpportunity(ctx, e.partner, o.ID))
	_, err = e.svc.GetOpportunity(ctx, e.partner, o.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestOpportunityValidation(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: "  "})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{
		Title:      "Bad form",
		FormSchema: map[string]any{"type": 12},
	})
	assert.ErrorIs(t, err, ErrInvalidSchema)
}

func TestSubmitApplication(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	o, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: "Essay prize", FormSchema: essaySchema})
	require.NoError(t, err)

	_, err = e.svc.SubmitApplication(ctx, e.applicant, o.ID, map[string]any{"essay": "too short", "age": 20})
	assert.ErrorIs(t, err, ErrInvalidAnswers)

	_, err = e.svc.SubmitApplication(ctx, e.applicant, o.ID, map[string]any{"essay": "a long enough essay"})
	assert.ErrorIs(t, err, ErrInvalidAnswers)

	a, err := e.svc.SubmitApplication(ctx, e.applicant, o.ID, map[string]any{"essay": "a long enough essay", "age": 20})
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationSubmitted, a.Status)

	_, err = e.svc.SubmitApplication(ctx, e.applicant, o.ID, map[string]any{"essay": "a long enough essay", "age": 21})
	assert.ErrorIs(t, err, ErrAlreadyApplied)

	mine, err := e.svc.ListMyApplications(ctx, e.applicant)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	require.NotNil(t, mine[0].Opportunity)
	assert.Equal(t, "Essay prize", mine[0].Opportunity.Title)

	_, err = e.svc.GetMyApplication(ctx, e.mentor, a.ID)
	assert.ErrorIs(t, err, ErrNotOwner)
}

func TestSubmitApplication_NotAccepting(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	past := time.Now().Add(-time.Hour)
	expired, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: "Expired", Deadline: &past})
	require.NoError(t, err)
	_, err = e.svc.SubmitApplication(ctx, e.applicant, expired.ID, nil)
	assert.ErrorIs(t, err, ErrNotAccepting)

	o, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: "Open"})
	require.NoError(t, err)
	open, err := e.svc.ListOpenOpportunities(ctx)
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, o.ID, open[0].ID)

	_, err = e.svc.CloseOpportunity(ctx, e.partner, o.ID)
	require.NoError(t, err)
	_, err = e.svc.SubmitApplication(ctx, e.applicant, o.ID, nil)
	assert.ErrorIs(t, err, ErrNotAccepting)
	_, err = e.svc.OpenOpportunity(ctx, o.ID)
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestReviewAndWithdraw(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	o, err := e.svc.CreateOpportunity(ctx, e.partner, OpportunityInput{Title: "Fellowship"})
	require.NoError(t, err)
	a, err := e.svc.SubmitApplication(ctx, e.applicant, o.ID, map[string]any{})
	require.NoError(t, err)

	forPartner, err := e.svc.ListReviewableApplications(ctx, e.partner, ReviewFilter{})
	require.NoError(t, err)
	assert.Len(t, forPartner, 1)

	forOther, err := e.svc.ListReviewableApplications(ctx, e.other, ReviewFilter{})
	require.NoError(t, err)
	assert.Empty(t, forOther)

	_, err = e.svc.ReviewApplication(ctx, e.other, a.ID, models.ApplicationAccepted, "")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = e.svc.ReviewApplication(ctx, e.partner, a.ID, models.ApplicationWithdrawn, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	reviewed, err := e.svc.ReviewApplication(ctx, e.partner, a.ID, models.ApplicationUnderReview, "shortlisted")
	require.NoError(t, err)
	assert.Equal(t, "shortlisted", reviewed.ReviewNotes)

	withdrawn, err := e.svc.WithdrawApplication(ctx, e.applicant, a.ID)
	require.NoError(t, err)
	assert.Equal(t, models.ApplicationWithdrawn, withdrawn.Status)

	_, err = e.svc.WithdrawApplication(ctx, e.applicant, a.ID)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	_, err = e.svc.ReviewApplication(ctx, e.admin, a.ID, models.ApplicationAccepted, "")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestMentorships(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.AssignMentor(ctx, e.mentor, e.mentor.UserID, e.applicant.UserID, "")
	assert.ErrorIs(t, err, gate.ErrForbidden)

	_, err = e.svc.AssignMentor(ctx, e.admin, e.partner.UserID, e.applicant.UserID, "")
	assert.ErrorIs(t, err, ErrInvalidInput, "partner is not a mentor")

	m, err := e.svc.AssignMentor(ctx, e.admin, e.mentor.UserID, e.applicant.UserID, "weekly")
	require.NoError(t, err)
	assert.Equal(t, models.MentorshipActive, m.Status)

	_, err = e.svc.AssignMentor(ctx, e.admin, e.mentor.UserID, e.applicant.UserID, "")
	assert.ErrorIs(t, err, ErrAlreadyAssigned)

	mine, err := e.svc.ListMentorships(ctx, e.mentor, "")
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	otherMentor := principal(t, e.db, "m2@example.org", gate.RoleMentor)
	theirs, err := e.svc.ListMentorships(ctx, otherMentor, "")
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = e.svc.UpdateMentorship(ctx, otherMentor, m.ID, models.MentorshipPaused, "")
	assert.ErrorIs(t, err, ErrNotOwner)
	_, err = e.svc.UpdateMentorship(ctx, e.mentor, m.ID, "archived", "")
	assert.ErrorIs(t, err, ErrInvalidStatus)

	updated, err := e.svc.UpdateMentorship(ctx, e.mentor, m.ID, models.MentorshipCompleted, "done")
	require.NoError(t, err)
	assert.Equal(t, models.MentorshipCompleted, updated.Status)
	assert.Equal(t, "done", updated.Notes)
}
