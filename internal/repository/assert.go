package repository

var (
	_ UserRepository        = (*BunUserRepository)(nil)
	_ SessionRepository     = (*BunSessionRepository)(nil)
	_ ProfileRepository     = (*BunProfileRepository)(nil)
	_ OpportunityRepository = (*BunOpportunityRepository)(nil)
	_ ApplicationRepository = (*BunApplicationRepository)(nil)
	_ MentorshipRepository  = (*BunMentorshipRepository)(nil)
)
