// Package iam manages accounts and the sessions opened for them: password
// registration and login, SSO sign-in, logout and forced revocation.
package iam

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/bunx"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
)

var (
	// ErrInvalidCredentials covers unknown emails and wrong passwords alike.
	ErrInvalidCredentials = errors.New("invalid email or password")
	// ErrEmailTaken is returned when registering an email already in use.
	ErrEmailTaken = errors.New("email already registered")
	// ErrAccountDisabled rejects sign-in to a disabled account.
	ErrAccountDisabled = errors.New("account disabled")
	// ErrInvalidEmail rejects malformed addresses.
	ErrInvalidEmail = errors.New("invalid email address")
	// ErrSSOEmailMissing is returned when the identity provider supplies no
	// email for a subject we have never seen.
	ErrSSOEmailMissing = errors.New("identity provider did not supply an email")
)

// RegisterInput is a self-service sign-up.
type RegisterInput struct {
	Email    string
	Password string
	FullName string
	// Role defaults to applicant. Admin cannot be chosen.
	Role string
}

// SignIn is the result of any successful sign-in.
type SignIn struct {
	User    *models.User
	Role    gate.Role
	Session sessionstore.Session
}

// Service implements account and session operations.
type Service struct {
	users    repository.UserRepository
	roles    gate.ProfileReader
	sessions sessionstore.Store
	events   gate.Publisher
	logger   *slog.Logger
	now      func() time.Time
}

// NewService creates the IAM service. events may be nil.
func NewService(users repository.UserRepository, roles gate.ProfileReader, sessions sessionstore.Store, events gate.Publisher, logger *slog.Logger) *Service {
	if events == nil {
		events = gate.NopPublisher{}
	}
	return &Service{
		users:    users,
		roles:    roles,
		sessions: sessions,
		events:   events,
		logger:   logging.Resolve(logger),
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Register creates an account with a password and opens a session for it.
func (s *Service) Register(ctx context.Context, in RegisterInput, meta sessionstore.Meta) (*SignIn, error) {
	role := gate.RoleApplicant
	if strings.TrimSpace(in.Role) != "" {
		r, err := gate.ParseRole(in.Role)
		if err != nil {
			return nil, err
		}
		role = r
	}
	if role == gate.RoleAdmin {
		return nil, fmt.Errorf("%w: admin cannot be self-assigned", gate.ErrInvalidRole)
	}

	user, err := s.createUser(ctx, in.Email, in.FullName, in.Password, role, nil)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "user registered", "user_id", user.ID, "role", role)
	return s.openSession(ctx, user, role, meta)
}

// Login checks email and password and opens a session.
func (s *Service) Login(ctx context.Context, email, password string, meta sessionstore.Meta) (*SignIn, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}
	if user.PasswordHash == nil || !auth.CheckPassword(*user.PasswordHash, password) {
		return nil, ErrInvalidCredentials
	}
	if user.Disabled() {
		return nil, ErrAccountDisabled
	}
	role, err := s.roleOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, role, meta)
}

// SSOSignIn signs in a verified external identity. Unknown subjects are
// linked to an existing account by email or get a new applicant account.
func (s *Service) SSOSignIn(ctx context.Context, id auth.Identity, meta sessionstore.Meta) (*SignIn, error) {
	user, err := s.users.GetBySubject(ctx, id.Subject)
	switch {
	case err == nil:
	case errors.Is(err, repository.ErrNotFound):
		user, err = s.linkOrCreate(ctx, id)
		if err != nil {
			return nil, err
		}
	default:
		return nil, err
	}
	if user.Disabled() {
		return nil, ErrAccountDisabled
	}
	role, err := s.roleOf(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	return s.openSession(ctx, user, role, meta)
}

func (s *Service) linkOrCreate(ctx context.Context, id auth.Identity) (*models.User, error) {
	if strings.TrimSpace(id.Email) == "" {
		return nil, ErrSSOEmailMissing
	}
	existing, err := s.users.GetByEmail(ctx, id.Email)
	if err == nil {
		if err := s.users.LinkSubject(ctx, existing.ID, id.Subject); err != nil {
			return nil, err
		}
		s.logger.InfoContext(ctx, "linked sso subject", "user_id", existing.ID)
		subject := id.Subject
		existing.Subject = &subject
		return existing, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	subject := id.Subject
	user, err := s.createUser(ctx, id.Email, id.Name, "", gate.RoleApplicant, &subject)
	if err != nil {
		return nil, err
	}
	s.logger.InfoContext(ctx, "provisioned sso user", "user_id", user.ID)
	return user, nil
}

// Logout revokes the session behind token. Unknown tokens are not an error.
func (s *Service) Logout(ctx context.Context, token string) error {
	userID, err := s.sessions.Revoke(ctx, token)
	switch {
	case err == nil:
	case errors.Is(err, sessionstore.ErrNoSession):
		return nil
	default:
		return err
	}
	s.events.Publish(gate.Event{Kind: gate.EventSessionRevoked, UserID: userID})
	return nil
}

// RevokeUser ends every session of userID.
func (s *Service) RevokeUser(ctx context.Context, userID string) (int, error) {
	n, err := s.sessions.RevokeUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.events.Publish(gate.Event{Kind: gate.EventSessionsRevoked, UserID: userID})
	s.logger.InfoContext(ctx, "revoked user sessions", "user_id", userID, "count", n)
	return n, nil
}

// SetDisabled switches an account off or on. Disabling also revokes its
// sessions where the backend supports it. Stateless backends reject the
// account's tokens on resolve instead.
func (s *Service) SetDisabled(ctx context.Context, userID string, disabled bool) error {
	if err := s.users.SetDisabled(ctx, userID, disabled); err != nil {
		return err
	}
	if !disabled {
		return nil
	}
	if _, err := s.RevokeUser(ctx, userID); err != nil && !errors.Is(err, sessionstore.ErrRevocationUnsupported) {
		return err
	}
	return nil
}

// CreateUser provisions an account with any role, admin included. It is
// meant for operator tooling and opens no session.
func (s *Service) CreateUser(ctx context.Context, email, fullName, password string, role gate.Role) (*models.User, error) {
	if !role.Valid() {
		return nil, fmt.Errorf("%w: %q", gate.ErrInvalidRole, role)
	}
	return s.createUser(ctx, email, fullName, password, role, nil)
}

// User returns the account with id.
func (s *Service) User(ctx context.Context, id string) (*models.User, error) {
	return s.users.GetByID(ctx, id)
}

// UserByEmail returns the account registered with email.
func (s *Service) UserByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.users.GetByEmail(ctx, email)
}

func (s *Service) createUser(ctx context.Context, email, fullName, password string, role gate.Role, subject *string) (*models.User, error) {
	addr, err := normalizeEmail(email)
	if err != nil {
		return nil, err
	}

	user := &models.User{ID: bunx.NewUUIDv7(), Email: addr, Subject: subject}
	if subject == nil || password != "" {
		hash, err := auth.HashPassword(password)
		if err != nil {
			return nil, err
		}
		user.PasswordHash = &hash
	}

	name := strings.TrimSpace(fullName)
	if name == "" {
		name = addr
	}
	profile := &models.Profile{Role: string(role), FullName: name}

	if err := s.users.CreateWithProfile(ctx, user, profile); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, err
	}
	return user, nil
}

func (s *Service) openSession(ctx context.Context, user *models.User, role gate.Role, meta sessionstore.Meta) (*SignIn, error) {
	sess, err := s.sessions.Create(ctx, user.ID, meta)
	if err != nil {
		return nil, fmt.Errorf("open session: %w", err)
	}
	if err := s.users.UpdateLastLogin(ctx, user.ID, s.now()); err != nil {
		s.logger.WarnContext(ctx, "failed to record last login", "user_id", user.ID, "error", err)
	}
	return &SignIn{User: user, Role: role, Session: sess}, nil
}

// roleOf refuses sign-in for accounts whose profile the gate would reject
// anyway.
func (s *Service) roleOf(ctx context.Context, userID string) (gate.Role, error) {
	role, err := s.roles.GetProfileRole(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%w: %w", gate.ErrProfileMissing, err)
	}
	return role, nil
}

func normalizeEmail(email string) (string, error) {
	trimmed := strings.TrimSpace(email)
	addr, err := mail.ParseAddress(trimmed)
	if err != nil || addr.Address != trimmed {
		return "", fmt.Errorf("%w: %q", ErrInvalidEmail, email)
	}
	return strings.ToLower(addr.Address), nil
}
