// Package profiles owns user profiles: the role lookup the gate depends on,
// profile edits, and the admin role change with its self-demotion guard.
package profiles

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/db/models"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/logging"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/repository"
	"github.com/hashicorp/golang-lru/v2/expirable"
)

// CacheOptions sizes the role cache. Size 0 disables caching.
type CacheOptions struct {
	Size int
	TTL  time.Duration
}

// Organization is the partner organization record kept in profile attributes.
type Organization struct {
	Name    string `json:"name"`
	Website string `json:"website,omitempty"`
	Mission string `json:"mission,omitempty"`
	Contact string `json:"contact,omitempty"`
}

const organizationKey = "organization"

// Service is the profile store.
type Service struct {
	repo   repository.ProfileRepository
	cache  *expirable.LRU[string, gate.Role]
	events gate.Publisher
	logger *slog.Logger
}

// NewService creates the profile service. events may be nil.
func NewService(repo repository.ProfileRepository, events gate.Publisher, cache CacheOptions, logger *slog.Logger) *Service {
	if events == nil {
		events = gate.NopPublisher{}
	}
	s := &Service{repo: repo, events: events, logger: logging.Resolve(logger)}
	if cache.Size > 0 {
		ttl := cache.TTL
		if ttl <= 0 {
			ttl = 30 * time.Second
		}
		s.cache = expirable.NewLRU[string, gate.Role](cache.Size, nil, ttl)
	}
	return s
}

// GetProfileRole returns the role of userID. A stored role outside the
// known set is reported as a missing profile.
func (s *Service) GetProfileRole(ctx context.Context, userID string) (gate.Role, error) {
	if s.cache != nil {
		if role, ok := s.cache.Get(userID); ok {
			return role, nil
		}
	}
	raw, err := s.repo.GetRole(ctx, userID)
	if err != nil {
		return "", err
	}
	role, err := gate.ParseRole(raw)
	if err != nil {
		s.logger.WarnContext(ctx, "profile has unknown role", "user_id", userID, "role", raw)
		return "", fmt.Errorf("profile %s: %w", userID, gate.ErrProfileMissing)
	}
	if s.cache != nil {
		s.cache.Add(userID, role)
	}
	return role, nil
}

// Invalidate drops the cached role of userID.
func (s *Service) Invalidate(userID string) {
	if s.cache != nil {
		s.cache.Remove(userID)
	}
}

// GetProfile returns the profile and user of userID.
func (s *Service) GetProfile(ctx context.Context, userID string) (*models.Profile, error) {
	return s.repo.GetByUserID(ctx, userID)
}

// ListProfiles lists profiles, optionally restricted to one role.
func (s *Service) ListProfiles(ctx context.Context, role string) ([]models.Profile, error) {
	filter := repository.ProfileFilter{}
	if role != "" {
		r, err := gate.ParseRole(role)
		if err != nil {
			return nil, err
		}
		filter.Role = string(r)
	}
	return s.repo.List(ctx, filter)
}

// UpdateDetails changes the display name and merges attributes into the
// profile. Keys with a nil value are removed.
func (s *Service) UpdateDetails(ctx context.Context, userID, fullName string, attributes map[string]any) (*models.Profile, error) {
	current, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSpace(fullName)
	if name == "" {
		name = current.FullName
	}
	merged := models.JSONMap{}
	for k, v := range current.Attributes {
		merged[k] = v
	}
	for k, v := range attributes {
		if v == nil {
			delete(merged, k)
			continue
		}
		merged[k] = v
	}
	return s.repo.UpdateDetails(ctx, userID, name, merged)
}

// Organization returns the partner organization stored on userID's profile.
func (s *Service) Organization(ctx context.Context, userID string) (Organization, error) {
	p, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return Organization{}, err
	}
	raw, _ := p.Attributes[organizationKey].(map[string]any)
	str := func(k string) string {
		v, _ := raw[k].(string)
		return v
	}
	return Organization{Name: str("name"), Website: str("website"), Mission: str("mission"), Contact: str("contact")}, nil
}

// SetOrganization stores the partner organization on userID's profile.
func (s *Service) SetOrganization(ctx context.Context, userID string, org Organization) (Organization, error) {
	org.Name = strings.TrimSpace(org.Name)
	if org.Name == "" {
		return Organization{}, fmt.Errorf("%w: organization name is required", ErrInvalidInput)
	}
	_, err := s.UpdateDetails(ctx, userID, "", map[string]any{
		organizationKey: map[string]any{
			"name":    org.Name,
			"website": org.Website,
			"mission": org.Mission,
			"contact": org.Contact,
		},
	})
	if err != nil {
		return Organization{}, err
	}
	return org, nil
}

// UpdateRole sets targetUserID's role on behalf of actingUserID.
//
// Only admins may change roles, and an admin cannot demote themself
// (gate.ErrInvalidOperation). Setting one's own role to admin is a no-op.
func (s *Service) UpdateRole(ctx context.Context, actingUserID, targetUserID, newRole string) (*models.Profile, error) {
	role, err := gate.ParseRole(newRole)
	if err != nil {
		return nil, err
	}

	// read the acting role from storage, not the cache
	actingRaw, err := s.repo.GetRole(ctx, actingUserID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, fmt.Errorf("%w: acting user has no profile", gate.ErrForbidden)
		}
		return nil, err
	}

	change := gate.RoleChange{
		ActingUserID: actingUserID,
		ActingRole:   gate.Role(actingRaw),
		TargetUserID: targetUserID,
		NewRole:      role,
	}
	noop, err := change.Check()
	if err != nil {
		return nil, err
	}
	if noop {
		return s.repo.GetByUserID(ctx, targetUserID)
	}

	previous, err := s.repo.GetRole(ctx, targetUserID)
	if err != nil {
		return nil, err
	}
	if previous != string(role) {
		if err := s.repo.UpdateRole(ctx, targetUserID, string(role)); err != nil {
			return nil, err
		}
		s.Invalidate(targetUserID)
		s.events.Publish(gate.Event{Kind: gate.EventRoleChanged, UserID: targetUserID, Role: role})
		s.logger.InfoContext(ctx, "role changed",
			"acting_user_id", actingUserID,
			"target_user_id", targetUserID,
			"from", previous,
			"to", role,
		)
	}
	return s.repo.GetByUserID(ctx, targetUserID)
}

// AssignRole sets userID's role without an acting user. It backs operator
// tooling, where it is the only way to appoint the first admin.
func (s *Service) AssignRole(ctx context.Context, userID string, role gate.Role) error {
	if !role.Valid() {
		return fmt.Errorf("%w: %q", gate.ErrInvalidRole, role)
	}
	if err := s.repo.UpdateRole(ctx, userID, string(role)); err != nil {
		return err
	}
	s.Invalidate(userID)
	s.events.Publish(gate.Event{Kind: gate.EventRoleChanged, UserID: userID, Role: role})
	return nil
}
