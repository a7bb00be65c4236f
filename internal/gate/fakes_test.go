package gate

import (
	"context"
	"errors"
	"sync"
	"time"
)

var errStoreDown = errors.New("store unreachable")

// mockSessions is a map-backed SessionResolver that counts lookups.
type mockSessions struct {
	mu     sync.Mutex
	tokens map[string]string
	err    error
	calls  int
}

func (m *mockSessions) ResolveSession(ctx context.Context, token string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if m.err != nil {
		return "", m.err
	}
	userID, ok := m.tokens[token]
	if !ok {
		return "", errors.New("no session")
	}
	return userID, nil
}

func (m *mockSessions) revoke(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.tokens, token)
}

func (m *mockSessions) lookups() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// mockProfiles is a map-backed ProfileReader.
type mockProfiles struct {
	mu    sync.Mutex
	roles map[string]Role
	err   error
	calls int
}

func (m *mockProfiles) GetProfileRole(ctx context.Context, userID string) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++
	if m.err != nil {
		return "", m.err
	}
	role, ok := m.roles[userID]
	if !ok {
		return "", errors.New("no profile")
	}
	return role, nil
}

func (m *mockProfiles) setRole(userID string, role Role) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.roles[userID] = role
}

type recordedDecision struct {
	d       Decision
	elapsed time.Duration
}

type mockRecorder struct {
	mu   sync.Mutex
	seen []recordedDecision
}

func (r *mockRecorder) RecordDecision(_ context.Context, d Decision, elapsed time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seen = append(r.seen, recordedDecision{d: d, elapsed: elapsed})
}

// fixture returns a gate with one user per role plus an orphan session
// (valid token, no profile).
func fixture() (*Gate, *mockSessions, *mockProfiles) {
	sessions := &mockSessions{tokens: map[string]string{
		"tok-applicant": "u-applicant",
		"tok-mentor":    "u-mentor",
		"tok-partner":   "u-partner",
		"tok-admin":     "u-admin",
		"tok-orphan":    "u-orphan",
		"tok-bogus":     "u-bogus",
	}}
	profiles := &mockProfiles{roles: map[string]Role{
		"u-applicant": RoleApplicant,
		"u-mentor":    RoleMentor,
		"u-partner":   RolePartner,
		"u-admin":     RoleAdmin,
		"u-bogus":     Role("superuser"),
	}}
	g, err := New(sessions, profiles)
	if err != nil {
		panic(err)
	}
	return g, sessions, profiles
}

func tokenFor(r Role) string {
	return "tok-" + string(r)
}
