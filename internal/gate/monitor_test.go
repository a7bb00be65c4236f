package gate

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func recv(t *testing.T, ch <-chan Decision) Decision {
	t.Helper()
	select {
	case d, ok := <-ch:
		require.True(t, ok, "channel closed unexpectedly")
		return d
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for decision")
		return Decision{}
	}
}

func expectClosed(t *testing.T, ch <-chan Decision) {
	t.Helper()
	select {
	case _, ok := <-ch:
		assert.False(t, ok, "expected channel to be closed")
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for close")
	}
}

func TestBroker_FiltersByUser(t *testing.T) {
	b := NewBroker(1, nil)
	ctx, cancel := context.WithCancel(context.Background())

	alice := b.Subscribe(ctx, "alice")
	bob := b.Subscribe(ctx, "bob")
	assert.Equal(t, 2, b.Subscribers())

	b.Publish(Event{Kind: EventRoleChanged, UserID: "alice", Role: RoleMentor})
	ev := <-alice
	assert.Equal(t, EventRoleChanged, ev.Kind)
	assert.False(t, ev.At.IsZero())

	select {
	case <-bob:
		t.Fatal("bob should not see alice's event")
	default:
	}

	// full buffer drops instead of blocking
	b.Publish(Event{Kind: EventSessionRevoked, UserID: "alice"})
	b.Publish(Event{Kind: EventSessionRevoked, UserID: "alice"})

	cancel()
	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMonitor_EmitsOnRoleChange(t *testing.T) {
	g, _, profiles := fixture()
	b := NewBroker(4, nil)
	m := NewMonitor(g, b, 0)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := m.Watch(ctx, "/mentor/dashboard", "tok-applicant")
	first := recv(t, ch)
	assert.Equal(t, KindRedirectRoleHome, first.Kind)
	assert.Equal(t, "/dashboard", first.Location)

	// an unrelated event re-evaluates but emits nothing new
	b.Publish(Event{Kind: EventRoleChanged, UserID: "u-applicant", Role: RoleApplicant})

	profiles.setRole("u-applicant", RoleMentor)
	b.Publish(Event{Kind: EventRoleChanged, UserID: "u-applicant", Role: RoleMentor})

	next := recv(t, ch)
	assert.Equal(t, KindAllow, next.Kind)
	assert.Equal(t, RoleMentor, next.Role)
}

func TestMonitor_ClosesAfterLogout(t *testing.T) {
	g, sessions, _ := fixture()
	b := NewBroker(4, nil)
	m := NewMonitor(g, b, 0)

	ch := m.Watch(context.Background(), "/dashboard", "tok-partner")
	assert.Equal(t, KindAllow, recv(t, ch).Kind)

	sessions.revoke("tok-partner")
	b.Publish(Event{Kind: EventSessionRevoked, UserID: "u-partner"})

	d := recv(t, ch)
	assert.Equal(t, KindRedirectLogin, d.Kind)
	expectClosed(t, ch)
	require.Eventually(t, func() bool { return b.Subscribers() == 0 }, time.Second, 10*time.Millisecond)
}

func TestMonitor_PollsWithoutEvents(t *testing.T) {
	g, sessions, _ := fixture()
	m := NewMonitor(g, NewBroker(1, nil), 10*time.Millisecond)

	ch := m.Watch(context.Background(), "/dashboard", "tok-mentor")
	assert.Equal(t, KindAllow, recv(t, ch).Kind)

	// expiry publishes no event
	sessions.revoke("tok-mentor")
	assert.Equal(t, KindRedirectLogin, recv(t, ch).Kind)
	expectClosed(t, ch)
}

func TestMonitor_UnauthenticatedSendsOnce(t *testing.T) {
	g, _, _ := fixture()
	m := NewMonitor(g, NewBroker(1, nil), time.Millisecond)

	ch := m.Watch(context.Background(), "/dashboard", "")
	assert.Equal(t, KindRedirectLogin, recv(t, ch).Kind)
	expectClosed(t, ch)
}
