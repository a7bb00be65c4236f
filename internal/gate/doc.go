// Package gate is the single authorization policy for the portal.
//
// Evaluate takes a request path and an opaque session token and returns a
// Decision: allow, redirect to login, or redirect to the caller's role home.
// The HTTP middleware, the decision endpoints and the event Monitor all call
// the same Gate, so there is exactly one copy of the rules.
//
// Lookup failures of any kind resolve to RedirectToLogin.
package gate
