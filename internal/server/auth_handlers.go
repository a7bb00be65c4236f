package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/auth"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/gate"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/services/iam"
	"github.com/ayopaul/ejidike-foundation-sub002/internal/sessionstore"
)

// RegisterRequest is the body of POST /api/auth/register.
type RegisterRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	FullName string `json:"full_name"`
	Role     string `json:"role,omitempty"`
}

// LoginRequest is the body of POST /api/auth/login.
type LoginRequest struct {
	Email      string `json:"email"`
	Password   string `json:"password"`
	RedirectTo string `json:"redirect_to,omitempty"`
}

func requestMeta(r *http.Request) sessionstore.Meta {
	ip := r.RemoteAddr
	if host, _, err := net.SplitHostPort(ip); err == nil {
		ip = host
	}
	return sessionstore.Meta{UserAgent: r.UserAgent(), IPAddress: ip}
}

func (h *handlers) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	in, err := h.Accounts.Register(r.Context(), iam.RegisterInput{
		Email:    req.Email,
		Password: req.Password,
		FullName: req.FullName,
		Role:     req.Role,
	}, requestMeta(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.Cookies.Set(w, in.Session.Token, in.Session.ExpiresAt)
	writeJSON(w, http.StatusCreated, signInView(in, in.Role.Home()))
}

func (h *handlers) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if req.Email == "" || req.Password == "" {
		writeError(w, r, h.logger, fmt.Errorf("%w: email and password are required", ErrBadRequest))
		return
	}
	in, err := h.Accounts.Login(r.Context(), req.Email, req.Password, requestMeta(r))
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.Cookies.Set(w, in.Session.Token, in.Session.ExpiresAt)

	redirectTo := req.RedirectTo
	if redirectTo == "" {
		redirectTo = r.URL.Query().Get("redirectTo")
	}
	writeJSON(w, http.StatusOK, signInView(in, h.landing(redirectTo, in.Role)))
}

// landing picks where to send a freshly signed-in user: the requested local
// path if their role may open it, otherwise their role home.
func (h *handlers) landing(redirectTo string, role gate.Role) string {
	home := role.Home()
	to := auth.SafeRedirect(redirectTo, home)
	if to == home {
		return home
	}
	d := h.Gate.Authorize(pathOnly(to), gate.Principal{Role: role})
	if !d.Allowed() {
		return home
	}
	return to
}

func pathOnly(target string) string {
	for i, c := range target {
		if c == '?' || c == '#' {
			return target[:i]
		}
	}
	return target
}

func (h *handlers) handleLogout(w http.ResponseWriter, r *http.Request) {
	if token := h.Cookies.Token(r); token != "" {
		if err := h.Accounts.Logout(r.Context(), token); err != nil {
			writeError(w, r, h.logger, err)
			return
		}
	}
	h.Cookies.Clear(w)
	writeJSON(w, http.StatusOK, map[string]string{"redirect": gate.LoginPath})
}

// principal returns the caller, resolving the token itself on public routes
// where the gate did not.
func (h *handlers) principal(r *http.Request) (gate.Principal, error) {
	if p, ok := auth.PrincipalFrom(r.Context()); ok {
		return p, nil
	}
	return h.Gate.Identify(r.Context(), h.Cookies.Token(r))
}

func (h *handlers) handleMe(w http.ResponseWriter, r *http.Request) {
	p, err := h.principal(r)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	if h.Profiles == nil {
		writeJSON(w, http.StatusOK, UserResponse{ID: p.UserID, Role: p.Role, Home: p.Role.Home()})
		return
	}
	profile, err := h.Profiles.GetProfile(r.Context(), p.UserID)
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	writeJSON(w, http.StatusOK, userView(profile))
}

func decisionPath(r *http.Request) string {
	if p := r.URL.Query().Get("path"); p != "" {
		return p
	}
	return "/"
}

func (h *handlers) handleDecision(w http.ResponseWriter, r *http.Request) {
	d := h.Gate.Evaluate(r.Context(), decisionPath(r), h.Cookies.Token(r))
	writeJSON(w, http.StatusOK, d)
}

// handleWatch streams decisions for ?path= as server-sent events until the
// session ends or the client goes away.
func (h *handlers) handleWatch(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	// the stream outlives the server's write timeout
	_ = rc.SetWriteDeadline(time.Time{})

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)

	ctx := r.Context()
	decisions := h.Monitor.Watch(ctx, decisionPath(r), h.Cookies.Token(r))
	keepAlive := time.NewTicker(h.WatchKeepAlive)
	defer keepAlive.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-keepAlive.C:
			if _, err := fmt.Fprint(w, ": keep-alive\n\n"); err != nil {
				return
			}
		case d, ok := <-decisions:
			if !ok {
				return
			}
			data, err := json.Marshal(d)
			if err != nil {
				h.logger.ErrorContext(ctx, "failed to encode decision", "error", err)
				return
			}
			if _, err := fmt.Fprintf(w, "event: decision\ndata: %s\n\n", data); err != nil {
				return
			}
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

func (h *handlers) handleSSOLogin(w http.ResponseWriter, r *http.Request) {
	state, err := auth.GenerateNonce()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	verifier, err := auth.GenerateNonce()
	if err != nil {
		writeError(w, r, h.logger, err)
		return
	}
	h.Cookies.SetState(w, state)
	h.Cookies.SetVerifier(w, verifier)
	if to := auth.SafeRedirect(r.URL.Query().Get("redirectTo"), ""); to != "" {
		h.Cookies.SetRedirect(w, to)
	}
	http.Redirect(w, r, h.RelyingParty.AuthCodeURL(state, verifier), http.StatusFound)
}

// handleSSOCallback completes the authorization code flow. Every failure
// lands on the login page; the UI shows the error code.
func (h *handlers) handleSSOCallback(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	fail := func(code string, err error) {
		h.logger.WarnContext(ctx, "sso callback failed", "code", code, "error", err)
		http.Redirect(w, r, gate.LoginPath+"?error="+code, http.StatusFound)
	}

	q := r.URL.Query()
	if e := q.Get("error"); e != "" {
		fail("sso_denied", errors.New(e))
		return
	}
	state := h.Cookies.TakeState(w, r)
	verifier := h.Cookies.TakeVerifier(w, r)
	redirectTo := h.Cookies.TakeRedirect(w, r)
	if state == "" || q.Get("state") != state {
		fail("sso_state", errors.New("state mismatch"))
		return
	}
	code := q.Get("code")
	if code == "" || verifier == "" {
		fail("sso_code", errors.New("missing code or verifier"))
		return
	}

	id, err := h.RelyingParty.Exchange(ctx, code, verifier)
	if err != nil {
		fail("sso_exchange", err)
		return
	}
	in, err := h.Accounts.SSOSignIn(ctx, id, requestMeta(r))
	if err != nil {
		switch {
		case errors.Is(err, iam.ErrAccountDisabled):
			fail("account_disabled", err)
		default:
			fail("sso_signin", err)
		}
		return
	}
	h.Cookies.Set(w, in.Session.Token, in.Session.ExpiresAt)
	http.Redirect(w, r, h.landing(redirectTo, in.Role), http.StatusFound)
}
