package gate

import (
	"encoding/json"
	"net/url"
)

// Kind is the outcome of an evaluation.
type Kind string

const (
	KindAllow            Kind = "allow"
	KindRedirectLogin    Kind = "redirect_login"
	KindRedirectRoleHome Kind = "redirect_role_home"
)

// Decision is the result of Gate.Evaluate.
type Decision struct {
	Kind Kind
	// Location is the redirect target; empty for KindAllow.
	Location string
	// Path is the normalized request path that was evaluated.
	Path string
	Area Area
	// UserID and Role are set when a session and profile were resolved.
	UserID string
	Role   Role
	// Reason explains a redirect: ErrUnauthenticated, ErrProfileMissing or ErrForbidden.
	Reason error
}

// Allowed reports whether the request may proceed.
func (d Decision) Allowed() bool {
	return d.Kind == KindAllow
}

// Same reports whether d and o have the same visible outcome.
func (d Decision) Same(o Decision) bool {
	return d.Kind == o.Kind && d.Location == o.Location
}

// MarshalJSON renders the UI-facing shape of a decision.
func (d Decision) MarshalJSON() ([]byte, error) {
	out := struct {
		Decision string `json:"decision"`
		Redirect string `json:"redirect,omitempty"`
		Path     string `json:"path"`
		Area     Area   `json:"area"`
		Role     Role   `json:"role,omitempty"`
		Reason   string `json:"reason,omitempty"`
	}{
		Decision: string(d.Kind),
		Redirect: d.Location,
		Path:     d.Path,
		Area:     d.Area,
		Role:     d.Role,
	}
	if d.Reason != nil {
		out.Reason = d.Reason.Error()
	}
	return json.Marshal(out)
}

// LoginURL is the login page carrying the original destination.
func LoginURL(original string) string {
	if original == "" || original == "/" || original == LoginPath {
		return LoginPath
	}
	return LoginPath + "?redirectTo=" + url.QueryEscape(original)
}

func allow(p string, area Area, userID string, role Role) Decision {
	return Decision{Kind: KindAllow, Path: p, Area: area, UserID: userID, Role: role}
}

func redirectToLogin(p string, area Area, reason error) Decision {
	return Decision{Kind: KindRedirectLogin, Location: LoginURL(p), Path: p, Area: area, Reason: reason}
}

func redirectToRoleHome(p string, area Area, userID string, role Role, reason error) Decision {
	return Decision{Kind: KindRedirectRoleHome, Location: role.Home(), Path: p, Area: area, UserID: userID, Role: role, Reason: reason}
}
