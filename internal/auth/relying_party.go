package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"io"
	"time"

	"github.com/ayopaul/ejidike-foundation-sub002/internal/config"
	"github.com/zitadel/oidc/v3/pkg/client/rp"
	httphelper "github.com/zitadel/oidc/v3/pkg/http"
	"github.com/zitadel/oidc/v3/pkg/oidc"
)

// Identity is the verified result of an SSO sign-in.
type Identity struct {
	Subject string
	Email   string
	Name    string
}

// RelyingParty signs users in against the external identity provider.
type RelyingParty struct {
	rp rp.RelyingParty
}

// NewRelyingParty performs OIDC discovery against cfg.Issuer.
func NewRelyingParty(ctx context.Context, cfg config.OIDCConfig, secureCookies bool) (*RelyingParty, error) {
	// state cookies only live for one round trip, so per-process keys suffice
	hashKey, err := generateRandomBytes(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cookie hash key: %w", err)
	}
	cryptoKey, err := generateRandomBytes(32)
	if err != nil {
		return nil, fmt.Errorf("failed to generate cookie crypto key: %w", err)
	}

	var cookieOpts []httphelper.CookieHandlerOpt
	if !secureCookies {
		cookieOpts = append(cookieOpts, httphelper.WithUnsecure())
	}
	cookieHandler := httphelper.NewCookieHandler(hashKey, cryptoKey, cookieOpts...)

	options := []rp.Option{
		rp.WithCookieHandler(cookieHandler),
		rp.WithVerifierOpts(rp.WithIssuedAtMaxAge(10 * time.Second)),
	}

	relyingParty, err := rp.NewRelyingPartyOIDC(ctx, cfg.Issuer, cfg.ClientID, cfg.ClientSecret, cfg.RedirectURI,
		cfg.Scopes, options...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC relying party: %w", err)
	}
	return &RelyingParty{rp: relyingParty}, nil
}

// AuthCodeURL returns the authorization endpoint URL for state with an S256
// challenge derived from verifier.
func (r *RelyingParty) AuthCodeURL(state, verifier string) string {
	return rp.AuthURL(state, r.rp, rp.WithCodeChallenge(oidc.NewSHACodeChallenge(verifier)))
}

// Exchange trades an authorization code and its PKCE verifier for a verified
// identity.
func (r *RelyingParty) Exchange(ctx context.Context, code, verifier string) (Identity, error) {
	tokens, err := rp.CodeExchange[*oidc.IDTokenClaims](ctx, code, r.rp, rp.WithCodeVerifier(verifier))
	if err != nil {
		return Identity{}, fmt.Errorf("code exchange: %w", err)
	}
	claims := tokens.IDTokenClaims
	if claims == nil || claims.Subject == "" {
		return Identity{}, fmt.Errorf("code exchange: id token has no subject")
	}
	return Identity{
		Subject: claims.Subject,
		Email:   claims.Email,
		Name:    claims.Name,
	}, nil
}

func generateRandomBytes(size int) ([]byte, error) {
	b := make([]byte, size)
	if _, err := io.ReadFull(rand.Reader, b); err != nil {
		return nil, fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return b, nil
}

// GenerateNonce returns a random URL-safe nonce.
func GenerateNonce() (string, error) {
	b, err := generateRandomBytes(32)
	if err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
