package auth

import (
	"context"
	"fmt"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	oauthapi "google.golang.org/api/oauth2/v2"
	"google.golang.org/api/option"

	"github.com/Vijay-1289/Expense-Tracker/internal/core"
)

// GoogleVerifier runs the OAuth authorization-code flow against Google
// and resolves the resulting token to a user profile.
type GoogleVerifier struct {
	cfg *oauth2.Config
}

func NewGoogleVerifier(clientID, clientSecret, redirectURL string) *GoogleVerifier {
	return &GoogleVerifier{
		cfg: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Scopes: []string{
				oauthapi.UserinfoEmailScope,
				oauthapi.UserinfoProfileScope,
			},
			Endpoint: google.Endpoint,
		},
	}
}

// AuthURL returns the consent-page URL bound to the given CSRF state.
func (g *GoogleVerifier) AuthURL(state string) string {
	return g.cfg.AuthCodeURL(state, oauth2.AccessTypeOnline)
}

// Exchange trades the authorization code for the user's identity and
// profile details.
func (g *GoogleVerifier) Exchange(ctx context.Context, code string) (User, error) {
	tok, err := g.cfg.Exchange(ctx, code)
	if err != nil {
		return User{}, fmt.Errorf("token exchange: %w", err)
	}

	svc, err := oauthapi.NewService(ctx, option.WithTokenSource(g.cfg.TokenSource(ctx, tok)))
	if err != nil {
		return User{}, fmt.Errorf("userinfo service: %w", err)
	}
	info, err := svc.Userinfo.Get().Context(ctx).Do()
	if err != nil {
		return User{}, fmt.Errorf("fetch userinfo: %w", err)
	}
	if info.Id == "" {
		return User{}, fmt.Errorf("userinfo response missing subject")
	}

	return User{
		Identity: core.Identity("google:" + info.Id),
		Email:    info.Email,
		FullName: info.Name,
	}, nil
}

// NewState returns a fresh CSRF state value for the OAuth roundtrip.
func NewState() string {
	return newToken()
}
