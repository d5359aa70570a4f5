package networks

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"time"

	"github.com/danverhoeven/adledger-backend/pkg/config"
	"github.com/danverhoeven/adledger-backend/pkg/errors"
	"golang.org/x/oauth2"
)

const stateBytes = 16

// oauthExchanger wraps the oauth2 client config shared by every provider
// integration.
type oauthExchanger struct {
	cfg *oauth2.Config
}

func newOAuthExchanger(cfg config.NetworksConfig) *oauthExchanger {
	if cfg.OAuthClientID == "" || cfg.OAuthTokenURL == "" {
		return &oauthExchanger{}
	}
	return &oauthExchanger{
		cfg: &oauth2.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			RedirectURL:  cfg.OAuthRedirectURL,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.OAuthAuthURL,
				TokenURL: cfg.OAuthTokenURL,
			},
		},
	}
}

func (e *oauthExchanger) begin(provider string) (*BeginOAuthResult, error) {
	if e.cfg == nil {
		return nil, errors.New(errors.CodeStateConflict, "oauth is not configured")
	}
	state, err := newState()
	if err != nil {
		return nil, errors.Wrap(errors.CodeInternal, err, "generate oauth state")
	}
	authURL := e.cfg.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.SetAuthURLParam("provider", provider),
	)
	return &BeginOAuthResult{AuthURL: authURL, State: state}, nil
}

func (e *oauthExchanger) exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	if e.cfg == nil {
		return nil, errors.New(errors.CodeStateConflict, "oauth is not configured")
	}
	return e.cfg.Exchange(ctx, code)
}

// refresh exchanges a refresh token for a fresh access token.
func (e *oauthExchanger) refresh(ctx context.Context, refreshToken string, expiry time.Time) (*oauth2.Token, error) {
	if e.cfg == nil {
		return nil, errors.New(errors.CodeStateConflict, "oauth is not configured")
	}
	if refreshToken == "" {
		return nil, fmt.Errorf("missing refresh token")
	}
	source := e.cfg.TokenSource(ctx, &oauth2.Token{
		RefreshToken: refreshToken,
		Expiry:       expiry,
	})
	return source.Token()
}

func newState() (string, error) {
	buf := make([]byte, stateBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
