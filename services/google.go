package services

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"arzaq-api/apperr"
)

const googleUserinfoURL = "https://www.googleapis.com/oauth2/v3/userinfo"

// GoogleVerifier resolves a Google OAuth access token to the account it
// belongs to
type GoogleVerifier struct {
	endpoint string
	client   *http.Client
}

func NewGoogleVerifier() *GoogleVerifier {
	return &GoogleVerifier{
		endpoint: googleUserinfoURL,
		client:   &http.Client{Timeout: 10 * time.Second},
	}
}

type GoogleUser struct {
	Email         string `json:"email"`
	Name          string `json:"name"`
	GoogleID      string `json:"sub"`
	EmailVerified bool   `json:"email_verified"`
}

// Verify exchanges the access token for the user's profile; any failure
// surfaces as invalid_token
func (g *GoogleVerifier) Verify(ctx context.Context, accessToken string) (*GoogleUser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.endpoint, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)

	resp, err := g.client.Do(req)
	if err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "failed to verify Google token")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.New(apperr.KindInvalidToken, "invalid Google token")
	}

	user := &GoogleUser{}
	if err := json.NewDecoder(resp.Body).Decode(user); err != nil {
		return nil, apperr.New(apperr.KindInvalidToken, "failed to verify Google token")
	}
	return user, nil
}
