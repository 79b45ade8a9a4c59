package auth

import (
	"context"
	"errors"
	"strings"

	"google.golang.org/api/idtoken"
)

var (
	ErrInvalidGoogleToken = errors.New("invalid google id token")
	ErrGoogleNoEmail      = errors.New("google id token has no email")
)

// GoogleIdentity - данные из проверенного Google ID token
type GoogleIdentity struct {
	Email      string
	GivenName  string
	FamilyName string
	Picture    string
}

type GoogleVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleIdentity, error)
}

type idTokenVerifier struct {
	clientID string
}

func NewGoogleVerifier(clientID string) GoogleVerifier {
	return &idTokenVerifier{clientID: clientID}
}

func (v *idTokenVerifier) Verify(ctx context.Context, rawToken string) (*GoogleIdentity, error) {
	payload, err := idtoken.Validate(ctx, rawToken, v.clientID)
	if err != nil {
		return nil, errors.Join(ErrInvalidGoogleToken, err)
	}
	return identityFromClaims(payload.Claims)
}

func identityFromClaims(claims map[string]interface{}) (*GoogleIdentity, error) {
	str := func(key string) string {
		s, _ := claims[key].(string)
		return s
	}
	email := strings.ToLower(strings.TrimSpace(str("email")))
	if email == "" {
		return nil, ErrGoogleNoEmail
	}
	return &GoogleIdentity{
		Email:      email,
		GivenName:  str("given_name"),
		FamilyName: str("family_name"),
		Picture:    str("picture"),
	}, nil
}
