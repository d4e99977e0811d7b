package services

import (
	"errors"
	"fmt"

	"github.com/AnshRaj112/dailymoji-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
)

// IdentityClaims is what the auth provider puts in its id tokens.
type IdentityClaims struct {
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// IdentityVerifier checks id tokens issued by the auth provider.
type IdentityVerifier struct {
	secret []byte
	issuer string
}

func NewIdentityVerifier(secret, issuer string) *IdentityVerifier {
	return &IdentityVerifier{secret: []byte(secret), issuer: issuer}
}

// Verify parses an HS256 id token and returns the session it identifies.
func (v *IdentityVerifier) Verify(tokenString string) (models.Session, error) {
	if len(v.secret) == 0 {
		return models.Session{}, errors.New("identity verification is not configured")
	}
	if tokenString == "" {
		return models.Session{}, fmt.Errorf("%w: token is empty", ErrInvalidIdentityToken)
	}

	opts := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
	}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &IdentityClaims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return v.secret, nil
	}, opts...)
	if err != nil {
		return models.Session{}, fmt.Errorf("%w: %v", ErrInvalidIdentityToken, err)
	}

	claims, ok := token.Claims.(*IdentityClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return models.Session{}, fmt.Errorf("%w: missing subject", ErrInvalidIdentityToken)
	}

	return models.Session{
		UserID:      claims.Subject,
		DisplayName: claims.Name,
		PhotoURL:    claims.Picture,
	}, nil
}
