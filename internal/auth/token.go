package auth

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// TokenService mints and verifies the HS256 access tokens the HTTP surface
// uses to carry an authenticated identity between requests.
type TokenService struct{ hmac []byte }

func NewTokenService(secret string) *TokenService {
	return &TokenService{hmac: []byte(secret)}
}

type Claims struct {
	Sub  string `json:"sub"`
	Role string `json:"role"` // "instructor" or "learner"
	jwt.RegisteredClaims
}

func (t *TokenService) Issue(acct Account) (string, error) {
	now := time.Now()
	claims := &Claims{
		Sub:  acct.ID,
		Role: string(acct.Role),
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    "quizforge",
			Subject:   acct.ID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(8 * time.Hour)),
		},
	}
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return tok.SignedString(t.hmac)
}

func (t *TokenService) Parse(tokenStr string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &Claims{}, func(*jwt.Token) (interface{}, error) {
		return t.hmac, nil
	})
	if err != nil || !token.Valid {
		return nil, errors.New("invalid token")
	}
	c, ok := token.Claims.(*Claims)
	if !ok {
		return nil, errors.New("invalid claims")
	}
	return c, nil
}
