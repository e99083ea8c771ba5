package service

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ErrInvalidToken covers every verification failure: malformed, expired or
// badly signed tokens all collapse into one outcome for the caller.
var ErrInvalidToken = errors.New("invalid token")

// TokenService issues and verifies the stateless bearer tokens used by every
// authenticated endpoint. Tokens are HS256-signed with a process-wide secret
// and carry the user ID in the subject claim. There is no refresh mechanism;
// expiry forces re-authentication.
type TokenService struct {
	secret []byte
	maxAge time.Duration
}

// NewTokenService creates a TokenService with the given secret and token
// lifetime in seconds.
func NewTokenService(secret string, maxAgeSeconds int) *TokenService {
	return &TokenService{
		secret: []byte(secret),
		maxAge: time.Duration(maxAgeSeconds) * time.Second,
	}
}

// Issue signs a token asserting userID, expiring maxAge from now.
func (s *TokenService) Issue(userID primitive.ObjectID) (string, error) {
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID.Hex(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.maxAge)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token string, returning the user ID it
// asserts. Restricting the method to HMAC prevents algorithm confusion
// attacks where a token claims a different signing scheme.
func (s *TokenService) Verify(tokenString string) (primitive.ObjectID, error) {
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, ErrInvalidToken
	}

	subject, err := token.Claims.GetSubject()
	if err != nil || subject == "" {
		return primitive.NilObjectID, ErrInvalidToken
	}

	userID, err := primitive.ObjectIDFromHex(subject)
	if err != nil {
		return primitive.NilObjectID, ErrInvalidToken
	}
	return userID, nil
}
