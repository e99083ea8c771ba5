package service

import (
	"context"
	"errors"
	"fmt"

	"google.golang.org/api/idtoken"

	"vibeshare/internal/model"
	"vibeshare/internal/repository"
)

// GoogleClaims is the verified identity extracted from a Google ID token.
type GoogleClaims struct {
	Email string
	Name  string
}

// IDTokenVerifier validates a third-party identity token and returns the
// claims it asserts. The interface exists so tests can substitute a fake for
// Google's public verification endpoint.
type IDTokenVerifier interface {
	Verify(ctx context.Context, rawToken string) (*GoogleClaims, error)
}

// googleVerifier validates ID tokens against Google's published certificates
// with the configured OAuth client ID as the audience.
type googleVerifier struct {
	audience string
}

func NewGoogleVerifier(clientID string) IDTokenVerifier {
	return &googleVerifier{audience: clientID}
}

func (g *googleVerifier) Verify(ctx context.Context, rawToken string) (*GoogleClaims, error) {
	payload, err := idtoken.Validate(ctx, rawToken, g.audience)
	if err != nil {
		return nil, model.ErrInvalidIDToken
	}

	email, _ := payload.Claims["email"].(string)
	if email == "" {
		return nil, model.ErrInvalidIDToken
	}
	name, _ := payload.Claims["name"].(string)

	return &GoogleClaims{Email: email, Name: name}, nil
}

// GoogleAuthService signs users in through Google identity federation.
type GoogleAuthService struct {
	userRepo repository.UserRepository
	verifier IDTokenVerifier
}

func NewGoogleAuthService(userRepo repository.UserRepository, verifier IDTokenVerifier) *GoogleAuthService {
	return &GoogleAuthService{
		userRepo: userRepo,
		verifier: verifier,
	}
}

// Login verifies the ID token and resolves the account by verified email,
// auto-provisioning on first login. Provisioned accounts get the email as
// username and no password, so password login stays unavailable for them.
func (s *GoogleAuthService) Login(ctx context.Context, rawToken string) (*model.User, error) {
	claims, err := s.verifier.Verify(ctx, rawToken)
	if err != nil {
		return nil, err
	}

	user, err := s.userRepo.GetByEmail(ctx, claims.Email)
	if err == nil {
		return user, nil
	}
	if !errors.Is(err, model.ErrUserNotFound) {
		return nil, fmt.Errorf("failed to look up federated user: %w", err)
	}

	user = &model.User{
		Email:    claims.Email,
		Name:     claims.Name,
		Username: claims.Email,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, fmt.Errorf("failed to provision federated user: %w", err)
	}

	return user, nil
}
