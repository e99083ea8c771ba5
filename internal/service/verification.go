package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"

	"vibeshare/internal/cache"
	"vibeshare/internal/mail"
	"vibeshare/internal/model"
	"vibeshare/internal/repository"
)

// VerificationService runs the passwordless login flow: a short numeric code
// is mailed to the user and exchanged exactly once for a token. The only
// state lives in the code registry; a new send overwrites any prior
// unconsumed code for that email.
type VerificationService struct {
	userRepo repository.UserRepository
	codes    cache.CodeRegistry
	mailer   mail.Mailer
}

func NewVerificationService(userRepo repository.UserRepository, codes cache.CodeRegistry, mailer mail.Mailer) *VerificationService {
	return &VerificationService{
		userRepo: userRepo,
		codes:    codes,
		mailer:   mailer,
	}
}

// SendCode resolves the user by email or username, stores a fresh 6-digit
// code keyed by the canonical email and mails it. A mail-relay failure fails
// the whole request; there are no retries.
func (s *VerificationService) SendCode(ctx context.Context, emailOrUsername string) error {
	user, err := s.userRepo.GetByIdentifier(ctx, emailOrUsername)
	if err != nil {
		return err
	}

	code, err := generateCode()
	if err != nil {
		return fmt.Errorf("failed to generate verification code: %w", err)
	}

	if err := s.codes.Store(ctx, user.Email, code); err != nil {
		return err
	}

	if err := s.mailer.SendVerificationCode(ctx, user.Email, code); err != nil {
		return fmt.Errorf("failed to send verification email: %w", err)
	}

	return nil
}

// LoginWithCode resolves the user and exchanges the code. The registry
// deletes the entry on a successful match, so a code verifies at most once;
// a wrong guess leaves the stored code in place.
func (s *VerificationService) LoginWithCode(ctx context.Context, emailOrUsername, code string) (*model.User, error) {
	user, err := s.userRepo.GetByIdentifier(ctx, emailOrUsername)
	if err != nil {
		return nil, err
	}

	if code == "" {
		return nil, model.ErrInvalidCode
	}

	ok, err := s.codes.Consume(ctx, user.Email, code)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrInvalidCode
	}

	return user, nil
}

// generateCode draws a uniformly random 6-digit code in [100000, 999999].
func generateCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(900000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}
