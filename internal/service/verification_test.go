package service

import (
	"context"
	"errors"
	"regexp"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/model"
)

// fakeCodeRegistry is an in-memory CodeRegistry with the same single-use
// contract as the Redis implementation.
type fakeCodeRegistry struct {
	codes map[string]string

	storeErr   error
	consumeErr error
}

func newFakeCodeRegistry() *fakeCodeRegistry {
	return &fakeCodeRegistry{codes: make(map[string]string)}
}

func (f *fakeCodeRegistry) Store(ctx context.Context, email, code string) error {
	if f.storeErr != nil {
		return f.storeErr
	}
	f.codes[email] = code
	return nil
}

func (f *fakeCodeRegistry) Consume(ctx context.Context, email, code string) (bool, error) {
	if f.consumeErr != nil {
		return false, f.consumeErr
	}
	stored, ok := f.codes[email]
	if !ok || stored != code {
		return false, nil
	}
	delete(f.codes, email)
	return true, nil
}

type fakeMailer struct {
	sendErr error

	sentTo    []string
	sentCodes []string
}

func (f *fakeMailer) SendVerificationCode(ctx context.Context, toEmail, code string) error {
	if f.sendErr != nil {
		return f.sendErr
	}
	f.sentTo = append(f.sentTo, toEmail)
	f.sentCodes = append(f.sentCodes, code)
	return nil
}

func userRepoWith(user *model.User) *mockUserRepository {
	return &mockUserRepository{
		getByIdentifierFn: func(ctx context.Context, identifier string) (*model.User, error) {
			if user != nil && (identifier == user.Email || identifier == user.Username) {
				return user, nil
			}
			return nil, model.ErrUserNotFound
		},
	}
}

func TestVerificationService_SendCode(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	codes := newFakeCodeRegistry()
	mailer := &fakeMailer{}
	svc := NewVerificationService(userRepoWith(user), codes, mailer)

	if err := svc.SendCode(context.Background(), "ada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// The code is keyed by the canonical email even when the request used the
	// username, and the mail goes to the same address.
	stored, ok := codes.codes[user.Email]
	if !ok {
		t.Fatal("code should be stored under the user's email")
	}
	if len(mailer.sentTo) != 1 || mailer.sentTo[0] != user.Email {
		t.Errorf("mail sent to %v, want [%s]", mailer.sentTo, user.Email)
	}
	if mailer.sentCodes[0] != stored {
		t.Error("mailed code should match the stored code")
	}
	if !regexp.MustCompile(`^\d{6}$`).MatchString(stored) {
		t.Errorf("code = %q, want six digits", stored)
	}
}

func TestVerificationService_SendCode_UnknownUser(t *testing.T) {
	codes := newFakeCodeRegistry()
	mailer := &fakeMailer{}
	svc := NewVerificationService(userRepoWith(nil), codes, mailer)

	err := svc.SendCode(context.Background(), "nobody")
	if !errors.Is(err, model.ErrUserNotFound) {
		t.Errorf("error = %v, want %v", err, model.ErrUserNotFound)
	}
	if len(mailer.sentTo) != 0 {
		t.Error("no mail should be sent for an unknown user")
	}
}

func TestVerificationService_SendCode_MailFailure(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	svc := NewVerificationService(userRepoWith(user), newFakeCodeRegistry(), &fakeMailer{sendErr: errors.New("relay down")})

	if err := svc.SendCode(context.Background(), "ada"); err == nil {
		t.Error("a mail relay failure should fail the request")
	}
}

func TestVerificationService_LoginWithCode_SingleUse(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	codes := newFakeCodeRegistry()
	mailer := &fakeMailer{}
	svc := NewVerificationService(userRepoWith(user), codes, mailer)

	if err := svc.SendCode(context.Background(), "ada@example.com"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := mailer.sentCodes[0]

	// First exchange succeeds
	got, err := svc.LoginWithCode(context.Background(), "ada", code)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != user.ID {
		t.Errorf("resolved user %v, want %v", got.ID, user.ID)
	}

	// Replaying the same code must fail
	if _, err := svc.LoginWithCode(context.Background(), "ada", code); !errors.Is(err, model.ErrInvalidCode) {
		t.Errorf("replay error = %v, want %v", err, model.ErrInvalidCode)
	}
}

func TestVerificationService_LoginWithCode_WrongCodeDoesNotConsume(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	codes := newFakeCodeRegistry()
	mailer := &fakeMailer{}
	svc := NewVerificationService(userRepoWith(user), codes, mailer)

	if err := svc.SendCode(context.Background(), "ada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	code := mailer.sentCodes[0]

	wrong := "000000"
	if wrong == code {
		wrong = "000001"
	}
	if _, err := svc.LoginWithCode(context.Background(), "ada", wrong); !errors.Is(err, model.ErrInvalidCode) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidCode)
	}

	// The stored code survives a wrong guess and still verifies
	if _, err := svc.LoginWithCode(context.Background(), "ada", code); err != nil {
		t.Errorf("correct code after a wrong guess should still verify: %v", err)
	}
}

func TestVerificationService_LoginWithCode_EmptyCode(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	svc := NewVerificationService(userRepoWith(user), newFakeCodeRegistry(), &fakeMailer{})

	if _, err := svc.LoginWithCode(context.Background(), "ada", ""); !errors.Is(err, model.ErrInvalidCode) {
		t.Errorf("error = %v, want %v", err, model.ErrInvalidCode)
	}
}

func TestVerificationService_Resend_ReplacesCode(t *testing.T) {
	user := &model.User{ID: primitive.NewObjectID(), Email: "ada@example.com", Username: "ada"}
	codes := newFakeCodeRegistry()
	mailer := &fakeMailer{}
	svc := NewVerificationService(userRepoWith(user), codes, mailer)

	if err := svc.SendCode(context.Background(), "ada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := svc.SendCode(context.Background(), "ada"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	first, second := mailer.sentCodes[0], mailer.sentCodes[1]
	if first == second {
		t.Skip("random codes collided; nothing to assert")
	}

	// Only the most recent code verifies
	if _, err := svc.LoginWithCode(context.Background(), "ada", first); !errors.Is(err, model.ErrInvalidCode) {
		t.Errorf("stale code error = %v, want %v", err, model.ErrInvalidCode)
	}
	if _, err := svc.LoginWithCode(context.Background(), "ada", second); err != nil {
		t.Errorf("latest code should verify: %v", err)
	}
}
