package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"

	"vibeshare/internal/model"
	"vibeshare/internal/repository"
)

// UserService handles business logic for accounts, the follow graph and the
// favorites list.
type UserService struct {
	repo     repository.UserRepository
	postRepo repository.PostRepository
}

func NewUserService(repo repository.UserRepository, postRepo repository.PostRepository) *UserService {
	return &UserService{
		repo:     repo,
		postRepo: postRepo,
	}
}

// Register creates a new user account. The profile picture, if any, has
// already been uploaded by the caller; registration is aborted before any
// record is written when that upload fails, so no partial state exists.
func (s *UserService) Register(ctx context.Context, req *model.RegisterRequest, profilePictureURL string) (*model.User, error) {
	if strings.TrimSpace(req.Email) == "" {
		return nil, fmt.Errorf("email is required")
	}
	if strings.TrimSpace(req.Username) == "" {
		return nil, fmt.Errorf("username is required")
	}
	if strings.TrimSpace(req.Password) == "" {
		return nil, fmt.Errorf("password is required")
	}

	exists, err := s.repo.ExistsByEmail(ctx, req.Email)
	if err != nil {
		return nil, fmt.Errorf("failed to check email: %w", err)
	}
	if exists {
		return nil, model.ErrEmailExists
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		Email:          req.Email,
		Name:           req.Name,
		Surname:        req.Surname,
		Username:       req.Username,
		PasswordHashed: string(hashedPassword),
		Gender:         req.Gender,
		ProfilePicture: profilePictureURL,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates with an email or username plus password. Unknown
// identifier and wrong password produce the same error so the response does
// not leak which one was wrong. Accounts provisioned through Google have no
// password hash and fail here the same way. Infrastructure failures are not
// collapsed; they propagate so the handler reports a server error instead of
// a bogus 401.
func (s *UserService) Login(ctx context.Context, identifier, password string) (*model.User, error) {
	user, err := s.repo.GetByIdentifier(ctx, identifier)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			return nil, model.ErrInvalidCredentials
		}
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHashed), []byte(password)); err != nil {
		return nil, model.ErrInvalidCredentials
	}

	return user, nil
}

// UpdatePassword re-hashes and overwrites the caller's password. Outstanding
// tokens stay valid until their own expiry; they are stateless.
func (s *UserService) UpdatePassword(ctx context.Context, userID primitive.ObjectID, newPassword string) error {
	if strings.TrimSpace(newPassword) == "" {
		return fmt.Errorf("new password is required")
	}

	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.UpdatePassword(ctx, userID, string(hashedPassword))
}

func (s *UserService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetAll(ctx context.Context) ([]model.User, error) {
	return s.repo.GetAll(ctx)
}

func (s *UserService) Search(ctx context.Context, name, surname string) ([]model.User, error) {
	return s.repo.SearchByName(ctx, name, surname)
}

func (s *UserService) UpdateProfile(ctx context.Context, userID primitive.ObjectID, req *model.UpdateProfileRequest) (*model.User, error) {
	return s.repo.UpdateProfile(ctx, userID, req)
}

func (s *UserService) SetProfilePicture(ctx context.Context, userID primitive.ObjectID, url string) (*model.User, error) {
	return s.repo.SetProfilePicture(ctx, userID, url)
}

func (s *UserService) SetCoverPicture(ctx context.Context, userID primitive.ObjectID, url string) (*model.User, error) {
	return s.repo.SetCoverPicture(ctx, userID, url)
}

// Follow adds targetID to the actor's following set. Following twice has no
// additional effect; following yourself is rejected.
func (s *UserService) Follow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return err
	}

	return s.repo.AddFollowing(ctx, actorID, targetID)
}

// Unfollow removes targetID from the actor's following set. Unfollowing a
// non-followed target is a no-op, not an error.
func (s *UserService) Unfollow(ctx context.Context, actorID, targetID primitive.ObjectID) error {
	if actorID == targetID {
		return model.ErrCannotFollowSelf
	}

	if _, err := s.repo.GetByID(ctx, targetID); err != nil {
		return err
	}

	return s.repo.RemoveFollowing(ctx, actorID, targetID)
}

// GetFollowers lists the users following targetID, derived by reverse lookup
// of the following sets.
func (s *UserService) GetFollowers(ctx context.Context, targetID primitive.ObjectID) ([]model.UserSummary, error) {
	return s.repo.GetFollowers(ctx, targetID)
}

func (s *UserService) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]model.UserSummary, error) {
	return s.repo.GetFollowing(ctx, userID)
}

// AddFavorite adds the post to the actor's favorites set after verifying the
// post exists. Idempotent.
func (s *UserService) AddFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	exists, err := s.postRepo.Exists(ctx, postID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, model.ErrPostNotFound
	}

	return s.repo.AddFavorite(ctx, userID, postID)
}

// RemoveFavorite removes the post from the actor's favorites set. Removing a
// post that is not favorited is a no-op.
func (s *UserService) RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return s.repo.RemoveFavorite(ctx, userID, postID)
}

// GetFavoritePosts returns the user's favorite posts with authors populated.
func (s *UserService) GetFavoritePosts(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error) {
	user, err := s.repo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	posts, err := s.postRepo.GetByIDs(ctx, user.Favorites)
	if err != nil {
		return nil, err
	}

	return enrichPostAuthors(ctx, s.repo, posts), nil
}
