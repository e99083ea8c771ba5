package repository

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/model"
)

type UserRepository interface {
	Create(ctx context.Context, user *model.User) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	// GetByIdentifier resolves a user by email or username in one lookup.
	GetByIdentifier(ctx context.Context, identifier string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	GetAll(ctx context.Context) ([]model.User, error)
	SearchByName(ctx context.Context, name, surname string) ([]model.User, error)
	UpdateProfile(ctx context.Context, id primitive.ObjectID, req *model.UpdateProfileRequest) (*model.User, error)
	UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHashed string) error
	SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error)
	SetCoverPicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error)
	// Follow-graph set operations; both are idempotent.
	AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error
	// GetFollowers is a reverse lookup: users whose following set contains targetID.
	GetFollowers(ctx context.Context, targetID primitive.ObjectID) ([]model.UserSummary, error)
	GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]model.UserSummary, error)
	// Favorites set operations; both return the updated favorites set.
	AddFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	// GetSummaries batch-fetches display fields for joined responses.
	GetSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error)
}

type PostRepository interface {
	Create(ctx context.Context, post *model.Post) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Post, error)
	GetAll(ctx context.Context) ([]model.Post, error)
	GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
	Exists(ctx context.Context, id primitive.ObjectID) (bool, error)
	// ToggleLike flips the (user, post) like membership. The likes set and the
	// like counter move in the same database update, so their consistency is
	// guaranteed at every point in time.
	ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.ToggleLikeResult, error)
	// AddComment appends the comment and returns the updated post.
	AddComment(ctx context.Context, postID primitive.ObjectID, comment model.Comment) (*model.Post, error)
}
