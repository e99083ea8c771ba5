package repository

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"vibeshare/internal/model"
)

// userRepository implements UserRepository on a MongoDB collection.
type userRepository struct {
	col *mongo.Collection
}

// NewUserRepository creates a new user repository and ensures the unique
// indexes on email and username.
func NewUserRepository(db *mongo.Database) UserRepository {
	col := db.Collection("users")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "username", Value: 1}}, Options: options.Index().SetUnique(true)},
	})
	return &userRepository{col: col}
}

// summaryProjection limits listing results to display fields.
var summaryProjection = bson.M{"_id": 1, "name": 1, "username": 1}

func (r *userRepository) Create(ctx context.Context, u *model.User) error {
	now := time.Now().UTC()
	u.CreatedAt = now
	u.UpdatedAt = now
	if u.Followers == nil {
		u.Followers = []primitive.ObjectID{}
	}
	if u.Following == nil {
		u.Following = []primitive.ObjectID{}
	}
	if u.Favorites == nil {
		u.Favorites = []primitive.ObjectID{}
	}

	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return model.ErrEmailExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	u.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *userRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by id: %w", err)
	}
	return &u, nil
}

// GetByIdentifier matches the email and username fields in a single $or query,
// mirroring the login contract where the caller may supply either.
func (r *userRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	filter := bson.M{"$or": bson.A{
		bson.M{"email": identifier},
		bson.M{"username": identifier},
	}}

	var u model.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by identifier: %w", err)
	}
	return &u, nil
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	var u model.User
	err := r.col.FindOne(ctx, bson.M{"email": email}).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user by email: %w", err)
	}
	return &u, nil
}

func (r *userRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"email": email}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check email existence: %w", err)
	}
	return count > 0, nil
}

func (r *userRepository) GetAll(ctx context.Context) ([]model.User, error) {
	cur, err := r.col.Find(ctx, bson.M{})
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

// SearchByName matches name and surname with case-insensitive partial regexes.
func (r *userRepository) SearchByName(ctx context.Context, name, surname string) ([]model.User, error) {
	filter := bson.M{
		"name":    bson.M{"$regex": name, "$options": "i"},
		"surname": bson.M{"$regex": surname, "$options": "i"},
	}

	cur, err := r.col.Find(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("failed to search users: %w", err)
	}
	defer cur.Close(ctx)

	var users []model.User
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode users: %w", err)
	}
	return users, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *model.UpdateProfileRequest) (*model.User, error) {
	set := bson.M{}
	if req.Name != nil {
		set["name"] = *req.Name
	}
	if req.Surname != nil {
		set["surname"] = *req.Surname
	}
	if req.Username != nil {
		set["username"] = *req.Username
	}
	if req.Bio != nil {
		set["bio"] = *req.Bio
	}
	if req.Gender != nil {
		set["gender"] = *req.Gender
	}
	if len(set) == 0 {
		return nil, model.ErrNoProfileFields
	}
	set["updated_at"] = time.Now().UTC()

	return r.findOneAndSet(ctx, id, set)
}

func (r *userRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHashed string) error {
	res, err := r.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{
		"password_hashed": passwordHashed,
		"updated_at":      time.Now().UTC(),
	}})
	if err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"profile_picture": url, "updated_at": time.Now().UTC()})
}

func (r *userRepository) SetCoverPicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error) {
	return r.findOneAndSet(ctx, id, bson.M{"cover_picture": url, "updated_at": time.Now().UTC()})
}

func (r *userRepository) findOneAndSet(ctx context.Context, id primitive.ObjectID, set bson.M) (*model.User, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u model.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": id}, bson.M{"$set": set}, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		// Of the settable fields only username carries a unique index, so a
		// duplicate-key failure here means the requested username is taken.
		if mongo.IsDuplicateKeyError(err) {
			return nil, model.ErrUsernameExists
		}
		return nil, fmt.Errorf("failed to update user: %w", err)
	}
	return &u, nil
}

// AddFollowing uses $addToSet, so following an already-followed user is a no-op.
func (r *userRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, userID, bson.M{"$addToSet": bson.M{"following": targetID}})
	if err != nil {
		return fmt.Errorf("failed to add following: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// RemoveFollowing uses $pull; unfollowing a non-followed target is a no-op.
func (r *userRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	res, err := r.col.UpdateByID(ctx, userID, bson.M{"$pull": bson.M{"following": targetID}})
	if err != nil {
		return fmt.Errorf("failed to remove following: %w", err)
	}
	if res.MatchedCount == 0 {
		return model.ErrUserNotFound
	}
	return nil
}

// GetFollowers derives the followers of targetID by querying which users list
// it in their following set. The stored followers array is not consulted; the
// following sets are the single source of truth for the graph.
func (r *userRepository) GetFollowers(ctx context.Context, targetID primitive.ObjectID) ([]model.UserSummary, error) {
	opts := options.Find().SetProjection(summaryProjection)
	cur, err := r.col.Find(ctx, bson.M{"following": targetID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get followers: %w", err)
	}
	defer cur.Close(ctx)

	var followers []model.UserSummary
	if err := cur.All(ctx, &followers); err != nil {
		return nil, fmt.Errorf("failed to decode followers: %w", err)
	}
	return followers, nil
}

func (r *userRepository) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]model.UserSummary, error) {
	user, err := r.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(user.Following) == 0 {
		return []model.UserSummary{}, nil
	}

	opts := options.Find().SetProjection(summaryProjection)
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": user.Following}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get following: %w", err)
	}
	defer cur.Close(ctx)

	var following []model.UserSummary
	if err := cur.All(ctx, &following); err != nil {
		return nil, fmt.Errorf("failed to decode following: %w", err)
	}
	return following, nil
}

func (r *userRepository) AddFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.updateFavorites(ctx, userID, bson.M{"$addToSet": bson.M{"favorites": postID}})
}

func (r *userRepository) RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	return r.updateFavorites(ctx, userID, bson.M{"$pull": bson.M{"favorites": postID}})
}

func (r *userRepository) updateFavorites(ctx context.Context, userID primitive.ObjectID, update bson.M) ([]primitive.ObjectID, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var u model.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"_id": userID}, update, opts).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrUserNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update favorites: %w", err)
	}
	return u.Favorites, nil
}

func (r *userRepository) GetSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error) {
	summaries := make(map[primitive.ObjectID]model.UserSummary, len(ids))
	if len(ids) == 0 {
		return summaries, nil
	}

	opts := options.Find().SetProjection(summaryProjection)
	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to get user summaries: %w", err)
	}
	defer cur.Close(ctx)

	var users []model.UserSummary
	if err := cur.All(ctx, &users); err != nil {
		return nil, fmt.Errorf("failed to decode user summaries: %w", err)
	}
	for _, u := range users {
		summaries[u.ID] = u
	}
	return summaries, nil
}
