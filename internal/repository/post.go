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

// toggleLikeMaxRetries bounds the retry loop when both conditional updates
// miss because another request changed the document in between.
const toggleLikeMaxRetries = 3

// postRepository implements PostRepository on a MongoDB collection.
type postRepository struct {
	col *mongo.Collection
}

// NewPostRepository creates a new post repository with indexes for the
// newest-first listings.
func NewPostRepository(db *mongo.Database) PostRepository {
	col := db.Collection("posts")
	_, _ = col.Indexes().CreateMany(context.Background(), []mongo.IndexModel{
		{Keys: bson.D{{Key: "date", Value: -1}}},
		{Keys: bson.D{{Key: "user", Value: 1}, {Key: "date", Value: -1}}},
	})
	return &postRepository{col: col}
}

func (r *postRepository) Create(ctx context.Context, p *model.Post) error {
	if p.Date.IsZero() {
		p.Date = time.Now().UTC()
	}
	if p.Media == nil {
		p.Media = []model.Media{}
	}
	p.Comments = []model.Comment{}
	p.Likes = []primitive.ObjectID{}
	p.LikeCount = 0

	res, err := r.col.InsertOne(ctx, p)
	if err != nil {
		return fmt.Errorf("failed to insert post: %w", err)
	}
	p.ID = res.InsertedID.(primitive.ObjectID)
	return nil
}

func (r *postRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	var p model.Post
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get post by id: %w", err)
	}
	return &p, nil
}

func (r *postRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Post, error) {
	if len(ids) == 0 {
		return []model.Post{}, nil
	}

	cur, err := r.col.Find(ctx, bson.M{"_id": bson.M{"$in": ids}})
	if err != nil {
		return nil, fmt.Errorf("failed to get posts by ids: %w", err)
	}
	defer cur.Close(ctx)

	var posts []model.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) GetAll(ctx context.Context) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []model.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"user": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list user posts: %w", err)
	}
	defer cur.Close(ctx)

	var posts []model.Post
	if err := cur.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *postRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post: %w", err)
	}
	if res.DeletedCount == 0 {
		return model.ErrPostNotFound
	}
	return nil
}

func (r *postRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	count, err := r.col.CountDocuments(ctx, bson.M{"_id": id}, options.Count().SetLimit(1))
	if err != nil {
		return false, fmt.Errorf("failed to check post existence: %w", err)
	}
	return count > 0, nil
}

// ToggleLike serializes per-post like updates through filter-conditioned
// single-document writes. The filter asserts the current membership of userID
// in the likes set, and the update changes the set and the counter together:
//
//	{_id, likes: userID}        -> $pull likes  + $inc like_count -1
//	{_id, likes: {$ne: userID}} -> $addToSet    + $inc like_count +1
//
// Because the membership check and the write commit atomically, two concurrent
// toggles by the same user cannot both match the $ne filter, so the counter
// can never double-increment. When both filters miss (the document moved
// between our two attempts) we retry a bounded number of times.
func (r *postRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.ToggleLikeResult, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	for attempt := 0; attempt < toggleLikeMaxRetries; attempt++ {
		// Already liked: remove.
		var p model.Post
		err := r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": userID},
			bson.M{"$pull": bson.M{"likes": userID}, "$inc": bson.M{"like_count": -1}},
			opts,
		).Decode(&p)
		if err == nil {
			return &model.ToggleLikeResult{Liked: false, LikeCount: p.LikeCount}, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to remove like: %w", err)
		}

		// Not liked yet: add.
		err = r.col.FindOneAndUpdate(ctx,
			bson.M{"_id": postID, "likes": bson.M{"$ne": userID}},
			bson.M{"$addToSet": bson.M{"likes": userID}, "$inc": bson.M{"like_count": 1}},
			opts,
		).Decode(&p)
		if err == nil {
			return &model.ToggleLikeResult{Liked: true, LikeCount: p.LikeCount}, nil
		}
		if err != mongo.ErrNoDocuments {
			return nil, fmt.Errorf("failed to add like: %w", err)
		}

		// Both filters missed: either the post is gone, or a concurrent toggle
		// flipped the membership between the two updates. Distinguish and retry.
		exists, err := r.Exists(ctx, postID)
		if err != nil {
			return nil, err
		}
		if !exists {
			return nil, model.ErrPostNotFound
		}
	}

	return nil, fmt.Errorf("toggle like did not converge for post %s", postID.Hex())
}

func (r *postRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment model.Comment) (*model.Post, error) {
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var p model.Post
	err := r.col.FindOneAndUpdate(ctx,
		bson.M{"_id": postID},
		bson.M{"$push": bson.M{"comments": comment}},
		opts,
	).Decode(&p)
	if err == mongo.ErrNoDocuments {
		return nil, model.ErrPostNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return &p, nil
}
