package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Media types accepted in a post.
const (
	MediaTypeImage = "image"
	MediaTypeVideo = "video"
)

// Media is a single item in a post's ordered media carousel.
// Key is the object-store key, kept for later deletes; it is optional because
// externally hosted URLs have no key.
type Media struct {
	Type string `bson:"type" json:"type"`
	URL  string `bson:"url" json:"url"`
	Key  string `bson:"key,omitempty" json:"key,omitempty"`
}

// Comment is embedded in a post. Append-only: there is no edit or delete path.
type Comment struct {
	UserID primitive.ObjectID `bson:"user" json:"user"`
	Text   string             `bson:"text" json:"text"`
	Date   time.Time          `bson:"date" json:"date"`

	// Joined field, populated at the service layer
	Author *UserSummary `bson:"-" json:"author,omitempty"`
}

// Post represents a post document.
//
// Likes is a user-ID set and LikeCount its denormalized size. The two are only
// ever written together in a single conditional update, so a reader can never
// observe a count that disagrees with the set.
type Post struct {
	ID        primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	UserID    primitive.ObjectID   `bson:"user" json:"user"`
	Title     string               `bson:"title" json:"title"`
	Date      time.Time            `bson:"date" json:"date"`
	Location  string               `bson:"location" json:"location"`
	Media     []Media              `bson:"media" json:"media"`
	Comments  []Comment            `bson:"comments" json:"comments"`
	Likes     []primitive.ObjectID `bson:"likes" json:"likes"`
	LikeCount int                  `bson:"like_count" json:"likeCount"`

	// Joined field, populated at the service layer
	Author *UserSummary `bson:"-" json:"author,omitempty"`
}

// CreatePostRequest is the request body for creating a post.
// Media URLs must have been uploaded beforehand via the upload endpoint.
type CreatePostRequest struct {
	Title    string  `json:"title"`
	Location string  `json:"location"`
	Media    []Media `json:"media"`
}

// ToggleLikeRequest identifies the post whose like is toggled.
type ToggleLikeRequest struct {
	PostID string `json:"postId"`
}

// AddCommentRequest is the request body for appending a comment.
type AddCommentRequest struct {
	PostID string `json:"postId"`
	Text   string `json:"text"`
}

// ToggleLikeResult reports the post's state after a like toggle.
type ToggleLikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"likeCount"`
}

// Post media constants
const (
	MaxPostMediaCount = 10
	MaxTitleLength    = 2200
	PostMediaFolder   = "posts"
	MaxPostMediaSize  = 50 * 1024 * 1024 // 50MB per media, videos included
)

// Post errors
var (
	ErrPostNotFound     = errors.New("post not found")
	ErrNotPostOwner     = errors.New("not the owner of this post")
	ErrTitleRequired    = errors.New("title is required")
	ErrTooManyMedia     = errors.New("too many media items")
	ErrTitleTooLong     = errors.New("title too long")
	ErrInvalidMediaType = errors.New("invalid media type")
)
