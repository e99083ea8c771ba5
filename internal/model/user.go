package model

import (
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Gender values accepted at registration and profile update.
const (
	GenderMale   = "male"
	GenderFemale = "female"
	GenderOther  = "other"
)

// User represents a user document.
//
// Followers, Following and Favorites are ID sets: writes go through $addToSet
// and $pull so repeated calls never produce duplicates. The followers listing
// is derived by a reverse lookup on other users' following sets, not from the
// stored Followers array, which keeps a single source of truth for the graph.
type User struct {
	ID             primitive.ObjectID   `bson:"_id,omitempty" json:"id"`
	Email          string               `bson:"email" json:"email"`
	Name           string               `bson:"name" json:"name"`
	Surname        string               `bson:"surname" json:"surname"`
	Username       string               `bson:"username" json:"username"`
	PasswordHashed string               `bson:"password_hashed" json:"-"` // "-" hides from JSON output
	Gender         string               `bson:"gender" json:"gender"`
	Bio            string               `bson:"bio,omitempty" json:"bio,omitempty"`
	ProfilePicture string               `bson:"profile_picture,omitempty" json:"profilePicture,omitempty"`
	CoverPicture   string               `bson:"cover_picture,omitempty" json:"coverPicture,omitempty"`
	Followers      []primitive.ObjectID `bson:"followers" json:"followers"`
	Following      []primitive.ObjectID `bson:"following" json:"following"`
	Favorites      []primitive.ObjectID `bson:"favorites" json:"favorites"`
	CreatedAt      time.Time            `bson:"created_at" json:"created_at"`
	UpdatedAt      time.Time            `bson:"updated_at" json:"updated_at"`
}

// UserSummary is the lightweight projection used in listings and joined fields.
type UserSummary struct {
	ID       primitive.ObjectID `bson:"_id" json:"id"`
	Name     string             `bson:"name" json:"name"`
	Username string             `bson:"username" json:"username"`
}

// RegisterRequest is the decoded userData JSON blob from the multipart form.
type RegisterRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name"`
	Surname  string `json:"surname"`
	Username string `json:"username"`
	Password string `json:"password"`
	Gender   string `json:"gender"`
}

// LoginRequest accepts either a single identifier or the legacy separate
// email/username fields; the identifier may match either unique field.
type LoginRequest struct {
	Identifier string `json:"identifier"`
	Email      string `json:"email"`
	Username   string `json:"username"`
	Password   string `json:"password"`
}

// UpdateProfileRequest carries the mutable text fields of a profile.
// Only non-nil fields are written.
type UpdateProfileRequest struct {
	Name     *string `json:"name"`
	Surname  *string `json:"surname"`
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Gender   *string `json:"gender"`
}

// SendCodeRequest starts the one-time-code login flow.
type SendCodeRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
}

// LoginWithCodeRequest completes the one-time-code login flow.
type LoginWithCodeRequest struct {
	EmailOrUsername string `json:"emailOrUsername"`
	Code            string `json:"code"`
}

// GoogleLoginRequest carries the Google-issued ID token.
type GoogleLoginRequest struct {
	Token string `json:"token"`
}

// UpdatePasswordRequest overwrites the caller's password.
type UpdatePasswordRequest struct {
	NewPassword string `json:"newPassword"`
}

// TokenResponse is returned by every successful login path.
type TokenResponse struct {
	Token string `json:"token"`
}

var (
	// ErrUserNotFound is returned when a user cannot be found
	ErrUserNotFound = errors.New("user not found")

	// ErrEmailExists is returned when registering with an email already in use
	ErrEmailExists = errors.New("user already exists")

	// ErrUsernameExists is returned when a profile update targets a username
	// already held by another user
	ErrUsernameExists = errors.New("username already taken")

	// ErrInvalidCredentials is returned when login credentials are incorrect.
	// Unknown identifier and wrong password collapse into this one error so the
	// response does not reveal which field was wrong.
	ErrInvalidCredentials = errors.New("invalid credentials")

	// ErrCannotFollowSelf is returned when a user targets themselves in a
	// follow or unfollow operation
	ErrCannotFollowSelf = errors.New("cannot follow yourself")

	// ErrInvalidCode is returned when a one-time login code is wrong, expired
	// or already consumed
	ErrInvalidCode = errors.New("invalid verification code")

	// ErrInvalidIDToken is returned when a Google ID token fails verification
	ErrInvalidIDToken = errors.New("invalid id token")

	// ErrNoProfileFields is returned when a profile update names no allowed field
	ErrNoProfileFields = errors.New("no valid profile fields to update")
)
