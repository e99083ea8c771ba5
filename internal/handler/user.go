package handler

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/httputil"
	"vibeshare/internal/model"
	"vibeshare/internal/service"
	"vibeshare/internal/transport/http/middleware"
)

// UserHandler serves profile, follow-graph and favorites endpoints.
type UserHandler struct {
	userService  *service.UserService
	mediaService *service.MediaService
}

func NewUserHandler(userService *service.UserService, mediaService *service.MediaService) *UserHandler {
	return &UserHandler{
		userService:  userService,
		mediaService: mediaService,
	}
}

// Search finds users by exact name and surname match.
// GET /user/search?name=...&surname=...
func (h *UserHandler) Search(w http.ResponseWriter, r *http.Request) {
	name := strings.TrimSpace(r.URL.Query().Get("name"))
	surname := strings.TrimSpace(r.URL.Query().Get("surname"))
	if name == "" || surname == "" {
		httputil.WriteBadRequest(w, "Name and surname are required")
		return
	}

	users, err := h.userService.Search(r.Context(), name, surname)
	if err != nil {
		log.Printf("[UserHandler] Search: %v", err)
		httputil.WriteInternalError(w, "Failed to search users")
		return
	}
	if len(users) == 0 {
		httputil.WriteNotFound(w, "No users found")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, users)
}

// GetAll lists every user.
// GET /user/all
func (h *UserHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.GetAll(r.Context())
	if err != nil {
		log.Printf("[UserHandler] GetAll: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch users")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, users)
}

// GetByID returns a single user's public document.
// GET /user/{id}
func (h *UserHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	user, err := h.userService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] GetByID: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch user")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, user)
}

// UpdateProfile patches the caller's profile fields. Only fields present in
// the body are written.
// PUT /user/profile
func (h *UserHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdateProfileRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	user, err := h.userService.UpdateProfile(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrNoProfileFields):
			httputil.WriteBadRequest(w, "No profile fields to update")
		case errors.Is(err, model.ErrUsernameExists):
			httputil.WriteConflict(w, "Username already taken")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] UpdateProfile: %v", err)
			httputil.WriteInternalError(w, "Failed to update profile")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, userUpdateResponse{Message: "Profile updated successfully", User: user})
}

// UploadProfilePicture replaces the caller's profile picture.
// POST /user/profile-picture
func (h *UserHandler) UploadProfilePicture(w http.ResponseWriter, r *http.Request) {
	h.uploadPicture(w, r, "profilePicture", h.mediaService.UploadProfilePicture, h.userService.SetProfilePicture, "Profile picture updated successfully")
}

// UploadCoverPicture replaces the caller's cover picture.
// POST /user/cover-picture
func (h *UserHandler) UploadCoverPicture(w http.ResponseWriter, r *http.Request) {
	h.uploadPicture(w, r, "coverPicture", h.mediaService.UploadCoverPicture, h.userService.SetCoverPicture, "Cover picture updated successfully")
}

// Follow adds the target to the caller's following set.
// POST /user/{id}/follow
func (h *UserHandler) Follow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.userService.Follow, "User followed successfully")
}

// Unfollow removes the target from the caller's following set.
// POST /user/{id}/unfollow
func (h *UserHandler) Unfollow(w http.ResponseWriter, r *http.Request) {
	h.changeFollow(w, r, h.userService.Unfollow, "User unfollowed successfully")
}

// GetFollowers lists the users following the target, derived by reverse
// lookup so it never drifts from the following sets.
// GET /user/{id}/followers
func (h *UserHandler) GetFollowers(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	if _, err := h.userService.GetByID(r.Context(), id); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] GetFollowers: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch followers")
		return
	}

	followers, err := h.userService.GetFollowers(r.Context(), id)
	if err != nil {
		log.Printf("[UserHandler] GetFollowers: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch followers")
		return
	}
	if len(followers) == 0 {
		httputil.WriteNotFound(w, "This user has no followers yet")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, followersResponse{Followers: followers})
}

// GetFollowing lists the users the target follows.
// GET /user/{id}/following
func (h *UserHandler) GetFollowing(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	following, err := h.userService.GetFollowing(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] GetFollowing: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch following")
		return
	}
	if len(following) == 0 {
		httputil.WriteNotFound(w, "This user does not follow anyone yet")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, followingResponse{Following: following})
}

// AddFavorite adds a post to the caller's favorites. Idempotent.
// POST /user/favorites/{postId}
func (h *UserHandler) AddFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseObjectIDParam(w, r, "postId")
	if !ok {
		return
	}

	favorites, err := h.userService.AddFavorite(r.Context(), userID, postID)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] AddFavorite: %v", err)
			httputil.WriteInternalError(w, "Failed to add favorite")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, favoritesMutationResponse{Message: "Post added to favorites", Favorites: favorites})
}

// RemoveFavorite removes a post from the caller's favorites. Removing a post
// that is not favorited is a no-op.
// DELETE /user/favorites/{postId}
func (h *UserHandler) RemoveFavorite(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseObjectIDParam(w, r, "postId")
	if !ok {
		return
	}

	favorites, err := h.userService.RemoveFavorite(r.Context(), userID, postID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] RemoveFavorite: %v", err)
		httputil.WriteInternalError(w, "Failed to remove favorite")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, favoritesMutationResponse{Message: "Post removed from favorites", Favorites: favorites})
}

// GetFavorites returns the target user's favorite posts, authors populated.
// GET /user/favorites/{userId}
func (h *UserHandler) GetFavorites(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseObjectIDParam(w, r, "userId")
	if !ok {
		return
	}

	posts, err := h.userService.GetFavoritePosts(r.Context(), userID)
	if err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] GetFavorites: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch favorites")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, favoritePostsResponse{Favorites: posts})
}

func (h *UserHandler) uploadPicture(
	w http.ResponseWriter,
	r *http.Request,
	field string,
	upload func(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*model.UploadResult, error),
	persist func(ctx context.Context, userID primitive.ObjectID, url string) (*model.User, error),
	successMessage string,
) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	maxFormSize := int64(model.MaxPictureSizeBytes) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		return
	}

	file, header, err := r.FormFile(field)
	if err != nil {
		httputil.WriteBadRequest(w, "Image file is required")
		return
	}
	defer file.Close()

	result, err := upload(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Image exceeds 5MB limit")
		case errors.Is(err, model.ErrUnsupportedFile):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
		default:
			log.Printf("[UserHandler] Upload %s: %v", field, err)
			httputil.WriteInternalError(w, "Failed to upload image")
		}
		return
	}

	user, err := persist(r.Context(), userID, result.URL)
	if err != nil {
		if cleanupErr := h.mediaService.DeleteObject(r.Context(), result.Key); cleanupErr != nil {
			log.Printf("[UserHandler] Failed to clean up orphaned upload %s: %v", result.Key, cleanupErr)
		}
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[UserHandler] Persist %s: %v", field, err)
		httputil.WriteInternalError(w, "Failed to update picture")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, userUpdateResponse{Message: successMessage, User: user})
}

func (h *UserHandler) changeFollow(
	w http.ResponseWriter,
	r *http.Request,
	change func(ctx context.Context, actorID, targetID primitive.ObjectID) error,
	successMessage string,
) {
	actorID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	targetID, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := change(r.Context(), actorID, targetID); err != nil {
		switch {
		case errors.Is(err, model.ErrCannotFollowSelf):
			httputil.WriteBadRequest(w, "You cannot follow yourself")
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		default:
			log.Printf("[UserHandler] Follow change: %v", err)
			httputil.WriteInternalError(w, "Failed to update follow state")
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, successMessage)
}

// parseObjectIDParam reads a hex ObjectID from the route, writing a 400 on
// malformed input.
func parseObjectIDParam(w http.ResponseWriter, r *http.Request, name string) (primitive.ObjectID, bool) {
	raw := chi.URLParam(r, name)
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

// parseObjectIDValue validates a hex ObjectID taken from a request body.
func parseObjectIDValue(w http.ResponseWriter, raw string) (primitive.ObjectID, bool) {
	id, err := primitive.ObjectIDFromHex(raw)
	if err != nil {
		httputil.WriteBadRequest(w, "Invalid post ID")
		return primitive.NilObjectID, false
	}
	return id, true
}

type userUpdateResponse struct {
	Message string      `json:"message"`
	User    *model.User `json:"user"`
}

type followersResponse struct {
	Followers []model.UserSummary `json:"followers"`
}

type followingResponse struct {
	Following []model.UserSummary `json:"following"`
}

type favoritesMutationResponse struct {
	Message   string               `json:"message"`
	Favorites []primitive.ObjectID `json:"favorites"`
}

type favoritePostsResponse struct {
	Favorites []model.Post `json:"favorites"`
}
