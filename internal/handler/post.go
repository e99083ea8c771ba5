package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"vibeshare/internal/httputil"
	"vibeshare/internal/model"
	"vibeshare/internal/service"
	"vibeshare/internal/transport/http/middleware"
)

// PostHandler serves post, like and comment endpoints.
type PostHandler struct {
	postService  *service.PostService
	mediaService *service.MediaService
}

func NewPostHandler(postService *service.PostService, mediaService *service.MediaService) *PostHandler {
	return &PostHandler{
		postService:  postService,
		mediaService: mediaService,
	}
}

// UploadMedia accepts a single image or video and returns the stored URL and
// detected type. Clients call this once per media item before creating the
// post.
// POST /api/posts/upload
func (h *PostHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxPostMediaSize) + 1024*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Media exceeds 50MB limit")
		return
	}

	file, header, err := r.FormFile("media")
	if err != nil {
		httputil.WriteBadRequest(w, "Media file is required")
		return
	}
	defer file.Close()

	result, err := h.mediaService.UploadPostMedia(r.Context(), file, header)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrFileTooLarge):
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Media exceeds 50MB limit")
		case errors.Is(err, model.ErrUnsupportedFile):
			httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported media type")
		default:
			log.Printf("[PostHandler] Upload media: %v", err)
			httputil.WriteInternalError(w, "Failed to upload media")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusOK, mediaUploadResponse{URL: result.URL, Key: result.Key, Type: result.Type})
}

// Create persists a post with previously uploaded media.
// POST /api/posts
func (h *PostHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.CreatePostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	post, err := h.postService.Create(r.Context(), userID, &req)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrTitleRequired):
			httputil.WriteBadRequest(w, "Title is required")
		case errors.Is(err, model.ErrTitleTooLong):
			httputil.WriteBadRequest(w, "Title exceeds maximum length")
		case errors.Is(err, model.ErrTooManyMedia):
			httputil.WriteBadRequest(w, "A post can hold at most 10 media items")
		case errors.Is(err, model.ErrInvalidMediaType):
			httputil.WriteBadRequest(w, "Media type must be image or video")
		default:
			log.Printf("[PostHandler] Create: %v", err)
			httputil.WriteInternalError(w, "Failed to create post")
		}
		return
	}

	httputil.WriteJSON(w, http.StatusCreated, postMutationResponse{Message: "Post created", Post: post})
}

// GetAll returns the global feed, newest first.
// GET /api/posts
func (h *PostHandler) GetAll(w http.ResponseWriter, r *http.Request) {
	posts, err := h.postService.GetAll(r.Context())
	if err != nil {
		log.Printf("[PostHandler] GetAll: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

// GetOwn returns the caller's posts, newest first.
// GET /api/posts/user
func (h *PostHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	posts, err := h.postService.GetByUserID(r.Context(), userID)
	if err != nil {
		log.Printf("[PostHandler] GetOwn: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch posts")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, posts)
}

// GetByID returns a single post with its author and comment authors attached.
// GET /api/posts/{id}
func (h *PostHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	post, err := h.postService.GetByID(r.Context(), id)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[PostHandler] GetByID: %v", err)
		httputil.WriteInternalError(w, "Failed to fetch post")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, post)
}

// Delete removes a post. Only the owner may delete it.
// DELETE /api/posts/{id}
func (h *PostHandler) Delete(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	id, ok := parseObjectIDParam(w, r, "id")
	if !ok {
		return
	}

	if err := h.postService.Delete(r.Context(), id, userID); err != nil {
		switch {
		case errors.Is(err, model.ErrPostNotFound):
			httputil.WriteNotFound(w, "Post not found")
		case errors.Is(err, model.ErrNotPostOwner):
			httputil.WriteForbidden(w, "You can only delete your own posts")
		default:
			log.Printf("[PostHandler] Delete: %v", err)
			httputil.WriteInternalError(w, "Failed to delete post")
		}
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Post deleted")
}

// ToggleLike flips the caller's like on the post and reports the new state.
// POST /api/posts/like
func (h *PostHandler) ToggleLike(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.ToggleLikeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	postID, ok := parseObjectIDValue(w, req.PostID)
	if !ok {
		return
	}

	result, err := h.postService.ToggleLike(r.Context(), postID, userID)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[PostHandler] ToggleLike: %v", err)
		httputil.WriteInternalError(w, "Failed to toggle like")
		return
	}

	message := "Like removed"
	if result.Liked {
		message = "Like added"
	}
	httputil.WriteJSON(w, http.StatusOK, toggleLikeResponse{
		Message:   message,
		Liked:     result.Liked,
		LikeCount: result.LikeCount,
	})
}

// AddComment appends a comment to the post and returns the updated post.
// POST /api/posts/{postId}/comment
func (h *PostHandler) AddComment(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}
	postID, ok := parseObjectIDParam(w, r, "postId")
	if !ok {
		return
	}

	var req model.AddCommentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Text == "" {
		httputil.WriteBadRequest(w, "Comment text is required")
		return
	}

	post, err := h.postService.AddComment(r.Context(), postID, userID, req.Text)
	if err != nil {
		if errors.Is(err, model.ErrPostNotFound) {
			httputil.WriteNotFound(w, "Post not found")
			return
		}
		log.Printf("[PostHandler] AddComment: %v", err)
		httputil.WriteInternalError(w, "Failed to add comment")
		return
	}

	httputil.WriteJSON(w, http.StatusOK, postMutationResponse{Message: "Comment added", Post: post})
}

type mediaUploadResponse struct {
	URL  string `json:"url"`
	Key  string `json:"key"`
	Type string `json:"type"`
}

type postMutationResponse struct {
	Message string      `json:"message"`
	Post    *model.Post `json:"post"`
}

type toggleLikeResponse struct {
	Message   string `json:"message"`
	Liked     bool   `json:"liked"`
	LikeCount int    `json:"likeCount"`
}
