package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"vibeshare/internal/httputil"
	"vibeshare/internal/model"
	"vibeshare/internal/service"
	"vibeshare/internal/transport/http/middleware"
)

// AuthHandler groups auth-related HTTP endpoints and their dependencies.
type AuthHandler struct {
	userService         *service.UserService
	tokenService        *service.TokenService
	mediaService        *service.MediaService
	verificationService *service.VerificationService
	googleService       *service.GoogleAuthService
}

// NewAuthHandler wires dependencies for authentication endpoints.
func NewAuthHandler(
	userService *service.UserService,
	tokenService *service.TokenService,
	mediaService *service.MediaService,
	verificationService *service.VerificationService,
	googleService *service.GoogleAuthService,
) *AuthHandler {
	return &AuthHandler{
		userService:         userService,
		tokenService:        tokenService,
		mediaService:        mediaService,
		verificationService: verificationService,
		googleService:       googleService,
	}
}

// Register handles multipart sign-up with an optional profile picture.
// POST /auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	maxFormSize := int64(model.MaxPictureSizeBytes) + 1024*1024 // allow form overhead
	r.Body = http.MaxBytesReader(w, r.Body, maxFormSize)
	if err := r.ParseMultipartForm(maxFormSize); err != nil {
		if errors.Is(err, http.ErrNotMultipart) {
			httputil.WriteBadRequest(w, "Content-Type must be multipart/form-data")
			return
		}
		if strings.Contains(err.Error(), "request body too large") {
			httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Profile picture exceeds 5MB limit")
			return
		}
		httputil.WriteBadRequest(w, "Invalid form data")
		return
	}

	userData := r.FormValue("userData")
	if userData == "" {
		httputil.WriteBadRequest(w, "User data is required")
		return
	}

	var req model.RegisterRequest
	if err := json.Unmarshal([]byte(userData), &req); err != nil {
		httputil.WriteBadRequest(w, "Invalid user data")
		return
	}
	if strings.TrimSpace(req.Email) == "" || strings.TrimSpace(req.Username) == "" || req.Password == "" {
		httputil.WriteBadRequest(w, "Email, username and password are required")
		return
	}

	// Upload the picture before touching the database: a store failure aborts
	// registration with no user record written.
	var pictureURL, pictureKey string
	file, header, err := r.FormFile("profilePicture")
	if err == nil {
		defer file.Close()
		upload, uploadErr := h.mediaService.UploadProfilePicture(r.Context(), file, header)
		if uploadErr != nil {
			switch {
			case errors.Is(uploadErr, model.ErrFileTooLarge):
				httputil.WriteBadRequestWithCode(w, model.CodeFileTooLarge, "Profile picture exceeds 5MB limit")
			case errors.Is(uploadErr, model.ErrUnsupportedFile):
				httputil.WriteBadRequestWithCode(w, model.CodeInvalidMediaType, "Unsupported image type. Allowed: jpeg, png, gif, webp")
			default:
				httputil.WriteInternalError(w, "Failed to upload profile picture")
			}
			return
		}
		pictureURL = upload.URL
		pictureKey = upload.Key
	} else if err != http.ErrMissingFile {
		httputil.WriteBadRequest(w, "Invalid profile picture upload")
		return
	}

	_, err = h.userService.Register(r.Context(), &req, pictureURL)
	if err != nil {
		// Don't orphan the uploaded picture when the insert fails.
		if pictureKey != "" {
			if cleanupErr := h.mediaService.DeleteObject(r.Context(), pictureKey); cleanupErr != nil {
				log.Printf("[AuthHandler] Failed to clean up orphaned upload %s: %v", pictureKey, cleanupErr)
			}
		}
		if errors.Is(err, model.ErrEmailExists) {
			httputil.WriteConflict(w, "User already exists")
			return
		}
		httputil.WriteInternalError(w, "Failed to register user")
		return
	}

	httputil.WriteMessage(w, http.StatusCreated, "User created")
}

// Login handles password login with an email or username.
// POST /auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req model.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}

	identifier := req.Identifier
	if identifier == "" {
		identifier = req.Email
	}
	if identifier == "" {
		identifier = req.Username
	}
	if identifier == "" {
		httputil.WriteBadRequest(w, "Email or username is required")
		return
	}
	if req.Password == "" {
		httputil.WriteBadRequest(w, "Password is required")
		return
	}

	user, err := h.userService.Login(r.Context(), identifier, req.Password)
	if err != nil {
		if errors.Is(err, model.ErrInvalidCredentials) {
			httputil.WriteUnauthorized(w, "Invalid credentials")
			return
		}
		httputil.WriteInternalError(w, "Failed to login")
		return
	}

	h.writeToken(w, user)
}

// GoogleLogin verifies a Google-issued ID token and signs the user in,
// provisioning an account on first login.
// POST /auth/googlelogin
func (h *AuthHandler) GoogleLogin(w http.ResponseWriter, r *http.Request) {
	var req model.GoogleLoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.Token == "" {
		httputil.WriteBadRequest(w, "Token is required")
		return
	}

	user, err := h.googleService.Login(r.Context(), req.Token)
	if err != nil {
		if errors.Is(err, model.ErrInvalidIDToken) {
			httputil.WriteUnauthorized(w, "Invalid ID token")
			return
		}
		log.Printf("[AuthHandler] Google login: %v", err)
		httputil.WriteInternalError(w, "Failed to login with Google")
		return
	}

	h.writeToken(w, user)
}

// SendCode mails a one-time login code to the resolved user.
// POST /auth/send-code
func (h *AuthHandler) SendCode(w http.ResponseWriter, r *http.Request) {
	var req model.SendCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.EmailOrUsername == "" {
		httputil.WriteBadRequest(w, "Email or username is required")
		return
	}

	if err := h.verificationService.SendCode(r.Context(), req.EmailOrUsername); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[AuthHandler] Send code: %v", err)
		httputil.WriteInternalError(w, "Failed to send verification email")
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Verification email sent")
}

// LoginWithCode exchanges a previously mailed code for a token. Codes are
// single use; a second attempt with the same code fails.
// POST /auth/login-with-code
func (h *AuthHandler) LoginWithCode(w http.ResponseWriter, r *http.Request) {
	var req model.LoginWithCodeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.EmailOrUsername == "" || req.Code == "" {
		httputil.WriteBadRequest(w, "Email or username and code are required")
		return
	}

	user, err := h.verificationService.LoginWithCode(r.Context(), req.EmailOrUsername, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, model.ErrUserNotFound):
			httputil.WriteNotFound(w, "User not found")
		case errors.Is(err, model.ErrInvalidCode):
			httputil.WriteBadRequest(w, "Incorrect verification code")
		default:
			log.Printf("[AuthHandler] Login with code: %v", err)
			httputil.WriteInternalError(w, "Failed to login")
		}
		return
	}

	h.writeToken(w, user)
}

// UpdatePassword overwrites the caller's password. Outstanding tokens remain
// valid until their own expiry.
// POST /auth/update-password
func (h *AuthHandler) UpdatePassword(w http.ResponseWriter, r *http.Request) {
	userID, ok := middleware.GetUserIDFromContext(r.Context())
	if !ok {
		httputil.WriteUnauthorized(w, "Authentication required")
		return
	}

	var req model.UpdatePasswordRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httputil.WriteBadRequest(w, "Invalid request body")
		return
	}
	if req.NewPassword == "" {
		httputil.WriteBadRequest(w, "New password is required")
		return
	}

	if err := h.userService.UpdatePassword(r.Context(), userID, req.NewPassword); err != nil {
		if errors.Is(err, model.ErrUserNotFound) {
			httputil.WriteNotFound(w, "User not found")
			return
		}
		log.Printf("[AuthHandler] Update password: %v", err)
		httputil.WriteInternalError(w, "Failed to update password")
		return
	}

	httputil.WriteMessage(w, http.StatusOK, "Password updated successfully")
}

func (h *AuthHandler) writeToken(w http.ResponseWriter, user *model.User) {
	token, err := h.tokenService.Issue(user.ID)
	if err != nil {
		log.Printf("[AuthHandler] Issue token: %v", err)
		httputil.WriteInternalError(w, "Failed to generate token")
		return
	}
	httputil.WriteJSON(w, http.StatusOK, model.TokenResponse{Token: token})
}
