package model

import "errors"

const (
	MaxPictureSizeBytes = 5 * 1024 * 1024 // 5MB limit for profile/cover pictures
	ProfilePictureSize  = 400
	CoverPictureWidth   = 1200
	CoverPictureHeight  = 400
	ProfileFolder       = "user_profiles"
	PictureExt          = ".jpg"
	PictureCacheControl = "public, max-age=31536000" // 1 year
)

// Supported image content types for upload validation
const (
	ContentTypeJPEG = "image/jpeg"
	ContentTypePNG  = "image/png"
	ContentTypeGIF  = "image/gif"
	ContentTypeWebP = "image/webp"
)

var allowedImageTypes = map[string]struct{}{
	ContentTypeJPEG: {},
	ContentTypePNG:  {},
	ContentTypeGIF:  {},
	ContentTypeWebP: {},
}

// Error codes for HTTP responses
const (
	CodeFileTooLarge     = "FILE_TOO_LARGE"
	CodeInvalidMediaType = "INVALID_MEDIA_TYPE"
)

// Domain errors for media operations
var (
	ErrFileTooLarge    = errors.New("file too large")
	ErrUnsupportedFile = errors.New("unsupported file type")
)

// UploadResult represents the uploaded object location.
// URL is the public-facing URL (using the R2 public endpoint), Key is the
// object key inside the bucket, Type reports whether the upload was detected
// as an image or a video.
type UploadResult struct {
	URL  string `json:"url"`
	Key  string `json:"key,omitempty"`
	Type string `json:"type"`
}

// IsAllowedImageType reports if the provided content type is a supported image
func IsAllowedImageType(contentType string) bool {
	_, ok := allowedImageTypes[contentType]
	return ok
}

// IsVideoContentType reports if the provided content type is a video
func IsVideoContentType(contentType string) bool {
	return len(contentType) > 6 && contentType[:6] == "video/"
}
