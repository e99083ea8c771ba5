package service

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/disintegration/imaging"
	"github.com/google/uuid"

	"vibeshare/internal/config"
	domain "vibeshare/internal/model"
)

// MediaService handles media uploads to Cloudflare R2.
type MediaService struct {
	s3Client  *s3.Client
	bucket    string
	publicURL string
}

// NewMediaService constructs an S3-compatible client for Cloudflare R2.
func NewMediaService(ctx context.Context, cfg *config.Config) (*MediaService, error) {
	if cfg.R2AccountID == "" || cfg.R2AccessKeyID == "" || cfg.R2SecretAccessKey == "" || cfg.R2BucketName == "" || cfg.R2PublicURL == "" {
		return nil, fmt.Errorf("missing Cloudflare R2 configuration")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(
		ctx,
		awsconfig.WithRegion("auto"),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.R2AccessKeyID, cfg.R2SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config for R2: %w", err)
	}

	endpoint := fmt.Sprintf("https://%s.r2.cloudflarestorage.com", cfg.R2AccountID)
	s3Client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true
	})

	return &MediaService{
		s3Client:  s3Client,
		bucket:    cfg.R2BucketName,
		publicURL: strings.TrimSuffix(cfg.R2PublicURL, "/"),
	}, nil
}

// UploadProfilePicture enforces size/type, normalizes to a square JPEG, and
// uploads to R2.
func (s *MediaService) UploadProfilePicture(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	return s.uploadPicture(ctx, file, header, domain.ProfilePictureSize, domain.ProfilePictureSize)
}

// UploadCoverPicture is the wide variant used for profile cover images.
func (s *MediaService) UploadCoverPicture(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	return s.uploadPicture(ctx, file, header, domain.CoverPictureWidth, domain.CoverPictureHeight)
}

func (s *MediaService) uploadPicture(ctx context.Context, file multipart.File, header *multipart.FileHeader, width, height int) (*domain.UploadResult, error) {
	data, contentType, err := readUpload(file, header, domain.MaxPictureSizeBytes)
	if err != nil {
		return nil, err
	}
	if !domain.IsAllowedImageType(contentType) {
		return nil, domain.ErrUnsupportedFile
	}

	jpegBytes, err := resizeToJPEG(data, width, height, 85)
	if err != nil {
		return nil, err
	}

	key := fmt.Sprintf("%s/%s%s", domain.ProfileFolder, uuid.NewString(), domain.PictureExt)
	if err := s.putObject(ctx, key, jpegBytes, domain.ContentTypeJPEG, domain.PictureCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &domain.UploadResult{URL: url, Key: key, Type: domain.MediaTypeImage}, nil
}

// UploadPostMedia accepts an image or a video. Images are validated against
// the allowed types; videos are streamed through unchanged. The result
// reports the detected kind so clients can tag the media item.
func (s *MediaService) UploadPostMedia(ctx context.Context, file multipart.File, header *multipart.FileHeader) (*domain.UploadResult, error) {
	data, contentType, err := readUpload(file, header, domain.MaxPostMediaSize)
	if err != nil {
		return nil, err
	}

	var mediaType string
	switch {
	case domain.IsAllowedImageType(contentType):
		mediaType = domain.MediaTypeImage
	case domain.IsVideoContentType(contentType):
		mediaType = domain.MediaTypeVideo
	default:
		return nil, domain.ErrUnsupportedFile
	}

	ext := extensionFor(contentType, header.Filename)
	key := fmt.Sprintf("%s/%s%s", domain.PostMediaFolder, uuid.NewString(), ext)
	if err := s.putObject(ctx, key, data, contentType, domain.PictureCacheControl); err != nil {
		return nil, err
	}

	url := fmt.Sprintf("%s/%s", s.publicURL, key)
	return &domain.UploadResult{URL: url, Key: key, Type: mediaType}, nil
}

// readUpload loads the upload into memory with a size check and resolves the
// content type, sniffing the bytes when the header is silent.
func readUpload(file multipart.File, header *multipart.FileHeader, maxSize int64) ([]byte, string, error) {
	if header.Size > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	limitedReader := io.LimitReader(file, maxSize+1)
	data, err := io.ReadAll(limitedReader)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read upload: %w", err)
	}
	if int64(len(data)) > maxSize {
		return nil, "", domain.ErrFileTooLarge
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" && len(data) > 0 {
		contentType = http.DetectContentType(data[:min(len(data), 512)])
	}
	if idx := strings.Index(contentType, ";"); idx != -1 {
		contentType = strings.TrimSpace(contentType[:idx])
	}

	return data, contentType, nil
}

// resizeToJPEG centers/crops to target size and encodes as JPEG.
func resizeToJPEG(data []byte, width, height, quality int) ([]byte, error) {
	img, err := imaging.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	resized := imaging.Fill(img, width, height, imaging.Center, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, resized, imaging.JPEG, imaging.JPEGQuality(quality)); err != nil {
		return nil, fmt.Errorf("failed to encode jpeg: %w", err)
	}

	return buf.Bytes(), nil
}

// extensionFor picks an object-key extension from the content type, falling
// back to the uploaded filename.
func extensionFor(contentType, filename string) string {
	if exts, err := mime.ExtensionsByType(contentType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	if idx := strings.LastIndex(filename, "."); idx != -1 {
		return filename[idx:]
	}
	return ""
}

// putObject uploads bytes to R2 with metadata.
func (s *MediaService) putObject(ctx context.Context, key string, body []byte, contentType, cacheControl string) error {
	_, err := s.s3Client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:       aws.String(s.bucket),
		Key:          aws.String(key),
		Body:         bytes.NewReader(body),
		ContentType:  aws.String(contentType),
		CacheControl: aws.String(cacheControl),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to r2: %w", err)
	}
	return nil
}

// DeleteObject removes an object by key. Used to clean up an upload when the
// follow-up database write fails, so registration never orphans a file.
func (s *MediaService) DeleteObject(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	_, err := s.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("failed to delete from r2: %w", err)
	}
	return nil
}
