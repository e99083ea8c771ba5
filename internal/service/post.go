package service

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/model"
	"vibeshare/internal/repository"
)

// PostService handles business logic for posts, likes and comments.
type PostService struct {
	repo     repository.PostRepository
	userRepo repository.UserRepository
}

func NewPostService(repo repository.PostRepository, userRepo repository.UserRepository) *PostService {
	return &PostService{
		repo:     repo,
		userRepo: userRepo,
	}
}

// Create persists a post. Media must already be uploaded; only URLs and types
// arrive here.
func (s *PostService) Create(ctx context.Context, userID primitive.ObjectID, req *model.CreatePostRequest) (*model.Post, error) {
	if strings.TrimSpace(req.Title) == "" {
		return nil, model.ErrTitleRequired
	}
	if len(req.Title) > model.MaxTitleLength {
		return nil, model.ErrTitleTooLong
	}
	if len(req.Media) > model.MaxPostMediaCount {
		return nil, model.ErrTooManyMedia
	}
	for _, m := range req.Media {
		if m.Type != model.MediaTypeImage && m.Type != model.MediaTypeVideo {
			return nil, model.ErrInvalidMediaType
		}
	}

	post := &model.Post{
		UserID:   userID,
		Title:    req.Title,
		Date:     time.Now().UTC(),
		Location: req.Location,
		Media:    req.Media,
	}

	if err := s.repo.Create(ctx, post); err != nil {
		return nil, err
	}
	return post, nil
}

// GetAll returns every post, newest first, with authors populated.
func (s *PostService) GetAll(ctx context.Context) ([]model.Post, error) {
	posts, err := s.repo.GetAll(ctx)
	if err != nil {
		return nil, err
	}
	return enrichPostAuthors(ctx, s.userRepo, posts), nil
}

func (s *PostService) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	post, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	enriched := enrichPostAuthors(ctx, s.userRepo, []model.Post{*post})
	return &enriched[0], nil
}

func (s *PostService) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error) {
	posts, err := s.repo.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return enrichPostAuthors(ctx, s.userRepo, posts), nil
}

// Delete removes a post. Only the owner may delete; comments and likes go
// with it, there is no tombstone.
func (s *PostService) Delete(ctx context.Context, postID, actorID primitive.ObjectID) error {
	post, err := s.repo.GetByID(ctx, postID)
	if err != nil {
		return err
	}
	if post.UserID != actorID {
		return model.ErrNotPostOwner
	}
	return s.repo.Delete(ctx, postID)
}

// ToggleLike flips the actor's like on the post. Toggling twice returns the
// like set and counter to their original values.
func (s *PostService) ToggleLike(ctx context.Context, postID, actorID primitive.ObjectID) (*model.ToggleLikeResult, error) {
	return s.repo.ToggleLike(ctx, postID, actorID)
}

// AddComment appends a comment and returns the updated post with the
// commenting users' display fields attached.
func (s *PostService) AddComment(ctx context.Context, postID, actorID primitive.ObjectID, text string) (*model.Post, error) {
	comment := model.Comment{
		UserID: actorID,
		Text:   text,
		Date:   time.Now().UTC(),
	}

	post, err := s.repo.AddComment(ctx, postID, comment)
	if err != nil {
		return nil, err
	}

	enriched := enrichPostAuthors(ctx, s.userRepo, []model.Post{*post})
	return &enriched[0], nil
}

// enrichPostAuthors populates the author display fields on posts and their
// comments with a single batch lookup. Lookup failure degrades to posts
// without authors rather than failing the request.
func enrichPostAuthors(ctx context.Context, userRepo repository.UserRepository, posts []model.Post) []model.Post {
	if len(posts) == 0 {
		return posts
	}

	seen := make(map[primitive.ObjectID]struct{})
	var ids []primitive.ObjectID
	add := func(id primitive.ObjectID) {
		if _, ok := seen[id]; !ok {
			seen[id] = struct{}{}
			ids = append(ids, id)
		}
	}
	for i := range posts {
		add(posts[i].UserID)
		for j := range posts[i].Comments {
			add(posts[i].Comments[j].UserID)
		}
	}

	summaries, err := userRepo.GetSummaries(ctx, ids)
	if err != nil {
		return posts
	}

	for i := range posts {
		if author, ok := summaries[posts[i].UserID]; ok {
			a := author
			posts[i].Author = &a
		}
		for j := range posts[i].Comments {
			if author, ok := summaries[posts[i].Comments[j].UserID]; ok {
				a := author
				posts[i].Comments[j].Author = &a
			}
		}
	}
	return posts
}
