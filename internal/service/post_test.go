package service

import (
	"context"
	"errors"
	"strings"
	"testing"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/model"
)

func TestPostService_Create_Validation(t *testing.T) {
	userID := primitive.NewObjectID()

	tests := []struct {
		name    string
		req     *model.CreatePostRequest
		wantErr error
	}{
		{
			name:    "empty title",
			req:     &model.CreatePostRequest{Title: "   "},
			wantErr: model.ErrTitleRequired,
		},
		{
			name:    "title too long",
			req:     &model.CreatePostRequest{Title: strings.Repeat("a", model.MaxTitleLength+1)},
			wantErr: model.ErrTitleTooLong,
		},
		{
			name: "too many media items",
			req: &model.CreatePostRequest{
				Title: "trip",
				Media: make([]model.Media, model.MaxPostMediaCount+1),
			},
			wantErr: model.ErrTooManyMedia,
		},
		{
			name: "unknown media type",
			req: &model.CreatePostRequest{
				Title: "trip",
				Media: []model.Media{{Type: "audio", URL: "https://cdn.example.com/a.mp3"}},
			},
			wantErr: model.ErrInvalidMediaType,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := NewPostService(&mockPostRepository{}, &mockUserRepository{})
			_, err := svc.Create(context.Background(), userID, tt.req)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestPostService_Create_Success(t *testing.T) {
	userID := primitive.NewObjectID()
	postRepo := &mockPostRepository{
		createFn: func(ctx context.Context, post *model.Post) error {
			post.ID = primitive.NewObjectID()
			return nil
		},
	}
	svc := NewPostService(postRepo, &mockUserRepository{})

	req := &model.CreatePostRequest{
		Title:    "sunset",
		Location: "pier 39",
		Media: []model.Media{
			{Type: model.MediaTypeImage, URL: "https://cdn.example.com/1.jpg"},
			{Type: model.MediaTypeVideo, URL: "https://cdn.example.com/2.mp4"},
		},
	}

	post, err := svc.Create(context.Background(), userID, req)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.UserID != userID {
		t.Errorf("post user = %v, want %v", post.UserID, userID)
	}
	if post.Date.IsZero() {
		t.Error("post date should be set on create")
	}
	if len(post.Media) != 2 {
		t.Errorf("media count = %d, want 2", len(post.Media))
	}
}

func TestPostService_Delete(t *testing.T) {
	ownerID := primitive.NewObjectID()
	strangerID := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	newRepo := func() *mockPostRepository {
		return &mockPostRepository{
			getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
				return &model.Post{ID: id, UserID: ownerID}, nil
			},
		}
	}

	t.Run("owner may delete", func(t *testing.T) {
		repo := newRepo()
		svc := NewPostService(repo, &mockUserRepository{})

		if err := svc.Delete(context.Background(), postID, ownerID); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(repo.deleteCalls) != 1 {
			t.Errorf("Delete called %d times, want 1", len(repo.deleteCalls))
		}
	})

	t.Run("stranger is rejected", func(t *testing.T) {
		repo := newRepo()
		svc := NewPostService(repo, &mockUserRepository{})

		err := svc.Delete(context.Background(), postID, strangerID)
		if !errors.Is(err, model.ErrNotPostOwner) {
			t.Errorf("error = %v, want %v", err, model.ErrNotPostOwner)
		}
		if len(repo.deleteCalls) != 0 {
			t.Error("Delete should not be called for a non-owner")
		}
	})

	t.Run("missing post", func(t *testing.T) {
		repo := &mockPostRepository{
			getByIDFn: func(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
				return nil, model.ErrPostNotFound
			},
		}
		svc := NewPostService(repo, &mockUserRepository{})

		if err := svc.Delete(context.Background(), postID, ownerID); !errors.Is(err, model.ErrPostNotFound) {
			t.Errorf("error = %v, want %v", err, model.ErrPostNotFound)
		}
	})
}

// Toggling a like twice must land back where it started, with the counter
// tracking the set size at every step.
func TestPostService_ToggleLike_Involution(t *testing.T) {
	userID := primitive.NewObjectID()
	postID := primitive.NewObjectID()

	likes := map[primitive.ObjectID]struct{}{}
	repo := &mockPostRepository{
		toggleLikeFn: func(ctx context.Context, pid, uid primitive.ObjectID) (*model.ToggleLikeResult, error) {
			if _, ok := likes[uid]; ok {
				delete(likes, uid)
				return &model.ToggleLikeResult{Liked: false, LikeCount: len(likes)}, nil
			}
			likes[uid] = struct{}{}
			return &model.ToggleLikeResult{Liked: true, LikeCount: len(likes)}, nil
		},
	}
	svc := NewPostService(repo, &mockUserRepository{})

	first, err := svc.ToggleLike(context.Background(), postID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Liked || first.LikeCount != 1 {
		t.Errorf("first toggle = %+v, want liked with count 1", first)
	}

	second, err := svc.ToggleLike(context.Background(), postID, userID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if second.Liked || second.LikeCount != 0 {
		t.Errorf("second toggle = %+v, want unliked with count 0", second)
	}
}

func TestPostService_AddComment_PopulatesAuthors(t *testing.T) {
	postID := primitive.NewObjectID()
	actorID := primitive.NewObjectID()
	ownerID := primitive.NewObjectID()

	postRepo := &mockPostRepository{
		addCommentFn: func(ctx context.Context, pid primitive.ObjectID, comment model.Comment) (*model.Post, error) {
			if comment.UserID != actorID {
				t.Errorf("comment user = %v, want %v", comment.UserID, actorID)
			}
			if comment.Date.IsZero() {
				t.Error("comment date should be set")
			}
			return &model.Post{
				ID:       pid,
				UserID:   ownerID,
				Title:    "sunset",
				Comments: []model.Comment{comment},
			}, nil
		},
	}
	userRepo := &mockUserRepository{
		getSummariesFn: func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error) {
			return map[primitive.ObjectID]model.UserSummary{
				ownerID: {ID: ownerID, Username: "owner"},
				actorID: {ID: actorID, Username: "commenter"},
			}, nil
		},
	}
	svc := NewPostService(postRepo, userRepo)

	post, err := svc.AddComment(context.Background(), postID, actorID, "nice shot")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if post.Author == nil || post.Author.Username != "owner" {
		t.Error("post author should be populated")
	}
	if len(post.Comments) != 1 || post.Comments[0].Author == nil || post.Comments[0].Author.Username != "commenter" {
		t.Error("comment author should be populated")
	}
}

func TestPostService_GetAll_AuthorLookupFailureDegrades(t *testing.T) {
	postRepo := &mockPostRepository{
		getAllFn: func(ctx context.Context) ([]model.Post, error) {
			return []model.Post{{ID: primitive.NewObjectID(), UserID: primitive.NewObjectID(), Title: "one"}}, nil
		},
	}
	userRepo := &mockUserRepository{
		getSummariesFn: func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error) {
			return nil, errors.New("lookup failed")
		},
	}
	svc := NewPostService(postRepo, userRepo)

	posts, err := svc.GetAll(context.Background())
	if err != nil {
		t.Fatalf("author lookup failure should not fail the request: %v", err)
	}
	if len(posts) != 1 {
		t.Fatalf("got %d posts, want 1", len(posts))
	}
	if posts[0].Author != nil {
		t.Error("author should be left empty when the lookup fails")
	}
}
