package service

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"vibeshare/internal/model"
)

// Mock repositories with function fields so each test defines only the
// behavior it needs. Methods without an override return the not-found
// sentinel or a zero value.

type mockUserRepository struct {
	createFn            func(ctx context.Context, user *model.User) error
	getByIDFn           func(ctx context.Context, id primitive.ObjectID) (*model.User, error)
	getByIdentifierFn   func(ctx context.Context, identifier string) (*model.User, error)
	getByEmailFn        func(ctx context.Context, email string) (*model.User, error)
	existsByEmailFn     func(ctx context.Context, email string) (bool, error)
	getAllFn            func(ctx context.Context) ([]model.User, error)
	searchByNameFn      func(ctx context.Context, name, surname string) ([]model.User, error)
	updateProfileFn     func(ctx context.Context, id primitive.ObjectID, req *model.UpdateProfileRequest) (*model.User, error)
	updatePasswordFn    func(ctx context.Context, id primitive.ObjectID, passwordHashed string) error
	setProfilePictureFn func(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error)
	setCoverPictureFn   func(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error)
	addFollowingFn      func(ctx context.Context, userID, targetID primitive.ObjectID) error
	removeFollowingFn   func(ctx context.Context, userID, targetID primitive.ObjectID) error
	getFollowersFn      func(ctx context.Context, targetID primitive.ObjectID) ([]model.UserSummary, error)
	getFollowingFn      func(ctx context.Context, userID primitive.ObjectID) ([]model.UserSummary, error)
	addFavoriteFn       func(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	removeFavoriteFn    func(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error)
	getSummariesFn      func(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error)

	// Track calls for assertions
	createCalls       []*model.User
	addFollowingCalls [][2]primitive.ObjectID
}

func (m *mockUserRepository) Create(ctx context.Context, user *model.User) error {
	m.createCalls = append(m.createCalls, user)
	if m.createFn != nil {
		return m.createFn(ctx, user)
	}
	return nil
}

func (m *mockUserRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.User, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByIdentifier(ctx context.Context, identifier string) (*model.User, error) {
	if m.getByIdentifierFn != nil {
		return m.getByIdentifierFn(ctx, identifier)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	if m.getByEmailFn != nil {
		return m.getByEmailFn(ctx, email)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	if m.existsByEmailFn != nil {
		return m.existsByEmailFn(ctx, email)
	}
	return false, nil
}

func (m *mockUserRepository) GetAll(ctx context.Context) ([]model.User, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockUserRepository) SearchByName(ctx context.Context, name, surname string) ([]model.User, error) {
	if m.searchByNameFn != nil {
		return m.searchByNameFn(ctx, name, surname)
	}
	return nil, nil
}

func (m *mockUserRepository) UpdateProfile(ctx context.Context, id primitive.ObjectID, req *model.UpdateProfileRequest) (*model.User, error) {
	if m.updateProfileFn != nil {
		return m.updateProfileFn(ctx, id, req)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) UpdatePassword(ctx context.Context, id primitive.ObjectID, passwordHashed string) error {
	if m.updatePasswordFn != nil {
		return m.updatePasswordFn(ctx, id, passwordHashed)
	}
	return nil
}

func (m *mockUserRepository) SetProfilePicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error) {
	if m.setProfilePictureFn != nil {
		return m.setProfilePictureFn(ctx, id, url)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) SetCoverPicture(ctx context.Context, id primitive.ObjectID, url string) (*model.User, error) {
	if m.setCoverPictureFn != nil {
		return m.setCoverPictureFn(ctx, id, url)
	}
	return nil, model.ErrUserNotFound
}

func (m *mockUserRepository) AddFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	m.addFollowingCalls = append(m.addFollowingCalls, [2]primitive.ObjectID{userID, targetID})
	if m.addFollowingFn != nil {
		return m.addFollowingFn(ctx, userID, targetID)
	}
	return nil
}

func (m *mockUserRepository) RemoveFollowing(ctx context.Context, userID, targetID primitive.ObjectID) error {
	if m.removeFollowingFn != nil {
		return m.removeFollowingFn(ctx, userID, targetID)
	}
	return nil
}

func (m *mockUserRepository) GetFollowers(ctx context.Context, targetID primitive.ObjectID) ([]model.UserSummary, error) {
	if m.getFollowersFn != nil {
		return m.getFollowersFn(ctx, targetID)
	}
	return nil, nil
}

func (m *mockUserRepository) GetFollowing(ctx context.Context, userID primitive.ObjectID) ([]model.UserSummary, error) {
	if m.getFollowingFn != nil {
		return m.getFollowingFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockUserRepository) AddFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if m.addFavoriteFn != nil {
		return m.addFavoriteFn(ctx, userID, postID)
	}
	return []primitive.ObjectID{postID}, nil
}

func (m *mockUserRepository) RemoveFavorite(ctx context.Context, userID, postID primitive.ObjectID) ([]primitive.ObjectID, error) {
	if m.removeFavoriteFn != nil {
		return m.removeFavoriteFn(ctx, userID, postID)
	}
	return nil, nil
}

func (m *mockUserRepository) GetSummaries(ctx context.Context, ids []primitive.ObjectID) (map[primitive.ObjectID]model.UserSummary, error) {
	if m.getSummariesFn != nil {
		return m.getSummariesFn(ctx, ids)
	}
	return map[primitive.ObjectID]model.UserSummary{}, nil
}

type mockPostRepository struct {
	createFn      func(ctx context.Context, post *model.Post) error
	getByIDFn     func(ctx context.Context, id primitive.ObjectID) (*model.Post, error)
	getByIDsFn    func(ctx context.Context, ids []primitive.ObjectID) ([]model.Post, error)
	getAllFn      func(ctx context.Context) ([]model.Post, error)
	getByUserIDFn func(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error)
	deleteFn      func(ctx context.Context, id primitive.ObjectID) error
	existsFn      func(ctx context.Context, id primitive.ObjectID) (bool, error)
	toggleLikeFn  func(ctx context.Context, postID, userID primitive.ObjectID) (*model.ToggleLikeResult, error)
	addCommentFn  func(ctx context.Context, postID primitive.ObjectID, comment model.Comment) (*model.Post, error)

	deleteCalls []primitive.ObjectID
}

func (m *mockPostRepository) Create(ctx context.Context, post *model.Post) error {
	if m.createFn != nil {
		return m.createFn(ctx, post)
	}
	return nil
}

func (m *mockPostRepository) GetByID(ctx context.Context, id primitive.ObjectID) (*model.Post, error) {
	if m.getByIDFn != nil {
		return m.getByIDFn(ctx, id)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) GetByIDs(ctx context.Context, ids []primitive.ObjectID) ([]model.Post, error) {
	if m.getByIDsFn != nil {
		return m.getByIDsFn(ctx, ids)
	}
	return nil, nil
}

func (m *mockPostRepository) GetAll(ctx context.Context) ([]model.Post, error) {
	if m.getAllFn != nil {
		return m.getAllFn(ctx)
	}
	return nil, nil
}

func (m *mockPostRepository) GetByUserID(ctx context.Context, userID primitive.ObjectID) ([]model.Post, error) {
	if m.getByUserIDFn != nil {
		return m.getByUserIDFn(ctx, userID)
	}
	return nil, nil
}

func (m *mockPostRepository) Delete(ctx context.Context, id primitive.ObjectID) error {
	m.deleteCalls = append(m.deleteCalls, id)
	if m.deleteFn != nil {
		return m.deleteFn(ctx, id)
	}
	return nil
}

func (m *mockPostRepository) Exists(ctx context.Context, id primitive.ObjectID) (bool, error) {
	if m.existsFn != nil {
		return m.existsFn(ctx, id)
	}
	return false, nil
}

func (m *mockPostRepository) ToggleLike(ctx context.Context, postID, userID primitive.ObjectID) (*model.ToggleLikeResult, error) {
	if m.toggleLikeFn != nil {
		return m.toggleLikeFn(ctx, postID, userID)
	}
	return nil, model.ErrPostNotFound
}

func (m *mockPostRepository) AddComment(ctx context.Context, postID primitive.ObjectID, comment model.Comment) (*model.Post, error) {
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, postID, comment)
	}
	return nil, model.ErrPostNotFound
}
