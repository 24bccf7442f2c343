package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/google/uuid"

	"github.com/lbeckmann/team-registration/models"
	"github.com/lbeckmann/team-registration/repositories"
	"github.com/lbeckmann/team-registration/storage"
)

type UserService interface {
	GetUserByID(ctx context.Context, id int) (*models.User, error)
	// UploadAvatar stores the image and points the profile at it, replacing
	// any previously uploaded avatar object.
	UploadAvatar(ctx context.Context, userID int, filename string, contentType string, data io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
}

func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader) UserService {
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
	}
}

func (s *userService) GetUserByID(ctx context.Context, id int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}
	user.PasswordHash = nil
	s.presentAvatar(user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, filename string, contentType string, data io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrStorageNotConfigured
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, err
	}

	ext := strings.ToLower(path.Ext(filename))
	key := "avatars/" + uuid.NewString() + ext

	if _, err := s.uploader.Upload(ctx, key, contentType, data); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	oldKey := user.AvatarKey
	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		// Keep storage tidy if the profile update fell through.
		_ = s.uploader.Delete(ctx, key)
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if oldKey != nil && *oldKey != key {
		_ = s.uploader.Delete(ctx, *oldKey)
	}

	user.AvatarKey = &key
	user.PasswordHash = nil
	s.presentAvatar(user)
	return user, nil
}

// presentAvatar resolves the externally visible avatar URL: an uploaded
// object wins over the provider-supplied picture.
func (s *userService) presentAvatar(user *models.User) {
	if user.AvatarKey != nil && s.uploader != nil {
		publicURL := s.uploader.GetPublicURL(*user.AvatarKey)
		user.AvatarURL = &publicURL
	}
}
