package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/Dosada05/prediction-league/models"
	"github.com/Dosada05/prediction-league/repositories"
	"github.com/Dosada05/prediction-league/storage"
	"github.com/google/uuid"
)

var avatarExtensions = map[string]string{
	"image/jpeg": "jpg",
	"image/png":  "png",
	"image/webp": "webp",
}

type UserService interface {
	GetProfile(ctx context.Context, userID int) (*models.User, error)
	UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error)
}

type userService struct {
	userRepo repositories.UserRepository
	uploader storage.FileUploader
	logger   *slog.Logger
}

// NewUserService accepts a nil uploader; avatar uploads then fail with ErrAvatarStorageDisabled.
func NewUserService(userRepo repositories.UserRepository, uploader storage.FileUploader, logger *slog.Logger) UserService {
	if logger == nil {
		logger = slog.Default()
	}
	return &userService{
		userRepo: userRepo,
		uploader: uploader,
		logger:   logger,
	}
}

func (s *userService) GetProfile(ctx context.Context, userID int) (*models.User, error) {
	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user %d: %w", userID, err)
	}
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) UploadAvatar(ctx context.Context, userID int, contentType string, file io.Reader) (*models.User, error) {
	if s.uploader == nil {
		return nil, ErrAvatarStorageDisabled
	}
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return nil, ErrUnsupportedAvatarType
	}

	user, err := s.GetProfile(ctx, userID)
	if err != nil {
		return nil, err
	}
	previousKey := user.AvatarKey

	key := fmt.Sprintf("avatars/%d/%s.%s", userID, uuid.NewString(), ext)
	if _, err := s.uploader.Upload(ctx, key, contentType, file); err != nil {
		return nil, fmt.Errorf("failed to upload avatar: %w", err)
	}

	if err := s.userRepo.UpdateAvatarKey(ctx, userID, &key); err != nil {
		// Новый объект уже загружен: убираем его, чтобы не копить мусор
		if delErr := s.uploader.Delete(ctx, key); delErr != nil {
			s.logger.Warn("failed to remove orphaned avatar", "key", key, "error", delErr)
		}
		if errors.Is(err, repositories.ErrUserNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to save avatar key: %w", err)
	}

	if previousKey != nil && *previousKey != "" {
		if err := s.uploader.Delete(ctx, *previousKey); err != nil {
			s.logger.Warn("failed to delete previous avatar", "user_id", userID, "key", *previousKey, "error", err)
		}
	}

	user.AvatarKey = &key
	s.populateAvatarURL(user)
	return user, nil
}

func (s *userService) populateAvatarURL(user *models.User) {
	if user == nil || s.uploader == nil || user.AvatarKey == nil || *user.AvatarKey == "" {
		return
	}
	if u := s.uploader.GetPublicURL(*user.AvatarKey); u != "" {
		user.AvatarURL = &u
	}
}
