package services

import (
	"context"
	"errors"
	"regexp"

	"github.com/google/uuid"

	"collectrip/models"
	"collectrip/storage"
)

var (
	ErrNicknameTaken   = errors.New("nickname already in use")
	ErrNicknameInvalid = errors.New("nickname does not meet the format rules")
)

// 2 to 12 characters: hangul syllables, latin letters, digits.
var nicknamePattern = regexp.MustCompile(`^[가-힣a-zA-Z0-9]{2,12}$`)

// UserService covers profile reads and nickname management.
type UserService struct {
	store *storage.PostgresStore
}

func NewUserService(store *storage.PostgresStore) *UserService {
	return &UserService{store: store}
}

func (s *UserService) Get(ctx context.Context, userID uuid.UUID) (*models.User, error) {
	user, err := s.store.GetUserByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if user == nil || !user.IsActive {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// CheckNickname reports whether a nickname is available. An invalid format is
// an error, not "unavailable".
func (s *UserService) CheckNickname(ctx context.Context, nickname string) (bool, error) {
	if !nicknamePattern.MatchString(nickname) {
		return false, ErrNicknameInvalid
	}
	exists, err := s.store.NicknameExists(ctx, nickname, uuid.Nil)
	if err != nil {
		return false, err
	}
	return !exists, nil
}

// UpdateNickname validates and applies a nickname change.
func (s *UserService) UpdateNickname(ctx context.Context, userID uuid.UUID, nickname string) (*models.User, error) {
	if !nicknamePattern.MatchString(nickname) {
		return nil, ErrNicknameInvalid
	}

	exists, err := s.store.NicknameExists(ctx, nickname, userID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrNicknameTaken
	}

	if err := s.store.UpdateUserNickname(ctx, userID, nickname); err != nil {
		return nil, err
	}
	return s.Get(ctx, userID)
}
