package models

import (
	"time"

	"github.com/google/uuid"
)

type User struct {
	UserID       uuid.UUID `json:"user_id" db:"user_id"`
	KakaoID      int64     `json:"kakao_id" db:"kakao_id"`
	Nickname     string    `json:"nickname" db:"nickname"`
	ProfileImage string    `json:"profile_image" db:"profile_image"`
	IsActive     bool      `json:"is_active" db:"is_active"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
	UpdatedAt    time.Time `json:"updated_at" db:"updated_at"`
}
