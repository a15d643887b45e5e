package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Verification methods for a check-in
const (
	VerifiedByGPS   = "GPS"
	VerifiedByPhoto = "Photo"
)

// Photo upload status
const (
	PhotoStatusNone     = "none"
	PhotoStatusPending  = "pending"
	PhotoStatusUploaded = "uploaded"
	PhotoStatusFailed   = "failed"
)

// Collector is one user's check-in at one content. At most one row exists per
// (user, content) pair.
type Collector struct {
	ID            int64     `json:"id" db:"id"`
	UserID        uuid.UUID `json:"user_id" db:"user_id"`
	ContentID     int64     `json:"content_id" db:"content_id"`
	VerifiedBy    string    `json:"verified_by" db:"verified_by"`
	VerifiedLat   float64   `json:"verified_lat" db:"verified_lat"`
	VerifiedLng   float64   `json:"verified_lng" db:"verified_lng"`
	ImageURL      string    `json:"image_url" db:"image_url"`
	PhotoStatus   string    `json:"photo_status" db:"photo_status"`
	PhotoAttempts int       `json:"photo_attempts" db:"photo_attempts"`
	VerifiedAt    time.Time `json:"verified_at" db:"verified_at"`
	CreatedAt     time.Time `json:"created_at" db:"created_at"`
}

// Badge defines an earnable badge. Condition is a JSON document, e.g.
// {"areacode": 1, "collector_count": 5}.
type Badge struct {
	BadgeID     string          `json:"badge_id" db:"badge_id"`
	Name        string          `json:"name" db:"name"`
	ImageURL    string          `json:"image_url" db:"image_url"`
	Condition   json.RawMessage `json:"condition" db:"condition"`
	Description string          `json:"description" db:"description"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
}

// BadgeCondition is the decoded form of Badge.Condition.
type BadgeCondition struct {
	AreaCode       int `json:"areacode,omitempty"`
	CollectorCount int `json:"collector_count"`
}

// UserBadge records one badge award. At most one row exists per (user, badge).
type UserBadge struct {
	ID        int64     `json:"id" db:"id"`
	UserID    uuid.UUID `json:"user_id" db:"user_id"`
	BadgeID   string    `json:"badge_id" db:"badge_id"`
	AwardedAt time.Time `json:"awarded_at" db:"awarded_at"`
}
