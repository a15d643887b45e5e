package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"collectrip/config"
	"collectrip/models"
	"collectrip/storage"
)

// BadgeService evaluates badge conditions and awards badges. Awarding is
// idempotent: a badge already held is a no-op.
type BadgeService struct {
	store *storage.PostgresStore
}

func NewBadgeService(store *storage.PostgresStore) *BadgeService {
	return &BadgeService{store: store}
}

// Seed upserts the configured badge definitions. Run at daemon startup so
// condition edits in config take effect without a migration.
func (s *BadgeService) Seed(ctx context.Context, defs []config.BadgeDef) error {
	for _, def := range defs {
		cond, err := json.Marshal(models.BadgeCondition{
			AreaCode:       def.AreaCode,
			CollectorCount: def.CollectorCount,
		})
		if err != nil {
			return fmt.Errorf("badge %s: encode condition: %w", def.BadgeID, err)
		}
		badge := &models.Badge{
			BadgeID:     def.BadgeID,
			Name:        def.Name,
			ImageURL:    def.ImageURL,
			Condition:   cond,
			Description: def.Description,
		}
		if err := s.store.UpsertBadge(ctx, badge); err != nil {
			return fmt.Errorf("badge %s: seed: %w", def.BadgeID, err)
		}
	}
	log.Printf("seeded %d badge definitions", len(defs))
	return nil
}

func (s *BadgeService) ListBadges(ctx context.Context) ([]models.Badge, error) {
	return s.store.ListBadges(ctx)
}

func (s *BadgeService) ListUserBadges(ctx context.Context, userID uuid.UUID) ([]models.UserBadge, error) {
	return s.store.ListUserBadges(ctx, userID)
}

// EvaluateUser checks every badge condition against a user's check-in counts
// and awards whatever newly qualifies. Returns the badge ids awarded by this
// call.
func (s *BadgeService) EvaluateUser(ctx context.Context, userID uuid.UUID) ([]string, error) {
	badges, err := s.store.ListBadges(ctx)
	if err != nil {
		return nil, fmt.Errorf("list badges: %w", err)
	}

	var awarded []string
	for _, badge := range badges {
		has, err := s.store.HasUserBadge(ctx, userID, badge.BadgeID)
		if err != nil {
			return awarded, fmt.Errorf("badge %s: check held: %w", badge.BadgeID, err)
		}
		if has {
			continue
		}

		var cond models.BadgeCondition
		if err := json.Unmarshal(badge.Condition, &cond); err != nil {
			log.Printf("badge %s: bad condition document: %v", badge.BadgeID, err)
			continue
		}
		if cond.CollectorCount <= 0 {
			continue
		}

		count, err := s.store.CountCollectorsByArea(ctx, userID, cond.AreaCode)
		if err != nil {
			return awarded, fmt.Errorf("badge %s: count check-ins: %w", badge.BadgeID, err)
		}
		if count < cond.CollectorCount {
			continue
		}

		ub := &models.UserBadge{
			UserID:    userID,
			BadgeID:   badge.BadgeID,
			AwardedAt: time.Now(),
		}
		if err := s.store.CreateUserBadge(ctx, ub); err != nil {
			return awarded, fmt.Errorf("badge %s: award: %w", badge.BadgeID, err)
		}
		awarded = append(awarded, badge.BadgeID)
		log.Printf("awarded badge %s to user %s (count=%d)", badge.BadgeID, userID, count)
	}
	return awarded, nil
}

// EvaluateRecent runs EvaluateUser for everyone who checked in after since.
// Per-user failures are logged and do not stop the sweep.
func (s *BadgeService) EvaluateRecent(ctx context.Context, since time.Time) error {
	users, err := s.store.ListUsersWithCheckinsSince(ctx, since)
	if err != nil {
		return fmt.Errorf("list recent users: %w", err)
	}

	for _, userID := range users {
		if _, err := s.EvaluateUser(ctx, userID); err != nil {
			log.Printf("Warning: badge evaluation for %s failed: %v", userID, err)
		}
	}
	return nil
}
