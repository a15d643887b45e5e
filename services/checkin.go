package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"math"
	"time"

	"github.com/google/uuid"

	"collectrip/config"
	"collectrip/models"
	"collectrip/storage"
)

var (
	ErrContentNotFound  = errors.New("content not found")
	ErrAlreadyCollected = errors.New("content already collected")
	ErrTooFarAway       = errors.New("position is outside the check-in radius")
	ErrBadVerification  = errors.New("unknown verification method")
)

// CollectorService handles check-ins: GPS distance verification, duplicate
// rejection, and the photo upload queue for photo-verified check-ins.
type CollectorService struct {
	cfg      *config.Config
	store    *storage.PostgresStore
	uploader *storage.S3Uploader
}

func NewCollectorService(cfg *config.Config, store *storage.PostgresStore, uploader *storage.S3Uploader) *CollectorService {
	return &CollectorService{cfg: cfg, store: store, uploader: uploader}
}

// CheckinRequest is one check-in attempt.
type CheckinRequest struct {
	ContentID  int64   `json:"content_id"`
	VerifiedBy string  `json:"verified_by"`
	Lat        float64 `json:"lat"`
	Lng        float64 `json:"lng"`
	ImageURL   string  `json:"image_url"`
}

// Checkin verifies and records one check-in. GPS check-ins must fall within
// the configured radius of the content's coordinates; photo check-ins are
// accepted immediately and the upload is finished by the photo worker.
func (s *CollectorService) Checkin(ctx context.Context, userID uuid.UUID, req CheckinRequest) (*models.Collector, error) {
	content, err := s.store.GetContent(ctx, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("lookup content: %w", err)
	}
	if content == nil {
		return nil, ErrContentNotFound
	}

	existing, err := s.store.GetCollector(ctx, userID, req.ContentID)
	if err != nil {
		return nil, fmt.Errorf("lookup collector: %w", err)
	}
	if existing != nil {
		return nil, ErrAlreadyCollected
	}

	collector := &models.Collector{
		UserID:      userID,
		ContentID:   req.ContentID,
		VerifiedBy:  req.VerifiedBy,
		VerifiedLat: req.Lat,
		VerifiedLng: req.Lng,
		PhotoStatus: models.PhotoStatusNone,
		VerifiedAt:  time.Now(),
	}

	switch req.VerifiedBy {
	case models.VerifiedByGPS:
		// TourAPI coordinates are mapx=longitude, mapy=latitude.
		dist := haversineMeters(req.Lat, req.Lng, content.MapY, content.MapX)
		if dist > s.cfg.Checkin.RadiusMeters {
			return nil, ErrTooFarAway
		}
	case models.VerifiedByPhoto:
		collector.ImageURL = req.ImageURL
		collector.PhotoStatus = models.PhotoStatusPending
	default:
		return nil, ErrBadVerification
	}

	if err := s.store.CreateCollector(ctx, collector); err != nil {
		return nil, fmt.Errorf("create collector: %w", err)
	}
	return collector, nil
}

func (s *CollectorService) ListMine(ctx context.Context, userID uuid.UUID, limit int) ([]models.Collector, error) {
	return s.store.ListCollectorsByUser(ctx, userID, limit)
}

// GetPendingPhotos returns check-ins whose photo is still queued for upload.
func (s *CollectorService) GetPendingPhotos(ctx context.Context, limit int) ([]models.Collector, error) {
	return s.store.GetPendingPhotoCollectors(ctx, limit)
}

// StorePhoto uploads one photo to object storage and marks the check-in.
func (s *CollectorService) StorePhoto(ctx context.Context, collector *models.Collector, data io.Reader, contentType string) error {
	if s.uploader == nil {
		return errors.New("photo storage is not configured")
	}

	key := fmt.Sprintf("checkins/%s/%d.jpg", collector.UserID, collector.ContentID)
	if err := s.uploader.Upload(ctx, key, data, contentType); err != nil {
		return fmt.Errorf("upload photo: %w", err)
	}

	return s.store.UpdateCollectorPhoto(ctx, collector.ID, models.PhotoStatusUploaded,
		s.uploader.PublicURL(key), collector.PhotoAttempts)
}

// MarkPhotoFailed bumps the attempt counter; three strikes parks the photo as
// failed so the worker stops retrying.
func (s *CollectorService) MarkPhotoFailed(ctx context.Context, collector *models.Collector) error {
	attempts := collector.PhotoAttempts + 1
	status := models.PhotoStatusPending
	if attempts >= 3 {
		status = models.PhotoStatusFailed
	}
	return s.store.UpdateCollectorPhoto(ctx, collector.ID, status, "", attempts)
}

// haversineMeters is the great-circle distance between two WGS84 points.
func haversineMeters(lat1, lng1, lat2, lng2 float64) float64 {
	const earthRadius = 6371000.0

	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLng := rad(lng2 - lng1)

	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLng/2)*math.Sin(dLng/2)
	return earthRadius * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
