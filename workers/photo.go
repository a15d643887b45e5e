package workers

import (
	"context"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"collectrip/models"
	"collectrip/services"
)

// PhotoWorker finishes photo-verified check-ins: it downloads the photo from
// the client-provided temporary URL and moves it into object storage. The
// check-in itself is already accepted; only the image copy is deferred.
type PhotoWorker struct {
	collectors *services.CollectorService
	httpClient *http.Client
	triggerCh  chan struct{}
	logFunc    LogFunc
}

func NewPhotoWorker(collectors *services.CollectorService) *PhotoWorker {
	client := &http.Client{
		Timeout: 60 * time.Second, // Longer timeout for media downloads
	}

	return &PhotoWorker{
		collectors: collectors,
		httpClient: client,
		triggerCh:  make(chan struct{}, 1),
		logFunc:    NoOpLogger,
	}
}

func (w *PhotoWorker) SetLogger(fn LogFunc) {
	w.logFunc = fn
}

// Trigger causes the worker to run immediately
func (w *PhotoWorker) Trigger() {
	select {
	case w.triggerCh <- struct{}{}:
	default:
	}
}

// Run starts the photo worker loop
func (w *PhotoWorker) Run(ctx context.Context, batchSize int, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("Photo worker stopping")
			return
		case <-ticker.C:
			w.processBatch(ctx, batchSize)
		case <-w.triggerCh:
			w.processBatch(ctx, batchSize)
		}
	}
}

func (w *PhotoWorker) processBatch(ctx context.Context, batchSize int) {
	pending, err := w.collectors.GetPendingPhotos(ctx, batchSize)
	if err != nil {
		log.Printf("Photo worker: query error: %v", err)
		return
	}

	if len(pending) == 0 {
		return
	}

	log.Printf("Photo worker: processing %d items", len(pending))

	var processed, failed int
	for i := range pending {
		c := &pending[i]

		if err := w.process(ctx, c); err != nil {
			log.Printf("Photo worker: failed collector %d: %v", c.ID, err)
			failed++
			if err := w.collectors.MarkPhotoFailed(ctx, c); err != nil {
				log.Printf("Photo worker: failed to mark collector %d: %v", c.ID, err)
			}
			continue
		}

		processed++

		// Rate limit between downloads
		time.Sleep(200 * time.Millisecond)
	}

	if processed > 0 || failed > 0 {
		log.Printf("Photo worker: processed %d, failed %d", processed, failed)
		w.logFunc(models.LogLevelInfo, "photos",
			fmt.Sprintf("processed %d photos, %d failed", processed, failed))
	}
}

func (w *PhotoWorker) process(ctx context.Context, c *models.Collector) error {
	if c.ImageURL == "" {
		return fmt.Errorf("no source url")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.ImageURL, nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "image/*,*/*")

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download status: %d", resp.StatusCode)
	}

	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "image/jpeg"
	}

	body := io.LimitReader(resp.Body, 20*1024*1024) // 20MB limit
	return w.collectors.StorePhoto(ctx, c, body, contentType)
}
