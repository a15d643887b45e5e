package importer

import (
	"context"
	"fmt"
	"log"
	"time"

	"collectrip/config"
	"collectrip/models"
	"collectrip/tourapi"
)

// Source is the remote data client surface the importer needs.
type Source interface {
	FetchListing(ctx context.Context, q tourapi.ListingQuery) *tourapi.ListingPage
	FetchDetail(ctx context.Context, contentID int64, contentTypeID int) *tourapi.DetailIntro
}

// Store is the domain persistence surface the importer needs.
type Store interface {
	GetContent(ctx context.Context, contentID int64) (*models.Content, error)
	UpsertContent(ctx context.Context, c *models.Content) error
	UpsertDetail(ctx context.Context, d models.Detail) error
	CreateImportRun(ctx context.Context, run *models.ImportRun) error
	UpdateImportRun(ctx context.Context, run *models.ImportRun) error
}

// Ops is the optional operational mirror (runs/logs for local inspection).
type Ops interface {
	CreateRun(run *models.ImportRun) (int64, error)
	UpdateRun(run *models.ImportRun) error
	Log(runID *int64, level models.LogLevel, message, selection string)
}

// Selection filters one import pass.
type Selection struct {
	AreaCode      int
	ContentTypeID int
	Cat1          string
	Cat2          string
	Cat3          string
}

func (s Selection) String() string {
	return fmt.Sprintf("area=%d ct=%d cat2=%s", s.AreaCode, s.ContentTypeID, s.Cat2)
}

// Stats counts outcomes for one run. Mutated in place by the single control
// goroutine; reported at the end.
type Stats struct {
	Attempted     int
	Created       int
	Updated       int
	Skipped       int
	Failed        int
	DetailsStored int
}

// item outcomes
type outcome int

const (
	outcomeCreated outcome = iota
	outcomeUpdated
	outcomeSkipped
	outcomeFailed
)

func (s *Stats) record(o outcome) {
	switch o {
	case outcomeCreated:
		s.Created++
	case outcomeUpdated:
		s.Updated++
	case outcomeSkipped:
		s.Skipped++
	case outcomeFailed:
		s.Failed++
	}
}

func (o outcome) label() string {
	switch o {
	case outcomeCreated:
		return "created"
	case outcomeUpdated:
		return "updated"
	case outcomeSkipped:
		return "skipped"
	default:
		return "failed"
	}
}

// Importer drives the pagination loop and per-item processing. Fully
// sequential: one page at a time, one item end-to-end before the next.
type Importer struct {
	cfg     *config.Config
	api     Source
	store   Store
	ops     Ops
	metrics *Metrics
	dryRun  bool
	paused  bool
}

func New(cfg *config.Config, api Source, store Store) *Importer {
	return &Importer{
		cfg:   cfg,
		api:   api,
		store: store,
	}
}

// SetOps attaches the operational run/log mirror.
func (imp *Importer) SetOps(ops Ops) { imp.ops = ops }

// SetMetrics attaches Prometheus collectors.
func (imp *Importer) SetMetrics(m *Metrics) { imp.metrics = m }

// SetDryRun makes every subsequent run build and classify records without
// writing; intent is logged instead.
func (imp *Importer) SetDryRun(dry bool) { imp.dryRun = dry }

// RunAll imports the cross product of the configured area and content-type
// lists. A failed selection is logged and does not stop the remainder.
func (imp *Importer) RunAll(ctx context.Context) (*Stats, error) {
	if imp.paused {
		log.Println("importer is paused, skipping run")
		return &Stats{}, nil
	}

	total := &Stats{}
	for _, area := range imp.cfg.Import.Areas {
		for _, ct := range imp.cfg.Import.ContentTypes {
			stats, err := imp.Run(ctx, Selection{AreaCode: area, ContentTypeID: ct})
			if err != nil {
				log.Printf("import %s failed: %v", Selection{AreaCode: area, ContentTypeID: ct}, err)
				continue
			}
			total.Attempted += stats.Attempted
			total.Created += stats.Created
			total.Updated += stats.Updated
			total.Skipped += stats.Skipped
			total.Failed += stats.Failed
			total.DetailsStored += stats.DetailsStored
		}
	}
	return total, nil
}

// Run imports every listing page for one selection.
func (imp *Importer) Run(ctx context.Context, sel Selection) (*Stats, error) {
	stats := &Stats{}

	run := &models.ImportRun{
		Selection: sel.String(),
		StartedAt: time.Now(),
		Status:    models.RunStatusRunning,
		DryRun:    imp.dryRun,
	}
	if err := imp.store.CreateImportRun(ctx, run); err != nil {
		return nil, fmt.Errorf("create run: %w", err)
	}

	var opsRunID *int64
	if imp.ops != nil {
		if id, err := imp.ops.CreateRun(run); err != nil {
			log.Printf("Warning: failed to create ops run: %v", err)
		} else {
			opsRunID = &id
		}
	}

	imp.opsLog(opsRunID, models.LogLevelInfo, fmt.Sprintf("starting import: %s", sel), sel)
	if imp.dryRun {
		log.Println("*** dry run: no writes will be performed ***")
	}

	fetchFailed := false
	for pageNo := 1; ; pageNo++ {
		page := imp.api.FetchListing(ctx, tourapi.ListingQuery{
			AreaCode:      sel.AreaCode,
			ContentTypeID: sel.ContentTypeID,
			Cat1:          sel.Cat1,
			Cat2:          sel.Cat2,
			Cat3:          sel.Cat3,
			PageNo:        pageNo,
		})
		if page == nil {
			// Indistinguishable from exhaustion at the client boundary; the
			// run is marked partial so a re-invoke can pick up the rest.
			imp.opsLog(opsRunID, models.LogLevelError,
				fmt.Sprintf("listing fetch failed at page %d, stopping", pageNo), sel)
			fetchFailed = true
			break
		}
		imp.metrics.IncPage()

		if len(page.Records) == 0 {
			break
		}

		for i := range page.Records {
			o := imp.processRecord(ctx, &page.Records[i], stats)
			stats.record(o)
			imp.metrics.IncItem(o.label())
		}

		imp.opsLog(opsRunID, models.LogLevelInfo,
			fmt.Sprintf("page %d (%d of %d items): %d records this page",
				page.PageNo, stats.Attempted, page.TotalCount, len(page.Records)), sel)

		if !page.HasMore() {
			break
		}
	}

	now := time.Now()
	run.FinishedAt = &now
	run.Status = models.RunStatusCompleted
	if fetchFailed {
		run.Status = models.RunStatusPartial
	}
	run.Attempted = stats.Attempted
	run.Created = stats.Created
	run.Updated = stats.Updated
	run.Skipped = stats.Skipped
	run.Failed = stats.Failed
	run.DetailsStored = stats.DetailsStored

	if err := imp.store.UpdateImportRun(ctx, run); err != nil {
		log.Printf("Warning: failed to update run record: %v", err)
	}
	if imp.ops != nil && opsRunID != nil {
		run.ID = *opsRunID
		if err := imp.ops.UpdateRun(run); err != nil {
			log.Printf("Warning: failed to update ops run: %v", err)
		}
	}
	imp.metrics.IncRun(string(run.Status))

	log.Printf("import %s done (%s): attempted=%d created=%d updated=%d skipped=%d failed=%d details=%d",
		sel, run.Status, stats.Attempted, stats.Created, stats.Updated, stats.Skipped, stats.Failed, stats.DetailsStored)

	return stats, nil
}

// processRecord handles one listing record end-to-end. Failures stay inside
// the item boundary: they are counted and logged, never returned upward.
func (imp *Importer) processRecord(ctx context.Context, rec *tourapi.Record, stats *Stats) outcome {
	stats.Attempted++

	contentID, okID := rec.ContentIDInt()
	contentTypeID, okType := rec.ContentTypeIDInt()
	if !okID || !okType {
		log.Printf("skipping record without identifiers (contentid=%q contenttypeid=%q title=%q)",
			rec.ContentID, rec.ContentTypeID, rec.Title)
		return outcomeSkipped
	}

	content := &models.Content{
		ContentID:      contentID,
		ContentTypeID:  contentTypeID,
		Title:          rec.Title,
		Addr1:          rec.Addr1,
		Addr2:          rec.Addr2,
		Cat1:           rec.Cat1,
		Cat2:           rec.Cat2,
		Cat3:           rec.Cat3,
		AreaCode:       rec.AreaCode,
		SigunguCode:    rec.SigunguCode,
		DongRegnCode:   rec.LDongRegnCd,
		DongSignguCode: rec.LDongSignguCd,
		MapX:           rec.MapXFloat(),
		MapY:           rec.MapYFloat(),
		FirstImage:     rec.FirstImage,
		FirstImage2:    rec.FirstImage2,
		Zipcode:        rec.Zipcode,
	}

	// Read-back before the write decides created vs updated; the pair is one
	// item-scoped unit of work.
	existing, err := imp.store.GetContent(ctx, contentID)
	if err != nil {
		log.Printf("content %d: read failed: %v", contentID, err)
		return outcomeFailed
	}
	result := outcomeUpdated
	if existing == nil {
		result = outcomeCreated
	}

	if imp.dryRun {
		log.Printf("dry run: would upsert content %d (%s) [%s]", contentID, rec.Title, result.label())
	} else if err := imp.store.UpsertContent(ctx, content); err != nil {
		log.Printf("content %d: upsert failed: %v", contentID, err)
		return outcomeFailed
	}

	kind, ok := Classify(contentTypeID, rec.Cat2)
	if !ok {
		// No mapping entry: the base row stands alone.
		return result
	}

	intro := imp.api.FetchDetail(ctx, contentID, contentTypeID)
	imp.metrics.IncDetailFetch()
	if intro == nil {
		log.Printf("content %d: no detail data for %s", contentID, kind)
		return result
	}

	detail := buildDetail(kind, rec, intro)
	if detail == nil {
		log.Printf("content %d: unknown detail kind %s", contentID, kind)
		return outcomeFailed
	}

	if imp.dryRun {
		log.Printf("dry run: would upsert %s detail for %d", kind, contentID)
		stats.DetailsStored++
		return result
	}

	if err := imp.store.UpsertDetail(ctx, detail); err != nil {
		log.Printf("content %d: %s detail upsert failed: %v", contentID, kind, err)
		return outcomeFailed
	}
	stats.DetailsStored++

	return result
}

// HandleCommand reacts to operational commands polled from the command queue.
func (imp *Importer) HandleCommand(ctx context.Context, cmd *models.Command, params *models.CommandParams) error {
	switch cmd.Command {
	case models.CmdImportNow:
		_, err := imp.RunAll(ctx)
		return err
	case models.CmdImportSelection:
		if params == nil {
			return fmt.Errorf("import_selection requires params")
		}
		_, err := imp.Run(ctx, Selection{
			AreaCode:      params.AreaCode,
			ContentTypeID: params.ContentTypeID,
			Cat2:          params.Cat2,
		})
		return err
	case models.CmdPause:
		imp.paused = true
		log.Println("importer paused")
	case models.CmdResume:
		imp.paused = false
		log.Println("importer resumed")
	}
	return nil
}

func (imp *Importer) IsPaused() bool { return imp.paused }

func (imp *Importer) opsLog(runID *int64, level models.LogLevel, message string, sel Selection) {
	log.Printf("[%s] %s: %s", level, sel, message)
	if imp.ops != nil {
		imp.ops.Log(runID, level, message, sel.String())
	}
}
