package importer

import (
	"context"
	"fmt"
	"testing"

	"collectrip/config"
	"collectrip/models"
	"collectrip/tourapi"
)

// fakeSource serves canned pages keyed by page number.
type fakeSource struct {
	pages   map[int]*tourapi.ListingPage
	details map[int64]*tourapi.DetailIntro

	listingCalls int
	detailCalls  int
}

func (f *fakeSource) FetchListing(ctx context.Context, q tourapi.ListingQuery) *tourapi.ListingPage {
	f.listingCalls++
	return f.pages[q.PageNo]
}

func (f *fakeSource) FetchDetail(ctx context.Context, contentID int64, contentTypeID int) *tourapi.DetailIntro {
	f.detailCalls++
	return f.details[contentID]
}

// fakeStore keeps everything in maps and counts writes.
type fakeStore struct {
	contents map[int64]*models.Content
	details  map[int64]models.Detail
	runs     []*models.ImportRun

	contentWrites int
	detailWrites  int
	failUpsert    map[int64]error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		contents: make(map[int64]*models.Content),
		details:  make(map[int64]models.Detail),
	}
}

func (f *fakeStore) GetContent(ctx context.Context, contentID int64) (*models.Content, error) {
	return f.contents[contentID], nil
}

func (f *fakeStore) UpsertContent(ctx context.Context, c *models.Content) error {
	if err := f.failUpsert[c.ContentID]; err != nil {
		return err
	}
	f.contentWrites++
	f.contents[c.ContentID] = c
	return nil
}

func (f *fakeStore) UpsertDetail(ctx context.Context, d models.Detail) error {
	f.detailWrites++
	f.details[d.Common().ContentID] = d
	return nil
}

func (f *fakeStore) CreateImportRun(ctx context.Context, run *models.ImportRun) error {
	run.ID = int64(len(f.runs) + 1)
	f.runs = append(f.runs, run)
	return nil
}

func (f *fakeStore) UpdateImportRun(ctx context.Context, run *models.ImportRun) error {
	return nil
}

func testImporter(src *fakeSource, store *fakeStore) *Importer {
	cfg := &config.Config{
		Import: config.ImportConfig{Areas: []int{1}, ContentTypes: []int{12}},
	}
	return New(cfg, src, store)
}

func page(pageNo, totalCount int, recs ...tourapi.Record) *tourapi.ListingPage {
	return &tourapi.ListingPage{
		NumOfRows:  len(recs),
		PageNo:     pageNo,
		TotalCount: totalCount,
		Records:    recs,
	}
}

func TestRun_EmptyFirstPageTerminates(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 0),
	}}
	store := newFakeStore()

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Attempted != 0 {
		t.Fatalf("attempted = %d, want 0", stats.Attempted)
	}
	if src.listingCalls != 1 {
		t.Fatalf("listing calls = %d, want 1", src.listingCalls)
	}
	if store.runs[0].Status != models.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", store.runs[0].Status)
	}
}

func TestRun_FoodStoreScenario(t *testing.T) {
	// Two records: a classified food store and one without identifiers.
	src := &fakeSource{
		pages: map[int]*tourapi.ListingPage{
			1: page(1, 2,
				tourapi.Record{ContentID: "100", ContentTypeID: "39", Title: "국밥집",
					Cat2: "A05020100", Addr1: "서울", MapX: "126.97", MapY: "37.56"},
				tourapi.Record{ContentID: "", ContentTypeID: "39", Title: "이름없음"},
			),
		},
		details: map[int64]*tourapi.DetailIntro{
			100: {FirstMenu: "순대국", KidsFacility: "0"},
		},
	}
	store := newFakeStore()

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1, ContentTypeID: 39})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	if stats.Attempted != 2 {
		t.Fatalf("attempted = %d, want 2", stats.Attempted)
	}
	if stats.Created != 1 || stats.Skipped != 1 || stats.Failed != 0 {
		t.Fatalf("created/skipped/failed = %d/%d/%d, want 1/1/0", stats.Created, stats.Skipped, stats.Failed)
	}
	if stats.DetailsStored != 1 {
		t.Fatalf("details stored = %d, want 1", stats.DetailsStored)
	}

	food, ok := store.details[100].(*models.FoodStore)
	if !ok {
		t.Fatalf("expected a food store detail, got %T", store.details[100])
	}
	if food.FirstMenu != "순대국" {
		t.Fatalf("firstmenu = %s", food.FirstMenu)
	}
	if food.Addr1 != "서울" {
		t.Fatalf("shared field not taken from listing: %s", food.Addr1)
	}
}

func TestRun_ExistingContentCountsAsUpdated(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 1, tourapi.Record{ContentID: "100", ContentTypeID: "32", Title: "호텔"}),
	}}
	store := newFakeStore()
	store.contents[100] = &models.Content{ContentID: 100}

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1, ContentTypeID: 32})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Updated != 1 || stats.Created != 0 {
		t.Fatalf("updated/created = %d/%d, want 1/0", stats.Updated, stats.Created)
	}
	// Content type 32 has no mapping; no detail call happens.
	if src.detailCalls != 0 {
		t.Fatalf("detail calls = %d, want 0", src.detailCalls)
	}
	if stats.DetailsStored != 0 {
		t.Fatalf("details stored = %d, want 0", stats.DetailsStored)
	}
}

func TestRun_Pagination(t *testing.T) {
	// numOfRows echoes the requested page size, so a short last page still
	// reports 2; pageNo*numOfRows >= totalCount is what stops the loop.
	last := page(2, 3, tourapi.Record{ContentID: "3", ContentTypeID: "32"})
	last.NumOfRows = 2
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 3,
			tourapi.Record{ContentID: "1", ContentTypeID: "32"},
			tourapi.Record{ContentID: "2", ContentTypeID: "32"}),
		2: last,
	}}
	store := newFakeStore()

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if src.listingCalls != 2 {
		t.Fatalf("listing calls = %d, want 2", src.listingCalls)
	}
	if stats.Attempted != 3 || stats.Created != 3 {
		t.Fatalf("attempted/created = %d/%d, want 3/3", stats.Attempted, stats.Created)
	}
	if store.runs[0].Status != models.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", store.runs[0].Status)
	}
}

func TestRun_FetchFailureIsPartial(t *testing.T) {
	// No page registered: FetchListing returns nil on page 1.
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{}}
	store := newFakeStore()

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Attempted != 0 {
		t.Fatalf("attempted = %d, want 0", stats.Attempted)
	}
	if store.runs[0].Status != models.RunStatusPartial {
		t.Fatalf("run status = %s, want partial", store.runs[0].Status)
	}
}

func TestRun_MidRunFetchFailureKeepsEarlierPages(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 4,
			tourapi.Record{ContentID: "1", ContentTypeID: "32"},
			tourapi.Record{ContentID: "2", ContentTypeID: "32"}),
		// page 2 missing: fetch failure mid-run
	}}
	store := newFakeStore()

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	if stats.Created != 2 {
		t.Fatalf("created = %d, want 2", stats.Created)
	}
	if store.runs[0].Status != models.RunStatusPartial {
		t.Fatalf("run status = %s, want partial", store.runs[0].Status)
	}
	if store.contentWrites != 2 {
		t.Fatalf("content writes = %d, want 2", store.contentWrites)
	}
}

func TestRun_UpsertFailureIsContained(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 2,
			tourapi.Record{ContentID: "1", ContentTypeID: "32"},
			tourapi.Record{ContentID: "2", ContentTypeID: "32"}),
	}}
	store := newFakeStore()
	store.failUpsert = map[int64]error{1: fmt.Errorf("connection reset")}

	stats, err := testImporter(src, store).Run(context.Background(), Selection{AreaCode: 1})
	if err != nil {
		t.Fatalf("a per-item failure must not fail the run: %v", err)
	}
	if stats.Failed != 1 || stats.Created != 1 {
		t.Fatalf("failed/created = %d/%d, want 1/1", stats.Failed, stats.Created)
	}
	if store.runs[0].Status != models.RunStatusCompleted {
		t.Fatalf("run status = %s, want completed", store.runs[0].Status)
	}
}

func TestRun_DryRunWritesNothing(t *testing.T) {
	src := &fakeSource{
		pages: map[int]*tourapi.ListingPage{
			1: page(1, 1, tourapi.Record{ContentID: "100", ContentTypeID: "39", Cat2: "A0502"}),
		},
		details: map[int64]*tourapi.DetailIntro{100: {FirstMenu: "칼국수"}},
	}
	store := newFakeStore()

	imp := testImporter(src, store)
	imp.SetDryRun(true)

	stats, err := imp.Run(context.Background(), Selection{AreaCode: 1, ContentTypeID: 39})
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}

	// Same trajectory as a real run...
	if stats.Attempted != 1 || stats.Created != 1 || stats.DetailsStored != 1 {
		t.Fatalf("attempted/created/details = %d/%d/%d, want 1/1/1",
			stats.Attempted, stats.Created, stats.DetailsStored)
	}
	// ...but nothing written.
	if store.contentWrites != 0 || store.detailWrites != 0 {
		t.Fatalf("dry run wrote %d contents, %d details", store.contentWrites, store.detailWrites)
	}
}

func TestRunAll_ContinuesPastFailures(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 1, tourapi.Record{ContentID: "1", ContentTypeID: "12", Cat2: ""}),
	}}
	store := newFakeStore()

	imp := testImporter(src, store)
	imp.cfg.Import.Areas = []int{1, 2}
	imp.cfg.Import.ContentTypes = []int{12}

	total, err := imp.RunAll(context.Background())
	if err != nil {
		t.Fatalf("run all failed: %v", err)
	}
	// Both selections see the same page fixture.
	if total.Attempted != 2 {
		t.Fatalf("attempted = %d, want 2", total.Attempted)
	}
	if len(store.runs) != 2 {
		t.Fatalf("runs = %d, want 2", len(store.runs))
	}
}

func TestHandleCommand_PauseResume(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{1: page(1, 0)}}
	store := newFakeStore()
	imp := testImporter(src, store)

	ctx := context.Background()
	if err := imp.HandleCommand(ctx, &models.Command{Command: models.CmdPause}, nil); err != nil {
		t.Fatalf("pause failed: %v", err)
	}
	if !imp.IsPaused() {
		t.Fatalf("importer should be paused")
	}

	stats, err := imp.RunAll(ctx)
	if err != nil {
		t.Fatalf("run all failed: %v", err)
	}
	if stats.Attempted != 0 || len(store.runs) != 0 {
		t.Fatalf("paused importer must not run")
	}

	if err := imp.HandleCommand(ctx, &models.Command{Command: models.CmdResume}, nil); err != nil {
		t.Fatalf("resume failed: %v", err)
	}
	if imp.IsPaused() {
		t.Fatalf("importer should be resumed")
	}
}

func TestHandleCommand_ImportSelection(t *testing.T) {
	src := &fakeSource{pages: map[int]*tourapi.ListingPage{
		1: page(1, 1, tourapi.Record{ContentID: "5", ContentTypeID: "32"}),
	}}
	store := newFakeStore()
	imp := testImporter(src, store)

	cmd := &models.Command{Command: models.CmdImportSelection}
	params := &models.CommandParams{AreaCode: 1, ContentTypeID: 32}
	if err := imp.HandleCommand(context.Background(), cmd, params); err != nil {
		t.Fatalf("import_selection failed: %v", err)
	}
	if len(store.runs) != 1 {
		t.Fatalf("runs = %d, want 1", len(store.runs))
	}
	if store.runs[0].Selection != "area=1 ct=32 cat2=" {
		t.Fatalf("selection = %q", store.runs[0].Selection)
	}

	if err := imp.HandleCommand(context.Background(), &models.Command{Command: models.CmdImportSelection}, nil); err == nil {
		t.Fatalf("import_selection without params must fail")
	}
}
