package importer

import (
	"testing"

	"collectrip/models"
	"collectrip/tourapi"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name          string
		contentTypeID int
		cat2          string
		wantKind      models.DetailKind
		wantOK        bool
	}{
		{"attraction nature", 12, "A0101", models.KindTouristAttraction, true},
		{"attraction history", 12, "A0201", models.KindTouristAttraction, true},
		{"attraction long cat2 truncates", 12, "A0101000", models.KindTouristAttraction, true},
		{"culture", 14, "A0206", models.KindCulture, true},
		{"festival", 15, "A0207", models.KindFestival, true},
		{"performance", 15, "A0208", models.KindFestival, true},
		{"course", 25, "C0115", models.KindCourse, true},
		{"leports", 28, "A0303", models.KindLeports, true},
		{"shopping", 38, "A0401", models.KindShopping, true},
		{"food", 39, "A0502", models.KindFoodStore, true},
		{"lodging has no mapping", 32, "B0201", "", false},
		{"unknown cat2", 12, "Z9999", "", false},
		{"blank cat2", 12, "", "", false},
		{"unknown content type", 99, "A0101", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kind, ok := Classify(tt.contentTypeID, tt.cat2)
			if ok != tt.wantOK {
				t.Fatalf("Classify(%d, %q) ok = %v, want %v", tt.contentTypeID, tt.cat2, ok, tt.wantOK)
			}
			if kind != tt.wantKind {
				t.Fatalf("Classify(%d, %q) = %s, want %s", tt.contentTypeID, tt.cat2, kind, tt.wantKind)
			}
		})
	}
}

func TestClassificationKey(t *testing.T) {
	if got := classificationKey(""); got != " " {
		t.Fatalf("blank cat2 key = %q, want single space", got)
	}
	if got := classificationKey("A0502"); got != "A0502" {
		t.Fatalf("exact key = %q", got)
	}
	if got := classificationKey("A05020100"); got != "A0502" {
		t.Fatalf("long key = %q, want first 5 chars", got)
	}
	if got := classificationKey("A05"); got != "A05" {
		t.Fatalf("short key = %q", got)
	}
}

func TestBuildDetail_MergesListingAndIntro(t *testing.T) {
	rec := &tourapi.Record{
		ContentID:     "2871024",
		ContentTypeID: "39",
		Title:         "순대국집",
		Addr1:         "서울특별시 종로구",
		Addr2:         "12-3",
		Zipcode:       "03045",
		FirstImage:    "http://img.test/a.jpg",
		MapX:          "126.97",
		MapY:          "37.56",
		LDongRegnCd:   "11",
		LDongSignguCd: "110",
	}
	intro := &tourapi.DetailIntro{
		KidsFacility: "0",
		FirstMenu:    "순대국",
		// Fields from other variants must not leak in.
		EventStartDate: "20260101",
		SaleItem:       "기념품",
	}

	d := buildDetail(models.KindFoodStore, rec, intro)
	food, ok := d.(*models.FoodStore)
	if !ok {
		t.Fatalf("expected *models.FoodStore, got %T", d)
	}

	// Shared fields come from the listing record.
	if food.ContentID != 2871024 {
		t.Fatalf("content id = %d", food.ContentID)
	}
	if food.Addr1 != "서울특별시 종로구" || food.Zipcode != "03045" {
		t.Fatalf("shared fields not taken from listing: %+v", food.DetailCommon)
	}
	if food.MapX != 126.97 || food.MapY != 37.56 {
		t.Fatalf("coordinates = %f, %f", food.MapX, food.MapY)
	}

	// Variant fields come from the detail response.
	if food.FirstMenu != "순대국" || food.KidsFacility != "0" {
		t.Fatalf("variant fields = %q, %q", food.FirstMenu, food.KidsFacility)
	}
	if food.Kind() != models.KindFoodStore {
		t.Fatalf("kind = %s", food.Kind())
	}
}

func TestBuildDetail_AllKinds(t *testing.T) {
	rec := &tourapi.Record{ContentID: "1", ContentTypeID: "12"}
	intro := &tourapi.DetailIntro{
		InfoCenter:        "02-120",
		RestDate:          "연중무휴",
		InfoCenterCulture: "02-121",
		UseFee:            "무료",
		EventStartDate:    "20260301",
		EventEndDate:      "20260310",
		PlayTime:          "10:00-18:00",
		Distance:          "5km",
		TakeTime:          "2시간",
		InfoCenterLeports: "02-122",
		OpenPeriod:        "3~11월",
		SaleItem:          "공예품",
		OpenTime:          "09:00",
		KidsFacility:      "1",
		FirstMenu:         "비빔밥",
	}

	cases := []struct {
		kind  models.DetailKind
		check func(models.Detail) bool
	}{
		{models.KindTouristAttraction, func(d models.Detail) bool {
			v := d.(*models.TouristAttraction)
			return v.InfoCenter == "02-120" && v.RestDate == "연중무휴"
		}},
		{models.KindCulture, func(d models.Detail) bool {
			v := d.(*models.Culture)
			return v.InfoCenter == "02-121" && v.UseFee == "무료"
		}},
		{models.KindFestival, func(d models.Detail) bool {
			v := d.(*models.Festival)
			return v.EventStartDate == "20260301" && v.EventEndDate == "20260310" && v.PlayTime == "10:00-18:00"
		}},
		{models.KindCourse, func(d models.Detail) bool {
			v := d.(*models.Course)
			return v.Distance == "5km" && v.TakeTime == "2시간"
		}},
		{models.KindLeports, func(d models.Detail) bool {
			v := d.(*models.Leports)
			return v.InfoCenter == "02-122" && v.OpenPeriod == "3~11월"
		}},
		{models.KindShopping, func(d models.Detail) bool {
			v := d.(*models.Shopping)
			return v.SaleItem == "공예품" && v.OpenTime == "09:00"
		}},
		{models.KindFoodStore, func(d models.Detail) bool {
			v := d.(*models.FoodStore)
			return v.KidsFacility == "1" && v.FirstMenu == "비빔밥"
		}},
	}

	for _, tc := range cases {
		d := buildDetail(tc.kind, rec, intro)
		if d == nil {
			t.Fatalf("buildDetail(%s) returned nil", tc.kind)
		}
		if d.Kind() != tc.kind {
			t.Fatalf("kind = %s, want %s", d.Kind(), tc.kind)
		}
		if !tc.check(d) {
			t.Fatalf("%s: variant fields not carried over: %+v", tc.kind, d)
		}
	}
}
