package importer

import (
	"collectrip/models"
	"collectrip/tourapi"
)

// contentTypeMapping selects a detail variant from (content type id, cat2
// prefix). Process-wide constant lookup data; maintained with the output of
// the -categories discovery command. Content types without an entry (e.g. 32,
// lodging) import as base content only.
var contentTypeMapping = map[int]map[string]models.DetailKind{
	12: { // tourist attractions
		"A0101": models.KindTouristAttraction, // nature
		"A0201": models.KindTouristAttraction, // history
		"A0202": models.KindTouristAttraction, // recreation
		"A0203": models.KindTouristAttraction, // experience
	},
	14: { // cultural facilities
		"A0206": models.KindCulture,
	},
	15: { // festivals and performances
		"A0207": models.KindFestival,
		"A0208": models.KindFestival,
	},
	25: { // travel courses
		"C0112": models.KindCourse,
		"C0113": models.KindCourse,
		"C0114": models.KindCourse,
		"C0115": models.KindCourse,
		"C0116": models.KindCourse,
		"C0117": models.KindCourse,
	},
	28: { // leisure sports
		"A0302": models.KindLeports,
		"A0303": models.KindLeports,
		"A0304": models.KindLeports,
		"A0305": models.KindLeports,
	},
	38: { // shopping
		"A0401": models.KindShopping,
	},
	39: { // food
		"A0502": models.KindFoodStore,
	},
}

// classificationKey is the first 5 characters of cat2, or a single blank when
// cat2 is absent.
func classificationKey(cat2 string) string {
	if cat2 == "" {
		return " "
	}
	if len(cat2) > 5 {
		return cat2[:5]
	}
	return cat2
}

// Classify returns the detail variant for a listing record, or false when the
// mapping table has no entry. A miss is not an error: the base content row
// stands alone.
func Classify(contentTypeID int, cat2 string) (models.DetailKind, bool) {
	byCat, ok := contentTypeMapping[contentTypeID]
	if !ok {
		return "", false
	}
	kind, ok := byCat[classificationKey(cat2)]
	return kind, ok
}

// buildDetail merges one classified item: shared fields come from the listing
// record (the detail endpoint does not return them), variant fields from the
// detail response.
func buildDetail(kind models.DetailKind, rec *tourapi.Record, intro *tourapi.DetailIntro) models.Detail {
	contentID, _ := rec.ContentIDInt()
	contentTypeID, _ := rec.ContentTypeIDInt()

	common := models.DetailCommon{
		ContentID:      contentID,
		ContentTypeID:  contentTypeID,
		DongRegnCode:   rec.LDongRegnCd,
		DongSignguCode: rec.LDongSignguCd,
		Addr1:          rec.Addr1,
		Addr2:          rec.Addr2,
		Zipcode:        rec.Zipcode,
		FirstImage:     rec.FirstImage,
		FirstImage2:    rec.FirstImage2,
		MapX:           rec.MapXFloat(),
		MapY:           rec.MapYFloat(),
	}

	switch kind {
	case models.KindTouristAttraction:
		return &models.TouristAttraction{
			DetailCommon: common,
			InfoCenter:   intro.InfoCenter,
			RestDate:     intro.RestDate,
		}
	case models.KindCulture:
		return &models.Culture{
			DetailCommon: common,
			InfoCenter:   intro.InfoCenterCulture,
			UseFee:       intro.UseFee,
		}
	case models.KindFestival:
		return &models.Festival{
			DetailCommon:   common,
			EventStartDate: intro.EventStartDate,
			EventEndDate:   intro.EventEndDate,
			PlayTime:       intro.PlayTime,
		}
	case models.KindCourse:
		return &models.Course{
			DetailCommon: common,
			Distance:     intro.Distance,
			TakeTime:     intro.TakeTime,
		}
	case models.KindLeports:
		return &models.Leports{
			DetailCommon: common,
			InfoCenter:   intro.InfoCenterLeports,
			OpenPeriod:   intro.OpenPeriod,
		}
	case models.KindShopping:
		return &models.Shopping{
			DetailCommon: common,
			SaleItem:     intro.SaleItem,
			OpenTime:     intro.OpenTime,
		}
	case models.KindFoodStore:
		return &models.FoodStore{
			DetailCommon: common,
			KidsFacility: intro.KidsFacility,
			FirstMenu:    intro.FirstMenu,
		}
	}
	return nil
}
