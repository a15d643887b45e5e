package tourapi

import (
	"bytes"
	"encoding/json"
	"strconv"
)

// envelope is the outer response shape shared by every TourAPI endpoint.
type envelope struct {
	Response struct {
		Header struct {
			ResultCode string `json:"resultCode"`
			ResultMsg  string `json:"resultMsg"`
		} `json:"header"`
		Body json.RawMessage `json:"body"`
	} `json:"response"`
}

// ListingPage is one page of areaBasedList2 results.
type ListingPage struct {
	NumOfRows  int      `json:"numOfRows"`
	PageNo     int      `json:"pageNo"`
	TotalCount int      `json:"totalCount"`
	Records    []Record `json:"-"`
}

// HasMore reports whether another page exists after this one.
func (p *ListingPage) HasMore() bool {
	return p.PageNo*p.NumOfRows < p.TotalCount
}

// Record is one untyped row from the listing endpoint. TourAPI serializes
// every field as a string.
type Record struct {
	ContentID      string `json:"contentid"`
	ContentTypeID  string `json:"contenttypeid"`
	Title          string `json:"title"`
	Addr1          string `json:"addr1"`
	Addr2          string `json:"addr2"`
	AreaCode       string `json:"areacode"`
	SigunguCode    string `json:"sigungucode"`
	Cat1           string `json:"cat1"`
	Cat2           string `json:"cat2"`
	Cat3           string `json:"cat3"`
	MapX           string `json:"mapx"`
	MapY           string `json:"mapy"`
	FirstImage     string `json:"firstimage"`
	FirstImage2    string `json:"firstimage2"`
	Zipcode        string `json:"zipcode"`
	LDongRegnCd    string `json:"lDongRegnCd"`
	LDongSignguCd  string `json:"lDongSignguCd"`
	Tel            string `json:"tel"`
	ModifiedTime   string `json:"modifiedtime"`
}

// ContentIDInt parses the content identifier; ok is false when it is missing
// or not numeric.
func (r *Record) ContentIDInt() (int64, bool) {
	id, err := strconv.ParseInt(r.ContentID, 10, 64)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r *Record) ContentTypeIDInt() (int, bool) {
	id, err := strconv.Atoi(r.ContentTypeID)
	if err != nil || id <= 0 {
		return 0, false
	}
	return id, true
}

func (r *Record) MapXFloat() float64 { return parseFloat(r.MapX) }
func (r *Record) MapYFloat() float64 { return parseFloat(r.MapY) }

func parseFloat(s string) float64 {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}

// DetailIntro is one detailIntro2 row. The endpoint returns a different field
// subset per content type; unused fields stay empty.
type DetailIntro struct {
	ContentID     string `json:"contentid"`
	ContentTypeID string `json:"contenttypeid"`

	// contenttypeid=12 (tourist attraction)
	InfoCenter string `json:"infocenter"`
	RestDate   string `json:"restdate"`

	// contenttypeid=14 (culture)
	InfoCenterCulture string `json:"infocenterculture"`
	UseFee            string `json:"usefee"`

	// contenttypeid=15 (festival)
	EventStartDate string `json:"eventstartdate"`
	EventEndDate   string `json:"eventenddate"`
	PlayTime       string `json:"playtime"`

	// contenttypeid=25 (course)
	Distance string `json:"distance"`
	TakeTime string `json:"taketime"`

	// contenttypeid=28 (leports)
	InfoCenterLeports string `json:"infocenterleports"`
	OpenPeriod        string `json:"openperiod"`

	// contenttypeid=38 (shopping)
	SaleItem string `json:"saleitem"`
	OpenTime string `json:"opentime"`

	// contenttypeid=39 (food)
	FirstMenu    string `json:"firstmenu"`
	KidsFacility string `json:"kidsfacility"`
}

// CategoryCode is one {code, name} pair from categoryCode2.
type CategoryCode struct {
	Code string `json:"code"`
	Name string `json:"name"`
}

// itemArray normalizes the "items" field, which TourAPI serializes as an
// empty string when no rows matched, and whose "item" member may be either a
// single object or an array.
func itemArray(items json.RawMessage) ([]json.RawMessage, error) {
	trimmed := bytes.TrimSpace(items)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte(`""`)) || bytes.Equal(trimmed, []byte("null")) {
		return nil, nil
	}

	var wrapper struct {
		Item json.RawMessage `json:"item"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}

	inner := bytes.TrimSpace(wrapper.Item)
	if len(inner) == 0 || bytes.Equal(inner, []byte("null")) {
		return nil, nil
	}
	if inner[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(inner, &list); err != nil {
			return nil, err
		}
		return list, nil
	}

	return []json.RawMessage{inner}, nil
}
