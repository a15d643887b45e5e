package models

import "time"

// DetailKind names one of the seven detail variants. The set is closed: the
// classification table maps (content type, category prefix) onto these and
// nothing else.
type DetailKind string

const (
	KindTouristAttraction DetailKind = "TouristAttraction"
	KindCulture           DetailKind = "Culture"
	KindFestival          DetailKind = "Festival"
	KindCourse            DetailKind = "Course"
	KindLeports           DetailKind = "Leports"
	KindShopping          DetailKind = "Shopping"
	KindFoodStore         DetailKind = "FoodStore"
)

// DetailCommon carries the fields shared by all seven variants. They are
// copied from the listing record at import time because the detail endpoint
// does not return them.
type DetailCommon struct {
	ContentID      int64     `json:"content_id" db:"content_id"`
	ContentTypeID  int       `json:"content_type_id" db:"content_type_id"`
	DongRegnCode   string    `json:"dong_region_code" db:"dong_region_code"`
	DongSignguCode string    `json:"dong_sigungu_code" db:"dong_sigungu_code"`
	Addr1          string    `json:"addr1" db:"addr1"`
	Addr2          string    `json:"addr2" db:"addr2"`
	Zipcode        string    `json:"zipcode" db:"zipcode"`
	FirstImage     string    `json:"first_image" db:"first_image"`
	FirstImage2    string    `json:"first_image2" db:"first_image2"`
	MapX           float64   `json:"map_x" db:"map_x"`
	MapY           float64   `json:"map_y" db:"map_y"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}

// Detail is implemented by the seven variant structs.
type Detail interface {
	Kind() DetailKind
	Common() *DetailCommon
}

type TouristAttraction struct {
	DetailCommon
	InfoCenter string `json:"info_center" db:"info_center"`
	RestDate   string `json:"rest_date" db:"rest_date"`
}

type Culture struct {
	DetailCommon
	InfoCenter string `json:"info_center" db:"info_center"`
	UseFee     string `json:"use_fee" db:"use_fee"`
}

type Festival struct {
	DetailCommon
	EventStartDate string `json:"event_startdate" db:"event_startdate"`
	EventEndDate   string `json:"event_enddate" db:"event_enddate"`
	PlayTime       string `json:"play_time" db:"play_time"`
}

type Course struct {
	DetailCommon
	Distance string `json:"distance" db:"distance"`
	TakeTime string `json:"take_time" db:"take_time"`
}

type Leports struct {
	DetailCommon
	InfoCenter string `json:"info_center" db:"info_center"`
	OpenPeriod string `json:"open_period" db:"open_period"`
}

type Shopping struct {
	DetailCommon
	SaleItem string `json:"sale_item" db:"sale_item"`
	OpenTime string `json:"open_time" db:"open_time"`
}

type FoodStore struct {
	DetailCommon
	KidsFacility string `json:"kids_facility" db:"kids_facility"`
	FirstMenu    string `json:"first_menu" db:"first_menu"`
}

func (d *TouristAttraction) Kind() DetailKind { return KindTouristAttraction }
func (d *Culture) Kind() DetailKind           { return KindCulture }
func (d *Festival) Kind() DetailKind          { return KindFestival }
func (d *Course) Kind() DetailKind            { return KindCourse }
func (d *Leports) Kind() DetailKind           { return KindLeports }
func (d *Shopping) Kind() DetailKind          { return KindShopping }
func (d *FoodStore) Kind() DetailKind         { return KindFoodStore }

func (d *TouristAttraction) Common() *DetailCommon { return &d.DetailCommon }
func (d *Culture) Common() *DetailCommon           { return &d.DetailCommon }
func (d *Festival) Common() *DetailCommon          { return &d.DetailCommon }
func (d *Course) Common() *DetailCommon            { return &d.DetailCommon }
func (d *Leports) Common() *DetailCommon           { return &d.DetailCommon }
func (d *Shopping) Common() *DetailCommon          { return &d.DetailCommon }
func (d *FoodStore) Common() *DetailCommon         { return &d.DetailCommon }
