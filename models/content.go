package models

import "time"

// Content is the canonical base row for a place or event. The primary key is
// the externally assigned TourAPI content ID, stable across re-imports.
type Content struct {
	ContentID      int64     `json:"content_id" db:"content_id"`
	ContentTypeID  int       `json:"content_type_id" db:"content_type_id"`
	Title          string    `json:"title" db:"title"`
	Addr1          string    `json:"addr1" db:"addr1"`
	Addr2          string    `json:"addr2" db:"addr2"`
	Cat1           string    `json:"cat1" db:"cat1"`
	Cat2           string    `json:"cat2" db:"cat2"`
	Cat3           string    `json:"cat3" db:"cat3"`
	AreaCode       string    `json:"areacode" db:"areacode"`
	SigunguCode    string    `json:"sigungu_code" db:"sigungu_code"`
	DongRegnCode   string    `json:"dong_region_code" db:"dong_region_code"`
	DongSignguCode string    `json:"dong_sigungu_code" db:"dong_sigungu_code"`
	MapX           float64   `json:"map_x" db:"map_x"`
	MapY           float64   `json:"map_y" db:"map_y"`
	FirstImage     string    `json:"first_image" db:"first_image"`
	FirstImage2    string    `json:"first_image2" db:"first_image2"`
	Zipcode        string    `json:"zipcode" db:"zipcode"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
	UpdatedAt      time.Time `json:"updated_at" db:"updated_at"`
}
