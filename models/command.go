package models

import (
	"encoding/json"
	"time"
)

type CommandType string

const (
	CmdImportNow       CommandType = "import_now"
	CmdImportSelection CommandType = "import_selection"
	CmdPause           CommandType = "pause"
	CmdResume          CommandType = "resume"
	CmdRunBadges       CommandType = "run_badges"
	CmdRunPhotos       CommandType = "run_photos"
)

type Command struct {
	ID          int64           `json:"id" db:"id"`
	Command     CommandType     `json:"command" db:"command"`
	Params      json.RawMessage `json:"params" db:"params"`
	CreatedAt   time.Time       `json:"created_at" db:"created_at"`
	ProcessedAt *time.Time      `json:"processed_at" db:"processed_at"`
}

type CommandParams struct {
	AreaCode      int    `json:"area,omitempty"`
	ContentTypeID int    `json:"content_type_id,omitempty"`
	Cat2          string `json:"cat2,omitempty"`
}
