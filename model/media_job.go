package model

import "time"

const (
	JobTypeIngestResearchFile = "ingest_research_file"
	JobTypeTranscribeSwipe    = "transcribe_swipe"
)

const (
	JobStatusQueued    = "queued"
	JobStatusRunning   = "running"
	JobStatusDone      = "done"
	JobStatusFailed    = "failed"
	JobStatusCancelled = "cancelled"
)

// MediaJob is asynchronous work performed against a ResearchItem or Swipe.
// ResearchItemID duplicates the value inside Input so cancellation can run
// as a single indexed UPDATE.
type MediaJob struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`

	Type string `gorm:"column:type;size:32;index;not null" json:"type"`

	ResearchItemID string `gorm:"column:research_item_id;size:36;index;not null;default:''" json:"research_item_id,omitempty"`

	// Input is the JSON payload the worker consumes.
	Input string `gorm:"column:input;type:text;not null" json:"input"`

	Status   string `gorm:"column:status;size:32;index;not null" json:"status"`
	Attempt  int    `gorm:"column:attempt;not null;default:0" json:"attempt"`
	ErrorMsg string `gorm:"column:error_msg;type:text" json:"error_msg,omitempty"`

	StartedAt  *time.Time `gorm:"column:started_at" json:"started_at,omitempty"`
	FinishedAt *time.Time `gorm:"column:finished_at" json:"finished_at,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (MediaJob) TableName() string {
	return "media_job"
}
