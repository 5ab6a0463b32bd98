package model

import "time"

const (
	ResearchItemStatusProcessing = "processing"
	ResearchItemStatusReady      = "ready"
	ResearchItemStatusFailed     = "failed"
)

// ResearchItem is one piece of curated research content, optionally attached
// to a ResearchFile. Several items may share one file.
type ResearchItem struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Title string `gorm:"column:title;size:255;not null" json:"title"`
	Notes string `gorm:"column:notes;type:text" json:"notes,omitempty"`

	FileID *string       `gorm:"column:file_id;size:36;index" json:"file_id,omitempty"`
	File   *ResearchFile `gorm:"foreignKey:FileID;references:ID" json:"file,omitempty"`

	Status string `gorm:"column:status;size:32;not null;default:'processing'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (ResearchItem) TableName() string {
	return "research_item"
}
