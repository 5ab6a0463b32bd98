package model

import "time"

const (
	SwipeStatusProcessing = "processing"
	SwipeStatusReady      = "ready"
	SwipeStatusFailed     = "failed"
)

// Swipe is a captured ad example: its media lives in R2, its transcript in
// the row. Image URLs are only signed once the swipe is ready.
type Swipe struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	UserID uint64 `gorm:"column:user_id;index;not null" json:"user_id"`
	User   User   `gorm:"foreignKey:UserID;references:ID;constraint:OnDelete:CASCADE" json:"-"`

	Title     string `gorm:"column:title;size:255;not null" json:"title"`
	Platform  string `gorm:"column:platform;size:64;not null;default:''" json:"platform,omitempty"`
	SourceURL string `gorm:"column:source_url;size:1024;not null;default:''" json:"source_url,omitempty"`

	R2Key       string `gorm:"column:r2_key;size:512;not null;default:''" json:"-"`
	ContentType string `gorm:"column:content_type;size:128;not null;default:''" json:"content_type,omitempty"`

	Transcript string `gorm:"column:transcript;type:text" json:"transcript,omitempty"`

	Status string `gorm:"column:status;size:32;index;not null;default:'processing'" json:"status"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// TableName returns the database table name.
func (Swipe) TableName() string {
	return "swipe"
}
