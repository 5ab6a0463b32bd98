package model

import "time"

// ResearchFile is one physical uploaded file. It may be referenced by zero
// or more ResearchItems; the blob in R2 lives exactly as long as the row.
//
// Files carry no owner: the unguessable UUID id is the capability, and any
// authenticated user holding an id may attach the file to their own items
// and read it through them. Items, not files, are ownership-scoped.
type ResearchFile struct {
	ID string `gorm:"primaryKey;size:36" json:"id"`

	FileName    string `gorm:"column:file_name;size:255;not null" json:"file_name"`
	ContentType string `gorm:"column:content_type;size:128;not null;default:''" json:"content_type"`
	Size        int64  `gorm:"column:size;not null;default:0" json:"size"`

	// R2Key is empty while no blob has been stored for this file yet
	// (for example before its ingest job completes).
	R2Key string `gorm:"column:r2_key;size:512;not null;default:''" json:"r2_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
}

// TableName returns the database table name.
func (ResearchFile) TableName() string {
	return "research_file"
}
