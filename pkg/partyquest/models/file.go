package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FileType categorizes a file attachment
type FileType string

const (
	FileTypePartyThumbnail FileType = "party_thumbnail"
)

// File is an attachment owned by exactly one party, created alongside the
// party and referenced by views; this service never mutates it afterwards.
type File struct {
	ID           uint      `gorm:"primarykey" json:"id"`
	CreatedAt    time.Time `json:"created_at"`
	PartyID      uint      `gorm:"not null;index" json:"party_id"`
	Path         string    `gorm:"not null" json:"path"`
	OriginalName string    `json:"original_name"`
	StoredName   string    `gorm:"uniqueIndex" json:"stored_name"`
	Size         int64     `json:"size"`
	Type         FileType  `gorm:"type:varchar(30);default:'party_thumbnail'" json:"type"`
}

// BeforeCreate assigns a collision-free stored name.
func (f *File) BeforeCreate(tx *gorm.DB) error {
	if f.StoredName == "" {
		f.StoredName = uuid.NewString()
	}
	return nil
}
