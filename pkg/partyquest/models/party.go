package models

import (
	"time"
)

// PartyStatus represents a party's lifecycle state
type PartyStatus string

const (
	PartyStatusActive  PartyStatus = "active"
	PartyStatusDeleted PartyStatus = "deleted"
)

// Party represents a group that users apply to join.
// Deletion is a status change; rows persist as history.
type Party struct {
	ID          uint        `gorm:"primarykey" json:"id"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
	Title       string      `gorm:"not null;index" json:"title"`
	Description string      `json:"description"`
	IsPublic    bool        `gorm:"default:true" json:"is_public"`
	Status      PartyStatus `gorm:"type:varchar(20);default:'active';index" json:"status"`

	// Relationships
	Memberships []Membership `gorm:"foreignKey:PartyID" json:"memberships,omitempty"`
	Files       []File       `gorm:"foreignKey:PartyID" json:"files,omitempty"`
}
