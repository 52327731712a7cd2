package models

import (
	"time"
)

// MemberGrade represents a user's authorization tier within a party
type MemberGrade string

const (
	GradeNone   MemberGrade = "none"
	GradeMember MemberGrade = "member"
	GradeMaster MemberGrade = "master"
)

// MembershipStatus represents the state of a membership row
type MembershipStatus string

const (
	// MembershipApplied means the user has applied and awaits acceptance
	MembershipApplied MembershipStatus = "applied"
	// MembershipActive means the user is an accepted member
	MembershipActive MembershipStatus = "active"
	// MembershipWithdrawn means the user withdrew; the row stays as history
	// and is reactivated if the user applies again
	MembershipWithdrawn MembershipStatus = "withdrawn"
)

// Membership links one user to one party. It is the only mutable join
// entity: created on party creation (master row) or first application,
// mutated on withdrawal, reapplication, and acceptance, never deleted.
// The unique (user, party) index backstops concurrent applies.
type Membership struct {
	ID         uint             `gorm:"primarykey" json:"id"`
	CreatedAt  time.Time        `json:"created_at"`
	UpdatedAt  time.Time        `json:"updated_at"`
	UserID     uint             `gorm:"not null;uniqueIndex:idx_user_party" json:"user_id"`
	PartyID    uint             `gorm:"not null;uniqueIndex:idx_user_party" json:"party_id"`
	Status     MembershipStatus `gorm:"type:varchar(20);default:'applied';index" json:"status"`
	Grade      MemberGrade      `gorm:"type:varchar(20);default:'none'" json:"grade"`
	PartyAdmin bool             `gorm:"default:false" json:"party_admin"`

	// Relationships
	User  User  `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Party Party `gorm:"foreignKey:PartyID" json:"party,omitempty"`
}

// Registered reports whether the row represents an accepted, active member.
func (m *Membership) Registered() bool {
	return m.Status == MembershipActive
}
