package parties

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"gorm.io/gorm"
)

// searchQuery composes the party search from the filters that are present.
// An absent filter contributes no clause at all; every variant is restricted
// to public, non-deleted parties. The master filter joins membership and
// user rows and requires a master-grade membership whose user carries the
// given nickname.
func searchQuery(db *gorm.DB, master, title *string) *gorm.DB {
	q := db.Model(&models.Party{}).
		Select("parties.*").
		Where("parties.is_public = ?", true).
		Where("parties.status = ?", models.PartyStatusActive)

	if title != nil {
		q = q.Where("parties.title = ?", *title)
	}
	if master != nil {
		q = q.Distinct("parties.*").
			Joins("JOIN memberships ON memberships.party_id = parties.id").
			Joins("JOIN users ON users.id = memberships.user_id").
			Where("memberships.grade = ?", models.GradeMaster).
			Where("users.nickname = ?", *master)
	}
	return q
}

// masterNickname returns the nickname of the party's master, or "" when the
// master row or its user is missing.
func masterNickname(db *gorm.DB, partyID uint) string {
	var membership models.Membership
	err := db.Preload("User").
		Where("party_id = ? AND grade = ?", partyID, models.GradeMaster).
		First(&membership).Error
	if err != nil {
		return ""
	}
	return membership.User.Nickname
}

// activeMemberCount counts accepted members of a party.
func activeMemberCount(db *gorm.DB, partyID uint) int64 {
	var count int64
	db.Model(&models.Membership{}).
		Where("party_id = ? AND status = ?", partyID, models.MembershipActive).
		Count(&count)
	return count
}

// thumbnailPath returns the party's thumbnail path, or "" when none exists.
func thumbnailPath(db *gorm.DB, partyID uint) string {
	var file models.File
	err := db.Where("party_id = ? AND type = ?", partyID, models.FileTypePartyThumbnail).
		First(&file).Error
	if err != nil {
		return ""
	}
	return file.Path
}

// Search returns public, non-deleted parties matching the optional filters
// @Summary Search parties
// @Description Search public parties by exact title and/or master nickname; omitted filters match everything
// @Tags parties
// @Produce json
// @Param master query string false "Master's nickname"
// @Param title query string false "Exact party title"
// @Success 200 {array} PartyResponse
// @Security BearerAuth
// @Router /parties [get]
func (h *Handler) Search(c *gin.Context) {
	var master, title *string
	if v, ok := c.GetQuery("master"); ok {
		master = &v
	}
	if v, ok := c.GetQuery("title"); ok {
		title = &v
	}

	var matches []models.Party
	if err := searchQuery(h.db, master, title).Find(&matches).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search parties"})
		return
	}

	results := make([]PartyResponse, len(matches))
	for i, party := range matches {
		results[i] = PartyResponse{
			ID:            party.ID,
			Title:         party.Title,
			Description:   party.Description,
			Master:        masterNickname(h.db, party.ID),
			MemberCount:   activeMemberCount(h.db, party.ID),
			ThumbnailPath: thumbnailPath(h.db, party.ID),
		}
	}

	c.JSON(http.StatusOK, results)
}
