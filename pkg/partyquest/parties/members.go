package parties

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partyquest/partyquest/pkg/partyquest/apperr"
	"github.com/partyquest/partyquest/pkg/partyquest/auth"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"gorm.io/gorm"
)

// ApplicationResponse identifies the party and the membership row an
// application landed on
type ApplicationResponse struct {
	PartyID      uint   `json:"party_id"`
	MembershipID uint   `json:"membership_id"`
	Status       string `json:"status"`
}

// AcceptRequest carries the grade an applicant is promoted to
type AcceptRequest struct {
	Grade string `json:"grade" binding:"omitempty,oneof=member master"`
}

// MemberResponse represents a party member in API responses
type MemberResponse struct {
	UserID        uint   `json:"user_id"`
	Nickname      string `json:"nickname"`
	Grade         string `json:"grade"`
	Registered    bool   `json:"registered"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// MembershipResponse represents one of the current user's parties
type MembershipResponse struct {
	PartyID       uint   `json:"party_id"`
	Title         string `json:"title"`
	Grade         string `json:"grade"`
	Status        string `json:"status"`
	Master        string `json:"master"`
	MemberCount   int64  `json:"member_count"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// Apply submits a membership application for the current user
// @Summary Apply to a party
// @Description Apply to join a party; a withdrawn application is reactivated in place
// @Tags parties
// @Produce json
// @Param id path int true "Party ID"
// @Success 201 {object} ApplicationResponse
// @Failure 404 {object} map[string]interface{} "User or party not found"
// @Failure 409 {object} map[string]interface{} "Already applied"
// @Security BearerAuth
// @Router /parties/{id}/applications [post]
func (h *Handler) Apply(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	partyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid party ID"))
		return
	}

	var membership models.Membership
	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		var user models.User
		if err := tx.First(&user, userID).Error; err != nil {
			return apperr.ErrUserNotFound
		}

		var party models.Party
		if err := tx.Where("status = ?", models.PartyStatusActive).First(&party, partyID).Error; err != nil {
			return apperr.ErrPartyNotFound
		}

		err := tx.Where("user_id = ? AND party_id = ?", user.ID, party.ID).First(&membership).Error
		switch {
		case err == nil:
			if membership.Status != models.MembershipWithdrawn {
				return apperr.ErrDuplicateApplication
			}
			// Reapplication reuses the withdrawn row. A grade above none
			// means the user was accepted before withdrawing, so active
			// status resumes without a fresh acceptance.
			if membership.Grade != models.GradeNone {
				membership.Status = models.MembershipActive
			} else {
				membership.Status = models.MembershipApplied
			}
			return tx.Save(&membership).Error
		case errors.Is(err, gorm.ErrRecordNotFound):
			membership = models.Membership{
				UserID:  user.ID,
				PartyID: party.ID,
				Status:  models.MembershipApplied,
				Grade:   models.GradeNone,
			}
			if err := tx.Create(&membership).Error; err != nil {
				// A concurrent apply can win the check-then-act race; the
				// unique (user, party) index turns the loser into a conflict.
				return apperr.ErrDuplicateApplication
			}
			return nil
		default:
			return err
		}
	})

	if txErr != nil {
		apperr.Abort(c, txErr)
		return
	}

	c.JSON(http.StatusCreated, ApplicationResponse{
		PartyID:      membership.PartyID,
		MembershipID: membership.ID,
		Status:       string(membership.Status),
	})
}

// Withdraw marks the current user's membership as withdrawn
// @Summary Withdraw from a party
// @Description Withdraw an application or membership; the row is kept and can be reactivated by reapplying
// @Tags parties
// @Produce json
// @Param id path int true "Party ID"
// @Success 204 "Withdrawn"
// @Failure 400 {object} map[string]interface{} "No membership to withdraw"
// @Security BearerAuth
// @Router /parties/{id}/applications [delete]
func (h *Handler) Withdraw(c *gin.Context) {
	userID, _ := auth.GetUserID(c)
	partyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid party ID"))
		return
	}

	var membership models.Membership
	if err := h.db.Where("user_id = ? AND party_id = ?", userID, partyID).First(&membership).Error; err != nil {
		apperr.Abort(c, apperr.ErrNotAPartyMember)
		return
	}
	if membership.Status == models.MembershipWithdrawn {
		apperr.Abort(c, apperr.ErrNotAPartyMember)
		return
	}

	membership.Status = models.MembershipWithdrawn
	if err := h.db.Save(&membership).Error; err != nil {
		apperr.Abort(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

// Accept promotes an applicant to an accepted member
// @Summary Accept an applicant
// @Description Accept a user's application; the acting user must hold admin rights or master grade in the party
// @Tags parties
// @Accept json
// @Produce json
// @Param id path int true "Party ID"
// @Param userId path int true "Applicant's user ID"
// @Param request body AcceptRequest false "Target grade (defaults to member)"
// @Success 204 "Accepted"
// @Failure 400 {object} map[string]interface{} "Applicant never applied"
// @Failure 403 {object} map[string]interface{} "Acting user is not an admin of the party"
// @Failure 404 {object} map[string]interface{} "Applicant not found"
// @Security BearerAuth
// @Router /parties/{id}/applications/{userId} [put]
func (h *Handler) Accept(c *gin.Context) {
	actingID, _ := auth.GetUserID(c)
	partyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid party ID"))
		return
	}
	applicantID, err := strconv.ParseUint(c.Param("userId"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid user ID"))
		return
	}

	// Body is optional; an omitted grade promotes to member.
	var req AcceptRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			apperr.Abort(c, apperr.BadRequest(err.Error()))
			return
		}
	}
	grade := models.MemberGrade(req.Grade)
	if grade == "" {
		grade = models.GradeMember
	}

	txErr := h.db.Transaction(func(tx *gorm.DB) error {
		// Check order is part of the contract: applicant existence, then
		// application record, then the acting user's authority.
		var applicant models.User
		if err := tx.First(&applicant, applicantID).Error; err != nil {
			return apperr.ErrUserNotFound
		}

		var application models.Membership
		if err := tx.Where("user_id = ? AND party_id = ?", applicantID, partyID).
			First(&application).Error; err != nil {
			return apperr.ErrNotAPartyMember
		}

		var actor models.Membership
		if err := tx.Where("user_id = ? AND party_id = ? AND status = ?", actingID, partyID, models.MembershipActive).
			Where("party_admin = ? OR grade = ?", true, models.GradeMaster).
			First(&actor).Error; err != nil {
			return apperr.ErrAccessDenied
		}

		updates := map[string]interface{}{
			"status": models.MembershipActive,
			"grade":  grade,
		}
		// A master-grade row always carries the admin flag.
		if grade == models.GradeMaster {
			updates["party_admin"] = true
		}
		return tx.Model(&models.Membership{}).
			Where("id = ?", application.ID).
			Updates(updates).Error
	})

	if txErr != nil {
		apperr.Abort(c, txErr)
		return
	}

	c.Status(http.StatusNoContent)
}

// ListMembers returns a party's members filtered to a grade
// @Summary List party members by grade
// @Description List members of a party holding the requested grade, applicants included
// @Tags parties
// @Produce json
// @Param id path int true "Party ID"
// @Param grade query string true "Member grade" Enums(none, member, master)
// @Success 200 {array} MemberResponse
// @Failure 404 {object} map[string]interface{} "Party not found"
// @Security BearerAuth
// @Router /parties/{id}/members [get]
func (h *Handler) ListMembers(c *gin.Context) {
	partyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid party ID"))
		return
	}

	grade := models.MemberGrade(c.Query("grade"))
	switch grade {
	case models.GradeNone, models.GradeMember, models.GradeMaster:
	default:
		apperr.Abort(c, apperr.BadRequest("invalid grade"))
		return
	}

	var party models.Party
	if err := h.db.First(&party, partyID).Error; err != nil {
		apperr.Abort(c, apperr.ErrPartyNotFound)
		return
	}

	var memberships []models.Membership
	if err := h.db.Preload("User").
		Where("party_id = ? AND grade = ?", party.ID, grade).
		Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch members"})
		return
	}

	thumbnail := thumbnailPath(h.db, party.ID)
	members := make([]MemberResponse, len(memberships))
	for i, m := range memberships {
		members[i] = MemberResponse{
			UserID:        m.UserID,
			Nickname:      m.User.Nickname,
			Grade:         string(m.Grade),
			Registered:    m.Registered(),
			ThumbnailPath: thumbnail,
		}
	}

	c.JSON(http.StatusOK, members)
}

// MyParties returns every party the current user is linked to
// @Summary List my parties
// @Description List the current user's memberships in any state with aggregate party info
// @Tags parties
// @Produce json
// @Success 200 {array} MembershipResponse
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /parties/mine [get]
func (h *Handler) MyParties(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		apperr.Abort(c, apperr.ErrUserNotFound)
		return
	}

	var memberships []models.Membership
	if err := h.db.Preload("Party").Where("user_id = ?", user.ID).Find(&memberships).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch memberships"})
		return
	}

	results := make([]MembershipResponse, len(memberships))
	for i, m := range memberships {
		results[i] = MembershipResponse{
			PartyID:       m.PartyID,
			Title:         m.Party.Title,
			Grade:         string(m.Grade),
			Status:        string(m.Status),
			Master:        masterNickname(h.db, m.PartyID),
			MemberCount:   activeMemberCount(h.db, m.PartyID),
			ThumbnailPath: thumbnailPath(h.db, m.PartyID),
		}
	}

	c.JSON(http.StatusOK, results)
}

// RegisterMemberRoutes registers membership lifecycle routes
func (h *Handler) RegisterMemberRoutes(rg *gin.RouterGroup) {
	rg.POST("/:id/applications", h.Apply)
	rg.DELETE("/:id/applications", h.Withdraw)
	rg.PUT("/:id/applications/:userId", h.Accept)
	rg.GET("/:id/members", h.ListMembers)
}
