package admin

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partyquest/partyquest/pkg/partyquest/apperr"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"gorm.io/gorm"
)

// Handler handles admin requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new admin handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// UserResponse represents user data in admin responses
type UserResponse struct {
	ID              uint   `json:"id"`
	Nickname        string `json:"nickname"`
	Email           string `json:"email"`
	SystemRole      string `json:"system_role"`
	CreatedAt       string `json:"created_at"`
	MembershipCount int64  `json:"membership_count"`
	MasteredParties int64  `json:"mastered_parties"`
}

// StatsResponse represents system statistics
type StatsResponse struct {
	TotalUsers          int64 `json:"total_users"`
	TotalParties        int64 `json:"total_parties"`
	ActiveParties       int64 `json:"active_parties"`
	TotalMemberships    int64 `json:"total_memberships"`
	PendingApplications int64 `json:"pending_applications"`
	AdminUsers          int64 `json:"admin_users"`
}

// DeletePartiesRequest lists the parties to soft-delete
type DeletePartiesRequest struct {
	PartyIDs []uint `json:"party_ids" binding:"required,min=1"`
}

// DeletePartyResult reports the outcome for one requested party ID
type DeletePartyResult struct {
	PartyID uint `json:"party_id"`
	Deleted bool `json:"deleted"`
}

// ListUsers returns all users (admin only)
// @Summary List users
// @Description List all users with membership counts; supports search and role filters
// @Tags admin
// @Produce json
// @Param q query string false "Search by nickname or email"
// @Param role query string false "Filter by system role"
// @Success 200 {array} UserResponse
// @Security BearerAuth
// @Router /admin/users [get]
func (h *Handler) ListUsers(c *gin.Context) {
	var users []models.User

	query := h.db.Order("created_at DESC")

	// Optional search by nickname or email
	if search := c.Query("q"); search != "" {
		query = query.Where("nickname LIKE ? OR email LIKE ?", "%"+search+"%", "%"+search+"%")
	}

	// Optional filter by role
	if role := c.Query("role"); role != "" {
		query = query.Where("system_role = ?", role)
	}

	if err := query.Find(&users).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to fetch users"})
		return
	}

	responses := make([]UserResponse, len(users))
	for i, user := range users {
		responses[i] = h.userResponse(user)
	}

	c.JSON(http.StatusOK, responses)
}

// GetUser returns a single user by ID (admin only)
// @Summary Get a user
// @Description Get one user with membership counts
// @Tags admin
// @Produce json
// @Param id path int true "User ID"
// @Success 200 {object} UserResponse
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /admin/users/{id} [get]
func (h *Handler) GetUser(c *gin.Context) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid user ID"))
		return
	}

	var user models.User
	if err := h.db.First(&user, id).Error; err != nil {
		apperr.Abort(c, apperr.ErrUserNotFound)
		return
	}

	c.JSON(http.StatusOK, h.userResponse(user))
}

func (h *Handler) userResponse(user models.User) UserResponse {
	var membershipCount, masteredParties int64
	h.db.Model(&models.Membership{}).Where("user_id = ?", user.ID).Count(&membershipCount)
	h.db.Model(&models.Membership{}).
		Where("user_id = ? AND grade = ?", user.ID, models.GradeMaster).
		Count(&masteredParties)

	return UserResponse{
		ID:              user.ID,
		Nickname:        user.Nickname,
		Email:           user.Email,
		SystemRole:      string(user.SystemRole),
		CreatedAt:       user.CreatedAt.Format("2006-01-02T15:04:05Z"),
		MembershipCount: membershipCount,
		MasteredParties: masteredParties,
	}
}

// DeleteParties soft-deletes a batch of parties (admin only)
// @Summary Delete parties
// @Description Soft-delete the given parties; unknown IDs are skipped and reported per ID
// @Tags admin
// @Accept json
// @Produce json
// @Param request body DeletePartiesRequest true "Party IDs"
// @Success 200 {array} DeletePartyResult
// @Failure 400 {object} map[string]string "Validation error"
// @Security BearerAuth
// @Router /admin/parties [delete]
func (h *Handler) DeleteParties(c *gin.Context) {
	var req DeletePartiesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	// Each ID is an independent write; a missing party is reported in its
	// slot instead of failing the batch. Already-applied deletes stay
	// applied if a later write fails.
	results := make([]DeletePartyResult, len(req.PartyIDs))
	for i, partyID := range req.PartyIDs {
		results[i] = DeletePartyResult{PartyID: partyID}

		var party models.Party
		if err := h.db.First(&party, partyID).Error; err != nil {
			continue
		}

		party.Status = models.PartyStatusDeleted
		if err := h.db.Save(&party).Error; err != nil {
			apperr.Abort(c, err)
			return
		}
		results[i].Deleted = true
	}

	c.JSON(http.StatusOK, results)
}

// GetStats returns system-wide statistics (admin only)
// @Summary System statistics
// @Description Totals for users, parties, and memberships
// @Tags admin
// @Produce json
// @Success 200 {object} StatsResponse
// @Security BearerAuth
// @Router /admin/stats [get]
func (h *Handler) GetStats(c *gin.Context) {
	var stats StatsResponse

	h.db.Model(&models.User{}).Count(&stats.TotalUsers)
	h.db.Model(&models.Party{}).Count(&stats.TotalParties)
	h.db.Model(&models.Party{}).Where("status = ?", models.PartyStatusActive).Count(&stats.ActiveParties)
	h.db.Model(&models.Membership{}).Count(&stats.TotalMemberships)
	h.db.Model(&models.Membership{}).Where("status = ?", models.MembershipApplied).Count(&stats.PendingApplications)
	h.db.Model(&models.User{}).Where("system_role = ?", "admin").Count(&stats.AdminUsers)

	c.JSON(http.StatusOK, stats)
}

// RegisterRoutes registers admin routes on the given router group
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/stats", h.GetStats)
	rg.GET("/users", h.ListUsers)
	rg.GET("/users/:id", h.GetUser)
	rg.DELETE("/parties", h.DeleteParties)
}
