package parties

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/partyquest/partyquest/pkg/partyquest/apperr"
	"github.com/partyquest/partyquest/pkg/partyquest/auth"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"gorm.io/gorm"
)

// defaultThumbnailPath is used when the creator supplies no thumbnail.
const defaultThumbnailPath = "/thumbnails/default.png"

// Handler handles party-related requests
type Handler struct {
	db *gorm.DB
}

// NewHandler creates a new parties handler
func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db}
}

// ThumbnailRequest carries optional thumbnail metadata for a new party
type ThumbnailRequest struct {
	Path         string `json:"path"`
	OriginalName string `json:"original_name"`
	Size         int64  `json:"size"`
}

// CreatePartyRequest represents the request to create a party
type CreatePartyRequest struct {
	Title       string            `json:"title" binding:"required"`
	Description string            `json:"description"`
	IsPublic    *bool             `json:"is_public"`
	Thumbnail   *ThumbnailRequest `json:"thumbnail"`
}

// PartyResponse represents a party in API responses
type PartyResponse struct {
	ID            uint   `json:"id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	Master        string `json:"master"`
	MemberCount   int64  `json:"member_count"`
	ThumbnailPath string `json:"thumbnail_path"`
}

// Create creates a new party with the current user as master
// @Summary Create a party
// @Description Create a party; the creator becomes its master and a thumbnail record is attached
// @Tags parties
// @Accept json
// @Produce json
// @Param request body CreatePartyRequest true "Party details"
// @Success 201 {object} PartyResponse
// @Failure 400 {object} map[string]string "Validation error"
// @Failure 404 {object} map[string]interface{} "User not found"
// @Security BearerAuth
// @Router /parties [post]
func (h *Handler) Create(c *gin.Context) {
	userID, _ := auth.GetUserID(c)

	var req CreatePartyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		apperr.Abort(c, apperr.BadRequest(err.Error()))
		return
	}

	var user models.User
	if err := h.db.First(&user, userID).Error; err != nil {
		apperr.Abort(c, apperr.ErrUserNotFound)
		return
	}

	isPublic := true
	if req.IsPublic != nil {
		isPublic = *req.IsPublic
	}

	thumbnail := models.File{
		Path:         defaultThumbnailPath,
		OriginalName: "default.png",
		Type:         models.FileTypePartyThumbnail,
	}
	if req.Thumbnail != nil {
		thumbnail.Path = req.Thumbnail.Path
		thumbnail.OriginalName = req.Thumbnail.OriginalName
		thumbnail.Size = req.Thumbnail.Size
	}

	// Party, master membership, and thumbnail commit together or not at all.
	var party models.Party
	err := h.db.Transaction(func(tx *gorm.DB) error {
		party = models.Party{
			Title:       req.Title,
			Description: req.Description,
			IsPublic:    isPublic,
			Status:      models.PartyStatusActive,
		}
		if err := tx.Create(&party).Error; err != nil {
			return err
		}

		membership := models.Membership{
			UserID:     user.ID,
			PartyID:    party.ID,
			Status:     models.MembershipActive,
			Grade:      models.GradeMaster,
			PartyAdmin: true,
		}
		if err := tx.Create(&membership).Error; err != nil {
			return err
		}

		thumbnail.PartyID = party.ID
		return tx.Create(&thumbnail).Error
	})

	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create party"})
		return
	}

	c.JSON(http.StatusCreated, PartyResponse{
		ID:            party.ID,
		Title:         party.Title,
		Description:   party.Description,
		Master:        user.Nickname,
		MemberCount:   1,
		ThumbnailPath: thumbnail.Path,
	})
}

// Get returns a specific party
// @Summary Get a party
// @Description Get details of a single party
// @Tags parties
// @Produce json
// @Param id path int true "Party ID"
// @Success 200 {object} PartyResponse
// @Failure 404 {object} map[string]interface{} "Party not found"
// @Security BearerAuth
// @Router /parties/{id} [get]
func (h *Handler) Get(c *gin.Context) {
	partyID, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil {
		apperr.Abort(c, apperr.BadRequest("invalid party ID"))
		return
	}

	var party models.Party
	if err := h.db.Where("status = ?", models.PartyStatusActive).First(&party, partyID).Error; err != nil {
		apperr.Abort(c, apperr.ErrPartyNotFound)
		return
	}

	c.JSON(http.StatusOK, PartyResponse{
		ID:            party.ID,
		Title:         party.Title,
		Description:   party.Description,
		Master:        masterNickname(h.db, party.ID),
		MemberCount:   activeMemberCount(h.db, party.ID),
		ThumbnailPath: thumbnailPath(h.db, party.ID),
	})
}

// RegisterRoutes registers party routes
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("", h.Search)
	rg.POST("", h.Create)
	rg.GET("/mine", h.MyParties)
	rg.GET("/:id", h.Get)
}
