package parties

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/partyquest/partyquest/pkg/partyquest/auth"
	"github.com/partyquest/partyquest/pkg/partyquest/models"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	models.AutoMigrate(db)
	return db
}

func setupTestRouter(db *gorm.DB) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	handler := NewHandler(db)

	parties := r.Group("/parties")
	parties.Use(auth.AuthMiddleware())
	handler.RegisterRoutes(parties)
	handler.RegisterMemberRoutes(parties)

	return r
}

func createTestUser(t *testing.T, db *gorm.DB, nickname string) models.User {
	hash, _ := auth.HashPassword("password123")
	user := models.User{
		Nickname:     nickname,
		Email:        nickname + "@example.com",
		PasswordHash: hash,
		SystemRole:   models.SystemRoleUser,
	}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("Failed to create test user: %v", err)
	}
	return user
}

// createTestParty seeds a party with its master membership and thumbnail,
// the same rows Create produces.
func createTestParty(t *testing.T, db *gorm.DB, master models.User, title string, isPublic bool) models.Party {
	party := models.Party{
		Title:    title,
		IsPublic: isPublic,
		Status:   models.PartyStatusActive,
	}
	if err := db.Create(&party).Error; err != nil {
		t.Fatalf("Failed to create test party: %v", err)
	}
	membership := models.Membership{
		UserID:     master.ID,
		PartyID:    party.ID,
		Status:     models.MembershipActive,
		Grade:      models.GradeMaster,
		PartyAdmin: true,
	}
	if err := db.Create(&membership).Error; err != nil {
		t.Fatalf("Failed to create master membership: %v", err)
	}
	file := models.File{
		PartyID:      party.ID,
		Path:         "/thumbnails/" + title + ".png",
		OriginalName: title + ".png",
		Type:         models.FileTypePartyThumbnail,
	}
	if err := db.Create(&file).Error; err != nil {
		t.Fatalf("Failed to create thumbnail: %v", err)
	}
	return party
}

func getAuthHeader(user models.User) string {
	token, _ := auth.GenerateToken(user.ID, user.Nickname, string(user.SystemRole))
	return "Bearer " + token
}

func doJSON(router *gin.Engine, method, path string, body interface{}, user models.User) *httptest.ResponseRecorder {
	var buf *bytes.Buffer
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		buf = bytes.NewBuffer(jsonBody)
	} else {
		buf = bytes.NewBuffer(nil)
	}
	req, _ := http.NewRequest(method, path, buf)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", getAuthHeader(user))
	resp := httptest.NewRecorder()
	router.ServeHTTP(resp, req)
	return resp
}

func TestCreateParty(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	body := CreatePartyRequest{
		Title:       "Game Night",
		Description: "Weekly board games",
	}
	resp := doJSON(router, "POST", "/parties", body, user)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response PartyResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.Title != "Game Night" {
		t.Errorf("Expected title 'Game Night', got %s", response.Title)
	}
	if response.Master != "alice" {
		t.Errorf("Expected master alice, got %s", response.Master)
	}
	if response.MemberCount != 1 {
		t.Errorf("Expected member count 1, got %d", response.MemberCount)
	}
	if response.ThumbnailPath != defaultThumbnailPath {
		t.Errorf("Expected default thumbnail, got %s", response.ThumbnailPath)
	}

	// Exactly one master-grade, admin, active membership for the creator
	var memberships []models.Membership
	db.Where("party_id = ?", response.ID).Find(&memberships)
	if len(memberships) != 1 {
		t.Fatalf("Expected 1 membership, got %d", len(memberships))
	}
	m := memberships[0]
	if m.UserID != user.ID || m.Grade != models.GradeMaster || !m.PartyAdmin || m.Status != models.MembershipActive {
		t.Errorf("Master membership malformed: %+v", m)
	}

	// Thumbnail record attached to the party
	var file models.File
	if err := db.Where("party_id = ?", response.ID).First(&file).Error; err != nil {
		t.Fatal("Expected a thumbnail file record")
	}
	if file.StoredName == "" {
		t.Error("Expected generated stored name on thumbnail")
	}
}

func TestCreatePartyWithThumbnail(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	body := CreatePartyRequest{
		Title: "Game Night",
		Thumbnail: &ThumbnailRequest{
			Path:         "/uploads/cover.png",
			OriginalName: "cover.png",
			Size:         2048,
		},
	}
	resp := doJSON(router, "POST", "/parties", body, user)

	if resp.Code != http.StatusCreated {
		t.Fatalf("Expected status 201, got %d: %s", resp.Code, resp.Body.String())
	}

	var response PartyResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	var file models.File
	db.Where("party_id = ?", response.ID).First(&file)
	if file.Path != "/uploads/cover.png" || file.Size != 2048 {
		t.Errorf("Thumbnail metadata not persisted: %+v", file)
	}
}

func TestCreatePartyUserGone(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	db.Delete(&user)

	resp := doJSON(router, "POST", "/parties", CreatePartyRequest{Title: "Game Night"}, user)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestGetParty(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	party := createTestParty(t, db, user, "Game Night", true)

	resp := doJSON(router, "GET", fmt.Sprintf("/parties/%d", party.ID), nil, user)

	if resp.Code != http.StatusOK {
		t.Fatalf("Expected status 200, got %d: %s", resp.Code, resp.Body.String())
	}

	var response PartyResponse
	json.Unmarshal(resp.Body.Bytes(), &response)

	if response.ID != party.ID || response.Master != "alice" || response.MemberCount != 1 {
		t.Errorf("Unexpected party detail: %+v", response)
	}
	if response.ThumbnailPath == "" {
		t.Error("Expected thumbnail path in detail")
	}
}

func TestGetPartyNotFound(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")

	resp := doJSON(router, "GET", "/parties/999", nil, user)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404, got %d", resp.Code)
	}
}

func TestGetDeletedParty(t *testing.T) {
	db := setupTestDB(t)
	router := setupTestRouter(db)
	user := createTestUser(t, db, "alice")
	party := createTestParty(t, db, user, "Game Night", true)

	db.Model(&party).Update("status", models.PartyStatusDeleted)

	resp := doJSON(router, "GET", fmt.Sprintf("/parties/%d", party.ID), nil, user)

	if resp.Code != http.StatusNotFound {
		t.Errorf("Expected status 404 for deleted party, got %d", resp.Code)
	}
}
