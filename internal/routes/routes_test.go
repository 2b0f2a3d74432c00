package routes

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/queue"
	"github.com/causafund/backend/internal/services/exchange"
	"github.com/causafund/backend/internal/utils"
)

func setupTestRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.KYCStatusHistory{},
		&models.Campaign{},
		&models.CampaignUpdate{},
		&models.Donation{},
		&models.ManualPayment{},
		&models.WithdrawalAccount{},
		&models.ExchangeRate{},
		&queue.Job{},
	))

	// The queue client is only touched by webhook routes, which this test
	// does not exercise; the redis client never connects.
	jobQueue := queue.NewClient(redis.NewClient(&redis.Options{Addr: "localhost:0"}), db)
	rates := exchange.NewService(db, "")

	router := gin.New()
	RegisterRoutes(router, db, jobQueue, rates)
	return router, db
}

func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}

	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedAdmin(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()
	admin := models.User{
		Email:     "admin@causafund.org",
		FullName:  "Platform Admin",
		Role:      models.RoleAdmin,
		KYCStatus: models.KYCStatusVerified,
	}
	require.NoError(t, db.Create(&admin).Error)

	tokens, err := utils.GenerateTokenPair(admin.ID, admin.Email, admin.Role)
	require.NoError(t, err)
	return admin, tokens.AccessToken
}

// TestDonationFlow walks the full manual-payment path: signup, role
// change, verification, campaign review, an anonymous Zelle donation and
// its admin approval.
func TestDonationFlow(t *testing.T) {
	router, db := setupTestRouter(t)
	_, adminToken := seedAdmin(t, db)

	// Signup starts as donor with pending verification
	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", gin.H{
		"email":     "ana@example.com",
		"password":  "Str0ngPass",
		"full_name": "Ana Perez",
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	signupBody := decodeBody(t, w)
	creatorToken := signupBody["tokens"].(map[string]interface{})["access_token"].(string)

	// Switch to the creator role; campaign creation stays locked until KYC
	w = doJSON(t, router, http.MethodPost, "/api/profile/become-creator", creatorToken, gin.H{"role": "creator"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodPost, "/api/creator/campaigns", creatorToken, gin.H{
		"title":           "Medicinas para mi hermana",
		"story":           longStory(),
		"goal_amount_usd": 500,
		"submit":          true,
	})
	require.Equal(t, http.StatusForbidden, w.Code, w.Body.String())

	// Submit and approve identity verification
	w = doJSON(t, router, http.MethodPost, "/api/kyc/submit", creatorToken, gin.H{
		"document_url":  "https://cdn.example.com/docs/cedula.jpg",
		"document_type": "cedula",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var creator models.User
	require.NoError(t, db.First(&creator, "email = ?", "ana@example.com").Error)

	w = doJSON(t, router, http.MethodGet, "/api/admin/kyc/pending", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "ana@example.com")

	w = doJSON(t, router, http.MethodPost, fmt.Sprintf("/api/admin/kyc/%s/approve", creator.ID), adminToken, gin.H{})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	// Create a campaign straight into review, then approve it
	w = doJSON(t, router, http.MethodPost, "/api/creator/campaigns", creatorToken, gin.H{
		"title":           "Medicinas para mi hermana",
		"story":           longStory(),
		"goal_amount_usd": 500,
		"urgency_level":   "high",
		"submit":          true,
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	campaignBody := decodeBody(t, w)["campaign"].(map[string]interface{})
	campaignID := campaignBody["id"].(string)
	campaignSlug := campaignBody["slug"].(string)
	assert.Equal(t, "pending_review", campaignBody["status"].(string))

	w = doJSON(t, router, http.MethodPost, "/api/admin/campaigns/"+campaignID+"/approve", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/campaigns", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), campaignSlug)

	// A guest donates 250 USD via Zelle
	w = doJSON(t, router, http.MethodPost, "/api/donations", "", gin.H{
		"campaign_id":    campaignID,
		"amount_usd":     250,
		"payment_method": "zelle",
		"is_anonymous":   true,
		"manual_payment_data": gin.H{
			"transaction_reference": "ZELLE-881234",
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	// Nothing is credited before admin review
	w = doJSON(t, router, http.MethodGet, "/api/campaigns/"+campaignSlug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	campaignBody = decodeBody(t, w)["campaign"].(map[string]interface{})
	assert.Equal(t, 0.0, campaignBody["current_amount_usd"].(float64))

	w = doJSON(t, router, http.MethodGet, "/api/admin/manual-payments", adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	payments := decodeBody(t, w)["manual_payments"].([]interface{})
	require.Len(t, payments, 1)
	manualID := payments[0].(map[string]interface{})["id"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/admin/manual-payments/"+manualID+"/approve", adminToken, gin.H{
		"note": "reference matches bank statement",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/campaigns/"+campaignSlug, "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	campaignBody = decodeBody(t, w)["campaign"].(map[string]interface{})
	assert.Equal(t, 250.0, campaignBody["current_amount_usd"].(float64))

	// A second approval must conflict, not double-credit
	w = doJSON(t, router, http.MethodPost, "/api/admin/manual-payments/"+manualID+"/approve", adminToken, gin.H{})
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())

	w = doJSON(t, router, http.MethodGet, "/api/campaigns/"+campaignSlug, "", nil)
	campaignBody = decodeBody(t, w)["campaign"].(map[string]interface{})
	assert.Equal(t, 250.0, campaignBody["current_amount_usd"].(float64))
}

func TestAccessDecisions(t *testing.T) {
	router, db := setupTestRouter(t)

	// Anonymous visitor on a gated page is sent to login with the intent
	w := doJSON(t, router, http.MethodGet, "/api/access/creator/campaigns", "", nil)
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.False(t, body["allow"].(bool))
	assert.Equal(t, "/auth/login?redirectTo=/creator/campaigns", body["redirect_url"].(string))

	// A pending creator is pushed to verification
	creator := models.User{
		Email:     "pending@example.com",
		Role:      models.RoleCreator,
		KYCStatus: models.KYCStatusPending,
	}
	require.NoError(t, db.Create(&creator).Error)
	tokens, err := utils.GenerateTokenPair(creator.ID, creator.Email, creator.Role)
	require.NoError(t, err)

	w = doJSON(t, router, http.MethodGet, "/api/access/creator/campaigns", tokens.AccessToken, nil)
	body = decodeBody(t, w)
	assert.False(t, body["allow"].(bool))
	assert.Equal(t, "/profile?verify=true&becomeCreator=true", body["redirect_url"].(string))

	// Non-admins bounce off the admin area to the home page
	w = doJSON(t, router, http.MethodGet, "/api/access/admin/dashboard", tokens.AccessToken, nil)
	body = decodeBody(t, w)
	assert.False(t, body["allow"].(bool))
	assert.Equal(t, "/", body["redirect_url"].(string))

	// Public pages are always allowed
	w = doJSON(t, router, http.MethodGet, "/api/access/campaigns/ayuda", "", nil)
	body = decodeBody(t, w)
	assert.True(t, body["allow"].(bool))
}

func longStory() string {
	return "Mi hermana necesita un tratamiento urgente y no podemos cubrir los costos. " +
		"Cada aporte nos acerca a la meta y toda ayuda cuenta para su recuperacion."
}
