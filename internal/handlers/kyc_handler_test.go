package handlers

import (
	"bytes"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/causafund/backend/internal/middleware"
	"github.com/causafund/backend/internal/models"
	"github.com/causafund/backend/internal/services/email"
	"github.com/causafund/backend/internal/services/kyc"
	"github.com/causafund/backend/internal/utils"
)

func setupKYCRouter(t *testing.T, uploadsDir string) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db, err := gorm.Open(sqlite.Open("file:"+uuid.NewString()+"?mode=memory&cache=shared"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}, &models.KYCStatusHistory{}))

	handler := NewKYCHandler(kyc.NewService(db), email.NewService(), uploadsDir)

	router := gin.New()
	group := router.Group("/api")
	group.Use(middleware.AuthMiddleware(db))
	group.POST("/kyc/documents", handler.UploadDocument)
	return router, db
}

func createVerifyingUser(t *testing.T, db *gorm.DB) (models.User, string) {
	t.Helper()
	user := models.User{
		Email:     "ana@example.com",
		FullName:  "Ana Perez",
		Role:      models.RoleCreator,
		KYCStatus: models.KYCStatusPending,
	}
	require.NoError(t, db.Create(&user).Error)

	tokens, err := utils.GenerateTokenPair(user.ID, user.Email, user.Role)
	require.NoError(t, err)
	return user, tokens.AccessToken
}

func multipartDocument(t *testing.T, documentType, filename, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	require.NoError(t, writer.WriteField("document_type", documentType))
	if filename != "" {
		part, err := writer.CreateFormFile("document", filename)
		require.NoError(t, err)
		_, err = part.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, writer.Close())
	return &buf, writer.FormDataContentType()
}

func TestUploadDocumentStoresFileAndSubmits(t *testing.T) {
	uploadsDir := t.TempDir()
	router, db := setupKYCRouter(t, uploadsDir)
	user, token := createVerifyingUser(t, db)

	body, contentType := multipartDocument(t, "cedula", "cedula.jpg", "jpeg bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var stored models.User
	require.NoError(t, db.First(&stored, "id = ?", user.ID).Error)
	require.NotNil(t, stored.KYCDocumentURL)
	assert.True(t, strings.HasPrefix(*stored.KYCDocumentURL, filepath.Join(uploadsDir, user.ID.String())))
	assert.Equal(t, ".jpg", filepath.Ext(*stored.KYCDocumentURL))
	require.NotNil(t, stored.KYCDocumentType)
	assert.Equal(t, models.KYCDocumentCedula, *stored.KYCDocumentType)
	assert.Equal(t, models.KYCStatusPending, stored.KYCStatus)

	saved, err := os.ReadFile(*stored.KYCDocumentURL)
	require.NoError(t, err)
	assert.Equal(t, "jpeg bytes", string(saved))
}

func TestUploadDocumentRejectsUnknownType(t *testing.T) {
	uploadsDir := t.TempDir()
	router, db := setupKYCRouter(t, uploadsDir)
	_, token := createVerifyingUser(t, db)

	body, contentType := multipartDocument(t, "receipt", "receipt.jpg", "jpeg bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())

	// Nothing may be written for a rejected submission
	entries, err := os.ReadDir(uploadsDir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestUploadDocumentRequiresFile(t *testing.T) {
	uploadsDir := t.TempDir()
	router, db := setupKYCRouter(t, uploadsDir)
	_, token := createVerifyingUser(t, db)

	body, contentType := multipartDocument(t, "passport", "", "")
	req := httptest.NewRequest(http.MethodPost, "/api/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
}

func TestUploadDocumentBlockedWhilePending(t *testing.T) {
	uploadsDir := t.TempDir()
	router, db := setupKYCRouter(t, uploadsDir)
	user, token := createVerifyingUser(t, db)

	docURL := "uploads/kyc/existing.jpg"
	require.NoError(t, db.Model(&user).Update("kyc_document_url", docURL).Error)

	body, contentType := multipartDocument(t, "cedula", "cedula.jpg", "jpeg bytes")
	req := httptest.NewRequest(http.MethodPost, "/api/kyc/documents", body)
	req.Header.Set("Content-Type", contentType)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusConflict, w.Code, w.Body.String())
}
