package api_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/pulsefeed/backend/internal/api"
	"github.com/pulsefeed/backend/internal/router"
	"github.com/pulsefeed/backend/internal/service"
	"github.com/pulsefeed/backend/internal/testhelpers"
)

type testApp struct {
	engine *gin.Engine
	db     *gorm.DB
	emails *testhelpers.MockEmailService
}

func newTestApp(t *testing.T) *testApp {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testhelpers.SetupTestDB(t)
	emails := testhelpers.NewMockEmailService()

	authService := service.NewAuthService(db, "test-secret", emails)
	verificationService := service.NewVerificationService(db, emails)
	visibilityService := service.NewVisibilityService(db)
	postService := service.NewPostService(db, visibilityService)
	profileService := service.NewProfileService(db)
	imageService := service.NewImageService(nil, t.TempDir(), "/media/")

	authHandler := api.NewAuthHandler(authService, verificationService, nil)
	profileHandler := api.NewProfileHandler(profileService, visibilityService, postService, authService)
	postHandler := api.NewPostHandler(postService, visibilityService, authService, db, nil)
	imageHandler := api.NewImageHandler(imageService, authService)

	engine := router.SetupRouter(db, authHandler, profileHandler, postHandler, imageHandler)
	return &testApp{engine: engine, db: db, emails: emails}
}

func (a *testApp) request(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequest(method, path, reader)
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	rr := httptest.NewRecorder()
	a.engine.ServeHTTP(rr, req)
	return rr
}

func decode(t *testing.T, rr *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

// register creates an account through the API and returns its token.
func (a *testApp) register(t *testing.T, firstName, lastName, email string) string {
	t.Helper()
	rr := a.request(t, "POST", "/api/v1/auth/register", "", gin.H{
		"first_name":       firstName,
		"last_name":        lastName,
		"email":            email,
		"password":         "secret123",
		"confirm_password": "secret123",
	})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
	return decode(t, rr)["token"].(string)
}

// registerVerified registers and completes email verification.
func (a *testApp) registerVerified(t *testing.T, firstName, lastName, email string) string {
	t.Helper()
	token := a.register(t, firstName, lastName, email)

	code := a.emails.LastCode(email)
	require.NotEmpty(t, code)
	rr := a.request(t, "POST", "/api/v1/auth/verify-email", "", gin.H{
		"email": email,
		"code":  code,
	})
	require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
	return token
}
