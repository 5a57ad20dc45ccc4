package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"rental-api/domain"
	"rental-api/utils"
)

func newAuthRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/protected", AuthMiddleware(), func(c *gin.Context) {
		actor, ok := CurrentActor(c)
		if !ok {
			c.JSON(http.StatusInternalServerError, gin.H{"error": "no actor"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"actor_id": actor.ID, "role": string(actor.Role)})
	})
	router.GET("/admin", AuthMiddleware(), AdminMiddleware(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return router
}

func doRequest(router *gin.Engine, path, authHeader string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)
	return recorder
}

func TestAuthMiddleware(t *testing.T) {
	router := newAuthRouter()

	token, err := utils.GenerateToken("user-1", "ana@example.com", string(domain.RoleUser))
	require.NoError(t, err)

	assert.Equal(t, http.StatusOK, doRequest(router, "/protected", "Bearer "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", "Bearer not-a-token").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", "Basic "+token).Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "/protected", token).Code)
}

func TestAdminMiddleware(t *testing.T) {
	router := newAuthRouter()

	userToken, err := utils.GenerateToken("user-1", "ana@example.com", string(domain.RoleUser))
	require.NoError(t, err)
	adminToken, err := utils.GenerateToken("admin-1", "root@example.com", string(domain.RoleAdmin))
	require.NoError(t, err)

	assert.Equal(t, http.StatusForbidden, doRequest(router, "/admin", "Bearer "+userToken).Code)
	assert.Equal(t, http.StatusOK, doRequest(router, "/admin", "Bearer "+adminToken).Code)
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(CORSMiddleware())
	router.GET("/", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodOptions, "/", nil)
	recorder := httptest.NewRecorder()
	router.ServeHTTP(recorder, req)

	assert.Equal(t, http.StatusNoContent, recorder.Code)
	assert.Equal(t, "*", recorder.Header().Get("Access-Control-Allow-Origin"))
}
