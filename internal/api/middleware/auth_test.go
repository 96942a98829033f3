package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/qs3c/insider_go_server/config"
	"github.com/qs3c/insider_go_server/internal/pkg/jwt"
)

const testSecret = "middleware-test-secret"

func init() {
	gin.SetMode(gin.TestMode)
}

func authTestRouter() *gin.Engine {
	r := gin.New()
	r.GET("/protected", Auth(testSecret), func(c *gin.Context) {
		userID, _ := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID})
	})
	r.GET("/optional", OptionalAuth(testSecret), func(c *gin.Context) {
		userID, ok := GetUserID(c)
		c.JSON(http.StatusOK, gin.H{"user_id": userID, "authed": ok})
	})
	return r
}

func TestAuth_ValidToken(t *testing.T) {
	r := authTestRouter()

	token, err := jwt.GenerateToken(42, testSecret, 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"user_id":42`)
}

func TestAuth_MissingHeader(t *testing.T) {
	r := authTestRouter()

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/protected", nil))

	assert.Contains(t, w.Body.String(), `"code":1001`)
}

func TestAuth_BadFormat(t *testing.T) {
	r := authTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Token abc")
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":1001`)
}

func TestAuth_InvalidToken(t *testing.T) {
	r := authTestRouter()

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/protected", nil)
	req.Header.Set("Authorization", "Bearer not-a-real-token")
	r.ServeHTTP(w, req)

	assert.Contains(t, w.Body.String(), `"code":1001`)
}

func TestOptionalAuth(t *testing.T) {
	r := authTestRouter()

	// 不带 token 也放行
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/optional", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":false`)

	// 带合法 token 时注入用户
	token, err := jwt.GenerateToken(7, testSecret, 1)
	require.NoError(t, err)

	w = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"user_id":7`)
	assert.Contains(t, w.Body.String(), `"authed":true`)

	// 非法 token 按匿名处理而不是拒绝
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/optional", nil)
	req.Header.Set("Authorization", "Bearer garbage")
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"authed":false`)
}

func TestAdmin_Allowlist(t *testing.T) {
	r := gin.New()
	adminCfg := config.AdminConfig{UserIDs: []int64{1}}
	r.GET("/admin", Auth(testSecret), Admin(adminCfg), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	adminToken, err := jwt.GenerateToken(1, testSecret, 1)
	require.NoError(t, err)
	userToken, err := jwt.GenerateToken(2, testSecret, 1)
	require.NoError(t, err)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+adminToken)
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"ok":true`)

	// 白名单之外的用户被拒绝
	w = httptest.NewRecorder()
	req = httptest.NewRequest(http.MethodGet, "/admin", nil)
	req.Header.Set("Authorization", "Bearer "+userToken)
	r.ServeHTTP(w, req)
	assert.Contains(t, w.Body.String(), `"code":1002`)
}
