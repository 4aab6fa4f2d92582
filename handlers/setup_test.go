package handlers_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"circleserver/auth"
	"circleserver/database"
	"circleserver/models"
	"circleserver/routes"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// テストごとに独立したインメモリDBと本物のルーターを組み立てる。
// 接続を1本に制限してインメモリDBの共有と直列化を保証する。
func setupTestEnv(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	auth.Init("test-secret")

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		t.Fatalf("sqlite open: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := database.AutoMigrate(db); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}

	cfg := models.Config{
		TokenValidityDays:      100,
		InviteCodeValidityDays: 7,
		UploadDir:              t.TempDir(),
		UploadBaseURL:          "/uploads",
	}
	router := routes.SetupRouter(db, nil, cfg, zap.NewNop())
	return router, db
}

// doJSON はJSONボディ付きリクエストを投げてレスポンスを返す。tokenは空なら付けない。
func doJSON(t *testing.T, router *gin.Engine, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		reader = bytes.NewReader(raw)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

// decodeBody はレスポンスJSONをmapに展開する。
func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
	return body
}

func errorCodeOf(t *testing.T, w *httptest.ResponseRecorder) string {
	t.Helper()
	body := decodeBody(t, w)
	code, _ := body["errorCode"].(string)
	return code
}

func dataOf(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	body := decodeBody(t, w)
	data, ok := body["data"].(map[string]interface{})
	if !ok {
		t.Fatalf("response has no data object: %q", w.Body.String())
	}
	return data
}

// signupAndLogin はユーザーを作成してログインし、トークンを返す。
func signupAndLogin(t *testing.T, router *gin.Engine, nickname string) string {
	t.Helper()

	w := doJSON(t, router, http.MethodPost, "/api/auth/signup", "", map[string]string{
		"email":    nickname + "@example.com",
		"nickname": nickname,
		"password": "pass1234",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("signup %s: status = %d, body = %s", nickname, w.Code, w.Body.String())
	}

	w = doJSON(t, router, http.MethodPost, "/api/auth/login", "", map[string]string{
		"nickname": nickname,
		"password": "pass1234",
	})
	if w.Code != http.StatusOK {
		t.Fatalf("login %s: status = %d, body = %s", nickname, w.Code, w.Body.String())
	}

	token, _ := dataOf(t, w)["token"].(string)
	if token == "" {
		t.Fatalf("login %s: empty token", nickname)
	}
	return token
}

// createPost は投稿を作成してそのIDを返す。
func createPost(t *testing.T, router *gin.Engine, token, content string) uint {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/posts/create-post", token, map[string]string{
		"content": content,
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("create post: status = %d, body = %s", w.Code, w.Body.String())
	}
	id, ok := dataOf(t, w)["id"].(float64)
	if !ok {
		t.Fatalf("create post: no id in response %s", w.Body.String())
	}
	return uint(id)
}

// createInviteCode は招待コードを発行してコード文字列を返す。
func createInviteCode(t *testing.T, router *gin.Engine, token string) string {
	t.Helper()
	w := doJSON(t, router, http.MethodPost, "/api/invite/code", token, nil)
	if w.Code != http.StatusCreated {
		t.Fatalf("create invite code: status = %d, body = %s", w.Code, w.Body.String())
	}
	code, _ := dataOf(t, w)["code"].(string)
	if code == "" {
		t.Fatalf("create invite code: empty code")
	}
	return code
}
