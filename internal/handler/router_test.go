package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	gojwt "github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/tgo/embedhub/internal/config"
	"github.com/tgo/embedhub/internal/model"
	"github.com/tgo/embedhub/internal/pkg/db"
	"github.com/tgo/embedhub/internal/pkg/jwt"
	"github.com/tgo/embedhub/internal/repository"
	"github.com/tgo/embedhub/internal/service"
)

type testServer struct {
	router     *gin.Engine
	db         *gorm.DB
	workspace  *model.Workspace
	adminToken string
	userToken  string
	apiKey     string
}

func newTestServer(t *testing.T, mutate func(*config.Config)) *testServer {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &config.Config{
		GinMode:                "test",
		Environment:            "test",
		DatabaseURL:            filepath.Join(t.TempDir(), "embedhub.db"),
		JWTSecret:              "test-secret",
		AccessTokenExpireMin:   60,
		RefreshTokenExpireDays: 1,
		StoragePath:            t.TempDir(),
		MaxUploadSize:          1024,
	}
	if mutate != nil {
		mutate(cfg)
	}

	gormDB, err := db.NewGormDB(cfg.DatabaseURL, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))

	ws := &model.Workspace{Name: "Docs", Slug: "docs"}
	require.NoError(t, gormDB.Create(ws).Error)

	auth := service.NewAuthService(
		repository.NewUserRepository(gormDB),
		repository.NewAPIKeyRepository(gormDB),
		jwt.NewManager(cfg.JWTSecret, cfg.AccessTokenExpireMin, cfg.RefreshTokenExpireDays),
	)
	ctx := context.Background()
	_, err = auth.CreateUser(ctx, &service.CreateUserRequest{Username: "admin", Password: "password1", Role: model.RoleAdmin})
	require.NoError(t, err)
	_, err = auth.CreateUser(ctx, &service.CreateUserRequest{Username: "viewer", Password: "password1", Role: model.RoleDefault})
	require.NoError(t, err)
	key, err := auth.CreateAPIKey(ctx, nil)
	require.NoError(t, err)

	s := &testServer{router: SetupRouter(cfg, gormDB, nil), db: gormDB, workspace: ws, apiKey: key.Secret}
	s.adminToken = s.login(t, "admin")
	s.userToken = s.login(t, "viewer")
	return s
}

func (s *testServer) login(t *testing.T, username string) string {
	t.Helper()
	w := s.do(t, http.MethodPost, "/request-token", "", map[string]string{"username": username, "password": "password1"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Token string `json:"token"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotEmpty(t, resp.Token)
	return resp.Token
}

func (s *testServer) do(t *testing.T, method, path, token string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.router.ServeHTTP(w, req)
	return w
}

func (s *testServer) createEmbed(t *testing.T, data map[string]interface{}) map[string]interface{} {
	t.Helper()
	data["workspace_id"] = s.workspace.ID
	w := s.do(t, http.MethodPost, "/embeds/new", s.adminToken, data)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var resp struct {
		Embed map[string]interface{} `json:"embed"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp.Embed
}

func uintToString(v uint) string {
	return strconv.FormatUint(uint64(v), 10)
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "healthy", decode(t, w)["status"])
}

func TestRequestToken_BadPassword(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodPost, "/request-token", "", map[string]string{"username": "admin", "password": "wrong-pass"})
	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, false, decode(t, w)["valid"])
}

func TestManagement_RequiresAdmin(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/embeds", "", nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/embeds", s.userToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/embeds", s.apiKey, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/embeds", s.adminToken, nil).Code)
}

func TestManagement_EmptySecretRejectsForgedToken(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &config.Config{
		Environment:          "test",
		DatabaseURL:          filepath.Join(t.TempDir(), "embedhub.db"),
		AccessTokenExpireMin: 60,
		StoragePath:          t.TempDir(),
		MaxUploadSize:        1024,
	}
	gormDB, err := db.NewGormDB(cfg.DatabaseURL, false)
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(gormDB))

	hash, err := service.HashPassword("password1")
	require.NoError(t, err)
	admin := &model.User{Username: "admin", PasswordHash: hash, Role: model.RoleAdmin}
	require.NoError(t, gormDB.Create(admin).Error)

	forged, err := gojwt.NewWithClaims(gojwt.SigningMethodHS256, &jwt.Claims{
		RegisteredClaims: gojwt.RegisteredClaims{ExpiresAt: gojwt.NewNumericDate(time.Now().Add(time.Hour))},
		UserID:           admin.ID,
		Username:         "whoever",
		Role:             model.RoleAdmin,
		TokenType:        "access",
	}).SignedString([]byte(""))
	require.NoError(t, err)

	s := &testServer{router: SetupRouter(cfg, gormDB, nil), db: gormDB}
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/embeds", forged, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/embeds/new", forged, map[string]interface{}{"workspace_id": 1}).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodPost, "/request-token", "", map[string]string{"username": "admin", "password": "password1"}).Code)
}

func TestManagement_GetWorkspace(t *testing.T) {
	s := newTestServer(t, nil)

	w := s.do(t, http.MethodGet, "/workspace/"+uintToString(s.workspace.ID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	workspace := decode(t, w)["workspace"].(map[string]interface{})
	assert.Equal(t, "docs", workspace["slug"])

	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodGet, "/workspace/999", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusBadRequest, s.do(t, http.MethodGet, "/workspace/abc", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusUnauthorized, s.do(t, http.MethodGet, "/workspace/1", s.userToken, nil).Code)
}

func TestManagement_EmbedLifecycle(t *testing.T) {
	s := newTestServer(t, nil)
	embed := s.createEmbed(t, map[string]interface{}{"chat_mode": "chat", "allowlist_domains": "a.com,b.com"})
	id := uint(embed["id"].(float64))
	assert.Equal(t, []interface{}{"https://a.com", "https://b.com"}, embed["allowlist_domains"])
	assert.Equal(t, true, embed["enabled"])

	path := "/embed/update/" + uintToString(id)
	w := s.do(t, http.MethodPost, path, s.adminToken, map[string]interface{}{
		"defaultMessages": []string{"Hi", "Questions?"},
		"assistantName":   "Ada",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, true, decode(t, w)["success"])

	w = s.do(t, http.MethodPost, path, s.adminToken, map[string]interface{}{"uuid": "forged"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, false, decode(t, w)["success"])

	w = s.do(t, http.MethodGet, "/embeds", s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	embeds := decode(t, w)["embeds"].([]interface{})
	require.Len(t, embeds, 1)
	listed := embeds[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Hi", "Questions?"}, listed["defaultMessages"])
	assert.Equal(t, "Ada", listed["assistantName"])
	assert.Equal(t, embed["uuid"], listed["uuid"])
	assert.Equal(t, "Docs", listed["workspace"].(map[string]interface{})["name"])

	w = s.do(t, http.MethodDelete, "/embed/"+uintToString(id), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, http.StatusNotFound, s.do(t, http.MethodDelete, "/embed/"+uintToString(id), s.adminToken, nil).Code)
}

func TestManagement_UpdateMissingEmbed(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodPost, "/embed/update/999", s.adminToken, map[string]interface{}{"enabled": false})
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Embed not found", decode(t, w)["error"])
}

func TestManagement_CreateWithoutWorkspace(t *testing.T) {
	s := newTestServer(t, nil)
	w := s.do(t, http.MethodPost, "/embeds/new", s.adminToken, map[string]interface{}{"chat_mode": "chat"})
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.NotEmpty(t, decode(t, w)["error"])
}

func TestPublicAPI_RequiresKey(t *testing.T) {
	s := newTestServer(t, nil)

	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/embed", "", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/embed", "ak_nope", nil).Code)
	assert.Equal(t, http.StatusForbidden, s.do(t, http.MethodGet, "/v1/embed", s.adminToken, nil).Code)
	assert.Equal(t, http.StatusOK, s.do(t, http.MethodGet, "/v1/embed", s.apiKey, nil).Code)
}

func TestPublicAPI_Embeds(t *testing.T) {
	s := newTestServer(t, nil)
	embed := s.createEmbed(t, map[string]interface{}{"defaultMessages": `["Welcome"]`, "textSize": "16"})
	embedUUID := embed["uuid"].(string)

	w := s.do(t, http.MethodGet, "/v1/embed", s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode(t, w)["embeds"].([]interface{})
	require.Len(t, list, 1)
	item := list[0].(map[string]interface{})
	assert.Equal(t, []interface{}{"Welcome"}, item["defaultMessages"])
	assert.Equal(t, float64(0), item["chat_count"])
	assert.NotContains(t, item, "allowlist_domains")

	w = s.do(t, http.MethodGet, "/v1/embed/"+embedUUID, s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	single := decode(t, w)["embed"].(map[string]interface{})
	assert.Equal(t, "16", single["textSize"])
	assert.Equal(t, "Docs", single["workspace"].(map[string]interface{})["name"])

	w = s.do(t, http.MethodGet, "/v1/embed/does-not-exist", s.apiKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "Embed not found", decode(t, w)["message"])
}

func TestPublicAPI_Chats(t *testing.T) {
	s := newTestServer(t, nil)
	embed := s.createEmbed(t, map[string]interface{}{})
	embedID := uint(embed["id"].(float64))
	embedUUID := embed["uuid"].(string)
	require.NoError(t, s.db.Create(&model.EmbedChat{EmbedID: embedID, SessionID: "abc", Prompt: "p", Response: "r"}).Error)

	w := s.do(t, http.MethodGet, "/v1/embed/"+embedUUID+"/chats", s.apiKey, nil)
	require.Equal(t, http.StatusOK, w.Code)
	chats := decode(t, w)["chats"].([]interface{})
	require.Len(t, chats, 1)
	assert.Equal(t, "abc", chats[0].(map[string]interface{})["session_id"])

	w = s.do(t, http.MethodGet, "/v1/embed/"+embedUUID+"/chats/abc", s.apiKey, nil)
	assert.Equal(t, http.StatusOK, w.Code)

	w = s.do(t, http.MethodGet, "/v1/embed/"+embedUUID+"/chats/missing", s.apiKey, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestManagement_ChatHistory(t *testing.T) {
	s := newTestServer(t, nil)
	embed := s.createEmbed(t, map[string]interface{}{})
	chat := &model.EmbedChat{EmbedID: uint(embed["id"].(float64)), SessionID: "abc", Prompt: "p", Response: "r"}
	require.NoError(t, s.db.Create(chat).Error)

	w := s.do(t, http.MethodPost, "/embed/chats", s.adminToken, map[string]int{"offset": 0, "limit": 10})
	require.Equal(t, http.StatusOK, w.Code)
	page := decode(t, w)
	assert.Equal(t, float64(1), page["totalChats"])
	assert.Equal(t, false, page["hasPages"])

	w = s.do(t, http.MethodDelete, "/embed/chats/"+uintToString(chat.ID), s.adminToken, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, true, decode(t, w)["success"])
}

func TestManagement_ChatHistoryDisabled(t *testing.T) {
	s := newTestServer(t, func(cfg *config.Config) { cfg.DisableViewChatHistory = true })
	w := s.do(t, http.MethodPost, "/embed/chats", s.adminToken, map[string]int{"offset": 0})
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpload(t *testing.T) {
	s := newTestServer(t, nil)
	embed := s.createEmbed(t, map[string]interface{}{})
	path := "/embed/" + uintToString(uint(embed["id"].(float64))) + "/upload-assistantIcon"

	upload := func(size int) *httptest.ResponseRecorder {
		body := &bytes.Buffer{}
		mw := multipart.NewWriter(body)
		part, err := mw.CreateFormFile("assistantIcon", "icon.png")
		require.NoError(t, err)
		_, err = part.Write(make([]byte, size))
		require.NoError(t, err)
		require.NoError(t, mw.Close())

		req := httptest.NewRequest(http.MethodPost, path, body)
		req.Header.Set("Content-Type", mw.FormDataContentType())
		req.Header.Set("Authorization", "Bearer "+s.adminToken)
		w := httptest.NewRecorder()
		s.router.ServeHTTP(w, req)
		return w
	}

	w := upload(2048)
	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)

	w = upload(100)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	imageURL := decode(t, w)["imageUrl"].(string)
	assert.Contains(t, imageURL, "/assets/")

	w = s.do(t, http.MethodGet, imageURL, "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}
