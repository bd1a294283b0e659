package httpapi

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/protocol"
	"github.com/wh131462/stillalive/internal/server/auth"
	sc "github.com/wh131462/stillalive/internal/server/config"
	"github.com/wh131462/stillalive/internal/server/repositories/repomanager"
	"github.com/wh131462/stillalive/internal/server/services"
)

var testSecret = []byte("test-secret")

func setupRouter(t *testing.T) http.Handler {
	t.Helper()
	gin.SetMode(gin.TestMode)

	syncSvc := services.NewSyncService(nil, repomanager.NewMemory())
	photoSvc := services.NewPhotoService(&sc.Config{
		S3Region:       "us-east-1",
		S3RootUser:     "minioadmin",
		S3RootPassword: "minioadmin",
		S3BaseEndpoint: "http://127.0.0.1:9000",
		S3Bucket:       "checkin-photos",
	})
	logger := logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil)))
	return NewRouter(testSecret, NewHandler(syncSvc, photoSvc, logger))
}

func bearerToken(t *testing.T, userID string) string {
	t.Helper()
	token, err := auth.GenerateToken(userID, testSecret, time.Hour)
	require.NoError(t, err)
	return "Bearer " + token
}

func doJSON(t *testing.T, r http.Handler, method, path, authHeader string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		require.NoError(t, err)
		rd = bytes.NewReader(raw)
	}
	req := httptest.NewRequest(method, path, rd)
	req.Header.Set("Content-Type", "application/json")
	if authHeader != "" {
		req.Header.Set("Authorization", authHeader)
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatusIsPublic(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodGet, "/api/sync/status", "", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status     string `json:"status"`
		ServerTime int64  `json:"serverTime"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Positive(t, body.ServerTime)
}

func TestAuthRequired(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/sync/pull", "", protocol.PullRequest{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/sync/pull", "Bearer not-a-token", protocol.PullRequest{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	expired, err := auth.GenerateToken("u1", testSecret, -time.Minute)
	require.NoError(t, err)
	rec = doJSON(t, r, http.MethodPost, "/api/sync/pull", "Bearer "+expired, protocol.PullRequest{})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestPushPullFlow(t *testing.T) {
	r := setupRouter(t)
	authHeader := bearerToken(t, "u1")

	now := time.Now().UnixMilli()
	raw, err := json.Marshal(protocol.Checkin{
		ID:        "chk-1",
		Date:      "2024-01-10",
		Content:   "still here",
		CreatedAt: now,
		UpdatedAt: now,
	})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPost, "/api/sync/push", authHeader, protocol.PushRequest{
		Changes: []protocol.Change{{
			Collection:     protocol.CollectionCheckins,
			Operation:      protocol.OperationUpsert,
			Data:           raw,
			LocalUpdatedAt: now,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	var pushResp protocol.PushResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pushResp))
	assert.Equal(t, []string{"chk-1"}, pushResp.Accepted)
	assert.Empty(t, pushResp.Conflicts)

	rec = doJSON(t, r, http.MethodPost, "/api/sync/pull", authHeader, protocol.PullRequest{Watermark: 0})
	require.Equal(t, http.StatusOK, rec.Code)

	var pullResp protocol.PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pullResp))
	require.Len(t, pullResp.Checkins, 1)
	assert.Equal(t, "chk-1", pullResp.Checkins[0].ID)
	assert.Equal(t, "still here", pullResp.Checkins[0].Content)
}

func TestPushPullIsolatedPerToken(t *testing.T) {
	r := setupRouter(t)

	now := time.Now().UnixMilli()
	raw, err := json.Marshal(protocol.Checkin{ID: "chk-1", Date: "2024-01-10", CreatedAt: now, UpdatedAt: now})
	require.NoError(t, err)

	rec := doJSON(t, r, http.MethodPost, "/api/sync/push", bearerToken(t, "u1"), protocol.PushRequest{
		Changes: []protocol.Change{{
			Collection:     protocol.CollectionCheckins,
			Operation:      protocol.OperationUpsert,
			Data:           raw,
			LocalUpdatedAt: now,
		}},
	})
	require.Equal(t, http.StatusOK, rec.Code)

	rec = doJSON(t, r, http.MethodPost, "/api/sync/pull", bearerToken(t, "u2"), protocol.PullRequest{})
	require.Equal(t, http.StatusOK, rec.Code)

	var pullResp protocol.PullResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &pullResp))
	assert.Empty(t, pullResp.Checkins)
}

func TestPushRejectsBadInput(t *testing.T) {
	r := setupRouter(t)
	authHeader := bearerToken(t, "u1")

	req := httptest.NewRequest(http.MethodPost, "/api/sync/push", bytes.NewReader([]byte("not json")))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", authHeader)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	bad := doJSON(t, r, http.MethodPost, "/api/sync/push", authHeader, protocol.PushRequest{
		Changes: []protocol.Change{{Collection: "moods", Operation: protocol.OperationUpsert, Data: json.RawMessage(`{}`)}},
	})
	assert.Equal(t, http.StatusBadRequest, bad.Code)
}

func TestPresignPhoto(t *testing.T) {
	r := setupRouter(t)

	rec := doJSON(t, r, http.MethodPost, "/api/photos/presign", bearerToken(t, "u1"), nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Key string `json:"key"`
		URL string `json:"url"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Contains(t, body.Key, "users/u1/")
	assert.Contains(t, body.URL, body.Key)
	assert.Contains(t, body.URL, "X-Amz-Signature")
}

func TestPresignKeysAreUnique(t *testing.T) {
	r := setupRouter(t)
	authHeader := bearerToken(t, "u1")

	keys := map[string]bool{}
	for i := 0; i < 3; i++ {
		rec := doJSON(t, r, http.MethodPost, "/api/photos/presign", authHeader, nil)
		require.Equal(t, http.StatusOK, rec.Code)
		var body struct {
			Key string `json:"key"`
		}
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
		keys[body.Key] = true
	}
	assert.Len(t, keys, 3)
}
