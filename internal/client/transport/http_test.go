package transport

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wh131462/stillalive/internal/client/models"
	"github.com/wh131462/stillalive/internal/logging"
	"github.com/wh131462/stillalive/internal/protocol"
)

func testClient(t *testing.T, url string) *HTTPClient {
	t.Helper()
	return NewHTTPClient(url, "test-token", 2*time.Second, 2,
		logging.NewSlogLogger(slog.New(slog.NewTextHandler(io.Discard, nil))))
}

func TestHTTPClient_Push(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pushPath, r.URL.Path)
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		var req protocol.PushRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, int64(100), req.Watermark)
		require.Len(t, req.Changes, 1)
		assert.Equal(t, protocol.CollectionCheckins, req.Changes[0].Collection)

		json.NewEncoder(w).Encode(protocol.PushResponse{
			SyncedAt: 200,
			Accepted: []string{"c1"},
		})
	}))
	defer srv.Close()

	raw, err := json.Marshal(protocol.Checkin{ID: "c1", Date: "2024-01-10"})
	require.NoError(t, err)

	resp, err := testClient(t, srv.URL).Push(context.Background(), &protocol.PushRequest{
		Watermark: 100,
		Changes: []protocol.Change{{
			Collection:     protocol.CollectionCheckins,
			Operation:      protocol.OperationUpsert,
			Data:           raw,
			LocalUpdatedAt: 150,
		}},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200), resp.SyncedAt)
	assert.Equal(t, []string{"c1"}, resp.Accepted)
	assert.Empty(t, resp.Conflicts)
}

func TestHTTPClient_Pull(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, pullPath, r.URL.Path)
		json.NewEncoder(w).Encode(protocol.PullResponse{
			Checkins:   []protocol.Checkin{{ID: "c1", Date: "2024-01-10"}},
			Contacts:   []protocol.Contact{{ID: "p1", Name: "Mira"}},
			ServerTime: 500,
		})
	}))
	defer srv.Close()

	resp, err := testClient(t, srv.URL).Pull(context.Background(), &protocol.PullRequest{Watermark: 0})
	require.NoError(t, err)
	assert.Len(t, resp.Checkins, 1)
	assert.Len(t, resp.Contacts, 1)
	assert.Equal(t, int64(500), resp.ServerTime)
}

func TestHTTPClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(protocol.PullResponse{ServerTime: 1})
	}))
	defer srv.Close()

	resp, err := testClient(t, srv.URL).Pull(context.Background(), &protocol.PullRequest{})
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ServerTime)
	assert.Equal(t, int32(2), calls.Load())
}

func TestHTTPClient_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad token", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := testClient(t, srv.URL).Pull(context.Background(), &protocol.PullRequest{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "401")
	assert.Equal(t, int32(1), calls.Load())
}

func TestHTTPClient_Probe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, probePath, r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	assert.NoError(t, testClient(t, srv.URL).Probe(context.Background()))

	srv.Close()
	assert.Error(t, testClient(t, srv.URL).Probe(context.Background()))
}

func TestChangeFromPending(t *testing.T) {
	now := time.Date(2024, 1, 10, 12, 0, 0, 0, time.UTC)

	t.Run("upsert checkin", func(t *testing.T) {
		ch, err := ChangeFromPending(&models.PendingChange{
			ID:         "c1",
			Collection: models.CollectionCheckins,
			Operation:  models.OperationUpsert,
			Payload: models.Payload{Checkin: &models.Checkin{
				ID: "c1", Date: "2024-01-10", Mood: models.MoodCalm,
				CreatedAt: now, UpdatedAt: now,
			}},
			Timestamp: now,
		})
		require.NoError(t, err)
		assert.Equal(t, protocol.CollectionCheckins, ch.Collection)
		assert.Equal(t, now.UnixMilli(), ch.LocalUpdatedAt)

		var w protocol.Checkin
		require.NoError(t, json.Unmarshal(ch.Data, &w))
		assert.Equal(t, "2024-01-10", w.Date)
		assert.Equal(t, "calm", w.Mood)
	})

	t.Run("delete carries only the id", func(t *testing.T) {
		ch, err := ChangeFromPending(&models.PendingChange{
			ID:         "p1",
			Collection: models.CollectionContacts,
			Operation:  models.OperationDelete,
			Timestamp:  now,
		})
		require.NoError(t, err)

		var d protocol.DeleteData
		require.NoError(t, json.Unmarshal(ch.Data, &d))
		assert.Equal(t, "p1", d.ID)
	})
}

func TestDecodeConflict(t *testing.T) {
	raw, err := json.Marshal(protocol.Contact{ID: "p1", Name: "Mira", UpdatedAt: 100})
	require.NoError(t, err)

	payload, err := DecodeConflict(&protocol.Conflict{
		ID:         "p1",
		Collection: protocol.CollectionContacts,
		ServerData: raw,
	})
	require.NoError(t, err)
	require.NotNil(t, payload.Contact)
	assert.Equal(t, "Mira", payload.Contact.Name)
	assert.Equal(t, int64(100), payload.Contact.UpdatedAt.UnixMilli())

	_, err = DecodeConflict(&protocol.Conflict{ID: "x", Collection: "unknown"})
	assert.Error(t, err)
}
