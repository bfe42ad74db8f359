package catalyst

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/optimization-report/internal/config"
	"github.com/optimization-report/internal/pkg/retry"
)

func TestDirectoryClient_FetchScenes(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful request", func(t *testing.T) {
		var received pointersRequest
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
			body, _ := io.ReadAll(r.Body)
			require.NoError(t, json.Unmarshal(body, &received))

			w.Header().Set("Content-Type", "application/json")
			_, _ = w.Write([]byte(`[{"id":"bafy1","pointers":["0,0","0,1"],"type":"scene"}]`))
		}))
		defer server.Close()

		client := NewDirectoryClient(&config.DirectoryConfig{URL: server.URL, RequestTimeout: 5 * time.Second}, logger)

		scenes, err := client.FetchScenes(context.Background(), []string{"0,0", "0,1", "0,2"})
		require.NoError(t, err)
		require.Len(t, scenes, 1)
		assert.Equal(t, "bafy1", scenes[0].ID)
		assert.Equal(t, []string{"0,0", "0,1"}, scenes[0].Pointers)
		assert.Equal(t, []string{"0,0", "0,1", "0,2"}, received.Pointers)
	})

	t.Run("empty pointers skip the request", func(t *testing.T) {
		client := NewDirectoryClient(&config.DirectoryConfig{URL: "http://127.0.0.1:1", RequestTimeout: time.Second}, logger)
		scenes, err := client.FetchScenes(context.Background(), nil)
		assert.NoError(t, err)
		assert.Nil(t, scenes)
	})

	t.Run("server error is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadGateway)
		}))
		defer server.Close()

		client := NewDirectoryClient(&config.DirectoryConfig{URL: server.URL, RequestTimeout: time.Second}, logger)
		_, err := client.FetchScenes(context.Background(), []string{"0,0"})
		require.Error(t, err)
		assert.False(t, retry.IsPermanent(err))
		assert.Contains(t, err.Error(), "status 502")
	})

	t.Run("client error is permanent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte("too many pointers"))
		}))
		defer server.Close()

		client := NewDirectoryClient(&config.DirectoryConfig{URL: server.URL, RequestTimeout: time.Second}, logger)
		_, err := client.FetchScenes(context.Background(), []string{"0,0"})
		require.Error(t, err)
		assert.True(t, retry.IsPermanent(err))
		assert.Contains(t, err.Error(), "too many pointers")
	})

	t.Run("timeout is transient", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			time.Sleep(200 * time.Millisecond)
		}))
		defer server.Close()

		client := NewDirectoryClient(&config.DirectoryConfig{URL: server.URL, RequestTimeout: 20 * time.Millisecond}, logger)
		_, err := client.FetchScenes(context.Background(), []string{"0,0"})
		require.Error(t, err)
		assert.False(t, retry.IsPermanent(err))
	})
}

func TestWorldsClient_FetchWorlds(t *testing.T) {
	logger := zap.NewNop()

	t.Run("successful request", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodGet, r.Method)
			_, _ = w.Write([]byte(`{"data":[
				{"name":"a.dcl.eth","scenes":[{"id":"s1","title":"A","thumbnail":"t.png","pointers":["0,0","0,1"]}]},
				{"name":"empty.dcl.eth","scenes":[]}
			]}`))
		}))
		defer server.Close()

		client := NewWorldsClient(&config.WorldsConfig{URL: server.URL, RequestTimeout: time.Second}, logger)
		worlds, err := client.FetchWorlds(context.Background())
		require.NoError(t, err)
		require.Len(t, worlds, 2)
		assert.Equal(t, "a.dcl.eth", worlds[0].Name)
		require.Len(t, worlds[0].Scenes, 1)
		assert.Equal(t, "t.png", worlds[0].Scenes[0].Thumbnail)
		assert.Empty(t, worlds[1].Scenes)
	})

	t.Run("malformed body", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`<html>`))
		}))
		defer server.Close()

		client := NewWorldsClient(&config.WorldsConfig{URL: server.URL, RequestTimeout: time.Second}, logger)
		_, err := client.FetchWorlds(context.Background())
		require.Error(t, err)
		assert.True(t, retry.IsPermanent(err))
	})
}
