package feed

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_Results(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/results", r.URL.Path)
		assert.Equal(t, "36", r.URL.Query().Get("gameweek"))
		assert.Equal(t, "secret", r.Header.Get("X-API-Key"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
			{"ref":"m-1","homeScore":2,"awayScore":1,"homeScorers":["Saka","Saka"],"awayScorers":["Son"],"status":"finished"},
			{"ref":"m-2","homeScore":0,"awayScore":0,"status":"in_play"}
		]`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, APIKey: "secret"})
	require.NoError(t, err)

	results, err := client.Results(context.Background(), 36)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "m-1", results[0].Ref)
	assert.Equal(t, []string{"Saka", "Saka"}, results[0].HomeScorers)
	assert.True(t, results[0].Finished())
	assert.False(t, results[1].Finished())
}

func TestClient_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL, RetryCount: 2})
	require.NoError(t, err)

	results, err := client.Results(context.Background(), 1)
	require.NoError(t, err)
	assert.Empty(t, results)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestClient_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	client, err := NewClient(Config{BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = client.Results(context.Background(), 1)
	assert.Error(t, err)
}

func TestNewClient_Disabled(t *testing.T) {
	_, err := NewClient(Config{})
	assert.ErrorIs(t, err, ErrFeedDisabled)
}
