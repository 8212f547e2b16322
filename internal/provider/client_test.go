package provider

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Afrawles/teampulse/internal/report"
)

func testWindowQuery() report.Query {
	return report.Query{
		Start:    time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC),
		End:      time.Date(2025, 6, 30, 0, 0, 0, 0, time.UTC),
		Subjects: []string{"alice", "bob"},
	}
}

func TestClientPostsQueryParameters(t *testing.T) {
	var gotPath string
	var gotBody metricsRequest

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))

		json.NewEncoder(w).Encode(ChatResult{"alice": {Spaces: map[string]int64{"sp-1": 3}}})
	}))
	defer srv.Close()

	c := NewClient(map[report.Kind]string{report.KindChat: srv.URL})
	res, err := c.ChatActivity(context.Background(), testWindowQuery())

	require.NoError(t, err)
	assert.Equal(t, "/api/metrics/chat", gotPath)
	assert.Equal(t, "2025-06-01", gotBody.StartDate)
	assert.Equal(t, "2025-06-30", gotBody.EndDate)
	assert.Equal(t, []string{"alice", "bob"}, gotBody.Subjects)
	assert.Equal(t, int64(3), res["alice"].Spaces["sp-1"])
}

func TestClientDecodesErrorBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"message": "chat backend is down"})
	}))
	defer srv.Close()

	c := NewClient(map[report.Kind]string{report.KindChat: srv.URL})
	_, err := c.ChatActivity(context.Background(), testWindowQuery())

	require.Error(t, err)
	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusBadGateway, apiErr.Status)
	assert.Contains(t, apiErr.Error(), "chat backend is down")
}

func TestClientErrorWithoutBodyStillStructured(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(map[report.Kind]string{report.KindGerrit: srv.URL})
	_, err := c.ReviewActivity(context.Background(), testWindowQuery())

	var apiErr *APIError
	require.ErrorAs(t, err, &apiErr)
	assert.Equal(t, http.StatusInternalServerError, apiErr.Status)
}

func TestClientUnconfiguredProvider(t *testing.T) {
	c := NewClient(map[report.Kind]string{})
	_, err := c.TrackerActivity(context.Background(), testWindowQuery())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "no endpoint configured")
}

func TestClientHonorsContextCancellation(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server detects the client disconnect and
		// cancels the request context; otherwise srv.Close blocks forever.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	c := NewClient(map[report.Kind]string{report.KindCalendar: srv.URL})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	_, err := c.CalendarActivity(ctx, testWindowQuery())
	require.Error(t, err)
}
