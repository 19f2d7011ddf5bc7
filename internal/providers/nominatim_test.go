package providers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchReturnsFirstMatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/search", r.URL.Path)
		assert.Equal(t, "jsonv2", r.URL.Query().Get("format"))
		assert.Equal(t, "1", r.URL.Query().Get("addressdetails"))
		assert.Equal(t, "Kyiv", r.URL.Query().Get("q"))
		assert.NotEmpty(t, r.Header.Get("User-Agent"))
		w.Write([]byte(`[{"place_id":1,"display_name":"Kyiv"},{"place_id":2}]`))
	}))
	defer server.Close()

	n := NewNominatim(newTestClient(), server.URL)
	result, err := n.Search(context.Background(), "Kyiv")
	require.NoError(t, err)
	assert.JSONEq(t, `{"place_id":1,"display_name":"Kyiv"}`, string(result))
}

func TestSearchEmptyListIsNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[]`))
	}))
	defer server.Close()

	n := NewNominatim(newTestClient(), server.URL)
	_, err := n.Search(context.Background(), "nowhere")
	assert.ErrorIs(t, err, ErrNoResults)
}

func TestReversePassesPayloadThrough(t *testing.T) {
	payload := `{"place_id":42,"display_name":"Maidan Nezalezhnosti","address":{"city":"Kyiv"}}`
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/reverse", r.URL.Path)
		assert.Equal(t, "50.45", r.URL.Query().Get("lat"))
		assert.Equal(t, "30.52", r.URL.Query().Get("lon"))
		w.Write([]byte(payload))
	}))
	defer server.Close()

	n := NewNominatim(newTestClient(), server.URL)
	result, err := n.Reverse(context.Background(), 50.45, 30.52)
	require.NoError(t, err)
	assert.JSONEq(t, payload, string(result))
}

func TestReverseSurfacesProviderError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`{"error":"Unable to geocode"}`))
	}))
	defer server.Close()

	n := NewNominatim(newTestClient(), server.URL)
	_, err := n.Reverse(context.Background(), 0, 0)
	require.ErrorIs(t, err, ErrRejected)
	assert.Contains(t, err.Error(), "Unable to geocode")
}
