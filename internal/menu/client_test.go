package menu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_ListAndSearch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[{"id":"m1","name":"Sticky Honey Roast","type":"Main","price":"18"},{"id":"m2","name":"Tea","price":null}]`))
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL + "/")
	items, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, items, 2)
	assert.Equal(t, "18.00", items[0].Price.String())
	assert.Equal(t, "N/A", items[1].Price.String())

	_, err = c.Search(context.Background(), "honey")
	require.NoError(t, err)
	assert.Equal(t, "q=honey", gotQuery)

	got, err := c.Search(context.Background(), "   ")
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestClient_Errors(t *testing.T) {
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/menu-items/missing":
			w.WriteHeader(http.StatusNotFound)
		default:
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))
	t.Cleanup(ts.Close)

	c := NewClient(ts.URL)

	_, err := c.Get(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = c.List(context.Background())
	assert.ErrorIs(t, err, ErrBadStatus)
}

func TestClient_Unavailable(t *testing.T) {
	ts := httptest.NewServer(http.NotFoundHandler())
	url := ts.URL
	ts.Close()

	_, err := NewClient(url).List(context.Background())
	assert.ErrorIs(t, err, ErrUnavailable)
}
