package quandl

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/ternarybob/arbor"
)

const datasetJSON = `{
  "dataset": {
    "dataset_code": "SAP_X",
    "column_names": ["Date", "Open", "High", "Low", "Close", "Change"],
    "data": [
      ["2024-03-05", 170.0, 172.0, 169.5, 171.5, null],
      ["2024-03-04", 168.0, 170.5, 167.0, 169.0, 1.2],
      ["bad-date", 1, 1, 1, 1, 1]
    ]
  }
}`

func TestGetDataset(t *testing.T) {
	var gotPath, gotStart, gotEnd, gotKey string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotStart = r.URL.Query().Get("start_date")
		gotEnd = r.URL.Query().Get("end_date")
		gotKey = r.URL.Query().Get("api_key")
		w.Write([]byte(datasetJSON))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL), WithLogger(arbor.NewLogger()))
	from := time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC)
	to := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)

	ds, err := client.GetDataset(context.Background(), "FSE/SAP_X", from, to)
	require.NoError(t, err)

	assert.Equal(t, "/datasets/FSE/SAP_X.json", gotPath)
	assert.Equal(t, "2024-03-04", gotStart)
	assert.Equal(t, "2024-03-05", gotEnd)
	assert.Equal(t, "key", gotKey)
	assert.Equal(t, []string{"Date", "Open", "High", "Low", "Close", "Change"}, ds.Columns)

	closes, err := ds.Series("Close")
	require.NoError(t, err)
	require.Len(t, closes, 2)
	assert.True(t, closes[0].Date.Equal(to))
	assert.Equal(t, 171.5, closes[0].Value)
	assert.Equal(t, 169.0, closes[1].Value)

	// null cells are skipped
	changes, err := ds.Series("Change")
	require.NoError(t, err)
	assert.Len(t, changes, 1)

	_, err = ds.Series("Last")
	assert.Error(t, err)
}

func TestGetDataset_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		w.Write([]byte(`{"quandl_error":{"code":"QECx02","message":"You have submitted an incorrect Quandl code."}}`))
	}))
	defer server.Close()

	client := NewClient("key", WithBaseURL(server.URL))
	_, err := client.GetDataset(context.Background(), "WIKI/NOPE", time.Time{}, time.Time{})

	var apiErr *APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "QECx02", apiErr.Code)
	assert.Equal(t, "WIKI/NOPE", apiErr.Dataset)
}
