// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/nutrition-align/internal/httputil"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

const fdcResponse = `{
  "totalHits": 4,
  "foods": [
    {
      "fdcId": 174683,
      "description": "Grapes, red or green (European type, such as Thompson seedless), raw",
      "dataType": "SR Legacy",
      "foodNutrients": [
        {"nutrientNumber": "208", "nutrientName": "Energy", "unitName": "KCAL", "value": 69},
        {"nutrientNumber": "268", "nutrientName": "Energy", "unitName": "kJ", "value": 288},
        {"nutrientNumber": "203", "nutrientName": "Protein", "unitName": "G", "value": 0.72},
        {"nutrientNumber": "204", "nutrientName": "Total lipid (fat)", "unitName": "G", "value": 0.16},
        {"nutrientNumber": "205", "nutrientName": "Carbohydrate, by difference", "unitName": "G", "value": 18.1},
        {"nutrientNumber": "291", "nutrientName": "Fiber, total dietary", "unitName": "G", "value": 0.9},
        {"nutrientNumber": "307", "nutrientName": "Sodium, Na", "unitName": "MG", "value": 2}
      ]
    },
    {"fdcId": 2346411, "description": "Grapes, green, seedless, raw", "dataType": "Foundation", "foodNutrients": []},
    {"fdcId": 555, "description": "Grape snacks", "dataType": "Branded", "brandOwner": "Acme", "foodNutrients": []},
    {"fdcId": 777, "description": "Grape experimental", "dataType": "Experimental", "foodNutrients": []}
  ]
}`

func TestHTTPStoreSearch(t *testing.T) {
	var gotQuery, gotKey, gotPageSize, gotUA string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/foods/search", r.URL.Path)
		gotQuery = r.URL.Query().Get("query")
		gotKey = r.URL.Query().Get("api_key")
		gotPageSize = r.URL.Query().Get("pageSize")
		gotUA = r.Header.Get("User-Agent")
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(fdcResponse))
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL + "/", APIKey: "k", HTTPConfig: types.HTTPConfig{UserAgent: "nutrition-align-test", Timeout: 5 * time.Second}})
	got, err := s.Search(context.Background(), "grapes", 10)
	require.NoError(t, err)

	assert.Equal(t, "grapes", gotQuery)
	assert.Equal(t, "k", gotKey)
	assert.Equal(t, "10", gotPageSize)
	assert.Equal(t, "nutrition-align-test", gotUA)

	require.Len(t, got, 3, "unknown data types are skipped")
	assert.Equal(t, "174683", got[0].ID)
	assert.Equal(t, types.SourceLegacy, got[0].SourceType)
	assert.Equal(t, types.SourceFoundation, got[1].SourceType)
	assert.Equal(t, types.SourceBranded, got[2].SourceType)

	n := got[0].Nutrients
	assert.InDelta(t, 69, n.EnergyKcal, 1e-9, "kJ energy is ignored")
	assert.InDelta(t, 0.72, n.ProteinG, 1e-9)
	assert.InDelta(t, 0.16, n.FatG, 1e-9)
	assert.InDelta(t, 18.1, n.CarbsG, 1e-9)
	assert.InDelta(t, 0.9, n.FiberG, 1e-9)
	assert.InDelta(t, 2, n.SodiumMg, 1e-9)
}

func TestHTTPStoreThrottled(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(`{"foods": []}`))
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL})
	got, err := s.Search(context.Background(), "kale", 0)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPStoreConfiguredRetries(t *testing.T) {
	old := httputil.RetryBaseDelay
	httputil.RetryBaseDelay = time.Millisecond
	defer func() { httputil.RetryBaseDelay = old }()

	var calls int32
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer ts.Close()

	s := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL, MaxRetries: 1})
	_, err := s.Search(context.Background(), "kale", 0)
	require.Error(t, err)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestHTTPStoreErrors(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantMsg string
	}{
		{name: "server error", status: http.StatusInternalServerError, wantMsg: "HTTP 500"},
		{name: "bad json", status: http.StatusOK, body: "{", wantMsg: "parsing catalogue response"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			_, err := NewHTTPStore(types.StoreConfig{BaseURL: ts.URL}).Search(context.Background(), "kale", 5)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestHTTPStoreEmptyQuery(t *testing.T) {
	got, err := NewHTTPStore(types.StoreConfig{BaseURL: "http://127.0.0.1:0"}).Search(context.Background(), " ", 5)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestNewHTTPStoreDefaults(t *testing.T) {
	s := NewHTTPStore(types.StoreConfig{})
	assert.Equal(t, DefaultFDCBase, s.BaseURL)
	assert.Zero(t, s.MaxRetries)

	s = NewHTTPStore(types.StoreConfig{MaxRetries: 5})
	assert.Equal(t, 5, s.MaxRetries)
}
