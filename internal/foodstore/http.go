// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package foodstore

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/pdiddy/nutrition-align/internal/httputil"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// DefaultFDCBase is the FoodData Central API root.
const DefaultFDCBase = "https://api.nal.usda.gov/fdc/v1"

const maxPageSize = 200

// FDC nutrient numbers.
const (
	nutrientEnergy  = "208"
	nutrientProtein = "203"
	nutrientFat     = "204"
	nutrientCarbs   = "205"
	nutrientFiber   = "291"
	nutrientSugar   = "269"
	nutrientSodium  = "307"
)

// HTTPStore searches a remote FoodData-Central-style API.
type HTTPStore struct {
	Client    *http.Client
	BaseURL   string
	APIKey    string
	UserAgent string

	// MaxRetries bounds throttling retries; 0 uses the httputil default.
	MaxRetries int
}

// NewHTTPStore builds an HTTPStore from cfg.
func NewHTTPStore(cfg types.StoreConfig) *HTTPStore {
	base := cfg.BaseURL
	if base == "" {
		base = DefaultFDCBase
	}
	return &HTTPStore{
		Client:     &http.Client{Timeout: cfg.Timeout},
		BaseURL:    strings.TrimRight(base, "/"),
		APIKey:     cfg.APIKey,
		UserAgent:  cfg.UserAgent,
		MaxRetries: cfg.MaxRetries,
	}
}

// Search implements Store.
func (s *HTTPStore) Search(ctx context.Context, query string, limit int) ([]types.CandidateEntry, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, nil
	}
	if limit <= 0 || limit > maxPageSize {
		limit = maxPageSize
	}

	params := url.Values{
		"query":    {query},
		"pageSize": {strconv.Itoa(limit)},
		"dataType": {"Foundation,SR Legacy,Survey (FNDDS),Branded"},
	}
	if s.APIKey != "" {
		params.Set("api_key", s.APIKey)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.BaseURL+"/foods/search?"+params.Encode(), nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	if s.UserAgent != "" {
		req.Header.Set("User-Agent", s.UserAgent)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := httputil.DoWithRetry(ctx, s.Client, req, s.MaxRetries)
	if err != nil {
		return nil, fmt.Errorf("catalogue API request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalogue API returned HTTP %d", resp.StatusCode)
	}

	var sr fdcSearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		return nil, fmt.Errorf("parsing catalogue response: %w", err)
	}

	out := make([]types.CandidateEntry, 0, len(sr.Foods))
	for _, f := range sr.Foods {
		src, ok := sourceFromDataType(f.DataType)
		if !ok || f.Description == "" {
			continue
		}
		out = append(out, types.CandidateEntry{
			ID:         strconv.FormatInt(f.FDCID, 10),
			Name:       f.Description,
			SourceType: src,
			Nutrients:  f.nutrients(),
		})
	}
	return out, nil
}

type fdcSearchResponse struct {
	TotalHits int       `json:"totalHits"`
	Foods     []fdcFood `json:"foods"`
}

type fdcFood struct {
	FDCID         int64         `json:"fdcId"`
	Description   string        `json:"description"`
	DataType      string        `json:"dataType"`
	BrandOwner    string        `json:"brandOwner,omitempty"`
	FoodNutrients []fdcNutrient `json:"foodNutrients"`
}

type fdcNutrient struct {
	NutrientNumber string  `json:"nutrientNumber"`
	NutrientName   string  `json:"nutrientName"`
	UnitName       string  `json:"unitName"`
	Value          float64 `json:"value"`
}

func (f fdcFood) nutrients() types.Nutrients {
	var n types.Nutrients
	for _, fn := range f.FoodNutrients {
		switch fn.NutrientNumber {
		case nutrientEnergy:
			if strings.EqualFold(fn.UnitName, "kcal") {
				n.EnergyKcal = fn.Value
			}
		case nutrientProtein:
			n.ProteinG = fn.Value
		case nutrientFat:
			n.FatG = fn.Value
		case nutrientCarbs:
			n.CarbsG = fn.Value
		case nutrientFiber:
			n.FiberG = fn.Value
		case nutrientSugar:
			n.SugarG = fn.Value
		case nutrientSodium:
			n.SodiumMg = fn.Value
		}
	}
	return n
}

// sourceFromDataType maps FDC data types onto source trust levels. Survey
// foods are curated reference data and rank with legacy entries.
func sourceFromDataType(dt string) (types.SourceType, bool) {
	switch strings.ToLower(dt) {
	case "foundation":
		return types.SourceFoundation, true
	case "sr legacy", "survey (fndds)":
		return types.SourceLegacy, true
	case "branded":
		return types.SourceBranded, true
	}
	return "", false
}
