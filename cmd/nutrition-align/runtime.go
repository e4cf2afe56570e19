// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/pdiddy/nutrition-align/configs"
	"github.com/pdiddy/nutrition-align/internal/align"
	"github.com/pdiddy/nutrition-align/internal/config"
	"github.com/pdiddy/nutrition-align/internal/foodstore"
	"github.com/pdiddy/nutrition-align/internal/metrics"
	"github.com/pdiddy/nutrition-align/internal/secrets"
	"github.com/pdiddy/nutrition-align/pkg/types"
)

// loadAlignment reads the calibration file, or the built-in reference
// calibration when none is configured.
func loadAlignment(rc types.RuntimeConfig) (*types.AlignmentConfig, error) {
	if rc.AlignmentFile == "" {
		return config.Parse(configs.Alignment)
	}
	return config.Load(rc.AlignmentFile)
}

// openStore builds the configured candidate store. The returned cleanup
// releases database and redis connections.
func openStore(ctx context.Context, rc types.RuntimeConfig) (foodstore.Store, func(), error) {
	var (
		store   foodstore.Store
		closers []func()
	)
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	switch rc.Store.Backend {
	case types.StoreSQLite, "":
		s, err := foodstore.NewSQLiteStore(rc.Store)
		if err != nil {
			return nil, nil, fmt.Errorf("%w: %v", align.ErrCandidateStoreUnavailable, err)
		}
		closers = append(closers, func() { s.Close() })
		store = s
	case types.StoreHTTP:
		key, err := secrets.Resolve(viper.GetString("secrets_dir"), secrets.FDCAPIKey, rc.Store.APIKey)
		if err != nil {
			return nil, nil, err
		}
		cfg := rc.Store
		cfg.APIKey = key
		if cfg.APIKey == "" {
			logger.Warn("no API key configured for http store")
		}
		store = foodstore.NewHTTPStore(cfg)
	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", rc.Store.Backend)
	}

	if rc.Cache.Enabled {
		cache, client, err := foodstore.NewRedisCache(ctx, rc.Cache.Addr)
		if err != nil {
			logger.Warn("search cache disabled", zap.Error(err))
		} else {
			closers = append(closers, func() { client.Close() })
			store = foodstore.NewCachedStore(store, cache, rc.Cache, logger)
			logger.Debug("search cache enabled", zap.String("addr", rc.Cache.Addr))
		}
	}
	return store, cleanup, nil
}

// newAligner wires calibration, store and metrics into an Aligner.
func newAligner(ctx context.Context, mode align.Mode, reg prometheus.Registerer) (*align.Aligner, func(), error) {
	rc, err := runtimeConfig()
	if err != nil {
		return nil, nil, err
	}

	cfg, err := loadAlignment(rc)
	if err != nil {
		if mode == align.ModeBatch {
			return nil, nil, err
		}
		logger.Warn("alignment configuration unavailable", zap.Error(err))
	}

	store, cleanup, err := openStore(ctx, rc)
	if err != nil {
		return nil, nil, err
	}

	var rec metrics.Recorder = metrics.Nop{}
	if reg != nil {
		rec = metrics.NewPrometheus(reg, metrics.Config{})
	}

	a, err := align.New(cfg, store, align.Options{
		Mode:      mode,
		Logger:    logger,
		Metrics:   rec,
		Retriever: rc.Retriever,
		Workers:   rc.Workers,
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	return a, cleanup, nil
}
