// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package align

import (
	"github.com/pdiddy/nutrition-align/internal/config"
	"github.com/pdiddy/nutrition-align/internal/retrieve"
)

var (
	// ErrConfigurationUnavailable reports missing or malformed calibration.
	ErrConfigurationUnavailable = config.ErrUnavailable

	// ErrCandidateStoreUnavailable reports that the candidate store could
	// not answer any variant query.
	ErrCandidateStoreUnavailable = retrieve.ErrUnavailable
)
