// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package configs carries the reference calibration file so tests and
// tooling share one copy.
package configs

import _ "embed"

// Alignment is the contents of alignment.yaml.
//
//go:embed alignment.yaml
var Alignment []byte
