// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import "time"

// AlignmentConfig is the calibration data for one process. It is loaded
// once, never mutated, and passed explicitly to every component.
type AlignmentConfig struct {
	// Version is a content-derived identifier of the loaded file. Not read
	// from YAML.
	Version string `json:"version" yaml:"-"`

	// Classes lists class intents in priority order (first wins conflicts).
	Classes []ClassRule `json:"classes" yaml:"classes"`

	// Guardrails maps a class to blocked name substrings.
	Guardrails map[ClassIntent][]string `json:"guardrails" yaml:"guardrails"`

	Thresholds ThresholdConfig `json:"thresholds" yaml:"thresholds"`
	Scoring    ScoringConfig   `json:"scoring" yaml:"scoring"`

	// ExpectedEnergy maps a canonical food name or a class to an expected
	// kcal/100 g used by energy-density similarity. Food keys win.
	ExpectedEnergy map[string]float64 `json:"expected_energy" yaml:"expected_energy"`

	Normalizer NormalizerConfig `json:"normalizer" yaml:"normalizer"`
	Variants   VariantConfig    `json:"variants" yaml:"variants"`
	Markers    MarkerConfig     `json:"markers" yaml:"markers"`

	// Methods maps a cooking method to its conversion profile.
	Methods    map[string]MethodProfile `json:"methods" yaml:"methods"`
	Conversion ConversionConfig         `json:"conversion" yaml:"conversion"`

	Branded    BrandedConfig   `json:"branded" yaml:"branded"`
	Composites CompositeConfig `json:"composites" yaml:"composites"`
	Fallback   FallbackConfig  `json:"fallback" yaml:"fallback"`
	Retrieval  RetrievalConfig `json:"retrieval" yaml:"retrieval"`
}

// ClassRule assigns a class when any keyword appears in the normalized name.
type ClassRule struct {
	Name     ClassIntent `json:"name" yaml:"name"`
	Keywords []string    `json:"keywords" yaml:"keywords"`
}

// ThresholdConfig holds acceptance thresholds.
type ThresholdConfig struct {
	Default   float64                 `json:"default" yaml:"default"`
	Overrides map[ClassIntent]float64 `json:"overrides,omitempty" yaml:"overrides,omitempty"`
}

// ScoringConfig weights the token and energy components of a score.
type ScoringConfig struct {
	TokenWeight  float64 `json:"token_weight" yaml:"token_weight"`
	EnergyWeight float64 `json:"energy_weight" yaml:"energy_weight"`

	// ExtraneousPenalty discounts single-token matches per extra token.
	ExtraneousPenalty float64 `json:"extraneous_penalty" yaml:"extraneous_penalty"`

	// NeutralTokens never count as extraneous (e.g. "raw", "fresh").
	NeutralTokens []string `json:"neutral_tokens,omitempty" yaml:"neutral_tokens,omitempty"`

	Bonuses []BonusRule `json:"bonuses,omitempty" yaml:"bonuses,omitempty"`

	// MaxBonus caps the summed bonus for one candidate.
	MaxBonus float64 `json:"max_bonus" yaml:"max_bonus"`
}

// BonusRule adds Value when the query method is in Methods (any method if
// empty) and the candidate name contains one of CandidateTerms.
type BonusRule struct {
	Name           string   `json:"name" yaml:"name"`
	Methods        []string `json:"methods,omitempty" yaml:"methods,omitempty"`
	CandidateTerms []string `json:"candidate_terms" yaml:"candidate_terms"`
	Value          float64  `json:"value" yaml:"value"`
}

// HintRule sets Hints[Key]=Value when Pattern appears in the raw name.
type HintRule struct {
	Pattern string `json:"pattern" yaml:"pattern"`
	Key     string `json:"key" yaml:"key"`
	Value   string `json:"value" yaml:"value"`
}

// IgnoreRule short-circuits alignment for names containing Term.
type IgnoreRule struct {
	Term   string `json:"term" yaml:"term"`
	Reason string `json:"reason" yaml:"reason"`
}

// NormalizerConfig drives name normalization.
type NormalizerConfig struct {
	// Plurals is the singularization whitelist: plural -> singular.
	Plurals map[string]string `json:"plurals" yaml:"plurals"`

	// Compounds maps a multi-word surface phrase to its canonical compound.
	Compounds map[string]string `json:"compounds" yaml:"compounds"`

	// MethodAliases maps a name token to "raw" or a method label.
	MethodAliases map[string]string `json:"method_aliases" yaml:"method_aliases"`

	// Descriptors are removed from the searchable name.
	Descriptors []string `json:"descriptors" yaml:"descriptors"`

	// StopWords are dropped when tokenizing names.
	StopWords []string `json:"stop_words" yaml:"stop_words"`

	Hints  []HintRule   `json:"hints,omitempty" yaml:"hints,omitempty"`
	Ignore []IgnoreRule `json:"ignore,omitempty" yaml:"ignore,omitempty"`
}

// VariantConfig drives query variant generation.
type VariantConfig struct {
	// Synonyms maps a canonical name to alternate names.
	Synonyms map[string][]string `json:"synonyms" yaml:"synonyms"`

	// PluralPreferredClasses lists classes whose catalogue names are
	// conventionally plural (e.g. "Grapes, raw").
	PluralPreferredClasses []ClassIntent `json:"plural_preferred_classes" yaml:"plural_preferred_classes"`
}

// MarkerConfig lists name substrings with cascade meaning.
type MarkerConfig struct {
	// Cooked marks an entry as a cooked form.
	Cooked []string `json:"cooked" yaml:"cooked"`

	// Processed triggers the Stage 1c raw-preference override and blocks
	// Stage 2 seeds.
	Processed []string `json:"processed" yaml:"processed"`

	// Fragments are ingredient-fragment forms (flour, leaves, starch, powder)
	// never used as a Stage 2 seed.
	Fragments []string `json:"fragments" yaml:"fragments"`
}

// Band is an inclusive kcal/100 g range.
type Band struct {
	Min float64 `json:"min" yaml:"min"`
	Max float64 `json:"max" yaml:"max"`
}

// Contains reports whether v lies within the band.
func (b Band) Contains(v float64) bool {
	return v >= b.Min && v <= b.Max
}

// MethodProfile describes how a cooking method changes a raw food.
type MethodProfile struct {
	// HydrationFactor multiplies mass for water uptake (1 = none).
	HydrationFactor float64 `json:"hydration_factor" yaml:"hydration_factor"`

	// ShrinkageFactor is the fraction of mass lost (0 = none).
	ShrinkageFactor float64 `json:"shrinkage_factor" yaml:"shrinkage_factor"`

	// OilUptakeG is grams of oil absorbed per 100 g cooked food.
	OilUptakeG float64 `json:"oil_uptake_g" yaml:"oil_uptake_g"`

	// EnergyBand is the plausible cooked kcal/100 g range.
	EnergyBand Band `json:"energy_band" yaml:"energy_band"`
}

// ConversionConfig holds conversion validation tolerances.
type ConversionConfig struct {
	// AtwaterTolerance is the allowed relative gap between stated and
	// Atwater-computed energy.
	AtwaterTolerance float64 `json:"atwater_tolerance" yaml:"atwater_tolerance"`

	// AtwaterFloorKcal is the minimum absolute gap always allowed.
	AtwaterFloorKcal float64 `json:"atwater_floor_kcal" yaml:"atwater_floor_kcal"`
}

// BrandedConfig gates Stage 3/4 branded matches.
type BrandedConfig struct {
	MinTokenOverlap float64 `json:"min_token_overlap" yaml:"min_token_overlap"`
	MinScore        float64 `json:"min_score" yaml:"min_score"`
}

// ComponentDef is one part of a composite dish.
type ComponentDef struct {
	Name     string  `json:"name" yaml:"name"`
	Form     string  `json:"form,omitempty" yaml:"form,omitempty"`
	Fraction float64 `json:"fraction" yaml:"fraction"`
}

// CompositeDef is a known dish with a fixed decomposition.
type CompositeDef struct {
	Name       string         `json:"name" yaml:"name"`
	Aliases    []string       `json:"aliases,omitempty" yaml:"aliases,omitempty"`
	Components []ComponentDef `json:"components" yaml:"components"`
}

// CompositeConfig drives Stage 5 (fixed table) and Stage 5B (rules).
type CompositeConfig struct {
	Dishes []CompositeDef `json:"dishes" yaml:"dishes"`

	// Separators split a name into equal-share components ("and", "with").
	Separators []string `json:"separators" yaml:"separators"`

	// RuleBases maps a dish suffix ("salad") to base components; the
	// remaining words become one more component taking the residual share.
	RuleBases map[string][]ComponentDef `json:"rule_bases" yaml:"rule_bases"`

	// MassPrecisionG is the rounding step for apportioned masses.
	MassPrecisionG float64 `json:"mass_precision_g" yaml:"mass_precision_g"`
}

// FallbackEntry is a curated Stage Z profile with known energy bounds.
type FallbackEntry struct {
	Name       string    `json:"name" yaml:"name"`
	Nutrients  Nutrients `json:"nutrients" yaml:"nutrients"`
	EnergyBand Band      `json:"energy_band" yaml:"energy_band"`
}

// FallbackConfig drives Stage Z.
type FallbackConfig struct {
	// Entries is keyed by canonical food name.
	Entries map[string]FallbackEntry `json:"entries" yaml:"entries"`

	// EnergyProxies maps a class to a kcal/100 g used when no entry exists.
	EnergyProxies map[ClassIntent]float64 `json:"energy_proxies" yaml:"energy_proxies"`

	// BarredClasses never reach Stage Z.
	BarredClasses []ClassIntent `json:"barred_classes" yaml:"barred_classes"`

	// AdvisoryClasses become eligible when the query is cooked (the
	// cooked-vegetable-form signal), even with unrejected candidates.
	AdvisoryClasses []ClassIntent `json:"advisory_classes" yaml:"advisory_classes"`
}

// RetrievalConfig bounds candidate-store queries.
type RetrievalConfig struct {
	MaxResults int `json:"max_results" yaml:"max_results"`

	// TopRejected caps rejected candidates kept per stage in telemetry.
	TopRejected int `json:"top_rejected" yaml:"top_rejected"`
}

// StoreBackend selects the candidate store implementation.
type StoreBackend string

const (
	StoreSQLite StoreBackend = "sqlite"
	StoreHTTP   StoreBackend = "http"
)

// HTTPConfig holds shared HTTP settings.
type HTTPConfig struct {
	Timeout   time.Duration `json:"timeout" yaml:"timeout" mapstructure:"timeout"`
	UserAgent string        `json:"user_agent" yaml:"user_agent" mapstructure:"user_agent"`
}

// StoreConfig selects and configures the candidate store.
type StoreConfig struct {
	Backend StoreBackend `json:"backend" yaml:"backend" mapstructure:"backend"`

	// CatalogDir holds catalogue YAML/JSON files ingested into SQLite.
	CatalogDir string `json:"catalog_dir" yaml:"catalog_dir" mapstructure:"catalog_dir"`

	// IndexDir holds the SQLite database.
	IndexDir string `json:"index_dir" yaml:"index_dir" mapstructure:"index_dir"`

	HTTPConfig `yaml:",inline" mapstructure:",squash"`

	// BaseURL is the remote search API root for the http backend.
	BaseURL string `json:"base_url" yaml:"base_url" mapstructure:"base_url"`

	// APIKey authenticates against the remote API.
	APIKey string `json:"api_key,omitempty" yaml:"api_key,omitempty" mapstructure:"api_key"`

	// MaxRetries bounds retries of throttled remote requests (0 = default).
	MaxRetries int `json:"max_retries,omitempty" yaml:"max_retries,omitempty" mapstructure:"max_retries"`
}

// CacheConfig configures the optional redis search cache.
type CacheConfig struct {
	Enabled bool          `json:"enabled" yaml:"enabled" mapstructure:"enabled"`
	Addr    string        `json:"addr" yaml:"addr" mapstructure:"addr"`
	TTL     time.Duration `json:"ttl" yaml:"ttl" mapstructure:"ttl"`
	Prefix  string        `json:"prefix" yaml:"prefix" mapstructure:"prefix"`
}

// RetrieverConfig bounds access to the candidate store.
type RetrieverConfig struct {
	// MaxConcurrent caps in-flight store queries across all items.
	MaxConcurrent int `json:"max_concurrent" yaml:"max_concurrent" mapstructure:"max_concurrent"`

	// RatePerSecond and Burst configure the token bucket (0 = unlimited).
	RatePerSecond float64 `json:"rate_per_second" yaml:"rate_per_second" mapstructure:"rate_per_second"`
	Burst         int     `json:"burst" yaml:"burst" mapstructure:"burst"`

	// QueryTimeout bounds one store call.
	QueryTimeout time.Duration `json:"query_timeout" yaml:"query_timeout" mapstructure:"query_timeout"`

	// Retries is the number of extra attempts after a failed store call.
	Retries    int           `json:"retries" yaml:"retries" mapstructure:"retries"`
	RetryDelay time.Duration `json:"retry_delay" yaml:"retry_delay" mapstructure:"retry_delay"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level  string `json:"level" yaml:"level" mapstructure:"level"`
	Format string `json:"format" yaml:"format" mapstructure:"format"`
}

// RuntimeConfig groups process settings read by the CLI.
type RuntimeConfig struct {
	AlignmentFile string          `json:"alignment_file" yaml:"alignment_file" mapstructure:"alignment_file"`
	Store         StoreConfig     `json:"store" yaml:"store" mapstructure:"store"`
	Cache         CacheConfig     `json:"cache" yaml:"cache" mapstructure:"cache"`
	Retriever     RetrieverConfig `json:"retriever" yaml:"retriever" mapstructure:"retriever"`
	Logging       LoggingConfig   `json:"logging" yaml:"logging" mapstructure:"logging"`

	// Workers bounds concurrent item alignment in a batch.
	Workers int `json:"workers" yaml:"workers" mapstructure:"workers"`

	// TelemetryDir receives batch telemetry files.
	TelemetryDir string `json:"telemetry_dir" yaml:"telemetry_dir" mapstructure:"telemetry_dir"`
}
