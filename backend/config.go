package main

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
)

const (
	NullFormulaStatic  = "static"
	NullFormulaStepped = "stepped"
	NullFormulaSmooth  = "smooth"
)

const (
	QCacheEvictDepth  = "depth"
	QCacheEvictLRU    = "lru"
	QCacheEvictHybrid = "hybrid"
)

type Config struct {
	// Null-move pruning
	NullMoveEnabled        bool   `json:"null_move_enabled"`
	NullMoveMinDepth       int    `json:"null_move_min_depth"`
	NullMoveBaseReduction  int    `json:"null_move_base_reduction"`
	NullMoveFormula        string `json:"null_move_formula"`
	NullVerificationMargin int    `json:"null_verification_margin"`
	MateThreatMargin       int    `json:"mate_threat_margin"`

	// Late-move reduction
	LMREnabled                bool `json:"lmr_enabled"`
	LMRMinDepth               int  `json:"lmr_min_depth"`
	LMRMoveThreshold          int  `json:"lmr_move_threshold"`
	LMRResearchMarginQuiet    int  `json:"lmr_research_margin_quiet"`
	LMRResearchMarginTactical int  `json:"lmr_research_margin_tactical"`

	// Internal iterative deepening
	IIDEnabled       bool `json:"iid_enabled"`
	IIDMinDepth      int  `json:"iid_min_depth"`
	IIDBaseReduction int  `json:"iid_base_reduction"`

	// Time pressure thresholds, as remaining-time fractions.
	PressureLowFraction    float64 `json:"pressure_low_fraction"`
	PressureMediumFraction float64 `json:"pressure_medium_fraction"`
	PressureHighFraction   float64 `json:"pressure_high_fraction"`

	// Transposition table
	TTSize           int    `json:"tt_size"`
	TTBuckets        int    `json:"tt_buckets"`
	TTShards         int    `json:"tt_shards"`
	TTPersistEnabled bool   `json:"tt_persist_enabled"`
	TTPersistPath    string `json:"tt_persist_path"`

	// Quiescence search
	QSMaxDepth         int    `json:"qs_max_depth"`
	QSCheckDepth       int    `json:"qs_check_depth"`
	QSHighValueCapture int    `json:"qs_high_value_capture"`
	QSDeltaMargin      int    `json:"qs_delta_margin"`
	QSFutilityMargin   int    `json:"qs_futility_margin"`
	QSCacheSize        int    `json:"qs_cache_size"`
	QSCacheEvictPolicy string `json:"qs_cache_evict_policy"`

	// Root search
	AspirationEnabled     bool `json:"aspiration_enabled"`
	AspirationWindow      int  `json:"aspiration_window"`
	Workers               int  `json:"workers"`
	TacticalMoveThreshold int  `json:"tactical_move_threshold"`
	LogSearchStats        bool `json:"log_search_stats"`
}

func DefaultConfig() Config {
	return Config{
		NullMoveEnabled:        true,
		NullMoveMinDepth:       3,
		NullMoveBaseReduction:  2,
		NullMoveFormula:        NullFormulaSmooth,
		NullVerificationMargin: 120,
		MateThreatMargin:       40,

		LMREnabled:                true,
		LMRMinDepth:               3,
		LMRMoveThreshold:          4,
		LMRResearchMarginQuiet:    0,
		LMRResearchMarginTactical: 50,

		IIDEnabled:       true,
		IIDMinDepth:      5,
		IIDBaseReduction: 2,

		PressureLowFraction:    0.25,
		PressureMediumFraction: 0.15,
		PressureHighFraction:   0.05,

		TTSize:           1 << 18,
		TTBuckets:        4,
		TTShards:         64,
		TTPersistEnabled: false,
		TTPersistPath:    "tt_snapshot.bin",

		QSMaxDepth:         8,
		QSCheckDepth:       2,
		QSHighValueCapture: 450,
		QSDeltaMargin:      200,
		QSFutilityMargin:   120,
		QSCacheSize:        1 << 16,
		QSCacheEvictPolicy: QCacheEvictHybrid,

		AspirationEnabled:     true,
		AspirationWindow:      50,
		Workers:               1,
		TacticalMoveThreshold: 6,
		LogSearchStats:        false,
	}
}

// ValidateConfig rejects out-of-range settings with a descriptive reason.
// Nothing is silently clamped; a bad update leaves the previous
// configuration in place.
func ValidateConfig(c Config) error {
	if c.NullMoveMinDepth < 1 {
		return fmt.Errorf("null_move_min_depth must be >= 1, got %d", c.NullMoveMinDepth)
	}
	if c.NullMoveBaseReduction < 1 {
		return fmt.Errorf("null_move_base_reduction must be >= 1, got %d", c.NullMoveBaseReduction)
	}
	switch c.NullMoveFormula {
	case NullFormulaStatic, NullFormulaStepped, NullFormulaSmooth:
	default:
		return fmt.Errorf("null_move_formula must be one of static, stepped, smooth; got %q", c.NullMoveFormula)
	}
	if c.NullVerificationMargin < 0 {
		return fmt.Errorf("null_verification_margin must be >= 0, got %d", c.NullVerificationMargin)
	}
	if c.MateThreatMargin < 0 {
		return fmt.Errorf("mate_threat_margin must be >= 0, got %d", c.MateThreatMargin)
	}
	if c.LMRMinDepth < 1 {
		return fmt.Errorf("lmr_min_depth must be >= 1, got %d", c.LMRMinDepth)
	}
	if c.LMRMoveThreshold < 1 {
		return fmt.Errorf("lmr_move_threshold must be >= 1, got %d", c.LMRMoveThreshold)
	}
	if c.LMRResearchMarginQuiet < 0 || c.LMRResearchMarginTactical < 0 {
		return fmt.Errorf("lmr re-search margins must be >= 0, got quiet=%d tactical=%d",
			c.LMRResearchMarginQuiet, c.LMRResearchMarginTactical)
	}
	if c.IIDMinDepth < 2 {
		return fmt.Errorf("iid_min_depth must be >= 2, got %d", c.IIDMinDepth)
	}
	if c.IIDBaseReduction < 1 {
		return fmt.Errorf("iid_base_reduction must be >= 1, got %d", c.IIDBaseReduction)
	}
	if c.PressureHighFraction <= 0 || c.PressureLowFraction >= 1 {
		return fmt.Errorf("pressure fractions must lie in (0,1), got high=%.3f low=%.3f",
			c.PressureHighFraction, c.PressureLowFraction)
	}
	if !(c.PressureHighFraction < c.PressureMediumFraction && c.PressureMediumFraction < c.PressureLowFraction) {
		return fmt.Errorf("pressure fractions must satisfy high < medium < low, got %.3f/%.3f/%.3f",
			c.PressureHighFraction, c.PressureMediumFraction, c.PressureLowFraction)
	}
	if c.TTSize < 1 {
		return fmt.Errorf("tt_size must be >= 1, got %d", c.TTSize)
	}
	if c.TTBuckets < 1 {
		return fmt.Errorf("tt_buckets must be >= 1, got %d", c.TTBuckets)
	}
	if c.TTShards < 1 {
		return fmt.Errorf("tt_shards must be >= 1, got %d", c.TTShards)
	}
	if c.QSMaxDepth < 1 {
		return fmt.Errorf("qs_max_depth must be >= 1, got %d", c.QSMaxDepth)
	}
	if c.QSCheckDepth < 0 || c.QSCheckDepth > c.QSMaxDepth {
		return fmt.Errorf("qs_check_depth must lie in [0, qs_max_depth], got %d", c.QSCheckDepth)
	}
	if c.QSHighValueCapture < 0 {
		return fmt.Errorf("qs_high_value_capture must be >= 0, got %d", c.QSHighValueCapture)
	}
	if c.QSDeltaMargin < 0 || c.QSFutilityMargin < 0 {
		return fmt.Errorf("quiescence margins must be >= 0, got delta=%d futility=%d",
			c.QSDeltaMargin, c.QSFutilityMargin)
	}
	if c.QSCacheSize < 1 {
		return fmt.Errorf("qs_cache_size must be >= 1, got %d", c.QSCacheSize)
	}
	switch c.QSCacheEvictPolicy {
	case QCacheEvictDepth, QCacheEvictLRU, QCacheEvictHybrid:
	default:
		return fmt.Errorf("qs_cache_evict_policy must be one of depth, lru, hybrid; got %q", c.QSCacheEvictPolicy)
	}
	if c.AspirationEnabled && c.AspirationWindow < 1 {
		return fmt.Errorf("aspiration_window must be >= 1 when aspiration is enabled, got %d", c.AspirationWindow)
	}
	if c.Workers < 1 {
		return fmt.Errorf("workers must be >= 1, got %d", c.Workers)
	}
	if c.TacticalMoveThreshold < 1 {
		return fmt.Errorf("tactical_move_threshold must be >= 1, got %d", c.TacticalMoveThreshold)
	}
	return nil
}

type ConfigStore struct {
	mu     sync.RWMutex
	config Config
}

var configStore = &ConfigStore{config: DefaultConfig()}

func GetConfig() Config {
	return configStore.Get()
}

func (c *ConfigStore) Get() Config {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.config
}

func (c *ConfigStore) Update(newConfig Config) error {
	if err := ValidateConfig(newConfig); err != nil {
		return err
	}
	c.mu.Lock()
	c.config = newConfig
	c.mu.Unlock()
	return nil
}

// LoadConfigFile overlays a JSON config file on the defaults. Fields absent
// from the file keep their default values; a file that fails validation is
// rejected as a whole.
func LoadConfigFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config: %w", err)
	}
	cfg := DefaultConfig()
	if err := json.Unmarshal(data, &cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return configStore.Update(cfg)
}
