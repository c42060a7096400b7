package config

import (
	"os"
	"strconv"
)

// Manager resolves the effective configuration once at startup: built-in
// defaults, then the optional config file, then environment overrides.
// The resolved Config is an immutable snapshot handed to constructors;
// nothing reads ambient globals after boot.
type Manager struct {
	cfg *Config
}

// NewManager loads the config file at path (missing file falls back to
// defaults) and applies environment overrides.
func NewManager(path string) (*Manager, error) {
	cfg, err := LoadConfig(path)
	if err != nil {
		if !os.IsNotExist(err) {
			return nil, err
		}
		cfg = Default()
	}

	applyEnv(cfg)
	return &Manager{cfg: cfg}, nil
}

// Get returns the resolved configuration.
func (m *Manager) Get() *Config {
	return m.cfg
}

// applyEnv layers environment variables over the loaded config. PORT is a
// Cloud Run requirement; the rest mirror the yaml keys.
func applyEnv(cfg *Config) {
	if v := os.Getenv("PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("TRUSTVERIFIER_ENV"); v != "" {
		cfg.Server.Env = v
	}
	if v := os.Getenv("TRUST_SCORE_API"); v != "" {
		cfg.Upstream.TrustScoreURL = v
	}
	if v := os.Getenv("PLATFORM_CHECK_API"); v != "" {
		cfg.Upstream.PlatformURL = v
	}
	if v := os.Getenv("ACTIVITY_API"); v != "" {
		cfg.Upstream.ActivityURL = v
	}
	if v := os.Getenv("REPUTATION_API"); v != "" {
		cfg.Upstream.ReputationURL = v
	}
	if v := os.Getenv("PROVENANCE_API"); v != "" {
		cfg.Upstream.ProvenanceURL = v
	}
	if v := os.Getenv("IDENTITY_API"); v != "" {
		cfg.Upstream.IdentityURL = v
	}
	if v := os.Getenv("PARENT_AGENT_EMAIL"); v != "" {
		cfg.Upstream.ParentAgentEmail = v
	}
	if v := os.Getenv("TRUST_THRESHOLD"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Trust.Threshold = f
		}
	}
	if v := os.Getenv("BRANCH_TIMEOUT_SECONDS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Upstream.BranchTimeoutSeconds = n
		}
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Cache.RedisAddr = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		cfg.Cache.RedisPassword = v
	}
	if v := os.Getenv("REDIS_DB"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Cache.RedisDB = n
		}
	}
}
