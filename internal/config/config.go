package config

import (
	"os"

	"gopkg.in/yaml.v2"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Trust     TrustConfig     `yaml:"trust"`
	Upstream  UpstreamConfig  `yaml:"upstream"`
	Cache     CacheConfig     `yaml:"cache"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Port string `yaml:"port"`
	Env  string `yaml:"env"`
}

type TrustConfig struct {
	Weights TrustWeights `yaml:"weights"`
	// Threshold is the trust score at or above which an agent is considered
	// verified (0-100).
	Threshold float64 `yaml:"threshold"`
	// ReportTTLSeconds caches verification reports for repeat lookups.
	ReportTTLSeconds int `yaml:"report_ttl_seconds"`
}

// TrustWeights are the policy constants for the composite score. They sum to
// 1.0 over the full component set; the aggregator renormalizes over whatever
// subset is actually present.
type TrustWeights struct {
	ParentScore      float64 `yaml:"parent_score"`
	PlatformPresence float64 `yaml:"platform_presence"`
	ActivityScore    float64 `yaml:"activity_score"`
	ReputationScore  float64 `yaml:"reputation_score"`
}

type UpstreamConfig struct {
	TrustScoreURL string `yaml:"trust_score_url"` // parent agent's Trust Score API
	PlatformURL   string `yaml:"platform_url"`
	ActivityURL   string `yaml:"activity_url"`
	ReputationURL string `yaml:"reputation_url"`
	ProvenanceURL string `yaml:"provenance_url"`
	IdentityURL   string `yaml:"identity_url"`

	ParentAgentEmail string `yaml:"parent_agent_email"`

	// BranchTimeoutSeconds bounds each score-gathering branch so a slow
	// collaborator cannot hold the whole request.
	BranchTimeoutSeconds int `yaml:"branch_timeout_seconds"`
}

type CacheConfig struct {
	RedisAddr         string `yaml:"redis_addr"`
	RedisPassword     string `yaml:"redis_password"`
	RedisDB           int    `yaml:"redis_db"`
	ProfileTTLSeconds int    `yaml:"profile_ttl_seconds"`
}

type RateLimitConfig struct {
	MaxCallsPerMinute int `yaml:"max_calls_per_minute"`
	BurstSize         int `yaml:"burst_size"`
}

// Default returns the built-in configuration. File and environment overrides
// are layered on top by the Manager.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8080",
			Env:  "development",
		},
		Trust: TrustConfig{
			Weights: TrustWeights{
				ParentScore:      0.40,
				PlatformPresence: 0.20,
				ActivityScore:    0.20,
				ReputationScore:  0.20,
			},
			Threshold:        70,
			ReportTTLSeconds: 60,
		},
		Upstream: UpstreamConfig{
			TrustScoreURL:        "https://gerundium.sicmundus.dev/api/trust-score",
			ParentAgentEmail:     "gerundium@agentmail.to",
			BranchTimeoutSeconds: 10,
		},
		Cache: CacheConfig{
			ProfileTTLSeconds: 300,
		},
		RateLimit: RateLimitConfig{
			MaxCallsPerMinute: 60,
		},
	}
}

func LoadConfig(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	cfg := Default()
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
