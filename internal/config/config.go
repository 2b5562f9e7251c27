package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"FRELookup/internal/resolver"
)

const (
	configPathEnv   = "FRE_LOOKUP_CONFIG"
	filingsURLEnv   = "FRE_FILINGS_URL"
	plansURLEnv     = "FRE_PLANS_URL"
	viewerBaseEnv   = "FRE_VIEWER_BASE"
	resolverModeEnv = "FRE_RESOLVER_MODE"
	listenAddrEnv   = "FRE_LISTEN_ADDR"
	logLevelEnv     = "LOG_LEVEL"

	defaultFilingsURL = "https://github.com/tovarich86/FRE-8.1/raw/main/fre_cia_aberta_2025.csv"
	defaultPlansURL   = "https://github.com/tovarich86/FRE-8.1/raw/main/tabela_consolidada_cvm_otimizado.xlsx"
)

// Config holds high-level settings required across the application.
type Config struct {
	Datasets DatasetConfig  `yaml:"datasets"`
	Resolver ResolverConfig `yaml:"resolver"`
	Cache    CacheConfig    `yaml:"cache"`
	Server   ServerConfig   `yaml:"server"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// DatasetConfig locates the two remote datasets.
type DatasetConfig struct {
	FilingsURL string        `yaml:"filingsUrl"`
	PlansURL   string        `yaml:"plansUrl"`
	Timeout    time.Duration `yaml:"timeout"`
}

// ResolverConfig picks how item codes are obtained.
type ResolverConfig struct {
	Mode       string            `yaml:"mode"`
	ViewerBase string            `yaml:"viewerBase"`
	Timeout    time.Duration     `yaml:"timeout"`
	ItemCodes  map[string]string `yaml:"itemCodes"`
}

// CacheConfig controls dataset refresh and session expiry.
type CacheConfig struct {
	RefreshInterval time.Duration `yaml:"refreshInterval"`
	SessionIdle     time.Duration `yaml:"sessionIdle"`
}

// ServerConfig describes the HTTP surface.
type ServerConfig struct {
	ListenAddr string `yaml:"listenAddr"`
}

// LoggingConfig sets the slog level.
type LoggingConfig struct {
	Level string `yaml:"level"`
}

// Load reads YAML configuration (if present) and applies environment overrides.
func Load() Config {
	cfg := defaultConfig()

	if path := os.Getenv(configPathEnv); path != "" {
		cfg = LoadFile(cfg, path)
	}

	cfg.applyEnvOverrides()
	cfg.normalize()
	return cfg
}

// LoadFile merges the YAML file at path over base; unreadable or invalid
// files leave base untouched.
func LoadFile(base Config, path string) Config {
	raw, err := os.ReadFile(path)
	if err != nil {
		log.Printf("config: cannot read %s: %v (falling back to defaults)", path, err)
		return base
	}

	var fileCfg Config
	if err := yaml.Unmarshal(raw, &fileCfg); err != nil {
		log.Printf("config: cannot parse %s: %v (falling back to defaults)", path, err)
		return base
	}
	return mergeConfig(base, fileCfg)
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(filingsURLEnv); v != "" {
		c.Datasets.FilingsURL = v
	}
	if v := os.Getenv(plansURLEnv); v != "" {
		c.Datasets.PlansURL = v
	}
	if v := os.Getenv(viewerBaseEnv); v != "" {
		c.Resolver.ViewerBase = v
	}
	if v := os.Getenv(resolverModeEnv); v != "" {
		c.Resolver.Mode = v
	}
	if v := os.Getenv(listenAddrEnv); v != "" {
		c.Server.ListenAddr = v
	}
	if v := os.Getenv(logLevelEnv); v != "" {
		c.Logging.Level = v
	}
}

func (c *Config) normalize() {
	mode := strings.ToLower(strings.TrimSpace(c.Resolver.Mode))
	switch mode {
	case resolver.ModeStatic, resolver.ModeDynamic:
	default:
		if mode != "" {
			log.Printf("config: unknown resolver mode %q, reverting to %s", c.Resolver.Mode, resolver.ModeStatic)
		}
		mode = resolver.ModeStatic
	}
	c.Resolver.Mode = mode
}

func mergeConfig(base, override Config) Config {
	if override.Datasets.FilingsURL != "" {
		base.Datasets.FilingsURL = override.Datasets.FilingsURL
	}
	if override.Datasets.PlansURL != "" {
		base.Datasets.PlansURL = override.Datasets.PlansURL
	}
	if override.Datasets.Timeout > 0 {
		base.Datasets.Timeout = override.Datasets.Timeout
	}

	if override.Resolver.Mode != "" {
		base.Resolver.Mode = override.Resolver.Mode
	}
	if override.Resolver.ViewerBase != "" {
		base.Resolver.ViewerBase = override.Resolver.ViewerBase
	}
	if override.Resolver.Timeout > 0 {
		base.Resolver.Timeout = override.Resolver.Timeout
	}
	if len(override.Resolver.ItemCodes) > 0 {
		base.Resolver.ItemCodes = override.Resolver.ItemCodes
	}

	if override.Cache.RefreshInterval != 0 {
		base.Cache.RefreshInterval = override.Cache.RefreshInterval
	}
	if override.Cache.SessionIdle > 0 {
		base.Cache.SessionIdle = override.Cache.SessionIdle
	}

	if override.Server.ListenAddr != "" {
		base.Server.ListenAddr = override.Server.ListenAddr
	}

	if override.Logging.Level != "" {
		base.Logging.Level = override.Logging.Level
	}

	return base
}

func defaultConfig() Config {
	return Config{
		Datasets: DatasetConfig{
			FilingsURL: defaultFilingsURL,
			PlansURL:   defaultPlansURL,
			Timeout:    15 * time.Second,
		},
		Resolver: ResolverConfig{
			Mode:       resolver.ModeStatic,
			ViewerBase: resolver.DefaultViewerBase,
			Timeout:    15 * time.Second,
			ItemCodes:  resolver.DefaultItemCodes(),
		},
		Cache: CacheConfig{
			RefreshInterval: 6 * time.Hour,
			SessionIdle:     2 * time.Hour,
		},
		Server:  ServerConfig{ListenAddr: ":8080"},
		Logging: LoggingConfig{Level: "info"},
	}
}
