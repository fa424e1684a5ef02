package utils

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"herohub/internal/heroes"
	"herohub/internal/viewstate"
)

// Config is read once at startup and passed down explicitly.
type Config struct {
	APIBaseURL string `yaml:"api_base_url"`
	APIToken   string `yaml:"api_token"`
	// Provider is "auto", "token" or "open".
	Provider       string        `yaml:"provider"`
	SeedQuery      string        `yaml:"seed_query"`
	PageSize       int           `yaml:"page_size"`
	SearchDebounce time.Duration `yaml:"search_debounce"`

	HTTPAddr   string `yaml:"http_addr"`
	GRPCAddr   string `yaml:"grpc_addr"`
	MirrorAddr string `yaml:"mirror_addr"`
	MirrorFile string `yaml:"mirror_file"`

	LogLevel string `yaml:"log_level"`
}

func DefaultConfig() Config {
	return Config{
		Provider:       "auto",
		SeedQuery:      heroes.DefaultSeedQuery,
		PageSize:       viewstate.DefaultPageSize,
		SearchDebounce: viewstate.DefaultDebounce,
		HTTPAddr:       ":8080",
		GRPCAddr:       ":9090",
		MirrorAddr:     ":9000",
		MirrorFile:     "data/mirror.json",
		LogLevel:       "info",
	}
}

// LoadConfig starts from the defaults, applies the YAML file named by
// HEROHUB_CONFIG (if any), then environment overrides.
func LoadConfig() (Config, error) {
	cfg := DefaultConfig()
	if path := strings.TrimSpace(os.Getenv("HEROHUB_CONFIG")); path != "" {
		if err := cfg.loadFile(path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.applyEnvOverrides(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}
	return nil
}

func (c *Config) applyEnvOverrides() error {
	if v := os.Getenv("API_BASE_URL"); v != "" {
		c.APIBaseURL = v
	}
	if v := os.Getenv("SUPERHERO_API_TOKEN"); v != "" {
		c.APIToken = v
	}
	if v := os.Getenv("HEROHUB_PROVIDER"); v != "" {
		c.Provider = v
	}
	if v := os.Getenv("HEROHUB_SEED_QUERY"); v != "" {
		c.SeedQuery = v
	}
	if v := os.Getenv("HEROHUB_PAGE_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			return fmt.Errorf("HEROHUB_PAGE_SIZE: want a positive integer, got %q", v)
		}
		c.PageSize = n
	}
	if v := os.Getenv("HEROHUB_SEARCH_DEBOUNCE"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("HEROHUB_SEARCH_DEBOUNCE: %w", err)
		}
		c.SearchDebounce = d
	}
	if v := os.Getenv("HEROHUB_HTTP_ADDR"); v != "" {
		c.HTTPAddr = v
	}
	if v := os.Getenv("HEROHUB_GRPC_ADDR"); v != "" {
		c.GRPCAddr = v
	}
	if v := os.Getenv("HEROHUB_MIRROR_ADDR"); v != "" {
		c.MirrorAddr = v
	}
	if v := os.Getenv("HEROHUB_MIRROR_FILE"); v != "" {
		c.MirrorFile = v
	}
	if v := os.Getenv("HEROHUB_LOG_LEVEL"); v != "" {
		c.LogLevel = v
	}
	return nil
}

// ResolvedProvider makes the provider choice explicit. Both the base URL
// and, for the token provider, the token are checked here.
func (c Config) ResolvedProvider() (heroes.Provider, error) {
	if strings.TrimSpace(c.APIBaseURL) == "" {
		return "", &heroes.ConfigurationError{Reason: "API_BASE_URL is not set"}
	}
	return heroes.ResolveProvider(c.Provider, c.APIToken)
}

// Upstream builds the adapter configuration.
func (c Config) Upstream() (heroes.Config, error) {
	p, err := c.ResolvedProvider()
	if err != nil {
		return heroes.Config{}, err
	}
	token := c.APIToken
	if p == heroes.ProviderOpen {
		token = ""
	}
	// no client timeout; requests end with the response or the caller's ctx
	return heroes.Config{
		BaseURL:    c.APIBaseURL,
		Token:      token,
		Provider:   p,
		SeedQuery:  c.SeedQuery,
		HTTPClient: &http.Client{},
	}, nil
}

// NewSource resolves the provider and builds the upstream adapter.
func (c Config) NewSource(logger *zap.Logger) (heroes.Source, error) {
	up, err := c.Upstream()
	if err != nil {
		return nil, err
	}
	if c.TokenIgnored() {
		logger.Warn("SUPERHERO_API_TOKEN is set but HEROHUB_PROVIDER=open; the token is ignored")
	}
	up.Logger = logger
	return heroes.New(up)
}

// TokenIgnored reports a token that is set but unused because the open
// provider was selected explicitly.
func (c Config) TokenIgnored() bool {
	p, err := c.ResolvedProvider()
	return err == nil && p == heroes.ProviderOpen && strings.TrimSpace(c.APIToken) != ""
}

// ViewOptions returns the list view settings for the resolved provider.
func (c Config) ViewOptions(p heroes.Provider) viewstate.Options {
	return viewstate.Options{
		Remote:    p.RemoteSearch(),
		PageSize:  c.PageSize,
		Debounce:  c.SearchDebounce,
		SeedQuery: c.SeedQuery,
	}
}
