package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/alecthomas/kong"
	"github.com/fwojciec/bustop"
	"github.com/fwojciec/bustop/cache"
	"github.com/fwojciec/bustop/crawl"
	"gopkg.in/yaml.v3"
)

// FileConfig is the structure of ~/.bustop/config.yaml. Every field is
// optional; values present become flag defaults.
type FileConfig struct {
	BaseURL  string        `yaml:"base_url"`
	ForumID  int           `yaml:"forum_id"`
	Timeout  time.Duration `yaml:"timeout"`
	RPS      float64       `yaml:"rps"`
	CacheTTL time.Duration `yaml:"cache_ttl"`
	Browser  bool          `yaml:"browser"`

	// HostRPS overrides the request rate for individual hosts.
	HostRPS map[string]float64 `yaml:"host_rps"`
}

// LoadConfigFile loads configuration from path. Returns nil if the file
// doesn't exist. Returns an error if the file exists but cannot be parsed.
func LoadConfigFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg FileConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	return &cfg, nil
}

// Vars returns the kong variables that seed the global flag defaults.
// A nil config yields the built-in defaults.
func (c *FileConfig) Vars() kong.Vars {
	vars := kong.Vars{
		"base_url":  bustop.DefaultBaseURL,
		"forum_id":  strconv.Itoa(bustop.DefaultForumID),
		"timeout":   "10s",
		"rps":       "1",
		"cache_ttl": cache.DefaultTTL.String(),
		"browser":   "false",
	}
	if c == nil {
		return vars
	}
	if c.BaseURL != "" {
		vars["base_url"] = c.BaseURL
	}
	if c.ForumID > 0 {
		vars["forum_id"] = strconv.Itoa(c.ForumID)
	}
	if c.Timeout > 0 {
		vars["timeout"] = c.Timeout.String()
	}
	if c.RPS > 0 {
		vars["rps"] = strconv.FormatFloat(c.RPS, 'f', -1, 64)
	}
	if c.CacheTTL > 0 {
		vars["cache_ttl"] = c.CacheTTL.String()
	}
	if c.Browser {
		vars["browser"] = "true"
	}
	return vars
}

// LimiterOptions returns the per-host rate overrides.
func (c *FileConfig) LimiterOptions() []crawl.LimiterOption {
	if c == nil {
		return nil
	}
	opts := make([]crawl.LimiterOption, 0, len(c.HostRPS))
	for host, rps := range c.HostRPS {
		opts = append(opts, crawl.WithHostRate(host, rps))
	}
	return opts
}

func defaultConfigPath() string {
	if path := os.Getenv("BUSTOP_CONFIG"); path != "" {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".bustop", "config.yaml")
}
