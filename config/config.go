// Package config loads runtime configuration from a YAML file or CLI flags.
package config

import (
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultFeedURL       = "https://interview.switcheo.com"
	defaultListenAddr    = ":8080"
	defaultTransferDelay = 2 * time.Second
	defaultFrom          = "ATOM"
	defaultTo            = "USDC"
)

// Config is the resolved runtime configuration.
type Config struct {
	FeedURL       string
	ListenAddr    string
	StateDir      string
	JournalDir    string
	TransferDelay time.Duration
	DefaultFrom   string
	DefaultTo     string
	TLSDomains    []string
	CertCacheDir  string
	TUI           bool
}

type configTmp struct {
	FeedURL          string   `yaml:"feed_url"`
	ListenAddr       string   `yaml:"listen"`
	StateDir         string   `yaml:"state_dir"`
	JournalDir       string   `yaml:"journal_dir"`
	TransferDelayStr string   `yaml:"transfer_delay,omitempty"`
	DefaultFrom      string   `yaml:"default_from,omitempty"`
	DefaultTo        string   `yaml:"default_to,omitempty"`
	TLSDomains       []string `yaml:"tls_domains,omitempty"`
	CertCacheDir     string   `yaml:"cert_cache_dir,omitempty"`
	TUI              bool     `yaml:"tui,omitempty"`
}

// Get resolves configuration from --config yaml when provided, otherwise
// from CLI flags.
func Get() (Config, error) {
	configPath := flag.String("config", "", "path to yaml config")
	feedURL := flag.String("feedurl", defaultFeedURL, "base URL of the price feed")
	listen := flag.String("listen", defaultListenAddr, "HTTP listen address")
	stateDir := flag.String("statedir", "", "directory for the ledger snapshot")
	journalDir := flag.String("journaldir", "", "directory for the settlement journal")
	transferDelay := flag.Duration("transferdelay", defaultTransferDelay, "simulated transfer settlement delay")
	from := flag.String("from", defaultFrom, "default from token symbol")
	to := flag.String("to", defaultTo, "default to token symbol")
	tlsDomains := flag.String("tlsdomains", "", "comma-separated domains for automatic TLS")
	tui := flag.Bool("tui", false, "run the interactive terminal swap wizard")
	flag.Parse()

	if *configPath != "" {
		return getYaml(*configPath)
	}

	cfg := Config{
		FeedURL:       *feedURL,
		ListenAddr:    *listen,
		StateDir:      *stateDir,
		JournalDir:    *journalDir,
		TransferDelay: *transferDelay,
		DefaultFrom:   *from,
		DefaultTo:     *to,
		TUI:           *tui,
	}
	if *tlsDomains != "" {
		cfg.TLSDomains = strings.Split(*tlsDomains, ",")
	}

	return validate(cfg)
}

func getYaml(path string) (Config, error) {
	f, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	var tmp configTmp
	if err := yaml.Unmarshal(f, &tmp); err != nil {
		return Config{}, err
	}

	cfg := Config{
		FeedURL:       tmp.FeedURL,
		ListenAddr:    tmp.ListenAddr,
		StateDir:      tmp.StateDir,
		JournalDir:    tmp.JournalDir,
		TransferDelay: defaultTransferDelay,
		DefaultFrom:   tmp.DefaultFrom,
		DefaultTo:     tmp.DefaultTo,
		TLSDomains:    tmp.TLSDomains,
		CertCacheDir:  tmp.CertCacheDir,
		TUI:           tmp.TUI,
	}

	if tmp.TransferDelayStr != "" {
		delay, err := time.ParseDuration(tmp.TransferDelayStr)
		if err != nil {
			return Config{}, fmt.Errorf("incorrect 'transfer_delay' param in yaml config: %s, error: %w", tmp.TransferDelayStr, err)
		}
		cfg.TransferDelay = delay
	}

	return validate(cfg)
}

func validate(cfg Config) (Config, error) {
	if cfg.FeedURL == "" {
		cfg.FeedURL = defaultFeedURL
	}
	if cfg.ListenAddr == "" {
		cfg.ListenAddr = defaultListenAddr
	}
	if cfg.TransferDelay <= 0 {
		cfg.TransferDelay = defaultTransferDelay
	}
	if cfg.DefaultFrom == "" {
		cfg.DefaultFrom = defaultFrom
	}
	if cfg.DefaultTo == "" {
		cfg.DefaultTo = defaultTo
	}
	if cfg.DefaultFrom == cfg.DefaultTo {
		return Config{}, fmt.Errorf("default from and to tokens must differ, got %s", cfg.DefaultFrom)
	}

	return cfg, nil
}
