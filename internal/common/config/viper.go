package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

// Config is the struct that holds the configuration of the application
type Config struct {
	App       AppConfig       `json:"app"`
	Server    ServerConfig    `json:"server"`
	Extractor ExtractorConfig `json:"extractor"`
	Browser   BrowserConfig   `json:"browser"`
	Store     StoreConfig     `json:"store"`
	Log       LogConfig       `json:"log"`
}

type AppConfig struct {
	Name     string `json:"name"`
	LogLevel int    `json:"logLevel"`
	Env      string `json:"env"`
}

type ServerConfig struct {
	Host string `json:"host"`
	Port int    `json:"port"`
}

// ExtractorConfig holds the pipeline's fetch and throttling settings. The
// delay values are tuned against the target site's latency, not derived from
// any measured signal; change them only after re-measuring.
type ExtractorConfig struct {
	UserAgent         string `json:"userAgent"`
	FetchTimeoutSec   int    `json:"fetchTimeoutSec"`
	PrePollDelaySec   int    `json:"prePollDelaySec"`
	InterEpisodeDelay int    `json:"interEpisodeDelaySec"`
}

// BrowserConfig holds the headless browser settings, including the ad-domain
// blocklist and the accepted final-link prefixes
type BrowserConfig struct {
	MaxWaitSec       int      `json:"maxWaitSec"`
	PollIntervalSec  int      `json:"pollIntervalSec"`
	NavTimeoutSec    int      `json:"navTimeoutSec"`
	AdDomains        []string `json:"adDomains"`
	AcceptedPrefixes []string `json:"acceptedPrefixes"`
	DomainToken      string   `json:"domainToken"`
}

type StoreConfig struct {
	ResultsFile string `json:"resultsFile"`
}

type LogConfig struct {
	File       string `json:"file"`
	MaxSizeMB  int    `json:"maxSizeMb"`
	MaxBackups int    `json:"maxBackups"`
	MaxAgeDays int    `json:"maxAgeDays"`
}

// Load config from config.json
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.AddConfigPath(".")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	config.applyDefaults()

	// Override from environment variable if set
	if envFile := os.Getenv("RESULTS_FILE"); envFile != "" {
		config.Store.ResultsFile = envFile
	}

	return &config, nil
}

// applyDefaults fills in working values for anything the config file leaves
// out, so a missing config.json still yields a runnable server
func (c *Config) applyDefaults() {
	if c.App.Name == "" {
		c.App.Name = "episode-link-extractor"
	}
	if c.App.LogLevel == 0 {
		c.App.LogLevel = 4 // logrus.InfoLevel
	}
	if c.Server.Host == "" {
		c.Server.Host = "localhost"
	}
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Extractor.UserAgent == "" {
		c.Extractor.UserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36"
	}
	if c.Extractor.FetchTimeoutSec == 0 {
		c.Extractor.FetchTimeoutSec = 120
	}
	if c.Extractor.PrePollDelaySec == 0 {
		c.Extractor.PrePollDelaySec = 1
	}
	if c.Extractor.InterEpisodeDelay == 0 {
		c.Extractor.InterEpisodeDelay = 3
	}
	if c.Browser.MaxWaitSec == 0 {
		c.Browser.MaxWaitSec = 30
	}
	if c.Browser.PollIntervalSec == 0 {
		c.Browser.PollIntervalSec = 2
	}
	if c.Browser.NavTimeoutSec == 0 {
		c.Browser.NavTimeoutSec = 60
	}
	if len(c.Browser.AdDomains) == 0 {
		c.Browser.AdDomains = []string{
			"ghastlyejection.com", "adf.ly", "ad-maven.com", "adsterra.com",
			"propellerads.com", "outbrain.com", "taboola.com",
		}
	}
	if len(c.Browser.AcceptedPrefixes) == 0 {
		c.Browser.AcceptedPrefixes = []string{
			"https://video-downloads.googleusercontent.com",
			"https://drive.google.com",
		}
	}
	if c.Browser.DomainToken == "" {
		c.Browser.DomainToken = "google"
	}
	if c.Store.ResultsFile == "" {
		c.Store.ResultsFile = "extracted_links.json"
	}
}

// Get config for app
func (c *Config) GetAppConfig() *AppConfig {
	return &c.App
}

// Get config for the web server
func (c *Config) GetServerConfig() *ServerConfig {
	return &c.Server
}

// Get config for the extraction pipeline
func (c *Config) GetExtractorConfig() *ExtractorConfig {
	return &c.Extractor
}

// Get config for the headless browser poller
func (c *Config) GetBrowserConfig() *BrowserConfig {
	return &c.Browser
}

// Get config for the result store
func (c *Config) GetStoreConfig() *StoreConfig {
	return &c.Store
}

// FetchTimeout returns the page fetch timeout as a duration
func (c *ExtractorConfig) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutSec) * time.Second
}

// PrePollDelay returns the pause before handing an episode to the poller
func (c *ExtractorConfig) PrePollDelay() time.Duration {
	return time.Duration(c.PrePollDelaySec) * time.Second
}

// EpisodeDelay returns the throttling delay between episodes
func (c *ExtractorConfig) EpisodeDelay() time.Duration {
	return time.Duration(c.InterEpisodeDelay) * time.Second
}

// MaxWait returns the poll loop's wall-clock budget
func (c *BrowserConfig) MaxWait() time.Duration {
	return time.Duration(c.MaxWaitSec) * time.Second
}

// PollInterval returns the sleep between poll iterations
func (c *BrowserConfig) PollInterval() time.Duration {
	return time.Duration(c.PollIntervalSec) * time.Second
}

// NavTimeout returns the navigation timeout
func (c *BrowserConfig) NavTimeout() time.Duration {
	return time.Duration(c.NavTimeoutSec) * time.Second
}
