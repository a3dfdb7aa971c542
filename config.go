package okailora

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

type Config struct {
	API     APIConfig     `toml:"api"`
	Monitor MonitorConfig `toml:"monitor"`
	Upload  UploadConfig  `toml:"upload"`
	Share   ShareConfig   `toml:"share"`
}

type APIConfig struct {
	URL             string `toml:"url"`
	TLSVerification bool   `toml:"tls_verification"`
	Timeout         string `toml:"timeout"`
}

type MonitorConfig struct {
	PollInterval     string  `toml:"poll_interval"`
	ResourceInterval string  `toml:"resource_interval"`
	TotalSteps       int     `toml:"total_steps"`
	TotalEpochs      int     `toml:"total_epochs"`
	LearningRate     float64 `toml:"learning_rate"`
}

type UploadConfig struct {
	ProgressInterval string `toml:"progress_interval"`
	ProgressStep     int    `toml:"progress_step"`
	ProgressCap      int    `toml:"progress_cap"`
}

type ShareConfig struct {
	BaseURL string `toml:"base_url"`
}

func DefaultConfig() Config {
	return Config{
		API: APIConfig{
			URL:             "http://localhost:8080",
			TLSVerification: true,
		},
		Monitor: MonitorConfig{
			PollInterval:     "1s",
			ResourceInterval: "2s",
			TotalSteps:       120,
			TotalEpochs:      3,
			LearningRate:     1e-5,
		},
		Upload: UploadConfig{
			ProgressInterval: "100ms",
			ProgressStep:     10,
			ProgressCap:      90,
		},
		Share: ShareConfig{
			BaseURL: "http://localhost:3000",
		},
	}
}

// LoadConfig reads a TOML file over the defaults. Keys absent from the file
// keep their default value.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	tree, err := toml.Load(string(data))
	if err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	cfg := DefaultConfig()
	if err := tree.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c Config) Validate() error {
	for name, v := range map[string]string{
		"api.timeout":               c.API.Timeout,
		"monitor.poll_interval":     c.Monitor.PollInterval,
		"monitor.resource_interval": c.Monitor.ResourceInterval,
		"upload.progress_interval":  c.Upload.ProgressInterval,
	} {
		d, err := parseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		// A zero api.timeout disables the client timeout; intervals drive tickers.
		if name != "api.timeout" && d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", name)
		}
	}

	return nil
}

func (c APIConfig) TimeoutDuration() time.Duration {
	d, _ := parseDuration(c.Timeout)

	return d
}

func (c MonitorConfig) PollEvery() time.Duration {
	d, _ := parseDuration(c.PollInterval)

	return d
}

func (c MonitorConfig) ResourceEvery() time.Duration {
	d, _ := parseDuration(c.ResourceInterval)

	return d
}

func (c UploadConfig) ProgressEvery() time.Duration {
	d, _ := parseDuration(c.ProgressInterval)

	return d
}

func parseDuration(s string) (time.Duration, error) {
	if s == "" {
		return 0, nil
	}

	return time.ParseDuration(s)
}
