package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// APIConfig holds everything needed to talk to the public notices API.
type APIConfig struct {
	BaseURL        string        `yaml:"base_url"` // https://ws-public.interpol.int
	Timeout        time.Duration `yaml:"timeout"`
	UserAgent      string        `yaml:"user_agent"`
	Referer        string        `yaml:"referer"`
	AcceptLanguage string        `yaml:"accept_language"`
	// Request pacing & retries
	RatePerSecond float64       `yaml:"rate_per_second"` // e.g. 2.0 = 2 req/sec
	Burst         int           `yaml:"burst"`           // token bucket burst
	MaxRetries    int           `yaml:"max_retries"`     // retry attempts per request
	Backoff       time.Duration `yaml:"backoff"`         // initial backoff
	MaxBackoff    time.Duration `yaml:"max_backoff"`     // cap
}

type HarvestConfig struct {
	PerPage          int           `yaml:"per_page"`          // server caps at 160
	SegmentThreshold int           `yaml:"segment_threshold"` // split segments above this total
	CheckpointEvery  int           `yaml:"checkpoint_every"`  // flush sinks every N records
	PageDelay        time.Duration `yaml:"page_delay"`
	DetailDelay      time.Duration `yaml:"detail_delay"`
	CountryDelay     time.Duration `yaml:"country_delay"`
	AgeMin           int           `yaml:"age_min"`
	AgeMax           int           `yaml:"age_max"`
}

type OutputConfig struct {
	RedCSV       string `yaml:"red_csv"`
	RedJSON      string `yaml:"red_json"`
	YellowCSV    string `yaml:"yellow_csv"`
	CountriesCSV string `yaml:"countries_csv"`
	ReportCSV    string `yaml:"report_csv"`
	CorrectedCSV string `yaml:"corrected_csv"`
	ProgressFile string `yaml:"progress_file"`
}

type DedupConfig struct {
	TTL     time.Duration `yaml:"ttl"`
	MaxKeys int           `yaml:"max_keys"` // cap to bound memory
}

type MetricsConfig struct {
	Listen string `yaml:"listen"` // e.g. ":9214"; empty disables the listener
}

type LogConfig struct {
	Level string `yaml:"level"` // debug|info|warn|error
	File  string `yaml:"file"`  // optional rotating JSON log file
}

type Config struct {
	API     APIConfig     `yaml:"api"`
	Harvest HarvestConfig `yaml:"harvest"`
	Output  OutputConfig  `yaml:"output"`
	Dedup   DedupConfig   `yaml:"dedup"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		API: APIConfig{
			BaseURL:        "https://ws-public.interpol.int",
			Timeout:        30 * time.Second,
			UserAgent:      "Mozilla/5.0 (Windows NT 10.0; Win64; x64)",
			Referer:        "https://www.interpol.int/en/How-we-work/Notices",
			AcceptLanguage: "fr-FR,fr;q=0.9,en-US;q=0.8,en;q=0.7",
			RatePerSecond:  2.0,
			Burst:          1,
			MaxRetries:     5,
			Backoff:        500 * time.Millisecond,
			MaxBackoff:     8 * time.Second,
		},
		Harvest: HarvestConfig{
			PerPage:          160,
			SegmentThreshold: 320,
			CheckpointEvery:  200,
			PageDelay:        200 * time.Millisecond,
			DetailDelay:      250 * time.Millisecond,
			CountryDelay:     time.Second,
			AgeMin:           0,
			AgeMax:           120,
		},
		Output: OutputConfig{
			RedCSV:       "data/red_notices.csv",
			RedJSON:      "data/red_notices.json",
			YellowCSV:    "data/yellow_notices_full.csv",
			CountriesCSV: "data/yellow_country_sweep.csv",
			ReportCSV:    "data/yellow_missing_report.csv",
			CorrectedCSV: "data/yellow_notices_corrected.csv",
			ProgressFile: "data/yellow_progress.json",
		},
		Dedup: DedupConfig{
			TTL:     24 * time.Hour,
			MaxKeys: 200000,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads a YAML config file and overlays it on the defaults.
// A missing file is not an error: defaults apply.
func Load(path string) (Config, error) {
	c := Default()
	b, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return c, nil
		}
		return c, err
	}
	if err := yaml.Unmarshal(b, &c); err != nil {
		return c, fmt.Errorf("parse %s: %w", path, err)
	}
	return c, c.validate()
}

func (c *Config) validate() error {
	if c.API.BaseURL == "" {
		return fmt.Errorf("api.base_url must not be empty")
	}
	if c.Harvest.PerPage <= 0 || c.Harvest.PerPage > 160 {
		return fmt.Errorf("harvest.per_page must be in 1..160, got %d", c.Harvest.PerPage)
	}
	if c.Harvest.SegmentThreshold < c.Harvest.PerPage {
		return fmt.Errorf("harvest.segment_threshold (%d) must be >= per_page (%d)",
			c.Harvest.SegmentThreshold, c.Harvest.PerPage)
	}
	if c.Harvest.AgeMin < 0 || c.Harvest.AgeMax < c.Harvest.AgeMin {
		return fmt.Errorf("harvest age range %d..%d is invalid", c.Harvest.AgeMin, c.Harvest.AgeMax)
	}
	return nil
}
