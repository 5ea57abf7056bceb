// Package siteconf ties the pipeline together: configuration, cached
// siteinfo fetching and human-readable summaries for one or many wikis.
package siteconf

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/wikimark/wikiconf/internal/generate"
)

// DefaultConfigFile is the configuration file looked up in the working
// directory when no --config flag is given.
const DefaultConfigFile = ".wikiconf.yaml"

// Duration is a time.Duration that reads and writes YAML scalars like
// "30s" or "24h".
type Duration time.Duration

func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", s, err)
	}
	*d = Duration(parsed)
	return nil
}

func (d Duration) MarshalYAML() (any, error) {
	return time.Duration(d).String(), nil
}

// Config represents the overall configuration of the tool.
type Config struct {
	// UserAgent overrides the User-Agent header; empty keeps the
	// library default.
	UserAgent string `yaml:"user-agent"`
	// Timeout bounds one siteinfo request.
	Timeout Duration `yaml:"timeout"`
	// BaseURL points every fetch at one fixed API root instead of
	// https://<domain>/w/api.php. Mainly for nonstandard installations
	// and tests.
	BaseURL  string         `yaml:"base-url,omitempty"`
	Cache    CacheConfig    `yaml:"cache"`
	Generate GenerateConfig `yaml:"generate"`
}

// CacheConfig controls the on-disk siteinfo cache.
type CacheConfig struct {
	Dir      string   `yaml:"dir"`
	MaxAge   Duration `yaml:"max-age"`
	Disabled bool     `yaml:"disabled"`
}

// GenerateConfig carries the code generation knobs.
type GenerateConfig struct {
	Package string `yaml:"package"`
	Var     string `yaml:"var"`
	Import  string `yaml:"import"`
}

// DefaultConfig returns the configuration used when no file is present.
func DefaultConfig() Config {
	return Config{
		Timeout: Duration(30 * time.Second),
		Cache: CacheConfig{
			Dir:    defaultCacheDir(),
			MaxAge: Duration(24 * time.Hour),
		},
		Generate: GenerateConfig{
			Package: generate.DefaultPackageName,
			Var:     generate.DefaultVarName,
			Import:  generate.DefaultImportPath,
		},
	}
}

func defaultCacheDir() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "wikiconf")
	}
	return ".wikiconf-cache"
}

// LoadConfig reads path over the defaults, so absent keys keep their
// default values.
func LoadConfig(path string) (Config, error) {
	config := DefaultConfig()

	f, err := os.Open(path)
	if err != nil {
		return config, err
	}
	defer f.Close()

	if err := yaml.NewDecoder(f).Decode(&config); err != nil {
		return config, err
	}

	return config, nil
}
