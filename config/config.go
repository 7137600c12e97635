package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/miku/bibupdate"
	"github.com/miku/bibupdate/collate"
	"github.com/miku/bibupdate/projectlog"
	"github.com/miku/bibupdate/schema/dimensions"
	"gopkg.in/yaml.v3"
)

const (
	configPathEnv = "BIBUPDATE_CONFIG"
	baseDirEnv    = "BIBUPDATE_BASE_DIR"
	patternEnv    = "BIBUPDATE_PATTERN"
)

// Config for an update run. Directories may be relative, in which case they
// are resolved against BaseDir.
type Config struct {
	// BaseDir is the project directory, defaults to the parent of the
	// working directory, where the workflow scripts live.
	BaseDir string `yaml:"base_dir"`
	// SourceDir contains the raw exports from the citation database.
	SourceDir string `yaml:"source_dir"`
	// CombinedDir receives the combined CSV files.
	CombinedDir string `yaml:"combined_dir"`
	// InventoryDir receives the list of collated files per update.
	InventoryDir string `yaml:"inventory_dir"`
	// DOIDir receives the list of new DOIs per update.
	DOIDir string `yaml:"doi_dir"`
	// LogDir contains the project log.
	LogDir string `yaml:"log_dir"`
	// Pattern selects the export files in SourceDir.
	Pattern     string `yaml:"pattern"`
	Placeholder string `yaml:"placeholder"`
	// Preamble is the number of lines before the CSV header in each export.
	Preamble int `yaml:"preamble"`
	// Compression for the combined file, "gz" or "zst"; empty for none.
	Compression  string `yaml:"compression"`
	NormalizeDOI bool   `yaml:"normalize_doi"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		BaseDir:      "..",
		SourceDir:    "source-data",
		CombinedDir:  "combined-CSVs",
		InventoryDir: "combined-CSV-logs",
		DOIDir:       "new-doi-lists",
		LogDir:       "project-logs",
		Pattern:      collate.DefaultPattern,
		Placeholder:  dimensions.Placeholder,
		Preamble:     1,
	}
}

// DefaultFile is the config file location, if none is given explicitly.
func DefaultFile() string {
	return filepath.Join(xdg.ConfigHome, bibupdate.AppName, "config.yaml")
}

// Load returns the default configuration, updated with values from a YAML
// file and the environment. If path is empty, the file named by
// BIBUPDATE_CONFIG or the default file is used, if it exists.
func Load(path string) (*Config, error) {
	cfg := Default()
	explicit := path != ""
	if !explicit {
		if v := os.Getenv(configPathEnv); v != "" {
			path, explicit = v, true
		} else {
			path = DefaultFile()
		}
	}
	b, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && !explicit:
	case err != nil:
		return nil, fmt.Errorf("config: %w", err)
	default:
		if err := yaml.Unmarshal(b, cfg); err != nil {
			return nil, fmt.Errorf("config: %s: %w", path, err)
		}
	}
	cfg.applyEnvOverrides()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnvOverrides() {
	if v := os.Getenv(baseDirEnv); v != "" {
		c.BaseDir = v
	}
	if v := os.Getenv(patternEnv); v != "" {
		c.Pattern = v
	}
}

// Validate checks settings that would otherwise fail late.
func (c *Config) Validate() error {
	switch c.Compression {
	case "", "gz", "zst":
	default:
		return fmt.Errorf("config: unsupported compression: %q", c.Compression)
	}
	if c.Preamble < 0 {
		return fmt.Errorf("config: negative preamble: %d", c.Preamble)
	}
	if _, err := filepath.Match(c.Pattern, ""); err != nil {
		return fmt.Errorf("config: pattern %q: %w", c.Pattern, err)
	}
	return nil
}

func (c *Config) resolve(dir string) string {
	if filepath.IsAbs(dir) {
		return dir
	}
	return filepath.Join(c.BaseDir, dir)
}

// Dirs returns all output directories.
func (c *Config) Dirs() []string {
	return []string{
		c.resolve(c.CombinedDir),
		c.resolve(c.InventoryDir),
		c.resolve(c.DOIDir),
		c.resolve(c.LogDir),
	}
}

// Sources is the directory with the raw exports.
func (c *Config) Sources() string {
	return c.resolve(c.SourceDir)
}

// CombinedFile is the path of the combined CSV file for a date.
func (c *Config) CombinedFile(date string) string {
	name := fmt.Sprintf("combination-list-%s.csv", date)
	if c.Compression != "" {
		name += "." + c.Compression
	}
	return filepath.Join(c.resolve(c.CombinedDir), name)
}

// InventoryFile is the path of the inventory for a date.
func (c *Config) InventoryFile(date string) string {
	return filepath.Join(c.resolve(c.InventoryDir), fmt.Sprintf("csv_inventory_%s.tsv", date))
}

// DOIFile is the path of the new DOI list for a date.
func (c *Config) DOIFile(date string) string {
	return filepath.Join(c.resolve(c.DOIDir), fmt.Sprintf("unique_doi_output-%s.txt", date))
}

// ProjectLog is the path of the project log.
func (c *Config) ProjectLog() string {
	return filepath.Join(c.resolve(c.LogDir), projectlog.DefaultName)
}
